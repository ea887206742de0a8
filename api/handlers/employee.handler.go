package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/projuktisheba/bottling-erp-api/internal/models"
	"github.com/projuktisheba/bottling-erp-api/internal/utils"
	"go.uber.org/zap"
)

type EmployeeHandler struct {
	DB     EmployeeStore
	logger *zap.Logger
}

func NewEmployeeHandler(db EmployeeStore, logger *zap.Logger) *EmployeeHandler {
	return &EmployeeHandler{
		DB:     db,
		logger: logger,
	}
}

func (e *EmployeeHandler) AddEmployee(w http.ResponseWriter, r *http.Request) {
	var employeeDetails models.Employee
	if err := utils.ReadJSON(w, r, &employeeDetails); err != nil {
		badRequest(w, e.logger, "ERROR_01_AddEmployee", err)
		return
	}
	employeeDetails.IsActive = true
	if err := utils.ValidateStruct(employeeDetails); err != nil {
		badRequest(w, e.logger, "ERROR_02_AddEmployee", err)
		return
	}
	if employeeDetails.DailyWage.IsNegative() {
		badRequest(w, e.logger, "ERROR_03_AddEmployee", errors.New("daily_wage cannot be negative"))
		return
	}

	// only employees who sign in carry a password
	if employeeDetails.Password != "" {
		hashed, err := utils.HashPassword(employeeDetails.Password)
		if err != nil {
			writeError(w, e.logger, "ERROR_04_AddEmployee", err)
			return
		}
		employeeDetails.Password = hashed
	}

	if err := e.DB.CreateEmployee(r.Context(), &employeeDetails); err != nil {
		writeError(w, e.logger, "ERROR_05_AddEmployee", err)
		return
	}

	var resp struct {
		Error    bool             `json:"error"`
		Status   string           `json:"status"`
		Message  string           `json:"message"`
		Employee *models.Employee `json:"employee"`
	}
	resp.Error = false
	resp.Status = "success"
	resp.Message = "Employee added successfully"
	resp.Employee = &employeeDetails

	utils.WriteJSON(w, http.StatusCreated, resp)
}

func (e *EmployeeHandler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id, err := utils.QueryInt64(r, "id")
	if err != nil {
		badRequest(w, e.logger, "ERROR_01_GetEmployee", err)
		return
	}
	employee, err := e.DB.GetEmployee(r.Context(), id)
	if err != nil {
		writeError(w, e.logger, "ERROR_02_GetEmployee", err)
		return
	}
	var resp struct {
		Error    bool             `json:"error"`
		Status   string           `json:"status"`
		Message  string           `json:"message"`
		Employee *models.Employee `json:"employee"`
	}
	resp.Error = false
	resp.Status = "success"
	resp.Message = "Employee info fetched successfully"
	resp.Employee = employee

	utils.WriteJSON(w, http.StatusOK, resp)
}

// UpdateEmployee updates general employee details
func (e *EmployeeHandler) UpdateEmployee(w http.ResponseWriter, r *http.Request) {
	var employeeDetails models.Employee
	if err := utils.ReadJSON(w, r, &employeeDetails); err != nil {
		badRequest(w, e.logger, "ERROR_01_UpdateEmployee", err)
		return
	}
	if employeeDetails.ID == 0 {
		badRequest(w, e.logger, "ERROR_02_UpdateEmployee", errors.New("missing employee ID"))
		return
	}
	if err := utils.ValidateStruct(employeeDetails); err != nil {
		badRequest(w, e.logger, "ERROR_03_UpdateEmployee", err)
		return
	}

	if err := e.DB.UpdateEmployee(r.Context(), &employeeDetails); err != nil {
		writeError(w, e.logger, "ERROR_04_UpdateEmployee", err)
		return
	}
	employeeDetails.Password = ""

	var resp struct {
		Error    bool             `json:"error"`
		Status   string           `json:"status"`
		Message  string           `json:"message"`
		Employee *models.Employee `json:"employee"`
	}
	resp.Error = false
	resp.Status = "success"
	resp.Message = "Employee details updated successfully"
	resp.Employee = &employeeDetails

	utils.WriteJSON(w, http.StatusOK, resp)
}

// UpdatePassword sets a new sign-in password for an employee.
func (e *EmployeeHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID       int64  `json:"id"`
		Password string `json:"password"`
	}
	if err := utils.ReadJSON(w, r, &req); err != nil {
		badRequest(w, e.logger, "ERROR_01_UpdatePassword", err)
		return
	}
	if req.ID == 0 || len(req.Password) < 6 {
		badRequest(w, e.logger, "ERROR_02_UpdatePassword", errors.New("id and a password of at least 6 characters are required"))
		return
	}
	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		writeError(w, e.logger, "ERROR_03_UpdatePassword", err)
		return
	}
	if err := e.DB.UpdatePassword(r.Context(), req.ID, hashed); err != nil {
		writeError(w, e.logger, "ERROR_04_UpdatePassword", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, models.Response{Status: "success", Message: "Password updated successfully"})
}

// GetEmployees lists employees filtered by role and status (active/inactive).
func (e *EmployeeHandler) GetEmployees(w http.ResponseWriter, r *http.Request) {
	page, limit := utils.Pagination(r)
	role := strings.TrimSpace(r.URL.Query().Get("role"))
	status := strings.TrimSpace(r.URL.Query().Get("status"))

	employees, total, err := e.DB.PaginatedEmployeeList(r.Context(), page, limit, role, status)
	if err != nil {
		writeError(w, e.logger, "ERROR_01_GetEmployees", err)
		return
	}

	var resp struct {
		Error     bool               `json:"error"`
		Status    string             `json:"status"`
		Message   string             `json:"message"`
		Total     int                `json:"total"`
		Page      int                `json:"page"`
		Limit     int                `json:"limit"`
		Employees []*models.Employee `json:"employees"`
	}
	resp.Error = false
	resp.Status = "success"
	resp.Message = "Employees fetched successfully"
	resp.Total = total
	resp.Page = page
	resp.Limit = limit
	resp.Employees = employees

	utils.WriteJSON(w, http.StatusOK, resp)
}
