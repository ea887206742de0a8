package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/projuktisheba/bottling-erp-api/internal/models"
	"github.com/projuktisheba/bottling-erp-api/internal/payroll"
	"github.com/projuktisheba/bottling-erp-api/internal/utils"
	"go.uber.org/zap"
)

// AttendanceHandler handles attendance-related requests
type AttendanceHandler struct {
	DB     AttendanceStore
	logger *zap.Logger
	now    func() time.Time
}

func NewAttendanceHandler(db AttendanceStore, logger *zap.Logger) *AttendanceHandler {
	return &AttendanceHandler{
		DB:     db,
		logger: logger,
		now:    time.Now,
	}
}

// normalizeAttendance checks one entry and fills WorkDate from work_date,
// defaulting to today.
func (a *AttendanceHandler) normalizeAttendance(e *models.Attendance) error {
	if e.EmployeeID == 0 {
		return errors.New("missing employee ID")
	}
	switch e.Status {
	case models.ATTENDANCE_FULL_DAY, models.ATTENDANCE_HALF_DAY, models.ATTENDANCE_ABSENT:
	default:
		return fmt.Errorf("invalid status %q for employee %d, expected %q, %q or %q",
			e.Status, e.EmployeeID, models.ATTENDANCE_FULL_DAY, models.ATTENDANCE_HALF_DAY, models.ATTENDANCE_ABSENT)
	}
	today := utils.Today(a.now())
	workDate, err := utils.ParseDate(e.WorkDateStr, today)
	if err != nil {
		return fmt.Errorf("employee %d: %w", e.EmployeeID, err)
	}
	e.WorkDate = workDate
	return nil
}

// MarkAttendance records one employee's attendance for a day.
func (a *AttendanceHandler) MarkAttendance(w http.ResponseWriter, r *http.Request) {
	var reqBody models.Attendance
	if err := utils.ReadJSON(w, r, &reqBody); err != nil {
		badRequest(w, a.logger, "ERROR_01_MarkAttendance", err)
		return
	}
	if err := a.normalizeAttendance(&reqBody); err != nil {
		badRequest(w, a.logger, "ERROR_02_MarkAttendance", err)
		return
	}
	if err := a.DB.UpsertAttendance(r.Context(), &reqBody); err != nil {
		writeError(w, a.logger, "ERROR_03_MarkAttendance", err)
		return
	}

	var resp struct {
		Error      bool               `json:"error"`
		Status     string             `json:"status"`
		Message    string             `json:"message"`
		Attendance *models.Attendance `json:"attendance"`
	}
	resp.Error = false
	resp.Status = "success"
	resp.Message = "Attendance recorded successfully"
	resp.Attendance = &reqBody
	utils.WriteJSON(w, http.StatusOK, resp)
}

// BatchMarkAttendance records attendance for many employees at once. Nothing
// is written if any entry is invalid.
func (a *AttendanceHandler) BatchMarkAttendance(w http.ResponseWriter, r *http.Request) {
	var entries []*models.Attendance
	if err := utils.ReadJSON(w, r, &entries); err != nil {
		badRequest(w, a.logger, "ERROR_01_BatchMarkAttendance", err)
		return
	}
	if len(entries) == 0 {
		badRequest(w, a.logger, "ERROR_02_BatchMarkAttendance", errors.New("no attendance entries provided"))
		return
	}
	for _, e := range entries {
		if e == nil {
			badRequest(w, a.logger, "ERROR_03_BatchMarkAttendance", errors.New("attendance entry cannot be null"))
			return
		}
		if err := a.normalizeAttendance(e); err != nil {
			badRequest(w, a.logger, "ERROR_03_BatchMarkAttendance", err)
			return
		}
	}
	if err := a.DB.BatchUpsertAttendance(r.Context(), entries); err != nil {
		writeError(w, a.logger, "ERROR_04_BatchMarkAttendance", err)
		return
	}

	var resp struct {
		Error      bool                 `json:"error"`
		Status     string               `json:"status"`
		Message    string               `json:"message"`
		Attendance []*models.Attendance `json:"attendance"`
	}
	resp.Error = false
	resp.Status = "success"
	resp.Message = fmt.Sprintf("%d attendance entries recorded", len(entries))
	resp.Attendance = entries
	utils.WriteJSON(w, http.StatusOK, resp)
}

// GetEmployeeCalendar returns an employee's attendance for ?month=YYYY-MM.
func (a *AttendanceHandler) GetEmployeeCalendar(w http.ResponseWriter, r *http.Request) {
	employeeID, err := utils.QueryInt64(r, "employee_id")
	if err != nil {
		badRequest(w, a.logger, "ERROR_01_GetEmployeeCalendar", err)
		return
	}
	month := utils.Month(r, a.now())
	start, end, err := payroll.MonthRange(month)
	if err != nil {
		badRequest(w, a.logger, "ERROR_02_GetEmployeeCalendar", err)
		return
	}
	calendar, err := a.DB.GetEmployeeCalendar(r.Context(), employeeID, month, start, end)
	if err != nil {
		writeError(w, a.logger, "ERROR_03_GetEmployeeCalendar", err)
		return
	}

	var resp struct {
		Error    bool                     `json:"error"`
		Status   string                   `json:"status"`
		Message  string                   `json:"message"`
		Calendar *models.EmployeeCalendar `json:"calendar"`
	}
	resp.Error = false
	resp.Status = "success"
	resp.Message = "Attendance calendar fetched successfully"
	resp.Calendar = calendar
	utils.WriteJSON(w, http.StatusOK, resp)
}
