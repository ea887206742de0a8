package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/projuktisheba/bottling-erp-api/internal/export"
	"github.com/projuktisheba/bottling-erp-api/internal/models"
	"github.com/projuktisheba/bottling-erp-api/internal/payroll"
	"github.com/projuktisheba/bottling-erp-api/internal/utils"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type PayrollHandler struct {
	DB     PayrollStore
	logger *zap.Logger
	now    func() time.Time
}

func NewPayrollHandler(db PayrollStore, logger *zap.Logger) *PayrollHandler {
	return &PayrollHandler{
		DB:     db,
		logger: logger,
		now:    time.Now,
	}
}

// voucherRequest is the body shared by advances and salary payments.
type voucherRequest struct {
	EmployeeID int64           `json:"employee_id"`
	Amount     decimal.Decimal `json:"amount"`
	Date       string          `json:"date"`
	Notes      string          `json:"notes"`
}

func (h *PayrollHandler) readVoucher(w http.ResponseWriter, r *http.Request) (*voucherRequest, time.Time, error) {
	var req voucherRequest
	if err := utils.ReadJSON(w, r, &req); err != nil {
		return nil, time.Time{}, err
	}
	if req.EmployeeID == 0 {
		return nil, time.Time{}, errors.New("missing employee ID")
	}
	if !req.Amount.IsPositive() {
		return nil, time.Time{}, errors.New("amount must be greater than zero")
	}
	date, err := utils.ParseDate(req.Date, utils.Today(h.now()))
	if err != nil {
		return nil, time.Time{}, err
	}
	return &req, date, nil
}

func (h *PayrollHandler) CreateAdvance(w http.ResponseWriter, r *http.Request) {
	req, date, err := h.readVoucher(w, r)
	if err != nil {
		badRequest(w, h.logger, "ERROR_01_CreateAdvance", err)
		return
	}
	adv := &models.SalaryAdvance{
		EmployeeID:  req.EmployeeID,
		Amount:      req.Amount,
		AdvanceDate: date,
		Notes:       req.Notes,
	}
	if err := h.DB.CreateAdvance(r.Context(), adv); err != nil {
		writeError(w, h.logger, "ERROR_02_CreateAdvance", err)
		return
	}

	var resp struct {
		Error   bool                  `json:"error"`
		Status  string                `json:"status"`
		Message string                `json:"message"`
		Advance *models.SalaryAdvance `json:"advance"`
	}
	resp.Status = "success"
	resp.Message = "Advance recorded with voucher " + adv.VoucherNo
	resp.Advance = adv
	utils.WriteJSON(w, http.StatusCreated, resp)
}

func (h *PayrollHandler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	req, date, err := h.readVoucher(w, r)
	if err != nil {
		badRequest(w, h.logger, "ERROR_01_CreatePayment", err)
		return
	}
	p := &models.SalaryPayment{
		EmployeeID:  req.EmployeeID,
		Amount:      req.Amount,
		PaymentDate: date,
		Notes:       req.Notes,
	}
	if err := h.DB.CreatePayment(r.Context(), p); err != nil {
		writeError(w, h.logger, "ERROR_02_CreatePayment", err)
		return
	}

	var resp struct {
		Error   bool                  `json:"error"`
		Status  string                `json:"status"`
		Message string                `json:"message"`
		Payment *models.SalaryPayment `json:"payment"`
	}
	resp.Status = "success"
	resp.Message = "Salary payment recorded with voucher " + p.VoucherNo
	resp.Payment = p
	utils.WriteJSON(w, http.StatusCreated, resp)
}

// monthFilter reads ?employee_id (optional) and ?month.
func (h *PayrollHandler) monthFilter(r *http.Request) (int64, time.Time, time.Time, error) {
	employeeID, err := utils.OptionalInt64(r, "employee_id")
	if err != nil {
		return 0, time.Time{}, time.Time{}, err
	}
	start, end, err := payroll.MonthRange(utils.Month(r, h.now()))
	return employeeID, start, end, err
}

func (h *PayrollHandler) ListAdvances(w http.ResponseWriter, r *http.Request) {
	employeeID, start, end, err := h.monthFilter(r)
	if err != nil {
		badRequest(w, h.logger, "ERROR_01_ListAdvances", err)
		return
	}
	advances, err := h.DB.ListAdvances(r.Context(), employeeID, start, end)
	if err != nil {
		writeError(w, h.logger, "ERROR_02_ListAdvances", err)
		return
	}
	var resp struct {
		Error    bool                    `json:"error"`
		Status   string                  `json:"status"`
		Advances []*models.SalaryAdvance `json:"advances"`
	}
	resp.Status = "success"
	resp.Advances = advances
	utils.WriteJSON(w, http.StatusOK, resp)
}

func (h *PayrollHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	employeeID, start, end, err := h.monthFilter(r)
	if err != nil {
		badRequest(w, h.logger, "ERROR_01_ListPayments", err)
		return
	}
	payments, err := h.DB.ListPayments(r.Context(), employeeID, start, end)
	if err != nil {
		writeError(w, h.logger, "ERROR_02_ListPayments", err)
		return
	}
	var resp struct {
		Error    bool                    `json:"error"`
		Status   string                  `json:"status"`
		Payments []*models.SalaryPayment `json:"payments"`
	}
	resp.Status = "success"
	resp.Payments = payments
	utils.WriteJSON(w, http.StatusOK, resp)
}

// GetMonthlyPayroll returns the payroll sheet for ?month=YYYY-MM.
func (h *PayrollHandler) GetMonthlyPayroll(w http.ResponseWriter, r *http.Request) {
	report, err := h.DB.MonthlyPayroll(r.Context(), utils.Month(r, h.now()))
	if err != nil {
		writeError(w, h.logger, "ERROR_01_GetMonthlyPayroll", err)
		return
	}
	var resp struct {
		Error   bool                  `json:"error"`
		Status  string                `json:"status"`
		Message string                `json:"message"`
		Payroll *models.PayrollReport `json:"payroll"`
	}
	resp.Status = "success"
	resp.Message = "Payroll for " + report.Month
	resp.Payroll = report
	utils.WriteJSON(w, http.StatusOK, resp)
}

// ExportMonthlyPayroll streams the payroll sheet as an XLSX workbook.
func (h *PayrollHandler) ExportMonthlyPayroll(w http.ResponseWriter, r *http.Request) {
	report, err := h.DB.MonthlyPayroll(r.Context(), utils.Month(r, h.now()))
	if err != nil {
		writeError(w, h.logger, "ERROR_01_ExportMonthlyPayroll", err)
		return
	}
	wb, err := export.PayrollWorkbook(report)
	if err != nil {
		writeError(w, h.logger, "ERROR_02_ExportMonthlyPayroll", err)
		return
	}
	defer wb.Close()
	if err := wb.Serve(w, "payroll-"+report.Month+".xlsx"); err != nil {
		h.logger.Error("ERROR_03_ExportMonthlyPayroll", zap.Error(err))
	}
}
