package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/projuktisheba/bottling-erp-api/internal/export"
	"github.com/projuktisheba/bottling-erp-api/internal/models"
	"github.com/projuktisheba/bottling-erp-api/internal/utils"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type VanHandler struct {
	DB     VanStore
	logger *zap.Logger
	now    func() time.Time
}

func NewVanHandler(db VanStore, logger *zap.Logger) *VanHandler {
	return &VanHandler{
		DB:     db,
		logger: logger,
		now:    time.Now,
	}
}

type vanResponse struct {
	Error   bool        `json:"error"`
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Van     *models.Van `json:"van"`
}

func validateVan(v *models.Van) error {
	if err := utils.ValidateStruct(v); err != nil {
		return err
	}
	if v.RatePerKm.IsNegative() {
		return errors.New("rate_per_km cannot be negative")
	}
	return nil
}

func (h *VanHandler) AddVan(w http.ResponseWriter, r *http.Request) {
	var van models.Van
	if err := utils.ReadJSON(w, r, &van); err != nil {
		badRequest(w, h.logger, "ERROR_01_AddVan", err)
		return
	}
	van.IsActive = true
	if err := validateVan(&van); err != nil {
		badRequest(w, h.logger, "ERROR_02_AddVan", err)
		return
	}
	if err := h.DB.CreateVan(r.Context(), &van); err != nil {
		writeError(w, h.logger, "ERROR_03_AddVan", err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, vanResponse{Status: "success", Message: "Van added successfully", Van: &van})
}

func (h *VanHandler) UpdateVan(w http.ResponseWriter, r *http.Request) {
	var van models.Van
	if err := utils.ReadJSON(w, r, &van); err != nil {
		badRequest(w, h.logger, "ERROR_01_UpdateVan", err)
		return
	}
	if van.ID == 0 {
		badRequest(w, h.logger, "ERROR_02_UpdateVan", errors.New("missing van ID"))
		return
	}
	if err := validateVan(&van); err != nil {
		badRequest(w, h.logger, "ERROR_03_UpdateVan", err)
		return
	}
	if err := h.DB.UpdateVan(r.Context(), &van); err != nil {
		writeError(w, h.logger, "ERROR_04_UpdateVan", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, vanResponse{Status: "success", Message: "Van updated successfully", Van: &van})
}

func (h *VanHandler) GetVan(w http.ResponseWriter, r *http.Request) {
	id, err := utils.QueryInt64(r, "id")
	if err != nil {
		badRequest(w, h.logger, "ERROR_01_GetVan", err)
		return
	}
	van, err := h.DB.GetVanByID(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, "ERROR_02_GetVan", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, vanResponse{Status: "success", Message: "Van fetched successfully", Van: van})
}

// GetVans lists vans; ?status=active|inactive narrows the list.
func (h *VanHandler) GetVans(w http.ResponseWriter, r *http.Request) {
	vans, err := h.DB.ListVans(r.Context(), strings.TrimSpace(r.URL.Query().Get("status")))
	if err != nil {
		writeError(w, h.logger, "ERROR_01_GetVans", err)
		return
	}
	resp := struct {
		Error  bool          `json:"error"`
		Status string        `json:"status"`
		Vans   []*models.Van `json:"vans"`
	}{
		Status: "success",
		Vans:   vans,
	}
	utils.WriteJSON(w, http.StatusOK, resp)
}

// AddPayout records money handed to a van's driver.
func (h *VanHandler) AddPayout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		VanID  int64           `json:"van_id"`
		Amount decimal.Decimal `json:"amount"`
		Date   string          `json:"date"`
		Notes  string          `json:"notes"`
	}
	if err := utils.ReadJSON(w, r, &req); err != nil {
		badRequest(w, h.logger, "ERROR_01_AddPayout", err)
		return
	}
	if req.VanID == 0 {
		badRequest(w, h.logger, "ERROR_02_AddPayout", errors.New("missing van ID"))
		return
	}
	if !req.Amount.IsPositive() {
		badRequest(w, h.logger, "ERROR_03_AddPayout", errors.New("amount must be greater than zero"))
		return
	}
	date, err := utils.ParseDate(req.Date, utils.Today(h.now()))
	if err != nil {
		badRequest(w, h.logger, "ERROR_04_AddPayout", err)
		return
	}

	payout := &models.VanPayout{VanID: req.VanID, Amount: req.Amount, PayoutDate: date, Notes: req.Notes}
	if err := h.DB.CreatePayout(r.Context(), payout); err != nil {
		writeError(w, h.logger, "ERROR_05_AddPayout", err)
		return
	}
	resp := struct {
		Error   bool              `json:"error"`
		Status  string            `json:"status"`
		Message string            `json:"message"`
		Payout  *models.VanPayout `json:"payout"`
	}{
		Status:  "success",
		Message: "Payout recorded with voucher " + payout.VoucherNo,
		Payout:  payout,
	}
	utils.WriteJSON(w, http.StatusCreated, resp)
}

func (h *VanHandler) GetPayouts(w http.ResponseWriter, r *http.Request) {
	vanID, err := utils.QueryInt64(r, "van_id")
	if err != nil {
		badRequest(w, h.logger, "ERROR_01_GetPayouts", err)
		return
	}
	payouts, err := h.DB.ListPayouts(r.Context(), vanID)
	if err != nil {
		writeError(w, h.logger, "ERROR_02_GetPayouts", err)
		return
	}
	resp := struct {
		Error   bool                `json:"error"`
		Status  string              `json:"status"`
		Payouts []*models.VanPayout `json:"payouts"`
	}{
		Status:  "success",
		Payouts: payouts,
	}
	utils.WriteJSON(w, http.StatusOK, resp)
}

func (h *VanHandler) GetVanLedger(w http.ResponseWriter, r *http.Request) {
	id, err := utils.QueryInt64(r, "id")
	if err != nil {
		badRequest(w, h.logger, "ERROR_01_GetVanLedger", err)
		return
	}
	ledger, err := h.DB.GetVanLedger(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, "ERROR_02_GetVanLedger", err)
		return
	}
	resp := struct {
		Error  bool              `json:"error"`
		Status string            `json:"status"`
		Ledger *models.VanLedger `json:"ledger"`
	}{
		Status: "success",
		Ledger: ledger,
	}
	utils.WriteJSON(w, http.StatusOK, resp)
}

// ExportVanLedger streams the ledger of ?id as an XLSX workbook.
func (h *VanHandler) ExportVanLedger(w http.ResponseWriter, r *http.Request) {
	id, err := utils.QueryInt64(r, "id")
	if err != nil {
		badRequest(w, h.logger, "ERROR_01_ExportVanLedger", err)
		return
	}
	ledger, err := h.DB.GetVanLedger(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, "ERROR_02_ExportVanLedger", err)
		return
	}
	wb, err := export.VanLedgerWorkbook(ledger)
	if err != nil {
		writeError(w, h.logger, "ERROR_03_ExportVanLedger", err)
		return
	}
	defer wb.Close()
	if err := wb.Serve(w, "van-ledger-"+ledger.RegistrationNo+".xlsx"); err != nil {
		h.logger.Error("ERROR_04_ExportVanLedger", zap.Error(err))
	}
}
