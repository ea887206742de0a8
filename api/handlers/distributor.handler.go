package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/projuktisheba/bottling-erp-api/internal/models"
	"github.com/projuktisheba/bottling-erp-api/internal/utils"
	"go.uber.org/zap"
)

type DistributorHandler struct {
	DB     DistributorStore
	logger *zap.Logger
}

func NewDistributorHandler(db DistributorStore, logger *zap.Logger) *DistributorHandler {
	return &DistributorHandler{
		DB:     db,
		logger: logger,
	}
}

type distributorResponse struct {
	Error       bool                `json:"error"`
	Status      string              `json:"status"`
	Message     string              `json:"message"`
	Distributor *models.Distributor `json:"distributor"`
}

// -------------------- Add New Distributor --------------------
func (h *DistributorHandler) AddDistributor(w http.ResponseWriter, r *http.Request) {
	var distributor models.Distributor
	if err := utils.ReadJSON(w, r, &distributor); err != nil {
		badRequest(w, h.logger, "ERROR_01_AddDistributor", err)
		return
	}
	distributor.IsActive = true
	if err := utils.ValidateStruct(distributor); err != nil {
		badRequest(w, h.logger, "ERROR_02_AddDistributor", err)
		return
	}
	if err := h.DB.CreateDistributor(r.Context(), &distributor); err != nil {
		writeError(w, h.logger, "ERROR_03_AddDistributor", err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, distributorResponse{
		Status:      "success",
		Message:     "Distributor added successfully",
		Distributor: &distributor,
	})
}

// -------------------- Update Distributor Info --------------------
func (h *DistributorHandler) UpdateDistributor(w http.ResponseWriter, r *http.Request) {
	var distributor models.Distributor
	if err := utils.ReadJSON(w, r, &distributor); err != nil {
		badRequest(w, h.logger, "ERROR_01_UpdateDistributor", err)
		return
	}
	if distributor.ID == 0 {
		badRequest(w, h.logger, "ERROR_02_UpdateDistributor", errors.New("missing distributor ID"))
		return
	}
	if err := utils.ValidateStruct(distributor); err != nil {
		badRequest(w, h.logger, "ERROR_03_UpdateDistributor", err)
		return
	}
	if err := h.DB.UpdateDistributor(r.Context(), &distributor); err != nil {
		writeError(w, h.logger, "ERROR_04_UpdateDistributor", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, distributorResponse{
		Status:      "success",
		Message:     "Distributor info updated successfully",
		Distributor: &distributor,
	})
}

// -------------------- Get Distributor --------------------
func (h *DistributorHandler) GetDistributor(w http.ResponseWriter, r *http.Request) {
	id, err := utils.QueryInt64(r, "id")
	if err != nil {
		badRequest(w, h.logger, "ERROR_01_GetDistributor", err)
		return
	}
	distributor, err := h.DB.GetDistributorByID(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, "ERROR_02_GetDistributor", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, distributorResponse{
		Status:      "success",
		Message:     "Distributor fetched successfully",
		Distributor: distributor,
	})
}

// -------------------- Distributor List --------------------
// Example: GET /api/v1/distributors?name=aqua&status=active&state=Karnataka&page=1&limit=20
func (h *DistributorHandler) GetDistributors(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, limit := utils.Pagination(r)
	distributors, total, err := h.DB.ListDistributors(r.Context(),
		strings.TrimSpace(q.Get("name")), strings.TrimSpace(q.Get("status")), strings.TrimSpace(q.Get("state")),
		page, limit)
	if err != nil {
		writeError(w, h.logger, "ERROR_01_GetDistributors", err)
		return
	}

	resp := struct {
		Error        bool                  `json:"error"`
		Status       string                `json:"status"`
		Total        int                   `json:"total"`
		Page         int                   `json:"page"`
		Limit        int                   `json:"limit"`
		Distributors []*models.Distributor `json:"distributors"`
	}{
		Status:       "success",
		Total:        total,
		Page:         page,
		Limit:        limit,
		Distributors: distributors,
	}
	utils.WriteJSON(w, http.StatusOK, resp)
}

// -------------------- Distributor Ledger --------------------
func (h *DistributorHandler) GetDistributorLedger(w http.ResponseWriter, r *http.Request) {
	id, err := utils.QueryInt64(r, "id")
	if err != nil {
		badRequest(w, h.logger, "ERROR_01_GetDistributorLedger", err)
		return
	}
	ledger, err := h.DB.GetDistributorLedger(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, "ERROR_02_GetDistributorLedger", err)
		return
	}
	resp := struct {
		Error  bool                      `json:"error"`
		Status string                    `json:"status"`
		Ledger *models.DistributorLedger `json:"ledger"`
	}{
		Status: "success",
		Ledger: ledger,
	}
	utils.WriteJSON(w, http.StatusOK, resp)
}
