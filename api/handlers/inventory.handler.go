package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/projuktisheba/bottling-erp-api/internal/models"
	"github.com/projuktisheba/bottling-erp-api/internal/utils"
	"go.uber.org/zap"
)

type InventoryHandler struct {
	DB     InventoryStore
	logger *zap.Logger
}

func NewInventoryHandler(db InventoryStore, logger *zap.Logger) *InventoryHandler {
	return &InventoryHandler{
		DB:     db,
		logger: logger,
	}
}

// GetStock returns one product's position with ?product_id, or every product without it.
func (h *InventoryHandler) GetStock(w http.ResponseWriter, r *http.Request) {
	productID, err := utils.OptionalInt64(r, "product_id")
	if err != nil {
		badRequest(w, h.logger, "ERROR_01_GetStock", err)
		return
	}

	var resp struct {
		Error  bool                      `json:"error"`
		Status string                    `json:"status"`
		Stock  []*models.InventoryRecord `json:"stock"`
	}
	resp.Status = "success"

	if productID > 0 {
		rec, err := h.DB.GetStock(r.Context(), productID)
		if err != nil {
			writeError(w, h.logger, "ERROR_02_GetStock", err)
			return
		}
		resp.Stock = []*models.InventoryRecord{rec}
	} else {
		resp.Stock, err = h.DB.ListStock(r.Context())
		if err != nil {
			writeError(w, h.logger, "ERROR_03_GetStock", err)
			return
		}
	}
	utils.WriteJSON(w, http.StatusOK, resp)
}

// Restock adds produced boxes to a product's available stock.
func (h *InventoryHandler) Restock(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID int64  `json:"product_id"`
		Quantity  int64  `json:"quantity"`
		Notes     string `json:"notes"`
	}
	if err := utils.ReadJSON(w, r, &req); err != nil {
		badRequest(w, h.logger, "ERROR_01_Restock", err)
		return
	}
	if req.ProductID == 0 {
		badRequest(w, h.logger, "ERROR_02_Restock", errors.New("missing product ID"))
		return
	}
	rec, err := h.DB.Restock(r.Context(), req.ProductID, req.Quantity, req.Notes)
	if err != nil {
		writeError(w, h.logger, "ERROR_03_Restock", err)
		return
	}
	var resp struct {
		Error   bool                    `json:"error"`
		Status  string                  `json:"status"`
		Message string                  `json:"message"`
		Stock   *models.InventoryRecord `json:"stock"`
	}
	resp.Status = "success"
	resp.Message = "Stock updated successfully"
	resp.Stock = rec
	utils.WriteJSON(w, http.StatusOK, resp)
}

// GetMovements lists the stock journal, newest first, optionally for one
// product or one order.
func (h *InventoryHandler) GetMovements(w http.ResponseWriter, r *http.Request) {
	productID, err := utils.OptionalInt64(r, "product_id")
	if err != nil {
		badRequest(w, h.logger, "ERROR_01_GetMovements", err)
		return
	}
	orderID, err := utils.OptionalInt64(r, "order_id")
	if err != nil {
		badRequest(w, h.logger, "ERROR_02_GetMovements", err)
		return
	}
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if limit, err = strconv.Atoi(raw); err != nil || limit < 1 {
			badRequest(w, h.logger, "ERROR_03_GetMovements", errors.New("invalid limit"))
			return
		}
	}
	movements, err := h.DB.ListMovements(r.Context(), productID, orderID, limit)
	if err != nil {
		writeError(w, h.logger, "ERROR_04_GetMovements", err)
		return
	}
	var resp struct {
		Error     bool                        `json:"error"`
		Status    string                      `json:"status"`
		Movements []*models.InventoryMovement `json:"movements"`
	}
	resp.Status = "success"
	resp.Movements = movements
	utils.WriteJSON(w, http.StatusOK, resp)
}
