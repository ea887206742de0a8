package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/projuktisheba/bottling-erp-api/internal/models"
	"github.com/projuktisheba/bottling-erp-api/internal/utils"
	"go.uber.org/zap"
)

type ProductHandler struct {
	DB     ProductStore
	logger *zap.Logger
}

func NewProductHandler(db ProductStore, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		DB:     db,
		logger: logger,
	}
}

func validateProduct(p *models.Product) error {
	if err := utils.ValidateStruct(p); err != nil {
		return err
	}
	if p.UnitPrice.IsNegative() {
		return errors.New("unit_price cannot be negative")
	}
	if p.GSTRate.IsNegative() {
		return errors.New("gst_rate cannot be negative")
	}
	p.SKU = strings.ToUpper(strings.TrimSpace(p.SKU))
	return nil
}

// GetProductsHandler fetches the catalogue; ?active=true hides retired products.
// Example: GET /api/v1/products?active=true
func (h *ProductHandler) GetProductsHandler(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"
	products, err := h.DB.GetProducts(r.Context(), activeOnly)
	if err != nil {
		writeError(w, h.logger, "ERROR_01_GetProductsHandler", err)
		return
	}

	var resp struct {
		Error    bool              `json:"error"`
		Status   string            `json:"status"`
		Message  string            `json:"message"`
		Products []*models.Product `json:"products"`
	}
	resp.Error = false
	resp.Status = "success"
	resp.Message = "Products fetched successfully"
	resp.Products = products

	utils.WriteJSON(w, http.StatusOK, resp)
}

func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := utils.QueryInt64(r, "id")
	if err != nil {
		badRequest(w, h.logger, "ERROR_01_GetProduct", err)
		return
	}
	product, err := h.DB.GetProduct(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, "ERROR_02_GetProduct", err)
		return
	}
	var resp struct {
		Error   bool            `json:"error"`
		Status  string          `json:"status"`
		Product *models.Product `json:"product"`
	}
	resp.Status = "success"
	resp.Product = product
	utils.WriteJSON(w, http.StatusOK, resp)
}

func (h *ProductHandler) AddProduct(w http.ResponseWriter, r *http.Request) {
	var product models.Product
	if err := utils.ReadJSON(w, r, &product); err != nil {
		badRequest(w, h.logger, "ERROR_01_AddProduct", err)
		return
	}
	product.IsActive = true
	if err := validateProduct(&product); err != nil {
		badRequest(w, h.logger, "ERROR_02_AddProduct", err)
		return
	}
	if err := h.DB.CreateProduct(r.Context(), &product); err != nil {
		writeError(w, h.logger, "ERROR_03_AddProduct", err)
		return
	}
	var resp struct {
		Error   bool            `json:"error"`
		Status  string          `json:"status"`
		Message string          `json:"message"`
		Product *models.Product `json:"product"`
	}
	resp.Status = "success"
	resp.Message = "Product added successfully"
	resp.Product = &product
	utils.WriteJSON(w, http.StatusCreated, resp)
}

func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var product models.Product
	if err := utils.ReadJSON(w, r, &product); err != nil {
		badRequest(w, h.logger, "ERROR_01_UpdateProduct", err)
		return
	}
	if product.ID == 0 {
		badRequest(w, h.logger, "ERROR_02_UpdateProduct", errors.New("missing product ID"))
		return
	}
	if err := validateProduct(&product); err != nil {
		badRequest(w, h.logger, "ERROR_03_UpdateProduct", err)
		return
	}
	if err := h.DB.UpdateProduct(r.Context(), &product); err != nil {
		writeError(w, h.logger, "ERROR_04_UpdateProduct", err)
		return
	}
	var resp struct {
		Error   bool            `json:"error"`
		Status  string          `json:"status"`
		Message string          `json:"message"`
		Product *models.Product `json:"product"`
	}
	resp.Status = "success"
	resp.Message = "Product updated successfully"
	resp.Product = &product
	utils.WriteJSON(w, http.StatusOK, resp)
}
