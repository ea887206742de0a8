package api

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/projuktisheba/bottling-erp-api/internal/invoice"
	"github.com/projuktisheba/bottling-erp-api/internal/models"
	"github.com/projuktisheba/bottling-erp-api/internal/utils"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type OrderHandler struct {
	DB      OrderStore
	company models.CompanyConfig
	logger  *zap.Logger
}

func NewOrderHandler(db OrderStore, company models.CompanyConfig, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		DB:      db,
		company: company,
		logger:  logger,
	}
}

type orderResponse struct {
	Error   bool          `json:"error"`
	Status  string        `json:"status"`
	Message string        `json:"message"`
	Order   *models.Order `json:"order"`
}

func writeOrder(w http.ResponseWriter, status int, message string, order *models.Order) {
	utils.WriteJSON(w, status, orderResponse{Status: "success", Message: message, Order: order})
}

// readOrder decodes an order body and drops everything the server computes.
func readOrder(w http.ResponseWriter, r *http.Request) (*models.Order, error) {
	var orderDetails models.Order
	if err := utils.ReadJSON(w, r, &orderDetails); err != nil {
		return nil, err
	}
	if err := utils.ValidateStruct(orderDetails); err != nil {
		return nil, err
	}
	orderDetails.OrderNo = ""
	orderDetails.InvoiceNo = nil
	orderDetails.DispatchedAt = nil
	orderDetails.RefundAmount = decimal.Zero
	return &orderDetails, nil
}

func (o *OrderHandler) AddOrder(w http.ResponseWriter, r *http.Request) {
	orderDetails, err := readOrder(w, r)
	if err != nil {
		badRequest(w, o.logger, "ERROR_01_AddOrder", err)
		return
	}
	orderDetails.ID = 0

	if err := o.DB.CreateOrder(r.Context(), orderDetails); err != nil {
		writeError(w, o.logger, "ERROR_02_AddOrder", err)
		return
	}
	o.logger.Info("order created",
		zap.String("order_no", orderDetails.OrderNo),
		zap.String("total", orderDetails.TotalPayableAmount.StringFixed(2)))

	writeOrder(w, http.StatusCreated, "Order added successfully", orderDetails)
}

// UpdateOrder replaces items and pricing of an order that is still collecting payment.
func (o *OrderHandler) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	orderDetails, err := readOrder(w, r)
	if err != nil {
		badRequest(w, o.logger, "ERROR_01_UpdateOrder", err)
		return
	}
	if orderDetails.ID == 0 {
		badRequest(w, o.logger, "ERROR_02_UpdateOrder", errors.New("missing order ID"))
		return
	}
	if err := o.DB.UpdateOrder(r.Context(), orderDetails); err != nil {
		writeError(w, o.logger, "ERROR_03_UpdateOrder", err)
		return
	}
	writeOrder(w, http.StatusOK, "Order updated successfully", orderDetails)
}

// RecordPayment adds a verified payment to ?id.
func (o *OrderHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	id, err := utils.QueryInt64(r, "id")
	if err != nil {
		badRequest(w, o.logger, "ERROR_01_RecordPayment", err)
		return
	}
	var req struct {
		Amount decimal.Decimal `json:"amount"`
	}
	if err := utils.ReadJSON(w, r, &req); err != nil {
		badRequest(w, o.logger, "ERROR_02_RecordPayment", err)
		return
	}
	order, err := o.DB.RecordPayment(r.Context(), id, req.Amount)
	if err != nil {
		writeError(w, o.logger, "ERROR_03_RecordPayment", err)
		return
	}
	writeOrder(w, http.StatusOK, fmt.Sprintf("Payment recorded, %s pending", order.PendingAmount.StringFixed(2)), order)
}

// DispatchOrder loads ?id onto a van and lets its reserved stock leave the warehouse.
func (o *OrderHandler) DispatchOrder(w http.ResponseWriter, r *http.Request) {
	id, err := utils.QueryInt64(r, "id")
	if err != nil {
		badRequest(w, o.logger, "ERROR_01_DispatchOrder", err)
		return
	}
	var req struct {
		VanID int64 `json:"van_id"`
	}
	if err := utils.ReadJSON(w, r, &req); err != nil {
		badRequest(w, o.logger, "ERROR_02_DispatchOrder", err)
		return
	}
	if req.VanID == 0 {
		badRequest(w, o.logger, "ERROR_03_DispatchOrder", errors.New("missing van ID"))
		return
	}
	order, err := o.DB.DispatchOrder(r.Context(), id, req.VanID)
	if err != nil {
		writeError(w, o.logger, "ERROR_04_DispatchOrder", err)
		return
	}
	writeOrder(w, http.StatusOK, "Order dispatched successfully", order)
}

func (o *OrderHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	id, err := utils.QueryInt64(r, "id")
	if err != nil {
		badRequest(w, o.logger, "ERROR_01_CancelOrder", err)
		return
	}
	var req struct {
		Reason string `json:"reason"`
	}
	// the reason is optional, so an empty body is fine
	if r.ContentLength != 0 {
		if err := utils.ReadJSON(w, r, &req); err != nil {
			badRequest(w, o.logger, "ERROR_02_CancelOrder", err)
			return
		}
	}
	order, err := o.DB.CancelOrder(r.Context(), id, strings.TrimSpace(req.Reason))
	if err != nil {
		writeError(w, o.logger, "ERROR_03_CancelOrder", err)
		return
	}
	writeOrder(w, http.StatusOK, "Order cancelled successfully", order)
}

func (o *OrderHandler) RefundOrder(w http.ResponseWriter, r *http.Request) {
	id, err := utils.QueryInt64(r, "id")
	if err != nil {
		badRequest(w, o.logger, "ERROR_01_RefundOrder", err)
		return
	}
	order, err := o.DB.RefundOrder(r.Context(), id)
	if err != nil {
		writeError(w, o.logger, "ERROR_02_RefundOrder", err)
		return
	}
	writeOrder(w, http.StatusOK, fmt.Sprintf("Refunded %s", order.RefundAmount.StringFixed(2)), order)
}

func (o *OrderHandler) GetOrderDetailsByID(w http.ResponseWriter, r *http.Request) {
	id, err := utils.QueryInt64(r, "id")
	if err != nil {
		badRequest(w, o.logger, "ERROR_01_GetOrderDetailsByID", err)
		return
	}
	order, err := o.DB.GetOrderDetailsByID(r.Context(), id)
	if err != nil {
		writeError(w, o.logger, "ERROR_02_GetOrderDetailsByID", err)
		return
	}
	writeOrder(w, http.StatusOK, "Order details fetched successfully", order)
}

// ListOrdersPaginatedHandler
// Example: GET /api/v1/orders?page=1&limit=20&status=partially_paid&distributor_id=3&sort_by_date=asc
func (o *OrderHandler) ListOrdersPaginatedHandler(w http.ResponseWriter, r *http.Request) {
	f := models.OrderFilter{
		Status:     strings.TrimSpace(r.URL.Query().Get("status")),
		SortByDate: r.URL.Query().Get("sort_by_date"),
	}
	f.Page, f.Limit = utils.Pagination(r)

	var err error
	if f.DistributorID, err = utils.OptionalInt64(r, "distributor_id"); err != nil {
		badRequest(w, o.logger, "ERROR_01_ListOrdersPaginated", err)
		return
	}
	if f.VanID, err = utils.OptionalInt64(r, "van_id"); err != nil {
		badRequest(w, o.logger, "ERROR_02_ListOrdersPaginated", err)
		return
	}

	orders, total, err := o.DB.ListOrdersPaginated(r.Context(), f)
	if err != nil {
		writeError(w, o.logger, "ERROR_03_ListOrdersPaginated", err)
		return
	}

	var resp struct {
		Error  bool            `json:"error"`
		Status string          `json:"status"`
		Total  int             `json:"total"`
		Page   int             `json:"page"`
		Limit  int             `json:"limit"`
		Orders []*models.Order `json:"orders"`
	}
	resp.Status = "success"
	resp.Total = total
	resp.Page = f.Page
	resp.Limit = f.Limit
	resp.Orders = orders
	utils.WriteJSON(w, http.StatusOK, resp)
}

// GenerateInvoice assigns the invoice number of ?id if it has none yet.
func (o *OrderHandler) GenerateInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := utils.QueryInt64(r, "id")
	if err != nil {
		badRequest(w, o.logger, "ERROR_01_GenerateInvoice", err)
		return
	}
	order, err := o.DB.AssignInvoiceNo(r.Context(), id)
	if err != nil {
		writeError(w, o.logger, "ERROR_02_GenerateInvoice", err)
		return
	}
	writeOrder(w, http.StatusOK, invoice.Title(order)+" "+*order.InvoiceNo, order)
}

// DownloadInvoice renders the invoice of ?id as a PDF, numbering it first if needed.
func (o *OrderHandler) DownloadInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := utils.QueryInt64(r, "id")
	if err != nil {
		badRequest(w, o.logger, "ERROR_01_DownloadInvoice", err)
		return
	}
	order, err := o.DB.AssignInvoiceNo(r.Context(), id)
	if err != nil {
		writeError(w, o.logger, "ERROR_02_DownloadInvoice", err)
		return
	}

	var buf bytes.Buffer
	if err := invoice.Render(&buf, o.company, order); err != nil {
		writeError(w, o.logger, "ERROR_03_DownloadInvoice", err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", *order.InvoiceNo+".pdf"))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		o.logger.Error("ERROR_04_DownloadInvoice", zap.Error(err))
	}
}
