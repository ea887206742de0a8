package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/projuktisheba/bottling-erp-api/internal/models"
	"github.com/projuktisheba/bottling-erp-api/internal/utils"
	"go.uber.org/zap"
)

var acceptableTypes = map[string]bool{
	"daily":   true,
	"weekly":  true,
	"monthly": true,
	"yearly":  true,
	"all":     true,
}

type ReportHandler struct {
	DB     ReportStore
	logger *zap.Logger
	now    func() time.Time
}

func NewReportHandler(db ReportStore, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{
		DB:     db,
		logger: logger,
		now:    time.Now,
	}
}

// GetOrderOverView summarises orders for the period of ?type around ?date.
// Unknown types fall back to monthly and a missing date means today.
func (rp *ReportHandler) GetOrderOverView(w http.ResponseWriter, r *http.Request) {
	summaryType := strings.TrimSpace(r.URL.Query().Get("type"))
	if !acceptableTypes[summaryType] {
		summaryType = "monthly"
	}

	refDate, err := utils.ParseDate(r.URL.Query().Get("date"), rp.now())
	if err != nil {
		badRequest(w, rp.logger, "ERROR_01_GetOrderOverView", err)
		return
	}
	summary, err := rp.DB.GetOrderOverView(r.Context(), summaryType, refDate)
	if err != nil {
		writeError(w, rp.logger, "ERROR_02_GetOrderOverView", err)
		return
	}

	var resp struct {
		Error         bool                  `json:"error"`
		Status        string                `json:"status"`
		Message       string                `json:"message"`
		Type          string                `json:"type"`
		OrderOverview *models.OrderOverview `json:"order_overview"`
	}
	resp.Status = "success"
	resp.Message = "Order overview fetched successfully"
	resp.Type = summaryType
	resp.OrderOverview = summary
	utils.WriteJSON(w, http.StatusOK, resp)
}
