package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/projuktisheba/bottling-erp-api/internal/dbrepo"
	"github.com/projuktisheba/bottling-erp-api/internal/models"
	"github.com/projuktisheba/bottling-erp-api/internal/utils"
	"github.com/projuktisheba/bottling-erp-api/internal/verify"
	"go.uber.org/zap"
)

type VerificationHandler struct {
	DB      VerificationStore
	baseURL string
	logger  *zap.Logger
	now     func() time.Time
}

func NewVerificationHandler(db VerificationStore, baseURL string, logger *zap.Logger) *VerificationHandler {
	return &VerificationHandler{
		DB:      db,
		baseURL: baseURL,
		logger:  logger,
		now:     time.Now,
	}
}

// ============================== Batches ==============================

func (h *VerificationHandler) CreateBatch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID      int64  `json:"product_id"`
		ManufacturedOn string `json:"manufactured_on"`
		ExpiresOn      string `json:"expires_on"`
		Boxes          int64  `json:"boxes"`
	}
	if err := utils.ReadJSON(w, r, &req); err != nil {
		badRequest(w, h.logger, "ERROR_01_CreateBatch", err)
		return
	}
	manufactured, err := utils.ParseDate(req.ManufacturedOn, utils.Today(h.now()))
	if err != nil {
		badRequest(w, h.logger, "ERROR_02_CreateBatch", err)
		return
	}
	if strings.TrimSpace(req.ExpiresOn) == "" {
		badRequest(w, h.logger, "ERROR_03_CreateBatch", errors.New("expires_on is required"))
		return
	}
	expires, err := utils.ParseDate(req.ExpiresOn, time.Time{})
	if err != nil {
		badRequest(w, h.logger, "ERROR_03_CreateBatch", err)
		return
	}
	if expires.Before(manufactured) {
		badRequest(w, h.logger, "ERROR_04_CreateBatch", errors.New("expires_on cannot be before manufactured_on"))
		return
	}

	batch := &models.ProductionBatch{
		ProductID:      req.ProductID,
		ManufacturedOn: manufactured,
		ExpiresOn:      expires,
		Boxes:          req.Boxes,
	}
	if err := utils.ValidateStruct(batch); err != nil {
		badRequest(w, h.logger, "ERROR_05_CreateBatch", err)
		return
	}
	if err := h.DB.CreateBatch(r.Context(), batch); err != nil {
		writeError(w, h.logger, "ERROR_06_CreateBatch", err)
		return
	}

	resp := struct {
		Error     bool                    `json:"error"`
		Status    string                  `json:"status"`
		Message   string                  `json:"message"`
		VerifyURL string                  `json:"verify_url"`
		Batch     *models.ProductionBatch `json:"batch"`
	}{
		Status:    "success",
		Message:   "Batch registered successfully",
		VerifyURL: verify.URL(h.baseURL, verify.BatchPath, batch.BatchCode),
		Batch:     batch,
	}
	utils.WriteJSON(w, http.StatusCreated, resp)
}

// GetBatches lists batches, optionally for one ?product_id.
func (h *VerificationHandler) GetBatches(w http.ResponseWriter, r *http.Request) {
	productID, err := utils.OptionalInt64(r, "product_id")
	if err != nil {
		badRequest(w, h.logger, "ERROR_01_GetBatches", err)
		return
	}
	batches, err := h.DB.ListBatches(r.Context(), productID)
	if err != nil {
		writeError(w, h.logger, "ERROR_02_GetBatches", err)
		return
	}
	resp := struct {
		Error   bool                      `json:"error"`
		Status  string                    `json:"status"`
		Batches []*models.ProductionBatch `json:"batches"`
	}{
		Status:  "success",
		Batches: batches,
	}
	utils.WriteJSON(w, http.StatusOK, resp)
}

// BatchQRCode serves the PNG printed on every box of batch ?code.
func (h *VerificationHandler) BatchQRCode(w http.ResponseWriter, r *http.Request) {
	batch, err := h.DB.GetBatchByCode(r.Context(), strings.TrimSpace(r.URL.Query().Get("code")))
	if err != nil {
		writeError(w, h.logger, "ERROR_01_BatchQRCode", err)
		return
	}
	h.writeQRCode(w, r, "ERROR_02_BatchQRCode", verify.URL(h.baseURL, verify.BatchPath, batch.BatchCode))
}

// VerifyBatch is the public answer to a scanned box.
func (h *VerificationHandler) VerifyBatch(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	batch, err := h.DB.GetBatchByCode(r.Context(), code)
	if err != nil && !errors.Is(err, dbrepo.ErrNotFound) {
		writeError(w, h.logger, "ERROR_01_VerifyBatch", err)
		return
	}

	result := verify.Batch(batch, h.now())
	status := http.StatusOK
	if !result.Authentic {
		h.logger.Warn("unknown batch code scanned", zap.String("code", code))
		status = http.StatusNotFound
	}
	utils.WriteJSON(w, status, result)
}

// ============================== Visitor passes ==============================

func (h *VerificationHandler) IssuePass(w http.ResponseWriter, r *http.Request) {
	var pass models.VisitorPass
	if err := utils.ReadJSON(w, r, &pass); err != nil {
		badRequest(w, h.logger, "ERROR_01_IssuePass", err)
		return
	}
	if err := utils.ValidateStruct(pass); err != nil {
		badRequest(w, h.logger, "ERROR_02_IssuePass", err)
		return
	}
	if pass.ValidFrom.IsZero() {
		pass.ValidFrom = h.now()
	}
	if !pass.ValidUntil.After(pass.ValidFrom) {
		badRequest(w, h.logger, "ERROR_03_IssuePass", errors.New("valid_until must be after valid_from"))
		return
	}
	pass.Revoked = false
	pass.IssuedBy = 0
	if user, ok := utils.CurrentUser(r.Context()); ok {
		pass.IssuedBy = user.ID
	}

	if err := h.DB.IssuePass(r.Context(), &pass); err != nil {
		writeError(w, h.logger, "ERROR_04_IssuePass", err)
		return
	}
	resp := struct {
		Error     bool                `json:"error"`
		Status    string              `json:"status"`
		Message   string              `json:"message"`
		VerifyURL string              `json:"verify_url"`
		Pass      *models.VisitorPass `json:"pass"`
	}{
		Status:    "success",
		Message:   "Pass issued successfully",
		VerifyURL: verify.URL(h.baseURL, verify.PassPath, pass.Token),
		Pass:      &pass,
	}
	utils.WriteJSON(w, http.StatusCreated, resp)
}

func (h *VerificationHandler) RevokePass(w http.ResponseWriter, r *http.Request) {
	id, err := utils.QueryInt64(r, "id")
	if err != nil {
		badRequest(w, h.logger, "ERROR_01_RevokePass", err)
		return
	}
	pass, err := h.DB.RevokePass(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, "ERROR_02_RevokePass", err)
		return
	}
	resp := struct {
		Error   bool                `json:"error"`
		Status  string              `json:"status"`
		Message string              `json:"message"`
		Pass    *models.VisitorPass `json:"pass"`
	}{
		Status:  "success",
		Message: "Pass revoked",
		Pass:    pass,
	}
	utils.WriteJSON(w, http.StatusOK, resp)
}

// GetPasses lists passes; ?active=true hides revoked and lapsed ones.
func (h *VerificationHandler) GetPasses(w http.ResponseWriter, r *http.Request) {
	passes, err := h.DB.ListPasses(r.Context(), r.URL.Query().Get("active") == "true")
	if err != nil {
		writeError(w, h.logger, "ERROR_01_GetPasses", err)
		return
	}
	resp := struct {
		Error  bool                  `json:"error"`
		Status string                `json:"status"`
		Passes []*models.VisitorPass `json:"passes"`
	}{
		Status: "success",
		Passes: passes,
	}
	utils.WriteJSON(w, http.StatusOK, resp)
}

// PassQRCode serves the PNG printed on pass ?token.
func (h *VerificationHandler) PassQRCode(w http.ResponseWriter, r *http.Request) {
	pass, err := h.DB.GetPassByToken(r.Context(), strings.TrimSpace(r.URL.Query().Get("token")))
	if err != nil {
		writeError(w, h.logger, "ERROR_01_PassQRCode", err)
		return
	}
	h.writeQRCode(w, r, "ERROR_02_PassQRCode", verify.URL(h.baseURL, verify.PassPath, pass.Token))
}

// VerifyPass is the public answer to a scanned pass.
func (h *VerificationHandler) VerifyPass(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	pass, err := h.DB.GetPassByToken(r.Context(), token)
	if err != nil && !errors.Is(err, dbrepo.ErrNotFound) {
		writeError(w, h.logger, "ERROR_01_VerifyPass", err)
		return
	}

	result := verify.Pass(pass, h.now())
	status := http.StatusOK
	if result.Status == models.PASS_NOT_FOUND {
		status = http.StatusNotFound
	}
	utils.WriteJSON(w, status, result)
}

// writeQRCode encodes url as a PNG; ?size overrides the default edge length.
func (h *VerificationHandler) writeQRCode(w http.ResponseWriter, r *http.Request, tag, url string) {
	size := verify.DefaultQRSize
	if raw := r.URL.Query().Get("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 64 || n > 2048 {
			badRequest(w, h.logger, tag, errors.New("size must be between 64 and 2048"))
			return
		}
		size = n
	}
	png, err := verify.QRCodePNG(url, size)
	if err != nil {
		writeError(w, h.logger, tag, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}
