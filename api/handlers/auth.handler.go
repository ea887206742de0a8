package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/projuktisheba/bottling-erp-api/internal/models"
	"github.com/projuktisheba/bottling-erp-api/internal/utils"
	"go.uber.org/zap"
)

var errBadCredentials = errors.New("invalid username or password")

type AuthHandler struct {
	DB        CredentialStore
	JWTConfig models.JWTConfig
	logger    *zap.Logger
}

func NewAuthHandler(db CredentialStore, JWTConfig models.JWTConfig, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		DB:        db,
		JWTConfig: JWTConfig,
		logger:    logger,
	}
}

func (h *AuthHandler) Signin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	if err := utils.ReadJSON(w, r, &req); err != nil {
		badRequest(w, h.logger, "ERROR_01_Signin", err)
		return
	}

	// Validate credentials from DB
	user, err := h.DB.GetEmployeeByEmail(r.Context(), strings.TrimSpace(req.Username))
	if err != nil || !user.IsActive || !utils.CheckPassword(req.Password, user.Password) {
		h.logger.Warn("ERROR_02_Signin: invalid credentials", zap.String("username", req.Username))
		utils.Unauthorized(w, errBadCredentials)
		return
	}

	// Generate JWT
	token, err := utils.GenerateJWT(models.JWT{
		ID:        user.ID,
		Name:      user.Name,
		Username:  user.Email,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}, h.JWTConfig)
	if err != nil {
		writeError(w, h.logger, "ERROR_03_Signin", err)
		return
	}
	user.Password = ""

	resp := struct {
		Error    bool             `json:"error"`
		Status   string           `json:"status"`
		Token    string           `json:"token"`
		Employee *models.Employee `json:"employee"`
	}{
		Error:    false,
		Status:   "success",
		Token:    token,
		Employee: user,
	}

	utils.WriteJSON(w, http.StatusOK, resp)
}
