package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	handlers "github.com/projuktisheba/bottling-erp-api/api/handlers"
	"github.com/projuktisheba/bottling-erp-api/internal/dbrepo"
	"github.com/projuktisheba/bottling-erp-api/internal/models"
	"github.com/projuktisheba/bottling-erp-api/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var testJWT = models.JWTConfig{
	SecretKey: "test-secret",
	Issuer:    "bottling-erp",
	Audience:  "back-office",
	Expiry:    time.Hour,
}

func testApp(t *testing.T) *application {
	t.Helper()
	cfg := models.Config{Env: "dev", JWT: testJWT, CORSOrigins: []string{"https://office.example.com"}}
	// repositories are never reached by the requests below
	db := dbrepo.NewDBRepository(nil)
	return &application{
		config:   cfg,
		logger:   zap.NewNop(),
		Handlers: handlers.NewHandlerRepo(db, cfg, zap.NewNop()),
		DB:       db,
	}
}

func token(t *testing.T, role string) string {
	t.Helper()
	tok, err := utils.GenerateJWT(models.JWT{ID: 3, Name: "Asha", Username: "asha@example.com", Role: role}, testJWT)
	require.NoError(t, err)
	return tok
}

func TestServer_ShutdownBeforeServe(t *testing.T) {
	a := testApp(t)
	a.config.Port = 8085
	a.Server = a.newServer()
	assert.Equal(t, ":8085", a.Server.Addr)
	assert.Equal(t, 5*time.Second, a.Server.ReadHeaderTimeout)

	require.NoError(t, a.ShutdownServer())
	assert.ErrorIs(t, a.serve(), http.ErrServerClosed)
}

func TestRoutes_PingIsOpen(t *testing.T) {
	rec := httptest.NewRecorder()
	testApp(t).routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `"Live"`, rec.Body.String())
}

func TestRoutes_BackOfficeNeedsToken(t *testing.T) {
	mux := testApp(t).routes()
	for _, path := range []string{"/api/v1/orders/", "/api/v1/hr/payroll", "/api/v1/vans/ledger?id=1", "/api/v1/inventory/stock"} {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func TestRoutes_HRNeedsManager(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/hr/employees", nil)
	req.Header.Set("Authorization", "Bearer "+token(t, models.ROLE_DRIVER))
	rec := httptest.NewRecorder()
	testApp(t).routes().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRoutes_CORSPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/orders/", nil)
	req.Header.Set("Origin", "https://office.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	testApp(t).routes().ServeHTTP(rec, req)
	assert.Equal(t, "https://office.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequireAuth(t *testing.T) {
	var seen *models.JWT
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = utils.CurrentUser(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	h := requireAuth(testJWT, zap.NewNop())(next)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"not bearer", "Basic YWRtaW46YWRtaW4=", http.StatusUnauthorized},
		{"garbage token", "Bearer abc.def.ghi", http.StatusUnauthorized},
		{"valid token", "Bearer " + token(t, models.ROLE_ADMIN), http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusNoContent {
				require.NotNil(t, seen)
				assert.Equal(t, int64(3), seen.ID)
			} else {
				assert.Nil(t, seen)
			}
		})
	}
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	h := requestLogger(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/v1/orders/payment?id=1", nil))

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "POST", fields["method"])
	assert.Equal(t, "/api/v1/orders/payment", fields["path"])
	assert.EqualValues(t, http.StatusTeapot, fields["status"])
}
