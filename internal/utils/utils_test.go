package utils

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/projuktisheba/bottling-erp-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"ok", `{"name":"Ravi"}`, ""},
		{"empty", ``, "must not be empty"},
		{"malformed", `{"name":`, "badly-formed"},
		{"truncated string", `{"name":"Ra`, "badly-formed"},
		{"wrong type", `{"name":5}`, "incorrect JSON type"},
		{"unknown key", `{"nmae":"x"}`, "unknown key"},
		{"two values", `{"name":"a"}{"name":"b"}`, "single JSON value"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var dst struct {
				Name string `json:"name"`
			}
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			err := ReadJSON(httptest.NewRecorder(), r, &dst)
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, "Ravi", dst.Name)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestErrorResponses(t *testing.T) {
	w := httptest.NewRecorder()
	BadRequest(w, errors.New("quantity must be positive"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var body models.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Error)
	assert.Equal(t, "error", body.Status)
	assert.Equal(t, "quantity must be positive", body.Message)

	w = httptest.NewRecorder()
	ServerError(w, errors.New("pq: connection refused"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection refused")
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	assert.True(t, CheckPassword("s3cret", hash))
	assert.False(t, CheckPassword("wrong", hash))

	_, err = HashPassword("")
	assert.Error(t, err)
}

func TestJWT_RoundTrip(t *testing.T) {
	cfg := models.JWTConfig{SecretKey: "k", Issuer: "bottling-erp", Audience: "admin", Expiry: time.Hour}
	token, err := GenerateJWT(models.JWT{ID: 42, Name: "Asha", Username: "asha@example.com", Role: models.ROLE_ADMIN}, cfg)
	require.NoError(t, err)

	user, err := ParseJWT(token, cfg)
	require.NoError(t, err)
	assert.Equal(t, int64(42), user.ID)
	assert.Equal(t, "asha@example.com", user.Username)
	assert.Equal(t, models.ROLE_ADMIN, user.Role)

	other := cfg
	other.SecretKey = "different"
	_, err = ParseJWT(token, other)
	assert.ErrorIs(t, err, ErrInvalidToken)

	other = cfg
	other.Audience = "drivers"
	_, err = ParseJWT(token, other)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWT_Expired(t *testing.T) {
	cfg := models.JWTConfig{SecretKey: "k", Issuer: "i", Audience: "a", Expiry: -time.Minute}
	token, err := GenerateJWT(models.JWT{ID: 1}, cfg)
	require.NoError(t, err)
	_, err = ParseJWT(token, cfg)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateStruct(t *testing.T) {
	emp := models.Employee{Role: "pilot"}
	err := ValidateStruct(&emp)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "is required", verr.Fields["name"])
	assert.Contains(t, verr.Fields["role"], "one of")
	assert.Contains(t, verr.Fields, "mobile")

	ok := models.Employee{Name: "Ravi", Role: models.ROLE_DRIVER, Mobile: "9800000000"}
	assert.NoError(t, ValidateStruct(&ok))
}

func TestParams(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?id=7&bad=-1&page=3&limit=500", nil)

	id, err := QueryInt64(r, "id")
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)

	_, err = QueryInt64(r, "bad")
	assert.Error(t, err)
	_, err = QueryInt64(r, "missing")
	assert.EqualError(t, err, "missing missing")

	v, err := OptionalInt64(r, "van_id")
	require.NoError(t, err)
	assert.Zero(t, v)

	page, limit := Pagination(r)
	assert.Equal(t, 3, page)
	assert.Equal(t, 100, limit)

	def := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	got, err := ParseDate("", def)
	require.NoError(t, err)
	assert.Equal(t, def, got)
	_, err = ParseDate("18/10/2025", def)
	assert.Error(t, err)
}

func TestMonth(t *testing.T) {
	tests := []struct {
		name  string
		query string
		now   time.Time
		want  string
	}{
		{"explicit", "?month=2025-07", time.Date(2025, 10, 18, 0, 0, 0, 0, time.UTC), "2025-07"},
		{"current", "", time.Date(2025, 10, 18, 9, 0, 0, 0, time.UTC), "2025-10"},
		{"already next month in IST", "", time.Date(2025, 10, 31, 20, 0, 0, 0, time.UTC), "2025-11"},
		{"new year in IST", "", time.Date(2025, 12, 31, 19, 0, 0, 0, time.UTC), "2026-01"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/"+tt.query, nil)
			assert.Equal(t, tt.want, Month(r, tt.now))
		})
	}
}

func TestCurrentUser(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := CurrentUser(r.Context())
	assert.False(t, ok)

	ctx := WithUser(r.Context(), &models.JWT{ID: 5, Role: models.ROLE_MANAGER})
	u, ok := CurrentUser(ctx)
	require.True(t, ok)
	assert.Equal(t, int64(5), u.ID)
}

func TestToday(t *testing.T) {
	// 20:00 UTC is already the next day in IST
	late := time.Date(2025, 10, 8, 20, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 10, 9, 0, 0, 0, 0, time.UTC), Today(late))
	assert.Equal(t, time.Date(2025, 10, 8, 0, 0, 0, 0, time.UTC), Today(time.Date(2025, 10, 8, 10, 0, 0, 0, time.UTC)))
}
