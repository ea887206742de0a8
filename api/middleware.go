package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/projuktisheba/bottling-erp-api/internal/models"
	"github.com/projuktisheba/bottling-erp-api/internal/utils"
	"go.uber.org/zap"
)

// Logger writes one line per request with its status and duration.
func (app *application) Logger(next http.Handler) http.Handler {
	return requestLogger(app.logger)(next)
}

func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)

			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
			}
			if ww.Status() >= http.StatusInternalServerError {
				log.Error("request", fields...)
				return
			}
			log.Info("request", fields...)
		})
	}
}

// RequireAuth rejects requests without a valid bearer token and stores the
// token's user in the request context.
func (app *application) RequireAuth(next http.Handler) http.Handler {
	return requireAuth(app.config.JWT, app.logger)(next)
}

func requireAuth(cfg models.JWTConfig, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(token) == "" {
				utils.Unauthorized(w, errors.New("missing bearer token"))
				return
			}
			user, err := utils.ParseJWT(strings.TrimSpace(token), cfg)
			if err != nil {
				log.Warn("ERROR_01_RequireAuth", zap.Error(err), zap.String("path", r.URL.Path))
				utils.Unauthorized(w, utils.ErrInvalidToken)
				return
			}
			next.ServeHTTP(w, r.WithContext(utils.WithUser(r.Context(), user)))
		})
	}
}

// RequireRole lets only the given roles through. It must run after RequireAuth.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := utils.CurrentUser(r.Context())
			if ok {
				for _, role := range roles {
					if user.Role == role {
						next.ServeHTTP(w, r)
						return
					}
				}
			}
			utils.ErrorJSON(w, http.StatusForbidden, errors.New("insufficient permissions"))
		})
	}
}
