package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/projuktisheba/bottling-erp-api/internal/models"
)

// Load reads .env (when present) and the process environment.
func Load(files ...string) (models.Config, error) {
	var cfg models.Config

	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("load %s: %w", f, err)
		}
	}

	port, err := strconv.Atoi(getEnv("PORT", "8080"))
	if err != nil {
		return cfg, fmt.Errorf("invalid PORT: %w", err)
	}
	expiry, err := time.ParseDuration(getEnv("JWT_EXPIRY", "24h"))
	if err != nil {
		return cfg, fmt.Errorf("invalid JWT_EXPIRY: %w", err)
	}

	cfg.Port = port
	cfg.Env = getEnv("ENV", "dev")
	cfg.PublicBaseURL = strings.TrimRight(getEnv("PUBLIC_BASE_URL", fmt.Sprintf("http://localhost:%d", port)), "/")
	cfg.CORSOrigins = splitList(getEnv("CORS_ORIGINS", "*"))
	cfg.DB = models.DBConfig{
		DSN:    os.Getenv("DB_DSN"),
		DEVDSN: os.Getenv("DB_DEV_DSN"),
	}
	cfg.JWT = models.JWTConfig{
		SecretKey: os.Getenv("JWT_SECRET"),
		Issuer:    getEnv("JWT_ISSUER", "bottling-erp"),
		Audience:  getEnv("JWT_AUDIENCE", "bottling-erp-admin"),
		Algorithm: "HS256",
		Expiry:    expiry,
	}
	cfg.Company = models.CompanyConfig{
		Name:    getEnv("COMPANY_NAME", models.APPName),
		Address: os.Getenv("COMPANY_ADDRESS"),
		State:   os.Getenv("COMPANY_STATE"),
		GSTIN:   strings.ToUpper(os.Getenv("COMPANY_GSTIN")),
		Phone:   os.Getenv("COMPANY_PHONE"),
	}
	cfg.Log = models.LogConfig{
		Level:  getEnv("LOG_LEVEL", "info"),
		Format: getEnv("LOG_FORMAT", defaultLogFormat(cfg.Env)),
	}

	if cfg.JWT.SecretKey == "" {
		return cfg, errors.New("JWT_SECRET is required")
	}
	if cfg.DSN() == "" {
		return cfg, fmt.Errorf("database DSN is missing for env %q", cfg.Env)
	}
	return cfg, nil
}

func defaultLogFormat(env string) string {
	if env == "live" {
		return "json"
	}
	return "console"
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
