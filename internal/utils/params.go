package utils

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/projuktisheba/bottling-erp-api/internal/sequence"
)

const DateLayout = "2006-01-02"

// QueryInt64 reads a positive integer query parameter. Missing parameters
// return an error naming the key.
func QueryInt64(r *http.Request, key string) (int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return 0, fmt.Errorf("missing %s", key)
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, raw)
	}
	return v, nil
}

// OptionalInt64 is QueryInt64 that yields 0 when the key is absent.
func OptionalInt64(r *http.Request, key string) (int64, error) {
	if strings.TrimSpace(r.URL.Query().Get(key)) == "" {
		return 0, nil
	}
	return QueryInt64(r, key)
}

// Pagination reads page and limit, defaulting to 1 and 20 and capping limit at 100.
func Pagination(r *http.Request) (page, limit int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}

// ParseDate parses YYYY-MM-DD. An empty string yields def.
func ParseDate(raw string, def time.Time) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}
	t, err := time.Parse(DateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", raw)
	}
	return t, nil
}

// Month returns the month query parameter, defaulting to the current IST month.
func Month(r *http.Request, now time.Time) string {
	if m := strings.TrimSpace(r.URL.Query().Get("month")); m != "" {
		return m
	}
	return now.In(sequence.IST).Format("2006-01")
}

// Today is the business-day date of now (IST) as a UTC midnight, the form
// date columns are stored in.
func Today(now time.Time) time.Time {
	y, m, d := now.In(sequence.IST).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
