package dbrepo

import (
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportRange(t *testing.T) {
	ref := time.Date(2025, 10, 16, 15, 30, 0, 0, time.UTC) // Thursday
	day := func(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

	tests := []struct {
		summary    string
		start, end time.Time
	}{
		{"daily", day(2025, 10, 16), day(2025, 10, 16)},
		{"weekly", day(2025, 10, 12), day(2025, 10, 18)},
		{"monthly", day(2025, 10, 1), day(2025, 10, 31)},
		{"yearly", day(2025, 1, 1), day(2025, 12, 31)},
		{"all", time.Time{}, day(2025, 10, 16)},
	}
	for _, tt := range tests {
		t.Run(tt.summary, func(t *testing.T) {
			start, end, err := ReportRange(tt.summary, ref)
			require.NoError(t, err)
			assert.Equal(t, tt.start, start)
			assert.Equal(t, tt.end, end)
		})
	}

	_, _, err := ReportRange("hourly", ref)
	assert.Error(t, err)
}

func TestNormalizeRegNo(t *testing.T) {
	assert.Equal(t, "KA01AB1234", normalizeRegNo(" ka 01 ab 1234 "))
}

func TestConstraintErrors(t *testing.T) {
	plain := errors.New("connection reset")
	tests := []struct {
		name   string
		err    error
		mapper func(error, string) error
		want   error
	}{
		{"foreign key", &pgconn.PgError{Code: "23503"}, foreignKeyViolation, ErrNotFound},
		{"unique", &pgconn.PgError{Code: "23505"}, uniqueViolation, ErrDuplicate},
		{"unique is not a missing row", &pgconn.PgError{Code: "23505"}, foreignKeyViolation, nil},
		{"other error", plain, foreignKeyViolation, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.mapper(tt.err, "employee 9")
			if tt.want == nil {
				assert.Same(t, tt.err, got)
				return
			}
			assert.ErrorIs(t, got, tt.want)
			assert.Contains(t, got.Error(), "employee 9")
		})
	}
}
