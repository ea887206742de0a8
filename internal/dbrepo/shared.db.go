package dbrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/projuktisheba/bottling-erp-api/internal/sequence"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrInvalidStatus = errors.New("invalid status transition")
	ErrInactive      = errors.New("record is inactive")
	ErrDuplicate     = errors.New("record already exists")
)

// querier is satisfied by *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// pgCounter bumps sequence_counters in whatever transaction q belongs to, so a
// rolled back write also gives its number back.
type pgCounter struct {
	q querier
}

func (c pgCounter) Next(ctx context.Context, prefix, bucket string) (int64, error) {
	var n int64
	err := c.q.QueryRow(ctx, `
		INSERT INTO sequence_counters (prefix, bucket, last_value)
		VALUES ($1, $2, 1)
		ON CONFLICT (prefix, bucket)
		DO UPDATE SET last_value = sequence_counters.last_value + 1,
		              updated_at = CURRENT_TIMESTAMP
		RETURNING last_value
	`, prefix, bucket).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("next sequence value for %s/%s: %w", prefix, bucket, err)
	}
	return n, nil
}

// NextNumberTx formats the next document number for prefix inside tx.
func NextNumberTx(ctx context.Context, tx pgx.Tx, prefix string, at time.Time) (string, error) {
	return sequence.NewGenerator(pgCounter{q: tx}).Next(ctx, prefix, at)
}

// notFound maps pgx.ErrNoRows to ErrNotFound, naming what was looked up.
func notFound(err error, format string, args ...any) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrNotFound)
	}
	return err
}

// uniqueViolation maps a unique constraint failure to ErrDuplicate.
func uniqueViolation(err error, what string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%s: %w", what, ErrDuplicate)
	}
	return err
}

// foreignKeyViolation maps a missing referenced row to ErrNotFound.
func foreignKeyViolation(err error, what string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23503" {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return err
}
