package dbrepo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/projuktisheba/bottling-erp-api/internal/models"
)

type VerificationRepo struct {
	db *pgxpool.Pool
}

func NewVerificationRepo(db *pgxpool.Pool) *VerificationRepo {
	return &VerificationRepo{db: db}
}

// ============================== PRODUCTION BATCHES ==============================

const batchSelect = `
	SELECT b.id, b.batch_code::text, b.product_id, p.name, b.manufactured_on, b.expires_on, b.boxes, b.created_at
	FROM production_batches b
	JOIN products p ON p.id = b.product_id
`

func scanBatch(row interface{ Scan(...any) error }, b *models.ProductionBatch) error {
	return row.Scan(&b.ID, &b.BatchCode, &b.ProductID, &b.ProductName, &b.ManufacturedOn, &b.ExpiresOn, &b.Boxes, &b.CreatedAt)
}

// CreateBatch registers a production batch under a fresh random code.
func (r *VerificationRepo) CreateBatch(ctx context.Context, b *models.ProductionBatch) error {
	b.BatchCode = uuid.NewString()
	err := r.db.QueryRow(ctx, `
		INSERT INTO production_batches (batch_code, product_id, manufactured_on, expires_on, boxes)
		VALUES ($1::uuid, $2, $3, $4, $5)
		RETURNING id, created_at
	`, b.BatchCode, b.ProductID, b.ManufacturedOn, b.ExpiresOn, b.Boxes).Scan(&b.ID, &b.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert production batch: %w", err)
	}
	return nil
}

// GetBatchByCode looks a batch up by the code printed in its QR.
func (r *VerificationRepo) GetBatchByCode(ctx context.Context, code string) (*models.ProductionBatch, error) {
	if _, err := uuid.Parse(code); err != nil {
		return nil, fmt.Errorf("batch %q: %w", code, ErrNotFound)
	}
	b := &models.ProductionBatch{}
	if err := scanBatch(r.db.QueryRow(ctx, batchSelect+` WHERE b.batch_code = $1::uuid`, code), b); err != nil {
		return nil, notFound(err, "batch %q", code)
	}
	return b, nil
}

// ListBatches lists batches newest first; productID 0 means all products.
func (r *VerificationRepo) ListBatches(ctx context.Context, productID int64) ([]*models.ProductionBatch, error) {
	rows, err := r.db.Query(ctx, batchSelect+`
		WHERE ($1::bigint = 0 OR b.product_id = $1)
		ORDER BY b.manufactured_on DESC, b.id DESC
	`, productID)
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	defer rows.Close()

	out := []*models.ProductionBatch{}
	for rows.Next() {
		b := &models.ProductionBatch{}
		if err := scanBatch(rows, b); err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// ============================== VISITOR PASSES ==============================

const passColumns = `id, token::text, holder_name, holder_mobile, purpose, valid_from, valid_until, revoked, COALESCE(issued_by, 0), created_at`

func scanPass(row interface{ Scan(...any) error }, p *models.VisitorPass) error {
	return row.Scan(&p.ID, &p.Token, &p.HolderName, &p.HolderMobile, &p.Purpose, &p.ValidFrom, &p.ValidUntil, &p.Revoked, &p.IssuedBy, &p.CreatedAt)
}

// IssuePass stores a pass under a fresh random token.
func (r *VerificationRepo) IssuePass(ctx context.Context, p *models.VisitorPass) error {
	p.Token = uuid.NewString()
	var issuedBy *int64
	if p.IssuedBy > 0 {
		issuedBy = &p.IssuedBy
	}
	err := r.db.QueryRow(ctx, `
		INSERT INTO visitor_passes (token, holder_name, holder_mobile, purpose, valid_from, valid_until, issued_by)
		VALUES ($1::uuid, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`, p.Token, p.HolderName, p.HolderMobile, p.Purpose, p.ValidFrom, p.ValidUntil, issuedBy).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert visitor pass: %w", err)
	}
	return nil
}

// GetPassByToken looks a pass up by its token.
func (r *VerificationRepo) GetPassByToken(ctx context.Context, token string) (*models.VisitorPass, error) {
	if _, err := uuid.Parse(token); err != nil {
		return nil, fmt.Errorf("pass %q: %w", token, ErrNotFound)
	}
	p := &models.VisitorPass{}
	if err := scanPass(r.db.QueryRow(ctx, `SELECT `+passColumns+` FROM visitor_passes WHERE token = $1::uuid`, token), p); err != nil {
		return nil, notFound(err, "pass %q", token)
	}
	return p, nil
}

// RevokePass marks a pass revoked. Revoking twice is not an error.
func (r *VerificationRepo) RevokePass(ctx context.Context, id int64) (*models.VisitorPass, error) {
	p := &models.VisitorPass{}
	err := scanPass(r.db.QueryRow(ctx, `UPDATE visitor_passes SET revoked = TRUE WHERE id = $1 RETURNING `+passColumns, id), p)
	if err != nil {
		return nil, notFound(err, "pass %d", id)
	}
	return p, nil
}

// ListPasses lists passes newest first; activeOnly hides revoked and lapsed ones.
func (r *VerificationRepo) ListPasses(ctx context.Context, activeOnly bool) ([]*models.VisitorPass, error) {
	query := `SELECT ` + passColumns + ` FROM visitor_passes`
	if activeOnly {
		query += ` WHERE NOT revoked AND valid_until > CURRENT_TIMESTAMP`
	}
	query += ` ORDER BY valid_from DESC, id DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list passes: %w", err)
	}
	defer rows.Close()

	out := []*models.VisitorPass{}
	for rows.Next() {
		p := &models.VisitorPass{}
		if err := scanPass(rows, p); err != nil {
			return nil, fmt.Errorf("scan pass: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
