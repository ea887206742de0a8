package dbrepo

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/projuktisheba/bottling-erp-api/internal/ledger"
	"github.com/projuktisheba/bottling-erp-api/internal/models"
)

type DistributorRepo struct {
	db *pgxpool.Pool
}

func NewDistributorRepo(db *pgxpool.Pool) *DistributorRepo {
	return &DistributorRepo{db: db}
}

const distributorColumns = `id, name, contact_person, mobile, email, gstin, address, state, is_active, created_at, updated_at`

func scanDistributor(row interface{ Scan(...any) error }, d *models.Distributor) error {
	return row.Scan(&d.ID, &d.Name, &d.ContactPerson, &d.Mobile, &d.Email, &d.GSTIN, &d.Address, &d.State, &d.IsActive, &d.CreatedAt, &d.UpdatedAt)
}

// CreateDistributor inserts a new distributor
func (s *DistributorRepo) CreateDistributor(ctx context.Context, d *models.Distributor) error {
	err := s.db.QueryRow(ctx, `
		INSERT INTO distributors (name, contact_person, mobile, email, gstin, address, state, is_active)
		VALUES ($1, $2, $3, $4, UPPER($5), $6, $7, $8)
		RETURNING id, gstin, created_at, updated_at`,
		d.Name, d.ContactPerson, d.Mobile, d.Email, d.GSTIN, d.Address, d.State, d.IsActive,
	).Scan(&d.ID, &d.GSTIN, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert distributor: %w", err)
	}
	return nil
}

// UpdateDistributor updates distributor details
func (s *DistributorRepo) UpdateDistributor(ctx context.Context, d *models.Distributor) error {
	err := s.db.QueryRow(ctx, `
		UPDATE distributors
		SET name=$1, contact_person=$2, mobile=$3, email=$4, gstin=UPPER($5), address=$6, state=$7, is_active=$8,
		    updated_at=CURRENT_TIMESTAMP
		WHERE id=$9
		RETURNING gstin, created_at, updated_at`,
		d.Name, d.ContactPerson, d.Mobile, d.Email, d.GSTIN, d.Address, d.State, d.IsActive, d.ID,
	).Scan(&d.GSTIN, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update distributor: %w", notFound(err, "distributor %d", d.ID))
	}
	return nil
}

// GetDistributorByID fetches a distributor
func (s *DistributorRepo) GetDistributorByID(ctx context.Context, id int64) (*models.Distributor, error) {
	d := &models.Distributor{}
	if err := scanDistributor(s.db.QueryRow(ctx, `SELECT `+distributorColumns+` FROM distributors WHERE id=$1`, id), d); err != nil {
		return nil, notFound(err, "distributor %d", id)
	}
	return d, nil
}

// ListDistributors filters by name (substring), status ("active"/"inactive") and state.
func (s *DistributorRepo) ListDistributors(ctx context.Context, name, status, state string, page, limit int) ([]*models.Distributor, int, error) {
	conditions := []string{}
	args := []any{}
	argPos := 1

	if name != "" {
		conditions = append(conditions, fmt.Sprintf("name ILIKE '%%' || $%d || '%%'", argPos))
		args = append(args, name)
		argPos++
	}
	switch status {
	case "active":
		conditions = append(conditions, "is_active")
	case "inactive":
		conditions = append(conditions, "NOT is_active")
	}
	if state != "" {
		conditions = append(conditions, fmt.Sprintf("state = $%d", argPos))
		args = append(args, state)
		argPos++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := s.db.QueryRow(ctx, "SELECT COUNT(*) FROM distributors"+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count distributors: %w", err)
	}

	query := `SELECT ` + distributorColumns + ` FROM distributors` + whereClause + " ORDER BY name, id"
	if limit > 0 {
		args = append(args, limit, (page-1)*limit)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argPos, argPos+1)
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list distributors: %w", err)
	}
	defer rows.Close()

	distributors := []*models.Distributor{}
	for rows.Next() {
		d := &models.Distributor{}
		if err := scanDistributor(rows, d); err != nil {
			return nil, 0, fmt.Errorf("scan distributor: %w", err)
		}
		distributors = append(distributors, d)
	}
	return distributors, total, rows.Err()
}

// GetDistributorLedger totals the distributor's orders, oldest first.
func (s *DistributorRepo) GetDistributorLedger(ctx context.Context, id int64) (*models.DistributorLedger, error) {
	d, err := s.GetDistributorByID(ctx, id)
	if err != nil {
		return nil, err
	}
	orders, _, err := NewOrderRepo(s.db).ListOrdersPaginated(ctx, models.OrderFilter{DistributorID: id, Limit: -1, SortByDate: "asc"})
	if err != nil {
		return nil, err
	}
	return ledger.Distributor(d, orders), nil
}
