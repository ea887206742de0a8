package dbrepo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/projuktisheba/bottling-erp-api/internal/ledger"
	"github.com/projuktisheba/bottling-erp-api/internal/models"
)

type VanRepo struct {
	db *pgxpool.Pool
}

func NewVanRepo(db *pgxpool.Pool) *VanRepo {
	return &VanRepo{db: db}
}

const vanColumns = `id, registration_no, driver_name, driver_mobile, rate_per_km, is_active, created_at, updated_at`

func scanVan(row interface{ Scan(...any) error }, v *models.Van) error {
	return row.Scan(&v.ID, &v.RegistrationNo, &v.DriverName, &v.DriverMobile, &v.RatePerKm, &v.IsActive, &v.CreatedAt, &v.UpdatedAt)
}

// CreateVan inserts a new van. Registration numbers are stored upper-case without spaces.
func (r *VanRepo) CreateVan(ctx context.Context, v *models.Van) error {
	v.RegistrationNo = normalizeRegNo(v.RegistrationNo)
	err := r.db.QueryRow(ctx, `
		INSERT INTO vans (registration_no, driver_name, driver_mobile, rate_per_km, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`,
		v.RegistrationNo, v.DriverName, v.DriverMobile, v.RatePerKm, v.IsActive,
	).Scan(&v.ID, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert van: %w", uniqueViolation(err, "van "+v.RegistrationNo))
	}
	return nil
}

// UpdateVan updates van and driver details
func (r *VanRepo) UpdateVan(ctx context.Context, v *models.Van) error {
	v.RegistrationNo = normalizeRegNo(v.RegistrationNo)
	err := r.db.QueryRow(ctx, `
		UPDATE vans
		SET registration_no=$1, driver_name=$2, driver_mobile=$3, rate_per_km=$4, is_active=$5,
		    updated_at=CURRENT_TIMESTAMP
		WHERE id=$6
		RETURNING created_at, updated_at`,
		v.RegistrationNo, v.DriverName, v.DriverMobile, v.RatePerKm, v.IsActive, v.ID,
	).Scan(&v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update van: %w", notFound(uniqueViolation(err, "van "+v.RegistrationNo), "van %d", v.ID))
	}
	return nil
}

func (r *VanRepo) GetVanByID(ctx context.Context, id int64) (*models.Van, error) {
	v := &models.Van{}
	if err := scanVan(r.db.QueryRow(ctx, `SELECT `+vanColumns+` FROM vans WHERE id=$1`, id), v); err != nil {
		return nil, notFound(err, "van %d", id)
	}
	return v, nil
}

// ListVans lists vans; status is "active", "inactive" or empty.
func (r *VanRepo) ListVans(ctx context.Context, status string) ([]*models.Van, error) {
	query := `SELECT ` + vanColumns + ` FROM vans`
	switch status {
	case "active":
		query += " WHERE is_active"
	case "inactive":
		query += " WHERE NOT is_active"
	}
	query += " ORDER BY registration_no"

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list vans: %w", err)
	}
	defer rows.Close()

	vans := []*models.Van{}
	for rows.Next() {
		v := &models.Van{}
		if err := scanVan(rows, v); err != nil {
			return nil, fmt.Errorf("scan van: %w", err)
		}
		vans = append(vans, v)
	}
	return vans, rows.Err()
}

// CreatePayout records money paid to a van under a new VPO voucher.
func (r *VanRepo) CreatePayout(ctx context.Context, p *models.VanPayout) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var exists bool
	if err := tx.QueryRow(ctx, `SELECT TRUE FROM vans WHERE id=$1 FOR SHARE`, p.VanID).Scan(&exists); err != nil {
		return notFound(err, "van %d", p.VanID)
	}
	if p.VoucherNo, err = NextNumberTx(ctx, tx, models.VAN_PAYOUT_PREFIX, time.Now()); err != nil {
		return fmt.Errorf("payout voucher: %w", err)
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO van_payouts (voucher_no, van_id, amount, payout_date, notes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, p.VoucherNo, p.VanID, p.Amount, p.PayoutDate, p.Notes).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert van payout: %w", err)
	}
	return tx.Commit(ctx)
}

// ListPayouts returns a van's payouts oldest first
func (r *VanRepo) ListPayouts(ctx context.Context, vanID int64) ([]*models.VanPayout, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, voucher_no, van_id, amount, payout_date, notes, created_at
		FROM van_payouts
		WHERE van_id = $1
		ORDER BY payout_date, id
	`, vanID)
	if err != nil {
		return nil, fmt.Errorf("list van payouts: %w", err)
	}
	defer rows.Close()

	payouts := []*models.VanPayout{}
	for rows.Next() {
		p := &models.VanPayout{}
		if err := rows.Scan(&p.ID, &p.VoucherNo, &p.VanID, &p.Amount, &p.PayoutDate, &p.Notes, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan van payout: %w", err)
		}
		payouts = append(payouts, p)
	}
	return payouts, rows.Err()
}

// GetVanLedger credits delivery fees of the van's dispatched orders against its payouts.
func (r *VanRepo) GetVanLedger(ctx context.Context, vanID int64) (*models.VanLedger, error) {
	v, err := r.GetVanByID(ctx, vanID)
	if err != nil {
		return nil, err
	}
	orders, _, err := NewOrderRepo(r.db).ListOrdersPaginated(ctx, models.OrderFilter{VanID: vanID, Limit: -1, SortByDate: "asc"})
	if err != nil {
		return nil, err
	}
	payouts, err := r.ListPayouts(ctx, vanID)
	if err != nil {
		return nil, err
	}
	return ledger.Van(v, orders, payouts), nil
}

func normalizeRegNo(s string) string {
	return strings.ToUpper(strings.Join(strings.Fields(s), ""))
}
