package dbrepo

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/projuktisheba/bottling-erp-api/internal/models"
)

type ReportRepo struct {
	db *pgxpool.Pool
}

func NewReportRepo(db *pgxpool.Pool) *ReportRepo {
	return &ReportRepo{db: db}
}

// ReportRange returns the inclusive date range of a summary type around refDate.
// Weeks start on Sunday.
func ReportRange(summaryType string, refDate time.Time) (time.Time, time.Time, error) {
	refDate = time.Date(refDate.Year(), refDate.Month(), refDate.Day(), 0, 0, 0, 0, refDate.Location())
	switch summaryType {
	case "daily":
		return refDate, refDate, nil
	case "weekly":
		start := refDate.AddDate(0, 0, -int(refDate.Weekday()))
		return start, start.AddDate(0, 0, 6), nil
	case "monthly":
		start := time.Date(refDate.Year(), refDate.Month(), 1, 0, 0, 0, 0, refDate.Location())
		return start, start.AddDate(0, 1, -1), nil
	case "yearly":
		return time.Date(refDate.Year(), 1, 1, 0, 0, 0, 0, refDate.Location()),
			time.Date(refDate.Year(), 12, 31, 0, 0, 0, 0, refDate.Location()), nil
	case "all":
		return time.Time{}, refDate, nil
	default:
		return time.Time{}, time.Time{}, fmt.Errorf("invalid summary type: %s", summaryType)
	}
}

// GetOrderOverView counts orders by status and totals the money fields for a period.
// Billing and tax totals leave out cancelled and refunded orders.
func (r *ReportRepo) GetOrderOverView(ctx context.Context, summaryType string, refDate time.Time) (*models.OrderOverview, error) {
	startDate, endDate, err := ReportRange(summaryType, refDate)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT
			COUNT(*) FILTER (WHERE status='pending_verification'),
			COUNT(*) FILTER (WHERE status='partially_paid'),
			COUNT(*) FILTER (WHERE status='payment_verified'),
			COUNT(*) FILTER (WHERE status='cancelled'),
			COUNT(*) FILTER (WHERE status='refunded'),
			COUNT(*),

			COALESCE(SUM(total_payable_amount) FILTER (WHERE status NOT IN ('cancelled','refunded')), 0),
			COALESCE(SUM(amount_paid - refund_amount), 0),
			COALESCE(SUM(pending_amount) FILTER (WHERE status NOT IN ('cancelled','refunded')), 0),
			COALESCE(SUM(tax_amount) FILTER (WHERE status NOT IN ('cancelled','refunded')), 0),
			COALESCE(SUM(delivery_fee) FILTER (WHERE status NOT IN ('cancelled','refunded')), 0)
		FROM orders
		WHERE order_date BETWEEN $1 AND $2
	`

	s := models.OrderOverview{StartDate: startDate, EndDate: endDate}
	err = r.db.QueryRow(ctx, query, startDate, endDate).Scan(
		&s.PendingOrders,
		&s.PartiallyPaidOrders,
		&s.VerifiedOrders,
		&s.CancelledOrders,
		&s.RefundedOrders,
		&s.TotalOrders,

		&s.TotalBilled,
		&s.TotalCollected,
		&s.TotalPending,
		&s.TotalTax,
		&s.TotalDeliveryFees,
	)
	if err != nil {
		return nil, fmt.Errorf("order overview: %w", err)
	}
	return &s, nil
}
