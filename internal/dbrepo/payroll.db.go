package dbrepo

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/projuktisheba/bottling-erp-api/internal/models"
	"github.com/projuktisheba/bottling-erp-api/internal/payroll"
)

// ============================== Payroll Repository ==============================
type PayrollRepo struct {
	db         *pgxpool.Pool
	employees  *EmployeeRepo
	attendance *AttendanceRepo
}

func NewPayrollRepo(db *pgxpool.Pool) *PayrollRepo {
	return &PayrollRepo{
		db:         db,
		employees:  NewEmployeeRepo(db),
		attendance: NewAttendanceRepo(db),
	}
}

// checkActiveEmployeeTx locks the employee row and returns its name.
func checkActiveEmployeeTx(ctx context.Context, tx pgx.Tx, employeeID int64) (string, error) {
	var name string
	var active bool
	err := tx.QueryRow(ctx, `SELECT name, is_active FROM employees WHERE id=$1 FOR SHARE`, employeeID).Scan(&name, &active)
	if err != nil {
		return "", notFound(err, "employee %d", employeeID)
	}
	if !active {
		return "", fmt.Errorf("employee %d: %w", employeeID, ErrInactive)
	}
	return name, nil
}

// CreateAdvance records a salary advance under a new ADV voucher.
func (r *PayrollRepo) CreateAdvance(ctx context.Context, adv *models.SalaryAdvance) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if adv.EmployeeName, err = checkActiveEmployeeTx(ctx, tx, adv.EmployeeID); err != nil {
		return err
	}
	if adv.VoucherNo, err = NextNumberTx(ctx, tx, models.ADVANCE_PREFIX, time.Now()); err != nil {
		return fmt.Errorf("advance voucher: %w", err)
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO salary_advances (voucher_no, employee_id, amount, advance_date, notes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, adv.VoucherNo, adv.EmployeeID, adv.Amount, adv.AdvanceDate, adv.Notes).Scan(&adv.ID, &adv.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert salary advance: %w", err)
	}
	return tx.Commit(ctx)
}

// CreatePayment records a salary payment under a new PAY voucher.
func (r *PayrollRepo) CreatePayment(ctx context.Context, p *models.SalaryPayment) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if p.EmployeeName, err = checkActiveEmployeeTx(ctx, tx, p.EmployeeID); err != nil {
		return err
	}
	if p.VoucherNo, err = NextNumberTx(ctx, tx, models.SALARY_PREFIX, time.Now()); err != nil {
		return fmt.Errorf("salary voucher: %w", err)
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO salary_payments (voucher_no, employee_id, amount, payment_date, notes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, p.VoucherNo, p.EmployeeID, p.Amount, p.PaymentDate, p.Notes).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert salary payment: %w", err)
	}
	return tx.Commit(ctx)
}

// ListAdvances returns advances dated in [start, end); employeeID 0 means everyone.
func (r *PayrollRepo) ListAdvances(ctx context.Context, employeeID int64, start, end time.Time) ([]*models.SalaryAdvance, error) {
	rows, err := r.db.Query(ctx, `
		SELECT s.id, s.voucher_no, s.employee_id, e.name, s.amount, s.advance_date, s.notes, s.created_at
		FROM salary_advances s
		JOIN employees e ON e.id = s.employee_id
		WHERE s.advance_date >= $1 AND s.advance_date < $2
		  AND ($3::bigint = 0 OR s.employee_id = $3)
		ORDER BY s.advance_date, s.id
	`, start, end, employeeID)
	if err != nil {
		return nil, fmt.Errorf("list salary advances: %w", err)
	}
	defer rows.Close()

	out := []*models.SalaryAdvance{}
	for rows.Next() {
		var a models.SalaryAdvance
		if err := rows.Scan(&a.ID, &a.VoucherNo, &a.EmployeeID, &a.EmployeeName, &a.Amount, &a.AdvanceDate, &a.Notes, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan salary advance: %w", err)
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}

// ListPayments returns salary payments dated in [start, end); employeeID 0 means everyone.
func (r *PayrollRepo) ListPayments(ctx context.Context, employeeID int64, start, end time.Time) ([]*models.SalaryPayment, error) {
	rows, err := r.db.Query(ctx, `
		SELECT s.id, s.voucher_no, s.employee_id, e.name, s.amount, s.payment_date, s.notes, s.created_at
		FROM salary_payments s
		JOIN employees e ON e.id = s.employee_id
		WHERE s.payment_date >= $1 AND s.payment_date < $2
		  AND ($3::bigint = 0 OR s.employee_id = $3)
		ORDER BY s.payment_date, s.id
	`, start, end, employeeID)
	if err != nil {
		return nil, fmt.Errorf("list salary payments: %w", err)
	}
	defer rows.Close()

	out := []*models.SalaryPayment{}
	for rows.Next() {
		var p models.SalaryPayment
		if err := rows.Scan(&p.ID, &p.VoucherNo, &p.EmployeeID, &p.EmployeeName, &p.Amount, &p.PaymentDate, &p.Notes, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan salary payment: %w", err)
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}

// MonthlyPayroll fetches the month's rows and folds them with payroll.Aggregate.
func (r *PayrollRepo) MonthlyPayroll(ctx context.Context, month string) (*models.PayrollReport, error) {
	start, end, err := payroll.MonthRange(month)
	if err != nil {
		return nil, err
	}

	var in payroll.Input
	if in.Employees, err = r.employees.ListActiveEmployees(ctx); err != nil {
		return nil, err
	}
	if in.Attendance, err = r.attendance.ListAttendanceBetween(ctx, start, end); err != nil {
		return nil, err
	}
	if in.Advances, err = r.ListAdvances(ctx, 0, start, end); err != nil {
		return nil, err
	}
	if in.Payments, err = r.ListPayments(ctx, 0, start, end); err != nil {
		return nil, err
	}
	return payroll.Aggregate(month, in), nil
}
