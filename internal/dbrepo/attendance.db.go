package dbrepo

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/projuktisheba/bottling-erp-api/internal/models"
)

// ============================== Attendance Repository ==============================
type AttendanceRepo struct {
	db *pgxpool.Pool
}

func NewAttendanceRepo(db *pgxpool.Pool) *AttendanceRepo {
	return &AttendanceRepo{db: db}
}

const upsertAttendance = `
	INSERT INTO attendance (employee_id, work_date, status, notes)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (employee_id, work_date)
	DO UPDATE SET status = EXCLUDED.status,
	              notes = EXCLUDED.notes,
	              updated_at = CURRENT_TIMESTAMP
	RETURNING id, created_at, updated_at;
`

// ----------------- SINGLE UPSERT -----------------

// UpsertAttendance records one day for one employee, replacing any earlier mark for that day.
func (a *AttendanceRepo) UpsertAttendance(ctx context.Context, e *models.Attendance) error {
	err := a.db.QueryRow(ctx, upsertAttendance, e.EmployeeID, e.WorkDate, e.Status, e.Notes).
		Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert attendance: %w", foreignKeyViolation(err, fmt.Sprintf("employee %d", e.EmployeeID)))
	}
	e.WorkDateStr = e.WorkDate.Format("2006-01-02")
	return nil
}

// ----------------- BATCH UPSERT -----------------

// BatchUpsertAttendance writes all entries in one transaction.
func (a *AttendanceRepo) BatchUpsertAttendance(ctx context.Context, entries []*models.Attendance) error {
	tx, err := a.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, e := range entries {
		batch.Queue(upsertAttendance, e.EmployeeID, e.WorkDate, e.Status, e.Notes)
	}
	br := tx.SendBatch(ctx, batch)
	for _, e := range entries {
		if err := br.QueryRow().Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt); err != nil {
			br.Close()
			return fmt.Errorf("upsert attendance: %w", foreignKeyViolation(err, fmt.Sprintf("employee %d", e.EmployeeID)))
		}
		e.WorkDateStr = e.WorkDate.Format("2006-01-02")
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("close batch: %w", err)
	}
	return tx.Commit(ctx)
}

// ----------------- CALENDAR -----------------

// GetEmployeeCalendar lists one employee's marks between start (inclusive) and end (exclusive).
func (a *AttendanceRepo) GetEmployeeCalendar(ctx context.Context, employeeID int64, month string, start, end time.Time) (*models.EmployeeCalendar, error) {
	var calendar models.EmployeeCalendar
	err := a.db.QueryRow(ctx, `SELECT id, name FROM employees WHERE id=$1`, employeeID).
		Scan(&calendar.EmployeeID, &calendar.EmployeeName)
	if err != nil {
		return nil, notFound(err, "employee %d", employeeID)
	}
	calendar.Month = month

	records, err := a.listAttendance(ctx, `
		SELECT a.id, a.employee_id, e.name, a.work_date, a.status, a.notes, a.created_at, a.updated_at
		FROM attendance a
		JOIN employees e ON e.id = a.employee_id
		WHERE a.employee_id = $1 AND a.work_date >= $2 AND a.work_date < $3
		ORDER BY a.work_date
	`, employeeID, start, end)
	if err != nil {
		return nil, err
	}
	calendar.Attendance = records
	return &calendar, nil
}

// ListAttendanceBetween returns every mark in [start, end).
func (a *AttendanceRepo) ListAttendanceBetween(ctx context.Context, start, end time.Time) ([]*models.Attendance, error) {
	return a.listAttendance(ctx, `
		SELECT a.id, a.employee_id, e.name, a.work_date, a.status, a.notes, a.created_at, a.updated_at
		FROM attendance a
		JOIN employees e ON e.id = a.employee_id
		WHERE a.work_date >= $1 AND a.work_date < $2
		ORDER BY a.work_date, e.name
	`, start, end)
}

func (a *AttendanceRepo) listAttendance(ctx context.Context, query string, args ...any) ([]*models.Attendance, error) {
	rows, err := a.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	defer rows.Close()

	records := []*models.Attendance{}
	for rows.Next() {
		var r models.Attendance
		err := rows.Scan(&r.ID, &r.EmployeeID, &r.EmployeeName, &r.WorkDate, &r.Status, &r.Notes, &r.CreatedAt, &r.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan attendance: %w", err)
		}
		r.WorkDateStr = r.WorkDate.Format("2006-01-02")
		records = append(records, &r)
	}
	return records, rows.Err()
}
