package dbrepo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/projuktisheba/bottling-erp-api/internal/models"
)

// ============================== Employee Repository ==============================
type EmployeeRepo struct {
	db *pgxpool.Pool
}

func NewEmployeeRepo(db *pgxpool.Pool) *EmployeeRepo {
	return &EmployeeRepo{db: db}
}

const employeeColumns = `id, name, role, COALESCE(email, ''), mobile, daily_wage,
	bank_account_no, bank_ifsc, bank_name, is_active, joining_date, created_at, updated_at`

func scanEmployee(row interface{ Scan(...any) error }, e *models.Employee) error {
	return row.Scan(
		&e.ID, &e.Name, &e.Role, &e.Email, &e.Mobile, &e.DailyWage,
		&e.BankAccountNo, &e.BankIFSC, &e.BankName, &e.IsActive, &e.JoiningDate,
		&e.CreatedAt, &e.UpdatedAt,
	)
}

// CreateEmployee inserts a new employee. e.Password must already be hashed.
func (r *EmployeeRepo) CreateEmployee(ctx context.Context, e *models.Employee) error {
	query := `
		INSERT INTO employees
		(name, role, email, password, mobile, daily_wage, bank_account_no, bank_ifsc, bank_name, is_active, joining_date)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, $8, $9, $10, COALESCE($11::date, CURRENT_DATE))
		RETURNING id, joining_date, created_at, updated_at;
	`
	var joining any
	if !e.JoiningDate.IsZero() {
		joining = e.JoiningDate
	}
	err := r.db.QueryRow(ctx, query,
		e.Name, e.Role, e.Email, e.Password, e.Mobile, e.DailyWage,
		e.BankAccountNo, e.BankIFSC, e.BankName, e.IsActive, joining,
	).Scan(&e.ID, &e.JoiningDate, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert employee: %w", uniqueViolation(err, "employee email"))
	}
	e.Password = ""
	return nil
}

// GetEmployee fetches an employee by ID
func (r *EmployeeRepo) GetEmployee(ctx context.Context, id int64) (*models.Employee, error) {
	e := &models.Employee{}
	err := scanEmployee(r.db.QueryRow(ctx, `SELECT `+employeeColumns+` FROM employees WHERE id=$1`, id), e)
	if err != nil {
		return nil, notFound(err, "employee %d", id)
	}
	return e, nil
}

// GetEmployeeByEmail fetches an employee with the password hash, for login.
func (r *EmployeeRepo) GetEmployeeByEmail(ctx context.Context, email string) (*models.Employee, error) {
	e := &models.Employee{}
	err := r.db.QueryRow(ctx, `
		SELECT id, name, role, COALESCE(email, ''), password, mobile, is_active, created_at, updated_at
		FROM employees
		WHERE LOWER(email) = LOWER($1)
	`, email).Scan(&e.ID, &e.Name, &e.Role, &e.Email, &e.Password, &e.Mobile, &e.IsActive, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, notFound(err, "employee %q", email)
	}
	return e, nil
}

// UpdateEmployee updates general employee details, wage and bank details
func (r *EmployeeRepo) UpdateEmployee(ctx context.Context, e *models.Employee) error {
	query := `
		UPDATE employees
		SET name=$1, role=$2, email=NULLIF($3, ''), mobile=$4, daily_wage=$5,
		    bank_account_no=$6, bank_ifsc=$7, bank_name=$8, is_active=$9,
		    updated_at=CURRENT_TIMESTAMP
		WHERE id=$10
		RETURNING joining_date, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		e.Name, e.Role, e.Email, e.Mobile, e.DailyWage,
		e.BankAccountNo, e.BankIFSC, e.BankName, e.IsActive, e.ID,
	).Scan(&e.JoiningDate, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update employee: %w", notFound(uniqueViolation(err, "employee email"), "employee %d", e.ID))
	}
	return nil
}

// UpdatePassword stores a new password hash
func (r *EmployeeRepo) UpdatePassword(ctx context.Context, id int64, hash string) error {
	tag, err := r.db.Exec(ctx, `UPDATE employees SET password=$1, updated_at=CURRENT_TIMESTAMP WHERE id=$2`, hash, id)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("employee %d: %w", id, ErrNotFound)
	}
	return nil
}

// ListActiveEmployees returns every active employee ordered by name.
func (r *EmployeeRepo) ListActiveEmployees(ctx context.Context) ([]*models.Employee, error) {
	employees, _, err := r.PaginatedEmployeeList(ctx, 1, -1, "", "active")
	return employees, err
}

// PaginatedEmployeeList returns a paginated list of employees with optional role & status filters.
// status is "active", "inactive" or empty. limit -1 disables pagination.
func (r *EmployeeRepo) PaginatedEmployeeList(ctx context.Context, page, limit int, role, status string) ([]*models.Employee, int, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM employees WHERE 1=1`

	args := []any{}
	argIdx := 1

	if role != "" {
		cond := fmt.Sprintf(" AND role = $%d", argIdx)
		query += cond
		countQuery += cond
		args = append(args, role)
		argIdx++
	}
	switch status {
	case "active":
		query += " AND is_active"
		countQuery += " AND is_active"
	case "inactive":
		query += " AND NOT is_active"
		countQuery += " AND NOT is_active"
	}

	var total int
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count employees: %w", err)
	}

	query += " ORDER BY name, id"
	if limit != -1 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
		args = append(args, limit, (page-1)*limit)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list employees: %w", err)
	}
	defer rows.Close()

	employees := []*models.Employee{}
	for rows.Next() {
		var e models.Employee
		if err := scanEmployee(rows, &e); err != nil {
			return nil, 0, fmt.Errorf("scan employee: %w", err)
		}
		employees = append(employees, &e)
	}
	return employees, total, rows.Err()
}
