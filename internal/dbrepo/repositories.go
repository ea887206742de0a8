package dbrepo

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBRepository contains all individual repositories
type DBRepository struct {
	EmployeeRepo     *EmployeeRepo
	AttendanceRepo   *AttendanceRepo
	PayrollRepo      *PayrollRepo
	ProductRepo      *ProductRepo
	InventoryRepo    *InventoryRepo
	OrderRepo        *OrderRepo
	DistributorRepo  *DistributorRepo
	VanRepo          *VanRepo
	VerificationRepo *VerificationRepo
	ReportRepo       *ReportRepo
}

// NewDBRepository initializes all repositories with a shared connection pool
func NewDBRepository(db *pgxpool.Pool) *DBRepository {
	return &DBRepository{
		EmployeeRepo:     NewEmployeeRepo(db),
		AttendanceRepo:   NewAttendanceRepo(db),
		PayrollRepo:      NewPayrollRepo(db),
		ProductRepo:      NewProductRepo(db),
		InventoryRepo:    NewInventoryRepo(db),
		OrderRepo:        NewOrderRepo(db),
		DistributorRepo:  NewDistributorRepo(db),
		VanRepo:          NewVanRepo(db),
		VerificationRepo: NewVerificationRepo(db),
		ReportRepo:       NewReportRepo(db),
	}
}
