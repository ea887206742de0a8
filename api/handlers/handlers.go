package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/projuktisheba/bottling-erp-api/internal/billing"
	"github.com/projuktisheba/bottling-erp-api/internal/dbrepo"
	"github.com/projuktisheba/bottling-erp-api/internal/inventory"
	"github.com/projuktisheba/bottling-erp-api/internal/invoice"
	"github.com/projuktisheba/bottling-erp-api/internal/models"
	"github.com/projuktisheba/bottling-erp-api/internal/payroll"
	"github.com/projuktisheba/bottling-erp-api/internal/sequence"
	"github.com/projuktisheba/bottling-erp-api/internal/utils"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type HandlerRepo struct {
	Employee     *EmployeeHandler
	Auth         *AuthHandler
	Attendance   *AttendanceHandler
	Payroll      *PayrollHandler
	Product      *ProductHandler
	Inventory    *InventoryHandler
	Order        *OrderHandler
	Distributor  *DistributorHandler
	Van          *VanHandler
	Verification *VerificationHandler
	Report       *ReportHandler
}

func NewHandlerRepo(db *dbrepo.DBRepository, cfg models.Config, logger *zap.Logger) *HandlerRepo {
	return &HandlerRepo{
		Employee:     NewEmployeeHandler(db.EmployeeRepo, logger.Named("employee")),
		Auth:         NewAuthHandler(db.EmployeeRepo, cfg.JWT, logger.Named("auth")),
		Attendance:   NewAttendanceHandler(db.AttendanceRepo, logger.Named("attendance")),
		Payroll:      NewPayrollHandler(db.PayrollRepo, logger.Named("payroll")),
		Product:      NewProductHandler(db.ProductRepo, logger.Named("product")),
		Inventory:    NewInventoryHandler(db.InventoryRepo, logger.Named("inventory")),
		Order:        NewOrderHandler(db.OrderRepo, cfg.Company, logger.Named("order")),
		Distributor:  NewDistributorHandler(db.DistributorRepo, logger.Named("distributor")),
		Van:          NewVanHandler(db.VanRepo, logger.Named("van")),
		Verification: NewVerificationHandler(db.VerificationRepo, cfg.PublicBaseURL, logger.Named("verification")),
		Report:       NewReportHandler(db.ReportRepo, logger.Named("report")),
	}
}

// ============================== Stores ==============================

type EmployeeStore interface {
	CreateEmployee(ctx context.Context, e *models.Employee) error
	GetEmployee(ctx context.Context, id int64) (*models.Employee, error)
	UpdateEmployee(ctx context.Context, e *models.Employee) error
	UpdatePassword(ctx context.Context, id int64, hash string) error
	PaginatedEmployeeList(ctx context.Context, page, limit int, role, status string) ([]*models.Employee, int, error)
}

type CredentialStore interface {
	GetEmployeeByEmail(ctx context.Context, email string) (*models.Employee, error)
}

type AttendanceStore interface {
	UpsertAttendance(ctx context.Context, e *models.Attendance) error
	BatchUpsertAttendance(ctx context.Context, entries []*models.Attendance) error
	GetEmployeeCalendar(ctx context.Context, employeeID int64, month string, start, end time.Time) (*models.EmployeeCalendar, error)
}

type PayrollStore interface {
	CreateAdvance(ctx context.Context, adv *models.SalaryAdvance) error
	CreatePayment(ctx context.Context, p *models.SalaryPayment) error
	ListAdvances(ctx context.Context, employeeID int64, start, end time.Time) ([]*models.SalaryAdvance, error)
	ListPayments(ctx context.Context, employeeID int64, start, end time.Time) ([]*models.SalaryPayment, error)
	MonthlyPayroll(ctx context.Context, month string) (*models.PayrollReport, error)
}

type ProductStore interface {
	CreateProduct(ctx context.Context, p *models.Product) error
	GetProduct(ctx context.Context, id int64) (*models.Product, error)
	UpdateProduct(ctx context.Context, p *models.Product) error
	GetProducts(ctx context.Context, activeOnly bool) ([]*models.Product, error)
}

type InventoryStore interface {
	GetStock(ctx context.Context, productID int64) (*models.InventoryRecord, error)
	ListStock(ctx context.Context) ([]*models.InventoryRecord, error)
	Restock(ctx context.Context, productID, qty int64, notes string) (*models.InventoryRecord, error)
	ListMovements(ctx context.Context, productID, orderID int64, limit int) ([]*models.InventoryMovement, error)
}

type OrderStore interface {
	CreateOrder(ctx context.Context, o *models.Order) error
	UpdateOrder(ctx context.Context, o *models.Order) error
	RecordPayment(ctx context.Context, orderID int64, amount decimal.Decimal) (*models.Order, error)
	DispatchOrder(ctx context.Context, orderID, vanID int64) (*models.Order, error)
	CancelOrder(ctx context.Context, orderID int64, reason string) (*models.Order, error)
	RefundOrder(ctx context.Context, orderID int64) (*models.Order, error)
	AssignInvoiceNo(ctx context.Context, orderID int64) (*models.Order, error)
	GetOrderDetailsByID(ctx context.Context, orderID int64) (*models.Order, error)
	ListOrdersPaginated(ctx context.Context, f models.OrderFilter) ([]*models.Order, int, error)
}

type DistributorStore interface {
	CreateDistributor(ctx context.Context, d *models.Distributor) error
	UpdateDistributor(ctx context.Context, d *models.Distributor) error
	GetDistributorByID(ctx context.Context, id int64) (*models.Distributor, error)
	ListDistributors(ctx context.Context, name, status, state string, page, limit int) ([]*models.Distributor, int, error)
	GetDistributorLedger(ctx context.Context, id int64) (*models.DistributorLedger, error)
}

type VanStore interface {
	CreateVan(ctx context.Context, v *models.Van) error
	UpdateVan(ctx context.Context, v *models.Van) error
	GetVanByID(ctx context.Context, id int64) (*models.Van, error)
	ListVans(ctx context.Context, status string) ([]*models.Van, error)
	CreatePayout(ctx context.Context, p *models.VanPayout) error
	ListPayouts(ctx context.Context, vanID int64) ([]*models.VanPayout, error)
	GetVanLedger(ctx context.Context, vanID int64) (*models.VanLedger, error)
}

type VerificationStore interface {
	CreateBatch(ctx context.Context, b *models.ProductionBatch) error
	GetBatchByCode(ctx context.Context, code string) (*models.ProductionBatch, error)
	ListBatches(ctx context.Context, productID int64) ([]*models.ProductionBatch, error)
	IssuePass(ctx context.Context, p *models.VisitorPass) error
	GetPassByToken(ctx context.Context, token string) (*models.VisitorPass, error)
	RevokePass(ctx context.Context, id int64) (*models.VisitorPass, error)
	ListPasses(ctx context.Context, activeOnly bool) ([]*models.VisitorPass, error)
}

type ReportStore interface {
	GetOrderOverView(ctx context.Context, summaryType string, refDate time.Time) (*models.OrderOverview, error)
}

// ============================== Errors ==============================

var clientErrors = []error{
	billing.ErrInvalidInput,
	inventory.ErrInsufficientStock,
	inventory.ErrInvalidQuantity,
	inventory.ErrOverRelease,
	inventory.ErrUnknownMovement,
	dbrepo.ErrInvalidStatus,
	dbrepo.ErrInactive,
	payroll.ErrInvalidMonth,
	sequence.ErrEmptyPrefix,
	invoice.ErrNotInvoiced,
}

// writeError maps a store error to its status code and logs it under tag.
// Client mistakes log at warn level; everything else is a 500.
func writeError(w http.ResponseWriter, log *zap.Logger, tag string, err error) {
	var verr *utils.ValidationError
	switch {
	case errors.Is(err, dbrepo.ErrNotFound):
		log.Warn(tag, zap.Error(err))
		utils.NotFound(w, err)
	case errors.Is(err, dbrepo.ErrDuplicate):
		log.Warn(tag, zap.Error(err))
		utils.ErrorJSON(w, http.StatusConflict, err)
	case errors.As(err, &verr) || isClientError(err):
		log.Warn(tag, zap.Error(err))
		utils.BadRequest(w, err)
	default:
		log.Error(tag, zap.Error(err))
		utils.ServerError(w, err)
	}
}

func isClientError(err error) bool {
	for _, target := range clientErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// badRequest logs and answers a malformed request.
func badRequest(w http.ResponseWriter, log *zap.Logger, tag string, err error) {
	log.Warn(tag, zap.Error(err))
	utils.BadRequest(w, err)
}
