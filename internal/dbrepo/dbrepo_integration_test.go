package dbrepo

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/projuktisheba/bottling-erp-api/internal/billing"
	"github.com/projuktisheba/bottling-erp-api/internal/driver"
	"github.com/projuktisheba/bottling-erp-api/internal/inventory"
	"github.com/projuktisheba/bottling-erp-api/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testDB connects to TEST_DATABASE_URL, applies the schema and empties every table.
func testDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	pool, err := driver.NewPgxPool(dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	ctx := context.Background()
	require.NoError(t, Migrate(ctx, pool))
	_, err = pool.Exec(ctx, `
		TRUNCATE visitor_passes, production_batches, sequence_counters, inventory_movements,
		         order_items, orders, inventory, products, van_payouts, vans, distributors,
		         salary_payments, salary_advances, attendance, employees
		RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
	return pool
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type fixture struct {
	repo        *DBRepository
	smallBottle *models.Product
	largeBottle *models.Product
	distributor *models.Distributor
	van         *models.Van
}

func seed(t *testing.T, pool *pgxpool.Pool, stock int64) fixture {
	t.Helper()
	ctx := context.Background()
	repo := NewDBRepository(pool)

	f := fixture{repo: repo}
	f.smallBottle = &models.Product{Name: "500ml", SKU: "BTL-500", HSNCode: "2201", BoxSize: 24, UnitPrice: dec("20"), GSTRate: dec("12"), IsActive: true}
	f.largeBottle = &models.Product{Name: "20L Jar", SKU: "JAR-20", HSNCode: "2201", BoxSize: 1, UnitPrice: dec("50"), GSTRate: dec("12"), IsActive: true}
	for _, p := range []*models.Product{f.smallBottle, f.largeBottle} {
		require.NoError(t, repo.ProductRepo.CreateProduct(ctx, p))
		_, err := repo.InventoryRepo.Restock(ctx, p.ID, stock, "opening stock")
		require.NoError(t, err)
	}
	f.distributor = &models.Distributor{Name: "Sai Agencies", Mobile: "9800000001", State: "Karnataka", IsActive: true}
	require.NoError(t, repo.DistributorRepo.CreateDistributor(ctx, f.distributor))
	f.van = &models.Van{RegistrationNo: "ka01 ab 1234", DriverName: "Manju", RatePerKm: dec("15"), IsActive: true}
	require.NoError(t, repo.VanRepo.CreateVan(ctx, f.van))
	return f
}

func (f fixture) newOrder(small, large int64) *models.Order {
	fee := dec("150")
	return &models.Order{
		DistributorID:    f.distributor.ID,
		GSTEnabled:       true,
		TaxRate:          dec("12"),
		DeliveryFeeInput: &fee,
		Items: []*models.OrderItem{
			{ProductID: f.smallBottle.ID, Quantity: small},
			{ProductID: f.largeBottle.ID, Quantity: large},
		},
	}
}

func TestOrderLifecycle(t *testing.T) {
	pool := testDB(t)
	f := seed(t, pool, 100)
	ctx := context.Background()
	orders := f.repo.OrderRepo

	o := f.newOrder(10, 5)
	require.NoError(t, orders.CreateOrder(ctx, o))
	assert.Regexp(t, `^UORN-\d{6}-0001$`, o.OrderNo)
	assert.True(t, o.Subtotal.Equal(dec("450")))
	assert.True(t, o.TaxAmount.Equal(dec("54")))
	assert.True(t, o.TotalPayableAmount.Equal(dec("654")))
	assert.Equal(t, models.ORDER_PENDING_VERIFICATION, o.Status)

	stock, err := f.repo.InventoryRepo.GetStock(ctx, f.smallBottle.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(90), stock.AvailableBoxes)
	assert.Equal(t, int64(10), stock.ReservedBoxes)

	got, err := orders.RecordPayment(ctx, o.ID, dec("300"))
	require.NoError(t, err)
	assert.Equal(t, models.ORDER_PARTIALLY_PAID, got.Status)
	assert.True(t, got.PendingAmount.Equal(dec("354")))

	_, err = orders.RecordPayment(ctx, o.ID, dec("400"))
	assert.ErrorIs(t, err, billing.ErrInvalidInput)

	got, err = orders.DispatchOrder(ctx, o.ID, f.van.ID)
	require.NoError(t, err)
	require.NotNil(t, got.DispatchedAt)
	assert.Equal(t, "KA01AB1234", got.VanRegNo)

	stock, err = f.repo.InventoryRepo.GetStock(ctx, f.smallBottle.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(90), stock.AvailableBoxes)
	assert.Equal(t, int64(0), stock.ReservedBoxes)

	_, err = orders.CancelOrder(ctx, o.ID, "")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	got, err = orders.AssignInvoiceNo(ctx, o.ID)
	require.NoError(t, err)
	require.NotNil(t, got.InvoiceNo)
	assert.Regexp(t, `^TAX-FY\d{4}-00001$`, *got.InvoiceNo)

	again, err := orders.AssignInvoiceNo(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, *got.InvoiceNo, *again.InvoiceNo)

	vl, err := f.repo.VanRepo.GetVanLedger(ctx, f.van.ID)
	require.NoError(t, err)
	assert.True(t, vl.Earned.Equal(dec("150")))
	assert.Equal(t, int64(1), vl.DeliveredOrders)

	// ledgers read every order, past any page size
	for i := 0; i < 3; i++ {
		require.NoError(t, orders.CreateOrder(ctx, f.newOrder(1, 1)))
	}
	dl, err := f.repo.DistributorRepo.GetDistributorLedger(ctx, f.distributor.ID)
	require.NoError(t, err)
	assert.Len(t, dl.Orders, 4)
}

func TestCreateOrder_CatalogueTaxRate(t *testing.T) {
	pool := testDB(t)
	f := seed(t, pool, 100)
	ctx := context.Background()

	o := f.newOrder(10, 5)
	o.TaxRate = decimal.Zero
	require.NoError(t, f.repo.OrderRepo.CreateOrder(ctx, o))
	assert.True(t, o.TaxRate.Equal(dec("12")), o.TaxRate.String())
	assert.True(t, o.TaxAmount.Equal(dec("54")))

	soda := &models.Product{Name: "Soda 300ml", SKU: "SODA-300", HSNCode: "2202", BoxSize: 24, UnitPrice: dec("15"), GSTRate: dec("18"), IsActive: true}
	require.NoError(t, f.repo.ProductRepo.CreateProduct(ctx, soda))
	_, err := f.repo.InventoryRepo.Restock(ctx, soda.ID, 10, "opening stock")
	require.NoError(t, err)

	mixed := f.newOrder(1, 0)
	mixed.TaxRate = decimal.Zero
	mixed.Items = []*models.OrderItem{
		{ProductID: f.smallBottle.ID, Quantity: 1},
		{ProductID: soda.ID, Quantity: 1},
	}
	assert.ErrorIs(t, f.repo.OrderRepo.CreateOrder(ctx, mixed), billing.ErrInvalidInput)

	mixed.TaxRate = dec("18")
	require.NoError(t, f.repo.OrderRepo.CreateOrder(ctx, mixed))
	assert.True(t, mixed.TaxRate.Equal(dec("18")), "an explicit rate wins")
}

func TestDispatchOrder_OtherVanKeepsFee(t *testing.T) {
	pool := testDB(t)
	f := seed(t, pool, 100)
	ctx := context.Background()

	o := f.newOrder(2, 1)
	o.DeliveryFeeInput = nil
	o.VanID = &f.van.ID
	o.DeliveryDistanceKm = dec("10")
	require.NoError(t, f.repo.OrderRepo.CreateOrder(ctx, o))
	require.True(t, o.DeliveryFee.Equal(dec("150")), o.DeliveryFee.String())

	spare := &models.Van{RegistrationNo: "ka02 cd 5678", DriverName: "Raju", RatePerKm: dec("20"), IsActive: true}
	require.NoError(t, f.repo.VanRepo.CreateVan(ctx, spare))

	got, err := f.repo.OrderRepo.DispatchOrder(ctx, o.ID, spare.ID)
	require.NoError(t, err)
	assert.Equal(t, "KA02CD5678", got.VanRegNo)
	assert.True(t, got.DeliveryFee.Equal(dec("150")), "fee billed at order time")
	assert.True(t, got.TotalPayableAmount.Equal(o.TotalPayableAmount))

	vl, err := f.repo.VanRepo.GetVanLedger(ctx, spare.ID)
	require.NoError(t, err)
	assert.True(t, vl.Earned.Equal(dec("150")))

	vl, err = f.repo.VanRepo.GetVanLedger(ctx, f.van.ID)
	require.NoError(t, err)
	assert.True(t, vl.Earned.IsZero())
}

func TestCancelRestoresReservedStock(t *testing.T) {
	pool := testDB(t)
	f := seed(t, pool, 40)
	ctx := context.Background()

	o := f.newOrder(10, 5)
	require.NoError(t, f.repo.OrderRepo.CreateOrder(ctx, o))

	// edit once so the order holds reserve/cancel/reserve movements
	o.Items = []*models.OrderItem{{ProductID: f.smallBottle.ID, Quantity: 12}}
	require.NoError(t, f.repo.OrderRepo.UpdateOrder(ctx, o))

	_, err := f.repo.OrderRepo.RecordPayment(ctx, o.ID, dec("50"))
	require.NoError(t, err)
	got, err := f.repo.OrderRepo.CancelOrder(ctx, o.ID, "distributor closed")
	require.NoError(t, err)
	assert.Equal(t, models.ORDER_CANCELLED, got.Status)

	for _, p := range []*models.Product{f.smallBottle, f.largeBottle} {
		stock, err := f.repo.InventoryRepo.GetStock(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(40), stock.AvailableBoxes)
		assert.Equal(t, int64(0), stock.ReservedBoxes)
	}

	moves, err := f.repo.InventoryRepo.ListMovements(ctx, 0, o.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, inventory.Outstanding(moves))

	refunded, err := f.repo.OrderRepo.RefundOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ORDER_REFUNDED, refunded.Status)
	assert.True(t, refunded.RefundAmount.Equal(dec("50")))

	dl, err := f.repo.DistributorRepo.GetDistributorLedger(ctx, f.distributor.ID)
	require.NoError(t, err)
	assert.True(t, dl.Dues.IsZero())
}

func TestCreateOrder_InsufficientStock(t *testing.T) {
	pool := testDB(t)
	f := seed(t, pool, 5)
	ctx := context.Background()

	err := f.repo.OrderRepo.CreateOrder(ctx, f.newOrder(3, 6))
	require.ErrorIs(t, err, inventory.ErrInsufficientStock)

	stock, err := f.repo.InventoryRepo.GetStock(ctx, f.smallBottle.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), stock.AvailableBoxes, "rolled back reservation leaves stock untouched")

	orders, total, err := f.repo.OrderRepo.ListOrdersPaginated(ctx, models.OrderFilter{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, orders)
}

func TestSequence_ConcurrentUnique(t *testing.T) {
	pool := testDB(t)
	ctx := context.Background()

	const n = 25
	var (
		mu   sync.Mutex
		seen = map[string]bool{}
		wg   sync.WaitGroup
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tx, err := pool.Begin(ctx)
			if !assert.NoError(t, err) {
				return
			}
			defer tx.Rollback(ctx)
			no, err := NextNumberTx(ctx, tx, models.ORDER_PREFIX, time.Now())
			if assert.NoError(t, err) && assert.NoError(t, tx.Commit(ctx)) {
				mu.Lock()
				seen[no] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Len(t, seen, n)
}

func TestMonthlyPayroll(t *testing.T) {
	pool := testDB(t)
	ctx := context.Background()
	repo := NewDBRepository(pool)

	emp := &models.Employee{Name: "Ravi", Role: models.ROLE_WORKER, Mobile: "9800000002", DailyWage: dec("600"), IsActive: true}
	require.NoError(t, repo.EmployeeRepo.CreateEmployee(ctx, emp))

	day := func(d int) time.Time { return time.Date(2025, 10, d, 0, 0, 0, 0, time.UTC) }
	require.NoError(t, repo.AttendanceRepo.BatchUpsertAttendance(ctx, []*models.Attendance{
		{EmployeeID: emp.ID, WorkDate: day(1), Status: models.ATTENDANCE_FULL_DAY},
		{EmployeeID: emp.ID, WorkDate: day(2), Status: models.ATTENDANCE_FULL_DAY},
		{EmployeeID: emp.ID, WorkDate: day(3), Status: models.ATTENDANCE_HALF_DAY},
	}))
	// re-marking a day replaces it
	require.NoError(t, repo.AttendanceRepo.UpsertAttendance(ctx, &models.Attendance{EmployeeID: emp.ID, WorkDate: day(2), Status: models.ATTENDANCE_ABSENT}))

	adv := &models.SalaryAdvance{EmployeeID: emp.ID, Amount: dec("200"), AdvanceDate: day(5)}
	require.NoError(t, repo.PayrollRepo.CreateAdvance(ctx, adv))
	assert.Regexp(t, `^ADV-\d{6}-0001$`, adv.VoucherNo)

	err := repo.AttendanceRepo.UpsertAttendance(ctx, &models.Attendance{EmployeeID: emp.ID + 100, WorkDate: day(4), Status: models.ATTENDANCE_FULL_DAY})
	assert.ErrorIs(t, err, ErrNotFound)
	err = repo.AttendanceRepo.BatchUpsertAttendance(ctx, []*models.Attendance{
		{EmployeeID: emp.ID, WorkDate: day(4), Status: models.ATTENDANCE_FULL_DAY},
		{EmployeeID: emp.ID + 100, WorkDate: day(4), Status: models.ATTENDANCE_FULL_DAY},
	})
	assert.ErrorIs(t, err, ErrNotFound)

	report, err := repo.PayrollRepo.MonthlyPayroll(ctx, "2025-10")
	require.NoError(t, err)
	require.Len(t, report.Lines, 1)
	line := report.Lines[0]
	assert.Equal(t, int64(1), line.FullDays)
	assert.Equal(t, int64(1), line.HalfDays)
	assert.Equal(t, int64(1), line.AbsentDays)
	assert.True(t, line.Gross.Equal(dec("900")))
	assert.True(t, line.NetPayable.Equal(dec("700")))
}
