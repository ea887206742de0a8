package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/projuktisheba/bottling-erp-api/internal/models"
	"github.com/projuktisheba/bottling-erp-api/internal/utils"
)

func (app *application) routes() http.Handler {
	mux := chi.NewRouter()

	// --- Global middlewares ---
	mux.Use(middleware.RequestID)
	mux.Use(middleware.Recoverer)
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins:   app.config.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	mux.Use(app.Logger)

	// --- Health check endpoint ---
	mux.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		utils.WriteJSON(w, http.StatusOK, "Live")
	})

	mux.Post("/api/v1/login", app.Handlers.Auth.Signin)

	// --- Public verification (scanned QR codes) ---
	mux.Route("/api/v1/public", func(r chi.Router) {
		// Example: GET /api/v1/public/verify/batch/2f1c...e9
		r.Get("/verify/batch/{code}", app.Handlers.Verification.VerifyBatch)
		// Example: GET /api/v1/public/verify/pass/7a0d...41
		r.Get("/verify/pass/{token}", app.Handlers.Verification.VerifyPass)
	})

	mux.Route("/api/v1", func(r chi.Router) {
		r.Use(app.RequireAuth)

		// --- HR (Employee) Routes ---
		r.Route("/hr", func(r chi.Router) {
			r.Use(RequireRole(models.ROLE_ADMIN, models.ROLE_MANAGER))

			// Example: GET /api/v1/hr/employee?id=5
			r.Get("/employee", app.Handlers.Employee.GetEmployee)
			// Body (JSON): { employee }
			r.Post("/employee", app.Handlers.Employee.AddEmployee)
			r.Put("/employee", app.Handlers.Employee.UpdateEmployee)
			// Body (JSON): { id, password }
			r.Put("/employee/password", app.Handlers.Employee.UpdatePassword)
			// Example: GET /api/v1/hr/employees?page=1&limit=20&role=driver&status=active
			r.Get("/employees", app.Handlers.Employee.GetEmployees)

			// Body (JSON): { employee_id, work_date, status, notes }
			r.Post("/attendance", app.Handlers.Attendance.MarkAttendance)
			// Body (JSON): [ { employee_id, work_date, status, notes }, ... ]
			r.Post("/attendance/batch", app.Handlers.Attendance.BatchMarkAttendance)
			// Example: GET /api/v1/hr/attendance/calendar?employee_id=5&month=2025-10
			r.Get("/attendance/calendar", app.Handlers.Attendance.GetEmployeeCalendar)

			// Body (JSON): { employee_id, amount, date, notes }
			r.Post("/advances", app.Handlers.Payroll.CreateAdvance)
			// Example: GET /api/v1/hr/advances?employee_id=5&month=2025-10
			r.Get("/advances", app.Handlers.Payroll.ListAdvances)
			r.Post("/salary-payments", app.Handlers.Payroll.CreatePayment)
			r.Get("/salary-payments", app.Handlers.Payroll.ListPayments)

			// Example: GET /api/v1/hr/payroll?month=2025-10
			r.Get("/payroll", app.Handlers.Payroll.GetMonthlyPayroll)
			r.Get("/payroll/export", app.Handlers.Payroll.ExportMonthlyPayroll)
		})

		// --- Products & inventory ---
		r.Route("/products", func(r chi.Router) {
			// Example: GET /api/v1/products?active=true
			r.Get("/", app.Handlers.Product.GetProductsHandler)
			r.Get("/product", app.Handlers.Product.GetProduct)
			r.Post("/product", app.Handlers.Product.AddProduct)
			r.Put("/product", app.Handlers.Product.UpdateProduct)
		})
		r.Route("/inventory", func(r chi.Router) {
			// Example: GET /api/v1/inventory/stock?product_id=2
			r.Get("/stock", app.Handlers.Inventory.GetStock)
			// Body (JSON): { product_id, quantity, notes }
			r.Post("/restock", app.Handlers.Inventory.Restock)
			// Example: GET /api/v1/inventory/movements?order_id=14
			r.Get("/movements", app.Handlers.Inventory.GetMovements)
		})

		// --- Orders ---
		r.Route("/orders", func(r chi.Router) {
			// Example: GET /api/v1/orders?page=1&limit=20&status=partially_paid&distributor_id=3
			r.Get("/", app.Handlers.Order.ListOrdersPaginatedHandler)
			// Example: GET /api/v1/orders/order?id=14
			r.Get("/order", app.Handlers.Order.GetOrderDetailsByID)
			r.Post("/order", app.Handlers.Order.AddOrder)
			r.Put("/order", app.Handlers.Order.UpdateOrder)
			// Body (JSON): { amount }
			r.Post("/payment", app.Handlers.Order.RecordPayment)
			// Body (JSON): { van_id }
			r.Post("/dispatch", app.Handlers.Order.DispatchOrder)
			// Body (JSON, optional): { reason }
			r.Post("/cancel", app.Handlers.Order.CancelOrder)
			r.Post("/refund", app.Handlers.Order.RefundOrder)
			r.Post("/invoice", app.Handlers.Order.GenerateInvoice)
			// Example: GET /api/v1/orders/invoice/pdf?id=14
			r.Get("/invoice/pdf", app.Handlers.Order.DownloadInvoice)
		})

		// --- Distributors ---
		r.Route("/distributors", func(r chi.Router) {
			// Example: GET /api/v1/distributors?name=aqua&status=active&state=Karnataka
			r.Get("/", app.Handlers.Distributor.GetDistributors)
			r.Get("/distributor", app.Handlers.Distributor.GetDistributor)
			r.Post("/distributor", app.Handlers.Distributor.AddDistributor)
			r.Put("/distributor", app.Handlers.Distributor.UpdateDistributor)
			// Example: GET /api/v1/distributors/ledger?id=3
			r.Get("/ledger", app.Handlers.Distributor.GetDistributorLedger)
		})

		// --- Vans ---
		r.Route("/vans", func(r chi.Router) {
			r.Get("/", app.Handlers.Van.GetVans)
			r.Get("/van", app.Handlers.Van.GetVan)
			r.Post("/van", app.Handlers.Van.AddVan)
			r.Put("/van", app.Handlers.Van.UpdateVan)
			// Body (JSON): { van_id, amount, date, notes }
			r.Post("/payouts", app.Handlers.Van.AddPayout)
			// Example: GET /api/v1/vans/payouts?van_id=2
			r.Get("/payouts", app.Handlers.Van.GetPayouts)
			r.Get("/ledger", app.Handlers.Van.GetVanLedger)
			r.Get("/ledger/export", app.Handlers.Van.ExportVanLedger)
		})

		// --- Verification (back office) ---
		r.Route("/verification", func(r chi.Router) {
			// Body (JSON): { product_id, manufactured_on, expires_on, boxes }
			r.Post("/batches", app.Handlers.Verification.CreateBatch)
			r.Get("/batches", app.Handlers.Verification.GetBatches)
			// Example: GET /api/v1/verification/batches/qr?code=2f1c...e9&size=512
			r.Get("/batches/qr", app.Handlers.Verification.BatchQRCode)

			// Body (JSON): { holder_name, holder_mobile, purpose, valid_from, valid_until }
			r.Post("/passes", app.Handlers.Verification.IssuePass)
			r.Get("/passes", app.Handlers.Verification.GetPasses)
			r.Post("/passes/revoke", app.Handlers.Verification.RevokePass)
			r.Get("/passes/qr", app.Handlers.Verification.PassQRCode)
		})

		// --- Reports ---
		// Example: GET /api/v1/reports/orders/overview?type=weekly&date=2025-10-08
		r.Get("/reports/orders/overview", app.Handlers.Report.GetOrderOverView)
	})

	return mux
}
