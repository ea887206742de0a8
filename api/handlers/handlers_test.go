package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/projuktisheba/bottling-erp-api/internal/billing"
	"github.com/projuktisheba/bottling-erp-api/internal/dbrepo"
	"github.com/projuktisheba/bottling-erp-api/internal/export"
	"github.com/projuktisheba/bottling-erp-api/internal/inventory"
	"github.com/projuktisheba/bottling-erp-api/internal/models"
	"github.com/projuktisheba/bottling-erp-api/internal/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var fixedNow = time.Date(2025, 10, 8, 10, 0, 0, 0, time.UTC)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

// withURLParam routes r through a chi context carrying one URL parameter.
func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// ============================== fakes ==============================

type fakeOrders struct {
	OrderStore
	created  *models.Order
	payments []decimal.Decimal
	err      error
}

func (f *fakeOrders) CreateOrder(_ context.Context, o *models.Order) error {
	if f.err != nil {
		return f.err
	}
	if err := billing.PriceOrder(o); err != nil {
		return err
	}
	o.ID = 1
	o.OrderNo = "UORN-251008-0001"
	f.created = o
	return nil
}

func (f *fakeOrders) RecordPayment(_ context.Context, id int64, amount decimal.Decimal) (*models.Order, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.payments = append(f.payments, amount)
	o := &models.Order{ID: id, TotalPayableAmount: d("654"), Status: models.ORDER_PENDING_VERIFICATION, PendingAmount: d("654")}
	if err := billing.ApplyPayment(o, amount); err != nil {
		return nil, err
	}
	return o, nil
}

func (f *fakeOrders) AssignInvoiceNo(_ context.Context, id int64) (*models.Order, error) {
	if f.err != nil {
		return nil, f.err
	}
	no := "TAX-FY2526-00001"
	o := &models.Order{
		ID: id, OrderNo: "UORN-251008-0001", InvoiceNo: &no, DistributorName: "Aqua Traders",
		OrderDate: fixedNow, GSTEnabled: true, TaxRate: d("12"),
		Items: []*models.OrderItem{{ProductID: 1, ProductName: "1L Bottle", Quantity: 10, UnitPrice: d("20")}},
	}
	if err := billing.PriceOrder(o); err != nil {
		return nil, err
	}
	return o, nil
}

type fakeVerification struct {
	VerificationStore
	batches map[string]*models.ProductionBatch
	passes  map[string]*models.VisitorPass
	issued  *models.VisitorPass
}

func (f *fakeVerification) GetBatchByCode(_ context.Context, code string) (*models.ProductionBatch, error) {
	if b, ok := f.batches[code]; ok {
		return b, nil
	}
	return nil, fmt.Errorf("batch %q: %w", code, dbrepo.ErrNotFound)
}

func (f *fakeVerification) GetPassByToken(_ context.Context, token string) (*models.VisitorPass, error) {
	if p, ok := f.passes[token]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("pass %q: %w", token, dbrepo.ErrNotFound)
}

func (f *fakeVerification) IssuePass(_ context.Context, p *models.VisitorPass) error {
	p.ID = 9
	p.Token = "3b241101-e2bb-4255-8caf-4136c566a962"
	f.issued = p
	return nil
}

type fakeAttendance struct {
	AttendanceStore
	batch []*models.Attendance
}

func (f *fakeAttendance) BatchUpsertAttendance(_ context.Context, entries []*models.Attendance) error {
	f.batch = entries
	return nil
}

type fakeCredentials struct {
	employee *models.Employee
}

func (f *fakeCredentials) GetEmployeeByEmail(_ context.Context, email string) (*models.Employee, error) {
	if f.employee == nil || !strings.EqualFold(f.employee.Email, email) {
		return nil, dbrepo.ErrNotFound
	}
	e := *f.employee
	return &e, nil
}

type fakePayroll struct {
	PayrollStore
	advance *models.SalaryAdvance
}

func (f *fakePayroll) CreateAdvance(_ context.Context, adv *models.SalaryAdvance) error {
	adv.ID = 1
	adv.VoucherNo = "ADV-251008-0001"
	f.advance = adv
	return nil
}

func (f *fakePayroll) MonthlyPayroll(_ context.Context, month string) (*models.PayrollReport, error) {
	return &models.PayrollReport{
		Month: month,
		Lines: []*models.PayrollLine{{EmployeeID: 1, EmployeeName: "Ravi", DailyWage: d("600"), FullDays: 2, Gross: d("1200"), NetPayable: d("1200")}},
	}, nil
}

// ============================== tests ==============================

func TestWriteError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", fmt.Errorf("order 4: %w", dbrepo.ErrNotFound), http.StatusNotFound},
		{"duplicate", fmt.Errorf("sku: %w", dbrepo.ErrDuplicate), http.StatusConflict},
		{"validation", &utils.ValidationError{Fields: map[string]string{"name": "is required"}}, http.StatusBadRequest},
		{"billing", fmt.Errorf("price: %w", billing.ErrInvalidInput), http.StatusBadRequest},
		{"stock", fmt.Errorf("reserve: %w", inventory.ErrInsufficientStock), http.StatusBadRequest},
		{"status", fmt.Errorf("%w: order is cancelled", dbrepo.ErrInvalidStatus), http.StatusBadRequest},
		{"internal", errors.New("connection reset"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, zap.NewNop(), "ERROR_01_Test", tt.err)
			assert.Equal(t, tt.want, rec.Code)
			body := decodeBody(t, rec)
			assert.Equal(t, true, body["error"])
		})
	}

	rec := httptest.NewRecorder()
	writeError(rec, zap.NewNop(), "ERROR_01_Test", errors.New("pq: password authentication failed"))
	assert.NotContains(t, rec.Body.String(), "password", "internal causes stay in the log")
}

func TestAddOrder(t *testing.T) {
	store := &fakeOrders{}
	h := NewOrderHandler(store, models.CompanyConfig{}, zap.NewNop())

	body := `{"distributor_id":3,"gst_enabled":true,"tax_rate":"12","delivery_fee_override":"150",
		"items":[{"product_id":1,"quantity":10,"unit_price":"20"},{"product_id":2,"quantity":5,"unit_price":"50"}]}`
	rec := httptest.NewRecorder()
	h.AddOrder(rec, httptest.NewRequest(http.MethodPost, "/api/v1/orders/order", strings.NewReader(body)))

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.NotNil(t, store.created)
	assert.True(t, store.created.Subtotal.Equal(d("450")))
	assert.True(t, store.created.TaxAmount.Equal(d("54")))
	assert.True(t, store.created.TotalPayableAmount.Equal(d("654")))
	assert.Equal(t, models.ORDER_PENDING_VERIFICATION, store.created.Status)

	var resp orderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "UORN-251008-0001", resp.Order.OrderNo)
}

func TestAddOrder_Rejects(t *testing.T) {
	tests := []struct {
		name string
		body string
		err  error
		want int
	}{
		{"no items", `{"distributor_id":3,"items":[]}`, nil, http.StatusBadRequest},
		{"missing distributor", `{"items":[{"product_id":1,"quantity":1}]}`, nil, http.StatusBadRequest},
		{"unknown field", `{"distributor_id":3,"branch_id":1,"items":[{"product_id":1,"quantity":1}]}`, nil, http.StatusBadRequest},
		{"out of stock", `{"distributor_id":3,"items":[{"product_id":1,"quantity":1,"unit_price":"5"}]}`,
			fmt.Errorf("reserve: %w", inventory.ErrInsufficientStock), http.StatusBadRequest},
		{"inactive distributor", `{"distributor_id":3,"items":[{"product_id":1,"quantity":1,"unit_price":"5"}]}`,
			fmt.Errorf("distributor 3: %w", dbrepo.ErrInactive), http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeOrders{err: tt.err}
			h := NewOrderHandler(store, models.CompanyConfig{}, zap.NewNop())
			rec := httptest.NewRecorder()
			h.AddOrder(rec, httptest.NewRequest(http.MethodPost, "/api/v1/orders/order", strings.NewReader(tt.body)))
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
			assert.Nil(t, store.created)
		})
	}
}

func TestRecordPayment(t *testing.T) {
	store := &fakeOrders{}
	h := NewOrderHandler(store, models.CompanyConfig{}, zap.NewNop())

	rec := httptest.NewRecorder()
	h.RecordPayment(rec, httptest.NewRequest(http.MethodPost, "/api/v1/orders/payment?id=1", strings.NewReader(`{"amount":"200"}`)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp orderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, models.ORDER_PARTIALLY_PAID, resp.Order.Status)
	assert.True(t, resp.Order.PendingAmount.Equal(d("454")))

	rec = httptest.NewRecorder()
	h.RecordPayment(rec, httptest.NewRequest(http.MethodPost, "/api/v1/orders/payment?id=1", strings.NewReader(`{"amount":"700"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code, "overpayment is a client error")

	rec = httptest.NewRecorder()
	h.RecordPayment(rec, httptest.NewRequest(http.MethodPost, "/api/v1/orders/payment", strings.NewReader(`{"amount":"1"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing id")
}

func TestDownloadInvoice(t *testing.T) {
	h := NewOrderHandler(&fakeOrders{}, models.CompanyConfig{Name: "Bottling ERP", State: "Karnataka"}, zap.NewNop())

	rec := httptest.NewRecorder()
	h.DownloadInvoice(rec, httptest.NewRequest(http.MethodGet, "/api/v1/orders/invoice/pdf?id=1", nil))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "TAX-FY2526-00001.pdf")
	assert.True(t, strings.HasPrefix(rec.Body.String(), "%PDF"))
}

func TestVerifyBatch(t *testing.T) {
	code := "6f9619ff-8b86-d011-b42d-00c04fc964ff"
	store := &fakeVerification{batches: map[string]*models.ProductionBatch{
		code: {BatchCode: code, ProductName: "20L Jar", ExpiresOn: fixedNow.AddDate(0, 6, 0)},
	}}
	h := NewVerificationHandler(store, "https://erp.example.com", zap.NewNop())
	h.now = func() time.Time { return fixedNow }

	rec := httptest.NewRecorder()
	h.VerifyBatch(rec, withURLParam(httptest.NewRequest(http.MethodGet, "/", nil), "code", code))
	require.Equal(t, http.StatusOK, rec.Code)
	var v models.BatchVerification
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	assert.True(t, v.Authentic)
	assert.False(t, v.Expired)

	rec = httptest.NewRecorder()
	h.VerifyBatch(rec, withURLParam(httptest.NewRequest(http.MethodGet, "/", nil), "code", "not-a-code"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	v = models.BatchVerification{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	assert.False(t, v.Authentic)
}

func TestVerifyPass(t *testing.T) {
	store := &fakeVerification{passes: map[string]*models.VisitorPass{
		"ok":      {Token: "ok", HolderName: "Meera", HolderMobile: "9876543210", ValidFrom: fixedNow.Add(-time.Hour), ValidUntil: fixedNow.Add(time.Hour), IssuedBy: 4},
		"revoked": {Token: "revoked", Revoked: true, ValidFrom: fixedNow.Add(-time.Hour), ValidUntil: fixedNow.Add(time.Hour)},
		"old":     {Token: "old", ValidFrom: fixedNow.AddDate(0, 0, -2), ValidUntil: fixedNow.AddDate(0, 0, -1)},
	}}
	h := NewVerificationHandler(store, "https://erp.example.com", zap.NewNop())
	h.now = func() time.Time { return fixedNow }

	tests := []struct {
		token  string
		code   int
		status string
	}{
		{"ok", http.StatusOK, models.PASS_VALID},
		{"revoked", http.StatusOK, models.PASS_REVOKED},
		{"old", http.StatusOK, models.PASS_EXPIRED},
		{"missing", http.StatusNotFound, models.PASS_NOT_FOUND},
	}
	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.VerifyPass(rec, withURLParam(httptest.NewRequest(http.MethodGet, "/", nil), "token", tt.token))
			assert.Equal(t, tt.code, rec.Code)
			var v models.PassVerification
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
			assert.Equal(t, tt.status, v.Status)
			if tt.token == "ok" {
				assert.Equal(t, "******3210", v.Pass.HolderMobile)
				assert.Zero(t, v.Pass.IssuedBy)
			}
		})
	}
}

func TestIssuePass_RecordsIssuer(t *testing.T) {
	store := &fakeVerification{}
	h := NewVerificationHandler(store, "https://erp.example.com/", zap.NewNop())
	h.now = func() time.Time { return fixedNow }

	body := `{"holder_name":"Meera","holder_mobile":"9876543210","purpose":"Plant visit","valid_until":"2025-10-08T18:00:00Z"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/verification/passes", strings.NewReader(body))
	req = req.WithContext(utils.WithUser(req.Context(), &models.JWT{ID: 4, Role: models.ROLE_ADMIN}))
	rec := httptest.NewRecorder()
	h.IssuePass(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.NotNil(t, store.issued)
	assert.Equal(t, int64(4), store.issued.IssuedBy)
	assert.Equal(t, fixedNow, store.issued.ValidFrom)
	body2 := decodeBody(t, rec)
	assert.Equal(t, "https://erp.example.com/api/v1/public/verify/pass/3b241101-e2bb-4255-8caf-4136c566a962", body2["verify_url"])

	rec = httptest.NewRecorder()
	h.IssuePass(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(
		`{"holder_name":"Meera","purpose":"Visit","valid_from":"2025-10-08T18:00:00Z","valid_until":"2025-10-08T09:00:00Z"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBatchQRCode(t *testing.T) {
	code := "6f9619ff-8b86-d011-b42d-00c04fc964ff"
	store := &fakeVerification{batches: map[string]*models.ProductionBatch{code: {BatchCode: code}}}
	h := NewVerificationHandler(store, "https://erp.example.com", zap.NewNop())

	rec := httptest.NewRecorder()
	h.BatchQRCode(rec, httptest.NewRequest(http.MethodGet, "/?code="+code, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "\x89PNG"))

	rec = httptest.NewRecorder()
	h.BatchQRCode(rec, httptest.NewRequest(http.MethodGet, "/?code="+code+"&size=9", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.BatchQRCode(rec, httptest.NewRequest(http.MethodGet, "/?code=unknown", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBatchMarkAttendance(t *testing.T) {
	store := &fakeAttendance{}
	h := NewAttendanceHandler(store, zap.NewNop())
	h.now = func() time.Time { return fixedNow }

	rec := httptest.NewRecorder()
	h.BatchMarkAttendance(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(
		`[{"employee_id":1,"status":"Full Day"},{"employee_id":2,"work_date":"2025-10-07","status":"Half Day"}]`)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Len(t, store.batch, 2)
	assert.Equal(t, time.Date(2025, 10, 8, 0, 0, 0, 0, time.UTC), store.batch[0].WorkDate)
	assert.Equal(t, time.Date(2025, 10, 7, 0, 0, 0, 0, time.UTC), store.batch[1].WorkDate)

	store.batch = nil
	rec = httptest.NewRecorder()
	h.BatchMarkAttendance(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(
		`[{"employee_id":1,"status":"Full Day"},{"employee_id":2,"status":"Overtime"}]`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, store.batch, "nothing is written when one entry is invalid")
}

func TestSignin(t *testing.T) {
	hash, err := utils.HashPassword("s3cret-pass")
	require.NoError(t, err)
	cfg := models.JWTConfig{SecretKey: "test-secret", Issuer: "bottling-erp", Audience: "back-office", Expiry: time.Hour}
	store := &fakeCredentials{employee: &models.Employee{ID: 7, Name: "Asha", Email: "asha@example.com", Role: models.ROLE_ADMIN, Password: hash, IsActive: true}}
	h := NewAuthHandler(store, cfg, zap.NewNop())

	rec := httptest.NewRecorder()
	h.Signin(rec, httptest.NewRequest(http.MethodPost, "/api/v1/login", strings.NewReader(`{"username":"asha@example.com","password":"s3cret-pass"}`)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	token, _ := body["token"].(string)
	user, err := utils.ParseJWT(token, cfg)
	require.NoError(t, err)
	assert.Equal(t, int64(7), user.ID)
	assert.Equal(t, models.ROLE_ADMIN, user.Role)
	assert.NotContains(t, rec.Body.String(), hash)

	rec = httptest.NewRecorder()
	h.Signin(rec, httptest.NewRequest(http.MethodPost, "/api/v1/login", strings.NewReader(`{"username":"asha@example.com","password":"wrong"}`)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	store.employee.IsActive = false
	rec = httptest.NewRecorder()
	h.Signin(rec, httptest.NewRequest(http.MethodPost, "/api/v1/login", strings.NewReader(`{"username":"asha@example.com","password":"s3cret-pass"}`)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "inactive employees cannot sign in")
}

func TestCreateAdvance(t *testing.T) {
	store := &fakePayroll{}
	h := NewPayrollHandler(store, zap.NewNop())
	h.now = func() time.Time { return fixedNow }

	rec := httptest.NewRecorder()
	h.CreateAdvance(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"employee_id":1,"amount":"500","notes":"festival"}`)))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "ADV-251008-0001", store.advance.VoucherNo)
	assert.Equal(t, time.Date(2025, 10, 8, 0, 0, 0, 0, time.UTC), store.advance.AdvanceDate)

	for _, body := range []string{`{"employee_id":1,"amount":"0"}`, `{"amount":"10"}`, `{"employee_id":1,"amount":"10","date":"08/10/2025"}`} {
		rec = httptest.NewRecorder()
		h.CreateAdvance(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)))
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}

func TestExportMonthlyPayroll(t *testing.T) {
	h := NewPayrollHandler(&fakePayroll{}, zap.NewNop())
	rec := httptest.NewRecorder()
	h.ExportMonthlyPayroll(rec, httptest.NewRequest(http.MethodGet, "/?month=2025-10", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, export.ContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "payroll-2025-10.xlsx")
	assert.True(t, strings.HasPrefix(rec.Body.String(), "PK"), "xlsx is a zip archive")
}
