package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	APPName    = "Bottling ERP"
	APPVersion = "1.0"
)

// Sequence prefixes
const (
	ORDER_PREFIX       = "UORN"
	TAX_INVOICE_PREFIX = "TAX"
	INVOICE_PREFIX     = "INV"
	ADVANCE_PREFIX     = "ADV"
	SALARY_PREFIX      = "PAY"
	VAN_PAYOUT_PREFIX  = "VPO"
)

const (
	ATTENDANCE_FULL_DAY = "Full Day"
	ATTENDANCE_HALF_DAY = "Half Day"
	ATTENDANCE_ABSENT   = "Absent"
)

const (
	ROLE_ADMIN   = "admin"
	ROLE_MANAGER = "manager"
	ROLE_DRIVER  = "driver"
	ROLE_WORKER  = "worker"
)

// Response is the type for response
type Response struct {
	Error   bool   `json:"error"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// JWT holds the token user info
type JWT struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	Issuer    string    `json:"iss"`
	Audience  string    `json:"aud"`
	ExpiresAt int64     `json:"exp"`
	IssuedAt  int64     `json:"iat"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type JWTConfig struct {
	SecretKey string
	Issuer    string
	Audience  string
	Algorithm string
	Expiry    time.Duration
}

type DBConfig struct {
	DSN    string
	DEVDSN string
}

type LogConfig struct {
	Level  string
	Format string
}

// CompanyConfig is the seller block printed on invoices
type CompanyConfig struct {
	Name    string
	Address string
	State   string
	GSTIN   string
	Phone   string
}

type Config struct {
	Port          int
	Env           string
	PublicBaseURL string
	CORSOrigins   []string
	JWT           JWTConfig
	DB            DBConfig
	Log           LogConfig
	Company       CompanyConfig
}

// Employee model
type Employee struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name" validate:"required"`
	Role          string          `json:"role" validate:"required,oneof=admin manager driver worker"`
	Email         string          `json:"email,omitempty" validate:"omitempty,email"`
	Password      string          `json:"password,omitempty"`
	Mobile        string          `json:"mobile" validate:"required"`
	DailyWage     decimal.Decimal `json:"daily_wage"`
	BankAccountNo string          `json:"bank_account_no"`
	BankIFSC      string          `json:"bank_ifsc"`
	BankName      string          `json:"bank_name"`
	IsActive      bool            `json:"is_active"`
	JoiningDate   time.Time       `json:"joining_date"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// Attendance is one row per employee per work date.
type Attendance struct {
	ID           int64     `json:"id"`
	EmployeeID   int64     `json:"employee_id"`
	EmployeeName string    `json:"employee_name,omitempty"`
	WorkDate     time.Time `json:"-"`
	WorkDateStr  string    `json:"work_date"`
	Status       string    `json:"status"`
	Notes        string    `json:"notes,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type EmployeeCalendar struct {
	EmployeeID   int64         `json:"employee_id"`
	EmployeeName string        `json:"employee_name"`
	Month        string        `json:"month"`
	Attendance   []*Attendance `json:"attendance"`
}

type SalaryAdvance struct {
	ID           int64           `json:"id"`
	VoucherNo    string          `json:"voucher_no"`
	EmployeeID   int64           `json:"employee_id"`
	EmployeeName string          `json:"employee_name,omitempty"`
	Amount       decimal.Decimal `json:"amount"`
	AdvanceDate  time.Time       `json:"advance_date"`
	Notes        string          `json:"notes,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

type SalaryPayment struct {
	ID           int64           `json:"id"`
	VoucherNo    string          `json:"voucher_no"`
	EmployeeID   int64           `json:"employee_id"`
	EmployeeName string          `json:"employee_name,omitempty"`
	Amount       decimal.Decimal `json:"amount"`
	PaymentDate  time.Time       `json:"payment_date"`
	Notes        string          `json:"notes,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// PayrollLine is one employee's figures for a calendar month.
type PayrollLine struct {
	EmployeeID    int64           `json:"employee_id"`
	EmployeeName  string          `json:"employee_name"`
	Role          string          `json:"role"`
	DailyWage     decimal.Decimal `json:"daily_wage"`
	FullDays      int64           `json:"full_days"`
	HalfDays      int64           `json:"half_days"`
	AbsentDays    int64           `json:"absent_days"`
	Gross         decimal.Decimal `json:"gross"`
	Advances      decimal.Decimal `json:"advances"`
	AlreadyPaid   decimal.Decimal `json:"already_paid"`
	NetPayable    decimal.Decimal `json:"net_payable"`
	BankAccountNo string          `json:"bank_account_no"`
	BankIFSC      string          `json:"bank_ifsc"`
}

type PayrollReport struct {
	Month           string          `json:"month"`
	Lines           []*PayrollLine  `json:"lines"`
	TotalGross      decimal.Decimal `json:"total_gross"`
	TotalAdvances   decimal.Decimal `json:"total_advances"`
	TotalPaid       decimal.Decimal `json:"total_paid"`
	TotalNetPayable decimal.Decimal `json:"total_net_payable"`
}

// DSN picks the live or development database by Env.
func (c Config) DSN() string {
	if c.Env == "live" {
		return c.DB.DSN
	}
	return c.DB.DEVDSN
}
