package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Distributor struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name" validate:"required"`
	ContactPerson string    `json:"contact_person"`
	Mobile        string    `json:"mobile" validate:"required"`
	Email         string    `json:"email,omitempty" validate:"omitempty,email"`
	GSTIN         string    `json:"gstin,omitempty" validate:"omitempty,len=15"`
	Address       string    `json:"address"`
	State         string    `json:"state"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type DistributorLedger struct {
	DistributorID   int64           `json:"distributor_id"`
	DistributorName string          `json:"distributor_name"`
	OrderCount      int64           `json:"order_count"`
	TotalBilled     decimal.Decimal `json:"total_billed"`
	TotalPaid       decimal.Decimal `json:"total_paid"`
	Dues            decimal.Decimal `json:"dues"`
	Orders          []*Order        `json:"orders"`
}

type Van struct {
	ID             int64           `json:"id"`
	RegistrationNo string          `json:"registration_no" validate:"required"`
	DriverName     string          `json:"driver_name" validate:"required"`
	DriverMobile   string          `json:"driver_mobile"`
	RatePerKm      decimal.Decimal `json:"rate_per_km"`
	IsActive       bool            `json:"is_active"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

type VanPayout struct {
	ID         int64           `json:"id"`
	VoucherNo  string          `json:"voucher_no"`
	VanID      int64           `json:"van_id"`
	Amount     decimal.Decimal `json:"amount"`
	PayoutDate time.Time       `json:"payout_date"`
	Notes      string          `json:"notes,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

type VanLedger struct {
	VanID           int64           `json:"van_id"`
	RegistrationNo  string          `json:"registration_no"`
	DriverName      string          `json:"driver_name"`
	DeliveredOrders int64           `json:"delivered_orders"`
	Earned          decimal.Decimal `json:"earned"`
	PaidOut         decimal.Decimal `json:"paid_out"`
	Balance         decimal.Decimal `json:"balance"`
	Payouts         []*VanPayout    `json:"payouts"`
}
