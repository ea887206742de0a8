package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	ORDER_PENDING_VERIFICATION = "pending_verification"
	ORDER_PARTIALLY_PAID       = "partially_paid"
	ORDER_PAYMENT_VERIFIED     = "payment_verified"
	ORDER_CANCELLED            = "cancelled"
	ORDER_REFUNDED             = "refunded"
)

const (
	MOVEMENT_RESTOCK = "restock"
	MOVEMENT_RESERVE = "reserve"
	MOVEMENT_RELEASE = "release"
	MOVEMENT_CANCEL  = "cancel"
)

type Order struct {
	ID              int64   `json:"id"`
	OrderNo         string  `json:"order_no"`
	InvoiceNo       *string `json:"invoice_no,omitempty"`
	DistributorID   int64   `json:"distributor_id" validate:"required,gt=0"`
	DistributorName string  `json:"distributor_name,omitempty"`
	VanID           *int64  `json:"van_id,omitempty"`
	VanRegNo        string  `json:"van_registration_no,omitempty"`

	OrderDate time.Time `json:"order_date"`

	// pricing input
	DeliveryDistanceKm decimal.Decimal  `json:"delivery_distance_km"`
	DeliveryRatePerKm  decimal.Decimal  `json:"delivery_rate_per_km"`
	DeliveryFeeInput   *decimal.Decimal `json:"delivery_fee_override,omitempty"`
	GSTEnabled         bool             `json:"gst_enabled"`
	Interstate         bool             `json:"interstate"`
	TaxRate            decimal.Decimal  `json:"tax_rate"`

	// computed
	Subtotal           decimal.Decimal `json:"subtotal"`
	TaxAmount          decimal.Decimal `json:"tax_amount"`
	CGST               decimal.Decimal `json:"cgst"`
	SGST               decimal.Decimal `json:"sgst"`
	IGST               decimal.Decimal `json:"igst"`
	DeliveryFee        decimal.Decimal `json:"delivery_fee"`
	BillTotal          decimal.Decimal `json:"bill_total"`
	TotalPayableAmount decimal.Decimal `json:"total_payable_amount"`
	AmountPaid         decimal.Decimal `json:"amount_paid"`
	PendingAmount      decimal.Decimal `json:"pending_amount"`
	RefundAmount       decimal.Decimal `json:"refund_amount"`

	Status       string     `json:"status"`
	Notes        string     `json:"notes,omitempty"`
	DispatchedAt *time.Time `json:"dispatched_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	Items []*OrderItem `json:"items" validate:"required,min=1,dive"`
}

type OrderItem struct {
	ID          int64           `json:"id"`
	OrderID     int64           `json:"order_id"`
	ProductID   int64           `json:"product_id" validate:"required,gt=0"`
	ProductName string          `json:"product_name,omitempty"`
	HSNCode     string          `json:"hsn_code,omitempty"`
	Quantity    int64           `json:"quantity" validate:"gt=0"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// OrderFilter narrows paginated order listings.
type OrderFilter struct {
	Page          int
	Limit         int
	Status        string
	DistributorID int64
	VanID         int64
	SortByDate    string
}

type OrderOverview struct {
	PendingOrders       int64           `json:"pending_orders"`
	PartiallyPaidOrders int64           `json:"partially_paid_orders"`
	VerifiedOrders      int64           `json:"verified_orders"`
	CancelledOrders     int64           `json:"cancelled_orders"`
	RefundedOrders      int64           `json:"refunded_orders"`
	TotalOrders         int64           `json:"total_orders"`
	TotalBilled         decimal.Decimal `json:"total_billed"`
	TotalCollected      decimal.Decimal `json:"total_collected"`
	TotalPending        decimal.Decimal `json:"total_pending"`
	TotalTax            decimal.Decimal `json:"total_tax"`
	TotalDeliveryFees   decimal.Decimal `json:"total_delivery_fees"`
	StartDate           time.Time       `json:"start_date"`
	EndDate             time.Time       `json:"end_date"`
}

type Product struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name" validate:"required"`
	SKU       string          `json:"sku" validate:"required"`
	HSNCode   string          `json:"hsn_code"`
	BoxSize   int64           `json:"box_size" validate:"gt=0"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	GSTRate   decimal.Decimal `json:"gst_rate"`
	IsActive  bool            `json:"is_active"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// InventoryRecord is the stock position of one product.
type InventoryRecord struct {
	ProductID      int64     `json:"product_id"`
	ProductName    string    `json:"product_name"`
	SKU            string    `json:"sku"`
	AvailableBoxes int64     `json:"available_boxes"`
	ReservedBoxes  int64     `json:"reserved_boxes"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type InventoryMovement struct {
	ID           int64     `json:"id"`
	ProductID    int64     `json:"product_id"`
	ProductName  string    `json:"product_name,omitempty"`
	OrderID      *int64    `json:"order_id,omitempty"`
	MovementType string    `json:"movement_type"`
	Quantity     int64     `json:"quantity"`
	Notes        string    `json:"notes,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
