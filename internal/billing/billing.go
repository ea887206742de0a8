// Package billing prices distributor orders: line totals, GST, delivery fee
// and the payable/pending split.
package billing

import (
	"errors"
	"fmt"

	"github.com/projuktisheba/bottling-erp-api/internal/models"
	"github.com/shopspring/decimal"
)

// ErrInvalidInput is wrapped by every rejection of malformed pricing input.
var ErrInvalidInput = errors.New("invalid billing input")

var (
	hundred = decimal.NewFromInt(100)
	two     = decimal.NewFromInt(2)
)

type Line struct {
	Quantity  int64
	UnitPrice decimal.Decimal
}

type Input struct {
	Lines      []Line
	DistanceKm decimal.Decimal
	RatePerKm  decimal.Decimal
	// DeliveryFee replaces distance x rate when set.
	DeliveryFee *decimal.Decimal
	TaxRate     decimal.Decimal
	GSTEnabled  bool
	Interstate  bool
	AmountPaid  decimal.Decimal
}

type Breakdown struct {
	Subtotal    decimal.Decimal
	TaxAmount   decimal.Decimal
	CGST        decimal.Decimal
	SGST        decimal.Decimal
	IGST        decimal.Decimal
	DeliveryFee decimal.Decimal
	BillTotal   decimal.Decimal
	GrandTotal  decimal.Decimal
	AmountPaid  decimal.Decimal
	Pending     decimal.Decimal
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// LineTotal returns qty x price rounded to paise.
func LineTotal(qty int64, price decimal.Decimal) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(qty)).Round(2)
}

// Calculate prices an order. The delivery fee is never part of the taxable amount.
func Calculate(in Input) (Breakdown, error) {
	var b Breakdown
	if len(in.Lines) == 0 {
		return b, invalid("order has no items")
	}
	subtotal := decimal.Zero
	for i, l := range in.Lines {
		if l.Quantity <= 0 {
			return b, invalid("item %d: quantity must be positive", i+1)
		}
		if l.UnitPrice.IsNegative() {
			return b, invalid("item %d: unit price cannot be negative", i+1)
		}
		subtotal = subtotal.Add(LineTotal(l.Quantity, l.UnitPrice))
	}
	if in.TaxRate.IsNegative() || in.TaxRate.GreaterThan(hundred) {
		return b, invalid("tax rate must be between 0 and 100")
	}
	if in.GSTEnabled && in.TaxRate.IsZero() {
		return b, invalid("GST order needs a tax rate")
	}
	if in.DistanceKm.IsNegative() || in.RatePerKm.IsNegative() {
		return b, invalid("delivery distance and rate cannot be negative")
	}
	if in.AmountPaid.IsNegative() {
		return b, invalid("paid amount cannot be negative")
	}

	delivery := in.DistanceKm.Mul(in.RatePerKm).Round(2)
	if in.DeliveryFee != nil {
		if in.DeliveryFee.IsNegative() {
			return b, invalid("delivery fee cannot be negative")
		}
		delivery = in.DeliveryFee.Round(2)
	}

	b.Subtotal = subtotal
	b.TaxAmount, b.CGST, b.SGST, b.IGST = gst(subtotal, in.TaxRate, in.GSTEnabled, in.Interstate)
	b.DeliveryFee = delivery
	b.BillTotal = subtotal.Add(b.TaxAmount)
	b.GrandTotal = b.BillTotal.Add(delivery)

	paid := in.AmountPaid.Round(2)
	if paid.GreaterThan(b.GrandTotal) {
		return b, invalid("paid amount %s exceeds payable %s", paid.StringFixed(2), b.GrandTotal.StringFixed(2))
	}
	b.AmountPaid = paid
	b.Pending = b.GrandTotal.Sub(paid)
	return b, nil
}

// CatalogueTaxRate returns the GST rate shared by every product on an order.
// Products carrying different rates leave the choice to the caller.
func CatalogueTaxRate(rates []decimal.Decimal) (decimal.Decimal, error) {
	if len(rates) == 0 {
		return decimal.Zero, invalid("order has no items")
	}
	rate := rates[0]
	for _, r := range rates[1:] {
		if !r.Equal(rate) {
			return decimal.Zero, invalid("items carry different GST rates, send tax_rate")
		}
	}
	return rate, nil
}

// gst returns total tax and its CGST/SGST or IGST split.
func gst(taxable, rate decimal.Decimal, enabled, interstate bool) (tax, cgst, sgst, igst decimal.Decimal) {
	if !enabled || rate.IsZero() {
		return decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero
	}
	tax = taxable.Mul(rate).Div(hundred).Round(2)
	if interstate {
		return tax, decimal.Zero, decimal.Zero, tax
	}
	cgst = tax.Div(two).Round(2)
	sgst = tax.Sub(cgst)
	return tax, cgst, sgst, decimal.Zero
}

// StatusFor derives the payment status of a live order.
func StatusFor(total, paid decimal.Decimal) string {
	switch {
	case paid.IsZero() || paid.IsNegative():
		if total.IsZero() {
			return models.ORDER_PAYMENT_VERIFIED
		}
		return models.ORDER_PENDING_VERIFICATION
	case paid.LessThan(total):
		return models.ORDER_PARTIALLY_PAID
	default:
		return models.ORDER_PAYMENT_VERIFIED
	}
}

// InputFromOrder collects the pricing input carried by an order.
func InputFromOrder(o *models.Order) Input {
	in := Input{
		DistanceKm:  o.DeliveryDistanceKm,
		RatePerKm:   o.DeliveryRatePerKm,
		DeliveryFee: o.DeliveryFeeInput,
		TaxRate:     o.TaxRate,
		GSTEnabled:  o.GSTEnabled,
		Interstate:  o.Interstate,
		AmountPaid:  o.AmountPaid,
	}
	for _, it := range o.Items {
		in.Lines = append(in.Lines, Line{Quantity: it.Quantity, UnitPrice: it.UnitPrice})
	}
	return in
}

// PriceOrder fills the computed money fields and status of o.
func PriceOrder(o *models.Order) error {
	if o == nil {
		return invalid("missing order")
	}
	b, err := Calculate(InputFromOrder(o))
	if err != nil {
		return err
	}
	for _, it := range o.Items {
		it.LineTotal = LineTotal(it.Quantity, it.UnitPrice)
	}
	o.Subtotal = b.Subtotal
	o.TaxAmount = b.TaxAmount
	o.CGST = b.CGST
	o.SGST = b.SGST
	o.IGST = b.IGST
	o.DeliveryFee = b.DeliveryFee
	o.BillTotal = b.BillTotal
	o.TotalPayableAmount = b.GrandTotal
	o.AmountPaid = b.AmountPaid
	o.PendingAmount = b.Pending
	o.Status = StatusFor(b.GrandTotal, b.AmountPaid)
	return nil
}

// ApplyPayment adds a verified payment to an order that is still collecting money.
func ApplyPayment(o *models.Order, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return invalid("payment amount must be positive")
	}
	switch o.Status {
	case models.ORDER_PENDING_VERIFICATION, models.ORDER_PARTIALLY_PAID:
	default:
		return invalid("cannot record payment on %s order", o.Status)
	}
	paid := o.AmountPaid.Add(amount.Round(2))
	if paid.GreaterThan(o.TotalPayableAmount) {
		return invalid("payment exceeds pending amount %s", o.PendingAmount.StringFixed(2))
	}
	o.AmountPaid = paid
	o.PendingAmount = o.TotalPayableAmount.Sub(paid)
	o.Status = StatusFor(o.TotalPayableAmount, paid)
	return nil
}
