// Package ledger derives distributor dues and van earnings from orders.
package ledger

import (
	"github.com/projuktisheba/bottling-erp-api/internal/models"
	"github.com/shopspring/decimal"
)

func live(o *models.Order) bool {
	return o.Status != models.ORDER_CANCELLED && o.Status != models.ORDER_REFUNDED
}

// Distributor totals a distributor's orders. Cancelled and refunded orders
// count toward money received but not toward billing or dues.
func Distributor(d *models.Distributor, orders []*models.Order) *models.DistributorLedger {
	l := &models.DistributorLedger{
		DistributorID:   d.ID,
		DistributorName: d.Name,
		TotalBilled:     decimal.Zero,
		TotalPaid:       decimal.Zero,
		Dues:            decimal.Zero,
		Orders:          orders,
	}
	if l.Orders == nil {
		l.Orders = []*models.Order{}
	}
	for _, o := range orders {
		l.TotalPaid = l.TotalPaid.Add(o.AmountPaid.Sub(o.RefundAmount))
		if !live(o) {
			continue
		}
		l.OrderCount++
		l.TotalBilled = l.TotalBilled.Add(o.TotalPayableAmount)
		l.Dues = l.Dues.Add(o.PendingAmount)
	}
	return l
}

// Van credits the van with the delivery fee of every dispatched live order
// and debits its payouts. Balance is what the company still owes the van.
func Van(v *models.Van, orders []*models.Order, payouts []*models.VanPayout) *models.VanLedger {
	l := &models.VanLedger{
		VanID:          v.ID,
		RegistrationNo: v.RegistrationNo,
		DriverName:     v.DriverName,
		Earned:         decimal.Zero,
		PaidOut:        decimal.Zero,
		Payouts:        payouts,
	}
	if l.Payouts == nil {
		l.Payouts = []*models.VanPayout{}
	}
	for _, o := range orders {
		if o.DispatchedAt == nil || !live(o) {
			continue
		}
		if o.VanID == nil || *o.VanID != v.ID {
			continue
		}
		l.DeliveredOrders++
		l.Earned = l.Earned.Add(o.DeliveryFee)
	}
	for _, p := range payouts {
		l.PaidOut = l.PaidOut.Add(p.Amount)
	}
	l.Balance = l.Earned.Sub(l.PaidOut)
	return l
}
