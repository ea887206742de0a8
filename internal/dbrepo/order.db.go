package dbrepo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/projuktisheba/bottling-erp-api/internal/billing"
	"github.com/projuktisheba/bottling-erp-api/internal/models"
	"github.com/shopspring/decimal"
)

type OrderRepo struct {
	db *pgxpool.Pool
}

func NewOrderRepo(db *pgxpool.Pool) *OrderRepo {
	return &OrderRepo{db: db}
}

const orderSelect = `
	SELECT
	    o.id, o.order_no, o.invoice_no, o.distributor_id, d.name, o.van_id,
	    COALESCE(v.registration_no, ''), o.order_date,
	    o.delivery_distance_km, o.delivery_rate_per_km, o.gst_enabled, o.interstate, o.tax_rate,
	    o.subtotal, o.tax_amount, o.cgst, o.sgst, o.igst, o.delivery_fee, o.bill_total,
	    o.total_payable_amount, o.amount_paid, o.pending_amount, o.refund_amount,
	    o.status, o.notes, o.dispatched_at, o.created_at, o.updated_at
	FROM orders o
	JOIN distributors d ON d.id = o.distributor_id
	LEFT JOIN vans v ON v.id = o.van_id
`

func scanOrder(row interface{ Scan(...any) error }, o *models.Order) error {
	return row.Scan(
		&o.ID, &o.OrderNo, &o.InvoiceNo, &o.DistributorID, &o.DistributorName, &o.VanID,
		&o.VanRegNo, &o.OrderDate,
		&o.DeliveryDistanceKm, &o.DeliveryRatePerKm, &o.GSTEnabled, &o.Interstate, &o.TaxRate,
		&o.Subtotal, &o.TaxAmount, &o.CGST, &o.SGST, &o.IGST, &o.DeliveryFee, &o.BillTotal,
		&o.TotalPayableAmount, &o.AmountPaid, &o.PendingAmount, &o.RefundAmount,
		&o.Status, &o.Notes, &o.DispatchedAt, &o.CreatedAt, &o.UpdatedAt,
	)
}

// lockOrderTx loads and row-locks an order for a state change.
func lockOrderTx(ctx context.Context, tx pgx.Tx, orderID int64) (*models.Order, error) {
	var o models.Order
	if err := scanOrder(tx.QueryRow(ctx, orderSelect+` WHERE o.id=$1 FOR UPDATE OF o`, orderID), &o); err != nil {
		return nil, fmt.Errorf("lock order: %w", notFound(err, "order %d", orderID))
	}
	return &o, nil
}

func loadItems(ctx context.Context, q querier, orderID int64) ([]*models.OrderItem, error) {
	rows, err := q.Query(ctx, `
		SELECT oi.id, oi.order_id, oi.product_id, p.name, p.hsn_code, oi.quantity, oi.unit_price, oi.line_total
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = $1
		ORDER BY oi.id
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("load order items: %w", err)
	}
	defer rows.Close()

	items := []*models.OrderItem{}
	for rows.Next() {
		var it models.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.HSNCode, &it.Quantity, &it.UnitPrice, &it.LineTotal); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, &it)
	}
	return items, rows.Err()
}

// prepareOrderTx resolves the distributor, the optional van and each item's
// product, filling catalogue prices and the GST rate where the caller sent none,
// then prices the order.
func prepareOrderTx(ctx context.Context, tx pgx.Tx, o *models.Order) error {
	var active bool
	err := tx.QueryRow(ctx, `SELECT name, is_active FROM distributors WHERE id=$1`, o.DistributorID).Scan(&o.DistributorName, &active)
	if err != nil {
		return notFound(err, "distributor %d", o.DistributorID)
	}
	if !active {
		return fmt.Errorf("distributor %d: %w", o.DistributorID, ErrInactive)
	}

	if o.VanID != nil {
		var rate decimal.Decimal
		err := tx.QueryRow(ctx, `SELECT registration_no, rate_per_km, is_active FROM vans WHERE id=$1`, *o.VanID).Scan(&o.VanRegNo, &rate, &active)
		if err != nil {
			return notFound(err, "van %d", *o.VanID)
		}
		if !active {
			return fmt.Errorf("van %d: %w", *o.VanID, ErrInactive)
		}
		if o.DeliveryRatePerKm.IsZero() {
			o.DeliveryRatePerKm = rate
		}
	}

	rates := make([]decimal.Decimal, 0, len(o.Items))
	for _, it := range o.Items {
		var price, gstRate decimal.Decimal
		err := tx.QueryRow(ctx, `SELECT name, hsn_code, unit_price, gst_rate, is_active FROM products WHERE id=$1`, it.ProductID).
			Scan(&it.ProductName, &it.HSNCode, &price, &gstRate, &active)
		if err != nil {
			return notFound(err, "product %d", it.ProductID)
		}
		if !active {
			return fmt.Errorf("product %d: %w", it.ProductID, ErrInactive)
		}
		if it.UnitPrice.IsZero() {
			it.UnitPrice = price
		}
		rates = append(rates, gstRate)
	}
	if o.GSTEnabled && o.TaxRate.IsZero() && len(rates) > 0 {
		rate, err := billing.CatalogueTaxRate(rates)
		if err != nil {
			return err
		}
		o.TaxRate = rate
	}
	return billing.PriceOrder(o)
}

func insertItemsTx(ctx context.Context, tx pgx.Tx, o *models.Order) error {
	for _, it := range o.Items {
		it.OrderID = o.ID
		err := tx.QueryRow(ctx, `
			INSERT INTO order_items (order_id, product_id, quantity, unit_price, line_total)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id
		`, o.ID, it.ProductID, it.Quantity, it.UnitPrice, it.LineTotal).Scan(&it.ID)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}
	return nil
}

// CreateOrder prices the order, assigns its UORN and reserves stock for every item.
func (r *OrderRepo) CreateOrder(ctx context.Context, o *models.Order) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	// --- Step 1: resolve references and compute financials ---
	if err := prepareOrderTx(ctx, tx, o); err != nil {
		return err
	}
	if o.OrderDate.IsZero() {
		o.OrderDate = time.Now()
	}

	// --- Step 2: order number ---
	if o.OrderNo, err = NextNumberTx(ctx, tx, models.ORDER_PREFIX, time.Now()); err != nil {
		return fmt.Errorf("order number: %w", err)
	}

	// --- Step 3: insert order ---
	err = tx.QueryRow(ctx, `
		INSERT INTO orders (
		    order_no, distributor_id, van_id, order_date,
		    delivery_distance_km, delivery_rate_per_km, gst_enabled, interstate, tax_rate,
		    subtotal, tax_amount, cgst, sgst, igst, delivery_fee, bill_total,
		    total_payable_amount, amount_paid, pending_amount, status, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21)
		RETURNING id, order_date, created_at, updated_at
	`,
		o.OrderNo, o.DistributorID, o.VanID, o.OrderDate,
		o.DeliveryDistanceKm, o.DeliveryRatePerKm, o.GSTEnabled, o.Interstate, o.TaxRate,
		o.Subtotal, o.TaxAmount, o.CGST, o.SGST, o.IGST, o.DeliveryFee, o.BillTotal,
		o.TotalPayableAmount, o.AmountPaid, o.PendingAmount, o.Status, o.Notes,
	).Scan(&o.ID, &o.OrderDate, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	// --- Step 4: items and reservation ---
	if err := insertItemsTx(ctx, tx, o); err != nil {
		return err
	}
	if err := ReserveOrderTx(ctx, tx, o.ID, o.Items); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// UpdateOrder replaces the items and pricing inputs of an order that is still
// collecting payment. The old reservation is cancelled and the new items reserved.
func (r *OrderRepo) UpdateOrder(ctx context.Context, o *models.Order) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	// --- Step 1: lock and check the old order ---
	old, err := lockOrderTx(ctx, tx, o.ID)
	if err != nil {
		return err
	}
	switch {
	case old.Status != models.ORDER_PENDING_VERIFICATION && old.Status != models.ORDER_PARTIALLY_PAID:
		return fmt.Errorf("%w: cannot edit %s order %s", ErrInvalidStatus, old.Status, old.OrderNo)
	case old.DispatchedAt != nil:
		return fmt.Errorf("%w: order %s is already dispatched", ErrInvalidStatus, old.OrderNo)
	case old.InvoiceNo != nil:
		return fmt.Errorf("%w: order %s is already invoiced", ErrInvalidStatus, old.OrderNo)
	}

	// --- Step 2: give back the old reservation ---
	if err := CancelReservationTx(ctx, tx, o.ID, fmt.Sprintf("Order %s edited", old.OrderNo)); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM order_items WHERE order_id=$1`, o.ID); err != nil {
		return fmt.Errorf("delete old items: %w", err)
	}

	// --- Step 3: reprice, keeping what was already paid ---
	o.OrderNo = old.OrderNo
	o.AmountPaid = old.AmountPaid
	if o.OrderDate.IsZero() {
		o.OrderDate = old.OrderDate
	}
	if err := prepareOrderTx(ctx, tx, o); err != nil {
		return err
	}

	err = tx.QueryRow(ctx, `
		UPDATE orders
		SET distributor_id=$1, van_id=$2, order_date=$3,
		    delivery_distance_km=$4, delivery_rate_per_km=$5, gst_enabled=$6, interstate=$7, tax_rate=$8,
		    subtotal=$9, tax_amount=$10, cgst=$11, sgst=$12, igst=$13, delivery_fee=$14, bill_total=$15,
		    total_payable_amount=$16, pending_amount=$17, status=$18, notes=$19,
		    updated_at=CURRENT_TIMESTAMP
		WHERE id=$20
		RETURNING created_at, updated_at
	`,
		o.DistributorID, o.VanID, o.OrderDate,
		o.DeliveryDistanceKm, o.DeliveryRatePerKm, o.GSTEnabled, o.Interstate, o.TaxRate,
		o.Subtotal, o.TaxAmount, o.CGST, o.SGST, o.IGST, o.DeliveryFee, o.BillTotal,
		o.TotalPayableAmount, o.PendingAmount, o.Status, o.Notes, o.ID,
	).Scan(&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}

	// --- Step 4: new items and reservation ---
	if err := insertItemsTx(ctx, tx, o); err != nil {
		return err
	}
	if err := ReserveOrderTx(ctx, tx, o.ID, o.Items); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// RecordPayment adds a verified payment and re-derives the order status.
func (r *OrderRepo) RecordPayment(ctx context.Context, orderID int64, amount decimal.Decimal) (*models.Order, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	o, err := lockOrderTx(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	if err := billing.ApplyPayment(o, amount); err != nil {
		return nil, err
	}
	err = tx.QueryRow(ctx, `
		UPDATE orders
		SET amount_paid=$1, pending_amount=$2, status=$3, updated_at=CURRENT_TIMESTAMP
		WHERE id=$4
		RETURNING updated_at
	`, o.AmountPaid, o.PendingAmount, o.Status, o.ID).Scan(&o.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("update payment: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit payment: %w", err)
	}
	return r.GetOrderDetailsByID(ctx, orderID)
}

// DispatchOrder assigns a van and releases the order's reserved stock.
// The delivery fee stays as billed when the order was priced, whichever van carries it.
func (r *OrderRepo) DispatchOrder(ctx context.Context, orderID, vanID int64) (*models.Order, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	o, err := lockOrderTx(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	switch {
	case o.Status == models.ORDER_CANCELLED || o.Status == models.ORDER_REFUNDED:
		return nil, fmt.Errorf("%w: cannot dispatch %s order %s", ErrInvalidStatus, o.Status, o.OrderNo)
	case o.DispatchedAt != nil:
		return nil, fmt.Errorf("%w: order %s is already dispatched", ErrInvalidStatus, o.OrderNo)
	}

	var active bool
	if err := tx.QueryRow(ctx, `SELECT is_active FROM vans WHERE id=$1`, vanID).Scan(&active); err != nil {
		return nil, notFound(err, "van %d", vanID)
	}
	if !active {
		return nil, fmt.Errorf("van %d: %w", vanID, ErrInactive)
	}

	if err := ReleaseReservationTx(ctx, tx, orderID, fmt.Sprintf("Dispatched with order %s", o.OrderNo)); err != nil {
		return nil, err
	}
	_, err = tx.Exec(ctx, `
		UPDATE orders
		SET van_id=$1, dispatched_at=CURRENT_TIMESTAMP, updated_at=CURRENT_TIMESTAMP
		WHERE id=$2
	`, vanID, orderID)
	if err != nil {
		return nil, fmt.Errorf("mark dispatched: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit dispatch: %w", err)
	}
	return r.GetOrderDetailsByID(ctx, orderID)
}

// CancelOrder cancels an undispatched order and restores its reserved stock.
func (r *OrderRepo) CancelOrder(ctx context.Context, orderID int64, reason string) (*models.Order, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	o, err := lockOrderTx(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	switch {
	case o.Status == models.ORDER_CANCELLED || o.Status == models.ORDER_REFUNDED:
		return nil, fmt.Errorf("%w: order %s is already %s", ErrInvalidStatus, o.OrderNo, o.Status)
	case o.DispatchedAt != nil:
		return nil, fmt.Errorf("%w: order %s is already dispatched", ErrInvalidStatus, o.OrderNo)
	}

	note := fmt.Sprintf("Order %s cancelled", o.OrderNo)
	if reason = strings.TrimSpace(reason); reason != "" {
		note += ": " + reason
	}
	if err := CancelReservationTx(ctx, tx, orderID, note); err != nil {
		return nil, err
	}
	_, err = tx.Exec(ctx, `
		UPDATE orders
		SET status=$1, notes=CASE WHEN $2 = '' THEN notes ELSE $2 END, updated_at=CURRENT_TIMESTAMP
		WHERE id=$3
	`, models.ORDER_CANCELLED, reason, orderID)
	if err != nil {
		return nil, fmt.Errorf("cancel order: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit cancel: %w", err)
	}
	return r.GetOrderDetailsByID(ctx, orderID)
}

// RefundOrder marks a cancelled order's collected money as returned.
func (r *OrderRepo) RefundOrder(ctx context.Context, orderID int64) (*models.Order, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	o, err := lockOrderTx(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	if o.Status != models.ORDER_CANCELLED {
		return nil, fmt.Errorf("%w: only cancelled orders can be refunded, order %s is %s", ErrInvalidStatus, o.OrderNo, o.Status)
	}
	if !o.AmountPaid.IsPositive() {
		return nil, fmt.Errorf("%w: order %s has no payment to refund", ErrInvalidStatus, o.OrderNo)
	}
	_, err = tx.Exec(ctx, `
		UPDATE orders
		SET status=$1, refund_amount=amount_paid, updated_at=CURRENT_TIMESTAMP
		WHERE id=$2
	`, models.ORDER_REFUNDED, orderID)
	if err != nil {
		return nil, fmt.Errorf("refund order: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit refund: %w", err)
	}
	return r.GetOrderDetailsByID(ctx, orderID)
}

// AssignInvoiceNo gives the order a TAX number when GST applies, an INV number
// otherwise. An order keeps the first number it was given.
func (r *OrderRepo) AssignInvoiceNo(ctx context.Context, orderID int64) (*models.Order, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	o, err := lockOrderTx(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	if o.InvoiceNo == nil {
		if o.Status == models.ORDER_CANCELLED || o.Status == models.ORDER_REFUNDED {
			return nil, fmt.Errorf("%w: cannot invoice %s order %s", ErrInvalidStatus, o.Status, o.OrderNo)
		}
		prefix := models.INVOICE_PREFIX
		if o.GSTEnabled {
			prefix = models.TAX_INVOICE_PREFIX
		}
		invoiceNo, err := NextNumberTx(ctx, tx, prefix, time.Now())
		if err != nil {
			return nil, fmt.Errorf("invoice number: %w", err)
		}
		if _, err := tx.Exec(ctx, `UPDATE orders SET invoice_no=$1, updated_at=CURRENT_TIMESTAMP WHERE id=$2`, invoiceNo, orderID); err != nil {
			return nil, fmt.Errorf("store invoice number: %w", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit invoice number: %w", err)
	}
	return r.GetOrderDetailsByID(ctx, orderID)
}

// GetOrderDetailsByID fetches an order with its items
func (r *OrderRepo) GetOrderDetailsByID(ctx context.Context, orderID int64) (*models.Order, error) {
	var o models.Order
	if err := scanOrder(r.db.QueryRow(ctx, orderSelect+` WHERE o.id=$1`, orderID), &o); err != nil {
		return nil, notFound(err, "order %d", orderID)
	}
	items, err := loadItems(ctx, r.db, orderID)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return &o, nil
}

// ListOrdersPaginated lists orders without items. Limit -1 returns every match.
func (r *OrderRepo) ListOrdersPaginated(ctx context.Context, f models.OrderFilter) ([]*models.Order, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	argIdx := 1

	// --- Filters ---
	if f.Status != "" {
		where += fmt.Sprintf(" AND o.status = $%d", argIdx)
		args = append(args, f.Status)
		argIdx++
	}
	if f.DistributorID > 0 {
		where += fmt.Sprintf(" AND o.distributor_id = $%d", argIdx)
		args = append(args, f.DistributorID)
		argIdx++
	}
	if f.VanID > 0 {
		where += fmt.Sprintf(" AND o.van_id = $%d", argIdx)
		args = append(args, f.VanID)
		argIdx++
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM orders o`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	// --- Sorting ---
	sortOrder := "DESC"
	if strings.ToLower(f.SortByDate) == "asc" {
		sortOrder = "ASC"
	}
	query := orderSelect + where + " ORDER BY o.order_date " + sortOrder + ", o.id " + sortOrder

	// --- Pagination ---
	if f.Limit != -1 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
		args = append(args, f.Limit, (f.Page-1)*f.Limit)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := []*models.Order{}
	for rows.Next() {
		var o models.Order
		if err := scanOrder(rows, &o); err != nil {
			return nil, 0, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, &o)
	}
	return orders, total, rows.Err()
}
