package dbrepo

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/projuktisheba/bottling-erp-api/internal/inventory"
	"github.com/projuktisheba/bottling-erp-api/internal/models"
)

type InventoryRepo struct {
	db *pgxpool.Pool
}

func NewInventoryRepo(db *pgxpool.Pool) *InventoryRepo {
	return &InventoryRepo{db: db}
}

const stockQuery = `
	SELECT i.product_id, p.name, p.sku, i.available_boxes, i.reserved_boxes, i.updated_at
	FROM inventory i
	JOIN products p ON p.id = i.product_id
`

// GetStock returns the stock position of one product
func (s *InventoryRepo) GetStock(ctx context.Context, productID int64) (*models.InventoryRecord, error) {
	var rec models.InventoryRecord
	err := s.db.QueryRow(ctx, stockQuery+` WHERE i.product_id=$1`, productID).Scan(
		&rec.ProductID, &rec.ProductName, &rec.SKU, &rec.AvailableBoxes, &rec.ReservedBoxes, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err, "inventory for product %d", productID)
	}
	return &rec, nil
}

// ListStock returns every product's stock position
func (s *InventoryRepo) ListStock(ctx context.Context) ([]*models.InventoryRecord, error) {
	rows, err := s.db.Query(ctx, stockQuery+` ORDER BY p.name, p.id`)
	if err != nil {
		return nil, fmt.Errorf("list stock: %w", err)
	}
	defer rows.Close()

	out := []*models.InventoryRecord{}
	for rows.Next() {
		var rec models.InventoryRecord
		if err := rows.Scan(&rec.ProductID, &rec.ProductName, &rec.SKU, &rec.AvailableBoxes, &rec.ReservedBoxes, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		out = append(out, &rec)
	}
	return out, rows.Err()
}

// Restock adds boxes to available stock and logs a restock movement.
func (s *InventoryRepo) Restock(ctx context.Context, productID, qty int64, notes string) (*models.InventoryRecord, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := ApplyMovementTx(ctx, tx, productID, nil, models.MOVEMENT_RESTOCK, qty, notes); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit restock: %w", err)
	}
	return s.GetStock(ctx, productID)
}

// ListMovements returns the movement log, newest first. Zero filters are ignored.
func (s *InventoryRepo) ListMovements(ctx context.Context, productID, orderID int64, limit int) ([]*models.InventoryMovement, error) {
	query := `
		SELECT m.id, m.product_id, p.name, m.order_id, m.movement_type, m.quantity, m.notes, m.created_at
		FROM inventory_movements m
		JOIN products p ON p.id = m.product_id
		WHERE 1=1`
	args := []any{}
	argIdx := 1
	if productID > 0 {
		query += fmt.Sprintf(" AND m.product_id = $%d", argIdx)
		args = append(args, productID)
		argIdx++
	}
	if orderID > 0 {
		query += fmt.Sprintf(" AND m.order_id = $%d", argIdx)
		args = append(args, orderID)
		argIdx++
	}
	query += " ORDER BY m.id DESC"
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, limit)
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()
	return scanMovements(rows)
}

func scanMovements(rows pgx.Rows) ([]*models.InventoryMovement, error) {
	out := []*models.InventoryMovement{}
	for rows.Next() {
		var m models.InventoryMovement
		if err := rows.Scan(&m.ID, &m.ProductID, &m.ProductName, &m.OrderID, &m.MovementType, &m.Quantity, &m.Notes, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}

// ── TX-scoped operations ──────────────────────────────────────────────────────

// ApplyMovementTx locks the product's inventory row, applies one movement and
// logs it within the caller's TX.
func ApplyMovementTx(ctx context.Context, tx pgx.Tx, productID int64, orderID *int64, movement string, qty int64, notes string) error {
	st := inventory.Stock{ProductID: productID}
	err := tx.QueryRow(ctx, `
		SELECT available_boxes, reserved_boxes
		FROM inventory
		WHERE product_id = $1
		FOR UPDATE
	`, productID).Scan(&st.Available, &st.Reserved)
	if errors.Is(err, pgx.ErrNoRows) && movement == models.MOVEMENT_RESTOCK {
		// products created outside CreateProduct have no row yet
		if _, err := tx.Exec(ctx, `INSERT INTO inventory (product_id) VALUES ($1) ON CONFLICT DO NOTHING`, productID); err != nil {
			return fmt.Errorf("create inventory row for product %d: %w", productID, err)
		}
	} else if err != nil {
		return fmt.Errorf("lock inventory: %w", notFound(err, "inventory for product %d", productID))
	}

	if err := st.Apply(movement, qty); err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		UPDATE inventory
		SET available_boxes = $1, reserved_boxes = $2, updated_at = CURRENT_TIMESTAMP
		WHERE product_id = $3
	`, st.Available, st.Reserved, productID)
	if err != nil {
		return fmt.Errorf("update inventory for product %d: %w", productID, err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO inventory_movements (product_id, order_id, movement_type, quantity, notes)
		VALUES ($1, $2, $3, $4, $5)
	`, productID, orderID, movement, qty, notes)
	if err != nil {
		return fmt.Errorf("insert %s movement for product %d: %w", movement, productID, err)
	}
	return nil
}

// ReserveOrderTx moves each item's boxes from available to reserved.
// Rows are locked in product id order.
func ReserveOrderTx(ctx context.Context, tx pgx.Tx, orderID int64, items []*models.OrderItem) error {
	demand := inventory.Demand(items)
	for _, pid := range sortedKeys(demand) {
		note := fmt.Sprintf("Reserved for order %d", orderID)
		if err := ApplyMovementTx(ctx, tx, pid, &orderID, models.MOVEMENT_RESERVE, demand[pid], note); err != nil {
			return err
		}
	}
	return nil
}

// CancelReservationTx returns whatever the order still holds in reserve to available stock.
func CancelReservationTx(ctx context.Context, tx pgx.Tx, orderID int64, note string) error {
	return settleReservationTx(ctx, tx, orderID, models.MOVEMENT_CANCEL, note)
}

// ReleaseReservationTx takes the order's reserved boxes out of stock on dispatch.
func ReleaseReservationTx(ctx context.Context, tx pgx.Tx, orderID int64, note string) error {
	return settleReservationTx(ctx, tx, orderID, models.MOVEMENT_RELEASE, note)
}

func settleReservationTx(ctx context.Context, tx pgx.Tx, orderID int64, movement, note string) error {
	rows, err := tx.Query(ctx, `
		SELECT m.id, m.product_id, '', m.order_id, m.movement_type, m.quantity, m.notes, m.created_at
		FROM inventory_movements m
		WHERE m.order_id = $1
	`, orderID)
	if err != nil {
		return fmt.Errorf("fetch movements for order %d: %w", orderID, err)
	}
	movements, err := scanMovements(rows)
	rows.Close()
	if err != nil {
		return err
	}

	held := inventory.Outstanding(movements)
	for _, pid := range sortedKeys(held) {
		if err := ApplyMovementTx(ctx, tx, pid, &orderID, movement, held[pid], note); err != nil {
			return err
		}
	}
	return nil
}

func sortedKeys(m map[int64]int64) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
