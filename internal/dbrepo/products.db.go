package dbrepo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/projuktisheba/bottling-erp-api/internal/models"
)

type ProductRepo struct {
	db *pgxpool.Pool
}

func NewProductRepo(db *pgxpool.Pool) *ProductRepo {
	return &ProductRepo{db: db}
}

// ============================== PRODUCT OPERATIONS ==============================

const productColumns = `id, name, sku, hsn_code, box_size, unit_price, gst_rate, is_active, created_at, updated_at`

func scanProduct(row interface{ Scan(...any) error }, p *models.Product) error {
	return row.Scan(&p.ID, &p.Name, &p.SKU, &p.HSNCode, &p.BoxSize, &p.UnitPrice, &p.GSTRate, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
}

// CreateProduct inserts a product together with its empty inventory row.
func (s *ProductRepo) CreateProduct(ctx context.Context, p *models.Product) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO products (name, sku, hsn_code, box_size, unit_price, gst_rate, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`, p.Name, p.SKU, p.HSNCode, p.BoxSize, p.UnitPrice, p.GSTRate, p.IsActive).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert product: %w", uniqueViolation(err, "product sku"))
	}

	if _, err := tx.Exec(ctx, `INSERT INTO inventory (product_id) VALUES ($1)`, p.ID); err != nil {
		return fmt.Errorf("insert inventory row: %w", err)
	}
	return tx.Commit(ctx)
}

// GetProduct fetches a product by ID
func (s *ProductRepo) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	p := &models.Product{}
	if err := scanProduct(s.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id=$1`, id), p); err != nil {
		return nil, notFound(err, "product %d", id)
	}
	return p, nil
}

// UpdateProduct updates catalogue details. Stock is only changed through movements.
func (s *ProductRepo) UpdateProduct(ctx context.Context, p *models.Product) error {
	err := s.db.QueryRow(ctx, `
		UPDATE products
		SET name=$1, sku=$2, hsn_code=$3, box_size=$4, unit_price=$5, gst_rate=$6, is_active=$7,
		    updated_at=CURRENT_TIMESTAMP
		WHERE id=$8
		RETURNING created_at, updated_at
	`, p.Name, p.SKU, p.HSNCode, p.BoxSize, p.UnitPrice, p.GSTRate, p.IsActive, p.ID).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update product: %w", notFound(uniqueViolation(err, "product sku"), "product %d", p.ID))
	}
	return nil
}

// GetProducts lists the catalogue ordered by name
func (s *ProductRepo) GetProducts(ctx context.Context, activeOnly bool) ([]*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products`
	if activeOnly {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY name, id`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error fetching products: %w", err)
	}
	defer rows.Close()

	products := []*models.Product{}
	for rows.Next() {
		var p models.Product
		if err := scanProduct(rows, &p); err != nil {
			return nil, fmt.Errorf("error scanning product: %w", err)
		}
		products = append(products, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return products, nil
}
