package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/catalogops/catalog-scraper/internal/models"
)

// ProductStore persists the durable catalog records.
type ProductStore struct {
	db *DB
}

func NewProductStore(db *DB) *ProductStore {
	return &ProductStore{db: db}
}

const productColumns = `id, system_id, sku, title, description_text, description_html,
	images, featured_image, supplier, missing_description, created_at, updated_at`

func scanProduct(row pgx.Row) (*models.Product, error) {
	p := &models.Product{}
	err := row.Scan(
		&p.ID, &p.SystemID, &p.SKU, &p.Title, &p.DescriptionText, &p.DescriptionHTML,
		&p.Images, &p.FeaturedImage, &p.Supplier, &p.MissingDescription,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan product: %w", err)
	}
	return p, nil
}

// FindBySKU returns the product for a SKU, or nil when none exists.
func (s *ProductStore) FindBySKU(ctx context.Context, sku string) (*models.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products WHERE sku = $1`, productColumns)
	return scanProduct(s.db.QueryRow(ctx, query, sku))
}

// Insert creates a new catalog record.
func (s *ProductStore) Insert(ctx context.Context, p *models.Product) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}

	query := `
		INSERT INTO products
		(id, system_id, sku, title, description_text, description_html,
		 images, featured_image, supplier, missing_description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at`

	err := s.db.QueryRow(ctx, query,
		p.ID, p.SystemID, p.SKU, p.Title, p.DescriptionText, p.DescriptionHTML,
		p.Images, p.FeaturedImage, p.Supplier, p.MissingDescription,
	).Scan(&p.CreatedAt, &p.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}

	return nil
}

// Update overwrites all scraped fields in place, preserving row identity.
func (s *ProductStore) Update(ctx context.Context, p *models.Product) error {
	query := `
		UPDATE products SET
			system_id = $2,
			title = $3,
			description_text = $4,
			description_html = $5,
			images = $6,
			featured_image = $7,
			supplier = $8,
			missing_description = $9,
			updated_at = NOW()
		WHERE sku = $1`

	_, err := s.db.Exec(ctx, query,
		p.SKU, p.SystemID, p.Title, p.DescriptionText, p.DescriptionHTML,
		p.Images, p.FeaturedImage, p.Supplier, p.MissingDescription,
	)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}

	return nil
}

// ListBySupplier returns all catalog records for a supplier, ordered by SKU.
func (s *ProductStore) ListBySupplier(ctx context.Context, supplier models.Supplier) ([]*models.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products WHERE supplier = $1 ORDER BY sku`, productColumns)

	rows, err := s.db.Query(ctx, query, supplier)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}

	return products, rows.Err()
}

// DeleteBySupplier removes a supplier's catalog records. Gated behind the
// CLEAR_DB operator confirmation.
func (s *ProductStore) DeleteBySupplier(ctx context.Context, supplier models.Supplier) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM products WHERE supplier = $1`, supplier); err != nil {
		return fmt.Errorf("failed to delete products: %w", err)
	}
	return nil
}

// CountBySupplier returns catalog record counts grouped by supplier.
func (s *ProductStore) CountBySupplier(ctx context.Context) (map[models.Supplier]int, error) {
	query := `SELECT supplier, COUNT(*) FROM products GROUP BY supplier`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.Supplier]int)
	for rows.Next() {
		var supplier models.Supplier
		var count int
		if err := rows.Scan(&supplier, &count); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts[supplier] = count
	}

	return counts, rows.Err()
}
