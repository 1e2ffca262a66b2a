package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/catalogops/catalog-scraper/internal/models"
)

// RawProductStore holds the reference snapshot loaded from the source-of-truth
// CSV. Rows are never mutated; the table is wiped and reloaded per run.
type RawProductStore struct {
	db *DB
}

func NewRawProductStore(db *DB) *RawProductStore {
	return &RawProductStore{db: db}
}

// InsertBatch bulk-inserts one page of reference rows.
func (s *RawProductStore) InsertBatch(ctx context.Context, products []models.RawProduct) error {
	batch := &pgx.Batch{}
	for _, p := range products {
		batch.Queue(`
			INSERT INTO raw_products (system_id, sku, custom_sku, upc, title, price)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (system_id) DO NOTHING`,
			p.SystemID, p.SKU, p.CustomSKU, p.UPC, p.Title, p.Price)
	}

	results := s.db.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range products {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to insert raw products: %w", err)
		}
	}

	return nil
}

// FindBySKU matches by sku or customSku, the way store listings reference the
// catalog. Returns nil when the SKU is not in the reference list.
func (s *RawProductStore) FindBySKU(ctx context.Context, sku string) (*models.RawProduct, error) {
	query := `
		SELECT system_id, sku, custom_sku, upc, title, price
		FROM raw_products
		WHERE sku = $1 OR custom_sku = $1
		LIMIT 1`

	p := &models.RawProduct{}
	err := s.db.QueryRow(ctx, query, sku).Scan(
		&p.SystemID, &p.SKU, &p.CustomSKU, &p.UPC, &p.Title, &p.Price,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get raw product: %w", err)
	}

	return p, nil
}

// FilterKnownSKUs returns the subset of skus present in the reference list,
// matching either sku or custom_sku.
func (s *RawProductStore) FilterKnownSKUs(ctx context.Context, skus []string) (map[string]bool, error) {
	query := `
		SELECT sku, custom_sku FROM raw_products
		WHERE sku = ANY($1) OR custom_sku = ANY($1)`

	rows, err := s.db.Query(ctx, query, skus)
	if err != nil {
		return nil, fmt.Errorf("failed to filter raw products: %w", err)
	}
	defer rows.Close()

	known := make(map[string]bool)
	for rows.Next() {
		var sku, customSKU string
		if err := rows.Scan(&sku, &customSKU); err != nil {
			return nil, fmt.Errorf("failed to scan raw product: %w", err)
		}
		known[sku] = true
		if customSKU != "" {
			known[customSKU] = true
		}
	}

	return known, rows.Err()
}

// List returns the whole snapshot in insertion order.
func (s *RawProductStore) List(ctx context.Context) ([]models.RawProduct, error) {
	query := `
		SELECT system_id, sku, custom_sku, upc, title, price
		FROM raw_products
		ORDER BY system_id`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list raw products: %w", err)
	}
	defer rows.Close()

	var out []models.RawProduct
	for rows.Next() {
		var p models.RawProduct
		if err := rows.Scan(&p.SystemID, &p.SKU, &p.CustomSKU, &p.UPC, &p.Title, &p.Price); err != nil {
			return nil, fmt.Errorf("failed to scan raw product: %w", err)
		}
		out = append(out, p)
	}

	return out, rows.Err()
}

// Purge removes the whole snapshot.
func (s *RawProductStore) Purge(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM raw_products`); err != nil {
		return fmt.Errorf("failed to purge raw products: %w", err)
	}
	return nil
}

// Count returns the snapshot size.
func (s *RawProductStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM raw_products`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count raw products: %w", err)
	}
	return count, nil
}
