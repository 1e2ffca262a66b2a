package database

import (
	"context"
	"fmt"

	"github.com/catalogops/catalog-scraper/internal/models"
)

// PricingStore persists competitor price observations, one row per SKU+store.
type PricingStore struct {
	db *DB
}

func NewPricingStore(db *DB) *PricingStore {
	return &PricingStore{db: db}
}

// Upsert records the latest observed price for a SKU at a store.
func (s *PricingStore) Upsert(ctx context.Context, p *models.ProductPricing) error {
	query := `
		INSERT INTO product_pricings (sku, store, system_id, title, their_price, our_price)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (sku, store) DO UPDATE SET
			system_id = EXCLUDED.system_id,
			title = EXCLUDED.title,
			their_price = EXCLUDED.their_price,
			our_price = EXCLUDED.our_price`

	_, err := s.db.Exec(ctx, query,
		p.SKU, p.Store, p.SystemID, p.Title, p.TheirPrice, p.OurPrice)
	if err != nil {
		return fmt.Errorf("failed to upsert pricing: %w", err)
	}

	return nil
}

// ListByStore returns all price observations for a store, ordered by SKU.
func (s *PricingStore) ListByStore(ctx context.Context, store models.Store) ([]*models.ProductPricing, error) {
	query := `
		SELECT sku, store, system_id, title, their_price, our_price
		FROM product_pricings
		WHERE store = $1
		ORDER BY sku`

	rows, err := s.db.Query(ctx, query, store)
	if err != nil {
		return nil, fmt.Errorf("failed to query pricings: %w", err)
	}
	defer rows.Close()

	var out []*models.ProductPricing
	for rows.Next() {
		p := &models.ProductPricing{}
		err := rows.Scan(&p.SKU, &p.Store, &p.SystemID, &p.Title, &p.TheirPrice, &p.OurPrice)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pricing: %w", err)
		}
		out = append(out, p)
	}

	return out, rows.Err()
}
