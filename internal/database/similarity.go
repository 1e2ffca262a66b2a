package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/catalogops/catalog-scraper/internal/models"
)

// SimilarityStore is the append-only audit trail of title-match decisions.
type SimilarityStore struct {
	db *DB
}

func NewSimilarityStore(db *DB) *SimilarityStore {
	return &SimilarityStore{db: db}
}

// Insert appends one similarity check result.
func (s *SimilarityStore) Insert(ctx context.Context, row *models.ProductSimilarity) error {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}

	query := `
		INSERT INTO product_similarities (id, sku, ls_title, store_title, similarity, supplier)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`

	err := s.db.QueryRow(ctx, query,
		row.ID, row.SKU, row.LSTitle, row.StoreTitle, row.Similarity, row.Supplier,
	).Scan(&row.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert similarity row: %w", err)
	}

	return nil
}

// ListBySupplier returns all audit rows for a supplier.
func (s *SimilarityStore) ListBySupplier(ctx context.Context, supplier models.Supplier) ([]*models.ProductSimilarity, error) {
	query := `
		SELECT id, sku, ls_title, store_title, similarity, supplier, created_at
		FROM product_similarities
		WHERE supplier = $1
		ORDER BY created_at`

	rows, err := s.db.Query(ctx, query, supplier)
	if err != nil {
		return nil, fmt.Errorf("failed to query similarities: %w", err)
	}
	defer rows.Close()

	var out []*models.ProductSimilarity
	for rows.Next() {
		row := &models.ProductSimilarity{}
		err := rows.Scan(&row.ID, &row.SKU, &row.LSTitle, &row.StoreTitle,
			&row.Similarity, &row.Supplier, &row.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan similarity row: %w", err)
		}
		out = append(out, row)
	}

	return out, rows.Err()
}

// PurgeBySupplier clears the audit trail at the end of a successful run.
func (s *SimilarityStore) PurgeBySupplier(ctx context.Context, supplier models.Supplier) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM product_similarities WHERE supplier = $1`, supplier); err != nil {
		return fmt.Errorf("failed to purge similarities: %w", err)
	}
	return nil
}
