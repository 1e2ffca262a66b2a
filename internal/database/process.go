package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/catalogops/catalog-scraper/internal/models"
)

// ProcessStore persists the per-supplier crash-resume checkpoint.
type ProcessStore struct {
	db *DB
}

func NewProcessStore(db *DB) *ProcessStore {
	return &ProcessStore{db: db}
}

const processColumns = `id, supplier, status, last_dep_url, product_list_page,
	last_product_url, last_sku, created_at, updated_at`

func scanProcess(row pgx.Row) (*models.Process, error) {
	p := &models.Process{}
	err := row.Scan(
		&p.ID, &p.Supplier, &p.Status, &p.LastDepURL, &p.ProductListPage,
		&p.LastProductURL, &p.LastSKU, &p.CreatedAt, &p.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan process: %w", err)
	}
	return p, nil
}

// FindUnfinished returns the most recent ONGOING or FAILED process for the
// supplier, or nil when none exists.
func (s *ProcessStore) FindUnfinished(ctx context.Context, supplier models.Supplier) (*models.Process, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM processes
		WHERE supplier = $1 AND status IN ($2, $3)
		ORDER BY created_at DESC
		LIMIT 1`, processColumns)

	return scanProcess(s.db.QueryRow(ctx, query, supplier,
		models.ProcessOngoing, models.ProcessFailed))
}

// FindOngoing returns the current ONGOING process for the supplier, or nil.
func (s *ProcessStore) FindOngoing(ctx context.Context, supplier models.Supplier) (*models.Process, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM processes
		WHERE supplier = $1 AND status = $2
		ORDER BY created_at DESC
		LIMIT 1`, processColumns)

	return scanProcess(s.db.QueryRow(ctx, query, supplier, models.ProcessOngoing))
}

// Create inserts a new ONGOING process with empty cursors.
func (s *ProcessStore) Create(ctx context.Context, supplier models.Supplier) (*models.Process, error) {
	query := fmt.Sprintf(`
		INSERT INTO processes (id, supplier, status)
		VALUES ($1, $2, $3)
		RETURNING %s`, processColumns)

	p, err := scanProcess(s.db.QueryRow(ctx, query, uuid.New(), supplier, models.ProcessOngoing))
	if err != nil {
		return nil, fmt.Errorf("failed to create process: %w", err)
	}
	return p, nil
}

// SetStatus transitions a process record.
func (s *ProcessStore) SetStatus(ctx context.Context, id uuid.UUID, status models.ProcessStatus) error {
	query := `
		UPDATE processes SET status = $2, updated_at = NOW()
		WHERE id = $1`

	if _, err := s.db.Exec(ctx, query, id, status); err != nil {
		return fmt.Errorf("failed to update process status: %w", err)
	}
	return nil
}

// Advance updates one cursor column on the supplier's ONGOING process. The
// column name comes from a fixed set owned by the pipeline package, never from
// user input.
func (s *ProcessStore) Advance(ctx context.Context, supplier models.Supplier, column string, value any) error {
	query := fmt.Sprintf(`
		UPDATE processes SET %s = $3, updated_at = NOW()
		WHERE supplier = $1 AND status = $2`, column)

	if _, err := s.db.Exec(ctx, query, supplier, models.ProcessOngoing, value); err != nil {
		return fmt.Errorf("failed to advance %s: %w", column, err)
	}
	return nil
}

// List returns all process records, newest first.
func (s *ProcessStore) List(ctx context.Context) ([]*models.Process, error) {
	query := fmt.Sprintf(`SELECT %s FROM processes ORDER BY created_at DESC`, processColumns)

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query processes: %w", err)
	}
	defer rows.Close()

	var processes []*models.Process
	for rows.Next() {
		p, err := scanProcess(rows)
		if err != nil {
			return nil, err
		}
		processes = append(processes, p)
	}

	return processes, rows.Err()
}
