package rawref

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/catalogops/catalog-scraper/internal/models"
)

// Reference CSV column positions. Row 0 is a header and is skipped.
const (
	colSystemID  = 0
	colUPC       = 1
	colCustomSKU = 3
	colSKU       = 4
	colTitle     = 5
	colPrice     = 8
)

const batchSize = 100

// Store is the persistence surface of the loader (for testing).
type Store interface {
	Purge(ctx context.Context) error
	InsertBatch(ctx context.Context, products []models.RawProduct) error
}

// Loader wipes and reloads the raw-reference snapshot from the source-of-truth
// CSV at the start of every supplier run.
type Loader struct {
	store  Store
	path   string
	logger *slog.Logger
}

func NewLoader(store Store, inputDir, filename string) *Loader {
	return &Loader{
		store:  store,
		path:   filepath.Join(inputDir, filename),
		logger: slog.Default().With("component", "rawref"),
	}
}

// Load replaces the snapshot wholesale. Any error is fatal to the run: the
// pipeline must not crawl without the authoritative list.
func (l *Loader) Load(ctx context.Context) (int, error) {
	f, err := os.Open(l.path)
	if err != nil {
		return 0, fmt.Errorf("failed to open reference csv: %w", err)
	}
	defer f.Close()

	products, err := ParseReferenceCSV(f)
	if err != nil {
		return 0, err
	}

	if err := l.store.Purge(ctx); err != nil {
		return 0, err
	}

	for start := 0; start < len(products); start += batchSize {
		end := start + batchSize
		if end > len(products) {
			end = len(products)
		}
		if err := l.store.InsertBatch(ctx, products[start:end]); err != nil {
			return 0, err
		}
	}

	l.logger.Info("raw reference reloaded", "path", l.path, "count", len(products))
	return len(products), nil
}

// ParseReferenceCSV maps the positional reference columns into RawProduct
// rows, skipping the header row and rows without a system identifier.
func ParseReferenceCSV(r io.Reader) ([]models.RawProduct, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse reference csv: %w", err)
	}

	var products []models.RawProduct
	for i, row := range records {
		if i == 0 {
			continue
		}

		get := func(col int) string {
			if col < len(row) {
				return strings.TrimSpace(stripBOM(row[col]))
			}
			return ""
		}

		systemID := get(colSystemID)
		if systemID == "" {
			continue
		}

		price, _ := ParseMoney(get(colPrice))

		products = append(products, models.RawProduct{
			SystemID:  systemID,
			UPC:       get(colUPC),
			CustomSKU: get(colCustomSKU),
			SKU:       get(colSKU),
			Title:     get(colTitle),
			Price:     price,
		})
	}

	return products, nil
}

func stripBOM(s string) string {
	return strings.TrimPrefix(s, "\uFEFF")
}
