package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catalogops/catalog-scraper/internal/models"
)

func readAll(t *testing.T, buf *bytes.Buffer) [][]string {
	t.Helper()
	records, err := csv.NewReader(buf).ReadAll()
	require.NoError(t, err)
	return records
}

func TestWriteProductFeed(t *testing.T) {
	products := []*models.Product{
		{
			SystemID:        "sys-1",
			SKU:             "SKU-1",
			Title:           "Stratocaster",
			DescriptionText: "A classic.",
			DescriptionHTML: "<p>A classic.</p>",
			FeaturedImage:   "sku-1-0.jpg",
			Images:          []string{"sku-1-1.jpg", "sku-1-2.jpg"},
		},
		{
			SystemID:           "sys-2",
			SKU:                "SKU-2",
			Title:              "Telecaster",
			MissingDescription: true,
			FeaturedImage:      "sku-2-0.jpg",
		},
	}

	var buf bytes.Buffer
	require.NoError(t, writeTo(&buf, func(w *csv.Writer) error {
		return WriteProductFeed(w, products)
	}))

	records := readAll(t, &buf)
	require.Len(t, records, 3)

	header := records[0]
	assert.Equal(t, "System ID", header[0])
	assert.Equal(t, "Featured Image", header[8])
	// Image columns follow the widest product: two extra images plus one.
	assert.Len(t, header, 12)

	assert.Equal(t, "sys-1", records[1][0])
	assert.Equal(t, "false", records[1][5])
	assert.Equal(t, "sku-1-1.jpg", records[1][9])

	// Narrower rows are padded to the header width.
	assert.Len(t, records[2], 12)
	assert.Equal(t, "true", records[2][5])
	assert.Equal(t, "", records[2][9])
}

func TestWriteSimilarityReport(t *testing.T) {
	rows := []*models.ProductSimilarity{
		{SKU: "SKU-1", LSTitle: "Ref", StoreTitle: "Store", Similarity: 0.7531},
	}

	var buf bytes.Buffer
	require.NoError(t, writeTo(&buf, func(w *csv.Writer) error {
		return WriteSimilarityReport(w, rows)
	}))

	records := readAll(t, &buf)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"SKU", "Reference Title", "Store Title", "Similarity"}, records[0])
	assert.Equal(t, "0.7531", records[1][3])
}

func TestWritePricingRows(t *testing.T) {
	pricings := []*models.ProductPricing{
		{SystemID: "sys-1", SKU: "SKU-1", Title: "Strat", TheirPrice: 1299.5, OurPrice: 1199, Store: models.StoreTomLeeMusic},
	}

	var buf bytes.Buffer
	require.NoError(t, writeTo(&buf, func(w *csv.Writer) error {
		return WritePricingRows(w, pricings)
	}))

	records := readAll(t, &buf)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"sys-1", "SKU-1", "Strat", "1299.50", "1199.00", "TomLeeMusic"}, records[1])
}

type staticProducts struct{ products []*models.Product }

func (s staticProducts) ListBySupplier(context.Context, models.Supplier) ([]*models.Product, error) {
	return s.products, nil
}

type staticSimilarities struct{ rows []*models.ProductSimilarity }

func (s staticSimilarities) ListBySupplier(context.Context, models.Supplier) ([]*models.ProductSimilarity, error) {
	return s.rows, nil
}

func TestWriteRunReportsLayout(t *testing.T) {
	dir := t.TempDir()

	reporter := NewReporter(
		staticProducts{products: []*models.Product{{SystemID: "sys-1", SKU: "SKU-1", Title: "Strat", FeaturedImage: "a.jpg"}}},
		staticSimilarities{rows: []*models.ProductSimilarity{{SKU: "SKU-1", Similarity: 1}}},
		dir,
	)

	require.NoError(t, reporter.WriteRunReports(context.Background(), models.SupplierLM))

	// Files land in a per-supplier directory named by the lowercase slug.
	assert.FileExists(t, filepath.Join(dir, "lm", "lm-scraper-output.csv"))
	assert.FileExists(t, filepath.Join(dir, "lm", "lm-product-similarity-report.csv"))

	data, err := os.ReadFile(filepath.Join(dir, "lm", "lm-scraper-output.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "SKU-1")
}
