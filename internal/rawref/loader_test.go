package rawref

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catalogops/catalog-scraper/internal/models"
)

const sampleCSV = `System ID,UPC,EAN,Custom SKU,Manufact. SKU,Item,,,Price
sys-1,012345678905,,CUST-1,SKU-1,Stratocaster,,,"$1,299.99"
sys-2,,,,SKU-2,Telecaster,,,899
,,,,SKU-3,No system id,,,10
sys-4,,,CUST-4,SKU-4,Short row`

func TestParseReferenceCSV(t *testing.T) {
	products, err := ParseReferenceCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	// Header and the row without a system id are dropped.
	require.Len(t, products, 3)

	assert.Equal(t, models.RawProduct{
		SystemID:  "sys-1",
		UPC:       "012345678905",
		CustomSKU: "CUST-1",
		SKU:       "SKU-1",
		Title:     "Stratocaster",
		Price:     1299.99,
	}, products[0])

	assert.Equal(t, "SKU-2", products[1].SKU)
	assert.Equal(t, 899.0, products[1].Price)

	// Rows shorter than the price column still parse, just without a price.
	assert.Equal(t, "sys-4", products[2].SystemID)
	assert.Zero(t, products[2].Price)
}

func TestParseReferenceCSVStripsBOM(t *testing.T) {
	csvWithBOM := "\uFEFFSystem ID,UPC,EAN,Custom SKU,Manufact. SKU,Item,,,Price\n\uFEFFsys-1,,,,SKU-1,Title,,,5"

	products, err := ParseReferenceCSV(strings.NewReader(csvWithBOM))
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "sys-1", products[0].SystemID)
}

func TestParseMoney(t *testing.T) {
	tests := []struct {
		text     string
		expected float64
	}{
		{"$1,299.99", 1299.99},
		{"CAD 999", 999},
		{"10.50", 10.5},
		{"  $0.99 ", 0.99},
	}

	for _, tt := range tests {
		got, err := ParseMoney(tt.text)
		require.NoError(t, err, "text %q", tt.text)
		assert.InDelta(t, tt.expected, got, 1e-9, "text %q", tt.text)
	}
}

func TestParseMoneyNoAmount(t *testing.T) {
	for _, text := range []string{"", "free", "N/A"} {
		got, err := ParseMoney(text)
		assert.Error(t, err, "text %q", text)
		assert.Zero(t, got)
	}
}

type fakeRefStore struct {
	purged  int
	batches [][]models.RawProduct
}

func (f *fakeRefStore) Purge(context.Context) error {
	f.purged++
	return nil
}

func (f *fakeRefStore) InsertBatch(_ context.Context, products []models.RawProduct) error {
	f.batches = append(f.batches, products)
	return nil
}

func TestLoaderLoadBatchesInserts(t *testing.T) {
	dir := t.TempDir()

	var b strings.Builder
	b.WriteString("System ID,UPC,EAN,Custom SKU,Manufact. SKU,Item,,,Price\n")
	for i := 0; i < 250; i++ {
		b.WriteString("sys-x,,,,SKU-X,Title,,,1\n")
	}
	require.NoError(t, writeFile(t, dir, "products.csv", b.String()))

	store := &fakeRefStore{}
	loader := NewLoader(store, dir, "products.csv")

	count, err := loader.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 250, count)
	assert.Equal(t, 1, store.purged)
	// 250 rows at a batch size of 100: 100 + 100 + 50.
	require.Len(t, store.batches, 3)
	assert.Len(t, store.batches[2], 50)
}

func writeFile(t *testing.T, dir, name, content string) error {
	t.Helper()
	return os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644)
}

func TestLoaderLoadMissingFileFails(t *testing.T) {
	loader := NewLoader(&fakeRefStore{}, t.TempDir(), "absent.csv")

	_, err := loader.Load(context.Background())
	assert.Error(t, err)
}
