package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/catalogops/catalog-scraper/internal/models"
)

// ProductSource reads back the catalog records for the feed.
type ProductSource interface {
	ListBySupplier(ctx context.Context, supplier models.Supplier) ([]*models.Product, error)
}

// SimilaritySource reads back the audit rows for the report. The reporter runs
// before the audit trail is purged at finalize.
type SimilaritySource interface {
	ListBySupplier(ctx context.Context, supplier models.Supplier) ([]*models.ProductSimilarity, error)
}

// Reporter writes the end-of-run CSV feeds into the per-supplier output
// directory.
type Reporter struct {
	products     ProductSource
	similarities SimilaritySource
	outputDir    string
	logger       *slog.Logger
}

func NewReporter(products ProductSource, similarities SimilaritySource, outputDir string) *Reporter {
	return &Reporter{
		products:     products,
		similarities: similarities,
		outputDir:    outputDir,
		logger:       slog.Default().With("component", "export"),
	}
}

// WriteRunReports emits the product feed and the similarity report for one
// supplier run.
func (r *Reporter) WriteRunReports(ctx context.Context, supplier models.Supplier) error {
	dir := filepath.Join(r.outputDir, strings.ToLower(string(supplier)))
	slug := strings.ToLower(string(supplier))

	products, err := r.products.ListBySupplier(ctx, supplier)
	if err != nil {
		return err
	}
	feedPath := filepath.Join(dir, slug+"-scraper-output.csv")
	if err := writeFile(feedPath, func(w *csv.Writer) error {
		return WriteProductFeed(w, products)
	}); err != nil {
		return err
	}
	r.logger.Info("product feed written", "path", feedPath, "rows", len(products))

	rows, err := r.similarities.ListBySupplier(ctx, supplier)
	if err != nil {
		return err
	}
	reportPath := filepath.Join(dir, slug+"-product-similarity-report.csv")
	if err := writeFile(reportPath, func(w *csv.Writer) error {
		return WriteSimilarityReport(w, rows)
	}); err != nil {
		return err
	}
	r.logger.Info("similarity report written", "path", reportPath, "rows", len(rows))

	return nil
}

// WritePricingFeed emits the price-comparison feed for one store.
func (r *Reporter) WritePricingFeed(store models.Store, pricings []*models.ProductPricing) error {
	slug := strings.ToLower(string(store))
	path := filepath.Join(r.outputDir, slug, slug+"-price-comparison.csv")

	if err := writeFile(path, func(w *csv.Writer) error {
		return WritePricingRows(w, pricings)
	}); err != nil {
		return err
	}

	r.logger.Info("pricing feed written", "path", path, "rows", len(pricings))
	return nil
}

// WriteProductFeed writes the catalog feed. The image column count follows the
// widest product in the export.
func WriteProductFeed(w *csv.Writer, products []*models.Product) error {
	maxImages := 0
	for _, p := range products {
		if len(p.Images) > maxImages {
			maxImages = len(p.Images)
		}
	}

	header := []string{
		"System ID", "Variant SKU", "Title", "Description Text", "Body HTML",
		"Missing Description", "Add Tags", "Replace Tags", "Featured Image",
	}
	for i := 0; i <= maxImages; i++ {
		header = append(header, "Image")
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write feed header: %w", err)
	}

	for _, p := range products {
		row := []string{
			p.SystemID, p.SKU, p.Title, p.DescriptionText, p.DescriptionHTML,
			strconv.FormatBool(p.MissingDescription), "", "", p.FeaturedImage,
		}
		row = append(row, p.Images...)
		for len(row) < len(header) {
			row = append(row, "")
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write feed row: %w", err)
		}
	}

	w.Flush()
	return w.Error()
}

// WriteSimilarityReport writes the title-match audit report.
func WriteSimilarityReport(w *csv.Writer, rows []*models.ProductSimilarity) error {
	if err := w.Write([]string{"SKU", "Reference Title", "Store Title", "Similarity"}); err != nil {
		return fmt.Errorf("failed to write report header: %w", err)
	}

	for _, row := range rows {
		record := []string{
			row.SKU, row.LSTitle, row.StoreTitle,
			strconv.FormatFloat(row.Similarity, 'f', 4, 64),
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write report row: %w", err)
		}
	}

	w.Flush()
	return w.Error()
}

// WritePricingRows writes the price-comparison feed.
func WritePricingRows(w *csv.Writer, pricings []*models.ProductPricing) error {
	if err := w.Write([]string{"System ID", "Variant SKU", "Title", "Their Price", "Our Price", "Store"}); err != nil {
		return fmt.Errorf("failed to write pricing header: %w", err)
	}

	for _, p := range pricings {
		record := []string{
			p.SystemID, p.SKU, p.Title,
			strconv.FormatFloat(p.TheirPrice, 'f', 2, 64),
			strconv.FormatFloat(p.OurPrice, 'f', 2, 64),
			string(p.Store),
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write pricing row: %w", err)
		}
	}

	w.Flush()
	return w.Error()
}

func writeFile(path string, write func(w *csv.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create csv: %w", err)
	}
	defer f.Close()

	return writeTo(f, write)
}

func writeTo(w io.Writer, write func(w *csv.Writer) error) error {
	cw := csv.NewWriter(w)
	return write(cw)
}
