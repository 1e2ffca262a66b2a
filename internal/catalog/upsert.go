package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/catalogops/catalog-scraper/internal/models"
)

// Outcome classifies what Save did with a scraped product.
type Outcome string

const (
	OutcomeCreated  Outcome = "created"
	OutcomeUpdated  Outcome = "updated"
	OutcomeSkipped  Outcome = "skipped"
	OutcomeRejected Outcome = "rejected"
)

// ProductStore is the persistence surface of the upsert engine (for testing).
type ProductStore interface {
	FindBySKU(ctx context.Context, sku string) (*models.Product, error)
	Insert(ctx context.Context, p *models.Product) error
	Update(ctx context.Context, p *models.Product) error
}

// ImageSaver downloads one image to the supplier's output directory. Failures
// are logged by the saver and never abort the product.
type ImageSaver interface {
	Save(ctx context.Context, url, name string) error
}

// Description carries the scraped description in both plain-text and HTML form.
type Description struct {
	Text string
	HTML string
}

// Image is one scraped image reference. Scrape order is preserved; the first
// image is the featured one.
type Image struct {
	URL  string
	Name string
}

// SaveInput is everything the upsert engine needs for one scraped product.
type SaveInput struct {
	Raw         models.RawProduct
	Title       string
	Description Description
	Images      []Image
	Supplier    models.Supplier
}

// Options are run-level policies fixed at construction, not per call.
type Options struct {
	// UpsertEnabled overwrites an existing record in place; when false an
	// existing SKU short-circuits reprocessing.
	UpsertEnabled bool
	// ReplaceEmptyDescWithTitle substitutes the title for a missing
	// description instead of rejecting the product.
	ReplaceEmptyDescWithTitle bool
}

// Saver is the idempotent create-or-update engine for catalog records.
type Saver struct {
	store  ProductStore
	images ImageSaver
	opts   Options
	logger *slog.Logger
}

func NewSaver(store ProductStore, images ImageSaver, opts Options) *Saver {
	return &Saver{
		store:  store,
		images: images,
		opts:   opts,
		logger: slog.Default().With("component", "upsert"),
	}
}

// Save validates, normalizes and persists one scraped product. Validation
// failures return OutcomeRejected with a log entry, not an error: garbage-in
// products must not pollute the catalog, and must not halt the run either.
func (s *Saver) Save(ctx context.Context, in SaveInput) (Outcome, error) {
	sku := in.Raw.SKU

	if sku == "" {
		s.logger.Warn("rejected: missing SKU", "title", in.Title, "supplier", in.Supplier)
		return OutcomeRejected, nil
	}
	if in.Title == "" {
		s.logger.Warn("rejected: missing title", "sku", sku, "supplier", in.Supplier)
		return OutcomeRejected, nil
	}
	if len(in.Images) == 0 {
		s.logger.Warn("rejected: no usable image", "sku", sku, "supplier", in.Supplier)
		return OutcomeRejected, nil
	}

	existing, err := s.store.FindBySKU(ctx, sku)
	if err != nil {
		return "", fmt.Errorf("failed to look up product: %w", err)
	}

	if existing != nil && !s.opts.UpsertEnabled {
		s.logger.Warn("existing product, skipped", "sku", sku, "title", in.Title)
		return OutcomeSkipped, nil
	}

	descText := in.Description.Text
	descHTML := NormalizeHTML(in.Description.HTML)
	missingDescription := descText == ""

	if missingDescription {
		if !s.opts.ReplaceEmptyDescWithTitle {
			s.logger.Warn("rejected: no description found", "sku", sku)
			return OutcomeRejected, nil
		}
		descText = in.Title
		descHTML = "<p>" + in.Title + "</p>"
	}

	images := make([]string, 0, len(in.Images))
	featuredImage := ""

	for i, img := range in.Images {
		if err := s.images.Save(ctx, img.URL, img.Name); err != nil {
			s.logger.Error("failed to save image", "sku", sku, "url", img.URL, "error", err)
		}

		if i == 0 {
			featuredImage = img.Name
		} else {
			images = append(images, img.Name)
		}
	}

	product := &models.Product{
		SystemID:           in.Raw.SystemID,
		SKU:                sku,
		Title:              in.Title,
		DescriptionText:    descText,
		DescriptionHTML:    descHTML,
		Images:             images,
		FeaturedImage:      featuredImage,
		Supplier:           in.Supplier,
		MissingDescription: missingDescription,
	}

	if existing != nil {
		product.ID = existing.ID
		if err := s.store.Update(ctx, product); err != nil {
			return "", err
		}
		s.logger.Info("updated product", "sku", sku, "title", in.Title)
		return OutcomeUpdated, nil
	}

	if err := s.store.Insert(ctx, product); err != nil {
		return "", err
	}
	s.logger.Info("new product", "sku", sku, "title", in.Title)
	return OutcomeCreated, nil
}
