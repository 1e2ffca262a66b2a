// Package pricing collects competitor prices from retail store fronts and
// joins them against our own price list for comparison feeds.
package pricing

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/playwright-community/playwright-go"

	"github.com/catalogops/catalog-scraper/internal/models"
	"github.com/catalogops/catalog-scraper/internal/rawref"
)

// StoreScraper carries one store's DOM bindings. The driver owns navigation
// order, persistence and the final comparison join.
type StoreScraper interface {
	Store() models.Store
	// SectionURLs returns the listing entry points to walk.
	SectionURLs(ctx context.Context, page playwright.Page) ([]string, error)
	// ListProducts parses product URLs from the current listing page.
	ListProducts(ctx context.Context, page playwright.Page) ([]string, error)
	// NextPageURL returns the following listing page URL, or "" at the end.
	NextPageURL(ctx context.Context, page playwright.Page) (string, error)
	// ExtractPricing parses sku, title and price from the product page.
	ExtractPricing(ctx context.Context, page playwright.Page, productURL string) (*models.ProductPricing, error)
}

// Navigator is the browser surface the driver uses (for testing).
type Navigator interface {
	NewPage() (playwright.Page, error)
	NavigateWithRetry(page playwright.Page, url string, maxRetries int) error
}

// RateLimiter spaces out navigations.
type RateLimiter interface {
	Wait(ctx context.Context) error
}

// PricingStore is the persistence surface for collected prices.
type PricingStore interface {
	Upsert(ctx context.Context, p *models.ProductPricing) error
	ListByStore(ctx context.Context, store models.Store) ([]*models.ProductPricing, error)
}

// Feed writes the final comparison CSV.
type Feed interface {
	WritePricingFeed(store models.Store, pricings []*models.ProductPricing) error
}

// Driver runs one store's price collection end to end.
type Driver struct {
	scraper    StoreScraper
	browser    Navigator
	limiter    RateLimiter
	store      PricingStore
	feed       Feed
	refCSVPath string
	maxRetries int
	logger     *slog.Logger
}

func NewDriver(
	scraper StoreScraper,
	browser Navigator,
	limiter RateLimiter,
	store PricingStore,
	feed Feed,
	refCSVPath string,
	maxRetries int,
) *Driver {
	return &Driver{
		scraper:    scraper,
		browser:    browser,
		limiter:    limiter,
		store:      store,
		feed:       feed,
		refCSVPath: refCSVPath,
		maxRetries: maxRetries,
		logger:     slog.Default().With("component", "pricing", "store", scraper.Store().Label()),
	}
}

// Run walks every section of the store, upserts each product's price and
// finishes with the comparison feed. Individual product failures are logged
// and skipped so one broken page cannot sink an hours-long run.
func (d *Driver) Run(ctx context.Context) error {
	page, err := d.browser.NewPage()
	if err != nil {
		return fmt.Errorf("failed to open page: %w", err)
	}
	defer page.Close()

	sections, err := d.scraper.SectionURLs(ctx, page)
	if err != nil {
		return fmt.Errorf("failed to list sections: %w", err)
	}

	d.logger.Info("collecting store prices", "sections", len(sections))

	for _, sectionURL := range sections {
		if err := d.processSection(ctx, page, sectionURL); err != nil {
			return err
		}
	}

	return d.writeComparison(ctx)
}

func (d *Driver) processSection(ctx context.Context, page playwright.Page, sectionURL string) error {
	listURL := sectionURL

	for listURL != "" {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := d.limiter.Wait(ctx); err != nil {
			return err
		}
		if err := d.browser.NavigateWithRetry(page, listURL, d.maxRetries); err != nil {
			return fmt.Errorf("failed to open listing %s: %w", listURL, err)
		}

		productURLs, err := d.scraper.ListProducts(ctx, page)
		if err != nil {
			return fmt.Errorf("failed to list products at %s: %w", listURL, err)
		}

		// The next link must be read before product navigation replaces the
		// listing document.
		next, err := d.scraper.NextPageURL(ctx, page)
		if err != nil {
			return err
		}

		d.logger.Info("processing listing page", "url", listURL, "products", len(productURLs))

		for _, productURL := range productURLs {
			if err := d.processProduct(ctx, page, productURL); err != nil {
				d.logger.Error("failed to collect price", "product_url", productURL, "error", err)
			}
		}

		listURL = next
	}

	return nil
}

func (d *Driver) processProduct(ctx context.Context, page playwright.Page, productURL string) error {
	if err := d.limiter.Wait(ctx); err != nil {
		return err
	}
	if err := d.browser.NavigateWithRetry(page, productURL, d.maxRetries); err != nil {
		return err
	}

	pricing, err := d.scraper.ExtractPricing(ctx, page, productURL)
	if err != nil {
		return err
	}

	pricing.Store = d.scraper.Store()
	if err := d.store.Upsert(ctx, pricing); err != nil {
		return err
	}

	d.logger.Info("price collected", "sku", pricing.SKU, "their_price", pricing.TheirPrice)
	return nil
}

// writeComparison joins the collected prices against the reference price list
// by SKU. Rows with no reference match are emitted as-is so the gaps show up
// in the feed.
func (d *Driver) writeComparison(ctx context.Context) error {
	f, err := os.Open(d.refCSVPath)
	if err != nil {
		return fmt.Errorf("failed to open reference price list: %w", err)
	}
	defer f.Close()

	refs, err := rawref.ParseReferenceCSV(f)
	if err != nil {
		return fmt.Errorf("failed to parse reference price list: %w", err)
	}

	bySKU := make(map[string]models.RawProduct, len(refs))
	for _, r := range refs {
		bySKU[strings.ToLower(r.SKU)] = r
	}

	pricings, err := d.store.ListByStore(ctx, d.scraper.Store())
	if err != nil {
		return err
	}

	matched := 0
	for _, p := range pricings {
		ref, ok := bySKU[strings.ToLower(p.SKU)]
		if !ok {
			continue
		}

		p.OurPrice = ref.Price
		p.SystemID = ref.SystemID
		if err := d.store.Upsert(ctx, p); err != nil {
			return err
		}
		matched++
	}

	d.logger.Info("price comparison complete", "collected", len(pricings), "matched", matched)

	return d.feed.WritePricingFeed(d.scraper.Store(), pricings)
}

// resolveURL resolves a possibly relative href against the page it came from.
func resolveURL(base, href string) string {
	b, err := url.Parse(base)
	if err != nil {
		return href
	}
	h, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return href
	}
	return b.ResolveReference(h).String()
}

// document parses the current page HTML for goquery extraction.
func document(page playwright.Page) (*goquery.Document, error) {
	html, err := page.Content()
	if err != nil {
		return nil, fmt.Errorf("failed to get page content: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}

	return doc, nil
}
