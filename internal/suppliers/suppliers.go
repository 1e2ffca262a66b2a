package suppliers

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/playwright-community/playwright-go"

	"github.com/catalogops/catalog-scraper/internal/config"
	"github.com/catalogops/catalog-scraper/internal/models"
	"github.com/catalogops/catalog-scraper/internal/pipeline"
)

// New returns the adapter for a supplier. Dispatch is mutually exclusive: one
// supplier, one adapter, nothing falls through.
func New(supplier models.Supplier, cfg *config.Config) (pipeline.SupplierAdapter, error) {
	switch supplier {
	case models.SupplierLM:
		return NewLM(cfg.Suppliers.LMURL), nil
	case models.SupplierAllparts:
		return NewAllparts(cfg.Suppliers.AllpartsURL), nil
	case models.SupplierCoastMusic:
		return NewCoastMusic(cfg.Suppliers.CoastMusicURL), nil
	case models.SupplierKorgCanada:
		return NewKorgCanada(cfg.Suppliers.KorgCanadaURL), nil
	case models.SupplierFender:
		return NewFender(cfg.Suppliers), nil
	case models.SupplierDaddario:
		return NewDaddario(cfg.Suppliers), nil
	default:
		return nil, fmt.Errorf("no adapter registered for supplier %s", supplier)
	}
}

// Registered lists the suppliers that have adapters, in menu order.
func Registered() []models.Supplier {
	return []models.Supplier{
		models.SupplierLM,
		models.SupplierAllparts,
		models.SupplierCoastMusic,
		models.SupplierKorgCanada,
		models.SupplierFender,
		models.SupplierDaddario,
	}
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

// absoluteURL resolves a possibly relative href against the page it came from.
func absoluteURL(base, href string) string {
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

// navigate is the shared adapter-side page load for entry pages.
func navigate(page playwright.Page, url string) error {
	_, err := page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateNetworkidle,
	})
	if err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return nil
}

// imageName builds the stored file name for the nth image of a SKU.
func imageName(sku string, index int, ext string) string {
	clean := strings.ToLower(strings.ReplaceAll(sku, "/", "-"))
	return fmt.Sprintf("%s-%d.%s", clean, index, ext)
}

// imageExt extracts a safe file extension from an image URL, defaulting to png.
func imageExt(imgURL string) string {
	trimmed := imgURL
	if i := strings.IndexByte(trimmed, '?'); i >= 0 {
		trimmed = trimmed[:i]
	}
	if i := strings.LastIndexByte(trimmed, '.'); i >= 0 {
		ext := strings.ToLower(trimmed[i+1:])
		if ext == "jpg" || ext == "jpeg" || ext == "png" {
			return ext
		}
	}
	return "png"
}
