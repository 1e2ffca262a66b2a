package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/catalogops/catalog-scraper/internal/catalog"
	"github.com/catalogops/catalog-scraper/internal/models"
	"github.com/catalogops/catalog-scraper/internal/similarity"
)

// ProductRef is one product tile from a listing page.
type ProductRef struct {
	URL   string
	SKU   string
	Title string
}

// Extract is the raw field set pulled from a product detail page.
type Extract struct {
	SKU         string
	Title       string
	Description catalog.Description
	Images      []catalog.Image
}

// SupplierAdapter carries one retailer's extraction bindings. The driver owns
// iteration order, checkpointing, retry and persistence; the adapter only
// knows where things live in the DOM. Every adapter additionally implements
// either DepartmentCrawler or DirectLister.
type SupplierAdapter interface {
	Supplier() models.Supplier
	// ExtractProduct parses the product detail page the driver navigated to.
	ExtractProduct(ctx context.Context, page playwright.Page, ref ProductRef) (*Extract, error)
}

// DepartmentCrawler is the department -> list page -> product crawl strategy.
type DepartmentCrawler interface {
	PageSize() int
	// ListDepartments parses department/category URLs from the entry page.
	ListDepartments(ctx context.Context, page playwright.Page) ([]string, error)
	// TotalCount reads the listing's total item count; the driver has already
	// navigated to the department URL. Return ErrNoTotalCount when the element
	// is absent.
	TotalCount(ctx context.Context, page playwright.Page) (int, error)
	// ListPageURL builds the URL of the nth listing page (1-based).
	ListPageURL(depURL string, pageNum int) string
	// ListProducts parses product tiles from the current listing page.
	ListProducts(ctx context.Context, page playwright.Page) ([]ProductRef, error)
}

// Preparer is implemented by adapters that need a login step before crawling.
type Preparer interface {
	Setup(ctx context.Context, page playwright.Page) error
}

// DirectLister replaces department iteration for retailers whose product pages
// are addressed straight from the reference list (URL derived from the SKU).
// The cursor for these runs is the SKU, not a product URL.
type DirectLister interface {
	DirectRefs(ctx context.Context, raw []models.RawProduct) ([]ProductRef, error)
}

// Navigator is the browser surface the driver uses (for testing).
type Navigator interface {
	NewPage() (playwright.Page, error)
	NavigateWithRetry(page playwright.Page, url string, maxRetries int) error
	AutoScroll(page playwright.Page) error
}

// RateLimiter spaces out navigations.
type RateLimiter interface {
	Wait(ctx context.Context) error
}

// RawRefStore is the reference-snapshot surface the driver consumes.
type RawRefStore interface {
	FindBySKU(ctx context.Context, sku string) (*models.RawProduct, error)
	FilterKnownSKUs(ctx context.Context, skus []string) (map[string]bool, error)
	List(ctx context.Context) ([]models.RawProduct, error)
	Purge(ctx context.Context) error
}

// RawLoader reloads the reference snapshot at run start.
type RawLoader interface {
	Load(ctx context.Context) (int, error)
}

// Gate is the similarity check surface.
type Gate interface {
	Check(ctx context.Context, lsTitle, storeTitle, sku string, supplier models.Supplier) (similarity.Result, error)
}

// Saver is the upsert engine surface.
type Saver interface {
	Save(ctx context.Context, in catalog.SaveInput) (catalog.Outcome, error)
}

// SimilarityPurger clears the audit trail at finalize.
type SimilarityPurger interface {
	PurgeBySupplier(ctx context.Context, supplier models.Supplier) error
}

// Reporter emits the end-of-run CSV feeds.
type Reporter interface {
	WriteRunReports(ctx context.Context, supplier models.Supplier) error
}

// Options are the run-level knobs of the driver.
type Options struct {
	MaxRetries int
	RetryDelay time.Duration
}

// Driver runs one supplier's crawl end to end: load reference, resume or start
// the checkpoint, walk departments -> list pages -> products, gate and upsert
// each product, then finalize. Strictly sequential: every unit shares one
// browser page, and cursor-advance-then-execute is only crash-safe without
// concurrency.
type Driver struct {
	adapter    SupplierAdapter
	checkpoint *Checkpointer
	rawLoader  RawLoader
	rawRefs    RawRefStore
	gate       Gate
	saver      Saver
	purger     SimilarityPurger
	reporter   Reporter
	nav        Navigator
	limiter    RateLimiter
	opts       Options
	logger     *slog.Logger
}

func NewDriver(
	adapter SupplierAdapter,
	checkpoint *Checkpointer,
	rawLoader RawLoader,
	rawRefs RawRefStore,
	gate Gate,
	saver Saver,
	purger SimilarityPurger,
	reporter Reporter,
	nav Navigator,
	limiter RateLimiter,
	opts Options,
) *Driver {
	if opts.MaxRetries < 1 {
		opts.MaxRetries = 3
	}
	return &Driver{
		adapter:    adapter,
		checkpoint: checkpoint,
		rawLoader:  rawLoader,
		rawRefs:    rawRefs,
		gate:       gate,
		saver:      saver,
		purger:     purger,
		reporter:   reporter,
		nav:        nav,
		limiter:    limiter,
		opts:       opts,
		logger:     slog.Default().With("component", "driver", "supplier", adapter.Supplier()),
	}
}

// Run executes the whole pipeline for the adapter's supplier. Setup failures
// abort the run and mark the process FAILED; per-unit failures are logged and
// skipped.
func (d *Driver) Run(ctx context.Context) (err error) {
	supplier := d.adapter.Supplier()

	proc, err := d.checkpoint.Initiate(ctx, supplier)
	if err != nil {
		return fmt.Errorf("failed to initiate process: %w", err)
	}

	defer func() {
		if err != nil {
			if ferr := d.checkpoint.MarkFailed(ctx, proc.ID); ferr != nil {
				d.logger.Error("failed to mark process FAILED", "error", ferr)
			}
		}
	}()

	count, err := d.rawLoader.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load raw reference: %w", err)
	}
	d.logger.Info("raw reference loaded", "count", count)

	page, err := d.nav.NewPage()
	if err != nil {
		return fmt.Errorf("failed to open page: %w", err)
	}
	defer page.Close()

	if preparer, ok := d.adapter.(Preparer); ok {
		if err = preparer.Setup(ctx, page); err != nil {
			return fmt.Errorf("failed supplier setup: %w", err)
		}
	}

	switch a := d.adapter.(type) {
	case DirectLister:
		err = d.runDirect(ctx, page, a)
	case DepartmentCrawler:
		err = d.runDepartments(ctx, page, a)
	default:
		err = fmt.Errorf("adapter for %s has no crawl strategy", supplier)
	}
	if err != nil {
		return err
	}

	return d.finalize(ctx, proc)
}

func (d *Driver) runDepartments(ctx context.Context, page playwright.Page, crawler DepartmentCrawler) error {
	supplier := d.adapter.Supplier()

	depURLs, err := crawler.ListDepartments(ctx, page)
	if err != nil {
		return fmt.Errorf("failed to list departments: %w", err)
	}

	cur, err := d.checkpoint.Current(ctx, supplier)
	if err != nil {
		return err
	}

	if cur.LastDepURL != "" {
		d.logger.Info("resuming from department cursor", "last_dep_url", cur.LastDepURL)
	}
	depURLs = ResumeFrom(depURLs, cur.LastDepURL, func(u string) string { return u })

	for _, depURL := range depURLs {
		depURL := depURL
		WithRetry(ctx, d.logger.With("dep_url", depURL), d.opts.MaxRetries, d.opts.RetryDelay, func() (struct{}, error) {
			return struct{}{}, d.processDepartment(ctx, page, crawler, depURL)
		})
	}

	return nil
}

func (d *Driver) processDepartment(ctx context.Context, page playwright.Page, crawler DepartmentCrawler, depURL string) error {
	supplier := d.adapter.Supplier()

	// Read the checkpoint before advancing it: the stored cursor still holds
	// the previous run's position, which decides whether this department
	// resumes mid-pagination.
	cur, err := d.checkpoint.Current(ctx, supplier)
	if err != nil {
		return err
	}

	if err := d.checkpoint.AdvanceDepURL(ctx, supplier, depURL); err != nil {
		return err
	}

	if err := d.nav.NavigateWithRetry(page, depURL, d.opts.MaxRetries); err != nil {
		return err
	}

	total, err := crawler.TotalCount(ctx, page)
	if err != nil {
		// Paginating without a count would never terminate.
		d.logger.Error("total count unavailable, stopping department", "dep_url", depURL, "error", err)
		return nil
	}

	startPage := 1
	if cur.LastDepURL == depURL && cur.ProductListPage > 0 {
		startPage = cur.ProductListPage
		d.logger.Info("continuing department from previous process", "dep_url", depURL, "page", startPage)
	} else {
		d.logger.Info("processing new department", "dep_url", depURL, "total", total)
	}

	pageSize := crawler.PageSize()

	for pageNum := startPage; ; pageNum++ {
		if err := d.checkpoint.AdvanceListPage(ctx, supplier, pageNum); err != nil {
			return err
		}

		listURL := crawler.ListPageURL(depURL, pageNum)
		d.logger.Info("processing list page", "page", pageNum, "url", listURL)

		WithRetry(ctx, d.logger.With("list_url", listURL), d.opts.MaxRetries, d.opts.RetryDelay, func() (struct{}, error) {
			return struct{}{}, d.processListPage(ctx, page, crawler, listURL)
		})

		if !HasNextPage(pageNum, pageSize, total) {
			break
		}
	}

	return nil
}

func (d *Driver) processListPage(ctx context.Context, page playwright.Page, crawler DepartmentCrawler, listURL string) error {
	supplier := d.adapter.Supplier()

	if err := d.limiter.Wait(ctx); err != nil {
		return err
	}
	if err := d.nav.NavigateWithRetry(page, listURL, d.opts.MaxRetries); err != nil {
		return err
	}
	if err := d.nav.AutoScroll(page); err != nil {
		d.logger.Warn("auto-scroll failed", "url", listURL, "error", err)
	}

	refs, err := crawler.ListProducts(ctx, page)
	if err != nil {
		return err
	}

	refs, err = d.filterToReference(ctx, refs)
	if err != nil {
		return err
	}

	cur, err := d.checkpoint.Current(ctx, supplier)
	if err != nil {
		return err
	}
	if cur.LastProductURL != "" {
		before := len(refs)
		refs = ResumeFrom(refs, cur.LastProductURL, func(r ProductRef) string { return r.URL })
		if len(refs) < before {
			d.logger.Info("resuming from product cursor", "last_product_url", cur.LastProductURL)
		}
	}

	for _, ref := range refs {
		ref := ref
		WithRetry(ctx, d.logger.With("product_url", ref.URL, "sku", ref.SKU), d.opts.MaxRetries, d.opts.RetryDelay, func() (struct{}, error) {
			if err := d.checkpoint.AdvanceProductURL(ctx, supplier, ref.URL); err != nil {
				return struct{}{}, err
			}
			return struct{}{}, d.processProduct(ctx, page, ref)
		})
	}

	return nil
}

func (d *Driver) runDirect(ctx context.Context, page playwright.Page, direct DirectLister) error {
	supplier := d.adapter.Supplier()

	raw, err := d.rawRefs.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list raw reference: %w", err)
	}

	refs, err := direct.DirectRefs(ctx, raw)
	if err != nil {
		return fmt.Errorf("failed to build product refs: %w", err)
	}

	cur, err := d.checkpoint.Current(ctx, supplier)
	if err != nil {
		return err
	}
	if cur.LastSKU != "" {
		d.logger.Info("resuming from SKU cursor", "last_sku", cur.LastSKU)
	}
	refs = ResumeFrom(refs, cur.LastSKU, func(r ProductRef) string { return r.SKU })

	for _, ref := range refs {
		ref := ref
		WithRetry(ctx, d.logger.With("product_url", ref.URL, "sku", ref.SKU), d.opts.MaxRetries, d.opts.RetryDelay, func() (struct{}, error) {
			if err := d.checkpoint.AdvanceSKU(ctx, supplier, ref.SKU); err != nil {
				return struct{}{}, err
			}
			return struct{}{}, d.processProduct(ctx, page, ref)
		})
	}

	return nil
}

// processProduct fetches one product page, applies the similarity gate and
// hands the extract to the upsert engine. A nil return with no write is a
// deliberate skip; errors bubble to the retry wrapper.
func (d *Driver) processProduct(ctx context.Context, page playwright.Page, ref ProductRef) error {
	supplier := d.adapter.Supplier()

	if err := d.limiter.Wait(ctx); err != nil {
		return err
	}
	if err := d.nav.NavigateWithRetry(page, ref.URL, d.opts.MaxRetries); err != nil {
		return err
	}

	ext, err := d.adapter.ExtractProduct(ctx, page, ref)
	if err != nil {
		return err
	}

	sku := ext.SKU
	if sku == "" {
		sku = ref.SKU
	}
	if sku == "" {
		d.logger.Warn("product without SKU, skipped", "url", ref.URL)
		return nil
	}

	raw, err := d.rawRefs.FindBySKU(ctx, sku)
	if err != nil {
		return err
	}
	if raw == nil {
		d.logger.Warn("product not in reference list, skipped", "sku", sku, "url", ref.URL)
		return nil
	}

	result, err := d.gate.Check(ctx, raw.Title, ext.Title, raw.SKU, supplier)
	if err != nil {
		return err
	}
	if !result.IsSimilar {
		return nil
	}

	outcome, err := d.saver.Save(ctx, catalog.SaveInput{
		Raw:         *raw,
		Title:       ext.Title,
		Description: ext.Description,
		Images:      ext.Images,
		Supplier:    supplier,
	})
	if err != nil {
		return err
	}

	d.logger.Info("product processed", "sku", raw.SKU, "outcome", outcome, "similarity", result.Similarity)
	return nil
}

func (d *Driver) filterToReference(ctx context.Context, refs []ProductRef) ([]ProductRef, error) {
	if len(refs) == 0 {
		return refs, nil
	}

	skus := make([]string, 0, len(refs))
	for _, r := range refs {
		if r.SKU != "" {
			skus = append(skus, r.SKU)
		}
	}

	known, err := d.rawRefs.FilterKnownSKUs(ctx, skus)
	if err != nil {
		return nil, err
	}

	// Tiles without a SKU are kept: those suppliers only reveal the SKU on
	// the product page, so the reference check happens after extraction.
	kept := refs[:0:0]
	for _, r := range refs {
		if r.SKU == "" || known[r.SKU] {
			kept = append(kept, r)
		} else {
			d.logger.Debug("sku not in reference list", "sku", r.SKU)
		}
	}

	return kept, nil
}

// finalize marks the process DONE, purges ephemeral run state and emits the
// CSV feeds from everything upserted for this supplier.
func (d *Driver) finalize(ctx context.Context, proc *models.Process) error {
	supplier := d.adapter.Supplier()

	if err := d.reporter.WriteRunReports(ctx, supplier); err != nil {
		return fmt.Errorf("failed to write reports: %w", err)
	}

	if err := d.checkpoint.Finalize(ctx, proc.ID); err != nil {
		return err
	}
	if err := d.purger.PurgeBySupplier(ctx, supplier); err != nil {
		return err
	}
	if err := d.rawRefs.Purge(ctx); err != nil {
		return err
	}

	d.logger.Info("finished processing supplier", "supplier", supplier.Label())
	return nil
}
