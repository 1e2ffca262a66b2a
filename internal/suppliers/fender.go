package suppliers

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/playwright-community/playwright-go"

	"github.com/catalogops/catalog-scraper/internal/catalog"
	"github.com/catalogops/catalog-scraper/internal/config"
	"github.com/catalogops/catalog-scraper/internal/models"
	"github.com/catalogops/catalog-scraper/internal/pipeline"
)

// Fender runs against the authenticated dealer portal. Product pages are
// addressed straight from the reference SKUs, so the run is cursored by SKU,
// and Setup performs the dealer login before the first product navigation.
type Fender struct {
	loginURL   string
	productURL string
	username   string
	password   string
}

func NewFender(cfg config.SupplierConfig) *Fender {
	return &Fender{
		loginURL:   cfg.FenderLoginURL,
		productURL: cfg.FenderProductURL,
		username:   cfg.FenderUsername,
		password:   cfg.FenderPassword,
	}
}

func (f *Fender) Supplier() models.Supplier { return models.SupplierFender }

// Setup logs into the dealer portal. The session cookie lives on the browser
// context, so one login covers the whole run.
func (f *Fender) Setup(ctx context.Context, page playwright.Page) error {
	if f.username == "" || f.password == "" {
		return fmt.Errorf("fender dealer credentials are not configured")
	}

	if err := navigate(page, f.loginURL); err != nil {
		return err
	}

	if err := page.Fill("#emailInput", f.username); err != nil {
		return fmt.Errorf("failed to fill login email: %w", err)
	}
	if err := page.Fill("#passwordInput", f.password); err != nil {
		return fmt.Errorf("failed to fill login password: %w", err)
	}
	if err := page.Click("#stayLoggedCheckbox"); err != nil {
		return fmt.Errorf("failed to toggle stay-logged-in: %w", err)
	}
	if err := page.Click("#submitLoginButton"); err != nil {
		return fmt.Errorf("failed to submit login: %w", err)
	}
	if err := page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State: playwright.LoadStateNetworkidle,
	}); err != nil {
		return fmt.Errorf("failed to wait for login to settle: %w", err)
	}

	return nil
}

func (f *Fender) DirectRefs(ctx context.Context, raw []models.RawProduct) ([]pipeline.ProductRef, error) {
	refs := make([]pipeline.ProductRef, 0, len(raw))
	for _, r := range raw {
		if r.SKU == "" {
			continue
		}
		refs = append(refs, pipeline.ProductRef{
			URL:   fmt.Sprintf("%s/%s", f.productURL, r.SKU),
			SKU:   r.SKU,
			Title: r.Title,
		})
	}
	return refs, nil
}

func (f *Fender) ExtractProduct(ctx context.Context, page playwright.Page, ref pipeline.ProductRef) (*pipeline.Extract, error) {
	doc, err := document(page)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(doc.Find(`[data-cy="product-display-name"]`).First().Text())
	if title == "" {
		return nil, fmt.Errorf("title not found at %s", ref.URL)
	}

	// The portal serves a placeholder logo for items with no photography;
	// those are not worth listing.
	if main, ok := doc.Find("img.main-image").First().Attr("src"); ok &&
		strings.HasSuffix(main, "fender-no-image-logo.svg") {
		return nil, fmt.Errorf("product %s has no images", ref.SKU)
	}

	desc := fenderDescription(doc)

	var imgs []catalog.Image
	doc.Find(".detail-carousel-prod-details .detail-image-prod-details img").Each(func(i int, sel *goquery.Selection) {
		src, ok := sel.Attr("src")
		if !ok {
			return
		}
		src = strings.Replace(src, "Thumbnail", "Zoom", 1)
		imgs = append(imgs, catalog.Image{
			URL:  src,
			Name: imageName(ref.SKU, i, imageExt(src)),
		})
	})

	return &pipeline.Extract{
		SKU:         ref.SKU,
		Title:       title,
		Description: desc,
		Images:      imgs,
	}, nil
}

func fenderDescription(doc *goquery.Document) catalog.Description {
	sel := doc.Find(".col-lg-7.col-md-7.col-sm-7").First()
	if sel.Length() == 0 {
		return catalog.Description{}
	}

	sel.RemoveAttr("class")
	html, _ := goquery.OuterHtml(sel)
	return catalog.Description{
		Text: strings.TrimSpace(sel.Text()),
		HTML: catalog.NormalizeHTML(html),
	}
}
