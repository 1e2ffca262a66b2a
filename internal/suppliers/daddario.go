package suppliers

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/playwright-community/playwright-go"

	"github.com/catalogops/catalog-scraper/internal/catalog"
	"github.com/catalogops/catalog-scraper/internal/config"
	"github.com/catalogops/catalog-scraper/internal/models"
	"github.com/catalogops/catalog-scraper/internal/pipeline"
)

// Daddario runs against the authenticated D'Addario dealer shop. Like Fender,
// product pages are addressed by reference SKU and the run is cursored by SKU.
type Daddario struct {
	loginURL string
	shopURL  string
	username string
	password string
}

func NewDaddario(cfg config.SupplierConfig) *Daddario {
	return &Daddario{
		loginURL: cfg.DaddarioLoginURL,
		shopURL:  cfg.DaddarioShopURL,
		username: cfg.DaddarioUsername,
		password: cfg.DaddarioPassword,
	}
}

func (d *Daddario) Supplier() models.Supplier { return models.SupplierDaddario }

// Setup logs into the dealer shop. The login form has no submit button worth
// targeting; pressing Enter in the password field submits it.
func (d *Daddario) Setup(ctx context.Context, page playwright.Page) error {
	if d.username == "" || d.password == "" {
		return fmt.Errorf("daddario dealer credentials are not configured")
	}

	if err := navigate(page, d.loginURL); err != nil {
		return err
	}

	if err := page.Fill("#uname", d.username); err != nil {
		return fmt.Errorf("failed to fill login username: %w", err)
	}
	if err := page.Fill("#pwd", d.password); err != nil {
		return fmt.Errorf("failed to fill login password: %w", err)
	}
	if err := page.Press("#pwd", "Enter"); err != nil {
		return fmt.Errorf("failed to submit login: %w", err)
	}
	if err := page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State: playwright.LoadStateNetworkidle,
	}); err != nil {
		return fmt.Errorf("failed to wait for login to settle: %w", err)
	}

	return nil
}

func (d *Daddario) DirectRefs(ctx context.Context, raw []models.RawProduct) ([]pipeline.ProductRef, error) {
	refs := make([]pipeline.ProductRef, 0, len(raw))
	for _, r := range raw {
		if r.SKU == "" {
			continue
		}
		refs = append(refs, pipeline.ProductRef{
			URL:   fmt.Sprintf("%s/%s", d.shopURL, r.SKU),
			SKU:   r.SKU,
			Title: r.Title,
		})
	}
	return refs, nil
}

func (d *Daddario) ExtractProduct(ctx context.Context, page playwright.Page, ref pipeline.ProductRef) (*pipeline.Extract, error) {
	doc, err := document(page)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(doc.Find(".description").First().Text())
	if title == "" {
		return nil, fmt.Errorf("title not found at %s", ref.URL)
	}

	if doc.Find(".media .selected-image img").Length() == 0 {
		return nil, fmt.Errorf("product %s has no images", ref.SKU)
	}

	desc := daddarioDescription(doc)
	imgs := daddarioImages(doc, ref)

	return &pipeline.Extract{
		SKU:         ref.SKU,
		Title:       title,
		Description: desc,
		Images:      imgs,
	}, nil
}

func daddarioDescription(doc *goquery.Document) catalog.Description {
	sel := doc.Find(".details p").First()
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

// daddarioImages rebuilds each thumbnail as a large-size image API URL on the
// shop's origin.
func daddarioImages(doc *goquery.Document, ref pipeline.ProductRef) []catalog.Image {
	origin := ""
	if u, err := url.Parse(ref.URL); err == nil {
		origin = u.Scheme + "://" + u.Host
	}

	var imgs []catalog.Image
	doc.Find(".media .thumbnails img").Each(func(i int, sel *goquery.Selection) {
		src, ok := sel.Attr("src")
		if !ok {
			return
		}

		parts := strings.Split(src, "/")
		if len(parts) < 4 {
			return
		}
		fileName, _, _ := strings.Cut(parts[3], "?")

		imgs = append(imgs, catalog.Image{
			URL:  fmt.Sprintf("%s/api/images/%s?ProdCode=%s&size=lg", origin, fileName, ref.SKU),
			Name: imageName(ref.SKU, i, "jpg"),
		})
	})

	return imgs
}
