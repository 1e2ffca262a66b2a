package suppliers

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/playwright-community/playwright-go"

	"github.com/catalogops/catalog-scraper/internal/catalog"
	"github.com/catalogops/catalog-scraper/internal/models"
	"github.com/catalogops/catalog-scraper/internal/pipeline"
)

const allpartsPageSize = 24

// Allparts crawls the per-brand collection grids behind the shop-by-brand
// page. Tiles carry no SKU, so products are matched against the reference
// list after extraction.
type Allparts struct {
	baseURL string
}

func NewAllparts(baseURL string) *Allparts {
	return &Allparts{baseURL: baseURL}
}

func (a *Allparts) Supplier() models.Supplier { return models.SupplierAllparts }

func (a *Allparts) PageSize() int { return allpartsPageSize }

func (a *Allparts) ListDepartments(ctx context.Context, page playwright.Page) ([]string, error) {
	if err := navigate(page, a.baseURL+"/pages/shop-by-brand"); err != nil {
		return nil, err
	}

	doc, err := document(page)
	if err != nil {
		return nil, err
	}

	var urls []string
	doc.Find(".por .grid__item a").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok || !strings.Contains(href, "/collections/") {
			return
		}
		urls = append(urls, absoluteURL(a.baseURL, href))
	})

	if len(urls) == 0 {
		return nil, fmt.Errorf("no brand collections found at %s", a.baseURL)
	}

	return urls, nil
}

// TotalCount reads the "N products" counter above the collection grid.
func (a *Allparts) TotalCount(ctx context.Context, page playwright.Page) (int, error) {
	doc, err := document(page)
	if err != nil {
		return 0, err
	}

	text := strings.TrimSpace(doc.Find("#ProductCount, .product-count__text").First().Text())
	if text == "" {
		return 0, pipeline.ErrNoTotalCount
	}

	return pipeline.ParseTotalCount(text)
}

func (a *Allparts) ListPageURL(depURL string, pageNum int) string {
	return fmt.Sprintf("%s?page=%d", depURL, pageNum)
}

func (a *Allparts) ListProducts(ctx context.Context, page playwright.Page) ([]pipeline.ProductRef, error) {
	doc, err := document(page)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var refs []pipeline.ProductRef
	doc.Find("#product-grid .grid__item a").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok || !strings.Contains(href, "/products/") {
			return
		}

		full := absoluteURL(a.baseURL, href)
		if seen[full] {
			return
		}
		seen[full] = true

		refs = append(refs, pipeline.ProductRef{URL: full})
	})

	return refs, nil
}

func (a *Allparts) ExtractProduct(ctx context.Context, page playwright.Page, ref pipeline.ProductRef) (*pipeline.Extract, error) {
	doc, err := document(page)
	if err != nil {
		return nil, err
	}

	// The info box lists either [SKU] or [brand, SKU]; the SKU value is
	// always the last row.
	sku := strings.TrimSpace(doc.Find(".product__info-box .information .information__value").Last().Text())
	if sku == "" {
		return nil, fmt.Errorf("sku not found at %s", ref.URL)
	}

	title := strings.TrimSpace(doc.Find(".product__title h1").First().Text())
	if title == "" {
		return nil, fmt.Errorf("title not found at %s", ref.URL)
	}

	descSel := doc.Find("truncate-text.product__description").First()
	descText := strings.TrimSpace(descSel.Text())
	descHTML, _ := goquery.OuterHtml(descSel)

	var imgs []catalog.Image
	doc.Find(".product__media-list .product__media-item img").Each(func(i int, img *goquery.Selection) {
		src, ok := img.Attr("src")
		if !ok {
			return
		}
		src = absoluteURL(ref.URL, src)
		imgs = append(imgs, catalog.Image{
			URL:  src,
			Name: imageName(sku, i, imageExt(src)),
		})
	})

	return &pipeline.Extract{
		SKU:         sku,
		Title:       title,
		Description: catalog.Description{Text: descText, HTML: descHTML},
		Images:      imgs,
	}, nil
}
