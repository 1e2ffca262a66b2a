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

const coastPageSize = 50

// CoastMusic crawls the single flat catalog grid of the Coast Music B2B
// storefront. The whole catalog is one paged listing, so ListDepartments
// returns just the catalog root.
type CoastMusic struct {
	baseURL string
}

func NewCoastMusic(baseURL string) *CoastMusic {
	return &CoastMusic{baseURL: baseURL}
}

func (c *CoastMusic) Supplier() models.Supplier { return models.SupplierCoastMusic }

func (c *CoastMusic) PageSize() int { return coastPageSize }

func (c *CoastMusic) ListDepartments(ctx context.Context, page playwright.Page) ([]string, error) {
	return []string{c.baseURL}, nil
}

// TotalCount reads the results counter above the catalog grid.
func (c *CoastMusic) TotalCount(ctx context.Context, page playwright.Page) (int, error) {
	doc, err := document(page)
	if err != nil {
		return 0, err
	}

	text := strings.TrimSpace(doc.Find(".resultsCount").First().Text())
	if text == "" {
		return 0, pipeline.ErrNoTotalCount
	}

	return pipeline.ParseTotalCount(text)
}

// ListPageURL pages via the fragment the storefront's own pager uses.
func (c *CoastMusic) ListPageURL(depURL string, pageNum int) string {
	return fmt.Sprintf("%s#%d", depURL, pageNum)
}

func (c *CoastMusic) ListProducts(ctx context.Context, page playwright.Page) ([]pipeline.ProductRef, error) {
	doc, err := document(page)
	if err != nil {
		return nil, err
	}

	var refs []pipeline.ProductRef
	doc.Find("a.catalogTileLink").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok {
			return
		}
		// Tile SKUs only appear on the detail page; matching against the
		// reference list happens after extraction.
		refs = append(refs, pipeline.ProductRef{URL: absoluteURL(c.baseURL, href)})
	})

	return refs, nil
}

func (c *CoastMusic) ExtractProduct(ctx context.Context, page playwright.Page, ref pipeline.ProductRef) (*pipeline.Extract, error) {
	doc, err := document(page)
	if err != nil {
		return nil, err
	}

	sku := catalogTileSKU(doc)
	if sku == "" {
		return nil, fmt.Errorf("sku not found at %s", ref.URL)
	}

	title := strings.TrimSpace(doc.Find("#itemTitle strong").First().Text())
	if title == "" {
		return nil, fmt.Errorf("title not found at %s", ref.URL)
	}

	desc := descriptionDetail(doc)
	imgs := galleryImages(doc, sku)

	return &pipeline.Extract{
		SKU:         sku,
		Title:       title,
		Description: desc,
		Images:      imgs,
	}, nil
}

// catalogTileSKU pulls the SKU out of the "Model: XXX" line both AIM
// storefronts (Coast Music, Korg Canada) render.
func catalogTileSKU(doc *goquery.Document) string {
	text := doc.Find(".catalogTileID").First().Text()
	_, after, found := strings.Cut(text, ":")
	if !found {
		return ""
	}
	return strings.TrimSpace(after)
}

// descriptionDetail returns the description block minus its first two nodes,
// which hold the item header the storefront repeats above the copy.
func descriptionDetail(doc *goquery.Document) catalog.Description {
	sel := doc.Find(".descriptionDetail .floatLeft").First()
	if sel.Length() == 0 {
		return catalog.Description{}
	}

	contents := sel.Contents()
	if contents.Length() > 2 {
		contents.Slice(0, 2).Remove()
	}

	html, _ := goquery.OuterHtml(sel)
	return catalog.Description{
		Text: strings.TrimSpace(sel.Text()),
		HTML: html,
	}
}

// galleryImages swaps the thumbnail rendition for the high-quality one.
func galleryImages(doc *goquery.Document, sku string) []catalog.Image {
	var imgs []catalog.Image
	doc.Find("#gallery .thumbnailLink").Each(func(i int, sel *goquery.Selection) {
		src, ok := sel.Attr("data-image")
		if !ok {
			return
		}
		src = strings.Replace(src, "~lg", "~hqw", 1)
		imgs = append(imgs, catalog.Image{
			URL:  src,
			Name: imageName(sku, i, imageExt(src)),
		})
	})
	return imgs
}
