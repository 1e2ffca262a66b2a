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

// KorgCanada addresses product pages directly from the reference list: the
// AIM storefront serves any item at ?itemId=<sku>, so there is nothing to
// crawl and the run is cursored by SKU.
type KorgCanada struct {
	baseURL string
}

func NewKorgCanada(baseURL string) *KorgCanada {
	return &KorgCanada{baseURL: baseURL}
}

func (k *KorgCanada) Supplier() models.Supplier { return models.SupplierKorgCanada }

func (k *KorgCanada) DirectRefs(ctx context.Context, raw []models.RawProduct) ([]pipeline.ProductRef, error) {
	refs := make([]pipeline.ProductRef, 0, len(raw))
	for _, r := range raw {
		if r.SKU == "" {
			continue
		}
		refs = append(refs, pipeline.ProductRef{
			URL:   fmt.Sprintf("%s?itemId=%s", k.baseURL, r.SKU),
			SKU:   r.SKU,
			Title: r.Title,
		})
	}
	return refs, nil
}

func (k *KorgCanada) ExtractProduct(ctx context.Context, page playwright.Page, ref pipeline.ProductRef) (*pipeline.Extract, error) {
	doc, err := document(page)
	if err != nil {
		return nil, err
	}

	sku := catalogTileSKU(doc)
	if sku == "" {
		return nil, fmt.Errorf("sku not found at %s", ref.URL)
	}

	title := strings.TrimSpace(doc.Find("#itemTitle").First().Text())
	if title == "" {
		return nil, fmt.Errorf("title not found at %s", ref.URL)
	}

	desc := korgDescription(doc)
	imgs := galleryImages(doc, sku)

	return &pipeline.Extract{
		SKU:         sku,
		Title:       title,
		Description: desc,
		Images:      imgs,
	}, nil
}

// korgDescription strips the layout class so the exported HTML fragment
// carries no storefront styling hooks.
func korgDescription(doc *goquery.Document) catalog.Description {
	sel := doc.Find(".colmd").First()
	if sel.Length() == 0 {
		return catalog.Description{}
	}

	sel.RemoveAttr("class")
	html, _ := goquery.OuterHtml(sel)
	return catalog.Description{
		Text: strings.TrimSpace(sel.Text()),
		HTML: html,
	}
}
