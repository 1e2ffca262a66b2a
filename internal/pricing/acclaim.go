package pricing

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/playwright-community/playwright-go"

	"github.com/catalogops/catalog-scraper/internal/models"
	"github.com/catalogops/catalog-scraper/internal/rawref"
)

// AcclaimMusic collects prices from the Acclaim Music storefront, one flat
// listing paged by rel=next links.
type AcclaimMusic struct {
	baseURL string
}

func NewAcclaimMusic(baseURL string) *AcclaimMusic {
	return &AcclaimMusic{baseURL: baseURL}
}

func (a *AcclaimMusic) Store() models.Store { return models.StoreAcclaimMusic }

func (a *AcclaimMusic) SectionURLs(ctx context.Context, page playwright.Page) ([]string, error) {
	return []string{a.baseURL}, nil
}

func (a *AcclaimMusic) ListProducts(ctx context.Context, page playwright.Page) ([]string, error) {
	doc, err := document(page)
	if err != nil {
		return nil, err
	}

	var urls []string
	doc.Find(".product-grid.item .product-thumbnail a").Each(func(_ int, sel *goquery.Selection) {
		if href, ok := sel.Attr("href"); ok {
			urls = append(urls, resolveURL(a.baseURL, href))
		}
	})

	return urls, nil
}

func (a *AcclaimMusic) NextPageURL(ctx context.Context, page playwright.Page) (string, error) {
	doc, err := document(page)
	if err != nil {
		return "", err
	}

	href, ok := doc.Find(`.pagination.btn-group a.btn.btn-lg.btn-default[rel="next"]`).First().Attr("href")
	if !ok {
		return "", nil
	}
	return resolveURL(a.baseURL, href), nil
}

func (a *AcclaimMusic) ExtractPricing(ctx context.Context, page playwright.Page, productURL string) (*models.ProductPricing, error) {
	doc, err := document(page)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(doc.Find("h1.product-title").First().Text())

	sku := strings.TrimSpace(doc.Find(`.row.product-info-line div.text-right[itemprop="mpn"]`).First().Text())
	if sku == "" {
		return nil, fmt.Errorf("mpn not found at %s", productURL)
	}

	priceText := doc.Find("#buyitinfoblock span.productDetailsPrice").First().Text()
	price, err := rawref.ParseMoney(priceText)
	if err != nil {
		return nil, fmt.Errorf("failed to parse price %q at %s: %w", priceText, productURL, err)
	}

	return &models.ProductPricing{
		SKU:        sku,
		Title:      title,
		TheirPrice: price,
	}, nil
}
