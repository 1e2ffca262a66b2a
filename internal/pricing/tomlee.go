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

// TomLeeMusic collects prices from the Tom Lee Music Magento storefront. The
// landing page links out to per-category listings, each with its own pager.
type TomLeeMusic struct {
	baseURL string
}

func NewTomLeeMusic(baseURL string) *TomLeeMusic {
	return &TomLeeMusic{baseURL: baseURL}
}

func (t *TomLeeMusic) Store() models.Store { return models.StoreTomLeeMusic }

func (t *TomLeeMusic) SectionURLs(ctx context.Context, page playwright.Page) ([]string, error) {
	if _, err := page.Goto(t.baseURL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateNetworkidle,
	}); err != nil {
		return nil, fmt.Errorf("failed to open store landing page: %w", err)
	}

	doc, err := document(page)
	if err != nil {
		return nil, err
	}

	var urls []string
	doc.Find(".col-sm-6 p a").Each(func(_ int, sel *goquery.Selection) {
		if href, ok := sel.Attr("href"); ok {
			urls = append(urls, resolveURL(t.baseURL, href))
		}
	})

	if len(urls) == 0 {
		return nil, fmt.Errorf("no category links found at %s", t.baseURL)
	}

	return urls, nil
}

func (t *TomLeeMusic) ListProducts(ctx context.Context, page playwright.Page) ([]string, error) {
	doc, err := document(page)
	if err != nil {
		return nil, err
	}

	var urls []string
	doc.Find(".product-item .product-item-info .product-item-details a.product-item-link").Each(func(_ int, sel *goquery.Selection) {
		if href, ok := sel.Attr("href"); ok {
			urls = append(urls, resolveURL(t.baseURL, href))
		}
	})

	return urls, nil
}

func (t *TomLeeMusic) NextPageURL(ctx context.Context, page playwright.Page) (string, error) {
	doc, err := document(page)
	if err != nil {
		return "", err
	}

	href, ok := doc.Find(".pages-item-next a").First().Attr("href")
	if !ok {
		return "", nil
	}
	return resolveURL(t.baseURL, href), nil
}

func (t *TomLeeMusic) ExtractPricing(ctx context.Context, page playwright.Page, productURL string) (*models.ProductPricing, error) {
	doc, err := document(page)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(doc.Find(".page-title").First().Text())

	sku := strings.TrimSpace(strings.ReplaceAll(
		doc.Find(".product-info-main ul li").First().Text(), "Catalog #: ", ""))
	if sku == "" {
		return nil, fmt.Errorf("catalog number not found at %s", productURL)
	}

	priceText := doc.Find(".special-price span.price").First().Text()
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
