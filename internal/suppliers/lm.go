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

const lmPageSize = 32

// Departments that never carry catalog SKUs (print music, clothing, merch).
var lmExcludedDepartments = []string{
	"/departments/65/Print-Music/Guitar.htm",
	"/departments/66/Print-Music/Bass_Guitar.htm",
	"/departments/67/Print-Music/Piano.htm",
	"/departments/882/Print-Music/Brass_Instrument.htm",
	"/departments/884/Print-Music/Choral.htm",
	"/departments/889/Print-Music/Concert_Band.htm",
	"/departments/902/Print-Music/Jazz_Band.htm",
	"/departments/914/Print-Music/Orchestral_Strings.htm",
	"/departments/918/Print-Music/Percussion.htm",
	"/departments/925/Print-Music/Theory.htm",
	"/departments/1673/Drums/Clothing_Hats_Misc.htm",
	"/departments/19936/Clothing---Merch/Recording-Brands.htm",
	"/departments/19941/Clothing---Merch/L-M-Gear.htm",
	"/departments/19676/Print-Music/Novelties---Giftware.htm",
}

// LM crawls the Long & McQuade department tree: department menu -> 32-per-page
// listings -> product detail pages.
type LM struct {
	baseURL string
}

func NewLM(baseURL string) *LM {
	return &LM{baseURL: baseURL}
}

func (a *LM) Supplier() models.Supplier { return models.SupplierLM }

func (a *LM) PageSize() int { return lmPageSize }

func (a *LM) ListDepartments(ctx context.Context, page playwright.Page) ([]string, error) {
	if err := navigate(page, a.baseURL); err != nil {
		return nil, err
	}

	doc, err := document(page)
	if err != nil {
		return nil, err
	}

	var urls []string
	doc.Find(".dropdown-menu .sub-deps > li.dropdown-item > a.sub-menu-link-dep").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok {
			return
		}
		href = absoluteURL(a.baseURL, href)
		if !strings.Contains(href, "/departments/") || a.excluded(href) {
			return
		}
		urls = append(urls, href)
	})

	if len(urls) == 0 {
		return nil, fmt.Errorf("no department links found at %s", a.baseURL)
	}

	return urls, nil
}

func (a *LM) excluded(href string) bool {
	for _, suffix := range lmExcludedDepartments {
		if strings.HasSuffix(href, suffix) {
			return true
		}
	}
	return false
}

// TotalCount reads the "1 - 32 of N" pagination row.
func (a *LM) TotalCount(ctx context.Context, page playwright.Page) (int, error) {
	doc, err := document(page)
	if err != nil {
		return 0, err
	}

	text := doc.Find("#top-pagination").First().Text()
	if text == "" {
		return 0, pipeline.ErrNoTotalCount
	}

	if _, after, found := strings.Cut(text, "of"); found {
		text = after
	}

	return pipeline.ParseTotalCount(text)
}

func (a *LM) ListPageURL(depURL string, pageNum int) string {
	skip := (pageNum - 1) * lmPageSize
	return fmt.Sprintf("%s?LocationsID=57&Current=%d&#top-pagination", depURL, skip)
}

func (a *LM) ListProducts(ctx context.Context, page playwright.Page) ([]pipeline.ProductRef, error) {
	doc, err := document(page)
	if err != nil {
		return nil, err
	}

	var refs []pipeline.ProductRef
	doc.Find(".products-item").Each(func(_ int, item *goquery.Selection) {
		imgSrc, _ := item.Find("img.item-img").First().Attr("src")
		if strings.HasSuffix(imgSrc, "noimage.jpg") {
			return
		}

		skuText := item.Find(".products-item-descr p.text-dark").First().Text()
		sku := ""
		if _, after, found := strings.Cut(skuText, ":"); found {
			sku = strings.TrimSpace(after)
		}

		href, _ := item.Find("a.products-item-link").First().Attr("href")
		title := strings.TrimSpace(item.Find(".products-item-descr .fw-bolder").First().Text())

		if sku == "" || href == "" {
			return
		}

		refs = append(refs, pipeline.ProductRef{
			URL:   absoluteURL(a.baseURL, href),
			SKU:   sku,
			Title: title,
		})
	})

	return refs, nil
}

func (a *LM) ExtractProduct(ctx context.Context, page playwright.Page, ref pipeline.ProductRef) (*pipeline.Extract, error) {
	doc, err := document(page)
	if err != nil {
		return nil, err
	}

	sku := ""
	doc.Find(".product-header,.product-info").Find("*").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := sel.Text()
		if strings.Contains(text, "Model: #") && sel.Children().Length() == 0 {
			if _, after, found := strings.Cut(text, "#"); found {
				sku = strings.TrimSpace(after)
				return false
			}
		}
		return true
	})
	if sku == "" {
		sku = ref.SKU
	}

	title := strings.Join(strings.Fields(doc.Find(".product-header h1").First().Text()), " ")
	if title == "" {
		return nil, fmt.Errorf("title not found at %s", ref.URL)
	}

	descSel := doc.Find("#product-description").First()
	descText := strings.TrimSpace(descSel.Text())
	descHTML, _ := goquery.OuterHtml(descSel)

	var imgs []catalog.Image
	doc.Find(".product-images img, #product-gallery img").Each(func(i int, img *goquery.Selection) {
		src, ok := img.Attr("src")
		if !ok || src == "" {
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
