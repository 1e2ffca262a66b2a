package suppliers

import (
	"context"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catalogops/catalog-scraper/internal/config"
	"github.com/catalogops/catalog-scraper/internal/models"
)

func TestNewDispatchesEverySupplier(t *testing.T) {
	cfg := &config.Config{}

	for _, supplier := range Registered() {
		adapter, err := New(supplier, cfg)
		require.NoError(t, err, "supplier %s", supplier)
		assert.Equal(t, supplier, adapter.Supplier())
	}
}

func TestNewUnknownSupplier(t *testing.T) {
	_, err := New(models.SupplierBurgerLighting, &config.Config{})
	assert.Error(t, err)
}

func TestAbsoluteURL(t *testing.T) {
	tests := []struct {
		base     string
		href     string
		expected string
	}{
		{"https://shop.test/a/b", "/products/p1", "https://shop.test/products/p1"},
		{"https://shop.test/a/", "p1.htm", "https://shop.test/a/p1.htm"},
		{"https://shop.test", "https://cdn.test/img.jpg", "https://cdn.test/img.jpg"},
		{"https://shop.test", "  /spaced  ", "https://shop.test/spaced"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, absoluteURL(tt.base, tt.href))
	}
}

func TestImageName(t *testing.T) {
	assert.Equal(t, "abc-123-0.jpg", imageName("ABC-123", 0, "jpg"))
	assert.Equal(t, "a-b-2.png", imageName("A/B", 2, "png"))
}

func TestImageExt(t *testing.T) {
	tests := []struct {
		url      string
		expected string
	}{
		{"https://cdn.test/img.jpg", "jpg"},
		{"https://cdn.test/img.JPEG", "jpeg"},
		{"https://cdn.test/img.png?size=lg", "png"},
		{"https://cdn.test/img.webp", "png"},
		{"https://cdn.test/img", "png"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, imageExt(tt.url), "url %s", tt.url)
	}
}

func doc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	d, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return d
}

func TestCatalogTileSKU(t *testing.T) {
	d := doc(t, `<div class="catalogTileID">Model: KR-55 Pro</div>`)
	assert.Equal(t, "KR-55 Pro", catalogTileSKU(d))

	d = doc(t, `<div class="catalogTileID">no separator here</div>`)
	assert.Equal(t, "", catalogTileSKU(d))
}

func TestDescriptionDetailDropsHeaderNodes(t *testing.T) {
	d := doc(t, `<div class="descriptionDetail"><div class="floatLeft"><h2>Item</h2><br/><p>The real copy.</p></div></div>`)

	desc := descriptionDetail(d)
	assert.Equal(t, "The real copy.", desc.Text)
	assert.NotContains(t, desc.HTML, "<h2>")
}

func TestDescriptionDetailMissingBlock(t *testing.T) {
	d := doc(t, `<div>nothing here</div>`)
	desc := descriptionDetail(d)
	assert.Empty(t, desc.Text)
	assert.Empty(t, desc.HTML)
}

func TestGalleryImagesSwapsRendition(t *testing.T) {
	d := doc(t, `<div id="gallery">
		<a class="thumbnailLink" data-image="https://cdn.test/item~lg.jpg"></a>
		<a class="thumbnailLink" data-image="https://cdn.test/item2~lg.png"></a>
		<a class="thumbnailLink"></a>
	</div>`)

	imgs := galleryImages(d, "KR-55")
	require.Len(t, imgs, 2)
	assert.Equal(t, "https://cdn.test/item~hqw.jpg", imgs[0].URL)
	assert.Equal(t, "kr-55-0.jpg", imgs[0].Name)
	assert.Equal(t, "kr-55-1.png", imgs[1].Name)
}

func TestLMExcludedDepartments(t *testing.T) {
	lm := NewLM("https://shop.test")

	assert.True(t, lm.excluded("https://shop.test/departments/65/Print-Music/Guitar.htm"))
	assert.False(t, lm.excluded("https://shop.test/departments/100/Guitars/Electric.htm"))
}

func TestLMListPageURL(t *testing.T) {
	lm := NewLM("https://shop.test")

	assert.Equal(t,
		"https://shop.test/departments/100?LocationsID=57&Current=0&#top-pagination",
		lm.ListPageURL("https://shop.test/departments/100", 1))
	assert.Equal(t,
		"https://shop.test/departments/100?LocationsID=57&Current=64&#top-pagination",
		lm.ListPageURL("https://shop.test/departments/100", 3))
}

func TestCoastMusicListPageURL(t *testing.T) {
	c := NewCoastMusic("https://coast.test/catalog")
	assert.Equal(t, "https://coast.test/catalog#2", c.ListPageURL("https://coast.test/catalog", 2))
}

func TestKorgCanadaDirectRefs(t *testing.T) {
	k := NewKorgCanada("https://korg.test/catalog")

	refs, err := k.DirectRefs(context.Background(), []models.RawProduct{
		{SKU: "KR-55", Title: "Rhythm Machine"},
		{SKU: ""},
	})
	require.NoError(t, err)

	require.Len(t, refs, 1)
	assert.Equal(t, "https://korg.test/catalog?itemId=KR-55", refs[0].URL)
	assert.Equal(t, "KR-55", refs[0].SKU)
}

func TestFenderDirectRefs(t *testing.T) {
	f := NewFender(config.SupplierConfig{FenderProductURL: "https://dealer.test/products"})

	refs, err := f.DirectRefs(context.Background(), []models.RawProduct{{SKU: "014-4502-500"}})
	require.NoError(t, err)

	require.Len(t, refs, 1)
	assert.Equal(t, "https://dealer.test/products/014-4502-500", refs[0].URL)
}
