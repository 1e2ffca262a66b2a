package catalog

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	spaceRun   = regexp.MustCompile(`\s+`)
	betweenTag = regexp.MustCompile(`>\s+<`)
)

// NormalizeHTML strips presentation attributes from a scraped description
// fragment and collapses whitespace, so the stored body HTML is stable across
// re-scrapes of the same page.
func NormalizeHTML(fragment string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return collapseWhitespace(fragment)
	}

	doc.Find("*").Each(func(_ int, sel *goquery.Selection) {
		sel.RemoveAttr("class")
		sel.RemoveAttr("id")
		sel.RemoveAttr("style")
	})

	html, err := doc.Find("body").Html()
	if err != nil || html == "" {
		return collapseWhitespace(fragment)
	}

	return collapseWhitespace(html)
}

func collapseWhitespace(html string) string {
	html = spaceRun.ReplaceAllString(html, " ")
	html = betweenTag.ReplaceAllString(html, "><")
	return strings.TrimSpace(html)
}
