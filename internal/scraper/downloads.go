package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// LinkMatcher decides whether an anchor points at a downloadable compilation.
// text is the anchor's lower-cased visible text.
type LinkMatcher interface {
	MatchLink(href, text string) bool
}

// KeywordMatcher accepts hrefs that end with Suffix and whose upper-cased form
// contains any of Keywords. The suffix check is case-sensitive.
type KeywordMatcher struct {
	Suffix   string
	Keywords []string
}

// MatchLink ignores the anchor text for now
func (m KeywordMatcher) MatchLink(href, _ string) bool {
	if href == "" || !strings.HasSuffix(href, m.Suffix) {
		return false
	}
	upper := strings.ToUpper(href)
	for _, kw := range m.Keywords {
		if strings.Contains(upper, strings.ToUpper(kw)) {
			return true
		}
	}
	return false
}

// ExtractDownloadLinks returns the hrefs of all anchors accepted by m, in
// document order and without de-duplication. Relative hrefs are resolved
// against the document URL when one is known.
func ExtractDownloadLinks(doc *goquery.Document, m LinkMatcher) []string {
	links := make([]string, 0)

	doc.Find("a").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		text := strings.ToLower(a.Text())
		if m.MatchLink(href, text) {
			links = append(links, resolveURL(doc.Url, href))
		}
	})

	return links
}
