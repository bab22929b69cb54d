package scraper

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"

	"github.com/pfrederiksen/compilation-harvester/internal/compilation"
)

// DiscoverCandidates extracts compilation entries from a listing document.
//
// An anchor matched by sel qualifies when its trimmed, upper-cased text contains
// marker and it has a non-empty href. Relative hrefs are resolved against the
// document URL when one is known. Repeated (title, link) pairs are dropped.
func DiscoverCandidates(doc *goquery.Document, sel cascadia.Selector, marker string) []compilation.Candidate {
	marker = strings.ToUpper(marker)
	candidates := make([]compilation.Candidate, 0)

	doc.FindMatcher(sel).Each(func(_ int, a *goquery.Selection) {
		title := strings.TrimSpace(a.Text())
		href, _ := a.Attr("href")
		href = strings.TrimSpace(href)

		if href == "" || !strings.Contains(strings.ToUpper(title), marker) {
			return
		}

		candidates = append(candidates, compilation.Candidate{
			Title: title,
			Link:  resolveURL(doc.Url, href),
		})
	})

	return compilation.Dedupe(candidates)
}

// resolveURL makes href absolute against base. The href is returned unchanged
// when base is unknown or href cannot be parsed.
func resolveURL(base *url.URL, href string) string {
	if base == nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
