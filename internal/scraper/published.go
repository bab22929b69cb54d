package scraper

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/pfrederiksen/compilation-harvester/internal/compilation"
)

// DateSource yields a date-like string from a post document, or false when
// the document has nothing for it.
type DateSource struct {
	Name    string
	Extract func(doc *goquery.Document) (string, bool)
}

// EntryDateSelector matches the usual WordPress "entry date / posted on / updated" markup
const EntryDateSelector = ".entry-date, .posted-on time, .updated"

// PublishedDateSources lists the publication date heuristics in the order they are tried
var PublishedDateSources = []DateSource{
	{"meta article:published_time property", firstAttr("meta[property='article:published_time']", "content")},
	{"meta article:published_time name", firstAttr("meta[name='article:published_time']", "content")},
	{"meta og:updated_time", firstAttr("meta[property='og:updated_time']", "content")},
	{"time datetime", firstAttr("time[datetime]", "datetime")},
	{"time text", firstText("time")},
	{"entry date text", firstText(EntryDateSelector)},
	{"json-ld datePublished", jsonLDDatePublished},
}

// ExtractPublishedAt returns the post's publication date, or nil if no
// heuristic produced a parseable date.
func ExtractPublishedAt(doc *goquery.Document) *time.Time {
	t, _ := FirstParsed(doc, PublishedDateSources)
	return t
}

// FirstParsed runs sources in order and returns the first value that parses as
// a date, along with the name of the source that produced it.
func FirstParsed(doc *goquery.Document, sources []DateSource) (*time.Time, string) {
	for _, src := range sources {
		text, ok := src.Extract(doc)
		if !ok {
			continue
		}
		if t := compilation.ParseDate(text); t != nil {
			return t, src.Name
		}
	}
	return nil, ""
}

func firstAttr(selector, attr string) func(*goquery.Document) (string, bool) {
	return func(doc *goquery.Document) (string, bool) {
		val, ok := doc.Find(selector).First().Attr(attr)
		if !ok || strings.TrimSpace(val) == "" {
			return "", false
		}
		return val, true
	}
}

func firstText(selector string) func(*goquery.Document) (string, bool) {
	return func(doc *goquery.Document) (string, bool) {
		text := strings.TrimSpace(doc.Find(selector).First().Text())
		return text, text != ""
	}
}

// jsonLDDatePublished reads datePublished from the first JSON-LD block.
// The block may be a single object, an array of objects (first one is used) or
// an object with a @graph array. Malformed JSON yields nothing.
func jsonLDDatePublished(doc *goquery.Document) (string, bool) {
	raw := strings.TrimSpace(doc.Find("script[type='application/ld+json']").First().Text())
	if raw == "" {
		return "", false
	}

	var data interface{}
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return "", false
	}

	switch v := data.(type) {
	case map[string]interface{}:
		if s, ok := datePublished(v); ok {
			return s, true
		}
		if graph, ok := v["@graph"].([]interface{}); ok {
			return firstDatePublished(graph)
		}
	case []interface{}:
		return firstDatePublished(v)
	}
	return "", false
}

func firstDatePublished(items []interface{}) (string, bool) {
	if len(items) == 0 {
		return "", false
	}
	obj, ok := items[0].(map[string]interface{})
	if !ok {
		return "", false
	}
	return datePublished(obj)
}

func datePublished(obj map[string]interface{}) (string, bool) {
	s, ok := obj["datePublished"].(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", false
	}
	return s, true
}
