// Package scraper harvests compilation posts from an affairs-listing page.
//
// The listing page is scanned for anchors whose text carries the compilation
// marker. Each matching post is then fetched to extract its publication date,
// which is found by trying meta tags, time elements, entry-date markup and JSON-LD
// structured data in a fixed order. Posts outside the requested date range are
// dropped; the rest are returned with the PDF links that match the configured
// keywords, in the order they were discovered.
package scraper
