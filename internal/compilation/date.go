package compilation

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// minYear rejects free-form matches that carry no year, such as "10:30"
// or "Mar 15", which the free-form parser reads as year 0.
const minYear = 1000

// isoLayouts are tried before the free-form parser
var isoLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000Z0700",
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseDate parses a date-like string scraped from a page.
// ISO-8601 layouts are tried first, then free-form formats such as
// "March 15, 2025" or "15 Mar 2025". Values without a zone are read as UTC.
// Returns nil if the text cannot be parsed or has no year.
func ParseDate(text string) *time.Time {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}

	for _, layout := range isoLayouts {
		if t, err := time.ParseInLocation(layout, trimmed, time.UTC); err == nil {
			utc := t.UTC()
			return &utc
		}
	}

	t, err := dateparse.ParseIn(trimmed, time.UTC)
	if err != nil || t.Year() < minYear {
		return nil
	}
	utc := t.UTC()
	return &utc
}
