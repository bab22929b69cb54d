package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pfrederiksen/compilation-harvester/internal/compilation"
)

// SortOrder represents the available sorting options
type SortOrder string

const (
	SortByDiscovery SortOrder = "discovery"
	SortByDate      SortOrder = "date"
	SortByTitle     SortOrder = "title"
)

// ParseSortOrder validates a --sort value. Empty means discovery order.
func ParseSortOrder(s string) (SortOrder, error) {
	switch o := SortOrder(s); o {
	case "":
		return SortByDiscovery, nil
	case SortByDiscovery, SortByDate, SortByTitle:
		return o, nil
	default:
		return "", fmt.Errorf("unknown sort order: %s (use discovery, date or title)", s)
	}
}

// sortResults sorts results in place based on the specified sort order
func sortResults(results []compilation.Result, sortOrder SortOrder) {
	switch sortOrder {
	case SortByDate:
		sort.SliceStable(results, func(i, j int) bool {
			return compareByDate(results[i], results[j])
		})
	case SortByTitle:
		sort.SliceStable(results, func(i, j int) bool {
			ti, tj := strings.ToLower(results[i].Title), strings.ToLower(results[j].Title)
			if ti != tj {
				return ti < tj
			}
			return compareByDate(results[i], results[j])
		})
	}
}

// compareByDate reports whether i was published before j.
// Results without a date sort last.
func compareByDate(i, j compilation.Result) bool {
	switch {
	case i.PublishedAt != nil && j.PublishedAt != nil:
		return i.PublishedAt.Before(*j.PublishedAt)
	case i.PublishedAt != nil:
		return true
	default:
		return false
	}
}
