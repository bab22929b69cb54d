package compilation

import (
	"encoding/json"
	"fmt"
	"time"
)

// TimestampLayout is the wire format for publication dates: UTC with
// millisecond precision.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Candidate is a compilation entry discovered on the listing page
type Candidate struct {
	Title string `json:"title" yaml:"title"`
	Link  string `json:"link" yaml:"link"`
}

// Result is a harvested compilation post
type Result struct {
	Title         string     `json:"title" yaml:"title"`
	Link          string     `json:"link" yaml:"link"`
	PublishedAt   *time.Time `json:"publishedAt" yaml:"published_at"`
	DownloadLinks []string   `json:"downloadLinks" yaml:"download_links"`
}

// NewResult creates a Result for a candidate. A nil links slice is replaced
// with an empty one so it encodes as [] rather than null.
func NewResult(c Candidate, publishedAt *time.Time, links []string) Result {
	if links == nil {
		links = []string{}
	}
	var published *time.Time
	if publishedAt != nil {
		utc := publishedAt.UTC()
		published = &utc
	}
	return Result{
		Title:         c.Title,
		Link:          c.Link,
		PublishedAt:   published,
		DownloadLinks: links,
	}
}

// PublishedAtString returns the publication date in TimestampLayout,
// or "" when the date is unknown.
func (r Result) PublishedAtString() string {
	if r.PublishedAt == nil {
		return ""
	}
	return r.PublishedAt.UTC().Format(TimestampLayout)
}

// MarshalJSON encodes PublishedAt with millisecond precision and null when unknown
func (r Result) MarshalJSON() ([]byte, error) {
	var published *string
	if s := r.PublishedAtString(); s != "" {
		published = &s
	}
	links := r.DownloadLinks
	if links == nil {
		links = []string{}
	}
	return json.Marshal(struct {
		Title         string   `json:"title"`
		Link          string   `json:"link"`
		PublishedAt   *string  `json:"publishedAt"`
		DownloadLinks []string `json:"downloadLinks"`
	}{r.Title, r.Link, published, links})
}

// UnmarshalJSON accepts the form produced by MarshalJSON
func (r *Result) UnmarshalJSON(data []byte) error {
	var raw struct {
		Title         string   `json:"title"`
		Link          string   `json:"link"`
		PublishedAt   *string  `json:"publishedAt"`
		DownloadLinks []string `json:"downloadLinks"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var published *time.Time
	if raw.PublishedAt != nil {
		if published = ParseDate(*raw.PublishedAt); published == nil {
			return fmt.Errorf("invalid publishedAt: %q", *raw.PublishedAt)
		}
	}
	*r = NewResult(Candidate{Title: raw.Title, Link: raw.Link}, published, raw.DownloadLinks)
	return nil
}

// Dedupe removes repeated (title, link) pairs, keeping first occurrences in order
func Dedupe(candidates []Candidate) []Candidate {
	seen := make(map[Candidate]bool)
	unique := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if !seen[c] {
			seen[c] = true
			unique = append(unique, c)
		}
	}
	return unique
}
