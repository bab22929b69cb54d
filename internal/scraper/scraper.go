package scraper

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/pfrederiksen/compilation-harvester/internal/compilation"
	"github.com/pfrederiksen/compilation-harvester/internal/logger"
)

const (
	ListingURL      = "https://www.insightsonindia.com/current-affairs-upsc/"
	ListingSelector = "a, h2 a, .elementor-post__title a"
	Marker          = "[COMPILATION]"
	DownloadSuffix  = ".pdf"
)

// DownloadKeywords are the href substrings that mark a compilation PDF
var DownloadKeywords = []string{"MONTHLY", "CME", "COMBINED"}

// PageFetcher retrieves a URL as a parsed document
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (*goquery.Document, error)
}

// Options configures a Harvester
type Options struct {
	ListingURL      string
	ListingSelector string
	Marker          string
	Matcher         LinkMatcher

	// Workers is the number of posts fetched at once. Values below 2 visit
	// posts one at a time.
	Workers int

	// SkipFailedPosts records a failed post fetch in the report and carries on
	// instead of aborting the run.
	SkipFailedPosts bool
}

// DefaultOptions returns the options for the insightsonindia listing
func DefaultOptions() Options {
	return Options{
		ListingURL:      ListingURL,
		ListingSelector: ListingSelector,
		Marker:          Marker,
		Matcher:         KeywordMatcher{Suffix: DownloadSuffix, Keywords: DownloadKeywords},
		Workers:         1,
	}
}

// PostFailure describes a post that could not be fetched
type PostFailure struct {
	Title string `json:"title" yaml:"title"`
	Link  string `json:"link" yaml:"link"`
	Error string `json:"error" yaml:"error"`
}

// Report is the outcome of one harvest run
type Report struct {
	RunID      string               `json:"runId" yaml:"run_id"`
	Candidates int                  `json:"candidates" yaml:"candidates"`
	Items      []compilation.Result `json:"items" yaml:"items"`
	Failures   []PostFailure        `json:"failures,omitempty" yaml:"failures,omitempty"`
	Duration   time.Duration        `json:"-" yaml:"-"`
}

// Harvester runs the listing-to-results pipeline
type Harvester struct {
	fetcher PageFetcher
	opts    Options
	listing cascadia.Selector
}

// New creates a Harvester. It fails if the listing selector does not compile.
func New(fetcher PageFetcher, opts Options) (*Harvester, error) {
	defaults := DefaultOptions()
	if opts.ListingURL == "" {
		opts.ListingURL = defaults.ListingURL
	}
	if opts.ListingSelector == "" {
		opts.ListingSelector = defaults.ListingSelector
	}
	if opts.Marker == "" {
		opts.Marker = defaults.Marker
	}
	if opts.Matcher == nil {
		opts.Matcher = defaults.Matcher
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}

	sel, err := cascadia.Compile(opts.ListingSelector)
	if err != nil {
		return nil, fmt.Errorf("compiling listing selector %q: %w", opts.ListingSelector, err)
	}

	return &Harvester{
		fetcher: fetcher,
		opts:    opts,
		listing: sel,
	}, nil
}

// outcome is the result of visiting one post. A nil result with a nil error
// means the post was filtered out.
type outcome struct {
	result *compilation.Result
	err    error
}

// Harvest fetches the listing page, visits every compilation post and returns
// the posts inside r in discovery order. A listing fetch failure aborts the
// run; a post fetch failure aborts it too unless SkipFailedPosts is set.
func (h *Harvester) Harvest(ctx context.Context, r compilation.DateRange) (*Report, error) {
	start := time.Now()
	report := &Report{
		RunID: uuid.NewString(),
		Items: make([]compilation.Result, 0),
	}
	fields := logger.Fields{"run_id": report.RunID, "range": r.String()}

	logger.IncrCounter("harvest.runs")

	doc, err := h.fetcher.Fetch(ctx, h.opts.ListingURL)
	if err != nil {
		logger.IncrCounter("harvest.failures")
		return nil, fmt.Errorf("fetching listing: %w", err)
	}

	candidates := DiscoverCandidates(doc, h.listing, h.opts.Marker)
	report.Candidates = len(candidates)
	logger.Info("Found compilation posts", logger.Fields{"run_id": report.RunID, "count": len(candidates)})

	var outcomes []outcome
	if h.opts.Workers > 1 {
		outcomes, err = h.visitConcurrently(ctx, candidates, r)
	} else {
		outcomes, err = h.visitSequentially(ctx, candidates, r)
	}
	if err != nil {
		logger.IncrCounter("harvest.failures")
		return nil, err
	}

	for i, out := range outcomes {
		switch {
		case out.err != nil:
			report.Failures = append(report.Failures, PostFailure{
				Title: candidates[i].Title,
				Link:  candidates[i].Link,
				Error: out.err.Error(),
			})
		case out.result != nil:
			report.Items = append(report.Items, *out.result)
		}
	}

	report.Duration = time.Since(start)
	logger.RecordTiming("harvest.run", report.Duration)
	logger.SetGauge("harvest.last_count", float64(len(report.Items)))
	fields["count"] = len(report.Items)
	fields["failures"] = len(report.Failures)
	fields["duration_ms"] = report.Duration.Milliseconds()
	logger.Info("Harvest finished", fields)

	return report, nil
}

// visitSequentially visits posts one at a time in discovery order
func (h *Harvester) visitSequentially(ctx context.Context, candidates []compilation.Candidate, r compilation.DateRange) ([]outcome, error) {
	outcomes := make([]outcome, 0, len(candidates))
	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out := h.visit(ctx, c, r)
		if out.err != nil && !h.opts.SkipFailedPosts {
			return nil, out.err
		}
		outcomes = append(outcomes, out)
	}
	return outcomes, nil
}

// visitConcurrently visits up to Workers posts at once. Outcomes keep
// discovery order regardless of completion order.
func (h *Harvester) visitConcurrently(ctx context.Context, candidates []compilation.Candidate, r compilation.DateRange) ([]outcome, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	outcomes := make([]outcome, len(candidates))
	sem := semaphore.NewWeighted(int64(h.opts.Workers))

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)

	for i, c := range candidates {
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		wg.Add(1)
		go func(i int, c compilation.Candidate) {
			defer wg.Done()
			defer sem.Release(1)

			out := h.visit(ctx, c, r)
			outcomes[i] = out
			if out.err != nil && !h.opts.SkipFailedPosts {
				mu.Lock()
				if firstErr == nil {
					firstErr = out.err
					cancel()
				}
				mu.Unlock()
			}
		}(i, c)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		// cancel has not run yet, so this is the caller's context
		return nil, err
	}
	return outcomes, nil
}

// visit fetches one post and turns it into a result if it falls inside r
func (h *Harvester) visit(ctx context.Context, c compilation.Candidate, r compilation.DateRange) outcome {
	fields := logger.Fields{"title": c.Title, "link": c.Link}
	logger.Debug("Fetching post", fields)

	fetchStart := time.Now()
	doc, err := h.fetcher.Fetch(ctx, c.Link)
	logger.RecordTiming("harvest.post_fetch", time.Since(fetchStart))
	if err != nil {
		logger.IncrCounter("harvest.post_failures")
		if !errors.Is(err, context.Canceled) {
			logger.Warn("Post fetch failed", logger.Fields{"title": c.Title, "link": c.Link, "error": err.Error()})
		}
		return outcome{err: fmt.Errorf("fetching post %q: %w", c.Title, err)}
	}
	logger.IncrCounter("harvest.posts_fetched")

	publishedAt, source := FirstParsed(doc, PublishedDateSources)
	if publishedAt != nil {
		fields["published_at"] = publishedAt.Format(compilation.TimestampLayout)
		fields["date_source"] = source
	}

	if !r.Includes(publishedAt) {
		fields["reason"] = skipReason(r, publishedAt)
		logger.Info("Skipped post", fields)
		logger.IncrCounter("harvest.posts_skipped")
		return outcome{}
	}

	links := ExtractDownloadLinks(doc, h.opts.Matcher)
	res := compilation.NewResult(c, publishedAt, links)
	fields["download_links"] = len(links)
	logger.Debug("Harvested post", fields)

	return outcome{result: &res}
}

// skipReason explains why Includes rejected publishedAt
func skipReason(r compilation.DateRange, publishedAt *time.Time) string {
	switch {
	case publishedAt == nil:
		return "unknown date"
	case r.Start != nil && publishedAt.Before(*r.Start):
		return "before range"
	default:
		return "after range"
	}
}
