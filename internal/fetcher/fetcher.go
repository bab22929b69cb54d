package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	DefaultUserAgent    = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/118.0.0.0 Safari/537.36"
	DefaultAccept       = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
	DefaultTimeout      = 20 * time.Second
	DefaultMaxRedirects = 5
)

var (
	// ErrTooManyRedirects is wrapped by FetchError when the redirect limit is exceeded
	ErrTooManyRedirects = errors.New("too many redirects")
	// ErrUnexpectedStatus is wrapped by FetchError for statuses outside 200-399
	ErrUnexpectedStatus = errors.New("unexpected status code")
)

// FetchError reports a failed page fetch
type FetchError struct {
	URL        string
	StatusCode int // zero when no response was received
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetching %s: %v: %d", e.URL, e.Err, e.StatusCode)
	}
	return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the fetch failed because the time budget ran out
func (e *FetchError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var t interface{ Timeout() bool }
	return errors.As(e.Err, &t) && t.Timeout()
}

// Options configures a Fetcher. Zero values fall back to the defaults.
type Options struct {
	UserAgent    string
	Accept       string
	Timeout      time.Duration
	MaxRedirects int
}

// Fetcher fetches and parses HTML pages
type Fetcher struct {
	client    *http.Client
	userAgent string
	accept    string
}

// New creates a Fetcher
func New(opts Options) *Fetcher {
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Accept == "" {
		opts.Accept = DefaultAccept
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxRedirects <= 0 {
		opts.MaxRedirects = DefaultMaxRedirects
	}

	maxRedirects := opts.MaxRedirects
	return &Fetcher{
		client: &http.Client{
			Timeout: opts.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				// via holds every request made so far, the first one included
				if len(via) > maxRedirects {
					return ErrTooManyRedirects
				}
				return nil
			},
		},
		userAgent: opts.UserAgent,
		accept:    opts.Accept,
	}
}

// Fetch retrieves url and parses the body as HTML. The returned document's
// Url is the final URL after redirects, so relative links can be resolved.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", f.accept)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 400 {
		return nil, &FetchError{URL: url, StatusCode: resp.StatusCode, Err: ErrUnexpectedStatus}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: url, StatusCode: resp.StatusCode, Err: fmt.Errorf("parsing HTML: %w", err)}
	}
	doc.Url = resp.Request.URL

	return doc, nil
}
