package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestFetch(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		body       string
		wantError  bool
		wantTitle  string
	}{
		{
			name:       "successful fetch",
			statusCode: http.StatusOK,
			body:       `<html><head><title>Listing</title></head><body></body></html>`,
			wantTitle:  "Listing",
		},
		{
			name:       "non-authoritative is accepted",
			statusCode: http.StatusNonAuthoritativeInfo,
			body:       `<html><head><title>Cached</title></head></html>`,
			wantTitle:  "Cached",
		},
		{
			name:       "not found",
			statusCode: http.StatusNotFound,
			wantError:  true,
		},
		{
			name:       "server error",
			statusCode: http.StatusInternalServerError,
			wantError:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if ua := r.Header.Get("User-Agent"); !strings.Contains(ua, "Mozilla/5.0") {
					t.Errorf("User-Agent = %q, should contain 'Mozilla/5.0'", ua)
				}
				if accept := r.Header.Get("Accept"); !strings.HasPrefix(accept, "text/html") {
					t.Errorf("Accept = %q, should start with 'text/html'", accept)
				}
				w.WriteHeader(tt.statusCode)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			doc, err := New(Options{}).Fetch(context.Background(), server.URL)

			if tt.wantError {
				if err == nil {
					t.Fatal("Fetch() expected error, got nil")
				}
				var fe *FetchError
				if !errors.As(err, &fe) {
					t.Fatalf("Fetch() error type = %T, want *FetchError", err)
				}
				if fe.StatusCode != tt.statusCode {
					t.Errorf("FetchError.StatusCode = %d, want %d", fe.StatusCode, tt.statusCode)
				}
				if !errors.Is(err, ErrUnexpectedStatus) {
					t.Errorf("Fetch() error = %v, want ErrUnexpectedStatus", err)
				}
				return
			}

			if err != nil {
				t.Fatalf("Fetch() unexpected error: %v", err)
			}
			if got := doc.Find("title").Text(); got != tt.wantTitle {
				t.Errorf("title = %q, want %q", got, tt.wantTitle)
			}
		})
	}
}

func TestFetch_FollowsRedirects(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/new", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/new", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<p id="here">moved</p>`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	doc, err := New(Options{}).Fetch(context.Background(), server.URL+"/old")
	if err != nil {
		t.Fatalf("Fetch() unexpected error: %v", err)
	}
	if doc.Find("#here").Length() != 1 {
		t.Error("redirect target was not parsed")
	}
	if doc.Url == nil || doc.Url.Path != "/new" {
		t.Errorf("doc.Url = %v, want final URL with path /new", doc.Url)
	}
}

func TestFetch_RedirectLimit(t *testing.T) {
	tests := []struct {
		name      string
		hops      int
		wantError bool
	}{
		{"five redirects allowed", 5, false},
		{"six redirects rejected", 6, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				var n int
				fmt.Sscanf(r.URL.Path, "/hop/%d", &n)
				if n < tt.hops {
					http.Redirect(w, r, fmt.Sprintf("/hop/%d", n+1), http.StatusFound)
					return
				}
				w.Write([]byte(`<p>done</p>`))
			}))
			defer server.Close()

			_, err := New(Options{}).Fetch(context.Background(), server.URL+"/hop/0")
			if tt.wantError {
				if !errors.Is(err, ErrTooManyRedirects) {
					t.Errorf("Fetch() error = %v, want ErrTooManyRedirects", err)
				}
				return
			}
			if err != nil {
				t.Errorf("Fetch() unexpected error: %v", err)
			}
		})
	}
}

func TestFetch_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(500 * time.Millisecond):
		case <-r.Context().Done():
		}
	}))
	defer server.Close()

	_, err := New(Options{Timeout: 50 * time.Millisecond}).Fetch(context.Background(), server.URL)
	if err == nil {
		t.Fatal("Fetch() expected timeout error, got nil")
	}
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("Fetch() error type = %T, want *FetchError", err)
	}
	if !fe.Timeout() {
		t.Errorf("FetchError.Timeout() = false for %v", err)
	}
}

func TestFetch_ContextCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<p>ok</p>`))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(Options{}).Fetch(ctx, server.URL)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Fetch() error = %v, want context.Canceled", err)
	}
}

func TestFetch_InvalidURL(t *testing.T) {
	_, err := New(Options{}).Fetch(context.Background(), "://missing-scheme")
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("Fetch() error type = %T, want *FetchError", err)
	}
}

func TestNew_Defaults(t *testing.T) {
	f := New(Options{})

	if f.client == nil {
		t.Fatal("fetcher client is nil")
	}
	if f.client.Timeout != DefaultTimeout {
		t.Errorf("client timeout = %v, want %v", f.client.Timeout, DefaultTimeout)
	}
	if f.client.Jar != nil {
		t.Error("client should not keep cookies")
	}
	if f.userAgent != DefaultUserAgent {
		t.Errorf("userAgent = %q, want default", f.userAgent)
	}
	if f.accept != DefaultAccept {
		t.Errorf("accept = %q, want default", f.accept)
	}
}
