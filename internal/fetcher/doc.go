// Package fetcher retrieves web pages as queryable goquery documents.
//
// Every request carries a browser User-Agent and an Accept header, is bounded by a
// timeout and a redirect limit, and succeeds only for 2xx and 3xx statuses. The
// fetcher keeps no cookies or session state and never retries; failures are reported
// as *FetchError.
package fetcher
