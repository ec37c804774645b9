package wikidoc

import "context"

// Fetcher retrieves raw page markup from URLs.
// A single Fetcher is shared by every page of one crawl.
type Fetcher interface {
	// Fetch returns the markup at url.
	// The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string) (html string, err error)

	// Close releases resources held by the fetcher.
	Close() error
}

// DomainLimiter rate-limits requests per host.
type DomainLimiter interface {
	// Wait blocks until a request to domain is allowed or ctx is done.
	Wait(ctx context.Context, domain string) error
}
