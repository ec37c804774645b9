package crawl

import (
	"context"
	"time"

	"github.com/fwojciec/wikidoc"
)

// DefaultRetryDelays returns the backoff delays for fetch retries: 1s, 2s, 4s.
func DefaultRetryDelays() []time.Duration {
	return []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}
}

// LogFunc is the signature for a logging function.
type LogFunc func(format string, args ...any)

// Ensure RetryFetcher implements wikidoc.Fetcher at compile time.
var _ wikidoc.Fetcher = (*RetryFetcher)(nil)

// RetryFetcher retries failed fetches of the wrapped Fetcher with
// increasing delays. Pages that do not exist (ENOTFOUND) are not retried.
type RetryFetcher struct {
	fetcher wikidoc.Fetcher
	delays  []time.Duration
	logger  LogFunc
}

// NewRetryFetcher wraps f. A nil delays slice means DefaultRetryDelays; an
// empty one disables retries. The logger, if not nil, is called before
// each retry.
func NewRetryFetcher(f wikidoc.Fetcher, delays []time.Duration, logger LogFunc) *RetryFetcher {
	if delays == nil {
		delays = DefaultRetryDelays()
	}
	return &RetryFetcher{fetcher: f, delays: delays, logger: logger}
}

// Fetch fetches url, making up to len(delays)+1 attempts.
func (r *RetryFetcher) Fetch(ctx context.Context, url string) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= len(r.delays); attempt++ {
		html, err := r.fetcher.Fetch(ctx, url)
		if err == nil {
			return html, nil
		}
		lastErr = err

		if attempt == len(r.delays) || wikidoc.ErrorCode(err) == wikidoc.ENOTFOUND {
			break
		}

		if r.logger != nil {
			r.logger("  retry %s (attempt %d): %v", url, attempt+2, err)
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(r.delays[attempt]):
		}
	}
	return "", lastErr
}

// Close closes the wrapped Fetcher.
func (r *RetryFetcher) Close() error {
	return r.fetcher.Close()
}
