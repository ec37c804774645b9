package crawl

import (
	"context"
	"net"
	"strings"
	"sync"

	"github.com/fwojciec/wikidoc"
	"golang.org/x/time/rate"
)

var _ wikidoc.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter rate-limits page fetches per host using token buckets.
// Deferred pages usually live on the same host as the root page, so in
// practice this spaces out every fetch of a crawl.
type DomainLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      float64
	burst    int
}

// LimiterOption configures a DomainLimiter.
type LimiterOption func(*DomainLimiter)

// WithBurst allows up to n requests to a host back to back. The default
// is 1 (no bursting).
func WithBurst(n int) LimiterOption {
	return func(d *DomainLimiter) {
		if n > 0 {
			d.burst = n
		}
	}
}

// NewDomainLimiter creates a new DomainLimiter allowing rps requests per
// second to each host.
func NewDomainLimiter(rps float64, opts ...LimiterOption) *DomainLimiter {
	d := &DomainLimiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      rps,
		burst:    1,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Wait blocks until the rate limit allows a request to domain.
// Hosts are compared case-insensitively and without port.
// Returns an error if the context is canceled before the wait completes.
func (d *DomainLimiter) Wait(ctx context.Context, domain string) error {
	return d.limiter(hostKey(domain)).Wait(ctx)
}

func (d *DomainLimiter) limiter(host string) *rate.Limiter {
	d.mu.Lock()
	defer d.mu.Unlock()

	l, ok := d.limiters[host]
	if !ok {
		l = rate.NewLimiter(rate.Limit(d.rps), d.burst)
		d.limiters[host] = l
	}
	return l
}

func hostKey(domain string) string {
	if h, _, err := net.SplitHostPort(domain); err == nil {
		domain = h
	}
	return strings.ToLower(domain)
}
