package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/wikidoc"
)

// Ensure LoggingResolver implements wikidoc.Resolver.
var _ wikidoc.Resolver = (*LoggingResolver)(nil)

// LoggingResolver wraps a Resolver with logging.
type LoggingResolver struct {
	next   wikidoc.Resolver
	logger *slog.Logger
}

// NewLoggingResolver creates a new LoggingResolver.
func NewLoggingResolver(next wikidoc.Resolver, logger *slog.Logger) *LoggingResolver {
	return &LoggingResolver{next: next, logger: logger}
}

// Resolve delegates to the wrapped resolver and logs the outcome.
func (r *LoggingResolver) Resolve(ctx context.Context, query string) (url string, err error) {
	defer func(begin time.Time) {
		r.logger.Info("resolve",
			"query", query,
			"url", url,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return r.next.Resolve(ctx, query)
}
