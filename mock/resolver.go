package mock

import (
	"context"

	"github.com/fwojciec/wikidoc"
)

var _ wikidoc.Resolver = (*Resolver)(nil)

// Resolver is a mock implementation of wikidoc.Resolver.
type Resolver struct {
	ResolveFn func(ctx context.Context, query string) (string, error)
}

func (r *Resolver) Resolve(ctx context.Context, query string) (string, error) {
	return r.ResolveFn(ctx, query)
}
