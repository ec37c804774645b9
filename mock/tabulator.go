package mock

import (
	"context"

	"github.com/fwojciec/wikidoc"
)

var _ wikidoc.Tabulator = (*Tabulator)(nil)

// Tabulator is a mock implementation of wikidoc.Tabulator.
type Tabulator struct {
	TabulateFn func(ctx context.Context, grid string) (string, error)
}

func (t *Tabulator) Tabulate(ctx context.Context, grid string) (string, error) {
	return t.TabulateFn(ctx, grid)
}
