package wikidoc

import "context"

// Resolver resolves a free-text search phrase to the URL of the best
// matching wiki page.
type Resolver interface {
	// Resolve returns the page URL for query.
	// Returns ENOTFOUND if no page matches, even after a corrected query.
	Resolve(ctx context.Context, query string) (string, error)
}
