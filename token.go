package wikidoc

import "context"

// TokenCounter counts tokens in record content for a specific model.
type TokenCounter interface {
	CountTokens(ctx context.Context, text string) (int, error)
}
