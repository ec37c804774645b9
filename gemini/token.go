package gemini

import (
	"context"

	"github.com/fwojciec/wikidoc"
	"google.golang.org/genai"
	"google.golang.org/genai/tokenizer"
)

var _ wikidoc.TokenCounter = (*TokenCounter)(nil)

// TokenCounter counts tokens using the local Gemini tokenizer, so record
// sizes can be reported without calling the API.
type TokenCounter struct {
	tok *tokenizer.LocalTokenizer
}

// NewTokenCounter creates a new TokenCounter for the given model.
func NewTokenCounter(model string) (*TokenCounter, error) {
	tok, err := tokenizer.NewLocalTokenizer(model)
	if err != nil {
		return nil, err
	}
	return &TokenCounter{tok: tok}, nil
}

// CountTokens counts the number of tokens in the given text.
func (tc *TokenCounter) CountTokens(ctx context.Context, text string) (int, error) {
	if text == "" {
		return 0, nil
	}

	contents := []*genai.Content{
		genai.NewContentFromText(text, "user"),
	}

	result, err := tc.tok.CountTokens(contents, nil)
	if err != nil {
		return 0, err
	}

	return int(result.TotalTokens), nil
}

// CountRecords sums the tokens of every record's content.
func CountRecords(ctx context.Context, tc wikidoc.TokenCounter, recs []*wikidoc.Record) (int, error) {
	var total int
	for _, rec := range recs {
		n, err := tc.CountTokens(ctx, rec.Content)
		if err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}
