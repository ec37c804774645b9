// Package trafilatura reads page titles from document metadata using
// go-trafilatura.
package trafilatura

import (
	"strings"

	"github.com/fwojciec/wikidoc"
	"github.com/markusmobius/go-trafilatura"
)

// Ensure TitleExtractor implements wikidoc.TitleExtractor at compile time.
var _ wikidoc.TitleExtractor = (*TitleExtractor)(nil)

// wikiTitleSuffix is appended to page titles by the wiki.
const wikiTitleSuffix = " - 나무위키"

// TitleExtractor wraps go-trafilatura to read a page title from its
// metadata (og:title, JSON+LD, <title>).
type TitleExtractor struct{}

// NewTitleExtractor creates a new TitleExtractor.
func NewTitleExtractor() *TitleExtractor {
	return &TitleExtractor{}
}

// ExtractTitle returns the page title with the site suffix removed.
// Returns ENOTFOUND if the metadata carries no title.
func (e *TitleExtractor) ExtractTitle(rawHTML string) (string, error) {
	if rawHTML == "" {
		return "", wikidoc.Errorf(wikidoc.EINVALID, "empty HTML input")
	}

	opts := trafilatura.Options{
		EnableFallback: true,
	}

	result, err := trafilatura.Extract(strings.NewReader(rawHTML), opts)
	if err != nil {
		return "", err
	}

	title := strings.TrimSpace(strings.TrimSuffix(result.Metadata.Title, wikiTitleSuffix))
	if title == "" {
		return "", wikidoc.Errorf(wikidoc.ENOTFOUND, "page has no title")
	}
	return title, nil
}
