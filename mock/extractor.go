package mock

import "github.com/fwojciec/wikidoc"

var _ wikidoc.TitleExtractor = (*TitleExtractor)(nil)

// TitleExtractor is a mock implementation of wikidoc.TitleExtractor.
type TitleExtractor struct {
	ExtractTitleFn func(html string) (string, error)
}

func (e *TitleExtractor) ExtractTitle(html string) (string, error) {
	return e.ExtractTitleFn(html)
}
