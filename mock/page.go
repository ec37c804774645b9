package mock

import (
	"context"

	"github.com/fwojciec/wikidoc"
)

// Compile-time interface verification.
var (
	_ wikidoc.Page       = (*Page)(nil)
	_ wikidoc.PageParser = (*PageParser)(nil)
)

// Page is a mock implementation of wikidoc.Page.
type Page struct {
	URLFn     func() string
	TitleFn   func() string
	TOCFn     func() *wikidoc.TOC
	ContentFn func(ctx context.Context, id string) (*wikidoc.Content, error)
}

func (p *Page) URL() string {
	return p.URLFn()
}

func (p *Page) Title() string {
	return p.TitleFn()
}

func (p *Page) TOC() *wikidoc.TOC {
	return p.TOCFn()
}

func (p *Page) Content(ctx context.Context, id string) (*wikidoc.Content, error) {
	return p.ContentFn(ctx, id)
}

// PageParser is a mock implementation of wikidoc.PageParser.
type PageParser struct {
	ParseFn func(pageURL, html string) (wikidoc.Page, error)
}

func (p *PageParser) Parse(pageURL, html string) (wikidoc.Page, error) {
	return p.ParseFn(pageURL, html)
}
