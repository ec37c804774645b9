// Package goquery implements wiki page parsing with goquery: reading the
// table of contents, slicing the document between section anchors, and
// normalizing section content and tables.
package goquery

import (
	"context"
	"net/url"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/wikidoc"
)

// Ensure Parser implements wikidoc.PageParser at compile time.
var _ wikidoc.PageParser = (*Parser)(nil)

// Parser parses wiki page markup into Pages.
type Parser struct {
	tabulator wikidoc.Tabulator
	titles    wikidoc.TitleExtractor
	stopWords []string
}

// Option configures a Parser.
type Option func(*Parser)

// WithTabulator sets the collaborator that turns rasterized tables into
// JSON. Without one, tables are rendered as their comma-separated grid.
func WithTabulator(t wikidoc.Tabulator) Option {
	return func(p *Parser) {
		p.tabulator = t
	}
}

// WithTitleExtractor sets the fallback used when a page has no self link
// naming its topic.
func WithTitleExtractor(e wikidoc.TitleExtractor) Option {
	return func(p *Parser) {
		p.titles = e
	}
}

// WithStopWords sets words marking table rows as site noise. Rows
// containing any of them are dropped during table normalization.
func WithStopWords(words ...string) Option {
	return func(p *Parser) {
		p.stopWords = words
	}
}

// NewParser creates a new Parser.
func NewParser(opts ...Option) *Parser {
	p := &Parser{}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse parses html fetched from pageURL and reads its table of contents.
// Returns ENOTFOUND if the page has no TOC widget.
func (p *Parser) Parse(pageURL, html string) (wikidoc.Page, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return nil, wikidoc.Errorf(wikidoc.EINVALID, "invalid page URL: %v", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, wikidoc.Errorf(wikidoc.EINVALID, "failed to parse HTML: %v", err)
	}

	idx := NewIndex(doc)
	o, ok := buildTOC(doc, idx)
	if !ok {
		return nil, wikidoc.Errorf(wikidoc.ENOTFOUND, "page %q has no table of contents", pageURL)
	}

	return &Page{
		url:       pageURL,
		base:      u,
		title:     p.pageTitle(doc, u, html),
		idx:       idx,
		outline:   o,
		tabulator: p.tabulator,
		stopWords: p.stopWords,
	}, nil
}

// pageTitle returns the page topic: the text of the page's link to itself,
// then the title extractor's answer, then the <title> element, then the
// last path segment of the URL.
func (p *Parser) pageTitle(doc *goquery.Document, u *url.URL, raw string) string {
	var title string
	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		ref, err := url.Parse(href)
		if err != nil || ref.Path == "" || ref.Path != u.Path || (ref.Host != "" && ref.Host != u.Host) {
			return true
		}
		title = normalizeSpace(s.Text())
		return title == ""
	})
	if title != "" {
		return title
	}

	if p.titles != nil {
		if t, err := p.titles.ExtractTitle(raw); err == nil && strings.TrimSpace(t) != "" {
			return strings.TrimSpace(t)
		}
	}

	if t := normalizeSpace(doc.Find("title").First().Text()); t != "" {
		if i := strings.LastIndex(t, " - "); i > 0 {
			t = t[:i]
		}
		return t
	}

	return path.Base(u.Path)
}

// Ensure Page implements wikidoc.Page at compile time.
var _ wikidoc.Page = (*Page)(nil)

// Page is one parsed wiki page.
type Page struct {
	url   string
	base  *url.URL
	title string

	idx     *Index
	outline *outline

	tabulator wikidoc.Tabulator
	stopWords []string
}

// URL returns the URL the page was fetched from.
func (p *Page) URL() string {
	return p.url
}

// Title returns the page topic.
func (p *Page) Title() string {
	return p.title
}

// TOC returns the page's sections in document order.
func (p *Page) TOC() *wikidoc.TOC {
	return p.outline.toc
}

// Content extracts the body of the section with the given ID.
func (p *Page) Content(ctx context.Context, id string) (*wikidoc.Content, error) {
	if _, ok := p.outline.toc.Section(id); !ok {
		return nil, wikidoc.Errorf(wikidoc.ENOTFOUND, "section %q not found", id)
	}

	anchor, ok := p.outline.anchors[id]
	if !ok {
		return wikidoc.EmptyContent(), nil
	}

	switch id {
	case wikidoc.ProfileSectionID:
		return p.profileContent(ctx, anchor)
	case wikidoc.FootnoteSectionID:
		return footnoteContent(p.idx.Select(anchor)), nil
	}

	return p.sectionContent(ctx, p.idx.Between(anchor, p.nextAnchor(id)))
}
