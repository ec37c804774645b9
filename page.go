package wikidoc

import "context"

// Page is one fetched and parsed wiki page.
type Page interface {
	// URL returns the URL the page was fetched from.
	URL() string

	// Title returns the page topic.
	Title() string

	// TOC returns the page's sections in document order, including the
	// profile and footnote pseudo-sections.
	TOC() *TOC

	// Content extracts the body of the section with the given ID.
	// Returns ENOTFOUND if the ID is not part of the TOC.
	// Errors from the Tabulator are returned unchanged.
	Content(ctx context.Context, id string) (*Content, error)
}

// PageParser builds a Page from raw page markup.
type PageParser interface {
	// Parse parses html fetched from pageURL.
	// Returns ENOTFOUND if the page has no table of contents.
	Parse(pageURL, html string) (Page, error)
}
