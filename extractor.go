package wikidoc

// TitleExtractor reads a page title from page metadata (meta tags,
// JSON+LD, <title>). Page parsers use it when the page itself does not
// name its topic.
type TitleExtractor interface {
	ExtractTitle(html string) (string, error)
}
