package wikidoc

import "strings"

// Placeholder content for sections that produce no text of their own.
const (
	// EmptyContentPlaceholder is rendered for sections with no description,
	// usually because the content lives in subsections or a subpage.
	EmptyContentPlaceholder = "해당 섹션에 대한 설명이 없거나 하위 문서로 대체됩니다."

	// DeferredContentPrefix precedes the target URL of a deferred link that
	// was not expanded because the hop budget was exhausted.
	DeferredContentPrefix = "다음 문서로 대체 설명: "
)

// ContentKind discriminates the shapes of extracted section content.
type ContentKind int

const (
	ContentEmpty ContentKind = iota
	ContentText
	ContentDeferred
)

// String returns the kind's name.
func (k ContentKind) String() string {
	switch k {
	case ContentText:
		return "text"
	case ContentDeferred:
		return "deferred"
	default:
		return "empty"
	}
}

// Content is the extracted body of one section.
type Content struct {
	Kind ContentKind

	// Fragments holds the text blocks of a ContentText body in block order.
	Fragments []string

	// Target is the absolute URL of the page a ContentDeferred body points to.
	Target string
}

// EmptyContent returns a ContentEmpty body.
func EmptyContent() *Content {
	return &Content{Kind: ContentEmpty}
}

// TextContent returns a ContentText body with the given fragments.
func TextContent(fragments ...string) *Content {
	return &Content{Kind: ContentText, Fragments: fragments}
}

// DeferredContent returns a ContentDeferred body pointing at target.
func DeferredContent(target string) *Content {
	return &Content{Kind: ContentDeferred, Target: target}
}

// String renders the content as record text. Deferred content renders as
// the unexpanded placeholder.
func (c *Content) String() string {
	switch c.Kind {
	case ContentText:
		return strings.Join(c.Fragments, " ")
	case ContentDeferred:
		return DeferredContentPrefix + c.Target
	default:
		return EmptyContentPlaceholder
	}
}
