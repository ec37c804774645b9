package goquery

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

const footnoteMarkerSelector = "a.wiki-fn-content"

func hasFootnotes(s *goquery.Selection) bool {
	return s.Find(footnoteMarkerSelector).Length() > 0
}

// stripFootnotes returns the text of s with every footnote marker replaced
// by "(href; title)" at the point it annotates. The marker's own text
// ("[1]") is dropped.
func stripFootnotes(s *goquery.Selection) string {
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
			return
		case html.ElementNode:
			if n.Data == "a" && hasClass(n, "wiki-fn-content") {
				fmt.Fprintf(&b, "(%s; %s)", attr(n, "href"), attr(n, "title"))
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range s.Nodes {
		walk(n)
	}
	return normalizeSpace(b.String())
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// normalizeSpace collapses runs of whitespace into single spaces.
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
