package goquery

import (
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Index assigns every node of a parsed document a pre-order position so
// that "the nodes between two anchors" can be answered by comparing
// positions instead of searching serialized markup.
type Index struct {
	doc   *goquery.Document
	nodes []*html.Node
	pos   map[*html.Node]int
}

// NewIndex builds an Index over doc.
func NewIndex(doc *goquery.Document) *Index {
	idx := &Index{
		doc: doc,
		pos: make(map[*html.Node]int),
	}
	for _, root := range doc.Nodes {
		idx.walk(root)
	}
	return idx
}

func (idx *Index) walk(n *html.Node) {
	idx.pos[n] = len(idx.nodes)
	idx.nodes = append(idx.nodes, n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		idx.walk(c)
	}
}

// Position returns the pre-order position of n.
// The bool is false if n is not part of the indexed document.
func (idx *Index) Position(n *html.Node) (int, bool) {
	p, ok := idx.pos[n]
	return p, ok
}

// Len returns the number of indexed nodes.
func (idx *Index) Len() int {
	return len(idx.nodes)
}

// Before reports whether a precedes b in document order.
func (idx *Index) Before(a, b *html.Node) bool {
	pa, okA := idx.pos[a]
	pb, okB := idx.pos[b]
	return okA && okB && pa < pb
}

// Between returns the element nodes positioned in [start, end) in document
// order. A nil end means the end of the document. An end positioned before
// start, or a start that is not indexed, yields an empty selection.
func (idx *Index) Between(start, end *html.Node) *goquery.Selection {
	from, ok := idx.pos[start]
	if !ok {
		return idx.doc.Selection.Slice(0, 0)
	}
	to := len(idx.nodes)
	if end != nil {
		if p, ok := idx.pos[end]; ok {
			to = max(p, from)
		}
	}

	var nodes []*html.Node
	for _, n := range idx.nodes[from:to] {
		if n.Type == html.ElementNode {
			nodes = append(nodes, n)
		}
	}
	return idx.doc.Selection.Slice(0, 0).AddNodes(nodes...)
}

// Select returns a selection holding just n.
func (idx *Index) Select(n *html.Node) *goquery.Selection {
	return idx.doc.Selection.Slice(0, 0).AddNodes(n)
}
