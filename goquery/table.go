package goquery

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Simplify returns a cleaned copy of the first table in sel. Decorative
// inline wrappers and class-less divs are unwrapped, images are dropped,
// and rows whose text contains any of stopWords are removed. A row is
// matched on its own cells only; rows of tables nested in it are matched
// separately.
func Simplify(sel *goquery.Selection, stopWords []string) *goquery.Selection {
	t := sel.First().Clone()

	t.Find("img").Remove()
	t.Find("div, span, font").Each(func(_ int, s *goquery.Selection) {
		if goquery.NodeName(s) != "div" || !s.Is("[class]") {
			unwrapNode(s.Get(0))
		}
	})

	if len(stopWords) > 0 {
		t.Find("tr").Each(func(_ int, row *goquery.Selection) {
			text := rowText(row)
			for _, w := range stopWords {
				if w != "" && strings.Contains(text, w) {
					row.Remove()
					return
				}
			}
		})
	}

	return t
}

// rowText returns the text of row without the text of nested tables.
func rowText(row *goquery.Selection) string {
	own := row.Clone()
	own.Find("table").Remove()
	return own.Text()
}

// FlattenNested lifts tables hidden in collapsible wrappers (dl.wiki-folding)
// inside rows of the outer table into the outer table itself. For each
// wrapper, a single-cell row holding the wrapper's label is inserted
// followed by the sub-table's rows, at the position of the enclosing row,
// which is then removed. Only one level of nesting is handled.
//
// The table is modified in place and returned.
func FlattenNested(t *goquery.Selection) *goquery.Selection {
	if t.Length() == 0 {
		return t
	}
	outer := t.Get(0)

	type fold struct {
		label string
		sub   *html.Node
	}
	var order []*html.Node
	folds := make(map[*html.Node][]fold)

	t.Find("dl.wiki-folding").Each(func(_ int, dl *goquery.Selection) {
		sub := dl.Find("table").First()
		if sub.Length() == 0 {
			return
		}
		row := closest(dl.Get(0), atom.Tr)
		if row == nil || closest(row, atom.Table) != outer {
			return
		}
		if _, ok := folds[row]; !ok {
			order = append(order, row)
		}
		folds[row] = append(folds[row], fold{
			label: normalizeSpace(dl.ChildrenFiltered("dt").Text()),
			sub:   sub.Get(0),
		})
	})

	for _, row := range order {
		parent := row.Parent
		for _, f := range folds[row] {
			if f.label != "" {
				parent.InsertBefore(newRow(f.label), row)
			}
			for _, r := range ownRows(f.sub) {
				r.Parent.RemoveChild(r)
				parent.InsertBefore(r, row)
			}
		}
		parent.RemoveChild(row)
	}

	return t
}

// Rasterize converts a table into a grid of cell strings, one slice per
// row. A cell with rowspan=n is repeated in the same column of the next
// n-1 rows. Column spans are not expanded, so rows with merged columns are
// shorter than their neighbours. Rows with no text are dropped.
func Rasterize(t *goquery.Selection) [][]string {
	if t.Length() == 0 {
		return nil
	}

	type carry struct {
		value string
		left  int
	}
	carries := make(map[int]*carry)

	var grid [][]string
	for _, tr := range ownRows(t.Get(0)) {
		var row []string
		col := 0

		// Insert values carried down from cells above until the current
		// column is free.
		fill := func() {
			for {
				c, ok := carries[col]
				if !ok {
					return
				}
				row = append(row, c.value)
				if c.left--; c.left == 0 {
					delete(carries, col)
				}
				col++
			}
		}

		goquery.NewDocumentFromNode(tr).Selection.ChildrenFiltered("td, th").Each(func(_ int, cell *goquery.Selection) {
			fill()
			value := cellText(cell)
			row = append(row, value)
			if n := span(cell, "rowspan"); n > 1 {
				carries[col] = &carry{value: value, left: n - 1}
			}
			col++
		})
		fill()

		if !blankRow(row) {
			grid = append(grid, row)
		}
	}
	return grid
}

func blankRow(row []string) bool {
	for _, v := range row {
		if v != "" {
			return false
		}
	}
	return true
}

// FormatGrid renders a grid as comma-joined rows separated by blank lines.
func FormatGrid(grid [][]string) string {
	rows := make([]string, len(grid))
	for i, row := range grid {
		rows[i] = strings.Join(row, ",")
	}
	return strings.Join(rows, "\n\n")
}

// cellText returns the text of a table cell, with footnotes inlined.
func cellText(cell *goquery.Selection) string {
	if hasFootnotes(cell) {
		return stripFootnotes(cell)
	}
	return normalizeSpace(cell.Text())
}

func span(cell *goquery.Selection, attr string) int {
	n, err := strconv.Atoi(strings.TrimSpace(cell.AttrOr(attr, "1")))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// ownRows returns the rows belonging directly to table, skipping rows of
// tables nested inside its cells.
func ownRows(table *html.Node) []*html.Node {
	var rows []*html.Node
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.DataAtom {
			case atom.Tr:
				rows = append(rows, c)
			case atom.Table:
				// nested table
			default:
				walk(c)
			}
		}
	}
	walk(table)
	return rows
}

// closest returns the nearest ancestor of n with the given tag.
func closest(n *html.Node, tag atom.Atom) *html.Node {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode && p.DataAtom == tag {
			return p
		}
	}
	return nil
}

func newRow(label string) *html.Node {
	tr := &html.Node{Type: html.ElementNode, Data: "tr", DataAtom: atom.Tr}
	td := &html.Node{Type: html.ElementNode, Data: "td", DataAtom: atom.Td}
	td.AppendChild(&html.Node{Type: html.TextNode, Data: label})
	tr.AppendChild(td)
	return tr
}

// unwrapNode replaces n with its children.
func unwrapNode(n *html.Node) {
	parent := n.Parent
	if parent == nil {
		return
	}
	for c := n.FirstChild; c != nil; c = n.FirstChild {
		n.RemoveChild(c)
		parent.InsertBefore(c, n)
	}
	parent.RemoveChild(n)
}
