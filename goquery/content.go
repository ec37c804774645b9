package goquery

import (
	"context"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/wikidoc"
	"golang.org/x/net/html"
)

// Selectors for section content blocks.
const (
	paragraphSelector    = "div.wiki-paragraph"
	tableSelector        = "table.wiki-table"
	foldingSelector      = "dl.wiki-folding"
	detailIconSelector   = `img[alt="상세 내용 아이콘"]`
	internalLinkSelector = "a.wiki-link-internal[href]"
	footnoteListSelector = "span.footnote-list"
)

// nextAnchor returns the start node of the first anchored section after id,
// or nil if id is the last anchored section.
func (p *Page) nextAnchor(id string) *html.Node {
	for {
		next, ok := p.outline.toc.Next(id)
		if !ok {
			return nil
		}
		if n, ok := p.outline.anchors[next.ID]; ok {
			return n
		}
		id = next.ID
	}
}

// sectionContent classifies the blocks in a section's range. Checks run in
// priority order: empty, deferred link, then text.
func (p *Page) sectionContent(ctx context.Context, rng *goquery.Selection) (*wikidoc.Content, error) {
	blocks := contentBlocks(rng)
	if len(blocks) == 0 || (len(blocks) == 1 && strings.TrimSpace(blocks[0].Text()) == "") {
		return wikidoc.EmptyContent(), nil
	}

	if target, ok := p.deferredTarget(blocks[0]); ok {
		return wikidoc.DeferredContent(target), nil
	}

	var fragments []string
	for _, b := range blocks {
		var text string
		switch {
		case b.Is(tableSelector):
			t, err := p.tableText(ctx, b)
			if err != nil {
				return nil, err
			}
			text = t
		case isToggle(b):
			// Tables inside the toggle are blocks of their own.
			continue
		case b.Find(tableSelector).Length() > 0:
			var parts []string
			for _, t := range outermostTables(b) {
				s, err := p.tableText(ctx, t)
				if err != nil {
					return nil, err
				}
				if s != "" {
					parts = append(parts, s)
				}
			}
			text = strings.Join(parts, " ")
		case hasFootnotes(b):
			text = stripFootnotes(b)
		default:
			text = normalizeSpace(b.Text())
		}
		if text != "" {
			fragments = append(fragments, text)
		}
	}

	if len(fragments) == 0 {
		return wikidoc.EmptyContent(), nil
	}
	return wikidoc.TextContent(fragments...), nil
}

// contentBlocks picks the content blocks of a range in document order:
// outermost wiki tables and paragraphs outside of tables. A chosen block
// hides its descendants, except toggle wrappers, whose inner tables and
// paragraphs are picked up on their own.
func contentBlocks(rng *goquery.Selection) []*goquery.Selection {
	var blocks []*goquery.Selection
	claimed := make(map[*html.Node]bool)

	rng.Each(func(_ int, s *goquery.Selection) {
		n := s.Get(0)
		if isClaimed(n, claimed) {
			return
		}
		switch {
		case s.Is(tableSelector):
			if s.ParentsFiltered(tableSelector).Length() > 0 {
				return
			}
			blocks = append(blocks, s)
			claimed[n] = true
		case s.Is(paragraphSelector):
			if s.ParentsFiltered("table").Length() > 0 {
				return
			}
			blocks = append(blocks, s)
			if !isToggle(s) {
				claimed[n] = true
			}
		}
	})
	return blocks
}

func isClaimed(n *html.Node, claimed map[*html.Node]bool) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if claimed[p] {
			return true
		}
	}
	return false
}

// isToggle reports whether a block wraps a collapsible panel.
func isToggle(s *goquery.Selection) bool {
	return s.Find(foldingSelector).Length() > 0
}

// outermostTables returns the wiki tables in s that are not nested in
// another wiki table.
func outermostTables(s *goquery.Selection) []*goquery.Selection {
	var tables []*goquery.Selection
	s.Find(tableSelector).Each(func(_ int, t *goquery.Selection) {
		if t.ParentsUntilSelection(s).Filter(tableSelector).Length() == 0 {
			tables = append(tables, t)
		}
	})
	return tables
}

// deferredTarget returns the absolute URL of the page a block defers to.
// The block must carry the detail icon and an internal link.
func (p *Page) deferredTarget(b *goquery.Selection) (string, bool) {
	if b.Find(detailIconSelector).Length() == 0 {
		return "", false
	}
	href, ok := b.Find(internalLinkSelector).First().Attr("href")
	if !ok || href == "" {
		return "", false
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	return p.base.ResolveReference(ref).String(), true
}

// profileContent extracts the first table of the profile panel range, with
// collapsible sub-panels removed.
func (p *Page) profileContent(ctx context.Context, anchor *html.Node) (*wikidoc.Content, error) {
	table := p.idx.Between(anchor, p.outline.widget).Filter("table").First()
	if table.Length() == 0 {
		return wikidoc.EmptyContent(), nil
	}

	table = table.Clone()
	table.Find(foldingSelector).Remove()

	text, err := p.tableText(ctx, table)
	if err != nil {
		return nil, err
	}
	if text == "" {
		return wikidoc.EmptyContent(), nil
	}
	return wikidoc.TextContent(text), nil
}

// tableText normalizes a table and hands its grid to the tabulator.
// Without a tabulator the grid text is returned as is.
func (p *Page) tableText(ctx context.Context, table *goquery.Selection) (string, error) {
	grid := Rasterize(FlattenNested(Simplify(table, p.stopWords)))
	if len(grid) == 0 {
		return "", nil
	}
	text := FormatGrid(grid)
	if p.tabulator == nil {
		return text, nil
	}
	return p.tabulator.Tabulate(ctx, text)
}

// footnoteContent returns one fragment per footnote entry of the footnote
// block, or the block's text when it has no entries.
func footnoteContent(block *goquery.Selection) *wikidoc.Content {
	var fragments []string
	block.Find(footnoteListSelector).Each(func(_ int, s *goquery.Selection) {
		if text := normalizeSpace(s.Text()); text != "" {
			fragments = append(fragments, text)
		}
	})
	if len(fragments) == 0 {
		if text := normalizeSpace(block.Text()); text != "" {
			fragments = append(fragments, text)
		}
	}
	if len(fragments) == 0 {
		return wikidoc.EmptyContent()
	}
	return wikidoc.TextContent(fragments...)
}
