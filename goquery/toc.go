package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/wikidoc"
	"golang.org/x/net/html"
)

// Selectors for the wiki page furniture the TOC builder relies on.
const (
	tocWidgetSelector = "div.wiki-macro-toc"
	tocItemSelector   = "span.toc-item"
	profileSelector   = "div.wiki-table-wrap.table-right"
	footnoteSelector  = "div.wiki-macro-footnote"
)

// outline is the result of reading a page's table of contents.
type outline struct {
	toc     *wikidoc.TOC
	anchors map[string]*html.Node // section ID -> start node
	widget  *html.Node            // the TOC widget itself
}

// buildTOC reads the TOC widget of doc. The bool is false if the page has
// no TOC widget.
//
// The profile pseudo-section comes first when the page has a profile panel
// ahead of the TOC, and the footnote pseudo-section always comes last.
func buildTOC(doc *goquery.Document, idx *Index) (*outline, bool) {
	widget := doc.Find(tocWidgetSelector).First()
	if widget.Length() == 0 {
		return nil, false
	}

	o := &outline{
		toc:     wikidoc.NewTOC(),
		anchors: make(map[string]*html.Node),
		widget:  widget.Get(0),
	}

	if panel := profilePanel(doc, idx, o.widget); panel != nil {
		o.add(wikidoc.Section{
			ID:        wikidoc.ProfileSectionID,
			Numbering: wikidoc.ProfileNumbering,
			Title:     wikidoc.ProfileTitle,
		}, panel)
	}

	ids := anchorIDs(doc)
	widget.Find(tocItemSelector).Each(func(_ int, item *goquery.Selection) {
		href, ok := item.Find("a[href]").First().Attr("href")
		if !ok {
			return
		}
		id := strings.TrimPrefix(href, "#")
		if id == "" || id == wikidoc.ProfileSectionID || id == wikidoc.FootnoteSectionID {
			return
		}
		numbering, title, ok := wikidoc.ParseNumbering(item.Text())
		if !ok {
			return
		}
		o.add(wikidoc.Section{ID: id, Numbering: numbering, Title: title}, ids[id])
	})

	footnotes := doc.Find(footnoteSelector).First()
	var fn *html.Node
	if footnotes.Length() > 0 {
		fn = footnotes.Get(0)
	}
	o.add(wikidoc.Section{
		ID:        wikidoc.FootnoteSectionID,
		Numbering: wikidoc.FootnoteNumbering,
		Title:     wikidoc.FootnoteTitle,
	}, fn)

	return o, true
}

func (o *outline) add(s wikidoc.Section, anchor *html.Node) {
	s.Anchored = anchor != nil
	if anchor != nil {
		o.anchors[s.ID] = anchor
	}
	o.toc.Add(s)
}

// profilePanel returns the last profile panel positioned before the TOC
// widget, or nil.
func profilePanel(doc *goquery.Document, idx *Index, widget *html.Node) *html.Node {
	var panel *html.Node
	doc.Find(profileSelector).Each(func(_ int, s *goquery.Selection) {
		if n := s.Get(0); idx.Before(n, widget) {
			panel = n
		}
	})
	return panel
}

// anchorIDs maps heading anchor IDs to their nodes. Section IDs contain
// dots, which makes them awkward to select with "#id".
func anchorIDs(doc *goquery.Document) map[string]*html.Node {
	ids := make(map[string]*html.Node)
	doc.Find("a[id]").Each(func(_ int, s *goquery.Selection) {
		id, _ := s.Attr("id")
		if _, ok := ids[id]; !ok {
			ids[id] = s.Get(0)
		}
	})
	return ids
}
