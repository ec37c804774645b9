package wikidoc

import (
	"regexp"
	"strings"
)

// Reserved identifiers for the synthesized pseudo-sections.
const (
	ProfileSectionID  = "s-p"
	FootnoteSectionID = "s-f"

	ProfileNumbering  = "0."
	FootnoteNumbering = "EOD."

	ProfileTitle  = "PROFILE"
	FootnoteTitle = "FOOTNOTES"
)

// numberingRe matches a leading dotted numbering such as "2.3.1.".
var numberingRe = regexp.MustCompile(`^(\d+\.)+`)

// Section represents one entry of a page's table of contents.
type Section struct {
	ID        string `json:"id"`
	Numbering string `json:"numbering"`
	Title     string `json:"title"`

	// Anchored is false when the section has no node in the page body,
	// e.g. the footnote pseudo-section on a page without footnotes.
	Anchored bool `json:"anchored"`
}

// Depth returns the number of ancestor levels implied by the numbering.
// "2.3.1." has depth 2; pseudo-sections have depth 0.
func (s Section) Depth() int {
	n := strings.TrimSuffix(s.Numbering, ".")
	if n == "" || !numberingRe.MatchString(s.Numbering) {
		return 0
	}
	return strings.Count(n, ".")
}

// ParseNumbering splits a TOC line such as "2.3. Foo" into its numbering
// ("2.3.") and trimmed title ("Foo"). ok is false if the line has no
// numbering prefix.
func ParseNumbering(line string) (numbering, title string, ok bool) {
	line = strings.TrimSpace(line)
	numbering = numberingRe.FindString(line)
	if numbering == "" {
		return "", "", false
	}
	return numbering, strings.TrimSpace(line[len(numbering):]), true
}

// TOC is an insertion-ordered mapping of section IDs to sections.
// Iteration order is document order.
type TOC struct {
	sections    []Section
	byID        map[string]int
	byNumbering map[string]int
}

// NewTOC returns an empty TOC.
func NewTOC() *TOC {
	return &TOC{
		byID:        make(map[string]int),
		byNumbering: make(map[string]int),
	}
}

// Add appends a section. A section whose ID is already present replaces the
// existing entry in place, keeping its original position.
func (t *TOC) Add(s Section) {
	if i, ok := t.byID[s.ID]; ok {
		delete(t.byNumbering, t.sections[i].Numbering)
		t.sections[i] = s
		t.byNumbering[s.Numbering] = i
		return
	}
	t.byID[s.ID] = len(t.sections)
	if _, ok := t.byNumbering[s.Numbering]; !ok {
		t.byNumbering[s.Numbering] = len(t.sections)
	}
	t.sections = append(t.sections, s)
}

// Len returns the number of sections.
func (t *TOC) Len() int {
	return len(t.sections)
}

// Sections returns a copy of the sections in document order.
func (t *TOC) Sections() []Section {
	out := make([]Section, len(t.sections))
	copy(out, t.sections)
	return out
}

// Section returns the section with the given ID.
func (t *TOC) Section(id string) (Section, bool) {
	i, ok := t.byID[id]
	if !ok {
		return Section{}, false
	}
	return t.sections[i], true
}

// SectionByNumbering returns the section with the given numbering.
// A missing trailing dot is tolerated.
func (t *TOC) SectionByNumbering(numbering string) (Section, bool) {
	if !strings.HasSuffix(numbering, ".") {
		numbering += "."
	}
	i, ok := t.byNumbering[numbering]
	if !ok {
		return Section{}, false
	}
	return t.sections[i], true
}

// Next returns the section following id in document order.
func (t *TOC) Next(id string) (Section, bool) {
	i, ok := t.byID[id]
	if !ok || i+1 >= len(t.sections) {
		return Section{}, false
	}
	return t.sections[i+1], true
}

// Ancestors returns the "/"-joined titles of the ancestors of the section
// with the given numbering, outermost first. "2.3.1." yields
// "<title of 2.>/<title of 2.3.>"; top-level sections yield "".
//
// If an ancestor numbering is missing from the TOC the climb is abandoned
// and the section's own title is returned instead.
func (t *TOC) Ancestors(numbering string) string {
	titles, ok := t.climb(numbering)
	if !ok {
		return t.ownTitle(numbering)
	}
	return strings.Join(titles, "/")
}

// Path returns the section's ancestors followed by its own title, joined
// with "/". Degraded ancestry yields just the section's title.
func (t *TOC) Path(numbering string) string {
	own := t.ownTitle(numbering)
	titles, ok := t.climb(numbering)
	if !ok || len(titles) == 0 {
		return own
	}
	return strings.Join(titles, "/") + "/" + own
}

func (t *TOC) ownTitle(numbering string) string {
	s, _ := t.SectionByNumbering(numbering)
	return s.Title
}

// climb walks from numbering towards the root one dot-group at a time.
func (t *TOC) climb(numbering string) ([]string, bool) {
	cur := strings.TrimSuffix(numbering, ".")
	depth := Section{Numbering: numbering}.Depth()

	titles := make([]string, 0, depth)
	for range depth {
		i := strings.LastIndex(cur, ".")
		if i < 0 {
			return nil, false
		}
		parent, ok := t.SectionByNumbering(cur[:i])
		if !ok {
			return nil, false
		}
		titles = append([]string{parent.Title}, titles...)
		cur = strings.TrimSuffix(parent.Numbering, ".")
	}
	return titles, true
}
