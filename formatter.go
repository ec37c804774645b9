package wikidoc

import (
	"strings"
)

// FormatRecords formats records for display.
// Uses the absolute TOC path as header, falling back to the page URL.
// Records are separated by blank lines.
func FormatRecords(recs []*Record) string {
	if len(recs) == 0 {
		return ""
	}

	parts := make([]string, 0, len(recs))
	for _, rec := range recs {
		header := rec.Metadata.AbsTOCPath
		if header == "" {
			header = rec.Metadata.CurrentURL
		}
		parts = append(parts, "## "+header+"\n"+rec.Content)
	}

	return strings.Join(parts, "\n\n")
}

// FormatTOC renders a TOC one section per line, indented with tabs by depth.
func FormatTOC(toc *TOC) string {
	var b strings.Builder
	for _, s := range toc.Sections() {
		if n := strings.Count(s.Numbering, "."); n > 1 {
			b.WriteString(strings.Repeat("\t", n-1))
		}
		b.WriteString(s.Numbering)
		b.WriteString(" ")
		b.WriteString(s.Title)
		b.WriteString("\n")
	}
	return b.String()
}
