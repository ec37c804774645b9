package wikidoc_test

import (
	"testing"

	"github.com/fwojciec/wikidoc"
	"github.com/stretchr/testify/assert"
)

func TestFormatRecords(t *testing.T) {
	t.Parallel()

	t.Run("formats single record with TOC path", func(t *testing.T) {
		t.Parallel()

		recs := []*wikidoc.Record{
			{Content: "Welcome.", Metadata: wikidoc.RecordMetadata{AbsTOCPath: "개요"}},
		}

		assert.Equal(t, "## 개요\nWelcome.", wikidoc.FormatRecords(recs))
	})

	t.Run("uses page URL when TOC path is empty", func(t *testing.T) {
		t.Parallel()

		recs := []*wikidoc.Record{
			{Content: "Some content.", Metadata: wikidoc.RecordMetadata{CurrentURL: "https://namu.wiki/w/A"}},
		}

		assert.Equal(t, "## https://namu.wiki/w/A\nSome content.", wikidoc.FormatRecords(recs))
	})

	t.Run("separates records with blank line", func(t *testing.T) {
		t.Parallel()

		recs := []*wikidoc.Record{
			{Content: "First.", Metadata: wikidoc.RecordMetadata{AbsTOCPath: "A"}},
			{Content: "Second.", Metadata: wikidoc.RecordMetadata{AbsTOCPath: "A/B"}},
		}

		assert.Equal(t, "## A\nFirst.\n\n## A/B\nSecond.", wikidoc.FormatRecords(recs))
	})

	t.Run("returns empty string for no records", func(t *testing.T) {
		t.Parallel()

		assert.Empty(t, wikidoc.FormatRecords(nil))
	})
}

func TestFormatTOC(t *testing.T) {
	t.Parallel()

	toc := wikidoc.NewTOC()
	toc.Add(wikidoc.Section{ID: wikidoc.ProfileSectionID, Numbering: "0.", Title: "PROFILE"})
	toc.Add(wikidoc.Section{ID: "s-1", Numbering: "1.", Title: "개요"})
	toc.Add(wikidoc.Section{ID: "s-1.1", Numbering: "1.1.", Title: "배경"})
	toc.Add(wikidoc.Section{ID: "s-1.1.1", Numbering: "1.1.1.", Title: "세부"})
	toc.Add(wikidoc.Section{ID: wikidoc.FootnoteSectionID, Numbering: "EOD.", Title: "FOOTNOTES"})

	expected := "0. PROFILE\n1. 개요\n\t1.1. 배경\n\t\t1.1.1. 세부\nEOD. FOOTNOTES\n"
	assert.Equal(t, expected, wikidoc.FormatTOC(toc))
}
