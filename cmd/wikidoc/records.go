package main

import (
	"fmt"

	"github.com/fwojciec/wikidoc"
	"github.com/fwojciec/wikidoc/crawl"
	"github.com/fwojciec/wikidoc/fs"
)

// Run executes the records command.
func (c *RecordsCmd) Run(deps *Dependencies) error {
	crawls, err := deps.Crawls.FindCrawls(deps.Ctx, wikidoc.CrawlFilter{Name: &c.Name})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", wikidoc.ErrorMessage(err))
		return err
	}

	if len(crawls) == 0 {
		fmt.Fprintf(deps.Stderr, "error: crawl %q not found. Use 'wikidoc list' to see available crawls.\n", c.Name)
		return wikidoc.Errorf(wikidoc.ENOTFOUND, "crawl %q not found", c.Name)
	}

	filter := wikidoc.RecordFilter{CrawlID: &crawls[0].ID}
	if c.Hop >= 0 {
		filter.Hop = &c.Hop
	}

	recs, err := deps.Records.FindRecords(deps.Ctx, filter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", wikidoc.ErrorMessage(err))
		return err
	}

	if len(recs) == 0 {
		fmt.Fprintf(deps.Stderr, "error: crawl %q has no records\n", c.Name)
		return wikidoc.Errorf(wikidoc.ENOTFOUND, "crawl %q has no records", c.Name)
	}

	switch {
	case c.JSON:
		w := fs.NewWriter(deps.Stdout)
		for _, rec := range recs {
			if err := w.CreateRecord(deps.Ctx, rec); err != nil {
				return err
			}
		}
	case c.Full:
		fmt.Fprintln(deps.Stdout, wikidoc.FormatRecords(recs))
	default:
		fmt.Fprintf(deps.Stdout, "Records for %s (%d total):\n\n", c.Name, len(recs))
		for _, rec := range recs {
			m := rec.Metadata
			fmt.Fprintf(deps.Stdout, "  %d. [hop %d] %s  (%s)\n     %s\n",
				rec.Position+1, m.Hop, m.AbsTOCPath, crawl.FormatBytes(len(rec.Content)), crawl.TruncateURL(m.CurrentURL, 80))
		}
	}

	return nil
}
