package main

import (
	"fmt"
	"iter"
	"net/url"
	"path"
	"time"

	"github.com/fwojciec/wikidoc"
	"github.com/fwojciec/wikidoc/crawl"
	"github.com/fwojciec/wikidoc/fs"
	"github.com/fwojciec/wikidoc/gemini"
)

// Run executes the load command.
func (c *LoadCmd) Run(deps *Dependencies) error {
	if c.MaxHop < 0 {
		fmt.Fprintln(deps.Stderr, "error: --max-hop must not be negative")
		return wikidoc.Errorf(wikidoc.EINVALID, "max hop must not be negative")
	}

	rootURL, err := c.rootURL(deps)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", wikidoc.ErrorMessage(err))
		return err
	}

	name := c.Name
	if name == "" {
		name = pageName(rootURL)
	}

	if c.Force {
		if err := deleteCrawlByName(deps, name); err != nil && wikidoc.ErrorCode(err) != wikidoc.ENOTFOUND {
			fmt.Fprintf(deps.Stderr, "error: %s\n", wikidoc.ErrorMessage(err))
			return err
		}
	}

	cr := &wikidoc.Crawl{
		Name:    name,
		RootURL: rootURL,
		Query:   c.Query,
		MaxHop:  c.MaxHop,
	}
	if err := deps.Crawls.CreateCrawl(deps.Ctx, cr); err != nil {
		if wikidoc.ErrorCode(err) == wikidoc.ECONFLICT {
			fmt.Fprintf(deps.Stderr, "error: crawl %q already exists. Use --force to replace it or --name to pick another name.\n", name)
		} else {
			fmt.Fprintf(deps.Stderr, "error: %s\n", wikidoc.ErrorMessage(err))
		}
		return err
	}

	fmt.Fprintf(deps.Stdout, "Loading %q from %s\n", name, rootURL)

	writers := []wikidoc.RecordWriter{deps.Records}
	if c.JSONL != "" {
		w, err := fs.Create(c.JSONL)
		if err != nil {
			_ = deps.Crawls.DeleteCrawl(deps.Ctx, cr.ID)
			fmt.Fprintf(deps.Stderr, "error: %v\n", err)
			return err
		}
		defer w.Close()
		writers = append(writers, w)
	}

	start := time.Now()
	recs, err := c.store(deps, cr, writers)
	if err != nil {
		// Don't leave a partial crawl behind.
		_ = deps.Crawls.DeleteCrawl(deps.Ctx, cr.ID)
		if wikidoc.ErrorCode(err) == wikidoc.ENOTFOUND {
			fmt.Fprintf(deps.Stderr, "error: %s. Is this a wiki page with a table of contents?\n", wikidoc.ErrorMessage(err))
		} else {
			fmt.Fprintf(deps.Stderr, "error loading: %v\n", err)
		}
		return err
	}

	var bytes int
	for _, rec := range recs {
		bytes += len(rec.Content)
	}
	summary := fmt.Sprintf("  Saved %d records (%s", len(recs), crawl.FormatBytes(bytes))
	if deps.TokenCounter != nil {
		if tokens, err := gemini.CountRecords(deps.Ctx, deps.TokenCounter, recs); err == nil {
			summary += ", " + crawl.FormatTokens(tokens)
		}
	}
	fmt.Fprintf(deps.Stdout, "%s) in %s\n", summary, crawl.FormatElapsed(time.Since(start)))

	return nil
}

// rootURL returns the URL argument or resolves the query.
func (c *LoadCmd) rootURL(deps *Dependencies) (string, error) {
	if c.URL != "" {
		return c.URL, nil
	}
	if c.Query == "" {
		return "", wikidoc.Errorf(wikidoc.EINVALID, "a page URL or --query is required")
	}
	if deps.Resolver == nil {
		return "", wikidoc.Errorf(wikidoc.EINVALID, "--query requires GOOGLE_API_KEY and GOOGLE_CSE_ID")
	}
	return deps.Resolver.Resolve(deps.Ctx, c.Query)
}

// store crawls the root page and writes every record as it is produced.
func (c *LoadCmd) store(deps *Dependencies, cr *wikidoc.Crawl, writers []wikidoc.RecordWriter) ([]*wikidoc.Record, error) {
	loader := &crawl.Loader{
		Fetcher:     deps.Fetcher,
		Parser:      deps.Parser,
		MaxHop:      c.MaxHop,
		RateLimiter: deps.RateLimiter,
		Concurrency: c.Concurrency,
		Dedupe:      c.Dedupe,
	}
	if deps.Verbose {
		loader.Progress = func(e crawl.ProgressEvent) {
			if e.Type == crawl.ProgressPageStarted && e.Hop == 0 && e.TOC != nil {
				fmt.Fprint(deps.Stdout, wikidoc.FormatTOC(e.TOC))
			}
			fmt.Fprintln(deps.Stdout, crawl.FormatProgress(e))
		}
	}

	var seq iter.Seq2[*wikidoc.Record, error]
	if c.Concurrency > 1 {
		// Load keeps document order across concurrent sections, so records
		// are written once the whole crawl is done.
		seq = func(yield func(*wikidoc.Record, error) bool) {
			recs, err := loader.Load(deps.Ctx, cr.RootURL)
			if err != nil {
				yield(nil, err)
				return
			}
			for _, rec := range recs {
				if !yield(rec, nil) {
					return
				}
			}
		}
	} else {
		seq = loader.Stream(deps.Ctx, cr.RootURL)
	}

	var recs []*wikidoc.Record
	for rec, err := range seq {
		if err != nil {
			return nil, err
		}
		rec.CrawlID = cr.ID
		for _, w := range writers {
			if err := w.CreateRecord(deps.Ctx, rec); err != nil {
				return nil, err
			}
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// pageName returns the unescaped last path segment of a page URL.
func pageName(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Path == "" || u.Path == "/" {
		return rawURL
	}
	return path.Base(u.Path)
}

// deleteCrawlByName deletes the crawl called name.
// Returns ENOTFOUND if there is none.
func deleteCrawlByName(deps *Dependencies, name string) error {
	crawls, err := deps.Crawls.FindCrawls(deps.Ctx, wikidoc.CrawlFilter{Name: &name})
	if err != nil {
		return err
	}
	if len(crawls) == 0 {
		return wikidoc.Errorf(wikidoc.ENOTFOUND, "crawl %q not found", name)
	}
	return deps.Crawls.DeleteCrawl(deps.Ctx, crawls[0].ID)
}
