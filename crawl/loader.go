// Package crawl drives recursive extraction of wiki pages: it walks a
// page's table of contents, turns every section into a record, and follows
// sections that defer to another page up to a hop limit.
package crawl

import (
	"context"
	"errors"
	"iter"
	"net/url"
	"slices"
	"sync"
	"time"

	"github.com/fwojciec/wikidoc"
	"golang.org/x/sync/errgroup"
)

// Sizing of the seen set used when Dedupe is enabled.
const (
	seenExpectedURLs      = 10000
	seenFalsePositiveRate = 0.01
)

// Loader crawls a root page and the pages its sections defer to.
type Loader struct {
	Fetcher wikidoc.Fetcher
	Parser  wikidoc.PageParser

	// MaxHop bounds recursion. Sections deferring to another page are
	// expanded only while the current page's hop is below MaxHop.
	MaxHop int

	// RateLimiter, if set, is waited on before every fetch.
	RateLimiter wikidoc.DomainLimiter

	// Concurrency is the number of sibling sections of a page processed at
	// once by Load. Values below 2 mean sequential processing. Stream is
	// always sequential.
	Concurrency int

	// Dedupe expands every target page at most once per crawl. Later
	// sections deferring to an already expanded page get the deferred
	// placeholder instead. Dedupe makes Load sequential, so the expanded
	// copy is always the first one in document order.
	Dedupe bool

	// Progress, if set, receives page start and finish events.
	Progress ProgressFunc
}

// ProgressEvent reports progress during a crawl.
type ProgressEvent struct {
	Type    ProgressType
	URL     string
	Title   string
	Hop     int
	MaxHop  int
	TOC     *wikidoc.TOC
	Elapsed time.Duration
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressPageStarted ProgressType = iota
	ProgressPageFinished
)

// ProgressFunc is a callback for reporting crawl progress.
// Calls are serialized even when Load runs sections concurrently.
type ProgressFunc func(event ProgressEvent)

// errStopped signals that a Stream consumer stopped iterating.
var errStopped = errors.New("stream stopped")

// emitFunc receives records in output order.
type emitFunc func(rec *wikidoc.Record) error

// Load crawls rootURL and returns every record in depth-first document
// order. Returns ENOTFOUND if the root page has no table of contents.
func (l *Loader) Load(ctx context.Context, rootURL string) ([]*wikidoc.Record, error) {
	concurrency := max(l.Concurrency, 1)
	if l.Dedupe {
		concurrency = 1
	}

	var recs []*wikidoc.Record
	err := l.run(ctx, rootURL, concurrency, func(rec *wikidoc.Record) error {
		rec.Position = len(recs)
		recs = append(recs, rec)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return recs, nil
}

// Stream crawls rootURL sequentially, yielding each record as soon as it
// is produced. A failure is yielded once as the final element.
func (l *Loader) Stream(ctx context.Context, rootURL string) iter.Seq2[*wikidoc.Record, error] {
	return func(yield func(*wikidoc.Record, error) bool) {
		pos := 0
		err := l.run(ctx, rootURL, 1, func(rec *wikidoc.Record) error {
			rec.Position = pos
			pos++
			if !yield(rec, nil) {
				return errStopped
			}
			return nil
		})
		if err != nil && !errors.Is(err, errStopped) {
			yield(nil, err)
		}
	}
}

// crawlState is shared by every page of one crawl.
type crawlState struct {
	seen *SeenSet // nil unless deduplicating

	mu       sync.Mutex
	progress ProgressFunc
}

func (s *crawlState) report(e ProgressEvent) {
	if s.progress == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress(e)
}

// visit describes how a page was reached.
type visit struct {
	base   string
	hop    int
	parent *wikidoc.RecordMetadata // metadata of the deferring section, nil at the root
	branch []string                // pages from the root down to this one
}

func (v visit) descend(pageURL string, parent wikidoc.RecordMetadata) visit {
	return visit{
		base:   v.base,
		hop:    v.hop + 1,
		parent: &parent,
		branch: append(slices.Clone(v.branch), pageKey(pageURL)),
	}
}

func (v visit) onBranch(pageURL string) bool {
	return slices.Contains(v.branch, pageKey(pageURL))
}

func (l *Loader) run(ctx context.Context, rootURL string, concurrency int, emit emitFunc) error {
	st := &crawlState{progress: l.Progress}
	if l.Dedupe {
		st.seen = NewSeenSet(seenExpectedURLs, seenFalsePositiveRate)
		st.seen.Claim(rootURL)
	}

	page, err := l.loadPage(ctx, rootURL)
	if err != nil {
		return err
	}

	v := visit{base: rootURL, branch: []string{pageKey(rootURL)}}
	return l.visitPage(ctx, st, page, v, concurrency, emit)
}

// loadPage fetches and parses a page.
func (l *Loader) loadPage(ctx context.Context, pageURL string) (wikidoc.Page, error) {
	if l.RateLimiter != nil {
		u, err := url.Parse(pageURL)
		if err != nil {
			return nil, wikidoc.Errorf(wikidoc.EINVALID, "invalid page URL %q: %v", pageURL, err)
		}
		if err := l.RateLimiter.Wait(ctx, u.Host); err != nil {
			return nil, err
		}
	}

	html, err := l.Fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	return l.Parser.Parse(pageURL, html)
}

// visitPage emits the records of every section of page in TOC order.
func (l *Loader) visitPage(ctx context.Context, st *crawlState, page wikidoc.Page, v visit, concurrency int, emit emitFunc) error {
	start := time.Now()
	st.report(ProgressEvent{
		Type:   ProgressPageStarted,
		URL:    page.URL(),
		Title:  page.Title(),
		Hop:    v.hop,
		MaxHop: l.MaxHop,
		TOC:    page.TOC(),
	})

	sections := page.TOC().Sections()
	if concurrency < 2 {
		for _, s := range sections {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := l.visitSection(ctx, st, page, s, v, concurrency, emit); err != nil {
				return err
			}
		}
	} else {
		// Sections run in parallel into their own slots, then are emitted
		// in TOC order.
		slots := make([][]*wikidoc.Record, len(sections))
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(concurrency)
		for i, s := range sections {
			g.Go(func() error {
				return l.visitSection(gctx, st, page, s, v, concurrency, func(rec *wikidoc.Record) error {
					slots[i] = append(slots[i], rec)
					return nil
				})
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
		for _, slot := range slots {
			for _, rec := range slot {
				if err := emit(rec); err != nil {
					return err
				}
			}
		}
	}

	st.report(ProgressEvent{
		Type:    ProgressPageFinished,
		URL:     page.URL(),
		Title:   page.Title(),
		Hop:     v.hop,
		MaxHop:  l.MaxHop,
		Elapsed: time.Since(start),
	})
	return nil
}

// visitSection emits the records for one section: a single record, or the
// records of the page it defers to.
func (l *Loader) visitSection(ctx context.Context, st *crawlState, page wikidoc.Page, s wikidoc.Section, v visit, concurrency int, emit emitFunc) error {
	if s.ID == wikidoc.FootnoteSectionID && !s.Anchored {
		return nil
	}

	content, err := page.Content(ctx, s.ID)
	if err != nil {
		return err
	}

	meta := metadata(page, s, v)
	if content.Kind != wikidoc.ContentDeferred {
		return emit(newRecord(content.String(), meta))
	}

	target := content.Target
	if v.hop >= l.MaxHop || v.onBranch(target) || (st.seen != nil && !st.seen.Claim(target)) {
		return emit(newRecord(content.String(), meta))
	}

	// A target that does not exist (fetch ENOTFOUND) and one without a
	// table of contents (parse ENOTFOUND) are both unavailable pages.
	child, err := l.loadPage(ctx, target)
	if wikidoc.ErrorCode(err) == wikidoc.ENOTFOUND {
		return emit(newRecord("", meta))
	} else if err != nil {
		return err
	}
	return l.visitPage(ctx, st, child, v.descend(target, meta), concurrency, emit)
}

// metadata locates section s of page within the crawl.
func metadata(page wikidoc.Page, s wikidoc.Section, v visit) wikidoc.RecordMetadata {
	toc := page.TOC()
	meta := wikidoc.RecordMetadata{
		PageTopic:       page.Title(),
		BaseURL:         v.base,
		CurrentURL:      page.URL(),
		Hop:             v.hop,
		AbsTOCPath:      toc.Path(s.Numbering),
		Index:           s.Numbering,
		TOCItem:         s.Title,
		AncestorTOCItem: toc.Ancestors(s.Numbering),
	}
	if p := v.parent; p != nil {
		meta.ParentURL = p.CurrentURL
		meta.ParentIndex = p.Index
		meta.ParentTOCItem = p.TOCItem
		meta.AbsTOCPath = p.AbsTOCPath + "//" + meta.AbsTOCPath
	}
	return meta
}

func newRecord(content string, meta wikidoc.RecordMetadata) *wikidoc.Record {
	return &wikidoc.Record{
		Content:     content,
		ContentHash: ComputeHash(content),
		Metadata:    meta,
	}
}

// pageKey returns the URL with its fragment removed.
func pageKey(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	u.Fragment = ""
	u.RawFragment = ""
	return u.String()
}
