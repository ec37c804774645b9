package crawl_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/fwojciec/wikidoc"
	"github.com/fwojciec/wikidoc/crawl"
	"github.com/fwojciec/wikidoc/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	rootURL  = "https://namu.wiki/w/Root"
	childURL = "https://namu.wiki/w/Child"
	otherURL = "https://namu.wiki/w/Other"
)

type fakeSection struct {
	numbering string
	title     string
	content   *wikidoc.Content
}

type fakePage struct {
	title     string
	sections  []fakeSection
	footnotes *wikidoc.Content // nil means no footnote block
	noTOC     bool
}

// fakeSite serves pages from memory and records fetched URLs.
type fakeSite struct {
	mu      sync.Mutex
	pages   map[string]fakePage
	fetched []string
}

func (s *fakeSite) fetches(url string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, u := range s.fetched {
		if u == url {
			n++
		}
	}
	return n
}

func (s *fakeSite) loader(maxHop int) *crawl.Loader {
	return &crawl.Loader{
		Fetcher: &mock.Fetcher{
			FetchFn: func(_ context.Context, url string) (string, error) {
				s.mu.Lock()
				defer s.mu.Unlock()
				s.fetched = append(s.fetched, url)
				return url, nil
			},
		},
		Parser: &mock.PageParser{
			ParseFn: func(pageURL, html string) (wikidoc.Page, error) {
				fp, ok := s.pages[pageURL]
				if !ok || fp.noTOC {
					return nil, wikidoc.Errorf(wikidoc.ENOTFOUND, "page %q has no table of contents", pageURL)
				}
				return newFakePage(pageURL, fp), nil
			},
		},
		MaxHop: maxHop,
	}
}

func sectionID(numbering string) string {
	return "s-" + strings.TrimSuffix(numbering, ".")
}

func newFakePage(pageURL string, fp fakePage) *mock.Page {
	toc := wikidoc.NewTOC()
	contents := make(map[string]*wikidoc.Content)
	for _, s := range fp.sections {
		id := sectionID(s.numbering)
		toc.Add(wikidoc.Section{ID: id, Numbering: s.numbering, Title: s.title, Anchored: true})
		contents[id] = s.content
	}
	toc.Add(wikidoc.Section{
		ID:        wikidoc.FootnoteSectionID,
		Numbering: wikidoc.FootnoteNumbering,
		Title:     wikidoc.FootnoteTitle,
		Anchored:  fp.footnotes != nil,
	})
	contents[wikidoc.FootnoteSectionID] = fp.footnotes

	return &mock.Page{
		URLFn:   func() string { return pageURL },
		TitleFn: func() string { return fp.title },
		TOCFn:   func() *wikidoc.TOC { return toc },
		ContentFn: func(_ context.Context, id string) (*wikidoc.Content, error) {
			c, ok := contents[id]
			if !ok {
				return nil, wikidoc.Errorf(wikidoc.ENOTFOUND, "section %q not found", id)
			}
			if c == nil {
				return wikidoc.EmptyContent(), nil
			}
			return c, nil
		},
	}
}

func contents(recs []*wikidoc.Record) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Content
	}
	return out
}

// deferringSite has a root page whose section 2.1 defers to a child page.
func deferringSite() *fakeSite {
	return &fakeSite{pages: map[string]fakePage{
		rootURL: {
			title: "Root",
			sections: []fakeSection{
				{"1.", "개요", wikidoc.TextContent("루트", "개요")},
				{"2.", "활동", wikidoc.EmptyContent()},
				{"2.1.", "솔로", wikidoc.DeferredContent(childURL)},
				{"3.", "기타", wikidoc.TextContent("끝")},
			},
		},
		childURL: {
			title: "Child",
			sections: []fakeSection{
				{"1.", "앨범", wikidoc.TextContent("첫 앨범")},
				{"1.1.", "수록곡", wikidoc.TextContent("노래")},
			},
			footnotes: wikidoc.TextContent("[1] 출처"),
		},
	}}
}

func TestLoader_Load(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("emits deferred placeholder when hop budget is exhausted", func(t *testing.T) {
		t.Parallel()

		site := deferringSite()

		recs, err := site.loader(0).Load(ctx, rootURL)

		require.NoError(t, err)
		assert.Equal(t, []string{
			"루트 개요",
			wikidoc.EmptyContentPlaceholder,
			"다음 문서로 대체 설명: " + childURL,
			"끝",
		}, contents(recs))
		assert.Equal(t, 0, site.fetches(childURL))

		m := recs[2].Metadata
		assert.Equal(t, wikidoc.RecordMetadata{
			PageTopic:       "Root",
			BaseURL:         rootURL,
			CurrentURL:      rootURL,
			Hop:             0,
			AbsTOCPath:      "활동/솔로",
			Index:           "2.1.",
			TOCItem:         "솔로",
			AncestorTOCItem: "활동",
		}, m)
	})

	t.Run("expands deferred sections into the child page", func(t *testing.T) {
		t.Parallel()

		site := deferringSite()

		recs, err := site.loader(1).Load(ctx, rootURL)

		require.NoError(t, err)
		assert.Equal(t, []string{
			"루트 개요",
			wikidoc.EmptyContentPlaceholder,
			"첫 앨범",
			"노래",
			"[1] 출처",
			"끝",
		}, contents(recs))

		for i, r := range recs {
			assert.Equal(t, i, r.Position)
			assert.Equal(t, rootURL, r.Metadata.BaseURL)
			assert.NotEmpty(t, r.ContentHash)
		}

		m := recs[3].Metadata
		assert.Equal(t, wikidoc.RecordMetadata{
			PageTopic:       "Child",
			BaseURL:         rootURL,
			ParentURL:       rootURL,
			CurrentURL:      childURL,
			Hop:             1,
			ParentIndex:     "2.1.",
			ParentTOCItem:   "솔로",
			AbsTOCPath:      "활동/솔로//앨범/수록곡",
			Index:           "1.1.",
			TOCItem:         "수록곡",
			AncestorTOCItem: "앨범",
		}, m)

		assert.Equal(t, "활동/솔로//FOOTNOTES", recs[4].Metadata.AbsTOCPath)
	})

	t.Run("never exceeds hop limit", func(t *testing.T) {
		t.Parallel()

		site := &fakeSite{pages: map[string]fakePage{}}
		for i := range 5 {
			url := rootURL + strings.Repeat("/x", i)
			site.pages[url] = fakePage{
				title: "P",
				sections: []fakeSection{
					{"1.", "다음", wikidoc.DeferredContent(rootURL + strings.Repeat("/x", i+1))},
				},
			}
		}

		recs, err := site.loader(2).Load(ctx, rootURL)

		require.NoError(t, err)
		require.Len(t, recs, 1)
		assert.Equal(t, 2, recs[0].Metadata.Hop)
		assert.Contains(t, recs[0].Content, rootURL+"/x/x/x")
		assert.Equal(t, "다음//다음//다음", recs[0].Metadata.AbsTOCPath)
	})

	t.Run("emits empty record when child page has no TOC", func(t *testing.T) {
		t.Parallel()

		site := deferringSite()
		child := site.pages[childURL]
		child.noTOC = true
		site.pages[childURL] = child

		recs, err := site.loader(1).Load(ctx, rootURL)

		require.NoError(t, err)
		require.Len(t, recs, 4)
		assert.Equal(t, "", recs[2].Content)
		assert.Equal(t, "솔로", recs[2].Metadata.TOCItem)
		assert.Equal(t, 0, recs[2].Metadata.Hop)
	})

	t.Run("emits empty record when child page does not exist", func(t *testing.T) {
		t.Parallel()

		site := deferringSite()
		l := site.loader(1)
		l.Fetcher = &mock.Fetcher{
			FetchFn: func(_ context.Context, url string) (string, error) {
				if url == childURL {
					return "", wikidoc.Errorf(wikidoc.ENOTFOUND, "page not found: %s", url)
				}
				return url, nil
			},
		}

		recs, err := l.Load(ctx, rootURL)

		require.NoError(t, err)
		require.Len(t, recs, 4)
		assert.Equal(t, "", recs[2].Content)
		assert.Equal(t, "솔로", recs[2].Metadata.TOCItem)
	})

	t.Run("returns ENOTFOUND when root page has no TOC", func(t *testing.T) {
		t.Parallel()

		site := &fakeSite{pages: map[string]fakePage{rootURL: {noTOC: true}}}

		_, err := site.loader(1).Load(ctx, rootURL)

		assert.Equal(t, wikidoc.ENOTFOUND, wikidoc.ErrorCode(err))
	})

	t.Run("skips footnote section when page has no footnotes", func(t *testing.T) {
		t.Parallel()

		site := &fakeSite{pages: map[string]fakePage{
			rootURL: {title: "Root", sections: []fakeSection{
				{"1.", "A", wikidoc.TextContent("a")},
				{"2.", "B", wikidoc.TextContent("b")},
			}},
		}}

		recs, err := site.loader(0).Load(ctx, rootURL)
		require.NoError(t, err)
		assert.Len(t, recs, 2)

		site.pages[rootURL] = fakePage{title: "Root", sections: site.pages[rootURL].sections, footnotes: wikidoc.EmptyContent()}

		recs, err = site.loader(0).Load(ctx, rootURL)
		require.NoError(t, err)
		require.Len(t, recs, 3)
		assert.Equal(t, wikidoc.FootnoteNumbering, recs[2].Metadata.Index)
	})

	t.Run("does not refetch a page on its own branch", func(t *testing.T) {
		t.Parallel()

		site := &fakeSite{pages: map[string]fakePage{
			rootURL: {title: "Root", sections: []fakeSection{
				{"1.", "A", wikidoc.DeferredContent(childURL)},
			}},
			childURL: {title: "Child", sections: []fakeSection{
				{"1.", "B", wikidoc.DeferredContent(rootURL + "#s-1")},
			}},
		}}

		recs, err := site.loader(5).Load(ctx, rootURL)

		require.NoError(t, err)
		require.Len(t, recs, 1)
		assert.Equal(t, "다음 문서로 대체 설명: "+rootURL+"#s-1", recs[0].Content)
		assert.Equal(t, 1, site.fetches(rootURL))
		assert.Equal(t, 1, site.fetches(childURL))
	})

	t.Run("expands repeated targets unless deduplicating", func(t *testing.T) {
		t.Parallel()

		pages := map[string]fakePage{
			rootURL: {title: "Root", sections: []fakeSection{
				{"1.", "A", wikidoc.DeferredContent(childURL)},
				{"2.", "B", wikidoc.DeferredContent(childURL)},
			}},
			childURL: {title: "Child", sections: []fakeSection{
				{"1.", "C", wikidoc.TextContent("c")},
			}},
		}

		site := &fakeSite{pages: pages}
		recs, err := site.loader(1).Load(ctx, rootURL)
		require.NoError(t, err)
		assert.Equal(t, []string{"c", "c"}, contents(recs))
		assert.Equal(t, 2, site.fetches(childURL))

		site = &fakeSite{pages: pages}
		l := site.loader(1)
		l.Dedupe = true
		recs, err = l.Load(ctx, rootURL)
		require.NoError(t, err)
		assert.Equal(t, []string{"c", "다음 문서로 대체 설명: " + childURL}, contents(recs))
		assert.Equal(t, 1, site.fetches(childURL))
	})

	t.Run("deduplicates in document order regardless of concurrency", func(t *testing.T) {
		t.Parallel()

		// Section 1 reaches Other through Child; section 2 links Other
		// directly. Document order expands Other under section 1.
		pages := map[string]fakePage{
			rootURL: {title: "Root", sections: []fakeSection{
				{"1.", "A", wikidoc.DeferredContent(childURL)},
				{"2.", "B", wikidoc.DeferredContent(otherURL)},
				{"3.", "C", wikidoc.DeferredContent(otherURL)},
			}},
			childURL: {title: "Child", sections: []fakeSection{
				{"1.", "D", wikidoc.DeferredContent(otherURL)},
			}},
			otherURL: {title: "Other", sections: []fakeSection{
				{"1.", "E", wikidoc.TextContent("e")},
			}},
		}

		seq := (&fakeSite{pages: pages}).loader(2)
		seq.Dedupe = true
		want, err := seq.Load(ctx, rootURL)
		require.NoError(t, err)
		assert.Equal(t, []string{
			"e",
			"다음 문서로 대체 설명: " + otherURL,
			"다음 문서로 대체 설명: " + otherURL,
		}, contents(want))

		for range 20 {
			site := &fakeSite{pages: pages}
			l := site.loader(2)
			l.Dedupe = true
			l.Concurrency = 4

			got, err := l.Load(ctx, rootURL)

			require.NoError(t, err)
			assert.Equal(t, want, got)
			assert.Equal(t, 1, site.fetches(otherURL))
		}
	})

	t.Run("propagates fetch errors", func(t *testing.T) {
		t.Parallel()

		site := deferringSite()
		l := site.loader(1)
		l.Fetcher = &mock.Fetcher{
			FetchFn: func(_ context.Context, url string) (string, error) {
				if url == childURL {
					return "", errors.New("connection reset")
				}
				return url, nil
			},
		}

		_, err := l.Load(ctx, rootURL)

		require.EqualError(t, err, "connection reset")
	})

	t.Run("propagates content errors", func(t *testing.T) {
		t.Parallel()

		l := &crawl.Loader{
			Fetcher: &mock.Fetcher{FetchFn: func(context.Context, string) (string, error) { return "", nil }},
			Parser: &mock.PageParser{ParseFn: func(pageURL, _ string) (wikidoc.Page, error) {
				toc := wikidoc.NewTOC()
				toc.Add(wikidoc.Section{ID: "s-1", Numbering: "1.", Title: "표", Anchored: true})
				return &mock.Page{
					URLFn:   func() string { return pageURL },
					TitleFn: func() string { return "Root" },
					TOCFn:   func() *wikidoc.TOC { return toc },
					ContentFn: func(context.Context, string) (*wikidoc.Content, error) {
						return nil, errors.New("tabulate: quota exceeded")
					},
				}, nil
			}},
		}

		_, err := l.Load(ctx, rootURL)

		require.EqualError(t, err, "tabulate: quota exceeded")
	})

	t.Run("preserves order when processing sections concurrently", func(t *testing.T) {
		t.Parallel()

		sequential, err := deferringSite().loader(1).Load(ctx, rootURL)
		require.NoError(t, err)

		l := deferringSite().loader(1)
		l.Concurrency = 4
		concurrent, err := l.Load(ctx, rootURL)
		require.NoError(t, err)

		assert.Equal(t, sequential, concurrent)
	})

	t.Run("waits on rate limiter before every fetch", func(t *testing.T) {
		t.Parallel()

		var mu sync.Mutex
		var domains []string
		l := deferringSite().loader(1)
		l.RateLimiter = limiterFunc(func(_ context.Context, domain string) error {
			mu.Lock()
			defer mu.Unlock()
			domains = append(domains, domain)
			return nil
		})

		_, err := l.Load(ctx, rootURL)

		require.NoError(t, err)
		assert.Equal(t, []string{"namu.wiki", "namu.wiki"}, domains)
	})

	t.Run("reports page progress", func(t *testing.T) {
		t.Parallel()

		var events []crawl.ProgressEvent
		l := deferringSite().loader(1)
		l.Progress = func(e crawl.ProgressEvent) {
			events = append(events, e)
		}

		_, err := l.Load(ctx, rootURL)
		require.NoError(t, err)

		require.Len(t, events, 4)
		assert.Equal(t, crawl.ProgressPageStarted, events[0].Type)
		assert.Equal(t, "Root", events[0].Title)
		assert.Equal(t, 4+1, events[0].TOC.Len())
		assert.Equal(t, crawl.ProgressPageStarted, events[1].Type)
		assert.Equal(t, childURL, events[1].URL)
		assert.Equal(t, 1, events[1].Hop)
		assert.Equal(t, 1, events[1].MaxHop)
		assert.Equal(t, crawl.ProgressPageFinished, events[2].Type)
		assert.Equal(t, childURL, events[2].URL)
		assert.Equal(t, crawl.ProgressPageFinished, events[3].Type)
		assert.Equal(t, rootURL, events[3].URL)
	})
}

func TestLoader_Stream(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("yields the same records as Load", func(t *testing.T) {
		t.Parallel()

		want, err := deferringSite().loader(1).Load(ctx, rootURL)
		require.NoError(t, err)

		var got []*wikidoc.Record
		for rec, err := range deferringSite().loader(1).Stream(ctx, rootURL) {
			require.NoError(t, err)
			got = append(got, rec)
		}

		assert.Equal(t, want, got)
	})

	t.Run("stops crawling when the consumer stops", func(t *testing.T) {
		t.Parallel()

		site := deferringSite()

		for rec, err := range site.loader(1).Stream(ctx, rootURL) {
			require.NoError(t, err)
			assert.Equal(t, "루트 개요", rec.Content)
			break
		}

		assert.Equal(t, 0, site.fetches(childURL))
	})

	t.Run("yields the error last", func(t *testing.T) {
		t.Parallel()

		site := deferringSite()
		l := site.loader(1)
		l.Fetcher = &mock.Fetcher{
			FetchFn: func(_ context.Context, url string) (string, error) {
				if url == childURL {
					return "", errors.New("timeout")
				}
				return url, nil
			},
		}

		var got []string
		var last error
		for rec, err := range l.Stream(ctx, rootURL) {
			if err != nil {
				last = err
				continue
			}
			got = append(got, rec.Content)
		}

		assert.Equal(t, []string{"루트 개요", wikidoc.EmptyContentPlaceholder}, got)
		require.EqualError(t, last, "timeout")
	})
}

type limiterFunc func(ctx context.Context, domain string) error

func (f limiterFunc) Wait(ctx context.Context, domain string) error {
	return f(ctx, domain)
}
