// Package rod implements wikidoc.Fetcher with a headless Chrome browser,
// for pages that only render their content with JavaScript.
package rod

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/fwojciec/wikidoc"
	"github.com/go-rod/rod/lib/proto"
)

// DefaultFetchTimeout bounds one page fetch, including navigation and
// rendering.
const DefaultFetchTimeout = 10 * time.Second

// DefaultWaitSelector is the TOC widget. Pages that have one are not
// serialized before it is rendered.
const DefaultWaitSelector = "div.wiki-macro-toc"

// DefaultWaitTimeout bounds the wait for DefaultWaitSelector. Pages without
// a TOC are returned as they are once it expires.
const DefaultWaitTimeout = 3 * time.Second

// Ensure Fetcher implements wikidoc.Fetcher at compile time.
var _ wikidoc.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves rendered page markup using Chrome browser automation.
// Fetcher is safe for concurrent use by multiple goroutines.
type Fetcher struct {
	manager *BrowserManager
	closed  atomic.Bool

	timeout      time.Duration
	waitSelector string
	waitTimeout  time.Duration
	managerOpts  []ManagerOption
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithFetchTimeout sets the timeout for a single fetch.
func WithFetchTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithWaitSelector waits up to d for selector to appear before reading
// the page. An empty selector disables waiting.
func WithWaitSelector(selector string, d time.Duration) Option {
	return func(f *Fetcher) {
		f.waitSelector = selector
		f.waitTimeout = d
	}
}

// WithBrowserOptions configures the underlying BrowserManager.
func WithBrowserOptions(opts ...ManagerOption) Option {
	return func(f *Fetcher) {
		f.managerOpts = append(f.managerOpts, opts...)
	}
}

// NewFetcher creates a new Fetcher that launches a headless Chrome browser.
// Close must be called when the Fetcher is no longer needed.
//
// Returns an error if Chrome/Chromium cannot be found or launched.
func NewFetcher(opts ...Option) (*Fetcher, error) {
	f := &Fetcher{
		timeout:      DefaultFetchTimeout,
		waitSelector: DefaultWaitSelector,
		waitTimeout:  DefaultWaitTimeout,
	}
	for _, opt := range opts {
		opt(f)
	}

	manager, err := NewBrowserManager(f.managerOpts...)
	if err != nil {
		return nil, err
	}
	f.manager = manager
	return f, nil
}

// Fetch navigates to url and returns the rendered markup.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	if f.closed.Load() {
		return "", wikidoc.Errorf(wikidoc.EINVALID, "fetcher is closed")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	browser := f.manager.Browser()
	if browser == nil {
		return "", wikidoc.Errorf(wikidoc.EINVALID, "fetcher is closed")
	}
	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return "", err
	}
	defer page.Close()

	page = page.Context(ctx)

	if err := page.Navigate(url); err != nil {
		return "", err
	}
	if err := page.WaitLoad(); err != nil {
		return "", err
	}

	if f.waitSelector != "" && f.waitTimeout > 0 {
		// Missing selector is not an error: the parser reports pages
		// without a TOC.
		_, _ = page.Timeout(f.waitTimeout).Element(f.waitSelector)
	}

	html, err := page.HTML()
	if err != nil {
		return "", err
	}

	f.manager.PageDone()
	return html, nil
}

// Close releases browser resources. Close is safe to call multiple times.
func (f *Fetcher) Close() error {
	if !f.closed.CompareAndSwap(false, true) {
		return nil
	}
	return f.manager.Close()
}

// LauncherPID returns the process ID of the browser launcher.
// This method exists for testing purposes to verify proper cleanup.
func (f *Fetcher) LauncherPID() int {
	return f.manager.LauncherPID()
}
