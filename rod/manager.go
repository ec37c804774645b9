package rod

import (
	"errors"
	"fmt"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
)

// DefaultMaxPages is the number of pages a browser serves before it is
// replaced.
const DefaultMaxPages = 75

// launchFlags keep background tabs rendering at full speed and avoid
// /dev/shm exhaustion in containers.
var launchFlags = []string{
	"disable-background-timer-throttling",
	"disable-backgrounding-occluded-windows",
	"disable-renderer-backgrounding",
	"disable-dev-shm-usage",
	"disable-hang-monitor",
}

// session is one running Chrome process and the connection to it.
type session struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
}

func (s *session) close() error {
	err := s.browser.Close()
	s.launcher.Kill()
	return err
}

// BrowserManager owns the Chrome process used for fetching. A deep crawl
// opens one tab per page and Chrome's memory keeps growing even after tabs
// close, so the process is replaced once it has served maxPages pages.
//
// BrowserManager is safe for concurrent use.
type BrowserManager struct {
	mu       sync.Mutex
	cur      *session
	served   int64
	maxPages int64
	headless bool
	closed   bool
}

// ManagerOption configures a BrowserManager.
type ManagerOption func(*BrowserManager)

// WithMaxPages sets how many pages a browser serves before it is replaced.
func WithMaxPages(n int64) ManagerOption {
	return func(bm *BrowserManager) {
		bm.maxPages = n
	}
}

// WithHeadless controls whether the browser window is hidden. Defaults to
// true. A visible window helps when the wiki challenges automated readers.
func WithHeadless(headless bool) ManagerOption {
	return func(bm *BrowserManager) {
		bm.headless = headless
	}
}

// NewBrowserManager launches Chrome. Close must be called when the manager
// is no longer needed.
func NewBrowserManager(opts ...ManagerOption) (*BrowserManager, error) {
	bm := &BrowserManager{
		maxPages: DefaultMaxPages,
		headless: true,
	}
	for _, opt := range opts {
		opt(bm)
	}

	s, err := bm.launch()
	if err != nil {
		return nil, err
	}
	bm.cur = s
	return bm, nil
}

// Browser returns the running browser, replacing it first when it has
// served maxPages pages. If the replacement fails to launch, the old
// browser keeps serving.
func (bm *BrowserManager) Browser() *rod.Browser {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	if bm.closed {
		return nil
	}
	if bm.served >= bm.maxPages {
		if fresh, err := bm.launch(); err == nil {
			_ = bm.cur.close()
			bm.cur = fresh
			bm.served = 0
		}
	}
	return bm.cur.browser
}

// PageDone records that the current browser served one more page.
func (bm *BrowserManager) PageDone() {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	bm.served++
}

// Close shuts the browser down. Close is safe to call multiple times.
func (bm *BrowserManager) Close() error {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	if bm.closed {
		return nil
	}
	bm.closed = true
	return bm.cur.close()
}

// launch starts a Chrome process and connects to it.
func (bm *BrowserManager) launch() (*session, error) {
	l := launcher.New().Leakless(true).Headless(bm.headless)
	for _, flag := range launchFlags {
		l = l.Set(flags.Flag(flag))
	}

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launching browser: %w", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, errors.Join(errors.New("connecting to browser"), err)
	}
	return &session{browser: browser, launcher: l}, nil
}

// LauncherPID returns the process ID of the running browser launcher, or 0
// after Close. Tests use it to verify cleanup.
func (bm *BrowserManager) LauncherPID() int {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	if bm.closed {
		return 0
	}
	return bm.cur.launcher.PID()
}
