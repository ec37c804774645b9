package crawl

import (
	"sync"

	"github.com/fwojciec/wikidoc/bloom"
)

// SeenSet records which pages a crawl has already expanded. URLs differing
// only by fragment are the same page. It is safe for concurrent use.
//
// Membership is probabilistic: a page that was never claimed may, rarely,
// be reported as seen.
type SeenSet struct {
	mu   sync.Mutex
	seen *bloom.Filter
}

// NewSeenSet creates a SeenSet sized for n expected pages with the given
// false positive rate.
func NewSeenSet(n uint, fpRate float64) *SeenSet {
	return &SeenSet{seen: bloom.NewFilter(n, fpRate)}
}

// Claim marks pageURL as seen. Returns false if it had been seen already.
func (s *SeenSet) Claim(pageURL string) bool {
	key := pageKey(pageURL)

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.seen.AddIfAbsent(key)
}

// Seen reports whether pageURL has been claimed.
func (s *SeenSet) Seen(pageURL string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seen.Contains(pageKey(pageURL))
}

// Len returns the approximate number of claimed pages.
func (s *SeenSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seen.Len()
}
