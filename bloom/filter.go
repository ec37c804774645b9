// Package bloom tracks visited page URLs in a Bloom filter.
package bloom

import "github.com/bits-and-blooms/bloom/v3"

// Filter is a probabilistic set of page URLs. A URL reported absent was
// never added; a URL reported present was probably added. Not safe for
// concurrent use.
type Filter struct {
	f *bloom.BloomFilter
}

// NewFilter sizes a filter for n URLs at false positive rate fpRate.
func NewFilter(n uint, fpRate float64) *Filter {
	return &Filter{f: bloom.NewWithEstimates(n, fpRate)}
}

// AddIfAbsent adds url and reports whether it was absent before.
func (f *Filter) AddIfAbsent(url string) bool {
	return !f.f.TestAndAddString(url)
}

// Contains reports whether url was probably added.
func (f *Filter) Contains(url string) bool {
	return f.f.TestString(url)
}

// Len estimates how many distinct URLs were added.
func (f *Filter) Len() int {
	return int(f.f.ApproximatedSize())
}
