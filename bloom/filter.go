// Package bloom provides probabilistic URL deduplication for batch runs.
package bloom

import "github.com/bits-and-blooms/bloom/v3"

// Sizing defaults for one batch run. Candidate lists are small (tens of
// items), but the filter also absorbs comment URLs and re-runs, so it is
// sized with headroom.
const (
	DefaultExpectedURLs      = 10000
	DefaultFalsePositiveRate = 0.01
)

// SeenFilter tracks URLs already considered within a single batch run.
// False positives are possible and acceptable: a false positive only skips
// a candidate that the store-level uniqueness check would reject anyway.
type SeenFilter struct {
	f *bloom.BloomFilter
}

// NewSeenFilter creates a filter sized for n expected URLs with the given
// false positive rate.
func NewSeenFilter(n uint, fpRate float64) *SeenFilter {
	return &SeenFilter{
		f: bloom.NewWithEstimates(n, fpRate),
	}
}

// NewDefaultSeenFilter creates a filter with the default sizing.
func NewDefaultSeenFilter() *SeenFilter {
	return NewSeenFilter(DefaultExpectedURLs, DefaultFalsePositiveRate)
}

// MarkSeen records a URL as considered. It reports whether the URL was
// already present, so a batch loop can test and mark in one call.
func (s *SeenFilter) MarkSeen(url string) bool {
	return s.f.TestAndAddString(url)
}

// Seen returns true if the URL might already have been considered.
func (s *SeenFilter) Seen(url string) bool {
	return s.f.TestString(url)
}
