// Package bloom provides route set membership backed by a Bloom filter.
package bloom

import (
	"sort"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/fwojciec/artdir"
)

// DefaultFalsePositiveRate is the target rate used by NewRouteSet.
const DefaultFalsePositiveRate = 0.001

// RouteSet holds routes keyed by path. The Bloom filter answers most
// lookups for absent paths without touching the map; hits are confirmed
// against the map so membership is exact.
type RouteSet struct {
	filter *bloom.BloomFilter
	routes map[string]*artdir.Route
}

// NewRouteSet creates a RouteSet sized for n expected routes.
func NewRouteSet(n uint) *RouteSet {
	return &RouteSet{
		filter: bloom.NewWithEstimates(max(n, 1), DefaultFalsePositiveRate),
		routes: make(map[string]*artdir.Route, n),
	}
}

// Add inserts r and reports whether its path was new. For a repeated
// path the stored route keeps the later LastMod.
func (s *RouteSet) Add(r *artdir.Route) bool {
	if existing := s.get(r.Path); existing != nil {
		if r.LastMod.After(existing.LastMod) {
			existing.LastMod = r.LastMod
		}
		return false
	}
	s.filter.AddString(r.Path)
	s.routes[r.Path] = r
	return true
}

// Has reports whether path is in the set.
func (s *RouteSet) Has(path string) bool {
	return s.get(path) != nil
}

// Len returns the number of distinct paths.
func (s *RouteSet) Len() int {
	return len(s.routes)
}

// Routes returns the routes sorted by path.
func (s *RouteSet) Routes() []*artdir.Route {
	out := make([]*artdir.Route, 0, len(s.routes))
	for _, r := range s.routes {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

func (s *RouteSet) get(path string) *artdir.Route {
	if !s.filter.TestString(path) {
		return nil
	}
	return s.routes[path]
}
