package filter

import (
	"encoding/json/v2"
	"sync"

	"github.com/sproutme/sprout-server/internal/domain"
)

// maxSelectorEntries bounds the cache. When exceeded the cache is
// dropped wholesale; entries are cheap to recompute.
const maxSelectorEntries = 256

// Selector memoizes Apply results. Filtering is recomputed only when the
// inputs actually change, keyed on a caller-supplied version string (the
// catalog revision plus the user's favorites version) and the filter
// state itself.
//
// Cached slices are shared between callers and must be treated as
// read-only.
type Selector struct {
	mu    sync.Mutex
	cache map[string][]domain.Event
}

// NewSelector creates an empty selector.
func NewSelector() *Selector {
	return &Selector{cache: make(map[string][]domain.Event)}
}

// Apply returns the filtered set for the given version and state,
// computing it at most once per distinct input.
func (s *Selector) Apply(version string, events []domain.Event, state domain.FilterState) []domain.Event {
	key := version + "|" + stateKey(state)

	s.mu.Lock()
	if cached, ok := s.cache[key]; ok {
		s.mu.Unlock()
		return cached
	}
	s.mu.Unlock()

	result := Apply(events, state)

	s.mu.Lock()
	if len(s.cache) >= maxSelectorEntries {
		s.cache = make(map[string][]domain.Event)
	}
	s.cache[key] = result
	s.mu.Unlock()

	return result
}

// Invalidate drops every cached result.
func (s *Selector) Invalidate() {
	s.mu.Lock()
	s.cache = make(map[string][]domain.Event)
	s.mu.Unlock()
}

// stateKey renders a filter state as a deterministic cache key.
// Struct field order is fixed, so json/v2 output is stable.
func stateKey(state domain.FilterState) string {
	b, err := json.Marshal(state)
	if err != nil {
		// FilterState contains only marshalable types; this cannot happen.
		return ""
	}
	return string(b)
}
