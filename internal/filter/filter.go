// Package filter implements the event filtering pipeline: multi-facet
// filtering, contextual facet counts, and pagination over the catalog.
//
// Every function here is pure. Input slices are never mutated and the
// same inputs always produce the same output, which is what makes the
// memoized Selector safe.
package filter

import (
	"sort"
	"strings"
	"time"

	"github.com/sproutme/sprout-server/internal/domain"
)

// Apply runs the full filter pipeline over the catalog and returns the
// matching events. Dimensions combine with AND; values within a
// multi-select dimension combine with OR. Price sorting runs last so it
// orders exactly the surviving set.
func Apply(events []domain.Event, state domain.FilterState) []domain.Event {
	return applyExcluding(events, state, "")
}

// applyExcluding runs the pipeline with one dimension's own step skipped.
// Facet counting uses it to answer "what would be visible if only the
// other dimensions applied".
func applyExcluding(events []domain.Event, state domain.FilterState, skip domain.FacetDimension) []domain.Event {
	startDate, hasStart := parseBound(state.StartDate)
	endDate, hasEnd := parseBound(state.EndDate)
	searchTerm := strings.ToLower(strings.TrimSpace(state.SearchTerm))

	out := make([]domain.Event, 0, len(events))
	for _, e := range events {
		if hasStart || hasEnd {
			d, ok := e.ParsedDate()
			if !ok {
				continue
			}
			if hasStart && d.Before(startDate) {
				continue
			}
			if hasEnd && d.After(endDate) {
				continue
			}
		}

		if searchTerm != "" && !strings.Contains(strings.ToLower(e.Name), searchTerm) {
			continue
		}

		if skip != domain.FacetGenre && len(state.Genres) > 0 && !matchesAnyGenre(&e, state.Genres) {
			continue
		}

		if skip != domain.FacetCity && len(state.Cities) > 0 && !contains(state.Cities, e.City()) {
			continue
		}

		if skip != domain.FacetOrganizer && len(state.Organizers) > 0 && !contains(state.Organizers, strings.TrimSpace(e.Organizer)) {
			continue
		}

		if skip != domain.FacetVenue && len(state.Venues) > 0 && !contains(state.Venues, strings.TrimSpace(e.Venue)) {
			continue
		}

		if state.FavoritesOnly && !e.IsFavorite {
			continue
		}

		out = append(out, e)
	}

	// Sort last: price ordering applies to the surviving set only.
	switch state.PriceSort {
	case domain.PriceSortAsc:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Price() < out[j].Price()
		})
	case domain.PriceSortDesc:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Price() > out[j].Price()
		})
	}

	return out
}

// parseBound parses an inclusive "YYYY-MM-DD" date bound.
// Unset or malformed bounds are treated as unbounded.
func parseBound(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func matchesAnyGenre(e *domain.Event, selected []string) bool {
	for _, g := range selected {
		if e.HasGenre(g) {
			return true
		}
	}
	return false
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
