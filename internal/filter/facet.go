package filter

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/sproutme/sprout-server/internal/domain"
)

// Facets computes the options for one dimension under the current filter
// state. Counts answer "how many events would be visible if this value
// were the only selection in its dimension": the event set is filtered by
// every other dimension but never by the dimension being counted, so
// already-selected values keep honest numbers.
//
// Options cover every value present in the full catalog, in descending
// count order. Zero counts are kept so clients can show them disabled.
func Facets(events []domain.Event, state domain.FilterState, dim domain.FacetDimension) []domain.FacetOption {
	// Enumerate distinct values over the whole catalog, first-seen order.
	var order []string
	seen := make(map[string]bool)
	for _, e := range events {
		for _, v := range dimensionValues(&e, dim) {
			if !seen[v] {
				seen[v] = true
				order = append(order, v)
			}
		}
	}

	// Tally within the subset that passes every other dimension.
	subset := applyExcluding(events, state, dim)
	counts := make(map[string]int, len(order))
	for _, e := range subset {
		for _, v := range dimensionValues(&e, dim) {
			counts[v]++
		}
	}

	options := make([]domain.FacetOption, 0, len(order))
	for _, v := range order {
		options = append(options, domain.FacetOption{Name: v, Count: counts[v]})
	}

	// Descending by count, ties alphabetical. Venue and city names are
	// not ASCII-only, so ties go through a Unicode collator.
	coll := collate.New(language.Und, collate.IgnoreCase)
	sort.SliceStable(options, func(i, j int) bool {
		if options[i].Count != options[j].Count {
			return options[i].Count > options[j].Count
		}
		return coll.CompareString(options[i].Name, options[j].Name) < 0
	})

	return options
}

// dimensionValues returns the event's values in the given dimension.
// Events without a city, organizer, or venue contribute nothing to those
// facets; a missing genre contributes the sentinel.
func dimensionValues(e *domain.Event, dim domain.FacetDimension) []string {
	switch dim {
	case domain.FacetGenre:
		return e.Genres()
	case domain.FacetCity:
		if city := e.City(); city != "" {
			return []string{city}
		}
	case domain.FacetOrganizer:
		if org := strings.TrimSpace(e.Organizer); org != "" {
			return []string{org}
		}
	case domain.FacetVenue:
		if venue := strings.TrimSpace(e.Venue); venue != "" {
			return []string{venue}
		}
	}
	return nil
}
