package domain

import "strings"

// PriceSort selects price ordering for filtered results.
type PriceSort string

const (
	// PriceSortNone leaves the catalog order untouched.
	PriceSortNone PriceSort = ""
	// PriceSortAsc orders cheapest first.
	PriceSortAsc PriceSort = "asc"
	// PriceSortDesc orders most expensive first.
	PriceSortDesc PriceSort = "desc"
)

// FilterState captures every active filter dimension at once.
// The zero value selects everything in catalog order.
type FilterState struct {
	// StartDate and EndDate are inclusive bounds in "YYYY-MM-DD" form.
	// Empty means unbounded on that side.
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`

	SearchTerm string `json:"search_term,omitempty"`

	Genres     []string `json:"genres,omitempty"`
	Cities     []string `json:"cities,omitempty"`
	Organizers []string `json:"organizers,omitempty"`
	Venues     []string `json:"venues,omitempty"`

	FavoritesOnly bool      `json:"favorites_only,omitempty"`
	PriceSort     PriceSort `json:"price_sort,omitempty"`
}

// IsZero reports whether no filter dimension is active.
func (s FilterState) IsZero() bool {
	return s.StartDate == "" && s.EndDate == "" &&
		strings.TrimSpace(s.SearchTerm) == "" &&
		len(s.Genres) == 0 && len(s.Cities) == 0 &&
		len(s.Organizers) == 0 && len(s.Venues) == 0 &&
		!s.FavoritesOnly && s.PriceSort == PriceSortNone
}

// FacetDimension names a multi-select filter dimension.
type FacetDimension string

const (
	FacetGenre     FacetDimension = "genre"
	FacetCity      FacetDimension = "city"
	FacetOrganizer FacetDimension = "organizer"
	FacetVenue     FacetDimension = "venue"
)

// Valid reports whether the dimension is one of the known facets.
func (d FacetDimension) Valid() bool {
	switch d {
	case FacetGenre, FacetCity, FacetOrganizer, FacetVenue:
		return true
	}
	return false
}

// FacetOption is a selectable value within a facet dimension together
// with the number of events that would remain visible alongside it.
// Options are derived on demand and never stored.
type FacetOption struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}
