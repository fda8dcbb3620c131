// Package search provides full-text event search using Bleve. It backs
// the typeahead endpoint with fuzzy matching on event names, venues,
// and organizers, plus exact filters on genre and city.
package search

import (
	"github.com/sproutme/sprout-server/internal/domain"
)

// SearchDocument is the document structure for the Bleve index. Each
// catalog event is indexed as one document.
//
// Venue city and price are denormalized at index time so the index can
// filter on them without re-parsing venue strings per query.
type SearchDocument struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Venue     string `json:"venue"`
	Organizer string `json:"organizer,omitempty"`

	// Exact-match filter fields.
	Genres []string `json:"genres,omitempty"`
	City   string   `json:"city,omitempty"`

	// Numeric fields for range queries and sorting.
	Price int64 `json:"price"`
	Date  int64 `json:"date,omitempty"` // Unix millis, zero when unparseable
}

// ToMap converts the document to a map with lowercase field names.
// Bleve by default uses Go struct field names (capitalized), but our
// mapping uses lowercase names, so we convert explicitly.
func (d *SearchDocument) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"id":    d.ID,
		"name":  d.Name,
		"venue": d.Venue,
		"price": d.Price,
	}

	if d.Organizer != "" {
		m["organizer"] = d.Organizer
	}
	if len(d.Genres) > 0 {
		m["genres"] = d.Genres
	}
	if d.City != "" {
		m["city"] = d.City
	}
	if d.Date > 0 {
		m["date"] = d.Date
	}

	return m
}

// EventToSearchDocument converts a catalog event to a SearchDocument.
func EventToSearchDocument(e *domain.Event) *SearchDocument {
	doc := &SearchDocument{
		ID:        e.ID,
		Name:      e.DisplayName(),
		Venue:     e.DisplayVenue(),
		Organizer: e.Organizer,
		Genres:    e.Genres(),
		City:      e.City(),
		Price:     int64(e.Price()),
	}

	if parsed, ok := domain.ParseEventDate(e.RawDate); ok {
		doc.Date = parsed.UnixMilli()
	}

	return doc
}
