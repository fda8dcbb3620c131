package domain

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// GenreNone is the sentinel genre for events listed without one.
// It participates in genre filtering and facet counts like any real genre.
const GenreNone = "None"

// Fallbacks for events the upstream returns with missing fields.
const (
	UnnamedEvent = "Unnamed Event"
	UnknownVenue = "Unknown Venue"
	UnknownDate  = "Date unknown"
)

// Event is a single listing in the catalog. Events are immutable once
// ingested; only the favorite overlay changes per user.
type Event struct {
	// ID is a synthetic identifier assigned at ingestion, stable for the
	// lifetime of a catalog revision. The upstream has no event IDs.
	ID string `json:"id"`

	Name       string `json:"name"`
	Venue      string `json:"venue"` // "Venue Name (City)" by convention
	Date       string `json:"date"` // display string, shown as-is
	RawDate    string `json:"raw_date"` // "YYYY/MM/DD"
	TicketInfo string `json:"ticket_info"`
	Organizer  string `json:"organizer"`
	Genre      string `json:"genre"` // comma-separated list
	EventURL   string `json:"event_url"`

	IsFavorite bool `json:"is_favorite"`
}

var priceRe = regexp.MustCompile(`\$(\d+)(?:-\d+)?`)

var cityRe = regexp.MustCompile(`\(([^)]+)\)`)

// ParsedDate parses the event's RawDate ("YYYY/MM/DD") into a local
// calendar date. Returns false for missing or malformed dates; callers
// decide how unparseable dates behave (excluded from date-range filters,
// sorted last elsewhere).
func (e *Event) ParsedDate() (time.Time, bool) {
	return ParseEventDate(e.RawDate)
}

// ParseEventDate parses a "YYYY/MM/DD" string into a local calendar date.
func ParseEventDate(raw string) (time.Time, bool) {
	parts := strings.Split(raw, "/")
	if len(parts) != 3 {
		return time.Time{}, false
	}
	year, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return time.Time{}, false
	}
	month, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return time.Time{}, false
	}
	day, err := strconv.Atoi(strings.TrimSpace(parts[2]))
	if err != nil {
		return time.Time{}, false
	}
	// time.Date normalizes out-of-range months and days the same way a
	// JS Date would, so "2024/13/01" becomes 2025-01-01 rather than failing.
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.Local), true
}

// Price extracts a numeric price from the event's ticket info.
// "$30" and "tickets $30-50 at the door" both yield 30 (the lower bound
// of a range). Returns 0 when no dollar amount is present, which sorts
// free and unpriced events together.
func (e *Event) Price() int {
	return ExtractPrice(e.TicketInfo)
}

// ExtractPrice pulls the first dollar amount out of a ticket info string.
func ExtractPrice(ticketInfo string) int {
	m := priceRe.FindStringSubmatch(ticketInfo)
	if m == nil {
		return 0
	}
	price, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return price
}

// City extracts the city from the venue's parenthesized suffix.
// "Club Garten (Berlin)" yields "Berlin". Returns "" when the venue
// has no parenthesized city; such events never match a city filter.
func (e *Event) City() string {
	return ExtractCityFromVenue(e.Venue)
}

// ExtractCityFromVenue pulls the parenthesized city out of a venue string.
func ExtractCityFromVenue(venue string) string {
	m := cityRe.FindStringSubmatch(venue)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// Genres splits the comma-separated genre field into individual genres.
// An empty or blank field yields the GenreNone sentinel.
func (e *Event) Genres() []string {
	if strings.TrimSpace(e.Genre) == "" {
		return []string{GenreNone}
	}
	parts := strings.Split(e.Genre, ", ")
	genres := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			genres = append(genres, trimmed)
		}
	}
	if len(genres) == 0 {
		return []string{GenreNone}
	}
	return genres
}

// HasGenre reports whether the event lists the given genre.
func (e *Event) HasGenre(genre string) bool {
	for _, g := range e.Genres() {
		if g == genre {
			return true
		}
	}
	return false
}

// DisplayName returns the event name, defaulting when the upstream
// returned a row without one.
func (e *Event) DisplayName() string {
	if e.Name == "" {
		return UnnamedEvent
	}
	return e.Name
}

// DisplayVenue returns the venue, defaulting when missing.
func (e *Event) DisplayVenue() string {
	if e.Venue == "" {
		return UnknownVenue
	}
	return e.Venue
}

// DisplayDate returns the display date, defaulting when missing.
func (e *Event) DisplayDate() string {
	if e.Date == "" {
		return UnknownDate
	}
	return e.Date
}

// Key returns the composite identity the upstream uses for an event.
// Star/unstar calls and favorite matching go through it.
func (e *Event) Key() string {
	return EventKey(e.Name, e.Venue, e.RawDate)
}

// EventKey builds the composite identity for an event.
func EventKey(name, venue, rawDate string) string {
	return name + "\x1f" + venue + "\x1f" + rawDate
}
