package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEventDate(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want time.Time
		ok   bool
	}{
		{"valid date", "2024/05/01", time.Date(2024, 5, 1, 0, 0, 0, 0, time.Local), true},
		{"single digit parts", "2024/5/1", time.Date(2024, 5, 1, 0, 0, 0, 0, time.Local), true},
		{"overflow month normalizes", "2024/13/01", time.Date(2025, 1, 1, 0, 0, 0, 0, time.Local), true},
		{"empty", "", time.Time{}, false},
		{"wrong separator", "2024-05-01", time.Time{}, false},
		{"two parts", "2024/05", time.Time{}, false},
		{"non-numeric", "2024/May/01", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseEventDate(tt.raw)
			require.Equal(t, tt.ok, ok)
			if ok {
				assert.True(t, got.Equal(tt.want), "got %v want %v", got, tt.want)
			}
		})
	}
}

func TestExtractPrice(t *testing.T) {
	tests := []struct {
		name       string
		ticketInfo string
		want       int
	}{
		{"plain price", "$30", 30},
		{"embedded price", "tickets $25 at the door", 25},
		{"range takes lower bound", "$30-50", 30},
		{"range with text", "presale $15-20, more at the door", 15},
		{"no price", "free entry", 0},
		{"empty", "", 0},
		{"currency without digits", "$TBD", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractPrice(tt.ticketInfo))
		})
	}
}

func TestExtractCityFromVenue(t *testing.T) {
	tests := []struct {
		name  string
		venue string
		want  string
	}{
		{"standard form", "Club Garten (Berlin)", "Berlin"},
		{"padded city", "Warehouse ( Oakland )", "Oakland"},
		{"no parentheses", "Secret Location", ""},
		{"empty", "", ""},
		{"multiple groups takes first", "The Loft (NYC) (Rooftop)", "NYC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractCityFromVenue(tt.venue))
		})
	}
}

func TestEventGenres(t *testing.T) {
	tests := []struct {
		name  string
		genre string
		want  []string
	}{
		{"single", "House", []string{"House"}},
		{"multiple", "House, Techno", []string{"House", "Techno"}},
		{"empty becomes sentinel", "", []string{GenreNone}},
		{"whitespace becomes sentinel", "   ", []string{GenreNone}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := Event{Genre: tt.genre}
			assert.Equal(t, tt.want, e.Genres())
		})
	}
}

func TestEventHasGenre(t *testing.T) {
	e := Event{Genre: "House, Techno"}
	assert.True(t, e.HasGenre("House"))
	assert.True(t, e.HasGenre("Techno"))
	assert.False(t, e.HasGenre("Trance"))

	blank := Event{}
	assert.True(t, blank.HasGenre(GenreNone))
}

func TestEventDisplayDefaults(t *testing.T) {
	e := Event{}
	assert.Equal(t, UnnamedEvent, e.DisplayName())
	assert.Equal(t, UnknownVenue, e.DisplayVenue())
	assert.Equal(t, UnknownDate, e.DisplayDate())

	full := Event{Name: "Open Air", Venue: "Pier 70 (SF)", Date: "Sat 5/11"}
	assert.Equal(t, "Open Air", full.DisplayName())
	assert.Equal(t, "Pier 70 (SF)", full.DisplayVenue())
	assert.Equal(t, "Sat 5/11", full.DisplayDate())
}

func TestEventKey(t *testing.T) {
	a := Event{Name: "Open Air", Venue: "Pier 70 (SF)", RawDate: "2024/05/11"}
	b := Event{Name: "Open Air", Venue: "Pier 70 (SF)", RawDate: "2024/05/11", Genre: "House"}
	c := Event{Name: "Open Air", Venue: "Pier 70 (SF)", RawDate: "2024/05/12"}

	assert.Equal(t, a.Key(), b.Key())
	assert.NotEqual(t, a.Key(), c.Key())
}
