package filter_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sproutme/sprout-server/internal/domain"
	"github.com/sproutme/sprout-server/internal/filter"
)

func makeEvents(n int) []domain.Event {
	events := make([]domain.Event, n)
	for i := range events {
		events[i] = domain.Event{ID: fmt.Sprintf("evt-%03d", i)}
	}
	return events
}

func TestPaginate_SplitsEvenly(t *testing.T) {
	events := makeEvents(120)

	page1 := filter.Paginate(events, 1, 50)
	assert.Len(t, page1.Events, 50)
	assert.Equal(t, "evt-000", page1.Events[0].ID)
	assert.Equal(t, 1, page1.Page)
	assert.Equal(t, 120, page1.Total)
	assert.Equal(t, 3, page1.TotalPages)

	page2 := filter.Paginate(events, 2, 50)
	assert.Len(t, page2.Events, 50)
	assert.Equal(t, "evt-050", page2.Events[0].ID)

	page3 := filter.Paginate(events, 3, 50)
	assert.Len(t, page3.Events, 20)
	assert.Equal(t, "evt-100", page3.Events[0].ID)
}

func TestPaginate_BeyondEndIsEmpty(t *testing.T) {
	events := makeEvents(120)

	beyond := filter.Paginate(events, 4, 50)
	assert.Empty(t, beyond.Events)
	assert.Equal(t, 4, beyond.Page)
	assert.Equal(t, 120, beyond.Total)
	assert.Equal(t, 3, beyond.TotalPages)

	farBeyond := filter.Paginate(events, 40, 50)
	assert.Empty(t, farBeyond.Events)
}

func TestPaginate_NonPositivePageServesFirst(t *testing.T) {
	events := makeEvents(120)

	below := filter.Paginate(events, 0, 50)
	assert.Equal(t, 1, below.Page)
	assert.Equal(t, "evt-000", below.Events[0].ID)

	negative := filter.Paginate(events, -5, 50)
	assert.Equal(t, 1, negative.Page)
}

func TestPaginate_EmptySet(t *testing.T) {
	result := filter.Paginate(nil, 3, 50)

	assert.Empty(t, result.Events)
	assert.Equal(t, 0, result.Total)
	assert.Equal(t, 1, result.TotalPages)
}

func TestPaginate_SinglePartialPage(t *testing.T) {
	events := makeEvents(7)

	result := filter.Paginate(events, 1, 50)

	assert.Len(t, result.Events, 7)
	assert.Equal(t, 1, result.TotalPages)
}

func TestResolvePage_ResetsWhenSetSizeChanges(t *testing.T) {
	// Client was on page 3 of a 120-item view; a filter change shrank the
	// set, so the view starts over.
	assert.Equal(t, 1, filter.ResolvePage(3, 120, 45))

	// Same size: the requested page stands.
	assert.Equal(t, 3, filter.ResolvePage(3, 120, 120))

	// No prior view: the requested page stands.
	assert.Equal(t, 2, filter.ResolvePage(2, -1, 120))
}
