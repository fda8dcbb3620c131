package service

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sproutme/sprout-server/internal/catalog"
	"github.com/sproutme/sprout-server/internal/domain"
	domainerrors "github.com/sproutme/sprout-server/internal/errors"
	"github.com/sproutme/sprout-server/internal/search"
	"github.com/sproutme/sprout-server/internal/upstream"
)

const testPhone = "+15551234567"
const testHash = "test-hash"

func newTestEventService(t *testing.T, handler http.Handler) *EventService {
	t.Helper()

	st := newTestStore(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	cat := catalog.New(nil, st, catalog.Config{}, logger)
	t.Cleanup(cat.Stop)
	cat.Ingest(catalogRows())

	index, err := search.NewSearchIndex(search.Options{DataPath: t.TempDir(), Logger: logger})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = index.Close()
	})

	svc := NewEventService(cat, st, newTestUpstream(t, handler), index, nil, logger)
	require.NoError(t, svc.Reindex())
	return svc
}

func catalogRows() []upstream.RawEvent {
	return []upstream.RawEvent{
		{Name: "Warehouse Rave", Venue: "The Dock (Oakland)", RawDate: "2024/05/03", TicketInfo: "Tickets $20", Organizer: "Night Shift", Genre: "House"},
		{Name: "Open Air Sessions", Venue: "Pier 70 (SF)", RawDate: "2024/05/11", TicketInfo: "$30-50", Organizer: "Daybreak", Genre: "House, Techno"},
		{Name: "Basement Techno", Venue: "Underground (SF)", RawDate: "2024/05/18", Organizer: "Night Shift", Genre: "Techno"},
	}
}

// starHandler accepts star/unstar calls and counts them.
func starHandler(stars, unstars *atomic.Int64) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /star_event", func(w http.ResponseWriter, r *http.Request) {
		stars.Add(1)
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("POST /unstar_event", func(w http.ResponseWriter, r *http.Request) {
		unstars.Add(1)
		w.WriteHeader(http.StatusOK)
	})
	return mux
}

func TestQuery_ReturnsCatalogPage(t *testing.T) {
	svc := newTestEventService(t, http.NewServeMux())

	result, err := svc.Query(context.Background(), testHash, QueryRequest{
		Page:       1,
		PageSize:   2,
		KnownTotal: -1,
	})
	require.NoError(t, err)

	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 2, result.TotalPages)
	require.Len(t, result.Events, 2)
	assert.Equal(t, "Warehouse Rave", result.Events[0].Name)
}

func TestQuery_ResetsPageWhenTotalChanged(t *testing.T) {
	svc := newTestEventService(t, http.NewServeMux())

	// Client thinks there were 10 results and sits on page 2; the real
	// total is 3, so the page resets to 1.
	result, err := svc.Query(context.Background(), testHash, QueryRequest{
		Page:       2,
		PageSize:   2,
		KnownTotal: 10,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Page)
}

func TestQuery_FiltersApply(t *testing.T) {
	svc := newTestEventService(t, http.NewServeMux())

	result, err := svc.Query(context.Background(), testHash, QueryRequest{
		Filter:     domain.FilterState{Genres: []string{"Techno"}},
		Page:       1,
		PageSize:   50,
		KnownTotal: -1,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Total)
}

func TestFacets_ExcludesOwnDimension(t *testing.T) {
	svc := newTestEventService(t, http.NewServeMux())

	options, err := svc.Facets(context.Background(), testHash, FacetsRequest{
		Filter:    domain.FilterState{Genres: []string{"House"}},
		Dimension: domain.FacetGenre,
	})
	require.NoError(t, err)

	counts := make(map[string]int)
	for _, o := range options {
		counts[o.Name] = o.Count
	}
	// The genre selection does not constrain its own dimension.
	assert.Equal(t, 2, counts["House"])
	assert.Equal(t, 2, counts["Techno"])
}

func TestFacets_RejectsUnknownDimension(t *testing.T) {
	svc := newTestEventService(t, http.NewServeMux())

	_, err := svc.Facets(context.Background(), testHash, FacetsRequest{Dimension: "color"})
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))
}

func TestSearch_Typeahead(t *testing.T) {
	svc := newTestEventService(t, http.NewServeMux())

	result, err := svc.Search(context.Background(), "warehouse", 10)
	require.NoError(t, err)

	require.NotEmpty(t, result.Hits)
	assert.Equal(t, "Warehouse Rave", result.Hits[0].Name)
}

func TestToggleFavorite_OnAndOff(t *testing.T) {
	var stars, unstars atomic.Int64
	svc := newTestEventService(t, starHandler(&stars, &unstars))
	ctx := context.Background()

	events, _ := svc.catalog.Events()
	eventID := events[0].ID

	event, err := svc.ToggleFavorite(ctx, testPhone, testHash, eventID)
	require.NoError(t, err)
	assert.True(t, event.IsFavorite)
	assert.Equal(t, int64(1), stars.Load())

	favorites, err := svc.Favorites(ctx, testHash)
	require.NoError(t, err)
	require.Len(t, favorites, 1)
	assert.Equal(t, eventID, favorites[0].ID)

	event, err = svc.ToggleFavorite(ctx, testPhone, testHash, eventID)
	require.NoError(t, err)
	assert.False(t, event.IsFavorite)
	assert.Equal(t, int64(1), unstars.Load())

	favorites, err = svc.Favorites(ctx, testHash)
	require.NoError(t, err)
	assert.Empty(t, favorites)
}

func TestToggleFavorite_UnknownEvent(t *testing.T) {
	svc := newTestEventService(t, http.NewServeMux())

	_, err := svc.ToggleFavorite(context.Background(), testPhone, testHash, "evt-missing")
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))
}

func TestToggleFavorite_RollsBackOnUpstreamFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /star_event", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	svc := newTestEventService(t, mux)
	ctx := context.Background()

	events, _ := svc.catalog.Events()

	_, err := svc.ToggleFavorite(ctx, testPhone, testHash, events[0].ID)
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrUpstream))

	// The optimistic flip was rolled back.
	favorites, err := svc.Favorites(ctx, testHash)
	require.NoError(t, err)
	assert.Empty(t, favorites)
}

func TestToggleFavorite_ConcurrentToggleRejected(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})

	mux := http.NewServeMux()
	mux.HandleFunc("POST /star_event", func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-release
		w.WriteHeader(http.StatusOK)
	})
	svc := newTestEventService(t, mux)
	ctx := context.Background()

	events, _ := svc.catalog.Events()
	eventID := events[0].ID

	firstDone := make(chan error, 1)
	go func() {
		_, err := svc.ToggleFavorite(ctx, testPhone, testHash, eventID)
		firstDone <- err
	}()

	// Wait until the first toggle is inside the upstream call.
	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("first toggle never reached the upstream")
	}

	_, err := svc.ToggleFavorite(ctx, testPhone, testHash, eventID)
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrConflict))

	close(release)
	require.NoError(t, <-firstDone)
}

func TestToggleFavorite_DifferentEventsKeepBoth(t *testing.T) {
	// Both toggles sit inside the upstream call at the same time; the
	// overlay writes on either side must not overwrite each other.
	var entered atomic.Int64
	release := make(chan struct{})

	mux := http.NewServeMux()
	mux.HandleFunc("POST /star_event", func(w http.ResponseWriter, r *http.Request) {
		if entered.Add(1) == 2 {
			close(release)
		}
		select {
		case <-release:
		case <-time.After(5 * time.Second):
		}
		w.WriteHeader(http.StatusOK)
	})
	svc := newTestEventService(t, mux)
	ctx := context.Background()

	events, _ := svc.catalog.Events()

	errs := make(chan error, 2)
	for _, id := range []string{events[0].ID, events[1].ID} {
		go func(eventID string) {
			_, err := svc.ToggleFavorite(ctx, testPhone, testHash, eventID)
			errs <- err
		}(id)
	}
	require.NoError(t, <-errs)
	require.NoError(t, <-errs)

	favorites, err := svc.Favorites(ctx, testHash)
	require.NoError(t, err)
	assert.Len(t, favorites, 2)
}

func TestToggleKey_AddThenRemoveRestoresSet(t *testing.T) {
	keys := []string{"a", "b"}

	added := toggleKey(keys, "c")
	assert.ElementsMatch(t, []string{"a", "b", "c"}, added)

	removed := toggleKey(added, "c")
	assert.ElementsMatch(t, keys, removed)

	// The input slice is never mutated.
	assert.Equal(t, []string{"a", "b"}, keys)

	// Removal works from the middle of the slice too.
	assert.ElementsMatch(t, []string{"a", "c"}, toggleKey([]string{"a", "b", "c"}, "b"))
	assert.ElementsMatch(t, []string{"x"}, toggleKey(nil, "x"))
}

func TestQuery_FavoritesOnly(t *testing.T) {
	var stars, unstars atomic.Int64
	svc := newTestEventService(t, starHandler(&stars, &unstars))
	ctx := context.Background()

	events, _ := svc.catalog.Events()
	_, err := svc.ToggleFavorite(ctx, testPhone, testHash, events[1].ID)
	require.NoError(t, err)

	result, err := svc.Query(ctx, testHash, QueryRequest{
		Filter:     domain.FilterState{FavoritesOnly: true},
		Page:       1,
		PageSize:   50,
		KnownTotal: -1,
	})
	require.NoError(t, err)

	require.Equal(t, 1, result.Total)
	assert.Equal(t, events[1].ID, result.Events[0].ID)
	assert.True(t, result.Events[0].IsFavorite)
}

func TestShared_SplitsUpcomingAndPast(t *testing.T) {
	future1 := time.Now().AddDate(0, 0, 7).Format("2006/1/2")
	future2 := time.Now().AddDate(0, 0, 2).Format("2006/1/2")
	past := time.Now().AddDate(0, 0, -7).Format("2006/1/2")

	mux := http.NewServeMux()
	mux.HandleFunc("POST /get_name", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"name": "Alex"})
	})
	mux.HandleFunc("GET /favorite_events_by_hash", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"success": true,
			"data": []map[string]any{
				{"name": "Later Show", "venue": "The Dock (Oakland)", "raw_date": future1},
				{"name": "Old Show", "venue": "Pier 70 (SF)", "raw_date": past},
				{"name": "Soon Show", "venue": "Underground (SF)", "raw_date": future2},
				{"name": "Undated Show", "venue": "Somewhere"},
			},
		})
	})
	svc := newTestEventService(t, mux)

	view, err := svc.Shared(context.Background(), "shared-hash")
	require.NoError(t, err)

	assert.Equal(t, "Alex", view.Name)

	// Upcoming sorts soonest first with undated events last.
	require.Len(t, view.Upcoming, 3)
	assert.Equal(t, "Soon Show", view.Upcoming[0].Name)
	assert.Equal(t, "Later Show", view.Upcoming[1].Name)
	assert.Equal(t, "Undated Show", view.Upcoming[2].Name)

	require.Len(t, view.Past, 1)
	assert.Equal(t, "Old Show", view.Past[0].Name)

	// Everything on a shared page is a favorite by definition.
	for _, e := range view.Upcoming {
		assert.True(t, e.IsFavorite)
	}
}

func TestCatalogStats(t *testing.T) {
	svc := newTestEventService(t, http.NewServeMux())

	stats := svc.CatalogStats()
	assert.Equal(t, 3, stats.Events)
}
