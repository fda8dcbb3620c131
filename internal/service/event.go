package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/sproutme/sprout-server/internal/audit"
	"github.com/sproutme/sprout-server/internal/catalog"
	"github.com/sproutme/sprout-server/internal/domain"
	domainerrors "github.com/sproutme/sprout-server/internal/errors"
	"github.com/sproutme/sprout-server/internal/filter"
	"github.com/sproutme/sprout-server/internal/search"
	"github.com/sproutme/sprout-server/internal/store"
	"github.com/sproutme/sprout-server/internal/upstream"
)

// EventService answers event queries against the catalog with the
// caller's favorite overlay applied, and owns favorite toggling.
type EventService struct {
	catalog  *catalog.Catalog
	store    *store.Store
	client   *upstream.Client
	index    *search.SearchIndex
	selector *filter.Selector
	trail    *audit.Trail
	logger   *slog.Logger

	// inflight guards per-user-per-event toggles. A second toggle for
	// the same event while one is still running is rejected rather than
	// queued; the outcome of racing star/unstar calls is undefined
	// upstream. userMu serializes each user's overlay writes so toggles
	// on different events never lose each other's updates.
	mu       sync.Mutex
	inflight map[string]struct{}
	userMu   map[string]*sync.Mutex
}

// NewEventService creates a new event service.
func NewEventService(
	cat *catalog.Catalog,
	st *store.Store,
	client *upstream.Client,
	index *search.SearchIndex,
	trail *audit.Trail,
	logger *slog.Logger,
) *EventService {
	return &EventService{
		catalog:  cat,
		store:    st,
		client:   client,
		index:    index,
		selector: filter.NewSelector(),
		trail:    trail,
		logger:   logger,
		inflight: make(map[string]struct{}),
		userMu:   make(map[string]*sync.Mutex),
	}
}

// QueryRequest is a filtered, paginated event query.
type QueryRequest struct {
	Filter   domain.FilterState `json:"filter"`
	Page     int                `json:"page"`
	PageSize int                `json:"page_size"`
	// KnownTotal is the total the client last rendered, -1 when unknown.
	// A mismatch with the current total resets the page to 1 so a
	// filter change never strands the client past the end.
	KnownTotal int `json:"known_total"`
}

// FacetsRequest asks for the selectable options of one dimension.
type FacetsRequest struct {
	Filter    domain.FilterState    `json:"filter"`
	Dimension domain.FacetDimension `json:"dimension"`
}

// SharedView is a read-only favorites page for a shared phone hash.
type SharedView struct {
	Name     string         `json:"name"`
	Upcoming []domain.Event `json:"upcoming"`
	Past     []domain.Event `json:"past"`
}

// Query returns one page of events matching the filter, with the
// caller's favorites marked.
func (s *EventService) Query(ctx context.Context, phoneHash string, req QueryRequest) (*filter.PageResult, error) {
	if req.PageSize <= 0 {
		req.PageSize = 50
	}

	overlaid, version, err := s.userView(phoneHash)
	if err != nil {
		return nil, err
	}

	filtered := s.selector.Apply(version, overlaid, req.Filter)
	page := filter.ResolvePage(req.Page, req.KnownTotal, len(filtered))
	result := filter.Paginate(filtered, page, req.PageSize)
	return &result, nil
}

// Facets returns the options of one dimension with counts reflecting
// every other active filter. The dimension's own selections are left
// out of the tally so picking a value never hides its siblings.
func (s *EventService) Facets(ctx context.Context, phoneHash string, req FacetsRequest) ([]domain.FacetOption, error) {
	if !req.Dimension.Valid() {
		return nil, domainerrors.Validationf("unknown facet dimension %q", req.Dimension)
	}

	overlaid, _, err := s.userView(phoneHash)
	if err != nil {
		return nil, err
	}

	return filter.Facets(overlaid, req.Filter, req.Dimension), nil
}

// Search runs a typeahead query against the search index.
func (s *EventService) Search(ctx context.Context, q string, limit int) (*search.SearchResult, error) {
	params := search.DefaultSearchParams()
	params.Query = q
	if limit > 0 {
		params.Limit = limit
	}

	result, err := s.index.Search(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("search events: %w", err)
	}
	return result, nil
}

// ToggleFavorite flips an event's favorite state for the user. The
// overlay is updated first so the change reads back immediately; an
// upstream failure rolls it back and surfaces the error.
func (s *EventService) ToggleFavorite(ctx context.Context, phoneNumber, phoneHash, eventID string) (*domain.Event, error) {
	event, ok := s.catalog.Lookup(eventID)
	if !ok {
		return nil, domainerrors.NotFoundf("event %s not found", eventID)
	}

	flightKey := phoneHash + "\x1f" + eventID
	s.mu.Lock()
	if _, busy := s.inflight[flightKey]; busy {
		s.mu.Unlock()
		return nil, domainerrors.Conflict("a toggle for this event is already in progress")
	}
	s.inflight[flightKey] = struct{}{}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.inflight, flightKey)
		s.mu.Unlock()
	}()

	// Optimistic flip.
	eventKey := event.Key()
	favoriting, err := s.flipFavorite(phoneHash, eventKey)
	if err != nil {
		return nil, err
	}

	meta := upstream.EventMetadata{
		Name:    event.Name,
		Venue:   event.Venue,
		Date:    event.Date,
		RawDate: event.RawDate,
		Genre:   event.Genre,
	}
	if favoriting {
		err = s.client.StarEvent(ctx, phoneNumber, event.Name, meta)
	} else {
		err = s.client.UnstarEvent(ctx, phoneNumber, meta)
	}
	if err != nil {
		// Roll back the overlay; the upstream never saw the flip.
		if _, flipErr := s.flipFavorite(phoneHash, eventKey); flipErr != nil {
			s.logger.Error("Failed to roll back favorite overlay",
				"phone_hash", phoneHash,
				"event_id", eventID,
				"error", flipErr,
			)
		}
		s.recordToggle(ctx, phoneHash, eventID, event.Name, favoriting, audit.OutcomeFailure)
		return nil, upstreamError("toggle favorite", err)
	}

	s.recordToggle(ctx, phoneHash, eventID, event.Name, favoriting, audit.OutcomeSuccess)

	event.IsFavorite = favoriting
	return &event, nil
}

// Favorites returns the user's favorited events from the catalog.
func (s *EventService) Favorites(ctx context.Context, phoneHash string) ([]domain.Event, error) {
	overlaid, _, err := s.userView(phoneHash)
	if err != nil {
		return nil, err
	}

	favorites := make([]domain.Event, 0)
	for _, e := range overlaid {
		if e.IsFavorite {
			favorites = append(favorites, e)
		}
	}
	return favorites, nil
}

// Shared builds the read-only favorites page for a shared phone hash.
// Upcoming events sort soonest first, past events most recent first.
// Events whose date cannot be parsed count as upcoming and sort last.
func (s *EventService) Shared(ctx context.Context, phoneHash string) (*SharedView, error) {
	name, err := s.client.GetName(ctx, phoneHash)
	if err != nil {
		return nil, upstreamError("get shared name", err)
	}

	raw, err := s.client.FavoriteEventsByHash(ctx, phoneHash)
	if err != nil {
		return nil, upstreamError("get shared favorites", err)
	}

	today := startOfToday()
	view := &SharedView{
		Name:     name,
		Upcoming: make([]domain.Event, 0, len(raw)),
		Past:     make([]domain.Event, 0),
	}

	for _, r := range raw {
		e := domain.Event{
			Name:       r.Name,
			Venue:      r.Venue,
			Date:       r.Date,
			RawDate:    r.RawDate,
			TicketInfo: r.TicketInfo,
			Organizer:  r.Organizer,
			Genre:      r.Genre,
			EventURL:   r.EventURL,
			IsFavorite: true,
		}
		when, ok := e.ParsedDate()
		if !ok || !when.Before(today) {
			view.Upcoming = append(view.Upcoming, e)
		} else {
			view.Past = append(view.Past, e)
		}
	}

	sort.SliceStable(view.Upcoming, func(i, j int) bool {
		di, iok := view.Upcoming[i].ParsedDate()
		dj, jok := view.Upcoming[j].ParsedDate()
		if iok != jok {
			return iok // dated events before undated ones
		}
		if !iok {
			return false
		}
		return di.Before(dj)
	})
	sort.SliceStable(view.Past, func(i, j int) bool {
		di, _ := view.Past[i].ParsedDate()
		dj, _ := view.Past[j].ParsedDate()
		return di.After(dj)
	})

	return view, nil
}

// RefreshCatalog forces an upstream fetch and reindexes search.
func (s *EventService) RefreshCatalog(ctx context.Context) error {
	if err := s.catalog.Refresh(ctx); err != nil {
		return upstreamError("refresh catalog", err)
	}
	return s.Reindex()
}

// Reindex rebuilds the search index from the current catalog.
func (s *EventService) Reindex() error {
	events, _ := s.catalog.Events()

	docs := make([]*search.SearchDocument, 0, len(events))
	for i := range events {
		docs = append(docs, search.EventToSearchDocument(&events[i]))
	}

	if err := s.index.Rebuild(); err != nil {
		return fmt.Errorf("rebuild index: %w", err)
	}
	if err := s.index.IndexDocuments(docs); err != nil {
		return fmt.Errorf("index events: %w", err)
	}

	s.logger.Info("Search index rebuilt", "events", len(docs))
	return nil
}

// CatalogStats exposes catalog state for the admin surface.
func (s *EventService) CatalogStats() catalog.Stats {
	return s.catalog.Stats()
}

// userView returns the catalog with the user's favorites marked, plus
// the cache version covering both catalog revision and overlay state.
func (s *EventService) userView(phoneHash string) ([]domain.Event, string, error) {
	events, revision := s.catalog.Events()

	favorites, err := s.store.GetFavorites(phoneHash)
	if err != nil {
		return nil, "", fmt.Errorf("get favorites: %w", err)
	}

	overlaid := make([]domain.Event, len(events))
	copy(overlaid, events)
	for i := range overlaid {
		overlaid[i].IsFavorite = favorites.Has(overlaid[i].Key())
	}

	version := strconv.FormatUint(revision, 10) + ":" + phoneHash + ":" + strconv.FormatUint(favorites.Version, 10)
	return overlaid, version, nil
}

// flipFavorite toggles one key in the user's overlay and reports whether
// the key is present afterwards. The whole read-modify-write runs under
// the user's lock, so toggles on different events interleave without
// losing each other's keys. Called twice on upstream failure, once to
// flip and once to flip back; the second call re-reads current state
// rather than restoring a stale snapshot.
func (s *EventService) flipFavorite(phoneHash, eventKey string) (bool, error) {
	mu := s.userLock(phoneHash)
	mu.Lock()
	defer mu.Unlock()

	favorites, err := s.store.GetFavorites(phoneHash)
	if err != nil {
		return false, fmt.Errorf("get favorites: %w", err)
	}

	favorites.Keys = toggleKey(favorites.Keys, eventKey)
	if err := s.store.SaveFavorites(favorites); err != nil {
		return false, fmt.Errorf("save favorites: %w", err)
	}
	return favorites.Has(eventKey), nil
}

func (s *EventService) userLock(phoneHash string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	mu, ok := s.userMu[phoneHash]
	if !ok {
		mu = &sync.Mutex{}
		s.userMu[phoneHash] = mu
	}
	return mu
}

// recordToggle appends to the audit trail; failures are logged only.
func (s *EventService) recordToggle(ctx context.Context, phoneHash, eventID, eventName string, favorited bool, outcome string) {
	if s.trail == nil {
		return
	}
	if err := s.trail.RecordFavoriteToggle(ctx, phoneHash, eventID, eventName, favorited, outcome); err != nil {
		s.logger.Warn("Failed to record favorite toggle", "event_id", eventID, "error", err)
	}
}

// toggleKey adds the key if absent or removes it if present.
func toggleKey(keys []string, key string) []string {
	for i, k := range keys {
		if k == key {
			out := make([]string, 0, len(keys)-1)
			out = append(out, keys[:i]...)
			return append(out, keys[i+1:]...)
		}
	}
	out := make([]string, 0, len(keys)+1)
	out = append(out, keys...)
	return append(out, key)
}

func startOfToday() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}
