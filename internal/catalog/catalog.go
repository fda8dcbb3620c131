// Package catalog maintains the in-memory event catalog: ingestion from
// the upstream API, synthetic identifier assignment, revision tracking,
// and an optional watched seed file for development.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/sproutme/sprout-server/internal/domain"
	"github.com/sproutme/sprout-server/internal/id"
	"github.com/sproutme/sprout-server/internal/store"
	"github.com/sproutme/sprout-server/internal/upstream"
)

// Catalog holds the current event list. Reads are cheap and lock-free
// callers get a shared immutable slice; every ingestion swaps in a fresh
// slice under a new revision.
type Catalog struct {
	client *upstream.Client
	store  *store.Store
	logger *slog.Logger

	refreshInterval time.Duration

	mu        sync.RWMutex
	events    []domain.Event
	revision  uint64
	fetchedAt time.Time
	// ids maps composite event keys to synthetic IDs so an event keeps
	// its ID across refreshes.
	ids map[string]string

	stopOnce sync.Once
	done     chan struct{}
}

// Config holds catalog settings.
type Config struct {
	RefreshInterval time.Duration
}

// New creates a catalog. The upstream client may be nil when a seed file
// is the only source. Call Start to begin periodic refreshes.
func New(client *upstream.Client, st *store.Store, cfg Config, logger *slog.Logger) *Catalog {
	if cfg.RefreshInterval <= 0 {
		cfg.RefreshInterval = 15 * time.Minute
	}
	return &Catalog{
		client:          client,
		store:           st,
		logger:          logger,
		refreshInterval: cfg.RefreshInterval,
		ids:             make(map[string]string),
		done:            make(chan struct{}),
	}
}

// Start warms the catalog and begins periodic refreshes. The persisted
// snapshot serves immediately; a fresh upstream fetch follows.
func (c *Catalog) Start(ctx context.Context) {
	if snapshot, err := c.store.GetCatalogSnapshot(); err == nil {
		c.restore(snapshot)
		c.logger.Info("Catalog restored from snapshot",
			"events", len(snapshot.Events),
			"revision", snapshot.Revision,
		)
	}

	if c.client == nil {
		return
	}

	if err := c.Refresh(ctx); err != nil {
		c.logger.Warn("Initial catalog fetch failed, serving snapshot", "error", err)
	}

	go c.refreshLoop(ctx)
}

// Stop halts the refresh loop.
func (c *Catalog) Stop() {
	c.stopOnce.Do(func() {
		close(c.done)
	})
}

func (c *Catalog) refreshLoop(ctx context.Context) {
	ticker := time.NewTicker(c.refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := c.Refresh(ctx); err != nil {
				c.logger.Error("Catalog refresh failed", "error", err)
			}
		case <-c.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Refresh fetches the catalog from the upstream and ingests it.
func (c *Catalog) Refresh(ctx context.Context) error {
	if c.client == nil {
		return fmt.Errorf("no upstream configured")
	}

	raw, err := c.client.ListEvents(ctx, "")
	if err != nil {
		return fmt.Errorf("fetch events: %w", err)
	}

	c.Ingest(raw)
	return nil
}

// Ingest replaces the catalog with the given upstream rows. Each row
// gets a synthetic ID, reusing the ID of any previously seen event with
// the same composite key so references stay stable across refreshes.
func (c *Catalog) Ingest(raw []upstream.RawEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()

	events := make([]domain.Event, 0, len(raw))
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
		}

		key := e.Key()
		eventID, ok := c.ids[key]
		if !ok {
			eventID = id.MustGenerate("evt")
			c.ids[key] = eventID
		}
		e.ID = eventID

		events = append(events, e)
	}

	c.events = events
	c.revision++
	c.fetchedAt = time.Now()

	c.logger.Info("Catalog ingested",
		"events", len(events),
		"revision", c.revision,
	)

	if err := c.store.SaveCatalogSnapshot(&store.CatalogSnapshot{
		Events:    events,
		Revision:  c.revision,
		FetchedAt: c.fetchedAt,
	}); err != nil {
		c.logger.Error("Failed to persist catalog snapshot", "error", err)
	}
}

// restore loads a persisted snapshot without bumping the revision.
func (c *Catalog) restore(snapshot *store.CatalogSnapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.events = snapshot.Events
	c.revision = snapshot.Revision
	c.fetchedAt = snapshot.FetchedAt
	for _, e := range snapshot.Events {
		c.ids[e.Key()] = e.ID
	}
}

// Events returns the current catalog and its revision. The slice is
// shared and must be treated as read-only.
func (c *Catalog) Events() ([]domain.Event, uint64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.events, c.revision
}

// Revision returns the current catalog revision as a string, for use in
// selector cache keys.
func (c *Catalog) Revision() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return strconv.FormatUint(c.revision, 10)
}

// Lookup finds an event by synthetic ID.
func (c *Catalog) Lookup(eventID string) (domain.Event, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, e := range c.events {
		if e.ID == eventID {
			return e, true
		}
	}
	return domain.Event{}, false
}

// Stats describes the catalog's current state.
type Stats struct {
	Events    int       `json:"events"`
	Revision  uint64    `json:"revision"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Stats returns the catalog's current state.
func (c *Catalog) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Stats{
		Events:    len(c.events),
		Revision:  c.revision,
		FetchedAt: c.fetchedAt,
	}
}
