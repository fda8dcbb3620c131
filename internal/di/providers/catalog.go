package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/sproutme/sprout-server/internal/catalog"
	"github.com/sproutme/sprout-server/internal/config"
	"github.com/sproutme/sprout-server/internal/logger"
	"github.com/sproutme/sprout-server/internal/service"
)

// CatalogHandle wraps the catalog with its refresh context for lifecycle
// management.
type CatalogHandle struct {
	*catalog.Catalog
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *CatalogHandle) Shutdown() error {
	h.Stop()
	h.cancel()
	return nil
}

// ProvideCatalog provides the event catalog. When no upstream URL is
// configured the catalog runs seed-file only and never polls.
func ProvideCatalog(i do.Injector) (*CatalogHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	upstreamHandle := do.MustInvoke[*UpstreamHandle](i)

	client := upstreamHandle.Client
	if cfg.Upstream.BaseURL == "" {
		client = nil
	}

	cat := catalog.New(client, storeHandle.Store, catalog.Config{
		RefreshInterval: cfg.Catalog.RefreshInterval,
	}, log.Logger)

	ctx, cancel := context.WithCancel(context.Background())
	cat.Start(ctx)

	if cfg.Catalog.SeedFile != "" {
		go func() {
			if err := cat.WatchSeedFile(cfg.Catalog.SeedFile); err != nil {
				log.Error("Seed file watch failed", "path", cfg.Catalog.SeedFile, "error", err)
			}
		}()
	}

	return &CatalogHandle{Catalog: cat, cancel: cancel}, nil
}

// TriggerSearchReindexIfNeeded rebuilds the search index when it is empty
// but the catalog is not. Should be called after all services are wired.
func TriggerSearchReindexIfNeeded(i do.Injector) {
	eventService := do.MustInvoke[*service.EventService](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	docCount, _ := indexHandle.DocumentCount()
	if docCount > 0 {
		return
	}

	stats := eventService.CatalogStats()
	if stats.Events == 0 {
		return
	}

	log.Info("Search index is empty but the catalog is not, triggering reindex",
		"events", stats.Events,
	)

	go func() {
		if err := eventService.Reindex(); err != nil {
			log.Error("Initial search reindex failed", "error", err)
		} else {
			count, _ := indexHandle.DocumentCount()
			log.Info("Initial search reindex completed", "documents", count)
		}
	}()
}
