package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/sproutme/sprout-server/internal/catalog"
)

func (s *Server) registerAdminRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "refreshCatalog",
		Method:      http.MethodPost,
		Path:        "/api/v1/admin/catalog/refresh",
		Summary:     "Refresh the event catalog",
		Description: "Forces an upstream fetch and rebuilds the search index",
		Tags:        []string{"Admin"},
	}, s.handleRefreshCatalog)

	huma.Register(s.api, huma.Operation{
		OperationID: "catalogStats",
		Method:      http.MethodGet,
		Path:        "/api/v1/admin/catalog/stats",
		Summary:     "Catalog statistics",
		Description: "Returns the current catalog size, revision, and fetch time",
		Tags:        []string{"Admin"},
	}, s.handleCatalogStats)
}

// AuthHeaderInput carries the Authorization header for admin operations.
type AuthHeaderInput struct {
	Authorization string `header:"Authorization" doc:"Bearer session token"`
}

// RefreshCatalogOutput reports the catalog state after a forced refresh.
type RefreshCatalogOutput struct {
	Body struct {
		Stats      catalog.Stats `json:"stats"`
		DurationMs int64         `json:"duration_ms" doc:"Time the refresh took"`
	}
}

func (s *Server) handleRefreshCatalog(ctx context.Context, input *AuthHeaderInput) (*RefreshCatalogOutput, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	start := time.Now()
	if err := s.eventService.RefreshCatalog(ctx); err != nil {
		return nil, err
	}

	out := &RefreshCatalogOutput{}
	out.Body.Stats = s.eventService.CatalogStats()
	out.Body.DurationMs = time.Since(start).Milliseconds()
	return out, nil
}

// CatalogStatsOutput wraps catalog stats for Huma.
type CatalogStatsOutput struct {
	Body catalog.Stats
}

func (s *Server) handleCatalogStats(ctx context.Context, input *AuthHeaderInput) (*CatalogStatsOutput, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	return &CatalogStatsOutput{Body: s.eventService.CatalogStats()}, nil
}
