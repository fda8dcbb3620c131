package api

import (
	"encoding/json/v2"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sproutme/sprout-server/internal/http/response"
	"github.com/sproutme/sprout-server/internal/service"
)

// handleQueryEvents returns one page of filtered events.
// POST /api/v1/events/query
func (s *Server) handleQueryEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req := service.QueryRequest{KnownTotal: -1}
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	result, err := s.eventService.Query(ctx, getPhoneHash(ctx), req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, result, s.logger)
}

// handleEventFacets returns the selectable options of one dimension.
// POST /api/v1/events/facets
func (s *Server) handleEventFacets(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req service.FacetsRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	options, err := s.eventService.Facets(ctx, getPhoneHash(ctx), req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, map[string]any{
		"dimension": req.Dimension,
		"options":   options,
	}, s.logger)
}

// handleSearchEvents runs a typeahead search.
// GET /api/v1/events/search?q=...&limit=...
func (s *Server) handleSearchEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		response.BadRequest(w, "Query parameter q is required", s.logger)
		return
	}

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil {
			limit = parsed
		}
	}

	result, err := s.eventService.Search(r.Context(), q, limit)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, result, s.logger)
}

// handleToggleFavorite flips an event's favorite state for the caller.
// POST /api/v1/events/{id}/favorite
func (s *Server) handleToggleFavorite(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	eventID := chi.URLParam(r, "id")
	if eventID == "" {
		response.BadRequest(w, "Event ID is required", s.logger)
		return
	}

	event, err := s.eventService.ToggleFavorite(ctx, getPhoneNumber(ctx), getPhoneHash(ctx), eventID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, event, s.logger)
}

// handleListFavorites returns the caller's favorited events.
// GET /api/v1/favorites
func (s *Server) handleListFavorites(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	events, err := s.eventService.Favorites(ctx, getPhoneHash(ctx))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, map[string]any{"events": events}, s.logger)
}

// handleShared returns the read-only favorites page for a phone hash.
// GET /api/v1/shared/{phoneHash}
func (s *Server) handleShared(w http.ResponseWriter, r *http.Request) {
	phoneHash := chi.URLParam(r, "phoneHash")
	if phoneHash == "" {
		response.BadRequest(w, "Phone hash is required", s.logger)
		return
	}

	view, err := s.eventService.Shared(r.Context(), phoneHash)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, view, s.logger)
}
