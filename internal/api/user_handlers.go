package api

import (
	"encoding/json/v2"
	"net/http"

	"github.com/sproutme/sprout-server/internal/http/response"
	"github.com/sproutme/sprout-server/internal/service"
)

// handleGetCurrentUser returns the caller's profile.
// GET /api/v1/users/me
func (s *Server) handleGetCurrentUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := s.userService.Profile(ctx, getPhoneNumber(ctx), getPhoneHash(ctx))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, user, s.logger)
}

// handleUpdateName sets the caller's display name.
// PUT /api/v1/users/me/name
func (s *Server) handleUpdateName(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req service.UpdateNameRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	user, err := s.userService.UpdateName(ctx, getPhoneNumber(ctx), getPhoneHash(ctx), req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, user, s.logger)
}

// handleUpdateGenres replaces the caller's preferred genres.
// PUT /api/v1/users/me/genres
func (s *Server) handleUpdateGenres(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req service.UpdateGenresRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	user, err := s.userService.UpdateGenres(ctx, getPhoneNumber(ctx), getPhoneHash(ctx), req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, user, s.logger)
}

// handleUpdateCities replaces the caller's preferred cities.
// PUT /api/v1/users/me/cities
func (s *Server) handleUpdateCities(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req service.UpdateCitiesRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	user, err := s.userService.UpdateCities(ctx, getPhoneNumber(ctx), getPhoneHash(ctx), req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, user, s.logger)
}

// handleGetSettings returns the caller's stored settings.
// GET /api/v1/users/me/settings
func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	settings, err := s.userService.Settings(ctx, getPhoneHash(ctx))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, settings, s.logger)
}

// handleUpdateSettings replaces the caller's stored settings.
// PUT /api/v1/users/me/settings
func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req service.UpdateSettingsRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	settings, err := s.userService.UpdateSettings(ctx, getPhoneHash(ctx), req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, settings, s.logger)
}
