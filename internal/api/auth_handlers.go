package api

import (
	"encoding/json/v2"
	"net/http"

	"github.com/sproutme/sprout-server/internal/http/response"
	"github.com/sproutme/sprout-server/internal/service"
)

// handleValidatePhone checks and canonicalizes a phone number.
// POST /api/v1/auth/phone
func (s *Server) handleValidatePhone(w http.ResponseWriter, r *http.Request) {
	var req service.ValidatePhoneRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	result, err := s.authService.ValidatePhone(r.Context(), req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, result, s.logger)
}

// handleSendCode requests OTP delivery.
// POST /api/v1/auth/code
func (s *Server) handleSendCode(w http.ResponseWriter, r *http.Request) {
	var req service.SendCodeRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	if err := s.authService.SendCode(r.Context(), req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, map[string]string{"status": "code sent"}, s.logger)
}

// handleVerifyCode checks the OTP and opens a session.
// POST /api/v1/auth/verify
func (s *Server) handleVerifyCode(w http.ResponseWriter, r *http.Request) {
	var req service.VerifyCodeRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	result, err := s.authService.VerifyCode(r.Context(), req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, result, s.logger)
}

// handleLogout revokes the caller's session.
// POST /api/v1/auth/logout
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := s.authService.Logout(ctx, getSessionID(ctx), getPhoneHash(ctx)); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.NoContent(w)
}
