package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/sproutme/sprout-server/internal/http/response"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	contextKeyPhoneNumber contextKey = "phone_number"
	contextKeyPhoneHash   contextKey = "phone_hash"
	contextKeySessionID   contextKey = "session_id"
)

// requireAuth validates the session token and attaches the caller's
// identity to the request context.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			response.Unauthorized(w, "Missing authorization header", s.logger)
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(w, "Invalid authorization header format", s.logger)
			return
		}

		claims, err := s.authService.VerifySession(r.Context(), parts[1])
		if err != nil {
			response.Unauthorized(w, "Invalid or expired session", s.logger)
			return
		}

		ctx := context.WithValue(r.Context(), contextKeyPhoneNumber, claims.PhoneNumber)
		ctx = context.WithValue(ctx, contextKeyPhoneHash, claims.PhoneHash)
		ctx = context.WithValue(ctx, contextKeySessionID, claims.SessionID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// getPhoneNumber extracts the authenticated phone number from context.
// Returns empty string if not authenticated.
func getPhoneNumber(ctx context.Context) string {
	if v, ok := ctx.Value(contextKeyPhoneNumber).(string); ok {
		return v
	}
	return ""
}

// getPhoneHash extracts the authenticated phone hash from context.
func getPhoneHash(ctx context.Context) string {
	if v, ok := ctx.Value(contextKeyPhoneHash).(string); ok {
		return v
	}
	return ""
}

// getSessionID extracts the session ID from context.
func getSessionID(ctx context.Context) string {
	if v, ok := ctx.Value(contextKeySessionID).(string); ok {
		return v
	}
	return ""
}
