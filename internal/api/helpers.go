package api

import (
	"context"
	"errors"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/sproutme/sprout-server/internal/store"
)

// authenticateRequest validates the Authorization header for
// huma-registered operations and returns the caller's phone hash.
func (s *Server) authenticateRequest(ctx context.Context, authHeader string) (string, error) {
	if authHeader == "" {
		return "", huma.Error401Unauthorized("Missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", huma.Error401Unauthorized("Invalid authorization header format")
	}

	claims, err := s.authService.VerifySession(ctx, parts[1])
	if err != nil {
		return "", huma.Error401Unauthorized("Invalid or expired session")
	}

	return claims.PhoneHash, nil
}

// isStoreNotFound reports whether the error is the store's 404.
func isStoreNotFound(err error) bool {
	var storeErr *store.Error
	return errors.As(err, &storeErr) && storeErr.HTTPCode() == 404
}
