package auth

import (
	"encoding/json/v2"
	"fmt"
	"time"

	"aidanwoods.dev/go-paseto"

	"github.com/sproutme/sprout-server/internal/domain"
)

const (
	tokenIssuer   = "sprout-server"
	tokenAudience = "sprout-client"

	// PASETO v4 symmetric key requirements.
	keyBytesSize = 32 // 256 bits
)

// TokenService handles PASETO session token generation and verification.
type TokenService struct {
	symmetricKey    paseto.V4SymmetricKey
	sessionDuration time.Duration
}

// NewTokenService creates a new token service with the given key bytes.
func NewTokenService(key []byte, sessionDuration time.Duration) (*TokenService, error) {
	if len(key) != keyBytesSize {
		return nil, fmt.Errorf("PASETO v4 key must be exactly %d bytes, got %d", keyBytesSize, len(key))
	}

	symmetricKey, err := paseto.V4SymmetricKeyFromBytes(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create PASETO symmetric key: %w", err)
	}

	return &TokenService{
		symmetricKey:    symmetricKey,
		sessionDuration: sessionDuration,
	}, nil
}

// GenerateSessionToken creates a PASETO v4.local token bound to a session.
// The token carries the user's identity claims; the session record in the
// store is what logout revokes.
func (s *TokenService) GenerateSessionToken(session *domain.Session, user *domain.User) (string, error) {
	now := time.Now()

	token := paseto.NewToken()

	// Standard claims.
	token.SetIssuer(tokenIssuer)
	token.SetSubject(user.PhoneHash)
	token.SetAudience(tokenAudience)
	token.SetIssuedAt(now)
	token.SetNotBefore(now)
	token.SetExpiration(session.ExpiresAt)
	token.SetJti(session.ID)

	// Our custom claims.
	//nolint:errcheck // Token.Set only errors on invalid types, which we control
	_ = token.Set("session_id", session.ID)
	//nolint:errcheck // Token.Set only errors on invalid types, which we control
	_ = token.Set("phone_number", user.PhoneNumber)
	//nolint:errcheck // Token.Set only errors on invalid types, which we control
	_ = token.Set("phone_hash", user.PhoneHash)
	//nolint:errcheck // Token.Set only errors on invalid types, which we control
	_ = token.Set("name", user.Name)

	return token.V4Encrypt(s.symmetricKey, nil), nil
}

// VerifySessionToken verifies and parses a PASETO session token.
// Returns the claims if valid, or an error if they're invalid or expired.
func (s *TokenService) VerifySessionToken(tokenString string) (*SessionClaims, error) {
	parser := paseto.NewParser()

	// Validation rules matching the claims set above.
	parser.AddRule(paseto.ForAudience(tokenAudience))
	parser.AddRule(paseto.IssuedBy(tokenIssuer))
	parser.AddRule(paseto.NotExpired())
	parser.AddRule(paseto.ValidAt(time.Now()))

	// Parse and decrypt v4.local token.
	token, err := parser.ParseV4Local(s.symmetricKey, tokenString, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	var claims SessionClaims
	if err := json.Unmarshal(token.ClaimsJSON(), &claims); err != nil {
		return nil, fmt.Errorf("parse claims: %w", err)
	}

	return &claims, nil
}

// SessionDuration returns the configured session lifetime.
func (s *TokenService) SessionDuration() time.Duration {
	return s.sessionDuration
}
