package auth

import "time"

// SessionClaims are the decrypted claims of a session token.
type SessionClaims struct {
	// Standard PASETO claims.
	Issuer     string    `json:"iss"`
	Subject    string    `json:"sub"`
	Audience   string    `json:"aud"`
	Expiration time.Time `json:"exp"`
	IssuedAt   time.Time `json:"iat"`
	NotBefore  time.Time `json:"nbf"`
	TokenID    string    `json:"jti"`

	// Application claims.
	SessionID   string `json:"session_id"`
	PhoneNumber string `json:"phone_number"`
	PhoneHash   string `json:"phone_hash"`
	Name        string `json:"name"`
}
