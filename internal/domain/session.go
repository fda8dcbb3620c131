package domain

import "time"

// Session is a server-side login record backing a session token.
// Logout deletes it, which invalidates the token even before expiry.
type Session struct {
	ID          string    `json:"id"` // UUID
	PhoneNumber string    `json:"phone_number"`
	PhoneHash   string    `json:"phone_hash"`
	CreatedAt   time.Time `json:"created_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Expired reports whether the session has passed its expiry.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
