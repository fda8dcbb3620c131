package store

import (
	"time"

	"github.com/sproutme/sprout-server/internal/domain"
)

// SaveUser caches a user profile, keyed by phone hash.
// The upstream remains the record of truth; this cache keeps profile
// reads off the network between logins.
func (s *Store) SaveUser(user *domain.User) error {
	if user.PhoneHash == "" {
		return ErrInvalidInput.WithMessage("phone hash is required")
	}

	user.UpdatedAt = time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = user.UpdatedAt
	}

	key := buildKey(prefixUser, user.PhoneHash)
	defer releaseKey(key)
	return s.set(key, user)
}

// GetUser retrieves a cached profile by phone hash.
func (s *Store) GetUser(phoneHash string) (*domain.User, error) {
	key := buildKey(prefixUser, phoneHash)
	defer releaseKey(key)

	var user domain.User
	if err := s.get(key, &user); err != nil {
		return nil, translateGet(err)
	}
	return &user, nil
}

// DeleteUser removes a cached profile. Logout calls this so no identity
// survives on this server past the session.
func (s *Store) DeleteUser(phoneHash string) error {
	key := buildKey(prefixUser, phoneHash)
	defer releaseKey(key)
	return s.delete(key)
}
