package store

import (
	"time"

	"github.com/sproutme/sprout-server/internal/domain"
)

// SaveSettings persists a user's settings.
func (s *Store) SaveSettings(settings *domain.UserSettings) error {
	if settings.PhoneHash == "" {
		return ErrInvalidInput.WithMessage("phone hash is required")
	}

	settings.UpdatedAt = time.Now()

	key := buildKey(prefixSettings, settings.PhoneHash)
	defer releaseKey(key)
	return s.set(key, settings)
}

// GetSettings retrieves a user's settings. Users who never saved any get
// the defaults (dark mode on, no filter snapshot) rather than an error.
func (s *Store) GetSettings(phoneHash string) (*domain.UserSettings, error) {
	key := buildKey(prefixSettings, phoneHash)
	defer releaseKey(key)

	var settings domain.UserSettings
	err := s.get(key, &settings)
	if translateGet(err) == ErrNotFound {
		return domain.NewUserSettings(phoneHash), nil
	}
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

// DeleteSettings removes a user's settings.
func (s *Store) DeleteSettings(phoneHash string) error {
	key := buildKey(prefixSettings, phoneHash)
	defer releaseKey(key)
	return s.delete(key)
}
