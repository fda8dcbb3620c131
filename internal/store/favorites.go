package store

import "time"

// FavoriteSet is a user's favorite overlay: the composite event keys
// they have starred, as this server last saw them. The upstream remains
// the store of record; the overlay is what makes toggles feel instant
// and what the version-keyed selector cache invalidates on.
type FavoriteSet struct {
	PhoneHash string   `json:"phone_hash"`
	Keys      []string `json:"keys"`
	// Version increments on every change so cached filter results keyed
	// on it go stale immediately.
	Version   uint64    `json:"version"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Has reports whether the composite event key is in the set.
func (f *FavoriteSet) Has(eventKey string) bool {
	for _, k := range f.Keys {
		if k == eventKey {
			return true
		}
	}
	return false
}

// SaveFavorites persists a user's favorite overlay, bumping its version.
func (s *Store) SaveFavorites(set *FavoriteSet) error {
	if set.PhoneHash == "" {
		return ErrInvalidInput.WithMessage("phone hash is required")
	}

	set.Version++
	set.UpdatedAt = time.Now()

	key := buildKey(prefixFavorites, set.PhoneHash)
	defer releaseKey(key)
	return s.set(key, set)
}

// GetFavorites retrieves a user's favorite overlay. Users without one
// get an empty set at version zero.
func (s *Store) GetFavorites(phoneHash string) (*FavoriteSet, error) {
	key := buildKey(prefixFavorites, phoneHash)
	defer releaseKey(key)

	var set FavoriteSet
	err := s.get(key, &set)
	if translateGet(err) == ErrNotFound {
		return &FavoriteSet{PhoneHash: phoneHash}, nil
	}
	if err != nil {
		return nil, err
	}
	return &set, nil
}

// DeleteFavorites removes a user's favorite overlay.
func (s *Store) DeleteFavorites(phoneHash string) error {
	key := buildKey(prefixFavorites, phoneHash)
	defer releaseKey(key)
	return s.delete(key)
}
