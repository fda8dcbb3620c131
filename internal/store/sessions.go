package store

import (
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/sproutme/sprout-server/internal/domain"
)

// SaveSession persists a session record with a TTL matching its expiry,
// so revoked-by-time sessions disappear without a sweeper.
func (s *Store) SaveSession(session *domain.Session) error {
	if session.ID == "" {
		return ErrInvalidInput.WithMessage("session ID is required")
	}

	data, err := marshal(session)
	if err != nil {
		return err
	}

	key := buildKey(prefixSession, session.ID)
	defer releaseKey(key)

	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return ErrInvalidInput.WithMessage("session already expired")
	}

	return s.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry(append([]byte(nil), key...), data).WithTTL(ttl)
		return txn.SetEntry(entry)
	})
}

// GetSession retrieves a session by ID.
func (s *Store) GetSession(id string) (*domain.Session, error) {
	key := buildKey(prefixSession, id)
	defer releaseKey(key)

	var session domain.Session
	if err := s.get(key, &session); err != nil {
		return nil, translateGet(err)
	}
	return &session, nil
}

// DeleteSession removes a session, invalidating its token immediately.
func (s *Store) DeleteSession(id string) error {
	key := buildKey(prefixSession, id)
	defer releaseKey(key)
	return s.delete(key)
}
