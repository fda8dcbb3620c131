package store

import (
	"time"

	"github.com/sproutme/sprout-server/internal/domain"
)

const catalogSnapshotKey = "snapshot"

// CatalogSnapshot is the last ingested catalog, persisted so a restart
// serves events immediately instead of waiting on the upstream.
type CatalogSnapshot struct {
	Events    []domain.Event `json:"events"`
	Revision  uint64         `json:"revision"`
	FetchedAt time.Time      `json:"fetched_at"`
}

// SaveCatalogSnapshot persists the catalog snapshot.
func (s *Store) SaveCatalogSnapshot(snapshot *CatalogSnapshot) error {
	key := buildKey(prefixCatalog, catalogSnapshotKey)
	defer releaseKey(key)
	return s.set(key, snapshot)
}

// GetCatalogSnapshot retrieves the last persisted catalog snapshot.
func (s *Store) GetCatalogSnapshot() (*CatalogSnapshot, error) {
	key := buildKey(prefixCatalog, catalogSnapshotKey)
	defer releaseKey(key)

	var snapshot CatalogSnapshot
	if err := s.get(key, &snapshot); err != nil {
		return nil, translateGet(err)
	}
	return &snapshot, nil
}
