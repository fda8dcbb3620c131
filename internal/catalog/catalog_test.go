package catalog

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sproutme/sprout-server/internal/store"
	"github.com/sproutme/sprout-server/internal/upstream"
)

func setupTestCatalog(t *testing.T) *Catalog {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	st, err := store.New(t.TempDir(), logger)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, st.Close())
	})

	c := New(nil, st, Config{}, logger)
	t.Cleanup(c.Stop)
	return c
}

func rawEvents() []upstream.RawEvent {
	return []upstream.RawEvent{
		{Name: "Warehouse Rave", Venue: "The Dock (Oakland)", RawDate: "2024/05/03", Genre: "House"},
		{Name: "Open Air", Venue: "Pier 70 (SF)", RawDate: "2024/05/11", Genre: "House, Techno"},
	}
}

func TestIngest_AssignsSyntheticIDs(t *testing.T) {
	c := setupTestCatalog(t)

	c.Ingest(rawEvents())

	events, revision := c.Events()
	require.Len(t, events, 2)
	assert.Equal(t, uint64(1), revision)

	for _, e := range events {
		assert.Regexp(t, "^evt-", e.ID)
	}
	assert.NotEqual(t, events[0].ID, events[1].ID)
}

func TestIngest_IDsStableAcrossRefreshes(t *testing.T) {
	c := setupTestCatalog(t)

	c.Ingest(rawEvents())
	first, _ := c.Events()

	// Same events again, different order plus a newcomer.
	c.Ingest([]upstream.RawEvent{
		{Name: "Open Air", Venue: "Pier 70 (SF)", RawDate: "2024/05/11", Genre: "House, Techno"},
		{Name: "Basement Session", Venue: "Underground (SF)", RawDate: "2024/05/18"},
		{Name: "Warehouse Rave", Venue: "The Dock (Oakland)", RawDate: "2024/05/03", Genre: "House"},
	})

	second, revision := c.Events()
	require.Len(t, second, 3)
	assert.Equal(t, uint64(2), revision)

	// Matching composite keys keep their IDs.
	assert.Equal(t, first[1].ID, second[0].ID)
	assert.Equal(t, first[0].ID, second[2].ID)
}

func TestIngest_PersistsSnapshot(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	dir := t.TempDir()

	st, err := store.New(dir, logger)
	require.NoError(t, err)

	c := New(nil, st, Config{}, logger)
	c.Ingest(rawEvents())
	events, _ := c.Events()
	c.Stop()
	require.NoError(t, st.Close())

	// A fresh catalog over the same store restores the snapshot.
	st2, err := store.New(dir, logger)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, st2.Close())
	})

	c2 := New(nil, st2, Config{}, logger)
	t.Cleanup(c2.Stop)
	c2.Start(t.Context())

	restored, revision := c2.Events()
	require.Len(t, restored, 2)
	assert.Equal(t, uint64(1), revision)
	assert.Equal(t, events[0].ID, restored[0].ID)

	// IDs survive a post-restore refresh too.
	c2.Ingest(rawEvents())
	after, _ := c2.Events()
	assert.Equal(t, events[0].ID, after[0].ID)
}

func TestLookup(t *testing.T) {
	c := setupTestCatalog(t)
	c.Ingest(rawEvents())

	events, _ := c.Events()

	found, ok := c.Lookup(events[1].ID)
	require.True(t, ok)
	assert.Equal(t, "Open Air", found.Name)

	_, ok = c.Lookup("evt-missing")
	assert.False(t, ok)
}

func TestStats(t *testing.T) {
	c := setupTestCatalog(t)

	stats := c.Stats()
	assert.Equal(t, 0, stats.Events)
	assert.Equal(t, uint64(0), stats.Revision)

	c.Ingest(rawEvents())

	stats = c.Stats()
	assert.Equal(t, 2, stats.Events)
	assert.Equal(t, uint64(1), stats.Revision)
	assert.False(t, stats.FetchedAt.IsZero())
}

func TestLoadSeedFile(t *testing.T) {
	c := setupTestCatalog(t)

	path := filepath.Join(t.TempDir(), "events.json")
	content := `[
		{"name":"Warehouse Rave","venue":"The Dock (Oakland)","raw_date":"2024/05/03","genre":"House"},
		{"name":"Open Air","venue":"Pier 70 (SF)","raw_date":"2024/05/11"}
	]`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	require.NoError(t, c.LoadSeedFile(path))

	events, _ := c.Events()
	require.Len(t, events, 2)
	assert.Equal(t, "Warehouse Rave", events[0].Name)
}

func TestLoadSeedFile_BadJSON(t *testing.T) {
	c := setupTestCatalog(t)

	path := filepath.Join(t.TempDir(), "events.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	assert.Error(t, c.LoadSeedFile(path))
}
