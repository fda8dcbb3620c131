package catalog

import (
	"encoding/json/v2"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/sproutme/sprout-server/internal/upstream"
)

// LoadSeedFile ingests events from a local JSON file: an array of rows
// in the upstream's wire shape. Used in development to run without the
// upstream API.
func (c *Catalog) LoadSeedFile(path string) error {
	//#nosec G304 -- Seed file path comes from validated config
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read seed file: %w", err)
	}

	var raw []upstream.RawEvent
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse seed file: %w", err)
	}

	c.Ingest(raw)
	c.logger.Info("Catalog loaded from seed file", "path", path, "events", len(raw))
	return nil
}

// WatchSeedFile loads the seed file and reloads it whenever it changes.
// Editors replace files on save, so the parent directory is watched and
// events are matched by name. Blocks until Stop is called or the watcher
// fails; run it in a goroutine.
func (c *Catalog) WatchSeedFile(path string) error {
	if err := c.LoadSeedFile(path); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watch seed directory: %w", err)
	}

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Name != path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if err := c.LoadSeedFile(path); err != nil {
				c.logger.Error("Seed file reload failed", "error", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			c.logger.Error("Seed file watcher error", "error", err)
		case <-c.done:
			return nil
		}
	}
}
