package file

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/prcache/internal/logger"
)

// DefaultDebounce coalesces the burst of events an editor save produces.
const DefaultDebounce = 200 * time.Millisecond

// Watcher reloads a ConfigStore when its file changes on disk.
//
// The parent directory is watched rather than the file, so editors and
// ConfigStore.Save that replace the file by rename keep being observed.
type Watcher struct {
	store    *ConfigStore
	debounce time.Duration
	log      *logger.Logger
}

// NewWatcher creates a watcher for store.
func NewWatcher(store *ConfigStore, log *logger.Logger) *Watcher {
	return &Watcher{
		store:    store,
		debounce: DefaultDebounce,
		log:      log.Named("config"),
	}
}

// Run watches the config file until ctx is cancelled. After each burst of
// changes the store is reloaded and onChange is called. A file that fails to
// parse is logged and the previous values stay in effect.
func (w *Watcher) Run(ctx context.Context, onChange func()) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}
	defer fw.Close()

	dir := filepath.Dir(w.store.Path())
	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	w.log.Debug("watching %s", w.store.Path())

	name := filepath.Base(w.store.Path())
	var fire <-chan time.Time
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return fmt.Errorf("watcher event channel closed")
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			if err := w.store.Load(); err != nil {
				w.log.Warn("reload config: %v", err)
				continue
			}
			w.log.Info("config reloaded")
			if onChange != nil {
				onChange()
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return fmt.Errorf("watcher error channel closed")
			}
			w.log.Warn("file watcher: %v", err)
		}
	}
}
