package controllers

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/gitvault/internal/domain/entities"
)

// reloadDebounce coalesces the burst of filesystem events editors emit when
// saving (write + chmod, or remove + create for atomic saves).
const reloadDebounce = 250 * time.Millisecond

// SettingsWatcher hot-reloads the settings file into the live store. A file
// that fails to load or validate is logged and ignored; the previous settings
// stay active.
type SettingsWatcher struct {
	path  string
	store *entities.SettingsStore
}

// NewSettingsWatcher creates a watcher for the given settings file.
func NewSettingsWatcher(path string, store *entities.SettingsStore) *SettingsWatcher {
	return &SettingsWatcher{path: path, store: store}
}

// Watch blocks until the context is cancelled. The parent directory is
// watched rather than the file itself, because editors replace files on save
// and the original inode stops emitting events.
func (it *SettingsWatcher) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	directory := filepath.Dir(it.path)
	if err := watcher.Add(directory); err != nil {
		return err
	}
	logger.Infof("Watching %s for configuration changes", it.path)

	var debounce *time.Timer
	var debounceC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, open := <-watcher.Events:
			if !open {
				return nil
			}
			if !it.concernsSettingsFile(event) {
				continue
			}
			if debounce == nil {
				debounce = time.NewTimer(reloadDebounce)
				debounceC = debounce.C
			} else {
				debounce.Reset(reloadDebounce)
			}

		case watchErr, open := <-watcher.Errors:
			if !open {
				return nil
			}
			logger.Warnf("Settings watcher error: %v", watchErr)

		case <-debounceC:
			debounce = nil
			debounceC = nil
			it.reload()
		}
	}
}

func (it *SettingsWatcher) concernsSettingsFile(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != filepath.Clean(it.path) {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0
}

func (it *SettingsWatcher) reload() {
	settings, err := entities.LoadSettings(it.path)
	if err != nil {
		logger.Errorf("Ignoring settings change, reload failed: %v", err)
		return
	}

	it.store.Swap(settings)
	applyLogLevel(settings)
	logger.Info("Settings reloaded")
}

// applyLogLevel applies the configured level to the process-wide logger.
func applyLogLevel(settings *entities.Settings) {
	level, err := logger.ParseLevel(settings.Logging.LogLevel)
	if err != nil {
		logger.Warnf("Unknown log level %q, keeping %s", settings.Logging.LogLevel, logger.GetLevel())
		return
	}
	logger.SetLevel(level)
}
