package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/flock"

	"github.com/hupe1980/songdex/internal/record"
	"github.com/hupe1980/songdex/internal/settings"
)

// LoadSettings reads the settings file.
//
// A corrupt file is handled like a corrupt store: the settings file is removed,
// the store is replaced by an empty one and zero settings are returned.
func (e *Engine) LoadSettings() (settings.Settings, error) {
	s, err := settings.Load(e.fs, e.settingsPath)
	if errors.Is(err, record.ErrCorrupt) {
		return settings.Settings{}, e.recoverLive(err)
	}
	return s, err
}

// SaveSettings atomically replaces the settings file.
func (e *Engine) SaveSettings(s settings.Settings) error {
	return e.withSettingsLock(func() error {
		return settings.Save(e.fs, e.settingsPath, s)
	})
}

// withSettingsLock runs fn while holding the settings lock, after removing a
// temp file left by an interrupted save.
func (e *Engine) withSettingsLock(fn func() error) error {
	e.settingsMu.Lock()
	defer e.settingsMu.Unlock()

	lock := flock.New(e.settingsLockPath)
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("engine: lock %s: %w", e.settingsLockPath, err)
	}
	defer func() { _ = lock.Unlock() }()

	if err := e.removeStaleTemp(e.settingsPath); err != nil {
		return err
	}
	return fn()
}

// recoverLive resets a library that is already being served. Readers keep the
// snapshot they hold; later readers see an empty library.
func (e *Engine) recoverLive(reason error) error {
	e.logger.Warn("library is corrupt, starting with an empty library",
		"store", e.storePath, "settings", e.settingsPath, "error", reason)
	e.metrics.OnRecovery(reason)

	if err := e.withSettingsLock(func() error {
		return settings.Remove(e.fs, e.settingsPath)
	}); err != nil {
		return err
	}

	release, ok, err := e.acquireWriter()
	if err != nil {
		return err
	}
	if !ok {
		// The running rescan publishes a fresh store.
		return nil
	}
	defer release()

	_, err = e.replace(func(func(record.Record) bool) {}, time.Now())
	return err
}
