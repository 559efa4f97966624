package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hupe1980/songdex/internal/flatstore"
	"github.com/hupe1980/songdex/internal/fs"
	"github.com/hupe1980/songdex/internal/library"
	"github.com/hupe1980/songdex/internal/record"
	"github.com/hupe1980/songdex/internal/resource"
	"github.com/hupe1980/songdex/internal/scan"
	"github.com/hupe1980/songdex/internal/settings"
	"github.com/hupe1980/songdex/internal/tags"
)

// File names inside the engine directory.
const (
	StoreFile    = "library.db"
	SettingsFile = "settings"
	LockFile     = StoreFile + ".lock"
	// SettingsLockFile serializes settings writers across processes.
	SettingsLockFile = SettingsFile + ".lock"
)

// Engine serves the current library and rebuilds it on request.
type Engine struct {
	dir          string
	storePath    string
	settingsPath string
	lockPath     string

	settingsLockPath string
	// settingsMu serializes settings writers in this process; the settings
	// lock file does the same across processes.
	settingsMu sync.Mutex

	current atomic.Pointer[Snapshot]
	closed  atomic.Bool
	// mu orders publication and background rescan registration against Close.
	mu sync.Mutex
	wg sync.WaitGroup

	fs                 fs.FileSystem
	logger             *slog.Logger
	metrics            MetricsObserver
	resourceController *resource.Controller
	reader             scan.MetadataReader
	extensions         []string
}

// Option defines a configuration option for the Engine.
type Option func(*Engine)

// WithLogger sets the logger for the engine.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithFileSystem sets the filesystem used for store and settings writes.
func WithFileSystem(fsys fs.FileSystem) Option {
	return func(e *Engine) {
		e.fs = fsys
	}
}

// WithResourceController sets the resource controller for the engine.
func WithResourceController(rc *resource.Controller) Option {
	return func(e *Engine) {
		e.resourceController = rc
	}
}

// WithMetricsObserver sets the metrics observer for the engine.
func WithMetricsObserver(observer MetricsObserver) Option {
	return func(e *Engine) {
		e.metrics = observer
	}
}

// WithMetadataReader replaces the tag reader used by rescans.
func WithMetadataReader(r scan.MetadataReader) Option {
	return func(e *Engine) {
		e.reader = r
	}
}

// WithExtensions sets the audio file extensions rescans pick up.
func WithExtensions(exts ...string) Option {
	return func(e *Engine) {
		e.extensions = exts
	}
}

// Open opens, or creates, the library kept in dir.
//
// A store that fails validation, a store whose index cannot be built and a
// corrupt settings file all lead to the same recovery: the store and the
// settings file are deleted and recreated empty. This is logged as a warning
// and reported to the metrics observer; Open itself still succeeds.
func Open(dir string, opts ...Option) (*Engine, error) {
	e := &Engine{
		dir:          dir,
		storePath:    filepath.Join(dir, StoreFile),
		settingsPath: filepath.Join(dir, SettingsFile),
		lockPath:     filepath.Join(dir, LockFile),

		settingsLockPath: filepath.Join(dir, SettingsLockFile),
		fs:               fs.Default,
		logger:           slog.New(slog.DiscardHandler),
		metrics:          NoopMetricsObserver{},
		reader:           tags.Reader{},
		extensions:       scan.DefaultExtensions,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.resourceController == nil {
		e.resourceController = resource.NewController(resource.Config{Workers: runtime.NumCPU()})
	}

	if err := e.fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("engine: create %s: %w", dir, err)
	}

	snap, err := e.load()
	if errors.Is(err, record.ErrCorrupt) {
		snap, err = e.recover(err)
	}
	if err != nil {
		return nil, err
	}

	e.current.Store(snap)
	e.logger.Info("library opened", "dir", dir, "songs", snap.index.Len(), "artists", snap.index.ArtistCount())
	return e, nil
}

func (e *Engine) load() (*Snapshot, error) {
	info, err := e.fs.Stat(e.storePath)
	scannedAt := time.Now()
	if err == nil {
		scannedAt = info.ModTime()
	}

	store, err := flatstore.OpenOrCreate(e.fs, e.storePath)
	if err != nil {
		return nil, err
	}
	idx, err := library.Build(context.Background(), store, e.resourceController.Workers())
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	if _, err := settings.Load(e.fs, e.settingsPath); err != nil {
		_ = store.Close()
		return nil, err
	}
	return newSnapshot(store, idx, scannedAt), nil
}

// recover resets the store and settings after corruption was found.
func (e *Engine) recover(reason error) (*Snapshot, error) {
	e.logger.Warn("library is corrupt, starting with an empty library",
		"store", e.storePath, "settings", e.settingsPath, "error", reason)
	e.metrics.OnRecovery(reason)

	if err := settings.Remove(e.fs, e.settingsPath); err != nil {
		return nil, err
	}
	store, err := flatstore.Reset(e.fs, e.storePath)
	if err != nil {
		return nil, err
	}
	return newSnapshot(store, library.Empty(), time.Now()), nil
}

// Dir returns the directory the library lives in.
func (e *Engine) Dir() string { return e.dir }

// Acquire returns the current snapshot with an extra reference. The caller must
// Release it.
func (e *Engine) Acquire() (*Snapshot, error) {
	for {
		if e.closed.Load() {
			return nil, ErrClosed
		}
		snap := e.current.Load()
		if snap == nil {
			return nil, ErrClosed
		}
		if snap.TryIncRef() {
			return snap, nil
		}
		// The snapshot was released concurrently; its replacement is already
		// installed.
		runtime.Gosched()
	}
}

// Release drops a reference obtained from Acquire.
func (e *Engine) Release(snap *Snapshot) {
	snap.DecRef()
}

// publish installs snap as the current snapshot and releases the old one. On a
// closed engine snap is released instead.
func (e *Engine) publish(snap *Snapshot) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed.Load() {
		snap.DecRef()
		return ErrClosed
	}
	if old := e.current.Swap(snap); old != nil {
		old.DecRef()
	}
	return nil
}

// goBackground runs fn on its own goroutine unless the engine is closed.
func (e *Engine) goBackground(fn func()) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed.Load() {
		return false
	}
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		fn()
	}()
	return true
}

// Close waits for background rescans and releases the engine's snapshot.
// Snapshots still held by readers stay valid until they are released.
func (e *Engine) Close() error {
	e.mu.Lock()
	if !e.closed.CompareAndSwap(false, true) {
		e.mu.Unlock()
		return ErrClosed
	}
	e.mu.Unlock()

	e.wg.Wait()

	e.mu.Lock()
	snap := e.current.Swap(nil)
	e.mu.Unlock()
	if snap != nil {
		snap.DecRef()
	}
	return nil
}
