package songdex

import (
	"context"
	"io"
	"path/filepath"
	"time"

	"github.com/hupe1980/songdex/internal/config"
	"github.com/hupe1980/songdex/internal/engine"
	"github.com/hupe1980/songdex/internal/flatstore"
	"github.com/hupe1980/songdex/internal/fs"
	"github.com/hupe1980/songdex/internal/resource"
	"github.com/hupe1980/songdex/internal/scan"
	"github.com/hupe1980/songdex/internal/search"
	"github.com/hupe1980/songdex/internal/settings"
	"github.com/hupe1980/songdex/model"
)

// Value types shared with the model package.
type (
	Song       = model.Song
	Album      = model.Album
	Item       = model.Item
	ItemKind   = model.ItemKind
	ScanStatus = model.ScanStatus
	ScanResult = model.ScanResult
)

const (
	ItemArtist = model.ItemArtist
	ItemAlbum  = model.ItemAlbum
	ItemSong   = model.ItemSong

	ScanCompleted           = model.ScanCompleted
	ScanCompletedWithErrors = model.ScanCompletedWithErrors
	ScanFileInUse           = model.ScanFileInUse
	ScanFailed              = model.ScanFailed
)

// SearchResult is a matched item and its Jaro-Winkler score.
type SearchResult = search.Result

// Settings is the persisted player state stored next to the library.
type Settings = settings.Settings

// MetadataReader extracts the tags of one audio file.
type MetadataReader = scan.MetadataReader

// MetadataReaderFunc adapts a function to MetadataReader.
type MetadataReaderFunc = scan.MetadataReaderFunc

// FileSystem is the file abstraction writes go through.
type FileSystem = fs.FileSystem

// Compression selects the codec of an exported archive.
type Compression = flatstore.Compression

const (
	CompressionNone = flatstore.CompressionNone
	CompressionLZ4  = flatstore.CompressionLZ4
	CompressionZSTD = flatstore.CompressionZSTD
)

// ParseCompression parses "none", "lz4" or "zstd".
func ParseCompression(s string) (Compression, error) {
	return flatstore.ParseCompression(s)
}

// ScanOptions configures a rescan.
type ScanOptions = engine.ScanOptions

// Library is an open music library. It is safe for concurrent use; at most
// one rescan or import runs at a time.
type Library struct {
	engine *engine.Engine
	rc     *resource.Controller
	limit  int
	logger *Logger
}

// Open opens the library stored in dir, creating it if needed.
//
// A leading "~" in dir is expanded to the user's home directory. A corrupt
// store is not an error: it is reset to an empty library together with the
// settings file, and a warning is logged.
func Open(dir string, optFns ...Option) (*Library, error) {
	o := applyOptions(optFns)

	dir, err := config.ExpandPath(dir)
	if err != nil {
		return nil, err
	}

	rc := resource.NewController(resource.Config{
		Workers:           o.workers,
		ExtractionsPerSec: o.extractionRate,
		ExtractionBurst:   o.extractionBurst,
	})

	engineOpts := []engine.Option{
		engine.WithLogger(o.logger.Logger),
		engine.WithResourceController(rc),
		engine.WithMetricsObserver(observer{mc: o.metricsCollector}),
		engine.WithExtensions(o.extensions...),
	}
	if o.reader != nil {
		engineOpts = append(engineOpts, engine.WithMetadataReader(o.reader))
	}
	if o.fs != nil {
		engineOpts = append(engineOpts, engine.WithFileSystem(o.fs))
	}

	e, err := engine.Open(dir, engineOpts...)
	if err != nil {
		return nil, translateError(err)
	}

	return &Library{
		engine: e,
		rc:     rc,
		limit:  o.searchLimit,
		logger: o.logger,
	}, nil
}

// Dir returns the directory the library is stored in.
func (l *Library) Dir() string { return l.engine.Dir() }

// Rescan rebuilds the library from the audio files under root.
//
// If another rescan is running, in this or another process, the result is
// ScanFileInUse and err is nil. Files whose tags cannot be read are listed in
// the result's Errors; the library is still rebuilt from the others.
func (l *Library) Rescan(ctx context.Context, root string, opts ScanOptions) (ScanResult, error) {
	root, err := config.ExpandPath(root)
	if err != nil {
		return ScanResult{Status: ScanFailed}, err
	}
	res, err := l.engine.Rescan(ctx, root, opts)
	l.logger.WithRoot(root).LogRescan(ctx, res, err)
	return res, translateError(err)
}

// RescanAsync starts a rescan in the background. The returned channel
// receives one result and is never closed.
func (l *Library) RescanAsync(ctx context.Context, root string, opts ScanOptions) <-chan RescanOutcome {
	out := make(chan RescanOutcome, 1)
	root, err := config.ExpandPath(root)
	if err != nil {
		out <- RescanOutcome{Result: ScanResult{Status: ScanFailed}, Err: err}
		return out
	}
	in := l.engine.RescanAsync(ctx, root, opts)
	go func() {
		o := <-in
		l.logger.WithRoot(root).LogRescan(ctx, o.Result, o.Err)
		out <- RescanOutcome{Result: o.Result, Err: translateError(o.Err)}
	}()
	return out
}

// RescanOutcome is delivered by RescanAsync.
type RescanOutcome struct {
	Result ScanResult
	Err    error
}

// Search returns up to k items whose name is similar to query, best first.
// k <= 0 uses the configured search limit. An empty query lists the catalog
// in browse order.
func (l *Library) Search(ctx context.Context, query string, k int) []SearchResult {
	if k <= 0 {
		k = l.limit
	}
	results := l.engine.Search(ctx, query, k)
	l.logger.LogSearch(ctx, query, k, len(results))
	return results
}

// Artists returns every artist, ordered case-insensitively. The browse
// methods return slices shared with the library; they must not be modified.
func (l *Library) Artists() []string { return l.engine.Artists() }

// Albums returns the albums of artist, ordered case-insensitively.
func (l *Library) Albums(artist string) []Album { return l.engine.Albums(artist) }

// Songs returns the songs of an album ordered by disc and track.
func (l *Library) Songs(artist, album string) []Song { return l.engine.Songs(artist, album) }

// Walk visits artists, their albums and the albums' songs in browse order
// until fn returns false.
func (l *Library) Walk(fn func(Item) bool) { l.engine.Walk(fn) }

// Len returns the number of songs in the library.
func (l *Library) Len() int { return l.engine.Len() }

// ArtistCount returns the number of artists in the library.
func (l *Library) ArtistCount() int { return l.engine.ArtistCount() }

// Song returns the song stored at position pos.
func (l *Library) Song(pos int) (Song, error) {
	s, err := l.engine.Song(pos)
	return s, translateError(err)
}

// Export writes the library to w as a compressed archive.
func (l *Library) Export(w io.Writer, c Compression) error {
	return translateError(l.engine.Export(w, c))
}

// Import replaces the library with an archive written by Export.
func (l *Library) Import(ctx context.Context, r io.Reader) (ScanResult, error) {
	res, err := l.engine.Import(r)
	l.logger.LogRescan(ctx, res, err)
	return res, translateError(err)
}

// Verify decodes every record of the store.
func (l *Library) Verify() error {
	return translateError(l.engine.Verify())
}

// LoadSettings reads the settings file. A missing file yields zero Settings.
func (l *Library) LoadSettings() (Settings, error) {
	s, err := l.engine.LoadSettings()
	return s, translateError(err)
}

// SaveSettings atomically replaces the settings file.
func (l *Library) SaveSettings(s Settings) error {
	return translateError(l.engine.SaveSettings(s))
}

// SetExtractionRate changes the tag extraction limit. A running rescan picks
// up the new limit for the files it has not read yet. A value <= 0 removes it.
func (l *Library) SetExtractionRate(perSec float64) {
	l.rc.SetExtractionRate(perSec)
}

// Close waits for background rescans and releases the library.
func (l *Library) Close() error {
	start := time.Now()
	err := l.engine.Close()
	l.logger.Debug("library closed", "dir", l.engine.Dir(), "duration", time.Since(start))
	return translateError(err)
}

// StorePath returns the path of the store file inside dir.
func StorePath(dir string) string {
	return filepath.Join(dir, engine.StoreFile)
}
