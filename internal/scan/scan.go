package scan

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/songdex/internal/resource"
	"github.com/hupe1980/songdex/model"
)

// DefaultExtensions are the audio file extensions scanned when none are given.
var DefaultExtensions = []string{"flac", "mp3", "ogg", "oga", "m4a", "opus", "wav"}

// MetadataReader is the collaborator that turns a file into a song. The returned
// song's Path is ignored; the scanner sets it.
type MetadataReader interface {
	ReadMetadata(path string) (model.Song, error)
}

// MetadataReaderFunc adapts a function to MetadataReader.
type MetadataReaderFunc func(path string) (model.Song, error)

// ReadMetadata calls f(path).
func (f MetadataReaderFunc) ReadMetadata(path string) (model.Song, error) { return f(path) }

// File is a candidate audio file found by Walk.
type File struct {
	Path    string
	ModTime time.Time
}

// Walk returns the files under root whose lower-cased extension is in exts
// (without the dot). Unreadable subdirectories are skipped; an unreadable root
// is an error.
func Walk(ctx context.Context, root string, exts []string) ([]File, error) {
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	want := make(map[string]struct{}, len(exts))
	for _, e := range exts {
		want["."+strings.ToLower(strings.TrimPrefix(e, "."))] = struct{}{}
	}

	var files []File
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if _, ok := want[strings.ToLower(filepath.Ext(path))]; !ok {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		files = append(files, File{Path: path, ModTime: info.ModTime()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan: walk %s: %w", root, err)
	}
	return files, nil
}

// Options configures Run.
type Options struct {
	// Controller supplies the worker count and extraction rate limit. May be nil.
	Controller *resource.Controller
	Logger     *slog.Logger
}

// Failure records a file that could not be indexed.
type Failure struct {
	Path   string
	Reason string
}

// String returns the "path: reason" form reported to users.
func (f Failure) String() string { return f.Path + ": " + f.Reason }

// SortFailures orders failures by path, keeping the input order of equal paths.
func SortFailures(failures []Failure) {
	slices.SortStableFunc(failures, func(a, b Failure) int { return strings.Compare(a.Path, b.Path) })
}

// Messages formats failures with Failure.String.
func Messages(failures []Failure) []string {
	if len(failures) == 0 {
		return nil
	}
	out := make([]string, len(failures))
	for i, f := range failures {
		out[i] = f.String()
	}
	return out
}

// Result is the outcome of Run.
type Result struct {
	// Songs holds the extracted songs in input order.
	Songs []model.Song
	// Failures holds one entry per file that could not be read, sorted by path.
	Failures []Failure
}

// Run extracts metadata for every path. A failing file never aborts the run;
// only a cancelled context does.
func Run(ctx context.Context, paths []string, r MetadataReader, opts Options) (Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	songs := make([]model.Song, len(paths))
	reasons := make([]string, len(paths))
	failed := make([]bool, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Controller.Workers())
	for i, path := range paths {
		g.Go(func() error {
			if err := opts.Controller.AcquireExtraction(gctx); err != nil {
				return err
			}
			s, err := r.ReadMetadata(path)
			if err != nil {
				failed[i], reasons[i] = true, err.Error()
				logger.Debug("metadata extraction failed", "path", path, "error", err)
				return nil
			}
			s.Path = path
			songs[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, fmt.Errorf("scan: %w", err)
	}

	var res Result
	for i, path := range paths {
		if failed[i] {
			res.Failures = append(res.Failures, Failure{Path: path, Reason: reasons[i]})
			continue
		}
		res.Songs = append(res.Songs, songs[i])
	}
	SortFailures(res.Failures)
	return res, nil
}
