package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"slices"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/gofrs/flock"

	"github.com/hupe1980/songdex/internal/flatstore"
	"github.com/hupe1980/songdex/internal/fs"
	"github.com/hupe1980/songdex/internal/library"
	"github.com/hupe1980/songdex/internal/record"
	"github.com/hupe1980/songdex/internal/scan"
	"github.com/hupe1980/songdex/model"
)

// ScanOptions configures a rescan.
type ScanOptions struct {
	// Incremental reuses the stored record of every file that still exists and
	// has not been modified since the current library was scanned. Only new or
	// changed files are read again.
	Incremental bool
}

// Outcome is the result delivered by RescanAsync.
type Outcome struct {
	Result model.ScanResult
	Err    error
}

// Rescan rebuilds the library from the audio files under root and publishes it.
//
// If another rescan holds the store the result is ScanFileInUse with a nil
// error and nothing changes. Per-file problems are reported in the result's
// Errors and do not stop the rescan. If the new index cannot be built the
// result is ScanFailed with the cause, and readers keep the previous library.
//
// ctx is honoured while files are enumerated and read. Once the new store file
// is being written the rescan runs to completion.
func (e *Engine) Rescan(ctx context.Context, root string, opts ScanOptions) (res model.ScanResult, err error) {
	start := time.Now()
	defer func() { e.finishRescan("rescan", start, res, err) }()

	if e.closed.Load() {
		return failed(), ErrClosed
	}

	release, ok, err := e.acquireWriter()
	if err != nil {
		return failed(), err
	}
	if !ok {
		return model.ScanResult{Status: model.ScanFileInUse}, nil
	}
	defer release()

	scannedAt := time.Now()
	files, err := scan.Walk(ctx, root, e.extensions)
	if err != nil {
		return failed(), err
	}

	records, failures, reused, err := e.collect(ctx, files, opts)
	if err != nil {
		return failed(), err
	}
	if err := ctx.Err(); err != nil {
		return failed(), err
	}

	res, err = e.replace(slices.Values(records), scannedAt)
	res.Errors = scan.Messages(failures)
	res.Reused = reused
	if res.Status == model.ScanCompleted && len(res.Errors) > 0 {
		res.Status = model.ScanCompletedWithErrors
	}
	return res, err
}

// RescanAsync runs Rescan on its own goroutine. The channel receives exactly
// one Outcome. Close waits for pending rescans.
func (e *Engine) RescanAsync(ctx context.Context, root string, opts ScanOptions) <-chan Outcome {
	ch := make(chan Outcome, 1)
	started := e.goBackground(func() {
		res, err := e.Rescan(ctx, root, opts)
		ch <- Outcome{Result: res, Err: err}
	})
	if !started {
		ch <- Outcome{Result: failed(), Err: ErrClosed}
	}
	return ch
}

// Import replaces the library with the contents of an archive written by Export.
func (e *Engine) Import(r io.Reader) (res model.ScanResult, err error) {
	start := time.Now()
	defer func() { e.finishRescan("import", start, res, err) }()

	if e.closed.Load() {
		return failed(), ErrClosed
	}

	a, err := flatstore.ReadArchive(r)
	if err != nil {
		return failed(), err
	}

	release, ok, err := e.acquireWriter()
	if err != nil {
		return failed(), err
	}
	if !ok {
		return model.ScanResult{Status: model.ScanFileInUse}, nil
	}
	defer release()

	return e.replace(a.Records(), time.Now())
}

// Export writes the current store to w as an archive.
func (e *Engine) Export(w io.Writer, c flatstore.Compression) error {
	snap, err := e.Acquire()
	if err != nil {
		return err
	}
	defer e.Release(snap)
	return flatstore.WriteArchive(w, snap.store, c)
}

func failed() model.ScanResult {
	return model.ScanResult{Status: model.ScanFailed}
}

func (e *Engine) finishRescan(op string, start time.Time, res model.ScanResult, err error) {
	d := time.Since(start)
	e.metrics.OnRescan(d, res, err)

	switch {
	case err != nil:
		e.logger.Debug(op+" failed", "status", res.Status, "duration", d, "error", err)
	case res.Status == model.ScanFileInUse:
		e.logger.Debug(op+" skipped, store in use", "lock", e.lockPath)
	default:
		e.logger.Debug(op+" finished", "status", res.Status, "songs", res.Songs,
			"errors", len(res.Errors), "reused", res.Reused, "duration", d)
	}
}

// acquireWriter takes the in-process writer slot and the cross-process lock
// file. ok is false when either is held by someone else. With both held no
// other rebuild can be running, so a leftover temp store is removed.
func (e *Engine) acquireWriter() (release func(), ok bool, err error) {
	rc := e.resourceController
	if !rc.TryAcquireWriter() {
		return nil, false, nil
	}

	lock := flock.New(e.lockPath)
	locked, err := lock.TryLock()
	if err != nil {
		rc.ReleaseWriter()
		return nil, false, fmt.Errorf("engine: lock %s: %w", e.lockPath, err)
	}
	if !locked {
		rc.ReleaseWriter()
		return nil, false, nil
	}

	if err := e.removeStaleTemp(e.storePath); err != nil {
		_ = lock.Unlock()
		rc.ReleaseWriter()
		return nil, false, err
	}

	return func() {
		_ = lock.Unlock()
		rc.ReleaseWriter()
	}, true, nil
}

// removeStaleTemp deletes the temp file of an atomic write of path that a
// crashed writer left behind. The caller holds the lock guarding path.
func (e *Engine) removeStaleTemp(path string) error {
	tmp := fs.TempPath(path)
	err := e.fs.Remove(tmp)
	switch {
	case err == nil:
		e.logger.Warn("removed temp file left by an interrupted write", "path", tmp)
		return nil
	case errors.Is(err, os.ErrNotExist):
		return nil
	default:
		return fmt.Errorf("engine: remove %s: %w", tmp, err)
	}
}

// collect turns the walked files into records in walk order.
func (e *Engine) collect(ctx context.Context, files []scan.File, opts ScanOptions) ([]record.Record, []scan.Failure, int, error) {
	records := make([]record.Record, len(files))
	have := make([]bool, len(files))

	reused := roaring.New()
	if opts.Incremental {
		if err := e.reuse(files, records, have, reused); err != nil {
			return nil, nil, 0, err
		}
	}

	var paths []string
	for i, f := range files {
		if !have[i] {
			paths = append(paths, f.Path)
		}
	}

	extracted, err := scan.Run(ctx, paths, e.reader, scan.Options{
		Controller: e.resourceController,
		Logger:     e.logger,
	})
	if err != nil {
		return nil, nil, 0, err
	}

	byPath := make(map[string]model.Song, len(extracted.Songs))
	for _, s := range extracted.Songs {
		byPath[s.Path] = s
	}

	failures := extracted.Failures
	out := make([]record.Record, 0, len(files))
	for i, f := range files {
		if have[i] {
			out = append(out, records[i])
			continue
		}
		s, ok := byPath[f.Path]
		if !ok {
			continue
		}
		r, err := record.Encode(s)
		if err != nil {
			failures = append(failures, scan.Failure{Path: f.Path, Reason: err.Error()})
			continue
		}
		out = append(out, r)
	}
	scan.SortFailures(failures)

	return out, failures, int(reused.GetCardinality()), nil
}

// reuse copies the current record of every unchanged file into records and
// marks it in have. The reused store positions are added to bm.
func (e *Engine) reuse(files []scan.File, records []record.Record, have []bool, bm *roaring.Bitmap) error {
	snap, err := e.Acquire()
	if err != nil {
		return err
	}
	defer e.Release(snap)

	positions := songPositions(snap.index)
	for i, f := range files {
		pos, ok := positions[f.Path]
		if !ok || !f.ModTime.Before(snap.scannedAt) {
			continue
		}
		raw, err := snap.store.Raw(int(pos))
		if err != nil {
			return err
		}
		copy(records[i][:], raw)
		have[i] = true
		bm.Add(pos)
	}
	return nil
}

func songPositions(idx *library.Index) map[string]uint32 {
	positions := make(map[string]uint32, idx.Len())
	for _, artist := range idx.Artists() {
		for _, album := range idx.Albums(artist) {
			for _, s := range album.Songs {
				positions[s.Path] = s.Position
			}
		}
	}
	return positions
}

// replace writes records as the new store, indexes it and publishes both.
// scannedAt is when the records were read from their files.
func (e *Engine) replace(records iter.Seq[record.Record], scannedAt time.Time) (model.ScanResult, error) {
	store, err := flatstore.Replace(e.fs, e.storePath, records)
	if errors.Is(err, flatstore.ErrFileInUse) {
		return model.ScanResult{Status: model.ScanFileInUse}, nil
	}
	if err != nil {
		return failed(), err
	}

	idx, err := library.Build(context.Background(), store, e.resourceController.Workers())
	if err != nil {
		_ = store.Close()
		return failed(), err
	}

	if err := e.publish(newSnapshot(store, idx, scannedAt)); err != nil {
		return failed(), err
	}
	return model.ScanResult{Status: model.ScanCompleted, Songs: idx.Len()}, nil
}
