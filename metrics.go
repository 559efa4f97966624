package songdex

import (
	"sync/atomic"
	"time"

	"github.com/hupe1980/songdex/internal/engine"
	"github.com/hupe1980/songdex/model"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems; see the
// promcollector package for a Prometheus implementation.
type MetricsCollector interface {
	// RecordRescan is called after each rescan or import.
	RecordRescan(res ScanResult, duration time.Duration, err error)

	// RecordSearch is called after each search with the number of results.
	RecordSearch(results int, duration time.Duration)

	// RecordLookup is called after each point lookup by store position.
	RecordLookup(duration time.Duration, err error)

	// RecordRecovery is called when Open resets a corrupt library.
	RecordRecovery(reason error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordRescan(ScanResult, time.Duration, error) {}
func (NoopMetricsCollector) RecordSearch(int, time.Duration)               {}
func (NoopMetricsCollector) RecordLookup(time.Duration, error)             {}
func (NoopMetricsCollector) RecordRecovery(error)                          {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	RescanCount      atomic.Int64
	RescanErrors     atomic.Int64
	RescanFileInUse  atomic.Int64
	RescanTotalNanos atomic.Int64
	FilesFailed      atomic.Int64
	SongsIndexed     atomic.Int64
	SearchCount      atomic.Int64
	SearchResults    atomic.Int64
	SearchTotalNanos atomic.Int64
	LookupCount      atomic.Int64
	LookupErrors     atomic.Int64
	RecoveryCount    atomic.Int64
}

// RecordRescan implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRescan(res ScanResult, duration time.Duration, err error) {
	b.RescanCount.Add(1)
	b.RescanTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.RescanErrors.Add(1)
		return
	}
	if res.Status == ScanFileInUse {
		b.RescanFileInUse.Add(1)
		return
	}
	b.FilesFailed.Add(int64(len(res.Errors)))
	b.SongsIndexed.Store(int64(res.Songs))
}

// RecordSearch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSearch(results int, duration time.Duration) {
	b.SearchCount.Add(1)
	b.SearchResults.Add(int64(results))
	b.SearchTotalNanos.Add(duration.Nanoseconds())
}

// RecordLookup implements MetricsCollector.
func (b *BasicMetricsCollector) RecordLookup(_ time.Duration, err error) {
	b.LookupCount.Add(1)
	if err != nil {
		b.LookupErrors.Add(1)
	}
}

// RecordRecovery implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRecovery(error) {
	b.RecoveryCount.Add(1)
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		RescanCount:     b.RescanCount.Load(),
		RescanErrors:    b.RescanErrors.Load(),
		RescanFileInUse: b.RescanFileInUse.Load(),
		RescanAvgNanos:  avg(b.RescanTotalNanos.Load(), b.RescanCount.Load()),
		FilesFailed:     b.FilesFailed.Load(),
		SongsIndexed:    b.SongsIndexed.Load(),
		SearchCount:     b.SearchCount.Load(),
		SearchResults:   b.SearchResults.Load(),
		SearchAvgNanos:  avg(b.SearchTotalNanos.Load(), b.SearchCount.Load()),
		LookupCount:     b.LookupCount.Load(),
		LookupErrors:    b.LookupErrors.Load(),
		RecoveryCount:   b.RecoveryCount.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	RescanCount     int64
	RescanErrors    int64
	RescanFileInUse int64
	RescanAvgNanos  int64
	// FilesFailed accumulates per-file failures over all rescans.
	FilesFailed int64
	// SongsIndexed is the song count after the last successful rescan.
	SongsIndexed   int64
	SearchCount    int64
	SearchResults  int64
	SearchAvgNanos int64
	LookupCount    int64
	LookupErrors   int64
	RecoveryCount  int64
}

// observer adapts a MetricsCollector to the engine's hooks.
type observer struct {
	mc MetricsCollector
}

var _ engine.MetricsObserver = observer{}

func (o observer) OnRescan(d time.Duration, res model.ScanResult, err error) {
	o.mc.RecordRescan(res, d, err)
}

func (o observer) OnSearch(d time.Duration, results int) {
	o.mc.RecordSearch(results, d)
}

func (o observer) OnLookup(d time.Duration, err error) {
	o.mc.RecordLookup(d, err)
}

func (o observer) OnRecovery(reason error) {
	o.mc.RecordRecovery(reason)
}
