package songdex

import (
	"log/slog"

	"github.com/hupe1980/songdex/internal/fs"
	"github.com/hupe1980/songdex/internal/scan"
	"github.com/hupe1980/songdex/internal/search"
)

type options struct {
	logger           *Logger
	metricsCollector MetricsCollector
	searchLimit      int
	workers          int
	extractionRate   float64
	extractionBurst  int
	extensions       []string
	reader           scan.MetadataReader
	fs               fs.FileSystem
}

// Option configures Open.
type Option func(*options)

// WithLogger configures structured logging.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := songdex.NewJSONLogger(slog.LevelInfo)
//	lib, _ := songdex.Open("~/.songdex", songdex.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithMetricsCollector configures a metrics collector.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &songdex.BasicMetricsCollector{}
//	lib, _ := songdex.Open(dir, songdex.WithMetricsCollector(metrics))
//	// ... use lib ...
//	stats := metrics.GetStats()
//	fmt.Printf("Searches: %d, Avg latency: %dns\n", stats.SearchCount, stats.SearchAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithSearchLimit sets the number of results Search returns when k <= 0.
// The default is 40.
func WithSearchLimit(k int) Option {
	return func(o *options) {
		if k > 0 {
			o.searchLimit = k
		}
	}
}

// WithWorkers sets how many goroutines decode records, score searches and
// read tags. Values <= 0 mean runtime.NumCPU().
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithExtractionRate limits tag extraction to perSec files per second with
// the given burst. perSec <= 0 disables the limit.
func WithExtractionRate(perSec float64, burst int) Option {
	return func(o *options) {
		o.extractionRate = perSec
		o.extractionBurst = burst
	}
}

// WithExtensions replaces the set of audio file extensions a rescan picks up.
// Extensions are given without the dot and matched case-insensitively.
func WithExtensions(exts ...string) Option {
	return func(o *options) {
		o.extensions = exts
	}
}

// WithMetadataReader replaces the built-in tag reader.
func WithMetadataReader(r MetadataReader) Option {
	return func(o *options) {
		o.reader = r
	}
}

// WithFileSystem sets the filesystem used for writing the store and settings.
// Intended for tests and fault injection.
func WithFileSystem(fsys FileSystem) Option {
	return func(o *options) {
		o.fs = fsys
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		logger:           NoopLogger(),
		metricsCollector: NoopMetricsCollector{},
		searchLimit:      search.DefaultLimit,
		extensions:       scan.DefaultExtensions,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
