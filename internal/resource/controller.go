package resource

import (
	"context"
	"runtime"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Config holds resource limits.
type Config struct {
	// Workers is the parallelism used for extraction, decoding and scoring.
	// If 0, defaults to runtime.NumCPU().
	Workers int

	// ExtractionsPerSec caps metadata extraction throughput.
	// If 0, unlimited.
	ExtractionsPerSec float64

	// ExtractionBurst is the token bucket size. If 0, defaults to Workers.
	ExtractionBurst int
}

// Controller manages the writer slot, parallelism and extraction rate.
type Controller struct {
	cfg Config

	writer  *semaphore.Weighted
	limiter *rate.Limiter // rate.Inf when unlimited
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.ExtractionBurst <= 0 {
		cfg.ExtractionBurst = cfg.Workers
	}

	return &Controller{
		cfg:     cfg,
		writer:  semaphore.NewWeighted(1),
		limiter: rate.NewLimiter(extractionLimit(cfg.ExtractionsPerSec), cfg.ExtractionBurst),
	}
}

func extractionLimit(perSec float64) rate.Limit {
	if perSec <= 0 {
		return rate.Inf
	}
	return rate.Limit(perSec)
}

// Workers returns the configured parallelism.
func (c *Controller) Workers() int {
	if c == nil {
		return runtime.NumCPU()
	}
	return c.cfg.Workers
}

// TryAcquireWriter reserves the single writer slot without blocking.
func (c *Controller) TryAcquireWriter() bool {
	if c == nil {
		return true
	}
	return c.writer.TryAcquire(1)
}

// ReleaseWriter releases the writer slot.
func (c *Controller) ReleaseWriter() {
	if c == nil {
		return
	}
	c.writer.Release(1)
}

// AcquireExtraction waits until one more metadata extraction is allowed.
func (c *Controller) AcquireExtraction(ctx context.Context) error {
	if c == nil {
		return ctx.Err()
	}
	return c.limiter.Wait(ctx)
}

// SetExtractionRate changes the extraction limit. A value <= 0 removes it.
// It is safe to call while a rescan is running.
func (c *Controller) SetExtractionRate(perSec float64) {
	if c == nil {
		return
	}
	c.limiter.SetLimit(extractionLimit(perSec))
}
