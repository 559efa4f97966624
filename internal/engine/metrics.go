package engine

import (
	"time"

	"github.com/hupe1980/songdex/model"
)

// MetricsObserver receives engine events.
type MetricsObserver interface {
	// OnRescan is called when a rescan or import finishes.
	OnRescan(duration time.Duration, result model.ScanResult, err error)

	// OnSearch is called after every search.
	OnSearch(duration time.Duration, results int)

	// OnLookup is called after every point lookup by store position.
	OnLookup(duration time.Duration, err error)

	// OnRecovery is called when a corrupt store is reset at open.
	OnRecovery(reason error)
}

// NoopMetricsObserver is a no-op implementation of MetricsObserver.
type NoopMetricsObserver struct{}

func (NoopMetricsObserver) OnRescan(time.Duration, model.ScanResult, error) {}
func (NoopMetricsObserver) OnSearch(time.Duration, int)                     {}
func (NoopMetricsObserver) OnLookup(time.Duration, error)                   {}
func (NoopMetricsObserver) OnRecovery(error)                                {}
