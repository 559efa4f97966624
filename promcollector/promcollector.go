// Package promcollector exports songdex metrics to Prometheus.
//
//	reg := prometheus.NewRegistry()
//	lib, _ := songdex.Open(dir, songdex.WithMetricsCollector(promcollector.New(reg)))
//	http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
package promcollector

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hupe1980/songdex"
)

const namespace = "songdex"

// Collector implements songdex.MetricsCollector.
type Collector struct {
	opLatency   *prometheus.HistogramVec
	rescans     *prometheus.CounterVec
	filesFailed prometheus.Counter
	songs       prometheus.Gauge
	results     prometheus.Histogram
	recoveries  prometheus.Counter
}

var _ songdex.MetricsCollector = (*Collector)(nil)

// New creates a Collector and registers its metrics with reg.
// A nil reg registers with prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	c := &Collector{
		opLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_latency_seconds",
			Help:      "Latency of library operations",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op", "status"}),
		rescans: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rescans_total",
			Help:      "Rescans and imports by outcome",
		}, []string{"status"}),
		filesFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scan_files_failed_total",
			Help:      "Files skipped by rescans because their tags could not be read",
		}),
		songs: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "songs",
			Help:      "Songs in the library after the last successful rescan",
		}),
		results: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_results",
			Help:      "Number of results returned per search",
			Buckets:   []float64{0, 1, 5, 10, 25, 40, 100},
		}),
		recoveries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recoveries_total",
			Help:      "Corrupt libraries reset on open",
		}),
	}

	reg.MustRegister(c.opLatency, c.rescans, c.filesFailed, c.songs, c.results, c.recoveries)
	return c
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// RecordRescan implements songdex.MetricsCollector.
func (c *Collector) RecordRescan(res songdex.ScanResult, d time.Duration, err error) {
	c.opLatency.WithLabelValues("rescan", status(err)).Observe(d.Seconds())
	c.rescans.WithLabelValues(res.Status.String()).Inc()
	if err != nil || res.Status == songdex.ScanFileInUse {
		return
	}
	c.filesFailed.Add(float64(len(res.Errors)))
	c.songs.Set(float64(res.Songs))
}

// RecordSearch implements songdex.MetricsCollector.
func (c *Collector) RecordSearch(results int, d time.Duration) {
	c.opLatency.WithLabelValues("search", "success").Observe(d.Seconds())
	c.results.Observe(float64(results))
}

// RecordLookup implements songdex.MetricsCollector.
func (c *Collector) RecordLookup(d time.Duration, err error) {
	c.opLatency.WithLabelValues("lookup", status(err)).Observe(d.Seconds())
}

// RecordRecovery implements songdex.MetricsCollector.
func (c *Collector) RecordRecovery(error) {
	c.recoveries.Inc()
}
