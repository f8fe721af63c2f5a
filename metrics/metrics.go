// Package metrics exposes Prometheus counters and histograms for a build
// run: compiles, links, cache hits/misses, and worker utilization.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors registered for a build run.
type Metrics struct {
	CompilesTotal    *prometheus.CounterVec
	CompileDuration  *prometheus.HistogramVec
	LinksTotal       *prometheus.CounterVec
	LinkDuration     prometheus.Histogram
	CacheHitsTotal   prometheus.Counter
	CacheMissesTotal prometheus.Counter
	WorkersBusy      prometheus.Gauge
}

// New creates and registers every collector against registry.
func New(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		CompilesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ebuild_compiles_total",
				Help: "Total number of compile actions attempted.",
			},
			[]string{"module", "status"},
		),
		CompileDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ebuild_compile_duration_seconds",
				Help:    "Compile action duration in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"module"},
		),
		LinksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ebuild_links_total",
				Help: "Total number of link/archive actions attempted.",
			},
			[]string{"module", "status"},
		),
		LinkDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "ebuild_link_duration_seconds",
				Help:    "Link/archive action duration in seconds.",
				Buckets: prometheus.DefBuckets,
			},
		),
		CacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "ebuild_cache_hits_total",
				Help: "Total number of incremental-cache skip decisions.",
			},
		),
		CacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "ebuild_cache_misses_total",
				Help: "Total number of incremental-cache recompile decisions.",
			},
		),
		WorkersBusy: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "ebuild_workers_busy",
				Help: "Number of compile workers currently running.",
			},
		),
	}

	registry.MustRegister(
		m.CompilesTotal,
		m.CompileDuration,
		m.LinksTotal,
		m.LinkDuration,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.WorkersBusy,
	)
	return m
}

// ObserveCompile records one compile observation for module: a count under
// its ok/error status and a duration sample.
func (m *Metrics) ObserveCompile(module string, d time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.CompilesTotal.WithLabelValues(module, status).Inc()
	m.CompileDuration.WithLabelValues(module).Observe(d.Seconds())
}

// ObserveLink records one completed link/archive action.
func (m *Metrics) ObserveLink(module string, d time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.LinksTotal.WithLabelValues(module, status).Inc()
	m.LinkDuration.Observe(d.Seconds())
}
