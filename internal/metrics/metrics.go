// Package metrics exposes reduction metrics and writes them to a
// node-exporter textfile.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcomes recorded on the reductions counter.
const (
	OutcomeReduced = "reduced"
	OutcomeCached  = "cached"
	OutcomeFailed  = "failed"
)

// Metrics bundles the burstline collectors and the registry they live in.
type Metrics struct {
	Registry     *prometheus.Registry
	Reductions   *prometheus.CounterVec
	Duration     prometheus.Histogram
	CacheLookups *prometheus.CounterVec
	Days         prometheus.Gauge
	MaxLevel     prometheus.Gauge
}

// New constructs metrics on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		Reductions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "burstline_reductions_total",
				Help: "Total timeline reductions by outcome",
			},
			[]string{"outcome"},
		),
		Duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "burstline_reduction_duration_seconds",
			Help:    "Time spent producing a timeline, cache lookups included",
			Buckets: prometheus.DefBuckets,
		}),
		CacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "burstline_cache_lookups_total",
				Help: "Result cache lookups by result",
			},
			[]string{"result"},
		),
		Days: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "burstline_timeline_days",
			Help: "Number of days in the last timeline",
		}),
		MaxLevel: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "burstline_timeline_max_level",
			Help: "Highest burst level in the last timeline",
		}),
	}
	m.Registry.MustRegister(m.Reductions, m.Duration, m.CacheLookups, m.Days, m.MaxLevel)
	return m
}

var (
	defaultOnce    sync.Once
	defaultMetrics *Metrics
)

// Default returns the process-wide metrics.
func Default() *Metrics {
	defaultOnce.Do(func() {
		defaultMetrics = New()
	})
	return defaultMetrics
}

// ObserveReduction counts one reduction and records how long it took.
func (m *Metrics) ObserveReduction(outcome string, elapsed time.Duration) {
	m.Reductions.WithLabelValues(outcome).Inc()
	m.Duration.Observe(elapsed.Seconds())
}

// ObserveTimeline records the shape of the latest timeline.
func (m *Metrics) ObserveTimeline(days, maxLevel int) {
	m.Days.Set(float64(days))
	m.MaxLevel.Set(float64(maxLevel))
}

// ObserveCache counts a result cache lookup.
func (m *Metrics) ObserveCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}

// WriteTextfile atomically writes every metric to path in the text exposition
// format. An empty path is a no-op.
func (m *Metrics) WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.Registry)
}
