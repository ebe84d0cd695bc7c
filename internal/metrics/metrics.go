// Package metrics exposes resolution counters in Prometheus format.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/OmniNode-ai/omniroute/internal/core"
)

// Metrics holds the resolver instrumentation behind its own registry, so
// tests can run many instances without collisions.
type Metrics struct {
	registry *prometheus.Registry

	resolutionsTotal   *prometheus.CounterVec
	tierFailuresTotal  *prometheus.CounterVec
	resolutionDuration prometheus.Histogram
	activeRoutes       prometheus.Gauge
	bundleSwapsTotal   prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		resolutionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "omniroute_resolutions_total",
				Help: "Number of resolution requests by outcome.",
			},
			[]string{"outcome", "tier"},
		),
		tierFailuresTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "omniroute_tier_failures_total",
				Help: "Number of per-tier failures by tier and failure code.",
			},
			[]string{"tier", "code"},
		),
		resolutionDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "omniroute_resolution_duration_seconds",
				Help:    "Time taken to resolve a dependency.",
				Buckets: prometheus.DefBuckets,
			},
		),
		activeRoutes: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "omniroute_active_routes",
				Help: "Number of unexpired route plans in the store.",
			},
		),
		bundleSwapsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "omniroute_bundle_swaps_total",
				Help: "Total number of policy bundle hot swaps.",
			},
		),
	}

	m.registry.MustRegister(
		m.resolutionsTotal,
		m.tierFailuresTotal,
		m.resolutionDuration,
		m.activeRoutes,
		m.bundleSwapsTotal,
	)
	return m
}

// Handler serves the registry in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveResolution records one finished resolution.
func (m *Metrics) ObserveResolution(outcome *core.ResolutionOutcome, duration time.Duration) {
	if m == nil || outcome == nil {
		return
	}
	if outcome.Resolved {
		tier := ""
		if len(outcome.Plan.Hops) > 0 {
			tier = string(outcome.Plan.Hops[0].Tier)
		}
		m.resolutionsTotal.WithLabelValues("resolved", tier).Inc()
	} else {
		m.resolutionsTotal.WithLabelValues("failed", "").Inc()
	}
	for _, failure := range outcome.PerTier {
		m.tierFailuresTotal.WithLabelValues(string(failure.Tier), string(failure.Code)).Inc()
	}
	m.resolutionDuration.Observe(duration.Seconds())
}

// SetActiveRoutes publishes the current route store size.
func (m *Metrics) SetActiveRoutes(n int) {
	if m == nil {
		return
	}
	m.activeRoutes.Set(float64(n))
}

// BundleSwapped counts a successful bundle hot swap.
func (m *Metrics) BundleSwapped() {
	if m == nil {
		return
	}
	m.bundleSwapsTotal.Inc()
}
