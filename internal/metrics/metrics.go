// Package metrics defines the Prometheus collectors for reordering and
// healing, and exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tallybook/tally/internal/reorder"
)

// Metrics holds all collectors on a private registry, so several instances
// can coexist in one process (tests, the shuffle simulator).
type Metrics struct {
	Registry *prometheus.Registry

	ReorderOperations *prometheus.CounterVec
	SearchExhausted   *prometheus.CounterVec
	HealRuns          *prometheus.CounterVec
	HealedPositions   *prometheus.CounterVec
	SearchDepth       prometheus.Histogram
}

var _ reorder.Recorder = (*Metrics)(nil)

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		ReorderOperations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tally_reorder_operations_total",
				Help: "Reorder operations by kind and strategy (skip, swap, search, renumber).",
			},
			[]string{"kind", "strategy"},
		),
		SearchExhausted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tally_search_exhausted_total",
				Help: "Position searches that ran out of depth, by kind.",
			},
			[]string{"kind"},
		),
		HealRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tally_heal_runs_total",
				Help: "Group renumberings by kind.",
			},
			[]string{"kind"},
		),
		HealedPositions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tally_healed_positions_total",
				Help: "Positions rewritten by renumbering, by kind.",
			},
			[]string{"kind"},
		),
		SearchDepth: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "tally_search_depth",
				Help:    "Stern-Brocot steps taken per successful position search.",
				Buckets: []float64{0, 1, 2, 4, 8, 16, 32, 64, 128, 256, 512, 1024, 2048},
			},
		),
	}

	m.Registry.MustRegister(
		m.ReorderOperations,
		m.SearchExhausted,
		m.HealRuns,
		m.HealedPositions,
		m.SearchDepth,
	)

	return m
}

// ObserveMove counts one operation. Only searches record a depth.
func (m *Metrics) ObserveMove(kind reorder.Kind, strategy reorder.Strategy, depth int) {
	m.ReorderOperations.WithLabelValues(string(kind), string(strategy)).Inc()
	if strategy == reorder.StrategySearch {
		m.SearchDepth.Observe(float64(depth))
	}
}

func (m *Metrics) ObserveExhausted(kind reorder.Kind) {
	m.SearchExhausted.WithLabelValues(string(kind)).Inc()
}

func (m *Metrics) ObserveHeal(kind reorder.Kind, updated int) {
	m.HealRuns.WithLabelValues(string(kind)).Inc()
	m.HealedPositions.WithLabelValues(string(kind)).Add(float64(updated))
}

// Handler returns the Prometheus scrape HTTP handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}
