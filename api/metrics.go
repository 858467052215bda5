package api

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for the simulations counter.
const (
	outcomeOK          = "ok"
	outcomeBadRequest  = "bad_request"
	outcomeClientError = "client_error"
	outcomeMissingData = "missing_data"
	outcomeIntegrity   = "integrity"
	outcomeInternal    = "internal"
)

// Metrics holds the simulator's Prometheus collectors on a private registry,
// so several servers can coexist in one process (tests).
type Metrics struct {
	registry    *prometheus.Registry
	simulations *prometheus.CounterVec
	duration    prometheus.Histogram
	reloads     *prometheus.CounterVec
}

// NewMetrics creates and registers the collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		simulations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "simulator",
				Name:      "simulations_total",
				Help:      "Pension calculations by outcome.",
			},
			[]string{"outcome"},
		),
		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "simulator",
				Name:      "simulation_duration_seconds",
				Help:      "Time spent in the calculation pipeline.",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
			},
		),
		reloads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "simulator",
				Name:      "table_reloads_total",
				Help:      "Table bundle reloads by result.",
			},
			[]string{"result"},
		),
	}
	m.registry.MustRegister(
		m.simulations,
		m.duration,
		m.reloads,
		collectors.NewGoCollector(),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) observeSimulation(outcome string, elapsed time.Duration) {
	m.simulations.WithLabelValues(outcome).Inc()
	if outcome == outcomeOK {
		m.duration.Observe(elapsed.Seconds())
	}
}

func (m *Metrics) observeReload(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.reloads.WithLabelValues(result).Inc()
}
