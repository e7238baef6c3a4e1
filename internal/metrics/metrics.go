// Package metrics holds the Prometheus collectors of the scoreboard.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every collector, registered on its own registry so tests
// and multiple instances never collide on the global one.
type Metrics struct {
	registry *prometheus.Registry

	aggregationDuration *prometheus.HistogramVec
	aggregationTotal    *prometheus.CounterVec
	corruptRows         *prometheus.CounterVec

	provisionRuns       *prometheus.CounterVec
	provisionedTeams    prometheus.Gauge
	provisionedServices prometheus.Gauge
	lastProvision       prometheus.Gauge

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// New creates the collectors and registers them, plus the Go runtime and
// process collectors, on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,

		aggregationDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "scoreboard_aggregation_duration_seconds",
				Help:    "Time spent computing one scoring aggregation, store read included.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"op"},
		),
		aggregationTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scoreboard_aggregations_total",
				Help: "Scoring aggregations by operation and outcome.",
			},
			[]string{"op", "status"},
		),
		corruptRows: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scoreboard_corrupt_rows_total",
				Help: "Ledger rows found violating counter invariants.",
			},
			[]string{"op"},
		),

		provisionRuns: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scoreboard_provision_runs_total",
				Help: "Competition file provisioning runs by outcome.",
			},
			[]string{"status"},
		),
		provisionedTeams: f.NewGauge(prometheus.GaugeOpts{
			Name: "scoreboard_provisioned_teams",
			Help: "Teams in the last successfully applied competition file.",
		}),
		provisionedServices: f.NewGauge(prometheus.GaugeOpts{
			Name: "scoreboard_provisioned_services",
			Help: "Services in the last successfully applied competition file.",
		}),
		lastProvision: f.NewGauge(prometheus.GaugeOpts{
			Name: "scoreboard_last_provision_timestamp_seconds",
			Help: "Unix time of the last successful provisioning run.",
		}),

		httpRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scoreboard_http_requests_total",
				Help: "HTTP requests by route pattern, method and status code.",
			},
			[]string{"route", "method", "code"},
		),
		httpDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "scoreboard_http_request_duration_seconds",
				Help:    "HTTP request latency by route pattern.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
	}
}

// ObserveAggregation records the latency and outcome of one aggregation.
func (m *Metrics) ObserveAggregation(op string, d time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.aggregationDuration.WithLabelValues(op).Observe(d.Seconds())
	m.aggregationTotal.WithLabelValues(op, status).Inc()
}

// ObserveCorruptRows counts ledger rows that failed the invariant check.
func (m *Metrics) ObserveCorruptRows(op string, n int) {
	if n <= 0 {
		return
	}
	m.corruptRows.WithLabelValues(op).Add(float64(n))
}

// ObserveProvision records one provisioning run. The gauges move only on
// success.
func (m *Metrics) ObserveProvision(teams, services int, at time.Time, err error) {
	if err != nil {
		m.provisionRuns.WithLabelValues("error").Inc()
		return
	}
	m.provisionRuns.WithLabelValues("ok").Inc()
	m.provisionedTeams.Set(float64(teams))
	m.provisionedServices.Set(float64(services))
	m.lastProvision.Set(float64(at.Unix()))
}

// ObserveHTTP records one served request.
func (m *Metrics) ObserveHTTP(route, method string, code int, d time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
	m.httpDuration.WithLabelValues(route).Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
