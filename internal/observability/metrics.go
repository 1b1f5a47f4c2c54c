// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Quote metrics
	QuotesServed      *prometheus.CounterVec
	QuotesUnavailable *prometheus.CounterVec

	// Forward engine metrics
	ForwardCalculations *prometheus.CounterVec

	// Feed metrics
	TicksConsumed  *prometheus.CounterVec
	TickErrors     *prometheus.CounterVec
	LastTickUnix   *prometheus.GaugeVec
	SwapPointSaves *prometheus.CounterVec

	// Stream metrics
	WSClients     prometheus.Gauge
	WSDroppedSlow prometheus.Counter
	WSBroadcasts  prometheus.Counter

	// HTTP metrics
	HTTPRequestDuration *prometheus.HistogramVec

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec
}

// NewMetrics creates a Metrics instance registered on reg.
// A nil reg uses the default registerer.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "fxdesk"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)

	return &Metrics{
		// Quote metrics
		QuotesServed: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "quote",
			Name:      "served_total",
			Help:      "Total number of customer quotes served by product",
		}, []string{"product"}),
		QuotesUnavailable: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "quote",
			Name:      "unavailable_total",
			Help:      "Total number of quotes shown as unavailable for lack of a market rate",
		}, []string{"product"}),

		// Forward engine metrics
		ForwardCalculations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "forward",
			Name:      "calculations_total",
			Help:      "Total number of swap-point calculations by outcome",
		}, []string{"outcome"}),

		// Feed metrics
		TicksConsumed: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "ticks_consumed_total",
			Help:      "Total number of market-rate ticks consumed by source",
		}, []string{"source"}),
		TickErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "tick_errors_total",
			Help:      "Total number of ticks rejected by reason",
		}, []string{"reason"}),
		LastTickUnix: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "last_tick_timestamp",
			Help:      "Unix timestamp of the last tick stored per pair",
		}, []string{"pair"}),
		SwapPointSaves: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "curve",
			Name:      "saves_total",
			Help:      "Total number of swap-point rows saved by kind",
		}, []string{"kind"}),

		// Stream metrics
		WSClients: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "stream",
			Name:      "clients",
			Help:      "Number of connected websocket clients",
		}),
		WSDroppedSlow: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stream",
			Name:      "slow_clients_dropped_total",
			Help:      "Total number of websocket clients dropped for a full send buffer",
		}),
		WSBroadcasts: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stream",
			Name:      "broadcasts_total",
			Help:      "Total number of rate snapshots broadcast",
		}),

		// HTTP metrics
		HTTPRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "status"}),

		// Database metrics
		DBQueryDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("", nil)

// RecordQuote counts a served quote, or an unavailable one when available is false.
func (m *Metrics) RecordQuote(product string, available bool) {
	if available {
		m.QuotesServed.WithLabelValues(product).Inc()
		return
	}
	m.QuotesUnavailable.WithLabelValues(product).Inc()
}

// RecordForward counts a swap-point calculation. outcome is the method used
// or "error".
func (m *Metrics) RecordForward(outcome string) {
	m.ForwardCalculations.WithLabelValues(outcome).Inc()
}

// RecordTick counts a consumed tick.
func (m *Metrics) RecordTick(source, pair string, unix int64) {
	m.TicksConsumed.WithLabelValues(source).Inc()
	m.LastTickUnix.WithLabelValues(pair).Set(float64(unix))
}

// RecordTickError counts a rejected tick.
func (m *Metrics) RecordTickError(reason string) {
	m.TickErrors.WithLabelValues(reason).Inc()
}

// RecordDBQuery records database query metrics.
func (m *Metrics) RecordDBQuery(database, operation string, seconds float64, err error) {
	m.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		m.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}
