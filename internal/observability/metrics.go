// Package observability provides Prometheus metrics for the claim engine.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the application's Prometheus instruments.
type Metrics struct {
	// Claim flow
	ClaimBuildsTotal        *prometheus.CounterVec
	ClaimFinalizationsTotal *prometheus.CounterVec
	GuardDenialsTotal       *prometheus.CounterVec
	ClaimConfirmLatency     prometheus.Histogram

	// Watcher
	WatcherSessionsActive prometheus.Gauge
	WatcherTimeoutsTotal  prometheus.Counter

	// Compressed transfers
	CompressedTransitionsTotal *prometheus.CounterVec

	// Chain RPC
	RPCCallLatency *prometheus.HistogramVec

	// HTTP
	HTTPRequestDuration *prometheus.HistogramVec
}

// NewMetrics registers all instruments under the given namespace.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "claimdrop"
	}

	return &Metrics{
		ClaimBuildsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "claim",
			Name:      "builds_total",
			Help:      "Transaction-request builds by outcome",
		}, []string{"outcome"}),
		ClaimFinalizationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "claim",
			Name:      "finalizations_total",
			Help:      "Finalization attempts by outcome",
		}, []string{"outcome"}),
		GuardDenialsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "claim",
			Name:      "guard_denials_total",
			Help:      "Claim guard denials by reason",
		}, []string{"reason"}),
		ClaimConfirmLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "claim",
			Name:      "confirm_latency_seconds",
			Help:      "Time from build to confirmed finalization",
			Buckets:   []float64{1, 2, 5, 10, 20, 45, 90},
		}),
		WatcherSessionsActive: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "watcher",
			Name:      "sessions_active",
			Help:      "Currently watched claim sessions",
		}),
		WatcherTimeoutsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "watcher",
			Name:      "timeouts_total",
			Help:      "Watch sessions that hit the confirmation deadline",
		}),
		CompressedTransitionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "compressed",
			Name:      "transitions_total",
			Help:      "Compressed transfer state transitions by name and status",
		}, []string{"transition", "status"}),
		RPCCallLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "solana",
			Name:      "rpc_call_latency_seconds",
			Help:      "Solana RPC call latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration by route and status",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
}

// Handler returns the /metrics endpoint handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Default is the process-wide metrics instance.
var Default = NewMetrics("")

// RecordBuild counts one transaction-request build.
func RecordBuild(outcome string) {
	Default.ClaimBuildsTotal.WithLabelValues(outcome).Inc()
}

// RecordFinalization counts one finalization attempt.
func RecordFinalization(outcome string) {
	Default.ClaimFinalizationsTotal.WithLabelValues(outcome).Inc()
}

// RecordGuardDenial counts one guard denial.
func RecordGuardDenial(reason string) {
	Default.GuardDenialsTotal.WithLabelValues(reason).Inc()
}

// RecordCompressedTransition counts one compressed-engine transition.
func RecordCompressedTransition(transition, status string) {
	Default.CompressedTransitionsTotal.WithLabelValues(transition, status).Inc()
}

// RecordRPCLatency records one chain RPC call.
func RecordRPCLatency(method string, seconds float64) {
	Default.RPCCallLatency.WithLabelValues(method).Observe(seconds)
}
