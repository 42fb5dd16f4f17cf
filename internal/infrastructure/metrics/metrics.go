package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

// Jina-Tools Metrics - using explicit registration
var (
	// HTTP request counters
	RequestsTotal *prometheus.CounterVec

	// MCP JSON-RPC method counters
	MCPRequestsTotal *prometheus.CounterVec

	// Operation outcome counters, outcome is "success" or the error code
	OperationsTotal *prometheus.CounterVec

	// Operation duration histogram
	OperationDuration *prometheus.HistogramVec

	// Upstream token usage reported by Jina
	TokensTotal *prometheus.CounterVec

	// Upstream HTTP latency
	UpstreamLatency *prometheus.HistogramVec
)

// init creates and registers all metrics with the default registry
func init() {
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jan",
			Subsystem: "jina",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	MCPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jan",
			Subsystem: "jina",
			Name:      "mcp_requests_total",
			Help:      "Total number of MCP requests",
		},
		[]string{"method", "status"},
	)

	OperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jan",
			Subsystem: "jina",
			Name:      "operations_total",
			Help:      "Total search and read operations by outcome",
		},
		[]string{"operation", "outcome"},
	)

	OperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "jan",
			Subsystem: "jina",
			Name:      "operation_duration_seconds",
			Help:      "Operation duration in seconds, validation included",
			Buckets:   []float64{0.01, 0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"operation"},
	)

	TokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jan",
			Subsystem: "jina",
			Name:      "tokens_total",
			Help:      "Total tokens reported by the upstream service",
		},
		[]string{"operation"},
	)

	UpstreamLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "jan",
			Subsystem: "jina",
			Name:      "upstream_latency_seconds",
			Help:      "Upstream response time in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"operation", "status"},
	)

	prometheus.MustRegister(RequestsTotal)
	prometheus.MustRegister(MCPRequestsTotal)
	prometheus.MustRegister(OperationsTotal)
	prometheus.MustRegister(OperationDuration)
	prometheus.MustRegister(TokensTotal)
	prometheus.MustRegister(UpstreamLatency)
	log.Debug().Msg("jina metrics registered with Prometheus")
}

// RecordRequest records an HTTP request
func RecordRequest(method, route, status string) {
	if route == "" {
		route = "unmatched"
	}
	RequestsTotal.WithLabelValues(method, route, status).Inc()
}

// RecordMCPRequest records an MCP request
func RecordMCPRequest(method, status string) {
	MCPRequestsTotal.WithLabelValues(method, status).Inc()
}

// RecordUpstreamLatency records the latency of one upstream call. status is the
// HTTP status code or "error" for transport failures.
func RecordUpstreamLatency(operation, status string, durationSec float64) {
	UpstreamLatency.WithLabelValues(operation, status).Observe(durationSec)
}

// Observer feeds operation outcomes into the registered collectors.
type Observer struct{}

// NewObserver returns the Prometheus-backed observer.
func NewObserver() *Observer {
	return &Observer{}
}

// ObserveOperation records the outcome and duration of one operation.
func (Observer) ObserveOperation(operation, outcome string, duration time.Duration) {
	if outcome == "" {
		outcome = "unknown"
	}
	OperationsTotal.WithLabelValues(operation, outcome).Inc()
	OperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// ObserveTokens records token usage reported for a successful operation.
func (Observer) ObserveTokens(operation string, tokens int) {
	if tokens <= 0 {
		return
	}
	TokensTotal.WithLabelValues(operation).Add(float64(tokens))
}
