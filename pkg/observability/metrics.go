// Package observability provides Prometheus metrics and OpenTelemetry
// tracing for the bus.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsConfig configures the metrics recorder
type MetricsConfig struct {
	Namespace        string    // Prometheus namespace (default: mcpbus)
	HistogramBuckets []float64 // Custom latency buckets
	ConstLabels      prometheus.Labels
}

// Metrics records bus-level observations into Prometheus. It satisfies
// server.MetricsRecorder and server.ToolMetricsRecorder.
type Metrics struct {
	registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec

	toolCallDuration *prometheus.HistogramVec
	toolCallTotal    *prometheus.CounterVec

	conversations prometheus.Gauge
}

// NewMetrics creates a metrics recorder with its own registry
func NewMetrics(config MetricsConfig) *Metrics {
	if config.Namespace == "" {
		config.Namespace = "mcpbus"
	}
	if len(config.HistogramBuckets) == 0 {
		config.HistogramBuckets = prometheus.DefBuckets
	}

	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Name:        "request_duration_seconds",
			Help:        "Duration of dispatched requests",
			Buckets:     config.HistogramBuckets,
			ConstLabels: config.ConstLabels,
		}, []string{"server", "method", "status"}),
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "requests_total",
			Help:        "Total dispatched requests",
			ConstLabels: config.ConstLabels,
		}, []string{"server", "method", "status"}),
		toolCallDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Name:        "tool_call_duration_seconds",
			Help:        "Duration of tool backend executions",
			Buckets:     config.HistogramBuckets,
			ConstLabels: config.ConstLabels,
		}, []string{"tool", "status"}),
		toolCallTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "tool_calls_total",
			Help:        "Total tool backend executions",
			ConstLabels: config.ConstLabels,
		}, []string{"tool", "status"}),
		conversations: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Name:        "conversations",
			Help:        "Live conversations in the memory store",
			ConstLabels: config.ConstLabels,
		}),
	}

	m.registry.MustRegister(
		m.requestDuration,
		m.requestTotal,
		m.toolCallDuration,
		m.toolCallTotal,
		m.conversations,
	)
	return m
}

// RecordRequest records one dispatched request
func (m *Metrics) RecordRequest(server, method, status string, duration time.Duration) {
	m.requestDuration.WithLabelValues(server, method, status).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(server, method, status).Inc()
}

// RecordToolCall records one tool backend execution
func (m *Metrics) RecordToolCall(tool, status string, duration time.Duration) {
	m.toolCallDuration.WithLabelValues(tool, status).Observe(duration.Seconds())
	m.toolCallTotal.WithLabelValues(tool, status).Inc()
}

// SetConversations sets the live conversation gauge
func (m *Metrics) SetConversations(n int) {
	m.conversations.Set(float64(n))
}

// Registry exposes the underlying registry for tests and extra collectors
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the scrape endpoint handler
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
