// Package metrics holds the Prometheus collectors for pulsewatch.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Source fetch metrics
	FetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulsewatch_fetch_total",
			Help: "Total number of source fetches by outcome",
		},
		[]string{"source", "status"},
	)

	FetchedItems = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulsewatch_fetched_items_total",
			Help: "Total number of items returned by source fetchers",
		},
		[]string{"source"},
	)

	// Classification metrics
	Classifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulsewatch_classifications_total",
			Help: "Total number of sentiment classifications by label and outcome",
		},
		[]string{"label", "outcome"},
	)

	LLMRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pulsewatch_llm_request_duration_seconds",
			Help:    "Text-generation request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"component"},
	)

	// Reports
	ReportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulsewatch_reports_total",
			Help: "Total number of PDF reports by outcome",
		},
		[]string{"status"},
	)

	// Events
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulsewatch_events_published_total",
			Help: "Total number of analysis events published",
		},
		[]string{"sink", "status"},
	)

	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pulsewatch_ws_connections_active",
			Help: "Number of active WebSocket connections",
		},
	)

	// HTTP request metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulsewatch_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pulsewatch_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 5, 15, 30, 60, 120, 300},
		},
		[]string{"method", "route"},
	)

	BuildInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "pulsewatch_build_info",
			Help: "Build information",
		},
		[]string{"version", "commit"},
	)
)

// Init records build information.
func Init(version, commit string) {
	BuildInfo.WithLabelValues(version, commit).Set(1)
}
