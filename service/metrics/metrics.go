package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus collectors for the dashboard.
// Following the explicit dependency injection pattern, this struct
// is passed to all components that need to record metrics.
type Metrics struct {
	// Remote data metrics
	fetchesStartedTotal *prometheus.CounterVec
	fetchesTotal        *prometheus.CounterVec
	fetchDuration       *prometheus.HistogramVec
	cellResetsTotal     *prometheus.CounterVec

	// View metrics
	rendersTotal         *prometheus.CounterVec
	clipboardCopiesTotal *prometheus.CounterVec

	// Live refresh metrics
	liveEventsTotal *prometheus.CounterVec

	// HTTP client metrics
	httpRequestDuration *prometheus.HistogramVec
	httpRequestsTotal   *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance and registers all collectors.
// If registry is nil, prometheus.DefaultRegisterer is used.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}

	factory := promauto.With(registry)

	return &Metrics{
		fetchesStartedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "remote_fetches_started_total",
				Help: "Total number of fetches issued by cell and trigger",
			},
			[]string{"cell", "trigger"},
		),
		fetchesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "remote_fetches_total",
				Help: "Total number of completed fetches by cell and outcome (success, failure, stale)",
			},
			[]string{"cell", "outcome"},
		),
		fetchDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "remote_fetch_duration_seconds",
				Help:    "Duration of remote fetches in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
			},
			[]string{"cell"},
		),
		cellResetsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "remote_cell_resets_total",
				Help: "Total number of cells cleared to not_asked because the identity went away",
			},
			[]string{"cell"},
		),

		rendersTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "view_renders_total",
				Help: "Total number of view renders by view and state",
			},
			[]string{"view", "state"},
		),
		clipboardCopiesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "clipboard_copies_total",
				Help: "Total number of clipboard copies by status",
			},
			[]string{"status"},
		),

		liveEventsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "live_events_total",
				Help: "Total number of live transaction events received from NATS",
			},
			[]string{"status"},
		),

		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "api_client_request_duration_seconds",
				Help:    "Duration of dashboard API requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"endpoint", "status"},
		),
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "api_client_requests_total",
				Help: "Total number of dashboard API requests",
			},
			[]string{"endpoint", "status"},
		),
	}
}

// Remote data metric helpers

// RecordFetchStarted records a fetch issued for a cell.
// trigger is "identity" for edge-triggered fetches and "refresh" for explicit ones.
func (m *Metrics) RecordFetchStarted(cell, trigger string) {
	m.fetchesStartedTotal.WithLabelValues(cell, trigger).Inc()
}

// RecordFetchCompleted records a fetch completion with its outcome.
func (m *Metrics) RecordFetchCompleted(cell, outcome string, duration float64) {
	m.fetchesTotal.WithLabelValues(cell, outcome).Inc()
	m.fetchDuration.WithLabelValues(cell).Observe(duration)
}

// RecordCellReset records a cell cleared back to not_asked.
func (m *Metrics) RecordCellReset(cell string) {
	m.cellResetsTotal.WithLabelValues(cell).Inc()
}

// View metric helpers

// RecordRender records a view render and the remote data state it rendered.
func (m *Metrics) RecordRender(view, state string) {
	m.rendersTotal.WithLabelValues(view, state).Inc()
}

// RecordClipboardCopy records a clipboard copy attempt.
func (m *Metrics) RecordClipboardCopy(err error) {
	m.clipboardCopiesTotal.WithLabelValues(errorStatus(err)).Inc()
}

// RecordLiveEvent records a live event received over NATS.
func (m *Metrics) RecordLiveEvent(status string) {
	m.liveEventsTotal.WithLabelValues(status).Inc()
}

// RecordHTTPRequest records a dashboard API request with duration.
func (m *Metrics) RecordHTTPRequest(endpoint string, statusCode int, duration float64) {
	status := statusCodeToString(statusCode)
	m.httpRequestDuration.WithLabelValues(endpoint, status).Observe(duration)
	m.httpRequestsTotal.WithLabelValues(endpoint, status).Inc()
}

// Helper functions

func errorStatus(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

func statusCodeToString(code int) string {
	// Group status codes by class
	switch {
	case code == 0:
		return "error"
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500 && code < 600:
		return "5xx"
	default:
		return "unknown"
	}
}
