// Package metrics holds the prometheus collectors for ingestion and HTTP traffic.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metric names.
const (
	MetricRefreshTotal        = "location_refresh_total"
	MetricRefreshDuration     = "location_refresh_duration_seconds"
	MetricSnapshotLocations   = "location_snapshot_locations"
	MetricRowsDroppedTotal    = "location_rows_dropped_total"
	MetricHTTPRequestsTotal   = "http_requests_total"
	MetricHTTPRequestDuration = "http_request_duration_seconds"
)

// Refresh outcomes.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Metrics contains prometheus collectors. All methods are safe for concurrent use
// and are no-ops on a nil receiver.
type Metrics struct {
	refreshTotal        *prometheus.CounterVec
	refreshDuration     prometheus.Histogram
	snapshotLocations   *prometheus.GaugeVec
	rowsDropped         *prometheus.CounterVec
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// NewMetrics creates the collectors. Call Register to expose them.
func NewMetrics() *Metrics {
	return &Metrics{
		refreshTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricRefreshTotal,
				Help: "Total number of location feed refreshes by outcome",
			},
			[]string{"status"},
		),
		refreshDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    MetricRefreshDuration,
				Help:    "Duration of location feed refreshes in seconds",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
			},
		),
		snapshotLocations: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: MetricSnapshotLocations,
				Help: "Number of locations in the current snapshot by category",
			},
			[]string{"category"},
		),
		rowsDropped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricRowsDroppedTotal,
				Help: "Total number of feed rows dropped during ingestion by reason",
			},
			[]string{"reason"},
		),
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricHTTPRequestsTotal,
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    MetricHTTPRequestDuration,
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
			[]string{"method", "path"},
		),
	}
}

// Register registers every collector with reg.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		m.refreshTotal,
		m.refreshDuration,
		m.snapshotLocations,
		m.rowsDropped,
		m.httpRequestsTotal,
		m.httpRequestDuration,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// ObserveRefresh records one refresh attempt.
func (m *Metrics) ObserveRefresh(status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.refreshTotal.WithLabelValues(status).Inc()
	m.refreshDuration.Observe(duration.Seconds())
}

// SetSnapshotCounts replaces the per-category location gauges.
func (m *Metrics) SetSnapshotCounts(counts map[string]int) {
	if m == nil {
		return
	}
	m.snapshotLocations.Reset()
	for category, n := range counts {
		m.snapshotLocations.WithLabelValues(category).Set(float64(n))
	}
}

// IncRowsDropped counts one dropped row.
func (m *Metrics) IncRowsDropped(reason string) {
	if m == nil {
		return
	}
	m.rowsDropped.WithLabelValues(reason).Inc()
}

// ObserveHTTPRequest records one handled request.
func (m *Metrics) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}
