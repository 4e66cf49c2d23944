package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ranchbook_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ranchbook_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	duplicateTagConflicts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ranchbook_duplicate_tag_conflicts_total",
		Help: "Count of duplicate-tag conflicts by phase (precheck vs race)",
	}, []string{"phase"})

	exportRows = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ranchbook_export_rows_total",
		Help: "Total herd rows written to spreadsheet exports",
	})
)

// ObserveHTTPRequest registra un request HTTP.
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// ObserveDuplicateTag cuenta un conflicto de tag duplicado.
// phase: "precheck" (detectado antes de escribir) o "race" (constraint del store).
func ObserveDuplicateTag(phase string) {
	duplicateTagConflicts.WithLabelValues(phase).Inc()
}

// ObserveExportRows suma filas exportadas.
func ObserveExportRows(n int) {
	if n > 0 {
		exportRows.Add(float64(n))
	}
}
