// Package metrics exposes Prometheus instrumentation for exports and imports.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// operationsTotal counts archive operations.
	// Labels: operation (export, import), status (success, error code)
	operationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "jr3d",
		Subsystem: "archive",
		Name:      "operations_total",
		Help:      "Total archive exports and imports by status",
	}, []string{"operation", "status"})

	// operationDuration measures end-to-end export and import time.
	// Labels: operation
	operationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "jr3d",
		Subsystem: "archive",
		Name:      "operation_duration_seconds",
		Help:      "Archive operation latency in seconds",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"operation"})

	// archiveBytes tracks the size of produced and consumed archives.
	// Labels: operation
	archiveBytes = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "jr3d",
		Subsystem: "archive",
		Name:      "size_bytes",
		Help:      "Archive size in bytes",
		Buckets:   prometheus.ExponentialBuckets(1<<10, 4, 10),
	}, []string{"operation"})

	// skippedTotal counts assets and entities skipped under the
	// partial-failure policy.
	// Labels: operation, kind (model, texture, image, effect_resource, ...)
	skippedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "jr3d",
		Subsystem: "archive",
		Name:      "skipped_total",
		Help:      "Total skipped assets and entities",
	}, []string{"operation", "kind"})
)

const (
	OperationExport = "export"
	OperationImport = "import"
)

// ObserveOperation records one finished export or import.
func ObserveOperation(operation, status string, started time.Time, size int) {
	operationsTotal.WithLabelValues(operation, status).Inc()
	operationDuration.WithLabelValues(operation).Observe(time.Since(started).Seconds())
	if size > 0 {
		archiveBytes.WithLabelValues(operation).Observe(float64(size))
	}
}

// ObserveSkipped records n skipped items of one kind.
func ObserveSkipped(operation, kind string, n int) {
	if n <= 0 {
		return
	}
	skippedTotal.WithLabelValues(operation, kind).Add(float64(n))
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
