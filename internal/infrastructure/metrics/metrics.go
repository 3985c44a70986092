package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Agro-Assistant-API Metrics
var (
	// Request counters
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "agro",
			Subsystem: "assistant_api",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// Request duration histogram
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "agro",
			Subsystem: "assistant_api",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"method", "endpoint"},
	)

	// Answer request counter
	AnswersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "agro",
			Subsystem: "assistant_api",
			Name:      "answers_total",
			Help:      "Total answer requests by mode and status",
		},
		[]string{"mode", "status"},
	)

	// Model call duration
	ModelDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "agro",
			Subsystem: "assistant_api",
			Name:      "model_duration_seconds",
			Help:      "Upstream model call duration in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"model"},
	)

	// Attachment fetch counter
	AttachmentFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "agro",
			Subsystem: "assistant_api",
			Name:      "attachment_fetches_total",
			Help:      "Total attachment URL fetches",
		},
		[]string{"status"},
	)

	// Attachment bytes counter
	AttachmentBytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "agro",
			Subsystem: "assistant_api",
			Name:      "attachment_bytes_total",
			Help:      "Total attachment bytes fetched",
		},
	)

	// Blob store operations counter
	BlobOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "agro",
			Subsystem: "assistant_api",
			Name:      "blob_operations_total",
			Help:      "Total blob store operations",
		},
		[]string{"operation", "status"},
	)

	// Live feed fan-out counter
	FeedEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "agro",
			Subsystem: "assistant_api",
			Name:      "feed_events_total",
			Help:      "Total live feed events published",
		},
		[]string{"table", "type"},
	)
)

// RecordRequest records an HTTP request
func RecordRequest(method, endpoint, status string, durationSec float64) {
	RequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	RequestDuration.WithLabelValues(method, endpoint).Observe(durationSec)
}

// RecordAnswer records an answer request
func RecordAnswer(mode, status string) {
	AnswersTotal.WithLabelValues(mode, status).Inc()
}

// RecordModelCall records an upstream model call
func RecordModelCall(model string, durationSec float64) {
	ModelDuration.WithLabelValues(model).Observe(durationSec)
}

// RecordAttachmentFetch records an attachment URL fetch
func RecordAttachmentFetch(status string, bytes int64) {
	AttachmentFetchesTotal.WithLabelValues(status).Inc()
	if status == "success" {
		AttachmentBytesTotal.Add(float64(bytes))
	}
}

// RecordBlobOperation records a blob store operation
func RecordBlobOperation(operation, status string) {
	BlobOperationsTotal.WithLabelValues(operation, status).Inc()
}

// RecordFeedEvent records a published live feed event
func RecordFeedEvent(table, eventType string) {
	FeedEventsTotal.WithLabelValues(table, eventType).Inc()
}
