// Package observability provides Prometheus metrics and OpenTelemetry tracing.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "snapfeed_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "snapfeed_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// LikeToggles counts like toggle operations by outcome. The "converged"
	// outcome marks an insert that lost a same-user race and was resolved to
	// liked=true instead of an error.
	LikeToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "snapfeed_like_toggles_total",
		Help: "Total number of like toggle operations by outcome",
	}, []string{"outcome"})

	// AttachmentRejections counts append-image rejections by reason.
	AttachmentRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "snapfeed_attachment_rejections_total",
		Help: "Total number of rejected image appends by reason",
	}, []string{"reason"})

	// FeedPageSize records the number of entries returned per feed page.
	FeedPageSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "snapfeed_feed_page_size",
		Help:    "Number of entries returned per feed page",
		Buckets: []float64{0, 1, 5, 10, 20, 50, 100},
	})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}
