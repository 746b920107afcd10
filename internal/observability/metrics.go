// Package observability provides metrics and tracing.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TimelineProjectionLatency records end-to-end timeline projection time by scope.
	TimelineProjectionLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "kumatter_timeline_projection_seconds",
		Help:    "Timeline projection latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"scope"})

	// TimelinePostsReturned tracks how many posts a projection produced.
	TimelinePostsReturned = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "kumatter_timeline_posts_returned",
		Help:    "Number of posts returned per timeline projection",
		Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 500},
	}, []string{"scope"})

	// ToggleOperations counts like/follow toggles by kind and effective outcome.
	ToggleOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kumatter_toggle_operations_total",
		Help: "Total number of like/follow toggles",
	}, []string{"kind", "outcome"})

	// WebSocketBackpressureDrops counts messages dropped due to backpressure by hub and reason.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kumatter_websocket_backpressure_drops_total",
		Help: "Total number of WebSocket messages dropped due to backpressure",
	}, []string{"hub", "reason"})
)

// ObserveTimeline records a finished projection.
func ObserveTimeline(scope string, start time.Time, posts int) {
	TimelineProjectionLatency.WithLabelValues(scope).Observe(time.Since(start).Seconds())
	TimelinePostsReturned.WithLabelValues(scope).Observe(float64(posts))
}

// RecordToggle counts a like or follow toggle; outcome is "changed" or "noop".
func RecordToggle(kind string, changed bool) {
	outcome := "noop"
	if changed {
		outcome = "changed"
	}
	ToggleOperations.WithLabelValues(kind, outcome).Inc()
}
