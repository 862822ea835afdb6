package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Poll metrics
	PollsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "classchat_polls_total",
			Help: "Total message polls",
		},
		[]string{"result"}, // "ok", "error" or "discarded"
	)

	PollDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "classchat_poll_duration_seconds",
			Help:    "Message poll duration",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
	)

	TicksSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "classchat_poll_ticks_skipped_total",
			Help: "Timer ticks dropped because a poll was still in flight",
		},
	)

	// Sync metrics
	Notifications = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "classchat_notifications_total",
			Help: "Total new-message notifications emitted",
		},
	)

	SeenMessages = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "classchat_seen_messages",
			Help: "Size of the seen set of the current room session",
		},
	)

	// REST client metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "classchat_api_requests_total",
			Help: "Total REST API requests",
		},
		[]string{"method", "status"},
	)
)
