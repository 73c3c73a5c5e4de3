// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "imgkeeper_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "imgkeeper_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "path"},
	)

	// Pipeline metrics
	EventsReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "imgkeeper_events_received_total",
			Help: "Webhook events received",
		},
		[]string{"kind", "source"},
	)

	EventsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "imgkeeper_events_dropped_total",
			Help: "Webhook events not processed",
		},
		[]string{"reason"}, // "queue_full", "duplicate", "external_content", "shutdown"
	)

	EventFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "imgkeeper_event_failures_total",
			Help: "Events whose pipeline failed",
		},
		[]string{"kind"},
	)

	ImagesSaved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "imgkeeper_images_saved_total",
			Help: "Images written to storage",
		},
		[]string{"source"},
	)

	ImageBytes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "imgkeeper_image_bytes_total",
			Help: "Bytes written to storage",
		},
	)

	NameLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "imgkeeper_name_lookups_total",
			Help: "Folder name resolutions by outcome",
		},
		[]string{"result"}, // "hit", "miss", "error"
	)

	Notifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "imgkeeper_notifications_total",
			Help: "Outbound messages by channel and outcome",
		},
		[]string{"channel", "result"}, // channel: "reply", "push"; result: "ok", "error", "refused"
	)

	CacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "imgkeeper_cache_evictions_total",
			Help: "Expired entries removed by periodic sweeps",
		},
		[]string{"cache"},
	)
)
