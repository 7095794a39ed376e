package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chat_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "route"},
	)

	// Realtime
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "chat_ws_connections",
			Help: "Currently open websocket connections",
		},
	)

	WSEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_ws_events_total",
			Help: "Inbound websocket events by name",
		},
		[]string{"event"},
	)

	WSSendFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_ws_send_failures_total",
			Help: "Best-effort pushes that failed",
		},
	)

	UsersOnline = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "chat_presence_online",
			Help: "Users registered in presence",
		},
	)

	// Business
	MessagesSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_messages_sent_total",
			Help: "Messages persisted",
		},
		[]string{"source"}, // "ws" | "http"
	)

	NotificationsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_notifications_created_total",
			Help: "Notifications persisted",
		},
		[]string{"type"},
	)

	NotificationsPushed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_notifications_pushed_total",
			Help: "Notifications delivered to a live connection",
		},
	)
)
