package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FeedSnapshotsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "feed_snapshots_total",
		Help: "Total number of snapshots received per feed",
	}, []string{"feed"})

	FeedDocsDroppedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "feed_docs_dropped_total",
		Help: "Total number of malformed documents dropped at the feed boundary",
	}, []string{"feed"})

	OrdersSubmittedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_submitted_total",
		Help: "Total number of orders submitted from this client",
	}, []string{"channel"})

	OrdersRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_rejected_total",
		Help: "Total number of checkout attempts rejected before submission",
	}, []string{"reason"})

	OrderSubmitFailedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "order_submit_failed_total",
		Help: "Total number of order writes rejected by the remote store",
	})

	OrderSubmitLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "order_submit_latency_seconds",
		Help:    "Latency of order submission writes",
		Buckets: prometheus.DefBuckets,
	})

	PolicyDenialsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "policy_denials_total",
		Help: "Total number of access policy denials",
	}, []string{"action", "reason"})

	SessionsBlockedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sessions_blocked_total",
		Help: "Total number of sessions force-closed for blocked accounts",
	})

	BannerRotationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "banner_rotations_total",
		Help: "Total number of banner rotation ticks",
	})

	OrderEventsConsumedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "order_events_consumed_total",
		Help: "Total number of order events consumed from the broker",
	}, []string{"type"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
