package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bizrwanda_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bizrwanda_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// CacheLookups counts cache-aside lookups by key prefix and result (hit or miss).
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bizrwanda_cache_lookups_total",
		Help: "Cache lookups by key prefix and result",
	}, []string{"prefix", "result"})

	// ListingsCreated counts submitted listings by post type.
	ListingsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bizrwanda_listings_created_total",
		Help: "Total number of listings submitted by post type",
	}, []string{"post_type"})

	// ModerationDecisions counts admin listing status changes.
	ModerationDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bizrwanda_moderation_decisions_total",
		Help: "Total number of listing moderation decisions by resulting status",
	}, []string{"status"})

	// ApplicationsSubmitted counts job applications.
	ApplicationsSubmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bizrwanda_applications_submitted_total",
		Help: "Total number of job applications submitted",
	})

	// SweepDeactivations counts listings deactivated by the expiry sweep.
	SweepDeactivations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bizrwanda_sweep_deactivations_total",
		Help: "Listings deactivated after their deadline passed, by post type",
	}, []string{"post_type"})

	// WebSocketConnectionsTotal is the gauge of live notification sockets.
	WebSocketConnectionsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "bizrwanda_websocket_connections_total",
		Help: "Total number of active WebSocket connections",
	})

	// WebSocketBackpressureDrops counts messages dropped for slow sockets.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bizrwanda_websocket_backpressure_drops_total",
		Help: "Messages dropped because a client send buffer was full or closed",
	}, []string{"reason"})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}
