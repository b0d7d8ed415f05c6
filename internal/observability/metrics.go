// Package observability holds Prometheus collectors and OpenTelemetry tracing setup.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "biolink_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "biolink_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// AvatarUploads counts avatar upload attempts by outcome (stored, rejected, skipped, failed).
	AvatarUploads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "biolink_avatar_uploads_total",
		Help: "Total number of avatar uploads by result",
	}, []string{"result"})

	// ProfileSaves counts dashboard saves by outcome.
	ProfileSaves = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "biolink_profile_saves_total",
		Help: "Total number of profile saves by result",
	}, []string{"result"})

	// AuthEvents counts register, login and logout attempts by outcome.
	AuthEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "biolink_auth_events_total",
		Help: "Total number of authentication events by type and result",
	}, []string{"event", "result"})

	// PublicProfileCache counts public profile cache lookups by hit or miss.
	PublicProfileCache = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "biolink_public_profile_cache_total",
		Help: "Public profile cache lookups by result",
	}, []string{"result"})
)

// ObserveQuery records the latency of a database query.
func ObserveQuery(operation, table string, start time.Time) {
	DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
}

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		ObserveQuery(operation, table, start)
	}
}
