package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "talents_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "talents_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// AccessDecisions counts authorization outcomes by resource, action and verdict.
	AccessDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "talents_access_decisions_total",
		Help: "Total number of access decisions",
	}, []string{"resource", "action", "granted"})

	// AuditWriteFailures counts audit records that could not be persisted.
	AuditWriteFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "talents_audit_write_failures_total",
		Help: "Total number of access decisions that failed to persist",
	})

	// ContactRequestTransitions counts contact request status changes.
	ContactRequestTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "talents_contact_request_transitions_total",
		Help: "Total number of contact request transitions by resulting status",
	}, []string{"status"})

	// MessagesSent counts stored messages by send path.
	MessagesSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "talents_messages_sent_total",
		Help: "Total number of messages stored",
	}, []string{"path"})

	// SideTaskOutcomes counts best-effort side tasks by name and outcome.
	SideTaskOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "talents_side_task_outcomes_total",
		Help: "Total number of best-effort side tasks by outcome",
	}, []string{"task", "outcome"})

	// CacheLookups counts cache hits and misses by cache name.
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "talents_cache_lookups_total",
		Help: "Total number of cache lookups by result",
	}, []string{"cache", "result"})
)

// RecordAccessDecision increments the decision counter.
func RecordAccessDecision(resource, action string, granted bool) {
	AccessDecisions.WithLabelValues(resource, action, strconv.FormatBool(granted)).Inc()
}

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}
