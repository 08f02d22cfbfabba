package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Engagement Metrics
var (
	// VotesAppliedTotal tracks applied votes by resulting transition
	// (added, switched, noop)
	VotesAppliedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "votes_applied_total",
			Help: "Total applied votes by transition outcome",
		},
		[]string{"transition"},
	)

	// AcceptanceChangesTotal tracks accept/unaccept operations
	AcceptanceChangesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "acceptance_changes_total",
			Help: "Total answer acceptance state changes by operation",
		},
		[]string{"operation"},
	)

	// StoreOpDuration tracks durable-store operation latency in seconds
	StoreOpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "store_operation_duration_seconds",
			Help:    "Durable store operation duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"operation"},
	)
)

// Notification Metrics
var (
	// NotificationsPersistedTotal tracks notification rows written
	NotificationsPersistedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "notifications_persisted_total",
			Help: "Total notification records persisted",
		},
	)

	// NotificationsDroppedTotal tracks notifications whose durable write failed
	NotificationsDroppedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "notifications_dropped_total",
			Help: "Total notifications dropped because the durable write failed",
		},
	)
)

// Fan-out Hub Metrics
var (
	// HubActiveSessions tracks currently connected sessions
	HubActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "hub_active_sessions",
			Help: "Number of currently connected sessions",
		},
	)

	// HubActiveRooms tracks rooms with at least one member
	HubActiveRooms = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "hub_active_rooms",
			Help: "Number of rooms with at least one joined session",
		},
	)

	// HubPublishesTotal tracks publish calls by event name
	HubPublishesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hub_publishes_total",
			Help: "Total publish calls by event name",
		},
		[]string{"event"},
	)

	// HubDeliveriesTotal tracks events delivered to individual sessions
	HubDeliveriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hub_deliveries_total",
			Help: "Total events delivered to individual sessions",
		},
	)

	// HubSlowClientsEvicted tracks sessions disconnected for full send buffers
	HubSlowClientsEvicted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hub_slow_clients_evicted_total",
			Help: "Sessions disconnected because their send buffer was full",
		},
	)
)

// Redis Metrics
var (
	// RedisOpsTotal tracks Redis commands by operation and status
	RedisOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "redis_operations_total",
			Help: "Total Redis operations by command and status",
		},
		[]string{"operation", "status"},
	)

	// RedisOpDuration tracks Redis command latency in seconds
	RedisOpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "redis_operation_duration_seconds",
			Help:    "Redis operation duration in seconds",
			Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .25},
		},
		[]string{"operation"},
	)

	// RedisConnectionErrors tracks failed Redis dials
	RedisConnectionErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "redis_connection_errors_total",
			Help: "Total Redis connection errors",
		},
	)

	// PubSubMessagesReceived tracks pub/sub messages consumed by channel
	PubSubMessagesReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pubsub_messages_received_total",
			Help: "Total pub/sub messages received by channel",
		},
		[]string{"channel"},
	)
)

// Cache Metrics
var (
	// UnreadCacheHits tracks unread-count cache results
	UnreadCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "unread_cache_requests_total",
			Help: "Unread notification count cache requests by result (hit/miss/error)",
		},
		[]string{"result"},
	)
)
