package vectorstore

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SearchDuration is a search-latency histogram labelled by operation
	// (search, search_hybrid_native, search_hybrid_rrf, search_groups).
	// No QdrantStore method records into it.
	SearchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "codegraph",
			Subsystem: "vectorstore",
			Name:      "search_duration_seconds",
			Help:      "Duration of search operations in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// PointsUpserted counts points written, by collection.
	PointsUpserted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "codegraph",
			Subsystem: "vectorstore",
			Name:      "points_upserted_total",
			Help:      "Total number of points upserted",
		},
		[]string{"collection"},
	)

	// RetryAttempts counts retry attempts by operation and outcome.
	RetryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "codegraph",
			Subsystem: "vectorstore",
			Name:      "retry_attempts_total",
			Help:      "Total number of retried Qdrant operations",
		},
		[]string{"operation", "outcome"},
	)

	// CircuitBreakerOpen reports whether an operation's circuit is
	// currently open (1) or closed (0).
	CircuitBreakerOpen = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "codegraph",
			Subsystem: "vectorstore",
			Name:      "circuit_breaker_open",
			Help:      "1 if the circuit breaker for an operation is open",
		},
		[]string{"operation"},
	)
)
