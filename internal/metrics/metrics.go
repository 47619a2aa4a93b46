// Package metrics provides Prometheus metrics for dadjoke.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "dadjoke"

var (
	// JokesTotal counts served jokes by the source that produced them.
	JokesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jokes_total",
			Help:      "Total number of jokes served",
		},
		[]string{"source"},
	)

	// GenerationDuration measures how long the configured generator takes.
	GenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_duration_seconds",
			Help:      "Duration of joke generation in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"source", "status"},
	)

	PoolRefills = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pool_refills_total",
			Help:      "Number of times the joke pool was refilled after exhaustion",
		},
	)

	// StorageErrorsTotal counts failed database operations.
	StorageErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "storage_errors_total",
			Help:      "Total number of failed storage operations",
		},
		[]string{"operation"},
	)

	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Joke events published to the queue",
		},
		[]string{"status"},
	)
)

// RecordGeneration records one generator call.
func RecordGeneration(source, status string, seconds float64) {
	GenerationDuration.WithLabelValues(source, status).Observe(seconds)
}

// RecordJoke records a joke handed back to a caller.
func RecordJoke(source string) {
	JokesTotal.WithLabelValues(source).Inc()
}

// RecordStorageError records a failed storage operation.
func RecordStorageError(op string) {
	StorageErrorsTotal.WithLabelValues(op).Inc()
}

// RecordEvent records a publish attempt.
func RecordEvent(status string) {
	EventsPublished.WithLabelValues(status).Inc()
}
