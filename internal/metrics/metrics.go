package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Classifier Metrics
var (
	// ClassificationsTotal tracks classifier calls by backend and outcome (ok/error)
	ClassificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "starsense_classifications_total",
			Help: "Total classifier calls by backend and outcome",
		},
		[]string{"backend", "outcome"},
	)

	// ClassificationDuration tracks classifier latency in seconds
	ClassificationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "starsense_classification_duration_seconds",
			Help:    "Classifier call duration in seconds",
			Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"backend"},
	)

	// ClassifierHealthy is 1 while the last health check succeeded
	ClassifierHealthy = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "starsense_classifier_healthy",
			Help: "Whether the last classifier health check succeeded (1) or not (0)",
		},
	)

	// CircuitBreakerState tracks the classifier breaker (0=closed, 1=half-open, 2=open)
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "starsense_circuit_breaker_state",
			Help: "Classifier circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"backend"},
	)
)

// Cache Metrics
var (
	CacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "starsense_cache_lookups_total",
			Help: "Prediction cache lookups by result (hit/miss/error)",
		},
		[]string{"result"},
	)
)

// Bulk Metrics
var (
	// BulkRowsTotal tracks bulk rows by final status (ok/skipped/failed)
	BulkRowsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "starsense_bulk_rows_total",
			Help: "Bulk rows processed by status",
		},
		[]string{"status"},
	)

	BulkBatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "starsense_bulk_batches_total",
			Help: "Bulk batches by outcome (completed/aborted)",
		},
		[]string{"outcome"},
	)

	BulkBatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "starsense_bulk_batch_duration_seconds",
			Help:    "Bulk batch duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		},
	)
)

// HTTP Metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "starsense_http_requests_total",
			Help: "HTTP requests by route and status code",
		},
		[]string{"route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "starsense_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
)

// Bulk Worker Metrics
var (
	// KafkaMessagesTotal tracks bulk worker messages by outcome (consumed/malformed/published/publish_failed)
	KafkaMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "starsense_kafka_messages_total",
			Help: "Total bulk worker Kafka messages by outcome",
		},
		[]string{"outcome"},
	)
)
