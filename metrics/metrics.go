// Package metrics declares the Prometheus collectors exported by the
// builder and the recommendation server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Build pipeline

	BuildRecords = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinematch_build_records_total",
			Help: "Catalog records processed by the index builder, by stage (fetched, skipped, embedded)",
		},
		[]string{"source", "stage"},
	)

	BuildPageFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinematch_build_page_failures_total",
			Help: "Source pages or batches that failed and were skipped",
		},
		[]string{"source"},
	)

	BuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cinematch_build_duration_seconds",
			Help:    "Wall time of a full index build",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		},
	)

	// Serving path

	RecommendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cinematch_recommend_duration_seconds",
			Help:    "Latency of recommendation stages",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"stage"}, // encode, search, score, total
	)

	RecommendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinematch_recommend_requests_total",
			Help: "Recommendation calls by outcome",
		},
		[]string{"outcome"}, // ok, empty_query, encode_error, error
	)

	CandidatePoolSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cinematch_candidate_pool_size",
			Help:    "Valid candidates returned by the index before re-ranking",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500},
		},
	)

	SummaryRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinematch_summary_requests_total",
			Help: "Summary generation attempts by status (available, unavailable, disabled)",
		},
		[]string{"status"},
	)

	CatalogSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cinematch_catalog_movies",
			Help: "Movies in the loaded catalog",
		},
	)

	// External HTTP clients

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cinematch_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinematch_upstream_requests_total",
			Help: "Requests to external services by result",
		},
		[]string{"service", "result"}, // result: success, failure, retry, rejected
	)
)
