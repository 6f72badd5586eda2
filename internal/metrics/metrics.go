// Partwise - Auto Parts Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/partwise

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Recommendation Metrics
	RecommendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "partwise_recommend_requests_total",
			Help: "Total number of recommendation requests by kind and outcome",
		},
		[]string{"kind", "outcome"}, // outcome: "ok", "cached", "fallback", "invalid", "not_found", "error"
	)

	RecommendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "partwise_recommend_duration_seconds",
			Help:    "Duration of recommendation requests in seconds",
			Buckets: []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"kind"},
	)

	RecommendCache = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "partwise_recommend_cache_total",
			Help: "Recommendation cache lookups by kind and result",
		},
		[]string{"kind", "result"}, // result: "hit", "miss", "error"
	)

	CandidatesScored = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "partwise_recommend_candidates_scored",
			Help:    "Number of candidates scored per request",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8), // 1 .. 16384
		},
	)

	CandidatesSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "partwise_recommend_candidates_skipped_total",
			Help: "Candidates skipped because of a data invariant violation",
		},
		[]string{"reason"},
	)

	RecommendFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "partwise_recommend_fallback_total",
			Help: "Requests answered by category fallback",
		},
		[]string{"reason"}, // "cold_start", "timeout", "empty_popularity"
	)

	// Cache Backend Metrics
	CacheBreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "partwise_cache_breaker_state",
			Help: "Recommendation cache circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
	)

	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "partwise_db_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"query"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "partwise_db_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"query"},
	)

	// Ingestion Metrics
	IngestEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "partwise_ingest_events_total",
			Help: "Interaction events consumed by type and outcome",
		},
		[]string{"type", "outcome"}, // outcome: "stored", "invalid", "error"
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "partwise_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "partwise_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// RecordRecommendation records the outcome and latency of one engine call.
func RecordRecommendation(kind, outcome string, duration time.Duration) {
	RecommendRequests.WithLabelValues(kind, outcome).Inc()
	RecommendDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

// RecordCacheLookup records a recommendation cache hit, miss or error.
func RecordCacheLookup(kind, result string) {
	RecommendCache.WithLabelValues(kind, result).Inc()
}

// RecordCandidates records how many candidates a request scored and how many it skipped.
func RecordCandidates(scored, skipped int) {
	CandidatesScored.Observe(float64(scored))
	if skipped > 0 {
		CandidatesSkipped.WithLabelValues("invalid_candidate").Add(float64(skipped))
	}
}

// RecordFallback records a request answered by the category fallback.
func RecordFallback(reason string) {
	RecommendFallbacks.WithLabelValues(reason).Inc()
}

// SetCacheBreakerState publishes the breaker state as a number.
func SetCacheBreakerState(state string) {
	switch state {
	case "closed":
		CacheBreakerState.Set(0)
	case "half-open":
		CacheBreakerState.Set(1)
	case "open":
		CacheBreakerState.Set(2)
	}
}

// RecordDBQuery records a database query metric
func RecordDBQuery(query string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(query).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(query).Inc()
	}
}

// RecordIngestEvent records one consumed interaction event.
func RecordIngestEvent(eventType, outcome string) {
	IngestEvents.WithLabelValues(eventType, outcome).Inc()
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, route, status string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, status).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}
