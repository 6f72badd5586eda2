// Partwise - Auto Parts Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/partwise

/*
Package metrics provides Prometheus metrics collection and export for observability.

Collectors are registered with the default registry through promauto and are
updated through the Record* helpers so call sites stay one line long.

# Metrics Endpoint

Metrics are exposed at the /metrics endpoint in Prometheus text format:

	curl http://localhost:8080/metrics

# Available Metrics

Recommendation engine:
  - partwise_recommend_requests_total{kind,outcome}
  - partwise_recommend_duration_seconds{kind}
  - partwise_recommend_cache_total{kind,result}
  - partwise_recommend_candidates_scored
  - partwise_recommend_candidates_skipped_total{reason}
  - partwise_recommend_fallback_total{reason}

Infrastructure:
  - partwise_cache_breaker_state
  - partwise_db_query_duration_seconds{query}
  - partwise_db_query_errors_total{query}
  - partwise_ingest_events_total{type,outcome}
  - partwise_http_requests_total{method,route,status}
  - partwise_http_request_duration_seconds{method,route}
*/
package metrics
