// Cinematch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

/*
Package metrics provides Prometheus metrics collection and export for observability.

All collectors are registered on the default registry via promauto at package
initialization and exposed by the HTTP server at /metrics.

# Available Metrics

API Metrics:
  - api_requests_total: Total API requests (counter)
    Labels: method, endpoint, status_code
  - api_request_duration_seconds: Request latency (histogram)
    Labels: method, endpoint
  - api_active_requests: In-flight requests (gauge)
  - api_rate_limit_hits_total: Rate limit rejections (counter)
    Labels: endpoint

Model Fit Metrics:
  - recommend_fit_duration_seconds: Fit stage duration (histogram)
    Labels: stage (content, collaborative, cold_start, total)
  - recommend_fits_total: Fits by outcome (counter)
    Labels: status (success, invalid_input, cancelled, failed)
  - recommend_fit_last_success_timestamp: Unix time of the last good fit (gauge)
  - recommend_convergence_warnings_total: Non-converged factorizations (counter)
  - recommend_training_rmse: Training RMSE of the active model (gauge)
  - recommend_model_version: Active model version (gauge)
  - recommend_model_entities: Movies, users and ratings in the model (gauge)
    Labels: kind
  - recommend_model_sparsity: Rating matrix sparsity (gauge)

Recommendation Metrics:
  - recommend_requests_total: Requests by serving path (counter)
    Labels: path (cold_start, hybrid, item_fallback)
  - recommend_duration_seconds: Recommendation latency (histogram)
    Labels: path
  - recommend_results: Results returned per request (histogram)

Store Metrics:
  - store_operation_duration_seconds: Badger operation latency (histogram)
    Labels: operation
  - store_operation_errors_total: Failed operations (counter)
    Labels: operation

Circuit Breaker Metrics:
  - circuit_breaker_state: Current state (gauge)
    Labels: name
    Values: 0=closed, 1=half-open, 2=open
  - circuit_breaker_requests_total: Requests by result (counter)
    Labels: name, result (success, failure, rejected)
  - circuit_breaker_state_transitions_total: State changes (counter)
    Labels: name, from_state, to_state

# Usage

	start := time.Now()
	err := engine.Fit(ctx, movies, ratings)
	metrics.RecordFit(metrics.FitStatus(err, false), time.Since(start))

Example PromQL queries:

	# Recommendation p95 latency by path
	histogram_quantile(0.95, sum by (le, path) (rate(recommend_duration_seconds_bucket[5m])))

	# Share of requests served by the cold-start path
	sum(rate(recommend_requests_total{path="cold_start"}[5m])) / sum(rate(recommend_requests_total[5m]))

# Thread Safety

All recording helpers are safe for concurrent use.
*/
package metrics
