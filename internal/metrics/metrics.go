// Cinematch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus instrumentation for:
// - API endpoint latency and throughput
// - Model fits (duration, outcome, model size, convergence)
// - Recommendation requests by serving path
// - Badger store operations
// - The refit circuit breaker

var (
	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5}, // In-memory scoring is fast
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Model Fit Metrics
	FitDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommend_fit_duration_seconds",
			Help:    "Duration of model fit stages in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 300},
		},
		[]string{"stage"}, // "content", "collaborative", "cold_start", "total"
	)

	FitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_fits_total",
			Help: "Total number of model fits by outcome",
		},
		[]string{"status"}, // "success", "invalid_input", "cancelled", "failed"
	)

	FitLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "recommend_fit_last_success_timestamp",
			Help: "Unix timestamp of the last successful model fit",
		},
	)

	ConvergenceWarnings = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommend_convergence_warnings_total",
			Help: "Total number of matrix factorization fits that did not converge",
		},
	)

	TrainingRMSE = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "recommend_training_rmse",
			Help: "Training RMSE of the active matrix factorization model",
		},
	)

	ModelVersion = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "recommend_model_version",
			Help: "Version of the active model (increments on each successful fit)",
		},
	)

	ModelSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "recommend_model_entities",
			Help: "Number of entities in the active model",
		},
		[]string{"kind"}, // "movies", "users", "ratings"
	)

	ModelSparsity = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "recommend_model_sparsity",
			Help: "Sparsity of the user-movie rating matrix of the active model",
		},
	)

	// Recommendation Metrics
	RecommendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_requests_total",
			Help: "Total number of recommendation requests by serving path",
		},
		[]string{"path"}, // "cold_start", "hybrid", "item_fallback"
	)

	RecommendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommend_duration_seconds",
			Help:    "Recommendation latency in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"path"},
	)

	RecommendResults = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommend_results",
			Help:    "Number of recommendations returned per request",
			Buckets: []float64{0, 1, 5, 10, 20, 50, 100},
		},
	)

	// Store Metrics
	StoreOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "store_operation_duration_seconds",
			Help:    "Duration of badger store operations in seconds",
			Buckets: prometheus.DefBuckets, // 0.005s, 0.01s, 0.025s, 0.05s, 0.1s, 0.25s, 0.5s, 1s, 2.5s, 5s, 10s
		},
		[]string{"operation"},
	)

	StoreOperationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_operation_errors_total",
			Help: "Total number of badger store operation errors",
		},
		[]string{"operation"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Application Info
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version information",
		},
		[]string{"version", "go_version"},
	)

	AppUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "app_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)
)

// Fit outcome labels.
const (
	FitStatusSuccess      = "success"
	FitStatusInvalidInput = "invalid_input"
	FitStatusCancelled    = "cancelled"
	FitStatusFailed       = "failed"
)

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordFitStage records the duration of one fit stage.
func RecordFitStage(stage string, duration time.Duration) {
	FitDuration.WithLabelValues(stage).Observe(duration.Seconds())
}

// RecordFit records the outcome of a full model fit.
func RecordFit(status string, duration time.Duration) {
	FitsTotal.WithLabelValues(status).Inc()
	FitDuration.WithLabelValues("total").Observe(duration.Seconds())
	if status == FitStatusSuccess {
		FitLastSuccess.Set(float64(time.Now().Unix()))
	}
}

// FitStatus classifies a fit error into an outcome label.
func FitStatus(err error, invalidInput bool) string {
	switch {
	case err == nil:
		return FitStatusSuccess
	case invalidInput:
		return FitStatusInvalidInput
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return FitStatusCancelled
	default:
		return FitStatusFailed
	}
}

// UpdateModelGauges publishes the shape of the newly active model.
func UpdateModelGauges(version int64, movies, users, ratings int, sparsity, rmse float64) {
	ModelVersion.Set(float64(version))
	ModelSize.WithLabelValues("movies").Set(float64(movies))
	ModelSize.WithLabelValues("users").Set(float64(users))
	ModelSize.WithLabelValues("ratings").Set(float64(ratings))
	ModelSparsity.Set(sparsity)
	TrainingRMSE.Set(rmse)
}

// RecordConvergenceWarning counts a non-converged factorization.
func RecordConvergenceWarning() {
	ConvergenceWarnings.Inc()
}

// RecordRecommendation records one served recommendation request.
func RecordRecommendation(path string, results int, duration time.Duration) {
	RecommendRequests.WithLabelValues(path).Inc()
	RecommendDuration.WithLabelValues(path).Observe(duration.Seconds())
	RecommendResults.Observe(float64(results))
}

// RecordStoreOperation records a badger store operation metric
func RecordStoreOperation(operation string, duration time.Duration, err error) {
	StoreOperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		StoreOperationErrors.WithLabelValues(operation).Inc()
	}
}

// RecordCircuitBreakerResult records a request outcome through a breaker.
func RecordCircuitBreakerResult(name, result string) {
	CircuitBreakerRequests.WithLabelValues(name, result).Inc()
}

// RecordCircuitBreakerTransition records a breaker state change. States use
// gobreaker's string form ("closed", "half-open", "open").
func RecordCircuitBreakerTransition(name, from, to string) {
	CircuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
	CircuitBreakerState.WithLabelValues(name).Set(breakerStateValue(to))
}

func breakerStateValue(state string) float64 {
	switch state {
	case "half-open":
		return 1
	case "open":
		return 2
	default:
		return 0
	}
}
