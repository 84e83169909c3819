// Cinematch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

/*
Package api exposes the recommendation engine over HTTP using chi.

# Endpoints

	POST /api/v1/recommendations                 personalized or cold-start list
	GET  /api/v1/recommendations/explain/{id}    reason for one movie (?user_id=)
	GET  /api/v1/movies/{id}                     catalog entry
	GET  /api/v1/movies/{id}/similar             content neighbors (?top_n=)
	GET  /api/v1/movies/{id}/audience            users likely to enjoy it (?top_n=)
	POST /api/v1/movies/{id}/ratings             ingest a rating
	GET  /api/v1/genres/popular                  per-genre popularity
	POST /api/v1/evaluate                        offline metrics on held-out ratings
	GET  /api/v1/model/status                    model statistics and fit history
	POST /api/v1/model/fit                       queue a manual refit
	GET  /api/health                             health check
	GET  /metrics                                Prometheus metrics

# Responses

Every JSON response uses the APIResponse envelope:

	{"success": true, "data": {...}, "meta": {"request_id": "...", "timestamp": "...", "duration_ms": 3}}
	{"success": false, "error": {"code": "MODEL_NOT_READY", "message": "..."}, "meta": {...}}

Engine errors map to status codes in respondError: an unfitted model is
503 MODEL_NOT_READY, a negative top_n is 400 INVALID_TOP_N, validation
failures are 400 VALIDATION_FAILED and unknown catalog entries are 404.

# Middleware

Request ids (X-Request-ID) are propagated into the zerolog context. Requests
are counted per chi route pattern, CORS is handled by go-chi/cors, and
go-chi/httprate limits requests per client IP with tighter budgets on the
refit and evaluate endpoints.
*/
package api
