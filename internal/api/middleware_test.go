// Cinematch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/cinematch/internal/metrics"
)

func TestRateLimit(t *testing.T) {
	cfg := DefaultMiddlewareConfig()
	cfg.RateLimitRequests = 2
	cfg.RateLimitWindow = time.Minute
	env := newTestEnv(t, envOptions{middleware: cfg})

	before := testutil.ToFloat64(metrics.APIRateLimitHits.WithLabelValues("api"))

	for i := 0; i < 2; i++ {
		rec, _ := env.do(t, http.MethodGet, "/api/v1/genres/popular", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i+1, rec.Code)
		}
	}

	rec, resp := env.do(t, http.MethodGet, "/api/v1/genres/popular", nil)
	wantError(t, rec, resp, http.StatusTooManyRequests, ErrCodeTooManyRequests)

	after := testutil.ToFloat64(metrics.APIRateLimitHits.WithLabelValues("api"))
	if after-before != 1 {
		t.Errorf("rate limit hits delta = %v, want 1", after-before)
	}
}

func TestRateLimit_Disabled(t *testing.T) {
	cfg := DefaultMiddlewareConfig()
	cfg.RateLimitRequests = 1
	cfg.RateLimitDisabled = true
	env := newTestEnv(t, envOptions{middleware: cfg})

	for i := 0; i < 3; i++ {
		rec, _ := env.do(t, http.MethodGet, "/api/v1/genres/popular", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i+1, rec.Code)
		}
	}
}

func TestRequestID(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	t.Run("echoes caller id", func(t *testing.T) {
		header := http.Header{}
		header.Set(RequestIDHeader, "req-123")

		rec, resp := doRequest(t, env.handler, http.MethodGet, "/api/health", nil, header)
		if got := rec.Header().Get(RequestIDHeader); got != "req-123" {
			t.Errorf("header = %q, want req-123", got)
		}
		if resp.Meta == nil || resp.Meta.RequestID != "req-123" {
			t.Errorf("meta = %+v, want request id req-123", resp.Meta)
		}
	})

	t.Run("generates id", func(t *testing.T) {
		rec, _ := env.do(t, http.MethodGet, "/api/health", nil)
		if rec.Header().Get(RequestIDHeader) == "" {
			t.Error("no request id generated")
		}
	})

	t.Run("replaces oversized id", func(t *testing.T) {
		header := http.Header{}
		header.Set(RequestIDHeader, strings.Repeat("x", 200))

		rec, _ := doRequest(t, env.handler, http.MethodGet, "/api/health", nil, header)
		got := rec.Header().Get(RequestIDHeader)
		if got == "" || len(got) > 128 {
			t.Errorf("header = %q, want generated id", got)
		}
	})
}

func TestRouter_NotFound(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	rec, resp := env.do(t, http.MethodGet, "/api/v1/nowhere", nil)
	wantError(t, rec, resp, http.StatusNotFound, ErrCodeNotFound)
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	rec, _ := env.do(t, http.MethodDelete, "/api/v1/model/status", nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "api_requests_total") {
		t.Error("metrics output missing api_requests_total")
	}
}

func TestMetrics_RoutePatternLabel(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	counter := metrics.APIRequestsTotal.WithLabelValues(http.MethodGet, "/api/v1/movies/{movieID}/similar", "200")
	before := testutil.ToFloat64(counter)

	env.do(t, http.MethodGet, "/api/v1/movies/m1/similar", nil)
	env.do(t, http.MethodGet, "/api/v1/movies/m2/similar", nil)

	if delta := testutil.ToFloat64(counter) - before; delta != 2 {
		t.Errorf("counter delta = %v, want 2", delta)
	}
}

func TestAPISecurityHeaders(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	rec, _ := env.do(t, http.MethodGet, "/api/v1/genres/popular", nil)
	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want nosniff", got)
	}
}
