// Cinematch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router wires handlers and middleware into a chi mux.
type Router struct {
	handler    *Handler
	middleware *Middleware
}

// NewRouter creates a router.
func NewRouter(handler *Handler, middleware *Middleware) *Router {
	if middleware == nil {
		middleware = NewMiddleware(nil)
	}
	return &Router{handler: handler, middleware: middleware}
}

// Setup builds the HTTP handler with all routes.
func (router *Router) Setup() http.Handler {
	h := router.handler
	mw := router.middleware

	r := chi.NewRouter()

	// Global middleware, applied in order.
	r.Use(RequestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(Metrics())
	r.Use(chimiddleware.Recoverer)
	r.Use(mw.CORS()) // global so OPTIONS preflight is answered

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		NewResponseWriter(w, r).NotFound("Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		NewResponseWriter(w, r).Error(http.StatusMethodNotAllowed, ErrCodeBadRequest, "Method not allowed")
	})

	r.Handle("/metrics", promhttp.Handler())

	r.With(mw.RateLimitCustom(RateLimitHealth), APISecurityHeaders()).
		Get("/api/health", h.Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(mw.RateLimit())
		r.Use(APISecurityHeaders())
		r.Use(mw.BodyLimit())

		r.Route("/recommendations", func(r chi.Router) {
			r.Post("/", h.Recommend)
			r.Get("/explain/{movieID}", h.Explain)
		})

		r.Route("/movies/{movieID}", func(r chi.Router) {
			r.Get("/", h.GetMovie)
			r.Get("/similar", h.SimilarMovies)
			r.Get("/audience", h.Audience)
			r.Post("/ratings", h.AddRating)
		})

		r.Get("/genres/popular", h.PopularGenres)

		r.With(mw.RateLimitCustom(RateLimitEvaluate)).Post("/evaluate", h.Evaluate)

		r.Route("/model", func(r chi.Router) {
			r.Get("/status", h.ModelStatus)
			r.With(mw.RateLimitCustom(RateLimitFit)).Post("/fit", h.TriggerFit)
		})
	})

	return r
}
