// Cinematch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/tomtom215/cinematch/internal/models"
	"github.com/tomtom215/cinematch/internal/recommend"
	"github.com/tomtom215/cinematch/internal/recommend/algorithms"
	"github.com/tomtom215/cinematch/internal/recommend/storage"
	"github.com/tomtom215/cinematch/internal/validation"
)

// Recommender is the engine surface served over HTTP.
// *recommend.Engine satisfies it.
type Recommender interface {
	Recommend(ctx context.Context, req recommend.Request) (*recommend.Response, error)
	Explain(ctx context.Context, movieID, userID string) (string, error)
	SimilarMovies(ctx context.Context, movieID string, topN int) ([]recommend.Recommendation, error)
	UsersForNewMovie(ctx context.Context, movieID string, topN int) ([]recommend.AudienceMember, error)
	PopularGenres(ctx context.Context) ([]algorithms.GenrePopularity, error)
	Catalog() ([]models.Movie, error)
	RatingCounts() (map[string]int, error)
	Status() recommend.Status
}

// Store is the persistence surface used by the movie and model handlers.
// *storage.Store satisfies it.
type Store interface {
	Movie(ctx context.Context, id string) (*models.Movie, error)
	AddRating(ctx context.Context, r models.Rating) (bool, error)
	FitHistory(ctx context.Context, limit int) ([]storage.FitRecord, error)
}

// Refitter queues manual refits. *services.RefitService satisfies it.
type Refitter interface {
	Trigger() error
	BreakerState() string
}

// HandlerOptions configures a Handler.
type HandlerOptions struct {
	// Version is reported by the health endpoint.
	Version string

	// RequestTimeout bounds engine calls. Default: 10s
	RequestTimeout time.Duration

	// FitHistoryLimit is the number of fit records in the model status.
	// Default: 10
	FitHistoryLimit int
}

// Handler serves the recommendation API.
//
// Handler methods are split across files:
//   - handlers_recommend.go: recommendations and explanations
//   - handlers_movies.go: per-movie endpoints and rating ingest
//   - handlers_model.go: model status, manual refits and evaluation
//   - handlers_health.go: health check
type Handler struct {
	engine    Recommender
	store     Store
	refitter  Refitter
	opts      HandlerOptions
	startTime time.Time
}

// NewHandler creates a handler. store and refitter may be nil; the
// endpoints that need them then answer 503.
func NewHandler(engine Recommender, store Store, refitter Refitter, opts HandlerOptions) *Handler {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 10 * time.Second
	}
	if opts.FitHistoryLimit <= 0 {
		opts.FitHistoryLimit = 10
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}
	return &Handler{
		engine:    engine,
		store:     store,
		refitter:  refitter,
		opts:      opts,
		startTime: time.Now(),
	}
}

func (h *Handler) requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), h.opts.RequestTimeout)
}

// decodeJSON decodes the request body into v and validates it.
func decodeJSON(rw *ResponseWriter, r *http.Request, v interface{}) bool {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			rw.Error(http.StatusRequestEntityTooLarge, ErrCodeBadRequest,
				fmt.Sprintf("Request body exceeds %d bytes", maxErr.Limit))
			return false
		}
		rw.BadRequest("Failed to read request body")
		return false
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		rw.BadRequest("Invalid JSON body: " + err.Error())
		return false
	}

	if verr := validation.ValidateStruct(v); verr != nil {
		respondError(rw, verr)
		return false
	}
	return true
}

// movieIDParam returns the validated {movieID} path parameter.
func movieIDParam(rw *ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "movieID")
	if verr := validation.ValidateVar("movie_id", id, "entityid"); verr != nil {
		respondError(rw, verr)
		return "", false
	}
	return id, true
}

// topNParam parses the optional top_n query parameter. Absent means the
// engine default; range checks are left to the engine.
func topNParam(rw *ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("top_n")
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		rw.Error(http.StatusBadRequest, ErrCodeInvalidTopN, "top_n must be an integer")
		return 0, false
	}
	return n, true
}
