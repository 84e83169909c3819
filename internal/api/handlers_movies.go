// Cinematch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/cinematch/internal/logging"
	"github.com/tomtom215/cinematch/internal/models"
	"github.com/tomtom215/cinematch/internal/recommend"
)

// SimilarResponse is the payload of the similar movies endpoint.
type SimilarResponse struct {
	MovieID string                     `json:"movie_id"`
	Items   []recommend.Recommendation `json:"items"`
}

// AudienceResponse is the payload of the audience endpoint.
type AudienceResponse struct {
	MovieID string                     `json:"movie_id"`
	Users   []recommend.AudienceMember `json:"users"`
}

// RatingRequest is the body of the rating ingest endpoint.
type RatingRequest struct {
	UserID string  `json:"user_id" validate:"required,entityid"`
	Rating float64 `json:"rating" validate:"gte=0.5,lte=5"`

	// Timestamp defaults to the time the request is received.
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// RatingResponse reports a stored rating.
type RatingResponse struct {
	Rating models.Rating `json:"rating"`

	// Applied is false when a newer rating by the same user was kept.
	Applied bool `json:"applied"`
}

// GetMovie handles GET /api/v1/movies/{movieID}.
func (h *Handler) GetMovie(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	movieID, ok := movieIDParam(rw, r)
	if !ok {
		return
	}
	if h.store == nil {
		respondError(rw, errNotConfigured)
		return
	}

	movie, err := h.store.Movie(r.Context(), movieID)
	if err != nil {
		respondError(rw, err)
		return
	}
	rw.Success(movie)
}

// SimilarMovies handles GET /api/v1/movies/{movieID}/similar?top_n=.
// Unknown movies yield an empty list.
func (h *Handler) SimilarMovies(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	movieID, ok := movieIDParam(rw, r)
	if !ok {
		return
	}
	topN, ok := topNParam(rw, r)
	if !ok {
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	items, err := h.engine.SimilarMovies(ctx, movieID, topN)
	if err != nil {
		respondError(rw, err)
		return
	}
	if items == nil {
		items = []recommend.Recommendation{}
	}
	rw.Success(SimilarResponse{MovieID: movieID, Items: items})
}

// Audience handles GET /api/v1/movies/{movieID}/audience?top_n=, listing
// users likely to enjoy the movie.
func (h *Handler) Audience(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	movieID, ok := movieIDParam(rw, r)
	if !ok {
		return
	}
	topN, ok := topNParam(rw, r)
	if !ok {
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	users, err := h.engine.UsersForNewMovie(ctx, movieID, topN)
	if err != nil {
		respondError(rw, err)
		return
	}
	if users == nil {
		users = []recommend.AudienceMember{}
	}
	rw.Success(AudienceResponse{MovieID: movieID, Users: users})
}

// AddRating handles POST /api/v1/movies/{movieID}/ratings. The rating is
// stored immediately and picked up by the next refit.
func (h *Handler) AddRating(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	movieID, ok := movieIDParam(rw, r)
	if !ok {
		return
	}
	if h.store == nil {
		respondError(rw, errNotConfigured)
		return
	}

	var req RatingRequest
	if !decodeJSON(rw, r, &req) {
		return
	}

	ctx := r.Context()
	if _, err := h.store.Movie(ctx, movieID); err != nil {
		respondError(rw, err)
		return
	}

	rating := models.Rating{
		UserID:    req.UserID,
		MovieID:   movieID,
		Value:     req.Rating,
		Timestamp: time.Now().UTC(),
	}
	if req.Timestamp != nil {
		rating.Timestamp = req.Timestamp.UTC()
	}

	applied, err := h.store.AddRating(ctx, rating)
	if err != nil {
		respondError(rw, err)
		return
	}

	logging.Ctx(ctx).Debug().
		Str("user_id", rating.UserID).
		Str("movie_id", rating.MovieID).
		Float64("rating", rating.Value).
		Bool("applied", applied).
		Msg("Rating ingested")

	rw.Created(RatingResponse{Rating: rating, Applied: applied})
}
