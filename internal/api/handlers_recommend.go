// Cinematch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package api

import (
	"net/http"

	"github.com/tomtom215/cinematch/internal/recommend"
	"github.com/tomtom215/cinematch/internal/validation"
)

// ExplainResponse is the payload of the explain endpoint.
type ExplainResponse struct {
	MovieID string `json:"movie_id"`
	UserID  string `json:"user_id,omitempty"`
	Reason  string `json:"reason"`
}

// Recommend handles POST /api/v1/recommendations.
//
// The body is a recommend.Request. Unknown users with no liked movies get
// the cold-start list, optionally filtered by genre_preferences.
func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req recommend.Request
	if !decodeJSON(rw, r, &req) {
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	resp, err := h.engine.Recommend(ctx, req)
	if err != nil {
		respondError(rw, err)
		return
	}
	rw.Success(resp)
}

// Explain handles GET /api/v1/recommendations/explain/{movieID}?user_id=.
func (h *Handler) Explain(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	movieID, ok := movieIDParam(rw, r)
	if !ok {
		return
	}

	userID := r.URL.Query().Get("user_id")
	if userID != "" {
		if verr := validation.ValidateVar("user_id", userID, "entityid"); verr != nil {
			respondError(rw, verr)
			return
		}
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	reason, err := h.engine.Explain(ctx, movieID, userID)
	if err != nil {
		respondError(rw, err)
		return
	}
	rw.Success(ExplainResponse{MovieID: movieID, UserID: userID, Reason: reason})
}

// PopularGenres handles GET /api/v1/genres/popular.
func (h *Handler) PopularGenres(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	genres, err := h.engine.PopularGenres(r.Context())
	if err != nil {
		respondError(rw, err)
		return
	}
	rw.Success(genres)
}
