// Cinematch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package api

import (
	"errors"
	"net/http"
	"slices"

	"github.com/tomtom215/cinematch/internal/logging"
	"github.com/tomtom215/cinematch/internal/models"
	"github.com/tomtom215/cinematch/internal/recommend"
	"github.com/tomtom215/cinematch/internal/recommend/evaluation"
	"github.com/tomtom215/cinematch/internal/recommend/storage"
	"github.com/tomtom215/cinematch/internal/supervisor/services"
)

// ModelStatusResponse is the payload of the model status endpoint.
type ModelStatusResponse struct {
	Model recommend.Status `json:"model"`

	// Breaker is the refit circuit breaker state, empty without a refitter.
	Breaker string `json:"breaker,omitempty"`

	// History lists recent fits, newest first.
	History []storage.FitRecord `json:"history"`
}

// FitResponse acknowledges a queued refit.
type FitResponse struct {
	Status string `json:"status"`
}

// EvaluateRequest holds held-out ratings to score the model against.
type EvaluateRequest struct {
	Ratings []models.Rating `json:"ratings" validate:"required,min=1,max=100000,dive"`

	// Ks are the cutoffs to report. Default: 5, 10, 20
	Ks []int `json:"ks,omitempty" validate:"omitempty,max=10,dive,gte=1,lte=1000"`

	// MinRating marks a held-out rating as relevant. Default: 4.0
	MinRating float64 `json:"min_rating,omitempty" validate:"omitempty,gte=0.5,lte=5"`
}

// EvaluateResponse is the payload of the evaluate endpoint.
type EvaluateResponse struct {
	ModelVersion int64 `json:"model_version"`
	Users        int   `json:"users"`
	TopN         int   `json:"top_n"`
	evaluation.Report
}

// ModelStatus handles GET /api/v1/model/status.
func (h *Handler) ModelStatus(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	resp := ModelStatusResponse{
		Model:   h.engine.Status(),
		History: []storage.FitRecord{},
	}
	if h.refitter != nil {
		resp.Breaker = h.refitter.BreakerState()
	}
	if h.store != nil {
		history, err := h.store.FitHistory(r.Context(), h.opts.FitHistoryLimit)
		if err != nil {
			respondError(rw, err)
			return
		}
		if history != nil {
			resp.History = history
		}
	}
	rw.Success(resp)
}

// TriggerFit handles POST /api/v1/model/fit. The refit runs in the
// background; poll the status endpoint for the outcome.
func (h *Handler) TriggerFit(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	if h.refitter == nil {
		respondError(rw, errNotConfigured)
		return
	}

	switch err := h.refitter.Trigger(); {
	case errors.Is(err, services.ErrRefitThrottled):
		rw.TooManyRequests("Manual refits are throttled, retry later")
	case errors.Is(err, services.ErrRefitPending):
		rw.Conflict("A refit is already queued")
	case err != nil:
		respondError(rw, err)
	default:
		logging.Ctx(r.Context()).Info().Msg("Manual refit queued")
		rw.Accepted(FitResponse{Status: "queued"})
	}
}

// Evaluate handles POST /api/v1/evaluate. Each distinct user in the body
// is served by the active model and the lists are scored against the
// body's ratings. The ratings should be held out of the training data.
func (h *Handler) Evaluate(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req EvaluateRequest
	if !decodeJSON(rw, r, &req) {
		return
	}

	opts := evaluation.Options{Ks: req.Ks, MinRating: req.MinRating}
	ks := req.Ks
	if len(ks) == 0 {
		ks = evaluation.DefaultKs
	}
	topN := slices.Max(ks)

	users := make([]string, 0)
	seen := make(map[string]struct{})
	for i := range req.Ratings {
		if _, ok := seen[req.Ratings[i].UserID]; !ok {
			seen[req.Ratings[i].UserID] = struct{}{}
			users = append(users, req.Ratings[i].UserID)
		}
	}
	slices.Sort(users)

	ctx, cancel := h.requestContext(r)
	defer cancel()

	var version int64
	recs := make(map[string][]string, len(users))
	for _, userID := range users {
		resp, err := h.engine.Recommend(ctx, recommend.Request{UserID: userID, TopN: topN})
		if err != nil {
			respondError(rw, err)
			return
		}
		version = resp.Metadata.ModelVersion

		ids := make([]string, len(resp.Items))
		for i, item := range resp.Items {
			ids[i] = item.MovieID
		}
		recs[userID] = ids
	}

	catalog, err := h.engine.Catalog()
	if err != nil {
		respondError(rw, err)
		return
	}
	counts, err := h.engine.RatingCounts()
	if err != nil {
		respondError(rw, err)
		return
	}

	report := evaluation.Evaluate(recs, req.Ratings, catalog, counts, opts)

	logging.Ctx(ctx).Info().
		Int("users", len(users)).
		Int("ratings", len(req.Ratings)).
		Int64("model_version", version).
		Msg("Evaluation complete")

	rw.Success(EvaluateResponse{
		ModelVersion: version,
		Users:        len(users),
		TopN:         topN,
		Report:       report,
	})
}
