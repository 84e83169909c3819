// Cinematch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package recommend

import (
	"context"
	"time"

	"github.com/tomtom215/cinematch/internal/models"
)

// Serving paths reported in response metadata and metrics.
const (
	PathColdStart    = "cold_start"
	PathHybrid       = "hybrid"
	PathItemFallback = "item_fallback"
)

// DefaultReason is the explanation used when no specific fragment applies.
const DefaultReason = "Recommended for you"

// State is the lifecycle state of the engine.
type State string

const (
	// StateUnfitted means no model has been fitted yet.
	StateUnfitted State = "unfitted"
	// StateFitted means a model is active and serving.
	StateFitted State = "fitted"
)

// DataSource supplies the movie and rating tables for a fit.
// This is typically implemented by the storage layer.
type DataSource interface {
	// Movies returns the full catalog.
	Movies(ctx context.Context) ([]models.Movie, error)

	// Ratings returns all ratings.
	Ratings(ctx context.Context) ([]models.Rating, error)
}

// Request is a recommendation request.
type Request struct {
	// UserID identifies a user with rating history. Optional.
	UserID string `json:"user_id,omitempty" validate:"omitempty,entityid"`

	// LikedMovies seeds content-based candidates. Optional.
	LikedMovies []string `json:"liked_movies,omitempty" validate:"omitempty,max=100,dive,entityid"`

	// TopN is the maximum number of recommendations to return.
	// Zero means the configured default.
	TopN int `json:"top_n" validate:"gte=0"`

	// GenrePreferences filters the cold-start list. Optional.
	GenrePreferences []string `json:"genre_preferences,omitempty" validate:"omitempty,max=20,dive,min=1,max=64"`
}

// Recommendation is a single recommended movie.
type Recommendation struct {
	MovieID string  `json:"movie_id"`
	Title   string  `json:"title"`
	Score   float64 `json:"score"`
	Reason  string  `json:"reason"`
}

// Candidate is a movie under consideration during one Recommend call.
// Candidate maps are local to a call and never shared.
type Candidate struct {
	MovieID            string
	ContentScore       float64
	CollaborativeScore float64
	HybridScore        float64

	// pos is the insertion order, used as the ranking tie-break.
	pos int
}

// Weights is the content/collaborative blend used for a request.
type Weights struct {
	Content       float64 `json:"content"`
	Collaborative float64 `json:"collaborative"`
}

// Normalize returns a copy scaled to sum to 1.0. All-zero weights become an
// even split.
func (w Weights) Normalize() Weights {
	sum := w.Content + w.Collaborative
	if sum <= 0 {
		return Weights{Content: 0.5, Collaborative: 0.5}
	}
	return Weights{
		Content:       w.Content / sum,
		Collaborative: w.Collaborative / sum,
	}
}

// Response is the result of a Recommend call.
type Response struct {
	Items    []Recommendation `json:"items"`
	Metadata ResponseMetadata `json:"metadata"`
}

// ResponseMetadata describes how a response was produced.
type ResponseMetadata struct {
	// Path is the serving path: cold_start, hybrid or item_fallback.
	Path string `json:"path"`

	// Weights is the blend applied on the hybrid path, nil otherwise.
	Weights *Weights `json:"weights,omitempty"`

	// ModelVersion is the version of the model that served the request.
	ModelVersion int64 `json:"model_version"`

	// Candidates is the size of the candidate pool before truncation.
	Candidates int `json:"candidates"`

	// LatencyMS is the time taken to generate recommendations.
	LatencyMS int64 `json:"latency_ms"`
}

// ContentFeatures are per-feature contribution weights used by the
// explanation generator.
type ContentFeatures struct {
	Genres   float64 `json:"genres"`
	Director float64 `json:"director"`
	Cast     float64 `json:"cast"`
}

// ExplainContext carries what is known about why a movie was recommended.
// Every field is optional.
type ExplainContext struct {
	UserID          string
	LikedMovies     []string
	ContentFeatures *ContentFeatures
	Similarity      float64
}

// Status reports the state of the engine and its active model.
type Status struct {
	State         State     `json:"state"`
	FitInProgress bool      `json:"fit_in_progress"`
	ModelVersion  int64     `json:"model_version"`
	FittedAt      time.Time `json:"fitted_at,omitempty"`
	FitDurationMS int64     `json:"fit_duration_ms,omitempty"`

	Movies     int     `json:"movies"`
	Users      int     `json:"users"`
	Ratings    int     `json:"ratings"`
	Sparsity   float64 `json:"sparsity"`
	Vectorizer string  `json:"vectorizer,omitempty"`

	RMSE               float64 `json:"training_rmse"`
	Iterations         int     `json:"iterations"`
	ConvergenceWarning string  `json:"convergence_warning,omitempty"`

	Components []ComponentStatus `json:"components,omitempty"`

	LastError   string    `json:"last_error,omitempty"`
	LastErrorAt time.Time `json:"last_error_at,omitempty"`
}

// ComponentStatus reports the lifecycle of one fitted component.
type ComponentStatus struct {
	Name      string    `json:"name"`
	Trained   bool      `json:"trained"`
	Version   int       `json:"version"`
	TrainedAt time.Time `json:"trained_at,omitempty"`
}

// AudienceMember is a user likely to enjoy a movie.
type AudienceMember struct {
	UserID string  `json:"user_id"`
	Score  float64 `json:"score"`
}
