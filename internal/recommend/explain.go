// Cinematch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package recommend

import (
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/cinematch/internal/models"
	"github.com/tomtom215/cinematch/internal/recommend/algorithms"
)

// Feature contribution thresholds for the feature fragment.
const (
	genreThreshold    = 0.5
	directorThreshold = 0.5
	castThreshold     = 0.3
)

// maxExplanationParts is the number of fragments joined into a reason.
const maxExplanationParts = 2

// Explainer builds human-readable reasons for recommendations.
//
// Fragments are computed independently and kept in priority order:
// feature overlap, similarity to a liked movie, social proof, aggregate
// rating, trending. The first two that apply are joined with " | ".
// A fragment whose condition is not met is omitted. The result is never
// empty.
type Explainer struct {
	movies     map[string]*models.Movie
	popularity *algorithms.Popularity
	config     ExplainConfig
}

// NewExplainer creates an explainer over a fitted catalog and popularity
// model.
func NewExplainer(movies []models.Movie, popularity *algorithms.Popularity, cfg ExplainConfig) *Explainer {
	index := make(map[string]*models.Movie, len(movies))
	for i := range movies {
		index[movies[i].ID] = &movies[i]
	}
	return &Explainer{
		movies:     index,
		popularity: popularity,
		config:     cfg,
	}
}

// Explain returns the reason a movie was recommended. Unknown movies get
// DefaultReason.
//
//nolint:gocritic // hugeParam: ctx passed by value for immutability
func (x *Explainer) Explain(movieID string, ctx ExplainContext, now time.Time) string {
	movie, ok := x.movies[movieID]
	if !ok {
		return DefaultReason
	}

	parts := make([]string, 0, 5)
	add := func(s string) {
		if s != "" {
			parts = append(parts, s)
		}
	}

	if ctx.ContentFeatures != nil {
		add(featureFragment(movie, ctx.ContentFeatures))
	}
	if len(ctx.LikedMovies) > 0 {
		add(x.similarityFragment(movie, ctx.LikedMovies[0], ctx.Similarity))
	}
	if ctx.UserID != "" {
		add(x.socialProofFragment(movieID))
	}
	add(x.aggregateFragment(movieID))
	add(x.trendingFragment(movieID, now))

	if len(parts) == 0 {
		return DefaultReason
	}
	if len(parts) > maxExplanationParts {
		parts = parts[:maxExplanationParts]
	}
	return strings.Join(parts, " | ")
}

func featureFragment(movie *models.Movie, f *ContentFeatures) string {
	var features []string

	if f.Genres > genreThreshold && len(movie.Genres) > 0 {
		genres := movie.Genres
		if len(genres) > 2 {
			genres = genres[:2]
		}
		features = append(features, fmt.Sprintf("Genre (%s: %d%%)", strings.Join(genres, ", "), percent(f.Genres)))
	}

	if f.Director > directorThreshold && movie.Director != "" {
		features = append(features, fmt.Sprintf("Director (%s: %d%%)", movie.Director, percent(f.Director)))
	}

	if f.Cast > castThreshold && len(movie.Cast) > 0 {
		features = append(features, fmt.Sprintf("Cast (%s: %d%%)", movie.Cast[0], percent(f.Cast)))
	}

	if len(features) == 0 {
		return ""
	}
	return "Recommended because: " + strings.Join(features, ", ")
}

// percent truncates a [0,1] contribution to a whole percentage.
func percent(v float64) int {
	return int(v * 100)
}

func (x *Explainer) similarityFragment(movie *models.Movie, likedID string, similarity float64) string {
	source, ok := x.movies[likedID]
	if !ok {
		return ""
	}
	if similarity != 0 {
		return fmt.Sprintf("Similar to '%s' (similarity: %.2f)", source.Title, similarity)
	}
	return fmt.Sprintf("Similar to '%s', try '%s'", source.Title, movie.Title)
}

func (x *Explainer) socialProofFragment(movieID string) string {
	stats, ok := x.popularity.Stats(movieID)
	if !ok || stats.LikedCount <= x.config.SocialProofMin {
		return ""
	}
	return fmt.Sprintf("Also liked by %d users with similar taste", stats.LikedCount)
}

func (x *Explainer) aggregateFragment(movieID string) string {
	stats, ok := x.popularity.Stats(movieID)
	if !ok || stats.AvgRating < x.config.AggregateMinAvg || stats.Count < x.config.AggregateMinRatings {
		return ""
	}
	return fmt.Sprintf("Users rate this %.1f/5.0 (%d ratings)", stats.AvgRating, stats.Count)
}

func (x *Explainer) trendingFragment(movieID string, now time.Time) string {
	// Strictly inside the window.
	since := now.Add(-x.config.TrendingWindow).Add(time.Nanosecond)
	if x.popularity.RecentCount(movieID, since) <= x.config.TrendingMin {
		return ""
	}
	return "Trending this week among movie fans"
}
