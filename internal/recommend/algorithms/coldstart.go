// Cinematch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package algorithms

import (
	"context"
	"sort"
	"strings"

	"github.com/tomtom215/cinematch/internal/models"
)

// Cold start constants.
const (
	// NeutralScore is assigned to every cold-start recommendation. It is not
	// a calibrated confidence.
	NeutralScore = 0.5

	// NewItemNeighbors is the number of similar movies consulted when finding
	// an audience for a new movie.
	NewItemNeighbors = 20
)

// Cold start reasons.
const (
	reasonPopular     = "Popular and highly-rated movie"
	reasonGenrePrefix = "Matches your preferred genres: "
)

// ColdStartItem is a cold-start movie recommendation.
type ColdStartItem struct {
	MovieID string
	Score   float64
	Reason  string
}

// UserScore is a user ranked as a likely audience for a movie.
type UserScore struct {
	UserID string  `json:"user_id"`
	Score  float64 `json:"score"`
}

// SimilarMovies finds the nearest neighbors of a movie.
type SimilarMovies interface {
	SimilarTo(movieID string, topN int) []ScoredID
}

// ColdStart recommends when no personalized signal exists: popular movies
// for new users and likely audiences for new movies.
type ColdStart struct {
	BaseAlgorithm
	popularity *Popularity

	movies []models.Movie
	index  map[string]int

	// liked[movie] holds ratings >= LikedThreshold in input order.
	liked map[string][]models.Rating
}

// NewColdStart creates a cold-start handler with Bayesian smoothing k.
func NewColdStart(k float64) *ColdStart {
	return &ColdStart{
		BaseAlgorithm: NewBaseAlgorithm("cold_start"),
		popularity:    NewPopularity(k),
		index:         make(map[string]int),
		liked:         make(map[string][]models.Rating),
	}
}

// Fit precomputes popularity rankings and the liked-rating index.
//
//nolint:gocritic // rangeValCopy: Rating passed by value in range, acceptable for clarity
func (c *ColdStart) Fit(ctx context.Context, movies []models.Movie, ratings []models.Rating) error {
	c.acquireTrainLock()
	defer c.releaseTrainLock()

	if len(movies) == 0 {
		return ErrEmptyInput
	}

	if err := c.popularity.Fit(ctx, movies, ratings); err != nil {
		return err
	}

	index := make(map[string]int, len(movies))
	for i := range movies {
		index[movies[i].ID] = i
	}

	liked := make(map[string][]models.Rating)
	for _, r := range ratings {
		if r.Liked() {
			liked[r.MovieID] = append(liked[r.MovieID], r)
		}
	}

	c.movies = movies
	c.index = index
	c.liked = liked
	c.markTrained()
	return nil
}

// RecommendNewUser returns up to topN movies by popularity. With genre
// preferences, only movies whose genres contain one of them
// (case-insensitive) are considered. Every result carries NeutralScore.
func (c *ColdStart) RecommendNewUser(genres []string, topN int) []ColdStartItem {
	c.acquirePredictLock()
	defer c.releasePredictLock()

	if !c.trained || topN <= 0 {
		return nil
	}

	prefs := normalizedPrefs(genres)

	out := make([]ColdStartItem, 0, topN)
	for _, s := range c.popularity.Ranked() {
		m := &c.movies[c.index[s.ID]]

		var matched []string
		if len(prefs) > 0 {
			matched = matchingGenres(m, prefs)
			if len(matched) == 0 {
				continue
			}
		}

		out = append(out, ColdStartItem{
			MovieID: m.ID,
			Score:   NeutralScore,
			Reason:  coldStartReason(matched),
		})
		if len(out) == topN {
			break
		}
	}
	return out
}

func normalizedPrefs(genres []string) []string {
	prefs := make([]string, 0, len(genres))
	for _, g := range genres {
		if g = strings.ToLower(strings.TrimSpace(g)); g != "" {
			prefs = append(prefs, g)
		}
	}
	return prefs
}

// matchingGenres returns the movie's genres that contain any preference.
func matchingGenres(m *models.Movie, prefs []string) []string {
	var out []string
	for _, g := range m.Genres {
		lg := strings.ToLower(g)
		for _, p := range prefs {
			if strings.Contains(lg, p) {
				out = append(out, g)
				break
			}
		}
	}
	return out
}

func coldStartReason(matched []string) string {
	if len(matched) == 0 {
		return reasonPopular
	}
	if len(matched) > 2 {
		matched = matched[:2]
	}
	return reasonGenrePrefix + strings.Join(matched, ", ")
}

// RecommendUsersForNewItem finds users likely to enjoy movieID: users who
// liked its NewItemNeighbors nearest movies, scored by the sum of
// similarity * rating. Sorted descending, ties by user id.
func (c *ColdStart) RecommendUsersForNewItem(movieID string, similar SimilarMovies, topN int) []UserScore {
	c.acquirePredictLock()
	defer c.releasePredictLock()

	if !c.trained || topN <= 0 || similar == nil {
		return nil
	}

	scores := make(map[string]float64)
	for _, n := range similar.SimilarTo(movieID, NewItemNeighbors) {
		for _, r := range c.liked[n.ID] {
			scores[r.UserID] += n.Score * r.Value
		}
	}

	out := make([]UserScore, 0, len(scores))
	for id, s := range scores {
		out = append(out, UserScore{UserID: id, Score: s})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].UserID < out[j].UserID
	})

	if len(out) > topN {
		out = out[:topN]
	}
	return out
}

// GenrePopularity returns per-genre popularity statistics.
func (c *ColdStart) GenrePopularity() []GenrePopularity {
	return c.popularity.Genres()
}

// Popularity returns the underlying popularity model.
func (c *ColdStart) Popularity() *Popularity {
	return c.popularity
}
