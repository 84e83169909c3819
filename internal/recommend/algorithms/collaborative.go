// Cinematch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package algorithms

import (
	"context"

	"github.com/tomtom215/cinematch/internal/models"
)

// CollaborativeConfig contains configuration for the collaborative filter.
type CollaborativeConfig struct {
	MF  MFConfig
	KNN KNNConfig

	// MinUserRatings is the rating count below which a user's scores come
	// from user-user neighbors instead of the factorization.
	MinUserRatings int
}

// DefaultCollaborativeConfig returns default collaborative filter configuration.
func DefaultCollaborativeConfig() CollaborativeConfig {
	return CollaborativeConfig{
		MF:             DefaultMFConfig(),
		KNN:            DefaultKNNConfig(),
		MinUserRatings: 3,
	}
}

// CollaborativeFilter ranks movies from rating patterns. It wraps a
// MatrixFactorization model and a user-user neighborhood used for users with
// too few ratings for reliable latent factors. Item-item similarity over
// co-ratings backs SimilarItems.
type CollaborativeFilter struct {
	BaseAlgorithm
	config CollaborativeConfig
	mf     *MatrixFactorization

	users   []string
	userIdx map[string]int
	items   []string
	itemIdx map[string]int

	// userRows[u][i] and itemRows[i][u] both hold r(u, i).
	userRows []SparseVector
	itemRows []SparseVector

	userNeighbors *neighborIndex
	itemKNN       *neighborIndex
	numRatings    int
}

// NewCollaborativeFilter creates a collaborative filter.
func NewCollaborativeFilter(cfg CollaborativeConfig) *CollaborativeFilter {
	if cfg.MinUserRatings <= 0 {
		cfg.MinUserRatings = 3
	}
	cfg.KNN = withKNNDefaults(cfg.KNN)

	return &CollaborativeFilter{
		BaseAlgorithm: NewBaseAlgorithm("collaborative"),
		config:        cfg,
		mf:            NewMatrixFactorization(cfg.MF),
		userIdx:       make(map[string]int),
		itemIdx:       make(map[string]int),
	}
}

// Fit deduplicates ratings (latest wins), fits the factorization and
// precomputes user neighborhoods.
//
//nolint:gocritic // rangeValCopy: Rating passed by value in range, acceptable for clarity
func (c *CollaborativeFilter) Fit(ctx context.Context, ratings []models.Rating) error {
	c.acquireTrainLock()
	defer c.releaseTrainLock()

	ratings = models.DedupeRatings(ratings)
	if len(ratings) == 0 {
		return ErrEmptyInput
	}

	userIdx := make(map[string]int)
	itemIdx := make(map[string]int)
	var users, items []string
	for _, r := range ratings {
		if _, ok := userIdx[r.UserID]; !ok {
			userIdx[r.UserID] = len(users)
			users = append(users, r.UserID)
		}
		if _, ok := itemIdx[r.MovieID]; !ok {
			itemIdx[r.MovieID] = len(items)
			items = append(items, r.MovieID)
		}
	}

	userRows := make([]SparseVector, len(users))
	for u := range userRows {
		userRows[u] = make(SparseVector)
	}
	itemRows := make([]SparseVector, len(items))
	for i := range itemRows {
		itemRows[i] = make(SparseVector)
	}
	for _, r := range ratings {
		u, i := userIdx[r.UserID], itemIdx[r.MovieID]
		userRows[u][i] = r.Value
		itemRows[i][u] = r.Value
	}

	mf := NewMatrixFactorization(c.config.MF)
	if err := mf.Fit(ctx, ratings); err != nil {
		return err
	}

	userNeighbors, err := buildNeighborIndex(ctx, userRows, c.config.KNN)
	if err != nil {
		return err
	}

	c.mf = mf
	c.users, c.userIdx = users, userIdx
	c.items, c.itemIdx = items, itemIdx
	c.userRows, c.itemRows = userRows, itemRows
	c.userNeighbors = userNeighbors
	c.itemKNN = &neighborIndex{config: c.config.KNN, rows: itemRows}
	c.numRatings = len(ratings)
	c.markTrained()
	return nil
}

// Recommend returns movies the user has not rated and that are not in
// exclude, by predicted rating descending. Scores are on the rating scale.
// Users with no ratings get nil.
func (c *CollaborativeFilter) Recommend(userID string, topN int, exclude map[string]struct{}) []ScoredID {
	c.acquirePredictLock()
	defer c.releasePredictLock()

	if !c.trained || topN <= 0 {
		return nil
	}
	u, ok := c.userIdx[userID]
	if !ok || len(c.userRows[u]) == 0 {
		return nil
	}

	rated := c.userRows[u]
	sparse := len(rated) < c.config.MinUserRatings

	entries := make([]rankedEntry, 0, len(c.items))
	for i, movieID := range c.items {
		if _, seen := rated[i]; seen {
			continue
		}
		if _, skip := exclude[movieID]; skip {
			continue
		}

		var score float64
		if sparse {
			if s, ok := c.userNeighbors.weightedAverage(u, i); ok {
				score = s
			} else {
				score = c.mf.Predict(userID, movieID)
			}
		} else {
			score = c.mf.Predict(userID, movieID)
		}
		entries = append(entries, rankedEntry{id: movieID, score: score, pos: i})
	}

	return rankTopN(entries, topN)
}

// Predict returns the factorization's predicted rating.
func (c *CollaborativeFilter) Predict(userID, movieID string) float64 {
	c.acquirePredictLock()
	defer c.releasePredictLock()
	return c.mf.Predict(userID, movieID)
}

// SimilarItems returns movies most similar to movieID by co-rating pattern.
func (c *CollaborativeFilter) SimilarItems(movieID string, topN int) []ScoredID {
	c.acquirePredictLock()
	defer c.releasePredictLock()

	if !c.trained || topN <= 0 {
		return nil
	}
	i, ok := c.itemIdx[movieID]
	if !ok {
		return nil
	}

	ranked := c.itemKNN.rank(i, topN)
	out := make([]ScoredID, len(ranked))
	for k, n := range ranked {
		out[k] = ScoredID{ID: c.items[n.idx], Score: n.similarity}
	}
	return out
}

// UserRatingCount returns the number of ratings by the user, 0 if unknown.
func (c *CollaborativeFilter) UserRatingCount(userID string) int {
	c.acquirePredictLock()
	defer c.releasePredictLock()
	if u, ok := c.userIdx[userID]; ok {
		return len(c.userRows[u])
	}
	return 0
}

// ItemRatingCount returns the number of ratings of the movie, 0 if unknown.
func (c *CollaborativeFilter) ItemRatingCount(movieID string) int {
	c.acquirePredictLock()
	defer c.releasePredictLock()
	if i, ok := c.itemIdx[movieID]; ok {
		return len(c.itemRows[i])
	}
	return 0
}

// UserRatings returns a copy of the user's ratings keyed by movie id.
func (c *CollaborativeFilter) UserRatings(userID string) map[string]float64 {
	c.acquirePredictLock()
	defer c.releasePredictLock()
	u, ok := c.userIdx[userID]
	if !ok {
		return nil
	}
	out := make(map[string]float64, len(c.userRows[u]))
	for i, v := range c.userRows[u] {
		out[c.items[i]] = v
	}
	return out
}

// Sparsity returns 1 - ratings / (users * items) of the rating matrix.
func (c *CollaborativeFilter) Sparsity() float64 {
	c.acquirePredictLock()
	defer c.releasePredictLock()
	cells := len(c.users) * len(c.items)
	if cells == 0 {
		return 1
	}
	return 1 - float64(c.numRatings)/float64(cells)
}

// NumUsers returns the number of distinct users in the rating matrix.
func (c *CollaborativeFilter) NumUsers() int {
	c.acquirePredictLock()
	defer c.releasePredictLock()
	return len(c.users)
}

// NumRatings returns the number of ratings after deduplication.
func (c *CollaborativeFilter) NumRatings() int {
	c.acquirePredictLock()
	defer c.releasePredictLock()
	return c.numRatings
}

// Factorization returns the underlying matrix factorization model.
func (c *CollaborativeFilter) Factorization() *MatrixFactorization {
	c.acquirePredictLock()
	defer c.releasePredictLock()
	return c.mf
}
