// Cinematch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package recommend

import (
	"math"
	"time"

	"github.com/tomtom215/cinematch/internal/models"
)

// Adaptive weight thresholds.
const (
	newUserRatings         = 5
	establishedUserRatings = 20

	longTailItemRatings = 10
	popularItemRatings  = 100

	highSparsity = 0.95
	lowSparsity  = 0.8

	// favoredFloor is the minimum weight of the favored side when an item
	// or sparsity rule fires; the other side is capped at 1-favoredFloor.
	favoredFloor = 0.6

	// recencyBoost scales the collaborative shift for recent raters.
	recencyBoost = 0.3
)

// WeightsFor returns the content/collaborative blend for a request.
//
// Rules apply in order, each clamping rather than overwriting:
//   - user history: <5 ratings 0.7/0.3, 5-19 0.5/0.5, >=20 0.3/0.7
//   - item popularity: <10 ratings favors content, >100 favors collaborative
//   - sparsity: >0.95 favors content, <0.8 favors collaborative
//
// The result is renormalized to sum to 1.
func WeightsFor(userRatings, itemRatings int, sparsity float64) Weights {
	var w Weights
	switch {
	case userRatings < newUserRatings:
		w = Weights{Content: 0.7, Collaborative: 0.3}
	case userRatings < establishedUserRatings:
		w = Weights{Content: 0.5, Collaborative: 0.5}
	default:
		w = Weights{Content: 0.3, Collaborative: 0.7}
	}

	switch {
	case itemRatings < longTailItemRatings:
		w = favorContent(w)
	case itemRatings > popularItemRatings:
		w = favorCollaborative(w)
	}

	switch {
	case sparsity > highSparsity:
		w = favorContent(w)
	case sparsity < lowSparsity:
		w = favorCollaborative(w)
	}

	return w.Normalize()
}

func favorContent(w Weights) Weights {
	return Weights{
		Content:       math.Max(w.Content, favoredFloor),
		Collaborative: math.Min(w.Collaborative, 1-favoredFloor),
	}
}

func favorCollaborative(w Weights) Weights {
	return Weights{
		Content:       math.Min(w.Content, 1-favoredFloor),
		Collaborative: math.Max(w.Collaborative, favoredFloor),
	}
}

// TimeDecayWeights shifts weight toward collaborative scores when more than
// half of a user's ratings fall inside window. With recent ratio r,
// collaborative is scaled by 1+0.3r and content by 1-0.3r before
// renormalizing. Ratings without timestamps count as not recent.
//
//nolint:gocritic // rangeValCopy: Rating passed by value in range, acceptable for clarity
func TimeDecayWeights(base Weights, ratings []models.Rating, now time.Time, window time.Duration) Weights {
	if len(ratings) == 0 || window <= 0 {
		return base
	}

	cutoff := now.Add(-window)
	recent := 0
	for _, r := range ratings {
		if r.HasTimestamp() && r.Timestamp.After(cutoff) {
			recent++
		}
	}

	ratio := float64(recent) / float64(len(ratings))
	if ratio <= 0.5 {
		return base
	}

	return Weights{
		Content:       base.Content * (1 - recencyBoost*ratio),
		Collaborative: base.Collaborative * (1 + recencyBoost*ratio),
	}.Normalize()
}
