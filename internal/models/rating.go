// Cinematch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package models

import "time"

// Rating scale bounds.
const (
	MinRating = 0.5
	MaxRating = 5.0

	// LikedThreshold is the rating at or above which a rating counts as "liked".
	LikedThreshold = 4.0
)

// Rating is a single explicit user rating.
type Rating struct {
	UserID  string  `json:"user_id" validate:"required,entityid"`
	MovieID string  `json:"movie_id" validate:"required,entityid"`
	Value   float64 `json:"rating" validate:"gte=0.5,lte=5"`

	// Timestamp is optional. The zero value means unknown.
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// Liked reports whether the rating meets LikedThreshold.
func (r *Rating) Liked() bool {
	return r.Value >= LikedThreshold
}

// HasTimestamp reports whether the rating carries a timestamp.
func (r *Rating) HasTimestamp() bool {
	return !r.Timestamp.IsZero()
}

// DedupeRatings collapses duplicate (user, movie) pairs. The rating with the
// latest timestamp wins; on equal timestamps the later entry in input order
// wins. The relative order of surviving ratings follows their first occurrence.
func DedupeRatings(ratings []Rating) []Rating {
	type key struct{ user, movie string }

	index := make(map[key]int, len(ratings))
	out := make([]Rating, 0, len(ratings))

	for _, r := range ratings {
		k := key{r.UserID, r.MovieID}
		pos, seen := index[k]
		if !seen {
			index[k] = len(out)
			out = append(out, r)
			continue
		}
		if !r.Timestamp.Before(out[pos].Timestamp) {
			out[pos] = r
		}
	}

	return out
}
