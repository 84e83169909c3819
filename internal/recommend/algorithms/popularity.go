// Cinematch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package algorithms

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/tomtom215/cinematch/internal/models"
)

// DefaultBayesianK is the smoothing constant of the popularity score.
const DefaultBayesianK = 10.0

// MovieStats aggregates the ratings of one movie.
type MovieStats struct {
	MovieID    string  `json:"movie_id"`
	Count      int     `json:"rating_count"`
	AvgRating  float64 `json:"avg_rating"`
	LikedCount int     `json:"liked_count"`
	Score      float64 `json:"popularity_score"`
}

// GenrePopularity aggregates ratings across the movies of one genre.
type GenrePopularity struct {
	Genre        string  `json:"genre"`
	AvgRating    float64 `json:"avg_rating"`
	TotalRatings int     `json:"total_ratings"`
	MovieCount   int     `json:"movie_count"`
}

// Popularity ranks the catalog by a Bayesian-smoothed average rating:
//
//	score(movie) = avg_rating * count / (count + K)
//
// Movies with few ratings shrink toward 0 instead of dominating the ranking.
// Unrated movies score 0 and rank last in catalog order.
type Popularity struct {
	BaseAlgorithm
	k float64

	stats      map[string]*MovieStats
	timestamps map[string][]time.Time
	ranked     []ScoredID
	genres     []GenrePopularity
}

// NewPopularity creates a popularity model. k <= 0 uses DefaultBayesianK.
func NewPopularity(k float64) *Popularity {
	if k <= 0 {
		k = DefaultBayesianK
	}
	return &Popularity{
		BaseAlgorithm: NewBaseAlgorithm("popularity"),
		k:             k,
		stats:         make(map[string]*MovieStats),
	}
}

// Fit computes per-movie and per-genre statistics. Ratings are expected to be
// unique per (user, movie).
//
//nolint:gocritic // rangeValCopy: Movie/Rating passed by value in range, acceptable for clarity
func (p *Popularity) Fit(ctx context.Context, movies []models.Movie, ratings []models.Rating) error {
	p.acquireTrainLock()
	defer p.releaseTrainLock()

	stats := make(map[string]*MovieStats, len(movies))
	timestamps := make(map[string][]time.Time)
	sums := make(map[string]float64)

	for _, r := range ratings {
		s, ok := stats[r.MovieID]
		if !ok {
			s = &MovieStats{MovieID: r.MovieID}
			stats[r.MovieID] = s
		}
		s.Count++
		sums[r.MovieID] += r.Value
		if r.Liked() {
			s.LikedCount++
		}
		if r.HasTimestamp() {
			timestamps[r.MovieID] = append(timestamps[r.MovieID], r.Timestamp)
		}
	}

	if ContextCancelled(ctx) {
		return ctx.Err()
	}

	for id, s := range stats {
		s.AvgRating = sums[id] / float64(s.Count)
		s.Score = s.AvgRating * float64(s.Count) / (float64(s.Count) + p.k)
	}
	for _, ts := range timestamps {
		sort.Slice(ts, func(i, j int) bool { return ts[i].Before(ts[j]) })
	}

	entries := make([]rankedEntry, len(movies))
	for i, m := range movies {
		var score float64
		if s, ok := stats[m.ID]; ok {
			score = s.Score
		}
		entries[i] = rankedEntry{id: m.ID, score: score, pos: i}
	}

	p.stats = stats
	p.timestamps = timestamps
	p.ranked = rankTopN(entries, 0)
	p.genres = genrePopularity(movies, stats)
	p.markTrained()
	return nil
}

// genrePopularity averages movie averages per genre. Genres are merged
// case-insensitively, keeping the first spelling seen. Only rated movies
// contribute. Sorted by total ratings, then average, then name.
func genrePopularity(movies []models.Movie, stats map[string]*MovieStats) []GenrePopularity {
	type acc struct {
		name   string
		sumAvg float64
		total  int
		movies int
	}

	byKey := make(map[string]*acc)
	var order []string

	for i := range movies {
		s, ok := stats[movies[i].ID]
		if !ok {
			continue
		}
		for _, g := range movies[i].Genres {
			key := strings.ToLower(g)
			a, ok := byKey[key]
			if !ok {
				a = &acc{name: g}
				byKey[key] = a
				order = append(order, key)
			}
			a.sumAvg += s.AvgRating
			a.total += s.Count
			a.movies++
		}
	}

	out := make([]GenrePopularity, 0, len(order))
	for _, key := range order {
		a := byKey[key]
		out = append(out, GenrePopularity{
			Genre:        a.name,
			AvgRating:    a.sumAvg / float64(a.movies),
			TotalRatings: a.total,
			MovieCount:   a.movies,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].TotalRatings != out[j].TotalRatings {
			return out[i].TotalRatings > out[j].TotalRatings
		}
		if out[i].AvgRating != out[j].AvgRating {
			return out[i].AvgRating > out[j].AvgRating
		}
		return out[i].Genre < out[j].Genre
	})
	return out
}

// Ranked returns the whole catalog by popularity score descending.
func (p *Popularity) Ranked() []ScoredID {
	p.acquirePredictLock()
	defer p.releasePredictLock()
	out := make([]ScoredID, len(p.ranked))
	copy(out, p.ranked)
	return out
}

// Stats returns the rating statistics of a movie.
func (p *Popularity) Stats(movieID string) (MovieStats, bool) {
	p.acquirePredictLock()
	defer p.releasePredictLock()
	if s, ok := p.stats[movieID]; ok {
		return *s, true
	}
	return MovieStats{MovieID: movieID}, false
}

// RecentCount returns the number of timestamped ratings of a movie at or
// after since.
func (p *Popularity) RecentCount(movieID string, since time.Time) int {
	p.acquirePredictLock()
	defer p.releasePredictLock()
	ts := p.timestamps[movieID]
	i := sort.Search(len(ts), func(i int) bool { return !ts[i].Before(since) })
	return len(ts) - i
}

// Genres returns per-genre popularity.
func (p *Popularity) Genres() []GenrePopularity {
	p.acquirePredictLock()
	defer p.releasePredictLock()
	out := make([]GenrePopularity, len(p.genres))
	copy(out, p.genres)
	return out
}
