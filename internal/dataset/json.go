// Cinematch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package dataset

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/cinematch/internal/models"
)

// ReadMoviesJSON reads a JSON array of movies. List fields may be arrays or
// comma-separated strings. Entries without an id or title are skipped.
func ReadMoviesJSON(r io.Reader) ([]models.Movie, *LoadStats, error) {
	stats := &LoadStats{Table: "movies", StartTime: time.Now()}

	var rows []models.Movie
	if err := json.NewDecoder(r).Decode(&rows); err != nil {
		return nil, stats, fmt.Errorf("decode movies: %w", err)
	}

	movies := make([]models.Movie, 0, len(rows))
	for i := range rows {
		stats.Processed++
		if rows[i].ID == "" || rows[i].Title == "" {
			stats.Skipped++
			continue
		}
		movies = append(movies, rows[i])
		stats.Loaded++
	}

	stats.EndTime = time.Now()
	return movies, stats, nil
}

// flexString decodes a JSON string or number into a string.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number: %w", err)
	}
	*f = flexString(n.String())
	return nil
}

type ratingRow struct {
	UserID    flexString `json:"user_id"`
	MovieID   flexString `json:"movie_id"`
	Rating    *float64   `json:"rating"`
	Timestamp flexString `json:"timestamp"`
}

// ReadRatingsJSON reads a JSON array of ratings. Ids may be strings or
// numbers; timestamps may be unix seconds or RFC 3339 strings.
func ReadRatingsJSON(r io.Reader) ([]models.Rating, *LoadStats, error) {
	stats := &LoadStats{Table: "ratings", StartTime: time.Now()}

	var rows []ratingRow
	if err := json.NewDecoder(r).Decode(&rows); err != nil {
		return nil, stats, fmt.Errorf("decode ratings: %w", err)
	}

	ratings := make([]models.Rating, 0, len(rows))
	for _, row := range rows {
		stats.Processed++
		if row.UserID == "" || row.MovieID == "" || row.Rating == nil {
			stats.Skipped++
			continue
		}
		v := *row.Rating
		if math.IsNaN(v) || v < models.MinRating || v > models.MaxRating {
			stats.Skipped++
			continue
		}
		ratings = append(ratings, models.Rating{
			UserID:    string(row.UserID),
			MovieID:   string(row.MovieID),
			Value:     v,
			Timestamp: ParseTimestamp(string(row.Timestamp)),
		})
		stats.Loaded++
	}

	stats.EndTime = time.Now()
	return ratings, stats, nil
}
