// Cinematch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/tomtom215/cinematch/internal/models"
)

// columnAliases maps a canonical column to the header names accepted for it.
var columnAliases = map[string][]string{
	"movie_id":     {"movie_id", "movieid", "id"},
	"title":        {"title"},
	"genres":       {"genres", "genre"},
	"director":     {"director", "directors"},
	"cast":         {"cast", "actors"},
	"overview":     {"overview", "description", "plot"},
	"tags":         {"tags", "keywords"},
	"year":         {"year", "release_year"},
	"runtime":      {"runtime"},
	"vote_average": {"vote_average"},
	"vote_count":   {"vote_count"},
	"user_id":      {"user_id", "userid"},
	"rating":       {"rating"},
	"timestamp":    {"timestamp"},
}

// header resolves canonical column names to record positions.
type header map[string]int

func parseHeader(row []string) header {
	pos := make(map[string]int, len(row))
	for i, name := range row {
		pos[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))] = i
	}

	h := make(header)
	for canonical, aliases := range columnAliases {
		for _, a := range aliases {
			if i, ok := pos[a]; ok {
				h[canonical] = i
				break
			}
		}
	}
	return h
}

func (h header) require(table string, columns ...string) error {
	var missing []string
	for _, c := range columns {
		if _, ok := h[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return &MissingColumnsError{Table: table, Columns: missing}
	}
	return nil
}

// get returns the trimmed value of column c, or "" when absent.
func (h header) get(row []string, c string) string {
	i, ok := h[c]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// ReadMoviesCSV reads a movie table with a header row. Columns are matched by
// name. Rows without an id or title are skipped.
func ReadMoviesCSV(r io.Reader) ([]models.Movie, *LoadStats, error) {
	stats := &LoadStats{Table: "movies", StartTime: time.Now()}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	first, err := cr.Read()
	if err != nil {
		return nil, stats, fmt.Errorf("read movies header: %w", err)
	}
	h := parseHeader(first)
	if err := h.require("movies", "movie_id", "title"); err != nil {
		return nil, stats, err
	}

	var movies []models.Movie
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, stats, fmt.Errorf("read movies row %d: %w", stats.Processed+2, err)
		}
		stats.Processed++

		m := models.Movie{
			ID:       h.get(row, "movie_id"),
			Title:    h.get(row, "title"),
			Genres:   models.ParseStringList(strings.ReplaceAll(h.get(row, "genres"), "|", ",")),
			Director: h.get(row, "director"),
			Cast:     models.ParseStringList(h.get(row, "cast")),
			Overview: h.get(row, "overview"),
			Tags:     models.ParseStringList(h.get(row, "tags")),

			Year:        optionalInt(h.get(row, "year")),
			Runtime:     optionalInt(h.get(row, "runtime")),
			VoteAverage: optionalFloat(h.get(row, "vote_average")),
			VoteCount:   optionalInt(h.get(row, "vote_count")),
		}
		if m.ID == "" || m.Title == "" {
			stats.Skipped++
			continue
		}

		movies = append(movies, m)
		stats.Loaded++
	}

	stats.EndTime = time.Now()
	return movies, stats, nil
}

// ReadRatingsCSV reads a rating table with a header row. Rows with a missing
// id or a non-numeric or out-of-range rating are skipped. Timestamps may be
// unix seconds or RFC 3339.
func ReadRatingsCSV(r io.Reader) ([]models.Rating, *LoadStats, error) {
	stats := &LoadStats{Table: "ratings", StartTime: time.Now()}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	first, err := cr.Read()
	if err != nil {
		return nil, stats, fmt.Errorf("read ratings header: %w", err)
	}
	h := parseHeader(first)
	if err := h.require("ratings", "user_id", "movie_id", "rating"); err != nil {
		return nil, stats, err
	}

	var ratings []models.Rating
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, stats, fmt.Errorf("read ratings row %d: %w", stats.Processed+2, err)
		}
		stats.Processed++

		value, err := strconv.ParseFloat(h.get(row, "rating"), 64)
		if err != nil || math.IsNaN(value) || value < models.MinRating || value > models.MaxRating {
			stats.Skipped++
			continue
		}

		rt := models.Rating{
			UserID:    h.get(row, "user_id"),
			MovieID:   h.get(row, "movie_id"),
			Value:     value,
			Timestamp: ParseTimestamp(h.get(row, "timestamp")),
		}
		if rt.UserID == "" || rt.MovieID == "" {
			stats.Skipped++
			continue
		}

		ratings = append(ratings, rt)
		stats.Loaded++
	}

	stats.EndTime = time.Now()
	return ratings, stats, nil
}

// ParseTimestamp parses unix seconds, RFC 3339 or "2006-01-02 15:04:05".
// Empty or unparsable input yields the zero time.
func ParseTimestamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	if secs, err := strconv.ParseFloat(s, 64); err == nil {
		whole, frac := math.Modf(secs)
		return time.Unix(int64(whole), int64(frac*1e9)).UTC()
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

func optionalInt(s string) *int {
	if s == "" {
		return nil
	}
	// Accept "2010.0" as written by dataframe exports.
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) {
		return nil
	}
	v := int(f)
	return &v
}

func optionalFloat(s string) *float64 {
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) {
		return nil
	}
	return &f
}
