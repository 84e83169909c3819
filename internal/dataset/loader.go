// Cinematch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package dataset

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cinematch/internal/models"
)

// Loader reads the movie and rating tables from files. The format is chosen
// by extension: .csv or .json.
type Loader struct {
	MoviesPath  string
	RatingsPath string
	logger      zerolog.Logger
}

// NewLoader creates a file loader.
func NewLoader(moviesPath, ratingsPath string, logger zerolog.Logger) *Loader {
	return &Loader{
		MoviesPath:  moviesPath,
		RatingsPath: ratingsPath,
		logger:      logger.With().Str("component", "dataset").Logger(),
	}
}

// Load reads both tables. When neither path is set the sample dataset is
// returned.
func (l *Loader) Load(ctx context.Context) (*Dataset, error) {
	if l.MoviesPath == "" && l.RatingsPath == "" {
		l.logger.Info().Msg("No dataset files configured, using built-in sample dataset")
		return Sample(), nil
	}
	if l.MoviesPath == "" || l.RatingsPath == "" {
		return nil, fmt.Errorf("both movies and ratings paths are required (movies=%q ratings=%q)", l.MoviesPath, l.RatingsPath)
	}

	movies, err := l.loadMovies(ctx)
	if err != nil {
		return nil, err
	}
	ratings, err := l.loadRatings(ctx)
	if err != nil {
		return nil, err
	}

	return &Dataset{Movies: movies, Ratings: ratings, Source: SourceFiles}, nil
}

func (l *Loader) loadMovies(ctx context.Context) ([]models.Movie, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(l.MoviesPath)
	if err != nil {
		return nil, fmt.Errorf("open movies file: %w", err)
	}
	defer f.Close()

	var (
		movies []models.Movie
		stats  *LoadStats
	)
	switch ext := strings.ToLower(filepath.Ext(l.MoviesPath)); ext {
	case ".csv":
		movies, stats, err = ReadMoviesCSV(f)
	case ".json":
		movies, stats, err = ReadMoviesJSON(f)
	default:
		return nil, fmt.Errorf("unsupported movies file extension %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", l.MoviesPath, err)
	}

	stats.Path = l.MoviesPath
	l.logStats(stats)
	return movies, nil
}

func (l *Loader) loadRatings(ctx context.Context) ([]models.Rating, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(l.RatingsPath)
	if err != nil {
		return nil, fmt.Errorf("open ratings file: %w", err)
	}
	defer f.Close()

	var (
		ratings []models.Rating
		stats   *LoadStats
	)
	switch ext := strings.ToLower(filepath.Ext(l.RatingsPath)); ext {
	case ".csv":
		ratings, stats, err = ReadRatingsCSV(f)
	case ".json":
		ratings, stats, err = ReadRatingsJSON(f)
	default:
		return nil, fmt.Errorf("unsupported ratings file extension %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", l.RatingsPath, err)
	}

	stats.Path = l.RatingsPath
	l.logStats(stats)
	return ratings, nil
}

func (l *Loader) logStats(stats *LoadStats) {
	ev := l.logger.Info()
	if stats.Skipped > 0 {
		ev = l.logger.Warn()
	}
	ev.Str("table", stats.Table).
		Str("path", stats.Path).
		Int64("processed", stats.Processed).
		Int64("loaded", stats.Loaded).
		Int64("skipped", stats.Skipped).
		Dur("duration", stats.Duration()).
		Msg("Loaded dataset table")
}
