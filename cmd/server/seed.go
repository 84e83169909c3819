// Cinematch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package main

import (
	"context"
	"fmt"

	"github.com/tomtom215/cinematch/internal/config"
	"github.com/tomtom215/cinematch/internal/dataset"
	"github.com/tomtom215/cinematch/internal/logging"
	"github.com/tomtom215/cinematch/internal/models"
)

// seeder is the subset of the store used for first-run seeding.
type seeder interface {
	Seed(ctx context.Context, movies []models.Movie, ratings []models.Rating) (bool, error)
}

// seedStore fills an empty store from the configured dataset files, or
// from the built-in sample when SEED_SAMPLE is set. A store that already
// holds data is left untouched.
func seedStore(ctx context.Context, cfg *config.Config, store seeder) error {
	var ds *dataset.Dataset
	switch {
	case cfg.HasDatasetFiles():
		loader := dataset.NewLoader(cfg.Data.MoviesPath, cfg.Data.RatingsPath, logging.Logger())
		loaded, err := loader.Load(ctx)
		if err != nil {
			return fmt.Errorf("load dataset: %w", err)
		}
		ds = loaded
	case cfg.Data.SeedSample:
		ds = dataset.Sample()
	default:
		logging.Info().Msg("No dataset configured, serving whatever the store holds")
		return nil
	}

	seeded, err := store.Seed(ctx, ds.Movies, ds.Ratings)
	if err != nil {
		return fmt.Errorf("seed store: %w", err)
	}
	if seeded {
		logging.Info().
			Str("source", ds.Source).
			Int("movies", len(ds.Movies)).
			Int("ratings", len(ds.Ratings)).
			Msg("Store seeded")
	} else {
		logging.Info().Msg("Store already populated, skipping seed")
	}
	return nil
}
