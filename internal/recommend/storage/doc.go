// Cinematch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

// Package storage persists the movie catalog, ratings and fit history in
// BadgerDB.
//
// The Store is the engine's data source: every refit reads the full catalog
// and rating table through Movies and Ratings, so ratings ingested between
// fits are picked up by the next one.
//
// # Key Layout
//
// Values are JSON encoded with goccy/go-json. Key components are separated
// by a NUL byte:
//
//	movie\x00{movie_id}                     -> models.Movie
//	rating\x00{user_id}\x00{movie_id}         -> models.Rating
//	fit\x00{started_at_unix_nano}\x00{id}    -> FitRecord
//
// One key per (user, movie) pair means the store never holds duplicate
// ratings. AddRating keeps the stored value when it has a later timestamp
// than the incoming one.
//
// # Usage
//
//	store, err := storage.Open(storage.Options{Dir: "/data/badger"}, logger)
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	if _, err := store.Seed(ctx, movies, ratings); err != nil {
//	    return err
//	}
//	engine.SetDataSource(store)
//
// # Thread Safety
//
// BadgerDB transactions are safe for concurrent use, and so is Store.
package storage
