// Cinematch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

// Package dataset loads the movie and rating tables consumed by the
// recommendation engine.
//
// Two file formats are supported, chosen by extension:
//
//   - CSV with a header row. Columns are matched by name (movie_id or id,
//     title, genres, director, cast, overview, tags, year, runtime,
//     vote_average, vote_count; user_id, movie_id, rating, timestamp).
//     List columns are comma-separated; pipe-separated genres are accepted.
//   - JSON arrays of objects with the same field names. List fields may be
//     arrays or comma-separated strings.
//
// Rows missing required values are skipped and counted in LoadStats. A table
// missing a required column fails with *MissingColumnsError.
//
// Sample returns a small built-in catalog (20 movies, 30 ratings) used when
// no files are configured.
package dataset
