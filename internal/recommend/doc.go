// Cinematch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

// Package recommend implements the hybrid movie recommendation engine.
//
// # Architecture
//
// The engine blends two signals and falls back to popularity:
//
//   - Content similarity: TF-IDF over genres, director, cast, tags and overview
//   - Collaborative filtering: biased ALS matrix factorization, with user-user
//     neighbors for users with very few ratings
//   - Cold start: Bayesian-smoothed popularity, optionally genre filtered
//
// # Request Flow
//
// Recommend picks one of three serving paths:
//
//   - cold_start: no rating history and no liked movies
//   - hybrid: content candidates from liked movies and collaborative
//     candidates from the user's history, blended with adaptive weights
//   - item_fallback: neither source produced candidates; neighbors of the
//     first known liked movie are returned instead
//
// Hybrid weights come from WeightsFor, which favors content for new users,
// long-tail candidates and sparse data, and favors collaborative scores
// otherwise. Collaborative scores are divided by the maximum rating so both
// signals share the [0, 1] range.
//
// Every result carries a reason from the Explainer. Reasons are never empty.
//
// # Usage
//
//	engine, err := recommend.NewEngine(recommend.DefaultConfig(), logger)
//	if err != nil {
//	    return err
//	}
//	if err := engine.Fit(ctx, movies, ratings); err != nil {
//	    return err
//	}
//
//	resp, err := engine.Recommend(ctx, recommend.Request{
//	    LikedMovies: []string{"m1", "m2"},
//	    TopN:        5,
//	})
//
// # Errors
//
// Fit returns *InsufficientDataError for an empty table and *SchemaError for
// an invalid row. Queries before the first fit return ErrNotFitted. Unknown
// users and movies are never errors; they degrade to popularity, the global
// mean or an empty list.
//
// # Thread Safety
//
// The engine is safe for concurrent use. Fit builds a complete new model off
// to the side and publishes it with an atomic pointer swap, so queries keep
// serving the previous model while a fit runs and never observe a partial
// one. Only one fit runs at a time.
package recommend
