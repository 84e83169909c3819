// Cinematch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

// Package algorithms implements the scoring components of the hybrid engine.
//
// Every component embeds BaseAlgorithm, is fitted once from in-memory tables
// and is read-only afterwards. The engine builds fresh instances on every fit
// and swaps them in as a unit, so a component never sees a partial refit.
//
// # Components
//
// Content-Based Filtering:
//   - FeatureBuilder: one text document per movie (genres, director, cast,
//     tags, overview)
//   - Vectorizer / TFIDFVectorizer: text-to-vector strategy; TF-IDF over
//     unigrams and bigrams with English stopwords removed
//   - ContentSimilarity: dense pairwise cosine index, "movies like X"
//
// Collaborative Filtering:
//   - MatrixFactorization: biased ALS over explicit ratings
//   - CollaborativeFilter: factorization plus user-user neighborhoods for
//     thin histories and item-item co-rating similarity
//
// Baselines:
//   - Popularity: Bayesian-smoothed average rating, per-genre aggregates
//   - ColdStart: popular movies for new users, audiences for new movies
//
// # Scores
//
// Content similarity lies in [0, 1]. Collaborative scores are on the rating
// scale [0.5, 5.0]. Cold-start movie scores are the constant NeutralScore.
//
// # Thread Safety
//
// Fit takes the write lock; every query takes the read lock. Queries on a
// fitted component may run concurrently.
package algorithms
