// Cinematch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

// Package evaluation provides offline ranking metrics for recommendation lists.
//
// # Accuracy Metrics
//
// All accuracy metrics use binary relevance: a held-out rating at or above
// Options.MinRating marks the movie as relevant for that user.
//
//   - PrecisionAtK: hits in the top k divided by k
//   - RecallAtK: hits in the top k divided by the number of relevant items
//   - NDCGAtK: DCG with 1/log2(rank+2) discounts, normalized by the ideal DCG
//     over min(k, |relevant|) positions
//   - MAPAtK: average precision normalized by min(k, |relevant|)
//
// # Beyond-Accuracy Metrics
//
//   - IntraListDiversity: 1 - mean pairwise genre Jaccard similarity
//   - Novelty: mean -log2(training count / catalog size)
//   - ComputeCoverage: catalog and user coverage
//
// # Usage
//
//	report := evaluation.Evaluate(recs, heldOut, movies, engine.RatingCounts(),
//	    evaluation.DefaultOptions())
//	for _, m := range report.Metrics {
//	    fmt.Printf("NDCG@%d = %.3f\n", m.K, m.NDCG)
//	}
//
// The package is pure computation with no shared state and is safe for
// concurrent use.
package evaluation
