// Cinematch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package evaluation

import (
	"math"
	"strings"

	"github.com/tomtom215/cinematch/internal/models"
)

// minPopularity floors the popularity used by Novelty so that items with no
// training ratings produce a finite self-information.
const minPopularity = 1e-10

// PrecisionAtK returns the fraction of the first k recommendations that are
// relevant. The denominator is always k.
func PrecisionAtK(recs []string, relevant map[string]struct{}, k int) float64 {
	if k <= 0 {
		return 0
	}
	return float64(hitsAtK(recs, relevant, k)) / float64(k)
}

// RecallAtK returns the fraction of relevant items found in the first k
// recommendations.
func RecallAtK(recs []string, relevant map[string]struct{}, k int) float64 {
	if k <= 0 || len(relevant) == 0 {
		return 0
	}
	return float64(hitsAtK(recs, relevant, k)) / float64(len(relevant))
}

// NDCGAtK computes normalized discounted cumulative gain with binary
// relevance. The ideal ranking places min(k, |relevant|) hits at the top.
// Repeated ids earn no gain after their first position.
func NDCGAtK(recs []string, relevant map[string]struct{}, k int) float64 {
	if k <= 0 || len(relevant) == 0 {
		return 0
	}

	dcg := 0.0
	seen := make(map[string]struct{}, k)
	for rank, id := range truncate(recs, k) {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if _, ok := relevant[id]; ok {
			dcg += 1.0 / math.Log2(float64(rank)+2.0)
		}
	}

	idcg := 0.0
	for rank := 0; rank < min(k, len(relevant)); rank++ {
		idcg += 1.0 / math.Log2(float64(rank)+2.0)
	}

	if idcg == 0 {
		return 0
	}
	return dcg / idcg
}

// MAPAtK computes average precision over the first k recommendations,
// normalized by min(k, |relevant|).
func MAPAtK(recs []string, relevant map[string]struct{}, k int) float64 {
	if k <= 0 || len(relevant) == 0 {
		return 0
	}

	hits := 0
	sum := 0.0
	seen := make(map[string]struct{}, k)
	for rank, id := range truncate(recs, k) {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if _, ok := relevant[id]; ok {
			hits++
			sum += float64(hits) / float64(rank+1)
		}
	}

	return sum / float64(min(k, len(relevant)))
}

// IntraListDiversity returns 1 minus the mean pairwise Jaccard similarity of
// the recommended movies' genre sets. Genres are compared case-insensitively.
// Lists with fewer than two known movies have diversity 0.
func IntraListDiversity(recs []string, movies map[string]models.Movie) float64 {
	sets := make([]map[string]struct{}, 0, len(recs))
	for _, id := range recs {
		movie, ok := movies[id]
		if !ok {
			continue
		}
		set := make(map[string]struct{}, len(movie.Genres))
		for _, g := range movie.Genres {
			if g = strings.ToLower(strings.TrimSpace(g)); g != "" {
				set[g] = struct{}{}
			}
		}
		sets = append(sets, set)
	}

	if len(sets) < 2 {
		return 0
	}

	total := 0.0
	pairs := 0
	for i := 0; i < len(sets); i++ {
		for j := i + 1; j < len(sets); j++ {
			sim, ok := jaccard(sets[i], sets[j])
			if !ok {
				continue
			}
			total += sim
			pairs++
		}
	}

	if pairs == 0 {
		return 0
	}
	return clampUnit(1.0 - total/float64(pairs))
}

// Novelty returns the mean self-information -log2(count/catalogSize) of the
// recommended movies, where count is the number of training ratings.
func Novelty(recs []string, counts map[string]int, catalogSize int) float64 {
	if len(recs) == 0 || catalogSize <= 0 {
		return 0
	}

	total := 0.0
	for _, id := range recs {
		popularity := math.Max(float64(counts[id])/float64(catalogSize), minPopularity)
		total += -math.Log2(popularity)
	}
	return total / float64(len(recs))
}

// Coverage reports how much of the catalog and user base the recommendations
// reach.
type Coverage struct {
	Catalog          float64 `json:"catalog_coverage"`
	Users            float64 `json:"user_coverage"`
	UniqueItems      int     `json:"unique_items_recommended"`
	CatalogSize      int     `json:"total_catalog_size"`
	UsersWithResults int     `json:"users_with_recommendations"`
	TotalUsers       int     `json:"total_users"`
}

// ComputeCoverage measures catalog coverage (distinct recommended movies over
// catalog size) and user coverage (users with at least one recommendation
// over totalUsers).
func ComputeCoverage(recs map[string][]string, catalogSize, totalUsers int) Coverage {
	unique := make(map[string]struct{})
	withResults := 0
	for _, list := range recs {
		if len(list) > 0 {
			withResults++
		}
		for _, id := range list {
			unique[id] = struct{}{}
		}
	}

	c := Coverage{
		UniqueItems:      len(unique),
		CatalogSize:      catalogSize,
		UsersWithResults: withResults,
		TotalUsers:       totalUsers,
	}
	if catalogSize > 0 {
		c.Catalog = float64(len(unique)) / float64(catalogSize)
	}
	if totalUsers > 0 {
		c.Users = float64(withResults) / float64(totalUsers)
	}
	return c
}

func hitsAtK(recs []string, relevant map[string]struct{}, k int) int {
	hits := 0
	seen := make(map[string]struct{}, k)
	for _, id := range truncate(recs, k) {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if _, ok := relevant[id]; ok {
			hits++
		}
	}
	return hits
}

func truncate(recs []string, k int) []string {
	if len(recs) > k {
		return recs[:k]
	}
	return recs
}

func jaccard(a, b map[string]struct{}) (float64, bool) {
	intersection := 0
	for g := range a {
		if _, ok := b[g]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0, false
	}
	return float64(intersection) / float64(union), true
}

func clampUnit(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
