// Cinematch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package evaluation

import (
	"sort"

	"github.com/tomtom215/cinematch/internal/models"
)

// DefaultKs are the cutoffs evaluated when Options.Ks is empty.
var DefaultKs = []int{5, 10, 20}

// Options controls an evaluation run.
type Options struct {
	// Ks lists the cutoffs to evaluate.
	// Default: 5, 10, 20
	Ks []int

	// MinRating is the smallest held-out rating that counts as relevant.
	// Default: 4.0
	MinRating float64
}

// DefaultOptions returns the standard evaluation cutoffs and threshold.
func DefaultOptions() Options {
	return Options{
		Ks:        append([]int(nil), DefaultKs...),
		MinRating: models.LikedThreshold,
	}
}

func (o Options) withDefaults() Options {
	if len(o.Ks) == 0 {
		o.Ks = append([]int(nil), DefaultKs...)
	}
	if o.MinRating <= 0 {
		o.MinRating = models.LikedThreshold
	}
	return o
}

// AtK holds metric means for one cutoff.
type AtK struct {
	K         int     `json:"k"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	NDCG      float64 `json:"ndcg"`
	MAP       float64 `json:"map"`
	Diversity float64 `json:"diversity"`
	Novelty   float64 `json:"novelty"`

	// Users is the number of users contributing to the accuracy metrics.
	Users int `json:"users"`
}

// Report is the result of Evaluate.
type Report struct {
	Metrics  []AtK    `json:"metrics"`
	Coverage Coverage `json:"coverage"`
}

// Evaluate scores per-user recommendation lists against held-out ratings.
//
// For every cutoff k:
//   - users whose top-k list is empty are skipped
//   - accuracy metrics are averaged over users with at least one relevant
//     held-out rating
//   - diversity is averaged over lists with more than one item
//   - novelty is averaged over all non-empty lists, using counts as the
//     per-movie training popularity
//
// Coverage compares the recommendations with the catalog and with the set of
// users present in the held-out ratings.
func Evaluate(recs map[string][]string, test []models.Rating, catalog []models.Movie, counts map[string]int, opts Options) Report {
	opts = opts.withDefaults()

	relevant := make(map[string]map[string]struct{})
	testUsers := make(map[string]struct{})
	for _, r := range test {
		testUsers[r.UserID] = struct{}{}
		if r.Value < opts.MinRating {
			continue
		}
		set, ok := relevant[r.UserID]
		if !ok {
			set = make(map[string]struct{})
			relevant[r.UserID] = set
		}
		set[r.MovieID] = struct{}{}
	}

	movies := make(map[string]models.Movie, len(catalog))
	for _, m := range catalog {
		movies[m.ID] = m
	}

	// Stable iteration keeps floating point sums reproducible.
	users := make([]string, 0, len(recs))
	for u := range recs {
		users = append(users, u)
	}
	sort.Strings(users)

	report := Report{
		Metrics:  make([]AtK, 0, len(opts.Ks)),
		Coverage: ComputeCoverage(recs, len(catalog), len(testUsers)),
	}

	for _, k := range opts.Ks {
		if k <= 0 {
			continue
		}
		var acc, div, nov mean
		var prec, rec, ndcg, mapk mean

		for _, u := range users {
			top := truncate(recs[u], k)
			if len(top) == 0 {
				continue
			}

			if rel := relevant[u]; len(rel) > 0 {
				acc.n++
				prec.add(PrecisionAtK(top, rel, k))
				rec.add(RecallAtK(top, rel, k))
				ndcg.add(NDCGAtK(top, rel, k))
				mapk.add(MAPAtK(top, rel, k))
			}
			if len(top) > 1 {
				div.add(IntraListDiversity(top, movies))
			}
			nov.add(Novelty(top, counts, len(catalog)))
		}

		report.Metrics = append(report.Metrics, AtK{
			K:         k,
			Precision: prec.value(),
			Recall:    rec.value(),
			NDCG:      ndcg.value(),
			MAP:       mapk.value(),
			Diversity: div.value(),
			Novelty:   nov.value(),
			Users:     acc.n,
		})
	}

	return report
}

type mean struct {
	sum float64
	n   int
}

func (m *mean) add(v float64) {
	m.sum += v
	m.n++
}

func (m *mean) value() float64 {
	if m.n == 0 {
		return 0
	}
	return m.sum / float64(m.n)
}
