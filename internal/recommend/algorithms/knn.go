// Cinematch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package algorithms

import (
	"context"
	"sort"
	"sync"
)

// KNNConfig contains configuration for neighborhood similarity.
type KNNConfig struct {
	// K is the number of neighbors kept per row.
	K int

	// MinSimilarity is the minimum similarity for a neighbor to be kept.
	// Pairs with no co-ratings always score 0 and are never kept.
	MinSimilarity float64

	// Shrinkage penalizes pairs with few co-ratings:
	// sim = raw_sim * n / (n + shrinkage). Zero disables it.
	Shrinkage float64

	// MinCommon is the minimum number of co-rated entries for a pair.
	MinCommon int

	// NumWorkers is the number of parallel workers.
	NumWorkers int
}

// DefaultKNNConfig returns default neighborhood configuration.
func DefaultKNNConfig() KNNConfig {
	return KNNConfig{
		K:             20,
		MinSimilarity: 0,
		Shrinkage:     0,
		MinCommon:     1,
		NumWorkers:    4,
	}
}

// neighbor represents a similar row with its similarity score.
type neighbor struct {
	idx        int
	similarity float64
}

// neighborIndex holds the top-K cosine neighbors of every row of a sparse
// rating matrix (users over items, or items over users).
type neighborIndex struct {
	config    KNNConfig
	rows      []SparseVector
	neighbors [][]neighbor
}

func withKNNDefaults(cfg KNNConfig) KNNConfig {
	def := DefaultKNNConfig()
	if cfg.K <= 0 {
		cfg.K = def.K
	}
	if cfg.MinCommon <= 0 {
		cfg.MinCommon = def.MinCommon
	}
	if cfg.NumWorkers <= 0 {
		cfg.NumWorkers = def.NumWorkers
	}
	return cfg
}

// buildNeighborIndex precomputes neighbors for every row in parallel chunks.
func buildNeighborIndex(ctx context.Context, rows []SparseVector, cfg KNNConfig) (*neighborIndex, error) {
	idx := &neighborIndex{
		config:    cfg,
		rows:      rows,
		neighbors: make([][]neighbor, len(rows)),
	}

	var wg sync.WaitGroup
	n := len(rows)
	chunkSize := (n + cfg.NumWorkers - 1) / cfg.NumWorkers

	for w := 0; w < cfg.NumWorkers; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if end > n {
			end = n
		}
		if start >= end {
			break
		}

		wg.Add(1)
		go func(rStart, rEnd int) {
			defer wg.Done()

			for r := rStart; r < rEnd; r++ {
				if ContextCancelled(ctx) {
					return
				}
				idx.neighbors[r] = idx.rank(r, cfg.K)
			}
		}(start, end)
	}

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return idx, nil
}

// rank returns the k most similar rows to row r, ties by row index.
// k <= 0 keeps all rows above the threshold.
func (x *neighborIndex) rank(r, k int) []neighbor {
	vec := x.rows[r]
	if len(vec) == 0 {
		return nil
	}

	out := make([]neighbor, 0, len(x.rows))
	for other := range x.rows {
		if other == r {
			continue
		}
		sim := x.similarity(vec, x.rows[other])
		if sim > 0 && sim >= x.config.MinSimilarity {
			out = append(out, neighbor{idx: other, similarity: sim})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].similarity > out[j].similarity
	})

	if k > 0 && len(out) > k {
		out = out[:k]
	}
	return out
}

// similarity computes shrunk cosine similarity between two rating vectors.
func (x *neighborIndex) similarity(a, b SparseVector) float64 {
	if len(b) < len(a) {
		a, b = b, a
	}
	common := 0
	for k := range a {
		if _, ok := b[k]; ok {
			common++
		}
	}
	if common == 0 || common < x.config.MinCommon {
		return 0
	}

	sim := sparseCosine(a, b)
	if x.config.Shrinkage > 0 {
		sim = sim * float64(common) / (float64(common) + x.config.Shrinkage)
	}
	return sim
}

// weightedAverage predicts the value of column c for row r from r's
// neighbors that have an entry in c. ok is false when no neighbor has one.
func (x *neighborIndex) weightedAverage(r, c int) (score float64, ok bool) {
	var num, den float64
	for _, n := range x.neighbors[r] {
		if v, rated := x.rows[n.idx][c]; rated {
			num += n.similarity * v
			den += n.similarity
		}
	}
	if den == 0 {
		return 0, false
	}
	return num / den, true
}
