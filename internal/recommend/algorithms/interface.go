// Cinematch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package algorithms

import (
	"context"
	"errors"
	"math"
	"sort"
	"sync"
	"time"
)

var (
	// ErrNotTrained is returned when a query needs a fitted model.
	ErrNotTrained = errors.New("model not trained")

	// ErrEmptyInput is returned when Fit receives no usable rows.
	ErrEmptyInput = errors.New("empty training input")
)

// Model is the lifecycle surface shared by every fitted component.
type Model interface {
	Name() string
	IsTrained() bool
	Version() int
	LastTrainedAt() time.Time
}

var (
	_ Model = (*ContentSimilarity)(nil)
	_ Model = (*CollaborativeFilter)(nil)
	_ Model = (*MatrixFactorization)(nil)
	_ Model = (*ColdStart)(nil)
	_ Model = (*Popularity)(nil)
)

// BaseAlgorithm provides common functionality for all components.
type BaseAlgorithm struct {
	name          string
	trained       bool
	version       int
	lastTrainedAt time.Time
	mu            sync.RWMutex
}

// NewBaseAlgorithm creates a new base algorithm with the given name.
func NewBaseAlgorithm(name string) BaseAlgorithm {
	return BaseAlgorithm{
		name: name,
	}
}

// Name returns the component identifier.
func (b *BaseAlgorithm) Name() string {
	return b.name
}

// IsTrained returns whether the model has been fitted.
func (b *BaseAlgorithm) IsTrained() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.trained
}

// Version returns the number of completed fits.
func (b *BaseAlgorithm) Version() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.version
}

// LastTrainedAt returns when the model was last fitted.
func (b *BaseAlgorithm) LastTrainedAt() time.Time {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastTrainedAt
}

// markTrained updates the trained state.
// Must be called while holding the training lock (acquireTrainLock).
func (b *BaseAlgorithm) markTrained() {
	b.trained = true
	b.version++
	b.lastTrainedAt = time.Now()
}

func (b *BaseAlgorithm) acquireTrainLock()   { b.mu.Lock() }
func (b *BaseAlgorithm) releaseTrainLock()   { b.mu.Unlock() }
func (b *BaseAlgorithm) acquirePredictLock() { b.mu.RLock() }
func (b *BaseAlgorithm) releasePredictLock() { b.mu.RUnlock() }

// ScoredID is a movie (or user) identifier with a score.
type ScoredID struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}

// rankedEntry carries the insertion position used for stable tie-breaking.
type rankedEntry struct {
	id    string
	score float64
	pos   int
}

// rankTopN sorts entries by descending score, ties broken by pos, and
// truncates to n. n <= 0 keeps everything.
func rankTopN(entries []rankedEntry, n int) []ScoredID {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].score != entries[j].score {
			return entries[i].score > entries[j].score
		}
		return entries[i].pos < entries[j].pos
	})

	if n > 0 && len(entries) > n {
		entries = entries[:n]
	}

	out := make([]ScoredID, len(entries))
	for i, e := range entries {
		out[i] = ScoredID{ID: e.id, Score: e.score}
	}
	return out
}

// sparseCosine computes cosine similarity between two sparse vectors keyed by
// index. Returns 0 when either vector is empty.
func sparseCosine(a, b map[int]float64) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	if len(b) < len(a) {
		a, b = b, a
	}

	// Sum in key order so equal inputs always produce bit-identical scores.
	var dot float64
	for _, k := range sortedKeys(a) {
		if vb, ok := b[k]; ok {
			dot += a[k] * vb
		}
	}
	if dot == 0 {
		return 0
	}

	return dot / (sparseNorm(a) * sparseNorm(b))
}

func sparseNorm(v map[int]float64) float64 {
	var sum float64
	for _, k := range sortedKeys(v) {
		sum += v[k] * v[k]
	}
	return math.Sqrt(sum)
}

func sortedKeys(v map[int]float64) []int {
	keys := make([]int, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

// dot returns the dot product of two equal-length dense vectors.
func dot(a, b []float64) float64 {
	var s float64
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

// clamp restricts v to [lo, hi].
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ContextCancelled checks if the context has been canceled.
func ContextCancelled(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}
