// Cinematch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package algorithms

import (
	"context"
	"sync"

	"github.com/tomtom215/cinematch/internal/models"
)

// ContentConfig contains configuration for content similarity.
type ContentConfig struct {
	// MaxFeatures caps the vectorizer vocabulary.
	MaxFeatures int

	// MaxCast is the number of cast members included in the feature text.
	MaxCast int

	// NumWorkers is the number of goroutines computing similarity rows.
	// If <= 0, defaults to 4.
	NumWorkers int
}

// DefaultContentConfig returns default content similarity configuration.
func DefaultContentConfig() ContentConfig {
	return ContentConfig{
		MaxFeatures: DefaultMaxFeatures,
		MaxCast:     DefaultMaxCast,
		NumWorkers:  4,
	}
}

// ContentSimilarity answers "movies like X" from pairwise cosine similarity
// over vectorized movie metadata.
//
// The similarity index is dense and symmetric, indexed by catalog position.
// A movie with an empty feature vector scores 0 against every movie,
// including itself.
type ContentSimilarity struct {
	BaseAlgorithm
	config     ContentConfig
	vectorizer Vectorizer
	features   FeatureBuilder

	ids   []string
	index map[string]int
	sim   [][]float64
}

// NewContentSimilarity creates a content similarity model. A nil vectorizer
// uses TF-IDF.
func NewContentSimilarity(cfg ContentConfig, v Vectorizer) *ContentSimilarity {
	if cfg.MaxFeatures <= 0 {
		cfg.MaxFeatures = DefaultMaxFeatures
	}
	if cfg.NumWorkers <= 0 {
		cfg.NumWorkers = 4
	}
	if v == nil {
		v = NewTFIDFVectorizer(cfg.MaxFeatures)
	}

	return &ContentSimilarity{
		BaseAlgorithm: NewBaseAlgorithm("content"),
		config:        cfg,
		vectorizer:    v,
		features:      NewFeatureBuilder(cfg.MaxCast),
		index:         make(map[string]int),
	}
}

// Fit vectorizes the catalog and rebuilds the similarity index.
//
//nolint:gocritic // rangeValCopy: Movie passed by value in range, acceptable for clarity
func (c *ContentSimilarity) Fit(ctx context.Context, movies []models.Movie) error {
	c.acquireTrainLock()
	defer c.releaseTrainLock()

	if len(movies) == 0 {
		return ErrEmptyInput
	}

	vectors, err := c.vectorizer.FitTransform(ctx, c.features.Build(movies))
	if err != nil {
		return err
	}

	ids := make([]string, len(movies))
	index := make(map[string]int, len(movies))
	for i, m := range movies {
		ids[i] = m.ID
		index[m.ID] = i
	}

	sim, err := c.buildIndex(ctx, vectors)
	if err != nil {
		return err
	}

	c.ids = ids
	c.index = index
	c.sim = sim
	c.markTrained()
	return nil
}

// buildIndex computes the upper triangle in parallel row chunks and mirrors it.
func (c *ContentSimilarity) buildIndex(ctx context.Context, vectors []SparseVector) ([][]float64, error) {
	n := len(vectors)
	sim := make([][]float64, n)
	for i := range sim {
		sim[i] = make([]float64, n)
	}

	var wg sync.WaitGroup
	workers := c.config.NumWorkers
	chunkSize := (n + workers - 1) / workers

	for w := 0; w < workers; w++ {
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

			for i := rStart; i < rEnd; i++ {
				if ContextCancelled(ctx) {
					return
				}
				if len(vectors[i]) == 0 {
					continue
				}
				sim[i][i] = 1
				for j := i + 1; j < n; j++ {
					sim[i][j] = clamp(sparseCosine(vectors[i], vectors[j]), 0, 1)
				}
			}
		}(start, end)
	}

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			sim[j][i] = sim[i][j]
		}
	}
	return sim, nil
}

// SimilarTo returns up to topN other movies with positive similarity, by
// descending score with ties in catalog order. Unknown ids return nil.
func (c *ContentSimilarity) SimilarTo(movieID string, topN int) []ScoredID {
	c.acquirePredictLock()
	defer c.releasePredictLock()

	if !c.trained || topN <= 0 {
		return nil
	}
	return c.similarTo(movieID, topN)
}

func (c *ContentSimilarity) similarTo(movieID string, topN int) []ScoredID {
	idx, ok := c.index[movieID]
	if !ok {
		return nil
	}

	row := c.sim[idx]
	entries := make([]rankedEntry, 0, len(row)-1)
	for j, score := range row {
		if j == idx || score <= 0 {
			continue
		}
		entries = append(entries, rankedEntry{id: c.ids[j], score: score, pos: j})
	}
	return rankTopN(entries, topN)
}

// SimilarToMany aggregates the neighbor lists of several movies. Each input
// contributes its 2*topN nearest neighbors with positive similarity; scores of movies appearing in
// several lists are summed and divided by the number of inputs. Input movies
// never appear in the result.
func (c *ContentSimilarity) SimilarToMany(movieIDs []string, topN int) []ScoredID {
	c.acquirePredictLock()
	defer c.releasePredictLock()

	if !c.trained || topN <= 0 || len(movieIDs) == 0 {
		return nil
	}

	inputs := make(map[string]struct{}, len(movieIDs))
	order := make([]string, 0, len(movieIDs))
	for _, id := range movieIDs {
		if _, dup := inputs[id]; dup {
			continue
		}
		inputs[id] = struct{}{}
		order = append(order, id)
	}

	// Accumulate in input order; map iteration would make the float sums,
	// and so the ranking of near ties, vary between calls.
	scores := make(map[string]float64)
	var seen []string
	for _, id := range order {
		for _, n := range c.similarTo(id, 2*topN) {
			if _, skip := inputs[n.ID]; skip {
				continue
			}
			if _, ok := scores[n.ID]; !ok {
				seen = append(seen, n.ID)
			}
			scores[n.ID] += n.Score
		}
	}

	div := float64(len(order))
	entries := make([]rankedEntry, 0, len(seen))
	for _, id := range seen {
		entries = append(entries, rankedEntry{id: id, score: scores[id] / div, pos: c.index[id]})
	}
	return rankTopN(entries, topN)
}

// Similarity returns the cosine similarity of two movies, or 0 when either is
// unknown.
func (c *ContentSimilarity) Similarity(a, b string) float64 {
	c.acquirePredictLock()
	defer c.releasePredictLock()

	if !c.trained {
		return 0
	}
	i, ok := c.index[a]
	if !ok {
		return 0
	}
	j, ok := c.index[b]
	if !ok {
		return 0
	}
	return c.sim[i][j]
}

// Has reports whether the movie was part of the fitted catalog.
func (c *ContentSimilarity) Has(movieID string) bool {
	c.acquirePredictLock()
	defer c.releasePredictLock()
	_, ok := c.index[movieID]
	return ok
}

// VectorizerName returns the name of the text-to-vector strategy in use.
func (c *ContentSimilarity) VectorizerName() string {
	return c.vectorizer.Name()
}
