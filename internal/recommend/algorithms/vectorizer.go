// Cinematch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package algorithms

import (
	"context"
	"math"
	"regexp"
	"sort"
	"strings"
)

// Vectorizer names.
const (
	VectorizerTFIDF = "tfidf"
)

// DefaultMaxFeatures caps the TF-IDF vocabulary.
const DefaultMaxFeatures = 5000

// SparseVector maps a vocabulary index to a weight.
type SparseVector map[int]float64

// Vectorizer turns feature documents into vectors. Implementations must return
// one vector per document, in input order, with non-negative weights.
type Vectorizer interface {
	Name() string
	FitTransform(ctx context.Context, docs []string) ([]SparseVector, error)
}

// NewVectorizer returns the vectorizer registered under name. Unknown names
// fall back to TF-IDF and report ok=false so the caller can log it.
func NewVectorizer(name string, maxFeatures int) (v Vectorizer, ok bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", VectorizerTFIDF:
		return NewTFIDFVectorizer(maxFeatures), true
	default:
		return NewTFIDFVectorizer(maxFeatures), false
	}
}

// TFIDFVectorizer implements lowercase word unigram+bigram TF-IDF with English
// stopwords removed, smooth idf and L2-normalized rows.
type TFIDFVectorizer struct {
	MaxFeatures int
	vocabulary  map[string]int
}

// NewTFIDFVectorizer creates a TF-IDF vectorizer. maxFeatures <= 0 uses
// DefaultMaxFeatures.
func NewTFIDFVectorizer(maxFeatures int) *TFIDFVectorizer {
	if maxFeatures <= 0 {
		maxFeatures = DefaultMaxFeatures
	}
	return &TFIDFVectorizer{MaxFeatures: maxFeatures}
}

// Name returns the strategy name.
func (t *TFIDFVectorizer) Name() string { return VectorizerTFIDF }

// Vocabulary returns the fitted term to index mapping.
func (t *TFIDFVectorizer) Vocabulary() map[string]int {
	return t.vocabulary
}

// tokenPattern matches runs of two or more word characters.
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// Terms splits a document into its unigram and bigram terms. Stopwords are
// removed before bigrams are formed.
func Terms(doc string) []string {
	raw := tokenPattern.FindAllString(strings.ToLower(doc), -1)
	words := raw[:0]
	for _, w := range raw {
		if _, stop := englishStopwords[w]; stop {
			continue
		}
		words = append(words, w)
	}

	if len(words) == 0 {
		return nil
	}

	terms := make([]string, 0, 2*len(words)-1)
	terms = append(terms, words...)
	for i := 0; i+1 < len(words); i++ {
		terms = append(terms, words[i]+" "+words[i+1])
	}
	return terms
}

// FitTransform learns the vocabulary and idf weights from docs and returns
// the weighted, L2-normalized vectors. Documents without terms produce empty
// vectors.
func (t *TFIDFVectorizer) FitTransform(ctx context.Context, docs []string) ([]SparseVector, error) {
	counts := make([]map[string]int, len(docs))
	df := make(map[string]int)

	for i, doc := range docs {
		if i%256 == 0 && ContextCancelled(ctx) {
			return nil, ctx.Err()
		}
		tf := make(map[string]int)
		for _, term := range Terms(doc) {
			tf[term]++
		}
		for term := range tf {
			df[term]++
		}
		counts[i] = tf
	}

	t.vocabulary = t.selectVocabulary(df)

	n := float64(len(docs))
	idf := make(map[int]float64, len(t.vocabulary))
	for term, idx := range t.vocabulary {
		idf[idx] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}

	vectors := make([]SparseVector, len(docs))
	for i, tf := range counts {
		vec := make(SparseVector, len(tf))
		for term, c := range tf {
			idx, ok := t.vocabulary[term]
			if !ok {
				continue
			}
			vec[idx] = float64(c) * idf[idx]
		}
		if norm := sparseNorm(vec); norm > 0 {
			for k := range vec {
				vec[k] /= norm
			}
		}
		vectors[i] = vec
	}

	return vectors, nil
}

// selectVocabulary keeps the MaxFeatures terms with the highest document
// frequency (ties by term) and indexes them alphabetically.
func (t *TFIDFVectorizer) selectVocabulary(df map[string]int) map[string]int {
	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}

	if len(terms) > t.MaxFeatures {
		sort.Slice(terms, func(i, j int) bool {
			if df[terms[i]] != df[terms[j]] {
				return df[terms[i]] > df[terms[j]]
			}
			return terms[i] < terms[j]
		})
		terms = terms[:t.MaxFeatures]
	}
	sort.Strings(terms)

	vocab := make(map[string]int, len(terms))
	for i, term := range terms {
		vocab[term] = i
	}
	return vocab
}

var _ Vectorizer = (*TFIDFVectorizer)(nil)
