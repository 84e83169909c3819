// Cinematch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package algorithms

import (
	"strings"

	"github.com/tomtom215/cinematch/internal/models"
)

// Cast limits for the feature text.
const (
	DefaultMaxCast = 5
	MaxCastCap     = 10
)

// FeatureBuilder turns movie metadata into one feature document per movie.
type FeatureBuilder struct {
	// MaxCast is the number of leading cast members included.
	// Values above MaxCastCap are capped; zero or negative uses DefaultMaxCast.
	MaxCast int
}

// NewFeatureBuilder creates a feature builder with the given cast limit.
func NewFeatureBuilder(maxCast int) FeatureBuilder {
	if maxCast <= 0 {
		maxCast = DefaultMaxCast
	}
	if maxCast > MaxCastCap {
		maxCast = MaxCastCap
	}
	return FeatureBuilder{MaxCast: maxCast}
}

// Build returns one document per movie, in catalog order. Fields are joined in
// the fixed order genres, director, cast, tags, overview. Missing fields add
// nothing, so a movie with no metadata yields "".
func (f FeatureBuilder) Build(movies []models.Movie) []string {
	docs := make([]string, len(movies))
	for i := range movies {
		docs[i] = f.document(&movies[i])
	}
	return docs
}

func (f FeatureBuilder) document(m *models.Movie) string {
	maxCast := f.MaxCast
	if maxCast <= 0 {
		maxCast = DefaultMaxCast
	}

	cast := []string(m.Cast)
	if len(cast) > maxCast {
		cast = cast[:maxCast]
	}

	parts := make([]string, 0, 5)
	parts = appendField(parts, strings.Join(m.Genres, " "))
	parts = appendField(parts, m.Director)
	parts = appendField(parts, strings.Join(cast, " "))
	parts = appendField(parts, strings.Join(m.Tags, " "))
	parts = appendField(parts, m.Overview)

	return strings.Join(parts, " ")
}

func appendField(parts []string, s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return parts
	}
	return append(parts, s)
}
