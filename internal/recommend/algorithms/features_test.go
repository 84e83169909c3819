// Cinematch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package algorithms

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tomtom215/cinematch/internal/models"
)

func TestNewFeatureBuilder(t *testing.T) {
	tests := []struct {
		maxCast int
		want    int
	}{
		{0, DefaultMaxCast},
		{-3, DefaultMaxCast},
		{7, 7},
		{25, MaxCastCap},
	}

	for _, tt := range tests {
		if got := NewFeatureBuilder(tt.maxCast).MaxCast; got != tt.want {
			t.Errorf("NewFeatureBuilder(%d).MaxCast = %d, want %d", tt.maxCast, got, tt.want)
		}
	}
}

func TestFeatureBuilder_Build(t *testing.T) {
	movies := []models.Movie{
		{
			ID: "m1", Title: "Inception",
			Genres:   models.StringList{"Sci-Fi", "Thriller"},
			Director: "Christopher Nolan",
			Cast:     models.StringList{"A", "B", "C"},
			Tags:     models.StringList{"dreams"},
			Overview: "A thief enters dreams.",
		},
		{ID: "m2", Title: "Empty"},
		{ID: "m3", Title: "Overview only", Overview: "  just text  "},
	}

	got := NewFeatureBuilder(2).Build(movies)
	want := []string{
		"Sci-Fi Thriller Christopher Nolan A B dreams A thief enters dreams.",
		"",
		"just text",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Build() mismatch (-want +got):\n%s", diff)
	}
}

func TestFeatureBuilder_ListFormsEquivalent(t *testing.T) {
	fromString := models.Movie{ID: "m1", Title: "x", Genres: models.ParseStringList("Drama, Crime")}
	fromList := models.Movie{ID: "m1", Title: "x", Genres: models.NormalizeStrings([]string{" Drama", "Crime "})}

	fb := NewFeatureBuilder(0)
	a := fb.Build([]models.Movie{fromString})
	b := fb.Build([]models.Movie{fromList})
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("documents differ (-string +list):\n%s", diff)
	}
}
