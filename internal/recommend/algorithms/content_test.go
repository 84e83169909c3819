// Cinematch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package algorithms

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tomtom215/cinematch/internal/dataset"
	"github.com/tomtom215/cinematch/internal/models"
)

func fitSampleContent(t *testing.T) *ContentSimilarity {
	t.Helper()
	c := NewContentSimilarity(DefaultContentConfig(), nil)
	if err := c.Fit(context.Background(), dataset.SampleMovies()); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	return c
}

func TestContentSimilarity_SimilarTo(t *testing.T) {
	c := fitSampleContent(t)

	if !c.IsTrained() {
		t.Fatal("IsTrained() = false after Fit")
	}

	got := c.SimilarTo("m1", 5)
	if len(got) != 5 {
		t.Fatalf("len(SimilarTo) = %d, want 5", len(got))
	}

	for i, s := range got {
		if s.ID == "m1" {
			t.Error("SimilarTo(m1) contains m1")
		}
		if s.Score < 0 || s.Score > 1 {
			t.Errorf("score[%d] = %f, want in [0,1]", i, s.Score)
		}
		if i > 0 && s.Score > got[i-1].Score {
			t.Errorf("scores not non-increasing at %d: %f > %f", i, s.Score, got[i-1].Score)
		}
	}

	if got := c.SimilarTo("unknown", 5); len(got) != 0 {
		t.Errorf("SimilarTo(unknown) = %v, want empty", got)
	}
	if got := c.SimilarTo("m1", 0); len(got) != 0 {
		t.Errorf("SimilarTo(m1, 0) = %v, want empty", got)
	}

	// Only movies sharing at least one term with m1 are neighbors.
	var want []string
	for i := 2; i <= 20; i++ {
		id := fmt.Sprintf("m%d", i)
		if c.Similarity("m1", id) > 0 {
			want = append(want, id)
		}
	}
	all := c.SimilarTo("m1", 100)
	if len(all) != len(want) || len(all) == 0 || len(all) == 19 {
		t.Errorf("len(SimilarTo(m1, 100)) = %d, want %d positive neighbors", len(all), len(want))
	}
	for _, s := range all {
		if s.Score <= 0 {
			t.Errorf("SimilarTo(m1) returned %s with score %f", s.ID, s.Score)
		}
	}
}

func TestContentSimilarity_Symmetric(t *testing.T) {
	c := fitSampleContent(t)

	pairs := [][2]string{{"m1", "m2"}, {"m15", "m18"}, {"m3", "m9"}}
	for _, p := range pairs {
		ab, ba := c.Similarity(p[0], p[1]), c.Similarity(p[1], p[0])
		if ab != ba {
			t.Errorf("Similarity(%s,%s) = %f, Similarity(%s,%s) = %f, want equal", p[0], p[1], ab, p[1], p[0], ba)
		}
	}

	// Seven and Se7en share director, cast and genres.
	if c.Similarity("m15", "m18") <= c.Similarity("m15", "m7") {
		t.Error("Similarity(Seven, Se7en) should exceed Similarity(Seven, Forrest Gump)")
	}
	if got := c.Similarity("m1", "nope"); got != 0 {
		t.Errorf("Similarity(m1, nope) = %f, want 0", got)
	}
}

func TestContentSimilarity_ZeroVector(t *testing.T) {
	movies := []models.Movie{
		{ID: "a", Title: "A", Genres: models.StringList{"Drama"}},
		{ID: "b", Title: "B"},
		{ID: "c", Title: "C", Genres: models.StringList{"Drama"}},
	}

	c := NewContentSimilarity(ContentConfig{NumWorkers: 2}, nil)
	if err := c.Fit(context.Background(), movies); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	if got := c.Similarity("b", "b"); got != 0 {
		t.Errorf("Similarity(b, b) = %f, want 0", got)
	}
	if got := c.SimilarTo("b", 5); len(got) != 0 {
		t.Errorf("SimilarTo(b) = %v, want empty", got)
	}
	if got := c.Similarity("a", "c"); math.Abs(got-1) > 1e-9 {
		t.Errorf("Similarity(a, c) = %f, want 1", got)
	}

	got := c.SimilarTo("a", 2)
	if len(got) != 1 || got[0].ID != "c" {
		t.Errorf("SimilarTo(a) = %v, want [c]", got)
	}
	if got := c.SimilarToMany([]string{"a", "b"}, 5); len(got) != 1 || got[0].ID != "c" {
		t.Errorf("SimilarToMany(a, b) = %v, want [c]", got)
	}
}

func TestContentSimilarity_IdenticalMoviesTieStably(t *testing.T) {
	movies := []models.Movie{
		{ID: "q", Title: "Harbor Lights", Genres: models.StringList{"Drama", "Crime"}, Overview: "a dock worker testifies against the mob"},
		{ID: "a", Title: "Night Harbor", Genres: models.StringList{"Drama", "Crime", "Thriller"}, Overview: "the mob runs the docks at night"},
		{ID: "b", Title: "Night Harbor", Genres: models.StringList{"Drama", "Crime", "Thriller"}, Overview: "the mob runs the docks at night"},
		{ID: "c", Title: "Meadow", Genres: models.StringList{"Animation"}, Overview: "a rabbit finds a friend"},
	}

	var first []ScoredID
	for i := 0; i < 50; i++ {
		c := NewContentSimilarity(ContentConfig{NumWorkers: 3}, nil)
		if err := c.Fit(context.Background(), movies); err != nil {
			t.Fatalf("Fit() error = %v", err)
		}
		got := c.SimilarTo("q", 2)
		if len(got) != 2 || got[0].ID != "a" || got[1].ID != "b" {
			t.Fatalf("fit %d: SimilarTo(q) = %v, want [a b]", i, got)
		}
		if got[0].Score != got[1].Score {
			t.Fatalf("fit %d: identical movies scored %v and %v", i, got[0].Score, got[1].Score)
		}
		if first == nil {
			first = got
			continue
		}
		if diff := cmp.Diff(first, got); diff != "" {
			t.Fatalf("fit %d: SimilarTo(q) changed (-first +got):\n%s", i, diff)
		}
	}
}

func TestContentSimilarity_SimilarToMany(t *testing.T) {
	movies := []models.Movie{
		{ID: "a", Title: "A", Genres: models.StringList{"Drama", "Crime"}},
		{ID: "b", Title: "B", Genres: models.StringList{"Drama", "Romance"}},
		{ID: "c", Title: "C", Genres: models.StringList{"Crime", "Thriller"}},
		{ID: "d", Title: "D", Genres: models.StringList{"Romance"}},
	}

	c := NewContentSimilarity(DefaultContentConfig(), nil)
	if err := c.Fit(context.Background(), movies); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	got := c.SimilarToMany([]string{"a", "b"}, 5)
	if len(got) != 2 {
		t.Fatalf("SimilarToMany() = %v, want 2 results", got)
	}
	for _, s := range got {
		if s.ID == "a" || s.ID == "b" {
			t.Errorf("SimilarToMany() contains input %s", s.ID)
		}
		want := (c.Similarity("a", s.ID) + c.Similarity("b", s.ID)) / 2
		if math.Abs(s.Score-want) > 1e-9 {
			t.Errorf("score(%s) = %f, want %f", s.ID, s.Score, want)
		}
	}

	sample := fitSampleContent(t)
	liked := sample.SimilarToMany([]string{"m1", "m2"}, 5)
	if len(liked) != 5 {
		t.Fatalf("len(SimilarToMany(m1, m2)) = %d, want 5", len(liked))
	}
	for i, s := range liked {
		if s.ID == "m1" || s.ID == "m2" {
			t.Errorf("result contains liked movie %s", s.ID)
		}
		if i > 0 && s.Score > liked[i-1].Score {
			t.Errorf("scores not non-increasing at %d", i)
		}
	}

	if got := sample.SimilarToMany(nil, 5); len(got) != 0 {
		t.Errorf("SimilarToMany(nil) = %v, want empty", got)
	}
}

func TestContentSimilarity_FitErrors(t *testing.T) {
	c := NewContentSimilarity(DefaultContentConfig(), nil)

	if err := c.Fit(context.Background(), nil); !errors.Is(err, ErrEmptyInput) {
		t.Errorf("Fit(nil) error = %v, want ErrEmptyInput", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := c.Fit(ctx, dataset.SampleMovies()); !errors.Is(err, context.Canceled) {
		t.Errorf("Fit(cancelled) error = %v, want context.Canceled", err)
	}
	if c.IsTrained() {
		t.Error("IsTrained() = true after failed fits")
	}
}

func TestContentSimilarity_Untrained(t *testing.T) {
	c := NewContentSimilarity(DefaultContentConfig(), nil)

	if got := c.SimilarTo("m1", 5); got != nil {
		t.Errorf("SimilarTo() before Fit = %v, want nil", got)
	}
	if got := c.Similarity("m1", "m2"); got != 0 {
		t.Errorf("Similarity() before Fit = %f, want 0", got)
	}
	if c.VectorizerName() != VectorizerTFIDF {
		t.Errorf("VectorizerName() = %q, want %q", c.VectorizerName(), VectorizerTFIDF)
	}
}
