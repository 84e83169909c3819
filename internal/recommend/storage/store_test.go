// Cinematch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"

	"github.com/tomtom215/cinematch/internal/dataset"
	"github.com/tomtom215/cinematch/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(Options{InMemory: true}, zerolog.Nop())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	return store
}

func TestOpen_RequiresDir(t *testing.T) {
	if _, err := Open(Options{}, zerolog.Nop()); err == nil {
		t.Error("Open() without dir or in-memory should fail")
	}
}

func TestOpen_OnDisk(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := Open(Options{Dir: dir}, zerolog.Nop())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := store.PutMovies(ctx, []models.Movie{{ID: "m1", Title: "Inception"}}); err != nil {
		t.Fatalf("PutMovies() error = %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := Open(Options{Dir: dir}, zerolog.Nop())
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer reopened.Close()

	movie, err := reopened.Movie(ctx, "m1")
	if err != nil {
		t.Fatalf("Movie() after reopen error = %v", err)
	}
	if movie.Title != "Inception" {
		t.Errorf("Title = %q, want Inception", movie.Title)
	}
}

func TestStore_MoviesRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	year := 2010
	in := []models.Movie{
		{ID: "m2", Title: "Interstellar", Genres: models.StringList{"Sci-Fi", "Drama"}},
		{ID: "m1", Title: "Inception", Genres: models.StringList{"Sci-Fi"}, Director: "Christopher Nolan", Year: &year},
	}
	if err := store.PutMovies(ctx, in); err != nil {
		t.Fatalf("PutMovies() error = %v", err)
	}

	got, err := store.Movies(ctx)
	if err != nil {
		t.Fatalf("Movies() error = %v", err)
	}

	// Key order, not insertion order.
	want := []models.Movie{in[1], in[0]}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Movies() mismatch (-want +got):\n%s", diff)
	}

	t.Run("upsert replaces", func(t *testing.T) {
		if err := store.PutMovies(ctx, []models.Movie{{ID: "m1", Title: "Inception (2010)"}}); err != nil {
			t.Fatalf("PutMovies() error = %v", err)
		}
		movie, err := store.Movie(ctx, "m1")
		if err != nil {
			t.Fatalf("Movie() error = %v", err)
		}
		if movie.Title != "Inception (2010)" {
			t.Errorf("Title = %q, want replaced title", movie.Title)
		}
	})

	t.Run("missing movie", func(t *testing.T) {
		if _, err := store.Movie(ctx, "nope"); !errors.Is(err, ErrNotFound) {
			t.Errorf("Movie(nope) error = %v, want ErrNotFound", err)
		}
	})
}

func TestStore_PutRatingsDedupes(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	ratings := []models.Rating{
		{UserID: "u1", MovieID: "m1", Value: 3, Timestamp: t0.Add(time.Hour)},
		{UserID: "u1", MovieID: "m2", Value: 4},
		{UserID: "u1", MovieID: "m1", Value: 5, Timestamp: t0},
	}
	if err := store.PutRatings(ctx, ratings); err != nil {
		t.Fatalf("PutRatings() error = %v", err)
	}

	got, err := store.Ratings(ctx)
	if err != nil {
		t.Fatalf("Ratings() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len(Ratings()) = %d, want 2", len(got))
	}
	if got[0].MovieID != "m1" || got[0].Value != 3 {
		t.Errorf("Ratings()[0] = %+v, want the later-timestamped m1 rating", got[0])
	}
	if !got[0].Timestamp.Equal(t0.Add(time.Hour)) {
		t.Errorf("Timestamp = %v, want %v", got[0].Timestamp, t0.Add(time.Hour))
	}
}

func TestStore_AddRating(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	steps := []struct {
		name        string
		rating      models.Rating
		wantUpdated bool
		wantValue   float64
	}{
		{"first rating", models.Rating{UserID: "u1", MovieID: "m1", Value: 3, Timestamp: t0}, true, 3},
		{"newer replaces", models.Rating{UserID: "u1", MovieID: "m1", Value: 4, Timestamp: t0.Add(time.Hour)}, true, 4},
		{"older is ignored", models.Rating{UserID: "u1", MovieID: "m1", Value: 1, Timestamp: t0}, false, 4},
		{"same timestamp replaces", models.Rating{UserID: "u1", MovieID: "m1", Value: 5, Timestamp: t0.Add(time.Hour)}, true, 5},
	}

	for _, step := range steps {
		t.Run(step.name, func(t *testing.T) {
			updated, err := store.AddRating(ctx, step.rating)
			if err != nil {
				t.Fatalf("AddRating() error = %v", err)
			}
			if updated != step.wantUpdated {
				t.Errorf("AddRating() updated = %v, want %v", updated, step.wantUpdated)
			}

			ratings, err := store.Ratings(ctx)
			if err != nil {
				t.Fatalf("Ratings() error = %v", err)
			}
			if len(ratings) != 1 || ratings[0].Value != step.wantValue {
				t.Errorf("Ratings() = %+v, want single rating with value %v", ratings, step.wantValue)
			}
		})
	}
}

func TestStore_SeedAndCounts(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	sample := dataset.Sample()

	empty, err := store.Empty(ctx)
	if err != nil || !empty {
		t.Fatalf("Empty() = %v, %v, want true, nil", empty, err)
	}

	seeded, err := store.Seed(ctx, sample.Movies, sample.Ratings)
	if err != nil {
		t.Fatalf("Seed() error = %v", err)
	}
	if !seeded {
		t.Error("Seed() on empty store = false, want true")
	}

	movies, ratings, err := store.Counts(ctx)
	if err != nil {
		t.Fatalf("Counts() error = %v", err)
	}
	if movies != 20 || ratings != 30 {
		t.Errorf("Counts() = %d, %d, want 20, 30", movies, ratings)
	}

	again, err := store.Seed(ctx, sample.Movies[:1], nil)
	if err != nil {
		t.Fatalf("second Seed() error = %v", err)
	}
	if again {
		t.Error("Seed() on populated store = true, want false")
	}
}

func TestStore_CancelledContext(t *testing.T) {
	store := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := store.Movies(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Movies() error = %v, want context.Canceled", err)
	}
	if _, err := store.Ratings(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Ratings() error = %v, want context.Canceled", err)
	}
	if _, err := store.Movie(ctx, "m1"); !errors.Is(err, context.Canceled) {
		t.Errorf("Movie() error = %v, want context.Canceled", err)
	}
	if _, _, err := store.Counts(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Counts() error = %v, want context.Canceled", err)
	}
	if _, err := store.AddRating(ctx, models.Rating{UserID: "u", MovieID: "m", Value: 4}); !errors.Is(err, context.Canceled) {
		t.Errorf("AddRating() error = %v, want context.Canceled", err)
	}
}

func TestStore_RunGCInMemory(t *testing.T) {
	store := newTestStore(t)

	for _, ratio := range []float64{0, 0.5, 1.5} {
		if err := store.RunGC(ratio); err != nil {
			t.Errorf("RunGC(%v) error = %v, want nil for in-memory store", ratio, err)
		}
	}
}
