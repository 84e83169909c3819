// Cinematch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package recommend

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"

	"github.com/tomtom215/cinematch/internal/dataset"
	"github.com/tomtom215/cinematch/internal/models"
	"github.com/tomtom215/cinematch/internal/recommend/algorithms"
)

// testConfig keeps fits fast while exercising every stage.
func testConfig() *Config {
	cfg := DefaultConfig()
	cfg.Factorization.NumFactors = 8
	cfg.Factorization.NumIterations = 10
	cfg.NumWorkers = 2
	return cfg
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(testConfig(), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	return e
}

func newFittedEngine(t *testing.T) *Engine {
	t.Helper()
	e := newTestEngine(t)
	if err := e.Fit(context.Background(), dataset.SampleMovies(), dataset.SampleRatings()); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	return e
}

// checkResults verifies the invariants every response must satisfy.
func checkResults(t *testing.T, items []Recommendation, topN int, liked []string) {
	t.Helper()

	if len(items) > topN {
		t.Errorf("got %d items, want at most %d", len(items), topN)
	}

	excluded := make(map[string]bool, len(liked))
	for _, id := range liked {
		excluded[id] = true
	}

	seen := make(map[string]bool, len(items))
	for i, it := range items {
		if seen[it.MovieID] {
			t.Errorf("duplicate movie %q", it.MovieID)
		}
		seen[it.MovieID] = true

		if excluded[it.MovieID] {
			t.Errorf("liked movie %q returned", it.MovieID)
		}
		if it.Reason == "" {
			t.Errorf("item %q has empty reason", it.MovieID)
		}
		if it.Title == "" {
			t.Errorf("item %q has empty title", it.MovieID)
		}
		if i > 0 && it.Score > items[i-1].Score {
			t.Errorf("scores not non-increasing at %d: %v > %v", i, it.Score, items[i-1].Score)
		}
	}
}

func ids(items []Recommendation) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.MovieID
	}
	return out
}

func TestNewEngine(t *testing.T) {
	t.Run("nil config uses defaults", func(t *testing.T) {
		e, err := NewEngine(nil, zerolog.Nop())
		if err != nil {
			t.Fatalf("NewEngine(nil) error = %v", err)
		}
		if e.config.Limits.DefaultTopN != 10 {
			t.Errorf("DefaultTopN = %d, want 10", e.config.Limits.DefaultTopN)
		}
	})

	t.Run("invalid config", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Factorization.NumFactors = 0
		if _, err := NewEngine(cfg, zerolog.Nop()); err == nil {
			t.Error("NewEngine() error = nil, want invalid config error")
		}
	})

	t.Run("config is copied", func(t *testing.T) {
		cfg := DefaultConfig()
		e, err := NewEngine(cfg, zerolog.Nop())
		if err != nil {
			t.Fatal(err)
		}
		cfg.Limits.DefaultTopN = 99
		if e.config.Limits.DefaultTopN == 99 {
			t.Error("engine config changed with caller's config")
		}
	})
}

func TestEngine_NotFitted(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	if e.Fitted() {
		t.Error("Fitted() = true before Fit")
	}
	if _, err := e.Recommend(ctx, Request{TopN: 5}); !errors.Is(err, ErrNotFitted) {
		t.Errorf("Recommend() error = %v, want ErrNotFitted", err)
	}
	if _, err := e.Explain(ctx, "m1", "u1"); !errors.Is(err, ErrNotFitted) {
		t.Errorf("Explain() error = %v, want ErrNotFitted", err)
	}
	if _, err := e.SimilarMovies(ctx, "m1", 5); !errors.Is(err, ErrNotFitted) {
		t.Errorf("SimilarMovies() error = %v, want ErrNotFitted", err)
	}
	if _, err := e.UsersForNewMovie(ctx, "m1", 5); !errors.Is(err, ErrNotFitted) {
		t.Errorf("UsersForNewMovie() error = %v, want ErrNotFitted", err)
	}
	if _, err := e.PopularGenres(ctx); !errors.Is(err, ErrNotFitted) {
		t.Errorf("PopularGenres() error = %v, want ErrNotFitted", err)
	}

	if st := e.Status(); st.State != StateUnfitted || st.ModelVersion != 0 {
		t.Errorf("Status() = %+v, want unfitted version 0", st)
	}
}

func TestEngine_Recommend_LikedMovies(t *testing.T) {
	e := newFittedEngine(t)
	liked := []string{"m1", "m2"}

	resp, err := e.Recommend(context.Background(), Request{LikedMovies: liked, TopN: 5})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}

	if len(resp.Items) != 5 {
		t.Fatalf("got %d items, want 5: %v", len(resp.Items), ids(resp.Items))
	}
	checkResults(t, resp.Items, 5, liked)

	if resp.Metadata.Path != PathHybrid {
		t.Errorf("Path = %q, want %q", resp.Metadata.Path, PathHybrid)
	}
	if resp.Metadata.ModelVersion != 1 {
		t.Errorf("ModelVersion = %d, want 1", resp.Metadata.ModelVersion)
	}
	w := resp.Metadata.Weights
	if w == nil {
		t.Fatal("Weights = nil on hybrid path")
	}
	if math.Abs(w.Content+w.Collaborative-1) > 1e-6 {
		t.Errorf("weights sum to %v, want 1", w.Content+w.Collaborative)
	}
	// No rating history: content-favoring base weights.
	if w.Content < 0.6 {
		t.Errorf("Content weight = %v, want >= 0.6 for an anonymous request", w.Content)
	}
	for _, it := range resp.Items {
		if it.Score < 0 || it.Score > 1 {
			t.Errorf("score %v of %q outside [0, 1]", it.Score, it.MovieID)
		}
	}
}

func TestEngine_Recommend_NewUserColdStart(t *testing.T) {
	e := newFittedEngine(t)

	resp, err := e.Recommend(context.Background(), Request{UserID: "new_user_never_seen", TopN: 10})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}

	if resp.Metadata.Path != PathColdStart {
		t.Errorf("Path = %q, want %q", resp.Metadata.Path, PathColdStart)
	}
	if resp.Metadata.Weights != nil {
		t.Errorf("Weights = %+v, want nil on cold start", resp.Metadata.Weights)
	}
	if len(resp.Items) == 0 || len(resp.Items) > 10 {
		t.Fatalf("got %d items, want 1..10", len(resp.Items))
	}
	checkResults(t, resp.Items, 10, nil)
	for _, it := range resp.Items {
		if it.Score != algorithms.NeutralScore {
			t.Errorf("score of %q = %v, want %v", it.MovieID, it.Score, algorithms.NeutralScore)
		}
	}

	// Bayesian ranking puts the best-supported movies first.
	if diff := cmp.Diff([]string{"m1", "m2", "m5"}, ids(resp.Items)[:3]); diff != "" {
		t.Errorf("top of cold start list mismatch (-want +got):\n%s", diff)
	}
}

func TestEngine_Recommend_GenreColdStart(t *testing.T) {
	e := newFittedEngine(t)

	resp, err := e.Recommend(context.Background(), Request{TopN: 5, GenrePreferences: []string{"thriller"}})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}

	if len(resp.Items) != 5 {
		t.Fatalf("got %d items, want 5", len(resp.Items))
	}
	movies := make(map[string]models.Movie)
	for _, m := range dataset.SampleMovies() {
		movies[m.ID] = m
	}
	for _, it := range resp.Items {
		m := movies[it.MovieID]
		if !m.HasGenre("Thriller") {
			t.Errorf("movie %q genres %v do not include Thriller", it.MovieID, m.Genres)
		}
		if !strings.HasPrefix(it.Reason, "Matches your preferred genres: ") {
			t.Errorf("reason = %q, want genre match reason", it.Reason)
		}
	}
}

func TestEngine_Recommend_KnownUser(t *testing.T) {
	e := newFittedEngine(t)

	resp, err := e.Recommend(context.Background(), Request{UserID: "u1", TopN: 5})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}

	if resp.Metadata.Path != PathHybrid {
		t.Errorf("Path = %q, want %q", resp.Metadata.Path, PathHybrid)
	}
	if len(resp.Items) != 5 {
		t.Fatalf("got %d items, want 5", len(resp.Items))
	}
	// u1 rated m1, m2 and m3; collaborative candidates skip rated movies.
	checkResults(t, resp.Items, 5, []string{"m1", "m2", "m3"})
}

func TestEngine_Recommend_UserAndLikedMovies(t *testing.T) {
	e := newFittedEngine(t)
	liked := []string{"m5", "m12"}

	resp, err := e.Recommend(context.Background(), Request{UserID: "u2", LikedMovies: liked, TopN: 8})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	checkResults(t, resp.Items, 8, liked)
	if len(resp.Items) != 8 {
		t.Errorf("got %d items, want 8", len(resp.Items))
	}
}

func TestEngine_Recommend_UnknownLikedMovies(t *testing.T) {
	e := newFittedEngine(t)

	resp, err := e.Recommend(context.Background(), Request{LikedMovies: []string{"nope", "ghost"}, TopN: 3})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if resp.Metadata.Path != PathColdStart {
		t.Errorf("Path = %q, want %q", resp.Metadata.Path, PathColdStart)
	}
	if len(resp.Items) != 3 {
		t.Errorf("got %d items, want 3", len(resp.Items))
	}
}

func TestEngine_Recommend_DuplicateLikedMovies(t *testing.T) {
	e := newFittedEngine(t)
	liked := []string{"m1", "m1", "", "m1"}

	resp, err := e.Recommend(context.Background(), Request{LikedMovies: liked, TopN: 19})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	checkResults(t, resp.Items, 19, []string{"m1"})
	if len(resp.Items) == 0 {
		t.Fatal("got no items for a known liked movie")
	}
	for _, it := range resp.Items {
		if it.Score <= 0 {
			t.Errorf("item %q has score %v, want only content neighbors", it.MovieID, it.Score)
		}
	}
}

func TestEngine_Recommend_LikedMoviesSkipUnrelated(t *testing.T) {
	movies := append(dataset.SampleMovies(), models.Movie{ID: "m99", Title: "Zzyzx"})
	e := newTestEngine(t)
	if err := e.Fit(context.Background(), movies, dataset.SampleRatings()); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	resp, err := e.Recommend(context.Background(), Request{LikedMovies: []string{"m1"}, TopN: 50})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	checkResults(t, resp.Items, 50, []string{"m1"})
	for _, it := range resp.Items {
		if it.MovieID == "m99" {
			t.Errorf("movie sharing no features with m1 recommended: %+v", it)
		}
		if it.Score <= 0 {
			t.Errorf("item %q has score %v", it.MovieID, it.Score)
		}
	}
}

func TestEngine_Recommend_TopN(t *testing.T) {
	e := newFittedEngine(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		topN    int
		wantLen int
		wantErr error
	}{
		{"negative", -1, 0, ErrInvalidTopN},
		{"zero uses default", 0, 10, nil},
		{"one", 1, 1, nil},
		{"larger than catalog", 50, 20, nil},
		{"above max is clamped", 1000, 20, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := e.Recommend(ctx, Request{TopN: tt.topN})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Recommend() error = %v, want %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if len(resp.Items) != tt.wantLen {
				t.Errorf("got %d items, want %d", len(resp.Items), tt.wantLen)
			}
		})
	}
}

func TestEngine_Recommend_ContentRankingIsDeterministic(t *testing.T) {
	req := Request{LikedMovies: []string{"m1"}, TopN: 3}

	var runs [][]Recommendation
	for i := 0; i < 2; i++ {
		e := newFittedEngine(t)
		resp, err := e.Recommend(context.Background(), req)
		if err != nil {
			t.Fatalf("Recommend() error = %v", err)
		}
		runs = append(runs, resp.Items)
	}

	if diff := cmp.Diff(runs[0], runs[1]); diff != "" {
		t.Errorf("content ranking differs between fits (-first +second):\n%s", diff)
	}
}

func TestEngine_Fit_InvalidInput(t *testing.T) {
	movies := dataset.SampleMovies()
	ratings := dataset.SampleRatings()

	badMovie := dataset.SampleMovies()
	badMovie[4].ID = ""

	badRating := dataset.SampleRatings()
	badRating[7].Value = 7

	tests := []struct {
		name      string
		movies    []models.Movie
		ratings   []models.Rating
		wantTable string
		wantRow   int
		schema    bool
	}{
		{"no movies", nil, ratings, "movies", 0, false},
		{"no ratings", movies, nil, "ratings", 0, false},
		{"only unknown movies rated", movies, []models.Rating{{UserID: "u1", MovieID: "m99", Value: 4}}, "ratings", 0, false},
		{"movie without id", badMovie, ratings, "movies", 4, true},
		{"rating out of range", movies, badRating, "ratings", 7, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newFittedEngine(t)

			err := e.Fit(context.Background(), tt.movies, tt.ratings)
			if err == nil {
				t.Fatal("Fit() error = nil")
			}
			if !IsInvalidInput(err) {
				t.Errorf("IsInvalidInput(%v) = false", err)
			}

			if tt.schema {
				var schemaErr *SchemaError
				if !errors.As(err, &schemaErr) {
					t.Fatalf("Fit() error = %T, want *SchemaError", err)
				}
				if schemaErr.Table != tt.wantTable || schemaErr.Row != tt.wantRow {
					t.Errorf("SchemaError at %s[%d], want %s[%d]", schemaErr.Table, schemaErr.Row, tt.wantTable, tt.wantRow)
				}
			} else {
				var dataErr *InsufficientDataError
				if !errors.As(err, &dataErr) {
					t.Fatalf("Fit() error = %T, want *InsufficientDataError", err)
				}
				if dataErr.Table != tt.wantTable {
					t.Errorf("Table = %q, want %q", dataErr.Table, tt.wantTable)
				}
			}

			// The previous model keeps serving.
			st := e.Status()
			if st.State != StateFitted || st.ModelVersion != 1 {
				t.Errorf("Status() = %+v, want fitted version 1", st)
			}
			if st.LastError == "" {
				t.Error("Status().LastError is empty after failed fit")
			}
			if _, err := e.Recommend(context.Background(), Request{TopN: 3}); err != nil {
				t.Errorf("Recommend() after failed fit error = %v", err)
			}
		})
	}
}

func TestEngine_Fit_Cancelled(t *testing.T) {
	e := newFittedEngine(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := e.Fit(ctx, dataset.SampleMovies(), dataset.SampleRatings())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Fit() error = %v, want context.Canceled", err)
	}
	if v := e.Status().ModelVersion; v != 1 {
		t.Errorf("ModelVersion = %d, want 1 after cancelled fit", v)
	}
}

func TestEngine_Fit_InProgress(t *testing.T) {
	e := newTestEngine(t)
	e.fitting.Store(true)

	err := e.Fit(context.Background(), dataset.SampleMovies(), dataset.SampleRatings())
	if !errors.Is(err, ErrFitInProgress) {
		t.Errorf("Fit() error = %v, want ErrFitInProgress", err)
	}
	if !e.Status().FitInProgress {
		t.Error("Status().FitInProgress = false")
	}
}

func TestEngine_Fit_CleansInput(t *testing.T) {
	e := newTestEngine(t)

	movies := dataset.SampleMovies()
	movies = append(movies, models.Movie{ID: "m1", Title: "Inception (duplicate)"})

	ratings := dataset.SampleRatings()
	ratings = append(ratings,
		models.Rating{UserID: "u1", MovieID: "m99", Value: 3},
		models.Rating{UserID: "u1", MovieID: "m1", Value: 1},
	)

	if err := e.Fit(context.Background(), movies, ratings); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	st := e.Status()
	if st.Movies != 20 {
		t.Errorf("Movies = %d, want 20 after dropping the duplicate", st.Movies)
	}
	if st.Ratings != 30 {
		t.Errorf("Ratings = %d, want 30 after dropping unknown and repeated ratings", st.Ratings)
	}

	catalog, err := e.Catalog()
	if err != nil {
		t.Fatal(err)
	}
	if catalog[0].Title != "Inception" {
		t.Errorf("catalog[0].Title = %q, want first occurrence kept", catalog[0].Title)
	}
}

func TestEngine_Fit_VersionsAndStatus(t *testing.T) {
	e := newFittedEngine(t)

	st := e.Status()
	if st.State != StateFitted || st.ModelVersion != 1 {
		t.Fatalf("Status() = %+v, want fitted version 1", st)
	}
	if st.Movies != 20 || st.Users != 10 || st.Ratings != 30 {
		t.Errorf("counts = %d movies/%d users/%d ratings, want 20/10/30", st.Movies, st.Users, st.Ratings)
	}
	if math.Abs(st.Sparsity-0.85) > 1e-9 {
		t.Errorf("Sparsity = %v, want 0.85", st.Sparsity)
	}
	if st.Vectorizer != "tfidf" {
		t.Errorf("Vectorizer = %q, want tfidf", st.Vectorizer)
	}
	if st.FittedAt.IsZero() {
		t.Error("FittedAt is zero")
	}

	var names []string
	for _, c := range st.Components {
		names = append(names, c.Name)
		if !c.Trained || c.Version != 1 || c.TrainedAt.IsZero() {
			t.Errorf("component %+v, want trained once", c)
		}
	}
	wantNames := []string{"content", "collaborative", "matrix_factorization", "cold_start", "popularity"}
	if diff := cmp.Diff(wantNames, names); diff != "" {
		t.Errorf("component names mismatch (-want +got):\n%s", diff)
	}

	if err := e.Fit(context.Background(), dataset.SampleMovies(), dataset.SampleRatings()); err != nil {
		t.Fatalf("second Fit() error = %v", err)
	}
	if v := e.Status().ModelVersion; v != 2 {
		t.Errorf("ModelVersion = %d, want 2 after refit", v)
	}
}

func TestEngine_Fit_UnknownVectorizerFallsBack(t *testing.T) {
	cfg := testConfig()
	cfg.Content.Vectorizer = "sentence-transformer"
	e, err := NewEngine(cfg, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}

	if err := e.Fit(context.Background(), dataset.SampleMovies(), dataset.SampleRatings()); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	if got := e.Status().Vectorizer; got != "tfidf" {
		t.Errorf("Vectorizer = %q, want tfidf fallback", got)
	}
}

type fakeSource struct {
	movies     []models.Movie
	ratings    []models.Rating
	moviesErr  error
	ratingsErr error
}

func (f *fakeSource) Movies(context.Context) ([]models.Movie, error) {
	return f.movies, f.moviesErr
}

func (f *fakeSource) Ratings(context.Context) ([]models.Rating, error) {
	return f.ratings, f.ratingsErr
}

func TestEngine_FitFromSource(t *testing.T) {
	ctx := context.Background()
	errDown := errors.New("store unavailable")

	t.Run("no source", func(t *testing.T) {
		e := newTestEngine(t)
		if err := e.FitFromSource(ctx); !errors.Is(err, ErrNoDataSource) {
			t.Errorf("FitFromSource() error = %v, want ErrNoDataSource", err)
		}
	})

	t.Run("source error", func(t *testing.T) {
		e := newTestEngine(t)
		e.SetDataSource(&fakeSource{ratingsErr: errDown, movies: dataset.SampleMovies()})
		if err := e.FitFromSource(ctx); !errors.Is(err, errDown) {
			t.Errorf("FitFromSource() error = %v, want %v", err, errDown)
		}
		if e.Fitted() {
			t.Error("engine fitted after source error")
		}
	})

	t.Run("success", func(t *testing.T) {
		e := newTestEngine(t)
		e.SetDataSource(&fakeSource{movies: dataset.SampleMovies(), ratings: dataset.SampleRatings()})
		if err := e.FitFromSource(ctx); err != nil {
			t.Fatalf("FitFromSource() error = %v", err)
		}
		if !e.Fitted() {
			t.Error("Fitted() = false after FitFromSource")
		}
	})
}

func TestEngine_ConcurrentRecommendDuringFit(t *testing.T) {
	e := newFittedEngine(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 64)

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 3; i++ {
			if err := e.Fit(ctx, dataset.SampleMovies(), dataset.SampleRatings()); err != nil {
				errs <- err
			}
		}
	}()

	requests := []Request{
		{LikedMovies: []string{"m1", "m2"}, TopN: 5},
		{UserID: "u3", TopN: 5},
		{UserID: "stranger", TopN: 5},
		{UserID: "u9", LikedMovies: []string{"m20"}, TopN: 5},
	}
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(req Request) {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				resp, err := e.Recommend(ctx, req)
				if err != nil {
					errs <- err
					return
				}
				if len(resp.Items) == 0 {
					errs <- errors.New("empty response")
					return
				}
			}
		}(requests[i%len(requests)])
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("concurrent operation failed: %v", err)
	}
	if v := e.Status().ModelVersion; v != 4 {
		t.Errorf("ModelVersion = %d, want 4", v)
	}
}

func TestEngine_Explain(t *testing.T) {
	e := newFittedEngine(t)
	ctx := context.Background()

	tests := []struct {
		name         string
		movieID      string
		userID       string
		wantContains string
	}{
		{"liked movies drive similarity", "m2", "u1", "Similar to 'Inception'"},
		{"own liked movie is skipped", "m1", "u1", "Similar to 'Interstellar'"},
		{"unknown movie", "m404", "u1", DefaultReason},
		{"unknown user", "m5", "ghost", DefaultReason},
		{"anonymous", "m5", "", DefaultReason},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Explain(ctx, tt.movieID, tt.userID)
			if err != nil {
				t.Fatalf("Explain() error = %v", err)
			}
			if got == "" {
				t.Fatal("Explain() returned empty string")
			}
			if !strings.Contains(got, tt.wantContains) {
				t.Errorf("Explain() = %q, want it to contain %q", got, tt.wantContains)
			}
		})
	}
}

func TestEngine_SimilarMovies(t *testing.T) {
	e := newFittedEngine(t)
	ctx := context.Background()

	got, err := e.SimilarMovies(ctx, "m1", 3)
	if err != nil {
		t.Fatalf("SimilarMovies() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d movies, want 3", len(got))
	}
	checkResults(t, got, 3, []string{"m1"})
	for _, r := range got {
		if r.Score < 0 || r.Score > 1 {
			t.Errorf("similarity %v outside [0, 1]", r.Score)
		}
	}

	unknown, err := e.SimilarMovies(ctx, "m404", 3)
	if err != nil {
		t.Fatalf("SimilarMovies(unknown) error = %v", err)
	}
	if len(unknown) != 0 {
		t.Errorf("SimilarMovies(unknown) = %v, want empty", unknown)
	}

	if _, err := e.SimilarMovies(ctx, "m1", -2); !errors.Is(err, ErrInvalidTopN) {
		t.Errorf("SimilarMovies(top_n=-2) error = %v, want ErrInvalidTopN", err)
	}
}

func TestEngine_UsersForNewMovie(t *testing.T) {
	e := newFittedEngine(t)

	users, err := e.UsersForNewMovie(context.Background(), "m2", 5)
	if err != nil {
		t.Fatalf("UsersForNewMovie() error = %v", err)
	}
	if len(users) == 0 || len(users) > 5 {
		t.Fatalf("got %d users, want 1..5", len(users))
	}
	for i := 1; i < len(users); i++ {
		if users[i].Score > users[i-1].Score {
			t.Errorf("scores not sorted at %d: %v > %v", i, users[i].Score, users[i-1].Score)
		}
	}
}

func TestEngine_PopularGenresAndRatingCounts(t *testing.T) {
	e := newFittedEngine(t)

	genres, err := e.PopularGenres(context.Background())
	if err != nil {
		t.Fatalf("PopularGenres() error = %v", err)
	}
	if len(genres) == 0 {
		t.Fatal("PopularGenres() returned nothing")
	}
	for i := 1; i < len(genres); i++ {
		if genres[i].TotalRatings > genres[i-1].TotalRatings {
			t.Errorf("genres not sorted by total ratings at %d", i)
		}
	}

	counts, err := e.RatingCounts()
	if err != nil {
		t.Fatal(err)
	}
	if counts["m1"] != 3 || counts["m5"] != 3 {
		t.Errorf("counts m1=%d m5=%d, want 3 and 3", counts["m1"], counts["m5"])
	}
}

func BenchmarkEngine_Recommend(b *testing.B) {
	e, err := NewEngine(testConfig(), zerolog.Nop())
	if err != nil {
		b.Fatal(err)
	}
	if err := e.Fit(context.Background(), dataset.SampleMovies(), dataset.SampleRatings()); err != nil {
		b.Fatal(err)
	}
	req := Request{UserID: "u1", LikedMovies: []string{"m5"}, TopN: 10}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := e.Recommend(context.Background(), req); err != nil {
			b.Fatal(err)
		}
	}
}
