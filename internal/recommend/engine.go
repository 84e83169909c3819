// Cinematch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package recommend

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/tomtom215/cinematch/internal/metrics"
	"github.com/tomtom215/cinematch/internal/models"
	"github.com/tomtom215/cinematch/internal/recommend/algorithms"
	"github.com/tomtom215/cinematch/internal/validation"
)

// Engine is the hybrid movie recommender. It blends content similarity and
// collaborative filtering with adaptive weights and falls back to popularity
// when no personalized signal exists.
//
// All fitted state lives in an immutable model that Fit builds from scratch
// and swaps in atomically. Queries load the active model once and never see
// a mix of old and new state. A failed or cancelled fit leaves the previous
// model serving. It is safe for concurrent use.
type Engine struct {
	config *Config
	logger zerolog.Logger

	current atomic.Pointer[model]
	version atomic.Int64
	fitting atomic.Bool
	fits    singleflight.Group

	sourceMu sync.RWMutex
	source   DataSource

	errMu     sync.RWMutex
	lastErr   error
	lastErrAt time.Time

	now func() time.Time
}

// model is one fitted generation. Nothing in it is written after Fit
// publishes it.
type model struct {
	version     int64
	fittedAt    time.Time
	fitDuration time.Duration

	movies   []models.Movie
	movieIdx map[string]int

	content   *algorithms.ContentSimilarity
	collab    *algorithms.CollaborativeFilter
	coldStart *algorithms.ColdStart
	explainer *Explainer

	// userRatings holds each user's deduplicated ratings in input order.
	userRatings map[string][]models.Rating
	numRatings  int
}

func (m *model) components() []algorithms.Model {
	return []algorithms.Model{
		m.content,
		m.collab,
		m.collab.Factorization(),
		m.coldStart,
		m.coldStart.Popularity(),
	}
}

func (m *model) title(movieID string) string {
	if i, ok := m.movieIdx[movieID]; ok {
		return m.movies[i].Title
	}
	return ""
}

// NewEngine creates a new recommendation engine in the unfitted state.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Engine{
		config: cfg.Clone(),
		logger: logger.With().Str("component", "recommend").Logger(),
		now:    time.Now,
	}, nil
}

// SetDataSource sets the source used by FitFromSource.
func (e *Engine) SetDataSource(ds DataSource) {
	e.sourceMu.Lock()
	defer e.sourceMu.Unlock()
	e.source = ds
}

func (e *Engine) dataSource() DataSource {
	e.sourceMu.RLock()
	defer e.sourceMu.RUnlock()
	return e.source
}

// Fitted reports whether a model is active.
func (e *Engine) Fitted() bool {
	return e.current.Load() != nil
}

// FitFromSource loads both tables from the data source and fits. Concurrent
// callers share one fit and its result.
func (e *Engine) FitFromSource(ctx context.Context) error {
	_, err, shared := e.fits.Do("fit", func() (interface{}, error) {
		src := e.dataSource()
		if src == nil {
			return nil, ErrNoDataSource
		}

		movies, err := src.Movies(ctx)
		if err != nil {
			return nil, fmt.Errorf("load movies: %w", err)
		}
		ratings, err := src.Ratings(ctx)
		if err != nil {
			return nil, fmt.Errorf("load ratings: %w", err)
		}

		return nil, e.Fit(ctx, movies, ratings)
	})
	if shared {
		e.logger.Debug().Msg("joined in-flight fit")
	}
	return err
}

// Fit builds a new model from the movie and rating tables and makes it
// active. It returns *InsufficientDataError for an empty table,
// *SchemaError for a row failing validation, ErrFitInProgress when another
// fit is running, and the context error when cancelled. On any error the
// previously active model is kept.
func (e *Engine) Fit(ctx context.Context, movies []models.Movie, ratings []models.Rating) error {
	if !e.fitting.CompareAndSwap(false, true) {
		return ErrFitInProgress
	}
	defer e.fitting.Store(false)

	start := time.Now()
	e.logger.Info().
		Int("movies", len(movies)).
		Int("ratings", len(ratings)).
		Msg("starting fit")

	m, err := e.buildModel(ctx, movies, ratings)
	duration := time.Since(start)
	metrics.RecordFit(metrics.FitStatus(err, IsInvalidInput(err)), duration)

	if err != nil {
		e.setLastError(err)
		e.logger.Error().
			Err(err).
			Dur("duration", duration).
			Msg("fit failed, keeping previous model")
		return err
	}

	m.version = e.version.Add(1)
	m.fittedAt = e.now()
	m.fitDuration = duration
	e.current.Store(m)
	e.setLastError(nil)

	mf := m.collab.Factorization()
	metrics.UpdateModelGauges(m.version, len(m.movies), m.collab.NumUsers(), m.numRatings, m.collab.Sparsity(), mf.RMSE())

	e.logger.Info().
		Int64("version", m.version).
		Int("movies", len(m.movies)).
		Int("users", m.collab.NumUsers()).
		Int("ratings", m.numRatings).
		Float64("sparsity", m.collab.Sparsity()).
		Float64("rmse", mf.RMSE()).
		Dur("duration", duration).
		Msg("fit complete")

	return nil
}

//nolint:gocyclo // fit pipeline is a linear sequence of checks and stages
func (e *Engine) buildModel(ctx context.Context, movies []models.Movie, ratings []models.Rating) (*model, error) {
	if len(movies) == 0 {
		return nil, &InsufficientDataError{Table: "movies"}
	}
	if len(ratings) == 0 {
		return nil, &InsufficientDataError{Table: "ratings"}
	}

	for i := range movies {
		if verr := validation.ValidateStruct(&movies[i]); verr != nil {
			return nil, &SchemaError{Table: "movies", Row: i, Fields: verr.Fields(), Err: verr}
		}
	}
	for i := range ratings {
		if verr := validation.ValidateStruct(&ratings[i]); verr != nil {
			return nil, &SchemaError{Table: "ratings", Row: i, Fields: verr.Fields(), Err: verr}
		}
	}

	catalog, movieIdx := e.uniqueMovies(movies)
	rated := e.knownRatings(ratings, movieIdx)
	if len(rated) == 0 {
		return nil, &InsufficientDataError{Table: "ratings"}
	}

	vectorizer, ok := algorithms.NewVectorizer(e.config.Content.Vectorizer, e.config.Content.MaxFeatures)
	if !ok {
		e.logger.Warn().
			Str("vectorizer", e.config.Content.Vectorizer).
			Str("fallback", vectorizer.Name()).
			Msg("unknown vectorizer, using fallback")
	}

	content := algorithms.NewContentSimilarity(e.config.contentConfig(), vectorizer)
	collab := algorithms.NewCollaborativeFilter(e.config.collaborativeConfig())
	coldStart := algorithms.NewColdStart(e.config.ColdStart.BayesianK)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(e.stage(gctx, "content", func(ctx context.Context) error {
		return content.Fit(ctx, catalog)
	}))
	g.Go(e.stage(gctx, "collaborative", func(ctx context.Context) error {
		return collab.Fit(ctx, rated)
	}))
	g.Go(e.stage(gctx, "cold_start", func(ctx context.Context) error {
		return coldStart.Fit(ctx, catalog, rated)
	}))
	if err := g.Wait(); err != nil {
		return nil, err
	}
	// A stage may finish just as the caller gives up; never publish then.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if w := collab.Factorization().Warning(); w != nil {
		metrics.RecordConvergenceWarning()
		e.logger.Warn().
			Int("iterations", w.Iterations).
			Float64("rmse", w.RMSE).
			Float64("improvement", w.Improvement).
			Float64("tolerance", w.Tolerance).
			Msg("matrix factorization did not converge, activating model anyway")
	}

	userRatings := make(map[string][]models.Rating)
	for _, r := range rated {
		userRatings[r.UserID] = append(userRatings[r.UserID], r)
	}

	return &model{
		movies:      catalog,
		movieIdx:    movieIdx,
		content:     content,
		collab:      collab,
		coldStart:   coldStart,
		explainer:   NewExplainer(catalog, coldStart.Popularity(), e.config.Explain),
		userRatings: userRatings,
		numRatings:  len(rated),
	}, nil
}

// stage wraps a fit stage with timing and error context.
func (e *Engine) stage(ctx context.Context, name string, fn func(context.Context) error) func() error {
	return func() error {
		start := time.Now()
		err := fn(ctx)
		metrics.RecordFitStage(name, time.Since(start))
		if err != nil {
			return fmt.Errorf("fit %s: %w", name, err)
		}
		e.logger.Debug().
			Str("stage", name).
			Dur("duration", time.Since(start)).
			Msg("fit stage complete")
		return nil
	}
}

// uniqueMovies drops repeated movie ids, keeping the first row.
func (e *Engine) uniqueMovies(movies []models.Movie) ([]models.Movie, map[string]int) {
	out := make([]models.Movie, 0, len(movies))
	idx := make(map[string]int, len(movies))
	for i := range movies {
		if _, dup := idx[movies[i].ID]; dup {
			continue
		}
		idx[movies[i].ID] = len(out)
		out = append(out, movies[i])
	}
	if dropped := len(movies) - len(out); dropped > 0 {
		e.logger.Warn().Int("dropped", dropped).Msg("duplicate movie ids, keeping first occurrence")
	}
	return out, idx
}

// knownRatings drops ratings of movies outside the catalog and collapses
// repeated (user, movie) pairs to the latest rating.
func (e *Engine) knownRatings(ratings []models.Rating, movieIdx map[string]int) []models.Rating {
	kept := make([]models.Rating, 0, len(ratings))
	for i := range ratings {
		if _, ok := movieIdx[ratings[i].MovieID]; ok {
			kept = append(kept, ratings[i])
		}
	}
	if dropped := len(ratings) - len(kept); dropped > 0 {
		e.logger.Warn().Int("dropped", dropped).Msg("ratings reference unknown movies")
	}
	return models.DedupeRatings(kept)
}

func (e *Engine) setLastError(err error) {
	e.errMu.Lock()
	defer e.errMu.Unlock()
	e.lastErr = err
	if err != nil {
		e.lastErrAt = e.now()
	}
}

func (e *Engine) active() (*model, error) {
	m := e.current.Load()
	if m == nil {
		return nil, ErrNotFitted
	}
	return m, nil
}

// Recommend returns up to TopN movies for the request. Movies in
// LikedMovies are never returned and no movie appears twice. A fitted
// engine always returns at least the popularity fallback when the catalog
// has movies left to offer.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) Recommend(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()

	m, err := e.active()
	if err != nil {
		return nil, err
	}

	topN, err := e.topN(req.TopN)
	if err != nil {
		return nil, err
	}

	liked, likedSet := uniqueIDs(req.LikedMovies)

	userCount := 0
	if req.UserID != "" {
		userCount = m.collab.UserRatingCount(req.UserID)
	}

	var resp *Response
	switch {
	case userCount == 0 && len(liked) == 0:
		resp = e.coldStartResponse(m, req.GenrePreferences, topN, likedSet)
	default:
		resp = e.hybridResponse(m, req, liked, likedSet, userCount, topN)
	}

	resp.Metadata.ModelVersion = m.version
	resp.Metadata.LatencyMS = time.Since(start).Milliseconds()
	metrics.RecordRecommendation(resp.Metadata.Path, len(resp.Items), time.Since(start))

	e.logger.Debug().
		Str("user_id", req.UserID).
		Int("liked", len(liked)).
		Str("path", resp.Metadata.Path).
		Int("candidates", resp.Metadata.Candidates).
		Int("returned", len(resp.Items)).
		Msg("recommendation complete")

	return resp, nil
}

func (e *Engine) topN(n int) (int, error) {
	switch {
	case n < 0:
		return 0, ErrInvalidTopN
	case n == 0:
		return e.config.Limits.DefaultTopN, nil
	case n > e.config.Limits.MaxTopN:
		return e.config.Limits.MaxTopN, nil
	default:
		return n, nil
	}
}

// uniqueIDs removes blanks and repeats, keeping first-seen order.
func uniqueIDs(ids []string) ([]string, map[string]struct{}) {
	out := make([]string, 0, len(ids))
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, dup := set[id]; dup {
			continue
		}
		set[id] = struct{}{}
		out = append(out, id)
	}
	return out, set
}

func (e *Engine) coldStartResponse(m *model, genres []string, topN int, exclude map[string]struct{}) *Response {
	items := m.coldStart.RecommendNewUser(genres, topN+len(exclude))

	recs := make([]Recommendation, 0, topN)
	for _, it := range items {
		if _, skip := exclude[it.MovieID]; skip {
			continue
		}
		recs = append(recs, Recommendation{
			MovieID: it.MovieID,
			Title:   m.title(it.MovieID),
			Score:   it.Score,
			Reason:  it.Reason,
		})
		if len(recs) == topN {
			break
		}
	}

	return &Response{
		Items: recs,
		Metadata: ResponseMetadata{
			Path:       PathColdStart,
			Candidates: len(items),
		},
	}
}

// candidateSet keeps candidates in insertion order.
type candidateSet struct {
	byID  map[string]*Candidate
	order []*Candidate
}

func newCandidateSet(capacity int) *candidateSet {
	return &candidateSet{
		byID:  make(map[string]*Candidate, capacity),
		order: make([]*Candidate, 0, capacity),
	}
}

func (s *candidateSet) get(movieID string) *Candidate {
	if c, ok := s.byID[movieID]; ok {
		return c
	}
	c := &Candidate{MovieID: movieID, pos: len(s.order)}
	s.byID[movieID] = c
	s.order = append(s.order, c)
	return c
}

//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) hybridResponse(m *model, req Request, liked []string, likedSet map[string]struct{}, userCount, topN int) *Response {
	pool := 2 * topN
	cands := newCandidateSet(2 * pool)

	// Content candidates go first so they win ties.
	if len(liked) > 0 {
		known := make([]string, 0, len(liked))
		for _, id := range liked {
			if m.content.Has(id) {
				known = append(known, id)
			}
		}
		for _, s := range m.content.SimilarToMany(known, pool) {
			cands.get(s.ID).ContentScore = s.Score
		}
	}

	if userCount > 0 {
		for _, s := range m.collab.Recommend(req.UserID, pool, likedSet) {
			cands.get(s.ID).CollaborativeScore = s.Score
		}
	}

	if len(cands.order) == 0 {
		if resp := e.itemFallback(m, req.UserID, liked, likedSet, topN); resp != nil {
			return resp
		}
		return e.coldStartResponse(m, req.GenrePreferences, topN, likedSet)
	}

	weights := WeightsFor(userCount, m.meanItemRatings(cands.order), m.collab.Sparsity())
	if e.config.Weights.TimeDecay && userCount > 0 {
		weights = TimeDecayWeights(weights, m.userRatings[req.UserID], e.now(), e.config.Weights.RecentWindow)
	}

	for _, c := range cands.order {
		content := clampUnit(c.ContentScore)
		collaborative := clampUnit(c.CollaborativeScore / models.MaxRating)
		c.HybridScore = weights.Content*content + weights.Collaborative*collaborative
	}

	ranked := make([]*Candidate, len(cands.order))
	copy(ranked, cands.order)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].HybridScore > ranked[j].HybridScore
	})
	if len(ranked) > topN {
		ranked = ranked[:topN]
	}

	now := e.now()
	recs := make([]Recommendation, len(ranked))
	for i, c := range ranked {
		recs[i] = Recommendation{
			MovieID: c.MovieID,
			Title:   m.title(c.MovieID),
			Score:   c.HybridScore,
			Reason: m.explainer.Explain(c.MovieID, ExplainContext{
				UserID:          req.UserID,
				LikedMovies:     liked,
				ContentFeatures: contentFeatures(c.ContentScore),
				Similarity:      c.HybridScore,
			}, now),
		}
	}

	return &Response{
		Items: recs,
		Metadata: ResponseMetadata{
			Path:       PathHybrid,
			Weights:    &weights,
			Candidates: len(cands.order),
		},
	}
}

// itemFallback seeds recommendations from the first liked movie either
// model knows. Collaborative item-item neighbors are preferred; content
// neighbors are used for movies nobody has rated. Returns nil when no
// liked movie is known.
func (e *Engine) itemFallback(m *model, userID string, liked []string, likedSet map[string]struct{}, topN int) *Response {
	for _, seed := range liked {
		var neighbors []algorithms.ScoredID
		switch {
		case m.collab.ItemRatingCount(seed) > 0:
			neighbors = m.collab.SimilarItems(seed, topN+len(likedSet))
		case m.content.Has(seed):
			neighbors = m.content.SimilarTo(seed, topN+len(likedSet))
		default:
			continue
		}

		now := e.now()
		recs := make([]Recommendation, 0, topN)
		for _, n := range neighbors {
			if _, skip := likedSet[n.ID]; skip {
				continue
			}
			recs = append(recs, Recommendation{
				MovieID: n.ID,
				Title:   m.title(n.ID),
				Score:   clampUnit(n.Score),
				Reason: m.explainer.Explain(n.ID, ExplainContext{
					UserID:      userID,
					LikedMovies: []string{seed},
					Similarity:  n.Score,
				}, now),
			})
			if len(recs) == topN {
				break
			}
		}
		if len(recs) == 0 {
			continue
		}

		return &Response{
			Items: recs,
			Metadata: ResponseMetadata{
				Path:       PathItemFallback,
				Candidates: len(neighbors),
			},
		}
	}
	return nil
}

// meanItemRatings returns the rounded mean rating count of the candidates.
func (m *model) meanItemRatings(cands []*Candidate) int {
	if len(cands) == 0 {
		return 0
	}
	total := 0
	for _, c := range cands {
		total += m.collab.ItemRatingCount(c.MovieID)
	}
	return int(math.Round(float64(total) / float64(len(cands))))
}

// contentFeatures spreads a content score over features by their weight in
// the feature text. Nil when there is no content signal.
func contentFeatures(score float64) *ContentFeatures {
	if score <= 0 {
		return nil
	}
	return &ContentFeatures{
		Genres:   score,
		Director: score * 0.8,
		Cast:     score * 0.6,
	}
}

func clampUnit(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// Explain returns the reason movieID would be recommended to userID. The
// user's liked movies (ratings >= 4) drive the feature and similarity
// fragments. Unknown movies and users degrade to generic reasons.
func (e *Engine) Explain(ctx context.Context, movieID, userID string) (string, error) {
	m, err := e.active()
	if err != nil {
		return "", err
	}

	var liked []string
	for _, r := range m.userRatings[userID] {
		if r.Liked() && r.MovieID != movieID {
			liked = append(liked, r.MovieID)
		}
	}

	ec := ExplainContext{UserID: userID, LikedMovies: liked}
	if len(liked) > 0 {
		var sum float64
		for _, id := range liked {
			sum += m.content.Similarity(movieID, id)
		}
		cs := sum / float64(len(liked))
		ec.ContentFeatures = contentFeatures(cs)
		ec.Similarity = cs
	}

	return m.explainer.Explain(movieID, ec, e.now()), nil
}

// SimilarMovies returns up to topN movies by content similarity to movieID.
// Unknown movies yield an empty list.
func (e *Engine) SimilarMovies(ctx context.Context, movieID string, topN int) ([]Recommendation, error) {
	m, err := e.active()
	if err != nil {
		return nil, err
	}
	topN, err = e.topN(topN)
	if err != nil {
		return nil, err
	}

	now := e.now()
	neighbors := m.content.SimilarTo(movieID, topN)
	out := make([]Recommendation, len(neighbors))
	for i, n := range neighbors {
		out[i] = Recommendation{
			MovieID: n.ID,
			Title:   m.title(n.ID),
			Score:   n.Score,
			Reason: m.explainer.Explain(n.ID, ExplainContext{
				LikedMovies: []string{movieID},
				Similarity:  n.Score,
			}, now),
		}
	}
	return out, nil
}

// UsersForNewMovie returns the users most likely to enjoy movieID, based on
// what they liked among its content neighbors.
func (e *Engine) UsersForNewMovie(ctx context.Context, movieID string, topN int) ([]AudienceMember, error) {
	m, err := e.active()
	if err != nil {
		return nil, err
	}
	topN, err = e.topN(topN)
	if err != nil {
		return nil, err
	}

	users := m.coldStart.RecommendUsersForNewItem(movieID, m.content, topN)
	out := make([]AudienceMember, len(users))
	for i, u := range users {
		out[i] = AudienceMember{UserID: u.UserID, Score: u.Score}
	}
	return out, nil
}

// PopularGenres returns per-genre popularity of the active model.
func (e *Engine) PopularGenres(ctx context.Context) ([]algorithms.GenrePopularity, error) {
	m, err := e.active()
	if err != nil {
		return nil, err
	}
	return m.coldStart.GenrePopularity(), nil
}

// Catalog returns the movies of the active model. The slice is shared and
// must not be modified.
func (e *Engine) Catalog() ([]models.Movie, error) {
	m, err := e.active()
	if err != nil {
		return nil, err
	}
	return m.movies, nil
}

// RatingCounts returns the number of ratings per movie in the active model.
func (e *Engine) RatingCounts() (map[string]int, error) {
	m, err := e.active()
	if err != nil {
		return nil, err
	}
	out := make(map[string]int, len(m.movies))
	for i := range m.movies {
		if n := m.collab.ItemRatingCount(m.movies[i].ID); n > 0 {
			out[m.movies[i].ID] = n
		}
	}
	return out, nil
}

// Status reports the engine state and active model statistics.
func (e *Engine) Status() Status {
	st := Status{
		State:         StateUnfitted,
		FitInProgress: e.fitting.Load(),
	}

	e.errMu.RLock()
	if e.lastErr != nil {
		st.LastError = e.lastErr.Error()
		st.LastErrorAt = e.lastErrAt
	}
	e.errMu.RUnlock()

	m := e.current.Load()
	if m == nil {
		return st
	}

	mf := m.collab.Factorization()
	st.State = StateFitted
	st.ModelVersion = m.version
	st.FittedAt = m.fittedAt
	st.FitDurationMS = m.fitDuration.Milliseconds()
	st.Movies = len(m.movies)
	st.Users = m.collab.NumUsers()
	st.Ratings = m.numRatings
	st.Sparsity = m.collab.Sparsity()
	st.Vectorizer = m.content.VectorizerName()
	st.RMSE = mf.RMSE()
	st.Iterations = mf.Iterations()
	if w := mf.Warning(); w != nil {
		st.ConvergenceWarning = w.String()
	}
	for _, c := range m.components() {
		st.Components = append(st.Components, ComponentStatus{
			Name:      c.Name(),
			Trained:   c.IsTrained(),
			Version:   c.Version(),
			TrainedAt: c.LastTrainedAt(),
		})
	}
	return st
}
