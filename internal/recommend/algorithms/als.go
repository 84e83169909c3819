// Cinematch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package algorithms

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync"

	"github.com/tomtom215/cinematch/internal/models"
)

// MFConfig contains configuration for matrix factorization.
type MFConfig struct {
	// NumFactors is the dimension of the latent factor vectors.
	NumFactors int

	// NumIterations is the ALS iteration budget.
	NumIterations int

	// Regularization is the L2 penalty on the latent vectors.
	Regularization float64

	// BiasRegularization is the L2 penalty on user and item biases.
	// Keeps the normal equations positive definite for single-rating rows.
	BiasRegularization float64

	// Tolerance is the relative training RMSE improvement below which the
	// fit is considered converged.
	Tolerance float64

	// Seed makes the random initialization reproducible.
	Seed int64

	// NumWorkers is the number of parallel workers for training.
	// If <= 0, defaults to 4.
	NumWorkers int
}

// DefaultMFConfig returns default matrix factorization configuration.
func DefaultMFConfig() MFConfig {
	return MFConfig{
		NumFactors:         50,
		NumIterations:      20,
		Regularization:     0.01,
		BiasRegularization: 0.01,
		Tolerance:          1e-4,
		Seed:               42,
		NumWorkers:         4,
	}
}

// ConvergenceWarning reports a fit whose training error was still improving
// faster than the tolerance when the iteration budget ran out. The model is
// usable; the warning is informational.
type ConvergenceWarning struct {
	Iterations  int
	RMSE        float64
	Improvement float64
	Tolerance   float64
}

func (w ConvergenceWarning) String() string {
	return fmt.Sprintf("matrix factorization did not converge after %d iterations: rmse=%.4f improvement=%.6f tolerance=%.6f",
		w.Iterations, w.RMSE, w.Improvement, w.Tolerance)
}

// MatrixFactorization learns biased latent factors with Alternating Least
// Squares over explicit ratings.
//
// The objective minimized is:
//
//	sum_{u,i} (r_ui - mu - b_u - c_i - x_u' * y_i)^2 + lambda * (||x_u||^2 + ||y_i||^2)
//
// Each half-step fixes one side and solves a regularized normal equation per
// row with the bias folded in as an extra coordinate.
type MatrixFactorization struct {
	BaseAlgorithm
	config MFConfig

	mu float64

	// X is the user factor matrix (numUsers x numFactors)
	X [][]float64

	// Y is the item factor matrix (numItems x numFactors)
	Y [][]float64

	userBias []float64
	itemBias []float64

	userIndex   map[string]int
	itemIndex   map[string]int
	indexToUser []string
	indexToItem []string

	rmse       float64
	iterations int
	warning    *ConvergenceWarning
}

// entry is one observed rating in index space.
type entry struct {
	idx    int
	rating float64
}

// NewMatrixFactorization creates a new model with the given configuration.
func NewMatrixFactorization(cfg MFConfig) *MatrixFactorization {
	def := DefaultMFConfig()
	if cfg.NumFactors <= 0 {
		cfg.NumFactors = def.NumFactors
	}
	if cfg.NumIterations <= 0 {
		cfg.NumIterations = def.NumIterations
	}
	if cfg.Regularization <= 0 {
		cfg.Regularization = def.Regularization
	}
	if cfg.BiasRegularization <= 0 {
		cfg.BiasRegularization = def.BiasRegularization
	}
	if cfg.Tolerance <= 0 {
		cfg.Tolerance = def.Tolerance
	}
	if cfg.NumWorkers <= 0 {
		cfg.NumWorkers = def.NumWorkers
	}

	return &MatrixFactorization{
		BaseAlgorithm: NewBaseAlgorithm("matrix_factorization"),
		config:        cfg,
		userIndex:     make(map[string]int),
		itemIndex:     make(map[string]int),
	}
}

// Fit learns factors from ratings. Ratings are expected to be unique per
// (user, movie). A cancelled context aborts the fit and leaves any previously
// fitted state untouched.
//
//nolint:gocyclo,gocritic // gocyclo: ML training algorithms are inherently complex; gocritic: rangeValCopy is acceptable for clarity
func (m *MatrixFactorization) Fit(ctx context.Context, ratings []models.Rating) error {
	m.acquireTrainLock()
	defer m.releaseTrainLock()

	if len(ratings) == 0 {
		return ErrEmptyInput
	}
	if ContextCancelled(ctx) {
		return ctx.Err()
	}

	userIndex := make(map[string]int)
	itemIndex := make(map[string]int)
	var indexToUser, indexToItem []string

	var sum float64
	for _, r := range ratings {
		if _, ok := userIndex[r.UserID]; !ok {
			userIndex[r.UserID] = len(indexToUser)
			indexToUser = append(indexToUser, r.UserID)
		}
		if _, ok := itemIndex[r.MovieID]; !ok {
			itemIndex[r.MovieID] = len(indexToItem)
			indexToItem = append(indexToItem, r.MovieID)
		}
		sum += r.Value
	}
	mu := sum / float64(len(ratings))

	numUsers := len(indexToUser)
	numItems := len(indexToItem)
	numFactors := m.config.NumFactors

	userItems := make([][]entry, numUsers)
	itemUsers := make([][]entry, numItems)
	for _, r := range ratings {
		u := userIndex[r.UserID]
		i := itemIndex[r.MovieID]
		userItems[u] = append(userItems[u], entry{idx: i, rating: r.Value})
		itemUsers[i] = append(itemUsers[i], entry{idx: u, rating: r.Value})
	}

	rng := rand.New(rand.NewSource(m.config.Seed)) //nolint:gosec // reproducible initialization, not security sensitive
	X := randomMatrix(rng, numUsers, numFactors)
	Y := randomMatrix(rng, numItems, numFactors)
	bu := make([]float64, numUsers)
	bi := make([]float64, numItems)

	s := &alsState{
		mu: mu, X: X, Y: Y, bu: bu, bi: bi,
		numFactors: numFactors,
		lambda:     m.config.Regularization,
		lambdaBias: m.config.BiasRegularization,
	}

	prev := math.Inf(1)
	var rmse, improvement float64
	iterations := 0
	converged := false

	for iter := 0; iter < m.config.NumIterations; iter++ {
		if ContextCancelled(ctx) {
			return ctx.Err()
		}

		// Update user factors (fix Y, solve for X)
		m.parallelRows(numUsers, func(u int) {
			s.solveRow(userItems[u], s.Y, s.bi, s.X[u], &s.bu[u])
		})

		if ContextCancelled(ctx) {
			return ctx.Err()
		}

		// Update item factors (fix X, solve for Y)
		m.parallelRows(numItems, func(i int) {
			s.solveRow(itemUsers[i], s.X, s.bu, s.Y[i], &s.bi[i])
		})

		iterations = iter + 1
		rmse = s.trainingRMSE(userItems)
		if !math.IsInf(prev, 1) && prev > 0 {
			improvement = (prev - rmse) / prev
			if converges(improvement, m.config.Tolerance) {
				converged = true
				break
			}
		}
		prev = rmse
	}

	var warning *ConvergenceWarning
	if !converged && iterations > 1 {
		warning = &ConvergenceWarning{
			Iterations:  iterations,
			RMSE:        rmse,
			Improvement: improvement,
			Tolerance:   m.config.Tolerance,
		}
	}

	m.mu = mu
	m.X, m.Y = X, Y
	m.userBias, m.itemBias = bu, bi
	m.userIndex, m.itemIndex = userIndex, itemIndex
	m.indexToUser, m.indexToItem = indexToUser, indexToItem
	m.rmse = rmse
	m.iterations = iterations
	m.warning = warning
	m.markTrained()
	return nil
}

// alsState holds the working matrices of one fit.
type alsState struct {
	mu         float64
	X, Y       [][]float64
	bu, bi     []float64
	numFactors int
	lambda     float64
	lambdaBias float64
}

// solveRow solves for one row's factors and bias given the fixed opposite
// side. The system is built over the augmented vector [y, 1].
//
//nolint:gocritic // A follows standard linear algebra notation
func (s *alsState) solveRow(observed []entry, fixed [][]float64, fixedBias, out []float64, bias *float64) {
	if len(observed) == 0 {
		return
	}

	n := s.numFactors + 1
	A := make([][]float64, n)
	for f := range A {
		A[f] = make([]float64, n)
	}
	b := make([]float64, n)

	for _, e := range observed {
		y := fixed[e.idx]
		target := e.rating - s.mu - fixedBias[e.idx]

		for f1 := 0; f1 < n; f1++ {
			v1 := augmented(y, f1)
			for f2 := f1; f2 < n; f2++ {
				A[f1][f2] += v1 * augmented(y, f2)
			}
			b[f1] += v1 * target
		}
	}

	for f1 := 0; f1 < n; f1++ {
		for f2 := 0; f2 < f1; f2++ {
			A[f1][f2] = A[f2][f1]
		}
	}
	for f := 0; f < s.numFactors; f++ {
		A[f][f] += s.lambda
	}
	A[s.numFactors][s.numFactors] += s.lambdaBias

	x := solveLinearSystem(A, b)
	copy(out, x[:s.numFactors])
	*bias = x[s.numFactors]
}

// augmented returns coordinate f of [v, 1].
func augmented(v []float64, f int) float64 {
	if f == len(v) {
		return 1
	}
	return v[f]
}

func (s *alsState) trainingRMSE(userItems [][]entry) float64 {
	var sse float64
	var n int
	for u, items := range userItems {
		for _, e := range items {
			pred := s.mu + s.bu[u] + s.bi[e.idx] + dot(s.X[u], s.Y[e.idx])
			d := e.rating - pred
			sse += d * d
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return math.Sqrt(sse / float64(n))
}

// parallelRows runs fn over [0, n) in contiguous chunks, one per worker.
// Each row is written by exactly one worker.
func (m *MatrixFactorization) parallelRows(n int, fn func(row int)) {
	var wg sync.WaitGroup
	chunkSize := (n + m.config.NumWorkers - 1) / m.config.NumWorkers

	for w := 0; w < m.config.NumWorkers; w++ {
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
				fn(r)
			}
		}(start, end)
	}

	wg.Wait()
}

func randomMatrix(rng *rand.Rand, rows, cols int) [][]float64 {
	out := make([][]float64, rows)
	for r := range out {
		out[r] = make([]float64, cols)
		for c := range out[r] {
			out[r][c] = 0.1 * rng.NormFloat64()
		}
	}
	return out
}

// solveLinearSystem solves A*x = b using Cholesky decomposition.
//
//nolint:gocritic // A, L follow standard linear algebra notation
func solveLinearSystem(A [][]float64, b []float64) []float64 {
	n := len(b)

	// Cholesky decomposition: A = L * L'
	L := make([][]float64, n)
	for i := range L {
		L[i] = make([]float64, n)
	}

	for i := 0; i < n; i++ {
		for j := 0; j <= i; j++ {
			sum := A[i][j]
			for k := 0; k < j; k++ {
				sum -= L[i][k] * L[j][k]
			}

			if i == j {
				if sum <= 0 {
					sum = 1e-10
				}
				L[i][j] = math.Sqrt(sum)
			} else if L[j][j] != 0 {
				L[i][j] = sum / L[j][j]
			}
		}
	}

	// Forward substitution: L * z = b
	z := make([]float64, n)
	for i := 0; i < n; i++ {
		sum := b[i]
		for j := 0; j < i; j++ {
			sum -= L[i][j] * z[j]
		}
		if L[i][i] != 0 {
			z[i] = sum / L[i][i]
		}
	}

	// Back substitution: L' * x = z
	x := make([]float64, n)
	for i := n - 1; i >= 0; i-- {
		sum := z[i]
		for j := i + 1; j < n; j++ {
			sum -= L[j][i] * x[j]
		}
		if L[i][i] != 0 {
			x[i] = sum / L[i][i]
		}
	}

	return x
}

// Predict returns mu + b_u + c_i + x_u'y_i clamped to the rating scale.
// An unseen user or movie yields the global mean exactly.
func (m *MatrixFactorization) Predict(userID, movieID string) float64 {
	m.acquirePredictLock()
	defer m.releasePredictLock()
	return m.predict(userID, movieID)
}

func (m *MatrixFactorization) predict(userID, movieID string) float64 {
	u, okU := m.userIndex[userID]
	i, okI := m.itemIndex[movieID]
	if !m.trained || !okU || !okI {
		return m.mu
	}

	score := m.mu + m.userBias[u] + m.itemBias[i] + dot(m.X[u], m.Y[i])
	return clamp(score, models.MinRating, models.MaxRating)
}

// GlobalMean returns the mean training rating.
func (m *MatrixFactorization) GlobalMean() float64 {
	m.acquirePredictLock()
	defer m.releasePredictLock()
	return m.mu
}

// KnownUser reports whether the user appeared in the training ratings.
func (m *MatrixFactorization) KnownUser(userID string) bool {
	m.acquirePredictLock()
	defer m.releasePredictLock()
	_, ok := m.userIndex[userID]
	return ok
}

// KnownItem reports whether the movie appeared in the training ratings.
func (m *MatrixFactorization) KnownItem(movieID string) bool {
	m.acquirePredictLock()
	defer m.releasePredictLock()
	_, ok := m.itemIndex[movieID]
	return ok
}

// RMSE returns the training RMSE after the final iteration.
func (m *MatrixFactorization) RMSE() float64 {
	m.acquirePredictLock()
	defer m.releasePredictLock()
	return m.rmse
}

// Iterations returns the number of ALS iterations the last fit ran.
func (m *MatrixFactorization) Iterations() int {
	m.acquirePredictLock()
	defer m.releasePredictLock()
	return m.iterations
}

// Warning returns the convergence warning of the last fit, or nil.
func (m *MatrixFactorization) Warning() *ConvergenceWarning {
	m.acquirePredictLock()
	defer m.releasePredictLock()
	return m.warning
}

// Items returns the movie ids seen during training, in first-seen order.
func (m *MatrixFactorization) Items() []string {
	m.acquirePredictLock()
	defer m.releasePredictLock()
	out := make([]string, len(m.indexToItem))
	copy(out, m.indexToItem)
	return out
}

// converges reports whether a relative RMSE improvement has settled below
// tol. A rising RMSE is divergence, not convergence.
func converges(improvement, tol float64) bool {
	return improvement >= 0 && improvement < tol
}
