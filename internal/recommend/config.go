// Cinematch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package recommend

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/cinematch/internal/recommend/algorithms"
)

// Config contains all configuration for the recommendation engine.
type Config struct {
	// Content contains parameters for content similarity.
	Content ContentConfig `json:"content"`

	// Factorization contains parameters for the matrix factorization.
	Factorization FactorizationConfig `json:"factorization"`

	// Collaborative contains parameters for the neighborhood fallbacks.
	Collaborative CollaborativeConfig `json:"collaborative"`

	// ColdStart contains parameters for the popularity fallback.
	ColdStart ColdStartConfig `json:"cold_start"`

	// Weights contains parameters for the adaptive weight policy.
	Weights WeightsConfig `json:"weights"`

	// Explain contains thresholds for explanation fragments.
	Explain ExplainConfig `json:"explain"`

	// Limits contains operational limits.
	Limits LimitsConfig `json:"limits"`

	// NumWorkers is the number of goroutines used by each fit stage.
	// Default: 4.
	NumWorkers int `json:"num_workers"`
}

// ContentConfig contains parameters for content similarity.
type ContentConfig struct {
	// Vectorizer names the text-to-vector strategy. Unknown names fall back
	// to TF-IDF with a warning.
	// Default: "tfidf".
	Vectorizer string `json:"vectorizer"`

	// MaxFeatures caps the TF-IDF vocabulary.
	// Default: 5000.
	MaxFeatures int `json:"max_features"`

	// MaxCast is the number of cast members included in the feature text.
	// Default: 5.
	MaxCast int `json:"max_cast"`
}

// FactorizationConfig contains parameters for the matrix factorization.
type FactorizationConfig struct {
	// NumFactors is the latent dimension.
	// Default: 50.
	NumFactors int `json:"num_factors"`

	// NumIterations is the ALS iteration budget.
	// Default: 20.
	NumIterations int `json:"num_iterations"`

	// Regularization is the L2 penalty on latent vectors.
	// Default: 0.01.
	Regularization float64 `json:"regularization"`

	// BiasRegularization is the L2 penalty on user and item biases.
	// Default: 0.01.
	BiasRegularization float64 `json:"bias_regularization"`

	// Tolerance is the relative RMSE improvement below which the fit has
	// converged. A fit that exhausts its budget above it logs a
	// convergence warning.
	// Default: 1e-4.
	Tolerance float64 `json:"tolerance"`

	// Seed makes initialization reproducible.
	// Default: 42.
	Seed int64 `json:"seed"`
}

// CollaborativeConfig contains parameters for the neighborhood fallbacks.
type CollaborativeConfig struct {
	// MinUserRatings is the rating count below which user-user neighbors
	// replace the factorization.
	// Default: 3.
	MinUserRatings int `json:"min_user_ratings"`

	// Neighbors is the number of neighbors kept per user and item.
	// Default: 20.
	Neighbors int `json:"neighbors"`

	// MinSimilarity is the minimum neighbor similarity.
	// Default: 0.
	MinSimilarity float64 `json:"min_similarity"`

	// Shrinkage penalizes neighbors with few co-ratings.
	// Default: 0 (disabled).
	Shrinkage float64 `json:"shrinkage"`
}

// ColdStartConfig contains parameters for the popularity fallback.
type ColdStartConfig struct {
	// BayesianK is the smoothing constant of avg*count/(count+K).
	// Default: 10.
	BayesianK float64 `json:"bayesian_k"`
}

// WeightsConfig contains parameters for the adaptive weight policy.
type WeightsConfig struct {
	// TimeDecay shifts weight toward collaborative scores for users whose
	// ratings are mostly recent.
	// Default: false.
	TimeDecay bool `json:"time_decay"`

	// RecentWindow is the window that counts as recent for time decay.
	// Default: 30 days.
	RecentWindow time.Duration `json:"recent_window"`
}

// ExplainConfig contains thresholds for explanation fragments.
type ExplainConfig struct {
	// SocialProofMin is the number of liked ratings a movie must exceed to
	// earn the social proof fragment.
	// Default: 10.
	SocialProofMin int `json:"social_proof_min"`

	// AggregateMinRatings is the rating count required for the aggregate
	// rating fragment.
	// Default: 20.
	AggregateMinRatings int `json:"aggregate_min_ratings"`

	// AggregateMinAvg is the average rating required for the aggregate
	// rating fragment.
	// Default: 4.0.
	AggregateMinAvg float64 `json:"aggregate_min_avg"`

	// TrendingMin is the number of recent ratings a movie must exceed to
	// count as trending.
	// Default: 50.
	TrendingMin int `json:"trending_min"`

	// TrendingWindow is the lookback for trending.
	// Default: 30 days.
	TrendingWindow time.Duration `json:"trending_window"`
}

// LimitsConfig contains operational limits.
type LimitsConfig struct {
	// DefaultTopN is used when a request does not set top_n.
	// Default: 10.
	DefaultTopN int `json:"default_top_n"`

	// MaxTopN caps top_n. Larger requests are clamped.
	// Default: 100.
	MaxTopN int `json:"max_top_n"`
}

const day = 24 * time.Hour

// DefaultConfig returns a Config with sensible production defaults.
func DefaultConfig() *Config {
	mf := algorithms.DefaultMFConfig()
	return &Config{
		Content: ContentConfig{
			Vectorizer:  algorithms.VectorizerTFIDF,
			MaxFeatures: algorithms.DefaultMaxFeatures,
			MaxCast:     algorithms.DefaultMaxCast,
		},
		Factorization: FactorizationConfig{
			NumFactors:         mf.NumFactors,
			NumIterations:      mf.NumIterations,
			Regularization:     mf.Regularization,
			BiasRegularization: mf.BiasRegularization,
			Tolerance:          mf.Tolerance,
			Seed:               mf.Seed,
		},
		Collaborative: CollaborativeConfig{
			MinUserRatings: 3,
			Neighbors:      20,
		},
		ColdStart: ColdStartConfig{
			BayesianK: algorithms.DefaultBayesianK,
		},
		Weights: WeightsConfig{
			RecentWindow: 30 * day,
		},
		Explain: ExplainConfig{
			SocialProofMin:      10,
			AggregateMinRatings: 20,
			AggregateMinAvg:     4.0,
			TrendingMin:         50,
			TrendingWindow:      30 * day,
		},
		Limits: LimitsConfig{
			DefaultTopN: 10,
			MaxTopN:     100,
		},
		NumWorkers: 4,
	}
}

// Validate checks the configuration for errors.
//
//nolint:gocyclo // validation needs to check many fields
func (c *Config) Validate() error {
	if c.Content.MaxFeatures < 1 {
		return fmt.Errorf("content.max_features must be positive, got %d", c.Content.MaxFeatures)
	}
	if c.Content.MaxCast < 0 {
		return fmt.Errorf("content.max_cast must be non-negative, got %d", c.Content.MaxCast)
	}

	if c.Factorization.NumFactors < 1 {
		return fmt.Errorf("factorization.num_factors must be positive, got %d", c.Factorization.NumFactors)
	}
	if c.Factorization.NumIterations < 1 {
		return fmt.Errorf("factorization.num_iterations must be positive, got %d", c.Factorization.NumIterations)
	}
	if c.Factorization.Regularization < 0 {
		return fmt.Errorf("factorization.regularization must be non-negative, got %f", c.Factorization.Regularization)
	}
	if c.Factorization.BiasRegularization < 0 {
		return fmt.Errorf("factorization.bias_regularization must be non-negative, got %f", c.Factorization.BiasRegularization)
	}
	if c.Factorization.Tolerance < 0 {
		return fmt.Errorf("factorization.tolerance must be non-negative, got %f", c.Factorization.Tolerance)
	}

	if c.Collaborative.MinUserRatings < 1 {
		return fmt.Errorf("collaborative.min_user_ratings must be positive, got %d", c.Collaborative.MinUserRatings)
	}
	if c.Collaborative.Neighbors < 1 {
		return fmt.Errorf("collaborative.neighbors must be positive, got %d", c.Collaborative.Neighbors)
	}
	if c.Collaborative.MinSimilarity < 0 || c.Collaborative.MinSimilarity > 1 {
		return fmt.Errorf("collaborative.min_similarity must be in [0, 1], got %f", c.Collaborative.MinSimilarity)
	}
	if c.Collaborative.Shrinkage < 0 {
		return fmt.Errorf("collaborative.shrinkage must be non-negative, got %f", c.Collaborative.Shrinkage)
	}

	if c.ColdStart.BayesianK <= 0 {
		return fmt.Errorf("cold_start.bayesian_k must be positive, got %f", c.ColdStart.BayesianK)
	}

	if c.Weights.TimeDecay && c.Weights.RecentWindow <= 0 {
		return fmt.Errorf("weights.recent_window must be positive when time_decay is enabled, got %v", c.Weights.RecentWindow)
	}

	if c.Explain.SocialProofMin < 0 {
		return fmt.Errorf("explain.social_proof_min must be non-negative, got %d", c.Explain.SocialProofMin)
	}
	if c.Explain.AggregateMinRatings < 0 {
		return fmt.Errorf("explain.aggregate_min_ratings must be non-negative, got %d", c.Explain.AggregateMinRatings)
	}
	if c.Explain.TrendingWindow <= 0 {
		return fmt.Errorf("explain.trending_window must be positive, got %v", c.Explain.TrendingWindow)
	}

	if c.Limits.DefaultTopN < 1 {
		return fmt.Errorf("limits.default_top_n must be positive, got %d", c.Limits.DefaultTopN)
	}
	if c.Limits.MaxTopN < c.Limits.DefaultTopN {
		return fmt.Errorf("limits.max_top_n must be >= limits.default_top_n, got %d < %d", c.Limits.MaxTopN, c.Limits.DefaultTopN)
	}

	if c.NumWorkers < 1 {
		return fmt.Errorf("num_workers must be positive, got %d", c.NumWorkers)
	}

	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	// Nested structs contain only value types.
	out := *c
	return &out
}

// contentConfig converts to the algorithm configuration.
func (c *Config) contentConfig() algorithms.ContentConfig {
	return algorithms.ContentConfig{
		MaxFeatures: c.Content.MaxFeatures,
		MaxCast:     c.Content.MaxCast,
		NumWorkers:  c.NumWorkers,
	}
}

// collaborativeConfig converts to the algorithm configuration.
func (c *Config) collaborativeConfig() algorithms.CollaborativeConfig {
	return algorithms.CollaborativeConfig{
		MF: algorithms.MFConfig{
			NumFactors:         c.Factorization.NumFactors,
			NumIterations:      c.Factorization.NumIterations,
			Regularization:     c.Factorization.Regularization,
			BiasRegularization: c.Factorization.BiasRegularization,
			Tolerance:          c.Factorization.Tolerance,
			Seed:               c.Factorization.Seed,
			NumWorkers:         c.NumWorkers,
		},
		KNN: algorithms.KNNConfig{
			K:             c.Collaborative.Neighbors,
			MinSimilarity: c.Collaborative.MinSimilarity,
			Shrinkage:     c.Collaborative.Shrinkage,
			MinCommon:     1,
			NumWorkers:    c.NumWorkers,
		},
		MinUserRatings: c.Collaborative.MinUserRatings,
	}
}

// MarshalJSON implements custom JSON marshaling for duration fields.
func (c *Config) MarshalJSON() ([]byte, error) {
	type Alias Config
	return json.Marshal(&struct {
		*Alias
		Weights struct {
			TimeDecay    bool   `json:"time_decay"`
			RecentWindow string `json:"recent_window"`
		} `json:"weights"`
		Explain struct {
			SocialProofMin      int     `json:"social_proof_min"`
			AggregateMinRatings int     `json:"aggregate_min_ratings"`
			AggregateMinAvg     float64 `json:"aggregate_min_avg"`
			TrendingMin         int     `json:"trending_min"`
			TrendingWindow      string  `json:"trending_window"`
		} `json:"explain"`
	}{
		Alias: (*Alias)(c),
		Weights: struct {
			TimeDecay    bool   `json:"time_decay"`
			RecentWindow string `json:"recent_window"`
		}{
			TimeDecay:    c.Weights.TimeDecay,
			RecentWindow: c.Weights.RecentWindow.String(),
		},
		Explain: struct {
			SocialProofMin      int     `json:"social_proof_min"`
			AggregateMinRatings int     `json:"aggregate_min_ratings"`
			AggregateMinAvg     float64 `json:"aggregate_min_avg"`
			TrendingMin         int     `json:"trending_min"`
			TrendingWindow      string  `json:"trending_window"`
		}{
			SocialProofMin:      c.Explain.SocialProofMin,
			AggregateMinRatings: c.Explain.AggregateMinRatings,
			AggregateMinAvg:     c.Explain.AggregateMinAvg,
			TrendingMin:         c.Explain.TrendingMin,
			TrendingWindow:      c.Explain.TrendingWindow.String(),
		},
	})
}
