// Cinematch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package config

import (
	"fmt"
	"time"

	"github.com/tomtom215/cinematch/internal/recommend"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Logging   LoggingConfig   `koanf:"logging"`
	Data      DataConfig      `koanf:"data"`
	Recommend RecommendConfig `koanf:"recommend"`
	API       APIConfig       `koanf:"api"`
}

// ServerConfig holds HTTP server settings.
//
// Environment Variables:
//   - HTTP_HOST, HTTP_PORT
//   - HTTP_READ_TIMEOUT, HTTP_WRITE_TIMEOUT, HTTP_IDLE_TIMEOUT
//   - HTTP_SHUTDOWN_TIMEOUT
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// Addr returns host:port for net/http.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is json or console.
	// Default: json
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	// Default: false
	Caller bool `koanf:"caller"`
}

// DataConfig describes where the catalog and ratings come from.
//
// On startup the badger store is seeded once: from MoviesPath/RatingsPath
// when both are set, otherwise from the built-in sample dataset when
// SeedSample is true.
type DataConfig struct {
	// MoviesPath and RatingsPath point to CSV or JSON files.
	MoviesPath  string `koanf:"movies_path"`
	RatingsPath string `koanf:"ratings_path"`

	// BadgerDir is the BadgerDB data directory.
	// Default: /data/cinematch
	BadgerDir string `koanf:"badger_dir"`

	// InMemory runs BadgerDB without a data directory.
	// Default: false
	InMemory bool `koanf:"in_memory"`

	// SeedSample seeds an empty store with the built-in sample dataset.
	// Default: true
	SeedSample bool `koanf:"seed_sample"`

	// GCInterval is how often value log GC runs.
	// Default: 10m
	GCInterval time.Duration `koanf:"gc_interval"`

	// GCDiscardRatio is the value log discard ratio passed to badger.
	// Default: 0.5
	GCDiscardRatio float64 `koanf:"gc_discard_ratio"`
}

// RecommendConfig holds engine and refit settings.
type RecommendConfig struct {
	// FitOnStartup fits the model as soon as the refit service starts.
	// Default: true
	FitOnStartup bool `koanf:"fit_on_startup"`

	// FitInterval is the periodic refit interval. Zero disables periodic refits.
	// Default: 1h
	FitInterval time.Duration `koanf:"fit_interval"`

	// FitTimeout bounds a single fit.
	// Default: 10m
	FitTimeout time.Duration `koanf:"fit_timeout"`

	// FitHistory is the number of fit records kept in the store.
	// Default: 50
	FitHistory int `koanf:"fit_history"`

	// ManualFitInterval is the minimum spacing between manual refits.
	// Default: 1m
	ManualFitInterval time.Duration `koanf:"manual_fit_interval"`

	// Breaker protects the data source from repeated failing fits.
	Breaker BreakerConfig `koanf:"breaker"`

	Content       ContentConfig       `koanf:"content"`
	Factorization FactorizationConfig `koanf:"factorization"`
	Collaborative CollaborativeConfig `koanf:"collaborative"`
	Explain       ExplainConfig       `koanf:"explain"`

	// BayesianK smooths cold-start popularity.
	// Default: 10
	BayesianK float64 `koanf:"bayesian_k"`

	// TimeDecay shifts weight toward collaborative scores for users with
	// mostly recent ratings.
	// Default: false
	TimeDecay bool `koanf:"time_decay"`

	// RecentWindow is the time decay window.
	// Default: 720h
	RecentWindow time.Duration `koanf:"recent_window"`

	// DefaultTopN and MaxTopN bound the result size.
	// Default: 10 and 100
	DefaultTopN int `koanf:"default_top_n"`
	MaxTopN     int `koanf:"max_top_n"`

	// NumWorkers is the goroutine count per fit stage.
	// Default: 4
	NumWorkers int `koanf:"num_workers"`
}

// BreakerConfig holds circuit breaker settings for refits.
type BreakerConfig struct {
	// MaxFailures is the number of consecutive failed fits that opens the breaker.
	// Default: 3
	MaxFailures uint32 `koanf:"max_failures"`

	// OpenTimeout is how long the breaker stays open before a trial fit.
	// Default: 5m
	OpenTimeout time.Duration `koanf:"open_timeout"`
}

// ContentConfig holds content similarity settings.
type ContentConfig struct {
	Vectorizer  string `koanf:"vectorizer"`
	MaxFeatures int    `koanf:"max_features"`
	MaxCast     int    `koanf:"max_cast"`
}

// FactorizationConfig holds matrix factorization settings.
type FactorizationConfig struct {
	Factors            int     `koanf:"factors"`
	Iterations         int     `koanf:"iterations"`
	Regularization     float64 `koanf:"regularization"`
	BiasRegularization float64 `koanf:"bias_regularization"`
	Tolerance          float64 `koanf:"tolerance"`
	Seed               int64   `koanf:"seed"`
}

// CollaborativeConfig holds neighborhood settings.
type CollaborativeConfig struct {
	MinUserRatings int     `koanf:"min_user_ratings"`
	Neighbors      int     `koanf:"neighbors"`
	MinSimilarity  float64 `koanf:"min_similarity"`
	Shrinkage      float64 `koanf:"shrinkage"`
}

// ExplainConfig holds explanation thresholds.
type ExplainConfig struct {
	SocialProofMin      int           `koanf:"social_proof_min"`
	AggregateMinRatings int           `koanf:"aggregate_min_ratings"`
	AggregateMinAvg     float64       `koanf:"aggregate_min_avg"`
	TrendingMin         int           `koanf:"trending_min"`
	TrendingWindow      time.Duration `koanf:"trending_window"`
}

// APIConfig holds HTTP API settings.
type APIConfig struct {
	// CORSOrigins lists allowed origins. Comma-separated in CORS_ORIGINS.
	// Default: ["*"]
	CORSOrigins []string `koanf:"cors_origins"`

	// RateLimitRequests per RateLimitWindow per client IP.
	// Default: 100 per 1m
	RateLimitRequests int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`

	// MaxBodyBytes caps request bodies.
	// Default: 1MB
	MaxBodyBytes int64 `koanf:"max_body_bytes"`
}

// ToEngineConfig builds the engine configuration from the recommend section.
func (c *Config) ToEngineConfig() *recommend.Config {
	r := &c.Recommend
	cfg := recommend.DefaultConfig()

	cfg.Content = recommend.ContentConfig{
		Vectorizer:  r.Content.Vectorizer,
		MaxFeatures: r.Content.MaxFeatures,
		MaxCast:     r.Content.MaxCast,
	}
	cfg.Factorization = recommend.FactorizationConfig{
		NumFactors:         r.Factorization.Factors,
		NumIterations:      r.Factorization.Iterations,
		Regularization:     r.Factorization.Regularization,
		BiasRegularization: r.Factorization.BiasRegularization,
		Tolerance:          r.Factorization.Tolerance,
		Seed:               r.Factorization.Seed,
	}
	cfg.Collaborative = recommend.CollaborativeConfig{
		MinUserRatings: r.Collaborative.MinUserRatings,
		Neighbors:      r.Collaborative.Neighbors,
		MinSimilarity:  r.Collaborative.MinSimilarity,
		Shrinkage:      r.Collaborative.Shrinkage,
	}
	cfg.ColdStart.BayesianK = r.BayesianK
	cfg.Weights = recommend.WeightsConfig{
		TimeDecay:    r.TimeDecay,
		RecentWindow: r.RecentWindow,
	}
	cfg.Explain = recommend.ExplainConfig{
		SocialProofMin:      r.Explain.SocialProofMin,
		AggregateMinRatings: r.Explain.AggregateMinRatings,
		AggregateMinAvg:     r.Explain.AggregateMinAvg,
		TrendingMin:         r.Explain.TrendingMin,
		TrendingWindow:      r.Explain.TrendingWindow,
	}
	cfg.Limits = recommend.LimitsConfig{
		DefaultTopN: r.DefaultTopN,
		MaxTopN:     r.MaxTopN,
	}
	cfg.NumWorkers = r.NumWorkers

	return cfg
}

// Load loads configuration from defaults, the optional config file and the
// environment. See LoadWithKoanf.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
