// Cinematch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/tomtom215/cinematch/internal/recommend/algorithms"
)

// DefaultConfigPaths lists the paths where config files are searched in
// order of priority. The first file found is used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/cinematch/config.yaml",
	"/etc/cinematch/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns the lowest-priority configuration layer.
func defaultConfig() *Config {
	mf := algorithms.DefaultMFConfig()

	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Data: DataConfig{
			BadgerDir:      "/data/cinematch",
			SeedSample:     true,
			GCInterval:     10 * time.Minute,
			GCDiscardRatio: 0.5,
		},
		Recommend: RecommendConfig{
			FitOnStartup:      true,
			FitInterval:       time.Hour,
			FitTimeout:        10 * time.Minute,
			FitHistory:        50,
			ManualFitInterval: time.Minute,
			Breaker: BreakerConfig{
				MaxFailures: 3,
				OpenTimeout: 5 * time.Minute,
			},
			Content: ContentConfig{
				Vectorizer:  algorithms.VectorizerTFIDF,
				MaxFeatures: algorithms.DefaultMaxFeatures,
				MaxCast:     algorithms.DefaultMaxCast,
			},
			Factorization: FactorizationConfig{
				Factors:            mf.NumFactors,
				Iterations:         mf.NumIterations,
				Regularization:     mf.Regularization,
				BiasRegularization: mf.BiasRegularization,
				Tolerance:          mf.Tolerance,
				Seed:               mf.Seed,
			},
			Collaborative: CollaborativeConfig{
				MinUserRatings: 3,
				Neighbors:      20,
			},
			Explain: ExplainConfig{
				SocialProofMin:      10,
				AggregateMinRatings: 20,
				AggregateMinAvg:     4.0,
				TrendingMin:         50,
				TrendingWindow:      30 * 24 * time.Hour,
			},
			BayesianK:    algorithms.DefaultBayesianK,
			RecentWindow: 30 * 24 * time.Hour,
			DefaultTopN:  10,
			MaxTopN:      100,
			NumWorkers:   4,
		},
		API: APIConfig{
			CORSOrigins:       []string{"*"},
			RateLimitRequests: 100,
			RateLimitWindow:   time.Minute,
			MaxBodyBytes:      1 << 20,
		},
	}
}

// LoadWithKoanf loads configuration with layered sources:
//  1. Defaults
//  2. Optional YAML config file (CONFIG_PATH or DefaultConfigPaths)
//  3. Environment variables listed in envMappings
//
// The result is validated before it is returned.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first existing config file, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths are parsed from comma-separated strings when set via env.
var sliceConfigPaths = []string{
	"api.cors_origins",
}

// processSliceFields converts comma-separated env values to slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) == 0 {
			continue
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps lower-cased environment variable names to koanf paths.
// Variables not listed here are ignored.
var envMappings = map[string]string{
	// Server
	"http_host":             "server.host",
	"http_port":             "server.port",
	"http_read_timeout":     "server.read_timeout",
	"http_write_timeout":    "server.write_timeout",
	"http_idle_timeout":     "server.idle_timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Data
	"movies_path":        "data.movies_path",
	"ratings_path":       "data.ratings_path",
	"badger_dir":         "data.badger_dir",
	"badger_in_memory":   "data.in_memory",
	"badger_gc_interval": "data.gc_interval",
	"badger_gc_ratio":    "data.gc_discard_ratio",
	"seed_sample":        "data.seed_sample",

	// Refit scheduling
	"fit_on_startup":       "recommend.fit_on_startup",
	"fit_interval":         "recommend.fit_interval",
	"fit_timeout":          "recommend.fit_timeout",
	"fit_history":          "recommend.fit_history",
	"manual_fit_interval":  "recommend.manual_fit_interval",
	"fit_breaker_failures": "recommend.breaker.max_failures",
	"fit_breaker_timeout":  "recommend.breaker.open_timeout",

	// Content
	"recommend_vectorizer":   "recommend.content.vectorizer",
	"recommend_max_features": "recommend.content.max_features",
	"recommend_max_cast":     "recommend.content.max_cast",

	// Factorization
	"recommend_mf_factors":             "recommend.factorization.factors",
	"recommend_mf_iterations":          "recommend.factorization.iterations",
	"recommend_mf_regularization":      "recommend.factorization.regularization",
	"recommend_mf_bias_regularization": "recommend.factorization.bias_regularization",
	"recommend_mf_tolerance":           "recommend.factorization.tolerance",
	"recommend_mf_seed":                "recommend.factorization.seed",

	// Collaborative
	"recommend_min_user_ratings": "recommend.collaborative.min_user_ratings",
	"recommend_knn_neighbors":    "recommend.collaborative.neighbors",
	"recommend_knn_min_sim":      "recommend.collaborative.min_similarity",
	"recommend_knn_shrinkage":    "recommend.collaborative.shrinkage",

	// Explanations
	"recommend_social_proof_min":      "recommend.explain.social_proof_min",
	"recommend_aggregate_min_ratings": "recommend.explain.aggregate_min_ratings",
	"recommend_aggregate_min_avg":     "recommend.explain.aggregate_min_avg",
	"recommend_trending_min":          "recommend.explain.trending_min",
	"recommend_trending_window":       "recommend.explain.trending_window",

	// Engine
	"recommend_bayesian_k":    "recommend.bayesian_k",
	"recommend_time_decay":    "recommend.time_decay",
	"recommend_recent_window": "recommend.recent_window",
	"recommend_default_top_n": "recommend.default_top_n",
	"recommend_max_top_n":     "recommend.max_top_n",
	"recommend_workers":       "recommend.num_workers",

	// API
	"cors_origins":        "api.cors_origins",
	"rate_limit_requests": "api.rate_limit_requests",
	"rate_limit_window":   "api.rate_limit_window",
	"disable_rate_limit":  "api.rate_limit_disabled",
	"api_max_body_bytes":  "api.max_body_bytes",
}

// envTransformFunc maps an environment variable name to a koanf path.
// Unmapped names return "" so koanf skips them.
//
// Examples:
//   - HTTP_PORT -> server.port
//   - RECOMMEND_MF_FACTORS -> recommend.factorization.factors
//   - CORS_ORIGINS -> api.cors_origins
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
