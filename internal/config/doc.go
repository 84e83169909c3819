// Cinematch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

/*
Package config loads Cinematch configuration with Koanf v2.

# Sources

Configuration is layered, highest priority last:

 1. Built-in defaults (defaultConfig)
 2. YAML file from CONFIG_PATH, or the first of DefaultConfigPaths that exists
 3. Environment variables listed in envMappings

Comma-separated environment values are split for slice fields such as
CORS_ORIGINS.

# Sections

  - server: HTTP listener and timeouts (HTTP_PORT, HTTP_READ_TIMEOUT, ...)
  - logging: zerolog level and format (LOG_LEVEL, LOG_FORMAT, LOG_CALLER)
  - data: dataset files and the BadgerDB store (MOVIES_PATH, RATINGS_PATH,
    BADGER_DIR, BADGER_IN_MEMORY, SEED_SAMPLE)
  - recommend: refit scheduling (FIT_INTERVAL, FIT_TIMEOUT, ...) and every
    engine knob (RECOMMEND_MF_FACTORS, RECOMMEND_TIME_DECAY, ...)
  - api: CORS and rate limiting (CORS_ORIGINS, RATE_LIMIT_REQUESTS, ...)

# Example

	# config.yaml
	data:
	  movies_path: /data/movies.csv
	  ratings_path: /data/ratings.csv
	recommend:
	  fit_interval: 30m
	  factorization:
	    factors: 64
	    iterations: 25
	  time_decay: true

# Usage

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}
	engine, err := recommend.NewEngine(cfg.ToEngineConfig(), logger)

Validate rejects inconsistent settings before anything starts, including the
engine settings checked by recommend.Config.Validate.
*/
package config
