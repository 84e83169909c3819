// Cinematch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

/*
Package main is the entry point for the Cinematch server.

Cinematch serves hybrid movie recommendations that blend content similarity,
matrix factorization and user neighborhoods, with a Bayesian popularity list
for cold-start users.

# Application Architecture

The server runs under a Suture v4 supervisor tree:

	RootSupervisor ("cinematch")
	├── DataSupervisor ("data-layer")
	│   ├── Refit service (startup, scheduled and manual fits)
	│   └── Store maintenance (badger value log GC, on-disk stores only)
	└── APISupervisor ("api-layer")
	    └── HTTP Server (chi router, /api/v1)

Startup order:

 1. Configuration: Koanf v2 with defaults, config.yaml and environment variables
 2. Logging: zerolog with JSON or console output
 3. Store: BadgerDB, seeded once from dataset files or the built-in sample
 4. Engine: configured from the recommend section, backed by the store
 5. Supervisor tree: refit, maintenance and HTTP services

# Configuration

Common environment variables:

	HTTP_HOST, HTTP_PORT          listen address (default 0.0.0.0:8080)
	LOG_LEVEL, LOG_FORMAT         zerolog level and json/console output
	MOVIES_PATH, RATINGS_PATH     CSV or JSON dataset files
	BADGER_DIR, BADGER_IN_MEMORY  store location
	SEED_SAMPLE                   seed an empty store with the sample dataset
	FIT_INTERVAL, FIT_TIMEOUT     periodic refit schedule and bound
	CORS_ORIGINS                  comma-separated allowed origins

# Signal Handling

SIGINT and SIGTERM cancel the root context. The HTTP server drains within
HTTP_SHUTDOWN_TIMEOUT, running fits are canceled, and the store is closed
after the tree stops.

# Example Usage

	export MOVIES_PATH=/data/movies.csv
	export RATINGS_PATH=/data/ratings.csv
	./cinematch

	curl -X POST localhost:8080/api/v1/recommendations \
	  -d '{"user_id":"u1","top_n":5}'
*/
package main
