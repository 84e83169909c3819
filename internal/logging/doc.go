// Cinematch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

// Package logging provides the process-wide zerolog logger for Cinematch.
//
// # Quick Start
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//
//	logging.Info().Int("movies", n).Msg("Catalog loaded")
//	logging.Ctx(ctx).Warn().Err(err).Msg("Refit failed")
//
// Components take a zerolog.Logger in their constructors rather than using
// the global helpers directly:
//
//	engine, err := recommend.NewEngine(cfg, logging.WithComponent("recommend"))
//
// # Configuration
//
// Level and format come from the application config (logging.level,
// logging.format; LOG_LEVEL and LOG_FORMAT in the environment):
//
//	trace, debug, info (default), warn, error, fatal, panic, disabled
//	json (default) or console
//
// # Request and Fit Correlation
//
// HTTP middleware stores a request id in the context, and the refit service
// stores a fit id for every fit attempt. Ctx adds whichever is present:
//
//	ctx = logging.ContextWithNewRequestID(ctx)
//	logging.Ctx(ctx).Info().Msg("Serving recommendations")
//	// {"level":"info","request_id":"...","message":"Serving recommendations"}
//
// # Suture Integration
//
// suture's event hook expects an slog.Logger. NewSlogLogger returns one that
// writes through zerolog so supervisor events share the same output:
//
//	handler := &sutureslog.Handler{Logger: logging.NewSlogLogger()}
//
// # Tests
//
// NewTestLogger writes JSON lines to any writer for assertions:
//
//	var buf bytes.Buffer
//	logger := logging.NewTestLogger(&buf)
package logging
