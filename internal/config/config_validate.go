// Cinematch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package config

import (
	"fmt"
	"strings"

	"github.com/tomtom215/cinematch/internal/logging"
)

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateData(); err != nil {
		return err
	}
	if err := c.validateRefit(); err != nil {
		return err
	}
	if err := c.validateAPI(); err != nil {
		return err
	}

	// Engine knobs are validated by the engine's own rules.
	if err := c.ToEngineConfig().Validate(); err != nil {
		return fmt.Errorf("recommend: %w", err)
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("HTTP_READ_TIMEOUT and HTTP_WRITE_TIMEOUT must be positive")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("HTTP_SHUTDOWN_TIMEOUT must be positive, got %v", c.Server.ShutdownTimeout)
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !logging.ValidFormat(c.Logging.Format) {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}

func (c *Config) validateData() error {
	if (c.Data.MoviesPath == "") != (c.Data.RatingsPath == "") {
		return fmt.Errorf("MOVIES_PATH and RATINGS_PATH must be set together")
	}
	if !c.Data.InMemory && strings.TrimSpace(c.Data.BadgerDir) == "" {
		return fmt.Errorf("BADGER_DIR is required unless BADGER_IN_MEMORY=true")
	}
	if c.Data.GCInterval < 0 {
		return fmt.Errorf("BADGER_GC_INTERVAL must not be negative, got %v", c.Data.GCInterval)
	}
	if c.Data.GCDiscardRatio <= 0 || c.Data.GCDiscardRatio >= 1 {
		return fmt.Errorf("BADGER_GC_RATIO must be between 0 and 1 (exclusive), got %v", c.Data.GCDiscardRatio)
	}
	return nil
}

func (c *Config) validateRefit() error {
	r := c.Recommend
	if r.FitInterval < 0 {
		return fmt.Errorf("FIT_INTERVAL must be non-negative, got %v", r.FitInterval)
	}
	if r.FitTimeout <= 0 {
		return fmt.Errorf("FIT_TIMEOUT must be positive, got %v", r.FitTimeout)
	}
	if r.FitHistory < 1 {
		return fmt.Errorf("FIT_HISTORY must be positive, got %d", r.FitHistory)
	}
	if r.ManualFitInterval < 0 {
		return fmt.Errorf("MANUAL_FIT_INTERVAL must be non-negative, got %v", r.ManualFitInterval)
	}
	if r.Breaker.MaxFailures < 1 {
		return fmt.Errorf("FIT_BREAKER_FAILURES must be positive, got %d", r.Breaker.MaxFailures)
	}
	if r.Breaker.OpenTimeout <= 0 {
		return fmt.Errorf("FIT_BREAKER_TIMEOUT must be positive, got %v", r.Breaker.OpenTimeout)
	}
	return nil
}

func (c *Config) validateAPI() error {
	if c.API.RateLimitDisabled {
		return c.validateBodyLimit()
	}
	if c.API.RateLimitRequests < 1 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be positive, got %d", c.API.RateLimitRequests)
	}
	if c.API.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive, got %v", c.API.RateLimitWindow)
	}
	return c.validateBodyLimit()
}

func (c *Config) validateBodyLimit() error {
	if c.API.MaxBodyBytes < 1 {
		return fmt.Errorf("API_MAX_BODY_BYTES must be positive, got %d", c.API.MaxBodyBytes)
	}
	return nil
}

// HasDatasetFiles reports whether the store should be seeded from files.
func (c *Config) HasDatasetFiles() bool {
	return c.Data.MoviesPath != "" && c.Data.RatingsPath != ""
}

// HasWildcardCORS reports whether any origin is allowed.
func (c *Config) HasWildcardCORS() bool {
	for _, origin := range c.API.CORSOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}
