// Cinematch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/cinematch/internal/logging"
	"github.com/tomtom215/cinematch/internal/metrics"
	"github.com/tomtom215/cinematch/internal/recommend"
	"github.com/tomtom215/cinematch/internal/recommend/storage"
)

// Errors returned by RefitService.Trigger.
var (
	// ErrRefitThrottled is returned when manual refits arrive faster than
	// the configured minimum interval.
	ErrRefitThrottled = errors.New("refit throttled")

	// ErrRefitPending is returned when a manual refit is already queued.
	ErrRefitPending = errors.New("refit already pending")
)

// Refit trigger reasons, logged and stored with each attempt.
const (
	ReasonStartup   = "startup"
	ReasonScheduled = "scheduled"
	ReasonManual    = "manual"
)

// Fitter is the part of the engine the refit loop drives.
type Fitter interface {
	FitFromSource(ctx context.Context) error
	Status() recommend.Status
}

// FitRecorder persists fit history. *storage.Store satisfies it.
type FitRecorder interface {
	RecordFit(ctx context.Context, rec *storage.FitRecord) error
	PruneFitHistory(ctx context.Context, keep int) (int, error)
}

// RefitConfig holds configuration for the refit service.
type RefitConfig struct {
	// FitOnStartup fits as soon as the service starts.
	FitOnStartup bool

	// Interval between scheduled refits. Zero disables the schedule.
	Interval time.Duration

	// Timeout bounds a single fit.
	Timeout time.Duration

	// HistoryLimit is the number of fit records kept. Zero keeps all.
	HistoryLimit int

	// ManualInterval is the minimum spacing of manual triggers.
	ManualInterval time.Duration

	// BreakerMaxFailures is the number of consecutive failed fits that
	// opens the breaker.
	BreakerMaxFailures uint32

	// BreakerTimeout is how long the breaker stays open before a trial fit.
	BreakerTimeout time.Duration
}

// DefaultRefitConfig returns the defaults used when fields are zero.
func DefaultRefitConfig() RefitConfig {
	return RefitConfig{
		FitOnStartup:       true,
		Interval:           time.Hour,
		Timeout:            10 * time.Minute,
		HistoryLimit:       50,
		ManualInterval:     time.Minute,
		BreakerMaxFailures: 3,
		BreakerTimeout:     5 * time.Minute,
	}
}

// RefitService keeps the engine's model fresh under suture supervision.
//
// It fits on startup, on a ticker, and on manual triggers. Fits run through
// a circuit breaker so a failing data source is not hit on every tick, and
// every attempt is written to the fit history when a recorder is set.
type RefitService struct {
	fitter   Fitter
	recorder FitRecorder
	config   RefitConfig
	logger   zerolog.Logger
	name     string

	breaker  *gobreaker.CircuitBreaker[struct{}]
	limiter  *rate.Limiter
	triggers chan struct{}
}

// NewRefitService creates a refit service. recorder may be nil.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewRefitService(fitter Fitter, recorder FitRecorder, cfg RefitConfig, logger zerolog.Logger) *RefitService {
	def := DefaultRefitConfig()
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.ManualInterval <= 0 {
		cfg.ManualInterval = def.ManualInterval
	}
	if cfg.BreakerMaxFailures == 0 {
		cfg.BreakerMaxFailures = def.BreakerMaxFailures
	}
	if cfg.BreakerTimeout <= 0 {
		cfg.BreakerTimeout = def.BreakerTimeout
	}

	s := &RefitService{
		fitter:   fitter,
		recorder: recorder,
		config:   cfg,
		logger:   logger.With().Str("service", "refit").Logger(),
		name:     "refit-service",
		limiter:  rate.NewLimiter(rate.Every(cfg.ManualInterval), 1),
		triggers: make(chan struct{}, 1),
	}

	s.breaker = gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        "refit",
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerMaxFailures
		},
		IsSuccessful: func(err error) bool {
			// Bad input is not a data source outage.
			return err == nil || recommend.IsInvalidInput(err) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.RecordCircuitBreakerTransition(name, from.String(), to.String())
			s.logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Refit circuit breaker state changed")
		},
	})

	return s
}

// Trigger queues a manual refit. It never blocks.
func (s *RefitService) Trigger() error {
	if !s.limiter.Allow() {
		return ErrRefitThrottled
	}
	select {
	case s.triggers <- struct{}{}:
		return nil
	default:
		return ErrRefitPending
	}
}

// BreakerState reports the breaker state ("closed", "half-open", "open").
func (s *RefitService) BreakerState() string {
	return s.breaker.State().String()
}

// Serve implements suture.Service.
func (s *RefitService) Serve(ctx context.Context) error {
	s.logger.Info().
		Bool("fit_on_startup", s.config.FitOnStartup).
		Dur("interval", s.config.Interval).
		Msg("Refit service starting")

	if s.config.FitOnStartup {
		s.refit(ctx, ReasonStartup)
	}

	var tick <-chan time.Time
	if s.config.Interval > 0 {
		ticker := time.NewTicker(s.config.Interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("Refit service shutting down")
			return ctx.Err()
		case <-tick:
			s.refit(ctx, ReasonScheduled)
		case <-s.triggers:
			s.refit(ctx, ReasonManual)
		}
	}
}

// refit runs one fit attempt. Failures are logged and recorded; they never
// stop the loop.
func (s *RefitService) refit(ctx context.Context, reason string) {
	fitID := uuid.New().String()
	ctx = logging.ContextWithFitID(ctx, fitID)
	logger := s.logger.With().Str("fit_id", fitID).Str("reason", reason).Logger()

	fitCtx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	start := time.Now()
	logger.Info().Msg("Starting model fit")

	_, err := s.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, s.fitter.FitFromSource(fitCtx)
	})
	duration := time.Since(start)

	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.RecordCircuitBreakerResult("refit", "rejected")
		logger.Warn().Err(err).Msg("Model fit skipped, circuit breaker open")
		return
	case err != nil:
		metrics.RecordCircuitBreakerResult("refit", "failure")
		logger.Error().Err(err).Dur("duration", duration).Msg("Model fit failed")
	default:
		metrics.RecordCircuitBreakerResult("refit", "success")
		logger.Info().Dur("duration", duration).Msg("Model fit complete")
	}

	// Record with the parent context: a timed out fit is still history.
	if recErr := s.record(ctx, fitID, start, duration, err); recErr != nil {
		logger.Warn().Err(recErr).Msg("Failed to record fit history")
	}
}

func (s *RefitService) record(ctx context.Context, id string, start time.Time, duration time.Duration, fitErr error) error {
	if s.recorder == nil {
		return nil
	}

	status := s.fitter.Status()
	rec := &storage.FitRecord{
		ID:           id,
		ModelVersion: status.ModelVersion,
		StartedAt:    start,
		DurationMS:   duration.Milliseconds(),
		Status:       storage.FitStatusSuccess,
	}
	if fitErr != nil {
		rec.Status = storage.FitStatusFailed
		rec.Error = fitErr.Error()
	} else {
		rec.Movies = status.Movies
		rec.Users = status.Users
		rec.Ratings = status.Ratings
		rec.RMSE = status.RMSE
	}

	if err := s.recorder.RecordFit(ctx, rec); err != nil {
		return fmt.Errorf("record fit: %w", err)
	}
	if s.config.HistoryLimit > 0 {
		if _, err := s.recorder.PruneFitHistory(ctx, s.config.HistoryLimit); err != nil {
			return fmt.Errorf("prune fit history: %w", err)
		}
	}
	return nil
}

// String returns the service name for logging.
func (s *RefitService) String() string {
	return s.name
}
