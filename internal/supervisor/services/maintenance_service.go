// Cinematch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// GarbageCollector reclaims storage space. *storage.Store satisfies it.
type GarbageCollector interface {
	RunGC(discardRatio float64) error
}

// StoreMaintenanceService periodically runs value log GC on the store.
type StoreMaintenanceService struct {
	gc           GarbageCollector
	interval     time.Duration
	discardRatio float64
	logger       zerolog.Logger
	name         string
}

// NewStoreMaintenanceService creates the maintenance loop. A non-positive
// interval falls back to 10 minutes.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewStoreMaintenanceService(gc GarbageCollector, interval time.Duration, discardRatio float64, logger zerolog.Logger) *StoreMaintenanceService {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &StoreMaintenanceService{
		gc:           gc,
		interval:     interval,
		discardRatio: discardRatio,
		logger:       logger.With().Str("service", "store-maintenance").Logger(),
		name:         "store-maintenance",
	}
}

// Serve implements suture.Service. GC errors are logged, not returned,
// so a transient failure does not count against the supervisor.
func (s *StoreMaintenanceService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			start := time.Now()
			if err := s.gc.RunGC(s.discardRatio); err != nil {
				s.logger.Warn().Err(err).Msg("Store GC failed")
				continue
			}
			s.logger.Debug().Dur("duration", time.Since(start)).Msg("Store GC complete")
		}
	}
}

// String returns the service name for logging.
func (s *StoreMaintenanceService) String() string {
	return s.name
}
