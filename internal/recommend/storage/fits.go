// Cinematch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/cinematch/internal/metrics"
)

// Fit outcomes stored in FitRecord.Status.
const (
	FitStatusSuccess = "success"
	FitStatusFailed  = "failed"
)

// DefaultFitHistoryLimit is used by FitHistory when limit <= 0.
const DefaultFitHistoryLimit = 20

// FitRecord describes one model fit attempt.
type FitRecord struct {
	// ID uniquely identifies the attempt.
	ID string `json:"id"`

	// ModelVersion is the engine version produced by a successful fit,
	// or the version still being served after a failure.
	ModelVersion int64 `json:"model_version"`

	StartedAt  time.Time `json:"started_at"`
	DurationMS int64     `json:"duration_ms"`
	Status     string    `json:"status"`

	Movies  int     `json:"movies"`
	Users   int     `json:"users"`
	Ratings int     `json:"ratings"`
	RMSE    float64 `json:"training_rmse,omitempty"`

	// Error is the failure message for failed fits.
	Error string `json:"error,omitempty"`
}

// fitKey orders records by start time so a reverse scan yields newest first.
func fitKey(rec *FitRecord) []byte {
	return []byte(fmt.Sprintf("%s%020d%s%s", fitKeyPrefix, rec.StartedAt.UnixNano(), keySeparator, rec.ID))
}

// RecordFit appends a fit record. ID and StartedAt are filled in when empty.
func (s *Store) RecordFit(ctx context.Context, rec *FitRecord) (err error) {
	start := time.Now()
	defer func() { metrics.RecordStoreOperation("record_fit", time.Since(start), err) }()

	if err := ctx.Err(); err != nil {
		return err
	}
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.StartedAt.IsZero() {
		rec.StartedAt = time.Now()
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal fit record: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(fitKey(rec), data)
	})
}

// FitHistory returns up to limit fit records, newest first.
func (s *Store) FitHistory(ctx context.Context, limit int) ([]FitRecord, error) {
	if limit <= 0 {
		limit = DefaultFitHistoryLimit
	}

	records := make([]FitRecord, 0, limit)
	prefix := []byte(fitKeyPrefix)

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		// Reverse iteration starts from the largest key under the prefix.
		seek := append(append([]byte{}, prefix...), 0xFF)
		for it.Seek(seek); it.ValidForPrefix(prefix) && len(records) < limit; it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var rec FitRecord
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			}); err != nil {
				return fmt.Errorf("decode fit record: %w", err)
			}
			records = append(records, rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// PruneFitHistory keeps the newest keep records and deletes the rest.
// It returns the number of deleted records.
func (s *Store) PruneFitHistory(ctx context.Context, keep int) (int, error) {
	prefix := []byte(fitKeyPrefix)
	var stale [][]byte

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.PrefetchValues = false
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		seen := 0
		seek := append(append([]byte{}, prefix...), 0xFF)
		for it.Seek(seek); it.ValidForPrefix(prefix); it.Next() {
			seen++
			if seen > keep {
				stale = append(stale, it.Item().KeyCopy(nil))
			}
		}
		return ctx.Err()
	})
	if err != nil {
		return 0, fmt.Errorf("scan fit history: %w", err)
	}
	if len(stale) == 0 {
		return 0, nil
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()
	for _, key := range stale {
		if err := wb.Delete(key); err != nil {
			return 0, fmt.Errorf("delete fit record: %w", err)
		}
	}
	if err := wb.Flush(); err != nil {
		return 0, fmt.Errorf("flush fit history: %w", err)
	}
	return len(stale), nil
}
