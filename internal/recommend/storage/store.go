// Cinematch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/cinematch/internal/metrics"
	"github.com/tomtom215/cinematch/internal/models"
)

// Key prefixes. Components are separated by a NUL byte, which entity ids
// cannot contain.
const (
	movieKeyPrefix  = "movie\x00"
	ratingKeyPrefix = "rating\x00"
	fitKeyPrefix    = "fit\x00"
	keySeparator    = "\x00"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("storage: not found")

// Options configures how the underlying BadgerDB is opened.
type Options struct {
	// Dir is the data directory. Ignored when InMemory is set.
	Dir string

	// InMemory keeps all data in memory. Used by tests and ephemeral runs.
	InMemory bool
}

// Store persists the movie catalog, ratings and fit history in BadgerDB.
// It satisfies the engine's data source contract through Movies and Ratings.
type Store struct {
	db     *badger.DB
	logger zerolog.Logger
	ownsDB bool
}

// Open opens (or creates) a BadgerDB according to opts.
func Open(opts Options, logger zerolog.Logger) (*Store, error) {
	if !opts.InMemory && opts.Dir == "" {
		return nil, errors.New("storage: dir is required unless in-memory")
	}

	bopts := badger.DefaultOptions(opts.Dir).
		WithInMemory(opts.InMemory).
		WithLogger(nil)
	if opts.InMemory {
		bopts = bopts.WithDir("").WithValueDir("")
	}

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}

	s := New(db, logger)
	s.ownsDB = true
	return s, nil
}

// New wraps an already opened BadgerDB. The caller keeps ownership of db.
func New(db *badger.DB, logger zerolog.Logger) *Store {
	return &Store{
		db:     db,
		logger: logger.With().Str("component", "store").Logger(),
	}
}

// Close closes the database if the store opened it.
func (s *Store) Close() error {
	if !s.ownsDB {
		return nil
	}
	return s.db.Close()
}

func movieKey(id string) []byte {
	return []byte(movieKeyPrefix + id)
}

func ratingKey(userID, movieID string) []byte {
	return []byte(ratingKeyPrefix + userID + keySeparator + movieID)
}

// PutMovies upserts catalog rows keyed by movie id.
func (s *Store) PutMovies(ctx context.Context, movies []models.Movie) (err error) {
	start := time.Now()
	defer func() { metrics.RecordStoreOperation("put_movies", time.Since(start), err) }()

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()

	for i := range movies {
		if i%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		data, err := json.Marshal(&movies[i])
		if err != nil {
			return fmt.Errorf("marshal movie %s: %w", movies[i].ID, err)
		}
		if err := wb.Set(movieKey(movies[i].ID), data); err != nil {
			return fmt.Errorf("set movie %s: %w", movies[i].ID, err)
		}
	}

	if err := wb.Flush(); err != nil {
		return fmt.Errorf("flush movies: %w", err)
	}
	return nil
}

// PutRatings bulk-writes ratings keyed by (user, movie). Duplicates within
// the batch are collapsed with models.DedupeRatings first; the surviving
// row overwrites any stored rating for the same pair.
func (s *Store) PutRatings(ctx context.Context, ratings []models.Rating) (err error) {
	start := time.Now()
	defer func() { metrics.RecordStoreOperation("put_ratings", time.Since(start), err) }()

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()

	for i, r := range models.DedupeRatings(ratings) {
		if i%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		data, err := json.Marshal(&r)
		if err != nil {
			return fmt.Errorf("marshal rating %s/%s: %w", r.UserID, r.MovieID, err)
		}
		if err := wb.Set(ratingKey(r.UserID, r.MovieID), data); err != nil {
			return fmt.Errorf("set rating %s/%s: %w", r.UserID, r.MovieID, err)
		}
	}

	if err := wb.Flush(); err != nil {
		return fmt.Errorf("flush ratings: %w", err)
	}
	return nil
}

// AddRating stores a single rating. An existing rating for the same pair is
// replaced unless it carries a later timestamp. It reports whether the
// stored value changed.
func (s *Store) AddRating(ctx context.Context, r models.Rating) (updated bool, err error) {
	start := time.Now()
	defer func() { metrics.RecordStoreOperation("add_rating", time.Since(start), err) }()

	if err := ctx.Err(); err != nil {
		return false, err
	}

	data, err := json.Marshal(&r)
	if err != nil {
		return false, fmt.Errorf("marshal rating: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		key := ratingKey(r.UserID, r.MovieID)

		item, err := txn.Get(key)
		switch {
		case errors.Is(err, badger.ErrKeyNotFound):
		case err != nil:
			return fmt.Errorf("get rating: %w", err)
		default:
			var existing models.Rating
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &existing)
			}); err != nil {
				return fmt.Errorf("decode rating: %w", err)
			}
			if r.Timestamp.Before(existing.Timestamp) {
				return nil
			}
		}

		updated = true
		return txn.Set(key, data)
	})
	if err != nil {
		return false, err
	}
	return updated, nil
}

// Movie returns a single movie or ErrNotFound.
func (s *Store) Movie(ctx context.Context, id string) (*models.Movie, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var movie models.Movie

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(movieKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get movie: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &movie)
		})
	})
	if err != nil {
		return nil, err
	}
	return &movie, nil
}

// Movies returns the full catalog in key order.
func (s *Store) Movies(ctx context.Context) (movies []models.Movie, err error) {
	start := time.Now()
	defer func() { metrics.RecordStoreOperation("scan_movies", time.Since(start), err) }()

	err = scanPrefix(ctx, s.db, []byte(movieKeyPrefix), func(val []byte) error {
		var m models.Movie
		if err := json.Unmarshal(val, &m); err != nil {
			return fmt.Errorf("decode movie: %w", err)
		}
		movies = append(movies, m)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return movies, nil
}

// Ratings returns every stored rating in (user, movie) key order.
func (s *Store) Ratings(ctx context.Context) (ratings []models.Rating, err error) {
	start := time.Now()
	defer func() { metrics.RecordStoreOperation("scan_ratings", time.Since(start), err) }()

	err = scanPrefix(ctx, s.db, []byte(ratingKeyPrefix), func(val []byte) error {
		var r models.Rating
		if err := json.Unmarshal(val, &r); err != nil {
			return fmt.Errorf("decode rating: %w", err)
		}
		ratings = append(ratings, r)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ratings, nil
}

// Counts returns the number of stored movies and ratings without decoding
// values.
func (s *Store) Counts(ctx context.Context) (movies, ratings int, err error) {
	err = s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for _, p := range []struct {
			prefix []byte
			n      *int
		}{
			{[]byte(movieKeyPrefix), &movies},
			{[]byte(ratingKeyPrefix), &ratings},
		} {
			for it.Seek(p.prefix); it.ValidForPrefix(p.prefix); it.Next() {
				*p.n++
			}
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		return nil
	})
	return movies, ratings, err
}

// Empty reports whether the store holds no movies.
func (s *Store) Empty(ctx context.Context) (bool, error) {
	movies, _, err := s.Counts(ctx)
	if err != nil {
		return false, err
	}
	return movies == 0, nil
}

// Seed writes movies and ratings only when the store is empty. It reports
// whether anything was written.
func (s *Store) Seed(ctx context.Context, movies []models.Movie, ratings []models.Rating) (bool, error) {
	empty, err := s.Empty(ctx)
	if err != nil {
		return false, fmt.Errorf("check store: %w", err)
	}
	if !empty {
		return false, nil
	}

	if err := s.PutMovies(ctx, movies); err != nil {
		return false, err
	}
	if err := s.PutRatings(ctx, ratings); err != nil {
		return false, err
	}

	s.logger.Info().
		Int("movies", len(movies)).
		Int("ratings", len(ratings)).
		Msg("Seeded store")
	return true, nil
}

// DefaultGCDiscardRatio is the value log discard ratio used by RunGC.
const DefaultGCDiscardRatio = 0.5

// RunGC reclaims value log space until badger reports nothing left to
// rewrite. In-memory stores have no value log and return nil.
func (s *Store) RunGC(discardRatio float64) (err error) {
	start := time.Now()
	defer func() { metrics.RecordStoreOperation("gc", time.Since(start), err) }()

	if discardRatio <= 0 || discardRatio >= 1 {
		discardRatio = DefaultGCDiscardRatio
	}

	for {
		err := s.db.RunValueLogGC(discardRatio)
		if errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrGCInMemoryMode) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("run value log gc: %w", err)
		}
	}
}

// scanPrefix iterates values under prefix in key order.
func scanPrefix(ctx context.Context, db *badger.DB, prefix []byte, fn func(val []byte) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		n := 0
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if n%1000 == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}
			n++
			if err := it.Item().Value(fn); err != nil {
				return err
			}
		}
		return nil
	})
}
