// Cinematch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package recommend

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFitted is returned by queries before the first successful fit.
	ErrNotFitted = errors.New("recommend: engine not fitted")

	// ErrInvalidTopN is returned when a request asks for fewer than one result.
	ErrInvalidTopN = errors.New("recommend: top_n must be at least 1")

	// ErrFitInProgress is returned when a fit is requested while another runs.
	ErrFitInProgress = errors.New("recommend: fit already in progress")

	// ErrNoDataSource is returned by FitFromSource when no source is attached.
	ErrNoDataSource = errors.New("recommend: data source not set")
)

// SchemaError reports a movie or rating row with missing or malformed
// required fields. The previously active model is left untouched.
type SchemaError struct {
	// Table is "movies" or "ratings".
	Table string
	// Row is the zero-based index of the first offending row.
	Row int
	// Fields lists the offending fields.
	Fields []string
	Err    error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema error in %s row %d (%s): %v",
		e.Table, e.Row, strings.Join(e.Fields, ", "), e.Err)
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

// InsufficientDataError reports an empty movie or rating table.
type InsufficientDataError struct {
	Table string
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data: %s table is empty", e.Table)
}

// IsInvalidInput reports whether err is caused by the fit input rather than
// the engine.
func IsInvalidInput(err error) bool {
	var schemaErr *SchemaError
	var dataErr *InsufficientDataError
	return errors.As(err, &schemaErr) || errors.As(err, &dataErr)
}
