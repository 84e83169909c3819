// Cinematch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package dataset

import (
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/cinematch/internal/models"
)

// Source names.
const (
	SourceSample = "sample"
	SourceFiles  = "files"
)

// Dataset is a movie catalog and its ratings.
type Dataset struct {
	Movies  []models.Movie
	Ratings []models.Rating
	Source  string
}

// LoadStats holds statistics about one table load.
type LoadStats struct {
	// Table is "movies" or "ratings".
	Table string `json:"table"`

	// Path is the file the rows were read from.
	Path string `json:"path,omitempty"`

	// Processed is the number of data rows read (including skipped).
	Processed int64 `json:"processed"`

	// Loaded is the number of rows converted successfully.
	Loaded int64 `json:"loaded"`

	// Skipped is the number of rows dropped for missing or malformed values.
	Skipped int64 `json:"skipped"`

	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

// Duration returns the duration of the load.
func (s *LoadStats) Duration() time.Duration {
	if s.EndTime.IsZero() {
		return time.Since(s.StartTime)
	}
	return s.EndTime.Sub(s.StartTime)
}

// MissingColumnsError is returned when a table lacks required columns.
type MissingColumnsError struct {
	Table   string
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("%s table missing required columns: %s", e.Table, strings.Join(e.Columns, ", "))
}
