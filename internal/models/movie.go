// Cinematch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package models

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

// StringList is an ordered list of strings that accepts both a JSON array and
// a comma-separated string on input. Both forms normalize to the same value:
// entries are trimmed and empty entries are dropped.
type StringList []string

// ParseStringList splits a comma-separated string into a normalized StringList.
func ParseStringList(s string) StringList {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	return NormalizeStrings(parts)
}

// NormalizeStrings trims every entry and drops empty ones, keeping order.
func NormalizeStrings(values []string) StringList {
	out := make(StringList, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// UnmarshalJSON implements json.Unmarshaler.
func (l *StringList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decode string list: %w", err)
		}
		*l = ParseStringList(s)
		return nil
	}

	var values []string
	if err := json.Unmarshal(data, &values); err != nil {
		return fmt.Errorf("decode string list: %w", err)
	}
	*l = NormalizeStrings(values)
	return nil
}

// String joins the list with ", ".
func (l StringList) String() string {
	return strings.Join(l, ", ")
}

// Movie is one catalog entry. It is treated as immutable for the duration of a
// fit cycle.
type Movie struct {
	ID       string     `json:"movie_id" validate:"required,entityid"`
	Title    string     `json:"title" validate:"required"`
	Genres   StringList `json:"genres,omitempty"`
	Director string     `json:"director,omitempty"`
	Cast     StringList `json:"cast,omitempty"`
	Overview string     `json:"overview,omitempty"`
	Tags     StringList `json:"tags,omitempty"`

	// Optional numeric attributes. Nil means absent, not zero.
	Year        *int     `json:"year,omitempty" validate:"omitempty,gte=1870,lte=2200"`
	Runtime     *int     `json:"runtime,omitempty" validate:"omitempty,gte=0"`
	VoteAverage *float64 `json:"vote_average,omitempty" validate:"omitempty,gte=0,lte=10"`
	VoteCount   *int     `json:"vote_count,omitempty" validate:"omitempty,gte=0"`
}

// HasGenre reports whether any of the movie's genres contains g, ignoring case.
func (m *Movie) HasGenre(g string) bool {
	g = strings.ToLower(strings.TrimSpace(g))
	if g == "" {
		return false
	}
	for _, genre := range m.Genres {
		if strings.Contains(strings.ToLower(genre), g) {
			return true
		}
	}
	return false
}
