// Cinematch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package validation

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestGetValidator_Singleton(t *testing.T) {
	v1 := GetValidator()
	v2 := GetValidator()

	if v1 == nil {
		t.Fatal("GetValidator() returned nil")
	}
	if v1 != v2 {
		t.Error("GetValidator() should return the same singleton instance")
	}
}

type recommendRequest struct {
	UserID  string   `json:"user_id" validate:"omitempty,entityid"`
	TopN    int      `json:"top_n" validate:"min=1,max=100"`
	Genres  []string `json:"genre_preferences" validate:"max=3,dive,min=1,max=64"`
	Liked   []string `json:"liked_movies" validate:"dive,entityid"`
	Vector  string   `json:"vectorizer" validate:"omitempty,oneof=tfidf"`
	Ignored string   `json:"-" validate:"omitempty,max=1"`
}

func TestValidateStruct_Valid(t *testing.T) {
	tests := []struct {
		name  string
		input recommendRequest
	}{
		{
			name:  "all fields",
			input: recommendRequest{UserID: "u1", TopN: 10, Genres: []string{"Sci-Fi"}, Liked: []string{"m1", "m2"}, Vector: "tfidf"},
		},
		{
			name:  "anonymous request",
			input: recommendRequest{TopN: 1},
		},
		{
			name:  "boundary values",
			input: recommendRequest{UserID: strings.Repeat("u", MaxEntityIDLength), TopN: 100, Genres: []string{"a", "b", "c"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateStruct(&tt.input); err != nil {
				t.Errorf("ValidateStruct() error = %v", err)
			}
		})
	}
}

func TestValidateStruct_Invalid(t *testing.T) {
	tests := []struct {
		name       string
		input      recommendRequest
		wantFields []string
		wantTag    string
	}{
		{
			name:       "top_n zero",
			input:      recommendRequest{TopN: 0},
			wantFields: []string{"top_n"},
			wantTag:    "min",
		},
		{
			name:       "top_n too large",
			input:      recommendRequest{TopN: 101},
			wantFields: []string{"top_n"},
			wantTag:    "max",
		},
		{
			name:       "user id with surrounding whitespace",
			input:      recommendRequest{UserID: " u1", TopN: 5},
			wantFields: []string{"user_id"},
			wantTag:    "entityid",
		},
		{
			name:       "user id too long",
			input:      recommendRequest{UserID: strings.Repeat("u", MaxEntityIDLength+1), TopN: 5},
			wantFields: []string{"user_id"},
			wantTag:    "entityid",
		},
		{
			name:       "control character in liked movie",
			input:      recommendRequest{TopN: 5, Liked: []string{"m1", "m\x002"}},
			wantFields: []string{"liked_movies[1]"},
			wantTag:    "entityid",
		},
		{
			name:       "too many genres",
			input:      recommendRequest{TopN: 5, Genres: []string{"a", "b", "c", "d"}},
			wantFields: []string{"genre_preferences"},
			wantTag:    "max",
		},
		{
			name:       "unknown vectorizer",
			input:      recommendRequest{TopN: 5, Vector: "bert"},
			wantFields: []string{"vectorizer"},
			wantTag:    "oneof",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(&tt.input)
			if err == nil {
				t.Fatal("ValidateStruct() error = nil, want validation error")
			}
			if diff := cmp.Diff(tt.wantFields, err.Fields()); diff != "" {
				t.Errorf("Fields() mismatch (-want +got):\n%s", diff)
			}
			if got := err.Errors()[0].Tag(); got != tt.wantTag {
				t.Errorf("Tag() = %q, want %q", got, tt.wantTag)
			}
		})
	}
}

func TestValidateStruct_JSONFieldNames(t *testing.T) {
	type row struct {
		MovieID string  `json:"movie_id" validate:"required,entityid"`
		Value   float64 `json:"rating" validate:"gte=0.5,lte=5"`
		NoTag   string  `validate:"required"`
	}

	err := ValidateStruct(&row{Value: 7})
	if err == nil {
		t.Fatal("ValidateStruct() error = nil")
	}

	want := []string{"movie_id", "rating", "NoTag"}
	if diff := cmp.Diff(want, err.Fields()); diff != "" {
		t.Errorf("Fields() mismatch (-want +got):\n%s", diff)
	}
}

func TestValidateVar(t *testing.T) {
	if err := ValidateVar("movie_id", "m1", "required,entityid"); err != nil {
		t.Errorf("ValidateVar(m1) error = %v", err)
	}

	err := ValidateVar("movie_id", "", "required,entityid")
	if err == nil {
		t.Fatal("ValidateVar(\"\") error = nil")
	}
	if got := err.Error(); got != "movie_id is required" {
		t.Errorf("Error() = %q, want %q", got, "movie_id is required")
	}

	err = ValidateVar("top_n", 0, "min=1")
	if err == nil {
		t.Fatal("ValidateVar(0, min=1) error = nil")
	}
	if got := err.Error(); got != "top_n must be at least 1" {
		t.Errorf("Error() = %q, want %q", got, "top_n must be at least 1")
	}
}

func TestToAPIError_SingleError(t *testing.T) {
	err := ValidateStruct(&recommendRequest{TopN: 0})
	if err == nil {
		t.Fatal("expected validation error")
	}

	apiErr := err.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("Code = %q, want VALIDATION_ERROR", apiErr.Code)
	}
	if apiErr.Message != "top_n must be at least 1" {
		t.Errorf("Message = %q", apiErr.Message)
	}
	if apiErr.Details["field"] != "top_n" {
		t.Errorf("Details[field] = %v, want top_n", apiErr.Details["field"])
	}
}

func TestToAPIError_MultipleErrors(t *testing.T) {
	err := ValidateStruct(&recommendRequest{UserID: " x", TopN: 0})
	if err == nil {
		t.Fatal("expected validation error")
	}

	apiErr := err.ToAPIError()
	fields, ok := apiErr.Details["fields"].([]map[string]interface{})
	if !ok || len(fields) != 2 {
		t.Fatalf("Details[fields] = %v, want 2 entries", apiErr.Details["fields"])
	}
	for _, want := range []string{"user_id:", "top_n:"} {
		if !strings.Contains(apiErr.Message, want) {
			t.Errorf("Message = %q, want it to contain %q", apiErr.Message, want)
		}
	}
}

func TestErrorMessages(t *testing.T) {
	type msgs struct {
		Name   string   `json:"name" validate:"min=3"`
		Tags   []string `json:"tags" validate:"max=1"`
		Rating float64  `json:"rating" validate:"lte=5"`
	}

	err := ValidateStruct(&msgs{Name: "ab", Tags: []string{"a", "b"}, Rating: 6})
	if err == nil {
		t.Fatal("expected validation error")
	}

	want := []string{
		"name must be at least 3 characters",
		"tags must be at most 1 items",
		"rating must be less than or equal to 5",
	}
	got := make([]string, 0, len(err.Errors()))
	for _, e := range err.Errors() {
		got = append(got, e.Error())
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("messages mismatch (-want +got):\n%s", diff)
	}
}
