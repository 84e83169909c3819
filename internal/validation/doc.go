// Cinematch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

// Package validation provides struct validation using go-playground/validator v10.
//
// A thread-safe singleton validator validates API requests and the movie and
// rating rows handed to the recommendation engine at fit time. Field names in
// errors are the JSON names ("movie_id", "top_n"), so messages can be returned
// to API clients as-is.
//
// # Custom Tags
//
//   - entityid: non-blank user or movie identifier, at most 128 bytes, no
//     control characters or surrounding whitespace
//
// # Usage
//
//	type RecommendRequest struct {
//	    UserID string `json:"user_id" validate:"omitempty,entityid"`
//	    TopN   int    `json:"top_n" validate:"min=1,max=100"`
//	}
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
//	    return
//	}
//
// Single values (path parameters, query strings) use ValidateVar:
//
//	if verr := validation.ValidateVar("movie_id", movieID, "required,entityid"); verr != nil {
//	    ...
//	}
//
// # Thread Safety
//
// GetValidator initializes the validator once; the instance caches struct
// metadata and is safe for concurrent use.
package validation
