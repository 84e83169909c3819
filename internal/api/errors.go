// Cinematch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/tomtom215/cinematch/internal/logging"
	"github.com/tomtom215/cinematch/internal/recommend"
	"github.com/tomtom215/cinematch/internal/recommend/storage"
	"github.com/tomtom215/cinematch/internal/validation"
)

// errNotConfigured is returned by handlers whose optional dependency was
// not wired at startup.
var errNotConfigured = errors.New("not configured")

// respondError maps engine, storage and validation errors onto the
// response envelope. Unknown errors are logged and reported as 500.
func respondError(rw *ResponseWriter, err error) {
	var verr *validation.RequestValidationError

	switch {
	case errors.As(err, &verr):
		apiErr := verr.ToAPIError()
		rw.ValidationError(apiErr.Message, apiErr.Details)
	case errors.Is(err, recommend.ErrNotFitted):
		rw.ServiceUnavailable(ErrCodeModelNotReady, "Model is not fitted yet")
	case errors.Is(err, recommend.ErrInvalidTopN):
		rw.Error(http.StatusBadRequest, ErrCodeInvalidTopN, "top_n must be a positive integer")
	case errors.Is(err, recommend.ErrFitInProgress):
		rw.Conflict("A model fit is already in progress")
	case recommend.IsInvalidInput(err):
		rw.ValidationError(err.Error(), nil)
	case errors.Is(err, storage.ErrNotFound):
		rw.NotFound("Resource not found")
	case errors.Is(err, errNotConfigured):
		rw.ServiceUnavailable(ErrCodeServiceUnavailable, "Feature not available on this server")
	case errors.Is(err, context.DeadlineExceeded):
		rw.ServiceUnavailable(ErrCodeTimeout, "Request timed out")
	default:
		logging.Ctx(rw.r.Context()).Error().Err(err).
			Str("path", rw.r.URL.Path).
			Msg("API request failed")
		rw.InternalError("An internal error occurred")
	}
}
