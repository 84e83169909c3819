// Cinematch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/cinematch/internal/metrics"
	"github.com/tomtom215/cinematch/internal/recommend"
)

// HealthStatus is the payload of the health endpoint.
type HealthStatus struct {
	// Status is "healthy" when a model is serving, "degraded" otherwise.
	Status        string          `json:"status"`
	Version       string          `json:"version"`
	Model         recommend.State `json:"model"`
	ModelVersion  int64           `json:"model_version"`
	FitInProgress bool            `json:"fit_in_progress"`
	LastError     string          `json:"last_error,omitempty"`
	Uptime        float64         `json:"uptime_seconds"`
}

// Health handles GET /api/health. It always answers 200 so the process is
// not restarted while the first fit is still running.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	st := h.engine.Status()
	uptime := time.Since(h.startTime).Seconds()
	metrics.AppUptime.Set(uptime)

	status := "healthy"
	if st.State != recommend.StateFitted {
		status = "degraded"
	}

	NewResponseWriter(w, r).Success(HealthStatus{
		Status:        status,
		Version:       h.opts.Version,
		Model:         st.State,
		ModelVersion:  st.ModelVersion,
		FitInProgress: st.FitInProgress,
		LastError:     st.LastError,
		Uptime:        uptime,
	})
}
