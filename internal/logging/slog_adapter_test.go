// Cinematch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &out); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	return out
}

func TestSlogHandler_Levels(t *testing.T) {
	restoreGlobal(t)
	zerolog.SetGlobalLevel(zerolog.TraceLevel)

	tests := []struct {
		level slog.Level
		want  string
	}{
		{slog.LevelDebug - 4, "trace"},
		{slog.LevelDebug, "debug"},
		{slog.LevelInfo, "info"},
		{slog.LevelWarn, "warn"},
		{slog.LevelError, "error"},
		{slog.LevelError + 4, "error"},
	}

	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(NewSlogHandler(NewTestLogger(&buf)))
			logger.Log(context.Background(), tt.level, "event")

			if got := decodeLine(t, &buf)["level"]; got != tt.want {
				t.Errorf("level = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSlogHandler_Enabled(t *testing.T) {
	restoreGlobal(t)
	zerolog.SetGlobalLevel(zerolog.TraceLevel)

	h := NewSlogHandler(zerolog.New(nil).Level(zerolog.WarnLevel))
	ctx := context.Background()

	if h.Enabled(ctx, slog.LevelInfo) {
		t.Error("Enabled(info) = true for a warn logger")
	}
	if !h.Enabled(ctx, slog.LevelError) {
		t.Error("Enabled(error) = false for a warn logger")
	}
}

func TestSlogHandler_Attributes(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewSlogHandler(NewTestLogger(&buf))).
		With("supervisor", "cinematch").
		WithGroup("service")

	logger.Warn("service failed",
		"name", "refit",
		"restarts", 3,
		"backoff", 2*time.Second,
		"healthy", false,
		"err", errors.New("data source unavailable"),
		slog.Group("breaker", "state", "open"),
	)

	out := decodeLine(t, &buf)
	want := map[string]interface{}{
		"message":               "service failed",
		"supervisor":            "cinematch",
		"service.name":          "refit",
		"service.restarts":      float64(3),
		"service.healthy":       false,
		"service.err":           "data source unavailable",
		"service.breaker.state": "open",
	}
	for k, v := range want {
		if out[k] != v {
			t.Errorf("%s = %v, want %v", k, out[k], v)
		}
	}
	if _, ok := out["service.backoff"]; !ok {
		t.Error("duration attribute missing")
	}
}

func TestSlogHandler_InlineGroup(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewSlogHandler(NewTestLogger(&buf)))

	logger.Info("inline", slog.Group("", "a", 1))

	if !strings.Contains(buf.String(), `"a":1`) {
		t.Errorf("inline group not flattened: %s", buf.String())
	}
}

func TestNewSlogLogger_UsesGlobal(t *testing.T) {
	restoreGlobal(t)

	var buf bytes.Buffer
	SetLogger(NewTestLogger(&buf))
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	NewSlogLogger().Info("supervisor started")

	if !strings.Contains(buf.String(), "supervisor started") {
		t.Errorf("global logger not used: %q", buf.String())
	}
}
