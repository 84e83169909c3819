// Cinematch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/knadh/koanf/v2"
)

// isolate points config discovery at an empty directory so that files in
// the working tree do not leak into tests.
func isolate(t *testing.T) {
	t.Helper()
	orig := DefaultConfigPaths
	DefaultConfigPaths = []string{filepath.Join(t.TempDir(), "absent.yaml")}
	t.Cleanup(func() { DefaultConfigPaths = orig })
	t.Setenv(ConfigPathEnvVar, "")
}

func TestLoadWithKoanf_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Recommend.FitInterval != time.Hour {
		t.Errorf("Recommend.FitInterval = %v, want 1h", cfg.Recommend.FitInterval)
	}
	if cfg.Recommend.Factorization.Factors != 50 {
		t.Errorf("Recommend.Factorization.Factors = %d, want 50", cfg.Recommend.Factorization.Factors)
	}
	if diff := cmp.Diff([]string{"*"}, cfg.API.CORSOrigins); diff != "" {
		t.Errorf("API.CORSOrigins mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadWithKoanf_FileThenEnv(t *testing.T) {
	isolate(t)

	path := filepath.Join(t.TempDir(), "cinematch.yaml")
	yaml := `
server:
  port: 9000
logging:
  level: debug
data:
  movies_path: /srv/movies.csv
  ratings_path: /srv/ratings.csv
recommend:
  fit_interval: 30m
  factorization:
    factors: 64
  time_decay: true
api:
  cors_origins:
    - https://a.example
    - https://b.example
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)

	// Environment beats the file.
	t.Setenv("HTTP_PORT", "9100")
	t.Setenv("RECOMMEND_MF_ITERATIONS", "30")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	checks := []struct {
		name      string
		got, want interface{}
	}{
		{"port from env", cfg.Server.Port, 9100},
		{"level from file", cfg.Logging.Level, "debug"},
		{"movies path", cfg.Data.MoviesPath, "/srv/movies.csv"},
		{"fit interval", cfg.Recommend.FitInterval, 30 * time.Minute},
		{"factors from file", cfg.Recommend.Factorization.Factors, 64},
		{"iterations from env", cfg.Recommend.Factorization.Iterations, 30},
		{"time decay", cfg.Recommend.TimeDecay, true},
		{"untouched default", cfg.Recommend.Collaborative.Neighbors, 20},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}

	if diff := cmp.Diff([]string{"https://a.example", "https://b.example"}, cfg.API.CORSOrigins); diff != "" {
		t.Errorf("API.CORSOrigins mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadWithKoanf_EnvSliceAndDuration(t *testing.T) {
	isolate(t)
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("FIT_TIMEOUT", "90s")
	t.Setenv("BADGER_IN_MEMORY", "true")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if diff := cmp.Diff([]string{"https://a.example", "https://b.example"}, cfg.API.CORSOrigins); diff != "" {
		t.Errorf("API.CORSOrigins mismatch (-want +got):\n%s", diff)
	}
	if cfg.Recommend.FitTimeout != 90*time.Second {
		t.Errorf("Recommend.FitTimeout = %v, want 90s", cfg.Recommend.FitTimeout)
	}
	if !cfg.Data.InMemory {
		t.Error("Data.InMemory = false, want true")
	}
}

func TestLoadWithKoanf_InvalidFails(t *testing.T) {
	isolate(t)
	t.Setenv("LOG_LEVEL", "loud")

	if _, err := LoadWithKoanf(); err == nil {
		t.Error("LoadWithKoanf() with invalid LOG_LEVEL succeeded, want error")
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		env  string
		want string
	}{
		{"HTTP_PORT", "server.port"},
		{"log_level", "logging.level"},
		{"RECOMMEND_MF_FACTORS", "recommend.factorization.factors"},
		{"FIT_BREAKER_FAILURES", "recommend.breaker.max_failures"},
		{"CORS_ORIGINS", "api.cors_origins"},
		{"PATH", ""},
		{"HOME", ""},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			if got := envTransformFunc(tt.env); got != tt.want {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.env, got, tt.want)
			}
		})
	}
}

func TestProcessSliceFields(t *testing.T) {
	k := koanf.New(".")
	if err := k.Set("api.cors_origins", "a, b,,c"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	if err := processSliceFields(k); err != nil {
		t.Fatalf("processSliceFields() error = %v", err)
	}

	if diff := cmp.Diff([]string{"a", "b", "c"}, k.Strings("api.cors_origins")); diff != "" {
		t.Errorf("cors_origins mismatch (-want +got):\n%s", diff)
	}
}
