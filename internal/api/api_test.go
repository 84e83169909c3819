// Cinematch - Hybrid Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package api

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/cinematch/internal/dataset"
	"github.com/tomtom215/cinematch/internal/recommend"
	"github.com/tomtom215/cinematch/internal/recommend/storage"
)

// envelope mirrors APIResponse with raw data for typed decoding.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *APIError       `json:"error"`
	Meta    *APIMeta        `json:"meta"`
}

type fakeRefitter struct {
	mu    sync.Mutex
	err   error
	calls int
	state string
}

func (f *fakeRefitter) Trigger() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.err
}

func (f *fakeRefitter) BreakerState() string {
	if f.state == "" {
		return "closed"
	}
	return f.state
}

type testEnv struct {
	engine   *recommend.Engine
	store    *storage.Store
	refitter *fakeRefitter
	handler  http.Handler
}

type envOptions struct {
	unfitted   bool
	noStore    bool
	noRefitter bool
	middleware *MiddlewareConfig
}

func newTestEnv(t *testing.T, opts envOptions) *testEnv {
	t.Helper()
	ctx := context.Background()

	cfg := recommend.DefaultConfig()
	cfg.Factorization.NumFactors = 8
	cfg.Factorization.NumIterations = 10
	cfg.NumWorkers = 2

	engine, err := recommend.NewEngine(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}

	store, err := storage.Open(storage.Options{InMemory: true}, zerolog.Nop())
	if err != nil {
		t.Fatalf("storage.Open() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	sample := dataset.Sample()
	if _, err := store.Seed(ctx, sample.Movies, sample.Ratings); err != nil {
		t.Fatalf("Seed() error = %v", err)
	}

	engine.SetDataSource(store)
	if !opts.unfitted {
		if err := engine.FitFromSource(ctx); err != nil {
			t.Fatalf("FitFromSource() error = %v", err)
		}
	}

	env := &testEnv{engine: engine, store: store, refitter: &fakeRefitter{}}

	var st Store = store
	if opts.noStore {
		st = nil
	}
	var rf Refitter = env.refitter
	if opts.noRefitter {
		rf = nil
	}

	mwCfg := opts.middleware
	if mwCfg == nil {
		mwCfg = DefaultMiddlewareConfig()
	}

	h := NewHandler(engine, st, rf, HandlerOptions{Version: "test"})
	env.handler = NewRouter(h, NewMiddleware(mwCfg)).Setup()
	return env
}

func (env *testEnv) do(t *testing.T, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	return doRequest(t, env.handler, method, path, body, nil)
}

func doRequest(t *testing.T, h http.Handler, method, path string, body interface{}, header http.Header) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		req.Header[k] = v
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	if ct := rec.Header().Get("Content-Type"); ct == "application/json; charset=utf-8" {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode envelope: %v (body %q)", err, rec.Body.String())
		}
	}
	return rec, env
}

func decodeData(t *testing.T, env envelope, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(env.Data, v); err != nil {
		t.Fatalf("decode data: %v (data %s)", err, env.Data)
	}
}

func wantError(t *testing.T, rec *httptest.ResponseRecorder, env envelope, status int, code string) {
	t.Helper()
	if rec.Code != status {
		t.Errorf("status = %d, want %d (body %s)", rec.Code, status, rec.Body.String())
	}
	if env.Success {
		t.Error("success = true, want false")
	}
	if env.Error == nil {
		t.Fatalf("error = nil, want code %s", code)
	}
	if env.Error.Code != code {
		t.Errorf("error.code = %q, want %q (message %q)", env.Error.Code, code, env.Error.Message)
	}
}
