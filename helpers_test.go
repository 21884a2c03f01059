package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm/logger"
)

func testConfig() *Config {
	return &Config{
		DatabaseURL:    "sqlite:///:memory:",
		Addr:           ":0",
		AllowedOrigins: []string{"*"},
		CacheTTL:       time.Minute,
		DBLogLevel:     logger.Silent,
	}
}

func newTestServerWith(t *testing.T, cfg *Config) *server {
	t.Helper()
	log := zaptest.NewLogger(t)
	db, err := openDB(cfg, log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = closeDB(db) })

	srv, err := newServer(cfg, db, log)
	require.NoError(t, err)
	t.Cleanup(srv.close)
	return srv
}

func newTestServer(t *testing.T) (*server, http.Handler) {
	t.Helper()
	srv := newTestServerWith(t, testConfig())
	return srv, srv.routes()
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// object decodes a JSON object response.
func object(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m), rec.Body.String())
	return m
}

// array decodes a JSON array response.
func array(t *testing.T, rec *httptest.ResponseRecorder) []map[string]any {
	t.Helper()
	var items []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items), rec.Body.String())
	return items
}

// mustCreate posts body to path and returns the created record.
func mustCreate(t *testing.T, h http.Handler, path, body string) map[string]any {
	t.Helper()
	rec := do(t, h, http.MethodPost, path, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return object(t, rec)
}

func idPath(base string, rec map[string]any) string {
	return base + "/" + jsonNumber(rec["id"])
}

func jsonNumber(v any) string {
	b, _ := json.Marshal(v)
	return string(b)
}

func detailLocs(t *testing.T, rec *httptest.ResponseRecorder) [][]any {
	t.Helper()
	var body struct {
		Detail []FieldError `json:"detail"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	locs := make([][]any, 0, len(body.Detail))
	for _, d := range body.Detail {
		locs = append(locs, d.Loc)
	}
	return locs
}

func field(items []map[string]any, key string) []any {
	out := make([]any, 0, len(items))
	for _, it := range items {
		out = append(out, it[key])
	}
	return out
}
