package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/codechella/scoreboard/internal/config"
	"github.com/codechella/scoreboard/internal/scoreboard"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		HTTPAddr:        "127.0.0.1:0",
		AudioDir:        t.TempDir(),
		OutboxSize:      32,
		WSPingInterval:  time.Minute,
		WSWriteTimeout:  time.Second,
		SSEPingInterval: time.Minute,
		ShutdownTimeout: time.Second,
		AllowedOrigins:  []string{"*"},
	}
}

func newTestHub() *scoreboard.Hub {
	return scoreboard.NewHub(scoreboard.NewStore(), scoreboard.NewCatalog(), scoreboard.NewRegistry(), discardLogger())
}

func newTestRouter(t *testing.T) (http.Handler, *scoreboard.Hub) {
	t.Helper()
	hub := newTestHub()
	t.Cleanup(hub.Close)
	return NewRouter(testConfig(t), discardLogger(), hub), hub
}

func postJSON(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decoding %s: %v", rec.Body.String(), err)
	}
	return v
}
