package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/collegegpt/ragserver/config"

	"github.com/stretchr/testify/require"
)

// newTestServer wires a server against a filesystem container and an
// in-memory index, so handlers can be exercised without any external
// service. The pipeline stays uninitialized unless a test refreshes it.
func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()

	dataDir := t.TempDir()
	t.Setenv("DATA_DIR", dataDir)

	path := filepath.Join(t.TempDir(), "config.yaml")

	require.NoError(t, os.WriteFile(path, []byte(`
embedder:
  type: openai
  api_key: test-key
  model: text-embedding-3-small

completer:
  type: anthropic
  api_key: test-key

storage:
  type: filesystem
  path: ${DATA_DIR}

index:
  type: memory
`), 0o644))

	cfg, err := config.Parse(path)
	require.NoError(t, err)

	s, err := New(cfg)
	require.NoError(t, err)

	return s, dataDir
}

func do(t *testing.T, s *Server, method, target, body string) (*http.Response, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()

	s.Handler.ServeHTTP(rec, req)

	resp := rec.Result()
	t.Cleanup(func() { resp.Body.Close() })

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))

	return resp, decoded
}

func TestRoot(t *testing.T) {
	s, _ := newTestServer(t)

	resp, body := do(t, s, http.MethodGet, "/", "")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "API is running", body["status"])
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t)

	resp, body := do(t, s, http.MethodGet, "/health", "")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "healthy", body["status"])
	require.Equal(t, false, body["initialized"])
	require.Equal(t, true, body["available"])
	require.Equal(t, false, body["rebuilding"])
	require.Equal(t, "text-embedding-3-small", body["embedding_model"])
}

func TestChatInvalidBody(t *testing.T) {
	s, _ := newTestServer(t)

	resp, body := do(t, s, http.MethodPost, "/api/chat", "{not json")

	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Contains(t, body, "error")
}

func TestChatMissingQuestion(t *testing.T) {
	s, _ := newTestServer(t)

	resp, body := do(t, s, http.MethodPost, "/api/chat", `{"question": "   "}`)

	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "question is required", body["error"])
}

func TestChatBeforeInitialization(t *testing.T) {
	s, _ := newTestServer(t)

	resp, body := do(t, s, http.MethodPost, "/api/chat", `{"question": "What is the capital of France?"}`)

	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	require.Contains(t, body, "error")
}

func TestRefreshEmptyContainer(t *testing.T) {
	s, _ := newTestServer(t)

	resp, body := do(t, s, http.MethodPost, "/api/refresh-data", "")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "Data refresh completed successfully", body["message"])

	require.Equal(t, float64(0), body["documents_processed"])
	require.Equal(t, float64(0), body["chunks_created"])
	require.Equal(t, float64(0), body["items_indexed"])
}

func TestRefreshSkipsUnknownFormats(t *testing.T) {
	s, dataDir := newTestServer(t)

	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "archive.zip"), []byte("binary"), 0o644))

	resp, body := do(t, s, http.MethodPost, "/api/refresh-data", "")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, float64(0), body["documents_processed"])
	require.Equal(t, float64(1), body["objects_skipped"])
}

func TestUnknownRouteNotFound(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	rec := httptest.NewRecorder()

	s.Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}
