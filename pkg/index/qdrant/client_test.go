package qdrant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/collegegpt/ragserver/pkg/index"

	"github.com/stretchr/testify/require"
)

// fakeQdrant records the REST calls the client makes and serves canned
// responses.
type fakeQdrant struct {
	mu sync.Mutex

	created     bool
	createCalls int
	points      []map[string]any

	searches []map[string]any

	createStatus int
}

func (f *fakeQdrant) handler(t *testing.T) http.Handler {
	t.Helper()

	mux := http.NewServeMux()

	mux.HandleFunc("PUT /collections/notes", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()

		f.createCalls++

		if f.createStatus != 0 {
			w.WriteHeader(f.createStatus)
			return
		}

		f.created = true

		writeResult(w, true)
	})

	mux.HandleFunc("PUT /collections/notes/points", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Points []map[string]any `json:"points"`
		}

		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		f.mu.Lock()
		f.points = append(f.points, body.Points...)
		f.mu.Unlock()

		writeResult(w, map[string]any{"status": "completed"})
	})

	mux.HandleFunc("POST /collections/notes/points/search", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any

		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		f.mu.Lock()
		f.searches = append(f.searches, body)
		f.mu.Unlock()

		writeResult(w, []map[string]any{
			{
				"id":    "doc-1",
				"score": 0.93,
				"payload": map[string]any{
					"content":  "Paris is the capital of France.",
					"metadata": map[string]any{"source": "notes.txt"},
				},
			},
			{
				"id":    "doc-2",
				"score": 0.71,
				"payload": map[string]any{
					"content": "France is in Europe.",
				},
			},
		})
	})

	mux.HandleFunc("GET /collections", func(w http.ResponseWriter, r *http.Request) {
		writeResult(w, map[string]any{"collections": []any{}})
	})

	return mux
}

func writeResult(w http.ResponseWriter, result any) {
	w.Header().Set("Content-Type", "application/json")

	_ = json.NewEncoder(w).Encode(map[string]any{
		"status": "ok",
		"result": result,
	})
}

func newClient(t *testing.T, fake *fakeQdrant) *Client {
	t.Helper()

	server := httptest.NewServer(fake.handler(t))
	t.Cleanup(server.Close)

	client, err := New(Config{
		URL:        server.URL,
		Collection: "notes",
	})
	require.NoError(t, err)

	return client
}

func TestNewValidation(t *testing.T) {
	_, err := New(Config{Collection: "notes"})
	require.Error(t, err)

	_, err = New(Config{URL: "http://localhost:6333"})
	require.Error(t, err)
}

func TestIndexCreatesCollectionAndUpserts(t *testing.T) {
	fake := &fakeQdrant{}
	client := newClient(t, fake)

	ids, err := client.Index(context.Background(),
		index.Document{Content: "first", Metadata: map[string]string{"source": "a.txt"}, Embedding: []float32{1, 0}},
		index.Document{ID: "fixed-id", Content: "second", Embedding: []float32{0, 1}},
	)

	require.NoError(t, err)
	require.Len(t, ids, 2)
	require.NotEmpty(t, ids[0])
	require.Equal(t, "fixed-id", ids[1])

	require.True(t, fake.created)
	require.Len(t, fake.points, 2)

	payload, ok := fake.points[0]["payload"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "first", payload["content"])

	require.Equal(t, map[string]any{"source": "a.txt"}, payload["metadata"])
}

func TestIndexToleratesExistingCollection(t *testing.T) {
	fake := &fakeQdrant{createStatus: http.StatusConflict}
	client := newClient(t, fake)

	_, err := client.Index(context.Background(), index.Document{
		Content:   "doc",
		Embedding: []float32{1, 0},
	})

	require.NoError(t, err)
	require.Len(t, fake.points, 1)
}

func TestIndexRetriesFailedCollectionCreate(t *testing.T) {
	fake := &fakeQdrant{createStatus: http.StatusServiceUnavailable}
	client := newClient(t, fake)

	document := index.Document{
		Content:   "doc",
		Embedding: []float32{1, 0},
	}

	_, err := client.Index(context.Background(), document)
	require.Error(t, err)

	// Qdrant comes back; the next insert must attempt the create again
	// instead of replaying the cached failure.
	fake.mu.Lock()
	fake.createStatus = 0
	fake.mu.Unlock()

	ids, err := client.Index(context.Background(), document)
	require.NoError(t, err)
	require.Len(t, ids, 1)

	fake.mu.Lock()
	defer fake.mu.Unlock()

	require.True(t, fake.created)
	require.Equal(t, 2, fake.createCalls)
	require.Len(t, fake.points, 1)
}

func TestIndexNoDocuments(t *testing.T) {
	fake := &fakeQdrant{}
	client := newClient(t, fake)

	ids, err := client.Index(context.Background())
	require.NoError(t, err)
	require.Empty(t, ids)

	require.False(t, fake.created)
}

func TestQuery(t *testing.T) {
	fake := &fakeQdrant{}
	client := newClient(t, fake)

	limit := 4
	threshold := float32(0.5)

	results, err := client.Query(context.Background(), []float32{1, 0}, &index.QueryOptions{
		Limit:     &limit,
		Threshold: &threshold,
	})

	require.NoError(t, err)
	require.Len(t, results, 2)

	require.Equal(t, "doc-1", results[0].ID)
	require.Equal(t, "Paris is the capital of France.", results[0].Content)
	require.Equal(t, map[string]string{"source": "notes.txt"}, results[0].Metadata)
	require.InDelta(t, 0.93, results[0].Score, 0.001)

	require.Len(t, fake.searches, 1)

	search := fake.searches[0]
	require.Equal(t, float64(4), search["limit"])
	require.InDelta(t, 0.5, search["score_threshold"], 0.001)
	require.Equal(t, true, search["with_payload"])
}

func TestQueryWithoutOptions(t *testing.T) {
	fake := &fakeQdrant{}
	client := newClient(t, fake)

	_, err := client.Query(context.Background(), []float32{1, 0}, nil)
	require.NoError(t, err)

	search := fake.searches[0]
	require.Equal(t, float64(10), search["limit"])
	require.NotContains(t, search, "score_threshold")
}

func TestPing(t *testing.T) {
	fake := &fakeQdrant{}
	client := newClient(t, fake)

	require.NoError(t, client.Ping(context.Background()))
}

func TestPingUnreachable(t *testing.T) {
	client, err := New(Config{
		URL:        "http://127.0.0.1:1",
		Collection: "notes",
	})
	require.NoError(t, err)

	require.Error(t, client.Ping(context.Background()))
}
