package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/collegegpt/ragserver/pkg/index"

	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *Store {
	t.Helper()

	s, err := New(filepath.Join(t.TempDir(), "index.db"))
	require.NoError(t, err)

	t.Cleanup(func() { s.Close() })

	return s
}

func TestIndexAndQuery(t *testing.T) {
	s := newStore(t)

	ids, err := s.Index(context.Background(),
		index.Document{Content: "exact", Metadata: map[string]string{"source": "a.txt"}, Embedding: []float32{1, 0, 0}},
		index.Document{Content: "close", Embedding: []float32{0.9, 0.1, 0}},
		index.Document{Content: "far", Embedding: []float32{0, 0, 1}},
	)

	require.NoError(t, err)
	require.Len(t, ids, 3)

	limit := 2

	results, err := s.Query(context.Background(), []float32{1, 0, 0}, &index.QueryOptions{Limit: &limit})
	require.NoError(t, err)

	require.Len(t, results, 2)
	require.Equal(t, "exact", results[0].Content)
	require.Equal(t, "close", results[1].Content)
	require.GreaterOrEqual(t, results[0].Score, results[1].Score)

	require.Equal(t, map[string]string{"source": "a.txt"}, results[0].Metadata)
}

func TestQueryThreshold(t *testing.T) {
	s := newStore(t)

	_, err := s.Index(context.Background(),
		index.Document{Content: "match", Embedding: []float32{1, 0}},
		index.Document{Content: "orthogonal", Embedding: []float32{0, 1}},
	)
	require.NoError(t, err)

	threshold := float32(0.5)

	results, err := s.Query(context.Background(), []float32{1, 0}, &index.QueryOptions{Threshold: &threshold})
	require.NoError(t, err)

	require.Len(t, results, 1)
	require.Equal(t, "match", results[0].Content)
}

func TestUpsertReplacesByID(t *testing.T) {
	s := newStore(t)

	_, err := s.Index(context.Background(), index.Document{
		ID:        "item-1",
		Content:   "old",
		Embedding: []float32{1, 0},
	})
	require.NoError(t, err)

	_, err = s.Index(context.Background(), index.Document{
		ID:        "item-1",
		Content:   "new",
		Embedding: []float32{1, 0},
	})
	require.NoError(t, err)

	results, err := s.Query(context.Background(), []float32{1, 0}, nil)
	require.NoError(t, err)

	require.Len(t, results, 1)
	require.Equal(t, "new", results[0].Content)
}

func TestEmbeddingRoundTrip(t *testing.T) {
	vector := []float32{0.25, -1.5, 3.75, 0}

	decoded, err := decodeEmbedding(encodeEmbedding(vector))
	require.NoError(t, err)
	require.Equal(t, vector, decoded)

	_, err = decodeEmbedding([]byte{1, 2, 3})
	require.Error(t, err)
}

func TestPing(t *testing.T) {
	s := newStore(t)

	require.NoError(t, s.Ping(context.Background()))
}
