package memory

import (
	"context"
	"testing"

	"github.com/collegegpt/ragserver/pkg/index"

	"github.com/stretchr/testify/require"
)

func seed(t *testing.T, s *Store) {
	t.Helper()

	_, err := s.Index(context.Background(),
		index.Document{Content: "exact", Embedding: []float32{1, 0, 0}},
		index.Document{Content: "close", Embedding: []float32{0.9, 0.1, 0}},
		index.Document{Content: "far", Embedding: []float32{0, 0, 1}},
	)

	require.NoError(t, err)
}

func TestQueryRanking(t *testing.T) {
	s := New()
	seed(t, s)

	results, err := s.Query(context.Background(), []float32{1, 0, 0}, nil)
	require.NoError(t, err)

	require.Len(t, results, 3)
	require.Equal(t, "exact", results[0].Content)
	require.Equal(t, "close", results[1].Content)
	require.Equal(t, "far", results[2].Content)

	for i := 1; i < len(results); i++ {
		require.LessOrEqual(t, results[i].Score, results[i-1].Score)
	}
}

func TestQueryLimit(t *testing.T) {
	s := New()
	seed(t, s)

	limit := 2

	results, err := s.Query(context.Background(), []float32{1, 0, 0}, &index.QueryOptions{Limit: &limit})
	require.NoError(t, err)

	require.Len(t, results, 2)
}

func TestQueryThreshold(t *testing.T) {
	s := New()
	seed(t, s)

	threshold := float32(0.5)

	results, err := s.Query(context.Background(), []float32{1, 0, 0}, &index.QueryOptions{Threshold: &threshold})
	require.NoError(t, err)

	require.Len(t, results, 2)

	for _, result := range results {
		require.GreaterOrEqual(t, result.Score, threshold)
	}
}

func TestIndexAssignsIDs(t *testing.T) {
	s := New()

	ids, err := s.Index(context.Background(),
		index.Document{Content: "a", Embedding: []float32{1}},
		index.Document{ID: "fixed", Content: "b", Embedding: []float32{1}},
	)

	require.NoError(t, err)
	require.Len(t, ids, 2)
	require.NotEmpty(t, ids[0])
	require.Equal(t, "fixed", ids[1])
}
