package retriever

import (
	"context"
	"errors"
	"testing"

	"github.com/collegegpt/ragserver/pkg/index"

	"github.com/stretchr/testify/require"
)

type fakeEmbedder struct {
	err error
}

func (e *fakeEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))

	for i := range texts {
		vectors[i] = []float32{1, 0}
	}

	return vectors, e.err
}

func (e *fakeEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if e.err != nil {
		return nil, e.err
	}

	return []float32{1, 0}, nil
}

type fakeIndex struct {
	results []index.Result

	thresholdUnsupported bool
	err                  error

	queries []*index.QueryOptions
}

func (f *fakeIndex) Index(ctx context.Context, documents ...index.Document) ([]string, error) {
	return nil, nil
}

func (f *fakeIndex) Query(ctx context.Context, embedding []float32, options *index.QueryOptions) ([]index.Result, error) {
	f.queries = append(f.queries, options)

	if f.err != nil {
		return nil, f.err
	}

	if f.thresholdUnsupported && options != nil && options.Threshold != nil {
		return nil, index.ErrThresholdUnsupported
	}

	results := f.results

	if options != nil && options.Limit != nil && len(results) > *options.Limit {
		results = results[:*options.Limit]
	}

	return results, nil
}

func (f *fakeIndex) Ping(ctx context.Context) error {
	return nil
}

func TestSearchPassesThreshold(t *testing.T) {
	idx := &fakeIndex{}

	r, err := New(&fakeEmbedder{}, idx, WithLimit(3), WithThreshold(0.5))
	require.NoError(t, err)

	_, err = r.Search(context.Background(), "question")
	require.NoError(t, err)

	require.Len(t, idx.queries, 1)
	require.NotNil(t, idx.queries[0].Threshold)
	require.InDelta(t, 0.5, *idx.queries[0].Threshold, 1e-6)
	require.Equal(t, 3, *idx.queries[0].Limit)
}

func TestSearchFallsBackWhenThresholdUnsupported(t *testing.T) {
	idx := &fakeIndex{
		thresholdUnsupported: true,

		results: []index.Result{
			{Document: index.Document{Content: "a"}, Score: 0.9},
			{Document: index.Document{Content: "b"}, Score: 0.2},
		},
	}

	r, err := New(&fakeEmbedder{}, idx, WithLimit(5), WithThreshold(0.5))
	require.NoError(t, err)

	results, err := r.Search(context.Background(), "question")
	require.NoError(t, err)

	// Fallback returns unfiltered top-k rather than erroring.
	require.Len(t, results, 2)

	require.Len(t, idx.queries, 2)
	require.NotNil(t, idx.queries[0].Threshold)
	require.Nil(t, idx.queries[1].Threshold)
}

func TestSearchCapsResults(t *testing.T) {
	idx := &fakeIndex{
		results: []index.Result{
			{Score: 0.9}, {Score: 0.8}, {Score: 0.7}, {Score: 0.6},
		},
	}

	r, err := New(&fakeEmbedder{}, idx, WithLimit(2))
	require.NoError(t, err)

	results, err := r.Search(context.Background(), "question")
	require.NoError(t, err)

	require.Len(t, results, 2)
}

func TestSearchPropagatesConnectivityErrors(t *testing.T) {
	idx := &fakeIndex{
		err: errors.New("connection refused"),
	}

	r, err := New(&fakeEmbedder{}, idx, WithThreshold(0.5))
	require.NoError(t, err)

	_, err = r.Search(context.Background(), "question")
	require.Error(t, err)

	// Connectivity errors must not trigger the threshold fallback.
	require.Len(t, idx.queries, 1)
}

func TestSearchPropagatesEmbedErrors(t *testing.T) {
	idx := &fakeIndex{}

	r, err := New(&fakeEmbedder{err: errors.New("quota exceeded")}, idx)
	require.NoError(t, err)

	_, err = r.Search(context.Background(), "question")
	require.Error(t, err)

	require.Empty(t, idx.queries)
}
