// Package retriever answers a query string with the most similar stored
// segments. The query is embedded with the same model used at index time.
package retriever

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/collegegpt/ragserver/pkg/index"
	"github.com/collegegpt/ragserver/pkg/provider"

	"github.com/sirupsen/logrus"
)

const (
	DefaultLimit     = 5
	DefaultThreshold = 0.5
)

type Retriever struct {
	embedder provider.Embedder
	index    index.Provider

	limit     int
	threshold *float32

	logger *logrus.Logger

	fallbackOnce sync.Once
}

type Option func(*Retriever)

func WithLimit(limit int) Option {
	return func(r *Retriever) {
		r.limit = limit
	}
}

func WithThreshold(threshold float32) Option {
	return func(r *Retriever) {
		r.threshold = &threshold
	}
}

func WithLogger(logger *logrus.Logger) Option {
	return func(r *Retriever) {
		r.logger = logger
	}
}

func New(embedder provider.Embedder, idx index.Provider, options ...Option) (*Retriever, error) {
	if embedder == nil {
		return nil, errors.New("missing embedder provider")
	}

	if idx == nil {
		return nil, errors.New("missing index provider")
	}

	r := &Retriever{
		embedder: embedder,
		index:    idx,

		limit: DefaultLimit,

		logger: logrus.StandardLogger(),
	}

	for _, option := range options {
		option(r)
	}

	if r.limit <= 0 {
		return nil, errors.New("limit must be positive")
	}

	return r, nil
}

// Search embeds the query and returns up to the configured number of
// results, ranked by descending similarity. When a threshold is configured
// but the store cannot filter by score, Search downgrades to a plain top-k
// query instead of failing.
func (r *Retriever) Search(ctx context.Context, query string) ([]index.Result, error) {
	embedding, err := r.embedder.EmbedQuery(ctx, query)

	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	results, err := r.index.Query(ctx, embedding, &index.QueryOptions{
		Limit:     &r.limit,
		Threshold: r.threshold,
	})

	if err != nil && r.threshold != nil && errors.Is(err, index.ErrThresholdUnsupported) {
		r.fallbackOnce.Do(func() {
			r.logger.Warn("store does not support score thresholds, falling back to plain top-k search")
		})

		results, err = r.index.Query(ctx, embedding, &index.QueryOptions{
			Limit: &r.limit,
		})
	}

	if err != nil {
		return nil, fmt.Errorf("query index: %w", err)
	}

	return results, nil
}
