// Package indexer embeds segments and writes them into a vector collection.
package indexer

import (
	"context"
	"errors"
	"fmt"

	"github.com/collegegpt/ragserver/pkg/index"
	"github.com/collegegpt/ragserver/pkg/provider"
	"github.com/collegegpt/ragserver/pkg/segmenter"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const defaultBatchSize = 32

type Indexer struct {
	embedder provider.Embedder
	index    index.Provider

	batchSize int

	logger *logrus.Logger
}

type Option func(*Indexer)

func WithBatchSize(size int) Option {
	return func(i *Indexer) {
		i.batchSize = size
	}
}

func WithLogger(logger *logrus.Logger) Option {
	return func(i *Indexer) {
		i.logger = logger
	}
}

func New(embedder provider.Embedder, idx index.Provider, options ...Option) (*Indexer, error) {
	if embedder == nil {
		return nil, errors.New("missing embedder provider")
	}

	if idx == nil {
		return nil, errors.New("missing index provider")
	}

	i := &Indexer{
		embedder: embedder,
		index:    idx,

		batchSize: defaultBatchSize,

		logger: logrus.StandardLogger(),
	}

	for _, option := range options {
		option(i)
	}

	if i.batchSize <= 0 {
		return nil, errors.New("batch size must be positive")
	}

	return i, nil
}

// Build embeds every segment and upserts the resulting documents into the
// collection in batches. Any embedding or store error fails the whole build;
// nothing partially written is reported as success.
func (i *Indexer) Build(ctx context.Context, segments []segmenter.Segment) ([]string, error) {
	var ids []string

	for start := 0; start < len(segments); start += i.batchSize {
		end := start + i.batchSize

		if end > len(segments) {
			end = len(segments)
		}

		batch := segments[start:end]

		texts := make([]string, 0, len(batch))

		for _, segment := range batch {
			texts = append(texts, segment.Content)
		}

		vectors, err := i.embedder.Embed(ctx, texts)

		if err != nil {
			return nil, fmt.Errorf("embed batch: %w", err)
		}

		if len(vectors) != len(batch) {
			return nil, fmt.Errorf("embedder returned %d vectors for %d segments", len(vectors), len(batch))
		}

		documents := make([]index.Document, 0, len(batch))

		for j, segment := range batch {
			documents = append(documents, index.Document{
				ID: uuid.NewString(),

				Content:   segment.Content,
				Metadata:  segment.Metadata,
				Embedding: vectors[j],
			})
		}

		inserted, err := i.index.Index(ctx, documents...)

		if err != nil {
			return nil, fmt.Errorf("upsert batch: %w", err)
		}

		ids = append(ids, inserted...)
	}

	i.logger.WithField("items", len(ids)).Info("index build complete")

	return ids, nil
}
