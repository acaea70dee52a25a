package provider

import (
	"context"

	"golang.org/x/time/rate"
)

var _ Embedder = (*limitedEmbedder)(nil)

type limitedEmbedder struct {
	embedder Embedder
	limiter  *rate.Limiter
}

// WithRateLimit wraps an embedder so calls wait on the given limiter.
// A nil limiter returns the embedder unchanged.
func WithRateLimit(embedder Embedder, limiter *rate.Limiter) Embedder {
	if limiter == nil {
		return embedder
	}

	return &limitedEmbedder{
		embedder: embedder,
		limiter:  limiter,
	}
}

func (e *limitedEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	return e.embedder.Embed(ctx, texts)
}

func (e *limitedEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	return e.embedder.EmbedQuery(ctx, text)
}
