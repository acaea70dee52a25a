// Package cohere implements the Embedder capability on top of the Cohere
// Embed API. Cohere encodes passages and queries differently (input types
// search_document and search_query), which maps directly onto the two
// Embedder paths.
package cohere

import (
	"context"
	"errors"

	"github.com/collegegpt/ragserver/pkg/provider"

	cohere "github.com/cohere-ai/cohere-go/v2"
	cohereclient "github.com/cohere-ai/cohere-go/v2/client"
)

var _ provider.Embedder = (*Client)(nil)

type Client struct {
	client *cohereclient.Client

	model string
}

type Option func(*Client)

func WithModel(model string) Option {
	return func(c *Client) {
		c.model = model
	}
}

func New(apiKey string, options ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("missing api key")
	}

	c := &Client{
		client: cohereclient.NewClient(cohereclient.WithToken(apiKey)),

		model: "embed-english-v3.0",
	}

	for _, option := range options {
		option(c)
	}

	return c, nil
}

func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	return c.embed(ctx, texts, cohere.EmbedInputTypeSearchDocument)
}

func (c *Client) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.embed(ctx, []string{text}, cohere.EmbedInputTypeSearchQuery)

	if err != nil {
		return nil, err
	}

	if len(vectors) == 0 {
		return nil, errors.New("no embedding returned")
	}

	return vectors[0], nil
}

func (c *Client) embed(ctx context.Context, texts []string, inputType cohere.EmbedInputType) ([][]float32, error) {
	resp, err := c.client.V2.Embed(ctx, &cohere.V2EmbedRequest{
		Model: c.model,

		Texts:     texts,
		InputType: inputType,

		EmbeddingTypes: []cohere.EmbeddingType{
			cohere.EmbeddingTypeFloat,
		},
	})

	if err != nil {
		return nil, err
	}

	vectors := make([][]float32, 0, len(resp.Embeddings.Float))

	for _, embedding := range resp.Embeddings.Float {
		vector := make([]float32, len(embedding))

		for i, v := range embedding {
			vector[i] = float32(v)
		}

		vectors = append(vectors, vector)
	}

	return vectors, nil
}
