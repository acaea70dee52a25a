// Package openai implements the Embedder and Completer capabilities on top
// of the OpenAI API.
package openai

import (
	"context"
	"errors"

	"github.com/collegegpt/ragserver/pkg/provider"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

var (
	_ provider.Embedder  = (*Client)(nil)
	_ provider.Completer = (*Client)(nil)
)

type Client struct {
	client openai.Client

	embedModel    string
	completeModel string
}

type Option func(*Client)

func WithEmbedModel(model string) Option {
	return func(c *Client) {
		c.embedModel = model
	}
}

func WithCompleteModel(model string) Option {
	return func(c *Client) {
		c.completeModel = model
	}
}

func New(apiKey string, options ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("missing api key")
	}

	c := &Client{
		client: openai.NewClient(option.WithAPIKey(apiKey)),

		embedModel:    "text-embedding-3-small",
		completeModel: "gpt-4o",
	}

	for _, option := range options {
		option(c)
	}

	return c, nil
}

func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := c.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(c.embedModel),

		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: texts,
		},
	})

	if err != nil {
		return nil, err
	}

	vectors := make([][]float32, 0, len(resp.Data))

	for _, data := range resp.Data {
		vector := make([]float32, len(data.Embedding))

		for i, v := range data.Embedding {
			vector[i] = float32(v)
		}

		vectors = append(vectors, vector)
	}

	return vectors, nil
}

func (c *Client) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.Embed(ctx, []string{text})

	if err != nil {
		return nil, err
	}

	if len(vectors) == 0 {
		return nil, errors.New("no embedding returned")
	}

	return vectors[0], nil
}

func (c *Client) Complete(ctx context.Context, prompt string, options *provider.CompleteOptions) (*provider.Completion, error) {
	if options == nil {
		options = new(provider.CompleteOptions)
	}

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.completeModel),

		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	}

	if options.Temperature != nil {
		params.Temperature = openai.Float(float64(*options.Temperature))
	}

	if options.TopP != nil {
		params.TopP = openai.Float(float64(*options.TopP))
	}

	if options.MaxTokens != nil {
		params.MaxTokens = openai.Int(int64(*options.MaxTokens))
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)

	if err != nil {
		return nil, err
	}

	if len(resp.Choices) == 0 {
		return nil, errors.New("no completion choices returned")
	}

	return &provider.Completion{
		Text:  resp.Choices[0].Message.Content,
		Model: c.completeModel,
	}, nil
}
