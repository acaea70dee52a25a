// Package google implements the Embedder and Completer capabilities on top
// of the Google Generative AI API (Gemini models).
package google

import (
	"context"
	"errors"
	"strings"

	"github.com/collegegpt/ragserver/pkg/provider"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

var (
	_ provider.Embedder  = (*Client)(nil)
	_ provider.Completer = (*Client)(nil)
)

type Client struct {
	client *genai.Client

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

func New(ctx context.Context, apiKey string, options ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("missing api key")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))

	if err != nil {
		return nil, err
	}

	c := &Client{
		client: client,

		embedModel:    "embedding-001",
		completeModel: "gemini-2.5-pro",
	}

	for _, option := range options {
		option(c)
	}

	return c, nil
}

func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	model := c.client.EmbeddingModel(c.embedModel)
	model.TaskType = genai.TaskTypeRetrievalDocument

	batch := model.NewBatch()

	for _, text := range texts {
		batch.AddContent(genai.Text(text))
	}

	resp, err := model.BatchEmbedContents(ctx, batch)

	if err != nil {
		return nil, err
	}

	vectors := make([][]float32, 0, len(resp.Embeddings))

	for _, embedding := range resp.Embeddings {
		vectors = append(vectors, embedding.Values)
	}

	return vectors, nil
}

func (c *Client) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	model := c.client.EmbeddingModel(c.embedModel)
	model.TaskType = genai.TaskTypeRetrievalQuery

	resp, err := model.EmbedContent(ctx, genai.Text(text))

	if err != nil {
		return nil, err
	}

	return resp.Embedding.Values, nil
}

func (c *Client) Complete(ctx context.Context, prompt string, options *provider.CompleteOptions) (*provider.Completion, error) {
	if options == nil {
		options = new(provider.CompleteOptions)
	}

	model := c.client.GenerativeModel(c.completeModel)

	if options.Temperature != nil {
		model.SetTemperature(*options.Temperature)
	}

	if options.TopP != nil {
		model.SetTopP(*options.TopP)
	}

	if options.MaxTokens != nil {
		model.SetMaxOutputTokens(int32(*options.MaxTokens))
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))

	if err != nil {
		return nil, err
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, errors.New("no completion candidates returned")
	}

	var sb strings.Builder

	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}

	return &provider.Completion{
		Text:  sb.String(),
		Model: c.completeModel,
	}, nil
}
