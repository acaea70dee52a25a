// Package anthropic implements the Completer capability on top of the
// Anthropic Messages API.
package anthropic

import (
	"context"
	"errors"
	"strings"

	"github.com/collegegpt/ragserver/pkg/provider"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

var _ provider.Completer = (*Client)(nil)

// The Messages API requires an explicit max_tokens.
const defaultMaxTokens = 1024

type Client struct {
	client anthropic.Client

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
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),

		model: string(anthropic.ModelClaudeSonnet4_20250514),
	}

	for _, option := range options {
		option(c)
	}

	return c, nil
}

func (c *Client) Complete(ctx context.Context, prompt string, options *provider.CompleteOptions) (*provider.Completion, error) {
	if options == nil {
		options = new(provider.CompleteOptions)
	}

	maxTokens := defaultMaxTokens

	if options.MaxTokens != nil {
		maxTokens = *options.MaxTokens
	}

	params := anthropic.MessageNewParams{
		Model: anthropic.Model(c.model),

		MaxTokens: int64(maxTokens),

		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}

	if options.Temperature != nil {
		params.Temperature = anthropic.Float(float64(*options.Temperature))
	}

	if options.TopP != nil {
		params.TopP = anthropic.Float(float64(*options.TopP))
	}

	msg, err := c.client.Messages.New(ctx, params)

	if err != nil {
		return nil, err
	}

	var sb strings.Builder

	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}

	return &provider.Completion{
		Text:  sb.String(),
		Model: c.model,
	}, nil
}
