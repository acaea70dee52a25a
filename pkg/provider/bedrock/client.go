// Package bedrock implements the Completer capability on top of AWS Bedrock,
// invoking Anthropic models through the InvokeModel runtime API.
package bedrock

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/collegegpt/ragserver/pkg/provider"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
)

var _ provider.Completer = (*Client)(nil)

const (
	anthropicVersion = "bedrock-2023-05-31"

	defaultMaxTokens = 1024
)

type Client struct {
	client *bedrockruntime.Client

	model string
}

type Option func(*Client)

func WithModel(model string) Option {
	return func(c *Client) {
		c.model = model
	}
}

func New(ctx context.Context, region string, options ...Option) (*Client, error) {
	var loadOptions []func(*awsconfig.LoadOptions) error

	if region != "" {
		loadOptions = append(loadOptions, awsconfig.WithRegion(region))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOptions...)

	if err != nil {
		return nil, err
	}

	c := &Client{
		client: bedrockruntime.NewFromConfig(cfg),

		model: "anthropic.claude-3-5-sonnet-20240620-v1:0",
	}

	for _, option := range options {
		option(c)
	}

	return c, nil
}

type messageRequest struct {
	AnthropicVersion string    `json:"anthropic_version"`
	MaxTokens        int       `json:"max_tokens"`
	Messages         []message `json:"messages"`

	Temperature *float32 `json:"temperature,omitempty"`
	TopP        *float32 `json:"top_p,omitempty"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messageResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

func (c *Client) Complete(ctx context.Context, prompt string, options *provider.CompleteOptions) (*provider.Completion, error) {
	if options == nil {
		options = new(provider.CompleteOptions)
	}

	request := messageRequest{
		AnthropicVersion: anthropicVersion,

		MaxTokens: defaultMaxTokens,

		Messages: []message{
			{Role: "user", Content: prompt},
		},

		Temperature: options.Temperature,
		TopP:        options.TopP,
	}

	if options.MaxTokens != nil {
		request.MaxTokens = *options.MaxTokens
	}

	body, err := json.Marshal(request)

	if err != nil {
		return nil, err
	}

	resp, err := c.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId: aws.String(c.model),

		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),

		Body: body,
	})

	if err != nil {
		return nil, err
	}

	var result messageResponse

	if err := json.Unmarshal(resp.Body, &result); err != nil {
		return nil, err
	}

	if len(result.Content) == 0 {
		return nil, errors.New("no completion content returned")
	}

	var sb strings.Builder

	for _, block := range result.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}

	return &provider.Completion{
		Text:  sb.String(),
		Model: c.model,
	}, nil
}
