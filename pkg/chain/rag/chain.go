// Package rag composes grounded answers: the retrieved context is rendered
// into a fixed prompt template together with the question and handed to a
// text-generation provider.
package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/collegegpt/ragserver/pkg/chain"
	"github.com/collegegpt/ragserver/pkg/index"
	"github.com/collegegpt/ragserver/pkg/provider"
)

var _ chain.Provider = (*Chain)(nil)

// Sampling stays close to factual. Stated here once; callers do not tune
// generation per request.
const (
	defaultMaxTokens   = 1000
	defaultTemperature = 0.3
	defaultTopP        = 0.9
)

const promptTemplate = `You are CollegeGPT, a helpful educational assistant specializing in college and academic topics.
Your goal is to provide clear, informative, and educational responses to help students learn.

Use the following context to answer the question. If the context contains relevant information,
explain it clearly and provide helpful details. If you can only find partial information,
explain what you know and suggest what additional information might be helpful.

If the context doesn't contain enough information to answer the question, politely explain
what you cannot answer and suggest related topics you might be able to help with instead.

Context:
%s

Question:
%s

Please provide a helpful, educational response:`

type Chain struct {
	completer provider.Completer

	maxTokens   int
	temperature float32
	topP        float32
}

type Option func(*Chain)

func WithCompleter(completer provider.Completer) Option {
	return func(c *Chain) {
		c.completer = completer
	}
}

func WithMaxTokens(maxTokens int) Option {
	return func(c *Chain) {
		c.maxTokens = maxTokens
	}
}

func WithTemperature(temperature float32) Option {
	return func(c *Chain) {
		c.temperature = temperature
	}
}

func WithTopP(topP float32) Option {
	return func(c *Chain) {
		c.topP = topP
	}
}

func New(options ...Option) (*Chain, error) {
	c := &Chain{
		maxTokens:   defaultMaxTokens,
		temperature: defaultTemperature,
		topP:        defaultTopP,
	}

	for _, option := range options {
		option(c)
	}

	if c.completer == nil {
		return nil, errors.New("missing completer provider")
	}

	return c, nil
}

// Answer renders the prompt from the retrieved context (in ranked order,
// verbatim) and the question, and returns the generated text unmodified.
func (c *Chain) Answer(ctx context.Context, question string, results []index.Result) (string, error) {
	contexts := make([]string, 0, len(results))

	for _, result := range results {
		contexts = append(contexts, result.Content)
	}

	prompt := fmt.Sprintf(promptTemplate, strings.Join(contexts, "\n\n"), question)

	completion, err := c.completer.Complete(ctx, prompt, &provider.CompleteOptions{
		MaxTokens:   &c.maxTokens,
		Temperature: &c.temperature,
		TopP:        &c.topP,
	})

	if err != nil {
		return "", fmt.Errorf("generate answer: %w", err)
	}

	return completion.Text, nil
}
