package config

import (
	"context"
	"fmt"

	"github.com/collegegpt/ragserver/pkg/provider"
	"github.com/collegegpt/ragserver/pkg/provider/anthropic"
	"github.com/collegegpt/ragserver/pkg/provider/bedrock"
	"github.com/collegegpt/ragserver/pkg/provider/cohere"
	"github.com/collegegpt/ragserver/pkg/provider/google"
	"github.com/collegegpt/ragserver/pkg/provider/openai"

	"golang.org/x/time/rate"
)

type embedderConfig struct {
	Type string `yaml:"type"`

	APIKey string `yaml:"api_key,omitempty"`
	Model  string `yaml:"model,omitempty"`

	// RateLimit caps embedding calls per second.
	RateLimit *int `yaml:"rate_limit,omitempty"`
}

type completerConfig struct {
	Type string `yaml:"type"`

	APIKey string `yaml:"api_key,omitempty"`
	Model  string `yaml:"model,omitempty"`

	// Region applies to the bedrock completer.
	Region string `yaml:"region,omitempty"`
}

func (c *Config) registerProviders(f *configFile) error {
	embedder, err := createEmbedder(f.Embedder)

	if err != nil {
		return fmt.Errorf("embedder: %w", err)
	}

	completer, err := createCompleter(f.Completer)

	if err != nil {
		return fmt.Errorf("completer: %w", err)
	}

	c.embedder = provider.WithRateLimit(embedder, createLimiter(f.Embedder.RateLimit))
	c.completer = completer

	c.EmbedModel = f.Embedder.Model

	return nil
}

func createEmbedder(cfg embedderConfig) (provider.Embedder, error) {
	switch cfg.Type {
	case "google", "":
		var options []google.Option

		if cfg.Model != "" {
			options = append(options, google.WithEmbedModel(cfg.Model))
		}

		return google.New(context.Background(), cfg.APIKey, options...)

	case "openai":
		var options []openai.Option

		if cfg.Model != "" {
			options = append(options, openai.WithEmbedModel(cfg.Model))
		}

		return openai.New(cfg.APIKey, options...)

	case "cohere":
		var options []cohere.Option

		if cfg.Model != "" {
			options = append(options, cohere.WithModel(cfg.Model))
		}

		return cohere.New(cfg.APIKey, options...)
	}

	return nil, fmt.Errorf("unknown embedder type: %s", cfg.Type)
}

func createCompleter(cfg completerConfig) (provider.Completer, error) {
	switch cfg.Type {
	case "google", "":
		var options []google.Option

		if cfg.Model != "" {
			options = append(options, google.WithCompleteModel(cfg.Model))
		}

		return google.New(context.Background(), cfg.APIKey, options...)

	case "openai":
		var options []openai.Option

		if cfg.Model != "" {
			options = append(options, openai.WithCompleteModel(cfg.Model))
		}

		return openai.New(cfg.APIKey, options...)

	case "anthropic":
		var options []anthropic.Option

		if cfg.Model != "" {
			options = append(options, anthropic.WithModel(cfg.Model))
		}

		return anthropic.New(cfg.APIKey, options...)

	case "bedrock":
		var options []bedrock.Option

		if cfg.Model != "" {
			options = append(options, bedrock.WithModel(cfg.Model))
		}

		return bedrock.New(context.Background(), cfg.Region, options...)
	}

	return nil, fmt.Errorf("unknown completer type: %s", cfg.Type)
}

func createLimiter(limit *int) *rate.Limiter {
	if limit == nil {
		return nil
	}

	return rate.NewLimiter(rate.Limit(*limit), *limit)
}
