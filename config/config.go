// Package config parses the YAML configuration file and wires the concrete
// providers, stores and pipeline components out of it. Environment
// references in the file (${VAR}) are expanded before parsing.
package config

import (
	"bytes"
	"os"

	"github.com/collegegpt/ragserver/pkg/authorizer"
	"github.com/collegegpt/ragserver/pkg/index"
	"github.com/collegegpt/ragserver/pkg/pipeline"
	"github.com/collegegpt/ragserver/pkg/provider"
	"github.com/collegegpt/ragserver/pkg/storage"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Address string

	Origins []string

	EmbedModel string

	embedder  provider.Embedder
	completer provider.Completer

	container storage.Container
	index     index.Provider

	authorizer authorizer.Provider

	pipeline *pipeline.Pipeline
}

// Pipeline returns the wired pipeline coordinator.
func (c *Config) Pipeline() *pipeline.Pipeline {
	return c.pipeline
}

// Authorizer returns the configured token gate, nil when authentication is
// disabled (dev mode).
func (c *Config) Authorizer() authorizer.Provider {
	return c.authorizer
}

// Index returns the configured vector store.
func (c *Config) Index() index.Provider {
	return c.index
}

func Parse(path string) (*Config, error) {
	file, err := parseFile(path)

	if err != nil {
		return nil, err
	}

	c := &Config{
		Address: ":8080",
	}

	if err := c.registerServer(file); err != nil {
		return nil, err
	}

	if err := c.registerProviders(file); err != nil {
		return nil, err
	}

	if err := c.registerStorage(file); err != nil {
		return nil, err
	}

	if err := c.registerIndex(file); err != nil {
		return nil, err
	}

	if err := c.registerAuthorizer(file); err != nil {
		return nil, err
	}

	if err := c.registerPipeline(file); err != nil {
		return nil, err
	}

	return c, nil
}

type configFile struct {
	Server serverConfig `yaml:"server"`

	Embedder  embedderConfig  `yaml:"embedder"`
	Completer completerConfig `yaml:"completer"`

	Storage storageConfig `yaml:"storage"`
	Index   indexConfig   `yaml:"index"`

	Authorizer authorizerConfig `yaml:"authorizer"`

	Pipeline pipelineConfig `yaml:"pipeline"`
}

type serverConfig struct {
	Address string   `yaml:"address,omitempty"`
	Origins []string `yaml:"cors_origins,omitempty"`
}

func (c *Config) registerServer(f *configFile) error {
	if f.Server.Address != "" {
		c.Address = f.Server.Address
	}

	c.Origins = f.Server.Origins

	return nil
}

func parseFile(path string) (*configFile, error) {
	data, err := os.ReadFile(path)

	if err != nil {
		return nil, err
	}

	data = []byte(os.ExpandEnv(string(data)))

	var config configFile

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	if err := decoder.Decode(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
