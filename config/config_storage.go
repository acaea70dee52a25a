package config

import (
	"fmt"
	"time"

	"github.com/collegegpt/ragserver/pkg/index"
	"github.com/collegegpt/ragserver/pkg/index/memory"
	"github.com/collegegpt/ragserver/pkg/index/qdrant"
	"github.com/collegegpt/ragserver/pkg/index/sqlite"
	"github.com/collegegpt/ragserver/pkg/storage"
	"github.com/collegegpt/ragserver/pkg/storage/azure"
	"github.com/collegegpt/ragserver/pkg/storage/filesystem"
)

type storageConfig struct {
	Type string `yaml:"type"`

	// For the azure container
	ConnectionString string `yaml:"connection_string,omitempty"`
	Container        string `yaml:"container,omitempty"`

	// For the filesystem container
	Path string `yaml:"path,omitempty"`
}

func (c *Config) registerStorage(f *configFile) error {
	container, err := createContainer(f.Storage)

	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}

	c.container = container

	return nil
}

func createContainer(cfg storageConfig) (storage.Container, error) {
	switch cfg.Type {
	case "azure", "":
		return azure.New(azure.Config{
			ConnectionString: cfg.ConnectionString,
			Container:        cfg.Container,
		})

	case "filesystem":
		return filesystem.New(cfg.Path)
	}

	return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
}

type indexConfig struct {
	Type string `yaml:"type"`

	// For qdrant
	URL        string `yaml:"url,omitempty"`
	APIKey     string `yaml:"api_key,omitempty"`
	Collection string `yaml:"collection,omitempty"`
	Timeout    string `yaml:"timeout,omitempty"`

	// For sqlite
	Path string `yaml:"path,omitempty"`
}

func (c *Config) registerIndex(f *configFile) error {
	idx, err := createIndex(f.Index)

	if err != nil {
		return fmt.Errorf("index: %w", err)
	}

	c.index = idx

	return nil
}

func createIndex(cfg indexConfig) (index.Provider, error) {
	switch cfg.Type {
	case "qdrant", "":
		var timeout time.Duration

		if cfg.Timeout != "" {
			parsed, err := time.ParseDuration(cfg.Timeout)

			if err != nil {
				return nil, fmt.Errorf("invalid timeout %q: %w", cfg.Timeout, err)
			}

			timeout = parsed
		}

		collection := cfg.Collection

		if collection == "" {
			collection = "rag_chatbot_collection"
		}

		return qdrant.New(qdrant.Config{
			URL:        cfg.URL,
			APIKey:     cfg.APIKey,
			Collection: collection,
			Timeout:    timeout,
		})

	case "sqlite":
		return sqlite.New(cfg.Path)

	case "memory":
		return memory.New(), nil
	}

	return nil, fmt.Errorf("unknown index type: %s", cfg.Type)
}
