package config

import (
	"context"
	"fmt"

	"github.com/collegegpt/ragserver/pkg/authorizer/oidc"
)

type authorizerConfig struct {
	Type string `yaml:"type,omitempty"`

	Issuer string `yaml:"issuer,omitempty"`
}

// registerAuthorizer wires the optional token gate. Leaving the section out
// runs the server in dev mode: all requests are anonymous.
func (c *Config) registerAuthorizer(f *configFile) error {
	cfg := f.Authorizer

	if cfg.Type == "" && cfg.Issuer == "" {
		return nil
	}

	switch cfg.Type {
	case "oidc", "":
		a, err := oidc.New(context.Background(), cfg.Issuer)

		if err != nil {
			return fmt.Errorf("authorizer: %w", err)
		}

		c.authorizer = a

		return nil
	}

	return fmt.Errorf("unknown authorizer type: %s", cfg.Type)
}
