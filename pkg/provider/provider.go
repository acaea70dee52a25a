// Package provider defines the narrow capability interfaces the pipeline is
// built against: embedding text into vectors and completing prompts into
// text. Concrete implementations live in the subpackages and wrap vendor
// SDKs; a deterministic fake satisfies the same interfaces in tests.
package provider

import "context"

// Embedder converts text into fixed-dimension float vectors.
//
// Embed encodes document passages, EmbedQuery encodes a search query. Some
// providers distinguish the two (passage vs. query encodings); providers
// without the distinction back both with the same call. The two paths must
// use the same underlying model so vectors are comparable.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Completer generates text from a prompt.
type Completer interface {
	Complete(ctx context.Context, prompt string, options *CompleteOptions) (*Completion, error)
}

// CompleteOptions control generation. Nil fields leave the provider default.
type CompleteOptions struct {
	MaxTokens   *int
	Temperature *float32
	TopP        *float32
}

// Completion holds the raw generated text.
type Completion struct {
	Text string

	Model string
}
