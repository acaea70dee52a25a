// Package chain defines the answer composition interface: retrieved context
// plus a question in, generated answer out.
package chain

import (
	"context"

	"github.com/collegegpt/ragserver/pkg/index"
)

// Provider composes an answer from a question and its retrieved context.
type Provider interface {
	Answer(ctx context.Context, question string, results []index.Result) (string, error)
}
