// Package text extracts plain text files as a single document.
package text

import (
	"context"
	"fmt"
	"os"

	"github.com/collegegpt/ragserver/pkg/extractor"
)

var _ extractor.Provider = (*Extractor)(nil)

type Extractor struct {
}

func New() *Extractor {
	return &Extractor{}
}

func (e *Extractor) Extract(ctx context.Context, file extractor.File) ([]extractor.Document, error) {
	data, err := os.ReadFile(file.Path)

	if err != nil {
		return nil, fmt.Errorf("read text %s: %w", file.Name, err)
	}

	return []extractor.Document{
		{
			Content: string(data),

			Metadata: map[string]string{
				"source": file.Name,
			},
		},
	}, nil
}
