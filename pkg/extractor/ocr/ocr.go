// Package ocr extracts text from images using Tesseract. Images whose OCR
// output is blank yield no document at all; scanned photos without text are
// common and are not an error.
package ocr

import (
	"context"
	"fmt"
	"strings"

	"github.com/collegegpt/ragserver/pkg/extractor"

	"github.com/otiai10/gosseract/v2"
)

var _ extractor.Provider = (*Extractor)(nil)

type Extractor struct {
	languages []string
}

type Option func(*Extractor)

func WithLanguages(languages ...string) Option {
	return func(e *Extractor) {
		e.languages = languages
	}
}

func New(options ...Option) *Extractor {
	e := &Extractor{
		languages: []string{"eng"},
	}

	for _, option := range options {
		option(e)
	}

	return e
}

func (e *Extractor) Extract(ctx context.Context, file extractor.File) ([]extractor.Document, error) {
	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(e.languages...); err != nil {
		return nil, fmt.Errorf("ocr %s: %w", file.Name, err)
	}

	if err := client.SetImage(file.Path); err != nil {
		return nil, fmt.Errorf("ocr %s: %w", file.Name, err)
	}

	text, err := client.Text()

	if err != nil {
		return nil, fmt.Errorf("ocr %s: %w", file.Name, err)
	}

	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	return []extractor.Document{
		{
			Content: text,

			Metadata: map[string]string{
				"source": file.Name,
			},
		},
	}, nil
}
