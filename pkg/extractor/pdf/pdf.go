// Package pdf extracts text from PDF files, one document per page.
package pdf

import (
	"context"
	"fmt"
	"strconv"

	"github.com/collegegpt/ragserver/pkg/extractor"

	"github.com/ledongthuc/pdf"
)

var _ extractor.Provider = (*Extractor)(nil)

type Extractor struct {
}

func New() *Extractor {
	return &Extractor{}
}

func (e *Extractor) Extract(ctx context.Context, file extractor.File) ([]extractor.Document, error) {
	f, reader, err := pdf.Open(file.Path)

	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", file.Name, err)
	}

	defer f.Close()

	var documents []extractor.Document

	for i := 1; i <= reader.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page := reader.Page(i)

		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)

		if err != nil {
			return nil, fmt.Errorf("extract pdf %s page %d: %w", file.Name, i, err)
		}

		documents = append(documents, extractor.Document{
			Content: text,

			Metadata: map[string]string{
				"source": file.Name,
				"page":   strconv.Itoa(i),
			},
		})
	}

	return documents, nil
}
