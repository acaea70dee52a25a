// Package extractor turns source files into text documents. Each subpackage
// handles one format; Detect maps a file name onto the closed set of known
// formats so the loader can dispatch without guessing.
package extractor

import (
	"context"
	"path"
	"strings"
)

// File points at a local copy of a source object. Name is the object's
// original name (kept for metadata), Path the temporary file on disk.
type File struct {
	Name string
	Path string
}

// Document is an extracted text record. Multi-page formats produce one
// document per page or slide.
type Document struct {
	Content  string
	Metadata map[string]string
}

// Provider extracts text documents from a file of its format.
type Provider interface {
	Extract(ctx context.Context, file File) ([]Document, error)
}

// Format is the closed set of source formats the loader dispatches on.
type Format string

const (
	FormatPDF   Format = "pdf"
	FormatDeck  Format = "deck"
	FormatText  Format = "text"
	FormatImage Format = "image"

	FormatUnknown Format = ""
)

// Detect infers the format from the file name suffix. Unrecognized suffixes
// map to FormatUnknown; the comparison is case-insensitive.
func Detect(name string) Format {
	switch strings.ToLower(path.Ext(name)) {
	case ".pdf":
		return FormatPDF

	case ".pptx", ".ppt":
		return FormatDeck

	case ".txt", ".md":
		return FormatText

	case ".png", ".jpg", ".jpeg":
		return FormatImage
	}

	return FormatUnknown
}
