// Package segmenter splits extracted documents into overlapping fixed-size
// windows, the unit of embedding and retrieval.
package segmenter

import (
	"errors"

	"github.com/collegegpt/ragserver/pkg/extractor"
)

const (
	DefaultSize    = 1000
	DefaultOverlap = 150
)

// Segment is one window of a document's text. Metadata is copied from the
// source document.
type Segment struct {
	Content  string
	Metadata map[string]string
}

type Segmenter struct {
	size    int
	overlap int
}

func New(size, overlap int) (*Segmenter, error) {
	if size <= 0 {
		return nil, errors.New("segment size must be positive")
	}

	if overlap < 0 || overlap >= size {
		return nil, errors.New("segment overlap must be non-negative and smaller than size")
	}

	return &Segmenter{
		size:    size,
		overlap: overlap,
	}, nil
}

// Segment splits every document into windows of at most size characters,
// consecutive windows sharing exactly overlap characters. Empty documents
// yield no segments.
func (s *Segmenter) Segment(documents []extractor.Document) []Segment {
	var segments []Segment

	for _, document := range documents {
		segments = append(segments, s.split(document)...)
	}

	return segments
}

func (s *Segmenter) split(document extractor.Document) []Segment {
	runes := []rune(document.Content)

	if len(runes) == 0 {
		return nil
	}

	step := s.size - s.overlap

	var segments []Segment

	for start := 0; ; start += step {
		end := start + s.size

		if end > len(runes) {
			end = len(runes)
		}

		metadata := make(map[string]string, len(document.Metadata))

		for k, v := range document.Metadata {
			metadata[k] = v
		}

		segments = append(segments, Segment{
			Content:  string(runes[start:end]),
			Metadata: metadata,
		})

		if end == len(runes) {
			break
		}
	}

	return segments
}
