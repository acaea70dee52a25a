// Package loader reads every object of a storage container, dispatches it to
// the extractor matching its format and collects the resulting text
// documents. A failing object is logged and skipped; a failing container
// fails the whole run.
package loader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/collegegpt/ragserver/pkg/extractor"
	"github.com/collegegpt/ragserver/pkg/storage"

	"github.com/sirupsen/logrus"
)

// Stats accounts for every enumerated object: each one ends up processed
// (documents emitted), skipped (unrecognized format or blank OCR output) or
// failed (fetch/extraction error).
type Stats struct {
	Objects   int
	Documents int
	Skipped   int
	Failed    int
}

type Loader struct {
	extractors map[extractor.Format]extractor.Provider

	logger *logrus.Logger
}

type Option func(*Loader)

func WithExtractor(format extractor.Format, provider extractor.Provider) Option {
	return func(l *Loader) {
		l.extractors[format] = provider
	}
}

func WithLogger(logger *logrus.Logger) Option {
	return func(l *Loader) {
		l.logger = logger
	}
}

func New(options ...Option) (*Loader, error) {
	l := &Loader{
		extractors: make(map[extractor.Format]extractor.Provider),

		logger: logrus.StandardLogger(),
	}

	for _, option := range options {
		option(l)
	}

	if len(l.extractors) == 0 {
		return nil, errors.New("missing extractors")
	}

	return l, nil
}

// Load enumerates the container and extracts text documents from every
// supported object. The returned error is non-nil only when the container
// itself is unreachable; per-object problems are reflected in Stats.
func (l *Loader) Load(ctx context.Context, container storage.Container) ([]extractor.Document, Stats, error) {
	var stats Stats

	objects, err := container.List(ctx)

	if err != nil {
		return nil, stats, fmt.Errorf("list container: %w", err)
	}

	var documents []extractor.Document

	for _, object := range objects {
		stats.Objects++

		format := extractor.Detect(object.Name)

		provider, ok := l.extractors[format]

		if !ok {
			l.logger.WithField("object", object.Name).Debug("skipping unsupported object")

			stats.Skipped++
			continue
		}

		extracted, err := l.process(ctx, container, object, provider)

		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, stats, err
			}

			l.logger.WithField("object", object.Name).WithError(err).Warn("skipping object after extraction failure")

			stats.Failed++
			continue
		}

		if len(extracted) == 0 {
			stats.Skipped++
			continue
		}

		documents = append(documents, extracted...)
		stats.Documents += len(extracted)
	}

	return documents, stats, nil
}

// process downloads one object into a temporary file and runs the extractor
// on it. The temporary file is removed before process returns, extraction
// success or not.
func (l *Loader) process(ctx context.Context, container storage.Container, object storage.Object, provider extractor.Provider) ([]extractor.Document, error) {
	data, err := container.Fetch(ctx, object.Name)

	if err != nil {
		return nil, fmt.Errorf("fetch object: %w", err)
	}

	tmp, err := os.CreateTemp("", "ragserver-*"+filepath.Ext(object.Name))

	if err != nil {
		return nil, err
	}

	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return nil, err
	}

	if err := tmp.Close(); err != nil {
		return nil, err
	}

	return provider.Extract(ctx, extractor.File{
		Name: object.Name,
		Path: tmp.Name(),
	})
}
