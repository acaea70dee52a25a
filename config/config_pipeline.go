package config

import (
	"fmt"

	"github.com/collegegpt/ragserver/pkg/chain/rag"
	"github.com/collegegpt/ragserver/pkg/extractor"
	"github.com/collegegpt/ragserver/pkg/extractor/deck"
	"github.com/collegegpt/ragserver/pkg/extractor/ocr"
	"github.com/collegegpt/ragserver/pkg/extractor/pdf"
	"github.com/collegegpt/ragserver/pkg/extractor/text"
	"github.com/collegegpt/ragserver/pkg/indexer"
	"github.com/collegegpt/ragserver/pkg/loader"
	"github.com/collegegpt/ragserver/pkg/pipeline"
	"github.com/collegegpt/ragserver/pkg/retriever"
	"github.com/collegegpt/ragserver/pkg/segmenter"
)

type pipelineConfig struct {
	ChunkSize    int `yaml:"chunk_size,omitempty"`
	ChunkOverlap int `yaml:"chunk_overlap,omitempty"`

	BatchSize int `yaml:"batch_size,omitempty"`

	TopK           int      `yaml:"top_k,omitempty"`
	ScoreThreshold *float32 `yaml:"score_threshold,omitempty"`

	MaxTokens   *int     `yaml:"max_tokens,omitempty"`
	Temperature *float32 `yaml:"temperature,omitempty"`
	TopP        *float32 `yaml:"top_p,omitempty"`

	OCRLanguages []string `yaml:"ocr_languages,omitempty"`
}

func (c *Config) registerPipeline(f *configFile) error {
	cfg := f.Pipeline

	size := cfg.ChunkSize

	if size == 0 {
		size = segmenter.DefaultSize
	}

	overlap := cfg.ChunkOverlap

	if overlap == 0 {
		overlap = segmenter.DefaultOverlap
	}

	sg, err := segmenter.New(size, overlap)

	if err != nil {
		return fmt.Errorf("segmenter: %w", err)
	}

	var ocrOptions []ocr.Option

	if len(cfg.OCRLanguages) > 0 {
		ocrOptions = append(ocrOptions, ocr.WithLanguages(cfg.OCRLanguages...))
	}

	ld, err := loader.New(
		loader.WithExtractor(extractor.FormatPDF, pdf.New()),
		loader.WithExtractor(extractor.FormatDeck, deck.New()),
		loader.WithExtractor(extractor.FormatText, text.New()),
		loader.WithExtractor(extractor.FormatImage, ocr.New(ocrOptions...)),
	)

	if err != nil {
		return fmt.Errorf("loader: %w", err)
	}

	var indexerOptions []indexer.Option

	if cfg.BatchSize > 0 {
		indexerOptions = append(indexerOptions, indexer.WithBatchSize(cfg.BatchSize))
	}

	ix, err := indexer.New(c.embedder, c.index, indexerOptions...)

	if err != nil {
		return fmt.Errorf("indexer: %w", err)
	}

	pair := func() (*pipeline.Pair, error) {
		var retrieverOptions []retriever.Option

		if cfg.TopK > 0 {
			retrieverOptions = append(retrieverOptions, retriever.WithLimit(cfg.TopK))
		}

		threshold := retriever.DefaultThreshold

		if cfg.ScoreThreshold != nil {
			threshold = float64(*cfg.ScoreThreshold)
		}

		if threshold > 0 {
			retrieverOptions = append(retrieverOptions, retriever.WithThreshold(float32(threshold)))
		}

		rt, err := retriever.New(c.embedder, c.index, retrieverOptions...)

		if err != nil {
			return nil, err
		}

		chainOptions := []rag.Option{
			rag.WithCompleter(c.completer),
		}

		if cfg.MaxTokens != nil {
			chainOptions = append(chainOptions, rag.WithMaxTokens(*cfg.MaxTokens))
		}

		if cfg.Temperature != nil {
			chainOptions = append(chainOptions, rag.WithTemperature(*cfg.Temperature))
		}

		if cfg.TopP != nil {
			chainOptions = append(chainOptions, rag.WithTopP(*cfg.TopP))
		}

		ch, err := rag.New(chainOptions...)

		if err != nil {
			return nil, err
		}

		return &pipeline.Pair{
			Retriever: rt,
			Chain:     ch,
		}, nil
	}

	p, err := pipeline.New(c.container, ld, sg, ix, c.index, pair)

	if err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}

	c.pipeline = p

	return nil
}
