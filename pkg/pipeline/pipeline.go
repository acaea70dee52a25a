// Package pipeline owns the live retrieval state of the service. It is the
// only writer of the (retriever, chain) pair: Answer reads an atomic
// snapshot, Rebuild re-ingests the source container and swaps the pair in
// one step, so concurrent Answer calls always see a consistent pair.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/collegegpt/ragserver/pkg/chain"
	"github.com/collegegpt/ragserver/pkg/index"
	"github.com/collegegpt/ragserver/pkg/indexer"
	"github.com/collegegpt/ragserver/pkg/loader"
	"github.com/collegegpt/ragserver/pkg/segmenter"
	"github.com/collegegpt/ragserver/pkg/storage"

	"github.com/sirupsen/logrus"
)

var (
	// ErrNotInitialized: no build has ever succeeded, there is nothing to
	// answer from. Distinct from ErrUnavailable so operators can tell
	// "never built" from "built then lost the store".
	ErrNotInitialized = errors.New("pipeline not initialized")

	// ErrUnavailable: the vector store was unreachable when the pipeline
	// last tried to use it.
	ErrUnavailable = errors.New("vector store unavailable")

	// ErrRebuildInProgress: a rebuild is already running. Concurrent
	// rebuilds are rejected, not queued.
	ErrRebuildInProgress = errors.New("rebuild already in progress")
)

// Searcher is the retrieval half of the live pair.
type Searcher interface {
	Search(ctx context.Context, query string) ([]index.Result, error)
}

// Pair is the swappable unit of serving state. Both halves are replaced
// together; no request ever observes a mixed pair.
type Pair struct {
	Retriever Searcher
	Chain     chain.Provider
}

// PairFactory constructs a fresh pair against the current collection.
type PairFactory func() (*Pair, error)

// Result summarizes one rebuild run.
type Result struct {
	DocumentsProcessed int `json:"documents_processed"`
	ChunksCreated      int `json:"chunks_created"`
	ItemsIndexed       int `json:"items_indexed"`
	ObjectsSkipped     int `json:"objects_skipped"`
	ObjectsFailed      int `json:"objects_failed"`
}

// Status reports the coordinator state for health checks.
type Status struct {
	Initialized bool `json:"initialized"`
	Available   bool `json:"available"`
	Rebuilding  bool `json:"rebuilding"`
}

type Pipeline struct {
	container storage.Container

	loader    *loader.Loader
	segmenter *segmenter.Segmenter
	indexer   *indexer.Indexer
	index     index.Provider

	pair PairFactory

	current     atomic.Pointer[Pair]
	unavailable atomic.Bool
	rebuilding  atomic.Bool

	rebuildMu sync.Mutex

	logger *logrus.Logger
}

type Option func(*Pipeline)

func WithLogger(logger *logrus.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

func New(container storage.Container, ld *loader.Loader, sg *segmenter.Segmenter, ix *indexer.Indexer, idx index.Provider, pair PairFactory, options ...Option) (*Pipeline, error) {
	if container == nil {
		return nil, errors.New("missing storage container")
	}

	if ld == nil || sg == nil || ix == nil {
		return nil, errors.New("missing pipeline components")
	}

	if idx == nil {
		return nil, errors.New("missing index provider")
	}

	if pair == nil {
		return nil, errors.New("missing pair factory")
	}

	p := &Pipeline{
		container: container,

		loader:    ld,
		segmenter: sg,
		indexer:   ix,
		index:     idx,

		pair: pair,

		logger: logrus.StandardLogger(),
	}

	for _, option := range options {
		option(p)
	}

	return p, nil
}

// Initialize brings the pipeline up against the existing collection so the
// service can answer without a prior rebuild. An unreachable store leaves
// the pipeline unavailable until a later rebuild succeeds.
func (p *Pipeline) Initialize(ctx context.Context) error {
	if err := p.index.Ping(ctx); err != nil {
		p.unavailable.Store(true)

		p.logger.WithError(err).Warn("vector store unreachable, pipeline starts unavailable")

		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	pair, err := p.pair()

	if err != nil {
		return err
	}

	p.current.Store(pair)
	p.unavailable.Store(false)

	p.logger.Info("pipeline initialized against existing collection")

	return nil
}

// Answer retrieves context for the question and composes an answer using
// the current pair. Safe for concurrent use; during a rebuild the previous
// pair keeps serving.
func (p *Pipeline) Answer(ctx context.Context, question string) (string, error) {
	pair := p.current.Load()

	if pair == nil {
		if p.unavailable.Load() {
			return "", ErrUnavailable
		}

		return "", ErrNotInitialized
	}

	results, err := pair.Retriever.Search(ctx, question)

	if err != nil {
		// A failed search against a store that no longer answers pings
		// means the store is gone, not the query.
		if pingErr := p.index.Ping(ctx); pingErr != nil {
			p.unavailable.Store(true)

			return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
		}

		return "", err
	}

	return pair.Chain.Answer(ctx, question, results)
}

// Rebuild re-ingests the container (load, segment, embed, upsert) and swaps
// in a fresh pair on success. A failed rebuild leaves the previous pair
// serving. At most one rebuild runs at a time; a second caller gets
// ErrRebuildInProgress.
func (p *Pipeline) Rebuild(ctx context.Context) (*Result, error) {
	if !p.rebuildMu.TryLock() {
		return nil, ErrRebuildInProgress
	}

	defer p.rebuildMu.Unlock()

	p.rebuilding.Store(true)
	defer p.rebuilding.Store(false)

	if err := p.index.Ping(ctx); err != nil {
		p.unavailable.Store(true)

		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	documents, stats, err := p.loader.Load(ctx, p.container)

	if err != nil {
		return nil, err
	}

	result := &Result{
		DocumentsProcessed: stats.Documents,
		ObjectsSkipped:     stats.Skipped,
		ObjectsFailed:      stats.Failed,
	}

	if len(documents) == 0 {
		p.logger.Info("no documents found, previous index left untouched")

		return result, nil
	}

	segments := p.segmenter.Segment(documents)
	result.ChunksCreated = len(segments)

	ids, err := p.indexer.Build(ctx, segments)

	if err != nil {
		return nil, err
	}

	result.ItemsIndexed = len(ids)

	pair, err := p.pair()

	if err != nil {
		return nil, err
	}

	p.current.Store(pair)
	p.unavailable.Store(false)

	p.logger.WithFields(logrus.Fields{
		"documents": result.DocumentsProcessed,
		"chunks":    result.ChunksCreated,
		"items":     result.ItemsIndexed,
		"skipped":   result.ObjectsSkipped,
		"failed":    result.ObjectsFailed,
	}).Info("rebuild complete")

	return result, nil
}

// Status reports the coordinator state.
func (p *Pipeline) Status() Status {
	return Status{
		Initialized: p.current.Load() != nil,
		Available:   !p.unavailable.Load(),
		Rebuilding:  p.rebuilding.Load(),
	}
}
