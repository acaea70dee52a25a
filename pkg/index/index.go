// Package index defines the vector store interface the pipeline reads and
// writes. Implementations live in the subpackages (qdrant, sqlite, memory).
package index

import (
	"context"
	"errors"
)

// ErrThresholdUnsupported is returned by Query when the backing store cannot
// filter by similarity score. Callers are expected to retry without the
// threshold rather than fail.
var ErrThresholdUnsupported = errors.New("score threshold filtering not supported")

// Document is a stored/retrieved indexed item.
type Document struct {
	// ID identifies the item within the collection. Empty on insert lets
	// the store assign one.
	ID string
	// Content is the textual payload.
	Content string
	// Metadata contains arbitrary key/value pairs associated with the document.
	Metadata map[string]string
	// Embedding holds the vector representation of the content.
	Embedding []float32
}

// QueryOptions control retrieval behavior.
type QueryOptions struct {
	// Limit defines the maximum number of results to return.
	Limit *int
	// Threshold excludes results scoring below it.
	Threshold *float32
}

// Result represents a single retrieval hit.
type Result struct {
	Document

	// Score is the similarity of the document to the query vector.
	Score float32
}

// Provider abstracts a vector collection capable of storing and retrieving
// embedded documents.
type Provider interface {
	// Index upserts documents into the collection and returns their ids.
	Index(ctx context.Context, documents ...Document) ([]string, error)

	// Query returns up to Limit documents nearest to the embedding, ranked
	// by descending similarity.
	Query(ctx context.Context, embedding []float32, options *QueryOptions) ([]Result, error)

	// Ping reports whether the collection is reachable.
	Ping(ctx context.Context) error
}
