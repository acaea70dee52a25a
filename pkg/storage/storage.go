// Package storage abstracts the blob container source documents are read
// from. Containers are read-only to the pipeline.
package storage

import "context"

// Object describes a stored blob.
type Object struct {
	// Name is the blob's key within the container.
	Name string
	// Size is the blob size in bytes, when the backend reports it.
	Size int64
}

// Container enumerates and fetches blobs.
type Container interface {
	// List returns all objects in the container.
	List(ctx context.Context) ([]Object, error)

	// Fetch returns the raw bytes of the named object.
	Fetch(ctx context.Context, name string) ([]byte, error)
}
