// Package filesystem implements the storage container over a local
// directory, mainly for development and tests.
package filesystem

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/collegegpt/ragserver/pkg/storage"
)

var _ storage.Container = (*Container)(nil)

type Container struct {
	root string
}

func New(root string) (*Container, error) {
	if root == "" {
		return nil, errors.New("missing directory path")
	}

	return &Container{
		root: root,
	}, nil
}

func (c *Container) List(ctx context.Context) ([]storage.Object, error) {
	entries, err := os.ReadDir(c.root)

	if err != nil {
		return nil, err
	}

	var objects []storage.Object

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		info, err := entry.Info()

		if err != nil {
			return nil, err
		}

		objects = append(objects, storage.Object{
			Name: entry.Name(),
			Size: info.Size(),
		})
	}

	return objects, nil
}

func (c *Container) Fetch(ctx context.Context, name string) ([]byte, error) {
	return os.ReadFile(filepath.Join(c.root, filepath.Base(name)))
}
