// Package azure implements the storage container against Azure Blob Storage.
package azure

import (
	"context"
	"errors"
	"io"

	"github.com/collegegpt/ragserver/pkg/storage"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
)

var _ storage.Container = (*Container)(nil)

type Container struct {
	client *azblob.Client

	container string
}

type Config struct {
	ConnectionString string
	Container        string
}

func New(cfg Config) (*Container, error) {
	if cfg.ConnectionString == "" {
		return nil, errors.New("missing storage connection string")
	}

	if cfg.Container == "" {
		return nil, errors.New("missing container name")
	}

	client, err := azblob.NewClientFromConnectionString(cfg.ConnectionString, nil)

	if err != nil {
		return nil, err
	}

	return &Container{
		client: client,

		container: cfg.Container,
	}, nil
}

func (c *Container) List(ctx context.Context) ([]storage.Object, error) {
	var objects []storage.Object

	pager := c.client.NewListBlobsFlatPager(c.container, nil)

	for pager.More() {
		page, err := pager.NextPage(ctx)

		if err != nil {
			return nil, err
		}

		for _, item := range page.Segment.BlobItems {
			if item.Name == nil {
				continue
			}

			object := storage.Object{
				Name: *item.Name,
			}

			if item.Properties != nil && item.Properties.ContentLength != nil {
				object.Size = *item.Properties.ContentLength
			}

			objects = append(objects, object)
		}
	}

	return objects, nil
}

func (c *Container) Fetch(ctx context.Context, name string) ([]byte, error) {
	resp, err := c.client.DownloadStream(ctx, c.container, name, nil)

	if err != nil {
		return nil, err
	}

	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}
