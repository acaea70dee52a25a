//go:build integration

package qdrant

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/collegegpt/ragserver/pkg/index"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// Runs against a real Qdrant in a container. Needs a local Docker daemon:
//
//	go test -tags integration ./pkg/index/qdrant/
func TestQdrantIntegration(t *testing.T) {
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "qdrant/qdrant:v1.12.4",
			ExposedPorts: []string{"6333/tcp"},

			WaitingFor: wait.ForHTTP("/healthz").
				WithPort("6333/tcp").
				WithStartupTimeout(2 * time.Minute),
		},

		Started: true,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)

	port, err := container.MappedPort(ctx, "6333/tcp")
	require.NoError(t, err)

	client, err := New(Config{
		URL:        fmt.Sprintf("http://%s:%s", host, port.Port()),
		Collection: "integration_test",
	})
	require.NoError(t, err)

	require.NoError(t, client.Ping(ctx))

	ids, err := client.Index(ctx,
		index.Document{Content: "Paris is the capital of France.", Metadata: map[string]string{"source": "notes.txt"}, Embedding: []float32{1, 0, 0}},
		index.Document{Content: "Berlin is the capital of Germany.", Embedding: []float32{0, 1, 0}},
		index.Document{Content: "The mitochondria is the powerhouse of the cell.", Embedding: []float32{0, 0, 1}},
	)
	require.NoError(t, err)
	require.Len(t, ids, 3)

	limit := 2
	threshold := float32(0.5)

	results, err := client.Query(ctx, []float32{0.9, 0.1, 0}, &index.QueryOptions{
		Limit:     &limit,
		Threshold: &threshold,
	})
	require.NoError(t, err)

	require.Len(t, results, 1)
	require.Equal(t, "Paris is the capital of France.", results[0].Content)
	require.Equal(t, map[string]string{"source": "notes.txt"}, results[0].Metadata)
	require.Greater(t, results[0].Score, float32(0.5))

	// Upsert by ID replaces in place.
	_, err = client.Index(ctx, index.Document{
		ID:        ids[0],
		Content:   "Paris, France's capital, lies on the Seine.",
		Embedding: []float32{1, 0, 0},
	})
	require.NoError(t, err)

	results, err = client.Query(ctx, []float32{1, 0, 0}, &index.QueryOptions{Limit: &limit})
	require.NoError(t, err)

	require.NotEmpty(t, results)
	require.Equal(t, "Paris, France's capital, lies on the Seine.", results[0].Content)
}
