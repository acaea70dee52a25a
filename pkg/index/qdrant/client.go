// Package qdrant implements the index provider against the Qdrant REST API.
// The collection is created on first insert (cosine distance) using the
// dimension of the supplied embeddings.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/collegegpt/ragserver/pkg/index"

	"github.com/google/uuid"
)

var _ index.Provider = (*Client)(nil)

type Client struct {
	url        string
	apiKey     string
	collection string

	client *http.Client

	mu      sync.Mutex
	ensured bool
}

type Config struct {
	URL        string
	APIKey     string
	Collection string
	Timeout    time.Duration
}

func New(cfg Config) (*Client, error) {
	if cfg.URL == "" {
		return nil, errors.New("missing qdrant url")
	}

	if cfg.Collection == "" {
		return nil, errors.New("missing qdrant collection")
	}

	timeout := cfg.Timeout

	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,

		client: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

func (c *Client) Index(ctx context.Context, documents ...index.Document) ([]string, error) {
	if len(documents) == 0 {
		return nil, nil
	}

	if err := c.ensureCollection(ctx, len(documents[0].Embedding)); err != nil {
		return nil, err
	}

	type point struct {
		ID      string         `json:"id"`
		Vector  []float32      `json:"vector"`
		Payload map[string]any `json:"payload"`
	}

	points := make([]point, 0, len(documents))
	ids := make([]string, 0, len(documents))

	for _, document := range documents {
		id := document.ID

		if id == "" {
			id = uuid.NewString()
		}

		points = append(points, point{
			ID:     id,
			Vector: document.Embedding,

			Payload: map[string]any{
				"content":  document.Content,
				"metadata": document.Metadata,
			},
		})

		ids = append(ids, id)
	}

	body := map[string]any{
		"points": points,
	}

	url := fmt.Sprintf("%s/collections/%s/points?wait=true", c.url, c.collection)

	if err := c.do(ctx, http.MethodPut, url, body, nil); err != nil {
		return nil, err
	}

	return ids, nil
}

func (c *Client) Query(ctx context.Context, embedding []float32, options *index.QueryOptions) ([]index.Result, error) {
	if options == nil {
		options = new(index.QueryOptions)
	}

	limit := 10

	if options.Limit != nil {
		limit = *options.Limit
	}

	body := map[string]any{
		"vector": embedding,
		"limit":  limit,

		"with_payload": true,
	}

	if options.Threshold != nil {
		body["score_threshold"] = *options.Threshold
	}

	var resp struct {
		Result []struct {
			ID      string         `json:"id"`
			Score   float32        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}

	url := fmt.Sprintf("%s/collections/%s/points/search", c.url, c.collection)

	if err := c.do(ctx, http.MethodPost, url, body, &resp); err != nil {
		return nil, err
	}

	results := make([]index.Result, 0, len(resp.Result))

	for _, r := range resp.Result {
		document := index.Document{
			ID: r.ID,
		}

		if content, ok := r.Payload["content"].(string); ok {
			document.Content = content
		}

		if metadata, ok := r.Payload["metadata"].(map[string]any); ok {
			document.Metadata = make(map[string]string, len(metadata))

			for k, v := range metadata {
				if s, ok := v.(string); ok {
					document.Metadata[k] = s
				}
			}
		}

		results = append(results, index.Result{
			Document: document,
			Score:    r.Score,
		})
	}

	return results, nil
}

func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url+"/collections", nil)

	if err != nil {
		return err
	}

	if c.apiKey != "" {
		req.Header.Set("api-key", c.apiKey)
	}

	resp, err := c.client.Do(req)

	if err != nil {
		return err
	}

	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant unreachable: %s", resp.Status)
	}

	return nil
}

// ensureCollection creates the collection with cosine distance if missing.
// Only success is remembered; a failed create is retried on the next call,
// so the store can recover once qdrant is reachable again.
func (c *Client) ensureCollection(ctx context.Context, dimension int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ensured {
		return nil
	}

	if dimension <= 0 {
		return errors.New("invalid embedding dimension")
	}

	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": "Cosine",
		},
	}

	url := fmt.Sprintf("%s/collections/%s", c.url, c.collection)

	err := c.do(ctx, http.MethodPut, url, body, nil)

	// An existing collection answers 409. That is fine.
	var status *statusError

	if errors.As(err, &status) && status.code == http.StatusConflict {
		err = nil
	}

	if err != nil {
		return err
	}

	c.ensured = true

	return nil
}

type statusError struct {
	code   int
	status string
	body   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("qdrant request failed: %s: %s", e.status, e.body)
}

func (c *Client) do(ctx context.Context, method, url string, body, out any) error {
	data, err := json.Marshal(body)

	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(data))

	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")

	if c.apiKey != "" {
		req.Header.Set("api-key", c.apiKey)
	}

	resp, err := c.client.Do(req)

	if err != nil {
		return err
	}

	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))

		return &statusError{
			code:   resp.StatusCode,
			status: resp.Status,
			body:   string(bytes.TrimSpace(detail)),
		}
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}

	return nil
}
