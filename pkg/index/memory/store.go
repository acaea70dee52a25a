// Package memory provides an in-memory vector store for development and
// tests. Similarity is cosine over the stored embeddings.
package memory

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/collegegpt/ragserver/pkg/index"

	"github.com/google/uuid"
)

var _ index.Provider = (*Store)(nil)

type Store struct {
	mu sync.RWMutex

	documents []index.Document
}

func New() *Store {
	return &Store{}
}

func (s *Store) Index(ctx context.Context, documents ...index.Document) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(documents))

	for _, document := range documents {
		if document.ID == "" {
			document.ID = uuid.NewString()
		}

		s.documents = append(s.documents, document)
		ids = append(ids, document.ID)
	}

	return ids, nil
}

func (s *Store) Query(ctx context.Context, embedding []float32, options *index.QueryOptions) ([]index.Result, error) {
	if options == nil {
		options = new(index.QueryOptions)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]index.Result, 0, len(s.documents))

	for _, document := range s.documents {
		score := cosine(embedding, document.Embedding)

		if options.Threshold != nil && score < *options.Threshold {
			continue
		}

		results = append(results, index.Result{
			Document: document,
			Score:    score,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if options.Limit != nil && len(results) > *options.Limit {
		results = results[:*options.Limit]
	}

	return results, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return nil
}

// Len returns the number of stored documents.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.documents)
}

func cosine(a, b []float32) float32 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, na, nb float64

	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}

	if na == 0 || nb == 0 {
		return 0
	}

	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}
