// Package sqlite implements a durable local vector store on SQLite.
// Embeddings are stored as little-endian float32 blobs; similarity search is
// a brute-force cosine scan, which is adequate for collections in the tens
// of thousands of chunks.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/collegegpt/ragserver/pkg/index"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

var _ index.Provider = (*Store)(nil)

type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	id        TEXT PRIMARY KEY,
	content   TEXT NOT NULL,
	metadata  TEXT,
	embedding BLOB NOT NULL
);
`

func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)

	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{
		db: db,
	}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Index(ctx context.Context, documents ...index.Document) ([]string, error) {
	if len(documents) == 0 {
		return nil, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)

	if err != nil {
		return nil, err
	}

	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO documents(id, content, metadata, embedding) VALUES(?, ?, ?, ?)`)

	if err != nil {
		return nil, err
	}

	defer stmt.Close()

	ids := make([]string, 0, len(documents))

	for _, document := range documents {
		id := document.ID

		if id == "" {
			id = uuid.NewString()
		}

		metadata, err := json.Marshal(document.Metadata)

		if err != nil {
			return nil, err
		}

		if _, err := stmt.ExecContext(ctx, id, document.Content, string(metadata), encodeEmbedding(document.Embedding)); err != nil {
			return nil, err
		}

		ids = append(ids, id)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return ids, nil
}

func (s *Store) Query(ctx context.Context, embedding []float32, options *index.QueryOptions) ([]index.Result, error) {
	if options == nil {
		options = new(index.QueryOptions)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT id, content, metadata, embedding FROM documents`)

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var results []index.Result

	for rows.Next() {
		var (
			id       string
			content  string
			metadata sql.NullString
			blob     []byte
		)

		if err := rows.Scan(&id, &content, &metadata, &blob); err != nil {
			return nil, err
		}

		vector, err := decodeEmbedding(blob)

		if err != nil {
			return nil, err
		}

		score := cosine(embedding, vector)

		if options.Threshold != nil && score < *options.Threshold {
			continue
		}

		document := index.Document{
			ID:        id,
			Content:   content,
			Embedding: vector,
		}

		if metadata.Valid && metadata.String != "" {
			if err := json.Unmarshal([]byte(metadata.String), &document.Metadata); err != nil {
				return nil, err
			}
		}

		results = append(results, index.Result{
			Document: document,
			Score:    score,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, err
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
	return s.db.PingContext(ctx)
}

func encodeEmbedding(vector []float32) []byte {
	b := make([]byte, len(vector)*4)

	for i, v := range vector {
		bits := math.Float32bits(v)

		b[i*4+0] = byte(bits)
		b[i*4+1] = byte(bits >> 8)
		b[i*4+2] = byte(bits >> 16)
		b[i*4+3] = byte(bits >> 24)
	}

	return b
}

func decodeEmbedding(b []byte) ([]float32, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("invalid embedding blob length %d", len(b))
	}

	vector := make([]float32, len(b)/4)

	for i := range vector {
		bits := uint32(b[i*4+0]) | uint32(b[i*4+1])<<8 | uint32(b[i*4+2])<<16 | uint32(b[i*4+3])<<24

		vector[i] = math.Float32frombits(bits)
	}

	return vector, nil
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
