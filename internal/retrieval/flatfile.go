package retrieval

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"clausecheck/internal/index"
)

// FlatFileBackend ranks the flat fallback index by explicit cosine
// similarity. The index is loaded once and treated as read-only, so
// concurrent pipeline instances can query it safely.
type FlatFileBackend struct {
	dir  string
	once sync.Once
	rows []index.FallbackRecord
	err  error
}

// NewFlatFileBackend creates a backend over the fallback index in dir.
func NewFlatFileBackend(dir string) *FlatFileBackend {
	return &FlatFileBackend{dir: dir}
}

// Name returns the backend identifier.
func (b *FlatFileBackend) Name() string { return "flatfile" }

func (b *FlatFileBackend) load() ([]index.FallbackRecord, error) {
	b.once.Do(func() {
		path := filepath.Join(b.dir, index.FallbackIndexFile)
		data, err := os.ReadFile(path)
		if err != nil {
			b.err = fmt.Errorf("%w: %s (build the index first)", ErrIndexNotFound, path)
			return
		}
		if err := json.Unmarshal(data, &b.rows); err != nil {
			b.err = fmt.Errorf("parse fallback index %s: %w", path, err)
		}
	})
	return b.rows, b.err
}

// Query computes cosine similarity of each embedding against every
// indexed chunk, sorts descending with ties kept in insertion order, and
// returns the topK hits per embedding.
func (b *FlatFileBackend) Query(_ context.Context, embeddings [][]float64, topK int) ([][]Hit, error) {
	rows, err := b.load()
	if err != nil {
		return nil, err
	}

	hits := make([][]Hit, len(embeddings))
	for i, emb := range embeddings {
		scored := make([]Hit, len(rows))
		for j, row := range rows {
			scored[j] = Hit{
				Article:    metaString(row.Metadata, "article", "Unknown"),
				Topic:      metaString(row.Metadata, "topic", "unknown"),
				Document:   row.Document,
				Similarity: cosine(emb, row.Embedding),
			}
		}
		sort.SliceStable(scored, func(a, b int) bool {
			return scored[a].Similarity > scored[b].Similarity
		})
		if len(scored) > topK {
			scored = scored[:topK]
		}
		hits[i] = scored
	}
	return hits, nil
}

func metaString(meta map[string]any, key, fallback string) string {
	if v, ok := meta[key].(string); ok && v != "" {
		return v
	}
	return fallback
}
