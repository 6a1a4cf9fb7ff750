package retrieval

import (
	"context"

	"clausecheck/internal/vectorstore"
)

// VectorBackend answers queries from the vector-database collection with
// one batched nearest-neighbor call for all clause embeddings.
type VectorBackend struct {
	store *vectorstore.QdrantStore
}

// NewVectorBackend wraps a reachable vector store.
func NewVectorBackend(store *vectorstore.QdrantStore) *VectorBackend {
	return &VectorBackend{store: store}
}

// Name returns the backend identifier.
func (b *VectorBackend) Name() string { return "vector" }

// Query runs one batched search and converts scored points into hits.
// The collection uses the cosine metric, so the returned score is already
// a similarity; it is clamped into [0,1], the same quantity a
// distance-metric store yields via 1 - distance.
func (b *VectorBackend) Query(ctx context.Context, embeddings [][]float64, topK int) ([][]Hit, error) {
	results, err := b.store.SearchBatch(ctx, embeddings, topK)
	if err != nil {
		return nil, err
	}

	hits := make([][]Hit, len(results))
	for i, points := range results {
		hits[i] = make([]Hit, 0, len(points))
		for _, p := range points {
			sim := p.Score
			if sim < 0 {
				sim = 0
			}
			if sim > 1 {
				sim = 1
			}
			hits[i] = append(hits[i], Hit{
				Article:    payloadString(p.Payload, "article", "Unknown"),
				Topic:      payloadString(p.Payload, "topic", "unknown"),
				Document:   payloadString(p.Payload, "text", ""),
				Similarity: sim,
			})
		}
	}
	return hits, nil
}

func payloadString(payload map[string]any, key, fallback string) string {
	if v, ok := payload[key].(string); ok && v != "" {
		return v
	}
	return fallback
}
