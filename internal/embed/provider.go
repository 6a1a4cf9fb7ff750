// Package embed converts batches of text into fixed-dimension vectors.
//
// Two interchangeable strategies exist: a remote embedding service and a
// deterministic local hash embedder. The public contract is that a provider
// always returns one vector per input string, in input order; remote
// failures degrade to the local strategy instead of surfacing as errors.
package embed

import (
	"context"

	"clausecheck/internal/model"
)

// Provider converts an ordered batch of strings into vectors. Index i of
// the input maps to index i of the output; empty input returns an empty
// batch. Implementations never fail: degradation is absorbed internally.
type Provider interface {
	Name() string
	EmbedBatch(ctx context.Context, texts []string) [][]float64
}

// NewProvider builds the configured provider chain: the remote strategy
// when a credential is present (with the hash embedder as its fallback),
// otherwise the hash embedder alone, wrapped in the embedding cache.
func NewProvider(cfg model.EmbeddingConfig, verbose bool) Provider {
	local := NewHashEmbedder(cfg.Dimension)

	var p Provider = local
	if cfg.APIKey != "" {
		p = NewOpenAIEmbedder(cfg.APIKey, cfg.Model, local, verbose)
	}

	return NewCachedProvider(p, cfg)
}
