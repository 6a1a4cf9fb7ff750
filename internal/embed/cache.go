package embed

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"clausecheck/internal/cache"
	"clausecheck/internal/model"
)

// CachedProvider memoizes embeddings in a layered memory+disk cache so
// repeated analyses and index rebuilds avoid re-embedding identical text.
// Entries are keyed by model id and text hash.
type CachedProvider struct {
	inner Provider
	cache cache.Cache
	model string
	ttl   time.Duration
}

// NewCachedProvider wraps a provider with the embedding cache.
func NewCachedProvider(inner Provider, cfg model.EmbeddingConfig) *CachedProvider {
	ttl := cfg.CacheTTL
	if ttl == 0 {
		ttl = 24 * time.Hour
	}

	// Hash vectors are a function of the dimension, not the remote model
	// id, so they get their own key namespace.
	keyModel := cfg.Model
	if inner.Name() == "hash" {
		keyModel = fmt.Sprintf("hash-%d", cfg.Dimension)
	}

	return &CachedProvider{
		inner: inner,
		cache: cache.NewLayeredCache(ttl, cfg.CacheDir, ttl),
		model: keyModel,
		ttl:   ttl,
	}
}

// Name returns the wrapped strategy identifier.
func (p *CachedProvider) Name() string { return p.inner.Name() }

// EmbedBatch returns cached vectors where available and embeds only the
// misses, in one inner batch, preserving input order throughout.
func (p *CachedProvider) EmbedBatch(ctx context.Context, texts []string) [][]float64 {
	if len(texts) == 0 {
		return [][]float64{}
	}

	out := make([][]float64, len(texts))
	var missTexts []string
	var missIdx []int

	for i, t := range texts {
		key := cache.EmbeddingKey(p.model, t)
		if data, found := p.cache.Get(key); found {
			var vec []float64
			if err := json.Unmarshal(data, &vec); err == nil {
				out[i] = vec
				continue
			}
			// Corrupt entry: drop it and re-embed.
			_ = p.cache.Delete(key)
		}
		missTexts = append(missTexts, t)
		missIdx = append(missIdx, i)
	}

	if len(missTexts) > 0 {
		vecs := p.inner.EmbedBatch(ctx, missTexts)
		for j, vec := range vecs {
			out[missIdx[j]] = vec
			if data, err := json.Marshal(vec); err == nil {
				_ = p.cache.Set(cache.EmbeddingKey(p.model, missTexts[j]), data, p.ttl)
			}
		}
	}

	return out
}
