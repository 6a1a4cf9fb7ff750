package embed

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"math"
	"strings"
)

// DefaultDimension is the vector size of the local hash embedder.
const DefaultDimension = 128

// HashEmbedder is the deterministic local embedding strategy: a signed
// bag-of-tokens projection. The same string always embeds to the same
// vector, which makes retrieval reproducible offline and in tests.
type HashEmbedder struct {
	dim int
}

// NewHashEmbedder creates a hash embedder. dim <= 0 selects the default.
func NewHashEmbedder(dim int) *HashEmbedder {
	if dim <= 0 {
		dim = DefaultDimension
	}
	return &HashEmbedder{dim: dim}
}

// Name returns the strategy identifier.
func (e *HashEmbedder) Name() string { return "hash" }

// Dimension returns the fixed vector size.
func (e *HashEmbedder) Dimension() int { return e.dim }

// Embed computes the vector for one string: each lowercased whitespace
// token hashes to an index and a sign, accumulating ±1; the result is
// L2-normalized. A zero-norm vector is returned unmodified.
func (e *HashEmbedder) Embed(text string) []float64 {
	vec := make([]float64, e.dim)
	for _, token := range strings.Fields(strings.ToLower(text)) {
		sum := sha256.Sum256([]byte(token))
		h := binary.BigEndian.Uint64(sum[24:])
		idx := int(h % uint64(e.dim))
		sign := 1.0
		if (h>>8)&1 == 1 {
			sign = -1.0
		}
		vec[idx] += sign
	}

	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return vec
	}
	for i := range vec {
		vec[i] /= norm
	}
	return vec
}

// EmbedBatch embeds every input string in order.
func (e *HashEmbedder) EmbedBatch(_ context.Context, texts []string) [][]float64 {
	out := make([][]float64, len(texts))
	for i, t := range texts {
		out[i] = e.Embed(t)
	}
	return out
}
