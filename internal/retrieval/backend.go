// Package retrieval answers nearest-neighbor queries over the regulatory
// index. Two interchangeable backends exist: a vector-database collection
// and a flat-file fallback with explicit cosine ranking. The backend is
// selected once at construction time by a capability probe and the choice
// is cached for the process lifetime; a vector query that errors at
// runtime still degrades to the fallback rather than failing the pipeline.
package retrieval

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"

	"clausecheck/internal/embed"
	"clausecheck/internal/model"
	"clausecheck/internal/vectorstore"
)

// ErrIndexNotFound is returned when neither backend has an index to query.
var ErrIndexNotFound = errors.New("regulatory index not found")

// Hit is one retrieved regulatory chunk with its similarity to the query.
type Hit struct {
	Article    string
	Topic      string
	Document   string
	Similarity float64
}

// Backend retrieves the topK nearest regulatory chunks for each query
// embedding, one hit list per embedding in input order.
type Backend interface {
	Name() string
	Query(ctx context.Context, embeddings [][]float64, topK int) ([][]Hit, error)
}

// Engine embeds clauses and turns backend hits into matches.
type Engine struct {
	provider embed.Provider
	vector   Backend // nil when the capability probe failed
	flat     Backend
	topK     int
	verbose  bool
}

// NewEngine creates a retrieval engine. The vector store is probed once,
// here: if it is unreachable or its collection is missing, every query in
// this process uses the flat-file fallback.
func NewEngine(ctx context.Context, cfg model.Config, provider embed.Provider, store *vectorstore.QdrantStore, verbose bool) *Engine {
	e := &Engine{
		provider: provider,
		flat:     NewFlatFileBackend(cfg.Index.Dir),
		topK:     cfg.Retrieval.TopK,
		verbose:  verbose,
	}
	if store != nil {
		if ok, err := store.CollectionExists(ctx); err == nil && ok {
			e.vector = NewVectorBackend(store)
		} else if verbose {
			fmt.Fprintf(os.Stderr, "Warning: vector store unavailable, using flat-file retrieval (err=%v)\n", err)
		}
	}
	return e
}

// BackendName reports which backend the probe selected.
func (e *Engine) BackendName() string {
	if e.vector != nil {
		return e.vector.Name()
	}
	return e.flat.Name()
}

// MatchClauses embeds all clause texts in one batch and retrieves the
// topK most similar regulatory chunks per clause. A clause receives zero
// matches only when the index itself is empty.
func (e *Engine) MatchClauses(ctx context.Context, clauses []model.Clause) ([]model.Match, error) {
	if len(clauses) == 0 {
		return []model.Match{}, nil
	}

	texts := make([]string, len(clauses))
	for i, c := range clauses {
		texts[i] = c.Text
	}
	embeddings := e.provider.EmbedBatch(ctx, texts)

	hits, err := e.query(ctx, embeddings)
	if err != nil {
		return nil, err
	}

	var matches []model.Match
	for i, clause := range clauses {
		for _, h := range hits[i] {
			matches = append(matches, model.NewMatch(
				clause.ClauseID,
				h.Article,
				h.Topic,
				h.Document,
				round4(h.Similarity),
			))
		}
	}
	return matches, nil
}

func (e *Engine) query(ctx context.Context, embeddings [][]float64) ([][]Hit, error) {
	if e.vector != nil {
		hits, err := e.vector.Query(ctx, embeddings, e.topK)
		if err == nil {
			return hits, nil
		}
		if e.verbose {
			fmt.Fprintf(os.Stderr, "Warning: vector query failed, falling back to flat index: %v\n", err)
		}
	}
	return e.flat.Query(ctx, embeddings, e.topK)
}

// round4 rounds a similarity to 4 decimal places.
func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

// cosine computes cosine similarity clamped to [0,1]. Mismatched or
// zero-length vectors, and zero-norm vectors, have similarity 0.
func cosine(a, b []float64) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	sim := dot / (math.Sqrt(na) * math.Sqrt(nb))
	if sim < 0 {
		return 0
	}
	if sim > 1 {
		return 1
	}
	return sim
}
