// Package index builds the searchable regulatory index: it chunks
// regulation source text into overlapping windows, embeds every chunk,
// and persists either a vector-database collection or a flat fallback
// file that the retrieval engine can rank by explicit cosine similarity.
package index

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"clausecheck/internal/embed"
	"clausecheck/internal/extract"
	"clausecheck/internal/model"
	"clausecheck/internal/vectorstore"
)

const (
	// ChunksFile is the append-only corpus artifact: one chunk JSON per line.
	ChunksFile = "chunks.jsonl"
	// FallbackIndexFile is the flat embedding index used when no vector
	// database is reachable.
	FallbackIndexFile = "gdpr_index.json"
	// sourcePrefix is stripped from regulation filenames when deriving labels.
	sourcePrefix = "gdpr_"
)

// ErrNoRegulationFiles is returned when the source directory holds no
// regulation text files.
var ErrNoRegulationFiles = errors.New("no regulation source files found")

// FallbackRecord is one entry of the flat fallback index.
type FallbackRecord struct {
	ID        string         `json:"id"`
	Document  string         `json:"document"`
	Metadata  map[string]any `json:"metadata"`
	Embedding []float64      `json:"embedding"`
}

// Builder constructs the regulatory index from source text files.
type Builder struct {
	cfg      model.IndexConfig
	provider embed.Provider
	store    *vectorstore.QdrantStore
	verbose  bool
}

// NewBuilder creates a builder. The vector store is optional; when nil
// (or when it errors) the flat fallback file is written instead.
func NewBuilder(cfg model.IndexConfig, provider embed.Provider, store *vectorstore.QdrantStore, verbose bool) *Builder {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 700
	}
	if cfg.Overlap < 0 {
		cfg.Overlap = 0
	}
	return &Builder{cfg: cfg, provider: provider, store: store, verbose: verbose}
}

// BuildChunks reads every regulation source file, normalizes it, windows
// it into overlapping chunks and writes the corpus artifact. Returns the
// chunk list in deterministic (filename, offset) order.
func (b *Builder) BuildChunks() ([]model.RegulatoryChunk, error) {
	files, err := filepath.Glob(filepath.Join(b.cfg.SourceDir, "*.txt"))
	if err != nil {
		return nil, fmt.Errorf("list regulation sources: %w", err)
	}
	sort.Strings(files)
	if len(files) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoRegulationFiles, b.cfg.SourceDir)
	}

	var chunks []model.RegulatoryChunk
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read regulation source: %w", err)
		}
		stem := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
		article := articleLabel(stem)
		topic := topicLabel(stem)
		text := extract.NormalizeText(string(data))

		for i, window := range windowText(text, b.cfg.ChunkSize, b.cfg.Overlap) {
			chunks = append(chunks, model.RegulatoryChunk{
				ID:      fmt.Sprintf("%s_%d", stem, i),
				Text:    window,
				Article: article,
				Topic:   topic,
				Source:  file,
			})
		}
	}

	if err := b.writeChunksFile(chunks); err != nil {
		return nil, err
	}
	return chunks, nil
}

// Build produces the complete index: corpus artifact, embeddings, and
// either the vector collection (rebuilt fresh) or the flat fallback file.
// Returns the total chunk count.
func (b *Builder) Build(ctx context.Context) (int, error) {
	chunks, err := b.BuildChunks()
	if err != nil {
		return 0, err
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	embeddings := b.provider.EmbedBatch(ctx, texts)

	if b.store != nil {
		if err := b.storeVectors(ctx, chunks, embeddings); err == nil {
			b.logf("Indexed %d chunks into collection %s\n", len(chunks), b.store.Collection())
			return len(chunks), nil
		} else {
			b.logf("Warning: vector store indexing failed, writing fallback index: %v\n", err)
		}
	}

	if err := b.writeFallbackIndex(chunks, embeddings); err != nil {
		return 0, err
	}
	b.logf("Indexed %d chunks into %s\n", len(chunks), FallbackIndexFile)
	return len(chunks), nil
}

func (b *Builder) storeVectors(ctx context.Context, chunks []model.RegulatoryChunk, embeddings [][]float64) error {
	if len(embeddings) == 0 || len(embeddings[0]) == 0 {
		return fmt.Errorf("no embeddings to store")
	}
	if err := b.store.Recreate(ctx, len(embeddings[0])); err != nil {
		return err
	}

	points := make([]vectorstore.Point, len(chunks))
	for i, c := range chunks {
		points[i] = vectorstore.Point{
			ID:     uint64(i),
			Vector: embeddings[i],
			Payload: map[string]any{
				"id":      c.ID,
				"text":    c.Text,
				"article": c.Article,
				"topic":   c.Topic,
				"source":  c.Source,
			},
		}
	}
	return b.store.Upsert(ctx, points)
}

func (b *Builder) writeChunksFile(chunks []model.RegulatoryChunk) error {
	if err := os.MkdirAll(b.cfg.Dir, 0o755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}
	var sb strings.Builder
	for _, c := range chunks {
		line, err := json.Marshal(c)
		if err != nil {
			return fmt.Errorf("marshal chunk: %w", err)
		}
		sb.Write(line)
		sb.WriteByte('\n')
	}
	path := filepath.Join(b.cfg.Dir, ChunksFile)
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("write chunks file: %w", err)
	}
	return nil
}

func (b *Builder) writeFallbackIndex(chunks []model.RegulatoryChunk, embeddings [][]float64) error {
	records := make([]FallbackRecord, len(chunks))
	for i, c := range chunks {
		records[i] = FallbackRecord{
			ID:       c.ID,
			Document: c.Text,
			Metadata: map[string]any{
				"article": c.Article,
				"topic":   c.Topic,
				"source":  c.Source,
			},
			Embedding: embeddings[i],
		}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal fallback index: %w", err)
	}
	path := filepath.Join(b.cfg.Dir, FallbackIndexFile)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write fallback index: %w", err)
	}
	return nil
}

func (b *Builder) logf(format string, args ...any) {
	if b.verbose {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}

// windowText slices text into overlapping fixed-size character windows.
// Each window starts at the previous end minus the overlap, unless that
// would not advance, and the last window ends at end-of-text. Windows
// that trim to empty are dropped.
func windowText(text string, size, overlap int) []string {
	var windows []string
	start := 0
	for start < len(text) {
		end := start + size
		if end > len(text) {
			end = len(text)
		}
		if w := strings.TrimSpace(text[start:end]); w != "" {
			windows = append(windows, w)
		}
		if end == len(text) {
			break
		}
		next := end - overlap
		if next <= start {
			// Overlap would stall the walk; advance without it.
			next = end
		}
		start = next
	}
	return windows
}

// articleLabel derives the human article label from a filename stem:
// gdpr_article_33 -> "Article 33".
func articleLabel(stem string) string {
	s := strings.TrimPrefix(stem, sourcePrefix)
	s = strings.ReplaceAll(s, "_", " ")
	return titleCase(s)
}

// topicLabel derives the topic slug from a filename stem:
// gdpr_article_33 -> "article-33".
func topicLabel(stem string) string {
	s := strings.TrimPrefix(stem, sourcePrefix)
	return strings.ReplaceAll(s, "_", "-")
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}
