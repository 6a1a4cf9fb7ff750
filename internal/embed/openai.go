package embed

import (
	"context"
	"fmt"
	"os"

	"github.com/sashabaranov/go-openai"
)

// OpenAIEmbedder is the remote embedding strategy. The whole batch is
// submitted in a single API call; any failure (network, auth, malformed
// response) degrades transparently to the local fallback.
type OpenAIEmbedder struct {
	client   *openai.Client
	model    string
	fallback *HashEmbedder
	verbose  bool
}

// NewOpenAIEmbedder creates a remote embedder backed by the given fallback.
func NewOpenAIEmbedder(apiKey, model string, fallback *HashEmbedder, verbose bool) *OpenAIEmbedder {
	return &OpenAIEmbedder{
		client:   openai.NewClient(apiKey),
		model:    model,
		fallback: fallback,
		verbose:  verbose,
	}
}

// Name returns the strategy identifier.
func (e *OpenAIEmbedder) Name() string { return "openai" }

// EmbedBatch embeds all texts in one remote call, preserving input order.
func (e *OpenAIEmbedder) EmbedBatch(ctx context.Context, texts []string) [][]float64 {
	if len(texts) == 0 {
		return [][]float64{}
	}

	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
		Input: texts,
		Model: openai.EmbeddingModel(e.model),
	})
	if err != nil {
		e.warn(fmt.Sprintf("remote embedding failed, using local fallback: %v", err))
		return e.fallback.EmbedBatch(ctx, texts)
	}
	if len(resp.Data) != len(texts) {
		e.warn(fmt.Sprintf("remote embedding returned %d vectors for %d inputs, using local fallback", len(resp.Data), len(texts)))
		return e.fallback.EmbedBatch(ctx, texts)
	}

	out := make([][]float64, len(texts))
	for i, row := range resp.Data {
		vec := make([]float64, len(row.Embedding))
		for j, v := range row.Embedding {
			vec[j] = float64(v)
		}
		out[i] = vec
	}
	return out
}

func (e *OpenAIEmbedder) warn(msg string) {
	if e.verbose {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", msg)
	}
}
