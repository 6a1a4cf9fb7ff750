// Package vectorstore holds the minimal Qdrant REST client used for the
// regulatory chunk collection. Only the handful of endpoints the pipeline
// needs are implemented; cosine distance is assumed throughout.
package vectorstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Point is one vector with its payload, addressed by a numeric id.
type Point struct {
	ID      uint64         `json:"id"`
	Vector  []float64      `json:"vector"`
	Payload map[string]any `json:"payload"`
}

// ScoredPoint is one search hit. For cosine collections the score is
// already a similarity, higher is closer.
type ScoredPoint struct {
	ID      uint64         `json:"id"`
	Score   float64        `json:"score"`
	Payload map[string]any `json:"payload"`
}

// QdrantStore talks to one Qdrant collection over its REST API.
type QdrantStore struct {
	baseURL    string
	collection string
	client     *http.Client
}

// NewQdrantStore creates a store for the given collection.
func NewQdrantStore(baseURL, collection string, timeout time.Duration) *QdrantStore {
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &QdrantStore{
		baseURL:    baseURL,
		collection: collection,
		client:     &http.Client{Timeout: timeout},
	}
}

// Collection returns the collection name.
func (s *QdrantStore) Collection() string { return s.collection }

// CollectionExists reports whether the collection is present and the
// server reachable.
func (s *QdrantStore) CollectionExists(ctx context.Context) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/collections/%s", s.baseURL, s.collection), nil)
	if err != nil {
		return false, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode == http.StatusOK:
		return true, nil
	case resp.StatusCode == http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("qdrant status %d", resp.StatusCode)
	}
}

// Recreate drops the collection if it exists and creates it fresh with
// the given vector dimension. Index builds never update incrementally.
func (s *QdrantStore) Recreate(ctx context.Context, dimension int) error {
	if dimension <= 0 {
		return fmt.Errorf("invalid dimension %d", dimension)
	}

	// Delete-if-exists; a 404 here is fine.
	delReq, err := http.NewRequestWithContext(ctx, http.MethodDelete,
		fmt.Sprintf("%s/collections/%s", s.baseURL, s.collection), nil)
	if err != nil {
		return err
	}
	if resp, err := s.client.Do(delReq); err == nil {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}

	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": "Cosine",
		},
	}
	return s.doJSON(ctx, http.MethodPut,
		fmt.Sprintf("%s/collections/%s", s.baseURL, s.collection), body, nil)
}

// Upsert writes points into the collection, waiting for them to be
// persisted before returning.
func (s *QdrantStore) Upsert(ctx context.Context, points []Point) error {
	if len(points) == 0 {
		return nil
	}
	body := map[string]any{"points": points}
	return s.doJSON(ctx, http.MethodPut,
		fmt.Sprintf("%s/collections/%s/points?wait=true", s.baseURL, s.collection), body, nil)
}

// SearchBatch issues one batched nearest-neighbor query for all vectors
// and returns topK scored hits per vector, in input order.
func (s *QdrantStore) SearchBatch(ctx context.Context, vectors [][]float64, topK int) ([][]ScoredPoint, error) {
	if topK <= 0 {
		topK = 3
	}
	searches := make([]map[string]any, len(vectors))
	for i, v := range vectors {
		searches[i] = map[string]any{
			"vector":       v,
			"limit":        topK,
			"with_payload": true,
		}
	}
	var resp struct {
		Result [][]ScoredPoint `json:"result"`
	}
	err := s.doJSON(ctx, http.MethodPost,
		fmt.Sprintf("%s/collections/%s/points/search/batch", s.baseURL, s.collection),
		map[string]any{"searches": searches}, &resp)
	if err != nil {
		return nil, err
	}
	if len(resp.Result) != len(vectors) {
		return nil, fmt.Errorf("qdrant returned %d result sets for %d queries", len(resp.Result), len(vectors))
	}
	return resp.Result, nil
}

func (s *QdrantStore) doJSON(ctx context.Context, method, url string, body any, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("qdrant %s %s: status %d: %s", method, url, resp.StatusCode, string(payload))
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	} else {
		io.Copy(io.Discard, resp.Body)
	}
	return nil
}
