// Package index contains vector index adapters. Collections are named,
// schema-fixed partitions with cosine distance.
package index

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"ragpipe/internal/domain"
	"ragpipe/internal/port"
)

// Qdrant is a minimal REST client to a Qdrant server.
type Qdrant struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewQdrant creates a Qdrant index adapter.
func NewQdrant(baseURL, apiKey string) *Qdrant {
	return &Qdrant{baseURL: baseURL, apiKey: apiKey, httpClient: &http.Client{}}
}

// HasCollection reports whether the collection exists.
func (q *Qdrant) HasCollection(ctx context.Context, collection string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/collections/%s", q.baseURL, collection), nil)
	if err != nil {
		return false, fmt.Errorf("create request: %w", err)
	}
	q.auth(req)

	resp, err := q.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("qdrant get collection: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		body, _ := io.ReadAll(resp.Body)
		return false, fmt.Errorf("qdrant get collection (%d): %s", resp.StatusCode, string(body))
	}
}

// EnsureCollection creates the collection with cosine distance if absent.
func (q *Qdrant) EnsureCollection(ctx context.Context, collection string, dimension int) error {
	exists, err := q.HasCollection(ctx, collection)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": "Cosine",
		},
	}
	return q.do(ctx, http.MethodPut, fmt.Sprintf("/collections/%s", collection), body, nil)
}

// Upsert stores the points in the collection.
func (q *Qdrant) Upsert(ctx context.Context, collection string, points []port.IndexPoint) error {
	if len(points) == 0 {
		return nil
	}

	qpoints := make([]map[string]any, len(points))
	for i, p := range points {
		qpoints[i] = map[string]any{
			"id":     p.ID,
			"vector": p.Vector,
			"payload": map[string]any{
				"content":      p.Content,
				"source":       p.Meta.Source,
				"file_type":    p.Meta.FileType,
				"file_size_kb": p.Meta.FileSizeKB,
				"page_count":   p.Meta.PageCount,
				"chunk_index":  p.Meta.ChunkIndex,
				"total_chunks": p.Meta.TotalChunks,
			},
		}
	}
	body := map[string]any{"points": qpoints}
	return q.do(ctx, http.MethodPut, fmt.Sprintf("/collections/%s/points?wait=true", collection), body, nil)
}

// Search returns up to limit nearest neighbors ordered by similarity
// descending.
func (q *Qdrant) Search(ctx context.Context, collection string, vector []float32, limit int) ([]domain.RetrievedDocument, error) {
	body := map[string]any{
		"vector":       vector,
		"limit":        limit,
		"with_payload": true,
	}

	var resp struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	if err := q.do(ctx, http.MethodPost, fmt.Sprintf("/collections/%s/points/search", collection), body, &resp); err != nil {
		return nil, err
	}

	results := make([]domain.RetrievedDocument, 0, len(resp.Result))
	for _, hit := range resp.Result {
		results = append(results, domain.RetrievedDocument{
			Content: payloadString(hit.Payload, "content"),
			Meta: domain.ChunkMeta{
				DocumentMeta: domain.DocumentMeta{
					Source:     payloadString(hit.Payload, "source"),
					FileType:   payloadString(hit.Payload, "file_type"),
					FileSizeKB: payloadFloat(hit.Payload, "file_size_kb"),
					PageCount:  int(payloadFloat(hit.Payload, "page_count")),
				},
				ChunkIndex:  int(payloadFloat(hit.Payload, "chunk_index")),
				TotalChunks: int(payloadFloat(hit.Payload, "total_chunks")),
			},
			Score: hit.Score,
		})
	}
	return results, nil
}

func (q *Qdrant) do(ctx context.Context, method, path string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, q.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	q.auth(req)

	resp, err := q.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("qdrant %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("qdrant %s %s (%d): %s", method, path, resp.StatusCode, string(respBody))
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (q *Qdrant) auth(req *http.Request) {
	if q.apiKey != "" {
		req.Header.Set("api-key", q.apiKey)
	}
}

func payloadString(payload map[string]any, key string) string {
	if v, ok := payload[key].(string); ok {
		return v
	}
	return ""
}

func payloadFloat(payload map[string]any, key string) float64 {
	if v, ok := payload[key].(float64); ok {
		return v
	}
	return 0
}
