package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"ragpipe/internal/port"
)

// CohereConfig holds the connection details for the Cohere rerank API.
type CohereConfig struct {
	BaseURL string // e.g. https://api.cohere.com/v2
	APIKey  string
	Model   string
}

// CohereReranker implements port.Reranker against the Cohere rerank API.
type CohereReranker struct {
	cfg        CohereConfig
	httpClient *http.Client
}

// NewCohereReranker creates a Cohere-backed reranker.
func NewCohereReranker(cfg CohereConfig) *CohereReranker {
	return &CohereReranker{cfg: cfg, httpClient: &http.Client{}}
}

// ModelName returns the rerank model identifier.
func (r *CohereReranker) ModelName() string {
	return r.cfg.Model
}

// Rerank scores the documents against the query and returns up to topN
// results, each carrying the index of the document it refers to.
func (r *CohereReranker) Rerank(ctx context.Context, query string, documents []string, topN int) ([]port.RerankResult, error) {
	payload := map[string]any{
		"model":     r.cfg.Model,
		"query":     query,
		"documents": documents,
		"top_n":     topN,
	}

	body, err := postJSON(ctx, r.httpClient, r.cfg.BaseURL+"/rerank", r.cfg.APIKey, payload)
	if err != nil {
		return nil, fmt.Errorf("cohere rerank: %w", err)
	}

	var resp struct {
		Results []struct {
			Index          int     `json:"index"`
			RelevanceScore float64 `json:"relevance_score"`
		} `json:"results"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("cohere rerank decode: %w", err)
	}

	results := make([]port.RerankResult, len(resp.Results))
	for i, res := range resp.Results {
		results[i] = port.RerankResult{Index: res.Index, Score: res.RelevanceScore}
	}
	return results, nil
}
