// Package eval contains the REST adapter for the answer-quality scoring
// service.
package eval

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"ragpipe/internal/port"
)

// RagasConfig holds the connection details for a RAGAS-style scoring
// service.
type RagasConfig struct {
	BaseURL string
	Metrics []string
}

// RagasScorer implements port.Scorer against a scoring sidecar that exposes
// a batched evaluate endpoint.
type RagasScorer struct {
	cfg        RagasConfig
	httpClient *http.Client
}

// NewRagasScorer creates a scorer for the configured service.
func NewRagasScorer(cfg RagasConfig) *RagasScorer {
	return &RagasScorer{cfg: cfg, httpClient: &http.Client{}}
}

// Score submits all records in a single call and returns the aggregate
// metric scores.
func (s *RagasScorer) Score(ctx context.Context, records []port.EvalRecord) (map[string]float64, error) {
	payload := map[string]any{
		"samples": records,
		"metrics": s.cfg.Metrics,
	}
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.BaseURL+"/evaluate", bytes.NewReader(payloadBytes))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scoring service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("scoring service error (%d): %s", resp.StatusCode, string(body))
	}

	var out struct {
		Scores map[string]float64 `json:"scores"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("scoring service decode: %w", err)
	}
	return out.Scores, nil
}
