// Package ai contains REST adapters for the embedding, generation, and
// reranking services.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// OpenAIConfig holds the connection details for one OpenAI-compatible
// endpoint.
type OpenAIConfig struct {
	BaseURL string // e.g. https://api.openai.com/v1
	APIKey  string
	Model   string
}

// OpenAIEmbedder implements port.Embedder against the OpenAI embeddings API.
type OpenAIEmbedder struct {
	cfg        OpenAIConfig
	httpClient *http.Client
}

// NewOpenAIEmbedder creates an embedder for an OpenAI-compatible endpoint.
func NewOpenAIEmbedder(cfg OpenAIConfig) *OpenAIEmbedder {
	return &OpenAIEmbedder{cfg: cfg, httpClient: &http.Client{}}
}

// ModelName returns the embedding model identifier.
func (e *OpenAIEmbedder) ModelName() string {
	return e.cfg.Model
}

// EmbedQuery generates a vector embedding for a single text.
func (e *OpenAIEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("openai embed: empty response")
	}
	return vectors[0], nil
}

// EmbedBatch generates embeddings for all texts in one API call.
func (e *OpenAIEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	payload := map[string]any{
		"model": e.cfg.Model,
		"input": texts,
	}

	body, err := postJSON(ctx, e.httpClient, e.cfg.BaseURL+"/embeddings", e.cfg.APIKey, payload)
	if err != nil {
		return nil, fmt.Errorf("openai embed: %w", err)
	}

	var resp struct {
		Data []struct {
			Index     int       `json:"index"`
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("openai embed decode: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("openai embed: got %d embeddings for %d inputs", len(resp.Data), len(texts))
	}

	vectors := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(vectors) {
			return nil, fmt.Errorf("openai embed: index %d out of range", d.Index)
		}
		vectors[d.Index] = d.Embedding
	}
	return vectors, nil
}

// OpenAIGenerator implements port.Generator against the OpenAI chat
// completions API.
type OpenAIGenerator struct {
	cfg         OpenAIConfig
	temperature float64
	httpClient  *http.Client
}

// NewOpenAIGenerator creates a generator for an OpenAI-compatible endpoint.
func NewOpenAIGenerator(cfg OpenAIConfig, temperature float64) *OpenAIGenerator {
	return &OpenAIGenerator{cfg: cfg, temperature: temperature, httpClient: &http.Client{}}
}

// ModelName returns the generation model identifier.
func (g *OpenAIGenerator) ModelName() string {
	return g.cfg.Model
}

// Generate sends a system and user prompt and returns the completion text.
func (g *OpenAIGenerator) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	payload := map[string]any{
		"model":       g.cfg.Model,
		"temperature": g.temperature,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": userPrompt},
		},
	}

	body, err := postJSON(ctx, g.httpClient, g.cfg.BaseURL+"/chat/completions", g.cfg.APIKey, payload)
	if err != nil {
		return "", fmt.Errorf("openai chat: %w", err)
	}

	var resp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("openai chat decode: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai chat: empty response")
	}
	return resp.Choices[0].Message.Content, nil
}

// postJSON is a helper for authenticated POST requests to an API endpoint.
func postJSON(ctx context.Context, client *http.Client, url, apiKey string, payload any) ([]byte, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payloadBytes))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API error (%d): %s", resp.StatusCode, string(body))
	}

	return io.ReadAll(resp.Body)
}
