package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAIEmbedBatch(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/embeddings", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")

		var body struct {
			Model string   `json:"model"`
			Input []string `json:"input"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "text-embedding-3-small", body.Model)

		// Return data out of order; the adapter restores input order.
		resp := map[string]any{
			"data": []map[string]any{
				{"index": 1, "embedding": []float32{0.3, 0.4}},
				{"index": 0, "embedding": []float32{0.1, 0.2}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	embedder := NewOpenAIEmbedder(OpenAIConfig{BaseURL: server.URL, APIKey: "test-key", Model: "text-embedding-3-small"})
	vectors, err := embedder.EmbedBatch(context.Background(), []string{"first", "second"})
	require.NoError(t, err)

	assert.Equal(t, "Bearer test-key", gotAuth)
	require.Len(t, vectors, 2)
	assert.Equal(t, []float32{0.1, 0.2}, vectors[0])
	assert.Equal(t, []float32{0.3, 0.4}, vectors[1])
}

func TestOpenAIEmbedBatchCountMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"index": 0, "embedding": []float32{0.1}}},
		})
	}))
	defer server.Close()

	embedder := NewOpenAIEmbedder(OpenAIConfig{BaseURL: server.URL, Model: "m"})
	_, err := embedder.EmbedBatch(context.Background(), []string{"first", "second"})
	assert.Error(t, err)
}

func TestOpenAIEmbedServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	embedder := NewOpenAIEmbedder(OpenAIConfig{BaseURL: server.URL, Model: "m"})
	_, err := embedder.EmbedQuery(context.Background(), "anything")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestOpenAIGenerate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)

		var body struct {
			Model       string  `json:"model"`
			Temperature float64 `json:"temperature"`
			Messages    []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Len(t, body.Messages, 2)
		assert.Equal(t, "system", body.Messages[0].Role)
		assert.Equal(t, "user", body.Messages[1].Role)
		assert.Equal(t, 0.2, body.Temperature)

		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"content": "Paris."}},
			},
		})
	}))
	defer server.Close()

	gen := NewOpenAIGenerator(OpenAIConfig{BaseURL: server.URL, Model: "gpt-4.1-mini"}, 0.2)
	answer, err := gen.Generate(context.Background(), "You are helpful.", "Capital of France?")
	require.NoError(t, err)
	assert.Equal(t, "Paris.", answer)
}

func TestCohereRerank(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/rerank", r.URL.Path)

		var body struct {
			Model     string   `json:"model"`
			Query     string   `json:"query"`
			Documents []string `json:"documents"`
			TopN      int      `json:"top_n"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "rerank-english-v3.0", body.Model)
		assert.Equal(t, 2, body.TopN)
		require.Len(t, body.Documents, 3)

		json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{
				{"index": 2, "relevance_score": 0.98},
				{"index": 0, "relevance_score": 0.55},
			},
		})
	}))
	defer server.Close()

	reranker := NewCohereReranker(CohereConfig{BaseURL: server.URL, APIKey: "key", Model: "rerank-english-v3.0"})
	results, err := reranker.Rerank(context.Background(), "query", []string{"a", "b", "c"}, 2)
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, 2, results[0].Index)
	assert.Equal(t, 0.98, results[0].Score)
	assert.Equal(t, 0, results[1].Index)
}

func TestCohereRerankServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad key", http.StatusUnauthorized)
	}))
	defer server.Close()

	reranker := NewCohereReranker(CohereConfig{BaseURL: server.URL, Model: "m"})
	_, err := reranker.Rerank(context.Background(), "query", []string{"a"}, 1)
	assert.Error(t, err)
}
