package port

import "context"

// Embedder abstracts the embedding service. Implementations can target
// OpenAI or any compatible API.
type Embedder interface {
	// ModelName returns the identifier of the embedding model.
	ModelName() string

	// EmbedQuery generates a vector embedding for a single query text.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts in one call.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Generator abstracts the answer-generation LLM.
type Generator interface {
	// ModelName returns the identifier of the generation model.
	ModelName() string

	// Generate sends a system and user prompt and returns the model's
	// free-text output.
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// RerankResult maps a candidate back to its position in the input slice
// together with the reranker's relevance score.
type RerankResult struct {
	Index int
	Score float64
}

// Reranker abstracts the relevance reranking service. Rerank returns a
// relevance-ordered subset of the candidate texts, at most topN items.
type Reranker interface {
	ModelName() string
	Rerank(ctx context.Context, query string, documents []string, topN int) ([]RerankResult, error)
}

// EvalRecord is one (question, answer, contexts, reference) tuple submitted
// for quality scoring.
type EvalRecord struct {
	Question  string   `json:"question"`
	Answer    string   `json:"answer"`
	Contexts  []string `json:"contexts"`
	Reference string   `json:"reference"`
}

// Scorer abstracts the evaluation scoring service. Score submits all records
// in one batched call and returns metric name to aggregate score.
type Scorer interface {
	Score(ctx context.Context, records []EvalRecord) (map[string]float64, error)
}
