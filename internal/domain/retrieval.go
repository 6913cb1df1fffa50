package domain

// RetrievedDocument is a vector search hit. Score is the raw cosine
// similarity, meaningful only within one embedding space.
type RetrievedDocument struct {
	Content string    `json:"content"`
	Meta    ChunkMeta `json:"metadata"`
	Score   float64   `json:"score"`
}

// RerankedDocument is a retrieval candidate after the relevance reranking
// pass. Score is the reranker's relevance score; OriginalScore preserves the
// retrieval similarity for audit.
type RerankedDocument struct {
	Content       string    `json:"content"`
	Meta          ChunkMeta `json:"metadata"`
	OriginalScore float64   `json:"original_score"`
	Score         float64   `json:"score"`
}

// QueryResult is the query pipeline's answer payload. Sources are
// deduplicated document identifiers for the context actually passed to
// generation.
type QueryResult struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources"`
	Model   string   `json:"model"`
}
