package domain

// DocumentMeta carries provenance for a loaded document.
type DocumentMeta struct {
	Source     string  `json:"source"`
	FileType   string  `json:"file_type"`
	FileSizeKB float64 `json:"file_size_kb"`
	PageCount  int     `json:"page_count"`
}

// Document is a raw document produced by the source loader. It is immutable
// and scoped to a single ingestion run.
type Document struct {
	Content string       `json:"content"`
	Meta    DocumentMeta `json:"metadata"`
}

// ChunkMeta extends the parent document's metadata with the chunk's position.
// ChunkIndex is 0-based and dense within a document; TotalChunks is constant
// across all chunks of the same document.
type ChunkMeta struct {
	DocumentMeta
	ChunkIndex  int `json:"chunk_index"`
	TotalChunks int `json:"total_chunks"`
}

// Chunk is a bounded, overlapping segment of a document's text.
type Chunk struct {
	Content string    `json:"content"`
	Meta    ChunkMeta `json:"metadata"`
}

// EmbeddedChunk is a chunk paired with its embedding vector. The vector
// dimension is fixed by the embedding model and must be constant across a
// collection.
type EmbeddedChunk struct {
	Chunk
	Vector []float32 `json:"-"`
}
