package port

import (
	"context"

	"ragpipe/internal/domain"
)

// IndexPoint is one vector with payload stored in a collection. IDs are
// generated at index time, never derived from content.
type IndexPoint struct {
	ID      string
	Vector  []float32
	Content string
	Meta    domain.ChunkMeta
}

// VectorIndex abstracts the vector database. A collection is a named,
// schema-fixed partition with constant dimensionality and cosine distance.
type VectorIndex interface {
	// HasCollection reports whether the named collection exists.
	HasCollection(ctx context.Context, collection string) (bool, error)

	// EnsureCollection creates the collection with the given dimensionality
	// if it does not exist yet.
	EnsureCollection(ctx context.Context, collection string, dimension int) error

	// Upsert stores the points in the collection.
	Upsert(ctx context.Context, collection string, points []IndexPoint) error

	// Search returns up to limit nearest neighbors of the vector, ordered by
	// similarity descending.
	Search(ctx context.Context, collection string, vector []float32, limit int) ([]domain.RetrievedDocument, error)
}
