package port

import (
	"context"

	"ragpipe/internal/domain"
)

// DocumentSource reads raw documents with metadata from a named directory.
type DocumentSource interface {
	// Load returns all supported documents under the directory identifier.
	// An empty directory yields an empty slice, not an error.
	Load(ctx context.Context, directory string) ([]domain.Document, error)
}
