package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"ragpipe/internal/chunker"
	"ragpipe/internal/domain"
	"ragpipe/internal/port"
)

// IngestService runs the ingestion pipeline: load documents, assemble
// chunks, embed them in one batched call, and upsert into the vector
// collection. Stages are strictly sequential.
type IngestService struct {
	source     port.DocumentSource
	chunker    *chunker.Chunker
	embedder   port.Embedder
	index      port.VectorIndex
	collection string
	dimension  int
	log        *slog.Logger
}

// NewIngestService creates the ingestion pipeline.
func NewIngestService(source port.DocumentSource, ch *chunker.Chunker, embedder port.Embedder, index port.VectorIndex, collection string, dimension int, log *slog.Logger) *IngestService {
	if log == nil {
		log = slog.Default()
	}
	return &IngestService{
		source:     source,
		chunker:    ch,
		embedder:   embedder,
		index:      index,
		collection: collection,
		dimension:  dimension,
		log:        log,
	}
}

// Ingest runs the pipeline for one directory. Any stage error aborts the
// run and yields a failed report with zero counts; the caller never sees a
// raw error.
func (s *IngestService) Ingest(ctx context.Context, directory string) domain.IngestReport {
	s.log.Info("starting ingestion pipeline", "directory", directory)

	report, err := s.run(ctx, directory)
	if err != nil {
		s.log.Error("ingestion pipeline failed", "error", err)
		return domain.IngestReport{Status: domain.StatusFailed}
	}
	return report
}

func (s *IngestService) run(ctx context.Context, directory string) (domain.IngestReport, error) {
	documents, err := s.source.Load(ctx, directory)
	if err != nil {
		return domain.IngestReport{}, fmt.Errorf("load documents: %w", err)
	}
	s.log.Info("loaded documents", "count", len(documents))

	chunks := s.chunker.Chunk(documents)
	s.log.Info("chunked documents", "count", len(chunks))

	embedded, err := s.embed(ctx, chunks)
	if err != nil {
		return domain.IngestReport{}, fmt.Errorf("embed chunks: %w", err)
	}
	s.log.Info("generated embeddings", "count", len(embedded))

	status, err := s.indexChunks(ctx, embedded)
	if err != nil {
		return domain.IngestReport{}, fmt.Errorf("index chunks: %w", err)
	}

	return domain.IngestReport{
		Status:          status,
		DocumentsLoaded: len(documents),
		ChunksCreated:   len(chunks),
		Collection:      s.collection,
	}, nil
}

// embed generates embeddings for all chunks with a single batched call.
// Empty input is a no-op, not an error.
func (s *IngestService) embed(ctx context.Context, chunks []domain.Chunk) ([]domain.EmbeddedChunk, error) {
	if len(chunks) == 0 {
		s.log.Warn("no chunks provided for embedding")
		return nil, nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}

	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("got %d embeddings for %d chunks", len(vectors), len(chunks))
	}

	embedded := make([]domain.EmbeddedChunk, len(chunks))
	for i, c := range chunks {
		embedded[i] = domain.EmbeddedChunk{Chunk: c, Vector: vectors[i]}
	}
	return embedded, nil
}

// indexChunks upserts the embedded chunks into the collection, creating it
// lazily. With nothing to index it reports a failed status without error,
// matching the rest of the pipeline's empty-input handling.
func (s *IngestService) indexChunks(ctx context.Context, chunks []domain.EmbeddedChunk) (string, error) {
	if len(chunks) == 0 {
		s.log.Warn("no chunks provided for indexing")
		return domain.StatusFailed, nil
	}

	if err := s.index.EnsureCollection(ctx, s.collection, s.dimension); err != nil {
		return "", err
	}

	points := make([]port.IndexPoint, len(chunks))
	for i, c := range chunks {
		points[i] = port.IndexPoint{
			ID:      uuid.NewString(),
			Vector:  c.Vector,
			Content: c.Content,
			Meta:    c.Meta,
		}
	}
	if err := s.index.Upsert(ctx, s.collection, points); err != nil {
		return "", err
	}

	s.log.Info("indexed chunks", "count", len(points), "collection", s.collection)
	return domain.StatusSuccess, nil
}
