package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragpipe/internal/chunker"
	"ragpipe/internal/domain"
)

func testChunker() *chunker.Chunker {
	return chunker.New(chunker.StrategyRecursive, 100, 20, nil)
}

func testDocument(content string) domain.Document {
	return domain.Document{
		Content: content,
		Meta: domain.DocumentMeta{
			Source:     "data/test_docs/doc.txt",
			FileType:   "text",
			FileSizeKB: 1.2,
			PageCount:  1,
		},
	}
}

func newTestIngestService(src *fakeSource, emb *fakeEmbedder, idx *fakeIndex) *IngestService {
	return NewIngestService(src, testChunker(), emb, idx, "rag_collection", 4, nil)
}

func TestIngestHappyPath(t *testing.T) {
	src := &fakeSource{docs: []domain.Document{
		testDocument(strings.Repeat("A sentence about the domain. ", 20)),
		testDocument("A short second document."),
	}}
	idx := &fakeIndex{}
	s := newTestIngestService(src, &fakeEmbedder{dimension: 4}, idx)

	report := s.Ingest(context.Background(), "test_docs")

	assert.Equal(t, domain.StatusSuccess, report.Status)
	assert.Equal(t, 2, report.DocumentsLoaded)
	assert.Greater(t, report.ChunksCreated, 1)
	assert.Equal(t, "rag_collection", report.Collection)

	// Collection is created lazily with the configured dimensionality.
	assert.Equal(t, 4, idx.ensured["rag_collection"])

	// One point per chunk, each with a fresh unique id.
	require.Len(t, idx.upserted, report.ChunksCreated)
	seen := make(map[string]struct{})
	for _, p := range idx.upserted {
		require.NotEmpty(t, p.ID)
		_, dup := seen[p.ID]
		require.False(t, dup, "duplicate point id")
		seen[p.ID] = struct{}{}
		assert.Len(t, p.Vector, 4)
		assert.NotEmpty(t, p.Content)
	}
}

func TestIngestEmptyDirectory(t *testing.T) {
	idx := &fakeIndex{}
	s := newTestIngestService(&fakeSource{}, &fakeEmbedder{dimension: 4}, idx)

	report := s.Ingest(context.Background(), "empty_dir")

	// Nothing to do still reports failed, with real zero counts.
	assert.Equal(t, domain.StatusFailed, report.Status)
	assert.Equal(t, 0, report.DocumentsLoaded)
	assert.Equal(t, 0, report.ChunksCreated)
	assert.Equal(t, "rag_collection", report.Collection)
	assert.Empty(t, idx.upserted)
	assert.Empty(t, idx.ensured)
}

func TestIngestSourceFailure(t *testing.T) {
	s := newTestIngestService(&fakeSource{err: errFake}, &fakeEmbedder{dimension: 4}, &fakeIndex{})

	report := s.Ingest(context.Background(), "missing")

	assert.Equal(t, domain.StatusFailed, report.Status)
	assert.Zero(t, report.DocumentsLoaded)
	assert.Zero(t, report.ChunksCreated)
	assert.Empty(t, report.Collection)
}

func TestIngestEmbedderFailure(t *testing.T) {
	src := &fakeSource{docs: []domain.Document{testDocument("Some content to embed.")}}
	idx := &fakeIndex{}
	s := newTestIngestService(src, &fakeEmbedder{dimension: 4, batchErr: errFake}, idx)

	report := s.Ingest(context.Background(), "test_docs")

	assert.Equal(t, domain.StatusFailed, report.Status)
	assert.Empty(t, idx.upserted)
}

func TestIngestUpsertFailure(t *testing.T) {
	src := &fakeSource{docs: []domain.Document{testDocument("Some content to index.")}}
	s := newTestIngestService(src, &fakeEmbedder{dimension: 4}, &fakeIndex{upsertErr: errFake})

	report := s.Ingest(context.Background(), "test_docs")

	assert.Equal(t, domain.StatusFailed, report.Status)
	assert.Zero(t, report.ChunksCreated)
}
