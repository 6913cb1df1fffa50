package service

import (
	"context"
	"errors"

	"ragpipe/internal/domain"
	"ragpipe/internal/port"
)

var errFake = errors.New("fake failure")

type fakeSource struct {
	docs []domain.Document
	err  error
}

func (f *fakeSource) Load(_ context.Context, _ string) ([]domain.Document, error) {
	return f.docs, f.err
}

type fakeEmbedder struct {
	dimension int
	batchErr  error
	queryErr  error
}

func (f *fakeEmbedder) ModelName() string { return "fake-embed" }

func (f *fakeEmbedder) EmbedQuery(_ context.Context, _ string) ([]float32, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return make([]float32, f.dimension), nil
}

func (f *fakeEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	if f.batchErr != nil {
		return nil, f.batchErr
	}
	vectors := make([][]float32, len(texts))
	for i := range vectors {
		vectors[i] = make([]float32, f.dimension)
	}
	return vectors, nil
}

type fakeIndex struct {
	exists     bool
	hits       []domain.RetrievedDocument
	upserted   []port.IndexPoint
	ensured    map[string]int
	hasErr     error
	upsertErr  error
	searchErr  error
	ensureErr  error
	collection string
}

func (f *fakeIndex) HasCollection(_ context.Context, collection string) (bool, error) {
	f.collection = collection
	return f.exists, f.hasErr
}

func (f *fakeIndex) EnsureCollection(_ context.Context, collection string, dimension int) error {
	if f.ensureErr != nil {
		return f.ensureErr
	}
	if f.ensured == nil {
		f.ensured = make(map[string]int)
	}
	f.ensured[collection] = dimension
	f.exists = true
	return nil
}

func (f *fakeIndex) Upsert(_ context.Context, _ string, points []port.IndexPoint) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserted = append(f.upserted, points...)
	return nil
}

func (f *fakeIndex) Search(_ context.Context, _ string, _ []float32, limit int) ([]domain.RetrievedDocument, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	if limit < len(f.hits) {
		return f.hits[:limit], nil
	}
	return f.hits, nil
}

type fakeReranker struct {
	results []port.RerankResult
	err     error
}

func (f *fakeReranker) ModelName() string { return "fake-rerank" }

func (f *fakeReranker) Rerank(_ context.Context, _ string, _ []string, _ int) ([]port.RerankResult, error) {
	return f.results, f.err
}

type fakeGenerator struct {
	answer     string
	err        error
	userPrompt string
}

func (f *fakeGenerator) ModelName() string { return "fake-llm" }

func (f *fakeGenerator) Generate(_ context.Context, _, userPrompt string) (string, error) {
	f.userPrompt = userPrompt
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

type fakeScorer struct {
	scores  map[string]float64
	err     error
	records []port.EvalRecord
}

func (f *fakeScorer) Score(_ context.Context, records []port.EvalRecord) (map[string]float64, error) {
	f.records = records
	if f.err != nil {
		return nil, f.err
	}
	return f.scores, nil
}

func retrievedDoc(content, source string, score float64) domain.RetrievedDocument {
	return domain.RetrievedDocument{
		Content: content,
		Meta: domain.ChunkMeta{
			DocumentMeta: domain.DocumentMeta{Source: source, FileType: "text", FileSizeKB: 1, PageCount: 1},
			ChunkIndex:   0,
			TotalChunks:  1,
		},
		Score: score,
	}
}
