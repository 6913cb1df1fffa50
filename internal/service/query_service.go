package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"ragpipe/internal/domain"
	"ragpipe/internal/guardrail"
	"ragpipe/internal/port"
)

const (
	generationSystemPrompt = `You are a helpful assistant.
Answer the question using ONLY the provided context.
If the answer is not in the context, say 'I don't know based on the provided documents.'`

	noContextAnswer = "I don't have enough context to answer this question."

	genericFailureAnswer = "Sorry, an error occurred while processing your query."
)

// QueryConfig carries the retrieval and reranking parameters of the query
// pipeline.
type QueryConfig struct {
	Collection          string
	TopK                int
	SimilarityThreshold float64
	RerankTopN          int
}

// QueryService runs the query pipeline: validate, retrieve, rerank,
// generate, then validate the response observationally.
type QueryService struct {
	embedder  port.Embedder
	index     port.VectorIndex
	reranker  port.Reranker
	generator port.Generator
	guard     guardrail.Validator
	cfg       QueryConfig
	log       *slog.Logger
}

// NewQueryService creates the query pipeline.
func NewQueryService(embedder port.Embedder, index port.VectorIndex, reranker port.Reranker, generator port.Generator, guard guardrail.Validator, cfg QueryConfig, log *slog.Logger) *QueryService {
	if log == nil {
		log = slog.Default()
	}
	return &QueryService{
		embedder:  embedder,
		index:     index,
		reranker:  reranker,
		generator: generator,
		guard:     guard,
		cfg:       cfg,
		log:       log,
	}
}

// Answer runs the full pipeline for one query. A rejected query surfaces
// the rejection reason as the answer text; any internal fault is converted
// to a generic failure result. The caller always receives a well-formed
// QueryResult.
func (s *QueryService) Answer(ctx context.Context, query string) domain.QueryResult {
	if valid, reason := s.guard.ValidateQuery(query); !valid {
		s.log.Warn("query validation failed", "reason", reason)
		return domain.QueryResult{Answer: reason, Sources: []string{}}
	}

	s.log.Info("starting query pipeline", "query", truncate(query, 50))

	result, err := s.run(ctx, query)
	if err != nil {
		s.log.Error("query pipeline failed", "error", err)
		return domain.QueryResult{Answer: genericFailureAnswer, Sources: []string{}}
	}

	// Response validation flags but never blocks the answer.
	if valid, reason := s.guard.ValidateResponse(result); !valid {
		s.log.Warn("response validation failed", "reason", reason)
	}
	return result
}

func (s *QueryService) run(ctx context.Context, query string) (domain.QueryResult, error) {
	retrieved, err := s.Retrieve(ctx, query)
	if err != nil {
		return domain.QueryResult{}, fmt.Errorf("retrieve: %w", err)
	}
	s.log.Info("retrieved documents", "count", len(retrieved))

	reranked := s.rerank(ctx, query, retrieved)

	return s.generate(ctx, query, reranked)
}

// Retrieve embeds the query once, searches the collection capped at top_k,
// and filters hits below the similarity threshold. The search order is kept;
// there is no re-sort after filtering. A missing collection or empty query
// is a normal empty result.
func (s *QueryService) Retrieve(ctx context.Context, query string) ([]domain.RetrievedDocument, error) {
	if query == "" {
		s.log.Warn("no query provided for retrieval")
		return nil, nil
	}

	exists, err := s.index.HasCollection(ctx, s.cfg.Collection)
	if err != nil {
		return nil, err
	}
	if !exists {
		s.log.Warn("collection does not exist", "collection", s.cfg.Collection)
		return nil, nil
	}

	vector, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, err
	}

	hits, err := s.index.Search(ctx, s.cfg.Collection, vector, s.cfg.TopK)
	if err != nil {
		return nil, err
	}

	var results []domain.RetrievedDocument
	for _, hit := range hits {
		if hit.Score >= s.cfg.SimilarityThreshold {
			results = append(results, hit)
		}
	}
	s.log.Info("filtered retrieval results", "retrieved", len(hits), "kept", len(results))
	return results, nil
}

// rerank calls the reranking service and merges its scores back onto the
// original candidates. Reranking is best-effort: a service failure falls
// back to the candidates in their original order.
func (s *QueryService) rerank(ctx context.Context, query string, candidates []domain.RetrievedDocument) []domain.RerankedDocument {
	if query == "" {
		s.log.Warn("no query provided for reranking")
		return passthrough(candidates)
	}
	if len(candidates) == 0 {
		s.log.Warn("no documents provided for reranking")
		return nil
	}

	texts := make([]string, len(candidates))
	for i, c := range candidates {
		texts[i] = c.Content
	}

	results, err := s.reranker.Rerank(ctx, query, texts, s.cfg.RerankTopN)
	if err != nil {
		s.log.Error("reranking failed, falling back to retrieval order", "error", err)
		return passthrough(candidates)
	}

	var reranked []domain.RerankedDocument
	for _, res := range results {
		if res.Index < 0 || res.Index >= len(candidates) {
			s.log.Warn("reranker returned out-of-range index", "index", res.Index)
			continue
		}
		c := candidates[res.Index]
		reranked = append(reranked, domain.RerankedDocument{
			Content:       c.Content,
			Meta:          c.Meta,
			OriginalScore: c.Score,
			Score:         res.Score,
		})
	}

	// The service's own ordering is not trusted.
	sort.SliceStable(reranked, func(i, j int) bool { return reranked[i].Score > reranked[j].Score })
	if len(reranked) > s.cfg.RerankTopN {
		reranked = reranked[:s.cfg.RerankTopN]
	}

	s.log.Info("reranked documents", "count", len(reranked))
	return reranked
}

// generate produces the grounded answer. With no supporting documents it
// returns a fixed insufficient-context answer instead of invoking the
// generation service.
func (s *QueryService) generate(ctx context.Context, query string, documents []domain.RerankedDocument) (domain.QueryResult, error) {
	if len(documents) == 0 {
		s.log.Warn("no documents provided for generation")
		return domain.QueryResult{
			Answer:  noContextAnswer,
			Sources: []string{},
			Model:   s.generator.ModelName(),
		}, nil
	}

	var contextText strings.Builder
	for i, doc := range documents {
		fmt.Fprintf(&contextText, "[%d] %s\n\n", i+1, doc.Content)
	}
	userPrompt := fmt.Sprintf("Context:\n%s\nQuestion: %s", contextText.String(), query)

	answer, err := s.generator.Generate(ctx, generationSystemPrompt, userPrompt)
	if err != nil {
		return domain.QueryResult{}, fmt.Errorf("generate: %w", err)
	}

	seen := make(map[string]struct{}, len(documents))
	sources := make([]string, 0, len(documents))
	for _, doc := range documents {
		if _, ok := seen[doc.Meta.Source]; ok {
			continue
		}
		seen[doc.Meta.Source] = struct{}{}
		sources = append(sources, doc.Meta.Source)
	}

	s.log.Info("generated response", "answer_length", len(answer))
	return domain.QueryResult{
		Answer:  answer,
		Sources: sources,
		Model:   s.generator.ModelName(),
	}, nil
}

// passthrough converts candidates unchanged when reranking is skipped or
// fails; the retrieval score fills both score fields.
func passthrough(candidates []domain.RetrievedDocument) []domain.RerankedDocument {
	out := make([]domain.RerankedDocument, len(candidates))
	for i, c := range candidates {
		out[i] = domain.RerankedDocument{
			Content:       c.Content,
			Meta:          c.Meta,
			OriginalScore: c.Score,
			Score:         c.Score,
		}
	}
	return out
}

// truncate shortens s to at most n characters for log output, cutting on
// rune boundaries.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
