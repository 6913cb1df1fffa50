package service

import (
	"context"
	"fmt"
	"log/slog"

	"ragpipe/internal/domain"
	"ragpipe/internal/port"
)

// EvalService drives the query pipeline and the retrieval step over a
// labeled dataset and forwards the results to the scoring service.
type EvalService struct {
	query  *QueryService
	scorer port.Scorer
	log    *slog.Logger
}

// NewEvalService creates the evaluation harness.
func NewEvalService(query *QueryService, scorer port.Scorer, log *slog.Logger) *EvalService {
	if log == nil {
		log = slog.Default()
	}
	return &EvalService{query: query, scorer: scorer, log: log}
}

// Evaluate scores the pipeline over the dataset with one batched scoring
// call. An empty dataset or any error yields a failed report. The contexts
// come from a standalone retrieval call per sample, not from the retrieval
// the answer pipeline performed internally, so the scored context can
// diverge from what the answer was actually grounded on.
func (s *EvalService) Evaluate(ctx context.Context, samples []domain.EvalSample) domain.EvalReport {
	s.log.Info("starting evaluation", "samples", len(samples))

	if len(samples) == 0 {
		s.log.Warn("no evaluation dataset provided")
		return domain.EvalReport{Status: domain.StatusFailed, Results: &domain.EvalResults{}}
	}

	report, err := s.run(ctx, samples)
	if err != nil {
		s.log.Error("evaluation pipeline failed", "error", err)
		return domain.EvalReport{Status: domain.StatusFailed, Results: &domain.EvalResults{}}
	}
	return report
}

func (s *EvalService) run(ctx context.Context, samples []domain.EvalSample) (domain.EvalReport, error) {
	records := make([]port.EvalRecord, 0, len(samples))
	for _, sample := range samples {
		answer := s.query.Answer(ctx, sample.Question)

		retrieved, err := s.query.Retrieve(ctx, sample.Question)
		if err != nil {
			return domain.EvalReport{}, fmt.Errorf("retrieve contexts: %w", err)
		}
		contexts := make([]string, len(retrieved))
		for i, doc := range retrieved {
			contexts[i] = doc.Content
		}

		records = append(records, port.EvalRecord{
			Question:  sample.Question,
			Answer:    answer.Answer,
			Contexts:  contexts,
			Reference: sample.GroundTruth,
		})
	}

	scores, err := s.scorer.Score(ctx, records)
	if err != nil {
		return domain.EvalReport{}, fmt.Errorf("score samples: %w", err)
	}
	s.log.Info("evaluation scores", "scores", scores)

	return domain.EvalReport{
		Status: domain.StatusSuccess,
		Results: &domain.EvalResults{
			Scores:              scores,
			NumEvaluatedSamples: len(records),
		},
	}, nil
}
