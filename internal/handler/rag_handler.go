package handler

import (
	"log/slog"

	"github.com/gofiber/fiber/v3"

	"ragpipe/internal/domain"
	"ragpipe/internal/service"
)

// RAGHandler exposes the ingestion, query, and evaluation pipelines over
// HTTP. Pipeline-flagged failures map to server errors; everything else is
// returned as-is.
type RAGHandler struct {
	ingest *service.IngestService
	query  *service.QueryService
	eval   *service.EvalService
	log    *slog.Logger
}

// NewRAGHandler creates the pipeline handler.
func NewRAGHandler(ingest *service.IngestService, query *service.QueryService, eval *service.EvalService, log *slog.Logger) *RAGHandler {
	if log == nil {
		log = slog.Default()
	}
	return &RAGHandler{ingest: ingest, query: query, eval: eval, log: log}
}

// Register sets up the pipeline routes.
func (h *RAGHandler) Register(router fiber.Router) {
	router.Post("/ingest", h.Ingest)
	router.Post("/query", h.Query)
	router.Post("/evaluate", h.Evaluate)
}

// Ingest runs the ingestion pipeline for a directory.
func (h *RAGHandler) Ingest(c fiber.Ctx) error {
	var body struct {
		Directory string `json:"directory"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	h.log.Info("ingest request received", "directory", body.Directory)
	report := h.ingest.Ingest(c.Context(), body.Directory)
	if report.Status == domain.StatusFailed {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "ingestion pipeline failed"})
	}
	return c.JSON(report)
}

// Query runs the query pipeline for a single question.
func (h *RAGHandler) Query(c fiber.Ctx) error {
	var body struct {
		Query string `json:"query"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	h.log.Info("query request received", "query", body.Query)
	result := h.query.Answer(c.Context(), body.Query)
	if result.Answer == "" {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "query pipeline failed"})
	}
	return c.JSON(result)
}

// Evaluate scores the pipeline over a labeled dataset.
func (h *RAGHandler) Evaluate(c fiber.Ctx) error {
	var body struct {
		EvalDataset []domain.EvalSample `json:"eval_dataset"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	h.log.Info("evaluate request received", "samples", len(body.EvalDataset))
	report := h.eval.Evaluate(c.Context(), body.EvalDataset)
	if report.Status == domain.StatusFailed {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "evaluation pipeline failed"})
	}
	return c.JSON(report)
}
