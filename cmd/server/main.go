package main

import (
	"log/slog"
	"os"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/joho/godotenv"

	_ "github.com/lib/pq"

	"ragpipe/internal/adapter/ai"
	"ragpipe/internal/adapter/eval"
	"ragpipe/internal/adapter/index"
	"ragpipe/internal/adapter/source"
	"ragpipe/internal/chunker"
	"ragpipe/internal/guardrail"
	"ragpipe/internal/handler"
	"ragpipe/internal/logger"
	"ragpipe/internal/port"
	"ragpipe/internal/service"
	"ragpipe/pkg/config"
)

func main() {
	// ── Load .env file ───────────────────────────────────────────────────
	_ = godotenv.Load() // silently ignore if .env doesn't exist

	// ── Configuration ────────────────────────────────────────────────────
	cfg, err := config.Load("")
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	log, logCloser, err := logger.New(logger.Config{Level: cfg.Logging.Level, File: cfg.Logging.File})
	if err != nil {
		slog.Error("failed to set up logger", "error", err)
		os.Exit(1)
	}
	defer logCloser.Close()

	log.Info("starting RAG pipeline service",
		"port", cfg.Server.Port,
		"vector_store", cfg.VectorStore.Type,
		"collection", cfg.VectorStore.CollectionName,
		"embedding_model", cfg.Embedding.ModelName,
	)

	// ── Vector index ─────────────────────────────────────────────────────
	var vectorIndex port.VectorIndex
	switch cfg.VectorStore.Type {
	case "postgres":
		pg, err := index.NewPostgres(cfg.VectorStore.DatabaseURL)
		if err != nil {
			log.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		defer pg.Close()
		vectorIndex = pg
	case "qdrant":
		vectorIndex = index.NewQdrant(cfg.VectorStore.URL, "")
	default:
		log.Error("unknown vector store type", "type", cfg.VectorStore.Type)
		os.Exit(1)
	}

	// ── Adapters ─────────────────────────────────────────────────────────
	embedder := ai.NewOpenAIEmbedder(ai.OpenAIConfig{
		BaseURL: cfg.Embedding.BaseURL,
		APIKey:  cfg.Credentials.OpenAIAPIKey,
		Model:   cfg.Embedding.ModelName,
	})
	generator := ai.NewOpenAIGenerator(ai.OpenAIConfig{
		BaseURL: cfg.LLM.BaseURL,
		APIKey:  cfg.Credentials.OpenAIAPIKey,
		Model:   cfg.LLM.ModelName,
	}, cfg.LLM.Temperature)
	reranker := ai.NewCohereReranker(ai.CohereConfig{
		BaseURL: cfg.Reranker.BaseURL,
		APIKey:  cfg.Credentials.CohereAPIKey,
		Model:   cfg.Reranker.ModelName,
	})
	scorer := eval.NewRagasScorer(eval.RagasConfig{
		BaseURL: cfg.Evaluation.ScoringURL,
		Metrics: cfg.Evaluation.Metrics,
	})
	docSource := source.NewFilesystem(cfg.SourceData.DocumentDirectory, log)
	docChunker := chunker.New(cfg.Chunking.Strategy, cfg.Chunking.ChunkSize, cfg.Chunking.ChunkOverlap, log)

	guard := guardrail.Validator{
		MinQueryLength: cfg.Validation.MinQueryLength,
		MaxQueryLength: cfg.Validation.MaxQueryLength,
	}

	// ── Services ─────────────────────────────────────────────────────────
	ingestService := service.NewIngestService(
		docSource, docChunker, embedder, vectorIndex,
		cfg.VectorStore.CollectionName, cfg.Embedding.Dimension, log,
	)
	queryService := service.NewQueryService(
		embedder, vectorIndex, reranker, generator, guard,
		service.QueryConfig{
			Collection:          cfg.VectorStore.CollectionName,
			TopK:                cfg.Retriever.TopK,
			SimilarityThreshold: cfg.Retriever.SimilarityThreshold,
			RerankTopN:          cfg.Reranker.TopN,
		}, log,
	)
	evalService := service.NewEvalService(queryService, scorer, log)

	// ── Fiber App ────────────────────────────────────────────────────────
	app := fiber.New(fiber.Config{
		AppName:      cfg.Server.AppName,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New())

	// Health check
	app.Get("/health", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy"})
	})

	ragHandler := handler.NewRAGHandler(ingestService, queryService, evalService, log)
	ragHandler.Register(app)

	// ── Start ────────────────────────────────────────────────────────────
	log.Info("listening", "port", cfg.Server.Port)
	if err := app.Listen(":" + cfg.Server.Port); err != nil {
		log.Error("server failed", "error", err)
		os.Exit(1)
	}
}
