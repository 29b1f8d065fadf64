package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/joho/godotenv"

	_ "github.com/lib/pq"

	"github.com/codelensai/coderag/internal/adapter/ai"
	"github.com/codelensai/coderag/internal/adapter/fetcher"
	"github.com/codelensai/coderag/internal/adapter/store"
	"github.com/codelensai/coderag/internal/embedder"
	"github.com/codelensai/coderag/internal/handler"
	"github.com/codelensai/coderag/internal/ingestion"
	"github.com/codelensai/coderag/internal/orchestrator"
	"github.com/codelensai/coderag/internal/query"
	"github.com/codelensai/coderag/internal/queue"
	"github.com/codelensai/coderag/internal/retrieval"
	"github.com/codelensai/coderag/pkg/config"
)

const (
	embeddingModel = "text-embedding-004"
	embeddingDim   = 768
	chatModel      = "gemini-1.5-flash"
	geminiBaseURL  = "https://generativelanguage.googleapis.com"
)

func main() {
	_ = godotenv.Load() // silently ignore if .env doesn't exist

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := config.Load()
	logger.Info("starting coderag", "port", cfg.Port, "worker_concurrency", cfg.WorkerConcurrency)

	// ── Relational + vector store ───────────────────────────────────────
	pgStore, err := store.NewPostgresStore(cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to database", "err", err)
		os.Exit(1)
	}
	defer pgStore.Close()

	vectorStore := store.NewVectorStore(pgStore)

	// ── AI provider ──────────────────────────────────────────────────────
	aiProvider := ai.New(ai.Config{
		BaseURL:        geminiBaseURL,
		EmbeddingModel: embeddingModel,
		ChatModel:      chatModel,
		APIKey:         cfg.GeminiAPIKey,
		Dimension:      embeddingDim,
	})

	// ── Repo fetcher, embedder, ingestion pipeline ──────────────────────
	repoFetcher := fetcher.New(cfg.CloneBaseDir, cfg.GitHubToken, logger)
	emb := embedder.New(aiProvider, cfg.WorkerConcurrency)
	pipeline := ingestion.New(repoFetcher)

	// ── Durable queue + orchestrator worker pool ────────────────────────
	jobQueue, err := queue.New(cfg.RedisURL, logger)
	if err != nil {
		logger.Error("failed to connect to redis", "err", err)
		os.Exit(1)
	}
	orch := orchestrator.New(pipeline, emb, vectorStore, aiProvider.ModelName(), jobQueue, cfg.WorkerConcurrency, logger)

	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()
	go func() {
		if err := orch.Run(workerCtx); err != nil && workerCtx.Err() == nil {
			logger.Error("orchestrator stopped unexpectedly", "err", err)
		}
	}()

	// ── Query service ────────────────────────────────────────────────────
	retriever := retrieval.New(aiProvider, vectorStore)
	queryService := query.New(retriever, aiProvider)

	// ── Fiber app ────────────────────────────────────────────────────────
	app := fiber.New(fiber.Config{
		AppName:      "CodeRAG",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowedOrigins,
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
	}))

	handler.RegisterHealth(app)

	api := app.Group("/api")
	handler.NewIndexHandler(jobQueue).Register(api)
	handler.NewQueryHandler(queryService).Register(api)

	logger.Info("fiber listening", "port", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		logger.Error("server failed", "err", err)
		os.Exit(1)
	}
}
