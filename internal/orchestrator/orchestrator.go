// Package orchestrator implements C9: the worker pool that drains the
// "index-repo" queue and runs ingest -> embed -> write per job, reporting
// progress and handling the empty-corpus short-circuit.
package orchestrator

import (
	"context"
	"log/slog"
	"time"

	"github.com/codelensai/coderag/internal/apperr"
	"github.com/codelensai/coderag/internal/domain"
	"github.com/codelensai/coderag/internal/embedder"
	"github.com/codelensai/coderag/internal/ingestion"
	"github.com/codelensai/coderag/internal/port"
)

// Orchestrator wires the ingestion pipeline, embedder, and vector store
// into one job handler, and drives a queue's worker pool against it.
type Orchestrator struct {
	pipeline       *ingestion.Pipeline
	embedder       *embedder.Embedder
	store          port.VectorStore
	embeddingModel string
	queue          port.Queue
	concurrency    int
	logger         *slog.Logger
}

// New builds an Orchestrator.
func New(pipeline *ingestion.Pipeline, emb *embedder.Embedder, store port.VectorStore, embeddingModel string, queue port.Queue, concurrency int, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		pipeline: pipeline, embedder: emb, store: store,
		embeddingModel: embeddingModel, queue: queue, concurrency: concurrency, logger: logger,
	}
}

// Run starts the worker pool and blocks until ctx is cancelled.
func (o *Orchestrator) Run(ctx context.Context) error {
	return o.queue.Process(ctx, o.concurrency, o.handle)
}

func (o *Orchestrator) handle(ctx context.Context, job *domain.Job) (*domain.IndexRepoJobResult, error) {
	start := time.Now()
	o.logger.Info("orchestrator.job.start", "job_id", job.ID, "url", job.Data.GitHubURL)
	o.progress(ctx, job.ID, 5)

	result, err := o.pipeline.Run(ctx, job.Data.GitHubURL, job.Data.GitHubToken)
	if err != nil {
		return nil, err
	}
	repoID := result.RepoMeta.RepoID()
	o.progress(ctx, job.ID, 40)

	if len(result.Chunks) == 0 {
		o.logger.Info("orchestrator.job.empty_corpus", "job_id", job.ID, "repo_id", repoID)
		return &domain.IndexRepoJobResult{
			RepoID:          repoID,
			Strategy:        domain.WriteSkipped,
			ChunksWritten:   0,
			TotalDurationMs: time.Since(start).Milliseconds(),
		}, nil
	}

	embedded, err := o.embedder.Embed(ctx, result.Chunks)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindTransientIO, "embedding failed", err)
	}
	o.progress(ctx, job.ID, 80)

	writeResult, err := o.store.Write(ctx, embedded, port.WriteOptions{
		RepoMeta:       result.RepoMeta,
		CommitHash:     result.RepoMeta.CommitHash,
		EmbeddingModel: o.embeddingModel,
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.KindVectorStoreError, "write failed", err)
	}
	o.progress(ctx, job.ID, 100)

	o.logger.Info("orchestrator.job.done", "job_id", job.ID, "repo_id", repoID,
		"strategy", writeResult.Strategy, "chunks_written", writeResult.ChunksWritten)

	return &domain.IndexRepoJobResult{
		RepoID:          repoID,
		Strategy:        writeResult.Strategy,
		ChunksWritten:   writeResult.ChunksWritten,
		TotalDurationMs: time.Since(start).Milliseconds(),
	}, nil
}

// progress reports job completion percentage; failures are logged, never
// fatal to the job itself.
func (o *Orchestrator) progress(ctx context.Context, jobID string, percent int) {
	if err := o.queue.ReportProgress(ctx, jobID, percent); err != nil {
		o.logger.Warn("orchestrator.progress_report_failed", "job_id", jobID, "err", err)
	}
}
