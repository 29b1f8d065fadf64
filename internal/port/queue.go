package port

import (
	"context"

	"github.com/codelensai/coderag/internal/domain"
)

// Handler processes one dequeued job and returns its result.
type Handler func(ctx context.Context, job *domain.Job) (*domain.IndexRepoJobResult, error)

// Queue is the durable producer/consumer contract C9 is built on. The
// contract is durability, at-least-once delivery, and bounded concurrency;
// it may be backed by Redis, a database table, or an equivalent.
type Queue interface {
	// Enqueue durably records a new job and returns its id.
	Enqueue(ctx context.Context, data domain.IndexRepoJobData) (string, error)

	// Process runs handler against jobs drawn from the queue with the given
	// worker concurrency, until ctx is cancelled.
	Process(ctx context.Context, concurrency int, handler Handler) error

	// Status returns the current snapshot of a job, or apperr.KindJobUnknown
	// if no such job exists.
	Status(ctx context.Context, jobID string) (*domain.Job, error)

	// ReportProgress updates a running job's progress percentage (0-100).
	// Best-effort: a failure to persist progress never fails the job itself.
	ReportProgress(ctx context.Context, jobID string, percent int) error
}
