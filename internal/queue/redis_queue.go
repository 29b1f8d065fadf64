// Package queue implements the durable "index-repo" job queue on Redis:
// a JSON-encoded job record per job id, plus lists that track queue membership and
// completed/failed retention, generalizing the key/value Get/Set usage
// seen elsewhere in the pack to job hashes and state lists.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/codelensai/coderag/internal/apperr"
	"github.com/codelensai/coderag/internal/domain"
	"github.com/codelensai/coderag/internal/port"
	"github.com/codelensai/coderag/internal/retry"
)

const (
	queueKey     = "coderag:queue:index-repo"
	jobKeyPrefix = "coderag:job:"
	completedKey = "coderag:jobs:completed"
	failedKey    = "coderag:jobs:failed"

	maxCompletedRetained = 100
	maxFailedRetained    = 50
	maxAttempts          = 3

	popTimeout = 5 * time.Second
)

var backoff = retry.Config{
	MaxAttempts: maxAttempts,
	Base:        5 * time.Second,
	Max:         20 * time.Second,
}

// RedisQueue implements port.Queue.
type RedisQueue struct {
	client *redis.Client
	logger *slog.Logger
}

// New builds a RedisQueue from a redis:// URL.
func New(redisURL string, logger *slog.Logger) (*RedisQueue, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisQueue{client: redis.NewClient(opts), logger: logger}, nil
}

func jobKey(id string) string { return jobKeyPrefix + id }

// Enqueue durably records a new job hash and pushes its id onto the queue.
func (q *RedisQueue) Enqueue(ctx context.Context, data domain.IndexRepoJobData) (string, error) {
	id := uuid.NewString()
	now := time.Now()
	job := domain.Job{
		ID: id, Data: data, State: domain.JobQueued,
		CreatedAt: now, UpdatedAt: now,
	}

	if err := q.saveJob(ctx, &job); err != nil {
		return "", err
	}
	if err := q.client.LPush(ctx, queueKey, id).Err(); err != nil {
		return "", apperr.Wrap(apperr.KindTransientIO, "enqueue job", err)
	}
	return id, nil
}

// Status returns the current snapshot of a job.
func (q *RedisQueue) Status(ctx context.Context, jobID string) (*domain.Job, error) {
	job, err := q.loadJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, apperr.New(apperr.KindJobUnknown, "job not found: "+jobID)
	}
	return job, nil
}

// ReportProgress updates a job's progress percentage in place.
func (q *RedisQueue) ReportProgress(ctx context.Context, jobID string, percent int) error {
	job, err := q.loadJob(ctx, jobID)
	if err != nil || job == nil {
		return err
	}
	job.Progress = percent
	return q.saveJob(ctx, job)
}

// Process runs concurrency workers pulling from the queue until ctx is
// cancelled. Each worker blocks on BRPOP with popTimeout so it periodically
// re-checks ctx.
func (q *RedisQueue) Process(ctx context.Context, concurrency int, handler port.Handler) error {
	if concurrency <= 0 {
		concurrency = 3
	}
	done := make(chan struct{})
	for i := 0; i < concurrency; i++ {
		go func(worker int) {
			q.workerLoop(ctx, worker, handler)
			done <- struct{}{}
		}(i)
	}
	for i := 0; i < concurrency; i++ {
		<-done
	}
	return ctx.Err()
}

func (q *RedisQueue) workerLoop(ctx context.Context, worker int, handler port.Handler) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		res, err := q.client.BRPop(ctx, popTimeout, queueKey).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			q.logger.Warn("queue.pop_error", "worker", worker, "err", err)
			continue
		}

		jobID := res[1]
		q.runJob(ctx, jobID, handler)
	}
}

func (q *RedisQueue) runJob(ctx context.Context, jobID string, handler port.Handler) {
	job, err := q.loadJob(ctx, jobID)
	if err != nil || job == nil {
		q.logger.Warn("queue.job_missing", "job_id", jobID)
		return
	}

	job.State = domain.JobActive
	job.Attempts++
	_ = q.saveJob(ctx, job)

	result, err := handler(ctx, job)
	if err != nil {
		q.failOrRetry(ctx, job, err)
		return
	}

	job.State = domain.JobCompleted
	job.Progress = 100
	job.Result = result
	_ = q.saveJob(ctx, job)
	_ = q.client.LPush(ctx, completedKey, jobID).Err()
	_ = q.client.LTrim(ctx, completedKey, 0, maxCompletedRetained-1).Err()
}

func (q *RedisQueue) failOrRetry(ctx context.Context, job *domain.Job, cause error) {
	job.FailReason = cause.Error()

	if job.Attempts < maxAttempts && apperr.Retryable(cause) {
		delay := backoff.Delay(job.Attempts - 1)
		q.logger.Warn("queue.job_retry", "job_id", job.ID, "attempt", job.Attempts, "delay", delay, "err", cause)
		job.State = domain.JobQueued
		_ = q.saveJob(ctx, job)

		go func() {
			select {
			case <-ctx.Done():
			case <-time.After(delay):
				_ = q.client.LPush(context.Background(), queueKey, job.ID).Err()
			}
		}()
		return
	}

	job.State = domain.JobFailed
	_ = q.saveJob(ctx, job)
	_ = q.client.LPush(ctx, failedKey, job.ID).Err()
	_ = q.client.LTrim(ctx, failedKey, 0, maxFailedRetained-1).Err()
}

func (q *RedisQueue) saveJob(ctx context.Context, job *domain.Job) error {
	job.UpdatedAt = time.Now()
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	if err := q.client.Set(ctx, jobKey(job.ID), payload, 0).Err(); err != nil {
		return apperr.Wrap(apperr.KindTransientIO, "save job", err)
	}
	return nil
}

func (q *RedisQueue) loadJob(ctx context.Context, id string) (*domain.Job, error) {
	payload, err := q.client.Get(ctx, jobKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindTransientIO, "load job", err)
	}
	var job domain.Job
	if err := json.Unmarshal(payload, &job); err != nil {
		return nil, fmt.Errorf("unmarshal job: %w", err)
	}
	return &job, nil
}
