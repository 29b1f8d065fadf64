// Package embedder batches chunks into provider calls under bounded
// concurrency, retrying transient failures within a job attempt.
package embedder

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/codelensai/coderag/internal/apperr"
	"github.com/codelensai/coderag/internal/domain"
	"github.com/codelensai/coderag/internal/port"
	"github.com/codelensai/coderag/internal/retry"
)

const (
	defaultBatchSize   = 32
	defaultConcurrency = 4
)

var defaultRetry = retry.Config{MaxAttempts: 3, Base: time.Second, Max: 8 * time.Second}

// Embedder wraps an AIProvider with batching, a concurrency limiter, and
// retry-with-backoff, per the Embedder contract.
type Embedder struct {
	provider    port.AIProvider
	batchSize   int
	concurrency int
	limiter     *rate.Limiter
	retry       retry.Config
}

// New builds an Embedder. concurrency bounds how many in-flight batch
// calls are allowed at once, respecting vendor rate limits.
func New(provider port.AIProvider, concurrency int) *Embedder {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &Embedder{
		provider:    provider,
		batchSize:   defaultBatchSize,
		concurrency: concurrency,
		limiter:     rate.NewLimiter(rate.Limit(concurrency), concurrency),
		retry:       defaultRetry,
	}
}

// Embed converts chunks into EmbeddedChunks. A single batch that still
// fails after retries fails the whole call — it never silently truncates.
func (e *Embedder) Embed(ctx context.Context, chunks []domain.CodeChunk) ([]domain.EmbeddedChunk, error) {
	if len(chunks) == 0 {
		return nil, nil
	}

	batches := splitBatches(chunks, e.batchSize)
	results := make([][]domain.EmbeddedChunk, len(batches))
	errs := make([]error, len(batches))

	sem := make(chan struct{}, e.concurrency)
	done := make(chan int, len(batches))

	for i, batch := range batches {
		sem <- struct{}{}
		go func(i int, batch []domain.CodeChunk) {
			defer func() { <-sem; done <- i }()
			results[i], errs[i] = e.embedBatch(ctx, batch)
		}(i, batch)
	}
	for range batches {
		<-done
	}

	var out []domain.EmbeddedChunk
	for i, err := range errs {
		if err != nil {
			return nil, apperr.Wrap(apperr.KindTransientIO, fmt.Sprintf("embedding batch %d failed after retries", i), err)
		}
		out = append(out, results[i]...)
	}
	return out, nil
}

func (e *Embedder) embedBatch(ctx context.Context, batch []domain.CodeChunk) ([]domain.EmbeddedChunk, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	texts := make([]string, len(batch))
	for i, c := range batch {
		texts[i] = c.Content
	}

	var vectors [][]float32
	err := retry.Do(ctx, e.retry, func() error {
		v, err := e.provider.EmbedBatch(ctx, texts)
		if err != nil {
			return err
		}
		vectors = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(batch) {
		return nil, fmt.Errorf("provider returned %d embeddings for %d chunks", len(vectors), len(batch))
	}

	now := time.Now()
	model := e.provider.ModelName()
	out := make([]domain.EmbeddedChunk, len(batch))
	for i, c := range batch {
		out[i] = domain.EmbeddedChunk{Chunk: c, Embedding: vectors[i], EmbeddedAt: now, Model: model}
	}
	return out, nil
}

func splitBatches(chunks []domain.CodeChunk, size int) [][]domain.CodeChunk {
	var out [][]domain.CodeChunk
	for i := 0; i < len(chunks); i += size {
		end := i + size
		if end > len(chunks) {
			end = len(chunks)
		}
		out = append(out, chunks[i:end])
	}
	return out
}
