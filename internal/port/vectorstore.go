package port

import (
	"context"

	"github.com/codelensai/coderag/internal/domain"
)

// WriteOptions carries the metadata the writer needs to pick a strategy
// and stamp the RepoIndex row.
type WriteOptions struct {
	RepoMeta       domain.RepoMeta
	CommitHash     string // empty means unknown: forces the upsert strategy
	EmbeddingModel string
}

// VectorStore persists embedded chunks and serves similarity search over
// them, scoped per repository.
type VectorStore interface {
	Write(ctx context.Context, embedded []domain.EmbeddedChunk, opts WriteOptions) (domain.WriteResult, error)
	SearchSimilar(ctx context.Context, repoID string, queryVector []float32, topK int) ([]domain.RetrievedChunk, error)
	GetRepoIndex(ctx context.Context, repoID string) (*domain.RepoIndex, error)
}
