// Package retrieval implements C6: embedding a query and running an ANN
// similarity search scoped to one repository.
package retrieval

import (
	"context"
	"fmt"
	"time"

	"github.com/codelensai/coderag/internal/domain"
	"github.com/codelensai/coderag/internal/port"
)

const defaultTopK = 8

// Result is one retrieve() call's full output.
type Result struct {
	Chunks          []domain.RetrievedChunk
	TotalCandidates int
	DurationMs      int64
}

// Retriever wraps the vector store's similarity search behind the
// embed-then-search contract.
type Retriever struct {
	ai    port.AIProvider
	store port.VectorStore
}

// New builds a Retriever.
func New(ai port.AIProvider, store port.VectorStore) *Retriever {
	return &Retriever{ai: ai, store: store}
}

// Retrieve embeds query with the indexing-time model and returns the
// topK nearest chunks for repoID, already floor-filtered by the store.
func (r *Retriever) Retrieve(ctx context.Context, query, repoID string, topK int) (Result, error) {
	if topK <= 0 {
		topK = defaultTopK
	}
	start := time.Now()

	vector, err := r.ai.Embed(ctx, query)
	if err != nil {
		return Result{}, fmt.Errorf("embed query: %w", err)
	}

	chunks, err := r.store.SearchSimilar(ctx, repoID, vector, topK)
	if err != nil {
		return Result{}, fmt.Errorf("search similar: %w", err)
	}

	return Result{
		Chunks:          chunks,
		TotalCandidates: len(chunks),
		DurationMs:      time.Since(start).Milliseconds(),
	}, nil
}
