package retrieval

import (
	"context"
	"errors"
	"testing"

	"github.com/codelensai/coderag/internal/domain"
	"github.com/codelensai/coderag/internal/port"
)

type fakeAI struct {
	vector []float32
	err    error
}

func (f *fakeAI) ModelName() string       { return "fake-model" }
func (f *fakeAI) EmbeddingDimension() int { return len(f.vector) }
func (f *fakeAI) Embed(ctx context.Context, text string) ([]float32, error) {
	return f.vector, f.err
}
func (f *fakeAI) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return nil, nil
}
func (f *fakeAI) Generate(ctx context.Context, system, user string) (string, error) { return "", nil }

type recordingStore struct {
	chunks     []domain.RetrievedChunk
	err        error
	lastRepoID string
	lastTopK   int
}

func (s *recordingStore) Write(ctx context.Context, embedded []domain.EmbeddedChunk, opts port.WriteOptions) (domain.WriteResult, error) {
	return domain.WriteResult{}, nil
}

func (s *recordingStore) SearchSimilar(ctx context.Context, repoID string, queryVector []float32, topK int) ([]domain.RetrievedChunk, error) {
	s.lastRepoID = repoID
	s.lastTopK = topK
	if s.err != nil {
		return nil, s.err
	}
	return s.chunks, nil
}

func (s *recordingStore) GetRepoIndex(ctx context.Context, repoID string) (*domain.RepoIndex, error) {
	return nil, nil
}

func TestRetrieveEmbedsAndSearches(t *testing.T) {
	ai := &fakeAI{vector: []float32{0.1, 0.2}}
	store := &recordingStore{chunks: []domain.RetrievedChunk{
		{FilePath: "a.ts", StartLine: 1, EndLine: 5, Score: 0.9},
	}}
	r := New(ai, store)

	result, err := r.Retrieve(context.Background(), "how does auth work", "acme/widgets", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.lastRepoID != "acme/widgets" {
		t.Fatalf("expected repo id forwarded, got %q", store.lastRepoID)
	}
	if store.lastTopK != 5 {
		t.Fatalf("expected topK 5, got %d", store.lastTopK)
	}
	if len(result.Chunks) != 1 || result.TotalCandidates != 1 {
		t.Fatalf("expected 1 chunk, got %+v", result)
	}
}

func TestRetrieveDefaultsTopK(t *testing.T) {
	ai := &fakeAI{vector: []float32{0.1}}
	store := &recordingStore{}
	r := New(ai, store)

	if _, err := r.Retrieve(context.Background(), "query", "repo", 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.lastTopK != defaultTopK {
		t.Fatalf("expected default topK %d, got %d", defaultTopK, store.lastTopK)
	}
}

func TestRetrievePropagatesEmbedError(t *testing.T) {
	ai := &fakeAI{err: errors.New("embed boom")}
	store := &recordingStore{}
	r := New(ai, store)

	if _, err := r.Retrieve(context.Background(), "query", "repo", 1); err == nil {
		t.Fatalf("expected embed error to propagate")
	}
}

func TestRetrievePropagatesSearchError(t *testing.T) {
	ai := &fakeAI{vector: []float32{0.1}}
	store := &recordingStore{err: errors.New("search boom")}
	r := New(ai, store)

	if _, err := r.Retrieve(context.Background(), "query", "repo", 1); err == nil {
		t.Fatalf("expected search error to propagate")
	}
}
