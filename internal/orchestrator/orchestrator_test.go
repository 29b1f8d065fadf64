package orchestrator

import (
	"context"
	"errors"
	"testing"

	"github.com/codelensai/coderag/internal/domain"
	"github.com/codelensai/coderag/internal/embedder"
	"github.com/codelensai/coderag/internal/ingestion"
	"github.com/codelensai/coderag/internal/port"
)

type fakeFetcher struct {
	files []domain.RawFile
	meta  domain.RepoMeta
	err   error
}

func (f *fakeFetcher) Fetch(ctx context.Context, githubURL, token string) ([]domain.RawFile, domain.RepoMeta, error) {
	return f.files, f.meta, f.err
}

type fakeAI struct{ dim int }

func (f *fakeAI) ModelName() string       { return "fake-model" }
func (f *fakeAI) EmbeddingDimension() int { return f.dim }
func (f *fakeAI) Embed(ctx context.Context, text string) ([]float32, error) {
	return make([]float32, f.dim), nil
}
func (f *fakeAI) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = make([]float32, f.dim)
	}
	return out, nil
}
func (f *fakeAI) Generate(ctx context.Context, system, user string) (string, error) { return "", nil }

type fakeStore struct {
	writeResult domain.WriteResult
	writeErr    error
	lastCount   int
}

func (s *fakeStore) Write(ctx context.Context, embedded []domain.EmbeddedChunk, opts port.WriteOptions) (domain.WriteResult, error) {
	s.lastCount = len(embedded)
	return s.writeResult, s.writeErr
}
func (s *fakeStore) SearchSimilar(ctx context.Context, repoID string, queryVector []float32, topK int) ([]domain.RetrievedChunk, error) {
	return nil, nil
}
func (s *fakeStore) GetRepoIndex(ctx context.Context, repoID string) (*domain.RepoIndex, error) {
	return nil, nil
}

type fakeQueue struct {
	progress []int
}

func (q *fakeQueue) Enqueue(ctx context.Context, data domain.IndexRepoJobData) (string, error) {
	return "job-1", nil
}
func (q *fakeQueue) Process(ctx context.Context, concurrency int, handler port.Handler) error {
	return nil
}
func (q *fakeQueue) Status(ctx context.Context, jobID string) (*domain.Job, error) { return nil, nil }
func (q *fakeQueue) ReportProgress(ctx context.Context, jobID string, percent int) error {
	q.progress = append(q.progress, percent)
	return nil
}

func TestHandleWritesEmbeddedChunks(t *testing.T) {
	fetcher := &fakeFetcher{
		files: []domain.RawFile{{Path: "a.ts", Content: []byte("export const x = 1\nconst y = 2\n"), SizeBytes: 30}},
		meta:  domain.RepoMeta{Owner: "acme", Repo: "widgets", CommitHash: "abc123"},
	}
	ai := &fakeAI{dim: 4}
	store := &fakeStore{writeResult: domain.WriteResult{Strategy: domain.WriteFullReindex, ChunksWritten: 1}}
	queue := &fakeQueue{}

	o := New(ingestion.New(fetcher), embedder.New(ai, 2), store, ai.ModelName(), queue, 1, nil)

	job := &domain.Job{ID: "job-1", Data: domain.IndexRepoJobData{GitHubURL: "https://github.com/acme/widgets"}}
	result, err := o.handle(context.Background(), job)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.RepoID != "acme/widgets" {
		t.Fatalf("expected repo id acme/widgets, got %s", result.RepoID)
	}
	if result.Strategy != domain.WriteFullReindex {
		t.Fatalf("expected full-reindex strategy passed through, got %s", result.Strategy)
	}
	if store.lastCount == 0 {
		t.Fatalf("expected at least one embedded chunk written")
	}
	if len(queue.progress) != 4 || queue.progress[len(queue.progress)-1] != 100 {
		t.Fatalf("expected 4 progress reports ending at 100, got %v", queue.progress)
	}
}

func TestHandleShortCircuitsOnEmptyCorpus(t *testing.T) {
	fetcher := &fakeFetcher{
		files: nil,
		meta:  domain.RepoMeta{Owner: "acme", Repo: "empty", CommitHash: "abc123"},
	}
	ai := &fakeAI{dim: 4}
	store := &fakeStore{}
	queue := &fakeQueue{}

	o := New(ingestion.New(fetcher), embedder.New(ai, 1), store, ai.ModelName(), queue, 1, nil)

	job := &domain.Job{ID: "job-2", Data: domain.IndexRepoJobData{GitHubURL: "https://github.com/acme/empty"}}
	result, err := o.handle(context.Background(), job)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Strategy != domain.WriteSkipped || result.ChunksWritten != 0 {
		t.Fatalf("expected skipped/0 on empty corpus, got %+v", result)
	}
	if store.lastCount != 0 {
		t.Fatalf("expected store.Write never called with chunks")
	}
}

func TestHandlePropagatesFetchError(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("fetch boom")}
	ai := &fakeAI{dim: 4}
	store := &fakeStore{}
	queue := &fakeQueue{}

	o := New(ingestion.New(fetcher), embedder.New(ai, 1), store, ai.ModelName(), queue, 1, nil)

	job := &domain.Job{ID: "job-3", Data: domain.IndexRepoJobData{GitHubURL: "https://github.com/acme/broken"}}
	if _, err := o.handle(context.Background(), job); err == nil {
		t.Fatalf("expected fetch error to propagate")
	}
}
