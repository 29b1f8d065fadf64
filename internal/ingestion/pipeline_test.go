package ingestion

import (
	"context"
	"testing"

	"github.com/codelensai/coderag/internal/domain"
)

type fakeFetcher struct {
	files []domain.RawFile
	meta  domain.RepoMeta
	err   error
}

func (f *fakeFetcher) Fetch(ctx context.Context, githubURL, token string) ([]domain.RawFile, domain.RepoMeta, error) {
	return f.files, f.meta, f.err
}

func TestPipelineRunChunksAcceptedFiles(t *testing.T) {
	fetcher := &fakeFetcher{
		files: []domain.RawFile{
			{Path: "src/main.ts", Content: []byte("export function main() {\n  return 1\n}\n"), SizeBytes: 30},
			{Path: "node_modules/x/index.js", Content: []byte("module.exports = {}"), SizeBytes: 20},
		},
		meta: domain.RepoMeta{Owner: "acme", Repo: "widgets", CommitHash: "abc123"},
	}

	p := New(fetcher)
	result, err := p.Run(context.Background(), "https://github.com/acme/widgets", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Stats.FilesFetched != 2 {
		t.Fatalf("expected 2 files fetched, got %d", result.Stats.FilesFetched)
	}
	if result.Stats.FilesRejected != 1 {
		t.Fatalf("expected node_modules file rejected, got %d rejected", result.Stats.FilesRejected)
	}
	if len(result.Chunks) == 0 {
		t.Fatalf("expected at least one chunk from the accepted file")
	}
	for _, c := range result.Chunks {
		if c.RepoID != "acme/widgets" {
			t.Fatalf("expected repo id acme/widgets, got %s", c.RepoID)
		}
	}
}

func TestPipelineRunPropagatesFetchError(t *testing.T) {
	fetcher := &fakeFetcher{err: context.DeadlineExceeded}
	p := New(fetcher)
	_, err := p.Run(context.Background(), "https://github.com/acme/widgets", "")
	if err == nil {
		t.Fatalf("expected fetch error to propagate")
	}
}
