// Package ingestion composes the fetch -> filter -> chunk phases into one
// pure data-transform step with no persistence of its own.
package ingestion

import (
	"context"
	"time"

	"github.com/codelensai/coderag/internal/chunker"
	"github.com/codelensai/coderag/internal/domain"
	"github.com/codelensai/coderag/internal/filter"
	"github.com/codelensai/coderag/internal/port"
)

// Stats reports per-phase counts and timing for one ingestion run.
type Stats struct {
	FilesFetched   int
	FilesAccepted  int
	FilesRejected  int
	ChunksProduced int
	FetchMs        int64
	FilterMs       int64
	ChunkMs        int64
}

// Result is the ingestion pipeline's full output.
type Result struct {
	RepoMeta domain.RepoMeta
	Chunks   []domain.CodeChunk
	Stats    Stats
}

// Pipeline runs C8: fetch, then filter, then chunk every accepted file.
type Pipeline struct {
	fetcher port.RepoFetcher
}

// New builds a Pipeline backed by the given fetcher.
func New(fetcher port.RepoFetcher) *Pipeline {
	return &Pipeline{fetcher: fetcher}
}

// Run executes all three phases for one repository.
func (p *Pipeline) Run(ctx context.Context, githubURL, githubToken string) (Result, error) {
	fetchStart := time.Now()
	files, meta, err := p.fetcher.Fetch(ctx, githubURL, githubToken)
	if err != nil {
		return Result{}, err
	}
	fetchMs := time.Since(fetchStart).Milliseconds()

	filterStart := time.Now()
	accepted, rejected := filter.Filter(files)
	filterMs := time.Since(filterStart).Milliseconds()

	repoID := meta.RepoID()
	chunkStart := time.Now()
	var chunks []domain.CodeChunk
	for _, f := range accepted {
		res := chunker.Chunk(repoID, f.Path, string(f.Content))
		chunks = append(chunks, res.Chunks...)
	}
	chunkMs := time.Since(chunkStart).Milliseconds()

	return Result{
		RepoMeta: meta,
		Chunks:   chunks,
		Stats: Stats{
			FilesFetched:   len(files),
			FilesAccepted:  len(accepted),
			FilesRejected:  len(rejected),
			ChunksProduced: len(chunks),
			FetchMs:        fetchMs,
			FilterMs:       filterMs,
			ChunkMs:        chunkMs,
		},
	}, nil
}
