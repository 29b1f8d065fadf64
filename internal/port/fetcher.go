package port

import (
	"context"

	"github.com/codelensai/coderag/internal/domain"
)

// RepoFetcher acquires a repository's filterable file set, choosing between
// the metadata-API strategy and the shallow-clone fallback.
type RepoFetcher interface {
	Fetch(ctx context.Context, githubURL, token string) ([]domain.RawFile, domain.RepoMeta, error)
}
