// Package fetcher implements the Repo Fetcher: acquiring a repository's
// file set via the GitHub metadata API, falling back to a shallow clone
// when the repo is too large or too numerous for the API strategy.
package fetcher

import (
	"context"
	"log/slog"

	"github.com/google/go-github/v60/github"
	"golang.org/x/oauth2"

	"github.com/codelensai/coderag/internal/apperr"
	"github.com/codelensai/coderag/internal/domain"
	"github.com/codelensai/coderag/internal/filter"
	"github.com/codelensai/coderag/internal/urlparse"
)

const (
	apiStrategyMaxFiles   = 1000
	apiStrategyMaxSizeMB  = 50
	apiFetchBatchSize     = 20
)

// Fetcher implements port.RepoFetcher.
type Fetcher struct {
	baseCloneDir string
	defaultToken string
	logger       *slog.Logger
}

// New builds a Fetcher. baseCloneDir is where scoped clone temp dirs are
// created; empty uses the OS default temp directory. defaultToken wraps
// the GitHub API client when a job carries no per-request token of its
// own, letting operators raise the anonymous rate limit via GITHUB_TOKEN.
func New(baseCloneDir, defaultToken string, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{baseCloneDir: baseCloneDir, defaultToken: defaultToken, logger: logger}
}

// Fetch acquires a repository's candidate file set and metadata.
func (f *Fetcher) Fetch(ctx context.Context, githubURL, token string) ([]domain.RawFile, domain.RepoMeta, error) {
	owner, repo, err := urlparse.GitHubRepo(githubURL)
	if err != nil {
		return nil, domain.RepoMeta{}, err
	}

	if token == "" {
		token = f.defaultToken
	}
	client := newGitHubClient(ctx, token)

	sizeKB, defaultBranch, err := repoMetadata(ctx, client, owner, repo)
	if err != nil {
		// metadata lookup failure: fall straight to clone, which doesn't
		// need the REST API at all.
		return f.fetchViaClone(ctx, owner, repo, githubURL, "", sizeKB)
	}

	entries, headSHA, err := listTree(ctx, client, owner, repo, defaultBranch, filter.PathAllowed)
	sizeMB := sizeKB / 1024
	if err != nil || len(entries) > apiStrategyMaxFiles || sizeMB > apiStrategyMaxSizeMB {
		return f.fetchViaClone(ctx, owner, repo, githubURL, defaultBranch, sizeKB)
	}

	files := fetchBlobs(ctx, client, owner, repo, entries, apiFetchBatchSize, f.logger)
	meta := domain.RepoMeta{
		Owner: owner, Repo: repo, DefaultBranch: defaultBranch,
		SizeKB: sizeKB, FileCount: len(entries),
		UsedCloneFallback: false, CommitHash: headSHA,
	}
	return files, meta, nil
}

func (f *Fetcher) fetchViaClone(ctx context.Context, owner, repo, githubURL, branch string, sizeKB int) ([]domain.RawFile, domain.RepoMeta, error) {
	scope, err := acquireCloneScope(ctx, f.baseCloneDir, githubURL, branch)
	if err != nil {
		return nil, domain.RepoMeta{}, apperr.Wrap(apperr.KindTransientIO, "clone failed", err)
	}
	defer func() {
		if cerr := scope.Close(); cerr != nil {
			f.logger.Warn("fetch.clone.cleanup_error", "dir", scope.dir, "err", cerr)
		}
	}()

	sha, err := headCommitSHA(ctx, scope.dir)
	if err != nil {
		f.logger.Warn("fetch.clone.head_sha_error", "err", err)
		sha = ""
	}

	paths, err := walkClone(scope.dir)
	if err != nil {
		return nil, domain.RepoMeta{}, apperr.Wrap(apperr.KindTransientIO, "clone walk failed", err)
	}

	files := readClonedFiles(scope.dir, paths, f.logger)
	meta := domain.RepoMeta{
		Owner: owner, Repo: repo, DefaultBranch: branch,
		SizeKB: sizeKB, FileCount: len(files),
		UsedCloneFallback: true, CommitHash: sha,
	}
	return files, meta, nil
}

func newGitHubClient(ctx context.Context, token string) *github.Client {
	if token == "" {
		return github.NewClient(nil)
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	return github.NewClient(oauth2.NewClient(ctx, ts))
}
