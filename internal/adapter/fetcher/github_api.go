package fetcher

import (
	"context"
	"encoding/base64"
	"log/slog"
	"sync"
	"time"

	"github.com/google/go-github/v60/github"

	"github.com/codelensai/coderag/internal/domain"
)

const perFileAPICapBytes = 500_000

// treeEntry is a pre-filtered candidate blob from the repository tree.
type treeEntry struct {
	Path string
	SHA  string
	Size int
}

// repoMetadata probes a repository's size and default branch without
// downloading any file content.
func repoMetadata(ctx context.Context, client *github.Client, owner, repo string) (sizeKB int, defaultBranch string, err error) {
	r, _, err := client.Repositories.Get(ctx, owner, repo)
	if err != nil {
		return 0, "", err
	}
	return r.GetSize(), r.GetDefaultBranch(), nil
}

// listTree enumerates the default branch's tree recursively and returns
// candidate blobs that pass the path/extension pre-filter and the 500KB
// per-file cap, along with the branch's head commit SHA.
func listTree(ctx context.Context, client *github.Client, owner, repo, branch string, keepPath func(string) bool) (entries []treeEntry, headSHA string, err error) {
	b, _, err := client.Repositories.GetBranch(ctx, owner, repo, branch, 0)
	if err != nil {
		return nil, "", err
	}
	headSHA = b.GetCommit().GetSHA()

	tree, _, err := client.Git.GetTree(ctx, owner, repo, headSHA, true)
	if err != nil {
		return nil, headSHA, err
	}

	for _, e := range tree.Entries {
		if e.GetType() != "blob" {
			continue
		}
		path := e.GetPath()
		size := e.GetSize()
		if size > perFileAPICapBytes {
			continue
		}
		if keepPath != nil && !keepPath(path) {
			continue
		}
		entries = append(entries, treeEntry{Path: path, SHA: e.GetSHA(), Size: size})
	}
	return entries, headSHA, nil
}

// fetchBlobs fetches blob contents in parallel batches of batchSize.
// Per-file failures are logged and skipped; they never fail the batch.
func fetchBlobs(ctx context.Context, client *github.Client, owner, repo string, entries []treeEntry, batchSize int, logger *slog.Logger) []domain.RawFile {
	if batchSize <= 0 {
		batchSize = 20
	}
	var out []domain.RawFile
	var mu sync.Mutex
	var rlMu sync.Mutex
	var lastRL *rateLimitInfo

	for start := 0; start < len(entries); start += batchSize {
		end := start + batchSize
		if end > len(entries) {
			end = len(entries)
		}
		batch := entries[start:end]

		var wg sync.WaitGroup
		for _, e := range batch {
			wg.Add(1)
			go func(e treeEntry) {
				defer wg.Done()
				blob, resp, err := client.Git.GetBlob(ctx, owner, repo, e.SHA)
				if resp != nil {
					if rl := parseRateLimit(resp.Response); rl != nil {
						rlMu.Lock()
						lastRL = rl
						rlMu.Unlock()
					}
				}
				if err != nil {
					logger.Warn("fetch.blob.error", "path", e.Path, "err", err)
					return
				}
				content, err := decodeBlob(blob)
				if err != nil {
					logger.Warn("fetch.blob.decode_error", "path", e.Path, "err", err)
					return
				}
				mu.Lock()
				out = append(out, domain.RawFile{Path: e.Path, Content: content, SizeBytes: len(content)})
				mu.Unlock()
			}(e)
		}
		wg.Wait()

		if lastRL.shouldThrottle() {
			wait := lastRL.waitDuration()
			logger.Warn("fetch.blob.rate_limit_throttle", "wait", wait)
			select {
			case <-ctx.Done():
				return out
			case <-time.After(wait):
			}
		}
	}
	return out
}

func decodeBlob(blob *github.Blob) ([]byte, error) {
	if blob.GetEncoding() == "base64" {
		return base64.StdEncoding.DecodeString(blob.GetContent())
	}
	return []byte(blob.GetContent()), nil
}
