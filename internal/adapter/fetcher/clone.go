package fetcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/codelensai/coderag/internal/domain"
	"github.com/codelensai/coderag/internal/filter"
)

// cloneScope is a per-job unique temp directory, released on every exit
// path of the fetch call that acquired it.
type cloneScope struct {
	dir string
}

// acquireCloneScope creates a unique temp directory and shallow single-
// branch clones url into it at depth 1.
func acquireCloneScope(ctx context.Context, baseDir, url, branch string) (*cloneScope, error) {
	tmpDir, err := os.MkdirTemp(baseDir, "coderag-clone-*")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}

	args := []string{"clone", "--depth", "1", "--single-branch", "--quiet"}
	if branch != "" {
		args = append(args, "--branch", branch)
	}
	args = append(args, url, tmpDir)

	cmd := exec.CommandContext(ctx, "git", args...)
	if err := cmd.Run(); err != nil {
		_ = os.RemoveAll(tmpDir)
		return nil, fmt.Errorf("git clone %s: %w", url, err)
	}
	return &cloneScope{dir: tmpDir}, nil
}

// Close removes the scoped clone directory. Safe to call multiple times.
func (s *cloneScope) Close() error {
	if s == nil || s.dir == "" {
		return nil
	}
	return os.RemoveAll(s.dir)
}

// headCommitSHA reads the checked-out HEAD commit hash of a clone.
func headCommitSHA(ctx context.Context, repoDir string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", "-C", repoDir, "rev-parse", "HEAD")
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("git rev-parse HEAD: %w", err)
	}
	sha := string(out)
	for len(sha) > 0 && (sha[len(sha)-1] == '\n' || sha[len(sha)-1] == '\r') {
		sha = sha[:len(sha)-1]
	}
	return sha, nil
}

// walkClone lists every regular file under dir, relative to dir, with
// forward-slash separators.
func walkClone(dir string) (paths []string, err error) {
	err = filepath.Walk(dir, func(p string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if info.IsDir() {
			if info.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		rel, relErr := filepath.Rel(dir, p)
		if relErr != nil {
			return relErr
		}
		paths = append(paths, filepath.ToSlash(rel))
		return nil
	})
	return paths, err
}

// readClonedFiles reads file bodies for every path that survives the
// path/extension pre-filter. A single unreadable file is logged and
// skipped, never fatal to the whole clone.
func readClonedFiles(dir string, paths []string, logger *slog.Logger) []domain.RawFile {
	var out []domain.RawFile
	for _, p := range paths {
		if !filter.PathAllowed(p) {
			continue
		}
		content, err := os.ReadFile(filepath.Join(dir, p))
		if err != nil {
			logger.Warn("fetch.clone.read_error", "path", p, "err", err)
			continue
		}
		out = append(out, domain.RawFile{Path: p, Content: content, SizeBytes: len(content)})
	}
	return out
}
