// Package filter decides which fetched files are worth indexing.
package filter

import (
	"bytes"
	"path"
	"strings"

	"github.com/codelensai/coderag/internal/domain"
)

const (
	minSizeBytes = 10
	maxSizeBytes = 512_000
)

var dirDenylist = map[string]bool{
	"node_modules": true, "dist": true, "build": true, "out": true,
	".next": true, ".nuxt": true, ".output": true, ".cache": true,
	"__pycache__": true, ".pytest_cache": true, "vendor": true,
	"venv": true, ".venv": true, "env": true, "__pypackages__": true,
	".git": true, ".svn": true, ".hg": true, ".idea": true, ".vscode": true,
	"coverage": true, ".nyc_output": true, "htmlcov": true, "tmp": true,
	"temp": true, "logs": true, ".pnp": true,
}

var filenameDenylist = map[string]bool{
	"package-lock.json": true, "yarn.lock": true, "pnpm-lock.yaml": true,
	"poetry.lock": true, "Pipfile.lock": true, "composer.lock": true,
	".DS_Store": true, "Thumbs.db": true,
	".env": true, ".env.local": true, ".env.production": true,
	".gitignore": true, ".gitattributes": true, ".editorconfig": true,
	".prettierrc": true,
}

var extensionAllowlist = map[string]bool{
	".ts": true, ".tsx": true, ".js": true, ".jsx": true, ".mjs": true,
	".cjs": true, ".py": true, ".md": true, ".mdx": true, ".json": true,
	".yaml": true, ".yml": true, ".toml": true,
}

// Result pairs a rejected file with the stable, human-readable reason it
// was rejected.
type Result struct {
	File   domain.RawFile
	Reason string
}

// Filter is a pure function of the input file set: it has no hidden state
// and the same input always yields the same (accepted, rejected) split.
func Filter(files []domain.RawFile) (accepted []domain.RawFile, rejected []Result) {
	for _, f := range files {
		if reason := reject(f); reason != "" {
			rejected = append(rejected, Result{File: f, Reason: reason})
			continue
		}
		accepted = append(accepted, f)
	}
	return accepted, rejected
}

// PathAllowed applies the path/extension rules (1-3) only, with no size or
// content check — used by fetchers to pre-filter a remote file tree before
// spending a network call on its body.
func PathAllowed(p string) bool {
	if seg := denylistedSegment(p); seg != "" {
		return false
	}
	base := path.Base(p)
	if filenameDenylist[base] || isESLintRC(base) || isJestOrVitestConfig(base) {
		return false
	}
	ext := strings.ToLower(path.Ext(base))
	return extensionAllowlist[ext]
}

// reject returns the empty string if the file is accepted, else the first
// failing rule's reason, evaluated in the order the rules are specified.
func reject(f domain.RawFile) string {
	if seg := denylistedSegment(f.Path); seg != "" {
		return "path segment \"" + seg + "\" is denylisted"
	}
	base := path.Base(f.Path)
	if filenameDenylist[base] || isESLintRC(base) || isJestOrVitestConfig(base) {
		return "filename \"" + base + "\" is denylisted"
	}
	ext := strings.ToLower(path.Ext(base))
	if !extensionAllowlist[ext] {
		return "extension \"" + ext + "\" is not in the allowlist"
	}
	if f.SizeBytes < minSizeBytes {
		return "file is smaller than the minimum size"
	}
	if f.SizeBytes > maxSizeBytes {
		return "file exceeds the maximum size"
	}
	if bytes.IndexByte(f.Content, 0) != -1 {
		return "file content contains a NUL byte"
	}
	return ""
}

func denylistedSegment(p string) string {
	dir := path.Dir(p)
	if dir == "." {
		return ""
	}
	for _, seg := range strings.Split(dir, "/") {
		if dirDenylist[seg] || strings.HasSuffix(seg, ".egg-info") {
			return seg
		}
	}
	return ""
}

func isESLintRC(base string) bool {
	return strings.HasPrefix(base, ".eslintrc")
}

func isJestOrVitestConfig(base string) bool {
	return strings.HasPrefix(base, "jest.config.") || base == "vitest.config.ts"
}
