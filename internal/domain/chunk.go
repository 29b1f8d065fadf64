package domain

import (
	"strconv"
	"strings"
	"time"
)

// Language enumerates the chunk languages the filter and chunker recognize.
type Language string

const (
	LangTypeScript Language = "typescript"
	LangJavaScript Language = "javascript"
	LangPython     Language = "python"
	LangMarkdown   Language = "markdown"
	LangJSON       Language = "json"
	LangYAML       Language = "yaml"
	LangTOML       Language = "toml"
	LangText       Language = "text"
)

// RawFile is a fetched, unfiltered file body. Ephemeral; produced by the
// fetcher and consumed by the filter and chunker only.
type RawFile struct {
	Path      string // repo-root-relative, forward-slash separated
	Content   []byte
	SizeBytes int
}

// CodeChunk is a contiguous, line-bounded fragment of one file.
type CodeChunk struct {
	ID         string
	RepoID     string
	FilePath   string
	Language   Language
	Content    string
	StartLine  int
	EndLine    int
	SymbolName string // empty when the chunk carries no detected symbol
	ChunkIndex int
}

// ChunkID is deterministic from (repoId, filePath, startLine): the same
// triple always yields the same id, within or across runs.
func ChunkID(repoID, filePath string, startLine int) string {
	return safe(repoID) + "__" + safe(filePath) + "__L" + strconv.Itoa(startLine)
}

func safe(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

// EmbeddedChunk pairs a CodeChunk with its dense vector representation.
type EmbeddedChunk struct {
	Chunk      CodeChunk
	Embedding  []float32
	EmbeddedAt time.Time
	Model      string
}
