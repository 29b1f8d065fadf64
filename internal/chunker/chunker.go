// Package chunker splits filtered source files into overlapping,
// symbol-aware chunks, falling back to a fixed sliding window when no
// symbol boundary is detected.
package chunker

import (
	"path"
	"strings"

	"github.com/codelensai/coderag/internal/domain"
)

const (
	MinChunkLines        = 3
	MaxChunkLines        = 150
	SlidingWindowSize    = 60
	SlidingWindowOverlap = 15
)

// Strategy names which boundary-detection mode produced a file's chunks.
type Strategy string

const (
	StrategyAST           Strategy = "ast"
	StrategySlidingWindow Strategy = "sliding-window"
)

// Result is one file's chunking output.
type Result struct {
	Chunks   []domain.CodeChunk
	Strategy Strategy
}

var languageByExt = map[string]domain.Language{
	".ts": domain.LangTypeScript, ".tsx": domain.LangTypeScript,
	".js": domain.LangJavaScript, ".jsx": domain.LangJavaScript,
	".mjs": domain.LangJavaScript, ".cjs": domain.LangJavaScript,
	".py":   domain.LangPython,
	".md":   domain.LangMarkdown, ".mdx": domain.LangMarkdown,
	".json": domain.LangJSON,
	".yaml": domain.LangYAML, ".yml": domain.LangYAML,
	".toml": domain.LangTOML,
}

func languageFor(filePath string) domain.Language {
	if lang, ok := languageByExt[strings.ToLower(path.Ext(filePath))]; ok {
		return lang
	}
	return domain.LangText
}

// Chunk splits one file's content into chunks.
func Chunk(repoID, filePath, content string) Result {
	lines := splitLines(content)
	lang := languageFor(filePath)
	ext := strings.ToLower(path.Ext(filePath))

	var symbols []symbolBoundary
	switch ext {
	case ".ts", ".tsx", ".js", ".jsx", ".mjs", ".cjs":
		symbols = detectTSSymbols(lines)
	case ".py":
		symbols = detectPySymbols(lines)
	}

	if len(symbols) == 0 {
		return Result{
			Chunks:   slidingWindow(repoID, filePath, lang, lines),
			Strategy: StrategySlidingWindow,
		}
	}
	return Result{
		Chunks:   symbolAware(repoID, filePath, lang, lines, symbols),
		Strategy: StrategyAST,
	}
}

func splitLines(content string) []string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	if content == "" {
		return nil
	}
	return strings.Split(content, "\n")
}
