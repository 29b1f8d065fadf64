package chunker

import (
	"strconv"
	"strings"

	"github.com/codelensai/coderag/internal/domain"
)

// symbolBoundary marks where a detected declaration begins.
type symbolBoundary struct {
	StartLine  int // 1-indexed
	SymbolName string
}

// symbolAware turns a sorted, de-duplicated symbol boundary list into
// chunks: each symbol's block runs from its start to one line before the
// next boundary (or EOF), split into MaxChunkLines sub-windows when it
// overruns, and dropped when it is shorter than MinChunkLines.
func symbolAware(repoID, filePath string, lang domain.Language, lines []string, symbols []symbolBoundary) []domain.CodeChunk {
	var chunks []domain.CodeChunk
	idx := 0
	for i, sym := range symbols {
		blockStart := sym.StartLine
		blockEnd := len(lines)
		if i+1 < len(symbols) {
			blockEnd = symbols[i+1].StartLine - 1
		}
		blockLen := blockEnd - blockStart + 1
		if blockLen < MinChunkLines {
			continue
		}
		if blockLen <= MaxChunkLines {
			chunks = append(chunks, newChunk(repoID, filePath, lang, lines, blockStart, blockEnd, sym.SymbolName, idx))
			idx++
			continue
		}
		part := 1
		step := MaxChunkLines - SlidingWindowOverlap
		for s := blockStart; s <= blockEnd; s += step {
			e := s + MaxChunkLines - 1
			if e > blockEnd {
				e = blockEnd
			}
			if e-s+1 < MinChunkLines {
				break
			}
			name := sym.SymbolName + " [part " + strconv.Itoa(part) + "]"
			chunks = append(chunks, newChunk(repoID, filePath, lang, lines, s, e, name, idx))
			idx++
			part++
			if e == blockEnd {
				break
			}
		}
	}
	return chunks
}

// slidingWindow emits fixed, overlapping windows with no symbol name.
func slidingWindow(repoID, filePath string, lang domain.Language, lines []string) []domain.CodeChunk {
	if len(lines) == 0 {
		return nil
	}
	var chunks []domain.CodeChunk
	idx := 0
	step := SlidingWindowSize - SlidingWindowOverlap
	for s := 1; s <= len(lines); s += step {
		e := s + SlidingWindowSize - 1
		if e > len(lines) {
			e = len(lines)
		}
		if e-s+1 < MinChunkLines {
			break
		}
		chunks = append(chunks, newChunk(repoID, filePath, lang, lines, s, e, "", idx))
		idx++
		if e == len(lines) {
			break
		}
	}
	return chunks
}

func newChunk(repoID, filePath string, lang domain.Language, lines []string, startLine, endLine int, symbolName string, chunkIndex int) domain.CodeChunk {
	content := strings.Join(lines[startLine-1:endLine], "\n")
	return domain.CodeChunk{
		ID:         domain.ChunkID(repoID, filePath, startLine),
		RepoID:     repoID,
		FilePath:   filePath,
		Language:   lang,
		Content:    content,
		StartLine:  startLine,
		EndLine:    endLine,
		SymbolName: symbolName,
		ChunkIndex: chunkIndex,
	}
}
