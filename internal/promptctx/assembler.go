// Package promptctx implements C7: assembling retrieved chunks into a
// numbered, citation-mapped prompt pair under a fixed character budget.
package promptctx

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/codelensai/coderag/internal/domain"
)

const maxContextChars = 12_000

const systemPromptText = `You answer questions about a codebase using only the numbered code ` +
	`context provided below. Cite every claim with its [N] marker. Include file ` +
	`paths and line numbers when referencing code. If the context is insufficient ` +
	`to answer, say so plainly. Be concise.`

// Citation is one entry of the assembled prompt's citation map.
type Citation struct {
	FilePath   string
	StartLine  int
	EndLine    int
	SymbolName string
}

// Assembled is the full C7 output.
type Assembled struct {
	SystemPrompt  string
	UserPrompt    string
	CitationMap   map[string]Citation
	TokenEstimate int
}

// Assemble groups chunks by file, sorts within each file by start line, and
// emits numbered citation blocks until maxContextChars is exceeded.
func Assemble(query string, chunks []domain.RetrievedChunk) Assembled {
	groups, order := groupByFile(chunks)

	var blocks []string
	citationMap := make(map[string]Citation)
	charCount := 0
	citationNum := 1

outer:
	for _, filePath := range order {
		group := groups[filePath]
		sort.Slice(group, func(i, j int) bool { return group[i].StartLine < group[j].StartLine })

		var fileBlocks []string
		for _, c := range group {
			header := fmt.Sprintf("[%d] lines %d-%d", citationNum, c.StartLine, c.EndLine)
			if c.SymbolName != "" {
				header = fmt.Sprintf("[%d] `%s` (lines %d-%d)", citationNum, c.SymbolName, c.StartLine, c.EndLine)
			}
			block := fmt.Sprintf("%s\n```%s\n%s\n```", header, c.Language, c.Content)

			if charCount+len(block) > maxContextChars && citationNum > 1 {
				if len(fileBlocks) > 0 {
					blocks = append(blocks, strings.Join(fileBlocks, "\n\n"))
				}
				break outer
			}

			citationMap[fmt.Sprintf("[%d]", citationNum)] = Citation{
				FilePath: c.FilePath, StartLine: c.StartLine, EndLine: c.EndLine, SymbolName: c.SymbolName,
			}
			fileBlocks = append(fileBlocks, block)
			charCount += len(block)
			citationNum++
		}
		if len(fileBlocks) > 0 {
			blocks = append(blocks, strings.Join(fileBlocks, "\n\n"))
		}
	}

	contextBlock := strings.Join(blocks, "\n\n---\n\n")
	userPrompt := fmt.Sprintf("## Codebase Context\n\n%s\n\n---\n\n## Question\n\n%s\n\n## Answer (cite sources with [N] markers)", contextBlock, query)

	tokenEstimate := int(math.Ceil(float64(len(systemPromptText)+len(userPrompt)) / 4))

	return Assembled{
		SystemPrompt:  systemPromptText,
		UserPrompt:    userPrompt,
		CitationMap:   citationMap,
		TokenEstimate: tokenEstimate,
	}
}

// groupByFile groups chunks by FilePath, preserving the insertion order of
// each file's first appearance.
func groupByFile(chunks []domain.RetrievedChunk) (map[string][]domain.RetrievedChunk, []string) {
	groups := make(map[string][]domain.RetrievedChunk)
	var order []string
	for _, c := range chunks {
		if _, ok := groups[c.FilePath]; !ok {
			order = append(order, c.FilePath)
		}
		groups[c.FilePath] = append(groups[c.FilePath], c)
	}
	return groups, order
}
