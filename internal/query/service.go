// Package query implements C10: validating a RAG query, running
// retrieve -> assemble -> generate, and shaping the response.
package query

import (
	"context"
	"math"
	"strings"

	"github.com/codelensai/coderag/internal/apperr"
	"github.com/codelensai/coderag/internal/domain"
	"github.com/codelensai/coderag/internal/port"
	"github.com/codelensai/coderag/internal/promptctx"
	"github.com/codelensai/coderag/internal/retrieval"
)

const minQueryLength = 3

const noRelevantCodeAnswer = "No relevant code was found for this query."

// ChunkView is the response-shaped projection of one retrieved chunk.
type ChunkView struct {
	FilePath   string          `json:"filePath"`
	StartLine  int             `json:"startLine"`
	EndLine    int             `json:"endLine"`
	SymbolName string          `json:"symbolName,omitempty"`
	Score      float64         `json:"score"`
	Language   domain.Language `json:"language"`
}

// Meta carries response-level counters.
type Meta struct {
	TotalCandidates int `json:"totalCandidates"`
	TokenEstimate   int `json:"tokenEstimate"`
}

// Response is the full shaped output of a query.
type Response struct {
	Answer    string                         `json:"answer"`
	Citations map[string]promptctx.Citation  `json:"citations"`
	Chunks    []ChunkView                    `json:"chunks"`
	Meta      Meta                           `json:"meta"`
}

// Service implements C10.
type Service struct {
	retriever *retrieval.Retriever
	ai        port.AIProvider
}

// New builds a Service.
func New(retriever *retrieval.Retriever, ai port.AIProvider) *Service {
	return &Service{retriever: retriever, ai: ai}
}

// Validate enforces the query contract's input rules.
func Validate(repoID, queryText string) error {
	if strings.TrimSpace(repoID) == "" {
		return apperr.New(apperr.KindInvalidInput, "repoId is required")
	}
	if len(strings.TrimSpace(queryText)) < minQueryLength {
		return apperr.New(apperr.KindInvalidInput, "query must be at least 3 characters")
	}
	return nil
}

// Query runs the full C6 -> C7 -> LLM pipeline and shapes the response.
func (s *Service) Query(ctx context.Context, repoID, queryText string, topK int) (Response, error) {
	if err := Validate(repoID, queryText); err != nil {
		return Response{}, err
	}

	result, err := s.retriever.Retrieve(ctx, queryText, repoID, topK)
	if err != nil {
		return Response{}, apperr.Wrap(apperr.KindVectorStoreError, "retrieval failed", err)
	}

	if len(result.Chunks) == 0 {
		return Response{
			Answer:    noRelevantCodeAnswer,
			Citations: map[string]promptctx.Citation{},
			Chunks:    []ChunkView{},
			Meta:      Meta{TotalCandidates: 0},
		}, nil
	}

	assembled := promptctx.Assemble(queryText, result.Chunks)

	answer, err := s.ai.Generate(ctx, assembled.SystemPrompt, assembled.UserPrompt)
	if err != nil {
		return Response{}, apperr.Wrap(apperr.KindLLMError, "generation failed", err)
	}

	views := make([]ChunkView, len(result.Chunks))
	for i, c := range result.Chunks {
		views[i] = ChunkView{
			FilePath: c.FilePath, StartLine: c.StartLine, EndLine: c.EndLine,
			SymbolName: c.SymbolName, Score: roundTo4(c.Score), Language: c.Language,
		}
	}

	return Response{
		Answer:    answer,
		Citations: assembled.CitationMap,
		Chunks:    views,
		Meta: Meta{
			TotalCandidates: result.TotalCandidates,
			TokenEstimate:   assembled.TokenEstimate,
		},
	}, nil
}

func roundTo4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
