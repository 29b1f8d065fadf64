package promptctx

import (
	"strings"
	"testing"

	"github.com/codelensai/coderag/internal/domain"
)

func TestAssembleGroupsByFileAndOrdersByLine(t *testing.T) {
	chunks := []domain.RetrievedChunk{
		{FilePath: "b.go", StartLine: 10, EndLine: 20, Content: "b-late", Language: domain.LangText, Score: 0.9},
		{FilePath: "a.go", StartLine: 30, EndLine: 40, Content: "a-late", Language: domain.LangText, Score: 0.8},
		{FilePath: "a.go", StartLine: 1, EndLine: 5, SymbolName: "foo", Content: "a-early", Language: domain.LangText, Score: 0.95},
	}

	out := Assemble("what does foo do?", chunks)

	idxAEarly := strings.Index(out.UserPrompt, "a-early")
	idxALate := strings.Index(out.UserPrompt, "a-late")
	idxBLate := strings.Index(out.UserPrompt, "b-late")
	if idxAEarly == -1 || idxALate == -1 || idxBLate == -1 {
		t.Fatalf("expected all three chunk bodies present, got %q", out.UserPrompt)
	}
	if idxAEarly > idxALate {
		t.Errorf("within a.go, lower start line should come first")
	}
	if idxBLate > idxAEarly {
		t.Errorf("file b.go (first retrieved) should be emitted before a.go")
	}
	if !strings.Contains(out.UserPrompt, "`foo`") {
		t.Errorf("expected symbol name header for the foo chunk")
	}
	if len(out.CitationMap) != 3 {
		t.Errorf("expected 3 citation map entries, got %d", len(out.CitationMap))
	}
}

func TestAssembleRespectsCharBudget(t *testing.T) {
	big := strings.Repeat("x", maxContextChars)
	chunks := []domain.RetrievedChunk{
		{FilePath: "a.go", StartLine: 1, EndLine: 1, Content: "small", Language: domain.LangText},
		{FilePath: "b.go", StartLine: 1, EndLine: 1, Content: big, Language: domain.LangText},
		{FilePath: "c.go", StartLine: 1, EndLine: 1, Content: "never-reached", Language: domain.LangText},
	}

	out := Assemble("q", chunks)

	if !strings.Contains(out.UserPrompt, "small") {
		t.Errorf("first chunk should always fit")
	}
	if strings.Contains(out.UserPrompt, "never-reached") {
		t.Errorf("third chunk should have been cut off by the budget")
	}
}

func TestAssembleRespectsCharBudgetWithinOneFile(t *testing.T) {
	big := strings.Repeat("x", maxContextChars)
	chunks := []domain.RetrievedChunk{
		{FilePath: "a.go", StartLine: 1, EndLine: 1, Content: "small", Language: domain.LangText},
		{FilePath: "a.go", StartLine: 2, EndLine: 2, Content: big, Language: domain.LangText},
		{FilePath: "a.go", StartLine: 3, EndLine: 3, Content: "never-reached", Language: domain.LangText},
	}

	out := Assemble("q", chunks)

	if !strings.Contains(out.UserPrompt, "small") {
		t.Errorf("first chunk should always fit even when it's the only emitted block so far")
	}
	if strings.Contains(out.UserPrompt, "never-reached") {
		t.Errorf("budget must be enforced within a single file, not just across file boundaries")
	}
	if len(out.CitationMap) != 1 {
		t.Errorf("expected only the first chunk to be cited, got %d entries", len(out.CitationMap))
	}
}

func TestAssembleSystemPromptFixed(t *testing.T) {
	out := Assemble("q", nil)
	if out.SystemPrompt == "" {
		t.Fatal("system prompt must not be empty even with no chunks")
	}
	if !strings.Contains(out.UserPrompt, "## Question") || !strings.Contains(out.UserPrompt, "q") {
		t.Errorf("user prompt missing question section")
	}
}

func TestAssembleTokenEstimateMatchesFormula(t *testing.T) {
	out := Assemble("q", nil)
	want := (len(out.SystemPrompt) + len(out.UserPrompt) + 3) / 4
	if out.TokenEstimate != want {
		t.Errorf("token estimate = %d, want ceil(/4) = %d", out.TokenEstimate, want)
	}
}
