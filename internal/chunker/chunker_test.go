package chunker

import (
	"strconv"
	"strings"
	"testing"
)

func TestChunkIDDeterministic(t *testing.T) {
	r1 := Chunk("o/r", "a.ts", "function foo() {\n  return 1\n}\n")
	r2 := Chunk("o/r", "a.ts", "function foo() {\n  return 1\n}\n")
	if len(r1.Chunks) == 0 || len(r2.Chunks) == 0 {
		t.Skip("no chunks emitted for trivial input")
	}
	if r1.Chunks[0].ID != r2.Chunks[0].ID {
		t.Fatalf("chunk id is not deterministic: %s vs %s", r1.Chunks[0].ID, r2.Chunks[0].ID)
	}
}

func TestChunkSizeBounds(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 500; i++ {
		b.WriteString("line " + strconv.Itoa(i) + "\n")
	}
	res := Chunk("o/r", "README.md", b.String())
	for _, c := range res.Chunks {
		size := c.EndLine - c.StartLine + 1
		if size < MinChunkLines || size > MaxChunkLines {
			t.Fatalf("chunk %s has out-of-bounds size %d", c.ID, size)
		}
	}
}

func TestSymbolChunkerOnTypeScript(t *testing.T) {
	fn := "export function foo() {\n" + strings.Repeat("  console.log(1);\n", 38) + "}\n"
	cls := "export class Bar {\n" + strings.Repeat("  method() {}\n", 18) + "}\n"
	src := fn + cls
	res := Chunk("octocat/Hello-World", "src/a.ts", src)
	if res.Strategy != StrategyAST {
		t.Fatalf("expected ast strategy, got %s", res.Strategy)
	}
	if len(res.Chunks) != 2 {
		t.Fatalf("expected exactly 2 chunks, got %d", len(res.Chunks))
	}
	names := map[string]bool{}
	for _, c := range res.Chunks {
		names[c.SymbolName] = true
	}
	if !names["foo"] || !names["Bar"] {
		t.Fatalf("expected symbol names foo and Bar, got %v", names)
	}
	if res.Chunks[0].EndLine >= res.Chunks[1].StartLine {
		t.Fatalf("expected disjoint line ranges, got %+v and %+v", res.Chunks[0], res.Chunks[1])
	}
}

func TestNoSymbolsFallsThroughToSlidingWindow(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 200; i++ {
		b.WriteString("const x = " + strconv.Itoa(i) + ";\n")
	}
	res := Chunk("o/r", "src/data.ts", b.String())
	if res.Strategy != StrategySlidingWindow {
		t.Fatalf("expected sliding-window strategy, got %s", res.Strategy)
	}
	for _, c := range res.Chunks {
		if c.SymbolName != "" {
			t.Fatalf("sliding window chunks must not carry a symbol name")
		}
	}
}

func TestChunkingCoversEveryLine(t *testing.T) {
	var b strings.Builder
	for i := 1; i <= 300; i++ {
		b.WriteString("l" + strconv.Itoa(i) + "\n")
	}
	content := b.String()
	res := Chunk("o/r", "docs/notes.md", content)
	covered := map[int]bool{}
	for _, c := range res.Chunks {
		for ln := c.StartLine; ln <= c.EndLine; ln++ {
			covered[ln] = true
		}
	}
	totalLines := len(strings.Split(strings.TrimRight(content, "\n"), "\n"))
	for ln := 1; ln <= totalLines; ln++ {
		if !covered[ln] {
			t.Fatalf("line %d not covered by any chunk", ln)
		}
	}
}
