package analyzer_test

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/yaklabco/textanalyzer/pkg/analyzer"
	"github.com/yaklabco/textanalyzer/pkg/strategy/markdown"
)

func benchmarkDocument(sections int) string {
	var sb strings.Builder
	for i := range sections {
		sb.WriteString("# Section\n\nSome *emphasis* and `code` in a paragraph.\n\n")
		if i%2 == 0 {
			sb.WriteString("```go\nfunc main() {}\n```\n\n")
		}
		sb.WriteString("- item one\n- item two\n\n")
	}
	return sb.String()
}

func BenchmarkEngineSubmitWait(b *testing.B) {
	engine, err := analyzer.NewEngine(
		analyzer.Language{Name: "markdown", Strategy: markdown.New("")},
		analyzer.WithLogger(log.New(io.Discard)),
	)
	if err != nil {
		b.Fatal(err)
	}
	defer engine.Shutdown()

	text := benchmarkDocument(50)
	ctx := context.Background()

	b.ReportAllocs()
	b.ResetTimer()

	for b.Loop() {
		gen, err := engine.SubmitText(text)
		if err != nil {
			b.Fatal(err)
		}
		if _, err := engine.WaitFor(ctx, gen); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkEngineCoalescedBurst(b *testing.B) {
	engine, err := analyzer.NewEngine(
		analyzer.Language{Name: "line", Strategy: lineStrategy()},
		analyzer.WithLogger(log.New(io.Discard)),
	)
	if err != nil {
		b.Fatal(err)
	}
	defer engine.Shutdown()

	text := benchmarkDocument(20)
	ctx := context.Background()

	b.ReportAllocs()
	b.ResetTimer()

	for b.Loop() {
		var gen uint64
		for range 10 {
			gen, err = engine.SubmitText(text)
			if err != nil {
				b.Fatal(err)
			}
		}
		if _, err := engine.WaitFor(ctx, gen); err != nil {
			b.Fatal(err)
		}
	}
}
