package markdown_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/textanalyzer/pkg/analyzer"
	"github.com/yaklabco/textanalyzer/pkg/strategy/markdown"
	"github.com/yaklabco/textanalyzer/pkg/textmodel"
)

const waitTimeout = 5 * time.Second

func analyze(t *testing.T, flavor, src string) *textmodel.Result {
	t.Helper()

	content := textmodel.NewContentString("doc.md", src)
	b := textmodel.NewBuilder(nil)

	err := markdown.New(flavor).Analyze(context.Background(), analyzer.Env{}, content, b, nil)
	require.NoError(t, err)

	b.Finish(content.LineCount())
	return b.Build(textmodel.ResultMeta{Generation: 1})
}

func TestNewDefaultsFlavor(t *testing.T) {
	t.Parallel()

	assert.Equal(t, markdown.FlavorCommonMark, markdown.New("bogus").Flavor())
	assert.Equal(t, markdown.FlavorGFM, markdown.New(markdown.FlavorGFM).Flavor())
}

func TestLineStyles(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		src    string
		line   int
		column int
		want   textmodel.Style
	}{
		{"atx heading marker", "# Title", 0, 0, textmodel.StyleHeading},
		{"atx heading text", "## Title", 0, 5, textmodel.StyleHeading},
		{"not a heading", "#hashtag", 0, 0, textmodel.StyleNormal},
		{"setext underline", "Title\n=====", 1, 0, textmodel.StyleHeading},
		{"bullet", "- item", 0, 0, textmodel.StyleListMarker},
		{"bullet text", "- item", 0, 3, textmodel.StyleNormal},
		{"ordered marker", "12. item", 0, 1, textmodel.StyleListMarker},
		{"ordered text", "12. item", 0, 5, textmodel.StyleNormal},
		{"thematic break", "* * *", 0, 2, textmodel.StyleRule},
		{"blockquote marker", "> quoted", 0, 0, textmodel.StyleQuote},
		{"blockquote text", "> quoted", 0, 3, textmodel.StyleNormal},
		{"html block", "<div>", 0, 1, textmodel.StyleHTML},
		{"code span", "a `code` b", 0, 4, textmodel.StyleCode},
		{"after code span", "a `code` b", 0, 9, textmodel.StyleNormal},
		{"unmatched backtick", "a ` b", 0, 4, textmodel.StyleNormal},
		{"emphasis marker", "a *b* c", 0, 2, textmodel.StyleEmphasis},
		{"emphasized text", "a *b* c", 0, 3, textmodel.StyleNormal},
		{"link bracket", "see [docs](http://x)", 0, 4, textmodel.StyleLink},
		{"link text", "see [docs](http://x)", 0, 6, textmodel.StyleNormal},
		{"link destination", "see [docs](http://x)", 0, 13, textmodel.StyleLink},
		{"image marker", "![alt](a.png)", 0, 0, textmodel.StyleLink},
		{"escape", `a \* b`, 0, 3, textmodel.StyleEscape},
		{"inline html", "a <br> b", 0, 3, textmodel.StyleHTML},
		{"fence line", "```go\nx := 1\n```", 0, 0, textmodel.StyleCode},
		{"fence info", "```go\nx := 1\n```", 0, 3, textmodel.StyleKeyword},
		{"fenced content", "```go\nx := 1\n```", 1, 2, textmodel.StyleCode},
		{"closing fence", "```go\nx := 1\n```", 2, 0, textmodel.StyleCode},
		{"after fence", "```\nx\n```\n# not code", 3, 0, textmodel.StyleHeading},
		{"fence markers inside code", "~~~\n# x\n~~~", 1, 0, textmodel.StyleCode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			res := analyze(t, markdown.FlavorCommonMark, tt.src)
			if got := res.StyleAt(tt.line, tt.column); got != tt.want {
				t.Errorf("StyleAt(%d, %d) = %s, want %s (spans %v)",
					tt.line, tt.column, got, tt.want, res.SpansAt(tt.line))
			}
		})
	}
}

func TestEveryLineHasSpans(t *testing.T) {
	t.Parallel()

	res := analyze(t, markdown.FlavorGFM, "# A\n\ntext\n\n- x\n")

	require.Equal(t, 6, res.LineCount())
	for line, spans := range res.SpanLines() {
		assert.NotEmpty(t, spans, "line %d", line)
	}
}

func TestSectionsAndOutline(t *testing.T) {
	t.Parallel()

	res := analyze(t, markdown.FlavorCommonMark, "# A\n## B\nb\n\n# C\nc\n")

	assert.Equal(t, []textmodel.BlockLine{
		{StartLine: 0, EndLine: 2, EndColumn: 1, Depth: 0},
		{StartLine: 1, EndLine: 2, EndColumn: 1, Depth: 1},
		{StartLine: 4, EndLine: 5, EndColumn: 1, Depth: 0},
	}, res.Blocks())

	assert.Equal(t, []textmodel.Label{
		{Line: 0, Kind: "heading", Text: "A", Depth: 1},
		{Line: 1, Kind: "heading", Text: "B", Depth: 2},
		{Line: 4, Kind: "heading", Text: "C", Depth: 1},
	}, res.Labels())
}

func TestSetextHeadingJoinsLines(t *testing.T) {
	t.Parallel()

	res := analyze(t, markdown.FlavorCommonMark, "Getting\nstarted\n=======\n\ntext\n")

	labels := res.Labels()
	require.Len(t, labels, 1)
	assert.Equal(t, 0, labels[0].Line)
	assert.Equal(t, 1, labels[0].Depth)
	assert.Contains(t, labels[0].Text, "Getting")
	assert.Contains(t, labels[0].Text, "started")
}

func TestContainerBlocks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		want []textmodel.BlockLine
	}{
		{
			name: "fenced code",
			src:  "```go\nx := 1\ny := 2\n```\nafter",
			want: []textmodel.BlockLine{{StartLine: 0, EndLine: 3, EndColumn: 3}},
		},
		{
			name: "list",
			src:  "- one\n- two\n- three",
			want: []textmodel.BlockLine{{StartLine: 0, EndLine: 2, EndColumn: 7}},
		},
		{
			name: "blockquote",
			src:  "> a\n> b",
			want: []textmodel.BlockLine{{StartLine: 0, EndLine: 1, EndColumn: 3}},
		},
		{
			name: "single line list is not folded",
			src:  "- one",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			res := analyze(t, markdown.FlavorCommonMark, tt.src)
			assert.Equal(t, tt.want, res.Blocks())
		})
	}
}

func TestAnalyzeStopsWhenDelegateSaysSo(t *testing.T) {
	t.Parallel()

	var restart atomic.Bool
	restart.Store(true)

	content := textmodel.NewContentString("", "# A\ntext\n")
	b := textmodel.NewBuilder(nil)

	err := markdown.New("").Analyze(context.Background(), analyzer.Env{}, content, b,
		analyzer.NewDelegate(context.Background(), &restart))
	require.NoError(t, err)

	assert.Equal(t, 0, b.LineCount())
	assert.Equal(t, 0, b.BlockCount())
}

func TestMaxBlocksSuppressesLaterSections(t *testing.T) {
	t.Parallel()

	content := textmodel.NewContentString("", "# A\na\n# B\nb\n# C\nc")
	b := textmodel.NewBuilder(nil)
	b.SetMaxBlocks(1)

	require.NoError(t, markdown.New("").Analyze(context.Background(), analyzer.Env{}, content, b, nil))
	b.Finish(content.LineCount())
	res := b.Build(textmodel.ResultMeta{})

	assert.Len(t, res.Blocks(), 1)
	assert.Equal(t, 2, res.SuppressSwitch())
}

func TestRunsInsideEngine(t *testing.T) {
	t.Parallel()

	engine, err := analyzer.NewEngine(analyzer.Language{Name: "markdown", Strategy: markdown.New(markdown.FlavorGFM)})
	require.NoError(t, err)
	defer engine.Shutdown()

	gen, err := engine.SubmitText("# Title\n\n| a | b |\n|---|---|\n| 1 | 2 |\n")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), waitTimeout)
	defer cancel()

	res, err := engine.WaitFor(ctx, gen)
	require.NoError(t, err)
	assert.Equal(t, 6, res.LineCount())
	require.Len(t, res.Labels(), 1)
	assert.Equal(t, "Title", res.Labels()[0].Text)
}
