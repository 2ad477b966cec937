package treesitter_test

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/textanalyzer/pkg/analyzer"
	"github.com/yaklabco/textanalyzer/pkg/strategy/treesitter"
	"github.com/yaklabco/textanalyzer/pkg/textmodel"
)

func analyze(t *testing.T, g *treesitter.Grammar, src string) *textmodel.Result {
	t.Helper()

	s, err := treesitter.New(g)
	require.NoError(t, err)

	content := textmodel.NewContentString("", src)
	b := textmodel.NewBuilder(nil)
	require.NoError(t, s.Analyze(context.Background(), analyzer.Env{}, content, b, nil))

	b.Finish(content.LineCount())
	return b.Build(textmodel.ResultMeta{Generation: 1})
}

type styleCase struct {
	line   int
	column int
	want   textmodel.Style
}

func checkStyles(t *testing.T, res *textmodel.Result, cases []styleCase) {
	t.Helper()

	for _, tc := range cases {
		if got := res.StyleAt(tc.line, tc.column); got != tc.want {
			t.Errorf("StyleAt(%d, %d) = %s, want %s", tc.line, tc.column, got, tc.want)
		}
	}
}

func TestNewRejectsNilGrammar(t *testing.T) {
	t.Parallel()

	_, err := treesitter.New(nil)
	require.ErrorIs(t, err, treesitter.ErrNilGrammar)

	_, err = treesitter.New(&treesitter.Grammar{Name: "empty"})
	require.ErrorIs(t, err, treesitter.ErrNilGrammar)
}

const goSource = "package main\n" +
	"\n" +
	"// Add sums.\n" +
	"func Add(a, b int) int {\n" +
	"\treturn a + b\n" +
	"}\n"

func TestGo(t *testing.T) {
	t.Parallel()

	res := analyze(t, treesitter.Go(), goSource)

	assert.Equal(t, 7, res.LineCount())
	checkStyles(t, res, []styleCase{
		{0, 0, textmodel.StyleKeyword},
		{0, 8, textmodel.StyleNormal},
		{2, 3, textmodel.StyleComment},
		{3, 0, textmodel.StyleKeyword},
		{3, 5, textmodel.StyleFunction},
		{3, 8, textmodel.StyleNormal},
		{3, 14, textmodel.StyleType},
		{4, 1, textmodel.StyleKeyword},
		{4, 8, textmodel.StyleNormal},
	})

	require.Len(t, res.Blocks(), 1)
	assert.Equal(t, 3, res.Blocks()[0].StartLine)
	assert.Equal(t, 23, res.Blocks()[0].StartColumn)
	assert.Equal(t, 5, res.Blocks()[0].EndLine)

	require.Len(t, res.Labels(), 1)
	assert.Equal(t, textmodel.Label{Line: 3, Column: 5, Kind: "function", Text: "Add"}, res.Labels()[0])

	info, ok := res.Extra().(treesitter.Info)
	require.True(t, ok)
	assert.Equal(t, "go", info.Grammar)
	assert.False(t, info.HasErrors)
	assert.Positive(t, info.Nodes)
}

func TestGoMultiLineToken(t *testing.T) {
	t.Parallel()

	res := analyze(t, treesitter.Go(), "var s = `a\nb`\nvar n = 1\n")

	checkStyles(t, res, []styleCase{
		{0, 8, textmodel.StyleString},
		{1, 0, textmodel.StyleString},
		{2, 0, textmodel.StyleKeyword},
		{2, 4, textmodel.StyleNormal},
		{2, 8, textmodel.StyleNumber},
	})
}

func TestPython(t *testing.T) {
	t.Parallel()

	src := "class A:\n" +
		"    def f(self):\n" +
		"        return None  # no\n"
	res := analyze(t, treesitter.Python(), src)

	checkStyles(t, res, []styleCase{
		{0, 0, textmodel.StyleKeyword},
		{0, 6, textmodel.StyleType},
		{1, 4, textmodel.StyleKeyword},
		{1, 8, textmodel.StyleFunction},
		{2, 8, textmodel.StyleKeyword},
		{2, 15, textmodel.StyleLiteral},
		{2, 21, textmodel.StyleComment},
	})

	require.Len(t, res.Blocks(), 2)
	assert.Equal(t, 0, res.Blocks()[0].StartLine)
	assert.Equal(t, 0, res.Blocks()[0].Depth)
	assert.Equal(t, 1, res.Blocks()[1].StartLine)
	assert.Equal(t, 1, res.Blocks()[1].Depth)

	require.Len(t, res.Labels(), 2)
	assert.Equal(t, "A", res.Labels()[0].Text)
	assert.Equal(t, "class", res.Labels()[0].Kind)
	assert.Equal(t, "f", res.Labels()[1].Text)
	assert.Equal(t, 1, res.Labels()[1].Depth)
}

func TestJavaScript(t *testing.T) {
	t.Parallel()

	src := "function hi(name) {\n" +
		"  return `hi ${name}`;\n" +
		"}\n" +
		"const o = {\n" +
		"  a: 1,\n" +
		"};\n"
	res := analyze(t, treesitter.JavaScript(), src)

	checkStyles(t, res, []styleCase{
		{0, 0, textmodel.StyleKeyword},
		{0, 9, textmodel.StyleFunction},
		{1, 2, textmodel.StyleKeyword},
		{1, 9, textmodel.StyleString},
		{3, 0, textmodel.StyleKeyword},
		{4, 5, textmodel.StyleNumber},
	})

	require.Len(t, res.Blocks(), 2)
	assert.Equal(t, 0, res.Blocks()[0].StartLine)
	assert.Equal(t, 3, res.Blocks()[1].StartLine)

	require.Len(t, res.Labels(), 1)
	assert.Equal(t, "hi", res.Labels()[0].Text)
}

func TestSyntaxErrorsReported(t *testing.T) {
	t.Parallel()

	res := analyze(t, treesitter.Go(), "func (\n")

	info, ok := res.Extra().(treesitter.Info)
	require.True(t, ok)
	assert.True(t, info.HasErrors)
	assert.Equal(t, 2, res.LineCount())
}

func TestStopsWhenDelegateSaysSo(t *testing.T) {
	t.Parallel()

	var restart atomic.Bool
	restart.Store(true)

	s, err := treesitter.New(treesitter.Go())
	require.NoError(t, err)

	content := textmodel.NewContentString("", goSource)
	b := textmodel.NewBuilder(nil)
	d := analyzer.NewDelegate(context.Background(), &restart)

	require.NoError(t, s.Analyze(context.Background(), analyzer.Env{}, content, b, d))
	assert.Nil(t, b.Build(textmodel.ResultMeta{}).Extra())
}

func TestGrammars(t *testing.T) {
	t.Parallel()

	grammars := treesitter.Grammars()
	for _, name := range []string{"go", "python", "javascript"} {
		g, ok := grammars[name]
		if assert.True(t, ok, name) {
			assert.Equal(t, name, g.Name)
			assert.NotNil(t, g.Language)
		}
	}
}
