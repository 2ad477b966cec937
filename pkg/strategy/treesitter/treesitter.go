// Package treesitter provides an analysis strategy backed by tree-sitter
// grammars. Leaf tokens become spans, multi-line structural nodes become
// fold blocks and declarations become labels.
package treesitter

import (
	"context"
	"errors"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/yaklabco/textanalyzer/pkg/analyzer"
	"github.com/yaklabco/textanalyzer/pkg/textmodel"
)

// ErrNilGrammar is returned by New when no grammar is given.
var ErrNilGrammar = errors.New("treesitter: nil grammar")

// Info is attached to each result as its extra value.
type Info struct {
	Grammar   string `json:"grammar"`
	HasErrors bool   `json:"has_errors"`
	Nodes     int    `json:"nodes"`
}

// Strategy implements analyzer.Strategy for one grammar. Each call to
// Analyze uses its own parser, so a Strategy may be shared between engines.
type Strategy struct {
	grammar *Grammar
}

// New creates a strategy for grammar.
func New(grammar *Grammar) (*Strategy, error) {
	if grammar == nil || grammar.Language == nil {
		return nil, ErrNilGrammar
	}
	return &Strategy{grammar: grammar}, nil
}

// Grammar returns the grammar the strategy parses with.
func (s *Strategy) Grammar() *Grammar {
	return s.grammar
}

// Analyze parses content and walks the syntax tree in document order.
func (s *Strategy) Analyze(
	ctx context.Context,
	_ analyzer.Env,
	content *textmodel.Content,
	b *textmodel.Builder,
	d *analyzer.Delegate,
) error {
	if !d.ShouldAnalyze() {
		return nil
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(s.grammar.Language)

	tree, err := parser.ParseCtx(ctx, nil, content.Bytes())
	if err != nil {
		if !d.ShouldAnalyze() {
			return nil
		}
		return fmt.Errorf("parse %s: %w", s.grammar.Name, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	w := &walker{
		grammar: s.grammar,
		content: content,
		b:       b,
		d:       d,
	}

	if !w.walk(root, nameHint{}, 0, 0) {
		return nil
	}
	w.advance(content.LineCount() - 1)

	b.SetExtra(Info{
		Grammar:   s.grammar.Name,
		HasErrors: root.HasError(),
		Nodes:     w.nodes,
	})

	return nil
}

// walker emits spans in document order. next is the first line that has
// not been started yet.
type walker struct {
	grammar *Grammar
	content *textmodel.Content
	b       *textmodel.Builder
	d       *analyzer.Delegate

	next  int
	nodes int
}

// nameHint marks the declared name of the parent node.
type nameHint struct {
	style textmodel.Style
	ok    bool
}

// walk visits node and its children. It returns false once the delegate
// asks to stop.
func (w *walker) walk(node *sitter.Node, hint nameHint, folds, labels int) bool {
	w.nodes++
	if w.nodes%256 == 0 && !w.d.ShouldAnalyze() {
		return false
	}

	if node.IsMissing() || node.StartByte() == node.EndByte() {
		return true
	}

	typ := node.Type()

	if style, ok := w.grammar.Styles[typ]; ok && (node.IsNamed() || node.ChildCount() == 0) {
		w.token(node, style)
		return true
	}

	if hint.ok && node.ChildCount() == 0 {
		w.token(node, hint.style)
		return true
	}

	start, end := node.StartPoint(), node.EndPoint()

	if w.grammar.Folds[typ] && end.Row > start.Row {
		w.b.AddBlock(textmodel.BlockLine{
			StartLine:   int(start.Row),
			StartColumn: int(start.Column),
			EndLine:     int(end.Row),
			EndColumn:   int(end.Column),
			Depth:       folds,
		})
		folds++
	}

	var name *sitter.Node
	nameStyle, hasNameStyle := w.grammar.NameStyles[typ]
	if hasNameStyle {
		name = node.ChildByFieldName("name")
	}

	if kind, ok := w.grammar.Labels[typ]; ok {
		if label := node.ChildByFieldName("name"); label != nil {
			pos := label.StartPoint()
			w.b.AddLabel(textmodel.Label{
				Line:   int(pos.Row),
				Column: int(pos.Column),
				Kind:   kind,
				Text:   label.Content(w.content.Bytes()),
				Depth:  labels,
			})
		}
		labels++
	}

	for i := range int(node.ChildCount()) {
		child := node.Child(i)
		if child == nil {
			continue
		}

		var childHint nameHint
		if name != nil && child.StartByte() == name.StartByte() && child.EndByte() == name.EndByte() {
			childHint = nameHint{style: nameStyle, ok: true}
		}

		if !w.walk(child, childHint, folds, labels) {
			return false
		}
	}

	return true
}

// token styles the text of node and returns to normal after it.
func (w *walker) token(node *sitter.Node, style textmodel.Style) {
	start, end := node.StartPoint(), node.EndPoint()
	startLine, endLine := int(start.Row), int(end.Row)

	w.advance(startLine)
	w.emit(startLine, int(start.Column), style)

	for line := startLine + 1; line <= endLine; line++ {
		w.emit(line, 0, style)
	}
	w.next = max(w.next, endLine+1)

	w.emit(endLine, int(end.Column), textmodel.StyleNormal)
}

// advance starts every line up to and including line with the default style.
func (w *walker) advance(line int) {
	for ; w.next <= line; w.next++ {
		w.emit(w.next, 0, textmodel.StyleNormal)
	}
}

func (w *walker) emit(line, col int, style textmodel.Style) {
	if col > 0 && col >= len(w.content.Line(line)) {
		return
	}
	w.b.AddIfNeeded(line, col, style)
}
