package markdown

import (
	"bytes"

	"github.com/yuin/goldmark/ast"

	"github.com/yaklabco/textanalyzer/pkg/textmodel"
)

// heading is an ATX or setext heading found in the document.
type heading struct {
	line  int
	level int
	text  string
}

// outline collects fold blocks and headings from a goldmark document.
type outline struct {
	content  *textmodel.Content
	src      []byte
	blocks   []textmodel.BlockLine
	headings []heading
}

func newOutline(content *textmodel.Content) *outline {
	return &outline{content: content, src: content.Bytes()}
}

// collect walks the document. Sections are emitted after the walk, once every
// heading is known.
func (o *outline) collect(doc ast.Node) {
	_ = ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if node.Type() == ast.TypeInline {
			return ast.WalkSkipChildren, nil
		}

		switch n := node.(type) {
		case *ast.Heading:
			o.addHeading(n)
			return ast.WalkSkipChildren, nil
		case *ast.FencedCodeBlock:
			o.addFencedCode(n)
			return ast.WalkSkipChildren, nil
		case *ast.Blockquote, *ast.List:
			o.addContainer(node)
		case *ast.HTMLBlock:
			o.addLinesBlock(node)
			return ast.WalkSkipChildren, nil
		}

		return ast.WalkContinue, nil
	})

	o.addSections()
}

func (o *outline) addHeading(n *ast.Heading) {
	lines := n.Lines()
	if lines.Len() == 0 {
		return
	}

	line, _ := o.content.LineAt(lines.At(0).Start)

	var text bytes.Buffer
	for i := range lines.Len() {
		if i > 0 {
			text.WriteByte(' ')
		}
		seg := lines.At(i)
		text.Write(bytes.TrimSpace(seg.Value(o.src)))
	}

	o.headings = append(o.headings, heading{line: line, level: n.Level, text: text.String()})
}

// addFencedCode folds from the opening fence to the closing fence, or to the
// end of the text for an unclosed fence.
func (o *outline) addFencedCode(n *ast.FencedCodeBlock) {
	var startLine, endLine int

	lines := n.Lines()
	switch {
	case lines.Len() > 0:
		first, _ := o.content.LineAt(lines.At(0).Start)
		last, _ := o.content.LineAt(lines.At(lines.Len() - 1).Start)
		startLine = first - 1
		endLine = min(last+1, o.content.LineCount()-1)
	case n.Info != nil:
		startLine, _ = o.content.LineAt(n.Info.Segment.Start)
		endLine = min(startLine+1, o.content.LineCount()-1)
	default:
		return
	}

	o.addBlock(startLine, endLine, depthOf(n))
}

// addContainer folds block quotes and lists over the lines of their descendants.
func (o *outline) addContainer(node ast.Node) {
	start, stop, ok := blockByteRange(node)
	if !ok {
		return
	}

	startLine, _ := o.content.LineAt(start)
	endLine, _ := o.content.LineAt(max(stop-1, start))
	o.addBlock(startLine, endLine, depthOf(node))
}

func (o *outline) addLinesBlock(node ast.Node) {
	lines := node.Lines()
	if lines.Len() == 0 {
		return
	}

	startLine, _ := o.content.LineAt(lines.At(0).Start)
	endLine, _ := o.content.LineAt(max(lines.At(lines.Len()-1).Stop-1, lines.At(0).Start))
	o.addBlock(startLine, endLine, depthOf(node))
}

// addSections folds each heading down to the line before the next heading of
// the same or a higher level, ignoring trailing blank lines.
func (o *outline) addSections() {
	lastLine := o.content.LineCount() - 1

	for i, h := range o.headings {
		end := lastLine
		for _, next := range o.headings[i+1:] {
			if next.level <= h.level {
				end = next.line - 1
				break
			}
		}

		for end > h.line && len(bytes.TrimSpace(o.content.Line(end))) == 0 {
			end--
		}

		o.addBlock(h.line, end, h.level-1)
	}
}

func (o *outline) addBlock(startLine, endLine, depth int) {
	if endLine <= startLine || startLine < 0 {
		return
	}

	o.blocks = append(o.blocks, textmodel.BlockLine{
		StartLine:   startLine,
		StartColumn: indentOf(o.content.Line(startLine)),
		EndLine:     endLine,
		EndColumn:   len(o.content.Line(endLine)),
		Depth:       depth,
	})
}

func (o *outline) labels() []textmodel.Label {
	if len(o.headings) == 0 {
		return nil
	}

	labels := make([]textmodel.Label, 0, len(o.headings))
	for _, h := range o.headings {
		labels = append(labels, textmodel.Label{
			Line:   h.line,
			Column: indentOf(o.content.Line(h.line)),
			Kind:   "heading",
			Text:   h.text,
			Depth:  h.level,
		})
	}

	return labels
}

// blockByteRange returns the byte range covered by the lines of node's block
// descendants. Container blocks carry no lines of their own.
func blockByteRange(node ast.Node) (int, int, bool) {
	start, stop, found := 0, 0, false

	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if n.Type() != ast.TypeBlock {
			return ast.WalkSkipChildren, nil
		}

		lines := n.Lines()
		for i := range lines.Len() {
			seg := lines.At(i)
			if !found || seg.Start < start {
				start = seg.Start
			}
			if !found || seg.Stop > stop {
				stop = seg.Stop
			}
			found = true
		}

		return ast.WalkContinue, nil
	})

	return start, stop, found
}

// depthOf counts the block quotes and lists enclosing node.
func depthOf(node ast.Node) int {
	depth := 0
	for p := node.Parent(); p != nil; p = p.Parent() {
		switch p.(type) {
		case *ast.Blockquote, *ast.List:
			depth++
		}
	}
	return depth
}

func indentOf(line []byte) int {
	return len(line) - len(bytes.TrimLeft(line, " \t"))
}
