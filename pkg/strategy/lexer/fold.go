package lexer

import "github.com/yaklabco/textanalyzer/pkg/textmodel"

type opener struct {
	line   int
	column int
	indent int
	char   byte
}

// folder derives fold blocks from brackets or indentation as lines are scanned.
type folder struct {
	mode  FoldMode
	b     *textmodel.Builder
	stack []opener

	// lastText is the last line holding anything besides whitespace.
	lastText    int
	lastTextEnd int
}

func newFolder(mode FoldMode, b *textmodel.Builder) *folder {
	return &folder{mode: mode, b: b, lastText: -1}
}

func (f *folder) line(line int, text []byte, covered []bool) {
	switch f.mode {
	case FoldBrackets:
		f.brackets(line, text, covered)
	case FoldIndent:
		f.indent(line, text, covered)
	case FoldNone:
	}
}

func (f *folder) brackets(line int, text []byte, covered []bool) {
	for col, c := range text {
		if col < len(covered) && covered[col] {
			continue
		}

		switch c {
		case '(', '[', '{':
			f.stack = append(f.stack, opener{line: line, column: col, char: c})
		case ')', ']', '}':
			// Pop to the nearest matching opener; unmatched closers are ignored.
			for i := len(f.stack) - 1; i >= 0; i-- {
				if f.stack[i].char != matching(c) {
					continue
				}
				open := f.stack[i]
				f.stack = f.stack[:i]
				if line > open.line {
					f.b.AddBlock(textmodel.BlockLine{
						StartLine:   open.line,
						StartColumn: open.column,
						EndLine:     line,
						EndColumn:   col,
						Depth:       i,
					})
				}
				break
			}
		}
	}
}

func (f *folder) indent(line int, text []byte, covered []bool) {
	ind, blank := indentation(text)
	if blank {
		return
	}

	f.closeIndented(ind)

	// Last code character, skipping comments and trailing space.
	last := -1
	for col := len(text) - 1; col >= 0; col-- {
		if col < len(covered) && covered[col] {
			continue
		}
		if text[col] == ' ' || text[col] == '\t' {
			continue
		}
		last = col
		break
	}

	if last >= 0 && text[last] == ':' {
		f.stack = append(f.stack, opener{line: line, column: last, indent: ind})
	}

	f.lastText = line
	f.lastTextEnd = len(text)
}

// closeIndented ends every open block whose header is indented at least ind.
func (f *folder) closeIndented(ind int) {
	for len(f.stack) > 0 {
		top := f.stack[len(f.stack)-1]
		if top.indent < ind {
			return
		}
		f.stack = f.stack[:len(f.stack)-1]
		f.closeAt(top)
	}
}

func (f *folder) closeAt(open opener) {
	if f.lastText <= open.line {
		return
	}
	f.b.AddBlock(textmodel.BlockLine{
		StartLine:   open.line,
		StartColumn: open.column,
		EndLine:     f.lastText,
		EndColumn:   f.lastTextEnd,
		Depth:       len(f.stack),
	})
}

// finish closes blocks still open at the end of the text. Unclosed
// brackets produce nothing.
func (f *folder) finish() {
	if f.mode == FoldIndent {
		f.closeIndented(0)
	}
	f.stack = f.stack[:0]
}

func matching(c byte) byte {
	switch c {
	case ')':
		return '('
	case ']':
		return '['
	default:
		return '{'
	}
}

// indentation returns the width of leading whitespace, counting a tab as
// four columns, and whether the line is blank.
func indentation(text []byte) (int, bool) {
	width := 0
	for _, c := range text {
		switch c {
		case ' ':
			width++
		case '\t':
			width += 4
		default:
			return width, false
		}
	}
	return width, true
}
