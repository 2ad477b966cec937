package markdown

import (
	"github.com/yaklabco/textanalyzer/pkg/textmodel"
)

// highlighter styles Markdown one line at a time. The only state carried
// between lines is whether a fenced code block is open.
type highlighter struct {
	b *textmodel.Builder

	line int
	text []byte
	pos  int

	inFence   bool
	fenceChar byte
	fenceLen  int
}

func newHighlighter(b *textmodel.Builder) *highlighter {
	return &highlighter{b: b}
}

// highlightLine styles one line, text excluding its newline.
func (h *highlighter) highlightLine(line int, text []byte) {
	h.line = line
	h.text = text
	h.pos = 0

	if h.inFence {
		h.emitAt(textmodel.StyleCode, 0)
		if h.isClosingFence() {
			h.inFence = false
		}
		return
	}

	h.emitAt(textmodel.StyleNormal, 0)
	h.consumeIndentation()

	if h.pos < len(h.text) {
		switch h.text[h.pos] {
		case '#':
			if h.tryHeadingMarker() {
				return
			}
		case '>':
			h.consumeBlockquoteMarkers()
			h.highlightInline()
			return
		case '-', '+', '*':
			if h.tryListBulletOrThematicBreak() {
				return
			}
		case '_':
			if h.isThematicBreak('_') {
				h.emitAt(textmodel.StyleRule, h.pos)
				return
			}
		case '~', '`':
			if h.tryCodeFence() {
				return
			}
		case '=':
			if h.trySetextUnderline('=') {
				return
			}
		case '<':
			h.emitAt(textmodel.StyleHTML, h.pos)
			return
		}

		if isDigit(h.text[h.pos]) && h.tryOrderedListMarker() {
			h.highlightInline()
			return
		}

		if h.text[h.pos] == '-' && h.trySetextUnderline('-') {
			return
		}
	}

	h.highlightInline()
}

func (h *highlighter) consumeIndentation() {
	for h.pos < len(h.text) && (h.text[h.pos] == ' ' || h.text[h.pos] == '\t') {
		h.pos++
	}
}

// tryHeadingMarker styles an ATX heading (# through ######); the whole line
// takes the heading style.
func (h *highlighter) tryHeadingMarker() bool {
	start := h.pos
	count := 0

	for h.pos < len(h.text) && h.text[h.pos] == '#' && count < 7 {
		h.pos++
		count++
	}

	if count >= 1 && count <= 6 && (h.pos >= len(h.text) || h.text[h.pos] == ' ' || h.text[h.pos] == '\t') {
		h.emitAt(textmodel.StyleHeading, start)
		return true
	}

	h.pos = start
	return false
}

func (h *highlighter) consumeBlockquoteMarkers() {
	for h.pos < len(h.text) && h.text[h.pos] == '>' {
		h.emitAt(textmodel.StyleQuote, h.pos)
		h.pos++
		if h.pos < len(h.text) && h.text[h.pos] == ' ' {
			h.pos++
		}
	}
	h.emitAt(textmodel.StyleNormal, h.pos)
}

// tryListBulletOrThematicBreak handles -, +, * which can be list bullets or thematic breaks.
func (h *highlighter) tryListBulletOrThematicBreak() bool {
	start := h.pos
	marker := h.text[h.pos]

	if h.isThematicBreak(marker) {
		h.emitAt(textmodel.StyleRule, start)
		return true
	}

	h.pos++
	if h.pos < len(h.text) && (h.text[h.pos] == ' ' || h.text[h.pos] == '\t') {
		h.emitAt(textmodel.StyleListMarker, start)
		h.pos++
		h.emitAt(textmodel.StyleNormal, h.pos)
		h.highlightInline()
		return true
	}

	h.pos = start
	return false
}

func (h *highlighter) isThematicBreak(marker byte) bool {
	count := 0

	for _, ch := range h.text[h.pos:] {
		if ch == marker {
			count++
		} else if ch != ' ' && ch != '\t' {
			return false
		}
	}

	return count >= 3
}

// tryCodeFence opens a fenced code block (``` or ~~~).
func (h *highlighter) tryCodeFence() bool {
	start := h.pos
	fenceChar := h.text[h.pos]
	count := 0

	for h.pos < len(h.text) && h.text[h.pos] == fenceChar {
		h.pos++
		count++
	}

	if count < 3 {
		h.pos = start
		return false
	}

	h.emitAt(textmodel.StyleCode, start)

	infoStart := h.pos
	for infoStart < len(h.text) && h.text[infoStart] == ' ' {
		infoStart++
	}
	if infoStart < len(h.text) {
		h.emitAt(textmodel.StyleKeyword, infoStart)
	}

	h.inFence = true
	h.fenceChar = fenceChar
	h.fenceLen = count

	return true
}

// isClosingFence reports whether the current line closes the open fence:
// up to three spaces, at least as many fence characters, then only whitespace.
func (h *highlighter) isClosingFence() bool {
	pos := 0
	for pos < len(h.text) && h.text[pos] == ' ' && pos < 3 {
		pos++
	}

	count := 0
	for pos < len(h.text) && h.text[pos] == h.fenceChar {
		pos++
		count++
	}

	if count < h.fenceLen {
		return false
	}

	for _, ch := range h.text[pos:] {
		if ch != ' ' && ch != '\t' {
			return false
		}
	}

	return true
}

func (h *highlighter) trySetextUnderline(char byte) bool {
	start := h.pos

	for h.pos < len(h.text) && h.text[h.pos] == char {
		h.pos++
	}

	for _, ch := range h.text[h.pos:] {
		if ch != ' ' && ch != '\t' {
			h.pos = start
			return false
		}
	}

	h.emitAt(textmodel.StyleHeading, start)
	return true
}

// tryOrderedListMarker styles 1., 2), etc. followed by a space or tab.
func (h *highlighter) tryOrderedListMarker() bool {
	start := h.pos

	for h.pos < len(h.text) && isDigit(h.text[h.pos]) {
		h.pos++
	}

	if h.pos >= len(h.text) || (h.text[h.pos] != '.' && h.text[h.pos] != ')') {
		h.pos = start
		return false
	}
	h.pos++

	if h.pos >= len(h.text) || (h.text[h.pos] != ' ' && h.text[h.pos] != '\t') {
		h.pos = start
		return false
	}

	h.emitAt(textmodel.StyleListMarker, start)
	h.pos++
	h.emitAt(textmodel.StyleNormal, h.pos)

	return true
}

// highlightInline styles the rest of the line.
func (h *highlighter) highlightInline() {
	for h.pos < len(h.text) {
		switch h.text[h.pos] {
		case '\\':
			h.consumeEscapedChar()
		case '`':
			h.consumeCodeSpan()
		case '*', '_':
			h.consumeEmphasisMarker()
		case '!':
			if h.pos+1 < len(h.text) && h.text[h.pos+1] == '[' {
				h.emitAt(textmodel.StyleLink, h.pos)
				h.pos++
				h.consumeLink()
			} else {
				h.consumeText()
			}
		case '[':
			h.consumeLink()
		case '<':
			h.consumeInlineHTML()
		default:
			h.consumeText()
		}
	}
}

func (h *highlighter) consumeEscapedChar() {
	start := h.pos
	h.pos++

	if h.pos < len(h.text) && isPunctuation(h.text[h.pos]) {
		h.pos++
		h.emitAt(textmodel.StyleEscape, start)
		h.emitAt(textmodel.StyleNormal, h.pos)
		return
	}

	h.emitAt(textmodel.StyleNormal, start)
}

// consumeCodeSpan styles from an opening backtick run to the matching closing
// run. An unmatched run is plain text.
func (h *highlighter) consumeCodeSpan() {
	start := h.pos
	for h.pos < len(h.text) && h.text[h.pos] == '`' {
		h.pos++
	}
	runLen := h.pos - start

	for scan := h.pos; scan < len(h.text); {
		if h.text[scan] != '`' {
			scan++
			continue
		}
		closeStart := scan
		for scan < len(h.text) && h.text[scan] == '`' {
			scan++
		}
		if scan-closeStart == runLen {
			h.emitAt(textmodel.StyleCode, start)
			h.pos = scan
			h.emitAt(textmodel.StyleNormal, h.pos)
			return
		}
	}

	h.emitAt(textmodel.StyleNormal, start)
}

func (h *highlighter) consumeEmphasisMarker() {
	start := h.pos
	marker := h.text[h.pos]

	for h.pos < len(h.text) && h.text[h.pos] == marker {
		h.pos++
	}

	h.emitAt(textmodel.StyleEmphasis, start)
	h.emitAt(textmodel.StyleNormal, h.pos)
}

// consumeLink styles [text](destination). The text between the brackets
// keeps the inline styles; brackets and destination take the link style.
func (h *highlighter) consumeLink() {
	h.emitAt(textmodel.StyleLink, h.pos)
	h.pos++
	h.emitAt(textmodel.StyleNormal, h.pos)

	for h.pos < len(h.text) && h.text[h.pos] != ']' {
		switch h.text[h.pos] {
		case '`':
			h.consumeCodeSpan()
		case '*', '_':
			h.consumeEmphasisMarker()
		case '\\':
			h.consumeEscapedChar()
		default:
			h.pos++
		}
	}

	if h.pos >= len(h.text) {
		return
	}

	h.emitAt(textmodel.StyleLink, h.pos)
	h.pos++

	if h.pos < len(h.text) && h.text[h.pos] == '(' {
		for h.pos < len(h.text) && h.text[h.pos] != ')' {
			h.pos++
		}
		if h.pos < len(h.text) {
			h.pos++
		}
	}

	h.emitAt(textmodel.StyleNormal, h.pos)
}

func (h *highlighter) consumeInlineHTML() {
	start := h.pos
	h.pos++

	for h.pos < len(h.text) && h.text[h.pos] != '>' {
		h.pos++
	}

	if h.pos < len(h.text) {
		h.pos++
		h.emitAt(textmodel.StyleHTML, start)
		h.emitAt(textmodel.StyleNormal, h.pos)
	}
}

func (h *highlighter) consumeText() {
	h.pos++
	for h.pos < len(h.text) {
		switch h.text[h.pos] {
		case '\\', '`', '*', '_', '[', '!', '<':
			return
		}
		h.pos++
	}
}

// emitAt starts style at col unless the line already has that style there.
// Nothing is emitted at or past the end of the line.
func (h *highlighter) emitAt(style textmodel.Style, col int) {
	if col > 0 && col >= len(h.text) {
		return
	}
	h.b.AddIfNeeded(h.line, col, style)
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// isPunctuation returns true if the byte is ASCII punctuation (escapable).
func isPunctuation(b byte) bool {
	switch b {
	case '!', '"', '#', '$', '%', '&', '\'', '(', ')', '*', '+', ',', '-', '.', '/',
		':', ';', '<', '=', '>', '?', '@', '[', '\\', ']', '^', '_', '`', '{', '|', '}', '~':
		return true
	default:
		return false
	}
}
