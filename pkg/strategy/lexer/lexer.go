// Package lexer provides a rule-based analysis strategy: a single-pass line
// scanner driven by regular expressions, keyword tables and multi-line
// constructs, with bracket or indentation folding.
package lexer

import (
	"context"
	"regexp"
	"strings"

	"github.com/yaklabco/textanalyzer/pkg/analyzer"
	"github.com/yaklabco/textanalyzer/pkg/textmodel"
)

// FoldMode selects how fold blocks are derived.
type FoldMode int

// Fold modes.
const (
	// FoldBrackets folds between matching (), [] and {} on different lines.
	FoldBrackets FoldMode = iota
	// FoldIndent folds the lines indented under a line ending in ':'.
	FoldIndent
	// FoldNone emits no blocks.
	FoldNone
)

// rule styles text matching an anchored pattern.
type rule struct {
	pattern *regexp.Regexp
	style   textmodel.Style
}

// multiLine is a construct that may span lines, such as a block comment.
type multiLine struct {
	start string
	end   string
	style textmodel.Style
}

// labelRule turns a matching line into a navigation label; the first
// submatch is the label text.
type labelRule struct {
	pattern *regexp.Regexp
	kind    string
}

// Lexer implements analyzer.Strategy. Configure it with the Add* methods
// before first use; after that it is safe for concurrent use.
type Lexer struct {
	language    string
	lineComment string
	rules       []rule
	keywords    map[string]textmodel.Style
	multiLine   []multiLine
	labels      []labelRule
	fold        FoldMode
}

// New creates an empty lexer for language.
func New(language string) *Lexer {
	return &Lexer{
		language: language,
		keywords: make(map[string]textmodel.Style),
	}
}

// Language returns the language name.
func (l *Lexer) Language() string {
	return l.language
}

// WithLineComment sets the line comment marker.
func (l *Lexer) WithLineComment(marker string) *Lexer {
	l.lineComment = marker
	return l
}

// WithFold sets the fold mode.
func (l *Lexer) WithFold(mode FoldMode) *Lexer {
	l.fold = mode
	return l
}

// AddRule adds a pattern, tried in insertion order at each position.
func (l *Lexer) AddRule(pattern string, style textmodel.Style) *Lexer {
	l.rules = append(l.rules, rule{
		pattern: regexp.MustCompile(`^(?:` + pattern + `)`),
		style:   style,
	})
	return l
}

// AddKeywords assigns style to whole identifiers.
func (l *Lexer) AddKeywords(style textmodel.Style, keywords ...string) *Lexer {
	for _, kw := range keywords {
		l.keywords[kw] = style
	}
	return l
}

// AddMultiLine adds a construct delimited by start and end that may span lines.
func (l *Lexer) AddMultiLine(start, end string, style textmodel.Style) *Lexer {
	l.multiLine = append(l.multiLine, multiLine{start: start, end: end, style: style})
	return l
}

// AddLabel adds a declaration pattern whose first submatch becomes a label.
func (l *Lexer) AddLabel(pattern, kind string) *Lexer {
	l.labels = append(l.labels, labelRule{pattern: regexp.MustCompile(pattern), kind: kind})
	return l
}

// Analyze scans content line by line, stopping between lines once d says so.
func (l *Lexer) Analyze(
	_ context.Context,
	_ analyzer.Env,
	content *textmodel.Content,
	b *textmodel.Builder,
	d *analyzer.Delegate,
) error {
	s := &scanner{lexer: l, b: b}
	f := newFolder(l.fold, b)

	for line := range content.LineCount() {
		if !d.ShouldAnalyze() {
			return nil
		}

		text := content.Line(line)
		s.scanLine(line, text)
		f.line(line, text, s.covered)
		l.addLabels(b, line, text)
	}

	f.finish()

	return nil
}

func (l *Lexer) addLabels(b *textmodel.Builder, line int, text []byte) {
	for _, lr := range l.labels {
		m := lr.pattern.FindSubmatchIndex(text)
		if len(m) < 4 || m[2] < 0 {
			continue
		}
		b.AddLabel(textmodel.Label{
			Line:   line,
			Column: m[2],
			Kind:   lr.kind,
			Text:   string(text[m[2]:m[3]]),
		})
		return
	}
}

// scanner carries the multi-line state from one line to the next.
type scanner struct {
	lexer *Lexer
	b     *textmodel.Builder

	// open is the index+1 of the open multi-line construct, 0 if none.
	open int

	// covered marks columns of the current line inside strings or comments.
	covered []bool
}

func (s *scanner) scanLine(line int, text []byte) {
	l := s.lexer
	str := string(text)
	s.covered = resize(s.covered, len(str))

	pos := 0

	if s.open > 0 {
		ml := l.multiLine[s.open-1]
		s.emit(line, 0, ml.style, len(str))
		idx := strings.Index(str, ml.end)
		if idx < 0 {
			s.cover(0, len(str))
			return
		}
		pos = idx + len(ml.end)
		s.cover(0, pos)
		s.open = 0
		s.emit(line, pos, textmodel.StyleNormal, len(str))
	} else {
		s.emit(line, 0, textmodel.StyleNormal, len(str))
	}

	for pos < len(str) {
		rest := str[pos:]

		if l.lineComment != "" && strings.HasPrefix(rest, l.lineComment) {
			s.emit(line, pos, textmodel.StyleComment, len(str))
			s.cover(pos, len(str))
			return
		}

		if next, ok := s.tryMultiLine(line, str, pos); ok {
			pos = next
			continue
		}

		if next, ok := s.tryRules(line, str, pos); ok {
			pos = next
			continue
		}

		if isIdentStart(str[pos]) {
			end := pos + 1
			for end < len(str) && isIdentPart(str[end]) {
				end++
			}
			if style, ok := l.keywords[str[pos:end]]; ok {
				s.emit(line, pos, style, len(str))
				s.emit(line, end, textmodel.StyleNormal, len(str))
			}
			pos = end
			continue
		}

		pos++
	}
}

func (s *scanner) tryMultiLine(line int, str string, pos int) (int, bool) {
	for i, ml := range s.lexer.multiLine {
		if !strings.HasPrefix(str[pos:], ml.start) {
			continue
		}

		s.emit(line, pos, ml.style, len(str))
		bodyStart := pos + len(ml.start)
		idx := strings.Index(str[bodyStart:], ml.end)
		if idx < 0 {
			s.cover(pos, len(str))
			s.open = i + 1
			return len(str), true
		}

		end := bodyStart + idx + len(ml.end)
		s.cover(pos, end)
		s.emit(line, end, textmodel.StyleNormal, len(str))
		return end, true
	}

	return pos, false
}

func (s *scanner) tryRules(line int, str string, pos int) (int, bool) {
	// Rules never start in the middle of a word.
	if pos > 0 && isIdentPart(str[pos-1]) && isIdentPart(str[pos]) {
		return pos, false
	}

	for _, r := range s.lexer.rules {
		m := r.pattern.FindStringIndex(str[pos:])
		if m == nil || m[1] == 0 {
			continue
		}

		end := pos + m[1]
		s.emit(line, pos, r.style, len(str))
		s.emit(line, end, textmodel.StyleNormal, len(str))
		if r.style == textmodel.StyleString || r.style == textmodel.StyleComment {
			s.cover(pos, end)
		}
		return end, true
	}

	return pos, false
}

func (s *scanner) emit(line, col int, style textmodel.Style, lineLen int) {
	if col > 0 && col >= lineLen {
		return
	}
	s.b.AddIfNeeded(line, col, style)
}

func (s *scanner) cover(start, end int) {
	for i := max(start, 0); i < end && i < len(s.covered); i++ {
		s.covered[i] = true
	}
}

func resize(buf []bool, n int) []bool {
	if cap(buf) < n {
		return make([]bool, n)
	}
	buf = buf[:n]
	clear(buf)
	return buf
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}
