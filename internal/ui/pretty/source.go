package pretty

import (
	"fmt"
	"strings"

	"github.com/yaklabco/textanalyzer/pkg/textmodel"
)

// Fold gutter markers.
const (
	FoldStart  = '┌'
	FoldInside = '│'
	FoldEnd    = '└'
	FoldNone   = ' '
)

// FormatLine renders one source line with its spans. Span columns past the
// end of the line are ignored.
func (s *Styles) FormatLine(line []byte, spans []textmodel.Span) string {
	if len(spans) == 0 {
		return string(line)
	}

	var builder strings.Builder

	if first := min(spans[0].Column, len(line)); first > 0 {
		builder.Write(line[:first])
	}

	for i, span := range spans {
		start := min(max(span.Column, 0), len(line))
		end := len(line)
		if i+1 < len(spans) {
			end = min(max(spans[i+1].Column, start), len(line))
		}
		if start >= end {
			continue
		}

		text := string(line[start:end])
		if st, ok := s.SyntaxStyle(span.Style); ok {
			text = st.Render(text)
		}
		builder.WriteString(text)
	}

	return builder.String()
}

// FoldGutter returns one marker per line for the given blocks. A line that
// starts a block shows FoldStart even when it also ends or lies inside another.
func FoldGutter(blocks []textmodel.BlockLine, lineCount int) []rune {
	gutter := make([]rune, lineCount)
	for i := range gutter {
		gutter[i] = FoldNone
	}

	valid := func(b textmodel.BlockLine) bool {
		return b.StartLine >= 0 && b.StartLine < b.EndLine && b.EndLine < lineCount
	}

	for _, b := range blocks {
		if !valid(b) {
			continue
		}
		for line := b.StartLine + 1; line < b.EndLine; line++ {
			gutter[line] = FoldInside
		}
	}
	for _, b := range blocks {
		if valid(b) {
			gutter[b.EndLine] = FoldEnd
		}
	}
	for _, b := range blocks {
		if valid(b) {
			gutter[b.StartLine] = FoldStart
		}
	}

	return gutter
}

// FormatSourceLine renders "  12 ┌ text" for a 0-based line.
func (s *Styles) FormatSourceLine(lineIdx, numberWidth int, marker rune, text string) string {
	return fmt.Sprintf("  %s %s %s",
		s.LineNumber.Render(fmt.Sprintf("%*d", numberWidth, lineIdx+1)),
		s.FoldMarker.Render(string(marker)),
		text,
	)
}

// FormatFileHeader formats "path (language)" for grouped output.
func (s *Styles) FormatFileHeader(path, language string) string {
	header := s.FilePath.Render(path)
	if language != "" {
		header += " " + s.Language.Render("("+language+")")
	}
	return header
}

// FormatLabel formats an outline entry, indented by depth.
func (s *Styles) FormatLabel(label textmodel.Label) string {
	indent := strings.Repeat("  ", max(label.Depth, 0))
	return fmt.Sprintf("    %s%s %s %s",
		indent,
		s.Dim.Render(label.Kind),
		s.Label.Render(label.Text),
		s.Dim.Render(fmt.Sprintf("%d:%d", label.Line+1, label.Column+1)),
	)
}

// FormatResultCounts formats "3 lines, 12 spans, 2 blocks, 1 label".
func FormatResultCounts(res *textmodel.Result) string {
	return strings.Join([]string{
		plural(res.LineCount(), "line"),
		plural(res.SpanCount(), "span"),
		plural(len(res.Blocks()), "block"),
		plural(len(res.Labels()), "label"),
	}, ", ")
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return fmt.Sprintf("%d %ss", n, word)
}
