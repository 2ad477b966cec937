package textmodel

import "sort"

// BuildLines constructs line metadata from text.
// It handles both LF (\n) and CRLF (\r\n) line endings.
// Empty text still has one (empty) line, the same as an editor buffer.
func BuildLines(text []byte) []LineInfo {
	if len(text) == 0 {
		return []LineInfo{{}}
	}

	var lines []LineInfo
	lineStart := 0

	for idx, char := range text {
		if char == '\n' {
			newlineStart := idx
			if idx > 0 && text[idx-1] == '\r' {
				newlineStart = idx - 1
			}

			lines = append(lines, LineInfo{
				StartOffset:  lineStart,
				NewlineStart: newlineStart,
				EndOffset:    idx + 1,
			})
			lineStart = idx + 1
		}
	}

	// The last line may not have a trailing newline.
	lines = append(lines, LineInfo{
		StartOffset:  lineStart,
		NewlineStart: len(text),
		EndOffset:    len(text),
	})

	return lines
}

// LineCount returns the number of lines. It is never less than one.
func (c *Content) LineCount() int {
	return len(c.lines)
}

// Line returns the text of a 0-based line, excluding the newline.
// Returns nil if the line is out of range.
func (c *Content) Line(line int) []byte {
	if line < 0 || line >= len(c.lines) {
		return nil
	}

	info := c.lines[line]

	return c.text[info.StartOffset:info.NewlineStart]
}

// LineAt converts a byte offset to a 0-based line and column.
// Column counts bytes, not runes. Offsets past the end map to the end of the
// last line. Returns (-1, -1) for negative offsets.
func (c *Content) LineAt(offset int) (int, int) {
	if offset < 0 {
		return -1, -1
	}

	if offset >= len(c.text) {
		last := len(c.lines) - 1
		return last, c.lines[last].NewlineStart - c.lines[last].StartOffset
	}

	lineIdx := sort.Search(len(c.lines), func(i int) bool {
		return c.lines[i].EndOffset > offset
	})

	if lineIdx >= len(c.lines) {
		lineIdx = len(c.lines) - 1
	}

	return lineIdx, offset - c.lines[lineIdx].StartOffset
}

// Offset converts a 0-based line and column to a byte offset.
// Returns (offset, true) on success, or (0, false) if out of range.
func (c *Content) Offset(line, col int) (int, bool) {
	if line < 0 || line >= len(c.lines) || col < 0 {
		return 0, false
	}

	info := c.lines[line]
	offset := info.StartOffset + col

	// Allow column to point to end of line (for cursor positioning).
	if offset > info.NewlineStart {
		return 0, false
	}

	return offset, true
}
