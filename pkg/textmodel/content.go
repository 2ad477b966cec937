// Package textmodel holds the data shared by the analysis engine and its strategies:
// - Content: an immutable, line-indexed snapshot of the text being analyzed
// - Builder: the private result under construction during one analysis pass
// - Result: the published, read-only outcome of a pass (spans, blocks, labels)
// - Pool: reusable span and block containers carried across generations
package textmodel

// Content is an immutable, line-indexed view of a text at a specific time.
// The engine only ever analyzes Content; callers holding a mutable buffer must
// take a snapshot with NewContent before submitting it.
type Content struct {
	// Path is the file path (may be empty for in-memory content).
	Path string

	text  []byte
	lines []LineInfo
}

// LineInfo holds metadata for a single line.
type LineInfo struct {
	// StartOffset is the byte index of the line start.
	StartOffset int

	// NewlineStart is the byte index where newline characters begin.
	// For lines without a trailing newline (e.g., last line), this equals EndOffset.
	NewlineStart int

	// EndOffset is the byte index just after the newline (or end of text).
	EndOffset int
}

// NewContent snapshots text. The bytes are copied, so the caller may keep
// mutating its own buffer after the call returns.
func NewContent(path string, text []byte) *Content {
	owned := make([]byte, len(text))
	copy(owned, text)

	return &Content{
		Path:  path,
		text:  owned,
		lines: BuildLines(owned),
	}
}

// NewContentString snapshots a string.
func NewContentString(path, text string) *Content {
	return NewContent(path, []byte(text))
}

// Bytes returns the full text. The returned slice must not be modified.
func (c *Content) Bytes() []byte {
	return c.text
}

// Len returns the length of the text in bytes.
func (c *Content) Len() int {
	return len(c.text)
}

// Lines returns line metadata for every line. The returned slice must not be modified.
func (c *Content) Lines() []LineInfo {
	return c.lines
}
