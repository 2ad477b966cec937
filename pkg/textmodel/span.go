package textmodel

// Span is a styled run within one line. It extends from Column up to the
// column of the next span on the same line, or to the end of the line.
type Span struct {
	// Column is the 0-based byte column where the run begins.
	Column int `json:"column"`

	// Style classifies the run.
	Style Style `json:"style"`
}

// DefaultSpan is the span every line holds when nothing else styled it.
func DefaultSpan() Span {
	return Span{Column: 0, Style: StyleNormal}
}

// BlockLine describes a foldable region and its indent guide.
// Lines and columns are 0-based.
type BlockLine struct {
	StartLine   int `json:"startLine"`
	StartColumn int `json:"startColumn"`
	EndLine     int `json:"endLine"`
	EndColumn   int `json:"endColumn"`

	// Depth is the nesting depth, 0 for top-level regions.
	Depth int `json:"depth"`
}

// Lines returns the number of lines the block covers.
func (b BlockLine) Lines() int {
	return b.EndLine - b.StartLine + 1
}

// Label is a navigation entry produced by a strategy, such as a heading or a
// function declaration.
type Label struct {
	Line   int    `json:"line"`
	Column int    `json:"column"`
	Kind   string `json:"kind"`
	Text   string `json:"text"`
	Depth  int    `json:"depth,omitempty"`
}
