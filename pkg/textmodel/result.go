package textmodel

import (
	"iter"
	"math"
	"slices"
	"time"
)

// NoSuppression is the suppress switch of a result whose fold blocks are all valid.
const NoSuppression = math.MaxInt

// Result is the published outcome of one analysis pass.
//
// A Result is never modified after the engine publishes it. Slices returned by
// its accessors alias internal storage and must be treated as read-only.
type Result struct {
	spans          [][]Span
	blocks         []BlockLine
	suppressSwitch int
	labels         []Label
	extra          any

	generation uint64
	startedAt  time.Time
	duration   time.Duration
}

// ResultMeta describes the pass that produced a result.
type ResultMeta struct {
	Generation uint64
	StartedAt  time.Time
	Duration   time.Duration
}

// NewDefaultResult returns the result of analyzing nothing: a single line
// holding the default span.
func NewDefaultResult() *Result {
	return &Result{
		spans:          [][]Span{{DefaultSpan()}},
		suppressSwitch: NoSuppression,
	}
}

// LineCount returns the number of lines with span information.
func (r *Result) LineCount() int {
	return len(r.spans)
}

// SpansAt returns the spans of a 0-based line, or nil if out of range.
func (r *Result) SpansAt(line int) []Span {
	if line < 0 || line >= len(r.spans) {
		return nil
	}
	return slices.Clip(r.spans[line])
}

// SpanLines iterates over every line and its spans in line order.
func (r *Result) SpanLines() iter.Seq2[int, []Span] {
	return func(yield func(int, []Span) bool) {
		for i, spans := range r.spans {
			if !yield(i, slices.Clip(spans)) {
				return
			}
		}
	}
}

// SpanCount returns the total number of spans over all lines.
func (r *Result) SpanCount() int {
	n := 0
	for _, spans := range r.spans {
		n += len(spans)
	}
	return n
}

// StyleAt returns the style in effect at a 0-based line and byte column.
func (r *Result) StyleAt(line, column int) Style {
	spans := r.SpansAt(line)
	style := StyleNormal
	for _, span := range spans {
		if span.Column > column {
			break
		}
		style = span.Style
	}
	return style
}

// Blocks returns fold regions in the order the strategy emitted them.
func (r *Result) Blocks() []BlockLine {
	return slices.Clip(r.blocks)
}

// SuppressSwitch returns the line after which fold blocks are not reported,
// or NoSuppression.
func (r *Result) SuppressSwitch() int {
	return r.suppressSwitch
}

// Labels returns navigation labels, if the strategy produced any.
func (r *Result) Labels() []Label {
	return slices.Clip(r.labels)
}

// Extra returns strategy-specific data, if any.
func (r *Result) Extra() any {
	return r.extra
}

// Generation returns the submission generation this result was built for.
// The seed result has generation zero.
func (r *Result) Generation() uint64 {
	return r.generation
}

// StartedAt returns when the successful pass began.
func (r *Result) StartedAt() time.Time {
	return r.startedAt
}

// Duration returns how long the successful pass took.
func (r *Result) Duration() time.Duration {
	return r.duration
}

// Release hands the containers of a result nobody can reach anymore to the
// pool. Using r afterwards is a bug.
func Release(r *Result, pool *Pool) {
	if r == nil {
		return
	}
	pool.Recycle(r.spans, r.blocks)
	r.spans = nil
	r.blocks = nil
}
