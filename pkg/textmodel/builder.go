package textmodel

import "time"

// Builder is the private, unpublished result of an analysis pass. Strategies
// append spans line by line, emit fold blocks and attach labels; the engine
// turns it into a Result once the pass completes without being superseded.
//
// Lines must be filled in order. Spans for a line before the current last
// line, or spans that move backwards within a line, are dropped.
type Builder struct {
	pool *Pool

	spans          [][]Span
	last           Span
	hasLast        bool
	blocks         []BlockLine
	suppressSwitch int
	maxBlocks      int
	labels         []Label
	extra          any

	dropped int
}

// NewBuilder creates an empty builder drawing containers from pool, which may be nil.
func NewBuilder(pool *Pool) *Builder {
	return &Builder{
		pool:           pool,
		suppressSwitch: NoSuppression,
	}
}

// SetMaxBlocks caps the number of fold blocks. When a block beyond the cap is
// added, the suppress switch is set to its start line. Zero means no cap.
func (b *Builder) SetMaxBlocks(n int) {
	b.maxBlocks = max(n, 0)
}

// LineCount returns the number of lines started so far.
func (b *Builder) LineCount() int {
	return len(b.spans)
}

// Add appends span to a 0-based line. Lines skipped since the previous call
// are filled with the style of the last span, so multi-line constructs such
// as block comments carry over.
func (b *Builder) Add(line int, span Span) {
	if line < 0 || span.Column < 0 {
		b.dropped++
		return
	}

	lastLine := len(b.spans) - 1

	switch {
	case line == lastLine:
		cur := b.spans[line]
		if n := len(cur); n > 0 && cur[n-1].Column > span.Column {
			b.dropped++
			return
		}
		if n := len(cur); n > 0 && cur[n-1].Column == span.Column {
			cur[n-1] = span
		} else {
			b.spans[line] = append(cur, span)
		}

	case line > lastLine:
		b.extendTo(line - 1)
		lineSpans := b.pool.AcquireLine()
		switch carry := b.carry(); {
		case span.Column == 0:
		case carry == span.Style:
			span.Column = 0
		default:
			lineSpans = append(lineSpans, Span{Column: 0, Style: carry})
		}
		b.appendLine(append(lineSpans, span))

	default:
		b.dropped++
		return
	}

	b.last = span
	b.hasLast = true
}

// AddIfNeeded adds a span only when its style differs from the last span added.
func (b *Builder) AddIfNeeded(line, column int, style Style) {
	if b.hasLast && b.last.Style == style && line == len(b.spans)-1 {
		return
	}
	b.Add(line, Span{Column: column, Style: style})
}

// Determine makes sure lines up to and including line exist. New lines carry
// the style of the last span.
func (b *Builder) Determine(line int) {
	b.extendTo(line)
}

// AddNormalIfNull adds a single default line when nothing was added at all.
func (b *Builder) AddNormalIfNull() {
	if len(b.spans) == 0 {
		line := b.pool.AcquireLine()
		b.appendLine(append(line, DefaultSpan()))
	}
}

// AddBlock records a fold region. Blocks starting after the suppress switch
// are dropped, as are blocks past the cap set by SetMaxBlocks.
func (b *Builder) AddBlock(block BlockLine) {
	if block.StartLine > b.suppressSwitch {
		return
	}

	if b.maxBlocks > 0 && len(b.blocks) >= b.maxBlocks {
		b.SetSuppressSwitch(block.StartLine)
		return
	}

	if b.blocks == nil {
		b.blocks = b.pool.AcquireBlocks()
	}
	b.blocks = append(b.blocks, block)
}

// BlockCount returns the number of blocks recorded so far.
func (b *Builder) BlockCount() int {
	return len(b.blocks)
}

// SetSuppressSwitch sets the line after which fold blocks are not reported.
// The switch only ever moves towards the start of the text.
func (b *Builder) SetSuppressSwitch(line int) {
	b.suppressSwitch = min(b.suppressSwitch, line)
}

// SuppressSwitch returns the current suppress switch.
func (b *Builder) SuppressSwitch() int {
	return b.suppressSwitch
}

// SetLabels replaces the navigation labels.
func (b *Builder) SetLabels(labels []Label) {
	b.labels = labels
}

// AddLabel appends a navigation label.
func (b *Builder) AddLabel(label Label) {
	b.labels = append(b.labels, label)
}

// SetExtra attaches strategy-specific data.
func (b *Builder) SetExtra(extra any) {
	b.extra = extra
}

// Dropped returns the number of spans rejected for being out of order.
func (b *Builder) Dropped() int {
	return b.dropped
}

// Reset discards everything added so far and returns the containers to the
// pool, leaving the builder ready for a new pass.
func (b *Builder) Reset() {
	b.pool.Recycle(b.spans, b.blocks)
	b.spans = nil
	b.blocks = nil
	b.last = Span{}
	b.hasLast = false
	b.suppressSwitch = NoSuppression
	b.labels = nil
	b.extra = nil
	b.dropped = 0
}

// Finish shapes the builder to exactly lineCount lines: missing lines get the
// carried style, surplus lines are recycled.
func (b *Builder) Finish(lineCount int) {
	lineCount = max(lineCount, 1)

	if len(b.spans) > lineCount {
		surplus := b.spans[lineCount:]
		for i, line := range surplus {
			b.pool.RecycleLine(line)
			surplus[i] = nil
		}
		b.spans = b.spans[:lineCount]
	}

	b.AddNormalIfNull()
	b.extendTo(lineCount - 1)
}

// Build moves the builder's contents into a Result. The builder is empty
// afterwards and may be reused.
func (b *Builder) Build(meta ResultMeta) *Result {
	res := &Result{
		spans:          b.spans,
		blocks:         b.blocks,
		suppressSwitch: b.suppressSwitch,
		labels:         b.labels,
		extra:          b.extra,
		generation:     meta.Generation,
		startedAt:      meta.StartedAt,
		duration:       meta.Duration,
	}

	if res.startedAt.IsZero() {
		res.startedAt = time.Now()
	}

	b.spans = nil
	b.blocks = nil
	b.labels = nil
	b.extra = nil
	b.last = Span{}
	b.hasLast = false
	b.suppressSwitch = NoSuppression
	b.dropped = 0

	return res
}

func (b *Builder) carry() Style {
	if b.hasLast {
		return b.last.Style
	}
	return StyleNormal
}

func (b *Builder) extendTo(line int) {
	for len(b.spans) <= line {
		lineSpans := b.pool.AcquireLine()
		b.appendLine(append(lineSpans, Span{Column: 0, Style: b.carry()}))
	}
}

func (b *Builder) appendLine(line []Span) {
	if b.spans == nil {
		b.spans = b.pool.AcquireLines()
	}
	b.spans = append(b.spans, line)
}
