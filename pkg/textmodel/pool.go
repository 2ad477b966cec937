package textmodel

// DefaultPoolEntries is the default number of line containers kept for reuse.
const DefaultPoolEntries = 4096

// maxContainerSets bounds the number of whole-result containers (line sets and
// block lists) kept. A worker only ever needs one or two of each at a time.
const maxContainerSets = 4

// PoolStats counts pool traffic.
type PoolStats struct {
	// Acquired is the number of containers handed out.
	Acquired uint64

	// Reused is the number of handed-out containers that came from the pool.
	Reused uint64

	// Recycled is the number of containers accepted back.
	Recycled uint64
}

// Pool keeps span and block containers from finished or abandoned analysis
// passes so the next pass can reuse their backing arrays.
//
// Every container is cleared when it enters the pool, so acquired containers
// are always empty. A nil *Pool, or one created with NewPool(0), allocates
// fresh containers every time and behaves identically otherwise.
//
// Pool is not safe for concurrent use; the engine's worker is its only user.
type Pool struct {
	maxEntries int

	lineSets [][][]Span
	lines    [][]Span
	blocks   [][]BlockLine

	stats PoolStats
}

// NewPool creates a pool that keeps up to maxEntries line containers.
// A maxEntries of zero disables pooling.
func NewPool(maxEntries int) *Pool {
	if maxEntries < 0 {
		maxEntries = 0
	}
	return &Pool{maxEntries: maxEntries}
}

// AcquireLines returns an empty container for per-line span lists.
func (p *Pool) AcquireLines() [][]Span {
	if p == nil {
		return nil
	}

	p.stats.Acquired++

	if n := len(p.lineSets); n > 0 {
		set := p.lineSets[n-1]
		p.lineSets[n-1] = nil
		p.lineSets = p.lineSets[:n-1]
		p.stats.Reused++
		return set
	}

	return nil
}

// AcquireLine returns an empty span list for a single line.
func (p *Pool) AcquireLine() []Span {
	if p == nil {
		return make([]Span, 0, 1)
	}

	p.stats.Acquired++

	if n := len(p.lines); n > 0 {
		line := p.lines[n-1]
		p.lines[n-1] = nil
		p.lines = p.lines[:n-1]
		p.stats.Reused++
		return line
	}

	return make([]Span, 0, 1)
}

// AcquireBlocks returns an empty block container.
func (p *Pool) AcquireBlocks() []BlockLine {
	if p == nil {
		return nil
	}

	p.stats.Acquired++

	if n := len(p.blocks); n > 0 {
		blocks := p.blocks[n-1]
		p.blocks[n-1] = nil
		p.blocks = p.blocks[:n-1]
		p.stats.Reused++
		return blocks
	}

	return nil
}

// Recycle accepts the containers of a result nobody reads anymore. Both
// arguments may be nil. The caller must not use the containers afterwards.
func (p *Pool) Recycle(lines [][]Span, blocks []BlockLine) {
	if p == nil || p.maxEntries == 0 {
		return
	}

	for i, line := range lines {
		lines[i] = nil
		p.RecycleLine(line)
	}

	if cap(lines) > 0 && len(p.lineSets) < maxContainerSets {
		clear(lines[:cap(lines)])
		p.lineSets = append(p.lineSets, lines[:0])
		p.stats.Recycled++
	}

	if cap(blocks) > 0 && len(p.blocks) < maxContainerSets {
		clear(blocks[:cap(blocks)])
		p.blocks = append(p.blocks, blocks[:0])
		p.stats.Recycled++
	}
}

// RecycleLine accepts a single line's span list.
func (p *Pool) RecycleLine(line []Span) {
	if p == nil || cap(line) == 0 || len(p.lines) >= p.maxEntries {
		return
	}

	clear(line[:cap(line)])
	p.lines = append(p.lines, line[:0])
	p.stats.Recycled++
}

// Stats returns a copy of the pool counters.
func (p *Pool) Stats() PoolStats {
	if p == nil {
		return PoolStats{}
	}
	return p.stats
}

// Idle returns the number of line containers waiting for reuse.
func (p *Pool) Idle() int {
	if p == nil {
		return 0
	}
	return len(p.lines)
}
