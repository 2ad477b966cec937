package analyzer

import (
	"github.com/charmbracelet/log"

	"github.com/yaklabco/textanalyzer/pkg/textmodel"
)

// defaultMaxRetired bounds how many superseded results wait for Recycle.
// Older ones are left to the garbage collector.
const defaultMaxRetired = 8

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. Defaults to log.Default().
func WithLogger(logger *log.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithMetrics records engine activity in m.
func WithMetrics(m *Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithPoolSize sets how many line containers the worker keeps for reuse.
// Zero disables pooling.
func WithPoolSize(n int) Option {
	return func(e *Engine) {
		e.poolSize = n
	}
}

// WithMaxBlocks caps the fold blocks per result; see textmodel.Builder.SetMaxBlocks.
func WithMaxBlocks(n int) Option {
	return func(e *Engine) {
		e.maxBlocks = n
	}
}

// WithMaxRetired bounds how many superseded results are kept for Recycle.
func WithMaxRetired(n int) Option {
	return func(e *Engine) {
		e.maxRetired = max(n, 0)
	}
}

func defaultPoolSize() int {
	return textmodel.DefaultPoolEntries
}
