package analyzer

import (
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	// ErrNoStrategy is returned by NewEngine when the language has no strategy.
	ErrNoStrategy = errors.New("analyzer: language has no strategy")

	// ErrShutdown is returned by Submit and WaitFor after Shutdown.
	ErrShutdown = errors.New("analyzer: engine shut down")

	// ErrNilContent is returned by Submit when content is nil.
	ErrNilContent = errors.New("analyzer: nil content")

	// ErrAnalysisFailed wraps the fault of the newest submission's pass.
	ErrAnalysisFailed = errors.New("analyzer: analysis failed")
)

// PanicError is a recovered strategy panic.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("strategy panic: %v", e.Value)
}
