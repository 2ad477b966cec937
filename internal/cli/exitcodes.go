package cli

import (
	"errors"

	"github.com/yaklabco/textanalyzer/internal/configloader"
	"github.com/yaklabco/textanalyzer/pkg/config"
	"github.com/yaklabco/textanalyzer/pkg/runner"
)

// Exit codes for textanalyzer.
const (
	// ExitSuccess indicates every file was analyzed or deliberately skipped.
	ExitSuccess = 0

	// ExitAnalysisFailed indicates at least one file could not be analyzed.
	ExitAnalysisFailed = 1

	// ExitInvalidUsage indicates invalid command-line usage.
	ExitInvalidUsage = 64

	// ExitConfigError indicates configuration file errors.
	ExitConfigError = 65

	// ExitInternalError indicates an internal error.
	ExitInternalError = 70
)

// ErrAnalysisFailed is returned when some files failed to analyze. The
// report has already been written, so callers only need the exit code.
var ErrAnalysisFailed = errors.New("analysis failed for some files")

// ErrInvalidUsage wraps bad flag values.
var ErrInvalidUsage = errors.New("invalid usage")

// ExitCodeFromResult determines the exit code of an analyze run.
func ExitCodeFromResult(result *runner.Result) int {
	if result != nil && result.HasErrors() {
		return ExitAnalysisFailed
	}
	return ExitSuccess
}

// ExitCodeFromError maps a command error to an exit code.
func ExitCodeFromError(err error) int {
	var validationErr *configloader.ValidationError

	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, ErrAnalysisFailed):
		return ExitAnalysisFailed
	case errors.Is(err, ErrInvalidUsage), errors.Is(err, config.ErrInvalidFormat):
		return ExitInvalidUsage
	case errors.As(err, &validationErr), errors.Is(err, errConfigLoad):
		return ExitConfigError
	default:
		return ExitInternalError
	}
}
