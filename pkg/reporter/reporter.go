// Package reporter writes analysis results as styled text, JSON or summary
// tables.
package reporter

import (
	"cmp"
	"context"
	"fmt"

	"github.com/yaklabco/textanalyzer/pkg/runner"
)

// Reporter writes a run's results. Report returns the number of files that
// failed analysis alongside any write error.
type Reporter interface {
	Report(ctx context.Context, result *runner.Result) (int, error)
}

//nolint:gochecknoglobals // read-only constructor table
var constructors = map[Format]func(Options) Reporter{
	FormatText:    func(o Options) Reporter { return NewTextReporter(o) },
	FormatJSON:    func(o Options) Reporter { return NewJSONReporter(o) },
	FormatSummary: func(o Options) Reporter { return NewSummaryReporter(o) },
}

// New returns the reporter for opts.Format; empty means text. A nil writer
// means stdout.
func New(opts Options) (Reporter, error) {
	if opts.Writer == nil {
		opts.Writer = DefaultOptions().Writer
	}

	newReporter, ok := constructors[cmp.Or(opts.Format, FormatText)]
	if !ok {
		return nil, fmt.Errorf("unsupported format: %s", opts.Format)
	}
	return newReporter(opts), nil
}

func failedFiles(result *runner.Result) int {
	if result == nil {
		return 0
	}
	return result.Stats.FilesErrored
}
