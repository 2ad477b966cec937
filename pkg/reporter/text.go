package reporter

import (
	"bufio"
	"context"
	"fmt"
	"strconv"

	"github.com/yaklabco/textanalyzer/internal/ui/pretty"
	"github.com/yaklabco/textanalyzer/pkg/runner"
)

// TextReporter formats results as styled terminal output.
type TextReporter struct {
	opts   Options
	styles *pretty.Styles
	bw     *bufio.Writer
}

// NewTextReporter creates a new text reporter.
func NewTextReporter(opts Options) *TextReporter {
	colorEnabled := pretty.IsColorEnabled(opts.Color, opts.Writer)
	return &TextReporter{
		opts:   opts,
		styles: pretty.NewStyles(colorEnabled),
		bw:     bufio.NewWriterSize(opts.Writer, bufWriterSize),
	}
}

// Report implements Reporter.
func (r *TextReporter) Report(ctx context.Context, result *runner.Result) (_ int, err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	if result == nil || len(result.Files) == 0 {
		if r.opts.ShowSummary {
			fmt.Fprintln(r.bw, r.styles.Dim.Render("No files to analyze."))
		}
		return 0, nil
	}

	for _, file := range result.Files {
		if err := ctx.Err(); err != nil {
			return failedFiles(result), err
		}
		r.reportFile(file)
	}

	if r.opts.ShowSummary {
		fmt.Fprint(r.bw, r.styles.FormatSummaryOneLine(result.Stats))
	}

	return failedFiles(result), nil
}

func (r *TextReporter) reportFile(file runner.FileOutcome) {
	path := r.opts.displayPath(file.Path)

	switch {
	case file.Error != nil:
		fmt.Fprintf(r.bw, "%s: %s\n",
			r.styles.FilePath.Render(path),
			r.styles.Error.Render(fmt.Sprintf("error: %v", file.Error)),
		)
		return

	case file.Skipped():
		fmt.Fprintf(r.bw, "%s: %s\n",
			r.styles.FilePath.Render(path),
			r.styles.Dim.Render("skipped ("+file.SkipReason+")"),
		)
		return

	case file.Result == nil:
		return
	}

	res := file.Result

	fmt.Fprintf(r.bw, "%s  %s  %s\n",
		r.styles.FormatFileHeader(path, file.Language),
		pretty.FormatResultCounts(res),
		r.styles.Dim.Render(res.Duration().String()),
	)

	if r.opts.ShowLabels {
		for _, label := range res.Labels() {
			fmt.Fprintln(r.bw, r.styles.FormatLabel(label))
		}
	}

	if r.opts.ShowSpans && file.Content != nil {
		gutter := pretty.FoldGutter(res.Blocks(), res.LineCount())
		width := len(strconv.Itoa(res.LineCount()))

		for line, spans := range res.SpanLines() {
			text := r.styles.FormatLine(file.Content.Line(line), spans)
			fmt.Fprintln(r.bw, r.styles.FormatSourceLine(line, width, gutter[line], text))
		}
		fmt.Fprintln(r.bw)
	}
}
