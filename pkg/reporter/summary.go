package reporter

import (
	"bufio"
	"context"
	"fmt"
	"slices"
	"strconv"

	"github.com/yaklabco/textanalyzer/internal/ui/pretty"
	"github.com/yaklabco/textanalyzer/pkg/runner"
)

// languageTotals aggregates the analyzed files of one language.
type languageTotals struct {
	files, lines, spans, blocks, labels int
}

// SummaryReporter formats results as a per-language table.
type SummaryReporter struct {
	opts   Options
	styles *pretty.Styles
	bw     *bufio.Writer
}

// NewSummaryReporter creates a new summary reporter.
func NewSummaryReporter(opts Options) *SummaryReporter {
	colorEnabled := pretty.IsColorEnabled(opts.Color, opts.Writer)
	return &SummaryReporter{
		opts:   opts,
		styles: pretty.NewStyles(colorEnabled),
		bw:     bufio.NewWriterSize(opts.Writer, bufWriterSize),
	}
}

// Report implements Reporter.
func (r *SummaryReporter) Report(_ context.Context, result *runner.Result) (_ int, err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	if result == nil || result.Stats.FilesAnalyzed == 0 {
		fmt.Fprintln(r.bw, r.styles.Dim.Render("No files analyzed"))
		r.reportProblems(result)
		return failedFiles(result), nil
	}

	byLang := make(map[string]*languageTotals)
	for _, file := range result.Files {
		if file.Result == nil {
			continue
		}
		totals, ok := byLang[file.Language]
		if !ok {
			totals = &languageTotals{}
			byLang[file.Language] = totals
		}
		totals.files++
		totals.lines += file.Result.LineCount()
		totals.spans += file.Result.SpanCount()
		totals.blocks += len(file.Result.Blocks())
		totals.labels += len(file.Result.Labels())
	}

	names := make([]string, 0, len(byLang))
	for name := range byLang {
		names = append(names, name)
	}
	slices.Sort(names)

	columns := []pretty.Column{
		{Header: "LANGUAGE"},
		{Header: "FILES", Align: pretty.AlignRight},
		{Header: "LINES", Align: pretty.AlignRight},
		{Header: "SPANS", Align: pretty.AlignRight},
		{Header: "BLOCKS", Align: pretty.AlignRight},
		{Header: "LABELS", Align: pretty.AlignRight},
	}

	rows := make([][]string, 0, len(names))
	for _, name := range names {
		t := byLang[name]
		rows = append(rows, counts(name, t.files, t.lines, t.spans, t.blocks, t.labels))
	}

	stats := result.Stats
	footer := counts("total", stats.FilesAnalyzed, stats.Lines, stats.Spans, stats.Blocks, stats.Labels)

	fmt.Fprintln(r.bw, r.styles.Bold.Render("Languages Summary"))
	fmt.Fprint(r.bw, pretty.NewTableFormatter(r.styles, r.opts.TermWidth).Format(columns, rows, footer))

	r.reportProblems(result)

	if r.opts.ShowSummary {
		fmt.Fprintln(r.bw)
		fmt.Fprint(r.bw, r.styles.FormatSummaryOneLine(stats))
	}

	return failedFiles(result), nil
}

// reportProblems lists files that failed or were skipped.
func (r *SummaryReporter) reportProblems(result *runner.Result) {
	if result == nil || result.Stats.FilesErrored+result.Stats.FilesSkipped == 0 {
		return
	}

	fmt.Fprintln(r.bw)
	for _, file := range result.Files {
		path := r.opts.displayPath(file.Path)
		switch {
		case file.Error != nil:
			fmt.Fprintf(r.bw, "  %s %s: %v\n", r.styles.Failure.Render("failed "), path, file.Error)
		case file.Skipped():
			fmt.Fprintf(r.bw, "  %s %s (%s)\n", r.styles.Warning.Render("skipped"), path, file.SkipReason)
		}
	}
}

func counts(name string, values ...int) []string {
	row := make([]string, 0, len(values)+1)
	row = append(row, name)
	for _, v := range values {
		row = append(row, strconv.Itoa(v))
	}
	return row
}
