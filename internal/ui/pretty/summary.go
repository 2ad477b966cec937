package pretty

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/yaklabco/textanalyzer/pkg/runner"
)

const summaryDividerWidth = 40

// FormatSummaryOneLine formats run statistics as a single line.
// Example: "Analyzed 3 files (2 go, 1 markdown): 120 lines, 340 spans, 9 blocks, 4 labels".
func (s *Styles) FormatSummaryOneLine(stats runner.Stats) string {
	if stats.FilesAnalyzed == 0 && stats.FilesErrored == 0 {
		msg := s.Dim.Render("No files analyzed")
		if stats.FilesSkipped > 0 {
			msg += s.Dim.Render(fmt.Sprintf(" (%s skipped)", plural(stats.FilesSkipped, "file")))
		}
		return msg + "\n"
	}

	head := "Analyzed " + plural(stats.FilesAnalyzed, "file")
	if langs := languageBreakdown(stats.FilesByLanguage); langs != "" {
		head += " (" + langs + ")"
	}

	parts := []string{
		s.Success.Render(head) + ": " + strings.Join([]string{
			plural(stats.Lines, "line"),
			plural(stats.Spans, "span"),
			plural(stats.Blocks, "block"),
			plural(stats.Labels, "label"),
		}, ", "),
	}

	if stats.FilesSkipped > 0 {
		parts = append(parts, s.Warning.Render(fmt.Sprintf("%d skipped", stats.FilesSkipped)))
	}
	if stats.FilesErrored > 0 {
		parts = append(parts, s.Failure.Render(fmt.Sprintf("%d failed", stats.FilesErrored)))
	}
	if stats.Elapsed > 0 {
		parts = append(parts, s.Dim.Render("in "+formatDuration(stats.Elapsed)))
	}

	return strings.Join(parts, ", ") + "\n"
}

// FormatSummary formats run statistics as a summary block.
func (s *Styles) FormatSummary(stats runner.Stats) string {
	var builder strings.Builder

	row := func(label string, value string) {
		builder.WriteString(fmt.Sprintf("  %-18s %s\n", label+":", value))
	}

	builder.WriteString("\n")
	builder.WriteString(s.SummaryTitle.Render("Summary"))
	builder.WriteString("\n")
	builder.WriteString(strings.Repeat("-", summaryDividerWidth))
	builder.WriteString("\n")

	row("Files discovered", s.SummaryValue.Render(strconv.Itoa(stats.FilesDiscovered)))
	row("Files analyzed", s.SummaryValue.Render(strconv.Itoa(stats.FilesAnalyzed)))
	if stats.FilesSkipped > 0 {
		row("Files skipped", s.Warning.Render(strconv.Itoa(stats.FilesSkipped)))
	}
	if stats.FilesErrored > 0 {
		row("Files failed", s.Failure.Render(strconv.Itoa(stats.FilesErrored)))
	}

	builder.WriteString("\n")

	row("Lines", s.SummaryValue.Render(strconv.Itoa(stats.Lines)))
	row("Spans", s.SummaryValue.Render(strconv.Itoa(stats.Spans)))
	row("Fold blocks", s.SummaryValue.Render(strconv.Itoa(stats.Blocks)))
	row("Labels", s.SummaryValue.Render(strconv.Itoa(stats.Labels)))
	if stats.AnalysisTime > 0 {
		row("Analysis time", s.SummaryValue.Render(formatDuration(stats.AnalysisTime)))
	}

	builder.WriteString("\n")

	if stats.FilesErrored > 0 {
		builder.WriteString(s.Failure.Render("Analysis failed for some files"))
	} else {
		builder.WriteString(s.Success.Render("Analysis complete"))
	}
	builder.WriteString("\n")

	return builder.String()
}

// languageBreakdown formats "2 go, 1 markdown" sorted by language name.
func languageBreakdown(byLang map[string]int) string {
	names := make([]string, 0, len(byLang))
	for name, n := range byLang {
		if n > 0 {
			names = append(names, name)
		}
	}
	slices.Sort(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%d %s", byLang[name], name))
	}
	return strings.Join(parts, ", ")
}

func formatDuration(d time.Duration) string {
	switch {
	case d >= time.Second:
		return d.Round(10 * time.Millisecond).String()
	case d >= time.Millisecond:
		return d.Round(10 * time.Microsecond).String()
	default:
		return d.Round(time.Microsecond).String()
	}
}
