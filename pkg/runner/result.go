package runner

import (
	"time"

	"github.com/yaklabco/textanalyzer/pkg/textmodel"
)

// FileOutcome is the analysis of one file.
type FileOutcome struct {
	// Path is the absolute path that was analyzed.
	Path string

	// Language is the resolved language name; empty if resolution failed.
	Language string

	// Content is the snapshot that was analyzed. Nil when skipped or errored.
	Content *textmodel.Content

	// Result is the published analysis. Nil when skipped or errored.
	Result *textmodel.Result

	// SkipReason is set when the file was deliberately not analyzed
	// (binary content, disabled language).
	SkipReason string

	// Error is set if the file could not be analyzed.
	Error error
}

// Skipped reports whether the file was deliberately not analyzed.
func (o FileOutcome) Skipped() bool {
	return o.SkipReason != ""
}

// Stats aggregates a run.
type Stats struct {
	FilesDiscovered int
	FilesAnalyzed   int
	FilesSkipped    int
	FilesErrored    int

	Lines  int
	Spans  int
	Blocks int
	Labels int

	// FilesByLanguage counts analyzed files per language.
	FilesByLanguage map[string]int

	// Elapsed is the wall time of the run.
	Elapsed time.Duration

	// AnalysisTime sums the pass durations of all results.
	AnalysisTime time.Duration
}

// Result is the overall runner result.
type Result struct {
	// Files are ordered by path.
	Files []FileOutcome

	Stats Stats

	// Errors holds failures not tied to one file.
	Errors []error
}

// HasErrors reports whether any file failed to analyze.
func (r *Result) HasErrors() bool {
	if r == nil {
		return false
	}
	return r.Stats.FilesErrored > 0 || len(r.Errors) > 0
}

func newStats() Stats {
	return Stats{FilesByLanguage: make(map[string]int)}
}

func (r *Result) accumulate(outcome FileOutcome) {
	r.Files = append(r.Files, outcome)

	switch {
	case outcome.Error != nil:
		r.Stats.FilesErrored++
		return
	case outcome.Skipped():
		r.Stats.FilesSkipped++
		return
	case outcome.Result == nil:
		return
	}

	res := outcome.Result
	r.Stats.FilesAnalyzed++
	r.Stats.FilesByLanguage[outcome.Language]++
	r.Stats.Lines += res.LineCount()
	r.Stats.Spans += res.SpanCount()
	r.Stats.Blocks += len(res.Blocks())
	r.Stats.Labels += len(res.Labels())
	r.Stats.AnalysisTime += res.Duration()
}
