package reporter

import (
	"bufio"
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/yaklabco/textanalyzer/pkg/runner"
	"github.com/yaklabco/textanalyzer/pkg/textmodel"
)

// JSONSchemaVersion is the version of the JSON output layout.
const JSONSchemaVersion = "1.0.0"

// JSONOutput is the top-level JSON structure.
type JSONOutput struct {
	Version string      `json:"version"`
	Files   []JSONFile  `json:"files"`
	Summary JSONSummary `json:"summary"`
}

// JSONFile represents a single file's analysis.
type JSONFile struct {
	Path     string `json:"path"`
	Language string `json:"language,omitempty"`
	Skipped  string `json:"skipped,omitempty"`
	Error    string `json:"error,omitempty"`

	Generation uint64  `json:"generation,omitempty"`
	DurationMS float64 `json:"durationMs,omitempty"`

	Lines     int `json:"lines"`
	SpanCount int `json:"spanCount"`

	// Spans is present only with ShowSpans.
	Spans  [][]textmodel.Span    `json:"spans,omitempty"`
	Blocks []textmodel.BlockLine `json:"blocks"`
	Labels []textmodel.Label     `json:"labels"`

	// SuppressSwitch is set when fold blocks were cut off after this line.
	SuppressSwitch *int `json:"suppressSwitch,omitempty"`
}

// JSONSummary contains aggregate statistics.
type JSONSummary struct {
	FilesDiscovered int            `json:"filesDiscovered"`
	FilesAnalyzed   int            `json:"filesAnalyzed"`
	FilesSkipped    int            `json:"filesSkipped"`
	FilesErrored    int            `json:"filesErrored"`
	Lines           int            `json:"lines"`
	Spans           int            `json:"spanCount"`
	Blocks          int            `json:"blocks"`
	Labels          int            `json:"labels"`
	ByLanguage      map[string]int `json:"byLanguage"`
	ElapsedMS       float64        `json:"elapsedMs"`
}

// JSONReporter formats results as JSON.
type JSONReporter struct {
	opts Options
	bw   *bufio.Writer
}

// NewJSONReporter creates a new JSON reporter.
func NewJSONReporter(opts Options) *JSONReporter {
	return &JSONReporter{
		opts: opts,
		bw:   bufio.NewWriterSize(opts.Writer, bufWriterSize),
	}
}

// Report implements Reporter.
func (r *JSONReporter) Report(_ context.Context, result *runner.Result) (_ int, err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	output := r.buildOutput(result)

	encoder := json.NewEncoder(r.bw)
	if !r.opts.Compact {
		encoder.SetIndent("", "  ")
	}

	if err := encoder.Encode(output); err != nil {
		return 0, fmt.Errorf("encode JSON: %w", err)
	}

	return output.Summary.FilesErrored, nil
}

func (r *JSONReporter) buildOutput(result *runner.Result) *JSONOutput {
	output := &JSONOutput{
		Version: JSONSchemaVersion,
		Files:   make([]JSONFile, 0),
		Summary: JSONSummary{ByLanguage: make(map[string]int)},
	}

	if result == nil {
		return output
	}

	stats := result.Stats
	output.Summary = JSONSummary{
		FilesDiscovered: stats.FilesDiscovered,
		FilesAnalyzed:   stats.FilesAnalyzed,
		FilesSkipped:    stats.FilesSkipped,
		FilesErrored:    stats.FilesErrored,
		Lines:           stats.Lines,
		Spans:           stats.Spans,
		Blocks:          stats.Blocks,
		Labels:          stats.Labels,
		ByLanguage:      make(map[string]int, len(stats.FilesByLanguage)),
		ElapsedMS:       milliseconds(stats.Elapsed),
	}
	for lang, n := range stats.FilesByLanguage {
		output.Summary.ByLanguage[lang] = n
	}

	output.Files = make([]JSONFile, 0, len(result.Files))
	for _, file := range result.Files {
		output.Files = append(output.Files, r.buildFile(file))
	}

	return output
}

func (r *JSONReporter) buildFile(file runner.FileOutcome) JSONFile {
	out := JSONFile{
		Path:     r.opts.displayPath(file.Path),
		Language: file.Language,
		Skipped:  file.SkipReason,
		Blocks:   []textmodel.BlockLine{},
		Labels:   []textmodel.Label{},
	}

	if file.Error != nil {
		out.Error = file.Error.Error()
	}

	res := file.Result
	if res == nil {
		return out
	}

	out.Generation = res.Generation()
	out.DurationMS = milliseconds(res.Duration())
	out.Lines = res.LineCount()
	out.SpanCount = res.SpanCount()

	if blocks := res.Blocks(); len(blocks) > 0 {
		out.Blocks = blocks
	}
	if labels := res.Labels(); len(labels) > 0 {
		out.Labels = labels
	}
	if sw := res.SuppressSwitch(); sw != textmodel.NoSuppression {
		out.SuppressSwitch = &sw
	}

	if r.opts.ShowSpans {
		out.Spans = make([][]textmodel.Span, 0, res.LineCount())
		for _, spans := range res.SpanLines() {
			out.Spans = append(out.Spans, spans)
		}
	}

	return out
}

func milliseconds(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
