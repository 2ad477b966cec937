package runner

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/yaklabco/textanalyzer/internal/logging"
	"github.com/yaklabco/textanalyzer/pkg/analyzer"
	"github.com/yaklabco/textanalyzer/pkg/config"
	"github.com/yaklabco/textanalyzer/pkg/fsutil"
	"github.com/yaklabco/textanalyzer/pkg/langdetect"
	"github.com/yaklabco/textanalyzer/pkg/strategy"
	"github.com/yaklabco/textanalyzer/pkg/textmodel"
)

// ErrBinary marks files whose content is not text.
var ErrBinary = errors.New("binary file")

// Skip reasons reported in FileOutcome.SkipReason.
const (
	SkipBinary   = "binary"
	SkipDisabled = "language disabled"
)

// Runner analyzes files with the strategies of a registry. Each file gets its
// own engine, so files never share a worker or a container pool.
type Runner struct {
	Registry *strategy.Registry

	// Logger defaults to the logger attached to the context, then
	// logging.Default().
	Logger *log.Logger

	// Metrics is optional.
	Metrics *analyzer.Metrics
}

// New creates a runner over registry.
func New(registry *strategy.Registry) *Runner {
	return &Runner{Registry: registry}
}

// NewRegistry builds a registry with the language overrides and Markdown
// flavor of cfg applied.
func NewRegistry(cfg *config.Config) (*strategy.Registry, error) {
	reg := strategy.NewRegistry()
	if cfg == nil {
		return reg, nil
	}

	if cfg.Analysis.MarkdownFlavor != "" {
		reg.SetMarkdownFlavor(string(cfg.Analysis.MarkdownFlavor))
	}

	names := make([]string, 0, len(cfg.Languages))
	for name := range cfg.Languages {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		lc := cfg.Languages[name]

		spec, ok := reg.Lookup(name)
		if !ok {
			spec = strategy.LanguageSpec{Name: name, Kind: strategy.KindPlain}
		}
		if lc.Strategy != "" {
			spec.Kind = lc.Strategy
		}
		if len(lc.Extensions) > 0 {
			spec.Extensions = slices.Clone(lc.Extensions)
		}
		spec.Enabled = lc.LanguageEnabled()

		if err := reg.Configure(spec); err != nil {
			return nil, fmt.Errorf("configure language %s: %w", name, err)
		}
	}

	return reg, nil
}

// EngineOptions returns the engine options cfg implies.
func (r *Runner) EngineOptions(cfg *config.Config) []analyzer.Option {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	return []analyzer.Option{
		analyzer.WithLogger(r.logger()),
		analyzer.WithMetrics(r.Metrics),
		analyzer.WithPoolSize(cfg.PoolSize()),
		analyzer.WithMaxBlocks(cfg.Analysis.MaxBlocks),
		analyzer.WithMaxRetired(cfg.Analysis.MaxRetired),
	}
}

func (r *Runner) logger() *log.Logger {
	return r.loggerFor(context.Background())
}

func (r *Runner) loggerFor(ctx context.Context) *log.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return logging.FromContext(ctx)
}

// Run discovers files under opts.Paths and analyzes them concurrently.
// Files are reported in path order whatever order they finish in.
// Per-file failures are recorded in the outcome; Run itself fails only when
// discovery fails or ctx is cancelled.
func (r *Runner) Run(ctx context.Context, opts Options) (*Result, error) {
	start := time.Now()

	if len(opts.Extensions) == 0 {
		opts.Extensions = r.Registry.Extensions()
	}

	files, err := Discover(ctx, opts)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Files: make([]FileOutcome, 0, len(files)),
		Stats: newStats(),
	}
	result.Stats.FilesDiscovered = len(files)

	logger := r.loggerFor(ctx)
	logger.Debug("discovered files", logging.FieldFiles, len(files))

	if len(files) == 0 {
		return result, nil
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	jobs = min(jobs, len(files))

	cfg := opts.effectiveConfig()
	outcomes := make([]FileOutcome, len(files))

	var group errgroup.Group
	group.SetLimit(jobs)

	for i, path := range files {
		if ctx.Err() != nil {
			break
		}
		group.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			outcomes[i] = r.AnalyzeFile(ctx, path, cfg)
			return nil
		})
	}

	_ = group.Wait() // workers record failures in their outcome

	for _, outcome := range outcomes {
		if outcome.Path != "" {
			result.accumulate(outcome)
		}
	}
	result.Stats.Elapsed = time.Since(start)

	logger.Debug("analysis complete",
		logging.FieldFilesAnalyzed, result.Stats.FilesAnalyzed,
		logging.FieldFilesErrored, result.Stats.FilesErrored,
		logging.FieldDuration, result.Stats.Elapsed,
	)

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("run cancelled: %w", err)
	}

	return result, nil
}

// AnalyzeFile reads and analyzes one file.
func (r *Runner) AnalyzeFile(ctx context.Context, path string, cfg *config.Config) FileOutcome {
	data, _, err := fsutil.ReadFile(ctx, path)
	if err != nil {
		return FileOutcome{Path: path, Error: err}
	}
	return r.AnalyzeContent(ctx, path, data, cfg)
}

// AnalyzeContent analyzes data as the content of path. The engine is shut
// down before returning; the published result stays valid.
func (r *Runner) AnalyzeContent(ctx context.Context, path string, data []byte, cfg *config.Config) FileOutcome {
	outcome := FileOutcome{Path: path}

	if langdetect.IsBinary(data) {
		outcome.SkipReason = SkipBinary
		return outcome
	}

	lang, err := r.Registry.Resolve(path, data)
	switch {
	case errors.Is(err, strategy.ErrDisabled):
		outcome.SkipReason = SkipDisabled
		return outcome
	case err != nil:
		outcome.Error = fmt.Errorf("resolve language: %w", err)
		return outcome
	}
	outcome.Language = lang.Name

	engine, err := analyzer.NewEngine(lang, r.EngineOptions(cfg)...)
	if err != nil {
		outcome.Error = err
		return outcome
	}
	defer engine.Shutdown()

	content := textmodel.NewContent(path, data)

	gen, err := engine.Submit(content)
	if err != nil {
		outcome.Error = err
		return outcome
	}

	res, err := engine.WaitFor(ctx, gen)
	if err != nil {
		outcome.Error = err
		return outcome
	}

	outcome.Content = content
	outcome.Result = res

	r.loggerFor(ctx).Debug("analyzed file",
		logging.FieldPath, path,
		logging.FieldLanguage, lang.Name,
		logging.FieldLines, res.LineCount(),
		logging.FieldSpans, res.SpanCount(),
		logging.FieldBlocks, len(res.Blocks()),
		logging.FieldDuration, res.Duration(),
	)

	return outcome
}
