package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/yaklabco/textanalyzer/internal/logging"
	"github.com/yaklabco/textanalyzer/pkg/config"
	"github.com/yaklabco/textanalyzer/pkg/reporter"
	"github.com/yaklabco/textanalyzer/pkg/runner"
)

type analyzeFlags struct {
	format          string
	flavor          string
	ignore          []string
	include         []string
	jobs            int
	maxBlocks       int
	showSpans       bool
	noLabels        bool
	noSummary       bool
	compact         bool
	followSymlinks  bool
	includeVendored bool
}

func newAnalyzeCommand() *cobra.Command {
	flags := &analyzeFlags{}

	cmd := &cobra.Command{
		Use:   "analyze [paths...]",
		Short: "Analyze files and report highlighting, folds and outlines",
		Long:  analyzeLongDescription,
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, args, flags)
		},
	}

	addAnalyzeFlags(cmd, flags)

	return cmd
}

const analyzeLongDescription = `Analyze files and report their highlighting spans, fold blocks and labels.

By default, analyzes every file of a known language in the current directory
and its subdirectories. Hidden and vendored paths are skipped.

Examples:
  textanalyzer analyze                     # Analyze current directory
  textanalyzer analyze docs/ main.go       # Analyze specific paths
  textanalyzer analyze --show-spans doc.md # Print the highlighted source
  textanalyzer analyze --format json       # Output as JSON
  textanalyzer analyze --format summary    # Per-language totals`

func addAnalyzeFlags(cmd *cobra.Command, flags *analyzeFlags) {
	cmd.Flags().StringVar(&flags.format, "format", string(config.FormatText), "output format: text, json, summary")
	cmd.Flags().StringVar(&flags.flavor, "flavor", string(config.FlavorCommonMark), "Markdown flavor: commonmark, gfm")
	cmd.Flags().StringSliceVar(&flags.ignore, "ignore", nil, "glob patterns to skip")
	cmd.Flags().StringSliceVar(&flags.include, "include", nil, "only analyze files matching these globs")
	cmd.Flags().IntVar(&flags.jobs, "jobs", 0, "number of files analyzed in parallel (0 = auto)")
	cmd.Flags().IntVar(&flags.maxBlocks, "max-blocks", 0, "fold blocks kept per file before suppression (0 = config)")
	cmd.Flags().BoolVar(&flags.showSpans, "show-spans", false, "print each line with its highlighting and fold gutter")
	cmd.Flags().BoolVar(&flags.noLabels, "no-labels", false, "hide the outline labels")
	cmd.Flags().BoolVar(&flags.noSummary, "no-summary", false, "hide the summary line")
	cmd.Flags().BoolVar(&flags.compact, "compact", false, "single-line JSON output")
	cmd.Flags().BoolVar(&flags.followSymlinks, "follow-symlinks", false, "descend into symlinked directories")
	cmd.Flags().BoolVar(&flags.includeVendored, "include-vendored", false, "analyze vendored files too")
}

// cliConfig collects the flags the user set explicitly.
func (f *analyzeFlags) cliConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := &config.Config{}

	if cmd.Flags().Changed("format") {
		format, err := reporter.ParseFormat(f.format)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidUsage, err)
		}
		cfg.Output.Format = format
	}
	if cmd.Flags().Changed("flavor") {
		cfg.Analysis.MarkdownFlavor = config.Flavor(f.flavor)
	}
	if cmd.Flags().Changed("ignore") {
		cfg.Ignore = f.ignore
	}
	cfg.Jobs = f.jobs
	cfg.Analysis.MaxBlocks = f.maxBlocks
	cfg.Output.ShowSpans = f.showSpans

	return cfg, nil
}

func runAnalyze(cmd *cobra.Command, args []string, flags *analyzeFlags) error {
	logger := logging.FromContext(cmd.Context())
	ctx := cmd.Context()

	cliCfg, err := flags.cliConfig(cmd)
	if err != nil {
		return err
	}

	cfg, workDir, err := loadConfig(cmd, cliCfg)
	if err != nil {
		return err
	}

	registry, err := runner.NewRegistry(cfg)
	if err != nil {
		return errors.Join(errConfigLoad, err)
	}

	analysisRunner := runner.New(registry)
	analysisRunner.Logger = logger

	runOpts := runner.Options{
		Paths:           args,
		WorkingDir:      workDir,
		IncludeGlobs:    flags.include,
		ExcludeGlobs:    cfg.Ignore,
		FollowSymlinks:  flags.followSymlinks,
		IncludeVendored: flags.includeVendored,
		Jobs:            cfg.Jobs,
		Config:          cfg,
	}

	logger.Debug("starting analysis",
		logging.FieldPaths, runOpts.Paths,
		logging.FieldWorkingDir, runOpts.WorkingDir,
		logging.FieldJobs, runOpts.Jobs,
	)

	result, err := analysisRunner.Run(ctx, runOpts)
	if err != nil {
		return fmt.Errorf("analysis run failed: %w", err)
	}

	rep, err := reporter.New(reporter.Options{
		Writer:      cmd.OutOrStdout(),
		Format:      cfg.Output.Format,
		Color:       cfg.Output.Color,
		ShowSpans:   cfg.Output.ShowSpans,
		ShowLabels:  !flags.noLabels,
		ShowSummary: !flags.noSummary,
		Compact:     flags.compact,
		WorkingDir:  workDir,
		TermWidth:   terminalWidth(cmd.OutOrStdout()),
	})
	if err != nil {
		return fmt.Errorf("create reporter: %w", err)
	}

	if _, err := rep.Report(ctx, result); err != nil {
		logger.Error("report failed", logging.FieldError, err)
		return fmt.Errorf("report results: %w", err)
	}

	if ExitCodeFromResult(result) != ExitSuccess {
		return ErrAnalysisFailed
	}

	return nil
}

// terminalWidth returns the width of w when it is a terminal, or 0.
func terminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return 0
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return width
}
