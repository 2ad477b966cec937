package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/yaklabco/textanalyzer/internal/logging"
	"github.com/yaklabco/textanalyzer/internal/ui/pretty"
	"github.com/yaklabco/textanalyzer/pkg/analyzer"
	"github.com/yaklabco/textanalyzer/pkg/config"
	"github.com/yaklabco/textanalyzer/pkg/fsutil"
	"github.com/yaklabco/textanalyzer/pkg/runner"
	"github.com/yaklabco/textanalyzer/pkg/strategy"
	"github.com/yaklabco/textanalyzer/pkg/textmodel"
	"github.com/yaklabco/textanalyzer/pkg/watcher"
)

const (
	shutdownTimeout   = 5 * time.Second
	readHeaderTimeout = 5 * time.Second
)

type watchFlags struct {
	debounce     time.Duration
	poll         bool
	pollInterval time.Duration
	metrics      bool
	metricsAddr  string
	ignore       []string
	labels       bool
}

func newWatchCommand() *cobra.Command {
	flags := &watchFlags{}

	cmd := &cobra.Command{
		Use:   "watch [paths...]",
		Short: "Re-analyze files as they change",
		Long: `Watch files and re-analyze them incrementally as they change.

Every file keeps its own analysis engine. A change submits the new content;
if a previous pass for the file is still running it is superseded, and only
the newest content is published. A line is printed for each published result.

Examples:
  textanalyzer watch                          # Watch current directory
  textanalyzer watch docs/ --labels           # Also print outlines
  textanalyzer watch --poll                   # Stat polling for network drives
  textanalyzer watch --metrics                # Serve Prometheus metrics`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, args, flags)
		},
	}

	cmd.Flags().DurationVar(&flags.debounce, "debounce", 0, "quiet period before a change is analyzed (0 = config)")
	cmd.Flags().BoolVar(&flags.poll, "poll", false, "poll file stats instead of using filesystem notifications")
	cmd.Flags().DurationVar(&flags.pollInterval, "poll-interval", 0, "polling period (0 = config)")
	cmd.Flags().BoolVar(&flags.metrics, "metrics", false, "serve Prometheus metrics")
	cmd.Flags().StringVar(&flags.metricsAddr, "metrics-addr", "", "metrics listen address (implies --metrics)")
	cmd.Flags().StringSliceVar(&flags.ignore, "ignore", nil, "glob patterns to skip")
	cmd.Flags().BoolVar(&flags.labels, "labels", false, "print the outline labels of each result")

	return cmd
}

func (f *watchFlags) cliConfig(cmd *cobra.Command) *config.Config {
	cfg := &config.Config{}
	cfg.Watch.Debounce = f.debounce
	cfg.Watch.Poll = f.poll
	cfg.Watch.PollInterval = f.pollInterval
	cfg.Metrics.Enabled = f.metrics || f.metricsAddr != ""
	cfg.Metrics.Addr = f.metricsAddr
	if cmd.Flags().Changed("ignore") {
		cfg.Ignore = f.ignore
	}
	return cfg
}

func runWatch(cmd *cobra.Command, args []string, flags *watchFlags) error {
	logger := logging.NewInteractive(cmd.ErrOrStderr())

	ctx, stop := signal.NotifyContext(logging.WithLogger(cmd.Context(), logger), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, workDir, err := loadConfig(cmd, flags.cliConfig(cmd))
	if err != nil {
		return err
	}

	registry, err := runner.NewRegistry(cfg)
	if err != nil {
		return errors.Join(errConfigLoad, err)
	}

	analysisRunner := runner.New(registry)
	analysisRunner.Logger = logger

	if cfg.Metrics.Enabled {
		promRegistry := prometheus.NewRegistry()
		promRegistry.MustRegister(collectors.NewGoCollector())
		analysisRunner.Metrics = analyzer.NewMetrics(promRegistry)

		srv := serveMetrics(cfg.Metrics.Addr, promRegistry, logger)
		defer shutdownServer(srv, logger)
	}

	runOpts := runner.Options{
		Paths:        args,
		WorkingDir:   workDir,
		Extensions:   registry.Extensions(),
		ExcludeGlobs: cfg.Ignore,
		Config:       cfg,
	}

	files, err := runner.Discover(ctx, runOpts)
	if err != nil {
		return fmt.Errorf("discover files: %w", err)
	}

	matcher, err := runner.NewMatcher(runOpts)
	if err != nil {
		return fmt.Errorf("create matcher: %w", err)
	}

	printer := newUpdatePrinter(cmd.OutOrStdout(), cfg.Output.Color, workDir, flags.labels)
	session := analysisRunner.NewSession(cfg, printer.ready)

	for _, file := range files {
		submitFile(ctx, session, file, logger)
	}

	watchOpts := watcher.OptionsFromConfig(cfg.Watch)
	watchOpts.Filter = matcher.Match
	watchOpts.Logger = logger

	w := watcher.New(watchOpts)
	for _, path := range watchRoots(args, workDir) {
		if err := w.Add(path); err != nil {
			return fmt.Errorf("watch: %w", err)
		}
	}

	err = w.Start(ctx, func(ev watcher.Event) {
		switch ev.Op {
		case watcher.OpChange:
			submitFile(ctx, session, ev.Path, logger)
		case watcher.OpRemove:
			session.Remove(ev.Path)
			printer.removed(ev.Path)
		}
	})
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}

	printer.started(len(files), w.Polling())

	<-w.Done()

	closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := session.Close(closeCtx); err != nil {
		return fmt.Errorf("close session: %w", err)
	}

	return nil
}

// submitFile queues path for analysis. Files that cannot be analyzed are
// logged and otherwise ignored.
func submitFile(ctx context.Context, session *runner.Session, path string, logger *log.Logger) {
	_, err := session.Update(ctx, path)
	switch {
	case err == nil:
	case errors.Is(err, runner.ErrBinary), errors.Is(err, strategy.ErrDisabled), errors.Is(err, fsutil.ErrIsDirectory):
		logger.Debug("not analyzed", logging.FieldPath, path, logging.FieldError, err)
	case errors.Is(err, os.ErrNotExist):
		session.Remove(path)
	default:
		logger.Warn("analysis failed", logging.FieldPath, path, logging.FieldError, err)
	}
}

func watchRoots(args []string, workDir string) []string {
	if len(args) == 0 {
		return []string{workDir}
	}

	roots := make([]string, 0, len(args))
	for _, arg := range args {
		if !filepath.IsAbs(arg) {
			arg = filepath.Join(workDir, arg)
		}
		roots = append(roots, filepath.Clean(arg))
	}
	return roots
}

func serveMetrics(addr string, reg *prometheus.Registry, logger *log.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		logger.Info("serving metrics", logging.FieldAddr, addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", logging.FieldAddr, addr, logging.FieldError, err)
		}
	}()

	return srv
}

func shutdownServer(srv *http.Server, logger *log.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn("metrics server shutdown", logging.FieldError, err)
	}
}

// updatePrinter writes one line per published result. Engines publish from
// their own goroutines, so writes are serialized.
type updatePrinter struct {
	mu      sync.Mutex
	out     io.Writer
	styles  *pretty.Styles
	workDir string
	labels  bool
}

func newUpdatePrinter(out io.Writer, mode config.ColorMode, workDir string, labels bool) *updatePrinter {
	return &updatePrinter{
		out:     out,
		styles:  pretty.NewStyles(pretty.IsColorEnabled(mode, out)),
		workDir: workDir,
		labels:  labels,
	}
}

func (p *updatePrinter) display(path string) string {
	if rel, err := filepath.Rel(p.workDir, path); err == nil && !filepath.IsAbs(rel) && rel[0] != '.' {
		return rel
	}
	return path
}

func (p *updatePrinter) started(files int, polling bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	mode := "notifications"
	if polling {
		mode = "polling"
	}
	fmt.Fprintf(p.out, "%s\n", p.styles.Dim.Render(
		fmt.Sprintf("Watching %d files (%s). Press Ctrl+C to stop.", files, mode)))
}

func (p *updatePrinter) ready(path string, res *textmodel.Result) {
	if res == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintf(p.out, "%s %s  %s  %s\n",
		p.styles.Dim.Render(time.Now().Format(time.TimeOnly)),
		p.styles.FilePath.Render(p.display(path)),
		pretty.FormatResultCounts(res),
		p.styles.Dim.Render(fmt.Sprintf("gen %d, %s", res.Generation(), res.Duration().Round(time.Microsecond))),
	)

	if p.labels {
		for _, label := range res.Labels() {
			fmt.Fprintln(p.out, p.styles.FormatLabel(label))
		}
	}
}

func (p *updatePrinter) removed(path string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintf(p.out, "%s %s  %s\n",
		p.styles.Dim.Render(time.Now().Format(time.TimeOnly)),
		p.styles.FilePath.Render(p.display(path)),
		p.styles.Warning.Render("removed"),
	)
}
