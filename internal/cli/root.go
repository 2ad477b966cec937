// Package cli provides the Cobra command structure for textanalyzer.
package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/yaklabco/textanalyzer/internal/logging"
	"github.com/yaklabco/textanalyzer/pkg/config"
)

// BuildInfo holds build-time version information.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// NewRootCommand creates the root textanalyzer command with all subcommands.
func NewRootCommand(info BuildInfo) *cobra.Command {
	var debug bool
	var color string

	rootCmd := &cobra.Command{
		Use:   "textanalyzer",
		Short: "Incremental syntax analysis for source and Markdown files",
		Long: `textanalyzer highlights, folds and outlines source files.

Each file is analyzed by a background engine that keeps the last published
result readable while a new pass runs, so edits never block readers. The
analyze command reports on a set of files once; the watch command keeps
engines alive and re-analyzes files as they change.`,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			if debug {
				logging.SetLevel("debug")
			}
			cmd.SetContext(logging.WithLogger(cmd.Context(), logging.Default()))
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().String("config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&color, "color", string(config.ColorAuto),
		"colorize output: auto, always, never")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable colored output (same as --color never)")

	rootCmd.AddCommand(newAnalyzeCommand())
	rootCmd.AddCommand(newWatchCommand())
	rootCmd.AddCommand(newLanguagesCommand())
	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newVersionCommand(info))

	helpFormatter := NewHelpFormatter(config.ColorMode(color), os.Stdout)
	helpFormatter.ApplyToCommand(rootCmd)

	return rootCmd
}
