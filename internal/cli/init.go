package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/yaklabco/textanalyzer/internal/configloader"
	"github.com/yaklabco/textanalyzer/internal/logging"
	"github.com/yaklabco/textanalyzer/pkg/config"
	"github.com/yaklabco/textanalyzer/pkg/strategy"
)

// initFlags holds the flags for the init command.
type initFlags struct {
	force  bool
	full   bool
	output string
}

func newInitCommand() *cobra.Command {
	flags := &initFlags{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new textanalyzer configuration file",
		Long: `Create a new .textanalyzer.yml configuration file in the current directory.

The minimal template documents the common settings as comments. The full
template writes every setting with its default, including one entry per
built-in language.

Examples:
  textanalyzer init                       Create minimal .textanalyzer.yml
  textanalyzer init --full                Write every setting explicitly
  textanalyzer init --output custom.yml   Write to a custom file path`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd.Context(), cmd.InOrStdin(), flags)
		},
	}

	cmd.Flags().BoolVarP(&flags.force, "force", "f", false, "overwrite an existing configuration file")
	cmd.Flags().BoolVar(&flags.full, "full", false, "write every setting with its default")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file path (default: .textanalyzer.yml)")

	return cmd
}

func runInit(ctx context.Context, in io.Reader, flags *initFlags) error {
	logger := logging.FromContext(ctx)

	outputPath := flags.output
	if outputPath == "" {
		outputPath = configloader.ProjectConfigName()
	}

	absPath, err := filepath.Abs(outputPath)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	if _, err := os.Stat(absPath); err == nil {
		if !flags.force && !confirmOverwrite(in, outputPath) {
			return fmt.Errorf("%w: file %q already exists; use --force to overwrite", ErrInvalidUsage, outputPath)
		}
		logger.Warn("overwriting existing file", logging.FieldPath, outputPath)
	}

	content, err := config.GenerateTemplate(config.TemplateOptions{
		Full:      flags.full,
		Languages: templateLanguages(),
	})
	if err != nil {
		return fmt.Errorf("generate template: %w", err)
	}

	if err := configloader.WriteTemplate(ctx, content, absPath); err != nil {
		return err
	}

	logger.Info("created configuration file", logging.FieldPath, outputPath)
	logger.Info("run 'textanalyzer languages' to see the supported languages")

	return nil
}

func templateLanguages() []config.TemplateLanguage {
	specs := strategy.NewRegistry().Languages()

	langs := make([]config.TemplateLanguage, 0, len(specs))
	for _, spec := range specs {
		langs = append(langs, config.TemplateLanguage{
			Name:       spec.Name,
			Strategy:   spec.Kind,
			Extensions: spec.Extensions,
		})
	}
	return langs
}

// confirmOverwrite asks before replacing path. Without an interactive
// terminal on in the answer is no.
func confirmOverwrite(in io.Reader, path string) bool {
	f, ok := in.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return false
	}

	fmt.Fprintf(os.Stderr, "%s already exists. Overwrite? [y/N] ", path)

	answer, err := bufio.NewReader(f).ReadString('\n')
	if err != nil {
		return false
	}

	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
