package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/yaklabco/textanalyzer/internal/ui/pretty"
	"github.com/yaklabco/textanalyzer/pkg/config"
	"github.com/yaklabco/textanalyzer/pkg/runner"
	"github.com/yaklabco/textanalyzer/pkg/strategy"
)

// languageInfo represents a language in JSON output.
type languageInfo struct {
	Name       string   `json:"name"`
	Strategy   string   `json:"strategy"`
	Extensions []string `json:"extensions"`
	Enabled    bool     `json:"enabled"`
}

func newLanguagesCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "languages",
		Short: "List supported languages",
		Long: `List every language with the strategy that analyzes it, the file
extensions it claims and whether it is enabled. Configuration overrides are
applied, so languages added in a config file are listed too.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if format != "text" && format != "json" {
				return fmt.Errorf("%w: --format %q (want text or json)", ErrInvalidUsage, format)
			}

			cfg, _, err := loadConfig(cmd, &config.Config{})
			if err != nil {
				return err
			}

			registry, err := runner.NewRegistry(cfg)
			if err != nil {
				return errors.Join(errConfigLoad, err)
			}

			if format == "json" {
				return outputLanguagesJSON(cmd, registry.Languages())
			}
			return outputLanguagesTable(cmd, cfg, registry.Languages())
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "output format: text or json")

	return cmd
}

func outputLanguagesJSON(cmd *cobra.Command, specs []strategy.LanguageSpec) error {
	infos := make([]languageInfo, 0, len(specs))
	for _, spec := range specs {
		infos = append(infos, languageInfo{
			Name:       spec.Name,
			Strategy:   spec.Kind,
			Extensions: spec.Extensions,
			Enabled:    spec.Enabled,
		})
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(infos); err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}
	return nil
}

func outputLanguagesTable(cmd *cobra.Command, cfg *config.Config, specs []strategy.LanguageSpec) error {
	out := cmd.OutOrStdout()
	styles := pretty.NewStyles(pretty.IsColorEnabled(cfg.Output.Color, out))

	columns := []pretty.Column{
		{Header: "LANGUAGE"},
		{Header: "STRATEGY"},
		{Header: "EXTENSIONS", Truncate: true},
		{Header: "ENABLED"},
	}

	rows := make([][]string, 0, len(specs))
	for _, spec := range specs {
		enabled := "yes"
		if !spec.Enabled {
			enabled = "no"
		}
		rows = append(rows, []string{spec.Name, spec.Kind, strings.Join(spec.Extensions, " "), enabled})
	}

	table := pretty.NewTableFormatter(styles, terminalWidth(out)).Format(columns, rows, nil)
	if _, err := fmt.Fprint(out, table); err != nil {
		return fmt.Errorf("write table: %w", err)
	}
	return nil
}
