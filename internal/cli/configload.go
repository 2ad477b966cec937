package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yaklabco/textanalyzer/internal/configloader"
	"github.com/yaklabco/textanalyzer/internal/logging"
	"github.com/yaklabco/textanalyzer/pkg/config"
)

var errConfigLoad = errors.New("failed to load configuration")

// loadConfig resolves the effective configuration for a command. cliCfg
// holds the values of flags the user set explicitly.
func loadConfig(cmd *cobra.Command, cliCfg *config.Config) (*config.Config, string, error) {
	logger := logging.FromContext(cmd.Context())

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, "", fmt.Errorf("get config flag: %w", err)
	}

	if err := applyColorFlags(cmd, cliCfg); err != nil {
		return nil, "", err
	}

	workDir, err := os.Getwd()
	if err != nil {
		return nil, "", fmt.Errorf("get working directory: %w", err)
	}

	loadResult, err := configloader.Load(cmd.Context(), configloader.LoadOptions{
		WorkingDir:   workDir,
		ExplicitPath: configPath,
		CLIConfig:    cliCfg,
	})
	if err != nil {
		return nil, "", errors.Join(errConfigLoad, err)
	}

	for _, warning := range loadResult.Warnings {
		logger.Warn(warning)
	}
	for _, layer := range loadResult.Layers {
		logger.Debug("loaded configuration", "source", layer.Source, logging.FieldPath, layer.Path)
	}

	cfg := loadResult.Config
	logger.Debug("configuration loaded",
		logging.FieldFormat, cfg.Output.Format,
		logging.FieldJobs, cfg.Jobs,
		"languages", len(cfg.Languages),
	)

	return cfg, workDir, nil
}

// applyColorFlags copies --color and --no-color onto cliCfg when set.
func applyColorFlags(cmd *cobra.Command, cliCfg *config.Config) error {
	if noColor, _ := cmd.Flags().GetBool("no-color"); noColor {
		cliCfg.Output.Color = config.ColorNever
		return nil
	}

	if !cmd.Flags().Changed("color") {
		return nil
	}

	value, err := cmd.Flags().GetString("color")
	if err != nil {
		return fmt.Errorf("get color flag: %w", err)
	}

	mode := config.ColorMode(value)
	if !mode.IsValid() {
		return fmt.Errorf("%w: --color %q (want auto, always or never)", ErrInvalidUsage, value)
	}
	cliCfg.Output.Color = mode
	return nil
}
