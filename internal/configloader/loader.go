// Package configloader resolves the effective configuration: XDG-compliant
// discovery, hierarchical merging, environment variables and validation.
package configloader

import (
	"context"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/yaklabco/textanalyzer/pkg/config"
	"github.com/yaklabco/textanalyzer/pkg/fsutil"
)

// configFilePermissions is the file mode for configuration files (world-readable).
const configFilePermissions = 0o644

// LoadOptions controls configuration loading.
type LoadOptions struct {
	// WorkingDir anchors the project config search. Empty means the
	// current directory.
	WorkingDir string

	// ExplicitPath is the --config file. It outranks every discovered file.
	ExplicitPath string

	IgnoreSystemConfig  bool
	IgnoreUserConfig    bool
	IgnoreProjectConfig bool
	IgnoreEnv           bool

	// CLIConfig holds flag values and takes precedence over everything.
	// Only non-zero fields override.
	CLIConfig *config.Config
}

// LoadResult is the resolved configuration with the files behind it.
type LoadResult struct {
	Config *config.Config

	// Layers are the files that were loaded, lowest precedence first.
	Layers []Layer

	// Warnings are non-fatal issues found while loading.
	Warnings []string
}

// LoadedFrom returns the paths of the loaded files in load order.
func (r *LoadResult) LoadedFrom() []string {
	paths := make([]string, len(r.Layers))
	for i, layer := range r.Layers {
		paths[i] = layer.Path
	}
	return paths
}

// Load builds the effective configuration. Later sources override earlier
// ones: defaults, system file, user file, project file (upward search),
// explicit file, TEXTANALYZER_* environment variables, CLI flags.
// The merged result is validated; the first error is returned as a
// *ValidationError.
func Load(ctx context.Context, opts LoadOptions) (*LoadResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	layers, err := discoverLayers(ctx, opts.WorkingDir, opts)
	if err != nil {
		return nil, fmt.Errorf("discover config files: %w", err)
	}

	result := &LoadResult{Layers: layers}
	cfg := config.NewConfig()

	for _, layer := range layers {
		fileCfg, err := readConfigFile(ctx, layer.Path)
		if err != nil {
			return nil, fmt.Errorf("load %s config: %w", layer.Source, err)
		}
		cfg = merge(cfg, fileCfg)
	}

	if !opts.IgnoreEnv {
		if err := LoadFromEnv(cfg); err != nil {
			return nil, fmt.Errorf("load environment: %w", err)
		}
	}

	if opts.CLIConfig != nil {
		cfg = merge(cfg, opts.CLIConfig)
	}

	normalizeLanguageKeys(cfg, result)

	validation := Validate(cfg)
	if !validation.Valid() {
		return nil, &validation.Errors[0]
	}
	for _, warning := range validation.Warnings {
		result.Warnings = append(result.Warnings, warning.Message)
	}

	result.Config = cfg
	return result, nil
}

// readConfigFile decodes one YAML file. Unset fields stay zero so that
// merging leaves lower layers in place.
func readConfigFile(ctx context.Context, path string) (*config.Config, error) {
	content, _, err := fsutil.ReadFile(ctx, path)
	if err != nil {
		return nil, err
	}

	cfg := &config.Config{}
	if err := yaml.Unmarshal(content, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// WriteConfig writes cfg to path with the standard header.
func WriteConfig(ctx context.Context, cfg *config.Config, path string) error {
	content, err := cfg.ToYAMLWithHeader(config.DefaultTemplateHeader())
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if _, err := fsutil.WriteAtomic(ctx, path, content, configFilePermissions); err != nil {
		return fmt.Errorf("write file: %w", err)
	}

	return nil
}

// WriteTemplate writes a generated template to path atomically.
func WriteTemplate(ctx context.Context, content []byte, path string) error {
	if _, err := fsutil.WriteAtomic(ctx, path, content, configFilePermissions); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}

// normalizeLanguageKeys rewrites language aliases ("golang", "js") to
// canonical names. When two keys collide the later one wins, with a warning.
func normalizeLanguageKeys(cfg *config.Config, result *LoadResult) {
	if len(cfg.Languages) == 0 {
		return
	}

	normalized := make(map[string]config.LanguageConfig, len(cfg.Languages))
	seen := make(map[string]string)

	for _, key := range sortedKeys(cfg.Languages) {
		canonical := NormalizeLanguage(key)

		if original, exists := seen[canonical]; exists {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("duplicate language configuration: %q and %q both refer to %s; using %q",
					original, key, canonical, key))
		}

		seen[canonical] = key
		normalized[canonical] = cfg.Languages[key]
	}

	cfg.Languages = normalized
}
