package configloader

import (
	"maps"

	"github.com/yaklabco/textanalyzer/pkg/config"
)

// merge combines two configurations, with override taking precedence over base.
//   - Scalars: override wins when non-zero
//   - Pointers: override wins when non-nil
//   - Maps: deep merge, override's entries take precedence
//   - Slices: override replaces base entirely when non-nil
//
// Plain booleans can only be switched on by an override. The result never
// aliases base.
func merge(base, override *config.Config) *config.Config {
	if base == nil {
		return override.Clone()
	}
	if override == nil {
		return base.Clone()
	}

	result := *base.Clone()

	mergeAnalysis(&result.Analysis, override.Analysis)

	if override.Output.Format != "" {
		result.Output.Format = override.Output.Format
	}
	if override.Output.Color != "" {
		result.Output.Color = override.Output.Color
	}
	if override.Output.ShowSpans {
		result.Output.ShowSpans = true
	}

	if override.Watch.Debounce != 0 {
		result.Watch.Debounce = override.Watch.Debounce
	}
	if override.Watch.PollInterval != 0 {
		result.Watch.PollInterval = override.Watch.PollInterval
	}
	if override.Watch.Poll {
		result.Watch.Poll = true
	}

	if override.Metrics.Addr != "" {
		result.Metrics.Addr = override.Metrics.Addr
	}
	if override.Metrics.Enabled {
		result.Metrics.Enabled = true
	}

	if override.Jobs != 0 {
		result.Jobs = override.Jobs
	}
	if override.Debug {
		result.Debug = true
	}

	if override.Ignore != nil {
		result.Ignore = override.Ignore
	}

	result.Languages = mergeLanguages(base.Languages, override.Languages)

	return &result
}

func mergeAnalysis(dst *config.AnalysisConfig, override config.AnalysisConfig) {
	if override.MaxBlocks != 0 {
		dst.MaxBlocks = override.MaxBlocks
	}
	if override.MaxRetired != 0 {
		dst.MaxRetired = override.MaxRetired
	}
	if override.MarkdownFlavor != "" {
		dst.MarkdownFlavor = override.MarkdownFlavor
	}
	if override.Pool.Enabled != nil {
		dst.Pool.Enabled = override.Pool.Enabled
	}
	if override.Pool.MaxEntries != 0 {
		dst.Pool.MaxEntries = override.Pool.MaxEntries
	}
}

// mergeLanguages deep merges per-language overrides.
func mergeLanguages(base, override map[string]config.LanguageConfig) map[string]config.LanguageConfig {
	if base == nil && override == nil {
		return nil
	}

	result := make(map[string]config.LanguageConfig, len(base)+len(override))
	maps.Copy(result, base)

	for name, lc := range override {
		existing, ok := result[name]
		if !ok {
			result[name] = lc
			continue
		}

		if lc.Strategy != "" {
			existing.Strategy = lc.Strategy
		}
		if lc.Extensions != nil {
			existing.Extensions = lc.Extensions
		}
		if lc.Enabled != nil {
			existing.Enabled = lc.Enabled
		}
		result[name] = existing
	}

	return result
}

// MergeAll merges configurations in order, later ones taking precedence.
func MergeAll(configs ...*config.Config) *config.Config {
	if len(configs) == 0 {
		return nil
	}

	result := configs[0]
	for _, cfg := range configs[1:] {
		result = merge(result, cfg)
	}
	return result
}
