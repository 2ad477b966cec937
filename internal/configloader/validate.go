package configloader

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/yaklabco/textanalyzer/pkg/config"
	"github.com/yaklabco/textanalyzer/pkg/strategy"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	// Field is the path to the invalid field (e.g., "languages.go.strategy").
	Field string

	// Value is the invalid value.
	Value any

	// Message describes the validation error.
	Message string

	// FilePath is the config file containing the error (if known).
	FilePath string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	var parts []string

	if e.FilePath != "" {
		parts = append(parts, e.FilePath)
	}
	if e.Field != "" {
		parts = append(parts, e.Field)
	}
	parts = append(parts, e.Message)

	return strings.Join(parts, ": ")
}

// ValidationResult contains all validation findings.
type ValidationResult struct {
	// Errors are validation failures that prevent loading.
	Errors []ValidationError

	// Warnings are non-fatal issues.
	Warnings []ValidationError
}

// Valid returns true if there are no errors.
func (r *ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// HasWarnings returns true if there are any warnings.
func (r *ValidationResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// AllMessages returns all error and warning messages combined.
func (r *ValidationResult) AllMessages() []string {
	messages := make([]string, 0, len(r.Errors)+len(r.Warnings))
	for _, e := range r.Errors {
		messages = append(messages, "error: "+e.Error())
	}
	for _, w := range r.Warnings {
		messages = append(messages, "warning: "+w.Error())
	}
	return messages
}

func (r *ValidationResult) errorf(field string, value any, format string, args ...any) {
	r.Errors = append(r.Errors, ValidationError{Field: field, Value: value, Message: fmt.Sprintf(format, args...)})
}

func (r *ValidationResult) warnf(field string, value any, format string, args ...any) {
	r.Warnings = append(r.Warnings, ValidationError{Field: field, Value: value, Message: fmt.Sprintf(format, args...)})
}

// Validate checks a configuration for errors and warnings.
func Validate(cfg *config.Config) *ValidationResult {
	result := &ValidationResult{}
	if cfg == nil {
		return result
	}

	if f := cfg.Analysis.MarkdownFlavor; f != "" && f != config.FlavorCommonMark && f != config.FlavorGFM {
		result.errorf("analysis.markdown_flavor", f, "invalid flavor %q; must be one of: commonmark, gfm", f)
	}
	if cfg.Analysis.MaxBlocks < 0 {
		result.errorf("analysis.max_blocks", cfg.Analysis.MaxBlocks, "max_blocks must be >= 0 (0 means unlimited)")
	}
	if cfg.Analysis.MaxRetired < 0 {
		result.errorf("analysis.max_retired", cfg.Analysis.MaxRetired, "max_retired must be >= 0")
	}
	if cfg.Analysis.Pool.MaxEntries < 0 {
		result.errorf("analysis.pool.max_entries", cfg.Analysis.Pool.MaxEntries, "max_entries must be >= 0")
	}

	if f := cfg.Output.Format; f != "" {
		if _, err := config.ParseOutputFormat(string(f)); err != nil {
			result.errorf("output.format", f, "%v", err)
		}
	}
	if !cfg.Output.Color.IsValid() {
		result.errorf("output.color", cfg.Output.Color,
			"invalid color mode %q; must be one of: auto, always, never", cfg.Output.Color)
	}

	if cfg.Jobs < 0 {
		result.errorf("jobs", cfg.Jobs, "jobs must be >= 0 (0 means auto)")
	}
	if cfg.Watch.Debounce < 0 {
		result.errorf("watch.debounce", cfg.Watch.Debounce, "debounce must not be negative")
	}
	if cfg.Watch.Poll && cfg.Watch.PollInterval <= 0 {
		result.errorf("watch.poll_interval", cfg.Watch.PollInterval, "poll_interval must be positive when polling")
	}

	validateLanguages(cfg, result)
	validateIgnorePatterns(cfg, result)

	return result
}

func validateLanguages(cfg *config.Config, result *ValidationResult) {
	known := make(map[string]bool)
	for _, spec := range strategy.Defaults() {
		known[spec.Name] = true
	}

	for name, lc := range cfg.Languages {
		field := "languages." + name

		if !known[name] && len(lc.Extensions) == 0 {
			result.warnf(field, name, "unknown language %q has no extensions; it will never be selected", name)
		}

		if lc.Strategy == "" {
			continue
		}
		kinds := strategy.Kinds(name)
		if !slices.Contains(kinds, lc.Strategy) {
			result.errorf(field+".strategy", lc.Strategy,
				"strategy %q is not available for %s; must be one of: %s",
				lc.Strategy, name, strings.Join(kinds, ", "))
		}
	}
}

// validateIgnorePatterns checks that ignore patterns are valid globs.
func validateIgnorePatterns(cfg *config.Config, result *ValidationResult) {
	for i, pattern := range cfg.Ignore {
		if _, err := filepath.Match(pattern, ""); err != nil {
			result.errorf(fmt.Sprintf("ignore[%d]", i), pattern, "invalid glob pattern: %v", err)
		}
	}
}

// ValidateWithFile validates configuration and includes file path in errors.
func ValidateWithFile(cfg *config.Config, filePath string) *ValidationResult {
	result := Validate(cfg)

	for i := range result.Errors {
		result.Errors[i].FilePath = filePath
	}
	for i := range result.Warnings {
		result.Warnings[i].FilePath = filePath
	}

	return result
}
