package configloader

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/yaklabco/textanalyzer/pkg/config"
)

// envVarPrefix is the prefix for all textanalyzer environment variables.
const envVarPrefix = "TEXTANALYZER_"

// envVar binds one environment variable to a config field.
type envVar struct {
	suffix      string
	description string
	apply       func(cfg *config.Config, value string) error
}

// envVars lists the supported variables in documentation order.
//
//nolint:gochecknoglobals // Read-only lookup table.
var envVars = []envVar{
	{"JOBS", "Number of files analyzed in parallel (0 = auto)", intField(func(c *config.Config, v int) { c.Jobs = v })},
	{"FORMAT", "Output format: text, json or summary", func(c *config.Config, v string) error {
		c.Output.Format = config.OutputFormat(v)
		return nil
	}},
	{"COLOR", "Color mode: auto, always or never", func(c *config.Config, v string) error {
		c.Output.Color = config.ColorMode(v)
		return nil
	}},
	{"MARKDOWN_FLAVOR", "Markdown flavor: commonmark or gfm", func(c *config.Config, v string) error {
		c.Analysis.MarkdownFlavor = config.Flavor(v)
		return nil
	}},
	{"MAX_BLOCKS", "Maximum fold blocks per result (0 = unlimited)", intField(func(c *config.Config, v int) {
		c.Analysis.MaxBlocks = v
	})},
	{"POOL_ENABLED", "Reuse containers between passes: true or false", boolField(func(c *config.Config, v bool) {
		c.Analysis.Pool.Enabled = config.BoolPtr(v)
	})},
	{"IGNORE", "Comma-separated list of ignore patterns", func(c *config.Config, v string) error {
		c.Ignore = parseSliceValue(v)
		return nil
	}},
	{"WATCH_DEBOUNCE", "Delay before re-analyzing a changed file (e.g. 200ms)", durationField(func(c *config.Config, v time.Duration) {
		c.Watch.Debounce = v
	})},
	{"WATCH_POLL", "Poll for changes instead of using file system events", boolField(func(c *config.Config, v bool) {
		c.Watch.Poll = v
	})},
	{"METRICS_ADDR", "Listen address for the Prometheus endpoint in watch mode", func(c *config.Config, v string) error {
		c.Metrics.Addr = v
		c.Metrics.Enabled = true
		return nil
	}},
}

// LoadFromEnv applies TEXTANALYZER_* environment variable overrides to cfg.
func LoadFromEnv(cfg *config.Config) error {
	return loadFromLookup(cfg, os.LookupEnv)
}

func loadFromLookup(cfg *config.Config, lookup func(string) (string, bool)) error {
	if cfg == nil {
		return nil
	}

	for _, ev := range envVars {
		name := envVarPrefix + ev.suffix
		value, ok := lookup(name)
		if !ok || value == "" {
			continue
		}

		if err := ev.apply(cfg, value); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}

	return nil
}

func intField(set func(*config.Config, int)) func(*config.Config, string) error {
	return func(c *config.Config, v string) error {
		i, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid integer %q", v)
		}
		set(c, i)
		return nil
	}
}

func boolField(set func(*config.Config, bool)) func(*config.Config, string) error {
	return func(c *config.Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid boolean %q (expected true/false/1/0)", v)
		}
		set(c, b)
		return nil
	}
}

func durationField(set func(*config.Config, time.Duration)) func(*config.Config, string) error {
	return func(c *config.Config, v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid duration %q", v)
		}
		set(c, d)
		return nil
	}
}

// parseSliceValue parses a comma-separated string, trimming each element.
func parseSliceValue(value string) []string {
	if value == "" {
		return nil
	}

	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// EnvVar describes one supported environment variable.
type EnvVar struct {
	Name        string
	Description string
}

// ListEnvVars returns every supported environment variable.
func ListEnvVars() []EnvVar {
	out := make([]EnvVar, 0, len(envVars))
	for _, ev := range envVars {
		out = append(out, EnvVar{Name: envVarPrefix + ev.suffix, Description: ev.description})
	}
	return out
}
