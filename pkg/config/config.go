// Package config defines the configuration types for textanalyzer.
// These types are pure data with YAML tags; loading, merging and validation
// live in internal/configloader.
package config

import "time"

// Flavor specifies the Markdown flavor used by the block parser.
type Flavor string

const (
	FlavorCommonMark Flavor = "commonmark"
	FlavorGFM        Flavor = "gfm"
)

// Defaults used by NewConfig.
const (
	DefaultMaxBlocks    = 10000
	DefaultMaxRetired   = 8
	DefaultPoolEntries  = 4096
	DefaultDebounce     = 200 * time.Millisecond
	DefaultPollInterval = time.Second
	DefaultMetricsAddr  = "127.0.0.1:9464"
)

// PoolConfig controls container reuse between analysis passes.
type PoolConfig struct {
	Enabled    *bool `yaml:"enabled,omitempty"`
	MaxEntries int   `yaml:"max_entries,omitempty"`
}

// AnalysisConfig tunes the analysis engine.
type AnalysisConfig struct {
	// MaxBlocks caps fold blocks per result; 0 means unlimited.
	MaxBlocks int `yaml:"max_blocks,omitempty"`

	// MaxRetired bounds how many superseded results wait for recycling.
	MaxRetired int `yaml:"max_retired,omitempty"`

	// MarkdownFlavor selects the Markdown block parser flavor.
	MarkdownFlavor Flavor `yaml:"markdown_flavor,omitempty"`

	Pool PoolConfig `yaml:"pool"`
}

// LanguageConfig overrides how one language is analyzed.
type LanguageConfig struct {
	// Strategy is one of markdown, lexer, treesitter or plain.
	Strategy   string   `yaml:"strategy,omitempty"`
	Extensions []string `yaml:"extensions,omitempty"`
	Enabled    *bool    `yaml:"enabled,omitempty"`
}

// OutputConfig controls reporting.
type OutputConfig struct {
	Format OutputFormat `yaml:"format,omitempty"`
	Color  ColorMode    `yaml:"color,omitempty"`

	// ShowSpans prints every line with its styles in text output.
	ShowSpans bool `yaml:"show_spans,omitempty"`
}

// WatchConfig controls the watch command.
type WatchConfig struct {
	Debounce     time.Duration `yaml:"debounce,omitempty"`
	Poll         bool          `yaml:"poll,omitempty"`
	PollInterval time.Duration `yaml:"poll_interval,omitempty"`
}

// MetricsConfig controls the Prometheus endpoint of the watch command.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled,omitempty"`
	Addr    string `yaml:"addr,omitempty"`
}

// Config is the root configuration structure.
type Config struct {
	Analysis AnalysisConfig `yaml:"analysis"`

	// Languages contains per-language overrides keyed by language name.
	Languages map[string]LanguageConfig `yaml:"languages,omitempty"`

	// Ignore contains glob patterns for files to skip.
	Ignore []string `yaml:"ignore,omitempty"`

	Output  OutputConfig  `yaml:"output"`
	Watch   WatchConfig   `yaml:"watch"`
	Metrics MetricsConfig `yaml:"metrics"`

	// Jobs is the number of files analyzed in parallel; 0 means GOMAXPROCS.
	Jobs int `yaml:"jobs,omitempty"`

	// CLI-level options (not persisted to config files).

	// Debug enables debug logging.
	Debug bool `yaml:"-"`
}

// NewConfig returns a Config with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			MaxBlocks:      DefaultMaxBlocks,
			MaxRetired:     DefaultMaxRetired,
			MarkdownFlavor: FlavorCommonMark,
			Pool: PoolConfig{
				Enabled:    BoolPtr(true),
				MaxEntries: DefaultPoolEntries,
			},
		},
		Languages: make(map[string]LanguageConfig),
		Output: OutputConfig{
			Format: FormatText,
			Color:  ColorAuto,
		},
		Watch: WatchConfig{
			Debounce:     DefaultDebounce,
			PollInterval: DefaultPollInterval,
		},
		Metrics: MetricsConfig{
			Addr: DefaultMetricsAddr,
		},
		Jobs: 0, // 0 means use GOMAXPROCS
	}
}

// PoolSize returns the pool capacity to give the engine; 0 disables pooling.
func (c *Config) PoolSize() int {
	if c.Analysis.Pool.Enabled != nil && !*c.Analysis.Pool.Enabled {
		return 0
	}
	if c.Analysis.Pool.MaxEntries <= 0 {
		return DefaultPoolEntries
	}
	return c.Analysis.Pool.MaxEntries
}

// LanguageEnabled reports whether a language override leaves it enabled.
func (lc LanguageConfig) LanguageEnabled() bool {
	return lc.Enabled == nil || *lc.Enabled
}

// BoolPtr returns a pointer to b.
func BoolPtr(b bool) *bool {
	return &b
}
