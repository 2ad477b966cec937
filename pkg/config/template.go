package config

import (
	"bytes"
	"fmt"
	"slices"
	"strings"
)

// TemplateOptions controls configuration template generation.
type TemplateOptions struct {
	// Full writes every setting with its default instead of a commented sketch.
	Full bool

	// Languages lists the known languages to document, in order.
	Languages []TemplateLanguage
}

// TemplateLanguage documents one language in a generated template.
type TemplateLanguage struct {
	Name       string
	Strategy   string
	Extensions []string
}

// GenerateTemplate creates a configuration file template.
func GenerateTemplate(opts TemplateOptions) ([]byte, error) {
	if opts.Full {
		return generateFullTemplate(opts)
	}
	return generateMinimalTemplate(opts), nil
}

func generateMinimalTemplate(opts TemplateOptions) []byte {
	var buf bytes.Buffer

	buf.WriteString(DefaultTemplateHeader())
	buf.WriteString(`

# analysis:
#   max_blocks: 10000
#   markdown_flavor: commonmark   # or gfm
#   pool:
#     enabled: true

# Number of files analyzed in parallel (0 = auto)
# jobs: 0

# File patterns to skip (glob patterns)
# ignore:
#   - "vendor/**"
#   - "node_modules/**"

# output:
#   format: text    # text, json or summary
#   color: auto     # auto, always or never
`)

	if len(opts.Languages) > 0 {
		buf.WriteString("\n# Per-language overrides\n# languages:\n")
		for _, lang := range opts.Languages {
			fmt.Fprintf(&buf, "#   %s:\n#     strategy: %s\n", lang.Name, lang.Strategy)
			if len(lang.Extensions) > 0 {
				fmt.Fprintf(&buf, "#     extensions: [%s]\n", strings.Join(lang.Extensions, ", "))
			}
		}
	}

	return buf.Bytes()
}

func generateFullTemplate(opts TemplateOptions) ([]byte, error) {
	cfg := NewConfig()
	cfg.Ignore = []string{"vendor/**", "node_modules/**", ".git/**"}

	for _, lang := range opts.Languages {
		cfg.Languages[lang.Name] = LanguageConfig{
			Strategy:   lang.Strategy,
			Extensions: slices.Clone(lang.Extensions),
			Enabled:    BoolPtr(true),
		}
	}

	return cfg.ToYAMLWithHeader(DefaultTemplateHeader())
}

// DefaultTemplateHeader returns the default header for generated configs.
func DefaultTemplateHeader() string {
	return `# textanalyzer configuration
# See: https://github.com/yaklabco/textanalyzer`
}
