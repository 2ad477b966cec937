package reporter

import "github.com/yaklabco/textanalyzer/pkg/config"

// Format represents an output format.
type Format = config.OutputFormat

// Output formats supported by the reporter.
const (
	FormatText    = config.FormatText
	FormatJSON    = config.FormatJSON
	FormatSummary = config.FormatSummary
)

// ParseFormat parses a format string; empty means text.
func ParseFormat(formatStr string) (Format, error) {
	if formatStr == "" {
		return FormatText, nil
	}
	return config.ParseOutputFormat(formatStr)
}
