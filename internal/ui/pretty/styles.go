// Package pretty provides Lipgloss-based styled output utilities.
package pretty

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/yaklabco/textanalyzer/pkg/config"
	"github.com/yaklabco/textanalyzer/pkg/textmodel"
)

// Styles contains all styled renderers for CLI output.
type Styles struct {
	// Syntax maps analysis styles to renderers. Missing entries render plain.
	Syntax map[textmodel.Style]lipgloss.Style

	// Source view
	FilePath   lipgloss.Style
	Language   lipgloss.Style
	LineNumber lipgloss.Style
	FoldMarker lipgloss.Style
	Label      lipgloss.Style

	// Status
	Error   lipgloss.Style
	Warning lipgloss.Style
	Success lipgloss.Style
	Failure lipgloss.Style

	// Summary styles
	SummaryTitle lipgloss.Style
	SummaryValue lipgloss.Style

	// Table styles
	TableHeader    lipgloss.Style
	TableSeparator lipgloss.Style

	// Misc
	Dim  lipgloss.Style
	Bold lipgloss.Style
}

// NewStyles creates a new Styles with the given color mode.
func NewStyles(colorEnabled bool) *Styles {
	if !colorEnabled {
		return newNoColorStyles()
	}
	return newColorStyles()
}

func fg(color string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}

// newColorStyles creates styles with ANSI 256 colors.
func newColorStyles() *Styles {
	return &Styles{
		Syntax: map[textmodel.Style]lipgloss.Style{
			textmodel.StyleKeyword:     fg("13").Bold(true),
			textmodel.StyleIdentifier:  fg("15"),
			textmodel.StyleFunction:    fg("12"),
			textmodel.StyleType:        fg("14"),
			textmodel.StyleString:      fg("10"),
			textmodel.StyleNumber:      fg("11"),
			textmodel.StyleComment:     fg("8").Italic(true),
			textmodel.StyleOperator:    fg("7"),
			textmodel.StylePunctuation: fg("7"),
			textmodel.StyleLiteral:     fg("11"),
			textmodel.StyleHeading:     fg("12").Bold(true),
			textmodel.StyleEmphasis:    lipgloss.NewStyle().Italic(true),
			textmodel.StyleCode:        fg("10"),
			textmodel.StyleLink:        fg("14").Underline(true),
			textmodel.StyleListMarker:  fg("13"),
			textmodel.StyleQuote:       fg("8"),
			textmodel.StyleHTML:        fg("5"),
			textmodel.StyleEscape:      fg("11"),
			textmodel.StyleRule:        fg("8"),
			textmodel.StyleError:       fg("9").Underline(true),
		},

		FilePath:   lipgloss.NewStyle().Bold(true),
		Language:   fg("14"),
		LineNumber: fg("8"),
		FoldMarker: fg("8"),
		Label:      fg("12"),

		Error:   fg("9").Bold(true),
		Warning: fg("11").Bold(true),
		Success: fg("10").Bold(true),
		Failure: fg("9").Bold(true),

		SummaryTitle: lipgloss.NewStyle().Bold(true),
		SummaryValue: lipgloss.NewStyle(),

		TableHeader:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7")),
		TableSeparator: fg("8"),

		Dim:  fg("8"),
		Bold: lipgloss.NewStyle().Bold(true),
	}
}

// newNoColorStyles creates styles with no color formatting.
func newNoColorStyles() *Styles {
	plain := lipgloss.NewStyle()
	return &Styles{
		Syntax:         map[textmodel.Style]lipgloss.Style{},
		FilePath:       plain,
		Language:       plain,
		LineNumber:     plain,
		FoldMarker:     plain,
		Label:          plain,
		Error:          plain,
		Warning:        plain,
		Success:        plain,
		Failure:        plain,
		SummaryTitle:   plain,
		SummaryValue:   plain,
		TableHeader:    plain,
		TableSeparator: plain,
		Dim:            plain,
		Bold:           plain,
	}
}

// SyntaxStyle returns the renderer for an analysis style.
func (s *Styles) SyntaxStyle(style textmodel.Style) (lipgloss.Style, bool) {
	st, ok := s.Syntax[style]
	return st, ok
}

// IsColorEnabled determines if color should be enabled based on mode and writer.
// In auto mode, color is enabled only if the writer is a TTY and NO_COLOR is not set.
func IsColorEnabled(mode config.ColorMode, writer io.Writer) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	default:
		// https://no-color.org/
		if os.Getenv("NO_COLOR") != "" {
			return false
		}
		return mode.Enabled(IsTerminal(writer))
	}
}

// IsTerminal reports whether writer is a terminal.
func IsTerminal(writer io.Writer) bool {
	f, ok := writer.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
