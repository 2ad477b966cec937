package pretty

import (
	"fmt"
	"strings"
)

// Table formatting constants.
const (
	tablePadding     = 2
	minColumnWidth   = 4
	heavySeparator   = "="
	lightSeparator   = "-"
	defaultTermWidth = 100
)

// Align controls column alignment.
type Align int

const (
	AlignLeft Align = iota
	AlignRight
)

// Column describes one table column.
type Column struct {
	Header string
	Align  Align

	// Truncate lets the column shrink to fit the terminal; its cells are
	// shortened from the left (paths keep their file name).
	Truncate bool
}

// TableFormatter formats rows as a styled, width-constrained table.
type TableFormatter struct {
	styles    *Styles
	termWidth int
}

// NewTableFormatter creates a new table formatter.
func NewTableFormatter(styles *Styles, termWidth int) *TableFormatter {
	if termWidth <= 0 {
		termWidth = defaultTermWidth
	}
	return &TableFormatter{styles: styles, termWidth: termWidth}
}

// Format renders columns and rows. A nil row renders a light separator; an
// optional footer row is set off by a heavy separator.
func (t *TableFormatter) Format(columns []Column, rows [][]string, footer []string) string {
	if len(columns) == 0 {
		return ""
	}

	widths := t.columnWidths(columns, rows, footer)
	total := 0
	for _, w := range widths {
		total += w + tablePadding
	}

	var builder strings.Builder

	headers := make([]string, len(columns))
	for i, col := range columns {
		headers[i] = col.Header
	}
	builder.WriteString(t.styles.TableHeader.Render(t.formatRow(columns, widths, headers)))
	builder.WriteString("\n")
	builder.WriteString(t.styles.TableSeparator.Render(strings.Repeat(heavySeparator, total)))
	builder.WriteString("\n")

	for _, row := range rows {
		if row == nil {
			builder.WriteString(t.styles.TableSeparator.Render(strings.Repeat(lightSeparator, total)))
		} else {
			builder.WriteString(t.formatRow(columns, widths, row))
		}
		builder.WriteString("\n")
	}

	if footer != nil {
		builder.WriteString(t.styles.TableSeparator.Render(strings.Repeat(heavySeparator, total)))
		builder.WriteString("\n")
		builder.WriteString(t.styles.Bold.Render(t.formatRow(columns, widths, footer)))
		builder.WriteString("\n")
	}

	return builder.String()
}

// columnWidths sizes each column to its widest cell, then shrinks
// truncatable columns to fit the terminal.
func (t *TableFormatter) columnWidths(columns []Column, rows [][]string, footer []string) []int {
	widths := make([]int, len(columns))
	measure := func(row []string) {
		for i := range min(len(row), len(widths)) {
			widths[i] = max(widths[i], len(row[i]))
		}
	}

	for i, col := range columns {
		widths[i] = max(minColumnWidth, len(col.Header))
	}
	for _, row := range rows {
		measure(row)
	}
	measure(footer)

	total := 0
	for _, w := range widths {
		total += w + tablePadding
	}

	for i, col := range columns {
		if total <= t.termWidth {
			break
		}
		if !col.Truncate {
			continue
		}
		shrink := min(total-t.termWidth, widths[i]-max(minColumnWidth, len(col.Header)))
		widths[i] -= shrink
		total -= shrink
	}

	return widths
}

func (t *TableFormatter) formatRow(columns []Column, widths []int, cells []string) string {
	var builder strings.Builder

	for i, col := range columns {
		var cell string
		if i < len(cells) {
			cell = cells[i]
		}
		if col.Truncate {
			cell = truncateFilePath(cell, widths[i])
		}

		if col.Align == AlignRight {
			builder.WriteString(fmt.Sprintf("%*s", widths[i], cell))
		} else {
			builder.WriteString(fmt.Sprintf("%-*s", widths[i], cell))
		}
		if i < len(columns)-1 {
			builder.WriteString(strings.Repeat(" ", tablePadding))
		}
	}

	return strings.TrimRight(builder.String(), " ")
}

// truncateFilePath truncates a file path, preserving the end (filename) rather than beginning.
func truncateFilePath(path string, maxLen int) string {
	if len(path) <= maxLen {
		return path
	}
	if maxLen <= 3 {
		return path[len(path)-maxLen:]
	}
	return "..." + path[len(path)-maxLen+3:]
}
