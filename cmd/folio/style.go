package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"folio/pkg/logic"
)

// Semantic colors, same in light and dark terminals.
var (
	errorColor   = lipgloss.Color("#e53935")
	warnColor    = lipgloss.Color("#FFC107")
	successColor = lipgloss.Color("#8BC34A")
	infoColor    = lipgloss.Color("#2196F3")
	mutedColor   = lipgloss.Color("245")
)

var (
	errorStyle   = lipgloss.NewStyle().Foreground(errorColor).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(warnColor)
	successStyle = lipgloss.NewStyle().Foreground(successColor).Bold(true)
	titleStyle   = lipgloss.NewStyle().Foreground(infoColor).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(mutedColor)
	headerStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
)

// printDiagnostics reports skipped constructs without failing the run.
func printDiagnostics(w io.Writer, diags []logic.Diagnostic) {
	for _, d := range diags {
		badge := warnStyle.Render("[" + string(d.Code) + "]")
		line := badge + " " + d.Message
		if d.Group != "" {
			line += mutedStyle.Render(fmt.Sprintf(" (group %q)", d.Group))
		}
		fmt.Fprintln(w, line)
	}
}

// renderTable lays out rows under headers with per-column widths.
func renderTable(title string, headers []string, rows [][]string) string {
	var sb strings.Builder
	if title != "" {
		sb.WriteString(titleStyle.Render(title))
		sb.WriteString("\n")
	}
	if len(rows) == 0 {
		sb.WriteString(mutedStyle.Render("(none)"))
		sb.WriteString("\n")
		return sb.String()
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) {
				if w := lipgloss.Width(cell); w > widths[i] {
					widths[i] = w
				}
			}
		}
	}
	for i := range widths {
		widths[i] += 2
	}

	total := 0
	for i, h := range headers {
		sb.WriteString(headerStyle.Width(widths[i]).Render(h))
		total += widths[i]
	}
	sb.WriteString("\n")
	sb.WriteString(mutedStyle.Render(strings.Repeat("-", total)))
	sb.WriteString("\n")
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) {
				sb.WriteString(cellStyle.Width(widths[i]).Render(cell))
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
