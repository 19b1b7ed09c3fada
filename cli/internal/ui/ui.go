// Package ui provides the CLI's styled terminal output.
package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"github.com/pterm/pterm"
)

var (
	primaryColor   = lipgloss.Color("#00D9FF")
	errorColor     = lipgloss.Color("#FF4444")
	secondaryColor = lipgloss.Color("#6C757D")

	titleStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(errorColor).
			Bold(true)

	secondaryStyle = lipgloss.NewStyle().
			Foreground(secondaryColor)

	sqlColor   = color.New(color.FgGreen)
	paramColor = color.New(color.FgYellow)
)

// PrintHeader prints the boxed command header.
func PrintHeader(title string, subtitle string) {
	width := 60
	if w := pterm.GetTerminalWidth(); w > 0 && w < width {
		width = w
	}
	header := lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(primaryColor).
		Padding(0, 2).
		Render(lipgloss.JoinVertical(
			lipgloss.Center,
			titleStyle.Render(title),
			secondaryStyle.Render(subtitle),
		))
	fmt.Println(header)
	fmt.Println()
}

// PrintSection prints a demo name with its description.
func PrintSection(name, about string) {
	fmt.Println(titleStyle.Render(name) + " " + secondaryStyle.Render(about))
}

// PrintSQL prints a rendered statement and its bind parameters.
func PrintSQL(sql string, params []any) {
	sqlColor.Printf("  %s\n", sql)
	if len(params) > 0 {
		paramColor.Printf("  params: %v\n", params)
	}
	fmt.Println()
}

// PrintError prints an error message.
func PrintError(format string, args ...any) {
	fmt.Println(errorStyle.Render("✗ " + fmt.Sprintf(format, args...)))
}
