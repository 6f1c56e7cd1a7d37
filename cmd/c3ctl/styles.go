package main

import "github.com/charmbracelet/lipgloss"

var (
	successColor = lipgloss.Color("#04B575")
	errorColor   = lipgloss.Color("#FF4B4B")
	warningColor = lipgloss.Color("#FFA500")
	accentColor  = lipgloss.Color("#00D7FF")
	mutedColor   = lipgloss.Color("#666666")

	okStyle        = lipgloss.NewStyle().Bold(true).Foreground(successColor)
	violationStyle = lipgloss.NewStyle().Bold(true).Foreground(errorColor)
	warnStyle      = lipgloss.NewStyle().Foreground(warningColor)
	caStyle        = lipgloss.NewStyle().Foreground(accentColor)
	labelStyle     = lipgloss.NewStyle().Foreground(mutedColor).Width(14)
	headerStyle    = lipgloss.NewStyle().Bold(true).Underline(true)
)

// render applies s unless --no-color is set.
func render(s lipgloss.Style, text string) string {
	if noColor {
		return text
	}
	return s.Render(text)
}

// field prints an aligned "label value" line.
func field(label string, format string, args ...any) {
	l := label + ":"
	if noColor {
		printInfo("%-14s"+format+"\n", append([]any{l}, args...)...)
		return
	}
	printInfo(labelStyle.Render(l)+format+"\n", args...)
}
