// Package tui holds the terminal presentation for the minefile CLI: colours,
// board rendering, a spinner while a request polls, and the help page.
package tui

import (
	"github.com/charmbracelet/lipgloss/v2"
)

const (
	CheckIcon   = "✓"
	ErrorIcon   = "✗"
	WarningIcon = "⚠"
	BombIcon    = "*"
	EmptyIcon   = "·"
)

// Theme holds the handful of colors the CLI uses.
type Theme struct {
	Primary lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style

	Bomb  lipgloss.Style
	Empty lipgloss.Style
	Frame lipgloss.Style
}

// DefaultTheme is pink accents on grey.
func DefaultTheme() Theme {
	base := lipgloss.NewStyle()
	return Theme{
		Primary: base.Foreground(lipgloss.Color("205")).Bold(true),
		Muted:   base.Foreground(lipgloss.Color("241")),
		Success: base.Foreground(lipgloss.Color("42")),
		Error:   base.Foreground(lipgloss.Color("196")).Bold(true),
		Warning: base.Foreground(lipgloss.Color("214")),

		Bomb:  base.Foreground(lipgloss.Color("196")).Bold(true),
		Empty: base.Foreground(lipgloss.Color("241")),
		Frame: base.
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("205")).
			Padding(0, 1),
	}
}

// OK formats a one-line confirmation.
func (t Theme) OK(msg string) string {
	return t.Success.Render(CheckIcon) + " " + msg
}

// Fail formats a one-line error.
func (t Theme) Fail(msg string) string {
	return t.Error.Render(ErrorIcon) + " " + msg
}

// Warn formats a one-line warning.
func (t Theme) Warn(msg string) string {
	return t.Warning.Render(WarningIcon) + " " + msg
}
