package cli

import (
	"github.com/charmbracelet/lipgloss"
)

// Semantic colors
var (
	Destructive = lipgloss.Color("#e53935")
	Success     = lipgloss.Color("#8BC34A")
	Info        = lipgloss.Color("#2196F3")
	Muted       = lipgloss.Color("#9e9e9e")
)

// Styles holds the styles used by the shell output
type Styles struct {
	Error   lipgloss.Style
	Success lipgloss.Style
	Title   lipgloss.Style
	Detail  lipgloss.Style
	Prompt  lipgloss.Style
}

// NewStyles returns the shell styles. Without color every style renders plain text.
func NewStyles(useColor bool) Styles {
	if !useColor {
		plain := lipgloss.NewStyle()
		return Styles{Error: plain, Success: plain, Title: plain, Detail: plain, Prompt: plain}
	}
	return Styles{
		Error: lipgloss.NewStyle().
			Foreground(Destructive).
			Bold(true),
		Success: lipgloss.NewStyle().
			Foreground(Success),
		Title: lipgloss.NewStyle().
			Bold(true),
		Detail: lipgloss.NewStyle().
			Foreground(Muted),
		Prompt: lipgloss.NewStyle().
			Foreground(Info),
	}
}
