package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/genricoloni/archivarium/internal/domain"
)

type styles struct {
	heading   lipgloss.Style
	caption   lipgloss.Style
	muted     lipgloss.Style
	thumb     lipgloss.Style
	selected  lipgloss.Style
	status    lipgloss.Style
	preview   lipgloss.Style
	focusMark lipgloss.Style
}

// newStyles builds the styles from the configured palette. Empty colours
// fall back to the terminal default.
func newStyles(p domain.Palette) styles {
	return styles{
		heading:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(p.Heading)),
		caption:   lipgloss.NewStyle().Foreground(lipgloss.Color(p.Text)),
		muted:     lipgloss.NewStyle().Foreground(lipgloss.Color(p.TextMuted)),
		thumb:     lipgloss.NewStyle().Foreground(lipgloss.Color(p.Border)),
		selected:  lipgloss.NewStyle().Bold(true).Underline(true).Foreground(lipgloss.Color(p.Focus)),
		status:    lipgloss.NewStyle().Foreground(lipgloss.Color(p.Accent)),
		preview:   lipgloss.NewStyle().Foreground(lipgloss.Color(p.TextMuted)).Background(lipgloss.Color(p.Surface)),
		focusMark: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(p.Focus)),
	}
}
