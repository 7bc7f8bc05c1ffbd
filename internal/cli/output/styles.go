package output

import "github.com/charmbracelet/lipgloss"

// Styles is the CLI's style set. On non-terminal writers every style is
// a no-op, so rendered text passes through unchanged.
type Styles struct {
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Bold    lipgloss.Style
	Muted   lipgloss.Style
	// Label styles build target labels wherever they appear in text.
	Label lipgloss.Style
}

func newStyles(colored bool) Styles {
	if !colored {
		plain := lipgloss.NewStyle()
		return Styles{
			Success: plain,
			Error:   plain,
			Warning: plain,
			Bold:    plain,
			Muted:   plain,
			Label:   plain,
		}
	}
	return Styles{
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		Bold:    lipgloss.NewStyle().Bold(true),
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Label:   lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
	}
}
