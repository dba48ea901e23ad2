package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	focusedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	failureStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	chipStyle    = lipgloss.NewStyle().Padding(0, 1).Background(lipgloss.Color("236"))
	selectedChip = chipStyle.Background(lipgloss.Color("62"))
	paneStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	activePane   = paneStyle.BorderForeground(lipgloss.Color("212"))
)

// action renders a key hint, dimmed when the action is disabled.
func action(key, label string, enabled bool) string {
	hint := key + " " + label
	if !enabled {
		return dimStyle.Render(hint)
	}
	return hint
}
