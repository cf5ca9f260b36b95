package views

import (
	"diagcheck/ui/tui/styles"

	"github.com/charmbracelet/lipgloss"
)

// ColorForStatus styles a check status or an alert severity.
func ColorForStatus(status string) lipgloss.Style {
	sStyle := styles.StatusStyle
	switch status {
	case "WARN":
		return sStyle.Foreground(styles.Warning)
	case "CRIT":
		return sStyle.Foreground(styles.Critical)
	case "INFO":
		return sStyle.Foreground(styles.Info)
	}
	return sStyle.Foreground(styles.OK)
}

// StatusLine renders the run status text.
func StatusLine(status string, err error) string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color("#888"))
	if err != nil {
		style = style.Foreground(styles.Critical)
	}
	return style.Render(status)
}
