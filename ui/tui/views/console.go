package views

import (
	"fmt"
	"strings"

	"diagcheck/ui/tui/state"

	"github.com/charmbracelet/lipgloss"
)

// ConsoleView shows the text report of the last diagnosis.
type ConsoleView struct {
	Content string
}

func (v ConsoleView) Render(s state.AppState, props ViewProps) string {
	header := MenuHeaderStyle.Width(props.Width).Render("Report Console")

	availableHeight := props.Height - lipgloss.Height(header) - 4
	if availableHeight < 1 {
		availableHeight = 1
	}

	content := v.Content
	if content == "" {
		content = "No report yet. Run a diagnostic first."
	}
	lines := strings.Split(content, "\n")
	totalLines := len(lines)

	scrollY := props.ScrollY
	if scrollY < 0 {
		scrollY = 0
	}
	if scrollY > totalLines-availableHeight {
		scrollY = totalLines - availableHeight
	}
	if scrollY < 0 {
		scrollY = 0
	}

	end := scrollY + availableHeight
	if end > totalLines {
		end = totalLines
	}

	visibleLines := lines[scrollY:end]
	viewContent := strings.Join(visibleLines, "\n")

	box := lipgloss.NewStyle().
		Width(props.Width-4).
		Height(availableHeight).
		Padding(0, 1).
		Render(viewContent)

	footerText := fmt.Sprintf("Scroll: %d/%d • Press 'b' to go back", scrollY, totalLines)
	if totalLines > availableHeight {
		footerText += " • Use ↑/↓ to scroll"
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		lipgloss.NewStyle().Padding(1, 2).Render(box),
		lipgloss.NewStyle().PaddingLeft(2).Foreground(lipgloss.Color("#555")).Render(footerText),
	)
}
