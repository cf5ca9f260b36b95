package views

import (
	"fmt"
	"strings"

	"diagcheck/internal/output"
	"diagcheck/internal/report"
	"diagcheck/ui/tui/state"
	"diagcheck/ui/tui/styles"

	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
)

type DashboardView struct{}

func (v DashboardView) Render(s state.AppState, props ViewProps) string {
	header := lipgloss.JoinHorizontal(lipgloss.Left,
		props.SpinnerView,
		styles.TitleStyle.Render("Diagnosis Dashboard"),
		StatusLine(s.Status, s.Err),
	)

	if s.Last == nil {
		return lipgloss.JoinVertical(lipgloss.Left,
			header,
			lipgloss.NewStyle().Padding(1, 2).Render("No diagnosis yet. Press 'r' to run one."),
			lipgloss.NewStyle().Foreground(styles.Subtle).Render("\nPress 'b' to go back"),
		)
	}

	dashboard := output.BuildDashboard(*s.Last)

	overall := lipgloss.NewStyle().PaddingLeft(2).Render(
		fmt.Sprintf("%s  %s @ %s  %s",
			ColorForStatus(dashboard.OverallStatus).Render(dashboard.StatusSummary),
			dashboard.Hostname,
			dashboard.System,
			s.LastRun.Format("15:04:05"),
		),
	)

	renderSection := func(sec *output.Section) string {
		var b strings.Builder
		for _, item := range sec.Items {
			valStr := report.FormatValue(item)
			if item.Status != "" {
				valStr = ColorForStatus(item.Status).Render(fmt.Sprintf("%s [%s]", valStr, item.Status))
			}
			fmt.Fprintf(&b, "%-15s : %s\n", item.Label, valStr)
		}
		return strings.TrimRight(b.String(), "\n")
	}

	card := func(id, title string) string {
		sec := dashboard.SectionByID(id)
		if sec == nil || len(sec.Items) == 0 {
			return ""
		}
		return zone.Mark(id+"_box", styles.CardStyle.Render(
			lipgloss.JoinVertical(lipgloss.Left,
				lipgloss.NewStyle().Bold(true).Render(title),
				renderSection(sec),
			),
		))
	}

	row1 := lipgloss.JoinHorizontal(lipgloss.Top,
		card(output.SectionCPU, "CPU Metrics"),
		card(output.SectionMemory, "Memory Metrics"),
		card(output.SectionDisk, "Disk Metrics"),
	)
	row2 := lipgloss.JoinHorizontal(lipgloss.Top,
		card(output.SectionDatabase, "Database Metrics"),
		styles.CardStyle.Render(renderFindings(dashboard)),
	)

	rows := []string{header, overall, row1, row2}
	if len(dashboard.SlowQueries) > 0 {
		rows = append(rows, styles.CardStyle.Render(renderSlowQueries(dashboard)))
	}
	if len(props.ChartViews) > 0 {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, props.ChartViews...))
	}
	rows = append(rows, lipgloss.NewStyle().Foreground(styles.Subtle).Render("\n[R] Run again • [B] Back • [Q] Quit"))

	return zone.Scan(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func renderFindings(view output.DashboardView) string {
	lines := []string{lipgloss.NewStyle().Bold(true).Render("Alerts")}
	for _, a := range view.Alerts {
		sev := string(a.Severity)
		lines = append(lines, ColorForStatus(sev).Render("["+sev+"]")+" "+a.Message)
	}
	lines = append(lines, "", lipgloss.NewStyle().Bold(true).Render("Recommendations"))
	for _, r := range view.Recommendations {
		lines = append(lines, "→ "+r)
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderSlowQueries(view output.DashboardView) string {
	lines := []string{lipgloss.NewStyle().Bold(true).Render("Slow Queries")}
	for _, q := range view.SlowQueries {
		lines = append(lines, fmt.Sprintf("#%d %s@%s %ds %s", q.ID, q.User, q.Database, q.RunningSeconds, q.Query))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
