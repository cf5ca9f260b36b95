package report

import (
	"fmt"
	"strings"

	"diagcheck/internal/output"

	"github.com/gosuri/uitable"
)

const width = 60

var (
	heavyRule = strings.Repeat("=", width)
	lightRule = strings.Repeat("-", width)
)

// Text renders the plain-text report.
func Text(view output.DashboardView) string {
	var b strings.Builder

	b.WriteString(heavyRule + "\n")
	b.WriteString(center(Title) + "\n")
	b.WriteString(heavyRule + "\n\n")

	meta := uitable.New()
	meta.Separator = " "
	meta.AddRow("Generated:", formatTime(view.GeneratedAt))
	meta.AddRow("System:", view.System)
	if view.Hostname != "" {
		meta.AddRow("Host:", view.Hostname)
	}
	b.WriteString(meta.String() + "\n\n")

	fmt.Fprintf(&b, "OVERALL STATUS: %s\n\n", view.StatusSummary)

	var osSections, dbSections []output.Section
	for _, sec := range view.Sections {
		if sec.ID == output.SectionDatabase {
			dbSections = append(dbSections, sec)
		} else {
			osSections = append(osSections, sec)
		}
	}

	heading(&b, "OPERATING SYSTEM METRICS")
	b.WriteString(metricsTable(osSections) + "\n\n")

	heading(&b, "DATABASE METRICS")
	b.WriteString(metricsTable(dbSections) + "\n\n")

	if len(view.SlowQueries) > 0 {
		heading(&b, fmt.Sprintf("SLOW QUERIES (%d)", len(view.SlowQueries)))
		for _, q := range view.SlowQueries {
			fmt.Fprintf(&b, "  #%d %s@%s  %ds  %s\n", q.ID, q.User, q.Database, q.RunningSeconds, q.State)
			fmt.Fprintf(&b, "      %s\n", strings.ReplaceAll(q.Query, "\n", " "))
		}
		b.WriteString("\n")
	}

	heading(&b, fmt.Sprintf("ALERTS (%d)", len(view.Alerts)))
	for _, a := range view.Alerts {
		b.WriteString(alertLine(string(a.Severity), a.Message) + "\n")
	}
	b.WriteString("\n")

	heading(&b, "RECOMMENDATIONS")
	for i, r := range view.Recommendations {
		fmt.Fprintf(&b, "%d. %s\n", i+1, r)
	}
	b.WriteString("\n")

	b.WriteString(heavyRule + "\n")
	b.WriteString(center(Footer) + "\n")
	b.WriteString(heavyRule + "\n")

	return b.String()
}

// CountAlerts re-reads the number of alerts listed in a text report.
func CountAlerts(text string) int {
	n := 0
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(line, alertPrefix) {
			n++
		}
	}
	return n
}

func heading(b *strings.Builder, title string) {
	b.WriteString(lightRule + "\n")
	b.WriteString(title + "\n")
	b.WriteString(lightRule + "\n")
}

func metricsTable(sections []output.Section) string {
	table := uitable.New()
	table.Separator = "  "
	table.MaxColWidth = 50
	for _, sec := range sections {
		for _, it := range sec.Items {
			status := ""
			if it.Status != "" {
				status = "[" + it.Status + "]"
			}
			table.AddRow(Label(sec, it)+":", FormatValue(it), status)
		}
	}
	return table.String()
}

func center(s string) string {
	pad := (width - len([]rune(s))) / 2
	if pad <= 0 {
		return s
	}
	return strings.Repeat(" ", pad) + s
}
