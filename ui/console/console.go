package console

import (
	"fmt"
	"io"
	"strings"

	"diagcheck/internal/output"
	"diagcheck/internal/report"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"

	labelWidth = 22
)

// Print renders the dashboard view to the writer in a compact format.
func Print(w io.Writer, view output.DashboardView) {
	fmt.Fprintf(w, "%s■ %s%s  %s%s%s\n", colorCyan, "DIAGCHECK", colorReset,
		colorFor(view.OverallStatus), view.StatusSummary, colorReset)
	if view.System != "" {
		fmt.Fprintf(w, "  %s @ %s\n", view.Hostname, view.System)
	}

	for _, sec := range view.Sections {
		if len(sec.Items) == 0 {
			continue
		}
		fmt.Fprintf(w, "%s%s%s\n", colorCyan, "─ "+sec.Title, colorReset)

		for _, it := range sec.Items {
			label := []rune(report.Label(sec, it))
			if len(label) > labelWidth-2 {
				label = append(label[:labelWidth-5], []rune("...")...)
			}

			valStr := report.FormatValue(it)
			if r := []rune(valStr); len(r) > 25 {
				valStr = string(r[:22]) + "..."
			}

			// Format: "  Label··········· Value ✓"
			dots := strings.Repeat("·", labelWidth-len(label))
			fmt.Fprintf(w, "  %s%s %12s%s\n", string(label), colorCyan+dots+colorReset, valStr, statusMarker(it.Status))
		}
	}

	if len(view.Alerts) > 0 {
		fmt.Fprintf(w, "%s─ Alerts%s\n", colorCyan, colorReset)
		for _, a := range view.Alerts {
			fmt.Fprintf(w, "  %s%-4s%s %s\n", colorFor(string(a.Severity)), a.Severity, colorReset, a.Message)
		}
	}
	if len(view.Recommendations) > 0 {
		fmt.Fprintf(w, "%s─ Recommendations%s\n", colorCyan, colorReset)
		for _, r := range view.Recommendations {
			fmt.Fprintf(w, "  → %s\n", r)
		}
	}

	// Single-line Summary
	diskStr := ""
	if view.TotalDiskGB > 0 {
		diskStr = fmt.Sprintf(" | Disk: %.0fGB", view.TotalDiskGB)
	}
	fmt.Fprintf(w, "%s─ Summary%s: RAM: %.1fGB%s\n\n", colorCyan, colorReset, view.TotalRAMGB, diskStr)
}

func statusMarker(status string) string {
	color := colorFor(status)
	switch status {
	case "":
		return ""
	case "WARN":
		return fmt.Sprintf(" %s!%s", color, colorReset)
	case "CRIT":
		return fmt.Sprintf(" %sX%s", color, colorReset)
	default:
		return fmt.Sprintf(" %s✓%s", color, colorReset)
	}
}

func colorFor(status string) string {
	switch status {
	case "WARN":
		return colorYellow
	case "CRIT":
		return colorRed
	default:
		return colorGreen
	}
}
