// Package report renders a diagnosis as a text or HTML document and saves it
// under a timestamped file name.
package report

import (
	"fmt"
	"strings"
	"time"

	"diagcheck/internal/output"

	"github.com/dustin/go-humanize"
)

const (
	Title       = "SYSTEM DIAGNOSTIC REPORT"
	Footer      = "End of report"
	timeLayout  = "2006-01-02 15:04:05"
	alertPrefix = "• ["
)

// FormatValue renders an item's value with its unit.
func FormatValue(it output.Item) string {
	switch it.Unit {
	case "%":
		return fmt.Sprintf("%.1f%%", it.Value)
	case "ms":
		return fmt.Sprintf("%.2f ms", it.Value)
	case "GB":
		return fmt.Sprintf("%.2f GB", it.Value)
	case "MB":
		return humanize.CommafWithDigits(it.Value, 2) + " MB"
	}
	if it.Note != "" {
		return it.Note
	}
	return fmt.Sprintf("%.0f", it.Value)
}

// Label names an item in a flat listing. Graded checks already carry the
// metric in their label; informational items borrow the section title.
func Label(sec output.Section, it output.Item) string {
	if it.Status != "" {
		return it.Label
	}
	return sec.Title + " " + it.Label
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return t.Format(timeLayout)
}

// alertLine is the single line an alert occupies in the text report.
func alertLine(severity, message string) string {
	return alertPrefix + severity + "] " + strings.ReplaceAll(message, "\n", " ")
}
