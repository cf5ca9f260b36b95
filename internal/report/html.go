package report

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"diagcheck/internal/output"
)

var htmlFuncs = template.FuncMap{
	"value":  FormatValue,
	"label":  Label,
	"time":   formatTime,
	"status": statusClass,
	"isDB":   func(sec output.Section) bool { return sec.ID == output.SectionDatabase },
}

var htmlTemplate = template.Must(template.New("report").Funcs(htmlFuncs).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
  body { font-family: -apple-system, "Segoe UI", Roboto, sans-serif; background: #f4f6f8; color: #222; margin: 0; padding: 24px; }
  .card { background: #fff; border-radius: 8px; box-shadow: 0 1px 3px rgba(0,0,0,.12); padding: 16px 24px; margin: 0 auto 16px; max-width: 860px; }
  h1 { margin: 0 0 8px; font-size: 24px; }
  h2 { font-size: 16px; margin: 0 0 12px; text-transform: uppercase; letter-spacing: .05em; color: #555; }
  table { width: 100%; border-collapse: collapse; }
  td { padding: 6px 8px; border-bottom: 1px solid #eee; }
  td.value { text-align: right; font-variant-numeric: tabular-nums; }
  .meta { color: #666; }
  .badge { display: inline-block; padding: 2px 8px; border-radius: 4px; font-size: 12px; font-weight: 600; color: #fff; }
  .ok { background: #2e7d32; }
  .warn { background: #ef8f00; }
  .crit { background: #c62828; }
  .info { background: #607d8b; }
  .overall { font-size: 18px; padding: 12px 16px; border-radius: 6px; color: #fff; }
  ul.alerts { list-style: none; padding: 0; margin: 0; }
  ul.alerts li { padding: 6px 0; }
  code { font-size: 12px; background: #f1f1f1; padding: 2px 4px; border-radius: 3px; }
  footer { text-align: center; color: #888; font-size: 12px; }
</style>
</head>
<body>
<div class="card">
  <h1>{{.Title}}</h1>
  <div class="meta">Generated: {{time .View.GeneratedAt}}</div>
  <div class="meta">System: {{.View.System}}{{with .View.Hostname}} &middot; Host: {{.}}{{end}}</div>
</div>
<div class="card">
  <div class="overall {{status .View.OverallStatus}}">OVERALL STATUS: {{.View.StatusSummary}}</div>
</div>
<div class="card">
  <h2>Operating system metrics</h2>
  <table>
  {{- range .View.Sections}}{{if not (isDB .)}}{{$sec := .}}{{range .Items}}
    <tr><td>{{label $sec .}}</td><td class="value">{{value .}}</td><td>{{with .Status}}<span class="badge {{status .}}">{{.}}</span>{{end}}</td></tr>
  {{- end}}{{end}}{{end}}
  </table>
</div>
<div class="card">
  <h2>Database metrics</h2>
  <table>
  {{- range .View.Sections}}{{if isDB .}}{{$sec := .}}{{range .Items}}
    <tr><td>{{label $sec .}}</td><td class="value">{{value .}}</td><td>{{with .Status}}<span class="badge {{status .}}">{{.}}</span>{{end}}</td></tr>
  {{- end}}{{end}}{{end}}
  </table>
</div>
{{- if .View.SlowQueries}}
<div class="card">
  <h2>Slow queries ({{len .View.SlowQueries}})</h2>
  <table>
  {{- range .View.SlowQueries}}
    <tr><td>#{{.ID}} {{.User}}@{{.Database}}</td><td class="value">{{.RunningSeconds}}s</td><td>{{.State}}</td></tr>
    <tr><td colspan="3"><code>{{.Query}}</code></td></tr>
  {{- end}}
  </table>
</div>
{{- end}}
<div class="card">
  <h2>Alerts ({{len .View.Alerts}})</h2>
  <ul class="alerts">
  {{- range .View.Alerts}}
    <li class="alert"><span class="badge {{status (print .Severity)}}">{{.Severity}}</span> {{.Message}}</li>
  {{- end}}
  </ul>
</div>
<div class="card">
  <h2>Recommendations</h2>
  <ol>
  {{- range .View.Recommendations}}
    <li>{{.}}</li>
  {{- end}}
  </ol>
</div>
<footer>{{.Footer}}</footer>
</body>
</html>
`))

type htmlData struct {
	Title  string
	Footer string
	View   output.DashboardView
}

// HTML renders the styled report.
func HTML(view output.DashboardView) (string, error) {
	var buf bytes.Buffer
	if err := htmlTemplate.Execute(&buf, htmlData{Title: Title, Footer: Footer, View: view}); err != nil {
		return "", fmt.Errorf("render html report: %w", err)
	}
	return buf.String(), nil
}

// statusClass maps a status or severity to its CSS class.
func statusClass(s string) string {
	switch strings.ToUpper(s) {
	case "CRIT":
		return "crit"
	case "WARN":
		return "warn"
	case "OK":
		return "ok"
	default:
		return "info"
	}
}
