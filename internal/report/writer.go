package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"diagcheck/internal/output"
)

const filePrefix = "relatorio_diagnostico_"

// FileName is the report name for a save at t, e.g.
// relatorio_diagnostico_20240309_140507.txt.
func FileName(t time.Time, ext string) string {
	return filePrefix + t.Format("20060102_150405") + "." + ext
}

// Writer saves reports into Dir.
type Writer struct {
	Dir string
	Now func() time.Time
}

func NewWriter(dir string) *Writer {
	if dir == "" {
		dir = "."
	}
	return &Writer{Dir: dir, Now: time.Now}
}

// SaveText writes the text report and returns its path.
func (w *Writer) SaveText(view output.DashboardView) (string, error) {
	return w.save("txt", Text(view))
}

// SaveHTML writes the HTML report and returns its path.
func (w *Writer) SaveHTML(view output.DashboardView) (string, error) {
	body, err := HTML(view)
	if err != nil {
		return "", err
	}
	return w.save("html", body)
}

// Save writes the formats named by format: txt, html or both.
func (w *Writer) Save(view output.DashboardView, format string) ([]string, error) {
	var paths []string
	if format == "txt" || format == "both" {
		p, err := w.SaveText(view)
		if err != nil {
			return paths, err
		}
		paths = append(paths, p)
	}
	if format == "html" || format == "both" {
		p, err := w.SaveHTML(view)
		if err != nil {
			return paths, err
		}
		paths = append(paths, p)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("unknown report format %q", format)
	}
	return paths, nil
}

func (w *Writer) save(ext, body string) (string, error) {
	now := time.Now
	if w.Now != nil {
		now = w.Now
	}
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}
	path := filepath.Join(w.Dir, FileName(now(), ext))
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}
