package components

import (
	"diagcheck/ui/tui/styles"

	"github.com/NimbleMarkets/ntcharts/canvas"
	"github.com/NimbleMarkets/ntcharts/linechart"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var _ Component = (*HistoryChart)(nil)

// HistoryChart plots one percentage across the runs of the session.
type HistoryChart struct {
	Title   string
	Chart   linechart.Model
	History []float64
	Width   int
	Height  int
}

func NewHistoryChart(title string, width, height int) *HistoryChart {
	// width, height, minX, maxX, minY, maxY
	lc := linechart.New(width, height, 0, 30, 0, 100)
	return &HistoryChart{
		Title:  title,
		Chart:  lc,
		Width:  width,
		Height: height,
	}
}

func (c *HistoryChart) Init() tea.Cmd {
	return nil
}

// SetHistory replaces the plotted points.
func (c *HistoryChart) SetHistory(h []float64) {
	c.History = h
}

func (c *HistoryChart) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	return c, nil
}

func (c *HistoryChart) Resize(w, h int) {
	c.Width = w
	c.Height = h
	c.Chart.Resize(w, h)
}

func (c *HistoryChart) View() string {
	c.Chart.Clear()
	for i := 0; i < len(c.History)-1; i++ {
		c.Chart.DrawBrailleLine(
			canvas.Float64Point{X: float64(i), Y: c.History[i]},
			canvas.Float64Point{X: float64(i + 1), Y: c.History[i+1]},
		)
	}
	c.Chart.DrawXYAxisAndLabel()

	return styles.CardStyle.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.NewStyle().Bold(true).Render(c.Title),
			c.Chart.View(),
		),
	)
}
