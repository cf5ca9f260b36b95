package tui

import (
	"context"
	"errors"
	"time"

	"diagcheck/internal/engine"
	"diagcheck/internal/output"
	"diagcheck/internal/report"
	"diagcheck/ui/tui/components"
	"diagcheck/ui/tui/state"
	"diagcheck/ui/tui/views"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
	"github.com/sirupsen/logrus"
)

var errNoDiagnosis = errors.New("no diagnosis to save")

// Runner runs one diagnostic against the session.
type Runner interface {
	RunDiagnosis(ctx context.Context, sess *output.Session) (engine.Diagnosis, error)
}

// ReportSaver writes report files.
type ReportSaver interface {
	SaveText(view output.DashboardView) (string, error)
	SaveHTML(view output.DashboardView) (string, error)
}

// MainModel is the Bubble Tea Model acting as the Controller
type MainModel struct {
	ctx            context.Context
	runner         Runner
	session        *output.Session
	saver          ReportSaver
	log            *logrus.Entry
	state          state.AppState
	spinner        spinner.Model
	cpuChart       *components.HistoryChart
	memChart       *components.HistoryChart
	menuCursor     int
	animCursor     float64
	velocity       float64 // Physics velocity
	spring         harmonica.Spring
	consoleScrollY int
	mouseX         int
	mouseY         int
	quitting       bool
	width          int
	height         int
}

// Messages
type AnimateMsg time.Time

// DiagnosisDoneMsg carries the outcome of a background run.
type DiagnosisDoneMsg struct {
	Diagnosis engine.Diagnosis
	Err       error
}

// ReportSavedMsg carries the outcome of a report save.
type ReportSavedMsg struct {
	Path string
	Err  error
}

func InitialModel(ctx context.Context, runner Runner, sess *output.Session, saver ReportSaver) MainModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	// Increased frequency (12.0) for faster response and damping (0.9) to prevent overshoot
	spring := harmonica.NewSpring(harmonica.FPS(60), 12.0, 0.9)

	if sess == nil {
		sess = &output.Session{}
	}

	return MainModel{
		ctx:      ctx,
		runner:   runner,
		session:  sess,
		saver:    saver,
		log:      logrus.WithField("component", "tui"),
		spinner:  s,
		cpuChart: components.NewHistoryChart("CPU % per run", 30, 10),
		memChart: components.NewHistoryChart("Memory % per run", 30, 10),
		spring:   spring,
		state: state.AppState{
			Status:      state.StatusWaiting,
			CurrentPage: state.PageMenu,
		},
	}
}

func (m *MainModel) Init() tea.Cmd {
	zone.NewGlobal()
	return tea.Batch(
		m.spinner.Tick,
		animateCmd(),
	)
}

// Commands
func animateCmd() tea.Cmd {
	return tea.Tick(time.Millisecond*16, func(t time.Time) tea.Msg {
		return AnimateMsg(t)
	})
}

func runDiagnosisCmd(ctx context.Context, r Runner, sess *output.Session) tea.Cmd {
	return func() tea.Msg {
		d, err := r.RunDiagnosis(ctx, sess)
		return DiagnosisDoneMsg{Diagnosis: d, Err: err}
	}
}

func saveReportCmd(s ReportSaver, view output.DashboardView, html bool) tea.Cmd {
	return func() tea.Msg {
		var (
			path string
			err  error
		)
		if html {
			path, err = s.SaveHTML(view)
		} else {
			path, err = s.SaveText(view)
		}
		return ReportSavedMsg{Path: path, Err: err}
	}
}

func (m *MainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case AnimateMsg:
		return m.handleAnimateMsg(msg)

	case tea.WindowSizeMsg:
		return m.handleWindowSizeMsg(msg)

	case DiagnosisDoneMsg:
		return m.handleDiagnosisDoneMsg(msg)

	case ReportSavedMsg:
		return m.handleReportSavedMsg(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.MouseMsg:
		return m.handleMouseMsg(msg)
	}

	return m, nil
}

func (m *MainModel) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	case "r":
		return m, m.startRun()
	}

	if m.state.CurrentPage == state.PageMenu {
		switch msg.String() {
		case "up", "k":
			if m.menuCursor > 0 {
				m.menuCursor--
			}
		case "down", "j":
			if m.menuCursor < len(views.MenuOptions)-1 {
				m.menuCursor++
			}
		case "enter":
			return m, m.activate(m.menuCursor)
		}
		return m, nil
	}

	if m.state.CurrentPage == state.PageConsole {
		switch msg.String() {
		case "up", "k":
			if m.consoleScrollY > 0 {
				m.consoleScrollY--
			}
		case "down", "j":
			m.consoleScrollY++
		}
	}

	if msg.String() == "b" || msg.String() == "esc" || msg.String() == "backspace" {
		m.state.CurrentPage = state.PageMenu
		m.consoleScrollY = 0
		return m, nil
	}

	return m, nil
}

func (m *MainModel) activate(cursor int) tea.Cmd {
	switch cursor {
	case views.MenuRun:
		m.state.CurrentPage = state.PageDashboard
		return m.startRun()
	case views.MenuDashboard:
		m.state.CurrentPage = state.PageDashboard
	case views.MenuSaveText:
		return m.save(false)
	case views.MenuSaveHTML:
		return m.save(true)
	case views.MenuConsole:
		m.state.CurrentPage = state.PageConsole
	}
	return nil
}

// startRun launches a background run unless one is already in flight.
func (m *MainModel) startRun() tea.Cmd {
	if m.state.Running {
		m.log.Debug("run request ignored, a run is in flight")
		return nil
	}
	m.state.Running = true
	m.state.Status = state.StatusRunning
	m.state.Err = nil
	return runDiagnosisCmd(m.ctx, m.runner, m.session)
}

func (m *MainModel) save(html bool) tea.Cmd {
	if m.state.Last == nil {
		m.state.Err = errNoDiagnosis
		m.state.Status = "Nothing to save: run a diagnostic first"
		return nil
	}
	return saveReportCmd(m.saver, output.BuildDashboard(*m.state.Last), html)
}

func (m *MainModel) handleDiagnosisDoneMsg(msg DiagnosisDoneMsg) (tea.Model, tea.Cmd) {
	m.state.Running = false
	if msg.Err != nil {
		m.state.Err = msg.Err
		m.state.Status = state.StatusFailed + msg.Err.Error()
		m.log.WithError(msg.Err).Warn("diagnostic run failed")
		return m, nil
	}

	d := msg.Diagnosis
	m.state.Last = &d
	m.state.Err = nil
	m.state.Status = state.StatusComplete
	m.state.LastRun = d.TakenAt
	m.state.Record(d)
	m.cpuChart.SetHistory(m.state.CPUHistory)
	m.memChart.SetHistory(m.state.MemHistory)
	return m, nil
}

func (m *MainModel) handleReportSavedMsg(msg ReportSavedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.state.Err = msg.Err
		m.state.Status = "Save failed: " + msg.Err.Error()
		m.log.WithError(msg.Err).Error("report save failed")
		return m, nil
	}
	m.state.Err = nil
	m.state.SavedFiles = append(m.state.SavedFiles, msg.Path)
	m.state.Status = "Report saved: " + msg.Path
	m.log.WithField("file", msg.Path).Info("report saved")
	return m, nil
}

func (m *MainModel) handleAnimateMsg(msg AnimateMsg) (tea.Model, tea.Cmd) {
	var v float64 = m.velocity
	m.animCursor, v = m.spring.Update(m.animCursor, float64(m.menuCursor), v)
	m.velocity = v
	return m, animateCmd()
}

func (m *MainModel) handleWindowSizeMsg(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	newW := msg.Width/2 - 6
	if newW > 10 {
		m.cpuChart.Resize(newW, 10)
		m.memChart.Resize(newW, 10)
	}
	return m, nil
}

func (m *MainModel) handleMouseMsg(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	m.mouseX = msg.X
	m.mouseY = msg.Y

	if msg.Action == tea.MouseActionRelease && m.state.CurrentPage == state.PageMenu {
		for i := range views.MenuOptions {
			if zone.Get(views.MenuZoneID(i)).InBounds(msg) {
				m.menuCursor = i
				return m, m.activate(i)
			}
		}
	}
	return m, nil
}

func (m *MainModel) reportText() string {
	if m.state.Last == nil {
		return ""
	}
	return report.Text(output.BuildDashboard(*m.state.Last))
}

func (m *MainModel) View() string {
	if m.quitting {
		return "Bye!\n"
	}

	spin := ""
	if m.state.Running {
		spin = m.spinner.View()
	}

	switch m.state.CurrentPage {
	case state.PageDashboard:
		var charts []string
		if len(m.state.CPUHistory) > 1 {
			charts = append(charts, m.cpuChart.View(), m.memChart.View())
		}
		return views.RenderDashboard(m.state, spin, charts...)
	case state.PageConsole:
		return views.RenderReportConsole(m.state, m.reportText(), m.width, m.height, m.consoleScrollY)
	default:
		return views.RenderMenu(m.state, m.width, m.height, m.menuCursor, m.animCursor, m.mouseX, m.mouseY, spin)
	}
}

// Start runs the TUI until the user quits.
func Start(ctx context.Context, runner Runner, sess *output.Session, saver ReportSaver) error {
	m := InitialModel(ctx, runner, sess, saver)
	p := tea.NewProgram(
		&m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	_, err := p.Run()
	return err
}
