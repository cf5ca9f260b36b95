package views

import (
	"diagcheck/ui/tui/state"
)

func RenderMenu(s state.AppState, width, height, cursor int, animCursor float64, mouseX, mouseY int, spinnerView string) string {
	v := MenuView{}
	return v.Render(s, ViewProps{
		Width:       width,
		Height:      height,
		MenuCursor:  cursor,
		AnimCursor:  animCursor,
		MouseX:      mouseX,
		MouseY:      mouseY,
		SpinnerView: spinnerView,
	})
}

func RenderDashboard(s state.AppState, spinnerView string, chartViews ...string) string {
	v := DashboardView{}
	return v.Render(s, ViewProps{
		SpinnerView: spinnerView,
		ChartViews:  chartViews,
	})
}

func RenderReportConsole(s state.AppState, content string, width, height, scrollY int) string {
	v := ConsoleView{Content: content}
	return v.Render(s, ViewProps{
		Width:   width,
		Height:  height,
		ScrollY: scrollY,
	})
}
