package state

import (
	"time"

	"diagcheck/internal/engine"
)

type Page int

const (
	PageMenu Page = iota
	PageDashboard
	PageConsole // "Report Console"
)

// Status line texts.
const (
	StatusWaiting  = "Waiting"
	StatusRunning  = "Running diagnostic..."
	StatusComplete = "Diagnostic complete"
	StatusFailed   = "Run failed: "
)

// HistorySize is how many runs the charts keep.
const HistorySize = 31

// AppState holds what the front-end knows about the current session.
type AppState struct {
	Last        *engine.Diagnosis
	Running     bool
	Status      string
	Err         error
	LastRun     time.Time
	CPUHistory  []float64
	MemHistory  []float64
	SavedFiles  []string
	CurrentPage Page
}

// Record appends a finished run to the chart histories.
func (s *AppState) Record(d engine.Diagnosis) {
	s.CPUHistory = pushBounded(s.CPUHistory, d.OS.CPUPercent)
	s.MemHistory = pushBounded(s.MemHistory, d.OS.MemoryPercent)
}

func pushBounded(h []float64, v float64) []float64 {
	h = append(h, v)
	if len(h) > HistorySize {
		h = h[1:]
	}
	return h
}
