package engine

import (
	"diagcheck/internal/collector"
	"diagcheck/internal/database"
	"diagcheck/internal/flagger"
)

// Status is the grade of a single check or of a whole diagnosis.
type Status string

const (
	StatusHealthy  Status = "OK"
	StatusWarning  Status = "WARN"
	StatusCritical Status = "CRIT"
)

// rank orders statuses by how bad they are.
func (s Status) rank() int {
	switch s {
	case StatusCritical:
		return 2
	case StatusWarning:
		return 1
	default:
		return 0
	}
}

// Worse returns the more severe of s and o.
func (s Status) Worse(o Status) Status {
	if o.rank() > s.rank() {
		return o
	}
	return s
}

// CheckResult grades one metric for the dashboard.
type CheckResult struct {
	Name   string
	Value  float64
	Status Status
}

func getStatus(value float64, t flagger.Thresholds) Status {
	if t.Critical > 0 && value > t.Critical {
		return StatusCritical
	}
	if value > t.Warning {
		return StatusWarning
	}
	return StatusHealthy
}

// Evaluate grades every metric of the two snapshots on its own, using the
// same thresholds as the rule table.
func Evaluate(os collector.OSSnapshot, db database.DBSnapshot, cfg flagger.Config) []CheckResult {
	result := []CheckResult{
		{Name: "CPU Usage", Value: os.CPUPercent, Status: getStatus(os.CPUPercent, cfg.CPU)},
		{Name: "Memory Usage", Value: os.MemoryPercent, Status: getStatus(os.MemoryPercent, cfg.RAM)},
		{Name: "Swap Usage", Value: os.SwapPercent, Status: getStatus(os.SwapPercent, cfg.Swap)},
		{Name: "Disk Usage", Value: os.DiskPercent, Status: getStatus(os.DiskPercent, cfg.Disk)},
		{Name: "Disk Latency", Value: os.DiskLatencyMS, Status: getStatus(os.DiskLatencyMS, cfg.DiskLatency)},
	}

	// Database
	if db.Status != database.StatusConnected {
		return append(result, CheckResult{Name: "DB Status", Value: 0, Status: StatusCritical})
	}
	result = append(result,
		CheckResult{Name: "DB Status", Value: 1, Status: StatusHealthy},
		CheckResult{Name: "DB Response", Value: db.ResponseTimeMS, Status: getStatus(db.ResponseTimeMS, cfg.DBResponse)},
		CheckResult{
			Name:   "DB Connections",
			Value:  float64(db.ActiveConnections),
			Status: getStatus(float64(db.ActiveConnections), cfg.DBConnections),
		},
	)

	slowStatus := StatusHealthy
	if len(db.SlowQueries) > 0 {
		slowStatus = StatusCritical
	}
	result = append(result, CheckResult{Name: "Slow Queries", Value: float64(len(db.SlowQueries)), Status: slowStatus})

	return result
}
