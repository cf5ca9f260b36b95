package flagger

import (
	"fmt"
	"math"

	"diagcheck/internal/collector"
	"diagcheck/internal/database"
)

// Severity grades a finding.
type Severity string

const (
	SeverityInfo     Severity = "INFO"
	SeverityWarning  Severity = "WARN"
	SeverityCritical Severity = "CRIT"
)

// Input is what every rule reads from.
type Input struct {
	OS collector.OSSnapshot
	DB database.DBSnapshot
}

// Band is the half-open range (Min, Max].
type Band struct {
	Min float64
	Max float64
}

func (b Band) Contains(v float64) bool {
	return v > b.Min && v <= b.Max
}

func above(min float64) Band {
	return Band{Min: min, Max: math.Inf(1)}
}

// Rule is one row of the threshold table.
type Rule struct {
	Name           string
	Metric         func(Input) float64
	Band           Band
	Severity       Severity
	Message        func(v float64) string
	Recommendation string
}

// Rules builds the table in evaluation order. Bands of one metric never
// overlap, so at most one rule per metric fires.
func Rules(cfg Config) []Rule {
	var rules []Rule

	rules = append(rules, banded("cpu", cpuPercent, cfg.CPU,
		func(v float64) string {
			return fmt.Sprintf("CPU usage very high: %.1f%% (> %.0f%%)", v, cfg.CPU.Critical)
		},
		"Check running processes and stop the unnecessary ones",
		func(v float64) string {
			return fmt.Sprintf("CPU usage high: %.1f%% (> %.0f%%)", v, cfg.CPU.Warning)
		},
		"Monitor CPU activity to avoid spikes",
	)...)

	rules = append(rules, banded("memory", memoryPercent, cfg.RAM,
		func(v float64) string {
			return fmt.Sprintf("Memory usage critical: %.1f%% (> %.0f%%)", v, cfg.RAM.Critical)
		},
		"Free memory by closing unnecessary programs or add more RAM",
		func(v float64) string {
			return fmt.Sprintf("Memory usage high: %.1f%% (> %.0f%%)", v, cfg.RAM.Warning)
		},
		"Consider adding RAM to avoid slowdowns",
	)...)

	rules = append(rules, banded("swap", swapPercent, cfg.Swap,
		func(v float64) string {
			return fmt.Sprintf("Swap usage very high: %.1f%% (> %.0f%%)", v, cfg.Swap.Critical)
		},
		"Add RAM urgently, the disk is being used as memory",
		func(v float64) string {
			return fmt.Sprintf("Swap usage detected: %.1f%% (> %.0f%%)", v, cfg.Swap.Warning)
		},
		"The system is paging to disk, which degrades performance",
	)...)

	rules = append(rules, banded("disk", diskPercent, cfg.Disk,
		func(v float64) string {
			return fmt.Sprintf("Disk space critical: %.1f%% used (> %.0f%%)", v, cfg.Disk.Critical)
		},
		"Free disk space immediately to avoid system failures",
		func(v float64) string {
			return fmt.Sprintf("Disk space low: %.1f%% used (> %.0f%%)", v, cfg.Disk.Warning)
		},
		"Clean temporary and unnecessary files to free space",
	)...)

	rules = append(rules, banded("disk_latency", diskLatency, cfg.DiskLatency,
		func(v float64) string {
			return fmt.Sprintf("Disk latency very high (%.2fms)", v)
		},
		"Disk I/O is struggling, check the disk's health or replace it",
		func(v float64) string {
			return fmt.Sprintf("Disk latency elevated (%.2fms)", v)
		},
		"Disk reads and writes are delayed, monitor disk performance",
	)...)

	rules = append(rules, Rule{
		Name:           "db_disconnected",
		Metric:         dbDisconnected,
		Band:           above(0),
		Severity:       SeverityCritical,
		Message:        func(float64) string { return "Database disconnected" },
		Recommendation: "Reconnect to the database to monitor it",
	})

	rules = append(rules, banded("db_response", dbResponse, cfg.DBResponse,
		func(v float64) string {
			return fmt.Sprintf("Database response time very high (%.2fms)", v)
		},
		"The database is slow, check active queries and indexes",
		func(v float64) string {
			return fmt.Sprintf("Database response time elevated (%.2fms)", v)
		},
		"Monitor database performance",
	)...)

	rules = append(rules, banded("db_connections", dbConnections, cfg.DBConnections,
		func(v float64) string {
			return fmt.Sprintf("Too many active connections (%.0f)", v)
		},
		"Check whether too many clients are connected at once",
		func(v float64) string {
			return fmt.Sprintf("Many active connections (%.0f)", v)
		},
		"Check whether too many clients are connected at once",
	)...)

	rules = append(rules, Rule{
		Name:           "slow_queries",
		Metric:         slowQueries,
		Band:           above(0),
		Severity:       SeverityCritical,
		Message:        func(v float64) string { return fmt.Sprintf("%.0f slow query(s) detected", v) },
		Recommendation: "Optimize the slow queries, add indexes or rewrite them",
	})

	return rules
}

// banded expands one metric's thresholds into its critical and warning rows.
func banded(name string, metric func(Input) float64, t Thresholds,
	critMsg func(float64) string, critRec string,
	warnMsg func(float64) string, warnRec string,
) []Rule {
	if t.Critical <= 0 {
		return []Rule{{
			Name:           name + "_warning",
			Metric:         metric,
			Band:           above(t.Warning),
			Severity:       SeverityWarning,
			Message:        warnMsg,
			Recommendation: warnRec,
		}}
	}
	return []Rule{
		{
			Name:           name + "_critical",
			Metric:         metric,
			Band:           above(t.Critical),
			Severity:       SeverityCritical,
			Message:        critMsg,
			Recommendation: critRec,
		},
		{
			Name:           name + "_warning",
			Metric:         metric,
			Band:           Band{Min: t.Warning, Max: t.Critical},
			Severity:       SeverityWarning,
			Message:        warnMsg,
			Recommendation: warnRec,
		},
	}
}

func cpuPercent(in Input) float64    { return in.OS.CPUPercent }
func memoryPercent(in Input) float64 { return in.OS.MemoryPercent }
func swapPercent(in Input) float64   { return in.OS.SwapPercent }
func diskPercent(in Input) float64   { return in.OS.DiskPercent }
func diskLatency(in Input) float64   { return in.OS.DiskLatencyMS }
func dbResponse(in Input) float64    { return in.DB.ResponseTimeMS }
func dbConnections(in Input) float64 { return float64(in.DB.ActiveConnections) }
func slowQueries(in Input) float64   { return float64(len(in.DB.SlowQueries)) }

func dbDisconnected(in Input) float64 {
	if in.DB.Status == database.StatusDisconnected {
		return 1
	}
	return 0
}
