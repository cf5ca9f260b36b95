package engine

import (
	"fmt"
	"time"

	"diagcheck/internal/collector"
	"diagcheck/internal/database"
	"diagcheck/internal/flagger"
)

const (
	NoAlertsMessage         = "No alerts detected"
	OperatingNormallyAdvice = "System operating normally"
)

// Alert is one graded observation. The default entry of a quiet diagnosis
// carries flagger.SeverityInfo.
type Alert struct {
	Severity flagger.Severity `json:"severity"`
	Message  string           `json:"message"`
}

// Diagnosis is the analyzer's verdict over one pair of snapshots.
// Alerts and Recommendations are parallel lists in rule order; neither is
// ever empty.
type Diagnosis struct {
	Alerts          []Alert              `json:"alerts"`
	Recommendations []string             `json:"recommendations"`
	OverallStatus   Status               `json:"overall_status"`
	Checks          []CheckResult        `json:"checks"`
	OS              collector.OSSnapshot `json:"os"`
	DB              database.DBSnapshot  `json:"db"`
	TakenAt         time.Time            `json:"taken_at"`
}

// CountBySeverity counts the alerts of one severity.
func (d Diagnosis) CountBySeverity(sev flagger.Severity) int {
	n := 0
	for _, a := range d.Alerts {
		if a.Severity == sev {
			n++
		}
	}
	return n
}

// Summary is the overall status line shown to users.
func (s Status) Summary() string {
	switch s {
	case StatusCritical:
		return "CRITICAL - immediate intervention required"
	case StatusWarning:
		return "WARNING - attention recommended"
	default:
		return "OK - system operating normally"
	}
}

// AnalysisError wraps a fault raised while evaluating rules.
type AnalysisError struct {
	Err error
}

func (e *AnalysisError) Error() string {
	return "analysis error: " + e.Err.Error()
}

func (e *AnalysisError) Unwrap() error {
	return e.Err
}

// Flagger produces findings in rule order.
type Flagger interface {
	Flag(os collector.OSSnapshot, db database.DBSnapshot) []flagger.Finding
}

// Analyzer turns snapshots into a Diagnosis. It holds no state between calls.
type Analyzer struct {
	flagger Flagger
	cfg     flagger.Config
}

func NewAnalyzer(cfg flagger.Config) (*Analyzer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid thresholds: %w", err)
	}
	return &Analyzer{flagger: flagger.NewFlaggerService(cfg), cfg: cfg}, nil
}

// NewAnalyzerWithFlagger uses f in place of the threshold table. cfg still
// grades the per-metric checks.
func NewAnalyzerWithFlagger(f Flagger, cfg flagger.Config) *Analyzer {
	return &Analyzer{flagger: f, cfg: cfg}
}

var defaultAnalyzer = &Analyzer{
	flagger: flagger.NewFlaggerService(flagger.DefaultConfig()),
	cfg:     flagger.DefaultConfig(),
}

// Analyze grades the snapshots with the default thresholds.
func Analyze(os collector.OSSnapshot, db database.DBSnapshot) (Diagnosis, error) {
	return defaultAnalyzer.Analyze(os, db)
}

// Analyze is pure: the same snapshots always give the same Diagnosis.
func (a *Analyzer) Analyze(os collector.OSSnapshot, db database.DBSnapshot) (d Diagnosis, err error) {
	defer func() {
		if r := recover(); r != nil {
			d = Diagnosis{}
			err = &AnalysisError{Err: fmt.Errorf("rule evaluation panicked: %v", r)}
		}
	}()

	findings := a.flagger.Flag(os, db)

	d = Diagnosis{
		Alerts:          make([]Alert, 0, len(findings)),
		Recommendations: make([]string, 0, len(findings)),
		OverallStatus:   StatusHealthy,
		Checks:          Evaluate(os, db, a.cfg),
		OS:              os,
		DB:              db,
	}

	for _, f := range findings {
		d.Alerts = append(d.Alerts, Alert{Severity: f.Severity, Message: f.Message})
		if f.Recommendation != "" {
			d.Recommendations = append(d.Recommendations, f.Recommendation)
		}
		switch f.Severity {
		case flagger.SeverityCritical:
			d.OverallStatus = d.OverallStatus.Worse(StatusCritical)
		case flagger.SeverityWarning:
			d.OverallStatus = d.OverallStatus.Worse(StatusWarning)
		}
	}

	if len(d.Alerts) == 0 {
		d.Alerts = append(d.Alerts, Alert{Severity: flagger.SeverityInfo, Message: NoAlertsMessage})
	}
	if len(d.Recommendations) == 0 {
		d.Recommendations = append(d.Recommendations, OperatingNormallyAdvice)
	}

	return d, nil
}
