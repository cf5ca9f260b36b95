package flagger

import (
	"diagcheck/internal/collector"
	"diagcheck/internal/database"
)

// Finding is one fired rule.
type Finding struct {
	Rule           string
	Severity       Severity
	Value          float64
	Message        string
	Recommendation string
}

// FlaggerService evaluates snapshots against the rule table.
type FlaggerService struct {
	cfg   Config
	rules []Rule
}

func NewFlaggerService(cfg Config) *FlaggerService {
	return &FlaggerService{cfg: cfg, rules: Rules(cfg)}
}

func (fs *FlaggerService) Config() Config {
	return fs.cfg
}

// Flag runs every rule, in table order, and returns the ones that fired.
func (fs *FlaggerService) Flag(os collector.OSSnapshot, db database.DBSnapshot) []Finding {
	in := Input{OS: os, DB: db}

	var findings []Finding
	for _, r := range fs.rules {
		v := r.Metric(in)
		if !r.Band.Contains(v) {
			continue
		}
		findings = append(findings, Finding{
			Rule:           r.Name,
			Severity:       r.Severity,
			Value:          v,
			Message:        r.Message(v),
			Recommendation: r.Recommendation,
		})
	}
	return findings
}
