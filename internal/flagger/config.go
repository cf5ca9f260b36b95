package flagger

import "fmt"

// Thresholds defines warning and critical levels for metrics.
// A value above Critical is critical; above Warning and at most Critical is
// a warning. A zero Critical disables the critical band.
type Thresholds struct {
	Warning  float64
	Critical float64
}

type Config struct {
	CPU           Thresholds // %
	RAM           Thresholds // %
	Swap          Thresholds // %
	Disk          Thresholds // %
	DiskLatency   Thresholds // ms per operation
	DBResponse    Thresholds // ms
	DBConnections Thresholds
}

func DefaultConfig() Config {
	return Config{
		CPU:           Thresholds{Warning: 60.0, Critical: 80.0},
		RAM:           Thresholds{Warning: 70.0, Critical: 85.0},
		Swap:          Thresholds{Warning: 10.0, Critical: 50.0},
		Disk:          Thresholds{Warning: 80.0, Critical: 90.0},
		DiskLatency:   Thresholds{Warning: 10.0, Critical: 20.0},
		DBResponse:    Thresholds{Warning: 50.0, Critical: 100.0},
		DBConnections: Thresholds{Warning: 80.0},
	}
}

// Validate rejects bands that overlap or run backwards.
func (c Config) Validate() error {
	named := []struct {
		name string
		t    Thresholds
	}{
		{"CPU", c.CPU},
		{"RAM", c.RAM},
		{"Swap", c.Swap},
		{"Disk", c.Disk},
		{"DiskLatency", c.DiskLatency},
		{"DBResponse", c.DBResponse},
		{"DBConnections", c.DBConnections},
	}
	for _, n := range named {
		if n.t.Warning < 0 || n.t.Critical < 0 {
			return fmt.Errorf("%s thresholds must not be negative", n.name)
		}
		if n.t.Critical > 0 && n.t.Warning > n.t.Critical {
			return fmt.Errorf("%s warning %.1f exceeds critical %.1f", n.name, n.t.Warning, n.t.Critical)
		}
	}
	return nil
}
