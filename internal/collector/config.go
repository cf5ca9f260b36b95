package collector

import "time"

// CollectorConfig contains configurable parameters for the OS sampler.
// Use DefaultCollectorConfig() to get sensible defaults, then override as needed.
type CollectorConfig struct {
	// Sampling windows
	CPUSampleInterval time.Duration // Blocking window for CPU percent (default: 1s)
	DiskLatencyWindow time.Duration // Gap between the two disk I/O counter reads (default: 100ms)

	// Targets
	DiskPath string // Mount whose usage is reported (default: "/")
}

// DefaultCollectorConfig returns a CollectorConfig with sensible defaults.
func DefaultCollectorConfig() CollectorConfig {
	return CollectorConfig{
		CPUSampleInterval: 1 * time.Second,
		DiskLatencyWindow: 100 * time.Millisecond,
		DiskPath:          "/",
	}
}

// WithCPUSampleInterval returns a copy of the config with modified CPU sampling window.
func (c CollectorConfig) WithCPUSampleInterval(d time.Duration) CollectorConfig {
	c.CPUSampleInterval = d
	return c
}

// WithDiskLatencyWindow returns a copy of the config with modified disk latency window.
func (c CollectorConfig) WithDiskLatencyWindow(d time.Duration) CollectorConfig {
	c.DiskLatencyWindow = d
	return c
}

// WithDiskPath returns a copy of the config with modified disk mount path.
func (c CollectorConfig) WithDiskPath(path string) CollectorConfig {
	c.DiskPath = path
	return c
}

// Validate checks if the configuration is valid and returns an error if not.
func (c CollectorConfig) Validate() error {
	if c.CPUSampleInterval <= 0 {
		return &ConfigError{Field: "CPUSampleInterval", Message: "must be positive"}
	}
	if c.DiskLatencyWindow <= 0 {
		return &ConfigError{Field: "DiskLatencyWindow", Message: "must be positive"}
	}
	if c.DiskPath == "" {
		return &ConfigError{Field: "DiskPath", Message: "must not be empty"}
	}
	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error: " + e.Field + " " + e.Message
}
