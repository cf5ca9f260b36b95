package database

// DBStatus is the connectivity state of the monitored server.
type DBStatus string

const (
	StatusConnected    DBStatus = "Connected"
	StatusDisconnected DBStatus = "Disconnected"
)

// SlowQuery is a session observed running past the slow threshold.
type SlowQuery struct {
	ID             int64  `json:"id"`
	User           string `json:"user"`
	Database       string `json:"database"`
	Command        string `json:"command"`
	RunningSeconds int64  `json:"running_seconds"`
	State          string `json:"state"`
	Query          string `json:"query"`
}

// DBSnapshot is a point-in-time reading of database health.
type DBSnapshot struct {
	Status            DBStatus    `json:"status"`
	Version           string      `json:"version"`
	ActiveConnections int64       `json:"active_connections"`
	ResponseTimeMS    float64     `json:"response_time_ms"`
	UptimeSeconds     int64       `json:"uptime_seconds"`
	TableCount        int64       `json:"table_count"`
	SizeMB            float64     `json:"size_mb"`
	SlowQueries       []SlowQuery `json:"slow_queries"`
}

// DisconnectedSnapshot is the snapshot of a run with no live database.
func DisconnectedSnapshot() DBSnapshot {
	return DBSnapshot{
		Status:      StatusDisconnected,
		Version:     "N/A",
		SlowQueries: []SlowQuery{},
	}
}

// SamplerConfig tunes the slow-query scan.
type SamplerConfig struct {
	SlowQueryThresholdSeconds int64 // Sessions must run strictly longer than this (default: 5)
	SlowQueryScanLimit        int   // Rows pulled from the process list (default: 10)
	QueryTextLimit            int   // Characters kept from each statement (default: 100)
}

func DefaultSamplerConfig() SamplerConfig {
	return SamplerConfig{
		SlowQueryThresholdSeconds: 5,
		SlowQueryScanLimit:        10,
		QueryTextLimit:            100,
	}
}
