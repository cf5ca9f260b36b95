package config

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"diagcheck/internal/database/relational"

	"github.com/sirupsen/logrus"
)

func TestParse_Defaults(t *testing.T) {
	t.Setenv("DIAGCHECK_DB_DRIVER", "")

	c, err := Parse("diagcheck", nil)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	switch {
	case c.DBDriver != DriverNone:
		t.Errorf("DBDriver = %s, want none", c.DBDriver)
	case c.DBPort != 3306:
		t.Errorf("DBPort = %d, want 3306", c.DBPort)
	case c.DBName != "mysql":
		t.Errorf("DBName = %s, want mysql", c.DBName)
	case c.CPUSampleInterval != time.Second:
		t.Errorf("CPUSampleInterval = %v", c.CPUSampleInterval)
	case c.DiskLatencyWindow != 100*time.Millisecond:
		t.Errorf("DiskLatencyWindow = %v", c.DiskLatencyWindow)
	case c.ReportFormat != "txt" || c.ReportDir != ".":
		t.Errorf("unexpected report settings %s / %s", c.ReportFormat, c.ReportDir)
	}
}

func TestParse_EnvironmentFallback(t *testing.T) {
	t.Setenv("DIAGCHECK_DB_DRIVER", "mysql")
	t.Setenv("DIAGCHECK_DB_USER", "monitor")
	t.Setenv("DIAGCHECK_DB_PORT", "3307")

	c, err := Parse("diagcheck", []string{"--db-host", "db.internal"})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if c.DBDriver != DriverMySQL || c.DBUser != "monitor" || c.DBPort != 3307 || c.DBHost != "db.internal" {
		t.Errorf("unexpected config %+v", c)
	}

	conn := c.ConnConfig()
	if conn.Host != "db.internal" || conn.Port != 3307 || conn.User != "monitor" {
		t.Errorf("unexpected conn config %+v", conn)
	}
}

func TestParse_Invalid(t *testing.T) {
	t.Setenv("DIAGCHECK_DB_DRIVER", "")
	t.Setenv("DIAGCHECK_DB_USER", "")

	tests := []struct {
		name string
		args []string
	}{
		{"unknown driver", []string{"--db-driver", "oracle"}},
		{"mysql without user", []string{"--db-driver", "mysql"}},
		{"duckdb without path", []string{"--db-driver", "duckdb"}},
		{"bad report format", []string{"--report-format", "pdf"}},
		{"bad log level", []string{"--log-level", "loud"}},
		{"zero cpu interval", []string{"--cpu-interval", "0s"}},
		{"port out of range", []string{"--db-port", "0"}},
		{"unknown flag", []string{"--nope"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse("diagcheck", tt.args); err == nil {
				t.Errorf("Parse(%v) expected error", tt.args)
			}
		})
	}
}

func TestCollectorConfig(t *testing.T) {
	c := &Config{CPUSampleInterval: 2 * time.Second, DiskLatencyWindow: 50 * time.Millisecond, DiskPath: "/data"}
	cc := c.CollectorConfig()
	if cc.CPUSampleInterval != 2*time.Second || cc.DiskLatencyWindow != 50*time.Millisecond || cc.DiskPath != "/data" {
		t.Errorf("unexpected collector config %+v", cc)
	}
}

func TestOpenDatabase(t *testing.T) {
	ctx := context.Background()

	none := &Config{DBDriver: DriverNone}
	client, err := none.OpenDatabase(ctx)
	if err != nil || client != nil {
		t.Errorf("driver none should yield no client, got %v / %v", client, err)
	}

	path := filepath.Join(t.TempDir(), "monitored.duckdb")
	seed, err := relational.NewDuckDBClient(path)
	if err != nil {
		t.Fatalf("failed to seed duckdb file: %v", err)
	}
	seed.Close()

	duck := &Config{DBDriver: DriverDuckDB, DuckDBPath: path, DuckDBThreads: 1, DuckDBMemoryLimitGB: 1}
	client, err = duck.OpenDatabase(ctx)
	if err != nil {
		t.Fatalf("OpenDatabase(duckdb) error = %v", err)
	}
	defer client.Close()
	if !client.IsLive(ctx) {
		t.Error("duckdb client should be live")
	}

	var threads int64
	if err := client.DB().QueryRowContext(ctx, "SELECT current_setting('threads')").Scan(&threads); err != nil {
		t.Fatalf("reading threads setting: %v", err)
	}
	if threads != 1 {
		t.Errorf("threads = %d, want 1", threads)
	}

	missing := &Config{DBDriver: DriverDuckDB, DuckDBPath: filepath.Join(t.TempDir(), "typo.duckdb")}
	if _, err := missing.OpenDatabase(ctx); err == nil {
		t.Error("expected error for a missing duckdb file")
	}
}

func TestParse_DuckDBFlags(t *testing.T) {
	t.Setenv("DIAGCHECK_DB_DRIVER", "")

	c, err := Parse("diagcheck", []string{
		"--db-driver", "duckdb", "--duckdb-path", "/data/app.duckdb",
		"--duckdb-threads", "2", "--duckdb-memory-limit", "4",
	})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if c.DuckDBThreads != 2 || c.DuckDBMemoryLimitGB != 4 {
		t.Errorf("unexpected duckdb settings %d / %d", c.DuckDBThreads, c.DuckDBMemoryLimitGB)
	}

	if _, err := Parse("diagcheck", []string{"--duckdb-threads", "-1"}); err == nil {
		t.Error("expected error for negative threads")
	}
}

func TestNewPipeline(t *testing.T) {
	t.Setenv("DIAGCHECK_DB_DRIVER", "")

	c, err := Parse("diagcheck", nil)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	p, err := c.NewPipeline()
	if err != nil || p == nil {
		t.Fatalf("NewPipeline() = %v, %v", p, err)
	}

	c.CPUSampleInterval = 0
	if _, err := c.NewPipeline(); err == nil {
		t.Error("expected error for a zero CPU interval")
	}
}

func TestConfigureLogging(t *testing.T) {
	defer logrus.SetOutput(logrus.StandardLogger().Out)
	defer logrus.SetLevel(logrus.GetLevel())

	var buf bytes.Buffer
	c := &Config{LogLevel: "debug"}
	closer, err := c.ConfigureLogging(&buf)
	if err != nil {
		t.Fatalf("ConfigureLogging() error = %v", err)
	}
	defer closer.Close()

	logrus.WithField("component", "test").Debug("hello")
	if !bytes.Contains(buf.Bytes(), []byte("component=test")) {
		t.Errorf("expected debug line in %q", buf.String())
	}

	bad := &Config{LogLevel: "loud"}
	if _, err := bad.ConfigureLogging(&buf); err == nil {
		t.Error("expected error for unknown level")
	}
}
