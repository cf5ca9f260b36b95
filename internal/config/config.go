// Package config holds the front-end settings shared by every command.
package config

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"diagcheck/internal/collector"
	"diagcheck/internal/database"
	"diagcheck/internal/database/relational"
	"diagcheck/internal/engine"
	"diagcheck/internal/flagger"
	"diagcheck/internal/output"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
)

const (
	DriverMySQL  = "mysql"
	DriverDuckDB = "duckdb"
	DriverNone   = "none"
)

// Config is populated from flags, falling back to DIAGCHECK_* variables.
type Config struct {
	DBDriver   string        `validate:"oneof=mysql duckdb none"`
	DBHost     string        `validate:"required_if=DBDriver mysql"`
	DBPort     int           `validate:"min=1,max=65535"`
	DBUser     string        `validate:"required_if=DBDriver mysql"`
	DBPassword string        `validate:"-"`
	DBName     string        `validate:"required_if=DBDriver mysql"`
	DBTimeout  time.Duration `validate:"min=0"`
	DuckDBPath string        `validate:"required_if=DBDriver duckdb"`

	DuckDBThreads       int `validate:"min=0"`
	DuckDBMemoryLimitGB int `validate:"min=0"`

	CPUSampleInterval time.Duration `validate:"gt=0"`
	DiskLatencyWindow time.Duration `validate:"gt=0"`
	DiskPath          string        `validate:"required"`

	ReportDir    string `validate:"required"`
	ReportFormat string `validate:"oneof=txt html both"`

	LogLevel string `validate:"oneof=panic fatal error warn warning info debug trace"`
	LogFile  string
}

// AddFlags registers every setting on fs.
func AddFlags(fs *pflag.FlagSet, c *Config) {
	fs.StringVar(&c.DBDriver, "db-driver", GetenvDefault("DIAGCHECK_DB_DRIVER", DriverNone), "database to monitor: mysql, duckdb or none")
	fs.StringVar(&c.DBHost, "db-host", GetenvDefault("DIAGCHECK_DB_HOST", "localhost"), "MySQL server host")
	fs.IntVar(&c.DBPort, "db-port", getenvInt("DIAGCHECK_DB_PORT", 3306), "MySQL server port")
	fs.StringVar(&c.DBUser, "db-user", GetenvDefault("DIAGCHECK_DB_USER", ""), "MySQL user")
	fs.StringVar(&c.DBPassword, "db-password", GetenvDefault("DIAGCHECK_DB_PASSWORD", ""), "MySQL password")
	fs.StringVar(&c.DBName, "db-name", GetenvDefault("DIAGCHECK_DB_NAME", "mysql"), "MySQL database to connect to")
	fs.DurationVar(&c.DBTimeout, "db-timeout", 5*time.Second, "database connect timeout")
	fs.StringVar(&c.DuckDBPath, "duckdb-path", GetenvDefault("DIAGCHECK_DUCKDB_PATH", ""), "DuckDB database file to monitor, opened read-only")
	fs.IntVar(&c.DuckDBThreads, "duckdb-threads", getenvInt("DIAGCHECK_DUCKDB_THREADS", 0), "DuckDB worker threads, 0 for the engine default")
	fs.IntVar(&c.DuckDBMemoryLimitGB, "duckdb-memory-limit", getenvInt("DIAGCHECK_DUCKDB_MEMORY_LIMIT", 0), "DuckDB memory limit in GB, 0 for the engine default")

	fs.DurationVar(&c.CPUSampleInterval, "cpu-interval", time.Second, "CPU sampling window")
	fs.DurationVar(&c.DiskLatencyWindow, "latency-window", 100*time.Millisecond, "gap between the two disk counter reads")
	fs.StringVar(&c.DiskPath, "disk-path", GetenvDefault("DIAGCHECK_DISK_PATH", "/"), "mount point whose usage is reported")

	fs.StringVar(&c.ReportDir, "report-dir", GetenvDefault("DIAGCHECK_REPORT_DIR", "."), "directory reports are written to")
	fs.StringVar(&c.ReportFormat, "report-format", GetenvDefault("DIAGCHECK_REPORT_FORMAT", "txt"), "report format: txt, html or both")

	fs.StringVar(&c.LogLevel, "log-level", GetenvDefault("DIAGCHECK_LOG_LEVEL", "info"), "log level")
	fs.StringVar(&c.LogFile, "log-file", GetenvDefault("DIAGCHECK_LOG_FILE", ""), "log file, empty for stderr")
}

// Parse builds a Config from command-line arguments.
func Parse(name string, args []string) (*Config, error) {
	c := &Config{}
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	AddFlags(fs, c)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

var validate = validator.New()

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return c.CollectorConfig().Validate()
}

func (c *Config) CollectorConfig() collector.CollectorConfig {
	return collector.DefaultCollectorConfig().
		WithCPUSampleInterval(c.CPUSampleInterval).
		WithDiskLatencyWindow(c.DiskLatencyWindow).
		WithDiskPath(c.DiskPath)
}

func (c *Config) ConnConfig() relational.ConnConfig {
	return relational.ConnConfig{
		Host:     c.DBHost,
		Port:     c.DBPort,
		User:     c.DBUser,
		Password: c.DBPassword,
		Database: c.DBName,
		Timeout:  c.DBTimeout,
	}
}

// NewPipeline wires the OS and database samplers to an analyzer using the
// default thresholds.
func (c *Config) NewPipeline() (*output.Pipeline, error) {
	osSampler, err := collector.NewSystemCollector(c.CollectorConfig())
	if err != nil {
		return nil, err
	}
	analyzer, err := engine.NewAnalyzer(flagger.DefaultConfig())
	if err != nil {
		return nil, err
	}
	dbSampler := database.NewSampler(database.DefaultSamplerConfig())
	return output.NewPipeline(osSampler, dbSampler, analyzer), nil
}

// OpenDatabase connects to the configured target. With driver "none" it
// returns a nil client and no error.
func (c *Config) OpenDatabase(ctx context.Context) (relational.DatabaseClient, error) {
	switch c.DBDriver {
	case DriverMySQL:
		client, err := relational.ConnectMySQL(ctx, c.ConnConfig())
		if err != nil {
			return nil, err
		}
		return client, nil
	case DriverDuckDB:
		client, err := relational.NewFileDB(c.DuckDBPath,
			relational.WithTimeout(c.DBTimeout),
			relational.WithThreads(c.DuckDBThreads),
			relational.WithMemoryLimit(c.DuckDBMemoryLimitGB),
		)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, nil
	}
}

// ConfigureLogging points logrus at the log file, or at fallback when no
// file is set. The returned closer releases the file.
func (c *Config) ConfigureLogging(fallback io.Writer) (io.Closer, error) {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if c.LogFile == "" {
		logrus.SetOutput(fallback)
		return io.NopCloser(nil), nil
	}
	f, err := os.OpenFile(c.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	logrus.SetOutput(f)
	return f, nil
}

// GetenvDefault returns the environment value of key, or def when unset.
func GetenvDefault(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	v, err := strconv.Atoi(GetenvDefault(key, ""))
	if err != nil {
		return def
	}
	return v
}
