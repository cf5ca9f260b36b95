package relational

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	_ "github.com/marcboeker/go-duckdb" // Register DuckDB driver
)

// =============================================================================
// DUCKDB CLIENT IMPLEMENTATION
// =============================================================================

// DuckDBConfig holds engine options for an embedded DuckDB target.
type DuckDBConfig struct {
	Threads       int           // Number of threads for DuckDB (0 = default)
	MemoryLimitGB int           // Memory limit in GB (0 = default)
	Timeout       time.Duration // Open/ping timeout (0 = none)
}

// DuckDBClient monitors an embedded DuckDB database file.
type DuckDBClient struct {
	db     *sql.DB
	config DuckDBConfig
}

// DuckDBOption configures the DuckDB client.
type DuckDBOption func(*DuckDBClient)

// WithThreads sets the number of DuckDB threads.
func WithThreads(n int) DuckDBOption {
	return func(c *DuckDBClient) {
		c.config.Threads = n
	}
}

// WithMemoryLimit sets the DuckDB memory limit in GB.
func WithMemoryLimit(gb int) DuckDBOption {
	return func(c *DuckDBClient) {
		c.config.MemoryLimitGB = gb
	}
}

// WithTimeout bounds the initial ping.
func WithTimeout(d time.Duration) DuckDBOption {
	return func(c *DuckDBClient) {
		c.config.Timeout = d
	}
}

// NewDuckDBClient opens a DuckDB database.
// DSN examples:
//   - "" or ":memory:" for in-memory database
//   - "/path/to/file.db" for file-based database
//   - "/path/to/file.db?access_mode=READ_ONLY" with options
func NewDuckDBClient(dsn string, opts ...DuckDBOption) (*DuckDBClient, error) {
	client := &DuckDBClient{}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	if dsn == "" {
		dsn = ":memory:"
	}

	db, err := sql.Open("duckdb", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open duckdb: %w", err)
	}

	ctx := context.Background()
	if client.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, client.config.Timeout)
		defer cancel()
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping duckdb: %w", err)
	}

	// An in-memory database lives on a single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	client.db = db

	if err := client.Configure(client.config); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to configure duckdb: %w", err)
	}

	return client, nil
}

// DB returns the underlying sql.DB instance.
func (c *DuckDBClient) DB() *sql.DB {
	return c.db
}

func (c *DuckDBClient) Dialect() Dialect {
	return DialectDuckDB
}

func (c *DuckDBClient) IsLive(ctx context.Context) bool {
	return c != nil && c.db != nil && c.db.PingContext(ctx) == nil
}

// Close releases database resources.
func (c *DuckDBClient) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Configure applies engine pragmas.
func (c *DuckDBClient) Configure(cfg DuckDBConfig) error {
	if c.db == nil {
		return fmt.Errorf("database not initialized")
	}

	if cfg.Threads > 0 {
		_, err := c.db.Exec(fmt.Sprintf("PRAGMA threads=%d", cfg.Threads))
		if err != nil {
			return fmt.Errorf("setting threads: %w", err)
		}
	}

	if cfg.MemoryLimitGB > 0 {
		_, err := c.db.Exec(fmt.Sprintf("PRAGMA memory_limit='%dGB'", cfg.MemoryLimitGB))
		if err != nil {
			return fmt.Errorf("setting memory limit: %w", err)
		}
	}

	c.config = cfg
	return nil
}

// =============================================================================
// FACTORY FUNCTIONS
// =============================================================================

// NewInMemoryDB creates a new in-memory DuckDB database.
func NewInMemoryDB(opts ...DuckDBOption) (*DuckDBClient, error) {
	return NewDuckDBClient(":memory:", opts...)
}

// NewFileDB opens an existing DuckDB file read-only, so the monitored
// application keeps its write lock.
func NewFileDB(path string, opts ...DuckDBOption) (*DuckDBClient, error) {
	if path == "" {
		return nil, fmt.Errorf("database path required")
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("duckdb file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("duckdb file: %s is a directory", path)
	}
	return NewDuckDBClient(path+"?access_mode=READ_ONLY", opts...)
}
