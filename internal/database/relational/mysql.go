package relational

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-sql-driver/mysql"
)

var validate = validator.New()

// ConnConfig describes a MySQL server to monitor.
type ConnConfig struct {
	Host     string        `validate:"required,hostname|ip"`
	Port     int           `validate:"min=1,max=65535"`
	User     string        `validate:"required"`
	Password string        `validate:"-"`
	Database string        `validate:"omitempty,max=64"`
	Timeout  time.Duration `validate:"min=0"`
}

// DefaultConnConfig targets a local server's mysql schema.
func DefaultConnConfig() ConnConfig {
	return ConnConfig{
		Host:     "localhost",
		Port:     3306,
		Database: "mysql",
		Timeout:  5 * time.Second,
	}
}

func (c ConnConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid connection config: %w", err)
	}
	return nil
}

// DSN renders the go-sql-driver/mysql data source name.
func (c ConnConfig) DSN() string {
	mc := mysql.NewConfig()
	mc.User = c.User
	mc.Passwd = c.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
	mc.DBName = c.Database
	if mc.DBName == "" {
		mc.DBName = "mysql"
	}
	mc.Timeout = c.Timeout
	return mc.FormatDSN()
}

// SQLClient wraps a database/sql handle with a known dialect.
type SQLClient struct {
	db      *sql.DB
	dialect Dialect
}

// NewSQLClient adopts an already opened handle.
func NewSQLClient(db *sql.DB, dialect Dialect) *SQLClient {
	return &SQLClient{db: db, dialect: dialect}
}

// ConnectMySQL opens a pool to the server and checks it answers.
func ConnectMySQL(ctx context.Context, cfg ConnConfig) (*SQLClient, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	db, err := sql.Open("mysql", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open mysql: %w", err)
	}

	// One diagnostic run at a time shares this handle.
	db.SetMaxOpenConns(2)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to %s:%d: %w", cfg.Host, cfg.Port, err)
	}

	return NewSQLClient(db, DialectMySQL), nil
}

func (c *SQLClient) DB() *sql.DB {
	return c.db
}

func (c *SQLClient) Dialect() Dialect {
	return c.dialect
}

func (c *SQLClient) IsLive(ctx context.Context) bool {
	return c != nil && c.db != nil && c.db.PingContext(ctx) == nil
}

func (c *SQLClient) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}
