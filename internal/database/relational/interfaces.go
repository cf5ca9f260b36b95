// Package relational provides the database clients the sampler talks to.
package relational

import (
	"context"
	"database/sql"
)

// =============================================================================
// CORE INTERFACES
// =============================================================================

// DatabaseClient is a live handle on a monitored database.
type DatabaseClient interface {
	// DB returns the underlying sql.DB instance.
	DB() *sql.DB
	// Dialect selects the status query set for this server.
	Dialect() Dialect
	// IsLive reports whether the server still answers.
	IsLive(ctx context.Context) bool
	// Close releases database resources.
	Close() error
}
