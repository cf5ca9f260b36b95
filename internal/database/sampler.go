// Package database samples the health of a monitored database server.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"diagcheck/internal/collector"
	"diagcheck/internal/database/relational"

	"github.com/sirupsen/logrus"
)

// DBProvider defines the contract for any database snapshot source.
type DBProvider interface {
	SampleDB(ctx context.Context, client relational.DatabaseClient) (DBSnapshot, error)
}

// Sampler runs the status battery against a DatabaseClient.
type Sampler struct {
	cfg SamplerConfig
	log *logrus.Entry
}

func NewSampler(cfg SamplerConfig) *Sampler {
	if cfg.SlowQueryScanLimit <= 0 {
		cfg.SlowQueryScanLimit = DefaultSamplerConfig().SlowQueryScanLimit
	}
	if cfg.QueryTextLimit <= 0 {
		cfg.QueryTextLimit = DefaultSamplerConfig().QueryTextLimit
	}
	return &Sampler{
		cfg: cfg,
		log: logrus.WithField("component", "db-sampler"),
	}
}

// SampleDB returns the disconnected snapshot when client is absent or dead.
// Otherwise it runs the battery in order; any failure aborts with a
// *collector.CollectionError, except the slow-query scan, which is best
// effort.
func (s *Sampler) SampleDB(ctx context.Context, client relational.DatabaseClient) (DBSnapshot, error) {
	if client == nil || !client.IsLive(ctx) {
		return DisconnectedSnapshot(), nil
	}

	q, err := relational.QueriesFor(client.Dialect())
	if err != nil {
		return DBSnapshot{}, &collector.CollectionError{Source: "database/dialect", Err: err}
	}
	db := client.DB()

	snap := DBSnapshot{Status: StatusConnected, Version: "N/A", SlowQueries: []SlowQuery{}}

	start := time.Now()
	var one int64
	if err := db.QueryRowContext(ctx, q.Probe).Scan(&one); err != nil {
		return DBSnapshot{}, batteryError("probe", err)
	}
	snap.ResponseTimeMS = math.Round(float64(time.Since(start).Microseconds())/10) / 100

	if snap.ActiveConnections, err = statusValue(ctx, db, q.ActiveConnections); err != nil {
		return DBSnapshot{}, batteryError("connections", err)
	}

	if q.Version != "" {
		var version sql.NullString
		err := db.QueryRowContext(ctx, q.Version).Scan(&version)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return DBSnapshot{}, batteryError("version", err)
		}
		if version.Valid && version.String != "" {
			snap.Version = version.String
		}
	}

	if snap.UptimeSeconds, err = statusValue(ctx, db, q.Uptime); err != nil {
		return DBSnapshot{}, batteryError("uptime", err)
	}

	if q.TableCount != "" {
		var count sql.NullInt64
		err := db.QueryRowContext(ctx, q.TableCount).Scan(&count)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return DBSnapshot{}, batteryError("tables", err)
		}
		snap.TableCount = count.Int64
	}

	if q.SizeMB != "" {
		var size sql.NullFloat64
		err := db.QueryRowContext(ctx, q.SizeMB).Scan(&size)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return DBSnapshot{}, batteryError("size", err)
		}
		snap.SizeMB = math.Max(size.Float64, 0)
	}

	snap.SlowQueries = s.slowQueries(ctx, db, q)

	s.log.WithFields(logrus.Fields{
		"dialect":      client.Dialect(),
		"response_ms":  snap.ResponseTimeMS,
		"connections":  snap.ActiveConnections,
		"slow_queries": len(snap.SlowQueries),
	}).Debug("database sampled")

	return snap, nil
}

// slowQueries scans the process list. Failures yield an empty list.
func (s *Sampler) slowQueries(ctx context.Context, db *sql.DB, q relational.StatusQueries) []SlowQuery {
	found := []SlowQuery{}

	query := q.ProcessListQuery(s.cfg.SlowQueryScanLimit)
	if query == "" {
		return found
	}

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		s.log.WithError(err).Warn("slow query scan failed")
		return found
	}
	defer rows.Close()

	scanned := 0
	for rows.Next() {
		if scanned == s.cfg.SlowQueryScanLimit {
			break
		}
		scanned++

		var (
			id                          int64
			user, host, schema, command sql.NullString
			seconds                     sql.NullInt64
			state, info                 sql.NullString
		)
		if err := rows.Scan(&id, &user, &host, &schema, &command, &seconds, &state, &info); err != nil {
			s.log.WithError(err).Warn("slow query scan failed")
			return []SlowQuery{}
		}
		if seconds.Int64 <= s.cfg.SlowQueryThresholdSeconds {
			continue
		}
		found = append(found, SlowQuery{
			ID:             id,
			User:           orDefault(user, "unknown"),
			Database:       orDefault(schema, "N/A"),
			Command:        orDefault(command, "N/A"),
			RunningSeconds: seconds.Int64,
			State:          orDefault(state, "N/A"),
			Query:          truncate(orDefault(info, "N/A"), s.cfg.QueryTextLimit),
		})
	}
	if err := rows.Err(); err != nil {
		s.log.WithError(err).Warn("slow query scan failed")
		return []SlowQuery{}
	}

	return found
}

// statusValue reads the numeric value of a (name, value) status row.
// A missing row or an unsupported probe reads as 0.
func statusValue(ctx context.Context, db *sql.DB, query string) (int64, error) {
	if query == "" {
		return 0, nil
	}
	var name, value sql.NullString
	err := db.QueryRowContext(ctx, query).Scan(&name, &value)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if !value.Valid || value.String == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(value.String, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", name.String, err)
	}
	return n, nil
}

func batteryError(probe string, err error) error {
	return &collector.CollectionError{Source: "database/" + probe, Err: err}
}

func orDefault(v sql.NullString, def string) string {
	if !v.Valid {
		return def
	}
	return v.String
}

// truncate cuts s to limit runes and marks the cut with an ellipsis.
func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit]) + "..."
}
