package output

import (
	"context"
	"fmt"
	"time"

	"diagcheck/internal/collector"
	"diagcheck/internal/database"
	"diagcheck/internal/database/relational"
	"diagcheck/internal/engine"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Session is the caller-owned state of a front-end: the database handle it
// monitors and the last successful diagnosis. It is not safe for
// concurrent runs; front-ends serialize them.
type Session struct {
	DB   relational.DatabaseClient
	Last *engine.Diagnosis
}

// DiagnosisAnalyzer defines the interface for grading snapshots.
type DiagnosisAnalyzer interface {
	Analyze(os collector.OSSnapshot, db database.DBSnapshot) (engine.Diagnosis, error)
}

// Pipeline wires the samplers to the analyzer: Sample -> Analyze -> Store.
type Pipeline struct {
	os       collector.StatsProvider
	db       database.DBProvider
	analyzer DiagnosisAnalyzer
	now      func() time.Time
	log      *logrus.Entry
}

func NewPipeline(os collector.StatsProvider, db database.DBProvider, analyzer DiagnosisAnalyzer) *Pipeline {
	return &Pipeline{
		os:       os,
		db:       db,
		analyzer: analyzer,
		now:      time.Now,
		log:      logrus.WithField("component", "pipeline"),
	}
}

// WithClock replaces the timestamp source.
func (p *Pipeline) WithClock(now func() time.Time) *Pipeline {
	p.now = now
	return p
}

// SampleOS takes an OS snapshot on its own.
func (p *Pipeline) SampleOS(ctx context.Context) (collector.OSSnapshot, error) {
	return p.os.SampleOS(ctx)
}

// SampleDB takes a database snapshot of the session's handle on its own.
func (p *Pipeline) SampleDB(ctx context.Context, sess *Session) (database.DBSnapshot, error) {
	return p.db.SampleDB(ctx, sessionDB(sess))
}

// RunDiagnosis samples both snapshots, analyzes them and records the
// result in sess.Last. A failed run leaves sess.Last untouched.
func (p *Pipeline) RunDiagnosis(ctx context.Context, sess *Session) (engine.Diagnosis, error) {
	start := p.now()
	p.log.Info("diagnostic run started")

	var (
		osSnap collector.OSSnapshot
		dbSnap database.DBSnapshot
	)

	// The two snapshots share no state. A failure on either side cancels
	// gctx and stops the other mid-sample; Wait still returns the first
	// error, so a fast database failure is reported as the database error.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		snap, err := p.os.SampleOS(gctx)
		if err != nil {
			return fmt.Errorf("sample os: %w", err)
		}
		osSnap = snap
		return nil
	})
	g.Go(func() error {
		snap, err := p.db.SampleDB(gctx, sessionDB(sess))
		if err != nil {
			return fmt.Errorf("sample database: %w", err)
		}
		dbSnap = snap
		return nil
	})
	if err := g.Wait(); err != nil {
		p.log.WithError(err).Error("diagnostic run failed")
		return engine.Diagnosis{}, err
	}

	d, err := p.analyzer.Analyze(osSnap, dbSnap)
	if err != nil {
		p.log.WithError(err).Error("diagnostic run failed")
		return engine.Diagnosis{}, err
	}
	d.TakenAt = start

	if sess != nil {
		sess.Last = &d
	}

	p.log.WithFields(logrus.Fields{
		"status":   d.OverallStatus,
		"alerts":   len(d.Alerts),
		"duration": p.now().Sub(start).Round(time.Millisecond),
	}).Info("diagnostic run finished")

	return d, nil
}

func sessionDB(sess *Session) relational.DatabaseClient {
	if sess == nil {
		return nil
	}
	return sess.DB
}
