package mcpserver

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"

	"diagcheck/internal/collector"
	"diagcheck/internal/database"
	"diagcheck/internal/engine"
	"diagcheck/internal/output"
	"diagcheck/internal/report"
)

// Runner is the part of output.Pipeline the tools drive.
type Runner interface {
	SampleOS(ctx context.Context) (collector.OSSnapshot, error)
	SampleDB(ctx context.Context, sess *output.Session) (database.DBSnapshot, error)
	RunDiagnosis(ctx context.Context, sess *output.Session) (engine.Diagnosis, error)
}

// ReportSaver writes report files for a dashboard view.
type ReportSaver interface {
	Save(view output.DashboardView, format string) ([]string, error)
}

// Server wraps the MCP server with the diagnostic tools.
type Server struct {
	mcpServer *mcp.Server
	runner    Runner
	saver     ReportSaver
	log       *logrus.Entry

	// runMu serializes tool calls that touch the session.
	runMu   sync.Mutex
	session *output.Session
}

// Config holds configuration for the MCP server.
type Config struct {
	ServerName    string
	ServerVersion string
	ReportDir     string
}

// NewServer creates a new MCP server instance over the given pipeline.
// The server owns sess and closes its database handle on Close.
func NewServer(cfg Config, runner Runner, sess *output.Session) *Server {
	if sess == nil {
		sess = &output.Session{}
	}
	impl := &mcp.Implementation{
		Name:    cfg.ServerName,
		Version: cfg.ServerVersion,
	}

	s := &Server{
		mcpServer: mcp.NewServer(impl, nil),
		runner:    runner,
		saver:     report.NewWriter(cfg.ReportDir),
		log:       logrus.WithField("component", "mcpserver"),
		session:   sess,
	}
	s.registerTools()
	return s
}

// RunDiagnosisArgs defines the input for run_diagnosis tool.
type RunDiagnosisArgs struct {
	SaveReport string `json:"save_report,omitempty" jsonschema:"also write a report file: txt, html or both"`
}

// CheckView is one graded metric.
type CheckView struct {
	Name   string  `json:"name"`
	Value  float64 `json:"value"`
	Status string  `json:"status"`
}

// RunDiagnosisResult defines the output for run_diagnosis tool.
type RunDiagnosisResult struct {
	OverallStatus   string         `json:"overall_status" jsonschema:"OK, WARN or CRIT"`
	Summary         string         `json:"summary"`
	Alerts          []engine.Alert `json:"alerts"`
	Recommendations []string       `json:"recommendations"`
	Checks          []CheckView    `json:"checks"`
	TakenAt         time.Time      `json:"taken_at"`
	Reports         []string       `json:"reports,omitempty" jsonschema:"paths of the saved report files"`
}

// SnapshotArgs is the empty input of the snapshot tools.
type SnapshotArgs struct{}

// registerTools registers all available MCP tools.
func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "run_diagnosis",
		Description: "Sample the host and the monitored database, grade every metric and return the overall status with alerts and recommendations. Optionally saves a txt/html report.",
	}, s.handleRunDiagnosis)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_os_snapshot",
		Description: "Get the current CPU, memory, swap, disk and disk latency figures of the host without grading them.",
	}, s.handleGetOSSnapshot)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_db_snapshot",
		Description: "Get the current status of the monitored database: connectivity, response time, connections, uptime, size and slow queries.",
	}, s.handleGetDBSnapshot)
}

func validReportFormat(f string) bool {
	switch f {
	case "", "txt", "html", "both":
		return true
	}
	return false
}

func (s *Server) handleRunDiagnosis(ctx context.Context, _ *mcp.CallToolRequest, args RunDiagnosisArgs) (*mcp.CallToolResult, RunDiagnosisResult, error) {
	if !validReportFormat(args.SaveReport) {
		return nil, RunDiagnosisResult{}, fmt.Errorf("invalid save_report: %s (must be 'txt', 'html' or 'both')", args.SaveReport)
	}

	s.runMu.Lock()
	defer s.runMu.Unlock()

	d, err := s.runner.RunDiagnosis(ctx, s.session)
	if err != nil {
		return nil, RunDiagnosisResult{}, fmt.Errorf("diagnosis failed: %w", err)
	}

	result := toResult(d)
	if args.SaveReport != "" {
		paths, err := s.saver.Save(output.BuildDashboard(d), args.SaveReport)
		if err != nil {
			return nil, RunDiagnosisResult{}, fmt.Errorf("save report: %w", err)
		}
		result.Reports = paths
		s.log.WithField("files", paths).Info("report saved")
	}
	return nil, result, nil
}

func (s *Server) handleGetOSSnapshot(ctx context.Context, _ *mcp.CallToolRequest, _ SnapshotArgs) (*mcp.CallToolResult, collector.OSSnapshot, error) {
	snap, err := s.runner.SampleOS(ctx)
	if err != nil {
		return nil, collector.OSSnapshot{}, fmt.Errorf("failed to sample os: %w", err)
	}
	return nil, snap, nil
}

func (s *Server) handleGetDBSnapshot(ctx context.Context, _ *mcp.CallToolRequest, _ SnapshotArgs) (*mcp.CallToolResult, database.DBSnapshot, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	snap, err := s.runner.SampleDB(ctx, s.session)
	if err != nil {
		return nil, database.DBSnapshot{}, fmt.Errorf("failed to sample database: %w", err)
	}
	// Output is validated against the inferred schema, which has no null arrays.
	if snap.SlowQueries == nil {
		snap.SlowQueries = []database.SlowQuery{}
	}
	return nil, snap, nil
}

func toResult(d engine.Diagnosis) RunDiagnosisResult {
	checks := make([]CheckView, 0, len(d.Checks))
	for _, c := range d.Checks {
		checks = append(checks, CheckView{Name: c.Name, Value: c.Value, Status: string(c.Status)})
	}
	alerts := d.Alerts
	if alerts == nil {
		alerts = []engine.Alert{}
	}
	recs := d.Recommendations
	if recs == nil {
		recs = []string{}
	}
	return RunDiagnosisResult{
		OverallStatus:   string(d.OverallStatus),
		Summary:         d.OverallStatus.Summary(),
		Alerts:          alerts,
		Recommendations: recs,
		Checks:          checks,
		TakenAt:         d.TakenAt,
	}
}

// Start starts the MCP server using stdio transport.
func (s *Server) Start(ctx context.Context) error {
	s.log.Info("starting diagcheck MCP server on stdio")
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}

// Close releases the monitored database handle.
func (s *Server) Close() error {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	if s.session.DB != nil {
		return s.session.DB.Close()
	}
	return nil
}
