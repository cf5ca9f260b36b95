package database

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"

	"diagcheck/internal/collector"
	"diagcheck/internal/database/relational"

	"github.com/DATA-DOG/go-sqlmock"
)

var processListColumns = []string{"ID", "USER", "HOST", "DB", "COMMAND", "TIME", "STATE", "INFO"}

func newMockClient(t *testing.T) (*relational.SQLClient, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	t.Cleanup(func() { db.Close() })
	return relational.NewSQLClient(db, relational.DialectMySQL), mock
}

func mysqlQueries(t *testing.T) relational.StatusQueries {
	t.Helper()
	q, err := relational.QueriesFor(relational.DialectMySQL)
	if err != nil {
		t.Fatal(err)
	}
	return q
}

// expectBattery registers the battery up to, not including, the slow-query scan.
func expectBattery(t *testing.T, mock sqlmock.Sqlmock) {
	t.Helper()
	q := mysqlQueries(t)
	mock.ExpectQuery(regexp.QuoteMeta(q.Probe)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta(q.ActiveConnections)).
		WillReturnRows(sqlmock.NewRows([]string{"Variable_name", "Value"}).AddRow("Threads_connected", "12"))
	mock.ExpectQuery(regexp.QuoteMeta(q.Version)).
		WillReturnRows(sqlmock.NewRows([]string{"VERSION()"}).AddRow("8.0.36"))
	mock.ExpectQuery(regexp.QuoteMeta(q.Uptime)).
		WillReturnRows(sqlmock.NewRows([]string{"Variable_name", "Value"}).AddRow("Uptime", "86400"))
	mock.ExpectQuery(regexp.QuoteMeta(q.TableCount)).
		WillReturnRows(sqlmock.NewRows([]string{"COUNT(*)"}).AddRow(42))
	mock.ExpectQuery(regexp.QuoteMeta(q.SizeMB)).
		WillReturnRows(sqlmock.NewRows([]string{"size"}).AddRow("128.50"))
}

func TestSampleDB_NoClient(t *testing.T) {
	snap, err := NewSampler(DefaultSamplerConfig()).SampleDB(context.Background(), nil)
	if err != nil {
		t.Fatalf("SampleDB(nil) error = %v", err)
	}
	if snap.Status != StatusDisconnected || snap.Version != "N/A" {
		t.Errorf("expected disconnected snapshot, got %+v", snap)
	}
	if snap.SlowQueries == nil || len(snap.SlowQueries) != 0 {
		t.Errorf("expected empty slow query list, got %v", snap.SlowQueries)
	}
}

func TestSampleDB_DeadClient(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	mock.ExpectPing().WillReturnError(errors.New("connection refused"))

	snap, err := NewSampler(DefaultSamplerConfig()).SampleDB(context.Background(), relational.NewSQLClient(db, relational.DialectMySQL))
	if err != nil {
		t.Fatalf("dead client must not be an error, got %v", err)
	}
	if snap.Status != StatusDisconnected {
		t.Errorf("Status = %s, want Disconnected", snap.Status)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestSampleDB_Battery(t *testing.T) {
	client, mock := newMockClient(t)
	expectBattery(t, mock)

	longQuery := "SELECT * FROM orders o JOIN customers c ON c.id = o.customer_id WHERE " + strings.Repeat("x", 120)
	mock.ExpectQuery(regexp.QuoteMeta(mysqlQueries(t).ProcessListQuery(10))).
		WillReturnRows(sqlmock.NewRows(processListColumns).
			AddRow(31, "app", "10.0.0.5:5123", "shop", "Query", 42, "Sending data", longQuery).
			AddRow(32, "report", "10.0.0.6:5123", nil, "Query", 6, nil, "SELECT SLEEP(10)").
			AddRow(33, "app", "10.0.0.5:5124", "shop", "Query", 5, "executing", "SELECT 1").
			AddRow(34, "app", "10.0.0.5:5125", "shop", "Query", 2, "executing", "SELECT 2"))

	snap, err := NewSampler(DefaultSamplerConfig()).SampleDB(context.Background(), client)
	if err != nil {
		t.Fatalf("SampleDB() error = %v", err)
	}

	switch {
	case snap.Status != StatusConnected:
		t.Errorf("Status = %s, want Connected", snap.Status)
	case snap.ActiveConnections != 12:
		t.Errorf("ActiveConnections = %d, want 12", snap.ActiveConnections)
	case snap.Version != "8.0.36":
		t.Errorf("Version = %s", snap.Version)
	case snap.UptimeSeconds != 86400:
		t.Errorf("UptimeSeconds = %d", snap.UptimeSeconds)
	case snap.TableCount != 42:
		t.Errorf("TableCount = %d", snap.TableCount)
	case snap.SizeMB != 128.5:
		t.Errorf("SizeMB = %v", snap.SizeMB)
	case snap.ResponseTimeMS < 0:
		t.Errorf("ResponseTimeMS negative: %v", snap.ResponseTimeMS)
	}

	if len(snap.SlowQueries) != 2 {
		t.Fatalf("expected 2 slow queries (> 5s), got %d: %+v", len(snap.SlowQueries), snap.SlowQueries)
	}
	first := snap.SlowQueries[0]
	if first.ID != 31 || first.RunningSeconds != 42 {
		t.Errorf("unexpected first slow query %+v", first)
	}
	if want := longQuery[:100] + "..."; first.Query != want {
		t.Errorf("Query not truncated: %q", first.Query)
	}
	second := snap.SlowQueries[1]
	if second.Database != "N/A" || second.State != "N/A" {
		t.Errorf("NULL columns should read N/A, got %+v", second)
	}
	if second.Query != "SELECT SLEEP(10)" {
		t.Errorf("short query must be kept verbatim, got %q", second.Query)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestSampleDB_SlowQueryScanFailureIsSwallowed(t *testing.T) {
	client, mock := newMockClient(t)
	expectBattery(t, mock)
	mock.ExpectQuery("INFORMATION_SCHEMA.PROCESSLIST").
		WillReturnError(errors.New("Access denied; you need the PROCESS privilege"))

	snap, err := NewSampler(DefaultSamplerConfig()).SampleDB(context.Background(), client)
	if err != nil {
		t.Fatalf("slow query scan failure must not fail the sample: %v", err)
	}
	if snap.Status != StatusConnected || len(snap.SlowQueries) != 0 {
		t.Errorf("expected connected snapshot with no slow queries, got %+v", snap)
	}
}

func TestSampleDB_BatteryFailure(t *testing.T) {
	q := mysqlQueries(t)
	cause := errors.New("server has gone away")

	tests := []struct {
		name       string
		expect     func(mock sqlmock.Sqlmock)
		wantSource string
	}{
		{
			name: "probe",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta(q.Probe)).WillReturnError(cause)
			},
			wantSource: "database/probe",
		},
		{
			name: "uptime",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta(q.Probe)).
					WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
				mock.ExpectQuery(regexp.QuoteMeta(q.ActiveConnections)).
					WillReturnRows(sqlmock.NewRows([]string{"Variable_name", "Value"}).AddRow("Threads_connected", "3"))
				mock.ExpectQuery(regexp.QuoteMeta(q.Version)).
					WillReturnRows(sqlmock.NewRows([]string{"VERSION()"}).AddRow("8.0.36"))
				mock.ExpectQuery(regexp.QuoteMeta(q.Uptime)).WillReturnError(cause)
			},
			wantSource: "database/uptime",
		},
		{
			name: "unparsable status value",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta(q.Probe)).
					WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
				mock.ExpectQuery(regexp.QuoteMeta(q.ActiveConnections)).
					WillReturnRows(sqlmock.NewRows([]string{"Variable_name", "Value"}).AddRow("Threads_connected", "many"))
			},
			wantSource: "database/connections",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, mock := newMockClient(t)
			tt.expect(mock)

			_, err := NewSampler(DefaultSamplerConfig()).SampleDB(context.Background(), client)
			var collErr *collector.CollectionError
			if !errors.As(err, &collErr) {
				t.Fatalf("SampleDB() error = %v, want *collector.CollectionError", err)
			}
			if collErr.Source != tt.wantSource {
				t.Errorf("Source = %s, want %s", collErr.Source, tt.wantSource)
			}
		})
	}
}

func TestSampleDB_MissingStatusRowsReadZero(t *testing.T) {
	client, mock := newMockClient(t)
	q := mysqlQueries(t)

	mock.ExpectQuery(regexp.QuoteMeta(q.Probe)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta(q.ActiveConnections)).
		WillReturnRows(sqlmock.NewRows([]string{"Variable_name", "Value"}))
	mock.ExpectQuery(regexp.QuoteMeta(q.Version)).
		WillReturnRows(sqlmock.NewRows([]string{"VERSION()"}).AddRow(nil))
	mock.ExpectQuery(regexp.QuoteMeta(q.Uptime)).
		WillReturnRows(sqlmock.NewRows([]string{"Variable_name", "Value"}))
	mock.ExpectQuery(regexp.QuoteMeta(q.TableCount)).
		WillReturnRows(sqlmock.NewRows([]string{"COUNT(*)"}).AddRow(0))
	mock.ExpectQuery(regexp.QuoteMeta(q.SizeMB)).
		WillReturnRows(sqlmock.NewRows([]string{"size"}).AddRow(nil))
	mock.ExpectQuery("INFORMATION_SCHEMA.PROCESSLIST").
		WillReturnRows(sqlmock.NewRows(processListColumns))

	snap, err := NewSampler(DefaultSamplerConfig()).SampleDB(context.Background(), client)
	if err != nil {
		t.Fatalf("SampleDB() error = %v", err)
	}
	if snap.ActiveConnections != 0 || snap.UptimeSeconds != 0 || snap.SizeMB != 0 {
		t.Errorf("expected zero counters, got %+v", snap)
	}
	if snap.Version != "N/A" {
		t.Errorf("Version = %q, want N/A", snap.Version)
	}
}

func TestSampleDB_DuckDB(t *testing.T) {
	ctx := context.Background()

	client, err := relational.NewDuckDBClient("")
	if err != nil {
		t.Fatalf("failed to create duckdb client: %v", err)
	}
	defer client.Close()

	for _, stmt := range []string{
		"CREATE TABLE hosts (id INTEGER, name VARCHAR)",
		"CREATE TABLE readings (host_id INTEGER, cpu DOUBLE)",
		"INSERT INTO hosts VALUES (1, 'db-01')",
	} {
		if _, err := client.DB().ExecContext(ctx, stmt); err != nil {
			t.Fatalf("%s: %v", stmt, err)
		}
	}

	snap, err := NewSampler(DefaultSamplerConfig()).SampleDB(ctx, client)
	if err != nil {
		t.Fatalf("SampleDB() error = %v", err)
	}

	switch {
	case snap.Status != StatusConnected:
		t.Errorf("Status = %s, want Connected", snap.Status)
	case snap.TableCount != 2:
		t.Errorf("TableCount = %d, want 2", snap.TableCount)
	case snap.Version == "" || snap.Version == "N/A":
		t.Errorf("expected a duckdb version, got %q", snap.Version)
	case snap.ActiveConnections != 0 || snap.UptimeSeconds != 0:
		t.Errorf("unsupported probes must read 0, got %+v", snap)
	case len(snap.SlowQueries) != 0:
		t.Errorf("duckdb has no process list, got %v", snap.SlowQueries)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		limit int
		want  string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"eleven chars", 10, "eleven cha..."},
		{"ação rápida", 4, "ação..."},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.limit); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.limit, got, tt.want)
		}
	}
}
