package relational

import "fmt"

// Dialect names a server family with its own status queries.
type Dialect string

const (
	DialectMySQL  Dialect = "mysql"
	DialectDuckDB Dialect = "duckdb"
)

// StatusQueries is the battery a dialect answers. An empty query marks a
// probe the server has no equivalent for.
//
// ActiveConnections and Uptime return (name, value) rows like MySQL's SHOW
// STATUS. ProcessList takes the scan limit as its only format verb and
// returns ID, USER, HOST, DB, COMMAND, TIME, STATE, INFO.
type StatusQueries struct {
	Probe             string
	ActiveConnections string
	Version           string
	Uptime            string
	TableCount        string
	SizeMB            string
	ProcessList       string
}

const mysqlUserSchemas = `table_schema NOT IN ('information_schema', 'mysql', 'performance_schema', 'sys')`

var mysqlQueries = StatusQueries{
	Probe:             "SELECT 1",
	ActiveConnections: "SHOW STATUS LIKE 'Threads_connected'",
	Version:           "SELECT VERSION()",
	Uptime:            "SHOW STATUS LIKE 'Uptime'",
	TableCount:        "SELECT COUNT(*) FROM information_schema.tables WHERE " + mysqlUserSchemas,
	SizeMB: "SELECT ROUND(COALESCE(SUM(data_length + index_length), 0) / 1024 / 1024, 2) " +
		"FROM information_schema.tables WHERE " + mysqlUserSchemas,
	ProcessList: `SELECT ID, USER, HOST, DB, COMMAND, TIME, STATE, INFO
		FROM INFORMATION_SCHEMA.PROCESSLIST
		WHERE COMMAND != 'Sleep' AND TIME > 0
		ORDER BY TIME DESC
		LIMIT %d`,
}

var duckdbQueries = StatusQueries{
	Probe:      "SELECT 1",
	Version:    "SELECT version()",
	TableCount: "SELECT COUNT(*) FROM duckdb_tables() WHERE NOT internal",
	SizeMB: "SELECT ROUND(CAST(COALESCE(SUM(used_blocks * block_size), 0) AS DOUBLE) / 1048576, 2) " +
		"FROM pragma_database_size()",
}

// QueriesFor returns the status battery of d.
func QueriesFor(d Dialect) (StatusQueries, error) {
	switch d {
	case DialectMySQL:
		return mysqlQueries, nil
	case DialectDuckDB:
		return duckdbQueries, nil
	default:
		return StatusQueries{}, fmt.Errorf("unknown dialect %q", d)
	}
}

// ProcessListQuery renders the slow-query scan with its row limit, or ""
// when the dialect has no process list.
func (q StatusQueries) ProcessListQuery(limit int) string {
	if q.ProcessList == "" {
		return ""
	}
	return fmt.Sprintf(q.ProcessList, limit)
}
