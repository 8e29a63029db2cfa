// Package history records probe attempts in a local SQLite database.
package history

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Probe attempt statuses.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Log tracks probe attempts against registry servers.
type Log struct {
	db *sql.DB
}

// ProbeEntry is one recorded probe attempt.
type ProbeEntry struct {
	ID           int64     `json:"id"`
	ServerName   string    `json:"server_name"`
	Host         string    `json:"host"`
	User         string    `json:"user"`
	Port         int       `json:"port"`
	AuthMethod   string    `json:"auth_method"`
	Status       string    `json:"status"`
	ErrorMessage string    `json:"error_message,omitempty"`
	StartTime    time.Time `json:"start_time"`
	DurationMs   int64     `json:"duration_ms"`
	CreatedAt    time.Time `json:"created_at"`
}

// Filter narrows List queries. Zero values match everything.
type Filter struct {
	ServerName string
	Status     string
	Limit      int
	Offset     int
}

// Stats aggregates probe outcomes for one server.
type Stats struct {
	ServerName    string
	Total         int
	Successful    int
	SuccessRate   float64
	AvgDurationMs float64
	LastProbe     time.Time
}

// Open opens (creating if necessary) the probe log at path and brings the
// schema up to date.
func Open(path string) (*Log, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open probe history database: %w", err)
	}

	log := &Log{db: db}
	if err := log.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate probe history schema: %w", err)
	}
	return log, nil
}

// Close closes the database.
func (l *Log) Close() error {
	return l.db.Close()
}

// Record inserts one probe attempt and returns its row id.
func (l *Log) Record(entry ProbeEntry) (int64, error) {
	result, err := l.db.Exec(`
		INSERT INTO probe_history (
			server_name, host, user, port, auth_method, status,
			error_message, start_time, duration_ms
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ServerName, entry.Host, entry.User, entry.Port,
		entry.AuthMethod, entry.Status, entry.ErrorMessage,
		entry.StartTime, entry.DurationMs,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to record probe attempt: %w", err)
	}
	return result.LastInsertId()
}

// List returns probe attempts matching the filter, newest first.
func (l *Log) List(filter Filter) ([]ProbeEntry, error) {
	query := `SELECT id, server_name, host, user, port, auth_method, status,
		error_message, start_time, duration_ms, created_at
		FROM probe_history WHERE 1=1`
	var args []interface{}

	if filter.ServerName != "" {
		query += " AND server_name = ?"
		args = append(args, filter.ServerName)
	}
	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, filter.Status)
	}
	query += " ORDER BY start_time DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		query += " OFFSET ?"
		args = append(args, filter.Offset)
	}

	rows, err := l.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query probe history: %w", err)
	}
	defer rows.Close()

	var entries []ProbeEntry
	for rows.Next() {
		var entry ProbeEntry
		var errMsg sql.NullString
		if err := rows.Scan(
			&entry.ID, &entry.ServerName, &entry.Host, &entry.User,
			&entry.Port, &entry.AuthMethod, &entry.Status,
			&errMsg, &entry.StartTime, &entry.DurationMs, &entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan probe history row: %w", err)
		}
		entry.ErrorMessage = errMsg.String
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// StatsByServer aggregates per-server probe statistics. An empty
// serverName aggregates every server.
func (l *Log) StatsByServer(serverName string) ([]Stats, error) {
	query := `SELECT server_name,
		COUNT(*),
		SUM(CASE WHEN status = 'success' THEN 1 ELSE 0 END),
		AVG(duration_ms),
		MAX(start_time)
		FROM probe_history`
	var args []interface{}
	if serverName != "" {
		query += " WHERE server_name = ?"
		args = append(args, serverName)
	}
	query += " GROUP BY server_name ORDER BY server_name"

	rows, err := l.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query probe stats: %w", err)
	}
	defer rows.Close()

	var stats []Stats
	for rows.Next() {
		var s Stats
		var avg sql.NullFloat64
		if err := rows.Scan(&s.ServerName, &s.Total, &s.Successful, &avg, &s.LastProbe); err != nil {
			return nil, fmt.Errorf("failed to scan probe stats row: %w", err)
		}
		s.AvgDurationMs = avg.Float64
		if s.Total > 0 {
			s.SuccessRate = float64(s.Successful) / float64(s.Total)
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}
