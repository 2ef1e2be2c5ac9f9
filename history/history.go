// Package history keeps a log of launched connections in SQLite.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/yllada/vncviewer/common"
	"github.com/yllada/vncviewer/connection"
)

const schema = `
CREATE TABLE IF NOT EXISTS connections (
	id           TEXT PRIMARY KEY,
	name         TEXT NOT NULL DEFAULT '',
	host         TEXT NOT NULL,
	port         INTEGER NOT NULL,
	connected_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS connections_connected_at ON connections (connected_at);
`

// Entry is one launched connection.
type Entry struct {
	ID          string
	Name        string
	Host        string
	Port        int
	ConnectedAt time.Time
}

// Connection returns a descriptor for the entry.
func (e Entry) Connection() *connection.Connection {
	conn := connection.New()
	conn.SetName(e.Name)
	conn.SetHost(e.Host)
	conn.SetPort(e.Port)
	return conn
}

// History is a handle on the history database.
type History struct {
	db  *sql.DB
	now func() time.Time
}

// DefaultPath returns <data dir>/history.db.
func DefaultPath() (string, error) {
	dir, err := common.GetDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, common.HistoryFileName), nil
}

// Open opens or creates the database at path.
func Open(path string) (*History, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create history schema: %w", err)
	}

	return &History{db: db, now: time.Now}, nil
}

// Record appends conn to the log.
func (h *History) Record(ctx context.Context, conn *connection.Connection) (Entry, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return Entry{}, fmt.Errorf("generate history id: %w", err)
	}

	entry := Entry{
		ID:          id.String(),
		Name:        conn.Name,
		Host:        conn.Host,
		Port:        conn.Port,
		ConnectedAt: h.now(),
	}

	_, err = h.db.ExecContext(ctx,
		`INSERT INTO connections (id, name, host, port, connected_at) VALUES (?, ?, ?, ?, ?)`,
		entry.ID, entry.Name, entry.Host, entry.Port, entry.ConnectedAt.UnixNano())
	if err != nil {
		return Entry{}, fmt.Errorf("record history: %w", err)
	}
	return entry, nil
}

// Recent returns up to limit entries, newest first, keeping only the latest
// entry per host and port.
func (h *History) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		return nil, nil
	}

	rows, err := h.db.QueryContext(ctx,
		`SELECT id, name, host, port, connected_at FROM connections ORDER BY connected_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	type target struct {
		host string
		port int
	}
	seen := make(map[target]bool)
	var entries []Entry

	for len(entries) < limit && rows.Next() {
		var (
			e     Entry
			nanos int64
		)
		if err := rows.Scan(&e.ID, &e.Name, &e.Host, &e.Port, &nanos); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		key := target{e.Host, e.Port}
		if seen[key] {
			continue
		}
		seen[key] = true
		e.ConnectedAt = time.Unix(0, nanos)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	return entries, nil
}

// Clear deletes every entry.
func (h *History) Clear(ctx context.Context) error {
	if _, err := h.db.ExecContext(ctx, `DELETE FROM connections`); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}

// Close closes the database.
func (h *History) Close() error {
	return h.db.Close()
}
