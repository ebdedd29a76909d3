// Package session persists lecture sessions and their generated slides in SQLite.
package session

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS sessions (
	id                     TEXT PRIMARY KEY,
	topic                  TEXT NOT NULL,
	outline                TEXT NOT NULL DEFAULT '[]',
	current_index          INTEGER NOT NULL DEFAULT 0,
	knowledge_level        TEXT NOT NULL DEFAULT 'intermediate',
	in_deep_dive           INTEGER NOT NULL DEFAULT 0,
	deep_dive_parent_index INTEGER,
	deep_dive_concept      TEXT,
	created_at             DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at             DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS slides (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id  TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
	slide_index INTEGER NOT NULL,
	content     TEXT NOT NULL,
	controls    TEXT NOT NULL DEFAULT '[]',
	UNIQUE(session_id, slide_index)
);

CREATE INDEX IF NOT EXISTS idx_slides_session ON slides(session_id);
CREATE INDEX IF NOT EXISTS idx_sessions_updated ON sessions(updated_at);
`

// DB wraps a sql.DB with session operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("session: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("session: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("session: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Ping reports whether the database is reachable.
func (db *DB) Ping() error {
	return db.conn.Ping()
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
