// Package store implements the board store: a process-resident mapping from
// short identifiers to note boards, backed by an in-memory SQLite database.
//
// Nothing here is durable. The default DSN keeps the database in process
// memory; the store starts empty and dies with the process.
package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// DefaultDSN keeps the whole database in process memory.
const DefaultDSN = "file::memory:?_foreign_keys=on"

const schemaSQL = `
CREATE TABLE IF NOT EXISTS boards (
	id            TEXT PRIMARY KEY,
	created_at    INTEGER NOT NULL,
	last_accessed INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS notes (
	board_id TEXT    NOT NULL REFERENCES boards(id) ON DELETE CASCADE,
	position INTEGER NOT NULL,
	note_id  TEXT    NOT NULL,
	text     TEXT    NOT NULL DEFAULT '',
	color    TEXT    NOT NULL DEFAULT '',
	x        REAL    NOT NULL DEFAULT 0,
	y        REAL    NOT NULL DEFAULT 0,
	PRIMARY KEY (board_id, position)
);

CREATE INDEX IF NOT EXISTS idx_boards_last_accessed ON boards(last_accessed);
`

// Store wraps a sql.DB with board operations. Every operation runs in its
// own transaction, which gives the per-identifier atomicity the API relies
// on.
type Store struct {
	conn *sql.DB
}

// Open opens the board database and applies the schema. An empty dsn uses
// DefaultDSN. The pool is capped at one connection: an in-memory SQLite
// database exists per connection, so a single long-lived connection is what
// keeps the boards alive for the life of the store.
func Open(dsn string) (*Store, error) {
	if dsn == "" {
		dsn = DefaultDSN
	}
	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	conn.SetMaxOpenConns(1)
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: apply schema: %w", err)
	}
	return &Store{conn: conn}, nil
}

// Close closes the underlying database connection, discarding all boards.
func (s *Store) Close() error {
	return s.conn.Close()
}
