package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/mtaverne/corkboard/internal/apperr"
	"github.com/mtaverne/corkboard/internal/board"
)

// BoardStore defines the board operations consumed by the HTTP API and the
// MCP server. Consumers should depend on this interface rather than the
// concrete *Store type to facilitate testing with mocks.
type BoardStore interface {
	Create(notes []board.Note) (*board.Board, error)
	Get(id string) (*board.Board, error)
	Replace(id string, notes []board.Note) (*board.Board, error)
	Remove(id string) (*board.RemoveSummary, error)
	Diagnostics() (*Diagnostics, error)
}

// Verify *Store satisfies BoardStore at compile time.
var _ BoardStore = (*Store)(nil)

// BoardSummary is a board reduced to what diagnostics reports.
type BoardSummary struct {
	ID           string    `json:"id"`
	NotesCount   int       `json:"notesCount"`
	LastAccessed time.Time `json:"lastAccessed"`
}

// Diagnostics aggregates store-wide counts plus the five most-recently
// accessed boards.
type Diagnostics struct {
	Boards           int            `json:"boards"`
	Notes            int            `json:"notes"`
	RecentlyAccessed []BoardSummary `json:"recentlyAccessed"`
}

func validateNotes(notes []board.Note) error {
	if err := validation.Validate(notes, validation.Required); err != nil {
		return fmt.Errorf("%w: notes must be a non-empty array", apperr.ErrValidation)
	}
	return nil
}

// Create allocates a fresh identifier, stores the notes under it, and
// returns the new board. Empty note payloads are rejected: a board is
// non-empty for as long as it exists.
func (s *Store) Create(notes []board.Note) (*board.Board, error) {
	if err := validateNotes(notes); err != nil {
		return nil, err
	}

	tx, err := s.conn.Begin()
	if err != nil {
		return nil, fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	id, err := board.AllocateID(func(candidate string) (bool, error) {
		var n int
		if err := tx.QueryRow(`SELECT count(*) FROM boards WHERE id = ?`, candidate).Scan(&n); err != nil {
			return false, err
		}
		return n > 0, nil
	})
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if _, err := tx.Exec(`INSERT INTO boards (id, created_at, last_accessed) VALUES (?, ?, ?)`,
		id, now.UnixNano(), now.UnixNano()); err != nil {
		return nil, fmt.Errorf("store: insert board: %w", err)
	}
	if err := insertNotes(tx, id, notes); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("store: commit: %w", err)
	}

	return &board.Board{ID: id, Notes: cloneNotes(notes), CreatedAt: now, LastAccessed: now}, nil
}

// Get returns the board stored under id and refreshes its last-accessed
// instant.
func (s *Store) Get(id string) (*board.Board, error) {
	if err := board.ValidateID(id); err != nil {
		return nil, err
	}

	tx, err := s.conn.Begin()
	if err != nil {
		return nil, fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	rec, err := touchBoard(tx, id)
	if err != nil {
		return nil, err
	}
	rec.Notes, err = selectNotes(tx, id)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("store: commit: %w", err)
	}
	return rec, nil
}

// Replace overwrites the notes stored under id. The non-empty invariant
// holds here too: callers wanting to empty a board must remove it instead.
func (s *Store) Replace(id string, notes []board.Note) (*board.Board, error) {
	if err := board.ValidateID(id); err != nil {
		return nil, err
	}
	if err := validateNotes(notes); err != nil {
		return nil, err
	}

	tx, err := s.conn.Begin()
	if err != nil {
		return nil, fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	rec, err := touchBoard(tx, id)
	if err != nil {
		return nil, err
	}
	if _, err := tx.Exec(`DELETE FROM notes WHERE board_id = ?`, id); err != nil {
		return nil, fmt.Errorf("store: clear notes: %w", err)
	}
	if err := insertNotes(tx, id, notes); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("store: commit: %w", err)
	}

	rec.Notes = cloneNotes(notes)
	return rec, nil
}

// Remove deletes the board stored under id and returns a removal summary.
func (s *Store) Remove(id string) (*board.RemoveSummary, error) {
	if err := board.ValidateID(id); err != nil {
		return nil, err
	}

	tx, err := s.conn.Begin()
	if err != nil {
		return nil, fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var count int
	if err := tx.QueryRow(`SELECT count(*) FROM notes WHERE board_id = ?`, id).Scan(&count); err != nil {
		return nil, fmt.Errorf("store: count notes: %w", err)
	}
	res, err := tx.Exec(`DELETE FROM boards WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("store: delete board: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return nil, fmt.Errorf("%w: board %s", apperr.ErrNotFound, id)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("store: commit: %w", err)
	}

	return &board.RemoveSummary{ID: id, NotesCount: count}, nil
}

// Diagnostics reports aggregate counts and the five most-recently-accessed
// boards. Unlike reads, it does not refresh any last-accessed instant.
func (s *Store) Diagnostics() (*Diagnostics, error) {
	d := &Diagnostics{RecentlyAccessed: []BoardSummary{}}

	if err := s.conn.QueryRow(`SELECT count(*) FROM boards`).Scan(&d.Boards); err != nil {
		return nil, fmt.Errorf("store: count boards: %w", err)
	}
	if err := s.conn.QueryRow(`SELECT count(*) FROM notes`).Scan(&d.Notes); err != nil {
		return nil, fmt.Errorf("store: count notes: %w", err)
	}

	rows, err := s.conn.Query(`
		SELECT b.id, count(n.position), b.last_accessed
		FROM boards b JOIN notes n ON n.board_id = b.id
		GROUP BY b.id
		ORDER BY b.last_accessed DESC
		LIMIT 5
	`)
	if err != nil {
		return nil, fmt.Errorf("store: recent boards: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var sum BoardSummary
		var accessed int64
		if err := rows.Scan(&sum.ID, &sum.NotesCount, &accessed); err != nil {
			return nil, err
		}
		sum.LastAccessed = time.Unix(0, accessed)
		d.RecentlyAccessed = append(d.RecentlyAccessed, sum)
	}
	return d, rows.Err()
}

// touchBoard loads the board row for id and bumps last_accessed within the
// caller's transaction. The MAX keeps the instant monotonically
// non-decreasing even if the wall clock steps backwards.
func touchBoard(tx *sql.Tx, id string) (*board.Board, error) {
	var created, accessed int64
	err := tx.QueryRow(`SELECT created_at, last_accessed FROM boards WHERE id = ?`, id).Scan(&created, &accessed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: board %s", apperr.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("store: load board: %w", err)
	}

	now := time.Now().UnixNano()
	if now < accessed {
		now = accessed
	}
	if _, err := tx.Exec(`UPDATE boards SET last_accessed = ? WHERE id = ?`, now, id); err != nil {
		return nil, fmt.Errorf("store: touch board: %w", err)
	}

	return &board.Board{
		ID:           id,
		CreatedAt:    time.Unix(0, created),
		LastAccessed: time.Unix(0, now),
	}, nil
}

func insertNotes(tx *sql.Tx, boardID string, notes []board.Note) error {
	stmt, err := tx.Prepare(`INSERT INTO notes (board_id, position, note_id, text, color, x, y) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("store: prepare note insert: %w", err)
	}
	defer stmt.Close()
	for i, n := range notes {
		if _, err := stmt.Exec(boardID, i, n.ID, n.Text, n.Color, n.X, n.Y); err != nil {
			return fmt.Errorf("store: insert note: %w", err)
		}
	}
	return nil
}

func selectNotes(tx *sql.Tx, boardID string) ([]board.Note, error) {
	rows, err := tx.Query(`SELECT note_id, text, color, x, y FROM notes WHERE board_id = ? ORDER BY position`, boardID)
	if err != nil {
		return nil, fmt.Errorf("store: select notes: %w", err)
	}
	defer rows.Close()

	out := make([]board.Note, 0, 8)
	for rows.Next() {
		var n board.Note
		if err := rows.Scan(&n.ID, &n.Text, &n.Color, &n.X, &n.Y); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func cloneNotes(notes []board.Note) []board.Note {
	out := make([]board.Note, len(notes))
	copy(out, notes)
	return out
}
