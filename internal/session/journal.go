package session

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Journal is a local append-only record of every server write the session
// attempted, so an interrupted workout leaves an inspectable trace.
type Journal struct {
	db *sql.DB
}

// JournalEntry is one recorded write attempt.
type JournalEntry struct {
	ID        int64
	At        time.Time
	SessionID string
	Op        string
	Detail    string
	Outcome   string
}

// OpenJournal opens (or creates) the SQLite journal at dir/journal.db.
func OpenJournal(dir string) (*Journal, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating journal dir %s: %w", dir, err)
	}

	dbPath := filepath.Join(dir, "journal.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening journal db: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS session_journal (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		at         TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		session_id TEXT NOT NULL,
		op         TEXT NOT NULL,
		detail     TEXT NOT NULL,
		outcome    TEXT NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating journal table: %w", err)
	}

	return &Journal{db: db}, nil
}

// Record appends one write attempt. Safe on a nil Journal (journaling
// disabled) and never fails the caller: a journal write error is dropped.
func (j *Journal) Record(sessionID uuid.UUID, op, detail string, opErr error) {
	if j == nil {
		return
	}
	outcome := "ok"
	if opErr != nil {
		outcome = "error: " + opErr.Error()
	}
	_, _ = j.db.Exec(
		`INSERT INTO session_journal (session_id, op, detail, outcome) VALUES (?, ?, ?, ?)`,
		sessionID.String(), op, detail, outcome,
	)
}

// Recent returns the newest entries, most recent first.
func (j *Journal) Recent(limit int) ([]JournalEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := j.db.Query(
		`SELECT id, at, session_id, op, detail, outcome
		 FROM session_journal
		 ORDER BY id DESC
		 LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying journal: %w", err)
	}
	defer rows.Close()

	var result []JournalEntry
	for rows.Next() {
		var e JournalEntry
		if err := rows.Scan(&e.ID, &e.At, &e.SessionID, &e.Op, &e.Detail, &e.Outcome); err != nil {
			return nil, fmt.Errorf("scanning journal entry: %w", err)
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

// Close closes the journal database.
func (j *Journal) Close() error {
	if j == nil {
		return nil
	}
	return j.db.Close()
}
