package session

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

// TestJournalRecordAndRecent verifies appended attempts come back newest
// first with their outcomes.
func TestJournalRecordAndRecent(t *testing.T) {
	j, err := OpenJournal(t.TempDir())
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	defer j.Close()

	id := uuid.New()
	j.Record(id, "start-workout", "Monday", nil)
	j.Record(id, "log-exercise", "Bench Press", errors.New("server unavailable"))

	entries, err := j.Recent(10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}

	// Newest first.
	if entries[0].Op != "log-exercise" {
		t.Errorf("entries[0].Op = %q, want log-exercise", entries[0].Op)
	}
	if entries[0].Outcome != "error: server unavailable" {
		t.Errorf("outcome = %q", entries[0].Outcome)
	}
	if entries[1].Outcome != "ok" {
		t.Errorf("outcome = %q, want ok", entries[1].Outcome)
	}
	if entries[1].SessionID != id.String() {
		t.Errorf("session ID = %q, want %s", entries[1].SessionID, id)
	}
}

// TestJournalNilSafe verifies a nil journal silently drops records.
func TestJournalNilSafe(t *testing.T) {
	var j *Journal
	j.Record(uuid.New(), "start-workout", "Monday", nil)
	if err := j.Close(); err != nil {
		t.Errorf("close nil journal: %v", err)
	}
}
