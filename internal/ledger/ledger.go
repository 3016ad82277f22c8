// Package ledger keeps a local record of the caller's own submissions: task
// id, seed and filename. The seed is a capability token the service only
// hands out once, at submission time; the ledger is what lets the CLI query
// a task later without the user copying seeds around. No analysis output is
// ever stored.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // pure-Go SQLite driver
)

// DefaultFileName is the ledger database file name under the state directory.
const DefaultFileName = "ledger.db"

// ErrNotFound is returned when no recorded submission matches a task id.
var ErrNotFound = errors.New("no recorded submission for task")

const schema = `
CREATE TABLE IF NOT EXISTS submissions (
	task_id      TEXT PRIMARY KEY,
	seed         TEXT NOT NULL,
	filename     TEXT NOT NULL,
	link         TEXT NOT NULL DEFAULT '',
	submitted_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_submissions_submitted_at ON submissions (submitted_at DESC);
`

// Submission is one recorded file submission.
type Submission struct {
	TaskID      string    `json:"taskId"`
	Seed        string    `json:"seed"`
	Filename    string    `json:"filename"`
	Link        string    `json:"link,omitempty"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// Ledger is a SQLite-backed submission record. Safe to reopen between
// process invocations; the schema is applied on open.
type Ledger struct {
	db *sql.DB
}

// DefaultPath returns the ledger location under the user config directory,
// creating the directory if needed.
func DefaultPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("cannot locate user config directory: %w", err)
	}
	dir := filepath.Join(configDir, "pandora")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("cannot create state directory: %w", err)
	}
	return filepath.Join(dir, DefaultFileName), nil
}

// Open opens (or creates) the ledger database at path and applies the schema.
func Open(path string) (*Ledger, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply ledger schema: %w", err)
	}

	return &Ledger{db: db}, nil
}

// Close releases the underlying database handle.
func (l *Ledger) Close() error {
	return l.db.Close()
}

// Record stores one submission. Recording the same task id again replaces
// the previous row, which only happens when the service reissues a seed.
func (l *Ledger) Record(ctx context.Context, s Submission) error {
	if s.TaskID == "" {
		return errors.New("submission task id cannot be empty")
	}
	if s.SubmittedAt.IsZero() {
		s.SubmittedAt = time.Now().UTC()
	}

	_, err := l.db.ExecContext(ctx, `
		INSERT INTO submissions (task_id, seed, filename, link, submitted_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(task_id) DO UPDATE SET
			seed = excluded.seed,
			filename = excluded.filename,
			link = excluded.link,
			submitted_at = excluded.submitted_at`,
		s.TaskID, s.Seed, s.Filename, s.Link, s.SubmittedAt)
	if err != nil {
		return fmt.Errorf("failed to record submission: %w", err)
	}
	return nil
}

// Seed returns the recorded seed for a task id, or ErrNotFound.
func (l *Ledger) Seed(ctx context.Context, taskID string) (string, error) {
	var seed string
	err := l.db.QueryRowContext(ctx,
		`SELECT seed FROM submissions WHERE task_id = ?`, taskID).Scan(&seed)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: %s", ErrNotFound, taskID)
	}
	if err != nil {
		return "", fmt.Errorf("failed to look up seed: %w", err)
	}
	return seed, nil
}

// List returns the most recent submissions, newest first. limit <= 0 means
// no limit.
func (l *Ledger) List(ctx context.Context, limit int) ([]Submission, error) {
	query := `SELECT task_id, seed, filename, link, submitted_at
		FROM submissions ORDER BY submitted_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	defer rows.Close()

	var subs []Submission
	for rows.Next() {
		var s Submission
		if err := rows.Scan(&s.TaskID, &s.Seed, &s.Filename, &s.Link, &s.SubmittedAt); err != nil {
			return nil, fmt.Errorf("failed to scan submission row: %w", err)
		}
		subs = append(subs, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate submissions: %w", err)
	}
	return subs, nil
}
