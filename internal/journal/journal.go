// Package journal keeps a bounded history of dispatches in a SQLite
// database so runs can be inspected after the fact with `micetimer history`.
package journal

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Run is one recorded dispatch.
type Run struct {
	ID         string
	Timer      string
	Command    string
	Outcome    string
	ExitCode   int
	Error      string
	StartedAt  time.Time
	FinishedAt time.Time
	WakeLock   bool
}

// Duration returns how long the command ran.
func (r Run) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Journal provides SQLite persistence for dispatch history.
type Journal struct {
	db     *sql.DB
	mu     sync.Mutex
	retain int
}

// Open opens or creates the journal at path. retain bounds the number of
// runs kept; zero keeps everything.
func Open(path string, retain int) (*Journal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to configure journal: %w", err)
	}

	j := &Journal{db: db, retain: retain}
	if err := j.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate journal: %w", err)
	}
	return j, nil
}

func (j *Journal) migrate() error {
	_, err := j.db.Exec(`
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		timer TEXT NOT NULL,
		command TEXT NOT NULL,
		outcome TEXT NOT NULL,
		exit_code INTEGER NOT NULL,
		error TEXT NOT NULL DEFAULT '',
		started_at INTEGER NOT NULL,
		finished_at INTEGER NOT NULL,
		wake_lock INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_timer ON runs(timer);
	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
	`)
	return err
}

// Close closes the database connection.
func (j *Journal) Close() error {
	return j.db.Close()
}

// Record stores r and prunes the oldest runs beyond the retention limit.
func (j *Journal) Record(r Run) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	_, err := j.db.Exec(`
		INSERT INTO runs (id, timer, command, outcome, exit_code, error, started_at, finished_at, wake_lock)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.ID, r.Timer, r.Command, r.Outcome, r.ExitCode, r.Error,
		r.StartedAt.UnixNano(), r.FinishedAt.UnixNano(), r.WakeLock)
	if err != nil {
		return fmt.Errorf("failed to record run %s: %w", r.ID, err)
	}

	if j.retain <= 0 {
		return nil
	}
	_, err = j.db.Exec(`
		DELETE FROM runs WHERE id NOT IN (
			SELECT id FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?
		)
	`, j.retain)
	if err != nil {
		return fmt.Errorf("failed to prune journal: %w", err)
	}
	return nil
}

// Recent returns up to limit runs, newest first. An empty timer matches
// every timer; a non-positive limit means 20.
func (j *Journal) Recent(timer string, limit int) ([]Run, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if limit <= 0 {
		limit = 20
	}

	rows, err := j.db.Query(`
		SELECT id, timer, command, outcome, exit_code, error, started_at, finished_at, wake_lock
		FROM runs
		WHERE ? = '' OR timer = ?
		ORDER BY started_at DESC, rowid DESC
		LIMIT ?
	`, timer, timer, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var started, finished int64
		if err := rows.Scan(&r.ID, &r.Timer, &r.Command, &r.Outcome, &r.ExitCode, &r.Error,
			&started, &finished, &r.WakeLock); err != nil {
			return nil, err
		}
		r.StartedAt = time.Unix(0, started)
		r.FinishedAt = time.Unix(0, finished)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
