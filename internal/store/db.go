// Package store provides SQLite persistence for Loom. It is the
// persistence collaborator of the branching engine: it loads consistent
// snapshots for the engine to compute over, and applies the mutation
// descriptors the engine hands back after guard checks.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const (
	defaultRetryAttempts = 3
	defaultRetryBackoff  = 50 * time.Millisecond
)

// DB wraps a SQLite database connection.
type DB struct {
	conn *sql.DB
	Path string
}

// OpenDB opens (or creates) a SQLite database with WAL mode and foreign
// keys enabled, and applies pending migrations.
func OpenDB(path string, busyTimeoutMs int) (*DB, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("database path required")
	}
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		fmt.Sprintf("PRAGMA busy_timeout=%d", busyTimeoutMs),
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return nil, fmt.Errorf("applying %s: %w", pragma, err)
		}
	}

	db := &DB{conn: conn, Path: path}
	if err := db.migrate(context.Background()); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

// OpenInMemory opens a fresh in-memory database, used by tests.
func OpenInMemory() (*DB, error) {
	return OpenDB(":memory:", 0)
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Transaction runs fn inside a transaction, rolling back on error.
func (db *DB) Transaction(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}
	return tx.Commit()
}

// TransactionWithRetry runs a transaction with retry handling for busy
// database errors.
func (db *DB) TransactionWithRetry(ctx context.Context, fn func(*sql.Tx) error) error {
	attempt := 0
	backoff := defaultRetryBackoff

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		err := db.Transaction(ctx, fn)
		if err == nil {
			return nil
		}

		attempt++
		if !isBusyError(err) || attempt >= defaultRetryAttempts {
			return err
		}
		if err := sleepWithContext(ctx, backoff); err != nil {
			return err
		}
		backoff *= 2
	}
}

func isBusyError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	message := strings.ToLower(err.Error())
	return strings.Contains(message, "database is locked") ||
		strings.Contains(message, "database is busy") ||
		strings.Contains(message, "sqlite_busy")
}

func sleepWithContext(ctx context.Context, duration time.Duration) error {
	timer := time.NewTimer(duration)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS lines (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		parent_line_id TEXT,
		is_main INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS messages (
		id TEXT PRIMARY KEY,
		line_id TEXT NOT NULL,
		content TEXT NOT NULL DEFAULT '',
		timestamp TEXT NOT NULL,
		updated_at TEXT,
		type TEXT NOT NULL DEFAULT 'text',
		metadata TEXT,
		deleted INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_messages_line_id ON messages(line_id)`,
	`CREATE INDEX IF NOT EXISTS idx_messages_timestamp ON messages(timestamp)`,
	`CREATE TABLE IF NOT EXISTS tags (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		color TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS line_tags (
		line_id TEXT NOT NULL,
		tag_id TEXT NOT NULL,
		PRIMARY KEY (line_id, tag_id)
	)`,
}

func (db *DB) migrate(ctx context.Context) error {
	for i, stmt := range migrations {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

const timeLayout = time.RFC3339Nano

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(timeLayout, s)
}
