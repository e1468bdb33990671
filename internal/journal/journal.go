package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/fieldcast/fieldcast/internal/switcher"
)

// Storage constants.
const (
	// dirPermissions is the permission mode for the journal directory.
	dirPermissions = 0750

	// busyTimeoutMS is the maximum time to wait for a database lock.
	busyTimeoutMS = 5000

	// connectionTimeout is the timeout for verifying connectivity on open.
	connectionTimeout = 5 * time.Second
)

// schema is applied on every open; all statements are idempotent.
const schema = `
CREATE TABLE IF NOT EXISTS switch_history (
	id      TEXT PRIMARY KEY,
	at      TEXT NOT NULL,
	field   INTEGER NOT NULL,
	scene   TEXT NOT NULL,
	outcome TEXT NOT NULL,
	detail  TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_switch_history_at ON switch_history(at);
`

// Config contains journal storage options.
type Config struct {
	// Path is the filesystem path to the SQLite database file.
	// The directory is created if it doesn't exist.
	Path string
}

// Store persists the switch-attempt history in SQLite.
//
// It satisfies switcher.Recorder, so a Store plugs straight into the
// coordinator. Writes are serialised on a single connection.
type Store struct {
	db   *sql.DB
	path string
}

// Entry is one recorded switch attempt.
type Entry struct {
	ID      string
	At      time.Time
	Field   int
	Scene   string
	Outcome string
	Detail  string
}

// Open creates or opens the journal database and ensures the schema.
//
// WAL mode is enabled so front ends can read history while a session is
// writing. The connection is verified with a ping before returning.
func Open(cfg Config) (*Store, error) {
	dir := filepath.Dir(cfg.Path)
	if err := os.MkdirAll(dir, dirPermissions); err != nil {
		return nil, fmt.Errorf("creating journal directory: %w", err)
	}

	connStr := fmt.Sprintf(
		"file:%s?_busy_timeout=%d&_journal_mode=WAL&_synchronous=NORMAL",
		cfg.Path, busyTimeoutMS,
	)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("opening journal: %w", err)
	}

	// SQLite supports a single writer; one connection avoids lock churn.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("verifying journal connection: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensuring journal schema: %w", err)
	}

	return &Store{db: db, path: cfg.Path}, nil
}

// RecordSwitch stores one switch attempt. Implements switcher.Recorder.
func (s *Store) RecordSwitch(ctx context.Context, rec switcher.Record) error {
	at := rec.At
	if at.IsZero() {
		at = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO switch_history (id, at, field, scene, outcome, detail)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		uuid.NewString(),
		at.UTC().Format(time.RFC3339Nano),
		rec.Field,
		rec.Scene,
		string(rec.Outcome),
		rec.Detail,
	)
	if err != nil {
		return fmt.Errorf("recording switch: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, at, field, scene, outcome, detail
		 FROM switch_history ORDER BY at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying switch history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var at string
		if err := rows.Scan(&e.ID, &at, &e.Field, &e.Scene, &e.Outcome, &e.Detail); err != nil {
			return nil, fmt.Errorf("scanning switch history row: %w", err)
		}
		e.At, err = time.Parse(time.RFC3339Nano, at)
		if err != nil {
			return nil, fmt.Errorf("parsing switch history timestamp %q: %w", at, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading switch history: %w", err)
	}
	return entries, nil
}

// HealthCheck verifies the journal database is reachable.
func (s *Store) HealthCheck(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("journal: %w", err)
	}
	return nil
}

// Close closes the journal database.
func (s *Store) Close() error {
	return s.db.Close()
}
