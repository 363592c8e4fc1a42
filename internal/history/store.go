package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// schemaVersion is the current schema version. Bump this when the schema
// changes. Users will need to delete the history database after schema
// changes.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database schema version doesn't match the
// expected version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

const schemaSQL = `
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS sessions (
    id TEXT PRIMARY KEY,
    meeting_id TEXT NOT NULL,
    bot_name TEXT NOT NULL,
    title TEXT NOT NULL DEFAULT '',
    outcome TEXT NOT NULL DEFAULT '',
    video_enabled INTEGER NOT NULL DEFAULT 0,
    recording_started INTEGER NOT NULL DEFAULT 0,
    retries INTEGER NOT NULL DEFAULT 0,
    output_dir TEXT NOT NULL DEFAULT '',
    started_at TEXT NOT NULL,
    ended_at TEXT
);

CREATE INDEX IF NOT EXISTS idx_sessions_started_at ON sessions(started_at);
`

// Record is one row of session history.
type Record struct {
	ID               string
	MeetingID        string
	BotName          string
	Title            string
	Outcome          string
	VideoEnabled     bool
	RecordingStarted bool
	Retries          int
	OutputDir        string
	StartedAt        time.Time
	EndedAt          time.Time
}

// Store manages session history backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the history database under dir.
func Open(dir string) (*Store, error) {
	dbPath := filepath.Join(dir, "history.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	err = s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

// Begin records that a session started.
func (s *Store) Begin(ctx context.Context, rec Record) error {
	if rec.ID == "" {
		return errors.New("record id required")
	}
	if rec.StartedAt.IsZero() {
		rec.StartedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO sessions (id, meeting_id, bot_name, video_enabled, output_dir, started_at)
VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.MeetingID, rec.BotName, boolToInt(rec.VideoEnabled),
		rec.OutputDir, rec.StartedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("insert session record: %w", err)
	}
	return nil
}

// Finish records the session outcome.
func (s *Store) Finish(ctx context.Context, rec Record) error {
	endedAt := rec.EndedAt
	if endedAt.IsZero() {
		endedAt = time.Now().UTC()
	}
	res, err := s.db.ExecContext(ctx, `
UPDATE sessions
SET title = ?, outcome = ?, recording_started = ?, retries = ?, ended_at = ?
WHERE id = ?`,
		NormalizeTitle(rec.Title), rec.Outcome, boolToInt(rec.RecordingStarted),
		rec.Retries, endedAt.UTC().Format(time.RFC3339), rec.ID)
	if err != nil {
		return fmt.Errorf("update session record: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("confirm session update: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("session %s not found", rec.ID)
	}
	return nil
}

// List returns the most recent sessions, newest first. A limit of zero or
// less returns everything.
func (s *Store) List(ctx context.Context, limit int) ([]Record, error) {
	query := `
SELECT id, meeting_id, bot_name, title, outcome, video_enabled,
       recording_started, retries, output_dir, started_at, ended_at
FROM sessions
ORDER BY started_at DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			rec              Record
			videoEnabled     int
			recordingStarted int
			startedAt        string
			endedAt          sql.NullString
		)
		if err := rows.Scan(&rec.ID, &rec.MeetingID, &rec.BotName, &rec.Title, &rec.Outcome,
			&videoEnabled, &recordingStarted, &rec.Retries, &rec.OutputDir, &startedAt, &endedAt); err != nil {
			return nil, fmt.Errorf("scan session row: %w", err)
		}
		rec.VideoEnabled = videoEnabled != 0
		rec.RecordingStarted = recordingStarted != 0
		rec.StartedAt = parseInstant(startedAt)
		if endedAt.Valid {
			rec.EndedAt = parseInstant(endedAt.String)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate session rows: %w", err)
	}
	return records, nil
}

// NormalizeTitle trims and title-cases a stored meeting title.
func NormalizeTitle(title string) string {
	title = strings.Join(strings.Fields(title), " ")
	if title == "" {
		return ""
	}
	return cases.Title(language.Und, cases.NoLower).String(title)
}

func parseInstant(value string) time.Time {
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}
	}
	return parsed
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
