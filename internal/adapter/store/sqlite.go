// Package store persists invocation history.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"aitools/internal/domain"
)

// StatusDiscarded marks a submission that was reset, disposed or superseded
// before it settled.
const StatusDiscarded domain.Status = "discarded"

// SQLiteStore implements domain.InvocationStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

var _ domain.InvocationStore = (*SQLiteStore)(nil)

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and runs the
// schema migration. The parent directory is created if missing.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	// Event handlers write concurrently; one connection serializes them.
	db.SetMaxOpenConns(1)
	for _, pragma := range []string{"journal_mode=WAL", "busy_timeout=5000"} {
		if _, err := db.Exec("PRAGMA " + pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("set PRAGMA %s: %w", pragma, err)
		}
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate history db: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func migrate(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS invocations (
			token        TEXT PRIMARY KEY,
			tool         TEXT NOT NULL,
			status       TEXT NOT NULL,
			error_code   TEXT NOT NULL DEFAULT '',
			error        TEXT NOT NULL DEFAULT '',
			submitted_at TEXT NOT NULL DEFAULT '',
			finished_at  TEXT NOT NULL DEFAULT ''
		)
	`)
	return err
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Begin records a submission. A record that already settled keeps its
// outcome and only gains the submission time.
func (s *SQLiteStore) Begin(ctx context.Context, rec domain.InvocationRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO invocations (token, tool, status, submitted_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(token) DO UPDATE SET
			submitted_at = CASE WHEN invocations.submitted_at = '' THEN excluded.submitted_at ELSE invocations.submitted_at END`,
		string(rec.Token), string(rec.Tool), string(rec.Status), formatTime(rec.SubmittedAt),
	)
	if err != nil {
		return domain.NewDomainError("SQLiteStore.Begin", domain.ErrStoreWrite, err.Error())
	}
	return nil
}

// Finish stores the settled outcome of rec.Token, inserting the record if
// its Begin has not landed yet.
func (s *SQLiteStore) Finish(ctx context.Context, rec domain.InvocationRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO invocations (token, tool, status, error_code, error, submitted_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(token) DO UPDATE SET
			status = excluded.status,
			error_code = excluded.error_code,
			error = excluded.error,
			finished_at = excluded.finished_at,
			submitted_at = CASE WHEN invocations.submitted_at = '' THEN excluded.submitted_at ELSE invocations.submitted_at END`,
		string(rec.Token), string(rec.Tool), string(rec.Status), string(rec.ErrorCode), rec.Error,
		formatTime(rec.SubmittedAt), formatTime(rec.FinishedAt),
	)
	if err != nil {
		return domain.NewDomainError("SQLiteStore.Finish", domain.ErrStoreWrite, err.Error())
	}
	return nil
}

// Recent returns up to limit records, newest submission first.
func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]domain.InvocationRecord, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT token, tool, status, error_code, error, submitted_at, finished_at
		FROM invocations ORDER BY token DESC LIMIT ?`, limit)
	if err != nil {
		return nil, domain.WrapOp("SQLiteStore.Recent", err)
	}
	defer rows.Close()

	var out []domain.InvocationRecord
	for rows.Next() {
		var rec domain.InvocationRecord
		var token, tool, status, code, submitted, finished string
		if err := rows.Scan(&token, &tool, &status, &code, &rec.Error, &submitted, &finished); err != nil {
			return nil, domain.WrapOp("SQLiteStore.Recent", err)
		}
		rec.Token = domain.Token(token)
		rec.Tool = domain.ToolID(tool)
		rec.Status = domain.Status(status)
		rec.ErrorCode = domain.ErrorCode(code)
		rec.SubmittedAt = parseTime(submitted)
		rec.FinishedAt = parseTime(finished)
		out = append(out, rec)
	}
	return out, rows.Err()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}
