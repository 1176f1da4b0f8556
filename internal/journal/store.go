// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package journal keeps a SQLite history of conversion results, one row per
// converted file.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/fileconv/pkg/types"
)

// defaultLimit bounds List when no limit is given.
const defaultLimit = 50

// Entry is one recorded conversion.
type Entry struct {
	ID         string          `json:"id" yaml:"id"`
	Time       time.Time       `json:"time" yaml:"time"`
	InputPath  string          `json:"input_path" yaml:"input_path"`
	Target     types.Format    `json:"target" yaml:"target"`
	Success    bool            `json:"success" yaml:"success"`
	OutputPath string          `json:"output_path,omitempty" yaml:"output_path,omitempty"`
	Kind       types.ErrorKind `json:"kind,omitempty" yaml:"kind,omitempty"`
	Error      string          `json:"error,omitempty" yaml:"error,omitempty"`
	Duration   time.Duration   `json:"duration" yaml:"duration"`
}

// NewEntry builds an entry for a finished conversion that started at start.
func NewEntry(req types.ConversionRequest, res types.ConversionResult, start time.Time) Entry {
	return Entry{
		Time:       start.UTC(),
		InputPath:  req.InputPath,
		Target:     req.Target,
		Success:    res.Success,
		OutputPath: res.OutputPath,
		Kind:       res.Kind,
		Error:      res.Error,
		Duration:   time.Since(start),
	}
}

// Store manages the journal database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the journal database at path, creating its parent
// directory and schema as needed.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating journal directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening journal: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS conversions (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			time TEXT NOT NULL,
			input_path TEXT NOT NULL,
			target TEXT NOT NULL,
			success INTEGER NOT NULL,
			output_path TEXT,
			kind TEXT,
			error TEXT,
			duration_ms INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_conversions_success ON conversions(success)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record stores e, assigning an ID and timestamp when they are unset, and
// returns the stored entry.
func (s *Store) Record(ctx context.Context, e Entry) (Entry, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Time.IsZero() {
		e.Time = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO conversions (id, time, input_path, target, success, output_path, kind, error, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Time.UTC().Format(time.RFC3339Nano), e.InputPath, string(e.Target), e.Success,
		e.OutputPath, string(e.Kind), e.Error, e.Duration.Milliseconds(),
	)
	if err != nil {
		return Entry{}, fmt.Errorf("recording %s: %w", e.InputPath, err)
	}
	return e, nil
}

// ListOptions filters List.
type ListOptions struct {
	// Limit caps the number of entries (default 50).
	Limit int

	// FailedOnly restricts the listing to failed conversions.
	FailedOnly bool
}

// List returns recorded entries, newest first.
func (s *Store) List(ctx context.Context, opts ListOptions) ([]Entry, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	query := `SELECT id, time, input_path, target, success, output_path, kind, error, duration_ms
		FROM conversions`
	if opts.FailedOnly {
		query += ` WHERE success = 0`
	}
	query += ` ORDER BY seq DESC LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("querying journal: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e                   Entry
			ts, target, kind    string
			outputPath, errText sql.NullString
			durationMS          int64
		)
		if err := rows.Scan(&e.ID, &ts, &e.InputPath, &target, &e.Success, &outputPath, &kind, &errText, &durationMS); err != nil {
			return nil, fmt.Errorf("scanning journal row: %w", err)
		}
		e.Time, err = time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("parsing time of %s: %w", e.ID, err)
		}
		e.Target = types.Format(target)
		e.Kind = types.ErrorKind(kind)
		e.OutputPath = outputPath.String
		e.Error = errText.String
		e.Duration = time.Duration(durationMS) * time.Millisecond
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Summary counts recorded conversions.
type Summary struct {
	Total     int `json:"total" yaml:"total"`
	Succeeded int `json:"succeeded" yaml:"succeeded"`
	Failed    int `json:"failed" yaml:"failed"`
}

// Summarize counts all recorded conversions.
func (s *Store) Summarize(ctx context.Context) (Summary, error) {
	var sum Summary
	err := s.db.QueryRowContext(ctx,
		`SELECT count(*), coalesce(sum(success), 0) FROM conversions`,
	).Scan(&sum.Total, &sum.Succeeded)
	if err != nil {
		return Summary{}, fmt.Errorf("summarizing journal: %w", err)
	}
	sum.Failed = sum.Total - sum.Succeeded
	return sum, nil
}
