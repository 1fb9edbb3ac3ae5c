// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store keeps the most recent audit run in a SQLite database.
// Saving a run replaces the previous one; no history is kept.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/linkaudit/internal/report"
	"github.com/pdiddy/linkaudit/pkg/types"
)

// ErrNoRun is returned by Latest when nothing has been saved yet.
var ErrNoRun = errors.New("no audit run stored")

// Run is a stored audit run.
type Run struct {
	ID     string
	Report types.Report
}

// Store manages the latest-run SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path and ensures the schema exists.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
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
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			generated_at TEXT NOT NULL,
			total INTEGER NOT NULL,
			issue_count INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS issues (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			url TEXT NOT NULL,
			source TEXT NOT NULL,
			referenced_product TEXT,
			status INTEGER,
			error TEXT,
			PRIMARY KEY (run_id, position)
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Save replaces the stored run with r and returns the new run ID.
func (s *Store) Save(ctx context.Context, r types.Report) (string, error) {
	id := uuid.NewString()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM issues`); err != nil {
		return "", fmt.Errorf("clearing issues: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM runs`); err != nil {
		return "", fmt.Errorf("clearing runs: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, generated_at, total, issue_count) VALUES (?, ?, ?, ?)`,
		id, r.GeneratedAt.UTC().Format(time.RFC3339Nano), r.Total, r.IssueCount,
	); err != nil {
		return "", fmt.Errorf("inserting run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO issues (run_id, position, url, source, referenced_product, status, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("preparing issue insert: %w", err)
	}
	defer stmt.Close()

	for i, issue := range r.Issues {
		var status sql.NullInt64
		if issue.Status != nil {
			status = sql.NullInt64{Int64: int64(*issue.Status), Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, id, i, issue.URL, issue.Source,
			issue.ReferencedProduct, status, issue.Error); err != nil {
			return "", fmt.Errorf("inserting issue %s: %w", issue.URL, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing run: %w", err)
	}
	return id, nil
}

// Latest returns the stored run. ByStatus is recomputed from the issues.
func (s *Store) Latest(ctx context.Context) (Run, error) {
	var (
		run         Run
		generatedAt string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, generated_at, total, issue_count FROM runs LIMIT 1`,
	).Scan(&run.ID, &generatedAt, &run.Report.Total, &run.Report.IssueCount)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrNoRun
	}
	if err != nil {
		return Run{}, fmt.Errorf("querying run: %w", err)
	}
	t, err := time.Parse(time.RFC3339Nano, generatedAt)
	if err != nil {
		return Run{}, fmt.Errorf("parsing run timestamp %q: %w", generatedAt, err)
	}
	run.Report.GeneratedAt = t

	rows, err := s.db.QueryContext(ctx,
		`SELECT url, source, referenced_product, status, error
		 FROM issues WHERE run_id = ? ORDER BY position`, run.ID)
	if err != nil {
		return Run{}, fmt.Errorf("querying issues: %w", err)
	}
	defer rows.Close()

	run.Report.Issues = []types.CheckOutcome{}
	for rows.Next() {
		var (
			o       types.CheckOutcome
			product sql.NullString
			status  sql.NullInt64
			errText sql.NullString
		)
		if err := rows.Scan(&o.URL, &o.Source, &product, &status, &errText); err != nil {
			return Run{}, fmt.Errorf("scanning issue: %w", err)
		}
		o.ReferencedProduct = product.String
		o.Error = errText.String
		if status.Valid {
			o.Status = types.IntPtr(int(status.Int64))
		}
		run.Report.Issues = append(run.Report.Issues, o)
	}
	if err := rows.Err(); err != nil {
		return Run{}, fmt.Errorf("iterating issues: %w", err)
	}

	run.Report.AllClear = run.Report.IssueCount == 0
	run.Report.ByStatus = report.Build(run.Report.Issues, t).ByStatus
	return run, nil
}
