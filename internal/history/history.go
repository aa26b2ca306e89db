// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history keeps a SQLite ledger of orchestration runs. Artifact
// files are overwritten on every run; the ledger keeps one row per run
// and one row per agent outcome so earlier runs stay inspectable.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/research-assistant/pkg/types"
)

const defaultListLimit = 20

// timeLayout has a fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Outcome values stored for a run.
const (
	OutcomeCompleted = "completed"
	OutcomeFailed    = "failed"
)

// Run is one ledger entry.
type Run struct {
	RunID      string
	Query      string
	StartedAt  time.Time
	Duration   time.Duration
	Outcome    string
	Error      string
	BundlePath string
	Agents     map[types.AgentName]types.AgentStatus
}

// ListOptions filters List.
type ListOptions struct {
	// Limit caps the number of runs returned, newest first (default 20).
	Limit int

	// QueryContains keeps runs whose query contains this text.
	QueryContains string
}

// Store manages the run ledger database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the ledger at path, creating the parent
// directory and schema as needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating history directory: %w", err)
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
			run_id TEXT PRIMARY KEY,
			query TEXT NOT NULL,
			started_at TEXT NOT NULL,
			duration_ms INTEGER NOT NULL,
			outcome TEXT NOT NULL,
			error TEXT,
			bundle_path TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS agent_runs (
			run_id TEXT NOT NULL REFERENCES runs(run_id) ON DELETE CASCADE,
			agent TEXT NOT NULL,
			state TEXT NOT NULL,
			error_kind TEXT,
			error TEXT,
			PRIMARY KEY (run_id, agent)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record inserts run and its agent outcomes in one transaction.
func (s *Store) Record(ctx context.Context, run Run) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (run_id, query, started_at, duration_ms, outcome, error, bundle_path)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.RunID, run.Query, run.StartedAt.UTC().Format(timeLayout),
		run.Duration.Milliseconds(), run.Outcome, run.Error, run.BundlePath,
	)
	if err != nil {
		return fmt.Errorf("inserting run %s: %w", run.RunID, err)
	}

	for agent, st := range run.Agents {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO agent_runs (run_id, agent, state, error_kind, error) VALUES (?, ?, ?, ?, ?)`,
			run.RunID, string(agent), string(st.State), st.ErrorKind, st.Error,
		)
		if err != nil {
			return fmt.Errorf("inserting agent %s for run %s: %w", agent, run.RunID, err)
		}
	}

	return tx.Commit()
}

// List returns recorded runs, newest first.
func (s *Store) List(ctx context.Context, opts ListOptions) ([]Run, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	query := `SELECT run_id, query, started_at, duration_ms, outcome, COALESCE(error, ''), COALESCE(bundle_path, '')
		FROM runs`
	var args []any
	if opts.QueryContains != "" {
		query += ` WHERE query LIKE ? ESCAPE '\'`
		args = append(args, "%"+escapeLike(opts.QueryContains)+"%")
	}
	query += ` ORDER BY started_at DESC, run_id LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r          Run
			startedAt  string
			durationMS int64
		)
		if err := rows.Scan(&r.RunID, &r.Query, &startedAt, &durationMS, &r.Outcome, &r.Error, &r.BundlePath); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.StartedAt, _ = time.Parse(timeLayout, startedAt)
		r.Duration = time.Duration(durationMS) * time.Millisecond
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}

	for i := range runs {
		agents, err := s.agents(ctx, runs[i].RunID)
		if err != nil {
			return nil, err
		}
		runs[i].Agents = agents
	}
	return runs, nil
}

func (s *Store) agents(ctx context.Context, runID string) (map[types.AgentName]types.AgentStatus, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT agent, state, COALESCE(error_kind, ''), COALESCE(error, '') FROM agent_runs WHERE run_id = ?`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying agents for run %s: %w", runID, err)
	}
	defer rows.Close()

	agents := make(map[types.AgentName]types.AgentStatus)
	for rows.Next() {
		var agent, state string
		var st types.AgentStatus
		if err := rows.Scan(&agent, &state, &st.ErrorKind, &st.Error); err != nil {
			return nil, fmt.Errorf("scanning agent row: %w", err)
		}
		st.State = types.AgentState(state)
		agents[types.AgentName(agent)] = st
	}
	return agents, rows.Err()
}

func escapeLike(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r == '%' || r == '_' || r == '\\' {
			out = append(out, '\\')
		}
		out = append(out, r)
	}
	return string(out)
}
