// Package history persists dispatch outcomes and watchdog runs so an admin
// can review what a lab machine was told to do and how its application
// behaved.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/mattjoyce/ghost/internal/dispatch"
	"github.com/mattjoyce/ghost/internal/supervisor"
)

const (
	maxOutputBytes = 64 * 1024
	defaultLimit   = 50
)

// Dispatch is one persisted dispatch outcome.
type Dispatch struct {
	ID        string
	Raw       string
	Tag       string
	OK        bool
	Kind      string
	Message   string
	Stdout    string
	Stderr    string
	ExitCode  int
	StartedAt time.Time
	Duration  time.Duration
}

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// RecordDispatch stores the outcome of dispatching raw and returns its id.
func (s *Store) RecordDispatch(ctx context.Context, raw string, startedAt time.Time, out dispatch.Outcome) (string, error) {
	id := uuid.NewString()
	var kind any
	if out.Kind != "" {
		kind = string(out.Kind)
	}

	_, err := s.db.ExecContext(ctx, `
INSERT INTO dispatch_log(id, raw, tag, ok, kind, message, stdout, stderr, exit_code, started_at, duration_ms)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
`, id, raw, string(out.Tag), boolToInt(out.OK), kind, out.Message,
		truncate(out.Stdout), truncate(out.Stderr), out.ExitCode,
		startedAt.UTC().Format(time.RFC3339Nano), out.Duration.Milliseconds())
	if err != nil {
		return "", fmt.Errorf("record dispatch: %w", err)
	}
	return id, nil
}

// RecordRun stores a watchdog run. Recording the same run twice keeps the
// latest copy.
func (s *Store) RecordRun(ctx context.Context, run supervisor.Run) error {
	var runErr any
	if run.Error != "" {
		runErr = run.Error
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO supervisor_runs(id, iteration, pid, launch, started_at, ended_at, exit_code, error)
VALUES(?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  pid = excluded.pid,
  ended_at = excluded.ended_at,
  exit_code = excluded.exit_code,
  error = excluded.error;
`, run.ID, run.Iteration, run.PID, run.Launch,
		run.StartedAt.UTC().Format(time.RFC3339Nano), run.EndedAt.UTC().Format(time.RFC3339Nano),
		run.ExitCode, runErr)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}

// ListDispatches returns up to limit dispatches, newest first.
func (s *Store) ListDispatches(ctx context.Context, limit int) ([]Dispatch, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT id, raw, tag, ok, kind, message, stdout, stderr, exit_code, started_at, duration_ms
FROM dispatch_log
ORDER BY started_at DESC, rowid DESC
LIMIT ?;
`, limit)
	if err != nil {
		return nil, fmt.Errorf("list dispatches: %w", err)
	}
	defer rows.Close()

	var out []Dispatch
	for rows.Next() {
		var (
			d          Dispatch
			ok         int
			kind       sql.NullString
			message    sql.NullString
			stdout     sql.NullString
			stderr     sql.NullString
			startedAtS string
			durationMS int64
		)
		if err := rows.Scan(&d.ID, &d.Raw, &d.Tag, &ok, &kind, &message, &stdout, &stderr,
			&d.ExitCode, &startedAtS, &durationMS); err != nil {
			return nil, fmt.Errorf("scan dispatch: %w", err)
		}
		d.OK = ok != 0
		d.Kind = kind.String
		d.Message = message.String
		d.Stdout = stdout.String
		d.Stderr = stderr.String
		d.Duration = time.Duration(durationMS) * time.Millisecond
		if t, err := time.Parse(time.RFC3339Nano, startedAtS); err == nil {
			d.StartedAt = t
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list dispatches: %w", err)
	}
	return out, nil
}

// ListRuns returns up to limit watchdog runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]supervisor.Run, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT id, iteration, pid, launch, started_at, ended_at, exit_code, error
FROM supervisor_runs
ORDER BY started_at DESC, rowid DESC
LIMIT ?;
`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []supervisor.Run
	for rows.Next() {
		var (
			r          supervisor.Run
			pid        sql.NullInt64
			startedAtS string
			endedAtS   string
			runErr     sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.Iteration, &pid, &r.Launch, &startedAtS, &endedAtS,
			&r.ExitCode, &runErr); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.PID = int(pid.Int64)
		r.Error = runErr.String
		if t, err := time.Parse(time.RFC3339Nano, startedAtS); err == nil {
			r.StartedAt = t
		}
		if t, err := time.Parse(time.RFC3339Nano, endedAtS); err == nil {
			r.EndedAt = t
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return out, nil
}

// truncate caps s at maxOutputBytes without splitting a UTF-8 sequence.
func truncate(s string) string {
	if len(s) <= maxOutputBytes {
		return s
	}
	cut := maxOutputBytes
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
