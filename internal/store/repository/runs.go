package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/fortuna/moneta/internal/store"
)

var runFields = []string{
	"run_id", "season", "trigger", "status", "status_message",
	"input_rows", "joined_rows", "valued_rows", "unresolved_opponents", "players_valued", "unmatched_salary",
	"last_error", "created_at", "updated_at", "started_at", "completed_at",
}

var runColumns = strings.Join(runFields, ", ")

// RunRepository handles persistence for valuation runs.
type RunRepository struct {
	db *store.Database
}

// NewRunRepository constructs a RunRepository.
func NewRunRepository(db *store.Database) *RunRepository {
	return &RunRepository{db: db}
}

// Create inserts a queued run with a fresh id and returns the stored record.
func (r *RunRepository) Create(ctx context.Context, season string, trigger store.RunTrigger) (*store.ValuationRun, error) {
	query := `
		INSERT INTO valuation_runs (run_id, season, trigger, status, status_message)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + runColumns

	row := r.db.DB().QueryRowContext(ctx, query,
		uuid.NewString(), season, string(trigger), string(store.RunStatusQueued), "Queued",
	)

	run, err := scanRun(row)
	if err != nil {
		return nil, fmt.Errorf("create run: %w", err)
	}
	return run, nil
}

// UpdateStatus updates status, message and optional error.
func (r *RunRepository) UpdateStatus(ctx context.Context, runID string, status store.RunStatus, message string, lastErr error) error {
	query := `
		UPDATE valuation_runs
		SET status = $2::varchar,
			status_message = $3,
			last_error = $4,
			updated_at = NOW(),
			completed_at = CASE WHEN $2::varchar IN ('completed','failed') THEN NOW() ELSE completed_at END
		WHERE run_id = $1
	`

	var errText sql.NullString
	if lastErr != nil {
		errText = sql.NullString{String: lastErr.Error(), Valid: true}
	}

	if _, err := r.db.DB().ExecContext(ctx, query, runID, string(status), message, errText); err != nil {
		return fmt.Errorf("update run status: %w", err)
	}
	return nil
}

// RecordCounts stores the statistics of a finished run.
func (r *RunRepository) RecordCounts(ctx context.Context, runID string, counts store.RunCounts) error {
	query := `
		UPDATE valuation_runs
		SET input_rows = $2,
			joined_rows = $3,
			valued_rows = $4,
			unresolved_opponents = $5,
			players_valued = $6,
			unmatched_salary = $7,
			updated_at = NOW()
		WHERE run_id = $1
	`

	_, err := r.db.DB().ExecContext(ctx, query, runID,
		counts.InputRows, counts.JoinedRows, counts.ValuedRows,
		counts.UnresolvedOpponents, counts.PlayersValued, counts.UnmatchedSalary,
	)
	if err != nil {
		return fmt.Errorf("record run counts: %w", err)
	}
	return nil
}

// ResetStuckRuns moves running runs back to queued (used during service restarts).
func (r *RunRepository) ResetStuckRuns(ctx context.Context) error {
	_, err := r.db.DB().ExecContext(ctx, `
		UPDATE valuation_runs
		SET status = 'queued',
			status_message = 'Reset after service restart',
			updated_at = NOW()
		WHERE status = 'running'
	`)
	if err != nil {
		return fmt.Errorf("reset stuck runs: %w", err)
	}
	return nil
}

// ClaimNext atomically marks the oldest queued run as running.
// It returns nil when the queue is empty.
func (r *RunRepository) ClaimNext(ctx context.Context) (*store.ValuationRun, error) {
	query := `
		WITH next_run AS (
			SELECT run_id
			FROM valuation_runs
			WHERE status = 'queued'
			ORDER BY created_at
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		UPDATE valuation_runs
		SET status = 'running',
			status_message = 'Starting run...',
			started_at = COALESCE(started_at, NOW()),
			updated_at = NOW()
		FROM next_run
		WHERE valuation_runs.run_id = next_run.run_id
		RETURNING ` + qualify("valuation_runs")

	run, err := scanRun(r.db.DB().QueryRowContext(ctx, query))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("claim run: %w", err)
	}
	return run, nil
}

// Get returns a run by id, or nil when it does not exist.
func (r *RunRepository) Get(ctx context.Context, runID string) (*store.ValuationRun, error) {
	run, err := scanRun(r.db.DB().QueryRowContext(ctx,
		`SELECT `+runColumns+` FROM valuation_runs WHERE run_id = $1`, runID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

// ListRecent returns the most recent runs.
func (r *RunRepository) ListRecent(ctx context.Context, limit int) ([]*store.ValuationRun, error) {
	query := `SELECT ` + runColumns + ` FROM valuation_runs ORDER BY created_at DESC LIMIT $1`

	rows, err := r.db.DB().QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent runs: %w", err)
	}
	defer rows.Close()

	var runs []*store.ValuationRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// qualify prefixes every run column with table, for UPDATE ... FROM.
func qualify(table string) string {
	cols := make([]string, len(runFields))
	for i, f := range runFields {
		cols[i] = table + "." + f
	}
	return strings.Join(cols, ", ")
}

func scanRun(scanner interface {
	Scan(dest ...interface{}) error
}) (*store.ValuationRun, error) {
	run := &store.ValuationRun{}
	err := scanner.Scan(
		&run.RunID,
		&run.Season,
		&run.Trigger,
		&run.Status,
		&run.StatusMessage,
		&run.InputRows,
		&run.JoinedRows,
		&run.ValuedRows,
		&run.UnresolvedOpponents,
		&run.PlayersValued,
		&run.UnmatchedSalary,
		&run.LastError,
		&run.CreatedAt,
		&run.UpdatedAt,
		&run.StartedAt,
		&run.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	return run, nil
}
