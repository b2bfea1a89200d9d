package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"ttx/internal/shared"
)

// TransferRun is one recorded engine invocation.
type TransferRun struct {
	ID        string
	Operation string
	Status    string
	Error     string
	StartedAt time.Time

	// FinishedAt stays zero until the run resolves.
	FinishedAt time.Time

	Groups []RunGroup
}

// RunGroup is the per-entity-group counter pair persisted with a run.
type RunGroup struct {
	Group     string
	Completed int
	Total     int
}

// RunRepository persists transfer runs and their per-group progress.
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a RunRepository with the given database connection.
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Begin inserts a new in-process run for the operation and returns it.
func (r *RunRepository) Begin(operation string) (*TransferRun, error) {
	run := &TransferRun{
		ID:        shared.GenerateID(),
		Operation: operation,
		Status:    "in_process",
		StartedAt: time.Now().UTC(),
	}

	query := `
		INSERT INTO transfer_runs (id, operation, status, started_at) VALUES (?, ?, ?, ?)
	`

	if _, err := r.db.Exec(query, run.ID, run.Operation, run.Status, run.StartedAt); err != nil {
		return nil, fmt.Errorf("failed to insert run: %w", err)
	}

	return run, nil
}

// Finish resolves the run to success or error and stamps the finish time.
func (r *RunRepository) Finish(id string, runErr error) error {
	status := "success"
	var message any
	if runErr != nil {
		status = "error"
		message = runErr.Error()
	}

	query := `
		UPDATE transfer_runs
		SET status = ?, error = ?, finished_at = ?
		WHERE id = ?
	`

	result, err := r.db.Exec(query, status, message, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("run not found: %s", id)
	}

	return nil
}

// SetGroupProgress upserts one group's counters for the run. Called as the
// engine reports progress, so the last write per group wins.
func (r *RunRepository) SetGroupProgress(runID, group string, completed, total int) error {
	query := `
		INSERT INTO run_groups (run_id, entity_group, completed, total)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (run_id, entity_group) DO UPDATE SET completed = excluded.completed, total = excluded.total
	`

	if _, err := r.db.Exec(query, runID, group, completed, total); err != nil {
		return fmt.Errorf("failed to record group progress: %w", err)
	}
	return nil
}

// Get retrieves one run with its group counters.
func (r *RunRepository) Get(id string) (*TransferRun, error) {
	query := `
		SELECT id, operation, status, error, started_at, finished_at
		FROM transfer_runs
		WHERE id = ?
	`

	run, err := scanRun(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query run: %w", err)
	}

	if err := r.loadGroups(run); err != nil {
		return nil, err
	}
	return run, nil
}

// List retrieves the most recent runs, newest first, with their group
// counters. limit <= 0 returns everything.
func (r *RunRepository) List(limit int) ([]*TransferRun, error) {
	query := `
		SELECT id, operation, status, error, started_at, finished_at
		FROM transfer_runs
		ORDER BY started_at DESC, id
	`

	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*TransferRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	for _, run := range runs {
		if err := r.loadGroups(run); err != nil {
			return nil, err
		}
	}
	return runs, nil
}

func (r *RunRepository) loadGroups(run *TransferRun) error {
	query := `
		SELECT entity_group, completed, total
		FROM run_groups
		WHERE run_id = ?
		ORDER BY entity_group
	`

	rows, err := r.db.Query(query, run.ID)
	if err != nil {
		return fmt.Errorf("failed to query run groups: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var g RunGroup
		if err := rows.Scan(&g.Group, &g.Completed, &g.Total); err != nil {
			return fmt.Errorf("failed to scan run group: %w", err)
		}
		run.Groups = append(run.Groups, g)
	}
	return rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*TransferRun, error) {
	var (
		run        TransferRun
		errMessage sql.NullString
		finishedAt sql.NullTime
	)

	err := row.Scan(&run.ID, &run.Operation, &run.Status, &errMessage, &run.StartedAt, &finishedAt)
	if err != nil {
		return nil, err
	}

	if errMessage.Valid {
		run.Error = errMessage.String
	}
	if finishedAt.Valid {
		run.FinishedAt = finishedAt.Time
	}
	return &run, nil
}
