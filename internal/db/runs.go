package db

import (
	"context"

	"github.com/google/uuid"
)

// CreateRun creates a new refresh run record and returns its ID.
func (db *DB) CreateRun(ctx context.Context) (uuid.UUID, error) {
	var id uuid.UUID
	err := db.pool.QueryRow(ctx,
		`INSERT INTO pipeline_runs (status) VALUES ($1) RETURNING id`,
		RunStatusRunning,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, &StoreError{Message: "failed to create run", Cause: err}
	}
	return id, nil
}

// CompleteRun marks a run finished with the given terminal status and
// records its outcome counts.
func (db *DB) CompleteRun(ctx context.Context, runID uuid.UUID, status string, processed, updated, failed, parseFailed int) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE pipeline_runs
		 SET status = $2, completed_at = NOW(),
		     processed = $3, updated = $4, failed = $5, parse_failed = $6
		 WHERE id = $1`,
		runID, status, processed, updated, failed, parseFailed,
	)
	if err != nil {
		return &StoreError{Message: "failed to complete run", Cause: err}
	}
	return nil
}

// ListRuns retrieves recent runs, newest first.
func (db *DB) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.pool.Query(ctx,
		`SELECT id, status, started_at, completed_at, processed, updated, failed, parse_failed
		 FROM pipeline_runs ORDER BY started_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, &StoreError{Message: "failed to list runs", Cause: err}
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.Status, &run.StartedAt, &run.CompletedAt,
			&run.Processed, &run.Updated, &run.Failed, &run.ParseFailed); err != nil {
			return nil, &StoreError{Message: "failed to scan run", Cause: err}
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// SaveCheckpoint records the terminal outcome for one category within a
// run. Upserted so a legitimately reprocessed category overwrites its
// earlier row instead of erroring.
func (db *DB) SaveCheckpoint(ctx context.Context, runID uuid.UUID, industry, status string, errMsg *string) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO run_checkpoints (run_id, industry, status, error_message)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (run_id, industry) DO UPDATE
		 SET status = EXCLUDED.status, error_message = EXCLUDED.error_message,
		     completed_at = NOW()`,
		runID, industry, status, errMsg,
	)
	if err != nil {
		return &StoreError{Message: "failed to save checkpoint", Industry: industry, Cause: err}
	}
	return nil
}

// ListCheckpoints retrieves all category checkpoints for one run in
// completion order.
func (db *DB) ListCheckpoints(ctx context.Context, runID uuid.UUID) ([]Checkpoint, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, run_id, industry, status, error_message, completed_at
		 FROM run_checkpoints WHERE run_id = $1 ORDER BY completed_at`,
		runID,
	)
	if err != nil {
		return nil, &StoreError{Message: "failed to list checkpoints", Cause: err}
	}
	defer rows.Close()

	var checkpoints []Checkpoint
	for rows.Next() {
		var cp Checkpoint
		if err := rows.Scan(&cp.ID, &cp.RunID, &cp.Industry, &cp.Status,
			&cp.ErrorMessage, &cp.CompletedAt); err != nil {
			return nil, &StoreError{Message: "failed to scan checkpoint", Cause: err}
		}
		checkpoints = append(checkpoints, cp)
	}
	return checkpoints, rows.Err()
}
