package db

import (
	"time"

	"github.com/google/uuid"
)

// Run statuses. Interrupted marks a run whose loop was cut short by
// cancellation; its counts cover only the categories reached.
const (
	RunStatusRunning     = "running"
	RunStatusCompleted   = "completed"
	RunStatusInterrupted = "interrupted"
)

// Checkpoint statuses mirror the per-category outcomes of a refresh run.
const (
	CheckpointUpdated     = "updated"
	CheckpointFailed      = "failed"
	CheckpointParseFailed = "parse_failed"
)

// Run represents one refresh batch invocation.
type Run struct {
	ID          uuid.UUID  `json:"id"`
	Status      string     `json:"status"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Processed   int        `json:"processed"`
	Updated     int        `json:"updated"`
	Failed      int        `json:"failed"`
	ParseFailed int        `json:"parse_failed"`
}

// Checkpoint records the terminal outcome of one category within a run.
// A checkpoint row means the category's full generate-parse-persist
// sequence finished (successfully or not) and must not be repeated.
type Checkpoint struct {
	ID           uuid.UUID `json:"id"`
	RunID        uuid.UUID `json:"run_id"`
	Industry     string    `json:"industry"`
	Status       string    `json:"status"`
	ErrorMessage *string   `json:"error_message,omitempty"`
	CompletedAt  time.Time `json:"completed_at"`
}

// Freshness summarizes how stale one industry's record is.
type Freshness struct {
	Industry    string    `json:"industry"`
	LastUpdated time.Time `json:"last_updated"`
	NextUpdate  time.Time `json:"next_update"`
}
