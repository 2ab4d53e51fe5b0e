package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStoreError(t *testing.T) {
	cause := errors.New("connection refused")

	se := &StoreError{Message: "failed to update insight", Industry: "finance", Cause: cause}
	assert.Contains(t, se.Error(), "store error")
	assert.Contains(t, se.Error(), "finance")
	assert.Contains(t, se.Error(), "connection refused")
	assert.Equal(t, cause, se.Unwrap())
	assert.False(t, IsNotFound(se))
}

func TestIsNotFound(t *testing.T) {
	nf := &StoreError{Message: "industry not tracked", Industry: "gaming", NotFound: true}
	assert.True(t, IsNotFound(nf))
	assert.True(t, IsNotFound(fmt.Errorf("write failed: %w", nf)))

	assert.False(t, IsNotFound(errors.New("plain error")))
	assert.False(t, IsNotFound(nil))
}

func TestCheckpointStatusConstants(t *testing.T) {
	// Checkpoint statuses are persisted strings; keep them aligned with the
	// run outcome statuses emitted in summaries.
	assert.Equal(t, "updated", CheckpointUpdated)
	assert.Equal(t, "failed", CheckpointFailed)
	assert.Equal(t, "parse_failed", CheckpointParseFailed)
}
