package db

import (
	"errors"
	"fmt"
)

// StoreError represents a persistence failure. It is terminal for the
// affected category within a run; the store never retries internally.
type StoreError struct {
	Message  string
	Industry string
	NotFound bool
	Cause    error
}

func (e *StoreError) Error() string {
	msg := e.Message
	if e.Industry != "" {
		msg = fmt.Sprintf("%s (industry %q)", msg, e.Industry)
	}
	if e.Cause != nil {
		return fmt.Sprintf("store error: %s: %v", msg, e.Cause)
	}
	return fmt.Sprintf("store error: %s", msg)
}

func (e *StoreError) Unwrap() error {
	return e.Cause
}

// IsNotFound reports whether err is a StoreError for a missing row.
// Insight rows are created by the onboarding flow, not this service, so a
// missing row means the category was removed (or never onboarded) and the
// failure is tolerated rather than fatal.
func IsNotFound(err error) bool {
	var se *StoreError
	return errors.As(err, &se) && se.NotFound
}
