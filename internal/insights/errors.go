package insights

import "fmt"

// ParseError represents a malformed or incomplete provider response. It is
// fatal for the category in the current run; the text will differ on a
// future run, so parsing is never retried.
type ParseError struct {
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("parse error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("parse error: %s", e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}
