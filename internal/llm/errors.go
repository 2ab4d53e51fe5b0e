package llm

import (
	"errors"
	"fmt"
	"strings"

	"google.golang.org/api/googleapi"
)

// RateLimitError indicates the provider rejected a call because the caller
// exceeded its allowed request rate. It is the only retryable error class.
type RateLimitError struct {
	Message string
	Cause   error
}

func (e *RateLimitError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("rate limited: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("rate limited: %s", e.Message)
}

func (e *RateLimitError) Unwrap() error {
	return e.Cause
}

// ProviderError covers every other provider failure: timeouts, auth
// failures, malformed requests, empty responses. Never retried.
type ProviderError struct {
	Message string
	Cause   error
}

func (e *ProviderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("provider error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("provider error: %s", e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// IsRateLimit reports whether err is rate-limit class. This is the single
// classification point; retry logic must match only on this.
func IsRateLimit(err error) bool {
	var rle *RateLimitError
	return errors.As(err, &rle)
}

// classifyProviderError wraps a raw SDK error into the adapter taxonomy.
// Gemini surfaces throttling as HTTP 429 or a RESOURCE_EXHAUSTED status
// depending on transport, so both shapes collapse here into RateLimitError.
func classifyProviderError(msg string, err error) error {
	if isRateLimitSignal(err) {
		return &RateLimitError{Message: msg, Cause: err}
	}
	return &ProviderError{Message: msg, Cause: err}
}

func isRateLimitSignal(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == 429 {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "429") ||
		strings.Contains(s, "RESOURCE_EXHAUSTED") ||
		strings.Contains(strings.ToLower(s), "rate limit")
}
