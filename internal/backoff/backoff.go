// Package backoff provides keyed retry with exponential backoff and full
// jitter. It has no knowledge of any provider; callers supply a classifier
// that decides which errors are worth retrying.
package backoff

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// Policy defines retry behavior.
type Policy struct {
	Attempts  int
	BaseDelay time.Duration
	MaxDelay  time.Duration

	// Retryable decides whether an error justifies another attempt.
	// A nil Retryable retries nothing.
	Retryable func(error) bool

	// Sleep and Rand are injectable for tests. Defaults are time.Sleep-style
	// context-aware waiting and math/rand.
	Sleep func(ctx context.Context, d time.Duration) error
	Rand  func() float64

	// OnWait is called before each suspension with the retry key, the
	// attempt number just failed, and the jittered wait duration.
	OnWait func(key string, attempt int, wait time.Duration)
}

// DefaultPolicy mirrors the tuning used against the insight provider:
// six attempts, 1.5s base, 45s cap.
func DefaultPolicy(retryable func(error) bool) Policy {
	return Policy{
		Attempts:  6,
		BaseDelay: 1500 * time.Millisecond,
		MaxDelay:  45 * time.Second,
		Retryable: retryable,
	}
}

func (p Policy) normalized() Policy {
	if p.Attempts <= 0 {
		p.Attempts = 6
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = 1500 * time.Millisecond
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = 45 * time.Second
	}
	if p.Sleep == nil {
		p.Sleep = sleepContext
	}
	if p.Rand == nil {
		p.Rand = rand.Float64
	}
	return p
}

// Retry executes op until it succeeds, fails with a non-retryable error, or
// exhausts the policy's attempts. The key names the operation for wait
// observability; it carries no other meaning.
//
// The delay before attempt n+1 is min(base * 2^(n-1), max) with full jitter:
// the actual wait is drawn uniformly from [0.5*delay, 1.5*delay].
func Retry[T any](ctx context.Context, key string, op func(context.Context) (T, error), policy Policy) (T, error) {
	var zero T
	p := policy.normalized()

	var lastErr error
	for attempt := 1; attempt <= p.Attempts; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if p.Retryable == nil || !p.Retryable(err) {
			return zero, err
		}
		if attempt == p.Attempts {
			break
		}

		wait := p.jitteredDelay(attempt)
		if p.OnWait != nil {
			p.OnWait(key, attempt, wait)
		}
		if err := p.Sleep(ctx, wait); err != nil {
			return zero, err
		}
	}

	return zero, lastErr
}

// jitteredDelay computes the capped exponential delay for the given attempt
// and applies full jitter.
func (p Policy) jitteredDelay(attempt int) time.Duration {
	exp := float64(p.BaseDelay) * math.Pow(2, float64(attempt-1))
	if exp > float64(p.MaxDelay) {
		exp = float64(p.MaxDelay)
	}
	return time.Duration(exp * (0.5 + p.Rand()))
}

// sleepContext waits for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
