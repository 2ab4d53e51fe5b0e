package backoff

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errThrottled = errors.New("throttled")

// testPolicy returns a policy that records waits instead of sleeping.
func testPolicy(retryable func(error) bool, waits *[]time.Duration) Policy {
	return Policy{
		Attempts:  5,
		BaseDelay: time.Second,
		MaxDelay:  60 * time.Second,
		Retryable: retryable,
		Rand:      func() float64 { return 0.5 }, // jitter factor fixed at 1.0
		Sleep: func(_ context.Context, d time.Duration) error {
			if waits != nil {
				*waits = append(*waits, d)
			}
			return nil
		},
	}
}

func isThrottled(err error) bool { return errors.Is(err, errThrottled) }

func TestRetry_SucceedsFirstAttempt(t *testing.T) {
	calls := 0
	result, err := Retry(context.Background(), "k", func(context.Context) (string, error) {
		calls++
		return "ok", nil
	}, testPolicy(isThrottled, nil))

	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 1, calls)
}

func TestRetry_RetriesOnlyRetryableErrors(t *testing.T) {
	fatal := errors.New("bad request")
	calls := 0
	var waits []time.Duration

	_, err := Retry(context.Background(), "k", func(context.Context) (string, error) {
		calls++
		return "", fatal
	}, testPolicy(isThrottled, &waits))

	assert.ErrorIs(t, err, fatal)
	assert.Equal(t, 1, calls, "non-retryable error must not consume extra attempts")
	assert.Empty(t, waits, "non-retryable error must not wait")
}

func TestRetry_ExhaustsAttemptsAndReturnsLastError(t *testing.T) {
	calls := 0
	var waits []time.Duration

	_, err := Retry(context.Background(), "k", func(context.Context) (string, error) {
		calls++
		return "", errThrottled
	}, testPolicy(isThrottled, &waits))

	assert.ErrorIs(t, err, errThrottled)
	assert.Equal(t, 5, calls)
	assert.Len(t, waits, 4, "no wait after the final attempt")
}

func TestRetry_RecoversAfterThrottling(t *testing.T) {
	calls := 0
	result, err := Retry(context.Background(), "k", func(context.Context) (int, error) {
		calls++
		if calls < 3 {
			return 0, errThrottled
		}
		return 42, nil
	}, testPolicy(isThrottled, nil))

	require.NoError(t, err)
	assert.Equal(t, 42, result)
	assert.Equal(t, 3, calls)
}

func TestRetry_ExponentialDelayCappedAtMax(t *testing.T) {
	var waits []time.Duration
	p := testPolicy(isThrottled, &waits)
	p.Attempts = 8
	p.MaxDelay = 8 * time.Second

	_, err := Retry(context.Background(), "k", func(context.Context) (string, error) {
		return "", errThrottled
	}, p)
	require.Error(t, err)

	// Rand fixed at 0.5 makes the jitter factor exactly 1.0.
	expected := []time.Duration{
		1 * time.Second, 2 * time.Second, 4 * time.Second,
		8 * time.Second, 8 * time.Second, 8 * time.Second, 8 * time.Second,
	}
	assert.Equal(t, expected, waits)
}

func TestRetry_JitterStaysWithinBounds(t *testing.T) {
	for _, r := range []float64{0, 0.25, 0.5, 0.75, 0.999} {
		var waits []time.Duration
		p := testPolicy(isThrottled, &waits)
		p.Attempts = 2
		p.Rand = func() float64 { return r }

		_, _ = Retry(context.Background(), "k", func(context.Context) (string, error) {
			return "", errThrottled
		}, p)

		require.Len(t, waits, 1)
		assert.GreaterOrEqual(t, waits[0], 500*time.Millisecond)
		assert.Less(t, waits[0], 1500*time.Millisecond)
	}
}

func TestRetry_ContextCancelledDuringWait(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := testPolicy(isThrottled, nil)
	p.Sleep = func(ctx context.Context, _ time.Duration) error {
		cancel()
		return ctx.Err()
	}

	calls := 0
	_, err := Retry(ctx, "k", func(context.Context) (string, error) {
		calls++
		return "", errThrottled
	}, p)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestRetry_OnWaitObservesKeyAndAttempt(t *testing.T) {
	type waitEvent struct {
		key     string
		attempt int
	}
	var events []waitEvent

	p := testPolicy(isThrottled, nil)
	p.Attempts = 3
	p.OnWait = func(key string, attempt int, _ time.Duration) {
		events = append(events, waitEvent{key, attempt})
	}

	_, _ = Retry(context.Background(), "software-engineering", func(context.Context) (string, error) {
		return "", errThrottled
	}, p)

	assert.Equal(t, []waitEvent{
		{"software-engineering", 1},
		{"software-engineering", 2},
	}, events)
}

func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy(isThrottled)
	assert.Equal(t, 6, p.Attempts)
	assert.Equal(t, 1500*time.Millisecond, p.BaseDelay)
	assert.Equal(t, 45*time.Second, p.MaxDelay)
	assert.True(t, p.Retryable(errThrottled))
	assert.False(t, p.Retryable(errors.New("other")))
}
