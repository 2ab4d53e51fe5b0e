// Package pipeline orchestrates the weekly industry insight refresh: one
// sequential pass over all tracked industries, generating fresh data
// through the provider, validating it, and persisting the result.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/zenith/industry-insights/internal/backoff"
	"github.com/zenith/industry-insights/internal/db"
	"github.com/zenith/industry-insights/internal/insights"
	"github.com/zenith/industry-insights/internal/llm"
	"github.com/zenith/industry-insights/internal/observability"
	"github.com/zenith/industry-insights/internal/prompts"
)

// Store is the persistence boundary the orchestrator writes through.
// *db.DB satisfies it.
type Store interface {
	ListIndustries(ctx context.Context) ([]string, error)
	UpdateInsight(ctx context.Context, industry string, in *insights.Insight, now time.Time) error
	FreshSince(ctx context.Context, industry string, cutoff time.Time) (bool, error)
	CreateRun(ctx context.Context) (uuid.UUID, error)
	CompleteRun(ctx context.Context, runID uuid.UUID, status string, processed, updated, failed, parseFailed int) error
	SaveCheckpoint(ctx context.Context, runID uuid.UUID, industry, status string, errMsg *string) error
}

// Options configures a Refresher. The zero value is usable: defaults are
// the production backoff policy, real sleeping, and the wall clock.
type Options struct {
	Logger  *slog.Logger
	Backoff backoff.Policy

	// ForceRefresh disables the freshness skip, reprocessing every
	// industry even when its record was updated within the period.
	ForceRefresh bool

	// Sleep, Now and Rand are injectable for tests.
	Sleep func(ctx context.Context, d time.Duration) error
	Now   func() time.Time
	Rand  func() float64
}

// Refresher coordinates one refresh batch at a time. It keeps no mutable
// state across runs; overlap prevention is the trigger's responsibility.
type Refresher struct {
	store  Store
	client llm.Client
	policy backoff.Policy
	logger *slog.Logger
	force  bool
	sleep  func(ctx context.Context, d time.Duration) error
	now    func() time.Time
	rand   func() float64
}

// NewRefresher creates a Refresher over the given store and provider client.
func NewRefresher(store Store, client llm.Client, opts Options) *Refresher {
	r := &Refresher{
		store:  store,
		client: client,
		policy: opts.Backoff,
		logger: opts.Logger,
		force:  opts.ForceRefresh,
		sleep:  opts.Sleep,
		now:    opts.Now,
		rand:   opts.Rand,
	}
	if r.policy.Attempts == 0 && r.policy.Retryable == nil {
		r.policy = backoff.DefaultPolicy(llm.IsRateLimit)
	}
	if r.policy.Retryable == nil {
		r.policy.Retryable = llm.IsRateLimit
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	if r.sleep == nil {
		r.sleep = sleepContext
	}
	if r.now == nil {
		r.now = time.Now
	}
	if r.rand == nil {
		r.rand = rand.Float64
	}
	return r
}

// Run executes one refresh batch over a frozen snapshot of the tracked
// industries. Every category-level failure is recorded and the loop
// proceeds; the only fatal condition is failing to load the industry list,
// which aborts before any side effect.
func (r *Refresher) Run(ctx context.Context) (*RunOutcome, error) {
	industries, err := r.store.ListIndustries(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading industry list: %w", err)
	}

	observability.RunsTotal.Inc()
	start := r.now()
	r.logger.Info("starting insight refresh run", "industries", len(industries))

	// Run metadata is best effort; losing it never fails the batch.
	runID, err := r.store.CreateRun(ctx)
	if err != nil {
		r.logger.Warn("failed to create run record", "error", err)
		runID = uuid.Nil
	}

	outcome := &RunOutcome{}
	interrupted := false

	// The skip window must cover a crashed run's committed categories
	// without reaching back into the previous scheduled run: firings are
	// exactly one period apart and updates land minutes after the firing,
	// so a full-period cutoff would see last week's writes as fresh and
	// skip the whole batch. Half a period separates the two cases.
	cutoff := start.Add(-insights.RefreshPeriod / 2)

	// Strictly sequential: the provider rate limit is a shared global
	// resource, so low predictable pressure beats wall-clock speed.
	for _, industry := range industries {
		if ctx.Err() != nil {
			r.logger.Warn("run interrupted", "error", ctx.Err(), "processed", outcome.Processed)
			interrupted = true
			break
		}

		// A category already updated within the current window has had its
		// full generate-parse-persist sequence committed, possibly by a run
		// that crashed before finishing. Never repeat its side effects.
		if !r.force {
			if fresh, err := r.store.FreshSince(ctx, industry, cutoff); err != nil {
				r.logger.Warn("freshness check failed, refreshing anyway", "industry", industry, "error", err)
			} else if fresh {
				r.logger.Info("skipping fresh industry", "industry", industry)
				continue
			}
		}

		status, categoryErr := r.refreshIndustry(ctx, industry)
		outcome.record(industry, status, categoryErr)
		observability.CategoriesTotal.WithLabelValues(string(status)).Inc()
		r.saveCheckpoint(ctx, runID, industry, status, categoryErr)

		switch status {
		case StatusUpdated:
			r.logger.Info("industry updated", "industry", industry)
		default:
			r.logger.Error("industry refresh failed", "industry", industry, "status", string(status), "error", categoryErr)
		}

		// A rate-limited category means sustained provider pressure; pause
		// before the next category's first attempt to relieve it.
		if categoryErr != nil && llm.IsRateLimit(categoryErr) {
			cooldown := time.Duration(float64(2*time.Second) + r.rand()*float64(3*time.Second))
			r.logger.Info("cooling down after rate limit", "industry", industry, "wait", cooldown)
			if err := r.sleep(ctx, cooldown); err != nil {
				r.logger.Warn("run interrupted", "error", err, "processed", outcome.Processed)
				interrupted = true
				break
			}
		}
	}

	runStatus := db.RunStatusCompleted
	if interrupted {
		runStatus = db.RunStatusInterrupted
	}

	if runID != uuid.Nil {
		if err := r.store.CompleteRun(ctx, runID, runStatus, outcome.Processed,
			outcome.Count(StatusUpdated), outcome.Count(StatusFailed),
			outcome.Count(StatusParseFailed)); err != nil {
			r.logger.Warn("failed to complete run record", "error", err)
		}
	}

	duration := r.now().Sub(start)
	observability.RunDuration.Observe(duration.Seconds())
	r.logger.Info("insight refresh run finished",
		"status", runStatus,
		"processed", outcome.Processed,
		"updated", outcome.Count(StatusUpdated),
		"failed", outcome.Count(StatusFailed),
		"parse_failed", outcome.Count(StatusParseFailed),
		"duration", duration,
	)

	return outcome, nil
}

// refreshIndustry runs the generate-parse-persist sequence for one
// industry and returns its terminal status.
func (r *Refresher) refreshIndustry(ctx context.Context, industry string) (Status, error) {
	prompt := buildPrompt(industry)

	policy := r.policy
	policy.OnWait = func(key string, attempt int, wait time.Duration) {
		observability.BackoffWaitsTotal.Inc()
		r.logger.Warn("provider throttled, backing off",
			"industry", key, "attempt", attempt, "wait", wait)
	}

	text, err := backoff.Retry(ctx, industry, func(ctx context.Context) (string, error) {
		text, err := r.client.GenerateInsights(ctx, prompt)
		observability.ProviderCallsTotal.WithLabelValues(providerResult(err)).Inc()
		return text, err
	}, policy)
	if err != nil {
		return StatusFailed, err
	}

	parsed, err := insights.Parse(text)
	if err != nil {
		var parseErr *insights.ParseError
		if errors.As(err, &parseErr) {
			// No retry of parsing: the text will differ on a future run.
			return StatusParseFailed, err
		}
		return StatusFailed, err
	}

	if err := r.store.UpdateInsight(ctx, industry, parsed, r.now()); err != nil {
		return StatusFailed, err
	}

	return StatusUpdated, nil
}

// saveCheckpoint records the category's terminal outcome; best effort.
func (r *Refresher) saveCheckpoint(ctx context.Context, runID uuid.UUID, industry string, status Status, categoryErr error) {
	if runID == uuid.Nil {
		return
	}
	var errMsg *string
	if categoryErr != nil {
		msg := categoryErr.Error()
		errMsg = &msg
	}
	if err := r.store.SaveCheckpoint(ctx, runID, industry, string(status), errMsg); err != nil {
		r.logger.Warn("failed to save checkpoint", "industry", industry, "error", err)
	}
}

// buildPrompt renders the analyst prompt for one industry.
func buildPrompt(industry string) string {
	template := prompts.MustGet("insights.json", "industry-insights")
	return prompts.Format(template, map[string]string{"Industry": industry})
}

func providerResult(err error) string {
	switch {
	case err == nil:
		return observability.ResultOK
	case llm.IsRateLimit(err):
		return observability.ResultRateLimit
	default:
		return observability.ResultError
	}
}

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
