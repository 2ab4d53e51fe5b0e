// Package scheduler fires the refresh pipeline on a fixed cron cadence and
// guarantees at most one concurrent run.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/zenith/industry-insights/internal/pipeline"
)

// Runner executes one refresh batch.
type Runner interface {
	Run(ctx context.Context) (*pipeline.RunOutcome, error)
}

// Scheduler wraps a cron instance around a Runner.
type Scheduler struct {
	cron    *cron.Cron
	runner  Runner
	logger  *slog.Logger
	runMu   sync.Mutex // held for the duration of a run
	entryID cron.EntryID
	started bool
}

// New creates a scheduler for the given runner.
func New(runner Runner, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		cron:   cron.New(),
		runner: runner,
		logger: logger,
	}
}

// Start registers the refresh job with the given cron expression
// (standard five-field syntax) and starts the scheduler.
func (s *Scheduler) Start(spec string) error {
	if s.started {
		return fmt.Errorf("scheduler already started")
	}

	id, err := s.cron.AddFunc(spec, s.trigger)
	if err != nil {
		return fmt.Errorf("failed to register refresh job: %w", err)
	}
	s.entryID = id

	s.cron.Start()
	s.started = true
	s.logger.Info("scheduler started", "schedule", spec, "next_run", s.NextRun())
	return nil
}

// Stop halts the scheduler and waits for an in-flight run to finish.
func (s *Scheduler) Stop() {
	if !s.started {
		return
	}
	<-s.cron.Stop().Done()
	// Block until any in-flight run releases the lock.
	s.runMu.Lock()
	defer s.runMu.Unlock()
	s.started = false
	s.logger.Info("scheduler stopped")
}

// NextRun returns the next scheduled firing time, or zero when not started.
func (s *Scheduler) NextRun() time.Time {
	if s.entryID == 0 {
		return time.Time{}
	}
	return s.cron.Entry(s.entryID).Next
}

// TriggerNow fires a run immediately, outside the cron cadence. The
// same overlap rule applies: if a run is already in flight, nothing happens.
func (s *Scheduler) TriggerNow() {
	s.trigger()
}

// trigger fires one run. If the previous run is still in flight the firing
// is skipped; runs never overlap.
func (s *Scheduler) trigger() {
	if !s.runMu.TryLock() {
		s.logger.Warn("previous refresh run still in progress, skipping this firing")
		return
	}
	defer s.runMu.Unlock()

	outcome, err := s.runner.Run(context.Background())
	if err != nil {
		s.logger.Error("refresh run aborted", "error", err)
		return
	}
	s.logger.Info("scheduled refresh complete",
		"processed", outcome.Processed,
		"updated", outcome.Count(pipeline.StatusUpdated),
		"failed", outcome.Count(pipeline.StatusFailed),
		"parse_failed", outcome.Count(pipeline.StatusParseFailed),
	)
}
