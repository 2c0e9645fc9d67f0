package snapshot

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/statusdeck/statusdeck/internal/domain"
)

// Poller is the slice of the fan-out controller the scheduler needs.
type Poller interface {
	Poll(ctx context.Context) domain.DashboardSnapshot
}

// SchedulerConfig contains scheduler configuration.
type SchedulerConfig struct {
	// Interval between scheduled polls.
	Interval time.Duration
	// PollDeadline bounds one scheduled poll; must be less than Interval.
	PollDeadline time.Duration
	// Retention is the rolling window kept in the store.
	Retention time.Duration
}

// DefaultSchedulerConfig returns default scheduler configuration.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Interval:     15 * time.Minute,
		PollDeadline: 10 * time.Second,
		Retention:    90 * 24 * time.Hour,
	}
}

// Scheduler periodically polls all providers and appends the result to the
// store. A failed tick is logged and skipped; the scheduler never stops
// ticking because one cycle failed.
type Scheduler struct {
	config SchedulerConfig
	poller Poller
	store  *Store

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewScheduler creates a snapshot scheduler.
func NewScheduler(config SchedulerConfig, poller Poller, store *Store) *Scheduler {
	return &Scheduler{
		config: config,
		poller: poller,
		store:  store,
		stopCh: make(chan struct{}),
	}
}

// Start launches the scheduling loop. It runs one immediate tick so the
// store has data before the first interval elapses.
func (s *Scheduler) Start(ctx context.Context) {
	slog.Info("starting snapshot scheduler",
		"interval", s.config.Interval,
		"poll_deadline", s.config.PollDeadline,
		"retention", s.config.Retention,
	)

	s.wg.Add(1)
	go s.run(ctx)
}

// Stop gracefully stops the scheduler and waits for an in-flight tick.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
	s.wg.Wait()
	slog.Info("snapshot scheduler stopped")
}

func (s *Scheduler) run(ctx context.Context) {
	defer s.wg.Done()

	s.Tick(ctx)

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick runs one poll-append-trim cycle synchronously. Exported so tests
// can drive the scheduler without waiting on wall-clock timers.
func (s *Scheduler) Tick(ctx context.Context) {
	tickCtx, cancel := context.WithTimeout(ctx, s.config.PollDeadline)
	defer cancel()

	start := time.Now()
	snap := s.poller.Poll(tickCtx)

	if err := s.store.Append(snap, s.config.Retention); err != nil {
		// Clock went sideways or a tick overlapped; skip this cycle.
		slog.Error("snapshot append rejected",
			"taken_at", domain.FormatTimestamp(snap.TakenAt),
			"error", err,
		)
		recordTick("append_rejected")
		return
	}

	recordTick("ok")
	recordStoreSize(s.store.Len())

	slog.Debug("snapshot recorded",
		"taken_at", domain.FormatTimestamp(snap.TakenAt),
		"overall_grade", snap.OverallGrade.String(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
}
