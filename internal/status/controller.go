package status

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"github.com/statusdeck/statusdeck/internal/domain"
)

// fallbackGrace bounds how long Poll waits past the shared deadline for
// fallback construction of laggard probes.
const fallbackGrace = 250 * time.Millisecond

// ControllerConfig contains fan-out controller configuration.
type ControllerConfig struct {
	// Timeout is the shared deadline for one poll across all probes.
	Timeout time.Duration
	// WorkerHeadroom sizes the worker pool relative to the probe count;
	// values >= 1.25 keep probes from queuing behind each other.
	WorkerHeadroom float64
	// Seed drives fallback synthesis; fixed in tests for exact assertions.
	Seed uint64
}

// Controller dispatches all registered probes concurrently and reduces
// their results into a DashboardSnapshot. It owns the shared deadline: a
// probe that ignores its context is abandoned and replaced by a fallback,
// so one misbehaving provider can never stall the whole poll.
type Controller struct {
	config  ControllerConfig
	probes  []Probe
	workers int
	clock   Clock
}

// NewController creates a fan-out controller over a fixed probe registry.
func NewController(config ControllerConfig, probes []Probe, clock Clock) (*Controller, error) {
	if len(probes) == 0 {
		return nil, errors.New("controller: at least one probe is required")
	}
	if config.Timeout <= 0 {
		return nil, errors.New("controller: timeout must be positive")
	}
	if config.WorkerHeadroom < 1 {
		return nil, errors.New("controller: worker headroom must be >= 1")
	}
	if clock == nil {
		clock = time.Now
	}

	return &Controller{
		config:  config,
		probes:  probes,
		workers: int(math.Ceil(float64(len(probes)) * config.WorkerHeadroom)),
		clock:   clock,
	}, nil
}

// Providers returns the registered provider descriptors in registration order.
func (c *Controller) Providers() []Provider {
	out := make([]Provider, len(c.probes))
	for i, p := range c.probes {
		out[i] = p.Provider()
	}
	return out
}

// Poll runs every probe concurrently under the shared deadline and reduces
// the results. The services sequence always matches registration order, and
// Poll itself cannot fail: per-probe failures surface only as fallbacks.
func (c *Controller) Poll(ctx context.Context) domain.DashboardSnapshot {
	start := c.clock()
	pollCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	results := make([]domain.ServiceStatus, len(c.probes))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < c.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = c.checkWithDeadline(pollCtx, c.probes[idx])
			}
		}()
	}

	for i := range c.probes {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	snapshot := domain.NewDashboardSnapshot(start, results)
	recordPoll(snapshot, c.clock().Sub(start))
	return snapshot
}

// checkWithDeadline runs one probe and enforces the shared deadline from
// the controller side. A probe that has not answered by deadline plus a
// small grace is abandoned; its slot gets a synthesized fallback.
func (c *Controller) checkWithDeadline(ctx context.Context, probe Probe) domain.ServiceStatus {
	resultCh := make(chan domain.ServiceStatus, 1)

	probeStart := c.clock()
	go func() {
		resultCh <- probe.Check(ctx)
	}()

	select {
	case result := <-resultCh:
		recordProbe(probe.Provider().ID, result.Source, c.clock().Sub(probeStart))
		return result
	case <-time.After(deadlineWithGrace(ctx)):
		fallback := SynthesizeFallback(probe.Provider(), c.clock(), c.config.Seed)
		recordProbe(probe.Provider().ID, domain.SourceFallback, c.clock().Sub(probeStart))
		return fallback
	}
}

// deadlineWithGrace returns how long to wait on a probe: until the context
// deadline plus the fallback grace period.
func deadlineWithGrace(ctx context.Context) time.Duration {
	deadline, ok := ctx.Deadline()
	if !ok {
		return fallbackGrace
	}
	remaining := time.Until(deadline)
	if remaining < 0 {
		remaining = 0
	}
	return remaining + fallbackGrace
}
