// Package scheduler runs periodic maintenance jobs on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"bizrwanda/internal/middleware"
	"bizrwanda/internal/observability"

	"github.com/robfig/cron/v3"
)

// Sweeper deactivates listings whose closing date has passed.
type Sweeper interface {
	SweepExpired(ctx context.Context) (int64, error)
}

// Scheduler wraps robfig/cron and runs the listing expiry sweep.
type Scheduler struct {
	cron    *cron.Cron
	sweeper Sweeper
	spec    string

	mu      sync.Mutex
	started bool
}

// New creates a Scheduler firing on spec (a cron expression or descriptor
// such as "@hourly"). An empty spec disables the sweep.
func New(sweeper Sweeper, spec string) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		sweeper: sweeper,
		spec:    strings.TrimSpace(spec),
	}
}

// Enabled reports whether a schedule is configured.
func (s *Scheduler) Enabled() bool {
	return s.spec != ""
}

// Start registers the sweep and starts the cron loop. One sweep also runs
// immediately.
func (s *Scheduler) Start(ctx context.Context) error {
	if !s.Enabled() {
		middleware.Logger.Info("Listing sweep disabled")
		return nil
	}

	if _, err := s.cron.AddFunc(s.spec, func() { s.RunSweep(ctx) }); err != nil {
		return fmt.Errorf("schedule listing sweep %q: %w", s.spec, err)
	}

	s.mu.Lock()
	s.started = true
	s.mu.Unlock()

	s.cron.Start()
	middleware.Logger.Info("Listing sweep scheduled", slog.String("spec", s.spec))

	go s.RunSweep(ctx)
	return nil
}

// Stop halts the cron loop and waits for a running sweep to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	started := s.started
	s.mu.Unlock()
	if !started {
		return
	}
	<-s.cron.Stop().Done()
	middleware.Logger.Info("Listing sweep stopped")
}

// RunSweep performs one sweep and logs its outcome.
func (s *Scheduler) RunSweep(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	ctx, span := observability.StartJobSpan(ctx, "listing_sweep")
	n, err := s.sweeper.SweepExpired(ctx)
	observability.EndSpan(span, err)
	if err != nil {
		middleware.Logger.ErrorContext(ctx, "Listing sweep failed", slog.String("error", err.Error()))
		return
	}
	if n > 0 {
		middleware.Logger.InfoContext(ctx, "Listing sweep deactivated expired listings", slog.Int64("count", n))
	}
}
