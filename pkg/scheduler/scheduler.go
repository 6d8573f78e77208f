// Package scheduler keeps report caches warm on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/robfig/cron/v3"
)

// Refresher recomputes cached results
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Config holds scheduler configuration
type Config struct {
	WarmupSpec string // cron spec, empty disables warm-up
	RunOnStart bool   // warm immediately on start
}

// Scheduler runs cache warm-up periodically
type Scheduler struct {
	refresher Refresher
	cfg       Config
	cron      *cron.Cron
	wg        sync.WaitGroup
	cancel    context.CancelFunc
}

// NewScheduler creates a new scheduler instance
func NewScheduler(refresher Refresher, cfg Config) *Scheduler {
	return &Scheduler{refresher: refresher, cfg: cfg}
}

// Start registers the warm-up job and starts the cron runner
func (s *Scheduler) Start(ctx context.Context) error {
	if s.cfg.WarmupSpec == "" {
		lgr.Printf("[INFO] cache warm-up disabled")
		return nil
	}
	ctx, s.cancel = context.WithCancel(ctx)

	// overlapping runs are skipped, a slow oracle must not pile up refreshes
	s.cron = cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := s.cron.AddFunc(s.cfg.WarmupSpec, func() { s.warm(ctx) }); err != nil {
		s.cancel()
		return fmt.Errorf("invalid warm-up schedule %q: %w", s.cfg.WarmupSpec, err)
	}

	if s.cfg.RunOnStart {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.warm(ctx)
		}()
	}

	s.cron.Start()
	lgr.Printf("[INFO] scheduler started, cache warm-up %q", s.cfg.WarmupSpec)
	return nil
}

// Stop gracefully stops the scheduler and waits for running jobs
func (s *Scheduler) Stop() {
	if s.cron == nil {
		return
	}
	lgr.Printf("[INFO] stopping scheduler...")
	s.cancel()
	<-s.cron.Stop().Done()
	s.wg.Wait()
	lgr.Printf("[INFO] scheduler stopped")
}

// warm refreshes caches, failures are logged and retried on the next tick
func (s *Scheduler) warm(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	st := time.Now()
	if err := s.refresher.Refresh(ctx); err != nil {
		lgr.Printf("[WARN] cache warm-up failed: %v", err)
		return
	}
	lgr.Printf("[DEBUG] cache warm-up completed in %v", time.Since(st))
}
