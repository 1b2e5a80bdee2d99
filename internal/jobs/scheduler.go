// Package jobs runs background maintenance on a cron schedule.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// Reconciler repairs derived counters from their append-only logs.
type Reconciler interface {
	ReconcileExperience(ctx context.Context) (int, error)
}

// Scheduler manages background jobs.
type Scheduler struct {
	cron       *cron.Cron
	reconciler Reconciler
	schedule   string
}

// NewScheduler creates a UTC scheduler that reconciles experience on schedule.
func NewScheduler(reconciler Reconciler, schedule string) *Scheduler {
	return &Scheduler{
		cron:       cron.New(cron.WithLocation(time.UTC)),
		reconciler: reconciler,
		schedule:   schedule,
	}
}

// Start registers the jobs and starts the cron loop.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.schedule, func() { s.RunReconcile(ctx) }); err != nil {
		return fmt.Errorf("schedule reconcile %q: %w", s.schedule, err)
	}
	s.cron.Start()
	log.WithField("schedule", s.schedule).Info("job scheduler started")
	return nil
}

// RunReconcile runs one experience reconciliation pass.
func (s *Scheduler) RunReconcile(ctx context.Context) {
	start := time.Now()
	log.Info("[CRON] reconciling experience counters")
	fixed, err := s.reconciler.ReconcileExperience(ctx)
	entry := log.WithFields(log.Fields{"fixed": fixed, "took": time.Since(start).String()})
	if err != nil {
		entry.WithError(err).Error("[CRON] experience reconciliation failed")
		return
	}
	entry.Info("[CRON] experience reconciliation finished")
}

// Stop stops the scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info("job scheduler stopped")
}
