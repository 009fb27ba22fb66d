// Package scheduler refreshes prices on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"elecprice/internal/coordinator"
)

// Refresher runs one acquisition cycle.
type Refresher interface {
	Refresh(ctx context.Context, region string) coordinator.Result
}

// Scheduler triggers refreshes for a region on a six-field (seconds first) cron spec.
type Scheduler struct {
	cron      *cron.Cron
	refresher Refresher
	region    string
	ctx       context.Context
}

// New creates a scheduler. Refreshes run with ctx.
func New(ctx context.Context, refresher Refresher, region string) *Scheduler {
	return &Scheduler{
		cron:      cron.New(cron.WithSeconds()),
		refresher: refresher,
		region:    region,
		ctx:       ctx,
	}
}

// Register adds the refresh task for spec.
func (s *Scheduler) Register(spec string) error {
	if _, err := s.cron.AddFunc(spec, s.RunNow); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	slog.Info("scheduler started", "region", s.region)
}

// Stop stops the scheduler and waits for a running refresh to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	slog.Info("scheduler stopped")
}

// RunNow executes a refresh immediately.
func (s *Scheduler) RunNow() {
	if s.ctx.Err() != nil {
		return
	}
	result := s.refresher.Refresh(s.ctx, s.region)
	slog.Info("scheduled refresh finished",
		"cycle_id", result.CycleID,
		"provenance", result.Provenance,
		"synthetic", result.IsSynthetic)
}

// ValidateSpec reports whether spec is a valid six-field cron expression.
func ValidateSpec(spec string) error {
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if _, err := parser.Parse(spec); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	return nil
}
