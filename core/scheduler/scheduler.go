package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/kilianp07/induction/core/logger"
	"github.com/kilianp07/induction/core/model"
	"github.com/kilianp07/induction/core/planner"
)

// ranker is the subset of the planner engine the scheduler drives.
type ranker interface {
	RunRanking(ctx context.Context, date model.Date, quota int) (planner.Plan, error)
}

// Scheduler triggers one ranking pass per day at a fixed local time,
// planning the following operational day. Depot supervisors review the
// resulting plan before the morning rollout.
type Scheduler struct {
	Config Config
	Engine ranker
	Log    logger.Logger

	// now is swapped in tests.
	now func() time.Time
}

// New creates a Scheduler.
func New(cfg Config, eng ranker, log logger.Logger) (*Scheduler, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Scheduler{Config: cfg, Engine: eng, Log: log, now: time.Now}, nil
}

// PlanDate returns the operational day a run at the given instant plans for.
func (s *Scheduler) PlanDate(at time.Time) model.Date {
	target := at.AddDate(0, 0, s.Config.DayOffset)
	return model.Date(target.Format("2006-01-02"))
}

// NextRun returns the first scheduled instant strictly after now.
func (s *Scheduler) NextRun(now time.Time) time.Time {
	h, m := s.Config.runAtClock()
	next := time.Date(now.Year(), now.Month(), now.Day(), h, m, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// Run blocks, firing one ranking pass per scheduled instant until the
// context is cancelled. A failed pass is logged and the schedule keeps
// going; the next trigger retries from current store state.
func (s *Scheduler) Run(ctx context.Context) error {
	for {
		now := s.now()
		next := s.NextRun(now)
		timer := time.NewTimer(next.Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case fired := <-timer.C:
			date := s.PlanDate(fired)
			plan, err := s.Engine.RunRanking(ctx, date, s.Config.Quota)
			if err != nil {
				s.Log.Errorf("scheduled ranking for %s failed: %v", date, err)
				continue
			}
			rev, sby, mnt := plan.Counts()
			s.Log.Infof("scheduled pass %s for %s: %d revenue, %d standby, %d maintenance",
				plan.PassID, date, rev, sby, mnt)
		}
	}
}

// RunOnce fires a single pass immediately, outside the schedule.
func (s *Scheduler) RunOnce(ctx context.Context) (planner.Plan, error) {
	date := s.PlanDate(s.now())
	plan, err := s.Engine.RunRanking(ctx, date, s.Config.Quota)
	if err != nil {
		return planner.Plan{}, fmt.Errorf("ranking for %s: %w", date, err)
	}
	return plan, nil
}
