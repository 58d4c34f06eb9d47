package planner

import (
	"context"
	"fmt"

	"github.com/kilianp07/induction/core/model"
	"github.com/kilianp07/induction/core/store"
)

// ApplyWhatIf pulls the focus trainset to maintenance and promotes one
// eligible standby trainset to revenue per the configured policy. It changes
// at most two records' decisions, never touches predicted scores and never
// re-runs ranking — so the resulting plan may legitimately diverge from the
// score ordering a full pass would produce. That divergence is the point of
// what-if exploration; callers presenting the plan should label it as manual.
func (e *Engine) ApplyWhatIf(ctx context.Context, date model.Date, focusID string) (WhatIfResult, error) {
	e.locks.Lock(date)
	defer e.locks.Unlock(date)

	recs, err := e.store.Day(ctx, date)
	if err != nil {
		return WhatIfResult{}, fmt.Errorf("read records for %s: %w", date, err)
	}

	var focus *model.TrainRecord
	var candidates []model.TrainRecord
	for i := range recs {
		r := recs[i]
		if r.TrainsetID == focusID {
			focus = &recs[i]
			continue
		}
		// A standby trainset that has become ineligible since the last
		// ranking pass (open job card, forced sentinel) is not a valid
		// replacement.
		if r.Decision == model.DecisionStandby && r.Eligible() {
			candidates = append(candidates, r)
		}
	}
	if focus == nil {
		return WhatIfResult{}, fmt.Errorf("what-if %s on %s: %w", focusID, date, ErrNotFound)
	}

	changes := []store.DecisionChange{
		{TrainsetID: focusID, Decision: model.DecisionMaintenance},
	}
	res := WhatIfResult{Focus: focusID, MovedTo: model.DecisionMaintenance}
	if promoted, ok := e.policy.Select(candidates); ok {
		changes = append(changes, store.DecisionChange{
			TrainsetID: promoted.TrainsetID,
			Decision:   model.DecisionRevenue,
		})
		res.Promoted = promoted.TrainsetID
	}

	if err := e.store.ApplyDecisions(ctx, date, changes); err != nil {
		return WhatIfResult{}, fmt.Errorf("persist what-if for %s: %w", date, err)
	}

	if res.Promoted == "" {
		e.log.Warnf("what-if %s on %s: moved to maintenance, no standby available", focusID, date)
	} else {
		e.log.Infof("what-if %s on %s: moved to maintenance, promoted %s (%s policy)",
			focusID, date, res.Promoted, e.policy.Name())
	}
	if err := e.sink.RecordWhatIf(date, res.Promoted != ""); err != nil {
		e.log.Warnf("metrics: %v", err)
	}
	if e.bus != nil {
		e.bus.Publish(WhatIfEvent{Date: date, Focus: focusID, Promoted: res.Promoted})
	}
	return res, nil
}
