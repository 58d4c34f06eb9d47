// Package planner decides, per depot/day, which trainsets enter revenue
// service, which are held standby and which go to maintenance. It combines a
// deterministic safety override with model-based ranking under a fixed
// capacity quota, and offers a manual what-if mutation alongside the full
// ranking pass.
package planner

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/induction/core/logger"
	"github.com/kilianp07/induction/core/metrics"
	"github.com/kilianp07/induction/core/model"
	"github.com/kilianp07/induction/core/monitoring"
	"github.com/kilianp07/induction/core/oracle"
	"github.com/kilianp07/induction/core/planlog"
	"github.com/kilianp07/induction/core/store"
	"github.com/kilianp07/induction/internal/datelock"
	"github.com/kilianp07/induction/internal/eventbus"
)

// Plan is the result of one ranking pass.
type Plan struct {
	PassID      string
	Date        model.Date
	Quota       int
	Revenue     []model.TrainRecord
	Standby     []model.TrainRecord
	Maintenance []model.TrainRecord
}

// Counts returns the category sizes.
func (p Plan) Counts() (revenue, standby, maintenance int) {
	return len(p.Revenue), len(p.Standby), len(p.Maintenance)
}

// WhatIfResult reports the outcome of a what-if mutation. Promoted is empty
// when no standby trainset was available for promotion.
type WhatIfResult struct {
	Focus    string
	MovedTo  model.Decision
	Promoted string
}

// PlanEvent is published on the event bus after a successful ranking pass.
type PlanEvent struct {
	PassID      string
	Date        model.Date
	Revenue     int
	Standby     int
	Maintenance int
}

// WhatIfEvent is published after a what-if mutation.
type WhatIfEvent struct {
	Date     model.Date
	Focus    string
	Promoted string
}

// Engine runs ranking passes and what-if mutations against the store. All
// operations on the same date are serialized; the engine never runs two
// read-compute-write cycles for one day concurrently.
type Engine struct {
	store   store.Store
	oracle  oracle.ScoringOracle
	log     logger.Logger
	locks   *datelock.Locks
	sink    metrics.Sink
	policy  StandbyPolicy
	history planlog.Store
	bus     eventbus.EventBus
	timeout time.Duration
}

// New creates an Engine with the default first-found standby policy and a
// 10 second oracle timeout. Use the setters to customize.
func New(st store.Store, orc oracle.ScoringOracle, log logger.Logger) *Engine {
	return &Engine{
		store:   st,
		oracle:  orc,
		log:     log,
		locks:   datelock.New(),
		sink:    metrics.NopSink{},
		policy:  FirstStandbyPolicy{},
		timeout: 10 * time.Second,
	}
}

// SetMetricsSink configures the sink receiving pass summaries.
func (e *Engine) SetMetricsSink(s metrics.Sink) {
	if s != nil {
		e.sink = s
	}
}

// SetStandbyPolicy configures the what-if promotion policy.
func (e *Engine) SetStandbyPolicy(p StandbyPolicy) {
	if p != nil {
		e.policy = p
	}
}

// SetHistory configures the store receiving one record per ranking pass.
func (e *Engine) SetHistory(h planlog.Store) { e.history = h }

// SetEventBus configures the bus receiving plan and what-if events.
func (e *Engine) SetEventBus(b eventbus.EventBus) { e.bus = b }

// SetOracleTimeout bounds one scoring call.
func (e *Engine) SetOracleTimeout(d time.Duration) {
	if d > 0 {
		e.timeout = d
	}
}

// RunRanking partitions every record of the date into Revenue, Standby and
// Maintenance under the capacity quota and persists the decisions as one
// atomic batch. On any oracle or store failure nothing is persisted.
func (e *Engine) RunRanking(ctx context.Context, date model.Date, quota int) (Plan, error) {
	if quota < 0 {
		return Plan{}, fmt.Errorf("quota must not be negative, got %d", quota)
	}
	e.locks.Lock(date)
	defer e.locks.Unlock(date)

	recs, err := e.store.Day(ctx, date)
	if err != nil {
		return Plan{}, fmt.Errorf("read records for %s: %w", date, err)
	}
	plan := Plan{PassID: uuid.NewString(), Date: date, Quota: quota}
	if len(recs) == 0 {
		e.log.Infof("ranking %s: no records, nothing to do", date)
		return plan, nil
	}

	eligible, ineligible := splitByFeasibility(recs)

	start := time.Now()
	scored, err := e.scoreEligible(ctx, eligible)
	if err != nil {
		monitoring.CaptureException(err, map[string]string{"date": string(date)})
		if serr := e.sink.RecordRankingFailure(date); serr != nil {
			e.log.Warnf("metrics: %v", serr)
		}
		return Plan{}, err
	}
	latency := time.Since(start)

	// Stable sort keeps the original batch order on score ties. The
	// tie-break is a policy choice; stability makes it explicit.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score() > scored[j].Score()
	})

	cut := quota
	if cut > len(scored) {
		cut = len(scored)
	}
	plan.Revenue = scored[:cut]
	plan.Standby = scored[cut:]
	plan.Maintenance = ineligible

	if err := e.store.ApplyDecisions(ctx, date, planChanges(plan)); err != nil {
		monitoring.CaptureException(err, map[string]string{"date": string(date)})
		return Plan{}, fmt.Errorf("persist decisions for %s: %w", date, err)
	}

	e.afterPass(ctx, plan, latency)
	return plan, nil
}

// scoreEligible calls the oracle on the eligible records and attaches one
// score per record. The call is bounded by the engine timeout; a mismatched
// batch length is as fatal as an unreachable model.
func (e *Engine) scoreEligible(ctx context.Context, eligible []model.TrainRecord) ([]model.TrainRecord, error) {
	if len(eligible) == 0 {
		return nil, nil
	}
	cctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	scores, err := e.oracle.Score(cctx, oracle.EncodeBatch(eligible))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOracle, err)
	}
	if len(scores) != len(eligible) {
		return nil, fmt.Errorf("%w: got %d scores for %d records", ErrOracle, len(scores), len(eligible))
	}
	scored := make([]model.TrainRecord, len(eligible))
	for i, r := range eligible {
		s := scores[i]
		r.PredictedScore = &s
		scored[i] = r
	}
	return scored, nil
}

func planChanges(p Plan) []store.DecisionChange {
	changes := make([]store.DecisionChange, 0, len(p.Revenue)+len(p.Standby)+len(p.Maintenance))
	add := func(recs []model.TrainRecord, d model.Decision) {
		for _, r := range recs {
			changes = append(changes, store.DecisionChange{
				TrainsetID: r.TrainsetID,
				Decision:   d,
				Score:      r.PredictedScore,
			})
		}
	}
	add(p.Revenue, model.DecisionRevenue)
	add(p.Standby, model.DecisionStandby)
	add(p.Maintenance, model.DecisionMaintenance)
	return changes
}

func (e *Engine) afterPass(ctx context.Context, plan Plan, latency time.Duration) {
	rev, sby, mnt := plan.Counts()
	e.log.Infof("ranking %s: pass %s revenue=%d standby=%d maintenance=%d", plan.Date, plan.PassID, rev, sby, mnt)
	if err := e.sink.RecordRankingPass(metrics.PassSummary{
		Date:          plan.Date,
		Quota:         plan.Quota,
		Revenue:       rev,
		Standby:       sby,
		Maintenance:   mnt,
		OracleLatency: latency,
	}); err != nil {
		e.log.Warnf("metrics: %v", err)
	}
	if e.history != nil {
		if err := e.history.Append(ctx, passRecord(plan)); err != nil {
			e.log.Errorf("plan history append: %v", err)
		}
	}
	if e.bus != nil {
		e.bus.Publish(PlanEvent{PassID: plan.PassID, Date: plan.Date, Revenue: rev, Standby: sby, Maintenance: mnt})
	}
}

func passRecord(p Plan) planlog.PassRecord {
	entry := func(r model.TrainRecord) planlog.Entry {
		if r.ForcedIneligible() {
			return planlog.Entry{TrainsetID: r.TrainsetID, Forced: true}
		}
		return planlog.Entry{TrainsetID: r.TrainsetID, Score: r.Score()}
	}
	rec := planlog.PassRecord{
		PassID:    p.PassID,
		Date:      p.Date,
		Quota:     p.Quota,
		Encoding:  oracle.EncodingVersion,
		Timestamp: time.Now().UTC(),
	}
	for _, r := range p.Revenue {
		rec.Revenue = append(rec.Revenue, entry(r))
	}
	for _, r := range p.Standby {
		rec.Standby = append(rec.Standby, entry(r))
	}
	for _, r := range p.Maintenance {
		rec.Maintenance = append(rec.Maintenance, entry(r))
	}
	return rec
}
