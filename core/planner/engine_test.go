package planner

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/kilianp07/induction/core/model"
	"github.com/kilianp07/induction/core/oracle"
	"github.com/kilianp07/induction/core/store"
	"github.com/kilianp07/induction/infra/logger"
)

const day = model.Date("2025-09-01")

func seedFleet(t *testing.T, st store.Store, n int, openJobCards ...string) {
	t.Helper()
	open := map[string]bool{}
	for _, id := range openJobCards {
		open[id] = true
	}
	for i := 1; i <= n; i++ {
		id := fmt.Sprintf("TS-%02d", i)
		status := model.JobCardClosed
		if open[id] {
			status = model.JobCardOpen
		}
		_, err := st.Upsert(context.Background(), model.TrainRecord{
			TrainsetID:    id,
			Date:          day,
			JobCardStatus: status,
			MileageKM:     1000 * i,
			FitnessRSDays: 30 + i,
		})
		if err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
}

// ascendingScores gives each eligible record a distinct score so orderings
// are unambiguous: later trainsets score higher.
func ascendingScores(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i+1) / float64(n+1)
	}
	return out
}

func TestRunRankingQuotaInvariant(t *testing.T) {
	st := store.NewMemoryStore()
	seedFleet(t, st, 20)
	e := New(st, &oracle.ScriptedOracle{Scores: ascendingScores(20)}, logger.NopLogger{})
	plan, err := e.RunRanking(context.Background(), day, 15)
	if err != nil {
		t.Fatalf("rank: %v", err)
	}
	rev, sby, mnt := plan.Counts()
	if rev != 15 || sby != 5 || mnt != 0 {
		t.Fatalf("quota invariant violated: revenue=%d standby=%d maintenance=%d", rev, sby, mnt)
	}
}

func TestRunRankingExampleScenario(t *testing.T) {
	// 20 eligible records with distinct scores plus a 21st with an open job
	// card; the 21st would have the highest raw score and must still land in
	// maintenance.
	st := store.NewMemoryStore()
	seedFleet(t, st, 21, "TS-21")
	e := New(st, &oracle.ScriptedOracle{Scores: ascendingScores(20)}, logger.NopLogger{})
	plan, err := e.RunRanking(context.Background(), day, 15)
	if err != nil {
		t.Fatalf("rank: %v", err)
	}
	rev, sby, mnt := plan.Counts()
	if rev != 15 || sby != 5 || mnt != 1 {
		t.Fatalf("unexpected partition: revenue=%d standby=%d maintenance=%d", rev, sby, mnt)
	}
	if plan.Maintenance[0].TrainsetID != "TS-21" {
		t.Fatalf("open job card must land in maintenance, got %s", plan.Maintenance[0].TrainsetID)
	}
	if !plan.Maintenance[0].ForcedIneligible() {
		t.Fatal("maintenance record must carry the -Inf sentinel")
	}
	// scores ascend with trainset index, so TS-06..TS-20 are revenue
	for _, r := range plan.Revenue {
		if r.TrainsetID <= "TS-05" {
			t.Fatalf("low-scored %s must not be revenue", r.TrainsetID)
		}
	}
}

func TestRunRankingMonotonicity(t *testing.T) {
	st := store.NewMemoryStore()
	seedFleet(t, st, 10)
	e := New(st, &oracle.ScriptedOracle{Scores: ascendingScores(10)}, logger.NopLogger{})
	plan, err := e.RunRanking(context.Background(), day, 4)
	if err != nil {
		t.Fatalf("rank: %v", err)
	}
	minRevenue := plan.Revenue[0].Score()
	for _, r := range plan.Revenue {
		if r.Score() < minRevenue {
			minRevenue = r.Score()
		}
	}
	for _, s := range plan.Standby {
		if s.Score() > minRevenue {
			t.Fatalf("standby %s outscores a revenue record", s.TrainsetID)
		}
	}
}

func TestRunRankingStableTieBreak(t *testing.T) {
	st := store.NewMemoryStore()
	seedFleet(t, st, 3)
	// all tied: batch order must decide
	e := New(st, &oracle.ScriptedOracle{Scores: []float64{0.5, 0.5, 0.5}}, logger.NopLogger{})
	plan, err := e.RunRanking(context.Background(), day, 2)
	if err != nil {
		t.Fatalf("rank: %v", err)
	}
	if plan.Revenue[0].TrainsetID != "TS-01" || plan.Revenue[1].TrainsetID != "TS-02" {
		t.Fatalf("tie break must preserve batch order, got %s %s",
			plan.Revenue[0].TrainsetID, plan.Revenue[1].TrainsetID)
	}
	if plan.Standby[0].TrainsetID != "TS-03" {
		t.Fatalf("expected TS-03 standby, got %s", plan.Standby[0].TrainsetID)
	}
}

func TestRunRankingIdempotent(t *testing.T) {
	st := store.NewMemoryStore()
	seedFleet(t, st, 12, "TS-04")
	orc := &oracle.ScriptedOracle{Scores: ascendingScores(11)}
	e := New(st, orc, logger.NopLogger{})
	first, err := e.RunRanking(context.Background(), day, 5)
	if err != nil {
		t.Fatalf("rank: %v", err)
	}
	second, err := e.RunRanking(context.Background(), day, 5)
	if err != nil {
		t.Fatalf("rank: %v", err)
	}
	for i := range first.Revenue {
		if first.Revenue[i].TrainsetID != second.Revenue[i].TrainsetID {
			t.Fatal("re-running on unchanged input must produce an identical partition")
		}
	}
	for i := range first.Standby {
		if first.Standby[i].TrainsetID != second.Standby[i].TrainsetID {
			t.Fatal("re-running on unchanged input must produce an identical partition")
		}
	}
}

func TestRunRankingQuotaExceedsEligible(t *testing.T) {
	st := store.NewMemoryStore()
	seedFleet(t, st, 5)
	e := New(st, &oracle.ScriptedOracle{Scores: ascendingScores(5)}, logger.NopLogger{})
	plan, err := e.RunRanking(context.Background(), day, 15)
	if err != nil {
		t.Fatalf("rank: %v", err)
	}
	rev, sby, _ := plan.Counts()
	if rev != 5 || sby != 0 {
		t.Fatalf("K >= eligible must empty standby, got revenue=%d standby=%d", rev, sby)
	}
}

func TestRunRankingAllIneligible(t *testing.T) {
	st := store.NewMemoryStore()
	seedFleet(t, st, 3, "TS-01", "TS-02", "TS-03")
	orc := &oracle.ScriptedOracle{Scores: nil}
	e := New(st, orc, logger.NopLogger{})
	plan, err := e.RunRanking(context.Background(), day, 15)
	if err != nil {
		t.Fatalf("rank: %v", err)
	}
	rev, sby, mnt := plan.Counts()
	if rev != 0 || sby != 0 || mnt != 3 {
		t.Fatalf("all-open fleet must be all maintenance, got %d/%d/%d", rev, sby, mnt)
	}
	if orc.Calls != 0 {
		t.Fatal("oracle must not be called with an empty eligible set")
	}
}

func TestRunRankingEmptyDay(t *testing.T) {
	st := store.NewMemoryStore()
	e := New(st, &oracle.ScriptedOracle{}, logger.NopLogger{})
	plan, err := e.RunRanking(context.Background(), "2025-12-24", 15)
	if err != nil {
		t.Fatalf("rank: %v", err)
	}
	rev, sby, mnt := plan.Counts()
	if rev+sby+mnt != 0 {
		t.Fatal("empty day must be a no-op")
	}
}

func TestRunRankingOracleFailureAbortsWithoutSideEffects(t *testing.T) {
	st := store.NewMemoryStore()
	seedFleet(t, st, 4)
	e := New(st, &oracle.ScriptedOracle{Err: errors.New("model unreachable")}, logger.NopLogger{})
	_, err := e.RunRanking(context.Background(), day, 2)
	if !errors.Is(err, ErrOracle) {
		t.Fatalf("expected ErrOracle, got %v", err)
	}
	recs, _ := st.Day(context.Background(), day)
	for _, r := range recs {
		if r.Decision != model.DecisionUnassigned || r.PredictedScore != nil {
			t.Fatalf("failed pass must persist nothing, got %+v", r)
		}
	}
}

func TestRunRankingOracleLengthMismatch(t *testing.T) {
	st := store.NewMemoryStore()
	seedFleet(t, st, 4)
	e := New(st, &oracle.ScriptedOracle{Scores: []float64{0.1, 0.2}}, logger.NopLogger{})
	_, err := e.RunRanking(context.Background(), day, 2)
	if !errors.Is(err, ErrOracle) {
		t.Fatalf("mismatched batch length must fail the pass, got %v", err)
	}
}

func TestRunRankingOverrideInvariantPersisted(t *testing.T) {
	st := store.NewMemoryStore()
	seedFleet(t, st, 6, "TS-02", "TS-05")
	e := New(st, &oracle.ScriptedOracle{Scores: ascendingScores(4)}, logger.NopLogger{})
	if _, err := e.RunRanking(context.Background(), day, 3); err != nil {
		t.Fatalf("rank: %v", err)
	}
	recs, _ := st.Day(context.Background(), day)
	for _, r := range recs {
		if r.JobCardStatus == model.JobCardOpen && r.Decision != model.DecisionMaintenance {
			t.Fatalf("open job card must persist as maintenance, got %s=%s", r.TrainsetID, r.Decision)
		}
	}
}

func TestRunRankingNegativeQuota(t *testing.T) {
	st := store.NewMemoryStore()
	e := New(st, &oracle.ScriptedOracle{}, logger.NopLogger{})
	if _, err := e.RunRanking(context.Background(), day, -1); err == nil {
		t.Fatal("negative quota must be rejected")
	}
}
