package store

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/kilianp07/induction/core/model"
	corestore "github.com/kilianp07/induction/core/store"
)

func openStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "trains.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func rec(id string, mileage int) model.TrainRecord {
	return model.TrainRecord{
		TrainsetID:    id,
		Date:          "2025-09-01",
		JobCardStatus: model.JobCardClosed,
		MileageKM:     mileage,
		StablingScore: 0.5,
	}
}

func TestSQLiteUpsertUnique(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	if _, err := s.Upsert(ctx, rec("TS-01", 100)); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	stored, err := s.Upsert(ctx, rec("TS-01", 900))
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if stored.MileageKM != 900 {
		t.Fatalf("latest values must win, got %d", stored.MileageKM)
	}
	day, err := s.Day(ctx, "2025-09-01")
	if err != nil {
		t.Fatalf("day: %v", err)
	}
	if len(day) != 1 {
		t.Fatalf("duplicate key must not create a second row, got %d", len(day))
	}
}

func TestSQLiteDayInsertionOrder(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	for _, id := range []string{"TS-09", "TS-02", "TS-05"} {
		if _, err := s.Upsert(ctx, rec(id, 0)); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}
	day, _ := s.Day(ctx, "2025-09-01")
	want := []string{"TS-09", "TS-02", "TS-05"}
	for i := range want {
		if day[i].TrainsetID != want[i] {
			t.Fatalf("insertion order lost: got %v at %d", day[i].TrainsetID, i)
		}
	}
}

func TestSQLiteApplyDecisionsTransactional(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	if _, err := s.Upsert(ctx, rec("TS-01", 0)); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	score := 0.7
	err := s.ApplyDecisions(ctx, "2025-09-01", []corestore.DecisionChange{
		{TrainsetID: "TS-01", Decision: model.DecisionRevenue, Score: &score},
		{TrainsetID: "TS-42", Decision: model.DecisionStandby},
	})
	if !errors.Is(err, corestore.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	day, _ := s.Day(ctx, "2025-09-01")
	if day[0].Decision != model.DecisionUnassigned || day[0].PredictedScore != nil {
		t.Fatalf("rolled back batch must leave no trace, got %+v", day[0])
	}
}

func TestSQLiteDecisionAndScoreRoundTrip(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	if _, err := s.Upsert(ctx, rec("TS-01", 0)); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if _, err := s.Upsert(ctx, rec("TS-02", 0)); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	score := 0.91
	neg := math.Inf(-1)
	if err := s.ApplyDecisions(ctx, "2025-09-01", []corestore.DecisionChange{
		{TrainsetID: "TS-01", Decision: model.DecisionRevenue, Score: &score},
		{TrainsetID: "TS-02", Decision: model.DecisionMaintenance, Score: &neg},
	}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	day, _ := s.Day(ctx, "2025-09-01")
	if day[0].Decision != model.DecisionRevenue || *day[0].PredictedScore != 0.91 {
		t.Fatalf("round trip failed: %+v", day[0])
	}
	if !day[1].ForcedIneligible() {
		t.Fatalf("-Inf sentinel must survive storage, got %v", day[1].PredictedScore)
	}
}

func TestSQLiteUpsertPreservesDecision(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	if _, err := s.Upsert(ctx, rec("TS-01", 100)); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	score := 0.4
	if err := s.ApplyDecisions(ctx, "2025-09-01", []corestore.DecisionChange{
		{TrainsetID: "TS-01", Decision: model.DecisionStandby, Score: &score},
	}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	stored, err := s.Upsert(ctx, rec("TS-01", 200))
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if stored.Decision != model.DecisionStandby {
		t.Fatalf("re-ingest must not clear decision, got %q", stored.Decision)
	}
	if stored.PredictedScore == nil || *stored.PredictedScore != 0.4 {
		t.Fatal("re-ingest must not clear predicted score")
	}
}

func TestSQLiteDatesArePartitioned(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	r := rec("TS-01", 0)
	if _, err := s.Upsert(ctx, r); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	r.Date = "2025-09-02"
	if _, err := s.Upsert(ctx, r); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := s.ApplyDecisions(ctx, "2025-09-02", []corestore.DecisionChange{
		{TrainsetID: "TS-01", Decision: model.DecisionRevenue},
	}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	day1, _ := s.Day(ctx, "2025-09-01")
	if day1[0].Decision != model.DecisionUnassigned {
		t.Fatal("decisions must be scoped to their date")
	}
}
