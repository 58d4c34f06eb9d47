package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/kilianp07/induction/core/model"
)

// MemoryStore keeps records in memory. Iteration order per day is first
// ingestion order, which the default what-if selection policy depends on.
type MemoryStore struct {
	mu   sync.RWMutex
	days map[model.Date]*dayRecords
}

type dayRecords struct {
	order []string
	recs  map[string]model.TrainRecord
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{days: make(map[model.Date]*dayRecords)}
}

// Upsert inserts rec or merges its attribute fields into the existing row for
// the same (trainset, date). Decision and predicted score already stored are
// preserved.
func (s *MemoryStore) Upsert(_ context.Context, rec model.TrainRecord) (model.TrainRecord, error) {
	if err := rec.Validate(); err != nil {
		return model.TrainRecord{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	day := s.days[rec.Date]
	if day == nil {
		day = &dayRecords{recs: make(map[string]model.TrainRecord)}
		s.days[rec.Date] = day
	}
	if prev, ok := day.recs[rec.TrainsetID]; ok {
		rec.Decision = prev.Decision
		rec.PredictedScore = prev.PredictedScore
	} else {
		day.order = append(day.order, rec.TrainsetID)
		rec.Decision = model.DecisionUnassigned
		rec.PredictedScore = nil
	}
	day.recs[rec.TrainsetID] = rec
	return rec, nil
}

// Day returns the records for date in ingestion order.
func (s *MemoryStore) Day(_ context.Context, date model.Date) ([]model.TrainRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	day := s.days[date]
	if day == nil {
		return nil, nil
	}
	out := make([]model.TrainRecord, 0, len(day.order))
	for _, id := range day.order {
		out = append(out, day.recs[id])
	}
	return out, nil
}

// ApplyDecisions applies the batch under one lock. If any change references a
// missing record the whole batch is rejected.
func (s *MemoryStore) ApplyDecisions(_ context.Context, date model.Date, changes []DecisionChange) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	day := s.days[date]
	if day == nil && len(changes) > 0 {
		return fmt.Errorf("apply decisions for %s: %w", date, ErrNotFound)
	}
	for _, c := range changes {
		if _, ok := day.recs[c.TrainsetID]; !ok {
			return fmt.Errorf("apply decisions: trainset %s on %s: %w", c.TrainsetID, date, ErrNotFound)
		}
	}
	for _, c := range changes {
		rec := day.recs[c.TrainsetID]
		rec.Decision = c.Decision
		if c.Score != nil {
			v := *c.Score
			rec.PredictedScore = &v
		}
		day.recs[c.TrainsetID] = rec
	}
	return nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error { return nil }
