package store

import (
	"context"
	"errors"

	"github.com/kilianp07/induction/core/model"
)

// ErrNotFound is returned when a referenced (trainset, date) row does not exist.
var ErrNotFound = errors.New("record not found")

// DecisionChange updates the decision, and optionally the predicted score, of
// one record inside an atomic batch.
type DecisionChange struct {
	TrainsetID string
	Decision   model.Decision
	// Score replaces the stored predicted score when non-nil. A nil Score
	// leaves the stored value untouched.
	Score *float64
}

// Store owns record persistence. Implementations must keep (trainset_id, date)
// unique: Upsert merges attribute fields into an existing row instead of
// creating a duplicate, and preserves any decision or score already assigned.
//
// ApplyDecisions is all-or-nothing: either every change in the batch becomes
// visible or none does, and readers never observe a partially applied batch.
type Store interface {
	Upsert(ctx context.Context, rec model.TrainRecord) (model.TrainRecord, error)
	// Day returns every record for the date in stable ingestion order.
	Day(ctx context.Context, date model.Date) ([]model.TrainRecord, error)
	ApplyDecisions(ctx context.Context, date model.Date, changes []DecisionChange) error
	Close() error
}
