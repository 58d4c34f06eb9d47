// Package planlog persists the outcome of every ranking pass so historical
// plans stay queryable after later passes overwrite the day's decisions.
package planlog

import (
	"context"
	"time"

	"github.com/kilianp07/induction/core/model"
)

// Entry summarizes one trainset inside a pass record. Forced marks records
// pinned to maintenance by the feasibility override; those carry no score.
type Entry struct {
	TrainsetID string  `json:"trainset_id"`
	Score      float64 `json:"score,omitempty"`
	Forced     bool    `json:"forced,omitempty"`
}

// PassRecord captures one ranking pass.
type PassRecord struct {
	PassID      string     `json:"pass_id"`
	Date        model.Date `json:"date"`
	Quota       int        `json:"quota"`
	Encoding    string     `json:"encoding"`
	Timestamp   time.Time  `json:"timestamp"`
	Revenue     []Entry    `json:"revenue"`
	Standby     []Entry    `json:"standby"`
	Maintenance []Entry    `json:"maintenance"`
}

// Mentions reports whether the record involves the given trainset.
func (r PassRecord) Mentions(trainsetID string) bool {
	for _, group := range [][]Entry{r.Revenue, r.Standby, r.Maintenance} {
		for _, e := range group {
			if e.TrainsetID == trainsetID {
				return true
			}
		}
	}
	return false
}

// Query defines filters for retrieving pass records.
type Query struct {
	Start      time.Time
	End        time.Time
	Date       model.Date
	TrainsetID string
}

// Store persists PassRecords and supports querying.
type Store interface {
	Append(ctx context.Context, rec PassRecord) error
	Query(ctx context.Context, q Query) ([]PassRecord, error)
	Close() error
}

func (q Query) matches(r PassRecord) bool {
	if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Timestamp.After(q.End) {
		return false
	}
	if q.Date != "" && r.Date != q.Date {
		return false
	}
	if q.TrainsetID != "" && !r.Mentions(q.TrainsetID) {
		return false
	}
	return true
}
