// Package ingest validates raw depot feed rows into canonical train records
// and upserts them into the store. Rows arrive loosely typed (spreadsheet
// cells, MQTT payloads); the coercion policy is deliberately lenient so a
// malformed cell never aborts a whole batch.
package ingest

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/kilianp07/induction/core/logger"
	"github.com/kilianp07/induction/core/metrics"
	"github.com/kilianp07/induction/core/model"
	"github.com/kilianp07/induction/core/store"
)

// RawRow carries one train's daily attributes as unparsed strings.
type RawRow struct {
	TrainsetID     string `json:"trainset_id"`
	Date           string `json:"date"`
	FitnessRSDays  string `json:"fitness_rs_days"`
	FitnessSigDays string `json:"fitness_sig_days"`
	FitnessTelDays string `json:"fitness_tel_days"`
	JobCardStatus  string `json:"job_card_status"`
	BrandingHours  string `json:"branding_hours"`
	MileageKM      string `json:"mileage_km"`
	CleaningSlots  string `json:"cleaning_slots"`
	StablingScore  string `json:"stabling_score"`
}

// Normalizer coerces raw rows and upserts them into the store.
type Normalizer struct {
	store store.Store
	log   logger.Logger
	sink  metrics.Sink
}

// New creates a Normalizer. A nil sink disables metrics.
func New(st store.Store, log logger.Logger, sink metrics.Sink) *Normalizer {
	if sink == nil {
		sink = metrics.NopSink{}
	}
	return &Normalizer{store: st, log: log, sink: sink}
}

// NormalizeBatch upserts every coercible row and returns the canonical
// records in batch order. Rows without a usable identity or date are skipped
// with a warning; unparseable numeric cells default to zero. No decision is
// assigned here.
func (n *Normalizer) NormalizeBatch(ctx context.Context, rows []RawRow) ([]model.TrainRecord, error) {
	out := make([]model.TrainRecord, 0, len(rows))
	skipped := 0
	for _, row := range rows {
		rec, err := n.normalize(row)
		if err != nil {
			skipped++
			n.log.Warnf("skipping row for trainset %q: %v", row.TrainsetID, err)
			continue
		}
		stored, err := n.store.Upsert(ctx, rec)
		if err != nil {
			return nil, fmt.Errorf("upsert trainset %s on %s: %w", rec.TrainsetID, rec.Date, err)
		}
		out = append(out, stored)
	}
	if len(out) > 0 {
		if err := n.sink.RecordIngest(out[0].Date, len(out)); err != nil {
			n.log.Warnf("ingest metrics: %v", err)
		}
	}
	n.log.Infof("normalized %d rows (%d skipped)", len(out), skipped)
	return out, nil
}

func (n *Normalizer) normalize(row RawRow) (model.TrainRecord, error) {
	id := strings.TrimSpace(row.TrainsetID)
	if id == "" {
		return model.TrainRecord{}, fmt.Errorf("empty trainset id")
	}
	date, err := model.ParseDate(row.Date)
	if err != nil {
		return model.TrainRecord{}, err
	}
	return model.TrainRecord{
		TrainsetID:     id,
		Date:           date,
		FitnessRSDays:  intOrZero(row.FitnessRSDays),
		FitnessSigDays: intOrZero(row.FitnessSigDays),
		FitnessTelDays: intOrZero(row.FitnessTelDays),
		JobCardStatus:  model.NormalizeJobCard(row.JobCardStatus),
		BrandingHours:  intOrZero(row.BrandingHours),
		MileageKM:      intOrZero(row.MileageKM),
		CleaningSlots:  intOrZero(row.CleaningSlots),
		StablingScore:  floatOrZero(row.StablingScore),
	}, nil
}

// intOrZero parses a numeric cell, defaulting to zero on failure. The
// default is the documented ingestion policy, not an error path.
func intOrZero(s string) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return v
}

func floatOrZero(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}
