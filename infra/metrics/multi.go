package metrics

import (
	coremetrics "github.com/kilianp07/induction/core/metrics"
	"github.com/kilianp07/induction/core/model"
)

// MultiSink fans planner events out to multiple sinks.
type MultiSink struct {
	Sinks []coremetrics.Sink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...coremetrics.Sink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordRankingPass forwards the summary to all sinks, returning the first
// error encountered.
func (m *MultiSink) RecordRankingPass(sum coremetrics.PassSummary) error {
	for _, s := range m.Sinks {
		if err := s.RecordRankingPass(sum); err != nil {
			return err
		}
	}
	return nil
}

// RecordRankingFailure forwards the failure marker.
func (m *MultiSink) RecordRankingFailure(date model.Date) error {
	for _, s := range m.Sinks {
		if err := s.RecordRankingFailure(date); err != nil {
			return err
		}
	}
	return nil
}

// RecordWhatIf forwards the mutation event.
func (m *MultiSink) RecordWhatIf(date model.Date, promoted bool) error {
	for _, s := range m.Sinks {
		if err := s.RecordWhatIf(date, promoted); err != nil {
			return err
		}
	}
	return nil
}

// RecordIngest forwards the batch row count.
func (m *MultiSink) RecordIngest(date model.Date, rows int) error {
	for _, s := range m.Sinks {
		if err := s.RecordIngest(date, rows); err != nil {
			return err
		}
	}
	return nil
}
