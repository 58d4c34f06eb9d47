package model

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Decision is the service assignment of a trainset for one operational day.
type Decision string

const (
	// DecisionUnassigned is the initial state before a ranking pass.
	DecisionUnassigned Decision = ""
	// DecisionRevenue admits the trainset to passenger service.
	DecisionRevenue Decision = "Revenue"
	// DecisionStandby holds the trainset in reserve.
	DecisionStandby Decision = "Standby"
	// DecisionMaintenance sends the trainset to the inspection bay line.
	DecisionMaintenance Decision = "Maintenance"
)

// Valid reports whether d is one of the known decision states.
func (d Decision) Valid() bool {
	switch d {
	case DecisionUnassigned, DecisionRevenue, DecisionStandby, DecisionMaintenance:
		return true
	}
	return false
}

func (d Decision) String() string {
	if d == DecisionUnassigned {
		return "Unassigned"
	}
	return string(d)
}

// JobCardStatus tracks whether a maintenance work order is outstanding.
type JobCardStatus string

const (
	JobCardOpen   JobCardStatus = "open"
	JobCardClosed JobCardStatus = "closed"
)

// NormalizeJobCard maps a raw status cell to a JobCardStatus. Anything that
// is not "open" after trimming and lower-casing is treated as closed.
func NormalizeJobCard(raw string) JobCardStatus {
	if strings.TrimSpace(strings.ToLower(raw)) == string(JobCardOpen) {
		return JobCardOpen
	}
	return JobCardClosed
}

// Date identifies one operational day as YYYY-MM-DD.
type Date string

const dateLayout = "2006-01-02"

// ParseDate validates s against the YYYY-MM-DD layout.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return "", fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date(t.Format(dateLayout)), nil
}

// Today returns the current UTC operational day.
func Today() Date { return Date(time.Now().UTC().Format(dateLayout)) }

func (d Date) String() string { return string(d) }

// TrainRecord is one row per (trainset, operational day). Attribute fields
// come from the depot feeds; PredictedScore and Decision are owned by the
// ranking engine and the what-if mutator.
type TrainRecord struct {
	TrainsetID     string
	Date           Date
	FitnessRSDays  int
	FitnessSigDays int
	FitnessTelDays int
	JobCardStatus  JobCardStatus
	BrandingHours  int
	MileageKM      int
	CleaningSlots  int
	StablingScore  float64

	// PredictedScore is nil until a ranking pass has scored the record.
	// math.Inf(-1) marks a record forced out of contention by the
	// feasibility override.
	PredictedScore *float64
	Decision       Decision
}

// Validate checks that the record identity is sound.
func (r TrainRecord) Validate() error {
	if r.TrainsetID == "" {
		return fmt.Errorf("trainset id must not be empty")
	}
	if _, err := ParseDate(string(r.Date)); err != nil {
		return err
	}
	return nil
}

// ForcedIneligible reports whether the feasibility override has pinned the
// record to the -Inf sentinel.
func (r TrainRecord) ForcedIneligible() bool {
	return r.PredictedScore != nil && math.IsInf(*r.PredictedScore, -1)
}

// Eligible reports whether the record may compete for revenue service.
func (r TrainRecord) Eligible() bool {
	return r.JobCardStatus != JobCardOpen && !r.ForcedIneligible()
}

// MinFitnessDays returns the smallest remaining window across the three
// fitness certificates.
func (r TrainRecord) MinFitnessDays() int {
	min := r.FitnessRSDays
	if r.FitnessSigDays < min {
		min = r.FitnessSigDays
	}
	if r.FitnessTelDays < min {
		min = r.FitnessTelDays
	}
	return min
}

// Score returns the attached predicted score, or negative infinity when the
// record has not been scored.
func (r TrainRecord) Score() float64 {
	if r.PredictedScore == nil {
		return math.Inf(-1)
	}
	return *r.PredictedScore
}

// ScorePtr returns a new pointer holding v. Convenience for building records.
func ScorePtr(v float64) *float64 { return &v }
