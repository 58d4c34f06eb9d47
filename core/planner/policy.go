package planner

import "github.com/kilianp07/induction/core/model"

// StandbyPolicy picks which standby trainset a what-if mutation promotes to
// revenue service. Candidates are already filtered to eligible standby
// records in store iteration order.
type StandbyPolicy interface {
	Name() string
	Select(candidates []model.TrainRecord) (model.TrainRecord, bool)
}

// FirstStandbyPolicy promotes the first candidate in store iteration order.
// This mirrors the historical behavior and is the default; it is a named
// policy precisely so deployments can swap it out.
type FirstStandbyPolicy struct{}

func (FirstStandbyPolicy) Name() string { return "first" }

func (FirstStandbyPolicy) Select(candidates []model.TrainRecord) (model.TrainRecord, bool) {
	if len(candidates) == 0 {
		return model.TrainRecord{}, false
	}
	return candidates[0], true
}

// LowestMileagePolicy promotes the candidate with the least cumulative
// mileage, nudging the fleet toward mileage balance.
type LowestMileagePolicy struct{}

func (LowestMileagePolicy) Name() string { return "lowest_mileage" }

func (LowestMileagePolicy) Select(candidates []model.TrainRecord) (model.TrainRecord, bool) {
	if len(candidates) == 0 {
		return model.TrainRecord{}, false
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.MileageKM < best.MileageKM {
			best = c
		}
	}
	return best, true
}

// EarliestCertExpiryPolicy promotes the candidate whose tightest fitness
// certificate expires soonest, so remaining certificate days are not wasted
// idling in the yard.
type EarliestCertExpiryPolicy struct{}

func (EarliestCertExpiryPolicy) Name() string { return "earliest_cert_expiry" }

func (EarliestCertExpiryPolicy) Select(candidates []model.TrainRecord) (model.TrainRecord, bool) {
	if len(candidates) == 0 {
		return model.TrainRecord{}, false
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.MinFitnessDays() < best.MinFitnessDays() {
			best = c
		}
	}
	return best, true
}

// PolicyByName resolves a configured policy name, defaulting to first-found.
func PolicyByName(name string) StandbyPolicy {
	switch name {
	case LowestMileagePolicy{}.Name():
		return LowestMileagePolicy{}
	case EarliestCertExpiryPolicy{}.Name():
		return EarliestCertExpiryPolicy{}
	default:
		return FirstStandbyPolicy{}
	}
}
