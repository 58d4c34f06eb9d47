package planner

import (
	"math"

	"github.com/kilianp07/induction/core/model"
)

// splitByFeasibility applies the hard safety rule: a trainset with an open
// job card is out of ranking contention no matter how well the model would
// score it. Ineligible records get the -Inf sentinel attached; the split is
// final, no later step may move them back into Revenue or Standby.
func splitByFeasibility(recs []model.TrainRecord) (eligible, ineligible []model.TrainRecord) {
	neg := math.Inf(-1)
	for _, r := range recs {
		if r.JobCardStatus == model.JobCardOpen {
			r.PredictedScore = &neg
			ineligible = append(ineligible, r)
			continue
		}
		eligible = append(eligible, r)
	}
	return eligible, ineligible
}
