// Package fleet exposes aggregate fleet statistics over HTTP.
package fleet

import (
	"encoding/json"
	"net/http"

	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/induction/core/model"
	"github.com/kilianp07/induction/core/store"
)

// Summary aggregates one service date. Mileage and score statistics are
// zero when the day holds no matching records.
type Summary struct {
	Date          model.Date `json:"date"`
	Total         int        `json:"total"`
	Revenue       int        `json:"revenue"`
	Standby       int        `json:"standby"`
	Maintenance   int        `json:"maintenance"`
	Unassigned    int        `json:"unassigned"`
	OpenJobCards  int        `json:"open_job_cards"`
	MileageMeanKM float64    `json:"mileage_mean_km"`
	MileageStdKM  float64    `json:"mileage_std_km"`
	ScoreMean     float64    `json:"score_mean"`
	ScoreStd      float64    `json:"score_std"`
}

// Summarize computes the fleet summary for a day's records. Forced and
// unscored records are excluded from the score statistics.
func Summarize(date model.Date, recs []model.TrainRecord) Summary {
	s := Summary{Date: date, Total: len(recs)}
	mileages := make([]float64, 0, len(recs))
	scores := make([]float64, 0, len(recs))
	for _, r := range recs {
		switch r.Decision {
		case model.DecisionRevenue:
			s.Revenue++
		case model.DecisionStandby:
			s.Standby++
		case model.DecisionMaintenance:
			s.Maintenance++
		default:
			s.Unassigned++
		}
		if r.JobCardStatus == model.JobCardOpen {
			s.OpenJobCards++
		}
		mileages = append(mileages, float64(r.MileageKM))
		if r.PredictedScore != nil && !r.ForcedIneligible() {
			scores = append(scores, *r.PredictedScore)
		}
	}
	if len(mileages) > 0 {
		s.MileageMeanKM = stat.Mean(mileages, nil)
	}
	if len(mileages) > 1 {
		s.MileageStdKM = stat.StdDev(mileages, nil)
	}
	if len(scores) > 0 {
		s.ScoreMean = stat.Mean(scores, nil)
	}
	if len(scores) > 1 {
		s.ScoreStd = stat.StdDev(scores, nil)
	}
	return s
}

// NewSummaryHandler returns an HTTP handler exposing fleet statistics via
// GET /api/fleet/summary?date=YYYY-MM-DD.
func NewSummaryHandler(st store.Store, token string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if token != "" && r.Header.Get("Authorization") != "Bearer "+token {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		date, err := model.ParseDate(r.URL.Query().Get("date"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		recs, err := st.Day(r.Context(), date)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(Summarize(date, recs)); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}
