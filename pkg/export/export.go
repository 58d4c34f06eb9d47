// Package export serializes a day's induction decisions for exchange with
// depot systems and spreadsheets.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/kilianp07/induction/core/model"
)

// entry is the export form of one decision. Forced records carry no score
// because the feasibility sentinel is not representable in JSON.
type entry struct {
	TrainsetID string   `json:"trainset_id"`
	Date       string   `json:"date"`
	Decision   string   `json:"decision"`
	Score      *float64 `json:"score,omitempty"`
	Forced     bool     `json:"forced,omitempty"`
	MileageKM  int      `json:"mileage_km"`
}

func toEntry(r model.TrainRecord) entry {
	e := entry{
		TrainsetID: r.TrainsetID,
		Date:       string(r.Date),
		Decision:   string(r.Decision),
		MileageKM:  r.MileageKM,
	}
	if r.ForcedIneligible() {
		e.Forced = true
		return e
	}
	e.Score = r.PredictedScore
	return e
}

// WriteJSON writes the day plan to w in JSON format.
func WriteJSON(w io.Writer, recs []model.TrainRecord) error {
	out := make([]entry, 0, len(recs))
	for _, r := range recs {
		out = append(out, toEntry(r))
	}
	enc := json.NewEncoder(w)
	return enc.Encode(out)
}

// WriteCSV writes the day plan to w in CSV format. Forced and unscored
// records leave the score cell empty.
func WriteCSV(w io.Writer, recs []model.TrainRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"trainset_id", "date", "decision", "score", "forced", "mileage_km"}); err != nil {
		return err
	}
	for _, r := range recs {
		e := toEntry(r)
		score := ""
		if e.Score != nil {
			score = strconv.FormatFloat(*e.Score, 'f', -1, 64)
		}
		rec := []string{
			e.TrainsetID,
			e.Date,
			e.Decision,
			score,
			strconv.FormatBool(e.Forced),
			strconv.Itoa(e.MileageKM),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
