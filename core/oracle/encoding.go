package oracle

import "github.com/kilianp07/induction/core/model"

// EncodingVersion identifies the feature encoding contract between the
// ranking engine and the scoring model. Bump it whenever the feature order or
// the categorical mapping below changes; the model must be retrained against
// the same version.
const EncodingVersion = "v1"

// FeatureCount is the fixed width of a feature vector.
const FeatureCount = 8

// FeatureVector holds one record's features in the fixed model input order:
// fitness_rs_days, fitness_sig_days, fitness_tel_days, branding_hours,
// mileage_km, cleaning_slots, stabling_score, job_card_status.
type FeatureVector [FeatureCount]float64

// Categorical mapping for job_card_status. Explicit even though ranking only
// ever scores records with closed job cards.
const (
	jobCardOpenCode   = 0.0
	jobCardClosedCode = 1.0
)

// EncodeJobCard maps the job card status to its model input code.
func EncodeJobCard(s model.JobCardStatus) float64 {
	if s == model.JobCardOpen {
		return jobCardOpenCode
	}
	return jobCardClosedCode
}

// Encode builds the feature vector for one record.
func Encode(r model.TrainRecord) FeatureVector {
	return FeatureVector{
		float64(r.FitnessRSDays),
		float64(r.FitnessSigDays),
		float64(r.FitnessTelDays),
		float64(r.BrandingHours),
		float64(r.MileageKM),
		float64(r.CleaningSlots),
		r.StablingScore,
		EncodeJobCard(r.JobCardStatus),
	}
}

// EncodeBatch builds feature vectors for a batch, preserving order.
func EncodeBatch(recs []model.TrainRecord) []FeatureVector {
	out := make([]FeatureVector, len(recs))
	for i, r := range recs {
		out[i] = Encode(r)
	}
	return out
}
