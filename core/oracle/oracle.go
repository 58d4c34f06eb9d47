package oracle

import "context"

// ScoringOracle is the narrow interface to the external suitability model.
//
// Score returns exactly one continuous score per input vector, in matching
// order, higher meaning more ready for revenue service, and is deterministic
// for identical input. Any failure (unreachable model, malformed output,
// mismatched batch length) must surface as an error; implementations never
// substitute default scores.
type ScoringOracle interface {
	Score(ctx context.Context, batch []FeatureVector) ([]float64, error)
}
