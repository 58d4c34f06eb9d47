package oracle

import (
	"context"
	"fmt"
	"math"
)

// MockOracle scores batches with a fixed linear combination of the features.
// It is deterministic and needs no external model, which makes it usable both
// in tests and as a configured stand-in when no model server is deployed.
type MockOracle struct{}

// Weights roughly follow the trained model's feature importances: certificate
// headroom and cleaning readiness push a trainset up, accumulated mileage
// pushes it down.
var mockWeights = FeatureVector{0.02, 0.02, 0.02, 0.005, -0.00001, 0.05, 0.5, 0.2}

// Score returns one score per vector.
func (MockOracle) Score(_ context.Context, batch []FeatureVector) ([]float64, error) {
	out := make([]float64, len(batch))
	for i, v := range batch {
		var s float64
		for j := range v {
			s += mockWeights[j] * v[j]
		}
		// squash into (0,1) so scores compare naturally with the model's output
		out[i] = 1 / (1 + math.Exp(-s))
	}
	return out, nil
}

// ScriptedOracle returns preset scores or a preset error. Test helper.
type ScriptedOracle struct {
	Scores []float64
	Err    error
	// Calls counts how many times Score was invoked.
	Calls int
}

func (s *ScriptedOracle) Score(_ context.Context, batch []FeatureVector) ([]float64, error) {
	s.Calls++
	if s.Err != nil {
		return nil, s.Err
	}
	if s.Scores == nil {
		return nil, fmt.Errorf("scripted oracle has no scores")
	}
	return s.Scores, nil
}
