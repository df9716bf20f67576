package regression

import (
	"fmt"
	"math"

	"optimedu/internal/panel"
)

// Prediction is the forecast value of one outcome in original units, or
// the reason it could not be produced.
type Prediction struct {
	Outcome panel.Column `json:"outcome"`
	Label   string       `json:"label"`
	Value   float64      `json:"value"`
	Err     error        `json:"-"`
}

// OK reports whether the prediction carries a value.
func (p Prediction) OK() bool {
	return p.Err == nil
}

// Ranges returns the slider span of each predictor in use.
func (a *Analysis) Ranges() map[panel.Column]Range {
	out := make(map[panel.Column]Range, len(a.Predictors))
	for _, col := range a.Predictors {
		out[col] = a.Scalers[col].Range()
	}
	return out
}

// Predict standardizes raw predictor values with the stored scalers,
// applies each outcome's coefficients and maps the result back to original
// units. Predictors missing from inputs are taken at their mean. Results
// follow the order of a.Outcomes; failures are isolated per outcome.
func (a *Analysis) Predict(inputs map[panel.Column]float64) []Prediction {
	z := make([]float64, len(a.Predictors))
	var inputErr error
	for i, col := range a.Predictors {
		raw, ok := inputs[col]
		if !ok {
			raw = a.Scalers[col].Mean
		}
		if math.IsNaN(raw) || math.IsInf(raw, 0) {
			inputErr = fmt.Errorf("%w: %s input is not finite", ErrNumerical, col)
		}
		z[i] = a.Scalers[col].Transform(raw)
	}

	out := make([]Prediction, 0, len(a.Outcomes))
	for _, outcome := range a.Outcomes {
		out = append(out, a.predictOutcome(outcome, z, inputErr))
	}
	return out
}

// PredictOutcome returns the prediction for a single outcome.
func (a *Analysis) PredictOutcome(outcome panel.Column, inputs map[panel.Column]float64) Prediction {
	for _, p := range a.Predict(inputs) {
		if p.Outcome == outcome {
			return p
		}
	}
	return Prediction{
		Outcome: outcome,
		Label:   outcome.Label(),
		Err:     &PredictionError{Outcome: outcome, Err: ErrUnknownOutcome},
	}
}

func (a *Analysis) predictOutcome(outcome panel.Column, z []float64, inputErr error) Prediction {
	pred := Prediction{Outcome: outcome, Label: outcome.Label()}

	if perr, failed := a.Failures[outcome]; failed {
		pred.Err = perr
		return pred
	}
	model, ok := a.Models[outcome]
	if !ok {
		pred.Err = &PredictionError{Outcome: outcome, Err: ErrUnknownOutcome}
		return pred
	}
	if inputErr != nil {
		pred.Err = &PredictionError{Outcome: outcome, Err: inputErr}
		return pred
	}

	value := a.Scalers[outcome].Inverse(model.predict(z))
	if math.IsNaN(value) || math.IsInf(value, 0) {
		pred.Err = &PredictionError{Outcome: outcome, Err: fmt.Errorf("%w: prediction is not finite", ErrNumerical)}
		return pred
	}
	pred.Value = value
	return pred
}
