package regression

import (
	"fmt"
	"strconv"

	"optimedu/internal/panel"
)

// Impact translates a standardized coefficient into original units.
type Impact struct {
	Outcome   panel.Column `json:"outcome"`
	Predictor panel.Column `json:"predictor"`

	// Standardized is the fitted coefficient: standard deviations of the
	// outcome per standard deviation of the predictor.
	Standardized float64 `json:"standardized"`

	// PerUnit is the change in the outcome, in its own units, for a one
	// unit change in the predictor with the others held fixed.
	PerUnit float64 `json:"per_unit"`

	Narrative string `json:"narrative"`
}

// Impacts narrates every coefficient of the outcome's model.
func (a *Analysis) Impacts(outcome panel.Column) []Impact {
	model, ok := a.Models[outcome]
	if !ok {
		return nil
	}
	ys := a.Scalers[outcome]

	out := make([]Impact, 0, len(model.Predictors))
	for j, pred := range model.Predictors {
		xs := a.Scalers[pred]
		beta := model.Coefficients[j]

		perUnit := 0.0
		if xs.Std != 0 {
			perUnit = beta * ys.Std / xs.Std
		}

		out = append(out, Impact{
			Outcome:      outcome,
			Predictor:    pred,
			Standardized: beta,
			PerUnit:      perUnit,
			Narrative:    narrate(pred, outcome, perUnit),
		})
	}
	return out
}

func narrate(pred, outcome panel.Column, perUnit float64) string {
	direction := "increase"
	magnitude := perUnit
	if perUnit < 0 {
		direction = "decrease"
		magnitude = -perUnit
	}
	return fmt.Sprintf("Each 1-unit increase in %s is associated with a %s %s in %s, holding the other inputs fixed.",
		pred.Label(), significant(magnitude, 4), direction, outcome.Label())
}

// significant formats v to the given number of significant digits in plain
// decimal notation. Per-dollar slopes are typically a few thousandths.
func significant(v float64, digits int) string {
	rounded, err := strconv.ParseFloat(strconv.FormatFloat(v, 'g', digits, 64), 64)
	if err != nil {
		return strconv.FormatFloat(v, 'g', digits, 64)
	}
	return strconv.FormatFloat(rounded, 'f', -1, 64)
}
