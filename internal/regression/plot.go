package regression

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"optimedu/internal/panel"
)

// Point is an observation in original units.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Line is a fitted straight line in original units over [XMin, XMax].
type Line struct {
	Intercept float64 `json:"intercept"`
	Slope     float64 `json:"slope"`
	XMin      float64 `json:"x_min"`
	XMax      float64 `json:"x_max"`
	Valid     bool    `json:"valid"`
}

// PlotSeries is the scatter of one outcome against one predictor with its
// simple regression line.
type PlotSeries struct {
	Outcome   panel.Column `json:"outcome"`
	Predictor panel.Column `json:"predictor"`
	XLabel    string       `json:"x_label"`
	YLabel    string       `json:"y_label"`
	Points    []Point      `json:"points"`
	Fit       Line         `json:"fit"`
}

// PlotData returns one series per predictor for a fitted outcome. The
// standardized rows are mapped back to original units with the stored
// scalers.
func (a *Analysis) PlotData(outcome panel.Column) []PlotSeries {
	model, ok := a.Models[outcome]
	if !ok {
		return nil
	}
	ys := a.Scalers[outcome]

	series := make([]PlotSeries, 0, len(model.Predictors))
	for j, pred := range model.Predictors {
		xs := a.Scalers[pred]

		s := PlotSeries{
			Outcome:   outcome,
			Predictor: pred,
			XLabel:    pred.Label(),
			YLabel:    outcome.Label(),
			Points:    make([]Point, len(model.y)),
		}
		xv := make([]float64, len(model.y))
		yv := make([]float64, len(model.y))
		for i := range model.y {
			xv[i] = xs.Inverse(model.x[i][j])
			yv[i] = ys.Inverse(model.y[i])
			s.Points[i] = Point{X: xv[i], Y: yv[i]}
		}
		s.Fit = fitLine(xv, yv)
		series = append(series, s)
	}
	return series
}

func fitLine(x, y []float64) Line {
	if len(x) < 2 {
		return Line{}
	}
	lo, hi := x[0], x[0]
	for _, v := range x[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo == hi {
		return Line{XMin: lo, XMax: hi}
	}

	alpha, beta := stat.LinearRegression(x, y, nil, false)
	if math.IsNaN(alpha) || math.IsNaN(beta) {
		return Line{XMin: lo, XMax: hi}
	}
	return Line{Intercept: alpha, Slope: beta, XMin: lo, XMax: hi, Valid: true}
}
