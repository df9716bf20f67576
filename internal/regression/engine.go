package regression

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/mat"

	"optimedu/internal/panel"
)

// Predictors is the fixed spending input set.
var Predictors = []panel.Column{
	panel.SpendingPerStudent,
	panel.StudentTeacherRatio,
	panel.PerPupilInstructionalSpending,
}

// Outcomes is the fixed outcome set, one model each.
var Outcomes = []panel.Column{
	panel.MathScore,
	panel.ReadingScore,
	panel.GraduationRate,
	panel.HigherEducationPursuitRate,
}

// rankTolerance is the singular value cutoff relative to the largest.
const rankTolerance = 1e-10

// Model is an OLS fit of one standardized outcome on the standardized
// predictors.
type Model struct {
	Outcome      panel.Column   `json:"outcome"`
	Predictors   []panel.Column `json:"predictors"`
	Intercept    float64        `json:"intercept"`
	Coefficients []float64      `json:"coefficients"`
	Observations int            `json:"observations"`
	RSquared     float64        `json:"r_squared"`

	// standardized rows used for the fit, kept for plotting
	x [][]float64
	y []float64
}

// predict applies the model to standardized predictor values.
func (m *Model) predict(z []float64) float64 {
	out := m.Intercept
	for i, beta := range m.Coefficients {
		out += beta * z[i]
	}
	return out
}

// Analysis is the set of models fitted over one panel.
type Analysis struct {
	// Predictors actually used, in canonical order.
	Predictors []panel.Column

	// Outcomes a model was attempted for.
	Outcomes []panel.Column

	// Skipped outcomes had no values in the panel.
	Skipped []panel.Column

	Scalers  map[panel.Column]Scaler
	Models   map[panel.Column]*Model
	Failures map[panel.Column]*PredictionError
}

// Fit standardizes the panel and fits one model per present outcome.
// Failures are recorded per outcome and never abort the other fits.
func Fit(ctx context.Context, p *panel.Panel) *Analysis {
	logger := slog.Default()

	a := &Analysis{
		Scalers:  make(map[panel.Column]Scaler),
		Models:   make(map[panel.Column]*Model),
		Failures: make(map[panel.Column]*PredictionError),
	}

	// Scale every numeric column once, before any model is fit
	for _, col := range append(append([]panel.Column{}, Predictors...), Outcomes...) {
		if p.Available(col) {
			a.Scalers[col] = FitScaler(p.ColumnValues(col))
		}
	}

	for _, col := range Predictors {
		if _, ok := a.Scalers[col]; ok {
			a.Predictors = append(a.Predictors, col)
		}
	}

	for _, outcome := range Outcomes {
		if _, ok := a.Scalers[outcome]; !ok {
			a.Skipped = append(a.Skipped, outcome)
			continue
		}
		a.Outcomes = append(a.Outcomes, outcome)

		model, err := a.fitOutcome(p, outcome)
		if err != nil {
			perr := &PredictionError{Outcome: outcome, Err: err}
			a.Failures[outcome] = perr
			logger.WarnContext(ctx, "regression fit failed",
				"outcome", outcome.String(),
				"error", err,
			)
			continue
		}
		a.Models[outcome] = model
	}

	logger.InfoContext(ctx, "regression analysis fitted",
		"predictors", len(a.Predictors),
		"models", len(a.Models),
		"failures", len(a.Failures),
		"skipped", len(a.Skipped),
	)

	return a
}

// fitOutcome builds the standardized design for outcome from the rows
// where the outcome and every predictor are present, then solves it.
func (a *Analysis) fitOutcome(p *panel.Panel, outcome panel.Column) (*Model, error) {
	ys := a.Scalers[outcome]

	var (
		rows   [][]float64
		target []float64
	)
	for _, rec := range p.Records {
		yv, ok := rec.Get(outcome)
		if !ok {
			continue
		}
		row := make([]float64, len(a.Predictors))
		complete := true
		for j, col := range a.Predictors {
			xv, ok := rec.Get(col)
			if !ok {
				complete = false
				break
			}
			row[j] = a.Scalers[col].Transform(xv)
		}
		if !complete {
			continue
		}
		rows = append(rows, row)
		target = append(target, ys.Transform(yv))
	}

	coef, r2, err := solveOLS(rows, target)
	if err != nil {
		return nil, err
	}

	return &Model{
		Outcome:      outcome,
		Predictors:   append([]panel.Column(nil), a.Predictors...),
		Intercept:    coef[0],
		Coefficients: coef[1:],
		Observations: len(rows),
		RSquared:     r2,
		x:            rows,
		y:            target,
	}, nil
}

// solveOLS fits y = b0 + X·b by least squares through a thin SVD and
// returns the coefficients with the intercept first.
func solveOLS(rows [][]float64, y []float64) ([]float64, float64, error) {
	n := len(rows)
	k := 1
	if n > 0 {
		k += len(rows[0])
	}
	if n < k {
		return nil, 0, fmt.Errorf("%w: %d rows for %d coefficients", ErrTooFewObservations, n, k)
	}

	design := mat.NewDense(n, k, nil)
	for i, row := range rows {
		design.Set(i, 0, 1)
		for j, v := range row {
			design.Set(i, j+1, v)
		}
	}
	target := mat.NewVecDense(n, append([]float64(nil), y...))

	var svd mat.SVD
	if ok := svd.Factorize(design, mat.SVDThin); !ok {
		return nil, 0, fmt.Errorf("%w: SVD did not converge", ErrNumerical)
	}
	if rank := svd.Rank(rankTolerance); rank < k {
		return nil, 0, fmt.Errorf("%w: rank %d of %d", ErrRankDeficient, rank, k)
	}

	var beta mat.VecDense
	svd.SolveVecTo(&beta, target, k)

	coef := make([]float64, k)
	for i := range coef {
		coef[i] = beta.AtVec(i)
		if math.IsNaN(coef[i]) || math.IsInf(coef[i], 0) {
			return nil, 0, fmt.Errorf("%w: non-finite coefficient", ErrNumerical)
		}
	}

	return coef, rSquared(design, coef, y), nil
}

// rSquared is the share of variance explained. A constant target has no
// variance to explain and reports zero.
func rSquared(design *mat.Dense, coef, y []float64) float64 {
	mean := 0.0
	for _, v := range y {
		mean += v
	}
	mean /= float64(len(y))

	var ssRes, ssTot float64
	n, k := design.Dims()
	for i := 0; i < n; i++ {
		fitted := 0.0
		for j := 0; j < k; j++ {
			fitted += design.At(i, j) * coef[j]
		}
		ssRes += (y[i] - fitted) * (y[i] - fitted)
		ssTot += (y[i] - mean) * (y[i] - mean)
	}
	if ssTot == 0 {
		return 0
	}
	return 1 - ssRes/ssTot
}
