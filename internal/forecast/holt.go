package forecast

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"
)

var (
	// ErrInsufficientData is returned when fewer than two distinct periods
	// are supplied. A trend cannot be estimated from a single point.
	ErrInsufficientData = errors.New("insufficient data: at least 2 periods are required for a trend forecast")

	// ErrDuplicatePeriod is returned when a year appears more than once.
	ErrDuplicatePeriod = errors.New("duplicate period in enrollment series")

	// ErrInvalidValue is returned for non-finite observations.
	ErrInvalidValue = errors.New("enrollment series contains a non-finite value")
)

// Point is one observation of an enrollment series.
type Point struct {
	Year  int     `json:"year" validate:"required"`
	Count float64 `json:"count" validate:"gte=0"`
}

// Result is a one-step-ahead forecast together with the fitted state.
type Result struct {
	// Next is the forecast headcount for the period after the last
	// observation, truncated toward zero.
	Next int `json:"next"`

	NextYear int     `json:"next_year"`
	Raw      float64 `json:"raw"`
	Alpha    float64 `json:"alpha"`
	Beta     float64 `json:"beta"`
	Level    float64 `json:"level"`
	Trend    float64 `json:"trend"`
	SSE      float64 `json:"sse"`
}

// holtParams is the state searched by the optimizer, expressed on the
// scaled series.
type holtParams struct {
	alpha, beta float64
	level0      float64
	trend0      float64
}

// Next is a convenience wrapper returning only the forecast headcount.
func Next(series []Point) (int, error) {
	res, err := Forecast(series)
	if err != nil {
		return 0, err
	}
	return res.Next, nil
}

// Forecast fits an additive-trend exponential smoothing model to series
// and forecasts one period past the last observed year.
func Forecast(series []Point) (Result, error) {
	points, err := prepare(series)
	if err != nil {
		return Result{}, err
	}

	// Fit on a unit-scale copy so the simplex steps are comparable across
	// the smoothing weights and the initial level.
	scale := 0.0
	for _, p := range points {
		scale += math.Abs(p.Count)
	}
	scale /= float64(len(points))
	if scale == 0 {
		scale = 1
	}
	y := make([]float64, len(points))
	for i, p := range points {
		y[i] = p.Count / scale
	}

	params := fit(y)
	level, trend, sse := run(y, params)
	raw := (level + trend) * scale

	return Result{
		Next:     truncate(raw),
		NextYear: points[len(points)-1].Year + 1,
		Raw:      raw,
		Alpha:    params.alpha,
		Beta:     params.beta,
		Level:    level * scale,
		Trend:    trend * scale,
		SSE:      sse * scale * scale,
	}, nil
}

// prepare validates the series and returns a copy sorted by year.
func prepare(series []Point) ([]Point, error) {
	distinct := make(map[int]struct{}, len(series))
	for _, p := range series {
		if math.IsNaN(p.Count) || math.IsInf(p.Count, 0) {
			return nil, fmt.Errorf("%w: year %d", ErrInvalidValue, p.Year)
		}
		distinct[p.Year] = struct{}{}
	}
	if len(distinct) < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrInsufficientData, len(distinct))
	}
	if len(distinct) != len(series) {
		return nil, ErrDuplicatePeriod
	}

	points := make([]Point, len(series))
	copy(points, series)
	sort.Slice(points, func(i, j int) bool { return points[i].Year < points[j].Year })
	return points, nil
}

// run applies the Holt recursions and returns the final level, trend and
// the sum of squared one-step errors.
func run(y []float64, p holtParams) (level, trend, sse float64) {
	level, trend = p.level0, p.trend0
	for _, obs := range y {
		predicted := level + trend
		e := obs - predicted
		sse += e * e

		prevLevel := level
		level = p.alpha*obs + (1-p.alpha)*predicted
		trend = p.beta*(level-prevLevel) + (1-p.beta)*trend
	}
	return level, trend, sse
}

var (
	alphaGrid = []float64{0.1, 0.3, 0.5, 0.7, 0.9, 0.99}
	betaGrid  = []float64{0.01, 0.1, 0.3, 0.5, 0.9}
)

// exactFit is the SSE below which the heuristic start is kept as is.
const exactFit = 1e-20

func fit(y []float64) holtParams {
	// Heuristic initial state: the first step defines the trend and the
	// level sits one step before the first observation.
	trend0 := y[1] - y[0]
	start := holtParams{alpha: 0.5, beta: 0.1, level0: y[0] - trend0, trend0: trend0}

	best := start
	_, _, bestSSE := run(y, start)
	for _, a := range alphaGrid {
		for _, b := range betaGrid {
			candidate := holtParams{alpha: a, beta: b, level0: start.level0, trend0: start.trend0}
			if _, _, sse := run(y, candidate); sse < bestSSE {
				best, bestSSE = candidate, sse
			}
		}
	}
	if bestSSE <= exactFit*float64(len(y)) {
		return best
	}

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			_, _, sse := run(y, decode(x))
			return sse
		},
	}
	settings := &optimize.Settings{
		MajorIterations: 2000,
		FuncEvaluations: 20000,
		Converger: &optimize.FunctionConverge{
			Absolute:   1e-14,
			Relative:   1e-12,
			Iterations: 200,
		},
	}

	result, err := optimize.Minimize(problem, encode(best), settings, &optimize.NelderMead{})
	if err == nil && result.F < bestSSE {
		best = decode(result.X)
	}
	return solveInitialState(y, best)
}

// solveInitialState replaces the initial level and trend of p with their
// least-squares values for p's smoothing weights. The one-step predictions
// are affine in (level0, trend0), so the SSE is quadratic in them and the
// simplex only has to get the weights right.
func solveInitialState(y []float64, p holtParams) holtParams {
	n := len(y)
	zeros := make([]float64, n)

	offset := predictions(y, holtParams{alpha: p.alpha, beta: p.beta})
	levelResp := predictions(zeros, holtParams{alpha: p.alpha, beta: p.beta, level0: 1})
	trendResp := predictions(zeros, holtParams{alpha: p.alpha, beta: p.beta, trend0: 1})

	a := mat.NewDense(n, 2, nil)
	b := mat.NewVecDense(n, nil)
	for i := range y {
		a.Set(i, 0, levelResp[i])
		a.Set(i, 1, trendResp[i])
		b.SetVec(i, y[i]-offset[i])
	}

	var x mat.VecDense
	if err := x.SolveVec(a, b); err != nil {
		return p
	}

	solved := p
	solved.level0, solved.trend0 = x.AtVec(0), x.AtVec(1)
	if math.IsNaN(solved.level0) || math.IsNaN(solved.trend0) {
		return p
	}
	_, _, before := run(y, p)
	if _, _, after := run(y, solved); after > before {
		return p
	}
	return solved
}

// predictions returns the one-step-ahead prediction made before each
// observation.
func predictions(y []float64, p holtParams) []float64 {
	out := make([]float64, len(y))
	level, trend := p.level0, p.trend0
	for i, obs := range y {
		predicted := level + trend
		out[i] = predicted

		prevLevel := level
		level = p.alpha*obs + (1-p.alpha)*predicted
		trend = p.beta*(level-prevLevel) + (1-p.beta)*trend
	}
	return out
}

// encode maps parameters to the unconstrained search space.
func encode(p holtParams) []float64 {
	return []float64{logit(p.alpha), logit(p.beta), p.level0, p.trend0}
}

func decode(x []float64) holtParams {
	return holtParams{
		alpha:  sigmoid(x[0]),
		beta:   sigmoid(x[1]),
		level0: x[2],
		trend0: x[3],
	}
}

func sigmoid(v float64) float64 {
	return 1 / (1 + math.Exp(-v))
}

func logit(p float64) float64 {
	const eps = 1e-9
	p = math.Min(math.Max(p, eps), 1-eps)
	return math.Log(p / (1 - p))
}

// truncate converts a forecast to a headcount. Values within a micro-unit
// of an integer are snapped first so that floating noise does not knock an
// exact forecast down by one.
func truncate(v float64) int {
	snapped := math.Round(v*1e6) / 1e6
	return int(math.Trunc(snapped))
}
