package simulation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat/distuv"
)

const (
	DefaultPaths  = 1000
	DefaultMonths = 12
	DefaultSeed   = 42
)

var (
	ErrInvalidMonths = errors.New("months must be at least 1")
	ErrInvalidPaths  = errors.New("paths must be at least 1")
	ErrInvalidInput  = errors.New("simulation inputs must be finite")
)

// Params configures a simulation run.
type Params struct {
	Principal          float64
	ExpectedReturn     float64
	ExpectedVolatility float64
	Months             int
	Paths              int
	Seed               uint64

	// Workers bounds the number of paths simulated concurrently. Zero uses
	// GOMAXPROCS. The result does not depend on it.
	Workers int
}

// DefaultParams returns the standard 1000 path, 12 month run seeded with 42.
func DefaultParams(principal, expectedReturn, expectedVolatility float64) Params {
	return Params{
		Principal:          principal,
		ExpectedReturn:     expectedReturn,
		ExpectedVolatility: expectedVolatility,
		Months:             DefaultMonths,
		Paths:              DefaultPaths,
		Seed:               DefaultSeed,
	}
}

func (p Params) validate() error {
	if p.Months < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidMonths, p.Months)
	}
	if p.Paths < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidPaths, p.Paths)
	}
	for _, v := range []float64{p.Principal, p.ExpectedReturn, p.ExpectedVolatility} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return ErrInvalidInput
		}
	}
	return nil
}

// Run simulates p.Paths independent paths and summarizes them as
// percentile bands.
func Run(ctx context.Context, p Params) (*Bands, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	workers := p.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	steps := p.Months + 1
	values := make([]float64, p.Paths*steps)

	mu := p.ExpectedReturn / 12
	sigma := math.Abs(p.ExpectedVolatility) / math.Sqrt(12)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := 0; i < p.Paths; i++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			simulatePath(values[i*steps:(i+1)*steps], p.Principal, distuv.Normal{
				Mu:    mu,
				Sigma: sigma,
				Src:   rand.NewPCG(p.Seed, uint64(i)),
			})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("simulation cancelled: %w", err)
	}

	return summarize(values, p), nil
}

// simulatePath fills path with the compounded values of one path.
func simulatePath(path []float64, principal float64, shock distuv.Normal) {
	path[0] = principal
	for t := 1; t < len(path); t++ {
		path[t] = path[t-1] * (1 + shock.Rand())
	}
}

func summarize(values []float64, p Params) *Bands {
	steps := p.Months + 1
	b := &Bands{
		Months: p.Months,
		Paths:  p.Paths,
		Seed:   p.Seed,
		Median: make([]float64, steps),
		P5:     make([]float64, steps),
		P95:    make([]float64, steps),
	}

	column := make([]float64, p.Paths)
	for t := 0; t < steps; t++ {
		for i := 0; i < p.Paths; i++ {
			column[i] = values[i*steps+t]
		}
		sort.Float64s(column)

		b.Median[t] = Percentile(column, 0.50)
		b.P5[t] = Percentile(column, 0.05)
		b.P95[t] = Percentile(column, 0.95)
	}
	return b
}

// Percentile returns the p-th quantile (0 ≤ p ≤ 1) of sorted values using
// linear interpolation between closest ranks, index = p × (n−1).
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	index := p * float64(n-1)
	lower := int(math.Floor(index))
	upper := int(math.Ceil(index))
	if lower == upper {
		return sorted[lower]
	}

	// Interpolate from the lower rank so equal neighbours return exactly
	weight := index - float64(lower)
	return sorted[lower] + (sorted[upper]-sorted[lower])*weight
}
