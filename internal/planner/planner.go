package planner

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

var (
	// ErrUnknownAsset is returned when an asset class name is not in the table.
	ErrUnknownAsset = errors.New("unknown asset class")

	// ErrDegenerateReturn is returned when the blended return is -100%,
	// which leaves single-period discounting undefined.
	ErrDegenerateReturn = errors.New("expected return of -100% cannot discount the deficit")
)

// DefaultWeight is the starting weight of a newly selected asset.
const DefaultWeight = 20.0

// Allocation is a selection of asset classes with percentage weights.
// Only selected assets take part in the blend; a weight recorded for an
// unselected asset is ignored. Weights are not range checked.
type Allocation struct {
	Selected []Asset           `json:"selected"`
	Weights  map[Asset]float64 `json:"weights"`
}

// DefaultAllocation mirrors the initial dashboard state: stocks and ETFs
// selected at the default weight each.
func DefaultAllocation() Allocation {
	return Allocation{
		Selected: []Asset{Stocks, ETFs},
		Weights: map[Asset]float64{
			Stocks: DefaultWeight,
			ETFs:   DefaultWeight,
		},
	}
}

// selected returns the distinct selected assets in selection order.
func (a Allocation) selected() []Asset {
	seen := make(map[Asset]bool, len(a.Selected))
	out := make([]Asset, 0, len(a.Selected))
	for _, asset := range a.Selected {
		if !seen[asset] {
			seen[asset] = true
			out = append(out, asset)
		}
	}
	return out
}

// Sum returns the total weight of the selected assets.
func (a Allocation) Sum() float64 {
	total := 0.0
	for _, asset := range a.selected() {
		total += a.Weights[asset]
	}
	return total
}

// Blend returns the weighted expected return and volatility.
func (a Allocation) Blend() (expectedReturn, expectedVolatility float64) {
	for _, asset := range a.selected() {
		w := a.Weights[asset] / 100
		p := asset.Profile()
		expectedReturn += w * p.Return
		expectedVolatility += w * p.Volatility
	}
	return expectedReturn, expectedVolatility
}

// AllocationWarning reports selected weights that do not add up to 100.
// It never stops a plan.
type AllocationWarning struct {
	Sum float64 `json:"sum"`
}

func (w AllocationWarning) Error() string {
	return fmt.Sprintf("allocation weights sum to %g%%, not 100%%", w.Sum)
}

// sumTolerance absorbs float noise from fractional weights.
const sumTolerance = 1e-9

// Check returns a warning when the selected weights do not sum to 100.
func (a Allocation) Check() *AllocationWarning {
	sum := a.Sum()
	if math.Abs(sum-100) > sumTolerance {
		return &AllocationWarning{Sum: sum}
	}
	return nil
}

// Input is everything needed to size the funding gap.
type Input struct {
	Forecast       int
	GoalPerStudent decimal.Decimal
	CurrentBudget  decimal.Decimal
	Allocation     Allocation
}

// Plan is the funding gap and the investment needed to close it.
type Plan struct {
	// Students is the headcount planned for: the forecast, floored at zero
	// when a declining series extrapolates below it.
	Students int `json:"students"`

	RequiredBudget decimal.Decimal `json:"required_budget"`
	Deficit        decimal.Decimal `json:"deficit"`

	// NeedsInvestment is false when the current budget already covers the
	// requirement. The simulator is skipped in that case.
	NeedsInvestment bool `json:"needs_investment"`

	ExpectedReturn     float64         `json:"expected_return"`
	ExpectedVolatility float64         `json:"expected_volatility"`
	RequiredInvestment decimal.Decimal `json:"required_investment"`

	Warning *AllocationWarning `json:"warning,omitempty"`
}

// Compute sizes the funding gap for in.
//
// required budget = forecast × goal per student
// deficit = required budget − current budget
// required investment = deficit / (1 + expected return)
func Compute(in Input) (Plan, error) {
	students := max(in.Forecast, 0)

	required := decimal.NewFromInt(int64(students)).Mul(in.GoalPerStudent)
	deficit := required.Sub(in.CurrentBudget)

	ret, vol := in.Allocation.Blend()
	plan := Plan{
		Students:           students,
		RequiredBudget:     required,
		Deficit:            deficit,
		NeedsInvestment:    deficit.IsPositive(),
		ExpectedReturn:     ret,
		ExpectedVolatility: vol,
		RequiredInvestment: decimal.Zero,
		Warning:            in.Allocation.Check(),
	}
	if !plan.NeedsInvestment {
		return plan, nil
	}

	growth := decimal.NewFromInt(1).Add(decimal.NewFromFloat(ret))
	if growth.IsZero() {
		return Plan{}, ErrDegenerateReturn
	}
	plan.RequiredInvestment = deficit.Div(growth)

	return plan, nil
}
