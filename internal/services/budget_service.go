package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"optimedu/internal/config"
	apperrors "optimedu/internal/errors"
	"optimedu/internal/forecast"
	"optimedu/internal/infrastructure"
	"optimedu/internal/planner"
	"optimedu/internal/simulation"
)

// SeriesInput names the enrollment series to forecast: either explicit
// points or an entity whose series is taken from the current panel.
type SeriesInput struct {
	Series []forecast.Point
	Entity string
}

// SimulationOverrides replaces configured simulation defaults for one
// request. Zero values keep the default.
type SimulationOverrides struct {
	Months int
	Paths  int
	Seed   *uint64
}

// PlanInput drives the forecast, plan and simulation pipeline.
type PlanInput struct {
	SeriesInput
	GoalPerStudent decimal.Decimal
	CurrentBudget  decimal.Decimal
	Allocation     planner.Allocation
	Simulation     SimulationOverrides
}

// PlanResult is the outcome of the pipeline. Bands and Verdict are empty
// when the current budget already covers the requirement.
type PlanResult struct {
	Entity      string             `json:"entity,omitempty"`
	Forecast    forecast.Result    `json:"forecast"`
	Plan        planner.Plan       `json:"plan"`
	Bands       *simulation.Bands  `json:"bands,omitempty"`
	FinalMedian float64            `json:"final_median,omitempty"`
	Verdict     simulation.Verdict `json:"verdict,omitempty"`
	Message     string             `json:"message"`
}

// BudgetService runs the enrollment forecast, gap planner and growth
// simulator.
type BudgetService struct {
	ws       *Workspace
	defaults config.AnalysisConfig
	metrics  *infrastructure.BusinessMetrics
	logger   *slog.Logger
}

// NewBudgetService creates a budget service. ws may be nil when only
// explicit series are forecast, as in the CLI.
func NewBudgetService(ws *Workspace, defaults config.AnalysisConfig, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *BudgetService {
	if logger == nil {
		logger = slog.Default()
	}
	return &BudgetService{
		ws:       ws,
		defaults: defaults,
		metrics:  metrics,
		logger:   logger.With(slog.String("service", "budget")),
	}
}

// Forecast predicts next period's enrollment.
func (s *BudgetService) Forecast(ctx context.Context, in SeriesInput) (forecast.Result, error) {
	series, err := s.series(in)
	if err != nil {
		return forecast.Result{}, err
	}

	start := time.Now()
	result, err := forecast.Forecast(series)
	infrastructure.RecordOperation(ctx, s.metrics, "forecast", time.Since(start), err)
	if err != nil {
		return forecast.Result{}, fmt.Errorf("forecast enrollment: %w", err)
	}

	s.logger.InfoContext(ctx, "enrollment forecast",
		slog.String("entity", in.Entity),
		slog.Int("periods", len(series)),
		slog.Int("next", result.Next),
		slog.Float64("alpha", result.Alpha),
		slog.Float64("beta", result.Beta))
	return result, nil
}

// Plan forecasts enrollment, sizes the funding gap and, when investment is
// needed, simulates the required investment over the horizon.
func (s *BudgetService) Plan(ctx context.Context, in PlanInput) (*PlanResult, error) {
	fc, err := s.Forecast(ctx, in.SeriesInput)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	plan, err := planner.Compute(planner.Input{
		Forecast:       fc.Next,
		GoalPerStudent: in.GoalPerStudent,
		CurrentBudget:  in.CurrentBudget,
		Allocation:     in.Allocation,
	})
	infrastructure.RecordOperation(ctx, s.metrics, "plan", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("plan budget: %w", err)
	}

	if plan.Warning != nil {
		s.logger.WarnContext(ctx, "allocation does not sum to 100",
			slog.Float64("sum", plan.Warning.Sum))
	}

	result := &PlanResult{Entity: in.Entity, Forecast: fc, Plan: plan}
	if !plan.NeedsInvestment {
		result.Message = "No deficit: the current budget meets the goal"
		return result, nil
	}

	bands, err := s.Simulate(ctx, plan.RequiredInvestment, plan.ExpectedReturn, plan.ExpectedVolatility, in.Simulation)
	if err != nil {
		return nil, err
	}

	result.Bands = bands
	result.FinalMedian = bands.FinalMedian()
	result.Verdict = bands.Assess(plan.Deficit.InexactFloat64())
	result.Message = result.Verdict.Message()
	return result, nil
}

// Simulate runs the growth simulator for principal with the configured
// defaults, adjusted by overrides.
func (s *BudgetService) Simulate(ctx context.Context, principal decimal.Decimal, expectedReturn, expectedVolatility float64, overrides SimulationOverrides) (*simulation.Bands, error) {
	params := simulation.Params{
		Principal:          principal.InexactFloat64(),
		ExpectedReturn:     expectedReturn,
		ExpectedVolatility: expectedVolatility,
		Months:             s.defaults.Months,
		Paths:              s.defaults.Paths,
		Seed:               s.defaults.Seed,
		Workers:            s.defaults.Workers,
	}
	if overrides.Months > 0 {
		params.Months = overrides.Months
	}
	if overrides.Paths > 0 {
		params.Paths = overrides.Paths
	}
	if overrides.Seed != nil {
		params.Seed = *overrides.Seed
	}

	start := time.Now()
	bands, err := simulation.Run(ctx, params)
	infrastructure.RecordOperation(ctx, s.metrics, "simulate", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("simulate growth: %w", err)
	}
	if s.metrics != nil {
		s.metrics.SimulationPaths.Add(ctx, int64(params.Paths))
	}

	s.logger.InfoContext(ctx, "growth simulated",
		slog.Int("paths", params.Paths),
		slog.Int("months", params.Months),
		slog.Uint64("seed", params.Seed),
		slog.Float64("final_median", bands.FinalMedian()),
		slog.Duration("duration", time.Since(start)))
	return bands, nil
}

func (s *BudgetService) series(in SeriesInput) ([]forecast.Point, error) {
	if len(in.Series) > 0 {
		return in.Series, nil
	}
	if in.Entity == "" {
		return nil, apperrors.NewAppValidationError("either series or entity must be given", ErrNoSeries)
	}
	if s.ws == nil {
		return nil, apperrors.NewConflictError("upload a panel first", ErrNoPanel)
	}

	ds, err := s.ws.Dataset()
	if err != nil {
		return nil, err
	}
	if len(ds.Panel.Years(in.Entity)) == 0 {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("entity %q", in.Entity), ErrEntityNotFound).
			WithContext("entity", in.Entity)
	}

	points := ds.Panel.EnrollmentSeries(in.Entity)
	if len(points) == 0 {
		return nil, apperrors.NewAppError(apperrors.ErrTypeComputation,
			fmt.Sprintf("entity %q has no enrollment values", in.Entity), ErrNoEnrollment).
			WithContext("entity", in.Entity)
	}

	series := make([]forecast.Point, len(points))
	for i, pt := range points {
		series[i] = forecast.Point{Year: pt.Year, Count: pt.Count}
	}
	return series, nil
}
