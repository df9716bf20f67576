package services

import (
	"context"
	"log/slog"
	"time"

	"optimedu/internal/infrastructure"
	"optimedu/internal/panel"
	"optimedu/internal/regression"
)

// OutcomeView is everything shown for one fitted outcome.
type OutcomeView struct {
	Outcome  panel.Column            `json:"outcome"`
	Label    string                  `json:"label"`
	Model    *regression.Model       `json:"model"`
	Impacts  []regression.Impact     `json:"impacts"`
	PlotData []regression.PlotSeries `json:"plot_data,omitempty"`
}

// ImpactOverview is the state of the what-if predictor for the current
// panel.
type ImpactOverview struct {
	Predictors []panel.Column                    `json:"predictors"`
	Ranges     map[panel.Column]regression.Range `json:"ranges"`
	Outcomes   []OutcomeView                     `json:"outcomes"`
	Skipped    []panel.Column                    `json:"skipped,omitempty"`
	Failures   map[panel.Column]string           `json:"failures,omitempty"`
}

// PredictionView is one outcome prediction. Error is set instead of Value
// when the outcome could not be predicted.
type PredictionView struct {
	Outcome panel.Column `json:"outcome"`
	Label   string       `json:"label"`
	Value   *float64     `json:"value,omitempty"`
	Error   string       `json:"error,omitempty"`
}

// ImpactService exposes the regression analysis fitted on the current
// panel.
type ImpactService struct {
	ws      *Workspace
	metrics *infrastructure.BusinessMetrics
	logger  *slog.Logger
}

// NewImpactService creates an impact service.
func NewImpactService(ws *Workspace, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *ImpactService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ImpactService{
		ws:      ws,
		metrics: metrics,
		logger:  logger.With(slog.String("service", "impact")),
	}
}

// Overview returns the fitted models with their narrated impacts and,
// when withPlots is set, the scatter data for every predictor.
func (s *ImpactService) Overview(ctx context.Context, withPlots bool) (*ImpactOverview, error) {
	ds, err := s.ws.Dataset()
	if err != nil {
		return nil, err
	}
	return overview(ds.Analysis, withPlots), nil
}

// Predict maps raw predictor values to every outcome. Predictors missing
// from inputs are taken at their mean.
func (s *ImpactService) Predict(ctx context.Context, inputs map[panel.Column]float64) ([]PredictionView, error) {
	ds, err := s.ws.Dataset()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	predictions := ds.Analysis.Predict(inputs)
	infrastructure.RecordOperation(ctx, s.metrics, "predict", time.Since(start), nil)

	out := make([]PredictionView, len(predictions))
	failed := 0
	for i, p := range predictions {
		out[i] = PredictionView{Outcome: p.Outcome, Label: p.Label}
		if p.OK() {
			v := p.Value
			out[i].Value = &v
		} else {
			out[i].Error = p.Err.Error()
			failed++
		}
	}

	s.logger.DebugContext(ctx, "what-if prediction",
		slog.Int("inputs", len(inputs)),
		slog.Int("outcomes", len(out)),
		slog.Int("failed", failed))
	return out, nil
}

// PlotData returns the scatter series of one outcome.
func (s *ImpactService) PlotData(ctx context.Context, outcome panel.Column) ([]regression.PlotSeries, error) {
	ds, err := s.ws.Dataset()
	if err != nil {
		return nil, err
	}
	if _, ok := ds.Analysis.Models[outcome]; !ok {
		if perr, failed := ds.Analysis.Failures[outcome]; failed {
			return nil, perr
		}
		return nil, &regression.PredictionError{Outcome: outcome, Err: regression.ErrUnknownOutcome}
	}
	return ds.Analysis.PlotData(outcome), nil
}

func overview(a *regression.Analysis, withPlots bool) *ImpactOverview {
	ov := &ImpactOverview{
		Predictors: a.Predictors,
		Ranges:     a.Ranges(),
		Outcomes:   make([]OutcomeView, 0, len(a.Models)),
		Skipped:    a.Skipped,
	}
	for _, outcome := range a.Outcomes {
		model, ok := a.Models[outcome]
		if !ok {
			continue
		}
		view := OutcomeView{
			Outcome: outcome,
			Label:   outcome.Label(),
			Model:   model,
			Impacts: a.Impacts(outcome),
		}
		if withPlots {
			view.PlotData = a.PlotData(outcome)
		}
		ov.Outcomes = append(ov.Outcomes, view)
	}
	if len(a.Failures) > 0 {
		ov.Failures = make(map[panel.Column]string, len(a.Failures))
		for outcome, perr := range a.Failures {
			ov.Failures[outcome] = perr.Err.Error()
		}
	}
	return ov
}
