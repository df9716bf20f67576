package http

import (
	"context"
	"io"
	"net/http"

	"github.com/shopspring/decimal"

	"optimedu/internal/forecast"
	"optimedu/internal/panel"
	"optimedu/internal/recommend"
	"optimedu/internal/regression"
	"optimedu/internal/services"
	"optimedu/internal/simulation"
)

// PanelServiceInterface defines the panel upload and browse operations
type PanelServiceInterface interface {
	Load(ctx context.Context, name string, r io.Reader) (*services.PanelSummary, error)
	Summary(ctx context.Context) (*services.PanelSummary, error)
	Entities(ctx context.Context) ([]string, error)
	Years(ctx context.Context, entity string) ([]int, error)
	Record(ctx context.Context, entity string, year int) (*services.RecordView, error)
}

// BudgetServiceInterface defines the forecast and funding plan operations
type BudgetServiceInterface interface {
	Forecast(ctx context.Context, in services.SeriesInput) (forecast.Result, error)
	Plan(ctx context.Context, in services.PlanInput) (*services.PlanResult, error)
	Simulate(ctx context.Context, principal decimal.Decimal, expectedReturn, expectedVolatility float64, overrides services.SimulationOverrides) (*simulation.Bands, error)
}

// ImpactServiceInterface defines the regression what-if operations
type ImpactServiceInterface interface {
	Overview(ctx context.Context, withPlots bool) (*services.ImpactOverview, error)
	Predict(ctx context.Context, inputs map[panel.Column]float64) ([]services.PredictionView, error)
	PlotData(ctx context.Context, outcome panel.Column) ([]regression.PlotSeries, error)
}

// RecommendationServiceInterface defines the advisor operations
type RecommendationServiceInterface interface {
	Recommend(ctx context.Context, metric recommend.Metric, direction recommend.Direction) (recommend.Exchange, error)
	Ask(ctx context.Context, question string) (recommend.Exchange, error)
	Latest(ctx context.Context) services.Conversation
}

// RequestDecoder decodes and validates a JSON request body
type RequestDecoder interface {
	Decode(r *http.Request, v interface{}) error
}
