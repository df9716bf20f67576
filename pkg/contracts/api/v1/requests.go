// Package api contains the wire contracts of the OptimEdu HTTP API.
// Version v1 represents the current stable API version.
package api

import (
	"github.com/shopspring/decimal"
)

// Forecast API Requests

// SeriesPoint is one enrollment observation.
type SeriesPoint struct {
	Year  int     `json:"year" validate:"required,gte=1000,lte=9999"`
	Count float64 `json:"count" validate:"gte=0"`
}

// ForecastRequest forecasts an explicit series or, when only Entity is
// given, the entity's enrollment series from the uploaded panel.
type ForecastRequest struct {
	Entity string        `json:"entity,omitempty" validate:"required_without=Series,omitempty,max=200"`
	Series []SeriesPoint `json:"series,omitempty" validate:"required_without=Entity,omitempty,dive"`
}

// Plan API Requests

// AllocationEntry is the weight, in percent, given to one asset class.
type AllocationEntry struct {
	Asset  string  `json:"asset" validate:"required,asset"`
	Weight float64 `json:"weight"`
}

// PlanRequest runs the forecast, gap planner and growth simulation. An
// empty Allocation selects the default portfolio. Months, Paths and Seed
// override the configured simulation defaults.
type PlanRequest struct {
	Entity         string            `json:"entity,omitempty" validate:"required_without=Series,omitempty,max=200"`
	Series         []SeriesPoint     `json:"series,omitempty" validate:"required_without=Entity,omitempty,dive"`
	GoalPerStudent decimal.Decimal   `json:"goal_per_student" validate:"gte=0"`
	CurrentBudget  decimal.Decimal   `json:"current_budget" validate:"gte=0"`
	Allocation     []AllocationEntry `json:"allocation,omitempty" validate:"omitempty,unique=Asset,dive"`
	Months         int               `json:"months,omitempty" validate:"omitempty,min=1,max=600"`
	Paths          int               `json:"paths,omitempty" validate:"omitempty,min=1,max=100000"`
	Seed           *uint64           `json:"seed,omitempty"`
}

// Impact API Requests

// PredictRequest maps raw predictor values, keyed by column name, to
// outcome predictions. Missing predictors default to their mean.
type PredictRequest struct {
	Inputs map[string]float64 `json:"inputs" validate:"dive,keys,column,endkeys"`
}

// Recommendation API Requests

// RecommendRequest asks for recommendations on changing a metric.
type RecommendRequest struct {
	Metric    string `json:"metric" validate:"required,metric"`
	Direction string `json:"direction" validate:"required,direction"`
}

// AskRequest is a follow-up question about the latest recommendation.
type AskRequest struct {
	Question string `json:"question" validate:"required,max=2000"`
}
