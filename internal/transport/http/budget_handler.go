package http

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "optimedu/internal/errors"
	"optimedu/internal/exporter"
	"optimedu/internal/forecast"
	"optimedu/internal/middleware"
	"optimedu/internal/planner"
	"optimedu/internal/services"
	api "optimedu/pkg/contracts/api/v1"
)

// BudgetHandler handles forecast and funding plan requests
type BudgetHandler struct {
	service      BudgetServiceInterface
	decoder      RequestDecoder
	query        *middleware.QueryParamValidator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewBudgetHandler creates a new budget handler
func NewBudgetHandler(service BudgetServiceInterface, decoder RequestDecoder, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *BudgetHandler {
	return &BudgetHandler{
		service:      service,
		decoder:      decoder,
		query:        middleware.NewQueryParamValidator(errorHandler),
		logger:       logger.With(slog.String("component", "budget_handler")),
		errorHandler: errorHandler,
	}
}

// ForecastRoutes returns the forecast routes
func (h *BudgetHandler) ForecastRoutes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Forecast)
	return r
}

// PlanRoutes returns the plan routes
func (h *BudgetHandler) PlanRoutes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Plan)
	r.Post("/export", h.Export)
	return r
}

// Forecast handles POST /api/forecast
func (h *BudgetHandler) Forecast(w http.ResponseWriter, r *http.Request) {
	var req api.ForecastRequest
	if err := h.decoder.Decode(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	result, err := h.service.Forecast(r.Context(), services.SeriesInput{
		Entity: req.Entity,
		Series: toSeries(req.Series),
	})
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, result)
}

// Plan handles POST /api/plan
func (h *BudgetHandler) Plan(w http.ResponseWriter, r *http.Request) {
	result, ok := h.plan(w, r)
	if !ok {
		return
	}
	render.JSON(w, r, result)
}

// Export handles POST /api/plan/export?format=csv|xlsx
func (h *BudgetHandler) Export(w http.ResponseWriter, r *http.Request) {
	name, ok := h.query.ValidateEnum(w, r, "format", []string{string(exporter.FormatCSV), string(exporter.FormatXLSX)}, string(exporter.FormatCSV))
	if !ok {
		return
	}
	format := exporter.Format(name)

	result, ok := h.plan(w, r)
	if !ok {
		return
	}

	filename, sheets := exporter.PlanExport(format, result.Forecast, result.Plan, result.Bands, result.Verdict)
	writeExport(w, r, h.errorHandler, format, filename, sheets)
}

func (h *BudgetHandler) plan(w http.ResponseWriter, r *http.Request) (*services.PlanResult, bool) {
	var req api.PlanRequest
	if err := h.decoder.Decode(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return nil, false
	}

	allocation, err := toAllocation(req.Allocation)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return nil, false
	}

	result, err := h.service.Plan(r.Context(), services.PlanInput{
		SeriesInput: services.SeriesInput{
			Entity: req.Entity,
			Series: toSeries(req.Series),
		},
		GoalPerStudent: req.GoalPerStudent,
		CurrentBudget:  req.CurrentBudget,
		Allocation:     allocation,
		Simulation: services.SimulationOverrides{
			Months: req.Months,
			Paths:  req.Paths,
			Seed:   req.Seed,
		},
	})
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return nil, false
	}
	return result, true
}

func toSeries(points []api.SeriesPoint) []forecast.Point {
	if len(points) == 0 {
		return nil
	}
	series := make([]forecast.Point, len(points))
	for i, p := range points {
		series[i] = forecast.Point{Year: p.Year, Count: p.Count}
	}
	return series
}

// toAllocation keeps the request order; an empty request selects the
// default portfolio.
func toAllocation(entries []api.AllocationEntry) (planner.Allocation, error) {
	if len(entries) == 0 {
		return planner.DefaultAllocation(), nil
	}
	alloc := planner.Allocation{Weights: make(map[planner.Asset]float64, len(entries))}
	for _, e := range entries {
		asset, err := planner.ParseAsset(e.Asset)
		if err != nil {
			return planner.Allocation{}, err
		}
		alloc.Selected = append(alloc.Selected, asset)
		alloc.Weights[asset] = e.Weight
	}
	return alloc, nil
}

// writeExport encodes sheets fully before writing so that a failure can
// still be reported as a problem response.
func writeExport(w http.ResponseWriter, r *http.Request, errorHandler *apierrors.ErrorHandler, format exporter.Format, filename string, sheets []exporter.Sheet) {
	var buf bytes.Buffer
	if err := exporter.Encode(&buf, format, sheets...); err != nil {
		errorHandler.HandleError(w, r, fmt.Errorf("encode export: %w", err))
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename+format.Extension()))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
