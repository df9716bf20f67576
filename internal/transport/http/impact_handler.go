package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "optimedu/internal/errors"
	"optimedu/internal/exporter"
	"optimedu/internal/middleware"
	"optimedu/internal/panel"
	"optimedu/internal/regression"
	api "optimedu/pkg/contracts/api/v1"
)

// ImpactHandler handles regression what-if requests
type ImpactHandler struct {
	service      ImpactServiceInterface
	decoder      RequestDecoder
	query        *middleware.QueryParamValidator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewImpactHandler creates a new impact handler
func NewImpactHandler(service ImpactServiceInterface, decoder RequestDecoder, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ImpactHandler {
	return &ImpactHandler{
		service:      service,
		decoder:      decoder,
		query:        middleware.NewQueryParamValidator(errorHandler),
		logger:       logger.With(slog.String("component", "impact_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the impact routes
func (h *ImpactHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.Overview)
	r.Post("/predict", h.Predict)
	r.Get("/plots/{outcome}", h.PlotData)
	r.Get("/export", h.Export)

	return r
}

// Overview handles GET /api/impact?plots=true|false
func (h *ImpactHandler) Overview(w http.ResponseWriter, r *http.Request) {
	plots, ok := h.query.ValidateEnum(w, r, "plots", []string{"true", "false"}, "true")
	if !ok {
		return
	}

	overview, err := h.service.Overview(r.Context(), plots == "true")
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, overview)
}

// Predict handles POST /api/impact/predict
func (h *ImpactHandler) Predict(w http.ResponseWriter, r *http.Request) {
	var req api.PredictRequest
	if err := h.decoder.Decode(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	inputs := make(map[panel.Column]float64, len(req.Inputs))
	for name, value := range req.Inputs {
		col, ok := panel.ColumnByName(name)
		if !ok {
			h.errorHandler.HandleError(w, r, &panel.UnknownColumnError{Name: name})
			return
		}
		inputs[col] = value
	}

	predictions, err := h.service.Predict(r.Context(), inputs)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, api.PredictResponse{Predictions: predictions, Timestamp: time.Now()})
}

// PlotData handles GET /api/impact/plots/{outcome}
func (h *ImpactHandler) PlotData(w http.ResponseWriter, r *http.Request) {
	name := pathParam(r, "outcome")
	outcome, ok := panel.ColumnByName(name)
	if !ok {
		h.errorHandler.HandleError(w, r, &panel.UnknownColumnError{Name: name})
		return
	}

	series, err := h.service.PlotData(r.Context(), outcome)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, series)
}

// Export handles GET /api/impact/export?format=csv|xlsx. CSV carries the
// plot data; XLSX adds the narrated coefficients.
func (h *ImpactHandler) Export(w http.ResponseWriter, r *http.Request) {
	name, ok := h.query.ValidateEnum(w, r, "format", []string{string(exporter.FormatCSV), string(exporter.FormatXLSX)}, string(exporter.FormatCSV))
	if !ok {
		return
	}

	overview, err := h.service.Overview(r.Context(), true)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	var (
		series  []regression.PlotSeries
		impacts []regression.Impact
	)
	for _, o := range overview.Outcomes {
		series = append(series, o.PlotData...)
		impacts = append(impacts, o.Impacts...)
	}

	writeExport(w, r, h.errorHandler, exporter.Format(name), "impact",
		[]exporter.Sheet{exporter.PlotSheet(series), exporter.ImpactSheet(impacts)})
}
