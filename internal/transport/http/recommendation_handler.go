package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "optimedu/internal/errors"
	"optimedu/internal/recommend"
	api "optimedu/pkg/contracts/api/v1"
)

// RecommendationHandler handles advisor requests
type RecommendationHandler struct {
	service      RecommendationServiceInterface
	decoder      RequestDecoder
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewRecommendationHandler creates a new recommendation handler
func NewRecommendationHandler(service RecommendationServiceInterface, decoder RequestDecoder, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *RecommendationHandler {
	return &RecommendationHandler{
		service:      service,
		decoder:      decoder,
		logger:       logger.With(slog.String("component", "recommendation_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the recommendation routes
func (h *RecommendationHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.Latest)
	r.Post("/", h.Recommend)
	r.Post("/ask", h.Ask)
	return r
}

// Recommend handles POST /api/recommendations
func (h *RecommendationHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	var req api.RecommendRequest
	if err := h.decoder.Decode(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	metric, err := recommend.ParseMetric(req.Metric)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	direction, err := recommend.ParseDirection(req.Direction)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	ex, err := h.service.Recommend(r.Context(), metric, direction)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, ex)
}

// Ask handles POST /api/recommendations/ask
func (h *RecommendationHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req api.AskRequest
	if err := h.decoder.Decode(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	ex, err := h.service.Ask(r.Context(), req.Question)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, ex)
}

// Latest handles GET /api/recommendations
func (h *RecommendationHandler) Latest(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.service.Latest(r.Context()))
}
