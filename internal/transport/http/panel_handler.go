package http

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "optimedu/internal/errors"
	"optimedu/internal/middleware"
	api "optimedu/pkg/contracts/api/v1"
)

// uploadMemory is the part of a multipart upload kept in memory; the rest
// spills to temporary files.
const uploadMemory = 8 << 20

// PanelHandler handles panel upload and browse requests
type PanelHandler struct {
	service      PanelServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewPanelHandler creates a new panel handler
func NewPanelHandler(service PanelServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *PanelHandler {
	return &PanelHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "panel_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the panel routes
func (h *PanelHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Upload)
	r.Get("/", h.Summary)
	r.Get("/entities", h.Entities)

	r.Route("/entities/{entity}", func(r chi.Router) {
		r.Get("/years", h.Years)
		r.Get("/years/{year}", h.Record)
	})

	return r
}

// Upload handles POST /api/panel. The panel is read from the multipart
// field "file" or, for any other content type, from the raw body named by
// the "name" query parameter.
func (h *PanelHandler) Upload(w http.ResponseWriter, r *http.Request) {
	name, body, err := h.uploadBody(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	defer body.Close()

	h.logger.InfoContext(r.Context(), "panel upload received",
		slog.String("request_id", middleware.GetRequestID(r.Context())),
		slog.String("name", name),
		slog.Int64("content_length", r.ContentLength))

	summary, err := h.service.Load(r.Context(), name, body)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, api.UploadResponse{
		Message: fmt.Sprintf("Loaded %d records from %s", summary.Records, summary.Source),
		Summary: summary,
	})
}

func (h *PanelHandler) uploadBody(r *http.Request) (string, io.ReadCloser, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	switch mediaType {
	case "multipart/form-data":
		if err := r.ParseMultipartForm(uploadMemory); err != nil {
			var maxBytes *http.MaxBytesError
			if errors.As(err, &maxBytes) {
				return "", nil, apierrors.ErrPayloadTooLarge
			}
			return "", nil, apierrors.InvalidRequestWithError(err)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			return "", nil, apierrors.ErrValidation("file", "A panel file is required in the \"file\" field")
		}
		return header.Filename, file, nil

	case "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":
		return uploadName(r, "upload.xlsx"), r.Body, nil

	default:
		return uploadName(r, "upload.csv"), r.Body, nil
	}
}

func uploadName(r *http.Request, fallback string) string {
	if name := r.URL.Query().Get("name"); name != "" {
		return name
	}
	return fallback
}

// Summary handles GET /api/panel
func (h *PanelHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, summary)
}

// Entities handles GET /api/panel/entities
func (h *PanelHandler) Entities(w http.ResponseWriter, r *http.Request) {
	entities, err := h.service.Entities(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, api.EntitiesResponse{Entities: entities, Count: len(entities)})
}

// Years handles GET /api/panel/entities/{entity}/years
func (h *PanelHandler) Years(w http.ResponseWriter, r *http.Request) {
	entity := pathParam(r, "entity")

	years, err := h.service.Years(r.Context(), entity)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, api.YearsResponse{Entity: entity, Years: years})
}

// Record handles GET /api/panel/entities/{entity}/years/{year}
func (h *PanelHandler) Record(w http.ResponseWriter, r *http.Request) {
	entity := pathParam(r, "entity")
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("year", "year must be an integer"))
		return
	}

	record, err := h.service.Record(r.Context(), entity, year)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, record)
}

// pathParam returns a URL parameter with any percent-encoding removed.
// chi matches on the raw path when one is present.
func pathParam(r *http.Request, key string) string {
	value := chi.URLParam(r, key)
	if unescaped, err := url.PathUnescape(value); err == nil {
		return unescaped
	}
	return value
}
