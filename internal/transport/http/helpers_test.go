package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"optimedu/internal/config"
	apierrors "optimedu/internal/errors"
	"optimedu/internal/middleware"
	"optimedu/internal/recommend"
	"optimedu/internal/services"
	"optimedu/internal/shared/testutil"
)

// MockGenerator implements recommend.Generator
type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestRouter wires every API handler over real services. gen may be nil
// to leave the advisor disabled.
func newTestRouter(t *testing.T, gen recommend.Generator) chi.Router {
	t.Helper()

	logger := quietLogger()
	errorHandler := apierrors.NewErrorHandler(logger, false)
	validation := middleware.NewValidationMiddleware(logger, errorHandler, 1<<20)

	analysis := config.AnalysisConfig{Seed: 42, Paths: 100, Months: 12, Workers: 2, MaxUploadBytes: 1 << 20}

	var advisor *recommend.Advisor
	if gen != nil {
		advisor = recommend.NewAdvisor(gen, logger)
	}

	ws := services.NewWorkspace()
	budget := NewBudgetHandler(services.NewBudgetService(ws, analysis, nil, logger), validation, logger, errorHandler)

	r := chi.NewRouter()
	r.NotFound(errorHandler.NotFound)
	r.MethodNotAllowed(errorHandler.MethodNotAllowed)
	r.Use(validation.ValidateRequest)

	r.Mount("/api/panel", NewPanelHandler(services.NewPanelService(ws, nil, logger), logger, errorHandler).Routes())
	r.Mount("/api/forecast", budget.ForecastRoutes())
	r.Mount("/api/plan", budget.PlanRoutes())
	r.Mount("/api/impact", NewImpactHandler(services.NewImpactService(ws, nil, logger), validation, logger, errorHandler).Routes())
	r.Mount("/api/recommendations", NewRecommendationHandler(
		services.NewRecommendationService(ws, advisor, nil, logger), validation, logger, errorHandler).Routes())
	return r
}

func panelCSV() string {
	return testutil.PanelCSV()
}

func do(t *testing.T, h http.Handler, method, target, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader = http.NoBody
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func doJSON(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	return do(t, h, method, target, "application/json", body)
}

func upload(t *testing.T, h http.Handler) {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/api/panel?name=fixture.csv", "text/csv", panelCSV())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}
