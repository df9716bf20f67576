package app

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"optimedu/internal/config"
	"optimedu/internal/infrastructure"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Server.Port = 0
	cfg.Server.ShutdownTimeout = 2 * time.Second
	cfg.Analysis.Paths = 50
	cfg.Security.RateLimit.Enabled = false
	return cfg
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestApp(t *testing.T, cfg *config.Config) *Application {
	t.Helper()
	app, err := New(cfg, testLogger())
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = app.OTelProviders.Shutdown(context.Background())
	})
	return app
}

func serve(app *Application, method, target, contentType, body string) *httptest.ResponseRecorder {
	var reader io.Reader = http.NoBody
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

func TestNew(t *testing.T) {
	app := newTestApp(t, testConfig())

	assert.NotNil(t, app.Router)
	assert.NotNil(t, app.Server)
	assert.NotNil(t, app.Metrics)
	require.NotNil(t, app.Services)
	assert.NotNil(t, app.Services.Workspace)
	assert.NotNil(t, app.Services.Panel)
	assert.NotNil(t, app.Services.Budget)
	assert.NotNil(t, app.Services.Impact)
	assert.NotNil(t, app.Services.Health)
	assert.False(t, app.Services.Recommendation.Enabled())
}

func TestNew_AdvisorEnabled(t *testing.T) {
	cfg := testConfig()
	cfg.Advisor.APIKey = "sk-test"
	cfg.Advisor.BaseURL = "http://127.0.0.1:1/v1"

	app := newTestApp(t, cfg)
	assert.True(t, app.Services.Recommendation.Enabled())

	rec := serve(app, http.MethodGet, "/readyz", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"advisor":{"status":"ready"`)
}

func TestNew_InvalidOtelExporter(t *testing.T) {
	cfg := testConfig()
	cfg.Otel.MetricExporter = "statsd"

	_, err := New(cfg, testLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OpenTelemetry")
}

func TestNewApplication(t *testing.T) {
	t.Cleanup(infrastructure.ResetLoggerForTesting)

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9191
logging:
  level: warn
analysis:
  paths: 25
`), 0o644))

	app, err := NewApplication(path)
	require.NoError(t, err)
	defer app.OTelProviders.Shutdown(context.Background())

	assert.Equal(t, ":9191", app.Server.Addr)
	assert.Equal(t, 25, app.Config.Analysis.Paths)
	assert.Equal(t, config.DefaultSeed, int(app.Config.Analysis.Seed))

	_, err = NewApplication(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestApplication_setupRouter(t *testing.T) {
	app := newTestApp(t, testConfig())

	tests := []struct {
		name           string
		method         string
		path           string
		expectedStatus int
	}{
		{name: "health", method: http.MethodGet, path: "/healthz", expectedStatus: http.StatusOK},
		{name: "readiness", method: http.MethodGet, path: "/readyz", expectedStatus: http.StatusOK},
		{name: "metrics", method: http.MethodGet, path: "/metrics", expectedStatus: http.StatusOK},
		{name: "version", method: http.MethodGet, path: "/api/version", expectedStatus: http.StatusOK},
		{name: "liveness", method: http.MethodGet, path: "/api/health/live", expectedStatus: http.StatusOK},
		{name: "panel before upload", method: http.MethodGet, path: "/api/panel", expectedStatus: http.StatusConflict},
		{name: "impact before upload", method: http.MethodGet, path: "/api/impact", expectedStatus: http.StatusConflict},
		{name: "latest recommendation", method: http.MethodGet, path: "/api/recommendations", expectedStatus: http.StatusOK},
		{name: "unknown route", method: http.MethodGet, path: "/api/unknown", expectedStatus: http.StatusNotFound},
		{name: "wrong method", method: http.MethodDelete, path: "/api/forecast", expectedStatus: http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(app, tt.method, tt.path, "", "")
			assert.Equal(t, tt.expectedStatus, rec.Code, rec.Body.String())
			assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
		})
	}

	t.Run("api responses carry security headers", func(t *testing.T) {
		rec := serve(app, http.MethodGet, "/api/version", "", "")
		assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
		assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	})
}

func TestApplication_AnalysisFlow(t *testing.T) {
	app := newTestApp(t, testConfig())

	var b strings.Builder
	b.WriteString("County-Year,Spending Per Student,Student Teacher Ratio,Per Pupil Instructional Spending,Math Score,Reading Score,Enrollment\n")
	rows := []string{
		"Adams-2019,10000,15,6000,63.5,61,1000",
		"Adams-2020,10500,16,6700,64,62,1050",
		"Adams-2021,11000,17,6400,64.9,61.5,1100",
		"Adams-2022,11500,15,7100,67.1,62.8,1150",
		"Adams-2023,12000,16,6200,66.2,62.1,1200",
		"Adams-2024,12500,17,6900,67.4,63.9,1250",
	}
	b.WriteString(strings.Join(rows, "\n"))

	rec := serve(app, http.MethodPost, "/api/panel?name=panel.csv", "text/csv", b.String())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = serve(app, http.MethodPost, "/api/forecast", "application/json", `{"entity": "Adams"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var fc map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fc))
	assert.EqualValues(t, 1300, fc["next"])
	assert.EqualValues(t, 2025, fc["next_year"])

	rec = serve(app, http.MethodPost, "/api/plan", "application/json",
		`{"entity": "Adams", "goal_per_student": 20, "current_budget": 6000}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"required_budget":"26000"`)
	assert.Contains(t, rec.Body.String(), `"paths":50`)

	rec = serve(app, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "optimedu")
}

func TestApplication_getCORSConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Security.AllowedOrigins = []string{"https://schools.example.org"}
	app := newTestApp(t, cfg)

	cors := app.getCORSConfig()
	assert.Equal(t, []string{"https://schools.example.org"}, cors.AllowedOrigins)
	assert.Contains(t, cors.ExposedHeaders, "Content-Disposition")
	assert.False(t, cors.AllowCredentials)

	req := httptest.NewRequest(http.MethodOptions, "/api/forecast", nil)
	req.Header.Set("Origin", "https://schools.example.org")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	assert.Equal(t, "https://schools.example.org", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestApplication_createServer(t *testing.T) {
	cfg := testConfig()
	cfg.Server.Port = 8181
	app := newTestApp(t, cfg)

	assert.Equal(t, ":8181", app.Server.Addr)
	assert.Equal(t, cfg.Server.ReadTimeout, app.Server.ReadTimeout)
	assert.Equal(t, cfg.Server.WriteTimeout, app.Server.WriteTimeout)
	assert.Equal(t, cfg.Server.MaxHeaderBytes, app.Server.MaxHeaderBytes)
	assert.Equal(t, app.Router, app.Server.Handler)
}

func TestApplication_StartStop(t *testing.T) {
	app := newTestApp(t, testConfig())
	app.Server.Addr = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, app.Start(ctx, cancel))
	require.NoError(t, app.Stop(ctx))
}

func TestApplication_Run(t *testing.T) {
	app := newTestApp(t, testConfig())
	app.Server.Addr = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}
