package infrastructure

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"optimedu/internal/config"
)

func testOtelConfig() config.OtelConfig {
	return config.OtelConfig{
		Environment:    "test",
		EnableTracing:  true,
		EnableMetrics:  true,
		TraceExporter:  "none",
		MetricExporter: "prometheus",
		SampleRatio:    1.0,
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestOTelInitialization(t *testing.T) {
	providers, err := InitializeOTel(testOtelConfig(), quietLogger())
	require.NoError(t, err)
	require.NotNil(t, providers)

	assert.NotNil(t, providers.Tracer)
	assert.NotNil(t, providers.MeterProvider)
	assert.NotNil(t, providers.Meter)
	assert.NotNil(t, providers.PrometheusHTTP)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, providers.Shutdown(ctx))
}

func TestOTelConfiguration(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.OtelConfig)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*config.OtelConfig) {}},
		{name: "stdout tracing", mutate: func(c *config.OtelConfig) { c.TraceExporter = "stdout" }},
		{name: "metrics disabled", mutate: func(c *config.OtelConfig) { c.EnableMetrics = false }},
		{name: "everything disabled", mutate: func(c *config.OtelConfig) {
			c.EnableMetrics = false
			c.EnableTracing = false
		}},
		{name: "unknown trace exporter", mutate: func(c *config.OtelConfig) { c.TraceExporter = "jaeger" }, wantErr: true},
		{name: "unknown metric exporter", mutate: func(c *config.OtelConfig) { c.MetricExporter = "statsd" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testOtelConfig()
			tt.mutate(&cfg)

			providers, err := InitializeOTel(cfg, quietLogger())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)

			// disabled signals still hand out usable no-op instruments
			assert.NotNil(t, providers.Tracer)
			assert.NotNil(t, providers.Meter)
			if !cfg.EnableMetrics {
				assert.Nil(t, providers.MeterProvider)
			}
			assert.NoError(t, providers.Shutdown(context.Background()))
		})
	}
}

func TestBusinessMetrics(t *testing.T) {
	providers, err := InitializeOTel(testOtelConfig(), quietLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	metrics, err := CreateBusinessMetrics(providers.Meter)
	require.NoError(t, err)

	assert.NotNil(t, metrics.HTTPRequestsTotal)
	assert.NotNil(t, metrics.HTTPRequestDuration)
	assert.NotNil(t, metrics.HTTPActiveRequests)
	assert.NotNil(t, metrics.PanelsLoaded)
	assert.NotNil(t, metrics.RowsDropped)
	assert.NotNil(t, metrics.OperationsTotal)
	assert.NotNil(t, metrics.OperationDuration)
	assert.NotNil(t, metrics.OperationErrors)
	assert.NotNil(t, metrics.SimulationPaths)
	assert.NotNil(t, metrics.RegressionFailures)
	assert.NotNil(t, metrics.SystemErrors)
}

func TestPrometheusEndpoint(t *testing.T) {
	providers, err := InitializeOTel(testOtelConfig(), quietLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	metrics, err := CreateBusinessMetrics(providers.Meter)
	require.NoError(t, err)

	ctx := context.Background()
	RecordOperation(ctx, metrics, "forecast", 15*time.Millisecond, nil)
	RecordOperation(ctx, metrics, "simulate", 40*time.Millisecond, errors.New("boom"))

	server := httptest.NewServer(providers.PrometheusHTTP)
	defer server.Close()

	resp, err := http.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "operations_total")
	assert.Contains(t, string(body), "operation_errors_total")
}

func TestSpanHelpers(t *testing.T) {
	cfg := testOtelConfig()
	providers, err := InitializeOTel(cfg, quietLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	// No active span: helpers are no-ops
	ctx := context.Background()
	assert.Empty(t, TraceIDFromContext(ctx))
	SetSpanAttributes(ctx, map[string]interface{}{"k": "v"})
	AddSpanEvent(ctx, "noop", nil)
	RecordError(ctx, assert.AnError)

	RecordOperation(ctx, nil, "forecast", time.Second, nil)
}
