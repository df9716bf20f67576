package middleware

import "optimedu/internal/config"

func infrastructureTestConfig() config.OtelConfig {
	return config.OtelConfig{
		Environment:    "test",
		EnableTracing:  true,
		EnableMetrics:  true,
		TraceExporter:  "none",
		MetricExporter: "prometheus",
		SampleRatio:    1,
	}
}
