package config

import "time"

// Application constants
const (
	AppName    = "OptimEdu"
	AppVersion = "1.0.0"

	// Simulation defaults
	DefaultSeed             = 42
	DefaultSimulationPaths  = 1000
	DefaultSimulationMonths = 12

	// Upload limits
	DefaultMaxUploadBytes = 32 << 20 // 32MB

	// Rate Limiting
	DefaultRateLimit = 20 // requests per second
	DefaultBurstSize = 40

	// Timeouts
	DefaultRequestTimeout = 60 * time.Second
	DefaultAdvisorTimeout = 90 * time.Second

	// Language model
	DefaultAdvisorBaseURL = "https://api.openai.com/v1"
	DefaultAdvisorModel   = "gpt-4"

	// Log Settings
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// API Endpoints
const (
	APIBasePath     = "/api"
	HealthEndpoint  = "/healthz"
	ReadyEndpoint   = "/readyz"
	MetricsEndpoint = "/metrics"
)
