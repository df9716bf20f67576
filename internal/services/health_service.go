package services

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"optimedu/pkg/contracts"
)

// HealthService reports process health and readiness.
type HealthService struct {
	version   string
	buildTime string
	ws        *Workspace
	advisor   bool
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                   `json:"status"`
	Timestamp time.Time                `json:"timestamp"`
	Version   string                   `json:"version"`
	Runtime   map[string]interface{}   `json:"runtime,omitempty"`
	Services  map[string]ServiceHealth `json:"services,omitempty"`
}

// ServiceHealth represents individual component health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// NewHealthService creates a health service. advisorEnabled reports
// whether a language model is configured.
func NewHealthService(version, buildTime string, ws *Workspace, advisorEnabled bool, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		version:   version,
		buildTime: buildTime,
		ws:        ws,
		advisor:   advisorEnabled,
		startTime: time.Now(),
		logger:    logger.With(slog.String("service", "health")),
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version,
	}
}

// ReadinessCheck reports the state of each component. The service is ready
// as soon as it can accept uploads; a missing panel or advisor only marks
// that component.
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   hs.version,
		Services: map[string]ServiceHealth{
			"panel":   hs.checkPanel(),
			"advisor": hs.checkAdvisor(),
		},
	}

	hs.logger.DebugContext(ctx, "readiness checked",
		slog.String("panel", status.Services["panel"].Status),
		slog.String("advisor", status.Services["advisor"].Status))
	return status
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// Version returns build information with the running version and uptime
func (hs *HealthService) Version() map[string]interface{} {
	info := contracts.GetVersionInfo()
	result := map[string]interface{}{
		"version":     hs.version,
		"git_commit":  info.GitCommit,
		"api_version": info.APIVersion,
		"go_version":  info.GoVersion,
		"os":          info.OS,
		"arch":        info.Architecture,
		"uptime":      time.Since(hs.startTime).Seconds(),
		"start_time":  hs.startTime.Format(time.RFC3339),
	}
	if hs.buildTime != "" {
		result["build_time"] = hs.buildTime
	}
	return result
}

func (hs *HealthService) checkPanel() ServiceHealth {
	ds, err := hs.ws.Dataset()
	if err != nil {
		return ServiceHealth{Status: "empty", Message: "no panel uploaded"}
	}
	return ServiceHealth{
		Status:  "loaded",
		Message: ds.Panel.Source,
	}
}

func (hs *HealthService) checkAdvisor() ServiceHealth {
	if !hs.advisor {
		return ServiceHealth{Status: "disabled", Message: "language model is not configured"}
	}
	return ServiceHealth{Status: "ready"}
}
