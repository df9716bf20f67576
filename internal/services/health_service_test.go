package services

import (
	"context"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHealthServiceChecks(t *testing.T) {
	ctx := context.Background()

	t.Run("empty workspace", func(t *testing.T) {
		hs := NewHealthService("1.2.3", "", NewWorkspace(), false, quietLogger())

		health := hs.HealthCheck(ctx)
		assert.Equal(t, "ok", health.Status)
		assert.Equal(t, "1.2.3", health.Version)

		ready := hs.ReadinessCheck(ctx)
		assert.Equal(t, "ready", ready.Status)
		assert.Equal(t, "empty", ready.Services["panel"].Status)
		assert.Equal(t, "disabled", ready.Services["advisor"].Status)
	})

	t.Run("loaded workspace", func(t *testing.T) {
		hs := NewHealthService("1.2.3", "2026-01-01", loadedWorkspace(t), true, quietLogger())

		ready := hs.ReadinessCheck(ctx)
		assert.Equal(t, "loaded", ready.Services["panel"].Status)
		assert.Equal(t, "fixture.csv", ready.Services["panel"].Message)
		assert.Equal(t, "ready", ready.Services["advisor"].Status)
	})
}

func TestHealthServiceLivenessAndVersion(t *testing.T) {
	hs := NewHealthService("1.2.3", "2026-01-01", NewWorkspace(), false, quietLogger())

	live := hs.LivenessCheck(context.Background())
	assert.Equal(t, "alive", live.Status)
	assert.Equal(t, runtime.Version(), live.Runtime["go_version"])

	version := hs.Version()
	assert.Equal(t, "1.2.3", version["version"])
	assert.Equal(t, "2026-01-01", version["build_time"])
	assert.Equal(t, runtime.GOOS, version["os"])
	assert.Equal(t, "v1", version["api_version"])
}
