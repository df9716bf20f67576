package services

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"optimedu/internal/config"
	"optimedu/internal/shared/testutil"
)

// MockGenerator implements recommend.Generator for advisor tests
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

func testAnalysisConfig() config.AnalysisConfig {
	return config.AnalysisConfig{
		Seed:           42,
		Paths:          200,
		Months:         12,
		Workers:        2,
		MaxUploadBytes: 1 << 20,
	}
}

// panelCSV is the shared fixture plus one row with a malformed key.
func panelCSV() string {
	return testutil.PanelCSV("not-a-key,1,2,3,4,5,6")
}

// loadedWorkspace returns a workspace holding the fixture panel.
func loadedWorkspace(t *testing.T) *Workspace {
	t.Helper()
	ws := NewWorkspace()
	svc := NewPanelService(ws, nil, quietLogger())
	_, err := svc.Load(context.Background(), "fixture.csv", strings.NewReader(panelCSV()))
	require.NoError(t, err)
	return ws
}
