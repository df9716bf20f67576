package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"optimedu/internal/planner"
	"optimedu/internal/services"
	"optimedu/internal/shared/testutil"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func decodeOutput(t *testing.T, out string) map[string]interface{} {
	t.Helper()
	var v map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &v), out)
	return v
}

func writePanel(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "panel.csv")
	require.NoError(t, os.WriteFile(path, []byte(testutil.PanelCSV()), 0o644))
	return path
}

func TestParseSeries(t *testing.T) {
	points, err := parseSeries([]string{"2021:300", " 2022:412.5"})
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, 2022, points[1].Year)
	assert.Equal(t, 412.5, points[1].Count)

	for _, bad := range []string{"2021-300", "year:300", "2021:many"} {
		_, err := parseSeries([]string{bad})
		assert.Error(t, err, bad)
	}
}

func TestParseAllocation(t *testing.T) {
	alloc, err := parseAllocation(nil)
	require.NoError(t, err)
	assert.Equal(t, planner.DefaultAllocation(), alloc)

	alloc, err = parseAllocation([]string{"bonds=40", "Stocks=60"})
	require.NoError(t, err)
	assert.Equal(t, []planner.Asset{planner.Bonds, planner.Stocks}, alloc.Selected)
	assert.Equal(t, 60.0, alloc.Weights[planner.Stocks])

	for _, bad := range [][]string{{"Gold=10"}, {"Stocks"}, {"Stocks=lots"}, {"ETFs=10", "etfs=20"}} {
		_, err := parseAllocation(bad)
		assert.Error(t, err, bad)
	}
}

func TestForecastCommand(t *testing.T) {
	t.Run("explicit series", func(t *testing.T) {
		out, err := run(t, "forecast", "--series", "2021:300,2022:400,2023:500")
		require.NoError(t, err)
		result := decodeOutput(t, out)
		assert.EqualValues(t, 600, result["next"])
		assert.EqualValues(t, 2024, result["next_year"])
	})

	t.Run("panel entity", func(t *testing.T) {
		out, err := run(t, "forecast", "--panel", writePanel(t), "--entity", "Adams")
		require.NoError(t, err)
		assert.EqualValues(t, 1500, decodeOutput(t, out)["next"])
	})

	t.Run("unknown entity", func(t *testing.T) {
		_, err := run(t, "forecast", "--panel", writePanel(t), "--entity", "Nowhere")
		assert.ErrorIs(t, err, services.ErrEntityNotFound)
	})

	t.Run("no input", func(t *testing.T) {
		_, err := run(t, "forecast")
		assert.ErrorIs(t, err, errNoSeries)
	})

	t.Run("entity without panel", func(t *testing.T) {
		_, err := run(t, "forecast", "--entity", "Adams")
		assert.Error(t, err)
	})
}

func TestPlanCommand(t *testing.T) {
	dir := t.TempDir()
	xlsxPath := filepath.Join(dir, "plan.xlsx")

	out, err := run(t, "plan",
		"--series", "2021:300,2022:400,2023:500",
		"--goal", "10", "--budget", "5000",
		"--asset", "Stocks=60", "--asset", "Bonds=40",
		"--paths", "20", "--seed", "7",
		"--out", xlsxPath)
	require.NoError(t, err)

	result := decodeOutput(t, out)
	plan := result["plan"].(map[string]interface{})
	assert.Equal(t, "6000", plan["required_budget"])
	assert.Equal(t, "1000", plan["deficit"])
	bands := result["bands"].(map[string]interface{})
	assert.EqualValues(t, 20, bands["paths"])
	assert.EqualValues(t, 7, bands["seed"])

	f, err := excelize.OpenFile(xlsxPath)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Plan", "Bands"}, f.GetSheetList())

	t.Run("csv carries the bands", func(t *testing.T) {
		csvPath := filepath.Join(dir, "bands.csv")
		_, err := run(t, "plan", "--series", "2021:300,2022:400,2023:500",
			"--goal", "10", "--budget", "5000", "--paths", "20", "--out", csvPath)
		require.NoError(t, err)

		data, err := os.ReadFile(csvPath)
		require.NoError(t, err)
		lines := strings.Split(strings.TrimSpace(string(data)), "\n")
		assert.Equal(t, "\ufeffMonth,P5,Median,P95", strings.TrimSpace(lines[0]))
		assert.Len(t, lines, 14)
	})

	t.Run("invalid inputs", func(t *testing.T) {
		base := []string{"plan", "--series", "2021:300,2022:400"}
		cases := [][]string{
			append(append([]string{}, base...), "--goal", "ten", "--budget", "1"),
			append(append([]string{}, base...), "--goal", "1", "--budget", "1", "--asset", "Gold=5"),
			append(append([]string{}, base...), "--goal", "1", "--budget", "1", "--out", "plan.pdf"),
			append(append([]string{}, base...), "--budget", "1"),
		}
		for _, args := range cases {
			_, err := run(t, args...)
			assert.Error(t, err, args)
		}
	})
}

func TestImpactCommand(t *testing.T) {
	panelPath := writePanel(t)

	t.Run("overview", func(t *testing.T) {
		out, err := run(t, "impact", "--panel", panelPath)
		require.NoError(t, err)
		overview := decodeOutput(t, out)
		outcomes := overview["outcomes"].([]interface{})
		require.Len(t, outcomes, 2)
		assert.NotContains(t, outcomes[0], "plot_data")
	})

	t.Run("prediction", func(t *testing.T) {
		out, err := run(t, "impact", "--panel", panelPath, "--predict", "Spending Per Student=14000")
		require.NoError(t, err)

		var predictions []map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(out), &predictions))
		require.Len(t, predictions, 2)
		assert.Equal(t, "math_score", predictions[0]["outcome"])
		assert.Contains(t, predictions[0], "value")
	})

	t.Run("unknown predictor", func(t *testing.T) {
		_, err := run(t, "impact", "--panel", panelPath, "--predict", "budget=1")
		assert.Error(t, err)
	})

	t.Run("export", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "impact.xlsx")
		_, err := run(t, "impact", "--panel", panelPath, "--out", path)
		require.NoError(t, err)

		f, err := excelize.OpenFile(path)
		require.NoError(t, err)
		defer f.Close()
		assert.Equal(t, []string{"PlotData", "Impacts"}, f.GetSheetList())
	})
}

func TestAdviseCommand_Disabled(t *testing.T) {
	t.Setenv("OPTIMEDU_ADVISOR_API_KEY", "")

	_, err := run(t, "advise", "--metric", "Spending Per Student", "--direction", "Increase")
	assert.ErrorIs(t, err, services.ErrAdvisorDisabled)

	_, err = run(t, "advise", "--metric", "Budget", "--direction", "Increase")
	assert.Error(t, err)
}
