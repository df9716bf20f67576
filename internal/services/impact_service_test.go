package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"optimedu/internal/panel"
	"optimedu/internal/regression"
)

func TestImpactServiceOverview(t *testing.T) {
	svc := NewImpactService(loadedWorkspace(t), nil, quietLogger())
	ctx := context.Background()

	ov, err := svc.Overview(ctx, true)
	require.NoError(t, err)

	assert.Equal(t, regression.Predictors, ov.Predictors)
	assert.Len(t, ov.Ranges, 3)
	assert.Equal(t, []panel.Column{panel.GraduationRate, panel.HigherEducationPursuitRate}, ov.Skipped)
	assert.Empty(t, ov.Failures)

	require.Len(t, ov.Outcomes, 2)
	math := ov.Outcomes[0]
	assert.Equal(t, panel.MathScore, math.Outcome)
	assert.Equal(t, "Math Score", math.Label)
	assert.Equal(t, 12, math.Model.Observations)
	assert.Len(t, math.Impacts, 3)
	assert.Len(t, math.PlotData, 3)
	for _, impact := range math.Impacts {
		assert.Contains(t, impact.Narrative, "Math Score")
	}

	lean, err := svc.Overview(ctx, false)
	require.NoError(t, err)
	assert.Nil(t, lean.Outcomes[0].PlotData)
}

func TestImpactServicePredict(t *testing.T) {
	svc := NewImpactService(loadedWorkspace(t), nil, quietLogger())
	ctx := context.Background()

	ov, err := svc.Overview(ctx, false)
	require.NoError(t, err)

	// at the predictor means every outcome predicts its own mean
	predictions, err := svc.Predict(ctx, map[panel.Column]float64{})
	require.NoError(t, err)
	require.Len(t, predictions, 2)
	for _, p := range predictions {
		require.NotNil(t, p.Value, p.Outcome.String())
		assert.Empty(t, p.Error)
	}

	inputs := map[panel.Column]float64{
		panel.SpendingPerStudent:            ov.Ranges[panel.SpendingPerStudent].Max,
		panel.StudentTeacherRatio:           ov.Ranges[panel.StudentTeacherRatio].Default,
		panel.PerPupilInstructionalSpending: ov.Ranges[panel.PerPupilInstructionalSpending].Default,
	}
	higher, err := svc.Predict(ctx, inputs)
	require.NoError(t, err)
	assert.Greater(t, *higher[0].Value, *predictions[0].Value)
}

func TestImpactServicePlotData(t *testing.T) {
	svc := NewImpactService(loadedWorkspace(t), nil, quietLogger())
	ctx := context.Background()

	series, err := svc.PlotData(ctx, panel.ReadingScore)
	require.NoError(t, err)
	require.Len(t, series, 3)
	assert.Equal(t, panel.SpendingPerStudent, series[0].Predictor)
	assert.Len(t, series[0].Points, 12)

	_, err = svc.PlotData(ctx, panel.GraduationRate)
	assert.ErrorIs(t, err, regression.ErrUnknownOutcome)
}

func TestImpactServiceNoPanel(t *testing.T) {
	svc := NewImpactService(NewWorkspace(), nil, quietLogger())
	_, err := svc.Overview(context.Background(), true)
	assert.ErrorIs(t, err, ErrNoPanel)

	_, err = svc.Predict(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoPanel)
}
