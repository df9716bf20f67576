package regression

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"optimedu/internal/panel"
)

func mathScore(x1, x2, x3 float64) float64 {
	return 50 + 0.002*x1 - 0.5*x2 + 0.001*x3
}

// syntheticPanel builds a panel where math score is an exact linear
// function of the predictors and reading score carries a residual.
func syntheticPanel() *panel.Panel {
	var records []panel.Record
	for i := 0; i < 10; i++ {
		x1 := 10000 + 500*float64(i)
		x2 := 15 + float64(i%3)
		x3 := 6000 + 300*float64((i*7)%10)

		rec := panel.Record{Entity: "County", Year: 2010 + i}
		rec.Set(panel.SpendingPerStudent, x1)
		rec.Set(panel.StudentTeacherRatio, x2)
		rec.Set(panel.PerPupilInstructionalSpending, x3)
		rec.Set(panel.MathScore, mathScore(x1, x2, x3))
		rec.Set(panel.ReadingScore, 60+0.001*x1+float64(i%2))
		records = append(records, rec)
	}
	return panel.New(records)
}

func TestScalerRoundTrip(t *testing.T) {
	values := []float64{3, 7, 7, 19, 24.5, -2}
	s := FitScaler(values)

	var zs []float64
	for _, v := range values {
		z := s.Transform(v)
		zs = append(zs, z)
		assert.InDelta(t, v, s.Inverse(z), 1e-9)
	}

	// Standardized column has mean 0 and sample std 1
	check := FitScaler(zs)
	assert.InDelta(t, 0, check.Mean, 1e-12)
	assert.InDelta(t, 1, check.Std, 1e-12)
}

func TestScalerSampleStd(t *testing.T) {
	s := FitScaler([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	assert.InDelta(t, 5, s.Mean, 1e-12)
	// population std is 2, sample std is sqrt(32/7)
	assert.InDelta(t, math.Sqrt(32.0/7.0), s.Std, 1e-12)

	r := s.Range()
	assert.InDelta(t, 5-2*s.Std, r.Min, 1e-12)
	assert.InDelta(t, 5+2*s.Std, r.Max, 1e-12)
	assert.Equal(t, 5.0, r.Default)
}

func TestScalerDegenerate(t *testing.T) {
	s := FitScaler([]float64{4, 4, 4})
	assert.Equal(t, 0.0, s.Std)
	assert.Equal(t, 0.0, s.Transform(10))
	assert.Equal(t, 4.0, s.Inverse(0))

	assert.Equal(t, Scaler{Mean: 8}, FitScaler([]float64{8}))
	assert.Equal(t, Scaler{}, FitScaler(nil))
}

func TestFitAndPredict(t *testing.T) {
	a := Fit(context.Background(), syntheticPanel())

	assert.Equal(t, Predictors, a.Predictors)
	assert.Equal(t, []panel.Column{panel.MathScore, panel.ReadingScore}, a.Outcomes)
	assert.Equal(t, []panel.Column{panel.GraduationRate, panel.HigherEducationPursuitRate}, a.Skipped)
	assert.Empty(t, a.Failures)

	model := a.Models[panel.MathScore]
	require.NotNil(t, model)
	assert.Equal(t, 10, model.Observations)
	assert.InDelta(t, 1.0, model.RSquared, 1e-9)

	t.Run("exact relation is recovered in original units", func(t *testing.T) {
		inputs := map[panel.Column]float64{
			panel.SpendingPerStudent:            13250,
			panel.StudentTeacherRatio:           16.5,
			panel.PerPupilInstructionalSpending: 7000,
		}
		p := a.PredictOutcome(panel.MathScore, inputs)
		require.True(t, p.OK(), "%v", p.Err)
		assert.InDelta(t, mathScore(13250, 16.5, 7000), p.Value, 1e-6)
		assert.Equal(t, "Math Score", p.Label)
	})

	t.Run("prediction at the means reproduces outcome means", func(t *testing.T) {
		preds := a.Predict(nil)
		require.Len(t, preds, 2)
		for _, p := range preds {
			require.True(t, p.OK())
			assert.InDelta(t, a.Scalers[p.Outcome].Mean, p.Value, 1e-9)
		}
	})

	t.Run("impacts narrate per unit slopes", func(t *testing.T) {
		impacts := a.Impacts(panel.MathScore)
		require.Len(t, impacts, 3)
		assert.InDelta(t, 0.002, impacts[0].PerUnit, 1e-9)
		assert.InDelta(t, -0.5, impacts[1].PerUnit, 1e-9)
		assert.InDelta(t, 0.001, impacts[2].PerUnit, 1e-9)
		assert.Contains(t, impacts[1].Narrative, "Student-Teacher Ratio")
		assert.Contains(t, impacts[1].Narrative, "a 0.5 decrease in Math Score")
		assert.Contains(t, impacts[0].Narrative, "a 0.002 increase in Math Score")
		assert.Contains(t, impacts[2].Narrative, "a 0.001 increase in Math Score")
	})

	t.Run("plot data is in original units", func(t *testing.T) {
		series := a.PlotData(panel.MathScore)
		require.Len(t, series, 3)
		first := series[0]
		assert.Equal(t, panel.SpendingPerStudent, first.Predictor)
		require.Len(t, first.Points, 10)
		assert.InDelta(t, 10000, first.Points[0].X, 1e-6)
		assert.InDelta(t, mathScore(10000, 15, 6000), first.Points[0].Y, 1e-6)
		assert.True(t, first.Fit.Valid)
		assert.InDelta(t, 10000, first.Fit.XMin, 1e-6)
		assert.InDelta(t, 14500, first.Fit.XMax, 1e-6)

		assert.Nil(t, a.PlotData(panel.GraduationRate))
	})

	t.Run("slider ranges", func(t *testing.T) {
		ranges := a.Ranges()
		require.Len(t, ranges, 3)
		r := ranges[panel.SpendingPerStudent]
		assert.InDelta(t, 12250, r.Default, 1e-9)
		assert.Less(t, r.Min, r.Default)
		assert.Greater(t, r.Max, r.Default)
	})

	t.Run("unknown outcome", func(t *testing.T) {
		p := a.PredictOutcome(panel.GraduationRate, nil)
		assert.ErrorIs(t, p.Err, ErrUnknownOutcome)
	})

	t.Run("non-finite input fails each outcome", func(t *testing.T) {
		preds := a.Predict(map[panel.Column]float64{panel.SpendingPerStudent: math.Inf(1)})
		for _, p := range preds {
			assert.ErrorIs(t, p.Err, ErrNumerical)
		}
	})
}

func TestFitIsolatesFailures(t *testing.T) {
	p := syntheticPanel()

	// Graduation rate has too few complete rows to fit four coefficients
	p.Records[0].Set(panel.GraduationRate, 90)
	p.Records[1].Set(panel.GraduationRate, 91)
	p = panel.New(p.Records)

	a := Fit(context.Background(), p)
	require.Contains(t, a.Failures, panel.GraduationRate)
	assert.ErrorIs(t, a.Failures[panel.GraduationRate], ErrTooFewObservations)

	preds := a.Predict(nil)
	require.Len(t, preds, 3)
	for _, pred := range preds {
		if pred.Outcome == panel.GraduationRate {
			var perr *PredictionError
			require.ErrorAs(t, pred.Err, &perr)
			assert.Equal(t, panel.GraduationRate, perr.Outcome)
			continue
		}
		assert.True(t, pred.OK(), "%s: %v", pred.Outcome, pred.Err)
	}
}

func TestFitRankDeficient(t *testing.T) {
	p := syntheticPanel()
	for i := range p.Records {
		p.Records[i].Set(panel.StudentTeacherRatio, 15)
	}

	a := Fit(context.Background(), p)
	assert.Empty(t, a.Models)
	require.Len(t, a.Failures, 2)
	for _, perr := range a.Failures {
		assert.ErrorIs(t, perr, ErrRankDeficient)
	}
}

func TestFitDropsAbsentPredictors(t *testing.T) {
	var records []panel.Record
	for i := 0; i < 6; i++ {
		rec := panel.Record{Entity: "A", Year: 2000 + i}
		x := float64(i)
		rec.Set(panel.SpendingPerStudent, 1000+100*x)
		rec.Set(panel.GraduationRate, 80+2*x)
		records = append(records, rec)
	}

	a := Fit(context.Background(), panel.New(records))
	assert.Equal(t, []panel.Column{panel.SpendingPerStudent}, a.Predictors)
	require.Contains(t, a.Models, panel.GraduationRate)

	p := a.PredictOutcome(panel.GraduationRate, map[panel.Column]float64{panel.SpendingPerStudent: 1250})
	require.True(t, p.OK())
	assert.InDelta(t, 85, p.Value, 1e-9)
}

func TestSignificant(t *testing.T) {
	tests := map[float64]string{
		0:           "0",
		0.5:         "0.5",
		0.00213456:  "0.002135",
		0.499999999: "0.5",
		12345.6:     "12350",
		3.14159:     "3.142",
	}
	for in, want := range tests {
		assert.Equal(t, want, significant(in, 4), "%v", in)
	}
}
