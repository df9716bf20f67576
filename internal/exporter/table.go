package exporter

import (
	"errors"

	"optimedu/internal/forecast"
	"optimedu/internal/planner"
	"optimedu/internal/regression"
	"optimedu/internal/simulation"
)

var (
	// ErrUnknownFormat is returned for a format other than csv or xlsx.
	ErrUnknownFormat = errors.New("unsupported export format")

	// ErrNoSheets is returned when there is nothing to export.
	ErrNoSheets = errors.New("nothing to export")
)

// Table is a header row followed by data rows. Cells are strings, float64
// or int values.
type Table struct {
	Headers []string
	Rows    [][]interface{}
}

// LineChart draws the listed value columns (zero based, excluding the
// category column 0) against column 0.
type LineChart struct {
	Title   string
	Columns []int
}

// Sheet is a named table, one worksheet in XLSX output.
type Sheet struct {
	Name  string
	Table Table
	Chart *LineChart
}

// BandsSheet lays out the percentile bands one month per row.
func BandsSheet(b *simulation.Bands) Sheet {
	t := Table{
		Headers: []string{"Month", "P5", "Median", "P95"},
		Rows:    make([][]interface{}, len(b.Median)),
	}
	for m := range b.Median {
		t.Rows[m] = []interface{}{m, b.P5[m], b.Median[m], b.P95[m]}
	}
	return Sheet{
		Name:  "Bands",
		Table: t,
		Chart: &LineChart{Title: "Projected investment value", Columns: []int{1, 2, 3}},
	}
}

// PlanExport picks the sheets of a plan export and its base filename.
// CSV holds one table, so it carries the bands when a simulation ran and
// the plan summary otherwise. XLSX carries both.
func PlanExport(format Format, fc forecast.Result, plan planner.Plan, bands *simulation.Bands, verdict simulation.Verdict) (string, []Sheet) {
	summary := PlanSheet(fc, plan, verdict)
	if bands == nil {
		return "plan", []Sheet{summary}
	}
	if format == FormatCSV {
		return "plan-bands", []Sheet{BandsSheet(bands)}
	}
	return "plan", []Sheet{summary, BandsSheet(bands)}
}

// PlanSheet summarizes a forecast and its funding plan as field/value
// pairs. An empty verdict means no simulation was run.
func PlanSheet(fc forecast.Result, plan planner.Plan, verdict simulation.Verdict) Sheet {
	rows := [][]interface{}{
		{"Forecast year", fc.NextYear},
		{"Forecast enrollment", fc.Next},
		{"Alpha", fc.Alpha},
		{"Beta", fc.Beta},
		{"Required budget", plan.RequiredBudget.StringFixed(2)},
		{"Deficit", plan.Deficit.StringFixed(2)},
		{"Expected return", plan.ExpectedReturn},
		{"Expected volatility", plan.ExpectedVolatility},
		{"Required investment", plan.RequiredInvestment.StringFixed(2)},
	}
	if plan.Warning != nil {
		rows = append(rows, []interface{}{"Allocation warning", plan.Warning.Error()})
	}
	if verdict != "" {
		rows = append(rows, []interface{}{"Verdict", verdict.Message()})
	}
	return Sheet{
		Name:  "Plan",
		Table: Table{Headers: []string{"Field", "Value"}, Rows: rows},
	}
}

// PlotSheet flattens regression plot data into one row per observation,
// with the simple regression line evaluated at each x.
func PlotSheet(series []regression.PlotSeries) Sheet {
	t := Table{Headers: []string{"Outcome", "Predictor", "X", "Y", "Fitted"}}
	for _, s := range series {
		for _, pt := range s.Points {
			var fitted interface{}
			if s.Fit.Valid {
				fitted = s.Fit.Intercept + s.Fit.Slope*pt.X
			}
			t.Rows = append(t.Rows, []interface{}{s.Outcome.String(), s.Predictor.String(), pt.X, pt.Y, fitted})
		}
	}
	return Sheet{Name: "PlotData", Table: t}
}

// ImpactSheet lists every narrated coefficient.
func ImpactSheet(impacts []regression.Impact) Sheet {
	t := Table{Headers: []string{"Outcome", "Predictor", "Standardized", "PerUnit", "Narrative"}}
	for _, im := range impacts {
		t.Rows = append(t.Rows, []interface{}{im.Outcome.String(), im.Predictor.String(), im.Standardized, im.PerUnit, im.Narrative})
	}
	return Sheet{Name: "Impacts", Table: t}
}
