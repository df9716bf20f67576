// Package exporter turns analysis results into downloadable tables.
//
// Results are first shaped into a Table (header plus rows of strings,
// float64 or int cells) and then encoded either as CSV, with a UTF-8 BOM
// for Excel compatibility, or as an XLSX workbook with one worksheet per
// Sheet. Sheets that carry a LineChart get a native Excel line chart drawn
// over their numeric columns.
//
// Example usage:
//
//	sheets := []exporter.Sheet{
//		exporter.PlanSheet(result.Forecast, result.Plan, result.Verdict),
//		exporter.BandsSheet(result.Bands),
//	}
//	err := exporter.Encode(w, exporter.FormatXLSX, sheets...)
//
// Writer resolves relative paths against an output directory and is used
// by the command line front end.
package exporter
