package exporter

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// EncodeXLSX writes sheets as a workbook, one worksheet each, in order.
func EncodeXLSX(out io.Writer, sheets ...Sheet) error {
	if len(sheets) == 0 {
		return ErrNoSheets
	}

	f := excelize.NewFile()
	defer f.Close()

	for i, sheet := range sheets {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), sheet.Name); err != nil {
				return fmt.Errorf("rename sheet %q: %w", sheet.Name, err)
			}
		} else if _, err := f.NewSheet(sheet.Name); err != nil {
			return fmt.Errorf("create sheet %q: %w", sheet.Name, err)
		}

		if err := writeTable(f, sheet); err != nil {
			return err
		}
		if sheet.Chart != nil && len(sheet.Table.Rows) > 0 {
			if err := addLineChart(f, sheet); err != nil {
				return err
			}
		}
	}

	f.SetActiveSheet(0)
	if err := f.Write(out); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeTable(f *excelize.File, sheet Sheet) error {
	header := make([]interface{}, len(sheet.Table.Headers))
	for i, h := range sheet.Table.Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet.Name, "A1", &header); err != nil {
		return fmt.Errorf("write header of %q: %w", sheet.Name, err)
	}

	for i, row := range sheet.Table.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := row
		if err := f.SetSheetRow(sheet.Name, cell, &row); err != nil {
			return fmt.Errorf("write row %d of %q: %w", i+1, sheet.Name, err)
		}
	}
	return nil
}

// addLineChart places the chart to the right of the table.
func addLineChart(f *excelize.File, sheet Sheet) error {
	last := len(sheet.Table.Rows) + 1
	categories := fmt.Sprintf("%s!$A$2:$A$%d", sheet.Name, last)

	series := make([]excelize.ChartSeries, 0, len(sheet.Chart.Columns))
	for _, col := range sheet.Chart.Columns {
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return err
		}
		series = append(series, excelize.ChartSeries{
			Name:       fmt.Sprintf("%s!$%s$1", sheet.Name, name),
			Categories: categories,
			Values:     fmt.Sprintf("%s!$%s$2:$%s$%d", sheet.Name, name, name, last),
		})
	}

	anchor, err := excelize.CoordinatesToCellName(len(sheet.Table.Headers)+2, 2)
	if err != nil {
		return err
	}
	if err := f.AddChart(sheet.Name, anchor, &excelize.Chart{
		Type:   excelize.Line,
		Series: series,
		Title:  []excelize.RichTextRun{{Text: sheet.Chart.Title}},
		Legend: excelize.ChartLegend{Position: "bottom"},
	}); err != nil {
		return fmt.Errorf("add chart to %q: %w", sheet.Name, err)
	}
	return nil
}
