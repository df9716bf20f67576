package cli

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"optimedu/internal/exporter"
	"optimedu/internal/panel"
	"optimedu/internal/regression"
	"optimedu/internal/services"
)

func newImpactCommand(opts *rootOptions) *cobra.Command {
	var (
		panelFile string
		predict   []string
		plots     bool
		outFile   string
	)

	cmd := &cobra.Command{
		Use:   "impact",
		Short: "Fit spending-to-outcome models and run what-if predictions",
		Example: `  optimedu impact --panel panel.csv
  optimedu impact --panel panel.csv --predict spending_per_student=14000
  optimedu impact --panel panel.csv --out impact.xlsx`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			inputs, err := parseInputs(predict)
			if err != nil {
				return err
			}
			var format exporter.Format
			if outFile != "" {
				if format, err = exporter.ParseFormat(filepath.Ext(outFile)); err != nil {
					return fmt.Errorf("--out %s: %w", outFile, err)
				}
			}

			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			if _, err := s.loadPanel(cmd.Context(), panelFile); err != nil {
				return err
			}
			svc := services.NewImpactService(s.ws, nil, s.logger)

			if outFile != "" {
				overview, err := svc.Overview(cmd.Context(), true)
				if err != nil {
					return err
				}
				var (
					series  []regression.PlotSeries
					impacts []regression.Impact
				)
				for _, o := range overview.Outcomes {
					series = append(series, o.PlotData...)
					impacts = append(impacts, o.Impacts...)
				}
				sheets := []exporter.Sheet{exporter.PlotSheet(series), exporter.ImpactSheet(impacts)}
				if _, err := exporter.NewWriter("", s.logger).WriteSheets(outFile, format, sheets...); err != nil {
					return err
				}
			}

			if len(predict) > 0 {
				predictions, err := svc.Predict(cmd.Context(), inputs)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), predictions)
			}

			overview, err := svc.Overview(cmd.Context(), plots)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), overview)
		},
	}

	cmd.Flags().StringVarP(&panelFile, "panel", "p", "", "Panel file (CSV or XLSX)")
	cmd.Flags().StringArrayVar(&predict, "predict", nil, "Predictor value as column=value, repeatable; others default to their mean")
	cmd.Flags().BoolVar(&plots, "plots", false, "Include scatter and fitted line data")
	cmd.Flags().StringVarP(&outFile, "out", "o", "", "Write plot data and impacts to a .csv or .xlsx file")
	_ = cmd.MarkFlagRequired("panel")

	return cmd
}

func parseInputs(entries []string) (map[panel.Column]float64, error) {
	inputs := make(map[panel.Column]float64, len(entries))
	for _, entry := range entries {
		name, value, ok := strings.Cut(entry, "=")
		if !ok {
			return nil, fmt.Errorf("invalid prediction input %q: want column=value", entry)
		}
		col, ok := panel.ColumnByName(name)
		if !ok {
			return nil, &panel.UnknownColumnError{Name: name}
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid value in %q: %w", entry, err)
		}
		inputs[col] = v
	}
	return inputs, nil
}
