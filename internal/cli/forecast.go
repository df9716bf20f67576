package cli

import (
	"github.com/spf13/cobra"

	"optimedu/internal/services"
)

func newForecastCommand(opts *rootOptions) *cobra.Command {
	var series seriesFlags

	cmd := &cobra.Command{
		Use:   "forecast",
		Short: "Forecast next year's enrollment",
		Example: `  optimedu forecast --series 2021:300,2022:400,2023:500
  optimedu forecast --panel panel.csv --entity Adams`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			in, err := series.input(cmd.Context(), s)
			if err != nil {
				return err
			}

			budget := services.NewBudgetService(s.ws, s.cfg.Analysis, nil, s.logger)
			result, err := budget.Forecast(cmd.Context(), in)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), result)
		},
	}

	series.bind(cmd)
	return cmd
}
