package cli

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"optimedu/internal/exporter"
	"optimedu/internal/planner"
	"optimedu/internal/services"
)

func newPlanCommand(opts *rootOptions) *cobra.Command {
	var (
		series  seriesFlags
		goal    string
		budget  string
		assets  []string
		months  int
		paths   int
		seed    uint64
		outFile string
	)

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Compute the funding gap and simulate the investment that closes it",
		Example: `  optimedu plan --series 2021:300,2022:400,2023:500 --goal 12000 --budget 5000000 \
      --asset Stocks=60 --asset Bonds=40 --out plan.xlsx`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			goalPerStudent, err := decimal.NewFromString(goal)
			if err != nil {
				return fmt.Errorf("invalid --goal %q: %w", goal, err)
			}
			currentBudget, err := decimal.NewFromString(budget)
			if err != nil {
				return fmt.Errorf("invalid --budget %q: %w", budget, err)
			}
			allocation, err := parseAllocation(assets)
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
			in, err := series.input(cmd.Context(), s)
			if err != nil {
				return err
			}

			overrides := services.SimulationOverrides{Months: months, Paths: paths}
			if cmd.Flags().Changed("seed") {
				overrides.Seed = &seed
			}

			svc := services.NewBudgetService(s.ws, s.cfg.Analysis, nil, s.logger)
			result, err := svc.Plan(cmd.Context(), services.PlanInput{
				SeriesInput:    in,
				GoalPerStudent: goalPerStudent,
				CurrentBudget:  currentBudget,
				Allocation:     allocation,
				Simulation:     overrides,
			})
			if err != nil {
				return err
			}

			if outFile != "" {
				_, sheets := exporter.PlanExport(format, result.Forecast, result.Plan, result.Bands, result.Verdict)
				if _, err := exporter.NewWriter("", s.logger).WriteSheets(outFile, format, sheets...); err != nil {
					return err
				}
			}
			return writeJSON(cmd.OutOrStdout(), result)
		},
	}

	series.bind(cmd)
	cmd.Flags().StringVarP(&goal, "goal", "g", "", "Funding goal per student")
	cmd.Flags().StringVarP(&budget, "budget", "b", "", "Current budget")
	cmd.Flags().StringArrayVarP(&assets, "asset", "a", nil, "Asset weight in percent as name=weight, repeatable (default Stocks=20 ETFs=20)")
	cmd.Flags().IntVar(&months, "months", 0, "Simulation horizon in months (default from config)")
	cmd.Flags().IntVar(&paths, "paths", 0, "Number of simulated paths (default from config)")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "Simulation seed (default from config)")
	cmd.Flags().StringVarP(&outFile, "out", "o", "", "Write the plan to a .csv or .xlsx file")
	_ = cmd.MarkFlagRequired("goal")
	_ = cmd.MarkFlagRequired("budget")

	return cmd
}

// parseAllocation reads name=weight entries in order. No entries selects
// the default portfolio.
func parseAllocation(entries []string) (planner.Allocation, error) {
	if len(entries) == 0 {
		return planner.DefaultAllocation(), nil
	}
	alloc := planner.Allocation{Weights: make(map[planner.Asset]float64, len(entries))}
	for _, entry := range entries {
		name, weight, ok := strings.Cut(entry, "=")
		if !ok {
			return planner.Allocation{}, fmt.Errorf("invalid asset %q: want name=weight", entry)
		}
		asset, err := planner.ParseAsset(name)
		if err != nil {
			return planner.Allocation{}, err
		}
		if _, dup := alloc.Weights[asset]; dup {
			return planner.Allocation{}, fmt.Errorf("asset %s listed twice", asset)
		}
		w, err := strconv.ParseFloat(strings.TrimSpace(weight), 64)
		if err != nil {
			return planner.Allocation{}, fmt.Errorf("invalid weight in %q: %w", entry, err)
		}
		alloc.Selected = append(alloc.Selected, asset)
		alloc.Weights[asset] = w
	}
	return alloc, nil
}
