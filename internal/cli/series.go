package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"optimedu/internal/forecast"
	"optimedu/internal/services"
)

var errNoSeries = errors.New("either --series or --panel with --entity is required")

// seriesFlags selects an enrollment series: explicit year:count pairs or
// an entity of a panel file.
type seriesFlags struct {
	series []string
	panel  string
	entity string
}

func (f *seriesFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringSliceVarP(&f.series, "series", "s", nil, "Enrollment as year:count pairs, e.g. 2021:300,2022:400")
	cmd.Flags().StringVarP(&f.panel, "panel", "p", "", "Panel file (CSV or XLSX)")
	cmd.Flags().StringVarP(&f.entity, "entity", "e", "", "Entity whose enrollment is forecast, requires --panel")
}

func (f *seriesFlags) input(ctx context.Context, s *session) (services.SeriesInput, error) {
	if len(f.series) > 0 {
		points, err := parseSeries(f.series)
		if err != nil {
			return services.SeriesInput{}, err
		}
		return services.SeriesInput{Series: points}, nil
	}
	if f.entity == "" {
		return services.SeriesInput{}, errNoSeries
	}
	if f.panel == "" {
		return services.SeriesInput{}, errors.New("--entity requires --panel")
	}
	if _, err := s.loadPanel(ctx, f.panel); err != nil {
		return services.SeriesInput{}, err
	}
	return services.SeriesInput{Entity: f.entity}, nil
}

func parseSeries(pairs []string) ([]forecast.Point, error) {
	points := make([]forecast.Point, 0, len(pairs))
	for _, pair := range pairs {
		year, count, ok := strings.Cut(strings.TrimSpace(pair), ":")
		if !ok {
			return nil, fmt.Errorf("invalid series entry %q: want year:count", pair)
		}
		y, err := strconv.Atoi(year)
		if err != nil {
			return nil, fmt.Errorf("invalid year in %q: %w", pair, err)
		}
		c, err := strconv.ParseFloat(count, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid count in %q: %w", pair, err)
		}
		points = append(points, forecast.Point{Year: y, Count: c})
	}
	return points, nil
}
