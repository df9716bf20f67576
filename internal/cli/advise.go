package cli

import (
	"github.com/spf13/cobra"

	"optimedu/internal/recommend"
	"optimedu/internal/services"
)

func newAdviseCommand(opts *rootOptions) *cobra.Command {
	var metric, direction, question string

	cmd := &cobra.Command{
		Use:   "advise",
		Short: "Ask the language model how to change a budget metric",
		Example: `  optimedu advise --metric "Spending Per Student" --direction Increase
  optimedu advise --metric "Student-Teacher Ratio" --direction Decrease --ask "Which grades first?"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := recommend.ParseMetric(metric)
			if err != nil {
				return err
			}
			d, err := recommend.ParseDirection(direction)
			if err != nil {
				return err
			}

			s, err := opts.open(cmd)
			if err != nil {
				return err
			}

			var advisor *recommend.Advisor
			if s.cfg.Advisor.Enabled() {
				gen, err := recommend.NewOpenAIGenerator(cmd.Context(), recommend.OpenAIConfig{
					BaseURL: s.cfg.Advisor.BaseURL,
					APIKey:  s.cfg.Advisor.APIKey,
					Model:   s.cfg.Advisor.Model,
					Timeout: s.cfg.Advisor.Timeout,
				})
				if err != nil {
					return err
				}
				advisor = recommend.NewAdvisor(gen, s.logger)
			}
			svc := services.NewRecommendationService(s.ws, advisor, nil, s.logger)

			if _, err := svc.Recommend(cmd.Context(), m, d); err != nil {
				return err
			}
			if question != "" {
				if _, err := svc.Ask(cmd.Context(), question); err != nil {
					return err
				}
			}
			return writeJSON(cmd.OutOrStdout(), svc.Latest(cmd.Context()))
		},
	}

	cmd.Flags().StringVarP(&metric, "metric", "m", "", "Spending Per Student, Student-Teacher Ratio or Per-Pupil Instructional Spending")
	cmd.Flags().StringVarP(&direction, "direction", "d", "", "Increase or Decrease")
	cmd.Flags().StringVar(&question, "ask", "", "Follow-up question about the recommendation")
	_ = cmd.MarkFlagRequired("metric")
	_ = cmd.MarkFlagRequired("direction")

	return cmd
}
