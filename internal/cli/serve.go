package cli

import (
	"github.com/spf13/cobra"

	"optimedu/internal/app"
	"optimedu/internal/infrastructure"
)

func newServeCommand(opts *rootOptions) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if port > 0 {
				cfg.Server.Port = port
			}

			logger, err := infrastructure.InitializeLogger(cfg.Logging)
			if err != nil {
				return err
			}
			defer infrastructure.CloseLogFile()

			application, err := app.New(cfg, logger)
			if err != nil {
				return err
			}
			return application.Run(cmd.Context())
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "Listen port (default from config)")
	return cmd
}
