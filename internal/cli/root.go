// Package cli implements the optimedu command line: offline forecasts,
// funding plans and what-if analysis over a panel file, plus the HTTP
// server.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"optimedu/internal/config"
	"optimedu/internal/infrastructure"
	"optimedu/internal/services"
	"optimedu/pkg/contracts"
)

type rootOptions struct {
	configFile string
	logLevel   string
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "optimedu",
		Short:         "School budget analytics",
		Long:          "Forecast enrollment, plan funding gaps, simulate investments and explore how spending relates to outcomes.",
		Version:       contracts.GetFullVersionString(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "Config file (default: $OPTIMEDU_CONFIG or ./config.yaml)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Override the configured log level")

	cmd.AddCommand(
		newForecastCommand(opts),
		newPlanCommand(opts),
		newImpactCommand(opts),
		newAdviseCommand(opts),
		newServeCommand(opts),
	)
	return cmd
}

// Execute runs the command line and reports a failure on stderr.
func Execute(ctx context.Context) error {
	cmd := NewRootCommand()
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "error: %v\n", err)
		return err
	}
	return nil
}

func (o *rootOptions) loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if o.configFile != "" {
		cfg, err = config.LoadFrom(o.configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
	}
	return cfg, nil
}

// session is the state shared by the offline commands: one workspace and
// a logger on stderr so stdout stays machine readable.
type session struct {
	cfg    *config.Config
	logger *slog.Logger
	ws     *services.Workspace
	panels *services.PanelService
}

func (o *rootOptions) open(cmd *cobra.Command) (*session, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	logger, err := infrastructure.NewLogger(cfg.Logging, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(infrastructure.EnsureTraceID(ctx))

	ws := services.NewWorkspace()
	return &session{
		cfg:    cfg,
		logger: logger,
		ws:     ws,
		panels: services.NewPanelService(ws, nil, logger),
	}, nil
}

func (s *session) loadPanel(ctx context.Context, path string) (*services.PanelSummary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open panel: %w", err)
	}
	defer f.Close()
	return s.panels.Load(ctx, filepath.Base(path), f)
}

func writeJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
