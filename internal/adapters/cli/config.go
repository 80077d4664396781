package cli

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/kanban-go/internal/infrastructure/config"
)

// NewConfigCommand creates the config command with subcommands
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration",
		Long: `Configuration is loaded from multiple sources with priority:
1. Environment variables (KANBAN_* prefix, DATABASE_URL)
2. Config file (kanban.yaml)
3. Default values`,
	}
	cmd.AddCommand(newConfigShowCommand())
	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Kanban Configuration")
			fmt.Fprintln(out, "====================")

			fmt.Fprintln(out, "\nDatabase:")
			fmt.Fprintf(out, "  Type:             %s\n", cfg.Database.Type)
			switch {
			case cfg.Database.Type == "sqlite":
				fmt.Fprintf(out, "  Path:             %s\n", cfg.Database.Path)
			case cfg.Database.URL != "":
				fmt.Fprintf(out, "  URL:              %s\n", maskPassword(cfg.Database.URL))
			default:
				fmt.Fprintf(out, "  Host:             %s:%d\n", cfg.Database.Host, cfg.Database.Port)
				fmt.Fprintf(out, "  Database:         %s\n", cfg.Database.Name)
				fmt.Fprintf(out, "  User:             %s\n", cfg.Database.User)
			}
			fmt.Fprintf(out, "  Max Connections:  %d\n", cfg.Database.Pool.MaxOpen)

			fmt.Fprintln(out, "\nStore:")
			fmt.Fprintf(out, "  Backend:          %s\n", cfg.Store.Backend)
			fmt.Fprintf(out, "  Rate Limit:       %d req/s (burst: %d)\n",
				cfg.Store.RateLimit.Requests, cfg.Store.RateLimit.Burst)
			fmt.Fprintf(out, "  Attempts:         %d (backoff %s)\n",
				cfg.Store.Retry.MaxAttempts, cfg.Store.Retry.BackoffBase)

			fmt.Fprintln(out, "\nSimulation:")
			fmt.Fprintf(out, "  Baseline:         %s\n", cfg.Simulation.Baseline)
			fmt.Fprintf(out, "  Seed:             %d\n", cfg.Simulation.Seed)
			fmt.Fprintf(out, "  Keep Station:     %t\n", cfg.Simulation.KeepStationOnExit)
			fmt.Fprintf(out, "  Shutdown Grace:   %s\n", cfg.Simulation.ShutdownGrace)

			fmt.Fprintln(out, "\nRunner:")
			fmt.Fprintf(out, "  Interval:         %s\n", cfg.Runner.Interval)
			fmt.Fprintf(out, "  PID File:         %s\n", cfg.Runner.PIDFile)

			fmt.Fprintln(out, "\nMetrics:")
			fmt.Fprintf(out, "  Enabled:          %t\n", cfg.Metrics.Enabled)
			if cfg.Metrics.Enabled {
				fmt.Fprintf(out, "  Endpoint:         http://%s:%d%s\n", cfg.Metrics.Host, cfg.Metrics.Port, cfg.Metrics.Path)
			}

			fmt.Fprintln(out, "\nLogging:")
			fmt.Fprintf(out, "  Level:            %s\n", cfg.Logging.Level)
			fmt.Fprintf(out, "  Format:           %s\n", cfg.Logging.Format)
			fmt.Fprintf(out, "  Persist:          %t\n", cfg.Logging.Persist)
			return nil
		},
	}
}

// maskPassword hides the password of a connection URL
func maskPassword(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	return u.Redacted()
}
