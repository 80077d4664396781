package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/kanban-go/internal/domain/process"
)

var (
	// Global flags
	configPath string
	verbose    bool
)

func addGlobalFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to kanban.yaml (default: search ., ./configs, /etc/kanban)")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable debug logging")
}

// prepare configures a command tree for exit-code driven execution
func prepare(cmd *cobra.Command, args []string, stdout, stderr io.Writer) {
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true
	cmd.CompletionOptions.DisableDefaultCmd = true
	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return usageError(fmt.Errorf("%w\n%s", err, c.UsageString()))
	})
}

// execute runs cmd until it finishes or SIGINT/SIGTERM arrives, and maps the
// result to an exit code. Usage errors print the message as is; every other
// failure prints "Error: ...".
func execute(ctx context.Context, cmd *cobra.Command, args []string, stdout, stderr io.Writer) int {
	prepare(cmd, args, stdout, stderr)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := cmd.ExecuteContext(ctx)
	code := ExitCode(err)
	if err != nil && code != process.ExitOK {
		var exitErr *ExitError
		if errors.As(err, &exitErr) && exitErr.Err == nil {
			return code
		}
		if code == process.ExitUsage {
			fmt.Fprintln(stderr, err)
		} else {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
	}
	return code
}

// RunKanban executes the admin CLI and returns the process exit code
func RunKanban(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	return execute(ctx, NewKanbanCommand(), args, stdout, stderr)
}

// RunWorkstation executes the worker process and returns its exit code
func RunWorkstation(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	return execute(ctx, NewWorkstationCommand(), args, stdout, stderr)
}

// RunRunner executes the replenishment runner and returns its exit code
func RunRunner(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	return execute(ctx, NewRunnerCommand(), args, stdout, stderr)
}

// NewKanbanCommand creates the root of the admin CLI
func NewKanbanCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "kanban",
		Short: "Kanban factory simulation - administer the coordination store",
		Long: `kanban manages the store shared by the workstation and runner processes.

Examples:
  kanban migrate
  kanban station add --type experienced --count 3
  kanban settings set TimeScale 60
  kanban simulate --normal 2 --new 1
  kanban process list --status RUNNING
  kanban logs worker-normal-a3f8e2b1`,
	}
	addGlobalFlags(rootCmd)

	rootCmd.AddCommand(NewMigrateCommand())
	rootCmd.AddCommand(NewSeedCommand())
	rootCmd.AddCommand(NewSettingsCommand())
	rootCmd.AddCommand(NewStationCommand())
	rootCmd.AddCommand(NewProcessCommand())
	rootCmd.AddCommand(NewLogsCommand())
	rootCmd.AddCommand(NewSimulateCommand())
	rootCmd.AddCommand(NewConfigCommand())

	return rootCmd
}
