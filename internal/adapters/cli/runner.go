package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/kanban-go/internal/application/common"
	"github.com/andrescamacho/kanban-go/internal/application/replenishment"
	"github.com/andrescamacho/kanban-go/internal/domain/process"
	"github.com/andrescamacho/kanban-go/internal/infrastructure/pidfile"
	"github.com/andrescamacho/kanban-go/pkg/utils"
)

// NewRunnerCommand creates the replenishment runner command
func NewRunnerCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runner",
		Short: "Run the periodic replenishment process",
		Long: `Refills low parts bins every 300 simulated seconds, compressed by TimeScale.
Only one runner may be active per PID file.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 {
				return usageError(errors.New("Usage: runner"))
			}
			return nil
		},
		RunE: runRunner,
	}
	addGlobalFlags(cmd)
	return cmd
}

func runRunner(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	rt, err := openRuntime(ctx, true)
	if err != nil {
		return err
	}
	defer rt.Close()

	pf := pidfile.New(rt.cfg.Runner.PIDFile)
	if err := pf.Acquire(); err != nil {
		return fmt.Errorf("failed to acquire runner lock: %w", err)
	}
	defer func() {
		if err := pf.Release(); err != nil {
			rt.logger.Sugar().Warnf("failed to release PID file: %v", err)
		}
	}()

	processID := utils.GenerateProcessID("runner", "")
	ctx = common.WithLogger(ctx, rt.processLogger(processID))

	runner := replenishment.NewRunner(rt.store, rt.store, rt.processes, nil,
		rt.cfg.Runner.Interval, rt.cfg.Simulation.ShutdownGrace)

	var proc *process.SimulationProcess
	err = rt.run(ctx, func(ctx context.Context) error {
		var runErr error
		proc, runErr = runner.Run(ctx, processID)
		return runErr
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Runner %s stopped after %d ticks\n", proc.ID(), proc.Cycles())
	return nil
}
