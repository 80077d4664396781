package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/kanban-go/internal/application/common"
	"github.com/andrescamacho/kanban-go/internal/application/workstation"
	"github.com/andrescamacho/kanban-go/internal/domain/process"
	"github.com/andrescamacho/kanban-go/internal/domain/production"
	"github.com/andrescamacho/kanban-go/internal/domain/shared"
	"github.com/andrescamacho/kanban-go/pkg/utils"
)

const workstationUsage = "Usage: workstation [new|normal|experienced]"

// NewWorkstationCommand creates the worker process command
func NewWorkstationCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workstation <new|normal|experienced>",
		Short: "Run one production workstation",
		Long: `Leases a station for the worker type and produces units until stopped.

Exit codes: 0 stopped, 1 fatal error, 2 usage, 3 no station available.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return usageError(errors.New(workstationUsage))
			}
			if _, err := parseWorkerArg(args[0]); err != nil {
				return usageError(errors.New(workstationUsage))
			}
			return nil
		},
		RunE: runWorkstation,
	}
	addGlobalFlags(cmd)
	return cmd
}

// parseWorkerArg accepts the worker type in any letter case
func parseWorkerArg(arg string) (production.WorkerType, error) {
	return production.ParseWorkerType(strings.ToLower(arg))
}

func runWorkstation(cmd *cobra.Command, args []string) error {
	workerType, err := parseWorkerArg(args[0])
	if err != nil {
		return usageError(errors.New(workstationUsage))
	}
	ctx := cmd.Context()

	rt, err := openRuntime(ctx, false)
	if err != nil {
		return err
	}
	defer rt.Close()

	processID := utils.GenerateProcessID("worker", string(workerType))
	ctx = common.WithLogger(ctx, rt.processLogger(processID))

	worker := workstation.NewWorker(rt.store, rt.store, rt.processes, nil, workstation.WorkerConfig{
		Baseline:          rt.cfg.Simulation.Baseline,
		Seed:              rt.cfg.Simulation.Seed,
		KeepStationOnExit: rt.cfg.Simulation.KeepStationOnExit,
		ShutdownGrace:     rt.cfg.Simulation.ShutdownGrace,
	})

	var proc *process.SimulationProcess
	err = rt.run(ctx, func(ctx context.Context) error {
		var runErr error
		proc, runErr = worker.Run(ctx, workerType, processID)
		return runErr
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if proc.Status() == shared.LifecycleStatusExhausted {
		fmt.Fprintln(out, "No Station Available!")
		return &ExitError{Code: process.ExitExhausted}
	}
	fmt.Fprintf(out, "Workstation %s stopped: station %d, %d units produced\n",
		proc.ID(), proc.StationID(), proc.Cycles())
	return nil
}
