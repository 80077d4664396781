package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/kanban-go/internal/application/common"
	"github.com/andrescamacho/kanban-go/internal/application/simulation"
	"github.com/andrescamacho/kanban-go/internal/application/workstation"
	"github.com/andrescamacho/kanban-go/internal/domain/production"
	"github.com/andrescamacho/kanban-go/internal/domain/shared"
	"github.com/andrescamacho/kanban-go/internal/infrastructure/config"
)

// simulateArgs are the validated flags of "simulate"
type simulateArgs struct {
	New         int           `validate:"min=0,max=100"`
	Normal      int           `validate:"min=0,max=100"`
	Experienced int           `validate:"min=0,max=100"`
	Duration    time.Duration `validate:"min=0"`
	NoRunner    bool
}

// NewSimulateCommand creates the in-process simulation command
func NewSimulateCommand() *cobra.Command {
	var flags simulateArgs

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run the runner and several workers in this process",
		Long: `Starts the replenishment runner and the requested workers as goroutines
sharing one store connection. Stops on Ctrl-C, after --duration, or when any
process fails.

Example:
  kanban simulate --new 1 --normal 2 --experienced 1 --duration 10m`,
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.NewValidator().Validate(&flags); err != nil {
				return usageError(err)
			}
			return runSimulate(cmd, flags)
		},
	}

	cmd.Flags().IntVar(&flags.New, "new", 0, "Number of new workers")
	cmd.Flags().IntVar(&flags.Normal, "normal", 0, "Number of normal workers")
	cmd.Flags().IntVar(&flags.Experienced, "experienced", 0, "Number of experienced workers")
	cmd.Flags().DurationVar(&flags.Duration, "duration", 0, "Stop after this long (0 runs until interrupted)")
	cmd.Flags().BoolVar(&flags.NoRunner, "no-runner", false, "Do not start the replenishment runner")
	return cmd
}

func runSimulate(cmd *cobra.Command, flags simulateArgs) error {
	ctx := cmd.Context()
	if flags.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, flags.Duration)
		defer cancel()
	}

	rt, err := openRuntime(ctx, true)
	if err != nil {
		return err
	}
	defer rt.Close()

	plan := simulation.Plan{
		Workers: map[production.WorkerType]int{
			production.WorkerTypeNew:         flags.New,
			production.WorkerTypeNormal:      flags.Normal,
			production.WorkerTypeExperienced: flags.Experienced,
		},
		SkipRunner: flags.NoRunner,
	}
	sim := simulation.NewSimulation(rt.store, rt.processes, nil, simulation.Config{
		Worker: workstation.WorkerConfig{
			Baseline:          rt.cfg.Simulation.Baseline,
			Seed:              rt.cfg.Simulation.Seed,
			KeepStationOnExit: rt.cfg.Simulation.KeepStationOnExit,
			ShutdownGrace:     rt.cfg.Simulation.ShutdownGrace,
		},
		RunnerInterval: rt.cfg.Runner.Interval,
	}, rt.processLogger)

	ctx = common.WithLogger(ctx, rt.processLogger("simulation"))

	var result *simulation.Result
	err = rt.run(ctx, func(ctx context.Context) error {
		var runErr error
		result, runErr = sim.Run(ctx, plan)
		return runErr
	})
	if result != nil {
		printSimulationResult(cmd, result)
	}
	return err
}

func printSimulationResult(cmd *cobra.Command, result *simulation.Result) {
	out := cmd.OutOrStdout()
	units := 0
	for _, w := range result.Workers {
		units += w.Cycles()
	}
	fmt.Fprintf(out, "Workers: %d stopped, %d without a station, %d failed; %d units produced\n",
		result.Count(shared.LifecycleStatusStopped),
		result.Count(shared.LifecycleStatusExhausted),
		result.Count(shared.LifecycleStatusFailed),
		units)
	if result.Runner != nil {
		fmt.Fprintf(out, "Runner: %s after %d ticks\n", result.Runner.Status(), result.Runner.Cycles())
	}
}
