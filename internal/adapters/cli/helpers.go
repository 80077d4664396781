package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/kanban-go/internal/adapters/logging"
	"github.com/andrescamacho/kanban-go/internal/application/common"
)

// sendAdmin opens a runtime, dispatches one admin request and closes it again
func sendAdmin(cmd *cobra.Command, request common.Request) (common.Response, error) {
	ctx := cmd.Context()
	rt, err := openRuntime(ctx, false)
	if err != nil {
		return nil, err
	}
	defer rt.Close()

	m, err := rt.mediator()
	if err != nil {
		return nil, err
	}
	ctx = common.WithLogger(ctx, logging.NewProcessLogger(rt.logger, "kanban", nil))
	return m.Send(ctx, request)
}

// exactArgs is cobra.ExactArgs reported as a usage error
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return usageError(fmt.Errorf("%w\n%s", err, cmd.UsageString()))
		}
		return nil
	}
}
