package common

import (
	"context"
	"errors"
	"time"

	"github.com/andrescamacho/kanban-go/internal/domain/process"
)

// SaveProcess persists a process snapshot when a registry is configured.
// Registry failures are logged and never end the simulation loop.
func SaveProcess(ctx context.Context, repo process.Repository, proc *process.SimulationProcess) {
	if repo == nil || proc == nil {
		return
	}
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err := repo.Save(saveCtx, proc.Snapshot()); err != nil {
		LoggerFromContext(ctx).Log(LevelWarn, "Failed to record process state", map[string]interface{}{
			"process_id": proc.ID(),
			"status":     string(proc.Status()),
			"error":      err.Error(),
		})
	}
}

// IsShutdown reports whether err is ctx ending, either by cancellation or by
// its deadline, as opposed to a failure that happened while ctx was live.
func IsShutdown(ctx context.Context, err error) bool {
	ctxErr := ctx.Err()
	return ctxErr != nil && errors.Is(err, ctxErr)
}
