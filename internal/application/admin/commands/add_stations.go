package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/kanban-go/internal/application/common"
	"github.com/andrescamacho/kanban-go/internal/domain/production"
	"github.com/andrescamacho/kanban-go/internal/domain/shared"
	"github.com/andrescamacho/kanban-go/internal/domain/station"
)

// AddStationsCommand creates free stations for one worker type
type AddStationsCommand struct {
	WorkerType  string
	Count       int
	PartsOnHand int
}

// AddStationsResponse carries the ids of the new stations
type AddStationsResponse struct {
	StationIDs []int
}

// AddStationsHandler handles the AddStations command
type AddStationsHandler struct {
	stations station.Admin
}

// NewAddStationsHandler creates a new AddStationsHandler
func NewAddStationsHandler(stations station.Admin) *AddStationsHandler {
	return &AddStationsHandler{stations: stations}
}

// Handle executes the AddStations command
func (h *AddStationsHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*AddStationsCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *AddStationsCommand")
	}

	workerType, err := production.ParseWorkerType(cmd.WorkerType)
	if err != nil {
		return nil, err
	}
	if cmd.Count < 1 {
		return nil, shared.NewValidationError("count", "must be at least 1")
	}

	ids, err := h.stations.AddStations(ctx, workerType, cmd.Count, cmd.PartsOnHand)
	if err != nil {
		return nil, err
	}

	common.LoggerFromContext(ctx).Log(common.LevelInfo, "Stations added", map[string]interface{}{
		"worker_type": string(workerType),
		"count":       len(ids),
	})
	return &AddStationsResponse{StationIDs: ids}, nil
}
