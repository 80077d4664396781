package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/kanban-go/internal/application/common"
	"github.com/andrescamacho/kanban-go/internal/domain/shared"
	"github.com/andrescamacho/kanban-go/internal/domain/station"
)

// ReleaseStationsCommand frees leased stations. Exactly one selector must be set.
type ReleaseStationsCommand struct {
	StationID int
	ProcessID string
	All       bool
}

// ReleaseStationsResponse reports how many stations were freed
type ReleaseStationsResponse struct {
	Released int
}

// ReleaseStationsHandler handles the ReleaseStations command.
// It clears leases left behind by workers that were killed.
type ReleaseStationsHandler struct {
	stations station.Admin
}

// NewReleaseStationsHandler creates a new ReleaseStationsHandler
func NewReleaseStationsHandler(stations station.Admin) *ReleaseStationsHandler {
	return &ReleaseStationsHandler{stations: stations}
}

// Handle executes the ReleaseStations command
func (h *ReleaseStationsHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*ReleaseStationsCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ReleaseStationsCommand")
	}

	selectors := 0
	if cmd.StationID > 0 {
		selectors++
	}
	if cmd.ProcessID != "" {
		selectors++
	}
	if cmd.All {
		selectors++
	}
	if selectors != 1 {
		return nil, shared.NewValidationError("selector", "specify exactly one of a station id, a process id or all")
	}

	var released int
	var err error
	switch {
	case cmd.StationID > 0:
		err = h.stations.ReleaseByID(ctx, cmd.StationID)
		if err == nil {
			released = 1
		}
	case cmd.ProcessID != "":
		released, err = h.stations.ReleaseByOwner(ctx, cmd.ProcessID)
	default:
		released, err = h.stations.ReleaseAll(ctx)
	}
	if err != nil {
		return nil, err
	}

	common.LoggerFromContext(ctx).Log(common.LevelInfo, "Stations released", map[string]interface{}{
		"released": released,
	})
	return &ReleaseStationsResponse{Released: released}, nil
}
