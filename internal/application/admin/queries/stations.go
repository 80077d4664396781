package queries

import (
	"context"
	"fmt"

	"github.com/andrescamacho/kanban-go/internal/application/common"
	"github.com/andrescamacho/kanban-go/internal/domain/production"
	"github.com/andrescamacho/kanban-go/internal/domain/station"
)

// ListStationsQuery lists stations, optionally for one worker type or only leased ones
type ListStationsQuery struct {
	WorkerType string
	LeasedOnly bool
}

// ListStationsResponse holds the matching stations and per-type occupancy
type ListStationsResponse struct {
	Stations []station.Slot
	Leased   map[production.WorkerType]int
	Total    map[production.WorkerType]int
}

// ListStationsHandler handles the ListStations query
type ListStationsHandler struct {
	stations station.Admin
}

// NewListStationsHandler creates a new ListStationsHandler
func NewListStationsHandler(stations station.Admin) *ListStationsHandler {
	return &ListStationsHandler{stations: stations}
}

// Handle executes the ListStations query
func (h *ListStationsHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	query, ok := request.(*ListStationsQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ListStationsQuery")
	}

	var filter production.WorkerType
	if query.WorkerType != "" {
		wt, err := production.ParseWorkerType(query.WorkerType)
		if err != nil {
			return nil, err
		}
		filter = wt
	}

	all, err := h.stations.ListStations(ctx)
	if err != nil {
		return nil, err
	}

	resp := &ListStationsResponse{
		Leased: make(map[production.WorkerType]int),
		Total:  make(map[production.WorkerType]int),
	}
	for _, slot := range all {
		if filter != "" && slot.WorkerType != filter {
			continue
		}
		resp.Total[slot.WorkerType]++
		if slot.IsLeased() {
			resp.Leased[slot.WorkerType]++
		} else if query.LeasedOnly {
			continue
		}
		resp.Stations = append(resp.Stations, slot)
	}
	return resp, nil
}
