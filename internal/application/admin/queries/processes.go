package queries

import (
	"context"
	"fmt"

	"github.com/andrescamacho/kanban-go/internal/application/common"
	"github.com/andrescamacho/kanban-go/internal/domain/process"
)

const defaultLimit = 50

// ListProcessesQuery lists registered worker and runner processes
type ListProcessesQuery struct {
	Status string
	Limit  int
}

// ListProcessesResponse holds process snapshots, newest first
type ListProcessesResponse struct {
	Processes []process.Snapshot
}

// ListProcessesHandler handles the ListProcesses query
type ListProcessesHandler struct {
	processes process.Repository
}

// NewListProcessesHandler creates a new ListProcessesHandler
func NewListProcessesHandler(processes process.Repository) *ListProcessesHandler {
	return &ListProcessesHandler{processes: processes}
}

// Handle executes the ListProcesses query
func (h *ListProcessesHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	query, ok := request.(*ListProcessesQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ListProcessesQuery")
	}

	limit := query.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	snapshots, err := h.processes.List(ctx, query.Status, limit)
	if err != nil {
		return nil, err
	}
	return &ListProcessesResponse{Processes: snapshots}, nil
}

// GetLogsQuery returns the persisted log lines of one process
type GetLogsQuery struct {
	ProcessID string
	Level     string
	Limit     int
}

// GetLogsResponse holds log entries, newest first
type GetLogsResponse struct {
	Entries []process.LogEntry
}

// GetLogsHandler handles the GetLogs query
type GetLogsHandler struct {
	processes process.Repository
	logs      process.LogRepository
}

// NewGetLogsHandler creates a new GetLogsHandler
func NewGetLogsHandler(processes process.Repository, logs process.LogRepository) *GetLogsHandler {
	return &GetLogsHandler{processes: processes, logs: logs}
}

// Handle executes the GetLogs query
func (h *GetLogsHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	query, ok := request.(*GetLogsQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *GetLogsQuery")
	}

	if _, err := h.processes.Get(ctx, query.ProcessID); err != nil {
		return nil, err
	}

	limit := query.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	var level *string
	if query.Level != "" {
		level = &query.Level
	}
	entries, err := h.logs.GetLogs(ctx, query.ProcessID, limit, level)
	if err != nil {
		return nil, err
	}
	return &GetLogsResponse{Entries: entries}, nil
}
