package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/kanban-go/internal/application/common"
	"github.com/andrescamacho/kanban-go/internal/domain/settings"
)

// ResetDefaultsCommand restores every setting to its default value
type ResetDefaultsCommand struct{}

// ResetDefaultsResponse lists the settings after the reset
type ResetDefaultsResponse struct {
	Settings []settings.Setting
}

// ResetDefaultsHandler handles the ResetDefaults command
type ResetDefaultsHandler struct {
	settings settings.Repository
}

// NewResetDefaultsHandler creates a new ResetDefaultsHandler
func NewResetDefaultsHandler(repo settings.Repository) *ResetDefaultsHandler {
	return &ResetDefaultsHandler{settings: repo}
}

// Handle executes the ResetDefaults command
func (h *ResetDefaultsHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	if _, ok := request.(*ResetDefaultsCommand); !ok {
		return nil, fmt.Errorf("invalid request type: expected *ResetDefaultsCommand")
	}

	if err := h.settings.ResetDefaults(ctx); err != nil {
		return nil, err
	}
	all, err := h.settings.ListSettings(ctx)
	if err != nil {
		return nil, err
	}

	common.LoggerFromContext(ctx).Log(common.LevelInfo, "Settings reset to defaults", nil)
	return &ResetDefaultsResponse{Settings: all}, nil
}
