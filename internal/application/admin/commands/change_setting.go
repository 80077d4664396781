package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/kanban-go/internal/application/common"
	"github.com/andrescamacho/kanban-go/internal/domain/settings"
)

// ChangeSettingCommand sets one configuration value
type ChangeSettingCommand struct {
	Name  string
	Value int
}

// ChangeSettingResponse reports the value before and after the change
type ChangeSettingResponse struct {
	Name     string
	Previous int
	Value    int
}

// ChangeSettingHandler handles the ChangeSetting command
type ChangeSettingHandler struct {
	settings settings.Repository
}

// NewChangeSettingHandler creates a new ChangeSettingHandler
func NewChangeSettingHandler(repo settings.Repository) *ChangeSettingHandler {
	return &ChangeSettingHandler{settings: repo}
}

// Handle executes the ChangeSetting command
func (h *ChangeSettingHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*ChangeSettingCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ChangeSettingCommand")
	}

	previous, err := h.settings.ReadSetting(ctx, cmd.Name)
	if err != nil {
		return nil, err
	}
	if err := h.settings.ChangeSetting(ctx, cmd.Name, cmd.Value); err != nil {
		return nil, err
	}

	common.LoggerFromContext(ctx).Log(common.LevelInfo, "Setting changed", map[string]interface{}{
		"name":     cmd.Name,
		"previous": previous,
		"value":    cmd.Value,
	})
	return &ChangeSettingResponse{Name: cmd.Name, Previous: previous, Value: cmd.Value}, nil
}
