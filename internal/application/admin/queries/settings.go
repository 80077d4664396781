package queries

import (
	"context"
	"fmt"

	"github.com/andrescamacho/kanban-go/internal/application/common"
	"github.com/andrescamacho/kanban-go/internal/domain/settings"
	"github.com/andrescamacho/kanban-go/internal/domain/shared"
)

// ListSettingsQuery returns every setting with its range and default
type ListSettingsQuery struct{}

// GetSettingQuery returns one setting by name
type GetSettingQuery struct {
	Name string
}

// ListSettingsResponse holds settings ordered by name
type ListSettingsResponse struct {
	Settings []settings.Setting
}

// ListSettingsHandler handles ListSettings and GetSetting queries
type ListSettingsHandler struct {
	settings settings.Repository
}

// NewListSettingsHandler creates a new ListSettingsHandler
func NewListSettingsHandler(repo settings.Repository) *ListSettingsHandler {
	return &ListSettingsHandler{settings: repo}
}

// Handle executes the query
func (h *ListSettingsHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	all, err := func() ([]settings.Setting, error) {
		switch request.(type) {
		case *ListSettingsQuery, *GetSettingQuery:
			return h.settings.ListSettings(ctx)
		default:
			return nil, fmt.Errorf("invalid request type: expected *ListSettingsQuery or *GetSettingQuery")
		}
	}()
	if err != nil {
		return nil, err
	}

	get, ok := request.(*GetSettingQuery)
	if !ok {
		return &ListSettingsResponse{Settings: all}, nil
	}
	for _, s := range all {
		if s.Name == get.Name {
			return &ListSettingsResponse{Settings: []settings.Setting{s}}, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", shared.ErrSettingNotFound, get.Name)
}
