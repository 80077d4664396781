// Package admin wires the administrative commands and queries onto a mediator.
package admin

import (
	"github.com/andrescamacho/kanban-go/internal/application/admin/commands"
	"github.com/andrescamacho/kanban-go/internal/application/admin/queries"
	"github.com/andrescamacho/kanban-go/internal/application/common"
	"github.com/andrescamacho/kanban-go/internal/domain/process"
	"github.com/andrescamacho/kanban-go/internal/domain/settings"
	"github.com/andrescamacho/kanban-go/internal/domain/station"
)

// Dependencies are the repositories the handlers need
type Dependencies struct {
	Settings  settings.Repository
	Stations  station.Admin
	Processes process.Repository
	Logs      process.LogRepository
}

// NewMediator returns a mediator with every admin handler registered
func NewMediator(deps Dependencies) (common.Mediator, error) {
	m := common.NewMediator()
	settingsQueries := queries.NewListSettingsHandler(deps.Settings)

	registrations := []func() error{
		func() error {
			return common.RegisterHandler[*commands.ChangeSettingCommand](m, commands.NewChangeSettingHandler(deps.Settings))
		},
		func() error {
			return common.RegisterHandler[*commands.ResetDefaultsCommand](m, commands.NewResetDefaultsHandler(deps.Settings))
		},
		func() error {
			return common.RegisterHandler[*commands.AddStationsCommand](m, commands.NewAddStationsHandler(deps.Stations))
		},
		func() error {
			return common.RegisterHandler[*commands.ReleaseStationsCommand](m, commands.NewReleaseStationsHandler(deps.Stations))
		},
		func() error {
			return common.RegisterHandler[*queries.ListSettingsQuery](m, settingsQueries)
		},
		func() error {
			return common.RegisterHandler[*queries.GetSettingQuery](m, settingsQueries)
		},
		func() error {
			return common.RegisterHandler[*queries.ListStationsQuery](m, queries.NewListStationsHandler(deps.Stations))
		},
		func() error {
			return common.RegisterHandler[*queries.ListProcessesQuery](m, queries.NewListProcessesHandler(deps.Processes))
		},
		func() error {
			return common.RegisterHandler[*queries.GetLogsQuery](m, queries.NewGetLogsHandler(deps.Processes, deps.Logs))
		},
	}
	for _, register := range registrations {
		if err := register(); err != nil {
			return nil, err
		}
	}
	return m, nil
}
