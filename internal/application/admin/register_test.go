package admin_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/kanban-go/internal/adapters/persistence"
	"github.com/andrescamacho/kanban-go/internal/application/admin"
	"github.com/andrescamacho/kanban-go/internal/application/admin/commands"
	"github.com/andrescamacho/kanban-go/internal/application/admin/queries"
	"github.com/andrescamacho/kanban-go/internal/application/common"
	"github.com/andrescamacho/kanban-go/internal/domain/production"
	"github.com/andrescamacho/kanban-go/internal/domain/settings"
	"github.com/andrescamacho/kanban-go/internal/domain/shared"
	"github.com/andrescamacho/kanban-go/test/helpers"
)

func newAdmin(t *testing.T) (common.Mediator, *persistence.GormStore) {
	t.Helper()
	db := helpers.NewTestDB(t)
	store := persistence.NewGormStore(db, nil)
	m, err := admin.NewMediator(admin.Dependencies{
		Settings:  store,
		Stations:  store,
		Processes: persistence.NewGormProcessRepository(db),
		Logs:      persistence.NewGormProcessLogRepository(db, nil),
	})
	require.NoError(t, err)
	return m, store
}

func TestChangeSetting_ReportsPreviousValue(t *testing.T) {
	// Arrange
	m, store := newAdmin(t)
	ctx := context.Background()

	// Act
	resp, err := m.Send(ctx, &commands.ChangeSettingCommand{Name: settings.TimeScale, Value: 60})

	// Assert
	require.NoError(t, err)
	changed := resp.(*commands.ChangeSettingResponse)
	assert.Equal(t, 1, changed.Previous)
	assert.Equal(t, 60, changed.Value)
	value, err := store.ReadSetting(ctx, settings.TimeScale)
	require.NoError(t, err)
	assert.Equal(t, 60, value)
}

func TestChangeSetting_OutOfRangeIsRejected(t *testing.T) {
	m, store := newAdmin(t)
	ctx := context.Background()

	_, err := m.Send(ctx, &commands.ChangeSettingCommand{Name: settings.TimeScale, Value: 0})

	assert.ErrorIs(t, err, shared.ErrSettingOutOfRange)
	value, err := store.ReadSetting(ctx, settings.TimeScale)
	require.NoError(t, err)
	assert.Equal(t, 1, value)
}

func TestResetDefaults(t *testing.T) {
	m, _ := newAdmin(t)
	ctx := context.Background()
	_, err := m.Send(ctx, &commands.ChangeSettingCommand{Name: settings.RefillQuantity, Value: 7})
	require.NoError(t, err)

	resp, err := m.Send(ctx, &commands.ResetDefaultsCommand{})

	require.NoError(t, err)
	for _, s := range resp.(*commands.ResetDefaultsResponse).Settings {
		assert.True(t, s.IsDefault(), s.Name)
	}
}

func TestGetSetting(t *testing.T) {
	m, _ := newAdmin(t)
	ctx := context.Background()

	resp, err := m.Send(ctx, &queries.GetSettingQuery{Name: settings.PartsPerUnit})
	require.NoError(t, err)
	got := resp.(*queries.ListSettingsResponse).Settings
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].Value)
	assert.Equal(t, 10, got[0].Max)

	_, err = m.Send(ctx, &queries.GetSettingQuery{Name: "Nope"})
	assert.ErrorIs(t, err, shared.ErrSettingNotFound)
}

func TestAddAndListStations(t *testing.T) {
	// Arrange
	m, store := newAdmin(t)
	ctx := context.Background()
	_, err := m.Send(ctx, &commands.AddStationsCommand{WorkerType: "new", Count: 2, PartsOnHand: 10})
	require.NoError(t, err)
	_, err = m.Send(ctx, &commands.AddStationsCommand{WorkerType: "normal", Count: 1})
	require.NoError(t, err)
	typeID, err := store.ResolveWorkerType(ctx, production.WorkerTypeNew)
	require.NoError(t, err)
	_, err = store.LeaseStationSlot(ctx, typeID, "worker-new-1")
	require.NoError(t, err)

	// Act
	resp, err := m.Send(ctx, &queries.ListStationsQuery{WorkerType: "new"})

	// Assert
	require.NoError(t, err)
	list := resp.(*queries.ListStationsResponse)
	assert.Len(t, list.Stations, 2)
	assert.Equal(t, 2, list.Total[production.WorkerTypeNew])
	assert.Equal(t, 1, list.Leased[production.WorkerTypeNew])
	assert.Zero(t, list.Total[production.WorkerTypeNormal])
}

func TestAddStations_InvalidWorkerType(t *testing.T) {
	m, _ := newAdmin(t)

	_, err := m.Send(context.Background(), &commands.AddStationsCommand{WorkerType: "expert", Count: 1})

	var validation *shared.ValidationError
	assert.ErrorAs(t, err, &validation)
}

func TestReleaseStations(t *testing.T) {
	// Arrange
	m, store := newAdmin(t)
	ctx := context.Background()
	_, err := m.Send(ctx, &commands.AddStationsCommand{WorkerType: "normal", Count: 3})
	require.NoError(t, err)
	typeID, err := store.ResolveWorkerType(ctx, production.WorkerTypeNormal)
	require.NoError(t, err)
	for _, owner := range []string{"a", "b", "c"} {
		_, err := store.LeaseStationSlot(ctx, typeID, owner)
		require.NoError(t, err)
	}

	// Act
	byOwner, err := m.Send(ctx, &commands.ReleaseStationsCommand{ProcessID: "a"})
	require.NoError(t, err)
	all, err := m.Send(ctx, &commands.ReleaseStationsCommand{All: true})
	require.NoError(t, err)

	// Assert
	assert.Equal(t, 1, byOwner.(*commands.ReleaseStationsResponse).Released)
	assert.Equal(t, 2, all.(*commands.ReleaseStationsResponse).Released)
}

func TestReleaseStations_RequiresOneSelector(t *testing.T) {
	m, _ := newAdmin(t)

	_, err := m.Send(context.Background(), &commands.ReleaseStationsCommand{StationID: 1, All: true})

	var validation *shared.ValidationError
	assert.ErrorAs(t, err, &validation)
}

func TestGetLogs_UnknownProcess(t *testing.T) {
	m, _ := newAdmin(t)

	_, err := m.Send(context.Background(), &queries.GetLogsQuery{ProcessID: "ghost"})

	assert.ErrorIs(t, err, shared.ErrProcessNotFound)
}
