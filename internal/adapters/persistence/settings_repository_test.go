package persistence_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/kanban-go/internal/domain/settings"
	"github.com/andrescamacho/kanban-go/internal/domain/shared"
)

func TestSettings_ChangeAndRead(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	require.NoError(t, store.ChangeSetting(ctx, settings.TimeScale, 60))
	value, err := store.ReadSetting(ctx, settings.TimeScale)

	require.NoError(t, err)
	assert.Equal(t, 60, value)
}

func TestSettings_OutOfRangeLeavesValue(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	err := store.ChangeSetting(ctx, settings.TimeScale, 0)

	assert.ErrorIs(t, err, shared.ErrSettingOutOfRange)
	value, err := store.ReadSetting(ctx, settings.TimeScale)
	require.NoError(t, err)
	assert.Equal(t, 1, value)
}

func TestSettings_UnknownName(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	_, err := store.ReadSetting(ctx, "Speed")
	assert.ErrorIs(t, err, shared.ErrSettingNotFound)

	err = store.ChangeSetting(ctx, "Speed", 2)
	assert.ErrorIs(t, err, shared.ErrSettingNotFound)
}

func TestSettings_ResetDefaults(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	require.NoError(t, store.ChangeSetting(ctx, settings.TimeScale, 60))
	require.NoError(t, store.ChangeSetting(ctx, settings.RefillQuantity, 40))

	require.NoError(t, store.ResetDefaults(ctx))

	list, err := store.ListSettings(ctx)
	require.NoError(t, err)
	require.Len(t, list, len(settings.Defaults()))
	for _, s := range list {
		assert.True(t, s.IsDefault(), s.Name)
	}
}

func TestSettings_ListIsOrderedByName(t *testing.T) {
	store := newStore(t)

	list, err := store.ListSettings(context.Background())

	require.NoError(t, err)
	for i := 1; i < len(list); i++ {
		assert.Less(t, list[i-1].Name, list[i].Name)
	}
}
