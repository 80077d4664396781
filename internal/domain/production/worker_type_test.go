package production_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/kanban-go/internal/domain/production"
	"github.com/andrescamacho/kanban-go/internal/domain/shared"
)

func TestParseWorkerType(t *testing.T) {
	for _, name := range []string{"new", "normal", "experienced"} {
		wt, err := production.ParseWorkerType(name)
		require.NoError(t, err)
		assert.Equal(t, name, wt.String())
	}
}

func TestParseWorkerType_IsExact(t *testing.T) {
	for _, name := range []string{"", "New", "NORMAL", " normal", "rookie"} {
		_, err := production.ParseWorkerType(name)

		var validationErr *shared.ValidationError
		require.True(t, errors.As(err, &validationErr), "input %q", name)
		assert.Contains(t, validationErr.Message, "new|normal|experienced")
	}
}

func TestApplyMultiplier_OrdersWorkerTypes(t *testing.T) {
	const ms = 60000

	newMs := production.WorkerTypeNew.ApplyMultiplier(ms)
	normalMs := production.WorkerTypeNormal.ApplyMultiplier(ms)
	experiencedMs := production.WorkerTypeExperienced.ApplyMultiplier(ms)

	assert.Greater(t, newMs, normalMs)
	assert.Greater(t, normalMs, experiencedMs)
	assert.Equal(t, ms, normalMs)
}
