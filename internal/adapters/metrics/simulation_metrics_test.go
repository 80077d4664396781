package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/kanban-go/internal/domain/production"
	"github.com/andrescamacho/kanban-go/internal/domain/station"
)

type stationList []station.Slot

func (s stationList) ListStations(context.Context) ([]station.Slot, error) {
	return s, nil
}

func withCollector(t *testing.T, lister StationLister) *SimulationMetricsCollector {
	t.Helper()
	InitRegistry()
	c := NewSimulationMetricsCollector(lister)
	require.NoError(t, c.Register())
	SetGlobalCollector(c)
	t.Cleanup(func() {
		SetGlobalCollector(nil)
		Registry = nil
	})
	return c
}

func TestRecorders_NoCollectorIsNoop(t *testing.T) {
	SetGlobalCollector(nil)

	assert.NotPanics(t, func() {
		RecordAllocation("normal", "leased")
		RecordUnit("normal", time.Second)
		RecordReplenishment(5 * time.Second)
		RecordStoreRetry("report unit")
		RecordProcessFinished("WORKER", "STOPPED", time.Minute)
	})
	assert.False(t, IsEnabled())
}

func TestRecorders_ReachGlobalCollector(t *testing.T) {
	c := withCollector(t, nil)

	RecordAllocation("new", "exhausted")
	RecordUnit("new", 9900*time.Millisecond)
	RecordUnit("new", 8100*time.Millisecond)
	RecordReplenishment(5 * time.Second)
	RecordStoreRetry("lease station")

	assert.True(t, IsEnabled())
	assert.Equal(t, 1.0, testutil.ToFloat64(c.allocationsTotal.WithLabelValues("new", "exhausted")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.unitsTotal.WithLabelValues("new")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.ticksTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.storeRetries.WithLabelValues("lease station")))
}

func TestSampleStations(t *testing.T) {
	c := withCollector(t, stationList{
		{ID: 1, WorkerType: production.WorkerTypeNormal, LeasedBy: "worker-a", PartsOnHand: 10},
		{ID: 2, WorkerType: production.WorkerTypeNormal, PartsOnHand: 4},
		{ID: 3, WorkerType: production.WorkerTypeExperienced, PartsOnHand: 25},
	})

	c.SampleStations(context.Background())

	assert.Equal(t, 1.0, testutil.ToFloat64(c.stationsLeased.WithLabelValues("normal")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.stationsFree.WithLabelValues("normal")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.stationsFree.WithLabelValues("experienced")))
	assert.Equal(t, 14.0, testutil.ToFloat64(c.partsOnHand.WithLabelValues("normal")))
}

func TestStartStop_SamplesImmediately(t *testing.T) {
	c := withCollector(t, stationList{
		{ID: 1, WorkerType: production.WorkerTypeNew, PartsOnHand: 7},
	})

	c.Start(context.Background(), time.Hour)
	assert.Eventually(t, func() bool {
		return testutil.ToFloat64(c.partsOnHand.WithLabelValues("new")) == 7
	}, time.Second, 10*time.Millisecond)
	c.Stop()
}

func TestRegister_WithoutRegistryIsNoop(t *testing.T) {
	Registry = nil
	c := NewSimulationMetricsCollector(nil)

	assert.NoError(t, c.Register())
}
