package metrics

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/andrescamacho/kanban-go/internal/domain/station"
)

// StationLister reads the current station table for gauge sampling
type StationLister interface {
	ListStations(ctx context.Context) ([]station.Slot, error)
}

// SimulationMetricsCollector handles production, allocation and station metrics
type SimulationMetricsCollector struct {
	stations StationLister

	allocationsTotal *prometheus.CounterVec
	unitsTotal       *prometheus.CounterVec
	unitBuildTime    *prometheus.HistogramVec
	ticksTotal       prometheus.Counter
	tickInterval     prometheus.Histogram
	storeRetries     *prometheus.CounterVec
	processesTotal   *prometheus.CounterVec
	processRuntime   *prometheus.HistogramVec

	stationsLeased *prometheus.GaugeVec
	stationsFree   *prometheus.GaugeVec
	partsOnHand    *prometheus.GaugeVec

	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
}

// NewSimulationMetricsCollector creates a new collector.
// stations may be nil, in which case no station gauges are sampled.
func NewSimulationMetricsCollector(stations StationLister) *SimulationMetricsCollector {
	return &SimulationMetricsCollector{
		stations: stations,

		allocationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "allocations_total",
				Help:      "Station allocation attempts by worker type and outcome",
			},
			[]string{"worker_type", "outcome"},
		),

		unitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "units_total",
				Help:      "Production units reported by worker type",
			},
			[]string{"worker_type"},
		),

		unitBuildTime: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "unit_build_seconds",
				Help:      "Real-time suspension per unit after time-scale compression",
				Buckets:   []float64{0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 90},
			},
			[]string{"worker_type"},
		),

		ticksTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "replenishment_ticks_total",
				Help:      "Replenishment ticks applied",
			},
		),

		tickInterval: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "replenishment_interval_seconds",
				Help:      "Real-time sleep before each replenishment tick",
				Buckets:   []float64{0.3, 1, 3, 10, 30, 60, 150, 300},
			},
		),

		storeRetries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "store_retries_total",
				Help:      "Store calls retried after a transient failure",
			},
			[]string{"op"},
		),

		processesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "processes_total",
				Help:      "Processes reaching a terminal state",
			},
			[]string{"kind", "status"},
		),

		processRuntime: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "process_runtime_seconds",
				Help:      "Process runtime at termination",
				Buckets:   []float64{1, 10, 60, 300, 1800, 3600, 14400},
			},
			[]string{"kind"},
		),

		stationsLeased: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "stations_leased",
				Help:      "Leased stations by worker type",
			},
			[]string{"worker_type"},
		),

		stationsFree: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "stations_free",
				Help:      "Free stations by worker type",
			},
			[]string{"worker_type"},
		),

		partsOnHand: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "parts_on_hand",
				Help:      "Parts in station bins by worker type",
			},
			[]string{"worker_type"},
		),
	}
}

// Register registers all metrics with the Prometheus registry
func (c *SimulationMetricsCollector) Register() error {
	if Registry == nil {
		return nil
	}

	collectors := []prometheus.Collector{
		c.allocationsTotal,
		c.unitsTotal,
		c.unitBuildTime,
		c.ticksTotal,
		c.tickInterval,
		c.storeRetries,
		c.processesTotal,
		c.processRuntime,
		c.stationsLeased,
		c.stationsFree,
		c.partsOnHand,
	}
	for _, collector := range collectors {
		if err := Registry.Register(collector); err != nil {
			return err
		}
	}
	return nil
}

// Start begins sampling station gauges every interval
func (c *SimulationMetricsCollector) Start(ctx context.Context, interval time.Duration) {
	c.ctx, c.cancelFunc = context.WithCancel(ctx)
	if c.stations == nil {
		return
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		c.SampleStations(c.ctx)
		for {
			select {
			case <-c.ctx.Done():
				return
			case <-ticker.C:
				c.SampleStations(c.ctx)
			}
		}
	}()
}

// Stop ends sampling and waits for the sampler to exit
func (c *SimulationMetricsCollector) Stop() {
	if c.cancelFunc != nil {
		c.cancelFunc()
	}
	c.wg.Wait()
}

// SampleStations refreshes the station gauges once
func (c *SimulationMetricsCollector) SampleStations(ctx context.Context) {
	if c.stations == nil {
		return
	}
	slots, err := c.stations.ListStations(ctx)
	if err != nil {
		return
	}

	c.stationsLeased.Reset()
	c.stationsFree.Reset()
	c.partsOnHand.Reset()
	for _, slot := range slots {
		wt := string(slot.WorkerType)
		if slot.IsLeased() {
			c.stationsLeased.WithLabelValues(wt).Inc()
		} else {
			c.stationsFree.WithLabelValues(wt).Inc()
		}
		c.partsOnHand.WithLabelValues(wt).Add(float64(slot.PartsOnHand))
	}
}

func (c *SimulationMetricsCollector) RecordAllocation(workerType, outcome string) {
	c.allocationsTotal.WithLabelValues(workerType, outcome).Inc()
}

func (c *SimulationMetricsCollector) RecordUnit(workerType string, buildTime time.Duration) {
	c.unitsTotal.WithLabelValues(workerType).Inc()
	c.unitBuildTime.WithLabelValues(workerType).Observe(buildTime.Seconds())
}

func (c *SimulationMetricsCollector) RecordReplenishment(interval time.Duration) {
	c.ticksTotal.Inc()
	c.tickInterval.Observe(interval.Seconds())
}

func (c *SimulationMetricsCollector) RecordStoreRetry(op string) {
	c.storeRetries.WithLabelValues(op).Inc()
}

func (c *SimulationMetricsCollector) RecordProcessFinished(kind, status string, runtime time.Duration) {
	c.processesTotal.WithLabelValues(kind, status).Inc()
	c.processRuntime.WithLabelValues(kind).Observe(runtime.Seconds())
}
