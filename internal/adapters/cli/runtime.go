package cli

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/andrescamacho/kanban-go/internal/adapters/guard"
	"github.com/andrescamacho/kanban-go/internal/adapters/logging"
	"github.com/andrescamacho/kanban-go/internal/adapters/metrics"
	"github.com/andrescamacho/kanban-go/internal/adapters/persistence"
	"github.com/andrescamacho/kanban-go/internal/adapters/procstore"
	"github.com/andrescamacho/kanban-go/internal/application/admin"
	"github.com/andrescamacho/kanban-go/internal/application/common"
	"github.com/andrescamacho/kanban-go/internal/domain/process"
	"github.com/andrescamacho/kanban-go/internal/infrastructure/config"
	"github.com/andrescamacho/kanban-go/internal/infrastructure/database"
)

// runtime holds everything a command needs once configuration is loaded
type runtime struct {
	cfg       *config.Config
	logger    *zap.Logger
	db        *gorm.DB
	pgPool    *pgxpool.Pool
	admin     *persistence.GormStore
	store     *guard.Store
	processes *persistence.GormProcessRepository
	logs      *persistence.GormProcessLogRepository
	collector *metrics.SimulationMetricsCollector
	server    *metrics.Server
}

// openRuntime loads configuration, connects to the store and, when enabled,
// prepares the metrics endpoint. withStationGauges samples station occupancy.
func openRuntime(ctx context.Context, withStationGauges bool) (*runtime, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.New(cfg.Logging, verbose)
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		_ = logger.Sync()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	rt := &runtime{
		cfg:       cfg,
		logger:    logger,
		db:        db,
		admin:     persistence.NewGormStore(db, nil),
		processes: persistence.NewGormProcessRepository(db),
		logs:      persistence.NewGormProcessLogRepository(db, nil),
	}

	var backend guard.Backend = rt.admin
	if cfg.Store.Backend == config.BackendProcedures {
		pool, err := procstore.Connect(ctx, database.PostgresDSN(&cfg.Database), cfg.Database.Pool)
		if err != nil {
			rt.Close()
			return nil, fmt.Errorf("failed to connect stored-function backend: %w", err)
		}
		rt.pgPool = pool
		backend = procstore.NewStore(pool, nil)
	}
	rt.store = guard.NewStore(backend, nil, guard.Options{
		RequestsPerSecond: cfg.Store.RateLimit.Requests,
		Burst:             cfg.Store.RateLimit.Burst,
		MaxAttempts:       cfg.Store.Retry.MaxAttempts,
		BackoffBase:       cfg.Store.Retry.BackoffBase,
	})

	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
		var lister metrics.StationLister
		if withStationGauges {
			lister = rt.admin
		}
		rt.collector = metrics.NewSimulationMetricsCollector(lister)
		if err := rt.collector.Register(); err != nil {
			rt.Close()
			return nil, fmt.Errorf("failed to register metrics: %w", err)
		}
		metrics.SetGlobalCollector(rt.collector)
		rt.server = metrics.NewServer(cfg.Metrics.Host, cfg.Metrics.Port, cfg.Metrics.Path)
	}

	return rt, nil
}

// processLogger returns the logger for one simulation process
func (r *runtime) processLogger(processID string) common.ProcessLogger {
	var sink process.LogRepository
	if r.cfg.Logging.Persist {
		sink = r.logs
	}
	return logging.NewProcessLogger(r.logger, processID, sink)
}

// mediator returns the admin command bus over this runtime's stores
func (r *runtime) mediator() (common.Mediator, error) {
	return admin.NewMediator(admin.Dependencies{
		Settings:  r.store,
		Stations:  r.admin,
		Processes: r.processes,
		Logs:      r.logs,
	})
}

// run executes fn, serving metrics next to it when enabled.
// The metrics server stops as soon as fn returns.
func (r *runtime) run(ctx context.Context, fn func(ctx context.Context) error) error {
	if r.server == nil {
		return fn(ctx)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	r.collector.Start(ctx, r.cfg.Metrics.SampleInterval)
	defer r.collector.Stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return r.server.Run(gctx)
	})
	g.Go(func() error {
		defer cancel()
		return fn(gctx)
	})
	return g.Wait()
}

// Close releases connections and flushes the logger
func (r *runtime) Close() {
	if r.pgPool != nil {
		r.pgPool.Close()
	}
	if r.db != nil {
		_ = database.Close(r.db)
	}
	metrics.SetGlobalCollector(nil)
	_ = r.logger.Sync()
}
