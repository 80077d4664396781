// Package procstore is a PostgreSQL backend that delegates every state change
// to stored functions, so each operation is one round trip and one transaction.
package procstore

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/andrescamacho/kanban-go/internal/adapters/storeerr"
	"github.com/andrescamacho/kanban-go/internal/application/common"
	"github.com/andrescamacho/kanban-go/internal/domain/production"
	"github.com/andrescamacho/kanban-go/internal/domain/settings"
	"github.com/andrescamacho/kanban-go/internal/domain/shared"
	"github.com/andrescamacho/kanban-go/internal/domain/station"
	"github.com/andrescamacho/kanban-go/internal/infrastructure/config"
)

//go:embed functions.sql
var functionsSQL string

const (
	dialectPostgres = "postgres"

	tableSettings   = "settings"
	colName         = "name"
	colValue        = "value"
	colMinValue     = "min_value"
	colMaxValue     = "max_value"
	colDefaultValue = "default_value"

	fnResolveWorkerType = "kanban_resolve_worker_type"
	fnGetNewStation     = "kanban_get_new_station"
	fnReleaseStation    = "kanban_release_station"
	fnAddUnit           = "kanban_add_unit"
	fnRunnerUpdate      = "kanban_runner_update"
	fnChangeSetting     = "kanban_change_setting"
	fnSetDefaults       = "kanban_set_defaults"

	codeStationNotLeased  = "KB001"
	codeUnknownWorkerType = "KB002"
	codeOutOfRange        = "KB003"
	codeSettingNotFound   = "KB004"
)

// Store implements the settings repository, station pool and replenisher on
// top of the kanban_* stored functions
type Store struct {
	pool    *pgxpool.Pool
	clock   shared.Clock
	dialect goqu.DialectWrapper
}

// Connect opens a pgx pool sized from the database pool configuration
func Connect(ctx context.Context, dsn string, poolCfg config.PoolConfig) (*pgxpool.Pool, error) {
	pgCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres dsn: %w", err)
	}
	if poolCfg.MaxOpen > 0 {
		pgCfg.MaxConns = int32(poolCfg.MaxOpen)
	}
	if poolCfg.MaxIdle > 0 && poolCfg.MaxIdle <= poolCfg.MaxOpen {
		pgCfg.MinConns = int32(poolCfg.MaxIdle)
	}
	if poolCfg.MaxLifetime > 0 {
		pgCfg.MaxConnLifetime = poolCfg.MaxLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgCfg)
	if err != nil {
		return nil, storeerr.Classify("connect", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, storeerr.Classify("connect", err)
	}
	return pool, nil
}

// NewStore wraps an open pool
// If clock is nil, uses RealClock (production behavior)
func NewStore(pool *pgxpool.Pool, clock shared.Clock) *Store {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &Store{pool: pool, clock: clock, dialect: goqu.Dialect(dialectPostgres)}
}

// Install creates or replaces the stored functions. The tables must already exist.
func (s *Store) Install(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, functionsSQL); err != nil {
		return storeerr.Classify("install functions", err)
	}
	return nil
}

// callSQL renders SELECT fn($1, ...) with positional arguments
func (s *Store) callSQL(fn string, args ...interface{}) (string, []interface{}, error) {
	return s.dialect.Select(goqu.Func(fn, args...)).Prepared(true).ToSQL()
}

func (s *Store) readSettingSQL(name string) (string, []interface{}, error) {
	return s.dialect.From(tableSettings).
		Select(colValue).
		Where(goqu.Ex{colName: name}).
		Prepared(true).
		ToSQL()
}

func (s *Store) listSettingsSQL() (string, []interface{}, error) {
	return s.dialect.From(tableSettings).
		Select(colName, colValue, colMinValue, colMaxValue, colDefaultValue).
		Order(goqu.I(colName).Asc()).
		Prepared(true).
		ToSQL()
}

func (s *Store) exec(ctx context.Context, op, fn string, args ...interface{}) error {
	query, params, err := s.callSQL(fn, args...)
	if err != nil {
		return shared.NewStoreError(op, err)
	}
	if _, err := s.pool.Exec(ctx, query, params...); err != nil {
		return translate(op, err)
	}
	return nil
}

func (s *Store) queryRow(ctx context.Context, op, fn string, dest interface{}, args ...interface{}) error {
	query, params, err := s.callSQL(fn, args...)
	if err != nil {
		return shared.NewStoreError(op, err)
	}
	if err := s.pool.QueryRow(ctx, query, params...).Scan(dest); err != nil {
		return translate(op, err)
	}
	return nil
}

// ReadSetting returns the current value of a setting
func (s *Store) ReadSetting(ctx context.Context, name string) (int, error) {
	query, params, err := s.readSettingSQL(name)
	if err != nil {
		return 0, shared.NewStoreError("read setting", err)
	}

	var value int
	err = s.pool.QueryRow(ctx, query, params...).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("%w: %s", shared.ErrSettingNotFound, name)
	}
	if err != nil {
		return 0, translate("read setting", err)
	}
	return value, nil
}

// ListSettings returns every setting ordered by name
func (s *Store) ListSettings(ctx context.Context) ([]settings.Setting, error) {
	query, params, err := s.listSettingsSQL()
	if err != nil {
		return nil, shared.NewStoreError("list settings", err)
	}

	rows, err := s.pool.Query(ctx, query, params...)
	if err != nil {
		return nil, translate("list settings", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (settings.Setting, error) {
		var st settings.Setting
		err := row.Scan(&st.Name, &st.Value, &st.Min, &st.Max, &st.Default)
		return st, err
	})
	if err != nil {
		return nil, translate("list settings", err)
	}
	return out, nil
}

// ChangeSetting updates one value; the function enforces the stored range
func (s *Store) ChangeSetting(ctx context.Context, name string, value int) error {
	return s.exec(ctx, "change setting", fnChangeSetting, name, value, s.clock.Now())
}

// ResetDefaults restores every setting to its default
func (s *Store) ResetDefaults(ctx context.Context) error {
	return s.exec(ctx, "reset defaults", fnSetDefaults, s.clock.Now())
}

// ResolveWorkerType maps a worker type to its stored identifier
func (s *Store) ResolveWorkerType(ctx context.Context, workerType production.WorkerType) (int, error) {
	var id int
	if err := s.queryRow(ctx, "resolve worker type", fnResolveWorkerType, &id, string(workerType)); err != nil {
		return 0, err
	}
	return id, nil
}

// LeaseStationSlot claims the next free station of the type for owner
func (s *Store) LeaseStationSlot(ctx context.Context, workerTypeID int, owner string) (station.LeaseResult, error) {
	if owner == "" {
		return station.LeaseResult{}, shared.NewValidationError("owner", "lease owner is required")
	}

	var id *int32
	if err := s.queryRow(ctx, "lease station", fnGetNewStation, &id, workerTypeID, owner, s.clock.Now()); err != nil {
		return station.LeaseResult{}, err
	}
	if id == nil {
		return station.Exhausted(), nil
	}
	return station.Leased(int(*id)), nil
}

// ReleaseStationSlot returns a slot held by owner to the pool
func (s *Store) ReleaseStationSlot(ctx context.Context, slotID int, owner string) error {
	return s.exec(ctx, "release station", fnReleaseStation, slotID, owner)
}

// ReportUnit records one completed unit; a repeated unit id changes nothing
func (s *Store) ReportUnit(ctx context.Context, unit production.Unit) error {
	if unit.ID == "" {
		return shared.NewValidationError("unit_id", "unit id is required")
	}

	var recorded bool
	err := s.queryRow(ctx, "report unit", fnAddUnit, &recorded,
		unit.ID, unit.StationID, unit.ProcessID, string(unit.WorkerType),
		unit.BuildTime.Milliseconds(), unit.ProducedAt)
	if err != nil {
		return err
	}
	if !recorded {
		common.LoggerFromContext(ctx).Log(common.LevelDebug, "Duplicate unit report ignored", map[string]interface{}{
			"unit_id": unit.ID,
		})
	}
	return nil
}

// ApplyReplenishment runs one refill pass; a repeated tick id changes nothing
func (s *Store) ApplyReplenishment(ctx context.Context, tickID string) error {
	if tickID == "" {
		return shared.NewValidationError("tick_id", "tick id is required")
	}

	var refilled int
	if err := s.queryRow(ctx, "apply replenishment", fnRunnerUpdate, &refilled, tickID, s.clock.Now()); err != nil {
		return err
	}
	common.LoggerFromContext(ctx).Log(common.LevelDebug, "Replenishment applied", map[string]interface{}{
		"tick_id":  tickID,
		"refilled": refilled,
	})
	return nil
}

// translate maps the functions' custom SQLSTATEs onto domain sentinels
func translate(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeStationNotLeased:
			return fmt.Errorf("%w: %s", shared.ErrStationNotLeased, pgErr.Message)
		case codeUnknownWorkerType:
			return fmt.Errorf("%w: %s", shared.ErrUnknownWorkerType, pgErr.Message)
		case codeOutOfRange:
			return fmt.Errorf("%w: %s", shared.ErrSettingOutOfRange, pgErr.Message)
		case codeSettingNotFound:
			return fmt.Errorf("%w: %s", shared.ErrSettingNotFound, pgErr.Message)
		}
	}
	return storeerr.Classify(op, err)
}
